/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"context"
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
)

// Overlay darkens any background so white text stays readable.
var Overlay = color.NRGBA{A: 102} // rgba(0,0,0,0.4)

// ImageResult is the single outcome of an image load.
type ImageResult struct {
	Image image.Image
	Err   error
}

// ImageLoader loads raster backgrounds. The returned channel delivers exactly
// one result and is never closed before that.
type ImageLoader interface {
	Load(ctx context.Context, path string) <-chan ImageResult
}

// FileLoader decodes images from disk, honouring EXIF orientation.
type FileLoader struct{}

func (FileLoader) Load(ctx context.Context, path string) <-chan ImageResult {
	ch := make(chan ImageResult, 1)
	go func() {
		if err := ctx.Err(); err != nil {
			ch <- ImageResult{Err: err}
			return
		}
		img, err := imaging.Open(path, imaging.AutoOrientation(true))
		ch <- ImageResult{Image: img, Err: err}
	}()
	return ch
}

// Placement describes how a background image is laid onto the surface.
type Placement struct {
	Size     string // cover | contain | auto | "<w> <h>"
	Position string // keywords, percentages or pixels
	Repeat   string // no-repeat | repeat | repeat-x | repeat-y
}

// DrawBackground paints img onto s according to p.
func DrawBackground(s Surface, img image.Image, w, h int, p Placement) {
	if img == nil || w <= 0 || h <= 0 {
		return
	}
	ib := img.Bounds()
	if ib.Empty() {
		return
	}
	size := strings.ToLower(strings.TrimSpace(p.Size))
	if size == "" {
		size = "cover"
	}
	if size == "cover" {
		// Cover fills the whole surface, so repeat never shows.
		if anchor, ok := anchorFor(p.Position); ok {
			s.DrawImage(imaging.Fill(img, w, h, anchor, imaging.Lanczos), image.Rect(0, 0, w, h))
			return
		}
	}

	tw, th := tileSize(size, ib.Dx(), ib.Dy(), w, h)
	tile := img
	if tw != ib.Dx() || th != ib.Dy() {
		tile = imaging.Resize(img, tw, th, imaging.Lanczos)
	}
	x0 := offset(positionAxis(p.Position, true), w, tw)
	y0 := offset(positionAxis(p.Position, false), h, th)

	rx, ry := repeatAxes(p.Repeat)
	xs, ys := []int{x0}, []int{y0}
	if rx {
		xs = tiles(x0, tw, w)
	}
	if ry {
		ys = tiles(y0, th, h)
	}
	for _, y := range ys {
		for _, x := range xs {
			s.DrawImage(tile, image.Rect(x, y, x+tw, y+th))
		}
	}
}

// DrawFitted draws img aspect-fit and centered, the placement of legacy
// single-path backgrounds.
func DrawFitted(s Surface, img image.Image, w, h int) {
	if img == nil {
		return
	}
	ib := img.Bounds()
	if ib.Empty() || w <= 0 || h <= 0 {
		return
	}
	scale := math.Min(float64(w)/float64(ib.Dx()), float64(h)/float64(ib.Dy()))
	tw := max(1, int(math.Round(float64(ib.Dx())*scale)))
	th := max(1, int(math.Round(float64(ib.Dy())*scale)))
	x, y := (w-tw)/2, (h-th)/2
	s.DrawImage(imaging.Resize(img, tw, th, imaging.Lanczos), image.Rect(x, y, x+tw, y+th))
}

func tileSize(size string, iw, ih, w, h int) (int, int) {
	fw, fh := float64(iw), float64(ih)
	switch size {
	case "cover":
		sc := math.Max(float64(w)/fw, float64(h)/fh)
		return scaled(fw, sc), scaled(fh, sc)
	case "contain":
		sc := math.Min(float64(w)/fw, float64(h)/fh)
		return scaled(fw, sc), scaled(fh, sc)
	case "auto":
		return iw, ih
	}
	parts := strings.Fields(size)
	sw, okW := length(parts[0], w)
	sh, okH := -1.0, false
	if len(parts) > 1 {
		sh, okH = length(parts[1], h)
	}
	switch {
	case okW && okH:
		return max(1, int(math.Round(sw))), max(1, int(math.Round(sh)))
	case okW:
		return max(1, int(math.Round(sw))), scaled(fh, sw/fw)
	case okH:
		return scaled(fw, sh/fh), max(1, int(math.Round(sh)))
	}
	return iw, ih
}

func scaled(v, sc float64) int { return max(1, int(math.Round(v*sc))) }

// length parses "120px", "120" or "50%" relative to ref. "auto" is not a length.
func length(v string, ref int) (float64, bool) {
	if p, ok := strings.CutSuffix(v, "%"); ok {
		f, err := strconv.ParseFloat(p, 64)
		return f / 100 * float64(ref), err == nil && f > 0
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(v, "px"), 64)
	return f, err == nil && f > 0
}

// axisPos is either a fraction of the free space or an absolute offset.
type axisPos struct {
	frac float64
	abs  float64
	px   bool
}

func offset(a axisPos, avail, tile int) int {
	if a.px {
		return int(math.Round(a.abs))
	}
	return int(math.Round(float64(avail-tile) * a.frac))
}

// positionAxis reads the horizontal or vertical part of a background-position.
// Keywords may come in either order ("top left" equals "left top").
func positionAxis(pos string, horizontal bool) axisPos {
	center := axisPos{frac: 0.5}
	f := strings.Fields(strings.ToLower(pos))
	if len(f) == 0 {
		return center
	}
	if len(f) == 1 {
		switch f[0] {
		case "top", "bottom":
			if horizontal {
				return center
			}
		case "left", "right":
			if !horizontal {
				return center
			}
		}
		if !horizontal && !isKeyword(f[0]) {
			return center
		}
		return axisValue(f[0])
	}
	x, y := f[0], f[1]
	if x == "top" || x == "bottom" || y == "left" || y == "right" {
		x, y = y, x
	}
	if horizontal {
		return axisValue(x)
	}
	return axisValue(y)
}

func isKeyword(v string) bool {
	switch v {
	case "left", "right", "top", "bottom", "center":
		return true
	}
	return false
}

func axisValue(v string) axisPos {
	switch v {
	case "left", "top":
		return axisPos{frac: 0}
	case "right", "bottom":
		return axisPos{frac: 1}
	case "center":
		return axisPos{frac: 0.5}
	}
	if p, ok := strings.CutSuffix(v, "%"); ok {
		if f, err := strconv.ParseFloat(p, 64); err == nil {
			return axisPos{frac: f / 100}
		}
	}
	if f, err := strconv.ParseFloat(strings.TrimSuffix(v, "px"), 64); err == nil {
		return axisPos{abs: f, px: true}
	}
	return axisPos{frac: 0.5}
}

// anchorFor maps keyword positions onto imaging anchors. Percentages and
// pixel offsets have no anchor.
func anchorFor(pos string) (imaging.Anchor, bool) {
	x, y := positionAxis(pos, true), positionAxis(pos, false)
	if x.px || y.px {
		return imaging.Center, false
	}
	anchors := map[[2]float64]imaging.Anchor{
		{0, 0}: imaging.TopLeft, {0.5, 0}: imaging.Top, {1, 0}: imaging.TopRight,
		{0, 0.5}: imaging.Left, {0.5, 0.5}: imaging.Center, {1, 0.5}: imaging.Right,
		{0, 1}: imaging.BottomLeft, {0.5, 1}: imaging.Bottom, {1, 1}: imaging.BottomRight,
	}
	a, ok := anchors[[2]float64{x.frac, y.frac}]
	return a, ok
}

func repeatAxes(r string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(r)) {
	case "repeat":
		return true, true
	case "repeat-x":
		return true, false
	case "repeat-y":
		return false, true
	}
	return false, false
}

// tiles returns the tile origins covering [0, limit) that line up with start.
func tiles(start, size, limit int) []int {
	if size <= 0 {
		return []int{start}
	}
	first := start - int(math.Ceil(float64(start)/float64(size)))*size
	var out []int
	for x := first; x < limit; x += size {
		out = append(out, x)
	}
	return out
}
