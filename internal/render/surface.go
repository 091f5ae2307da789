/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"liturgia/internal/textlayout"
)

// Align anchors text horizontally at the x coordinate passed to DrawText.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Surface is the raster target the engine paints on. Coordinates are pixels,
// y grows downwards and text is positioned by its baseline.
type Surface interface {
	textlayout.Measurer
	Size() (w, h int)
	// Clear replaces every pixel with c.
	Clear(c color.Color)
	// Fill composites src over r. src is sampled in surface coordinates.
	Fill(r image.Rectangle, src image.Image)
	// DrawImage composites img over dst, scaling when the sizes differ.
	DrawImage(img image.Image, dst image.Rectangle)
	DrawText(text string, x, y float64, f textlayout.FontSpec, c color.Color, align Align)
}

// Canvas is an in-memory RGBA Surface. It caches one face per FontSpec and is
// meant to be used by one goroutine at a time.
type Canvas struct {
	img      *image.RGBA
	provider textlayout.Provider
	faces    map[textlayout.FontSpec]font.Face
}

// NewCanvas allocates a transparent w x h canvas. A nil provider selects
// basicfont.
func NewCanvas(w, h int, p textlayout.Provider) *Canvas {
	if p == nil {
		p = textlayout.BasicProvider{}
	}
	return &Canvas{
		img:      image.NewRGBA(image.Rect(0, 0, w, h)),
		provider: p,
		faces:    make(map[textlayout.FontSpec]font.Face),
	}
}

// Image exposes the backing pixels.
func (c *Canvas) Image() *image.RGBA { return c.img }

func (c *Canvas) Size() (int, int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

func (c *Canvas) Clear(col color.Color) {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
}

func (c *Canvas) Fill(r image.Rectangle, src image.Image) {
	r = r.Intersect(c.img.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(c.img, r, src, r.Min, draw.Over)
}

func (c *Canvas) DrawImage(img image.Image, dst image.Rectangle) {
	if img == nil || dst.Empty() || !dst.Overlaps(c.img.Bounds()) {
		return
	}
	sb := img.Bounds()
	if sb.Dx() == dst.Dx() && sb.Dy() == dst.Dy() {
		draw.Draw(c.img, dst, img, sb.Min, draw.Over)
		return
	}
	draw.CatmullRom.Scale(c.img, dst, img, sb, draw.Over, nil)
}

func (c *Canvas) MeasureText(text string, f textlayout.FontSpec) float64 {
	return textlayout.Advance(c.face(f), text)
}

func (c *Canvas) DrawText(text string, x, y float64, f textlayout.FontSpec, col color.Color, align Align) {
	if text == "" {
		return
	}
	face := c.face(f)
	switch align {
	case AlignRight:
		x -= textlayout.Advance(face, text)
	case AlignCenter:
		x -= textlayout.Advance(face, text) / 2
	}
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)},
	}
	d.DrawString(text)
}

func (c *Canvas) face(f textlayout.FontSpec) font.Face {
	if face, ok := c.faces[f]; ok {
		return face
	}
	face, _ := c.provider.Resolve(f)
	c.faces[f] = face
	return face
}
