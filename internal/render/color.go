/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// ParseColor understands #rgb, #rgba, #rrggbb, #rrggbbaa, rgb(), rgba(),
// "transparent" and the CSS named colors.
func ParseColor(s string) (color.Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "":
		return nil, fmt.Errorf("empty color")
	case s == "transparent":
		return color.NRGBA{}, nil
	case strings.HasPrefix(s, "#"):
		return parseHex(s)
	case strings.HasPrefix(s, "rgb"):
		return parseRGBFunc(s)
	}
	if c, ok := colornames.Map[s]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("unknown color %q", s)
}

// colorOr parses s and falls back to def when s is empty or invalid.
func colorOr(s string, def color.Color) color.Color {
	if c, err := ParseColor(s); err == nil {
		return c
	}
	return def
}

func parseHex(s string) (color.Color, error) {
	hex := s[1:]
	alpha := uint8(255)
	switch len(hex) {
	case 3, 4:
		var b strings.Builder
		for _, r := range hex {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		hex = b.String()
	case 6, 8:
	default:
		return nil, fmt.Errorf("bad hex color %q", s)
	}
	if len(hex) == 8 {
		a, err := strconv.ParseUint(hex[6:], 16, 8)
		if err != nil {
			return nil, fmt.Errorf("bad hex color %q", s)
		}
		alpha = uint8(a)
		hex = hex[:6]
	}
	c, err := colorful.Hex("#" + hex)
	if err != nil {
		return nil, fmt.Errorf("bad hex color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}

func parseRGBFunc(s string) (color.Color, error) {
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return nil, fmt.Errorf("bad color %q", s)
	}
	args := strings.FieldsFunc(s[open+1:len(s)-1], func(r rune) bool { return r == ',' || r == ' ' || r == '/' })
	if len(args) != 3 && len(args) != 4 {
		return nil, fmt.Errorf("bad color %q", s)
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, err := channel(args[i])
		if err != nil {
			return nil, fmt.Errorf("bad color %q: %w", s, err)
		}
		ch[i] = v
	}
	a := 1.0
	if len(args) == 4 {
		var err error
		if a, err = alphaValue(args[3]); err != nil {
			return nil, fmt.Errorf("bad color %q: %w", s, err)
		}
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: uint8(math.Round(a * 255))}, nil
}

func channel(v string) (uint8, error) {
	if p, ok := strings.CutSuffix(v, "%"); ok {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, err
		}
		return uint8(math.Round(clamp01(f/100) * 255)), nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	return uint8(math.Round(math.Max(0, math.Min(255, f)))), nil
}

func alphaValue(v string) (float64, error) {
	if p, ok := strings.CutSuffix(v, "%"); ok {
		f, err := strconv.ParseFloat(p, 64)
		return clamp01(f / 100), err
	}
	f, err := strconv.ParseFloat(v, 64)
	return clamp01(f), err
}

func clamp01(f float64) float64 { return math.Max(0, math.Min(1, f)) }

// ParseFill turns a background color string into a paint source for bounds:
// a uniform color or a linear-gradient(...).
func ParseFill(s string, bounds image.Rectangle) (image.Image, error) {
	t := strings.TrimSpace(s)
	if strings.HasPrefix(strings.ToLower(t), "linear-gradient(") {
		return ParseLinearGradient(t, bounds)
	}
	c, err := ParseColor(t)
	if err != nil {
		return nil, err
	}
	return image.NewUniform(c), nil
}

type gradientStop struct {
	col   colorful.Color
	alpha float64
	pos   float64
}

// LinearGradient is an image.Image implementing CSS linear-gradient over a
// fixed rectangle. Colors are blended in sRGB, as browsers do.
type LinearGradient struct {
	rect   image.Rectangle
	ux, uy float64 // unit direction of the gradient line
	length float64
	stops  []gradientStop
}

// ParseLinearGradient parses "linear-gradient([<angle>|to <side>,] c1 [p1], c2 [p2], ...)".
func ParseLinearGradient(s string, bounds image.Rectangle) (*LinearGradient, error) {
	s = strings.TrimSpace(s)
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return nil, fmt.Errorf("bad gradient %q", s)
	}
	args := splitTopLevel(s[open+1 : len(s)-1])
	w, h := float64(bounds.Dx()), float64(bounds.Dy())
	g := &LinearGradient{rect: bounds, ux: 0, uy: 1}
	if len(args) > 0 {
		if dx, dy, ok := gradientDirection(args[0], w, h); ok {
			g.ux, g.uy = dx, dy
			args = args[1:]
		}
	}
	if len(args) < 2 {
		return nil, fmt.Errorf("gradient needs at least two colors: %q", s)
	}
	for i, a := range args {
		stop, err := parseStop(a, i, len(args))
		if err != nil {
			return nil, fmt.Errorf("bad gradient %q: %w", s, err)
		}
		g.stops = append(g.stops, stop)
	}
	// Positions never go backwards.
	for i := 1; i < len(g.stops); i++ {
		if g.stops[i].pos < g.stops[i-1].pos {
			g.stops[i].pos = g.stops[i-1].pos
		}
	}
	g.length = math.Abs(w*g.ux) + math.Abs(h*g.uy)
	if g.length == 0 {
		g.length = 1
	}
	return g, nil
}

func parseStop(arg string, i, n int) (gradientStop, error) {
	colStr, pos := arg, float64(i)/float64(n-1)
	// A trailing percentage belongs to the stop, not the color.
	if k := strings.LastIndexByte(arg, ' '); k > 0 && strings.HasSuffix(arg, "%") {
		f, err := strconv.ParseFloat(strings.TrimSuffix(arg[k+1:], "%"), 64)
		if err != nil {
			return gradientStop{}, err
		}
		colStr, pos = strings.TrimSpace(arg[:k]), clamp01(f/100)
	}
	c, err := ParseColor(colStr)
	if err != nil {
		return gradientStop{}, err
	}
	nc := color.NRGBAModel.Convert(c).(color.NRGBA)
	return gradientStop{
		col:   colorful.Color{R: float64(nc.R) / 255, G: float64(nc.G) / 255, B: float64(nc.B) / 255},
		alpha: float64(nc.A) / 255,
		pos:   pos,
	}, nil
}

// gradientDirection returns the unit vector of a CSS angle or "to <side>".
// 0deg points up, 90deg right.
func gradientDirection(arg string, w, h float64) (float64, float64, bool) {
	a := strings.ToLower(strings.TrimSpace(arg))
	if strings.HasPrefix(a, "to ") {
		var sx, sy float64
		for _, f := range strings.Fields(a[3:]) {
			switch f {
			case "left":
				sx = -1
			case "right":
				sx = 1
			case "top":
				sy = -1
			case "bottom":
				sy = 1
			default:
				return 0, 0, false
			}
		}
		if sx == 0 && sy == 0 {
			return 0, 0, false
		}
		// Corners: perpendicular to the diagonal through the other two corners.
		dx, dy := sx, sy
		if sx != 0 && sy != 0 {
			dx, dy = sx*h, sy*w
		}
		n := math.Hypot(dx, dy)
		return dx / n, dy / n, true
	}
	var deg float64
	switch {
	case strings.HasSuffix(a, "deg"):
		v, err := strconv.ParseFloat(strings.TrimSuffix(a, "deg"), 64)
		if err != nil {
			return 0, 0, false
		}
		deg = v
	case strings.HasSuffix(a, "turn"):
		v, err := strconv.ParseFloat(strings.TrimSuffix(a, "turn"), 64)
		if err != nil {
			return 0, 0, false
		}
		deg = v * 360
	default:
		return 0, 0, false
	}
	rad := deg * math.Pi / 180
	return math.Sin(rad), -math.Cos(rad), true
}

// splitTopLevel splits on commas that are not nested in parentheses.
func splitTopLevel(s string) []string {
	var out []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if rest := strings.TrimSpace(s[start:]); rest != "" {
		out = append(out, rest)
	}
	return out
}

func (g *LinearGradient) ColorModel() color.Model { return color.NRGBAModel }
func (g *LinearGradient) Bounds() image.Rectangle { return g.rect }

func (g *LinearGradient) At(x, y int) color.Color {
	cx := float64(g.rect.Min.X) + float64(g.rect.Dx())/2
	cy := float64(g.rect.Min.Y) + float64(g.rect.Dy())/2
	t := ((float64(x)+0.5-cx)*g.ux+(float64(y)+0.5-cy)*g.uy)/g.length + 0.5
	return g.colorAt(t)
}

func (g *LinearGradient) colorAt(t float64) color.Color {
	first, last := g.stops[0], g.stops[len(g.stops)-1]
	if t <= first.pos {
		return toNRGBA(first.col, first.alpha)
	}
	if t >= last.pos {
		return toNRGBA(last.col, last.alpha)
	}
	for i := 1; i < len(g.stops); i++ {
		a, b := g.stops[i-1], g.stops[i]
		if t > b.pos {
			continue
		}
		span := b.pos - a.pos
		if span <= 0 {
			return toNRGBA(b.col, b.alpha)
		}
		f := (t - a.pos) / span
		return toNRGBA(a.col.BlendRgb(b.col, f), a.alpha+(b.alpha-a.alpha)*f)
	}
	return toNRGBA(last.col, last.alpha)
}

func toNRGBA(c colorful.Color, alpha float64) color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(clamp01(alpha) * 255))}
}
