/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

// Abstractions for text measurement and line breaking of slide text.
// All measurement goes through Measurer so layout stays deterministic
// and testable without a real display surface.

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

const (
	WeightRegular = 400
	WeightBold    = 700
)

// FontSpec describes a requested font. Size is in pixels.
type FontSpec struct {
	Family string // logical family name; empty selects the provider default
	Size   float64
	Weight int // 100..900
	Italic bool
}

// IsBold reports whether the weight falls into the bold bucket.
func (f FontSpec) IsBold() bool { return f.Weight >= 600 }

// WithSize returns a copy of f at the given pixel size.
func (f FontSpec) WithSize(px float64) FontSpec {
	f.Size = px
	return f
}

// Styled returns a copy of f with bold/italic applied on top of its own flags.
func (f FontSpec) Styled(bold, italic bool) FontSpec {
	if bold {
		f.Weight = WeightBold
	} else if f.Weight == 0 {
		f.Weight = WeightRegular
	}
	f.Italic = f.Italic || italic
	return f
}

// String renders the spec like a CSS font shorthand, e.g. "italic bold 48px Go".
func (f FontSpec) String() string {
	var b strings.Builder
	if f.Italic {
		b.WriteString("italic ")
	}
	if f.IsBold() {
		b.WriteString("bold ")
	}
	b.WriteString(strconv.FormatFloat(f.Size, 'f', -1, 64))
	b.WriteString("px")
	if f.Family != "" {
		b.WriteString(" ")
		b.WriteString(f.Family)
	}
	return b.String()
}

// Metrics provides font metrics in pixels for the resolved face.
type Metrics struct {
	Ascent, Descent, LineGap float64
}

// Provider maps FontSpec to a concrete font.Face.
type Provider interface {
	Resolve(FontSpec) (font.Face, Metrics)
}

// Fingerprinter is implemented by providers that can name the fonts they
// resolve. Equal fingerprints resolve to identical faces.
type Fingerprinter interface {
	Fingerprint() string
}

// FingerprintOf returns the fingerprint of p, treating nil as BasicProvider.
// ok is false when p cannot identify its fonts.
func FingerprintOf(p Provider) (fp string, ok bool) {
	if p == nil {
		p = BasicProvider{}
	}
	if f, ok := p.(Fingerprinter); ok {
		return f.Fingerprint(), true
	}
	return "", false
}

// Measurer maps a string rendered in a font to its advance width in pixels.
type Measurer interface {
	MeasureText(text string, f FontSpec) float64
}

// BasicProvider uses x/image/basicfont Face7x13 for deterministic tests.
// The requested size is ignored.
type BasicProvider struct{}

func (BasicProvider) Resolve(FontSpec) (font.Face, Metrics) {
	f := basicfont.Face7x13
	return f, metricsOf(f)
}

func (BasicProvider) Fingerprint() string { return "basic7x13" }

func metricsOf(face font.Face) Metrics {
	m := face.Metrics()
	return Metrics{
		Ascent:  float64(m.Ascent.Round()),
		Descent: float64(m.Descent.Round()),
		LineGap: float64(m.Height.Round() - m.Ascent.Round() - m.Descent.Round()),
	}
}

// ProviderMeasurer measures with faces resolved from a Provider.
type ProviderMeasurer struct{ Provider Provider }

func (m ProviderMeasurer) MeasureText(text string, f FontSpec) float64 {
	p := m.Provider
	if p == nil {
		p = BasicProvider{}
	}
	face, _ := p.Resolve(f)
	return Advance(face, text)
}

// FixedMeasurer gives every rune the same advance of PerRune*Size pixels
// (0.5 when PerRune is zero). Bold and italic do not change the width.
type FixedMeasurer struct{ PerRune float64 }

func (m FixedMeasurer) MeasureText(text string, f FontSpec) float64 {
	per := m.PerRune
	if per <= 0 {
		per = 0.5
	}
	return float64(utf8.RuneCountInString(text)) * per * f.Size
}

// Advance returns the advance of s in face, in pixels.
func Advance(face font.Face, s string) float64 {
	d := &font.Drawer{Face: face}
	return float64(d.MeasureString(s)) / 64
}
