/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sort"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// GoFamily is the family name the bundled Go fonts are registered under.
const GoFamily = "Go"

// FontLibrary stores loaded OpenType fonts mapped by family/bold/italic.
// Weights are bucketed into regular and bold; that is all the slide text needs.
type FontLibrary struct {
	fonts         map[fontKey]*opentype.Font
	sums          map[fontKey]string // content digest per loaded font
	defaultFamily string
}

type fontKey struct {
	family string
	bold   bool
	italic bool
}

func NewFontLibrary() *FontLibrary {
	return &FontLibrary{fonts: make(map[fontKey]*opentype.Font), sums: make(map[fontKey]string)}
}

// NewGoFontLibrary returns a library seeded with the four Go font faces as
// the default family.
func NewGoFontLibrary() (*FontLibrary, error) {
	fl := NewFontLibrary()
	faces := []struct {
		bold, italic bool
		data         []byte
	}{
		{false, false, goregular.TTF},
		{true, false, gobold.TTF},
		{false, true, goitalic.TTF},
		{true, true, gobolditalic.TTF},
	}
	for _, f := range faces {
		if err := fl.LoadBytes(GoFamily, f.bold, f.italic, f.data); err != nil {
			return nil, err
		}
	}
	fl.defaultFamily = GoFamily
	return fl, nil
}

// LoadTTF loads a font file into the library under the given family/bold/italic.
func (fl *FontLibrary) LoadTTF(family string, bold, italic bool, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font %s: %w", path, err)
	}
	if err := fl.LoadBytes(family, bold, italic, data); err != nil {
		return fmt.Errorf("font %s: %w", path, err)
	}
	return nil
}

// LoadBytes parses raw TTF/OTF data into the library.
func (fl *FontLibrary) LoadBytes(family string, bold, italic bool, data []byte) error {
	if fl.fonts == nil {
		fl.fonts = make(map[fontKey]*opentype.Font)
	}
	if fl.sums == nil {
		fl.sums = make(map[fontKey]string)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font: %w", err)
	}
	k := fontKey{family: family, bold: bold, italic: italic}
	sum := sha256.Sum256(data)
	fl.fonts[k] = f
	fl.sums[k] = hex.EncodeToString(sum[:8])
	if fl.defaultFamily == "" {
		fl.defaultFamily = family
	}
	return nil
}

// Fingerprint identifies the loaded fonts by content, so two libraries with
// the same files under the same names share a fingerprint.
func (fl *FontLibrary) Fingerprint() string {
	if fl == nil {
		return ""
	}
	entries := make([]string, 0, len(fl.sums))
	for k, sum := range fl.sums {
		entries = append(entries, fmt.Sprintf("%s/%t/%t=%s", k.family, k.bold, k.italic, sum))
	}
	sort.Strings(entries)
	return "default=" + fl.defaultFamily + ";" + strings.Join(entries, ";")
}

// SetDefaultFamily selects the family used for specs with an empty Family.
func (fl *FontLibrary) SetDefaultFamily(family string) { fl.defaultFamily = family }

func (fl *FontLibrary) find(spec FontSpec) *opentype.Font {
	if fl == nil || fl.fonts == nil {
		return nil
	}
	family := spec.Family
	if family == "" {
		family = fl.defaultFamily
	}
	bold := spec.IsBold()
	// Exact match first
	if f, ok := fl.fonts[fontKey{family: family, bold: bold, italic: spec.Italic}]; ok {
		return f
	}
	// Prefer keeping the weight over keeping the slant.
	if f, ok := fl.fonts[fontKey{family: family, bold: bold}]; ok {
		return f
	}
	if f, ok := fl.fonts[fontKey{family: family}]; ok {
		return f
	}
	if family != fl.defaultFamily {
		return fl.find(FontSpec{Family: fl.defaultFamily, Size: spec.Size, Weight: spec.Weight, Italic: spec.Italic})
	}
	return nil
}

// OTProvider resolves FontSpec using a FontLibrary and falls back to another Provider.
// Every Resolve returns a fresh face: opentype faces are not safe for concurrent use,
// so callers that want caching keep it per goroutine.
type OTProvider struct {
	Lib      *FontLibrary
	DPI      float64 // default 72 if zero, making Size equal to pixels
	Fallback Provider
}

func (p OTProvider) Resolve(spec FontSpec) (font.Face, Metrics) {
	if spec.Size <= 0 {
		spec.Size = 12
	}
	dpi := p.DPI
	if dpi <= 0 {
		dpi = 72
	}

	if f := p.Lib.find(spec); f != nil {
		face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: spec.Size, DPI: dpi, Hinting: font.HintingFull})
		if err == nil {
			return face, metricsOf(face)
		}
	}
	fb := p.Fallback
	if fb == nil {
		fb = BasicProvider{}
	}
	return fb.Resolve(spec)
}

// Fingerprint combines the library contents, the DPI and the fallback.
func (p OTProvider) Fingerprint() string {
	dpi := p.DPI
	if dpi <= 0 {
		dpi = 72
	}
	fb, ok := FingerprintOf(p.Fallback)
	if !ok {
		fb = fmt.Sprintf("%T", p.Fallback)
	}
	return fmt.Sprintf("ot/%g/%s|%s", dpi, p.Lib.Fingerprint(), fb)
}
