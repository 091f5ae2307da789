/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// This file defines the data handed to the slide renderer. Items are built
// fresh for every selection and treated as immutable afterwards.

// ContentItem is one displayable slide.
type ContentItem struct {
	Number    string `json:"number,omitempty"`    // leading verse label, drawn top-left
	Text      string `json:"text,omitempty"`      // body; lines separated by \n
	Reference string `json:"reference,omitempty"` // citation, drawn bottom-right
	ShowHint  string `json:"showHint,omitempty"`  // e.g. "Showing 3 of 5 selected"

	Background *BackgroundSpec `json:"backgroundMedia,omitempty"`
	// BackgroundPath is the legacy single-image background; it is only used
	// when Background is nil.
	BackgroundPath string `json:"backgroundPath,omitempty"`

	Styles Styles `json:"styles"`
}

// TextStyle overrides the look of one text role. Colors are CSS color strings.
type TextStyle struct {
	Color          string `json:"color,omitempty"`
	SubscriptColor string `json:"subscriptColor,omitempty"`
	Bold           bool   `json:"bold,omitempty"`
	Italic         bool   `json:"italic,omitempty"`
}

// Styles groups the optional per-role overrides.
type Styles struct {
	Text      *TextStyle `json:"text,omitempty"`
	Number    *TextStyle `json:"number,omitempty"`
	Reference *TextStyle `json:"reference,omitempty"`
}

type BackgroundType string

const (
	BackgroundColor BackgroundType = "COLOR"
	BackgroundJPG   BackgroundType = "JPG"
	BackgroundPNG   BackgroundType = "PNG"
)

// BackgroundSpec describes a resolved background medium.
type BackgroundSpec struct {
	Type     BackgroundType `json:"type"`
	Color    string         `json:"color,omitempty"`      // flat color or linear-gradient(...)
	Path     string         `json:"path,omitempty"`       // image file for JPG/PNG
	Size     string         `json:"bgSize,omitempty"`     // cover | contain | auto | "<w> <h>"
	Repeat   string         `json:"bgRepeat,omitempty"`   // no-repeat | repeat | repeat-x | repeat-y
	Position string         `json:"bgPosition,omitempty"` // e.g. "center", "top left", "25% 75%"
}

// IsImage reports whether the spec names a raster image.
func (b *BackgroundSpec) IsImage() bool {
	if b == nil {
		return false
	}
	t := BackgroundType(strings.ToUpper(string(b.Type)))
	return (t == BackgroundJPG || t == BackgroundPNG || t == "JPEG") && strings.TrimSpace(b.Path) != ""
}

// IsColor reports whether the spec is a color or gradient fill.
func (b *BackgroundSpec) IsColor() bool {
	return b != nil && BackgroundType(strings.ToUpper(string(b.Type))) == BackgroundColor
}

// Blanked returns the clear-mode copy: all text roles removed, background kept.
func (c ContentItem) Blanked() ContentItem {
	c.Number = ""
	c.Text = ""
	c.Reference = ""
	c.ShowHint = ""
	return c
}

// IsBlank reports whether the item has nothing but a background.
func (c ContentItem) IsBlank() bool {
	return strings.TrimSpace(c.Number) == "" && strings.TrimSpace(c.Text) == "" &&
		strings.TrimSpace(c.Reference) == "" && strings.TrimSpace(c.ShowHint) == ""
}

// Key is a stable digest of the item, used to address cached frames.
func (c ContentItem) Key() string {
	// Marshalling a struct of strings, bools and pointers to those cannot fail.
	b, _ := json.Marshal(c)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Verse is a single verse of a loaded chapter.
type Verse struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// Passage is a chapter (or part of one) plus the operator's selection, as
// handed over by the content source.
type Passage struct {
	Book     string  `json:"book"`
	Chapter  int     `json:"chapter"`
	Verses   []Verse `json:"verses"`
	Selected []int   `json:"selected"` // indices into Verses
	Styles   Styles  `json:"styles"`

	Background *BackgroundSpec `json:"backgroundMedia,omitempty"`
}

// Deck is an ordered list of slides, e.g. for a PDF handout.
type Deck struct {
	Title  string        `json:"title,omitempty"`
	Slides []ContentItem `json:"slides"`
}
