/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"
)

//go:embed schema/*.json
var schemaFS embed.FS

// Schema names the embedded JSON schemas.
type Schema string

const (
	SchemaContent Schema = "content"
	SchemaPassage Schema = "passage"
	SchemaDeck    Schema = "deck"
)

// ErrInvalidDocument is wrapped by Validate when a document breaks its schema.
var ErrInvalidDocument = errors.New("document does not conform to schema")

// Validate checks data against the named schema. Violations are joined into
// one error that wraps ErrInvalidDocument.
func Validate(name Schema, data []byte) error {
	schemaBytes, err := schemaFS.ReadFile("schema/" + string(name) + ".schema.json")
	if err != nil {
		return fmt.Errorf("load schema %s: %w", name, err)
	}
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaBytes), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("validate %s: %w", name, err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w (%s): %s", ErrInvalidDocument, name, strings.Join(msgs, "; "))
}

// DecodeContent validates and decodes a single content item.
func DecodeContent(data []byte) (ContentItem, error) {
	var c ContentItem
	if err := decode(SchemaContent, data, &c); err != nil {
		return ContentItem{}, err
	}
	return c, nil
}

// DecodePassage validates and decodes a passage selection. Selected indices
// must address existing verses.
func DecodePassage(data []byte) (Passage, error) {
	var p Passage
	if err := decode(SchemaPassage, data, &p); err != nil {
		return Passage{}, err
	}
	for _, i := range p.Selected {
		if i < 0 || i >= len(p.Verses) {
			return Passage{}, fmt.Errorf("%w (passage): selected index %d out of range [0,%d)", ErrInvalidDocument, i, len(p.Verses))
		}
	}
	return p, nil
}

// DecodeDeck validates the deck and each of its slides.
func DecodeDeck(data []byte) (Deck, error) {
	var raw struct {
		Title  string            `json:"title"`
		Slides []json.RawMessage `json:"slides"`
	}
	if err := decode(SchemaDeck, data, &raw); err != nil {
		return Deck{}, err
	}
	d := Deck{Title: raw.Title, Slides: make([]ContentItem, 0, len(raw.Slides))}
	for i, s := range raw.Slides {
		c, err := DecodeContent(s)
		if err != nil {
			return Deck{}, fmt.Errorf("slide %d: %w", i+1, err)
		}
		d.Slides = append(d.Slides, c)
	}
	return d, nil
}

func decode(name Schema, data []byte, v any) error {
	if err := Validate(name, data); err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}
