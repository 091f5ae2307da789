/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/aymerick/douceur/parser"
)

// Persisted style overrides are base64-encoded CSS declaration lists such as
//
//	color: #fff; font-weight: bold; font-style: italic; subscript-color: gold
//
// DecodeStyle turns one into a TextStyle. Unknown properties are ignored.
func DecodeStyle(encoded string) (*TextStyle, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, nil
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("decode style: %w", err)
		}
	}
	return ParseStyleDeclarations(string(raw))
}

// ParseStyleDeclarations parses a plain CSS declaration list into a TextStyle.
func ParseStyleDeclarations(css string) (*TextStyle, error) {
	decls, err := parser.ParseDeclarations(css)
	if err != nil {
		return nil, fmt.Errorf("parse style: %w", err)
	}
	st := &TextStyle{}
	for _, d := range decls {
		v := strings.TrimSpace(d.Value)
		switch strings.ToLower(d.Property) {
		case "color":
			st.Color = v
		case "--subscript-color", "subscript-color":
			st.SubscriptColor = v
		case "font-weight":
			st.Bold = isBoldWeight(v)
		case "font-style":
			lv := strings.ToLower(v)
			st.Italic = lv == "italic" || lv == "oblique"
		}
	}
	return st, nil
}

// EncodeStyle is the inverse of DecodeStyle.
func EncodeStyle(st *TextStyle) string {
	if st == nil {
		return ""
	}
	var parts []string
	if st.Color != "" {
		parts = append(parts, "color: "+st.Color)
	}
	if st.SubscriptColor != "" {
		parts = append(parts, "subscript-color: "+st.SubscriptColor)
	}
	if st.Bold {
		parts = append(parts, "font-weight: bold")
	}
	if st.Italic {
		parts = append(parts, "font-style: italic")
	}
	return base64.StdEncoding.EncodeToString([]byte(strings.Join(parts, "; ")))
}

// DecodeStyles decodes the three persisted role strings at once.
func DecodeStyles(text, number, reference string) (Styles, error) {
	var s Styles
	var err error
	if s.Text, err = DecodeStyle(text); err != nil {
		return Styles{}, fmt.Errorf("text: %w", err)
	}
	if s.Number, err = DecodeStyle(number); err != nil {
		return Styles{}, fmt.Errorf("number: %w", err)
	}
	if s.Reference, err = DecodeStyle(reference); err != nil {
		return Styles{}, fmt.Errorf("reference: %w", err)
	}
	return s, nil
}

func isBoldWeight(v string) bool {
	switch strings.ToLower(v) {
	case "bold", "bolder":
		return true
	}
	n, err := strconv.Atoi(v)
	return err == nil && n >= 600
}
