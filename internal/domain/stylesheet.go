/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// ContentKind selects the style scope for a slide.
type ContentKind string

const (
	KindVerses ContentKind = "verses"
	KindSongs  ContentKind = "songs"
)

// StyleSheet resolves the Styles of a slide from three scopes:
//   - Global: app-wide defaults
//   - Kind: settings for verses or songs
//   - Item: overrides carried by the item itself
//
// Precedence is Item > Kind > Global, per role (text, number, reference).
// A role is replaced as a whole; fields are not merged across scopes.
type StyleSheet struct {
	Global Styles
	Kind   map[ContentKind]Styles
}

// NewStyleSheet creates a stylesheet with white text on every role.
func NewStyleSheet() *StyleSheet {
	white := &TextStyle{Color: "#ffffff"}
	return &StyleSheet{
		Global: Styles{Text: white, Number: white, Reference: white},
		Kind:   map[ContentKind]Styles{},
	}
}

// WithKind returns a copy with the provided kind-level styles set.
func (s *StyleSheet) WithKind(kind ContentKind, st Styles) *StyleSheet {
	cp := s.clone()
	cp.Kind[kind] = st
	return cp
}

// Resolve returns the effective styles for an item of the given kind.
func (s *StyleSheet) Resolve(kind ContentKind, item Styles) Styles {
	if s == nil {
		return item
	}
	k := s.Kind[kind]
	return Styles{
		Text:      pick(item.Text, k.Text, s.Global.Text),
		Number:    pick(item.Number, k.Number, s.Global.Number),
		Reference: pick(item.Reference, k.Reference, s.Global.Reference),
	}
}

// Apply resolves and stores the styles on a copy of the item.
func (s *StyleSheet) Apply(kind ContentKind, c ContentItem) ContentItem {
	c.Styles = s.Resolve(kind, c.Styles)
	return c
}

func pick(scopes ...*TextStyle) *TextStyle {
	for _, st := range scopes {
		if st != nil {
			cp := *st
			return &cp
		}
	}
	return nil
}

func (s *StyleSheet) clone() *StyleSheet {
	cp := &StyleSheet{Global: s.Global, Kind: map[ContentKind]Styles{}}
	for k, v := range s.Kind {
		cp.Kind[k] = v
	}
	return cp
}
