/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import "testing"

func TestStyleSheet_ResolvePrecedence(t *testing.T) {
	ss := NewStyleSheet()
	got := ss.Resolve(KindVerses, Styles{})
	if got.Text == nil || got.Text.Color != "#ffffff" {
		t.Fatalf("expected global white text, got %+v", got.Text)
	}

	// Kind overrides text only
	ss = ss.WithKind(KindSongs, Styles{Text: &TextStyle{Color: "#ffeeaa", Italic: true}})
	got = ss.Resolve(KindSongs, Styles{})
	if got.Text.Color != "#ffeeaa" || !got.Text.Italic {
		t.Fatalf("kind override not applied: %+v", got.Text)
	}
	if got.Reference == nil || got.Reference.Color != "#ffffff" {
		t.Fatalf("reference should fall back to global: %+v", got.Reference)
	}
	if v := ss.Resolve(KindVerses, Styles{}); v.Text.Italic {
		t.Fatalf("songs override leaked into verses: %+v", v.Text)
	}

	// Item beats kind
	got = ss.Resolve(KindSongs, Styles{Text: &TextStyle{Color: "red"}})
	if got.Text.Color != "red" || got.Text.Italic {
		t.Fatalf("item override should replace the whole role: %+v", got.Text)
	}
}

func TestStyleSheet_WithKindDoesNotMutateReceiver(t *testing.T) {
	base := NewStyleSheet()
	_ = base.WithKind(KindVerses, Styles{Number: &TextStyle{Color: "gold"}})
	if _, ok := base.Kind[KindVerses]; ok {
		t.Fatalf("WithKind must return a copy")
	}
}

func TestStyleSheet_ResolvedStylesAreCopies(t *testing.T) {
	ss := NewStyleSheet()
	a := ss.Resolve(KindVerses, Styles{})
	a.Text.Color = "black"
	if b := ss.Resolve(KindVerses, Styles{}); b.Text.Color != "#ffffff" {
		t.Fatalf("mutating a resolved style changed the sheet: %+v", b.Text)
	}
}

func TestStyleSheet_NilSheetPassesThrough(t *testing.T) {
	var ss *StyleSheet
	item := Styles{Text: &TextStyle{Color: "blue"}}
	if got := ss.Resolve(KindVerses, item); got.Text != item.Text {
		t.Fatalf("nil sheet should return item styles unchanged")
	}
}
