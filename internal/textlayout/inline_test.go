/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"regexp"
	"strings"
	"testing"
)

func TestParseInlineMarkdownWords_BoldWordKeepsSpacing(t *testing.T) {
	got := ParseInlineMarkdownWords("hello **world** foo")
	want := []StyledWord{
		{Text: "hello "},
		{Text: "world ", Bold: true},
		{Text: "foo"},
	}
	assertWords(t, got, want)
}

func TestParseInlineMarkdownWords_Cases(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []StyledWord
	}{
		{"plain single word", "Selah", []StyledWord{{Text: "Selah"}}},
		{"empty", "", nil},
		{"underscore bold", "__Holy__ holy", []StyledWord{{Text: "Holy ", Bold: true}, {Text: "holy"}}},
		{"star italic", "be *still*", []StyledWord{{Text: "be "}, {Text: "still", Italic: true}}},
		{"underscore italic", "_and_ know", []StyledWord{{Text: "and ", Italic: true}, {Text: "know"}}},
		{"mixed underscore star italic", "_grace* abounds", []StyledWord{{Text: "grace ", Italic: true}, {Text: "abounds"}}},
		{"multi word span", "**the Lord** is", []StyledWord{{Text: "the ", Bold: true}, {Text: "Lord ", Bold: true}, {Text: "is"}}},
		{"unmatched stays literal", "a **b", []StyledWord{{Text: "a "}, {Text: "**b"}}},
		{"mismatched delimiters are not bold", "**x__ y", []StyledWord{{Text: "**x__ "}, {Text: "y"}}},
		{"collapse whitespace", "  peace   be  ", []StyledWord{{Text: "peace "}, {Text: "be"}}},
		{"adjacent span without space", "**King**dom", []StyledWord{{Text: "King", Bold: true}, {Text: "dom"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assertWords(t, ParseInlineMarkdownWords(tc.in), tc.want)
		})
	}
}

func TestParseInlineMarkdownWords_RoundTripSpacing(t *testing.T) {
	inputs := []string{
		"The **LORD** is my *shepherd*, I shall not want.",
		"  He   maketh me to __lie down__ in green _pastures_  ",
		"no emphasis here at all",
	}
	delims := regexp.MustCompile(`\*\*|__|\*|_`)
	spaces := regexp.MustCompile(`\s+`)
	for _, in := range inputs {
		var b strings.Builder
		for _, w := range ParseInlineMarkdownWords(in) {
			b.WriteString(w.Text)
		}
		want := strings.TrimSpace(spaces.ReplaceAllString(delims.ReplaceAllString(in, ""), " "))
		if got := b.String(); got != want {
			t.Fatalf("round trip for %q:\n got %q\nwant %q", in, got, want)
		}
	}
}

func assertWords(t *testing.T, got, want []StyledWord) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d words %+v, want %d %+v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("word %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
