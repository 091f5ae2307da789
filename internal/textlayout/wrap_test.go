/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import "testing"

// With PerRune 1 and size 10 every rune is 10px wide; verse numbers are 6px per rune.
var tenPx = FixedMeasurer{PerRune: 1}

func TestWrap_GreedyPacking(t *testing.T) {
	segs := []Segment{{Text: "aa bb cc dd"}}
	lines := WrapTextWithSubscripts(tenPx, segs, 70, 10)
	// "aa " = 30, "bb " = 30 -> 60; "cc " would make 90 > 70.
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %+v", len(lines), lines)
	}
	if got := lineText(lines[0]); got != "aa bb " {
		t.Fatalf("line 0 = %q", got)
	}
	if got := lineText(lines[1]); got != "cc dd" {
		t.Fatalf("line 1 = %q", got)
	}
}

func TestWrap_OversizedTokenStandsAlone(t *testing.T) {
	segs := []Segment{{Text: "Mahershalalhashbaz"}}
	lines := WrapTextWithSubscripts(tenPx, segs, 50, 10)
	if len(lines) != 1 || len(lines[0].Tokens) != 1 {
		t.Fatalf("expected one line with one token, got %+v", lines)
	}
	if lines[0].Width <= 50 {
		t.Fatalf("token should exceed max width, got %v", lines[0].Width)
	}

	segs = []Segment{{Text: "a Mahershalalhashbaz b"}}
	lines = WrapTextWithSubscripts(tenPx, segs, 50, 10)
	if len(lines) != 3 {
		t.Fatalf("oversized word in the middle should get its own line, got %d lines", len(lines))
	}
}

func TestWrap_NumbersAreAtomicSubscripts(t *testing.T) {
	segs := ParseStyledSegments("12  Amen")
	lines := WrapTextWithSubscripts(tenPx, segs, 1000, 10)
	if len(lines) != 1 || len(lines[0].Tokens) != 2 {
		t.Fatalf("unexpected lines: %+v", lines)
	}
	num := lines[0].Tokens[0]
	if !num.IsNumber || num.Text != "12 " {
		t.Fatalf("number token = %+v", num)
	}
	if num.Width != 18 { // 3 runes * 0.6 * 10
		t.Fatalf("number width = %v, want 18", num.Width)
	}
}

func TestWrap_PreservesStyleFlagsAndOrder(t *testing.T) {
	segs := ParseStyledSegments("1  **Blessed** are the *meek* 2  for they")
	lines := WrapTextWithSubscripts(tenPx, segs, 90, 10)
	var flat []Token
	for _, l := range lines {
		flat = append(flat, l.Tokens...)
	}
	want := []Token{
		{Text: "1 ", IsNumber: true},
		{Text: "Blessed ", Bold: true},
		{Text: "are "},
		{Text: "the "},
		{Text: "meek", Italic: true},
		{Text: "2 ", IsNumber: true},
		{Text: "for "},
		{Text: "they"},
	}
	if len(flat) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(flat), len(want), flat)
	}
	for i := range want {
		g := flat[i]
		if g.Text != want[i].Text || g.IsNumber != want[i].IsNumber || g.Bold != want[i].Bold || g.Italic != want[i].Italic {
			t.Fatalf("token %d = %+v, want %+v", i, g, want[i])
		}
	}
}

func TestWrap_WidthBound(t *testing.T) {
	text := "And it came to pass in those days that there went out a decree from Caesar Augustus"
	for _, maxW := range []float64{40, 75, 120, 333, 800} {
		for _, l := range WrapTextWithSubscripts(tenPx, ParseStyledSegments(text), maxW, 10) {
			if len(l.Tokens) == 0 {
				t.Fatalf("empty line at max width %v", maxW)
			}
			var sum float64
			for _, tok := range l.Tokens {
				sum += tok.Width
			}
			if sum != l.Width {
				t.Fatalf("line width %v != sum of tokens %v", l.Width, sum)
			}
			if sum > maxW && len(l.Tokens) != 1 {
				t.Fatalf("line exceeds %v with %d tokens: %v", maxW, len(l.Tokens), sum)
			}
		}
	}
}

func TestWrap_EmptyInput(t *testing.T) {
	if lines := WrapTextWithSubscripts(tenPx, nil, 100, 10); len(lines) != 0 {
		t.Fatalf("expected no lines, got %+v", lines)
	}
}

func lineText(l WrappedLine) string {
	s := ""
	for _, tok := range l.Tokens {
		s += tok.Text
	}
	return s
}
