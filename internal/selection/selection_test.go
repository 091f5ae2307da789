/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package selection

import (
	"math/rand"
	"slices"
	"strings"
	"testing"

	"liturgia/internal/domain"
	"liturgia/internal/song"
	"liturgia/internal/textlayout"
)

func TestFittableIndices_BoundaryIsInclusive(t *testing.T) {
	got := FittableIndices([]int{0, 1, 2, 3}, 20, func(int) int { return 10 })
	if !slices.Equal(got, []int{0, 1}) {
		t.Fatalf("got %v, want [0 1]", got)
	}
}

func TestFittableIndices_ForceIncludesFirst(t *testing.T) {
	got := FittableIndices([]int{7, 3}, 5, func(int) int { return 100 })
	if !slices.Equal(got, []int{3}) {
		t.Fatalf("got %v, want [3]", got)
	}
	if FittableIndices(nil, 5, func(int) int { return 1 }) != nil {
		t.Fatalf("empty input yields nothing")
	}
}

func TestFittableIndices_StopsAtFirstOverflow(t *testing.T) {
	costs := map[int]int{1: 5, 2: 50, 3: 1}
	got := FittableIndices([]int{3, 1, 2}, 20, func(i int) int { return costs[i] })
	if !slices.Equal(got, []int{1}) {
		t.Fatalf("got %v; a later cheap item must not be picked after an overflow", got)
	}
}

func TestFittableIndices_SortedPrefixProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for n := 0; n < 200; n++ {
		in := rng.Perm(1 + rng.Intn(12))
		orig := slices.Clone(in)
		budget := rng.Intn(60)
		got := FittableIndices(in, budget, func(i int) int { return 1 + i*3 })
		if !slices.Equal(in, orig) {
			t.Fatalf("input was modified")
		}
		if len(got) < 1 || len(got) > len(in) {
			t.Fatalf("len %d for input %v", len(got), in)
		}
		sorted := slices.Clone(in)
		slices.Sort(sorted)
		if !slices.Equal(got, sorted[:len(got)]) {
			t.Fatalf("%v is not a sorted prefix of %v", got, in)
		}
	}
}

func TestVerseCost(t *testing.T) {
	if got := VerseCost(12, "Jesus wept."); got != len("<sub>12</sub> Jesus wept. ") {
		t.Fatalf("cost = %d", got)
	}
	if got := VerseCost(1, "ä"); got != 15 {
		t.Fatalf("cost counts characters, got %d", got)
	}
}

func TestCleanVerseText(t *testing.T) {
	cases := []struct{ in, want string }{
		{"In the beginning God created the heaven and the earth.", "In the beginning God created the heaven and the earth."},
		{"And God saw the light, that it was good.4 Or, between the light", "And God saw the light, that it was good."},
		{"  padded  ", "padded"},
		{"a bekah, that is, half a shekel, 2.5 shekels of silver", "a bekah, that is, half a shekel, 2.5 shekels of silver"},
		{"Selah.3", "Selah."},
		{"it was good.4Or, between", "it was good."},
	}
	for _, tc := range cases {
		if got := CleanVerseText(tc.in); got != tc.want {
			t.Fatalf("CleanVerseText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func psalm23() domain.Passage {
	return domain.Passage{
		Book:    "Psalm",
		Chapter: 23,
		Verses: []domain.Verse{
			{Number: 1, Text: "The LORD is my shepherd; I shall not want."},
			{Number: 2, Text: "He maketh me to lie down in green pastures: he leadeth me beside the still waters."},
			{Number: 3, Text: "He restoreth my soul: he leadeth me in the paths of righteousness for his name's sake."},
			{Number: 4, Text: "Yea, though I walk through the valley of the shadow of death, I will fear no evil."},
		},
		Background: &domain.BackgroundSpec{Type: domain.BackgroundColor, Color: "#000"},
	}
}

func TestBuildPassage_SingleVerse(t *testing.T) {
	item, err := BuildPassage(psalm23(), []int{0}, 600)
	if err != nil {
		t.Fatalf("BuildPassage: %v", err)
	}
	if item.Number != "1" || item.Text != "The LORD is my shepherd; I shall not want." || item.Reference != "Psalm 23:1" {
		t.Fatalf("unexpected item: %+v", item)
	}
	if item.ShowHint != "" || item.Background == nil {
		t.Fatalf("unexpected hint or missing background: %+v", item)
	}
}

func TestBuildPassage_RangeUsesInlineMarkers(t *testing.T) {
	item, err := BuildPassage(psalm23(), []int{1, 0}, 600)
	if err != nil {
		t.Fatalf("BuildPassage: %v", err)
	}
	if item.Number != "" || item.Reference != "Psalm 23:1-2" {
		t.Fatalf("unexpected item: %+v", item)
	}
	segs := textlayout.ParseVerseSegments(item.Text)
	if len(segs) != 4 || !segs[0].IsNumber || segs[0].Text != "1" || !segs[2].IsNumber || segs[2].Text != "2" {
		t.Fatalf("text should carry verse markers: %+v", segs)
	}
}

func TestBuildPassage_TruncatesWithHint(t *testing.T) {
	item, err := BuildPassage(psalm23(), []int{0, 1, 2, 3}, 200)
	if err != nil {
		t.Fatalf("BuildPassage: %v", err)
	}
	if item.ShowHint != "Showing 2 of 4 selected" || item.Reference != "Psalm 23:1-2" {
		t.Fatalf("unexpected truncation: ref=%q hint=%q", item.Reference, item.ShowHint)
	}
}

func TestBuildPassage_Errors(t *testing.T) {
	if _, err := BuildPassage(psalm23(), nil, 600); err == nil {
		t.Fatalf("empty selection should fail")
	}
	if _, err := BuildPassage(psalm23(), []int{9}, 600); err == nil || !strings.Contains(err.Error(), "out of range") {
		t.Fatalf("expected range error, got %v", err)
	}
}

func TestReference(t *testing.T) {
	cases := []struct {
		book    string
		chapter int
		verses  []int
		want    string
	}{
		{"John", 3, []int{16}, "John 3:16"},
		{"John", 3, []int{16, 17, 18}, "John 3:16-18"},
		{"Romans", 8, []int{28, 1, 2, 3, 31, 30}, "Romans 8:1-3, 28, 30-31"},
		{"", 1, []int{1}, "1:1"},
		{"Jude", 1, nil, "Jude 1"},
	}
	for _, tc := range cases {
		if got := Reference(tc.book, tc.chapter, tc.verses); got != tc.want {
			t.Fatalf("Reference(%q,%d,%v) = %q, want %q", tc.book, tc.chapter, tc.verses, got, tc.want)
		}
	}
}

func TestBuildSong(t *testing.T) {
	s, errs := song.Parse("# Be Thou My Vision\nVerse 1\nBe Thou my vision\nO Lord of my heart\n\nVerse 2\nBe Thou my wisdom")
	if len(errs) != 0 {
		t.Fatalf("parse: %v", errs)
	}
	item, err := BuildSong(s, 1)
	if err != nil {
		t.Fatalf("BuildSong: %v", err)
	}
	if item.Text != "Be Thou my wisdom" || item.Reference != "Be Thou My Vision" || item.ShowHint != "Verse 2 (2 of 2)" {
		t.Fatalf("unexpected item: %+v", item)
	}
	if _, err := BuildSong(s, 2); err == nil {
		t.Fatalf("stanza out of range should fail")
	}
}
