/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package selection turns an operator's selection into a ContentItem.
package selection

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"liturgia/internal/domain"
	"liturgia/internal/song"
)

// DefaultMaxChars is the fit budget used when none is configured.
const DefaultMaxChars = 600

// FittableIndices returns the ascending prefix of indices whose summed cost
// stays within maxChars. The first index is always kept, even when it alone
// exceeds the budget. The input is not modified.
func FittableIndices(indices []int, maxChars int, cost func(int) int) []int {
	if len(indices) == 0 {
		return nil
	}
	sorted := slices.Clone(indices)
	slices.Sort(sorted)

	out := make([]int, 0, len(sorted))
	total := 0
	for _, i := range sorted {
		c := cost(i)
		if total+c > maxChars {
			if len(out) == 0 {
				out = append(out, i)
			}
			break
		}
		total += c
		out = append(out, i)
	}
	return out
}

// VerseCost estimates the budget a verse consumes. It counts the markup the
// verse list shows it with, so the figure is a little generous.
func VerseCost(num int, text string) int {
	return utf8.RuneCountInString("<sub>" + strconv.Itoa(num) + "</sub> " + text + " ")
}

// reFootnote matches a footnote glued to the final sentence ("good.4 Or, ...").
// A digit before the period marks a decimal ("2.5 shekels"), not a footnote.
var reFootnote = regexp.MustCompile(`(\D)\.\d+(?:[\s\p{L}][\s\S]*)?$`)

// CleanVerseText strips footnote residue after the verse's final sentence.
// The sentence keeps its period.
func CleanVerseText(text string) string {
	if m := reFootnote.FindStringSubmatchIndex(text); m != nil {
		text = text[:m[3]+1]
	}
	return strings.TrimSpace(text)
}

// BuildPassage builds the slide for the selected verses of p. Verses beyond
// the fit budget are left out and reported through ShowHint.
func BuildPassage(p domain.Passage, selected []int, maxChars int) (domain.ContentItem, error) {
	sel := slices.Clone(selected)
	slices.Sort(sel)
	sel = slices.Compact(sel)
	if len(sel) == 0 {
		return domain.ContentItem{}, fmt.Errorf("no verses selected")
	}
	for _, i := range sel {
		if i < 0 || i >= len(p.Verses) {
			return domain.ContentItem{}, fmt.Errorf("verse index %d out of range [0,%d)", i, len(p.Verses))
		}
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	fit := FittableIndices(sel, maxChars, func(i int) int {
		v := p.Verses[i]
		return VerseCost(v.Number, CleanVerseText(v.Text))
	})

	item := domain.ContentItem{Styles: p.Styles, Background: p.Background}
	nums := make([]int, len(fit))
	for k, i := range fit {
		nums[k] = p.Verses[i].Number
	}
	if len(fit) == 1 {
		v := p.Verses[fit[0]]
		item.Number = strconv.Itoa(v.Number)
		item.Text = CleanVerseText(v.Text)
	} else {
		parts := make([]string, len(fit))
		for k, i := range fit {
			v := p.Verses[i]
			// Two spaces after the number mark it as an inline verse number.
			parts[k] = strconv.Itoa(v.Number) + "  " + CleanVerseText(v.Text)
		}
		item.Text = strings.Join(parts, " ")
	}
	item.Reference = Reference(p.Book, p.Chapter, nums)
	if len(fit) < len(sel) {
		item.ShowHint = fmt.Sprintf("Showing %d of %d selected", len(fit), len(sel))
	}
	return item, nil
}

// Reference formats "Book C:V", "Book C:V1-V2" or "Book C:1-3, 5, 7-8".
func Reference(book string, chapter int, verses []int) string {
	vs := slices.Clone(verses)
	slices.Sort(vs)
	vs = slices.Compact(vs)

	var ranges []string
	for k := 0; k < len(vs); {
		j := k
		for j+1 < len(vs) && vs[j+1] == vs[j]+1 {
			j++
		}
		if j == k {
			ranges = append(ranges, strconv.Itoa(vs[k]))
		} else {
			ranges = append(ranges, strconv.Itoa(vs[k])+"-"+strconv.Itoa(vs[j]))
		}
		k = j + 1
	}
	ref := strconv.Itoa(chapter)
	if len(ranges) > 0 {
		ref += ":" + strings.Join(ranges, ", ")
	}
	if b := strings.TrimSpace(book); b != "" {
		ref = b + " " + ref
	}
	return ref
}

// BuildSong builds the slide for one stanza (0-based) of s.
func BuildSong(s song.Song, stanza int) (domain.ContentItem, error) {
	if stanza < 0 || stanza >= len(s.Stanzas) {
		return domain.ContentItem{}, fmt.Errorf("stanza %d out of range [0,%d)", stanza, len(s.Stanzas))
	}
	st := s.Stanzas[stanza]
	return domain.ContentItem{
		Text:      st.Text(),
		Reference: s.Credit(),
		ShowHint:  fmt.Sprintf("%s (%d of %d)", st.Name(stanza+1), stanza+1, len(s.Stanzas)),
	}, nil
}
