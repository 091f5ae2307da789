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
)

// Segment is a chunk of one source line: either an inline verse number or prose.
// Words is filled for prose segments once they have been style-parsed.
type Segment struct {
	IsNumber bool
	Text     string
	Words    []StyledWord
}

// A verse marker is a digit run followed by two spaces ("3  And God said").
var reVerseMarker = regexp.MustCompile(`(\d+)  `)

// ParseVerseSegments splits one line into alternating number and text segments.
// Prose around markers is trimmed and dropped when empty; the marker's two
// spaces are consumed. A line without markers is a single text segment.
func ParseVerseSegments(text string) []Segment {
	matches := reVerseMarker.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		if t := strings.TrimSpace(text); t != "" {
			return []Segment{{Text: t}}
		}
		return nil
	}
	segs := make([]Segment, 0, 2*len(matches)+1)
	last := 0
	for _, m := range matches {
		if before := strings.TrimSpace(text[last:m[0]]); before != "" {
			segs = append(segs, Segment{Text: before})
		}
		segs = append(segs, Segment{IsNumber: true, Text: text[m[2]:m[3]]})
		last = m[1]
	}
	if rest := strings.TrimSpace(text[last:]); rest != "" {
		segs = append(segs, Segment{Text: rest})
	}
	return segs
}

// ParseStyledSegments runs ParseVerseSegments and style-parses every prose segment.
func ParseStyledSegments(line string) []Segment {
	segs := ParseVerseSegments(line)
	for i := range segs {
		if !segs[i].IsNumber {
			segs[i].Words = ParseInlineMarkdownWords(segs[i].Text)
		}
	}
	return segs
}
