/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import "regexp"

// StyledWord is one wrap unit. Text carries a single trailing space when
// whitespace followed the word in the source, so concatenating all words
// rebuilds the text with delimiters stripped and whitespace collapsed.
type StyledWord struct {
	Text   string
	Bold   bool
	Italic bool
}

// Alternation order matters: Go's regexp is leftmost-first, so at any start
// position the bold forms win over the italic ones. RE2 has no backreferences,
// hence one alternative per delimiter kind.
var reEmphasis = regexp.MustCompile(`\*\*(.+?)\*\*|__(.+?)__|\*(.+?)\*|_(.+?)[_*]`)

type run struct {
	text         string
	bold, italic bool
}

func splitEmphasis(text string) []run {
	var runs []run
	last := 0
	for _, m := range reEmphasis.FindAllStringSubmatchIndex(text, -1) {
		if m[0] > last {
			runs = append(runs, run{text: text[last:m[0]]})
		}
		switch {
		case m[2] >= 0:
			runs = append(runs, run{text: text[m[2]:m[3]], bold: true})
		case m[4] >= 0:
			runs = append(runs, run{text: text[m[4]:m[5]], bold: true})
		case m[6] >= 0:
			runs = append(runs, run{text: text[m[6]:m[7]], italic: true})
		default:
			runs = append(runs, run{text: text[m[8]:m[9]], italic: true})
		}
		last = m[1]
	}
	if last < len(text) {
		runs = append(runs, run{text: text[last:]})
	}
	return runs
}

// ParseInlineMarkdownWords splits text into words tagged with bold/italic.
// Unmatched delimiters stay literal; spans do not nest.
func ParseInlineMarkdownWords(text string) []StyledWord {
	var words []StyledWord
	gap := false
	for _, r := range splitEmphasis(text) {
		s := r.text
		for i := 0; i < len(s); {
			if isSpace(s[i]) {
				gap = true
				i++
				continue
			}
			j := i
			for j < len(s) && !isSpace(s[j]) {
				j++
			}
			if gap && len(words) > 0 {
				words[len(words)-1].Text += " "
			}
			gap = false
			words = append(words, StyledWord{Text: s[i:j], Bold: r.bold, Italic: r.italic})
			i = j
		}
	}
	return words
}

// ASCII whitespace only; UTF-8 continuation bytes never collide with these.
func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n' || b == '\v' || b == '\f'
}
