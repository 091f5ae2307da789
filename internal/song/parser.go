/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package song

import (
	"bufio"
	"regexp"
	"strings"
)

// Parse parses a lyric sheet into a Song.
// Supported syntax:
// - Title: a "# Title" heading or "Title: ..." line.
// - Metadata: "Author:", "Copyright:" and "CCLI:" lines.
// - Stanza labels on their own line: "Verse 1", "[Chorus]", "Bridge:", "Pre-Chorus", "Tag".
// - Lyrics: any other line. Blank lines end a stanza, so unlabeled blocks
//   separated by blank lines become separate stanzas.
// - Notes: lines starting with ';' are ignored.
//
// A label with no lyrics before the next label or the end is reported as an
// error and dropped.
func Parse(input string) (Song, []Error) {
	var s Song
	var errs []Error

	scanner := bufio.NewScanner(strings.NewReader(input))
	lineNo := 0
	var cur *Stanza

	reTitle := regexp.MustCompile(`^#+\s*(.*)$`)
	reMeta := regexp.MustCompile(`^(?i)(title|author|copyright|ccli)\s*:\s*(.*)$`)
	reLabel := regexp.MustCompile(`^(?i)\[?\s*(verse|chorus|refrain|bridge|pre-?chorus|tag|intro|outro|ending)\s*(\d*)\s*\]?\s*:?$`)

	flush := func() {
		if cur == nil {
			return
		}
		if len(cur.Lines) > 0 {
			s.Stanzas = append(s.Stanzas, *cur)
		} else if cur.Label != "" {
			errs = append(errs, Error{Line: cur.LineNo, Column: 1, Message: "stanza " + cur.Label + " has no lyrics"})
		}
		cur = nil
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		trim := strings.TrimSpace(line)

		if trim == "" {
			// A pending label waits for its lyrics across blank lines.
			if cur != nil && len(cur.Lines) > 0 {
				flush()
			}
			continue
		}
		if strings.HasPrefix(trim, ";") {
			continue
		}
		if m := reTitle.FindStringSubmatch(trim); m != nil {
			flush()
			if s.Title == "" {
				s.Title = strings.TrimSpace(m[1])
			}
			continue
		}
		// Metadata only counts before the first stanza; later it is lyrics.
		if m := reMeta.FindStringSubmatch(trim); m != nil && len(s.Stanzas) == 0 && cur == nil {
			val := strings.TrimSpace(m[2])
			switch strings.ToLower(m[1]) {
			case "title":
				s.Title = val
			case "author":
				s.Author = val
			case "copyright":
				s.Copyright = val
			case "ccli":
				s.CCLI = val
			}
			continue
		}
		if m := reLabel.FindStringSubmatch(trim); m != nil {
			flush()
			cur = &Stanza{Kind: kindOf(m[1]), Label: labelOf(m[1], m[2]), LineNo: lineNo}
			continue
		}
		if cur == nil {
			cur = &Stanza{Kind: KindUnlabeled, LineNo: lineNo}
		}
		if len(cur.Lines) == 0 && cur.Label != "" {
			cur.LineNo = lineNo
		}
		cur.Lines = append(cur.Lines, trim)
	}
	flush()

	if err := scanner.Err(); err != nil {
		errs = append(errs, Error{Line: lineNo, Column: 1, Message: err.Error()})
	}
	return s, errs
}

func kindOf(word string) Kind {
	switch w := strings.ToLower(word); {
	case w == "verse":
		return KindVerse
	case w == "chorus" || w == "refrain":
		return KindChorus
	case w == "bridge":
		return KindBridge
	case strings.HasPrefix(w, "pre"):
		return KindPreChorus
	case w == "tag" || w == "intro" || w == "outro" || w == "ending":
		return KindTag
	}
	return KindUnlabeled
}

// labelOf normalizes "verse","2" to "Verse 2" and "pre-chorus" to "Pre-Chorus".
func labelOf(word, num string) string {
	parts := strings.Split(strings.ToLower(word), "-")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	l := strings.Join(parts, "-")
	if l == "Prechorus" {
		l = "Pre-Chorus"
	}
	if num != "" {
		l += " " + num
	}
	return l
}
