/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package song

import (
	"fmt"
	"strings"
)

// Song is a parsed lyric sheet: metadata plus the stanzas in sheet order.
type Song struct {
	Title     string
	Author    string
	Copyright string
	CCLI      string
	Stanzas   []Stanza
}

// Kind classifies a stanza by its label.

type Kind int

const (
	KindUnlabeled Kind = iota
	KindVerse
	KindChorus
	KindBridge
	KindPreChorus
	KindTag
)

// Stanza is one projectable block of lyrics.
// Label keeps the heading as written ("Verse 2", "Chorus"); it is empty when
// the sheet had none.
type Stanza struct {
	Kind   Kind
	Label  string
	Lines  []string
	LineNo int // 1-based line of the first lyric line
}

// Text joins the stanza lines with newlines, the form the renderer expects.
func (st Stanza) Text() string { return strings.Join(st.Lines, "\n") }

// Name returns the label, or "Stanza n" for unlabeled stanzas (n is 1-based).
func (st Stanza) Name(n int) string {
	if st.Label != "" {
		return st.Label
	}
	return fmt.Sprintf("Stanza %d", n)
}

// Credit is the attribution line shown with the lyrics: "Title", or
// "Title (Author)" when the author is known.
func (s Song) Credit() string {
	t := strings.TrimSpace(s.Title)
	a := strings.TrimSpace(s.Author)
	switch {
	case t == "":
		return a
	case a == "":
		return t
	}
	return t + " (" + a + ")"
}

// Error represents a parse error with position context.

type Error struct {
	Line    int
	Column  int
	Message string
}

func (e Error) Error() string { return fmt.Sprintf("line %d:%d: %s", e.Line, e.Column, e.Message) }
