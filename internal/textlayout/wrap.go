/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

// SubscriptScale is the size of inline verse numbers relative to the body font.
const SubscriptScale = 0.6

// Token is one placed unit of a wrapped line.
type Token struct {
	Text     string
	IsNumber bool
	Bold     bool
	Italic   bool
	Width    float64
}

// WrappedLine is a run of tokens that fits the wrap width, except a line
// holding a single oversized token.
type WrappedLine struct {
	Tokens []Token
	Width  float64
}

// WrapTextWithSubscripts wraps segments at baseFontSize in the measurer's default family.
func WrapTextWithSubscripts(m Measurer, segs []Segment, maxWidth, baseFontSize float64) []WrappedLine {
	return Wrap(m, segs, maxWidth, FontSpec{Size: baseFontSize, Weight: WeightRegular})
}

// Wrap packs tokens greedily into lines no wider than maxWidth. Verse numbers
// become one atomic token ("12 ") measured at SubscriptScale of base.Size.
// Prose segments use their Words, parsing them first when missing. A token is
// never split; one wider than maxWidth gets a line of its own.
func Wrap(m Measurer, segs []Segment, maxWidth float64, base FontSpec) []WrappedLine {
	numFont := base.WithSize(base.Size * SubscriptScale)
	numFont.Weight = WeightRegular
	numFont.Italic = false

	var lines []WrappedLine
	var cur WrappedLine
	place := func(t Token) {
		if len(cur.Tokens) > 0 && cur.Width+t.Width > maxWidth {
			lines = append(lines, cur)
			cur = WrappedLine{}
		}
		cur.Tokens = append(cur.Tokens, t)
		cur.Width += t.Width
	}

	for _, seg := range segs {
		if seg.IsNumber {
			text := seg.Text + " "
			place(Token{Text: text, IsNumber: true, Width: m.MeasureText(text, numFont)})
			continue
		}
		words := seg.Words
		if words == nil {
			words = ParseInlineMarkdownWords(seg.Text)
		}
		for _, w := range words {
			f := base.Styled(w.Bold, w.Italic)
			place(Token{Text: w.Text, Bold: w.Bold, Italic: w.Italic, Width: m.MeasureText(w.Text, f)})
		}
	}
	if len(cur.Tokens) > 0 {
		lines = append(lines, cur)
	}
	return lines
}
