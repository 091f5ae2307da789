/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"strings"

	"liturgia/internal/domain"
	"liturgia/internal/textlayout"
)

// Slide geometry, as fractions of the display size unless noted.
const (
	BaseFontRatio    = 0.08 // initial body font / height
	MaxFontRatio     = 0.15 // grow ceiling / height
	WrapWidthRatio   = 0.9
	AvailHeightRatio = 0.8
	GrowFill         = 0.85 // grow while the block stays under this share of the available height
	GrowStep         = 4.0
	ShrinkStep       = 2.0
	MinFontSize      = 20.0 // px
	LineSpacing      = 1.2
	MarginRatio      = 0.03
	NumberScale      = 0.6 // slide number font / base font
	ReferenceScale   = 0.7
	HintScale        = 0.4
	SubscriptDrop    = 0.2 // subscript baseline offset / font size
)

// Baseline of a line box sits this far below its top, in font sizes.
const baselineRatio = 0.9

// PlacedLine is a wrapped line with its drawing origin.
type PlacedLine struct {
	textlayout.WrappedLine
	X        float64 // left edge; lines are centered independently
	Baseline float64
}

// Layout is the result of fitting body text into a display.
type Layout struct {
	Font       textlayout.FontSpec // body font at the fitted size
	LineHeight float64
	Lines      []PlacedLine
	// Iteration counts of the search, for diagnostics.
	GrowSteps, ShrinkSteps int
}

// Fit parses, wraps and sizes text for a w x h display. It only measures
// through m and is deterministic for a deterministic measurer. style may be
// nil; its Bold and Italic flags force emphasis on every word.
func Fit(m textlayout.Measurer, text string, w, h int, style *domain.TextStyle) Layout {
	base := textlayout.FontSpec{Weight: textlayout.WeightRegular}
	if style != nil {
		base = base.Styled(style.Bold, style.Italic)
	}
	fh := float64(h)
	maxWidth := WrapWidthRatio * float64(w)
	avail := AvailHeightRatio * fh

	var sources [][]textlayout.Segment
	for _, line := range strings.Split(text, "\n") {
		if segs := textlayout.ParseStyledSegments(line); len(segs) > 0 {
			sources = append(sources, segs)
		}
	}
	wrapAll := func(size float64) []textlayout.WrappedLine {
		var out []textlayout.WrappedLine
		f := base.WithSize(size)
		for _, segs := range sources {
			out = append(out, textlayout.Wrap(m, segs, maxWidth, f)...)
		}
		return out
	}
	height := func(n int, size float64) float64 { return float64(n) * size * LineSpacing }

	size := BaseFontRatio * fh
	lay := Layout{}
	if len(sources) == 0 {
		lay.Font = base.WithSize(size)
		lay.LineHeight = size * LineSpacing
		return lay
	}

	lines := wrapAll(size)
	for {
		cand := size + GrowStep
		cl := wrapAll(cand)
		if height(len(cl), cand) < GrowFill*avail && cand < MaxFontRatio*fh {
			size, lines = cand, cl
			lay.GrowSteps++
			continue
		}
		break
	}
	for height(len(lines), size) > avail && size > MinFontSize {
		size -= ShrinkStep
		lines = wrapAll(size)
		lay.ShrinkSteps++
	}

	lay.Font = base.WithSize(size)
	lay.LineHeight = size * LineSpacing
	top := fh/2 - height(len(lines), size)/2
	cx := float64(w) / 2
	lay.Lines = make([]PlacedLine, len(lines))
	for i, l := range lines {
		lay.Lines[i] = PlacedLine{
			WrappedLine: l,
			X:           cx - l.Width/2,
			Baseline:    top + float64(i)*lay.LineHeight + baselineRatio*size,
		}
	}
	return lay
}
