/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"liturgia/internal/domain"
)

// PresetName represents a named output resolution.
type PresetName string

const (
	PresetHD  PresetName = "720p"
	PresetFHD PresetName = "1080p"
	PresetUHD PresetName = "4k"
	PresetXGA PresetName = "xga" // 4:3 projectors
)

var presetSizes = map[PresetName][2]int{
	PresetHD:  {1280, 720},
	PresetFHD: {1920, 1080},
	PresetUHD: {3840, 2160},
	PresetXGA: {1024, 768},
}

// ParseSize accepts "WxH" or a preset name.
func ParseSize(s string) (int, int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if sz, ok := presetSizes[PresetName(s)]; ok {
		return sz[0], sz[1], nil
	}
	ws, hs, ok := strings.Cut(s, "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid size %q (want WxH or one of 720p, 1080p, 4k, xga)", s)
	}
	w, err1 := strconv.Atoi(ws)
	h, err2 := strconv.Atoi(hs)
	if err1 != nil || err2 != nil || w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("invalid size %q", s)
	}
	return w, h, nil
}

// BatchOptions controls exporting a deck into several formats at once.
//
// Path semantics:
//   - PDF output is deck.pdf in OutDir.
//   - PNG output is slide-<n>.png in the png/ subfolder of OutDir.
type BatchOptions struct {
	Formats       []string // allowed: pdf, png; empty means both
	Width, Height int
	Notes         bool
	OutDir        string
}

// BatchExport renders deck into every requested format.
func (r Renderer) BatchExport(ctx context.Context, deck domain.Deck, opt BatchOptions) error {
	if len(deck.Slides) == 0 {
		return fmt.Errorf("deck has no slides")
	}
	formats := opt.Formats
	if len(formats) == 0 {
		formats = []string{"pdf", "png"}
	}
	for _, f := range formats {
		switch strings.ToLower(strings.TrimSpace(f)) {
		case "pdf":
			out := filepath.Join(opt.OutDir, "deck.pdf")
			po := PDFOptions{Width: opt.Width, Height: opt.Height, Notes: opt.Notes}
			if err := r.ExportDeckPDF(ctx, deck, out, po); err != nil {
				return fmt.Errorf("pdf: %w", err)
			}
		case "png":
			for i, slide := range deck.Slides {
				out := filepath.Join(opt.OutDir, "png", fmt.Sprintf("slide-%d.png", i+1))
				if err := r.RenderPNG(ctx, slide, opt.Width, opt.Height, out); err != nil {
					return fmt.Errorf("png slide %d: %w", i+1, err)
				}
			}
		default:
			return fmt.Errorf("unknown format: %s", f)
		}
	}
	return nil
}
