/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/image/font/gofont/goregular"

	"liturgia/internal/domain"
	applog "liturgia/internal/log"
	"liturgia/internal/version"
)

// pxToPt maps CSS pixels (96 dpi) to PDF points.
const pxToPt = 72.0 / 96.0

// notesFont is the embedded UTF-8 face for reference footers, so Greek or
// Cyrillic references print as written.
const notesFont = "GoRegular"

// PDFOptions controls PDF deck export.
//
// Each slide becomes one page the size of the frame, with the rendered
// frame embedded as a PNG. Notes adds the slide reference as a footer below
// the frame, in the bundled Go Regular font.
type PDFOptions struct {
	Width, Height int // frame size in pixels
	Notes         bool
	Slides        []int // zero-based; empty means all
}

// BuildDeckPDF renders every selected slide of deck into a PDF document.
func (r Renderer) BuildDeckPDF(ctx context.Context, deck domain.Deck, opt PDFOptions) (*gofpdf.Fpdf, error) {
	if len(deck.Slides) == 0 {
		return nil, errors.New("deck has no slides")
	}
	if opt.Width <= 0 || opt.Height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", opt.Width, opt.Height)
	}
	l := applog.WithOperation(applog.WithComponent("export"), "pdf")

	pageW := float64(opt.Width) * pxToPt
	frameH := float64(opt.Height) * pxToPt
	pageH := frameH
	if opt.Notes {
		pageH += 36
	}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: pageW, Ht: pageH},
	})
	title := deck.Title
	if title == "" {
		title = "Slides"
	}
	pdf.SetTitle(title, true)
	pdf.SetCreator("liturgia "+version.String(), true)
	pdf.SetAutoPageBreak(false, 0)
	if opt.Notes {
		pdf.AddUTF8FontFromBytes(notesFont, "", goregular.TTF)
		pdf.SetFont(notesFont, "", 11)
	}

	for _, idx := range slideIndexes(len(deck.Slides), opt.Slides) {
		if idx < 0 || idx >= len(deck.Slides) {
			return nil, fmt.Errorf("slide %d out of range [0,%d)", idx, len(deck.Slides))
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		slide := deck.Slides[idx]
		img, err := r.Frame(ctx, slide, opt.Width, opt.Height)
		if err != nil {
			return nil, fmt.Errorf("render slide %d: %w", idx+1, err)
		}
		var buf bytes.Buffer
		if err := encodePNG(&buf, img); err != nil {
			return nil, fmt.Errorf("slide %d: %w", idx+1, err)
		}
		name := fmt.Sprintf("slide-%d", idx+1)
		imgOpt := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(name, imgOpt, &buf)

		pdf.AddPageFormat("", gofpdf.SizeType{Wd: pageW, Ht: pageH})
		pdf.ImageOptions(name, 0, 0, pageW, frameH, false, imgOpt, 0, "")
		if opt.Notes && slide.Reference != "" {
			pdf.Text(12, frameH+22, slide.Reference)
		}
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("slide %d: %w", idx+1, err)
		}
	}
	l.Debug("deck built", slog.Int("pages", pdf.PageCount()), slog.String("title", title))
	return pdf, nil
}

// ExportDeckPDF renders deck and writes the PDF to outPath.
func (r Renderer) ExportDeckPDF(ctx context.Context, deck domain.Deck, outPath string, opt PDFOptions) error {
	pdf, err := r.BuildDeckPDF(ctx, deck, opt)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func slideIndexes(total int, specific []int) []int {
	if len(specific) == 0 {
		out := make([]int, total)
		for i := range out {
			out[i] = i
		}
		return out
	}
	return specific
}
