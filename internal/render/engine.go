/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"context"
	"image"
	"image/color"
	"log/slog"
	"strings"

	"liturgia/internal/domain"
	applog "liturgia/internal/log"
	"liturgia/internal/textlayout"
)

var (
	defaultTextColor      = color.Color(color.White)
	defaultSubscriptColor = color.Color(color.NRGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff})
	hintColor             = color.Color(color.NRGBA{R: 255, G: 255, B: 255, A: 153}) // rgba(255,255,255,0.6)
)

// Engine paints content items onto surfaces.
type Engine struct {
	Loader ImageLoader
}

// NewEngine returns an engine loading images with loader (FileLoader if nil).
func NewEngine(loader ImageLoader) *Engine {
	if loader == nil {
		loader = FileLoader{}
	}
	return &Engine{Loader: loader}
}

// Render paints item onto s for a w x h display: background first, then the
// text phase. Failures inside rendering are logged and degrade the frame; the
// only error returned is ctx.Err() when the context ends while an image loads.
func (e *Engine) Render(ctx context.Context, s Surface, item domain.ContentItem, w, h int) error {
	l := applog.WithComponent("render")
	if err := e.paintBackground(ctx, l, s, item, w, h); err != nil {
		return err
	}
	paintText(s, item, w, h)
	l.DebugContext(ctx, "rendered", slog.Int("w", w), slog.Int("h", h), slog.Bool("text", strings.TrimSpace(item.Text) != ""))
	return nil
}

// RenderAsync runs Render on its own goroutine and calls onComplete exactly
// once with its result. s must not be touched by the caller before then.
func (e *Engine) RenderAsync(ctx context.Context, s Surface, item domain.ContentItem, w, h int, onComplete func(error)) {
	go func() {
		err := e.Render(ctx, s, item, w, h)
		if onComplete != nil {
			onComplete(err)
		}
	}()
}

func (e *Engine) paintBackground(ctx context.Context, l *slog.Logger, s Surface, item domain.ContentItem, w, h int) error {
	bounds := image.Rect(0, 0, w, h)
	bg := item.Background
	switch {
	case bg.IsColor():
		fill, err := ParseFill(bg.Color, bounds)
		if err != nil {
			l.WarnContext(ctx, "invalid background color; using black", slog.String("color", bg.Color), slog.String("err", err.Error()))
			fill = image.NewUniform(color.Black)
		}
		s.Clear(color.Black)
		s.Fill(bounds, fill)
		s.Fill(bounds, image.NewUniform(Overlay))
	case bg.IsImage():
		s.Clear(color.Black)
		img, err := e.load(ctx, bg.Path)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.WarnContext(ctx, "background image failed; continuing without it", slog.String("path", bg.Path), slog.String("err", err.Error()))
			return nil
		}
		DrawBackground(s, img, w, h, Placement{Size: bg.Size, Position: bg.Position, Repeat: bg.Repeat})
		s.Fill(bounds, image.NewUniform(Overlay))
	case bg == nil && strings.TrimSpace(item.BackgroundPath) != "":
		s.Clear(color.Black)
		img, err := e.load(ctx, item.BackgroundPath)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.WarnContext(ctx, "background image failed; continuing without it", slog.String("path", item.BackgroundPath), slog.String("err", err.Error()))
			return nil
		}
		DrawFitted(s, img, w, h)
		s.Fill(bounds, image.NewUniform(Overlay))
	default:
		s.Clear(color.Black)
	}
	return nil
}

func (e *Engine) load(ctx context.Context, path string) (image.Image, error) {
	loader := e.Loader
	if loader == nil {
		loader = FileLoader{}
	}
	select {
	case r := <-loader.Load(ctx, path):
		return r.Image, r.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func paintText(s Surface, item domain.ContentItem, w, h int) {
	fw, fh := float64(w), float64(h)
	base := BaseFontRatio * fh
	st := item.Styles
	marginX, marginY := MarginRatio*fw, MarginRatio*fh

	if item.Number != "" {
		f := roleFont(st.Number, NumberScale*base)
		s.DrawText(item.Number, marginX, marginY+NumberScale*base, f, roleColor(st.Number), AlignLeft)
	}

	if strings.TrimSpace(item.Text) != "" {
		paintBody(s, Fit(s, item.Text, w, h, st.Text), st.Text)
	}

	refSize := ReferenceScale * base
	if item.Reference != "" {
		s.DrawText(item.Reference, fw-marginX, fh-marginY, roleFont(st.Reference, refSize), roleColor(st.Reference), AlignRight)
	}
	if item.ShowHint != "" {
		f := textlayout.FontSpec{Size: HintScale * base, Weight: textlayout.WeightRegular}
		s.DrawText(item.ShowHint, fw-marginX, fh-marginY-refSize*LineSpacing, f, hintColor, AlignRight)
	}
}

func paintBody(s Surface, lay Layout, style *domain.TextStyle) {
	textCol := roleColor(style)
	subCol := defaultSubscriptColor
	if style != nil {
		subCol = colorOr(style.SubscriptColor, defaultSubscriptColor)
	}
	size := lay.Font.Size
	numFont := textlayout.FontSpec{Family: lay.Font.Family, Size: size * textlayout.SubscriptScale, Weight: textlayout.WeightRegular}
	for _, line := range lay.Lines {
		x := line.X
		for _, tok := range line.Tokens {
			if tok.IsNumber {
				s.DrawText(tok.Text, x, line.Baseline+SubscriptDrop*size, numFont, subCol, AlignLeft)
			} else {
				s.DrawText(tok.Text, x, line.Baseline, lay.Font.Styled(tok.Bold, tok.Italic), textCol, AlignLeft)
			}
			x += tok.Width
		}
	}
}

func roleFont(st *domain.TextStyle, size float64) textlayout.FontSpec {
	f := textlayout.FontSpec{Size: size, Weight: textlayout.WeightRegular}
	if st != nil {
		f = f.Styled(st.Bold, st.Italic)
	}
	return f
}

func roleColor(st *domain.TextStyle) color.Color {
	if st == nil {
		return defaultTextColor
	}
	return colorOr(st.Color, defaultTextColor)
}
