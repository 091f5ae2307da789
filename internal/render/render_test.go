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
	"errors"
	"image"
	"image/color"
	"math"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"liturgia/internal/domain"
	"liturgia/internal/textlayout"
)

type drawCall struct {
	op    string
	text  string
	x, y  float64
	font  textlayout.FontSpec
	col   color.Color
	align Align
	rect  image.Rectangle
	src   image.Image
}

// recorder is a Surface that remembers what was painted.
type recorder struct {
	w, h  int
	m     textlayout.FixedMeasurer
	calls []drawCall
}

func newRecorder(w, h int) *recorder { return &recorder{w: w, h: h, m: textlayout.FixedMeasurer{PerRune: 0.5}} }

func (r *recorder) Size() (int, int) { return r.w, r.h }
func (r *recorder) MeasureText(text string, f textlayout.FontSpec) float64 {
	return r.m.MeasureText(text, f)
}
func (r *recorder) Clear(c color.Color) { r.calls = append(r.calls, drawCall{op: "clear", col: c}) }
func (r *recorder) Fill(rect image.Rectangle, src image.Image) {
	r.calls = append(r.calls, drawCall{op: "fill", rect: rect, src: src})
}
func (r *recorder) DrawImage(img image.Image, dst image.Rectangle) {
	r.calls = append(r.calls, drawCall{op: "image", rect: dst, src: img})
}
func (r *recorder) DrawText(text string, x, y float64, f textlayout.FontSpec, c color.Color, a Align) {
	r.calls = append(r.calls, drawCall{op: "text", text: text, x: x, y: y, font: f, col: c, align: a})
}

func (r *recorder) ops() string {
	var b []string
	for _, c := range r.calls {
		b = append(b, c.op)
	}
	return strings.Join(b, ",")
}

func (r *recorder) text(s string) (drawCall, bool) {
	for _, c := range r.calls {
		if c.op == "text" && c.text == s {
			return c, true
		}
	}
	return drawCall{}, false
}

type stubLoader struct {
	img   image.Image
	err   error
	calls atomic.Int32
}

func (l *stubLoader) Load(_ context.Context, _ string) <-chan ImageResult {
	l.calls.Add(1)
	ch := make(chan ImageResult, 1)
	ch <- ImageResult{Image: l.img, Err: l.err}
	return ch
}

// blockingLoader never delivers.
type blockingLoader struct{}

func (blockingLoader) Load(context.Context, string) <-chan ImageResult { return make(chan ImageResult) }

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func sameColor(a, b color.Color) bool {
	r1, g1, b1, a1 := a.RGBA()
	r2, g2, b2, a2 := b.RGBA()
	return r1 == r2 && g1 == g2 && b1 == b2 && a1 == a2
}

func TestRender_ColorBackgroundThenOverlayThenText(t *testing.T) {
	r := newRecorder(1920, 1080)
	item := domain.ContentItem{
		Number:     "3",
		Text:       "And God said, Let there be light",
		Reference:  "Genesis 1:3",
		Background: &domain.BackgroundSpec{Type: domain.BackgroundColor, Color: "#203040"},
	}
	if err := NewEngine(&stubLoader{}).Render(context.Background(), r, item, 1920, 1080); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.HasPrefix(r.ops(), "clear,fill,fill,text") {
		t.Fatalf("unexpected paint order: %s", r.ops())
	}
	overlay := r.calls[2].src.At(0, 0)
	if !sameColor(overlay, Overlay) {
		t.Fatalf("second fill should be the overlay, got %v", overlay)
	}

	base := 0.08 * 1080
	num, ok := r.text("3")
	if !ok {
		t.Fatalf("number not drawn")
	}
	if !near(num.x, 0.03*1920) || !near(num.y, 0.03*1080+0.6*base) || !near(num.font.Size, 0.6*base) {
		t.Fatalf("number placement: %+v", num)
	}
	ref, ok := r.text("Genesis 1:3")
	if !ok || ref.align != AlignRight || !near(ref.x, 1920-0.03*1920) || !near(ref.font.Size, 0.7*base) {
		t.Fatalf("reference placement: %+v", ref)
	}
	if !sameColor(ref.col, color.White) {
		t.Fatalf("reference should default to white, got %v", ref.col)
	}
}

func TestRender_HintSitsAboveReference(t *testing.T) {
	r := newRecorder(1000, 1000)
	item := domain.ContentItem{Text: "x", Reference: "Psalm 23:1-3", ShowHint: "Showing 3 of 5 selected"}
	_ = NewEngine(&stubLoader{}).Render(context.Background(), r, item, 1000, 1000)
	ref, _ := r.text("Psalm 23:1-3")
	hint, ok := r.text("Showing 3 of 5 selected")
	if !ok {
		t.Fatalf("hint not drawn")
	}
	if hint.align != AlignRight || hint.y >= ref.y || !near(hint.font.Size, 0.4*80) {
		t.Fatalf("hint placement: %+v (reference %+v)", hint, ref)
	}
	if !sameColor(hint.col, color.NRGBA{R: 255, G: 255, B: 255, A: 153}) {
		t.Fatalf("hint color: %v", hint.col)
	}
}

func TestRender_ImageFailureIsNotFatal(t *testing.T) {
	r := newRecorder(800, 600)
	item := domain.ContentItem{
		Text:       "Be still, and know",
		Background: &domain.BackgroundSpec{Type: domain.BackgroundJPG, Path: "/missing.jpg"},
	}
	loader := &stubLoader{err: errors.New("no such file")}
	if err := NewEngine(loader).Render(context.Background(), r, item, 800, 600); err != nil {
		t.Fatalf("image failure must not surface: %v", err)
	}
	if loader.calls.Load() != 1 {
		t.Fatalf("loader calls = %d", loader.calls.Load())
	}
	for _, c := range r.calls {
		if c.op == "image" || c.op == "fill" {
			t.Fatalf("no background expected after failure, got %s", c.op)
		}
	}
	if _, ok := r.text("Be "); !ok {
		t.Fatalf("text phase should still run: %s", r.ops())
	}
}

func TestRender_ImageBackgroundDrawnWithOverlay(t *testing.T) {
	r := newRecorder(200, 100)
	item := domain.ContentItem{Background: &domain.BackgroundSpec{Type: domain.BackgroundPNG, Path: "bg.png", Size: "contain"}}
	loader := &stubLoader{img: image.NewRGBA(image.Rect(0, 0, 50, 50))}
	if err := NewEngine(loader).Render(context.Background(), r, item, 200, 100); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := r.ops(); got != "clear,image,fill" {
		t.Fatalf("ops = %s", got)
	}
	if want := image.Rect(50, 0, 150, 100); r.calls[1].rect != want {
		t.Fatalf("contain placement = %v, want %v", r.calls[1].rect, want)
	}
}

func TestRender_LegacyPathIsAspectFitted(t *testing.T) {
	r := newRecorder(200, 200)
	item := domain.ContentItem{BackgroundPath: "old.jpg"}
	loader := &stubLoader{img: image.NewRGBA(image.Rect(0, 0, 100, 50))}
	_ = NewEngine(loader).Render(context.Background(), r, item, 200, 200)
	if got := r.ops(); got != "clear,image,fill" {
		t.Fatalf("ops = %s", got)
	}
	if want := image.Rect(0, 50, 200, 150); r.calls[1].rect != want {
		t.Fatalf("fitted placement = %v, want %v", r.calls[1].rect, want)
	}
}

func TestRender_NoBackgroundClearsToBlack(t *testing.T) {
	r := newRecorder(100, 100)
	_ = NewEngine(nil).Render(context.Background(), r, domain.ContentItem{}, 100, 100)
	if r.ops() != "clear" || !sameColor(r.calls[0].col, color.Black) {
		t.Fatalf("expected a single black clear, got %s", r.ops())
	}
}

func TestRender_SubscriptNumbers(t *testing.T) {
	r := newRecorder(1920, 1080)
	item := domain.ContentItem{
		Text:   "1  In the beginning",
		Styles: domain.Styles{Text: &domain.TextStyle{SubscriptColor: "gold"}},
	}
	_ = NewEngine(nil).Render(context.Background(), r, item, 1920, 1080)
	num, ok := r.text("1 ")
	if !ok {
		t.Fatalf("subscript not drawn: %+v", r.calls)
	}
	word, _ := r.text("In ")
	size := word.font.Size
	if !near(num.font.Size, size*textlayout.SubscriptScale) {
		t.Fatalf("subscript size %v for body %v", num.font.Size, size)
	}
	if !near(num.y-word.y, 0.2*size) {
		t.Fatalf("subscript offset = %v, want %v", num.y-word.y, 0.2*size)
	}
	if !sameColor(num.col, color.RGBA{R: 255, G: 215, A: 255}) {
		t.Fatalf("subscript color = %v", num.col)
	}
	if word.x <= num.x {
		t.Fatalf("words follow the number left to right")
	}
}

func TestRender_StyleForcesEmphasis(t *testing.T) {
	r := newRecorder(1920, 1080)
	item := domain.ContentItem{Text: "plain words", Styles: domain.Styles{Text: &domain.TextStyle{Bold: true, Italic: true, Color: "#ff0000"}}}
	_ = NewEngine(nil).Render(context.Background(), r, item, 1920, 1080)
	w, ok := r.text("plain ")
	if !ok || !w.font.IsBold() || !w.font.Italic {
		t.Fatalf("expected bold italic word, got %+v", w)
	}
	if !sameColor(w.col, color.NRGBA{R: 255, A: 255}) {
		t.Fatalf("text color = %v", w.col)
	}
}

func TestRenderAsync_CompletesOnce(t *testing.T) {
	r := newRecorder(320, 240)
	item := domain.ContentItem{Text: "Amen", Background: &domain.BackgroundSpec{Type: "PNG", Path: "bg.png"}}
	loader := &stubLoader{img: image.NewRGBA(image.Rect(0, 0, 8, 8))}
	var n atomic.Int32
	done := make(chan error, 2)
	NewEngine(loader).RenderAsync(context.Background(), r, item, 320, 240, func(err error) {
		n.Add(1)
		done <- err
	})
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("onComplete never fired")
	}
	if _, ok := r.text("Amen"); !ok {
		t.Fatalf("text should be painted before completion")
	}
	time.Sleep(10 * time.Millisecond)
	if n.Load() != 1 {
		t.Fatalf("onComplete fired %d times", n.Load())
	}
}

func TestRenderAsync_CanceledWhileLoading(t *testing.T) {
	r := newRecorder(320, 240)
	item := domain.ContentItem{Text: "Amen", Background: &domain.BackgroundSpec{Type: "JPG", Path: "slow.jpg"}}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	NewEngine(blockingLoader{}).RenderAsync(ctx, r, item, 320, 240, func(err error) { done <- err })
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("want context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("onComplete never fired")
	}
}
