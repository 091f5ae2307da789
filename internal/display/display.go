/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package display owns the frames shown on preview and live outputs.
//
// Every request gets a generation number. Renders paint an off-screen canvas
// and their frame is committed only if no newer request arrived meanwhile, so
// a slow image load can never overwrite fresher content.
package display

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"os"
	"strings"
	"sync"

	"liturgia/internal/domain"
	applog "liturgia/internal/log"
	"liturgia/internal/render"
	"liturgia/internal/storage"
	"liturgia/internal/textlayout"
	"liturgia/internal/version"
)

// Mode selects what a display shows for the current content.
type Mode int

const (
	ModeNormal Mode = iota // background and text
	ModeClear              // background only
	ModeBlack              // solid black
)

func (m Mode) String() string {
	switch m {
	case ModeClear:
		return "clear"
	case ModeBlack:
		return "black"
	}
	return "normal"
}

// ParseMode accepts "normal", "clear" or "black" (case-insensitive).
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal":
		return ModeNormal, nil
	case "clear":
		return ModeClear, nil
	case "black":
		return ModeBlack, nil
	}
	return ModeNormal, fmt.Errorf("unknown display mode %q", s)
}

// Result reports the outcome of one request.
type Result struct {
	Generation uint64
	Committed  bool // false when a newer request superseded this one
	Cached     bool // frame came from the frame cache
	Err        error
}

// Cache stores rendered frames. storage.FrameCache implements it.
type Cache interface {
	Get(ctx context.Context, key storage.FrameKey) (image.Image, bool, error)
	Put(ctx context.Context, key storage.FrameKey, img image.Image) error
}

// Display is one output surface (preview or live).
type Display struct {
	name     string
	engine   *render.Engine
	provider textlayout.Provider
	cache    Cache
	renderer string // provider fingerprint plus build, empty when unknown

	mu     sync.Mutex
	w, h   int
	gen    uint64
	frame  image.Image
	commit func(gen uint64, frame image.Image)
}

// Option configures a Display.
type Option func(*Display)

// WithCache makes the display reuse frames from c.
func WithCache(c Cache) Option { return func(d *Display) { d.cache = c } }

// WithCommitHook calls fn with every committed frame, in commit order. fn
// runs while the display is locked and must not call back into it.
func WithCommitHook(fn func(gen uint64, frame image.Image)) Option {
	return func(d *Display) { d.commit = fn }
}

// New creates a display of w x h pixels.
func New(name string, engine *render.Engine, p textlayout.Provider, w, h int, opts ...Option) *Display {
	if engine == nil {
		engine = render.NewEngine(nil)
	}
	d := &Display{name: name, engine: engine, provider: p, w: w, h: h}
	if fp, ok := textlayout.FingerprintOf(p); ok {
		d.renderer = fp + "@" + version.String()
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func (d *Display) Name() string { return d.name }

// Size returns the current resolution.
func (d *Display) Size() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.w, d.h
}

// Resize changes the resolution for subsequent requests. It does not
// re-render; callers show the current content again.
func (d *Display) Resize(w, h int) {
	d.mu.Lock()
	d.w, d.h = w, h
	d.mu.Unlock()
}

// Frame returns the last committed frame, or nil before the first commit.
// Frames are never modified after commit.
func (d *Display) Frame() image.Image {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frame
}

// Generation returns the generation of the newest request.
func (d *Display) Generation() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gen
}

// Show starts presenting item in mode and returns the request's generation.
// onDone, if set, is called exactly once; it may run on another goroutine.
// Black mode commits a flat fill without running the fit engine. Clear mode
// renders the item with its text removed.
func (d *Display) Show(ctx context.Context, item domain.ContentItem, mode Mode, onDone func(Result)) uint64 {
	d.mu.Lock()
	d.gen++
	gen := d.gen
	w, h := d.w, d.h
	d.mu.Unlock()

	l := applog.WithGeneration(applog.WithComponent("display"), gen).With(slog.String("display", d.name), slog.String("mode", mode.String()))
	done := func(r Result) {
		if onDone != nil {
			onDone(r)
		}
	}

	if mode == ModeBlack {
		img := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
		done(Result{Generation: gen, Committed: d.tryCommit(gen, img)})
		return gen
	}
	if mode == ModeClear {
		item = item.Blanked()
	}

	key, cacheable := d.cacheKey(item, w, h, mode)
	if cacheable {
		if img, ok, err := d.cache.Get(ctx, key); err != nil {
			l.Warn("frame cache read failed", slog.String("err", err.Error()))
		} else if ok {
			done(Result{Generation: gen, Committed: d.tryCommit(gen, img), Cached: true})
			return gen
		}
	}

	canvas := render.NewCanvas(w, h, d.provider)
	rctx := applog.ContextWithGeneration(ctx, gen)
	d.engine.RenderAsync(rctx, canvas, item, w, h, func(err error) {
		if err != nil {
			l.Debug("render aborted", slog.String("err", err.Error()))
			done(Result{Generation: gen, Err: err})
			return
		}
		committed := d.tryCommit(gen, canvas.Image())
		if !committed {
			l.Debug("stale render discarded", slog.Uint64("current", d.Generation()))
		}
		if cacheable {
			if err := d.cache.Put(ctx, key, canvas.Image()); err != nil {
				l.Warn("frame cache write failed", slog.String("err", err.Error()))
			}
		}
		done(Result{Generation: gen, Committed: committed})
	})
	return gen
}

// Render is the blocking form of Show.
func (d *Display) Render(ctx context.Context, item domain.ContentItem, mode Mode) Result {
	ch := make(chan Result, 1)
	d.Show(ctx, item, mode, func(r Result) { ch <- r })
	return <-ch
}

func (d *Display) tryCommit(gen uint64, frame image.Image) bool {
	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return false
	}
	d.frame = frame
	hook := d.commit
	// The hook runs under the lock so commits are observed in order.
	if hook != nil {
		hook(gen, frame)
	}
	d.mu.Unlock()
	return true
}

// cacheKey derives the frame cache key. Items whose background image cannot
// be stat'ed are not cached; the file's size and mtime are part of the key so
// edits on disk invalidate old frames. Displays whose provider cannot name
// its fonts never use the cache.
func (d *Display) cacheKey(item domain.ContentItem, w, h int, mode Mode) (storage.FrameKey, bool) {
	if d.cache == nil || d.renderer == "" {
		return storage.FrameKey{}, false
	}
	path := item.BackgroundPath
	if item.Background != nil {
		path = ""
		if item.Background.IsImage() {
			path = item.Background.Path
		}
	}
	asset := ""
	if path != "" {
		fi, err := os.Stat(path)
		if err != nil {
			return storage.FrameKey{}, false
		}
		asset = fmt.Sprintf("%d:%d", fi.Size(), fi.ModTime().UnixNano())
	}
	return storage.FrameKey{Content: item.Key(), Asset: asset, Renderer: d.renderer, Width: w, Height: h, Mode: mode.String()}, true
}
