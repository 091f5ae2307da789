/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package display

import (
	"context"
	"math"
	"sync"

	"liturgia/internal/domain"
	"liturgia/internal/render"
	"liturgia/internal/textlayout"
)

// Presenter drives a preview and a live display from one current content
// item. The preview always shows the content; the live display follows the
// selected mode.
type Presenter struct {
	Preview *Display
	Live    *Display

	// seq orders live requests with mode changes so the newest live
	// generation always carries the current mode.
	seq sync.Mutex

	mu      sync.Mutex
	current domain.ContentItem
	has     bool
	mode    Mode
}

// NewPresenter builds both displays sharing engine and provider. The preview
// runs at scale times the live resolution (at least 1x1).
func NewPresenter(engine *render.Engine, p textlayout.Provider, w, h int, scale float64, opts ...Option) *Presenter {
	pw := max(1, int(math.Round(float64(w)*scale)))
	ph := max(1, int(math.Round(float64(h)*scale)))
	return &Presenter{
		Preview: New("preview", engine, p, pw, ph, opts...),
		Live:    New("live", engine, p, w, h, opts...),
	}
}

// Current returns the content being presented and whether there is any.
func (p *Presenter) Current() (domain.ContentItem, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, p.has
}

// Mode returns the live display mode.
func (p *Presenter) Mode() Mode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode
}

// Show makes item the current content and renders it on both displays.
// onDone receives one Result per display. It may run before Show returns and
// must not call Show, SetMode or Resize synchronously.
func (p *Presenter) Show(ctx context.Context, item domain.ContentItem, onDone func(*Display, Result)) {
	p.seq.Lock()
	defer p.seq.Unlock()
	p.mu.Lock()
	p.current, p.has = item, true
	mode := p.mode
	p.mu.Unlock()

	p.Preview.Show(ctx, item, ModeNormal, bind(p.Preview, onDone))
	p.Live.Show(ctx, item, mode, bind(p.Live, onDone))
}

// SetMode switches the live display and re-presents the current content.
// With no current content only the mode is stored, except for black which
// is shown at once.
func (p *Presenter) SetMode(ctx context.Context, mode Mode, onDone func(*Display, Result)) {
	p.seq.Lock()
	defer p.seq.Unlock()
	p.mu.Lock()
	p.mode = mode
	item, has := p.current, p.has
	p.mu.Unlock()

	if !has && mode != ModeBlack {
		return
	}
	p.Live.Show(ctx, item, mode, bind(p.Live, onDone))
}

// Resize changes the live resolution, keeps the preview at the same scale
// and re-presents the current content.
func (p *Presenter) Resize(ctx context.Context, w, h int, scale float64, onDone func(*Display, Result)) {
	p.Live.Resize(w, h)
	p.Preview.Resize(max(1, int(math.Round(float64(w)*scale))), max(1, int(math.Round(float64(h)*scale))))
	if item, ok := p.Current(); ok {
		p.Show(ctx, item, onDone)
	}
}

func bind(d *Display, fn func(*Display, Result)) func(Result) {
	if fn == nil {
		return nil
	}
	return func(r Result) { fn(d, r) }
}
