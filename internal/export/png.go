/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export writes rendered slides to PNG files and PDF decks.
package export

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"liturgia/internal/domain"
	"liturgia/internal/render"
	"liturgia/internal/textlayout"
)

// Renderer bundles what is needed to turn content into frames.
type Renderer struct {
	Engine   *render.Engine
	Provider textlayout.Provider
}

// Frame renders item at w x h and returns the pixels.
func (r Renderer) Frame(ctx context.Context, item domain.ContentItem, w, h int) (*image.RGBA, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", w, h)
	}
	engine := r.Engine
	if engine == nil {
		engine = render.NewEngine(nil)
	}
	c := render.NewCanvas(w, h, r.Provider)
	if err := engine.Render(ctx, c, item, w, h); err != nil {
		return nil, err
	}
	return c.Image(), nil
}

// RenderPNG renders item and writes it to path.
func (r Renderer) RenderPNG(ctx context.Context, item domain.ContentItem, w, h int, path string) error {
	img, err := r.Frame(ctx, item, w, h)
	if err != nil {
		return err
	}
	return WritePNG(path, img)
}

// WritePNG encodes img to path, creating the parent directory.
func WritePNG(path string, img image.Image) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure out dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := encodePNG(f, img); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close png: %w", err)
	}
	return nil
}

func encodePNG(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
