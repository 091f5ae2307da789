/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"liturgia/internal/config"
	"liturgia/internal/crash"
	"liturgia/internal/display"
	"liturgia/internal/domain"
	"liturgia/internal/export"
	applog "liturgia/internal/log"
	"liturgia/internal/render"
	"liturgia/internal/selection"
	"liturgia/internal/song"
	"liturgia/internal/storage"
	"liturgia/internal/textlayout"
	"liturgia/internal/version"
)

// errUsage marks argument errors; they exit with status 2.
var errUsage = errors.New("usage")

func usage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "Liturgia slide renderer")
	_, _ = fmt.Fprintf(w, "Version: %s\n", version.String())
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Usage:")
	_, _ = fmt.Fprintln(w, "  liturgia version|-v|--version                         Show version")
	_, _ = fmt.Fprintln(w, "  liturgia render [flags] <content.json> <out.png> [WxH]  Render one content item")
	_, _ = fmt.Fprintln(w, "  liturgia passage [flags] <passage.json> <out.png> [WxH] Render the selected verses of a passage")
	_, _ = fmt.Fprintln(w, "  liturgia song [flags] <lyrics.txt> <stanza> <out.png> [WxH] Render one stanza (1-based)")
	_, _ = fmt.Fprintln(w, "  liturgia deck [flags] <deck.json> <out.pdf|outdir> [WxH] Export a deck as PDF, or PDF and PNGs into a directory")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Flags:")
	_, _ = fmt.Fprintln(w, "  -mode normal|clear|black   display mode (render, passage, song)")
	_, _ = fmt.Fprintln(w, "  -text-style, -number-style, -reference-style <base64 CSS>")
	_, _ = fmt.Fprintln(w, "  -max-chars N               fit budget for passages")
	_, _ = fmt.Fprintln(w, "  -notes                     print references below deck pages")
	_, _ = fmt.Fprintln(w, "Sizes are WxH or one of 720p, 1080p, 4k, xga.")
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, cfgErr := config.Load()
	applog.Init(applog.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format, AddSource: cfg.Logging.Source, File: cfg.Logging.File})
	l := applog.WithComponent("cli")
	if cfgErr != nil {
		l.Warn("config not loaded; using defaults", slog.Any("err", cfgErr))
	}
	crashDir := ""
	if dir, err := cfg.Cache.ResolvedCacheDir(); err == nil {
		crashDir = filepath.Join(dir, "crash")
	}
	defer crash.Recover(crashDir)

	if len(args) == 0 {
		usage(stderr)
		return 2
	}
	l.Debug("start", slog.String("cmd", args[0]), slog.Int("args", len(args)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch args[0] {
	case "version", "--version", "-v":
		_, _ = fmt.Fprintln(stdout, version.String())
		return 0
	case "help", "-h", "--help":
		usage(stdout)
		return 0
	case "render", "passage", "song", "deck":
		err = runCommand(ctx, cfg, args[0], args[1:], stdout)
	default:
		err = fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		_, _ = fmt.Fprintln(stderr, "Error:", err)
		usage(stderr)
		return 2
	default:
		l.Error("command failed", slog.String("cmd", args[0]), slog.Any("err", err))
		_, _ = fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
}

// options are the flags shared by the rendering commands.
type options struct {
	mode      string
	maxChars  int
	notes     bool
	textStyle string
	numStyle  string
	refStyle  string
}

func runCommand(ctx context.Context, cfg config.AppConfig, cmd string, args []string, stdout io.Writer) error {
	var opt options
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&opt.mode, "mode", "normal", "")
	fs.IntVar(&opt.maxChars, "max-chars", cfg.Render.MaxChars, "")
	fs.BoolVar(&opt.notes, "notes", false, "")
	fs.StringVar(&opt.textStyle, "text-style", "", "")
	fs.StringVar(&opt.numStyle, "number-style", "", "")
	fs.StringVar(&opt.refStyle, "reference-style", "", "")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	mode, err := display.ParseMode(opt.mode)
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	overrides, err := domain.DecodeStyles(opt.textStyle, opt.numStyle, opt.refStyle)
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	pos := fs.Args()
	need := 2
	if cmd == "song" {
		need = 3
	}
	if len(pos) < need || len(pos) > need+1 {
		return fmt.Errorf("%w: %s needs %d arguments and an optional size", errUsage, cmd, need)
	}
	w, h := cfg.Display.Width, cfg.Display.Height
	if len(pos) == need+1 {
		if w, h, err = export.ParseSize(pos[need]); err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
	}

	app, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer app.close()

	kind := domain.KindVerses
	if cmd == "song" {
		kind = domain.KindSongs
	}
	sheet := domain.NewStyleSheet()
	if overrides != (domain.Styles{}) {
		sheet = sheet.WithKind(kind, overrides)
	}

	switch cmd {
	case "render":
		data, err := os.ReadFile(pos[0])
		if err != nil {
			return err
		}
		item, err := domain.DecodeContent(data)
		if err != nil {
			return err
		}
		return app.show(ctx, sheet.Apply(kind, item), w, h, mode, pos[1], stdout)
	case "passage":
		data, err := os.ReadFile(pos[0])
		if err != nil {
			return err
		}
		p, err := domain.DecodePassage(data)
		if err != nil {
			return err
		}
		item, err := selection.BuildPassage(p, p.Selected, opt.maxChars)
		if err != nil {
			return err
		}
		return app.show(ctx, sheet.Apply(kind, item), w, h, mode, pos[1], stdout)
	case "song":
		data, err := os.ReadFile(pos[0])
		if err != nil {
			return err
		}
		s, perrs := song.Parse(string(data))
		for _, pe := range perrs {
			applog.WithComponent("cli").Warn("lyrics", slog.String("file", pos[0]), slog.String("err", pe.Error()))
		}
		n, err := strconv.Atoi(pos[1])
		if err != nil {
			return fmt.Errorf("%w: stanza must be a number: %v", errUsage, err)
		}
		item, err := selection.BuildSong(s, n-1)
		if err != nil {
			return err
		}
		return app.show(ctx, sheet.Apply(kind, item), w, h, mode, pos[2], stdout)
	case "deck":
		data, err := os.ReadFile(pos[0])
		if err != nil {
			return err
		}
		deck, err := domain.DecodeDeck(data)
		if err != nil {
			return err
		}
		for i := range deck.Slides {
			deck.Slides[i] = sheet.Apply(kind, deck.Slides[i])
		}
		r := export.Renderer{Engine: app.engine, Provider: app.provider}
		out := pos[1]
		if strings.EqualFold(filepath.Ext(out), ".pdf") {
			err = r.ExportDeckPDF(ctx, deck, out, export.PDFOptions{Width: w, Height: h, Notes: opt.notes})
		} else {
			err = r.BatchExport(ctx, deck, export.BatchOptions{Width: w, Height: h, Notes: opt.notes, OutDir: out})
		}
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(stdout, "Exported %d slides to %s\n", len(deck.Slides), out)
		return nil
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
}

// app holds the rendering stack built from the configuration.
type app struct {
	engine   *render.Engine
	provider textlayout.Provider
	cache    *storage.FrameCache
}

func newApp(cfg config.AppConfig) (*app, error) {
	l := applog.WithComponent("cli")
	lib, err := textlayout.NewGoFontLibrary()
	if err != nil {
		return nil, fmt.Errorf("load bundled fonts: %w", err)
	}
	const custom = "Custom"
	fonts := []struct {
		path         string
		bold, italic bool
	}{
		{cfg.Render.FontRegular, false, false},
		{cfg.Render.FontBold, true, false},
		{cfg.Render.FontItalic, false, true},
		{cfg.Render.FontBoldItalic, true, true},
	}
	for _, f := range fonts {
		if f.path == "" {
			continue
		}
		if err := lib.LoadTTF(custom, f.bold, f.italic, f.path); err != nil {
			return nil, err
		}
		lib.SetDefaultFamily(custom)
	}
	a := &app{
		engine:   render.NewEngine(render.FileLoader{}),
		provider: textlayout.OTProvider{Lib: lib, Fallback: textlayout.BasicProvider{}},
	}
	if cfg.Cache.Enabled {
		dir, err := cfg.Cache.ResolvedCacheDir()
		if err == nil {
			a.cache, err = storage.OpenFrameCache(dir, cfg.Cache.MaxBytes)
		}
		if err != nil {
			// Rendering works without the cache.
			l.Warn("frame cache unavailable", slog.Any("err", err))
			a.cache = nil
		}
	}
	return a, nil
}

func (a *app) close() {
	if a.cache != nil {
		_ = a.cache.Close()
	}
}

// show renders item on a live display and writes the committed frame.
func (a *app) show(ctx context.Context, item domain.ContentItem, w, h int, mode display.Mode, out string, stdout io.Writer) error {
	var opts []display.Option
	if a.cache != nil {
		opts = append(opts, display.WithCache(a.cache))
	}
	d := display.New("live", a.engine, a.provider, w, h, opts...)
	res := d.Render(ctx, item, mode)
	if res.Err != nil {
		return res.Err
	}
	if err := export.WritePNG(out, d.Frame()); err != nil {
		return err
	}
	src := "rendered"
	if res.Cached {
		src = "cached"
	}
	_, _ = fmt.Fprintf(stdout, "Wrote %s (%dx%d, %s, %s)\n", out, w, h, mode, src)
	return nil
}
