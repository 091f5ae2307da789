/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal.

type DisplayConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	// PreviewScale sizes the operator preview relative to the live display (0 < s <= 1).
	PreviewScale float64 `yaml:"preview_scale"`
}

type RenderConfig struct {
	// MaxChars is the fit budget for multi-verse selections.
	MaxChars int `yaml:"max_chars"`
	// Font files; empty entries fall back to the bundled Go fonts.
	FontRegular    string `yaml:"font_regular"`
	FontBold       string `yaml:"font_bold"`
	FontItalic     string `yaml:"font_italic"`
	FontBoldItalic string `yaml:"font_bold_italic"`
}

type CacheConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Dir      string `yaml:"dir"`
	MaxBytes int64  `yaml:"max_bytes"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Display       DisplayConfig `yaml:"display"`
	Render        RenderConfig  `yaml:"render"`
	Cache         CacheConfig   `yaml:"cache"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Display:       DisplayConfig{Width: 1920, Height: 1080, PreviewScale: 0.25},
		Render:        RenderConfig{MaxChars: 600},
		Cache:         CacheConfig{Enabled: false, Dir: "", MaxBytes: 64 << 20},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvConfigFile     = "LTG_CONFIG"
	EnvDisplayWidth   = "LTG_DISPLAY_WIDTH"
	EnvDisplayHeight  = "LTG_DISPLAY_HEIGHT"
	EnvFitMaxChars    = "LTG_FIT_MAX_CHARS"
	EnvFontRegular    = "LTG_FONT_REGULAR"
	EnvFontBold       = "LTG_FONT_BOLD"
	EnvFontItalic     = "LTG_FONT_ITALIC"
	EnvFontBoldItalic = "LTG_FONT_BOLD_ITALIC"
	EnvCacheEnabled   = "LTG_CACHE_ENABLED"
	EnvCacheDir       = "LTG_CACHE_DIR"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "LTG_LOG_LEVEL"
	EnvLogFormat = "LTG_LOG_FORMAT"
	EnvLogSource = "LTG_LOG_SOURCE"
	EnvLogFile   = "LTG_LOG_FILE"
)

// ConfigPath returns the per-user config file path. LTG_CONFIG wins when set.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigFile)); p != "" {
		return p, nil
	}
	base, err := userDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "config.yaml"), nil
}

// DefaultCacheDir is where the frame cache lives when cache.dir is empty.
func DefaultCacheDir() (string, error) {
	base, err := userDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "cache"), nil
}

func userDir() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "Liturgia")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "Liturgia")
	default: // linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = filepath.Join(xdg, "liturgia")
		} else if home := os.Getenv("HOME"); home != "" {
			base = filepath.Join(home, ".config", "liturgia")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return base, nil
}

// Load reads the user config file (if present), applies defaults, and merges environment overrides.
func Load() (AppConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Defaults()
		applyEnvOverrides(&cfg)
		return cfg, err
	}
	return LoadFrom(path)
}

// LoadFrom is Load with an explicit file path. A missing file is not an error;
// a file that exists but does not parse is.
func LoadFrom(path string) (AppConfig, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			applyEnvOverrides(&cfg)
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	case !errors.Is(err, os.ErrNotExist):
		applyEnvOverrides(&cfg)
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.Display.Width > 0 {
		dst.Display.Width = src.Display.Width
	}
	if src.Display.Height > 0 {
		dst.Display.Height = src.Display.Height
	}
	if src.Display.PreviewScale > 0 && src.Display.PreviewScale <= 1 {
		dst.Display.PreviewScale = src.Display.PreviewScale
	}
	if src.Render.MaxChars > 0 {
		dst.Render.MaxChars = src.Render.MaxChars
	}
	mergeString(&dst.Render.FontRegular, src.Render.FontRegular)
	mergeString(&dst.Render.FontBold, src.Render.FontBold)
	mergeString(&dst.Render.FontItalic, src.Render.FontItalic)
	mergeString(&dst.Render.FontBoldItalic, src.Render.FontBoldItalic)
	// booleans: copy directly from src (file) so user preferences persist
	dst.Cache.Enabled = src.Cache.Enabled
	mergeString(&dst.Cache.Dir, src.Cache.Dir)
	if src.Cache.MaxBytes > 0 {
		dst.Cache.MaxBytes = src.Cache.MaxBytes
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	mergeString(&dst.Logging.File, src.Logging.File)
}

func mergeString(dst *string, src string) {
	if v := strings.TrimSpace(src); v != "" {
		*dst = v
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	envInt(EnvDisplayWidth, &cfg.Display.Width)
	envInt(EnvDisplayHeight, &cfg.Display.Height)
	envInt(EnvFitMaxChars, &cfg.Render.MaxChars)
	envString(EnvFontRegular, &cfg.Render.FontRegular)
	envString(EnvFontBold, &cfg.Render.FontBold)
	envString(EnvFontItalic, &cfg.Render.FontItalic)
	envString(EnvFontBoldItalic, &cfg.Render.FontBoldItalic)
	if v := strings.TrimSpace(os.Getenv(EnvCacheEnabled)); v != "" {
		cfg.Cache.Enabled = parseBool(v)
	}
	envString(EnvCacheDir, &cfg.Cache.Dir)
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = parseBool(v)
	}
	envString(EnvLogFile, &cfg.Logging.File)
}

func envInt(key string, dst *int) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			*dst = n
		}
	}
}

func envString(key string, dst *string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func parseBool(v string) bool {
	lv := strings.ToLower(strings.TrimSpace(v))
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

var envKeys = map[string]string{
	"display.width":           EnvDisplayWidth,
	"display.height":          EnvDisplayHeight,
	"render.max_chars":        EnvFitMaxChars,
	"render.font_regular":     EnvFontRegular,
	"render.font_bold":        EnvFontBold,
	"render.font_italic":      EnvFontItalic,
	"render.font_bold_italic": EnvFontBoldItalic,
	"cache.enabled":           EnvCacheEnabled,
	"cache.dir":               EnvCacheDir,
	"logging.level":           EnvLogLevel,
	"logging.format":          EnvLogFormat,
	"logging.source":          EnvLogSource,
	"logging.file":            EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	env, ok := envKeys[key]
	if !ok || os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}

// ResolvedCacheDir returns cache.dir or the per-user default.
func (c CacheConfig) ResolvedCacheDir() (string, error) {
	if strings.TrimSpace(c.Dir) != "" {
		return c.Dir, nil
	}
	return DefaultCacheDir()
}
