/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"strings"
	"sync"
	"time"

	applog "liturgia/internal/log"
)

// DefaultMaxBytes caps the cache when no limit is configured.
const DefaultMaxBytes = 64 << 20

// FrameKey identifies a rendered frame.
type FrameKey struct {
	Content  string // domain.ContentItem.Key()
	Asset    string // background file fingerprint, empty for color backgrounds
	Renderer string // font set and build that painted the frame
	Width    int
	Height   int
	Mode     string
}

// String is the database key. The renderer part is hashed since font
// fingerprints grow with every loaded face.
func (k FrameKey) String() string {
	r := sha256.Sum256([]byte(k.Renderer))
	return fmt.Sprintf("%s/%s/%s/%dx%d/%s", k.Content, k.Asset, hex.EncodeToString(r[:8]), k.Width, k.Height, k.Mode)
}

// Stats summarizes the cache contents.
type Stats struct {
	Frames int
	Bytes  int64
	Hits   int64
}

// FrameCache keeps rendered frames as PNG blobs in SQLite and evicts the
// least recently used ones once the total exceeds MaxBytes.
type FrameCache struct {
	db       *sql.DB
	maxBytes int64

	mu   sync.Mutex
	tick int64 // logical clock for last_used
}

// OpenFrameCache opens (or creates) the cache database in dir. maxBytes <= 0
// selects DefaultMaxBytes.
func OpenFrameCache(dir string, maxBytes int64) (*FrameCache, error) {
	db, err := openDB(dir)
	if err != nil {
		return nil, err
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	c := &FrameCache{db: db, maxBytes: maxBytes}
	if err := db.QueryRow(`SELECT COALESCE(MAX(last_used),0) FROM frames`).Scan(&c.tick); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("read lru clock: %w", err)
	}
	return c, nil
}

// MaxBytes returns the configured cap.
func (c *FrameCache) MaxBytes() int64 { return c.maxBytes }

// Close releases the database.
func (c *FrameCache) Close() error { return c.db.Close() }

func (c *FrameCache) next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tick++
	return c.tick
}

// Get returns the frame stored under key and marks it as recently used.
func (c *FrameCache) Get(ctx context.Context, key FrameKey) (image.Image, bool, error) {
	var blob []byte
	err := c.db.QueryRowContext(ctx, `SELECT png FROM frames WHERE key=?`, key.String()).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query frame: %w", err)
	}
	img, err := png.Decode(bytes.NewReader(blob))
	if err != nil {
		// A corrupt row is dropped and treated as a miss.
		_, _ = c.db.ExecContext(ctx, `DELETE FROM frames WHERE key=?`, key.String())
		applog.WithOperation(applog.WithComponent("storage"), "frame_get").Warn("dropping undecodable frame",
			slog.String("key", key.String()), slog.Any("err", err))
		return nil, false, nil
	}
	if _, err := c.db.ExecContext(ctx, `UPDATE frames SET last_used=?, hits=hits+1 WHERE key=?`, c.next(), key.String()); err != nil {
		return nil, false, fmt.Errorf("touch frame: %w", err)
	}
	return img, true, nil
}

// Put stores img under key, replacing any previous frame, and then evicts
// old frames down to the cap. Frames larger than the cap are not stored.
func (c *FrameCache) Put(ctx context.Context, key FrameKey, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	size := int64(buf.Len())
	if size > c.maxBytes {
		applog.WithOperation(applog.WithComponent("storage"), "frame_put").Debug("frame exceeds cache cap",
			slog.Int64("size", size), slog.Int64("max", c.maxBytes))
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := c.db.ExecContext(ctx, `INSERT INTO frames(key,w,h,mode,png,size,created_at,last_used)
		VALUES(?,?,?,?,?,?,?,?)
		ON CONFLICT(key) DO UPDATE SET png=excluded.png, size=excluded.size, created_at=excluded.created_at, last_used=excluded.last_used`,
		key.String(), key.Width, key.Height, key.Mode, buf.Bytes(), size, now, c.next())
	if err != nil {
		return fmt.Errorf("upsert frame: %w", err)
	}
	return c.Prune(ctx)
}

// Prune deletes least recently used frames until the total size fits the cap.
func (c *FrameCache) Prune(ctx context.Context) error {
	var total int64
	if err := c.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size),0) FROM frames`).Scan(&total); err != nil {
		return fmt.Errorf("sum frame size: %w", err)
	}
	if total <= c.maxBytes {
		return nil
	}
	rows, err := c.db.QueryContext(ctx, `SELECT id, size FROM frames ORDER BY last_used ASC, id ASC`)
	if err != nil {
		return fmt.Errorf("select victims: %w", err)
	}
	var victims []any
	cur := total
	for rows.Next() {
		var id, sz int64
		if err := rows.Scan(&id, &sz); err != nil {
			_ = rows.Close()
			return err
		}
		victims = append(victims, id)
		cur -= sz
		if cur <= c.maxBytes {
			break
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	// The single connection must be released before writing.
	if err := rows.Close(); err != nil {
		return err
	}
	if len(victims) == 0 {
		return nil
	}
	q := `DELETE FROM frames WHERE id IN (` + strings.TrimSuffix(strings.Repeat("?,", len(victims)), ",") + `)`
	if _, err := c.db.ExecContext(ctx, q, victims...); err != nil {
		return fmt.Errorf("evict frames: %w", err)
	}
	applog.WithOperation(applog.WithComponent("storage"), "frame_prune").Debug("evicted frames",
		slog.Int("count", len(victims)), slog.Int64("bytes", total-cur))
	return nil
}

// Stats reports the number of frames, their total size and the hit count.
func (c *FrameCache) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(size),0), COALESCE(SUM(hits),0) FROM frames`).Scan(&s.Frames, &s.Bytes, &s.Hits)
	if err != nil {
		return Stats{}, fmt.Errorf("frame stats: %w", err)
	}
	return s, nil
}

// Clear removes every frame.
func (c *FrameCache) Clear(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM frames`); err != nil {
		return fmt.Errorf("clear frames: %w", err)
	}
	return nil
}
