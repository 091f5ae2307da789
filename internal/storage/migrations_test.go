/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// TestMigrations_UpgradeV1ToV2 ensures that a schema 1 cache gains the hit counter and keeps its frames.
func TestMigrations_UpgradeV1ToV2(t *testing.T) {
	dir := t.TempDir()
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(2000)", filepath.ToSlash(DBPath(dir)))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT NOT NULL);`,
		`CREATE TABLE IF NOT EXISTS version (id INTEGER PRIMARY KEY CHECK(id=1), schema INTEGER NOT NULL, app TEXT, created_at TEXT NOT NULL, updated_at TEXT NOT NULL);`,
		`INSERT INTO version(id, schema, app, created_at, updated_at) VALUES(1, 1, 'test', '2020-01-01T00:00:00Z', '2020-01-01T00:00:00Z');`,
		`CREATE TABLE frames (id INTEGER PRIMARY KEY, key TEXT NOT NULL UNIQUE, w INTEGER NOT NULL, h INTEGER NOT NULL, mode TEXT NOT NULL, png BLOB NOT NULL, size INTEGER NOT NULL, created_at TEXT NOT NULL, last_used INTEGER NOT NULL DEFAULT 0);`,
		`INSERT INTO frames(key,w,h,mode,png,size,created_at,last_used) VALUES('k',1,1,'normal',x'00',1,'2020-01-01T00:00:00Z',7);`,
	}
	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			t.Fatalf("seed v1 schema: %v (q=%s)", err, q)
		}
	}
	db.Close()

	mdb, err := openDB(dir)
	if err != nil {
		t.Fatalf("openDB: %v", err)
	}
	defer mdb.Close()
	var schema int
	if err := mdb.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&schema); err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if schema != 2 {
		t.Fatalf("expected schema 2 after migration, got %d", schema)
	}
	var hits, used int64
	if err := mdb.QueryRowContext(ctx, `SELECT hits, last_used FROM frames WHERE key='k'`).Scan(&hits, &used); err != nil {
		t.Fatalf("read migrated row: %v", err)
	}
	if hits != 0 || used != 7 {
		t.Fatalf("unexpected migrated row hits=%d last_used=%d", hits, used)
	}
}

func TestMigrations_NewerSchemaIsLeftAlone(t *testing.T) {
	dir := t.TempDir()
	db, err := openDB(dir)
	if err != nil {
		t.Fatalf("openDB: %v", err)
	}
	if _, err := db.Exec(`UPDATE version SET schema=99 WHERE id=1`); err != nil {
		t.Fatalf("bump schema: %v", err)
	}
	db.Close()

	db, err = openDB(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	var schema int
	if err := db.QueryRow(`SELECT schema FROM version WHERE id=1`).Scan(&schema); err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if schema != 99 {
		t.Fatalf("schema must not be downgraded, got %d", schema)
	}
}
