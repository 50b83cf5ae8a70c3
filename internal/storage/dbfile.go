// Copyright 2025 Relascope Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gofrs/flock"
	_ "github.com/tursodatabase/go-libsql"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"relascope/internal/common"
)

// DB is an open relascope inventory database. One scan or reconciliation
// operation owns the database at a time; a sidecar flock enforces the
// exclusive ownership across processes, so a second concurrent invocation
// fails fast instead of interleaving transactions.
type DB struct {
	path  string
	sqlDB *sql.DB
	bunDB *bun.DB
	lock  *flock.Flock
}

// Open opens (creating if necessary) the inventory database at path.
func Open(path string) (*DB, error) {
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire database lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%s: %w", path, common.ErrLocked)
	}

	sqlDB, err := sql.Open("libsql", BuildDSN(path))
	if err != nil {
		lock.Unlock()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Apply PRAGMAs explicitly; libsql ignores DSN-based _pragma parameters.
	if err := applyPragmas(sqlDB); err != nil {
		sqlDB.Close()
		lock.Unlock()
		return nil, err
	}

	if err := execStatements(sqlDB, schemaStatements); err != nil {
		sqlDB.Close()
		lock.Unlock()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	bunDB := bun.NewDB(sqlDB, sqlitedialect.New())
	db := &DB{path: path, sqlDB: sqlDB, bunDB: bunDB, lock: lock}
	if err := db.stampSchemaVersion(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Path returns the database file path.
func (d *DB) Path() string {
	return d.path
}

// Store returns the directory record store backed by this database.
func (d *DB) Store() *DirStore {
	return NewDirStore(d.bunDB)
}

// Runs returns the scan-run history backed by this database.
func (d *DB) Runs() *RunLog {
	return &RunLog{idb: d.bunDB}
}

// HardReset drops and re-creates the whole schema.
func (d *DB) HardReset(ctx context.Context) error {
	if err := execStatements(d.sqlDB, dropStatements); err != nil {
		return err
	}
	if err := execStatements(d.sqlDB, schemaStatements); err != nil {
		return err
	}
	return d.stampSchemaVersion(ctx)
}

// Close closes the database and releases the sidecar lock.
func (d *DB) Close() error {
	err := d.bunDB.Close()
	if lerr := d.lock.Unlock(); err == nil {
		err = lerr
	}
	return err
}

func (d *DB) stampSchemaVersion(ctx context.Context) error {
	_, err := d.bunDB.NewInsert().
		Model(&SchemaInfoModel{Key: "version", Value: SchemaVersion}).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Exec(ctx)
	return err
}
