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
	"database/sql"
	"fmt"
	"os"
	"strconv"
)

const SchemaVersion = "1"

// Default busy_timeout in milliseconds (30 seconds)
const DefaultBusyTimeout = 30000

// EnvBusyTimeout overrides the busy_timeout for all database access.
const EnvBusyTimeout = "RELASCOPE_BUSY_TIMEOUT"

// configBusyTimeout is the config-file busy_timeout (set via SetConfigBusyTimeout).
var configBusyTimeout int

// SetConfigBusyTimeout sets the config-based busy_timeout value. A value of 0
// is ignored (use env var or default).
func SetConfigBusyTimeout(timeout int) {
	configBusyTimeout = timeout
}

// GetBusyTimeout returns the busy_timeout value.
// Priority: env > config file > default.
func GetBusyTimeout() int {
	if val := os.Getenv(EnvBusyTimeout); val != "" {
		if timeout, err := strconv.Atoi(val); err == nil && timeout > 0 {
			return timeout
		}
	}
	if configBusyTimeout > 0 {
		return configBusyTimeout
	}
	return DefaultBusyTimeout
}

// BuildDSN builds the SQLite DSN for the database file.
func BuildDSN(path string) string {
	return fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=%d", path, GetBusyTimeout())
}

// schemaStatements creates the inventory schema. Statements are executed
// individually for libsql compatibility.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS schema_info (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS directories (
		path TEXT PRIMARY KEY,
		parent TEXT NOT NULL DEFAULT '',
		depth INTEGER NOT NULL DEFAULT 0,
		max_depth INTEGER NOT NULL DEFAULT 0,
		scan_started INTEGER NOT NULL DEFAULT -1,
		scan_finished INTEGER NOT NULL DEFAULT -1,
		last_updated INTEGER NOT NULL DEFAULT -1,
		max_atime INTEGER NOT NULL DEFAULT -1,
		max_ctime INTEGER NOT NULL DEFAULT -1,
		max_mtime INTEGER NOT NULL DEFAULT -1,
		num_blocks INTEGER NOT NULL DEFAULT 0,
		num_bytes INTEGER NOT NULL DEFAULT 0,
		num_files INTEGER NOT NULL DEFAULT 0,
		num_dirs INTEGER NOT NULL DEFAULT 0,
		num_symlinks INTEGER NOT NULL DEFAULT 0,
		num_specials INTEGER NOT NULL DEFAULT 0,
		num_multi_links INTEGER NOT NULL DEFAULT 0,
		num_exceptions INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_directories_parent ON directories (parent)`,
	`CREATE TABLE IF NOT EXISTS scan_runs (
		id TEXT PRIMARY KEY,
		root TEXT NOT NULL,
		mode TEXT NOT NULL,
		started INTEGER NOT NULL,
		finished INTEGER NOT NULL DEFAULT -1,
		nodes_tracked INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'running',
		error TEXT NOT NULL DEFAULT ''
	)`,
	// Human-readable reporting view over the raw epoch/block columns.
	`CREATE VIEW IF NOT EXISTS dirs AS
		SELECT
			num_blocks / 2147483648 AS tb,
			num_blocks / 2097152 AS gb,
			path,
			parent,
			depth,
			max_depth,
			datetime(scan_started, 'unixepoch') AS scan_started,
			datetime(scan_finished, 'unixepoch') AS scan_finished,
			datetime(last_updated, 'unixepoch') AS last_updated,
			datetime(max_atime, 'unixepoch') AS max_atime,
			datetime(max_ctime, 'unixepoch') AS max_ctime,
			datetime(max_mtime, 'unixepoch') AS max_mtime,
			num_blocks,
			num_bytes,
			num_files,
			num_dirs,
			num_symlinks,
			num_specials,
			num_multi_links,
			num_exceptions
		FROM directories`,
}

// dropStatements tears the schema down in dependency order.
var dropStatements = []string{
	`DROP VIEW IF EXISTS dirs`,
	`DROP TABLE IF EXISTS directories`,
	`DROP TABLE IF EXISTS scan_runs`,
	`DROP TABLE IF EXISTS schema_info`,
}

// execStatements runs each statement individually.
func execStatements(db *sql.DB, statements []string) error {
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}

// execPragma runs a PRAGMA statement using Query (not Exec) because libsql
// returns rows for PRAGMA statements. The result rows are drained and closed.
func execPragma(db *sql.DB, pragma string) error {
	rows, err := db.Query(pragma)
	if err != nil {
		return err
	}
	rows.Close()
	return nil
}

// applyPragmas sets essential PRAGMAs after opening a libsql connection.
// libsql ignores DSN-based _pragma=value parameters, so all PRAGMAs must be
// set explicitly via SQL statements after the connection is opened.
func applyPragmas(db *sql.DB) error {
	// Busy timeout MUST be set first so subsequent PRAGMAs (especially
	// journal_mode=WAL which needs exclusive access) wait for locks instead
	// of failing immediately with "database is locked".
	if err := execPragma(db, fmt.Sprintf("PRAGMA busy_timeout = %d", GetBusyTimeout())); err != nil {
		return fmt.Errorf("failed to set busy_timeout: %w", err)
	}
	if err := execPragma(db, "PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to set journal_mode=WAL: %w", err)
	}
	// WAL with NORMAL sync is safe against process crashes and avoids an
	// fsync on every commit.
	if err := execPragma(db, "PRAGMA synchronous=NORMAL"); err != nil {
		return fmt.Errorf("failed to set synchronous=NORMAL: %w", err)
	}
	// Larger cache for the parent-indexed child listings (default ~2MB, set to 8MB).
	if err := execPragma(db, "PRAGMA cache_size = -8000"); err != nil {
		return fmt.Errorf("failed to set cache_size: %w", err)
	}
	return nil
}
