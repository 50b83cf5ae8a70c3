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

	"github.com/uptrace/bun"

	"relascope/internal/common"
	"relascope/internal/scan"
)

// DirStore implements scan.Store over a bun database or transaction. It holds
// a bun.IDB, so a transaction-scoped copy is the same struct bound to the
// bun.Tx.
type DirStore struct {
	idb bun.IDB
}

// NewDirStore returns a store over the given bun database.
func NewDirStore(db *bun.DB) *DirStore {
	return &DirStore{idb: db}
}

// Get returns the node stored at path, or common.ErrNotFound.
func (s *DirStore) Get(ctx context.Context, path string) (*scan.Node, error) {
	var model DirectoryModel
	err := s.idb.NewSelect().
		Model(&model).
		Where("path = ?", path).
		Scan(ctx)
	if err == sql.ErrNoRows {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return model.ToNode(), nil
}

// Upsert inserts or overwrites the record keyed by node.Path.
func (s *DirStore) Upsert(ctx context.Context, node *scan.Node) error {
	_, err := s.idb.NewInsert().
		Model(DirectoryModelFromNode(node)).
		On("CONFLICT (path) DO UPDATE").
		Set("parent = EXCLUDED.parent").
		Set("depth = EXCLUDED.depth").
		Set("max_depth = EXCLUDED.max_depth").
		Set("scan_started = EXCLUDED.scan_started").
		Set("scan_finished = EXCLUDED.scan_finished").
		Set("last_updated = EXCLUDED.last_updated").
		Set("max_atime = EXCLUDED.max_atime").
		Set("max_ctime = EXCLUDED.max_ctime").
		Set("max_mtime = EXCLUDED.max_mtime").
		Set("num_blocks = EXCLUDED.num_blocks").
		Set("num_bytes = EXCLUDED.num_bytes").
		Set("num_files = EXCLUDED.num_files").
		Set("num_dirs = EXCLUDED.num_dirs").
		Set("num_symlinks = EXCLUDED.num_symlinks").
		Set("num_specials = EXCLUDED.num_specials").
		Set("num_multi_links = EXCLUDED.num_multi_links").
		Set("num_exceptions = EXCLUDED.num_exceptions").
		Exec(ctx)
	return err
}

// Delete removes exactly the record at path.
func (s *DirStore) Delete(ctx context.Context, path string) error {
	_, err := s.idb.NewDelete().
		Model((*DirectoryModel)(nil)).
		Where("path = ?", path).
		Exec(ctx)
	return err
}

// DeletePrefix removes the record at path and every record strictly nested
// under it. The '/' boundary keeps siblings with a shared string prefix safe.
func (s *DirStore) DeletePrefix(ctx context.Context, path string) error {
	_, err := s.idb.NewDelete().
		Model((*DirectoryModel)(nil)).
		Where("path = ? OR path LIKE ? || '/%'", path, path).
		Exec(ctx)
	return err
}

// List returns nodes matching the filter, ordered by path.
func (s *DirStore) List(ctx context.Context, filter scan.ListFilter) ([]*scan.Node, error) {
	var models []DirectoryModel
	q := s.idb.NewSelect().Model(&models)
	if filter.Subtree != "" {
		q = q.Where("path = ? OR path LIKE ? || '/%'", filter.Subtree, filter.Subtree)
	}
	if filter.MaxDepth >= 0 {
		q = q.Where("depth <= ?", filter.MaxDepth)
	}
	if filter.Parent != nil {
		q = q.Where("parent = ?", *filter.Parent)
	}
	if err := q.Order("path").Scan(ctx); err != nil {
		return nil, err
	}
	nodes := make([]*scan.Node, len(models))
	for i := range models {
		nodes[i] = models[i].ToNode()
	}
	return nodes, nil
}

// CountSubtree returns the number of records at or under path.
func (s *DirStore) CountSubtree(ctx context.Context, path string) (int64, error) {
	count, err := s.idb.NewSelect().
		Model((*DirectoryModel)(nil)).
		Where("path = ? OR path LIKE ? || '/%'", path, path).
		Count(ctx)
	return int64(count), err
}

// InTx runs fn against a transaction-bound copy of the store. When the store
// is already transaction-scoped, fn joins the enclosing transaction.
func (s *DirStore) InTx(ctx context.Context, fn func(tx scan.Store) error) error {
	db, ok := s.idb.(*bun.DB)
	if !ok {
		return fn(s)
	}
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(&DirStore{idb: tx})
	})
}
