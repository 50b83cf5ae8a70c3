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

package scan

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"relascope/internal/common"
	"relascope/internal/util"
)

// Engine reconciles stored directory aggregates with live filesystem state.
// It re-lists only the directories whose records are directly affected:
// unchanged immediate children are folded in from their persisted aggregates,
// new subtrees are scanned in full, vanished subtrees are pruned from the
// store. Staleness below an unchanged child path is accepted (a full re-scan
// via AddTree is the recovery path).
type Engine struct {
	Store   Store
	Lister  Lister
	Scanner *Scanner
	Log     *log.Logger
}

// NewEngine wires an engine over the given store and lister.
func NewEngine(store Store, lister Lister, logger *log.Logger) *Engine {
	return &Engine{
		Store:   store,
		Lister:  lister,
		Scanner: NewScanner(lister, logger),
		Log:     logger,
	}
}

// Refresh brings the stored record for path in sync with live filesystem
// state, then walks upward through stored ancestors recomputing their totals.
// It returns the highest ancestor reached: the first node whose parent is
// either absent or not tracked by the store.
//
// Each per-directory reconciliation step runs in its own store transaction;
// a store failure rolls that step back and is returned unmodified. Listing
// failures are counted on the affected node and never abort the walk.
func (e *Engine) Refresh(ctx context.Context, path string) (*Node, error) {
	path, err := trackablePath(path)
	if err != nil {
		return nil, err
	}
	node, err := e.loadOrInit(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := e.localRefresh(ctx, node); err != nil {
		return nil, err
	}

	for node.Parent != "" {
		parent, err := e.Store.Get(ctx, node.Parent)
		if errors.Is(err, common.ErrNotFound) {
			break // untracked ancestor, or the logical root
		}
		if err != nil {
			return nil, err
		}
		if err := e.localRefresh(ctx, parent); err != nil {
			return nil, err
		}
		node = parent
	}
	return node, nil
}

// AddTree fully re-scans the tree at path and replaces everything previously
// stored under it, in one transaction: the stale subtree is prefix-deleted,
// then every node from the fresh walk is upserted in post-order. The tree top
// attaches to its filesystem parent when that parent is tracked; otherwise it
// registers as a new root.
func (e *Engine) AddTree(ctx context.Context, path string) (*Node, error) {
	path, err := trackablePath(path)
	if err != nil {
		return nil, err
	}
	parent, err := e.trackedParent(ctx, path)
	if err != nil {
		return nil, err
	}
	return util.RetryWithResult(ctx, func() (*Node, error) {
		var root *Node
		err := e.Store.InTx(ctx, func(tx Store) error {
			if err := tx.DeletePrefix(ctx, path); err != nil {
				return err
			}
			return e.Scanner.Walk(ctx, path, parent, -1, func(n *Node) error {
				root = n
				return tx.Upsert(ctx, n)
			})
		})
		if err != nil {
			return nil, err
		}
		return root, nil
	})
}

// trackablePath canonicalizes path for use as a store key. Only absolute
// paths are trackable.
func trackablePath(path string) (string, error) {
	if !filepath.IsAbs(path) {
		return "", fmt.Errorf("%s: %w", path, common.ErrInvalidPath)
	}
	return common.NormalizePath(path), nil
}

// loadOrInit fetches the stored node for path, or builds a fresh one. A fresh
// node attaches to its filesystem parent when that parent is tracked;
// otherwise it becomes a new root.
func (e *Engine) loadOrInit(ctx context.Context, path string) (*Node, error) {
	node, err := e.Store.Get(ctx, path)
	if err == nil {
		return node, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	parent, err := e.trackedParent(ctx, path)
	if err != nil {
		return nil, err
	}
	return NewNode(path, parent, -1), nil
}

// trackedParent returns path's filesystem parent when the store tracks it,
// otherwise "" (path becomes a root).
func (e *Engine) trackedParent(ctx context.Context, path string) (string, error) {
	parent := common.ParentOf(path)
	if parent == "" {
		return "", nil
	}
	if _, err := e.Store.Get(ctx, parent); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return parent, nil
}

// localRefresh reconciles one directory against its live immediate entries
// inside a single transaction, retrying transparently on transient database
// locks. node is only mutated when the transaction commits.
func (e *Engine) localRefresh(ctx context.Context, node *Node) error {
	return util.Retry(ctx, func() error {
		work := *node
		err := e.Store.InTx(ctx, func(tx Store) error {
			return e.reconcileLocal(ctx, tx, &work)
		})
		if err != nil {
			return err
		}
		*node = work
		return nil
	})
}

// reconcileLocal is one local reconciliation step: rebuild
// node's aggregate from its live listing, reusing persisted child aggregates
// for child paths already tracked, scanning brand-new child subtrees, and
// pruning stored subtrees whose top-level path vanished.
func (e *Engine) reconcileLocal(ctx context.Context, tx Store, node *Node) error {
	stored, err := tx.List(ctx, ChildrenOf(node.Path))
	if err != nil {
		return err
	}
	remembered := make(map[string]*Node, len(stored))
	for _, c := range stored {
		remembered[c.Path] = c
	}

	prev := *node
	node.ResetAggregates()
	liveChildren := accumulateLocal(node, e.Lister, e.Log)

	for _, childPath := range liveChildren {
		if child, ok := remembered[childPath]; ok {
			// Unchanged child path: trust its persisted aggregate, no re-scan.
			node.AddChild(child)
			delete(remembered, childPath)
			continue
		}
		// New subtree: full scan, persisting children before parents.
		var subRoot *Node
		err := e.Scanner.Walk(ctx, childPath, node.Path, node.Depth+1, func(n *Node) error {
			subRoot = n
			return tx.Upsert(ctx, n)
		})
		if err != nil {
			return err
		}
		node.AddChild(subRoot)
	}

	// Whatever is left in the index no longer exists on the filesystem.
	for gonePath := range remembered {
		e.Log.WithField("path", gonePath).Debug("pruning vanished subtree")
		if err := tx.DeletePrefix(ctx, gonePath); err != nil {
			return err
		}
	}

	// Recorded maxima never move backwards under incremental refresh; only a
	// full re-scan (AddTree) rebuilds them from scratch.
	node.MaxAtime = max(node.MaxAtime, prev.MaxAtime)
	node.MaxCtime = max(node.MaxCtime, prev.MaxCtime)
	node.MaxMtime = max(node.MaxMtime, prev.MaxMtime)

	node.TouchUpdated()
	return tx.Upsert(ctx, node)
}
