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

import "context"

// ListFilter selects nodes from the store. Zero-valued fields do not filter.
type ListFilter struct {
	// Subtree restricts results to the given path and its descendants.
	Subtree string
	// MaxDepth restricts results to nodes at or above the given depth when
	// non-negative. Callers that do not care pass a negative value.
	MaxDepth int64
	// Parent restricts results to the immediate children of *Parent.
	// A pointer to the empty string selects roots (nodes with no parent).
	Parent *string
}

// Store is the persistence collaborator: a path-keyed repository of Node
// records. The engine and scanner call it only through these operations and
// never observe storage-engine details.
//
// All mutations made inside one InTx callback commit atomically; on error the
// whole batch rolls back and the error is surfaced to the caller unmodified.
type Store interface {
	// Get returns the node stored at path, or common.ErrNotFound.
	Get(ctx context.Context, path string) (*Node, error)
	// Upsert inserts or overwrites the record keyed by node.Path.
	Upsert(ctx context.Context, node *Node) error
	// Delete removes exactly the record at path, if present.
	Delete(ctx context.Context, path string) error
	// DeletePrefix removes the record at path and every record whose path is
	// a strict descendant of it. Siblings sharing a string prefix are not
	// touched.
	DeletePrefix(ctx context.Context, path string) error
	// List returns nodes matching the filter, ordered by path.
	List(ctx context.Context, filter ListFilter) ([]*Node, error)
	// InTx runs fn against a transaction-scoped view of the store.
	InTx(ctx context.Context, fn func(tx Store) error) error
}

// RootsOnly is a ListFilter selecting tracked tree tops.
func RootsOnly() ListFilter {
	empty := ""
	return ListFilter{MaxDepth: -1, Parent: &empty}
}

// ChildrenOf is a ListFilter selecting the stored immediate children of path.
func ChildrenOf(path string) ListFilter {
	return ListFilter{MaxDepth: -1, Parent: &path}
}
