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
	"time"

	log "github.com/sirupsen/logrus"
)

// EmitFunc receives finished nodes from a walk in strict post-order: every
// descendant is emitted before its ancestor, the walk root last. Returning an
// error aborts the walk and propagates the error unchanged.
type EmitFunc func(node *Node) error

// Scanner performs the full aggregating depth-first scan. Traversal state
// lives on an explicit frame stack, so filesystem depth is bounded by heap,
// not by the call stack.
type Scanner struct {
	Lister Lister
	Log    *log.Logger
}

// NewScanner returns a scanner reading entries through lister.
func NewScanner(lister Lister, logger *log.Logger) *Scanner {
	return &Scanner{Lister: lister, Log: logger}
}

// frame is one directory being aggregated: its node plus the immediate child
// directories not yet descended into.
type frame struct {
	node     *Node
	children []string
	next     int
}

// Walk scans the tree rooted at path depth-first and hands every finished
// node to emit, children before their parent and the root last, with each
// parent's totals already including all descendants. depthHint is passed
// through to NewNode; parent is recorded on the root node only (children get
// their actual parent paths).
//
// Directories are only descended into when the entry itself is a directory,
// never through symlink resolution, so cyclic symlinks cannot loop the walk.
// An unreadable directory still yields a node with NumExceptions set rather
// than aborting the walk.
func (s *Scanner) Walk(ctx context.Context, path, parent string, depthHint int64, emit EmitFunc) error {
	stack := []*frame{s.open(path, parent, depthHint)}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		top := stack[len(stack)-1]
		if top.next < len(top.children) {
			childPath := top.children[top.next]
			top.next++
			stack = append(stack, s.open(childPath, top.node.Path, top.node.Depth+1))
			continue
		}

		// All children folded in; finish and emit.
		top.node.ScanFinished = top.node.TouchUpdated()
		if err := emit(top.node); err != nil {
			return err
		}
		stack = stack[:len(stack)-1]
		if len(stack) > 0 {
			stack[len(stack)-1].node.AddChild(top.node)
		}
	}
	return nil
}

// open initializes a node for path, accumulates its own entries, and returns
// the frame holding its pending child directories.
func (s *Scanner) open(path, parent string, depth int64) *frame {
	node := NewNode(path, parent, depth)
	node.ScanStarted = time.Now().Unix()
	children := accumulateLocal(node, s.Lister, s.Log)
	return &frame{node: node, children: children}
}

// accumulateLocal folds the immediate entries of node.Path into the node and
// returns the paths of its immediate child directories. Listing and stat
// failures are counted on the node, never propagated.
func accumulateLocal(node *Node, lister Lister, logger *log.Logger) []string {
	entries, statFailures, err := lister.List(node.Path)
	node.NumExceptions += statFailures
	if err != nil {
		logger.WithField("path", node.Path).WithError(err).Warn("unable to list directory")
		node.NumExceptions++
		return nil
	}
	var children []string
	for _, e := range entries {
		node.AddEntry(e)
		if e.Kind == KindDir {
			children = append(children, e.Path)
		}
	}
	return children
}
