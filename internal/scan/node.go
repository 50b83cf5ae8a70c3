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

// Package scan implements the directory inventory core: the aggregating
// depth-first scanner and the incremental reconciliation engine, both backed
// by a path-keyed Store.
package scan

import (
	"math"
	"time"

	"relascope/internal/common"
)

// TimeNever marks a timestamp field that has never been observed or set.
const TimeNever = int64(-1)

// Node holds one directory's identity and the cumulative statistics of the
// subtree rooted at it. All count and size fields include the directory's own
// entries plus every descendant's; all max fields are taken over the same set.
//
// Parent is a lookup key into the Store, never an object reference: a node is
// built and persisted independently of whether its parent is resident. It is
// empty for a tracked tree top.
type Node struct {
	Path   string
	Parent string
	Depth  int64

	// MaxDepth is the deepest depth reached anywhere in this subtree (>= Depth).
	MaxDepth int64

	ScanStarted  int64
	ScanFinished int64
	LastUpdated  int64

	MaxAtime int64
	MaxCtime int64
	MaxMtime int64

	NumBlocks int64
	NumBytes  int64

	NumFiles      int64
	NumDirs       int64
	NumSymlinks   int64
	NumSpecials   int64
	NumMultiLinks int64
	NumExceptions int64
}

// NewNode creates a node for path with empty aggregates. Depth is derived
// from the path when depthHint is negative; callers that already know the
// depth (the engine scanning a freshly discovered subtree) pass it so child
// depths stay consistent with the parent's.
func NewNode(path, parent string, depthHint int64) *Node {
	n := &Node{
		Path:   common.NormalizePath(path),
		Parent: parent,
		Depth:  depthHint,
	}
	if depthHint < 0 {
		n.Depth = common.Depth(path)
	}
	n.ResetAggregates()
	n.ScanStarted = TimeNever
	n.ScanFinished = TimeNever
	n.LastUpdated = TimeNever
	return n
}

// ResetAggregates clears every cumulative field back to its empty value so the
// node can be re-accumulated from a fresh listing. Identity (path, parent,
// depth) and the scan/update timestamps are untouched.
func (n *Node) ResetAggregates() {
	n.MaxDepth = n.Depth
	n.MaxAtime = TimeNever
	n.MaxCtime = TimeNever
	n.MaxMtime = TimeNever
	n.NumBlocks = 0
	n.NumBytes = 0
	n.NumFiles = 0
	n.NumDirs = 0
	n.NumSymlinks = 0
	n.NumSpecials = 0
	n.NumMultiLinks = 0
	n.NumExceptions = 0
}

// AddEntry folds one immediate directory entry into the node's own
// contribution. A file's blocks and bytes are divided by its hard-link count
// before summing, so a multiply-linked file is not over-counted within one
// tree (it may still be over-counted across trees; accepted behavior).
func (n *Node) AddEntry(e Entry) {
	n.MaxAtime = max(n.MaxAtime, e.Atime)
	n.MaxCtime = max(n.MaxCtime, e.Ctime)
	n.MaxMtime = max(n.MaxMtime, e.Mtime)

	switch e.Kind {
	case KindFile:
		n.NumBlocks += perLinkShare(e.Blocks, e.Nlink)
		n.NumBytes += perLinkShare(e.Size, e.Nlink)
		n.NumFiles++
		if e.Nlink != 1 {
			n.NumMultiLinks++
		}
	case KindDir:
		n.NumBlocks += e.Blocks
		n.NumDirs++
	case KindSymlink:
		n.NumSymlinks++
	default:
		n.NumSpecials++
	}
}

// AddChild folds a child directory's finished aggregate into the node:
// max for depths and times, sum for counts and sizes (the aggregate-closure
// rule).
func (n *Node) AddChild(child *Node) {
	n.MaxDepth = max(n.MaxDepth, child.MaxDepth)
	n.MaxAtime = max(n.MaxAtime, child.MaxAtime)
	n.MaxCtime = max(n.MaxCtime, child.MaxCtime)
	n.MaxMtime = max(n.MaxMtime, child.MaxMtime)
	n.NumBlocks += child.NumBlocks
	n.NumBytes += child.NumBytes
	n.NumFiles += child.NumFiles
	n.NumDirs += child.NumDirs
	n.NumSymlinks += child.NumSymlinks
	n.NumSpecials += child.NumSpecials
	n.NumMultiLinks += child.NumMultiLinks
	n.NumExceptions += child.NumExceptions
}

// SameAggregates reports whether two nodes carry identical aggregate fields,
// ignoring LastUpdated (which advances on every refresh).
func (n *Node) SameAggregates(o *Node) bool {
	return n.MaxDepth == o.MaxDepth &&
		n.MaxAtime == o.MaxAtime &&
		n.MaxCtime == o.MaxCtime &&
		n.MaxMtime == o.MaxMtime &&
		n.NumBlocks == o.NumBlocks &&
		n.NumBytes == o.NumBytes &&
		n.NumFiles == o.NumFiles &&
		n.NumDirs == o.NumDirs &&
		n.NumSymlinks == o.NumSymlinks &&
		n.NumSpecials == o.NumSpecials &&
		n.NumMultiLinks == o.NumMultiLinks &&
		n.NumExceptions == o.NumExceptions
}

// TouchUpdated sets LastUpdated to now and returns the timestamp.
func (n *Node) TouchUpdated() int64 {
	n.LastUpdated = time.Now().Unix()
	return n.LastUpdated
}

func perLinkShare(total, nlink int64) int64 {
	if nlink <= 1 {
		return total
	}
	return int64(math.Round(float64(total) / float64(nlink)))
}
