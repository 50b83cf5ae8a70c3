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
	"github.com/uptrace/bun"

	"relascope/internal/scan"
)

// Bun ORM models for the relascope database tables. The aggregation core
// only ever sees scan.Node values; these models are the storage-side shape,
// converted at this boundary.

// SchemaInfoModel represents the schema_info table
type SchemaInfoModel struct {
	bun.BaseModel `bun:"table:schema_info"`

	Key   string `bun:"key,pk"`
	Value string `bun:"value,notnull"`
}

// DirectoryModel represents one row of the directories table.
// All timestamps are Unix epochs; -1 means never set / never observed.
type DirectoryModel struct {
	bun.BaseModel `bun:"table:directories"`

	Path          string `bun:"path,pk"`
	Parent        string `bun:"parent,notnull"`
	Depth         int64  `bun:"depth,notnull"`
	MaxDepth      int64  `bun:"max_depth,notnull"`
	ScanStarted   int64  `bun:"scan_started,notnull"`
	ScanFinished  int64  `bun:"scan_finished,notnull"`
	LastUpdated   int64  `bun:"last_updated,notnull"`
	MaxAtime      int64  `bun:"max_atime,notnull"`
	MaxCtime      int64  `bun:"max_ctime,notnull"`
	MaxMtime      int64  `bun:"max_mtime,notnull"`
	NumBlocks     int64  `bun:"num_blocks,notnull"`
	NumBytes      int64  `bun:"num_bytes,notnull"`
	NumFiles      int64  `bun:"num_files,notnull"`
	NumDirs       int64  `bun:"num_dirs,notnull"`
	NumSymlinks   int64  `bun:"num_symlinks,notnull"`
	NumSpecials   int64  `bun:"num_specials,notnull"`
	NumMultiLinks int64  `bun:"num_multi_links,notnull"`
	NumExceptions int64  `bun:"num_exceptions,notnull"`
}

// ToNode converts a DirectoryModel to a scan.Node
func (m *DirectoryModel) ToNode() *scan.Node {
	return &scan.Node{
		Path:          m.Path,
		Parent:        m.Parent,
		Depth:         m.Depth,
		MaxDepth:      m.MaxDepth,
		ScanStarted:   m.ScanStarted,
		ScanFinished:  m.ScanFinished,
		LastUpdated:   m.LastUpdated,
		MaxAtime:      m.MaxAtime,
		MaxCtime:      m.MaxCtime,
		MaxMtime:      m.MaxMtime,
		NumBlocks:     m.NumBlocks,
		NumBytes:      m.NumBytes,
		NumFiles:      m.NumFiles,
		NumDirs:       m.NumDirs,
		NumSymlinks:   m.NumSymlinks,
		NumSpecials:   m.NumSpecials,
		NumMultiLinks: m.NumMultiLinks,
		NumExceptions: m.NumExceptions,
	}
}

// DirectoryModelFromNode converts a scan.Node to a DirectoryModel
func DirectoryModelFromNode(n *scan.Node) *DirectoryModel {
	return &DirectoryModel{
		Path:          n.Path,
		Parent:        n.Parent,
		Depth:         n.Depth,
		MaxDepth:      n.MaxDepth,
		ScanStarted:   n.ScanStarted,
		ScanFinished:  n.ScanFinished,
		LastUpdated:   n.LastUpdated,
		MaxAtime:      n.MaxAtime,
		MaxCtime:      n.MaxCtime,
		MaxMtime:      n.MaxMtime,
		NumBlocks:     n.NumBlocks,
		NumBytes:      n.NumBytes,
		NumFiles:      n.NumFiles,
		NumDirs:       n.NumDirs,
		NumSymlinks:   n.NumSymlinks,
		NumSpecials:   n.NumSpecials,
		NumMultiLinks: n.NumMultiLinks,
		NumExceptions: n.NumExceptions,
	}
}

// ScanRunModel represents the scan_runs table: one row per scan invocation.
type ScanRunModel struct {
	bun.BaseModel `bun:"table:scan_runs"`

	ID           string `bun:"id,pk"`
	Root         string `bun:"root,notnull"`
	Mode         string `bun:"mode,notnull"` // "refresh" or "full"
	Started      int64  `bun:"started,notnull"`
	Finished     int64  `bun:"finished,notnull"`
	NodesTracked int64  `bun:"nodes_tracked,notnull"`
	Status       string `bun:"status,notnull"` // "running", "ok", "error"
	Error        string `bun:"error,notnull"`
}
