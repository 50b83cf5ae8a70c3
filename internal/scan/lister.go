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
	"io/fs"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// EntryKind classifies one directory entry. Symlinks are classified by their
// own link status, never by the target's.
type EntryKind int

const (
	KindFile EntryKind = iota
	KindDir
	KindSymlink
	KindSpecial
)

// Entry carries the per-entry facts needed for aggregation. Sizes and times
// come from lstat; symlink targets are never followed.
type Entry struct {
	Path   string
	Kind   EntryKind
	Size   int64
	Blocks int64
	Nlink  int64
	Atime  int64
	Ctime  int64
	Mtime  int64
}

// Lister lists the immediate entries of one directory.
//
// A failed directory listing is reported through the error return as a single
// event; the caller counts it and treats the directory as empty for this
// pass. A failed stat on an individual entry is not an error: the entry is
// dropped from the result and statFailures is incremented, so it is excluded
// from aggregation rather than zero-filled into the counts.
type Lister interface {
	List(path string) (entries []Entry, statFailures int64, err error)
}

// LocalLister reads directory entries from the local filesystem. It performs
// no writes; the only side effects are the read syscalls themselves.
type LocalLister struct {
	Log *log.Logger
}

// NewLocalLister returns a lister logging failures to logger.
func NewLocalLister(logger *log.Logger) *LocalLister {
	return &LocalLister{Log: logger}
}

// List implements Lister against the local filesystem.
func (l *LocalLister) List(path string) ([]Entry, int64, error) {
	dirents, err := os.ReadDir(path)
	if err != nil {
		return nil, 0, err
	}

	entries := make([]Entry, 0, len(dirents))
	var statFailures int64
	for _, d := range dirents {
		entryPath := filepath.Join(path, d.Name())
		info, err := d.Info()
		if err != nil {
			l.Log.WithField("path", entryPath).WithError(err).Warn("unable to stat entry")
			statFailures++
			continue
		}
		entries = append(entries, buildEntry(entryPath, d.Type(), info))
	}
	return entries, statFailures, nil
}

func buildEntry(path string, mode fs.FileMode, info fs.FileInfo) Entry {
	e := Entry{
		Path: path,
		Size: info.Size(),
		// Portable fallbacks when the raw stat is unavailable.
		Nlink: 1,
		Mtime: info.ModTime().Unix(),
	}
	switch {
	case mode.IsDir():
		e.Kind = KindDir
	case mode&fs.ModeSymlink != 0:
		e.Kind = KindSymlink
	case mode.IsRegular():
		e.Kind = KindFile
	default:
		e.Kind = KindSpecial
	}
	applyStat(&e, info)
	return e
}
