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

//go:build darwin

package scan

import (
	"io/fs"
	"syscall"
)

// applyStat fills the fields os.FileInfo hides: allocated blocks, hard-link
// count, and access/change times.
func applyStat(e *Entry, info fs.FileInfo) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		e.Atime = e.Mtime
		e.Ctime = e.Mtime
		return
	}
	e.Blocks = stat.Blocks
	e.Nlink = int64(stat.Nlink)
	e.Atime = stat.Atimespec.Sec
	e.Ctime = stat.Ctimespec.Sec
	e.Mtime = stat.Mtimespec.Sec
}
