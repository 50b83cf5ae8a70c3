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

//go:build !linux && !darwin

package scan

import "io/fs"

// applyStat on platforms without a usable Stat_t keeps the portable
// fallbacks: size and mtime from FileInfo, nlink 1, zero blocks.
func applyStat(e *Entry, info fs.FileInfo) {
	e.Atime = e.Mtime
	e.Ctime = e.Mtime
}
