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

package common

import (
	"path/filepath"
	"strings"
)

// NormalizePath cleans an absolute path, collapsing repeated separators and
// dot segments and dropping any trailing slash. "/" stays "/".
func NormalizePath(path string) string {
	return filepath.Clean(path)
}

// Depth returns the number of path components above the given absolute path.
// Depth("/") is 0, Depth("/a/b") is 2.
func Depth(path string) int64 {
	path = NormalizePath(path)
	if path == "/" {
		return 0
	}
	return int64(strings.Count(path, "/"))
}

// ParentOf returns the parent directory of an absolute path, or "" for the
// filesystem root. The result is a lookup key, not a reference: the parent
// record may or may not exist in the store.
func ParentOf(path string) string {
	path = NormalizePath(path)
	if path == "/" {
		return ""
	}
	return filepath.Dir(path)
}

// IsStrictDescendant reports whether child is nested (at any depth) under
// ancestor. The separator boundary matters: "/a/bc" is not a descendant of
// "/a/b" even though it shares the string prefix.
func IsStrictDescendant(ancestor, child string) bool {
	ancestor = NormalizePath(ancestor)
	child = NormalizePath(child)
	if ancestor == "/" {
		return child != "/" && strings.HasPrefix(child, "/")
	}
	return strings.HasPrefix(child, ancestor+"/")
}
