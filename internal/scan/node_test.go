package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewNodeDerivesDepth(t *testing.T) {
	t.Parallel()

	n := NewNode("/a/b/c", "/a/b", -1)
	assert.Equal(t, "/a/b/c", n.Path)
	assert.Equal(t, "/a/b", n.Parent)
	assert.Equal(t, int64(3), n.Depth)
	assert.Equal(t, int64(3), n.MaxDepth)
	assert.Equal(t, TimeNever, n.ScanStarted)
	assert.Equal(t, TimeNever, n.MaxMtime)
	assert.Zero(t, n.NumFiles)
}

func TestNewNodeDepthHint(t *testing.T) {
	t.Parallel()

	// A caller that already knows the depth keeps it consistent with the
	// parent performing the call, whatever the component count says.
	n := NewNode("/mnt/data", "", 7)
	assert.Equal(t, int64(7), n.Depth)
	assert.Equal(t, int64(7), n.MaxDepth)
}

func TestAddEntryFile(t *testing.T) {
	t.Parallel()

	n := NewNode("/r", "", -1)
	n.AddEntry(Entry{Path: "/r/a", Kind: KindFile, Size: 4096, Blocks: 8, Nlink: 1, Atime: 100, Ctime: 200, Mtime: 300})

	assert.Equal(t, int64(1), n.NumFiles)
	assert.Equal(t, int64(4096), n.NumBytes)
	assert.Equal(t, int64(8), n.NumBlocks)
	assert.Equal(t, int64(0), n.NumMultiLinks)
	assert.Equal(t, int64(100), n.MaxAtime)
	assert.Equal(t, int64(200), n.MaxCtime)
	assert.Equal(t, int64(300), n.MaxMtime)
}

func TestAddEntryMultiLinkedFile(t *testing.T) {
	t.Parallel()

	// A file with 2 hard links contributes half its size and blocks, and
	// counts once as multi-linked.
	n := NewNode("/r", "", -1)
	n.AddEntry(Entry{Path: "/r/a", Kind: KindFile, Size: 4096, Blocks: 8, Nlink: 2})

	assert.Equal(t, int64(2048), n.NumBytes)
	assert.Equal(t, int64(4), n.NumBlocks)
	assert.Equal(t, int64(1), n.NumFiles)
	assert.Equal(t, int64(1), n.NumMultiLinks)
}

func TestAddEntryRoundsPerLinkShare(t *testing.T) {
	t.Parallel()

	n := NewNode("/r", "", -1)
	n.AddEntry(Entry{Path: "/r/a", Kind: KindFile, Size: 1001, Blocks: 3, Nlink: 3})

	assert.Equal(t, int64(334), n.NumBytes) // round(1001/3)
	assert.Equal(t, int64(1), n.NumBlocks)
}

func TestAddEntryKinds(t *testing.T) {
	t.Parallel()

	n := NewNode("/r", "", -1)
	n.AddEntry(Entry{Path: "/r/d", Kind: KindDir, Blocks: 8, Nlink: 2, Mtime: 50})
	n.AddEntry(Entry{Path: "/r/l", Kind: KindSymlink, Size: 12, Nlink: 1, Mtime: 60})
	n.AddEntry(Entry{Path: "/r/p", Kind: KindSpecial, Nlink: 1, Mtime: 70})

	// Directories contribute their own blocks but not bytes; symlinks and
	// specials contribute neither.
	assert.Equal(t, int64(8), n.NumBlocks)
	assert.Equal(t, int64(0), n.NumBytes)
	assert.Equal(t, int64(1), n.NumDirs)
	assert.Equal(t, int64(1), n.NumSymlinks)
	assert.Equal(t, int64(1), n.NumSpecials)
	assert.Equal(t, int64(0), n.NumFiles)
	assert.Equal(t, int64(0), n.NumMultiLinks)
	assert.Equal(t, int64(70), n.MaxMtime)
}

func TestAddChildFold(t *testing.T) {
	t.Parallel()

	parent := NewNode("/r", "", -1)
	parent.AddEntry(Entry{Path: "/r/a", Kind: KindFile, Size: 100, Blocks: 1, Nlink: 1, Mtime: 500})

	child := NewNode("/r/s", "/r", -1)
	child.MaxDepth = 5
	child.MaxAtime = 900
	child.MaxCtime = 901
	child.MaxMtime = 902
	child.NumBlocks = 16
	child.NumBytes = 8192
	child.NumFiles = 3
	child.NumDirs = 2
	child.NumSymlinks = 1
	child.NumSpecials = 1
	child.NumMultiLinks = 1
	child.NumExceptions = 2

	parent.AddChild(child)

	assert.Equal(t, int64(5), parent.MaxDepth)
	assert.Equal(t, int64(900), parent.MaxAtime)
	assert.Equal(t, int64(902), parent.MaxMtime)
	assert.Equal(t, int64(17), parent.NumBlocks)
	assert.Equal(t, int64(8292), parent.NumBytes)
	assert.Equal(t, int64(4), parent.NumFiles)
	assert.Equal(t, int64(2), parent.NumDirs)
	assert.Equal(t, int64(1), parent.NumSymlinks)
	assert.Equal(t, int64(1), parent.NumSpecials)
	assert.Equal(t, int64(1), parent.NumMultiLinks)
	assert.Equal(t, int64(2), parent.NumExceptions)
}

func TestResetAggregates(t *testing.T) {
	t.Parallel()

	n := NewNode("/r", "", -1)
	n.ScanStarted = 10
	n.ScanFinished = 20
	n.AddEntry(Entry{Path: "/r/a", Kind: KindFile, Size: 100, Blocks: 1, Nlink: 1, Mtime: 500})
	n.MaxDepth = 9

	n.ResetAggregates()

	assert.Zero(t, n.NumFiles)
	assert.Zero(t, n.NumBytes)
	assert.Equal(t, TimeNever, n.MaxMtime)
	assert.Equal(t, n.Depth, n.MaxDepth)
	// Identity and scan timestamps survive a reset.
	assert.Equal(t, "/r", n.Path)
	assert.Equal(t, int64(10), n.ScanStarted)
	assert.Equal(t, int64(20), n.ScanFinished)
}

func TestSameAggregatesIgnoresLastUpdated(t *testing.T) {
	t.Parallel()

	a := NewNode("/r", "", -1)
	b := NewNode("/r", "", -1)
	a.LastUpdated = 1
	b.LastUpdated = 2
	assert.True(t, a.SameAggregates(b))

	b.NumBytes = 1
	assert.False(t, a.SameAggregates(b))
}
