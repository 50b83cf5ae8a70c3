package scan

import (
	"context"
	"sort"
	"strings"

	"relascope/internal/common"
)

// fakeLister serves directory listings from a map, making tree shape, sizes,
// and times fully deterministic.
type fakeLister struct {
	dirs      map[string][]Entry
	listErr   map[string]error
	statFails map[string]int64
}

func newFakeLister() *fakeLister {
	return &fakeLister{
		dirs:      make(map[string][]Entry),
		listErr:   make(map[string]error),
		statFails: make(map[string]int64),
	}
}

func (f *fakeLister) List(path string) ([]Entry, int64, error) {
	if err, ok := f.listErr[path]; ok {
		return nil, 0, err
	}
	return f.dirs[path], f.statFails[path], nil
}

// addDir registers a directory and links it into its parent's entry list.
func (f *fakeLister) addDir(path string, blocks int64) {
	if _, ok := f.dirs[path]; !ok {
		f.dirs[path] = nil
	}
	parent := common.ParentOf(path)
	if _, ok := f.dirs[parent]; ok {
		f.dirs[parent] = append(f.dirs[parent], Entry{Path: path, Kind: KindDir, Blocks: blocks, Nlink: 2})
	}
}

// removeDir drops a directory's subtree and its entry in the parent listing.
func (f *fakeLister) removeDir(path string) {
	for p := range f.dirs {
		if p == path || common.IsStrictDescendant(path, p) {
			delete(f.dirs, p)
		}
	}
	parent := common.ParentOf(path)
	kept := f.dirs[parent][:0]
	for _, e := range f.dirs[parent] {
		if e.Path != path {
			kept = append(kept, e)
		}
	}
	f.dirs[parent] = kept
}

func (f *fakeLister) addFile(path string, size, blocks, nlink, mtime int64) {
	parent := common.ParentOf(path)
	f.dirs[parent] = append(f.dirs[parent], Entry{
		Path:   path,
		Kind:   KindFile,
		Size:   size,
		Blocks: blocks,
		Nlink:  nlink,
		Atime:  mtime,
		Ctime:  mtime,
		Mtime:  mtime,
	})
}

// memStore is an in-memory Store with copy-on-transaction rollback.
type memStore struct {
	nodes map[string]*Node
	// failUpsert makes the next upsert of the given path fail, for
	// rollback tests.
	failUpsert map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		nodes:      make(map[string]*Node),
		failUpsert: make(map[string]error),
	}
}

func (m *memStore) Get(ctx context.Context, path string) (*Node, error) {
	n, ok := m.nodes[path]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (m *memStore) Upsert(ctx context.Context, node *Node) error {
	if err, ok := m.failUpsert[node.Path]; ok {
		return err
	}
	cp := *node
	m.nodes[node.Path] = &cp
	return nil
}

func (m *memStore) Delete(ctx context.Context, path string) error {
	delete(m.nodes, path)
	return nil
}

func (m *memStore) DeletePrefix(ctx context.Context, path string) error {
	for p := range m.nodes {
		if p == path || common.IsStrictDescendant(path, p) {
			delete(m.nodes, p)
		}
	}
	return nil
}

func (m *memStore) List(ctx context.Context, filter ListFilter) ([]*Node, error) {
	var out []*Node
	for _, n := range m.nodes {
		if filter.Subtree != "" && n.Path != filter.Subtree && !common.IsStrictDescendant(filter.Subtree, n.Path) {
			continue
		}
		if filter.MaxDepth >= 0 && n.Depth > filter.MaxDepth {
			continue
		}
		if filter.Parent != nil && n.Parent != *filter.Parent {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return strings.Compare(out[i].Path, out[j].Path) < 0 })
	return out, nil
}

func (m *memStore) InTx(ctx context.Context, fn func(tx Store) error) error {
	snapshot := make(map[string]*Node, len(m.nodes))
	for p, n := range m.nodes {
		cp := *n
		snapshot[p] = &cp
	}
	if err := fn(m); err != nil {
		m.nodes = snapshot
		return err
	}
	return nil
}
