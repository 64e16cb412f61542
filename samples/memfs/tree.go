// Copyright 2015 Google Inc. All Rights Reserved.
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

package memfs

import (
	"os"
	"sync"

	"github.com/jacobsa/timeutil"

	fusekit "github.com/arcbound/fusekit"
)

// tree is the mutable state shared by InodeMemFS and PathMemFS: a single
// root-anchored node graph guarded by one mutex. Grounded on the teacher's
// memFS.mu (fs.go), collapsed from its fs-level-plus-per-inode two-tier
// locking since a sample of this size gets nothing from the extra
// granularity.
type tree struct {
	mu    sync.Mutex
	clock timeutil.Clock
	root  *node
}

func newTree(clock timeutil.Clock) *tree {
	root := newNode(clock, fusekit.KindDirectory, os.ModeDir|0755, 0, 0)
	return &tree{clock: clock, root: root}
}

// mkChild creates a new node of the given kind under parent, failing if an
// entry named name already exists.
func (t *tree) mkChild(parent *node, name string, kind fusekit.NodeKind, mode os.FileMode, rc fusekit.RequestContext) (*node, error) {
	if parent.kind != fusekit.KindDirectory {
		return nil, fusekit.ErrNotDirectory("")
	}
	if _, exists := parent.children[name]; exists {
		return nil, fusekit.ErrExists(name)
	}

	child := newNode(t.clock, kind, mode, rc.Uid, rc.Gid)
	parent.addChild(t.clock, name, child)
	return child, nil
}

// unlink removes name from parent, failing if it doesn't exist or (for
// directories) isn't empty.
func (t *tree) unlink(parent *node, name string, requireDir bool) error {
	child, ok := parent.children[name]
	if !ok {
		return fusekit.ErrNotFound(name)
	}
	if requireDir {
		if child.kind != fusekit.KindDirectory {
			return fusekit.ErrNotDirectory(name)
		}
		if len(child.children) != 0 {
			return fusekit.ErrNotEmpty(name)
		}
	} else if child.kind == fusekit.KindDirectory {
		return fusekit.ErrIsDirectory(name)
	}

	parent.removeChild(t.clock, name)
	child.nlink--
	return nil
}

// dirEntries snapshots a directory's children as DirEntry values tagged with
// the given FileId constructor, used identically by both Integer and Path
// readdir implementations (spec.md §4.3's "snapshot at opendir").
func dirEntries(dir *node, idFor func(name string, child *node) fusekit.FileId) []fusekit.DirEntry {
	names := sortedEntryNames(dir)
	out := make([]fusekit.DirEntry, 0, len(names))
	for _, name := range names {
		child := dir.children[name]
		out = append(out, fusekit.DirEntry{
			Name: name,
			Id:   idFor(name, child),
			Kind: child.kind,
		})
	}
	return out
}

// getXAttr/setXAttr/listXAttr/removeXAttr implement the xattr handler
// surface against n's in-memory map, an alternative to the
// platform_linux.go/platform_darwin.go syscall-backed shims for a
// filesystem (like this one) that has no real backing inode to attach
// extended attributes to.
func getXAttr(n *node, name string) ([]byte, error) {
	v, ok := n.xattrs[name]
	if !ok {
		return nil, fusekit.ErrNotFound(name)
	}
	return v, nil
}

func setXAttr(n *node, name string, value []byte) {
	if n.xattrs == nil {
		n.xattrs = make(map[string][]byte)
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	n.xattrs[name] = cp
}

func listXAttr(n *node) []string {
	names := make([]string, 0, len(n.xattrs))
	for name := range n.xattrs {
		names = append(names, name)
	}
	return names
}

func removeXAttr(n *node, name string) error {
	if _, ok := n.xattrs[name]; !ok {
		return fusekit.ErrNotFound(name)
	}
	delete(n.xattrs, name)
	return nil
}
