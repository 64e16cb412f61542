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

// Package memfs is an in-memory file system exercising fusekit.Handler[T] in
// both its Integer (InodeMemFS) and Path (PathMemFS) flavors against one
// shared tree implementation, grounded on the teacher's samples/memfs
// (fs.go, inode.go): the per-node attribute bookkeeping, directory entry
// table and WriteAt/ReadAt growth semantics all come from there, widened
// from fuseops.InodeAttributes to fusekit.Attr and from a single fixed
// InodeID scheme to whichever FileId the caller mounts with.
package memfs

import (
	"os"
	"time"

	"github.com/jacobsa/timeutil"

	fusekit "github.com/arcbound/fusekit"
)

// node is one file, directory or symlink in the tree. It is guarded by the
// owning tree's mutex rather than its own, since every operation that
// touches a node also needs to touch its parent's entry table (AddChild,
// RemoveChild, Rename) and the teacher's per-inode-plus-fs-level two-tier
// locking buys nothing extra for a sample of this size.
type node struct {
	ino      fusekit.InodeId // stable only in Integer mode; unused in Path mode
	kind     fusekit.NodeKind
	mode     os.FileMode
	uid, gid uint32
	atime    time.Time
	mtime    time.Time
	ctime    time.Time
	nlink    uint32

	contents []byte           // regular files
	target   string           // symlinks
	children map[string]*node // directories, keyed by entry name
	xattrs   map[string][]byte

	parent *node
}

func newNode(clock timeutil.Clock, kind fusekit.NodeKind, mode os.FileMode, uid, gid uint32) *node {
	now := clock.Now()
	n := &node{
		kind:  kind,
		mode:  mode,
		uid:   uid,
		gid:   gid,
		atime: now,
		mtime: now,
		ctime: now,
		nlink: 1,
	}
	if kind == fusekit.KindDirectory {
		n.children = make(map[string]*node)
		n.nlink = 2 // "." plus the entry in its parent
	}
	return n
}

func (n *node) size() uint64 {
	switch n.kind {
	case fusekit.KindSymlink:
		return uint64(len(n.target))
	case fusekit.KindDirectory:
		return 0
	default:
		return uint64(len(n.contents))
	}
}

func attrFor(n *node) fusekit.Attr {
	return fusekit.Attr{
		Size:   n.size(),
		Atime:  n.atime,
		Mtime:  n.mtime,
		Ctime:  n.ctime,
		Crtime: n.ctime,
		Kind:   n.kind,
		Mode:   n.mode,
		Nlink:  n.nlink,
		Uid:    n.uid,
		Gid:    n.gid,
	}
}

// lookupChild returns the named child, or nil if absent. n must be a
// directory.
func (n *node) lookupChild(name string) *node {
	return n.children[name]
}

// addChild links child into n's entry table under name, bumping n's mtime.
// n must be a directory and must not already contain name.
func (n *node) addChild(clock timeutil.Clock, name string, child *node) {
	n.children[name] = child
	child.parent = n
	n.mtime = clock.Now()
	if child.kind == fusekit.KindDirectory {
		n.nlink++
	}
}

// removeChild unlinks the named child from n's entry table, bumping n's
// mtime. Returns the removed node, or nil if name was not present.
func (n *node) removeChild(clock timeutil.Clock, name string) *node {
	child, ok := n.children[name]
	if !ok {
		return nil
	}
	delete(n.children, name)
	n.mtime = clock.Now()
	if child.kind == fusekit.KindDirectory {
		n.nlink--
	}
	return child
}

// sortedEntryNames returns the names of n's children in a stable
// (name-sorted) order, so that readdir pagination across multiple calls is
// well defined even as the map is mutated concurrently by later calls.
func sortedEntryNames(n *node) []string {
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	// Insertion sort is fine: memfs directories are small, and avoiding the
	// sort package import keeps this file's dependency footprint minimal.
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j-1] > names[j]; j-- {
			names[j-1], names[j] = names[j], names[j-1]
		}
	}
	return names
}

// readAt serves a read against n's contents (teacher's inode.ReadAt). It
// returns the number of bytes copied and never an error: unlike
// io.ReaderAt, a short or empty read at end of file does not report io.EOF.
func (n *node) readAt(p []byte, off int64) (int, error) {
	if off > int64(len(n.contents)) {
		return 0, nil
	}
	c := copy(p, n.contents[off:])
	return c, nil
}

// writeAt serves a write against n's contents, growing the backing slice as
// needed (teacher's inode.WriteAt).
func (n *node) writeAt(clock timeutil.Clock, p []byte, off int64) (int, error) {
	n.mtime = clock.Now()

	newLen := int(off) + len(p)
	if len(n.contents) < newLen {
		padding := make([]byte, newLen-len(n.contents))
		n.contents = append(n.contents, padding...)
	}
	return copy(n.contents[off:], p), nil
}

// setAttr applies a SetAttrRequest in place (teacher's inode.SetAttributes).
func (n *node) setAttr(clock timeutil.Clock, req fusekit.SetAttrRequest) {
	n.mtime = clock.Now()

	if req.Size != nil {
		size := int(*req.Size)
		if size <= len(n.contents) {
			n.contents = n.contents[:size]
		} else {
			n.contents = append(n.contents, make([]byte, size-len(n.contents))...)
		}
	}
	if req.Mode != nil {
		n.mode = *req.Mode
	}
	if req.Uid != nil {
		n.uid = *req.Uid
	}
	if req.Gid != nil {
		n.gid = *req.Gid
	}
	if req.Atime != nil {
		n.atime = time.Unix(0, *req.Atime)
	}
	if req.Mtime != nil {
		n.mtime = time.Unix(0, *req.Mtime)
	}
}
