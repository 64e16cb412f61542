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
	"context"
	"os"

	"github.com/jacobsa/timeutil"

	fusekit "github.com/arcbound/fusekit"
)

// InodeMemFS implements fusekit.Handler[fusekit.InodeId]: every node is
// assigned a stable 64-bit id the first time it is created, and that id
// never changes for the node's lifetime (spec.md §4.5, Integer mode).
type InodeMemFS struct {
	fusekit.DefaultHandler[fusekit.InodeId]

	t       *tree
	byIno   map[fusekit.InodeId]*node
	nextIno fusekit.InodeId
}

var _ fusekit.Handler[fusekit.InodeId] = (*InodeMemFS)(nil)

func NewInodeMemFS(clock timeutil.Clock) *InodeMemFS {
	t := newTree(clock)
	t.root.ino = fusekit.RootInodeId

	fs := &InodeMemFS{
		t:       t,
		byIno:   make(map[fusekit.InodeId]*node),
		nextIno: fusekit.RootInodeId + 1,
	}
	fs.byIno[fusekit.RootInodeId] = t.root
	return fs
}

func (fs *InodeMemFS) allocate(n *node) fusekit.InodeId {
	id := fs.nextIno
	fs.nextIno++
	n.ino = id
	fs.byIno[id] = n
	return id
}

func (fs *InodeMemFS) get(id fusekit.InodeId) (*node, error) {
	n, ok := fs.byIno[id]
	if !ok {
		return nil, fusekit.ErrStaleInode("")
	}
	return n, nil
}

func (fs *InodeMemFS) Init(ctx context.Context, rc fusekit.RequestContext) error {
	fs.t.mu.Lock()
	defer fs.t.mu.Unlock()

	fs.t.root.uid = rc.Uid
	fs.t.root.gid = rc.Gid
	return nil
}

func (fs *InodeMemFS) LookUp(ctx context.Context, rc fusekit.RequestContext, parent fusekit.InodeId, name string) (fusekit.ChildEntry, error) {
	fs.t.mu.Lock()
	defer fs.t.mu.Unlock()

	p, err := fs.get(parent)
	if err != nil {
		return fusekit.ChildEntry{}, err
	}
	child := p.lookupChild(name)
	if child == nil {
		return fusekit.ChildEntry{}, fusekit.ErrNotFound(name)
	}

	return fusekit.ChildEntry{Id: child.ino, Attr: attrFor(child)}, nil
}

func (fs *InodeMemFS) GetAttr(ctx context.Context, rc fusekit.RequestContext, id fusekit.InodeId) (fusekit.Attr, error) {
	fs.t.mu.Lock()
	defer fs.t.mu.Unlock()

	n, err := fs.get(id)
	if err != nil {
		return fusekit.Attr{}, err
	}
	return attrFor(n), nil
}

func (fs *InodeMemFS) SetAttr(ctx context.Context, rc fusekit.RequestContext, id fusekit.InodeId, req fusekit.SetAttrRequest) (fusekit.Attr, error) {
	fs.t.mu.Lock()
	defer fs.t.mu.Unlock()

	n, err := fs.get(id)
	if err != nil {
		return fusekit.Attr{}, err
	}
	n.setAttr(fs.t.clock, req)
	return attrFor(n), nil
}

func (fs *InodeMemFS) Forget(ctx context.Context, rc fusekit.RequestContext, id fusekit.InodeId, n uint64) {
	// The resolver already performs lookup-count bookkeeping; memfs keeps
	// nodes reachable from the tree alive regardless, so there is nothing
	// further to reclaim here (unlike a disk-backed fs that frees blocks).
}

func (fs *InodeMemFS) MkDir(ctx context.Context, rc fusekit.RequestContext, parent fusekit.InodeId, name string, mode os.FileMode) (fusekit.ChildEntry, error) {
	fs.t.mu.Lock()
	defer fs.t.mu.Unlock()

	p, err := fs.get(parent)
	if err != nil {
		return fusekit.ChildEntry{}, err
	}
	child, err := fs.t.mkChild(p, name, fusekit.KindDirectory, os.ModeDir|mode, rc)
	if err != nil {
		return fusekit.ChildEntry{}, err
	}
	fs.allocate(child)
	return fusekit.ChildEntry{Id: child.ino, Attr: attrFor(child)}, nil
}

func (fs *InodeMemFS) MkNod(ctx context.Context, rc fusekit.RequestContext, parent fusekit.InodeId, name string, mode os.FileMode, rdev uint32) (fusekit.ChildEntry, error) {
	fs.t.mu.Lock()
	defer fs.t.mu.Unlock()

	p, err := fs.get(parent)
	if err != nil {
		return fusekit.ChildEntry{}, err
	}
	child, err := fs.t.mkChild(p, name, fusekit.KindRegular, mode, rc)
	if err != nil {
		return fusekit.ChildEntry{}, err
	}
	fs.allocate(child)
	return fusekit.ChildEntry{Id: child.ino, Attr: attrFor(child)}, nil
}

func (fs *InodeMemFS) Create(ctx context.Context, rc fusekit.RequestContext, parent fusekit.InodeId, name string, mode os.FileMode, flags fusekit.OpenFlags) (fusekit.ChildEntry, fusekit.HandleId, error) {
	entry, err := fs.MkNod(ctx, rc, parent, name, mode, 0)
	return entry, 0, err
}

func (fs *InodeMemFS) Symlink(ctx context.Context, rc fusekit.RequestContext, parent fusekit.InodeId, name string, target string) (fusekit.ChildEntry, error) {
	fs.t.mu.Lock()
	defer fs.t.mu.Unlock()

	p, err := fs.get(parent)
	if err != nil {
		return fusekit.ChildEntry{}, err
	}
	child, err := fs.t.mkChild(p, name, fusekit.KindSymlink, os.ModeSymlink|0777, rc)
	if err != nil {
		return fusekit.ChildEntry{}, err
	}
	child.target = target
	fs.allocate(child)
	return fusekit.ChildEntry{Id: child.ino, Attr: attrFor(child)}, nil
}

func (fs *InodeMemFS) ReadLink(ctx context.Context, rc fusekit.RequestContext, id fusekit.InodeId) (string, error) {
	fs.t.mu.Lock()
	defer fs.t.mu.Unlock()

	n, err := fs.get(id)
	if err != nil {
		return "", err
	}
	if n.kind != fusekit.KindSymlink {
		return "", fusekit.ErrInvalidArgument("not a symlink")
	}
	return n.target, nil
}

func (fs *InodeMemFS) Link(ctx context.Context, rc fusekit.RequestContext, target fusekit.InodeId, newParent fusekit.InodeId, newName string) (fusekit.ChildEntry, error) {
	fs.t.mu.Lock()
	defer fs.t.mu.Unlock()

	src, err := fs.get(target)
	if err != nil {
		return fusekit.ChildEntry{}, err
	}
	p, err := fs.get(newParent)
	if err != nil {
		return fusekit.ChildEntry{}, err
	}
	if p.kind != fusekit.KindDirectory {
		return fusekit.ChildEntry{}, fusekit.ErrNotDirectory("")
	}
	if _, exists := p.children[newName]; exists {
		return fusekit.ChildEntry{}, fusekit.ErrExists(newName)
	}

	p.addChild(fs.t.clock, newName, src)
	src.nlink++
	return fusekit.ChildEntry{Id: src.ino, Attr: attrFor(src)}, nil
}

func (fs *InodeMemFS) Unlink(ctx context.Context, rc fusekit.RequestContext, parent fusekit.InodeId, name string) error {
	fs.t.mu.Lock()
	defer fs.t.mu.Unlock()

	p, err := fs.get(parent)
	if err != nil {
		return err
	}
	return fs.t.unlink(p, name, false)
}

func (fs *InodeMemFS) RmDir(ctx context.Context, rc fusekit.RequestContext, parent fusekit.InodeId, name string) error {
	fs.t.mu.Lock()
	defer fs.t.mu.Unlock()

	p, err := fs.get(parent)
	if err != nil {
		return err
	}
	return fs.t.unlink(p, name, true)
}

func (fs *InodeMemFS) Rename(ctx context.Context, rc fusekit.RequestContext, oldParent fusekit.InodeId, oldName string, newParent fusekit.InodeId, newName string) error {
	fs.t.mu.Lock()
	defer fs.t.mu.Unlock()

	op, err := fs.get(oldParent)
	if err != nil {
		return err
	}
	np, err := fs.get(newParent)
	if err != nil {
		return err
	}
	child, ok := op.children[oldName]
	if !ok {
		return fusekit.ErrNotFound(oldName)
	}
	if existing := np.children[newName]; existing != nil {
		if existing.kind == fusekit.KindDirectory && len(existing.children) != 0 {
			return fusekit.ErrNotEmpty(newName)
		}
		np.removeChild(fs.t.clock, newName)
	}

	op.removeChild(fs.t.clock, oldName)
	np.addChild(fs.t.clock, newName, child)
	return nil
}

func (fs *InodeMemFS) Open(ctx context.Context, rc fusekit.RequestContext, id fusekit.InodeId, flags fusekit.OpenFlags) (fusekit.HandleId, error) {
	fs.t.mu.Lock()
	defer fs.t.mu.Unlock()

	if _, err := fs.get(id); err != nil {
		return 0, err
	}
	return 0, nil
}

func (fs *InodeMemFS) Read(ctx context.Context, rc fusekit.RequestContext, id fusekit.InodeId, handle fusekit.HandleId, offset int64, size int) ([]byte, error) {
	fs.t.mu.Lock()
	defer fs.t.mu.Unlock()

	n, err := fs.get(id)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, size)
	read, _ := n.readAt(buf, offset)
	return buf[:read], nil
}

func (fs *InodeMemFS) Write(ctx context.Context, rc fusekit.RequestContext, id fusekit.InodeId, handle fusekit.HandleId, offset int64, data []byte) (int, error) {
	fs.t.mu.Lock()
	defer fs.t.mu.Unlock()

	n, err := fs.get(id)
	if err != nil {
		return 0, err
	}
	return n.writeAt(fs.t.clock, data, offset)
}

func (fs *InodeMemFS) OpenDir(ctx context.Context, rc fusekit.RequestContext, id fusekit.InodeId) (fusekit.HandleId, []fusekit.DirEntry, error) {
	fs.t.mu.Lock()
	defer fs.t.mu.Unlock()

	n, err := fs.get(id)
	if err != nil {
		return 0, nil, err
	}
	if n.kind != fusekit.KindDirectory {
		return 0, nil, fusekit.ErrNotDirectory("")
	}

	entries := dirEntries(n, func(name string, child *node) fusekit.FileId {
		return child.ino
	})
	return 0, entries, nil
}

func (fs *InodeMemFS) ReadDir(ctx context.Context, rc fusekit.RequestContext, id fusekit.InodeId, handle fusekit.HandleId, offset int) ([]fusekit.DirEntry, error) {
	// The dispatcher's dirTable already owns the snapshot captured at
	// OpenDir; memfs has nothing more to contribute per call.
	return nil, fusekit.ErrFunctionNotImplemented("readdir is served from the opendir snapshot")
}

func (fs *InodeMemFS) StatFS(ctx context.Context, rc fusekit.RequestContext, id fusekit.InodeId) (fusekit.StatFS, error) {
	return fusekit.StatFS{
		Blocks:      1 << 20,
		BlocksFree:  1 << 19,
		BlocksAvail: 1 << 19,
		Files:       1 << 16,
		FilesFree:   1 << 15,
		BlockSize:   4096,
		NameLen:     255,
	}, nil
}

func (fs *InodeMemFS) Access(ctx context.Context, rc fusekit.RequestContext, id fusekit.InodeId, mask uint32) error {
	fs.t.mu.Lock()
	defer fs.t.mu.Unlock()
	_, err := fs.get(id)
	return err
}

func (fs *InodeMemFS) GetXAttr(ctx context.Context, rc fusekit.RequestContext, id fusekit.InodeId, name string, size uint32) ([]byte, error) {
	fs.t.mu.Lock()
	defer fs.t.mu.Unlock()

	n, err := fs.get(id)
	if err != nil {
		return nil, err
	}
	return getXAttr(n, name)
}

func (fs *InodeMemFS) SetXAttr(ctx context.Context, rc fusekit.RequestContext, id fusekit.InodeId, name string, value []byte, flags uint32) error {
	fs.t.mu.Lock()
	defer fs.t.mu.Unlock()

	n, err := fs.get(id)
	if err != nil {
		return err
	}
	setXAttr(n, name, value)
	return nil
}

func (fs *InodeMemFS) ListXAttr(ctx context.Context, rc fusekit.RequestContext, id fusekit.InodeId, size uint32) ([]string, error) {
	fs.t.mu.Lock()
	defer fs.t.mu.Unlock()

	n, err := fs.get(id)
	if err != nil {
		return nil, err
	}
	return listXAttr(n), nil
}

func (fs *InodeMemFS) RemoveXAttr(ctx context.Context, rc fusekit.RequestContext, id fusekit.InodeId, name string) error {
	fs.t.mu.Lock()
	defer fs.t.mu.Unlock()

	n, err := fs.get(id)
	if err != nil {
		return err
	}
	return removeXAttr(n, name)
}
