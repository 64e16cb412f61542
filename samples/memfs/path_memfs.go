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

// PathMemFS implements fusekit.Handler[fusekit.PathId]: there is no stable
// per-node id, every operation resolves the node by walking the path's
// component sequence from the root (spec.md §4.5, Path mode). Renames are
// simply a matter of moving a node between two parents' entry tables; no
// id-rewrite bookkeeping is needed here because the PathId itself always
// names the current location (fusekit.IdResolver.Rename handles keeping the
// kernel's cached ids in sync).
type PathMemFS struct {
	fusekit.DefaultHandler[fusekit.PathId]

	t *tree
}

var _ fusekit.Handler[fusekit.PathId] = (*PathMemFS)(nil)

func NewPathMemFS(clock timeutil.Clock) *PathMemFS {
	return &PathMemFS{t: newTree(clock)}
}

// resolve walks id's component sequence from the root, failing with
// KindStaleInode if any component along the way is missing or not a
// directory.
func (fs *PathMemFS) resolve(id fusekit.PathId) (*node, error) {
	n := fs.t.root
	for _, c := range id.Components {
		if n.kind != fusekit.KindDirectory {
			return nil, fusekit.ErrStaleInode("")
		}
		next := n.lookupChild(c)
		if next == nil {
			return nil, fusekit.ErrStaleInode("")
		}
		n = next
	}
	return n, nil
}

func (fs *PathMemFS) Init(ctx context.Context, rc fusekit.RequestContext) error {
	fs.t.mu.Lock()
	defer fs.t.mu.Unlock()

	fs.t.root.uid = rc.Uid
	fs.t.root.gid = rc.Gid
	return nil
}

func (fs *PathMemFS) LookUp(ctx context.Context, rc fusekit.RequestContext, parent fusekit.PathId, name string) (fusekit.ChildEntry, error) {
	fs.t.mu.Lock()
	defer fs.t.mu.Unlock()

	p, err := fs.resolve(parent)
	if err != nil {
		return fusekit.ChildEntry{}, err
	}
	child := p.lookupChild(name)
	if child == nil {
		return fusekit.ChildEntry{}, fusekit.ErrNotFound(name)
	}
	return fusekit.ChildEntry{Id: parent.Child(name), Attr: attrFor(child)}, nil
}

func (fs *PathMemFS) GetAttr(ctx context.Context, rc fusekit.RequestContext, id fusekit.PathId) (fusekit.Attr, error) {
	fs.t.mu.Lock()
	defer fs.t.mu.Unlock()

	n, err := fs.resolve(id)
	if err != nil {
		return fusekit.Attr{}, err
	}
	return attrFor(n), nil
}

func (fs *PathMemFS) SetAttr(ctx context.Context, rc fusekit.RequestContext, id fusekit.PathId, req fusekit.SetAttrRequest) (fusekit.Attr, error) {
	fs.t.mu.Lock()
	defer fs.t.mu.Unlock()

	n, err := fs.resolve(id)
	if err != nil {
		return fusekit.Attr{}, err
	}
	n.setAttr(fs.t.clock, req)
	return attrFor(n), nil
}

func (fs *PathMemFS) MkDir(ctx context.Context, rc fusekit.RequestContext, parent fusekit.PathId, name string, mode os.FileMode) (fusekit.ChildEntry, error) {
	fs.t.mu.Lock()
	defer fs.t.mu.Unlock()

	p, err := fs.resolve(parent)
	if err != nil {
		return fusekit.ChildEntry{}, err
	}
	child, err := fs.t.mkChild(p, name, fusekit.KindDirectory, os.ModeDir|mode, rc)
	if err != nil {
		return fusekit.ChildEntry{}, err
	}
	return fusekit.ChildEntry{Id: parent.Child(name), Attr: attrFor(child)}, nil
}

func (fs *PathMemFS) MkNod(ctx context.Context, rc fusekit.RequestContext, parent fusekit.PathId, name string, mode os.FileMode, rdev uint32) (fusekit.ChildEntry, error) {
	fs.t.mu.Lock()
	defer fs.t.mu.Unlock()

	p, err := fs.resolve(parent)
	if err != nil {
		return fusekit.ChildEntry{}, err
	}
	child, err := fs.t.mkChild(p, name, fusekit.KindRegular, mode, rc)
	if err != nil {
		return fusekit.ChildEntry{}, err
	}
	return fusekit.ChildEntry{Id: parent.Child(name), Attr: attrFor(child)}, nil
}

func (fs *PathMemFS) Create(ctx context.Context, rc fusekit.RequestContext, parent fusekit.PathId, name string, mode os.FileMode, flags fusekit.OpenFlags) (fusekit.ChildEntry, fusekit.HandleId, error) {
	entry, err := fs.MkNod(ctx, rc, parent, name, mode, 0)
	return entry, 0, err
}

func (fs *PathMemFS) Symlink(ctx context.Context, rc fusekit.RequestContext, parent fusekit.PathId, name string, target string) (fusekit.ChildEntry, error) {
	fs.t.mu.Lock()
	defer fs.t.mu.Unlock()

	p, err := fs.resolve(parent)
	if err != nil {
		return fusekit.ChildEntry{}, err
	}
	child, err := fs.t.mkChild(p, name, fusekit.KindSymlink, os.ModeSymlink|0777, rc)
	if err != nil {
		return fusekit.ChildEntry{}, err
	}
	child.target = target
	return fusekit.ChildEntry{Id: parent.Child(name), Attr: attrFor(child)}, nil
}

func (fs *PathMemFS) ReadLink(ctx context.Context, rc fusekit.RequestContext, id fusekit.PathId) (string, error) {
	fs.t.mu.Lock()
	defer fs.t.mu.Unlock()

	n, err := fs.resolve(id)
	if err != nil {
		return "", err
	}
	if n.kind != fusekit.KindSymlink {
		return "", fusekit.ErrInvalidArgument("not a symlink")
	}
	return n.target, nil
}

func (fs *PathMemFS) Link(ctx context.Context, rc fusekit.RequestContext, target fusekit.PathId, newParent fusekit.PathId, newName string) (fusekit.ChildEntry, error) {
	fs.t.mu.Lock()
	defer fs.t.mu.Unlock()

	src, err := fs.resolve(target)
	if err != nil {
		return fusekit.ChildEntry{}, err
	}
	p, err := fs.resolve(newParent)
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
	return fusekit.ChildEntry{Id: newParent.Child(newName), Attr: attrFor(src)}, nil
}

func (fs *PathMemFS) Unlink(ctx context.Context, rc fusekit.RequestContext, parent fusekit.PathId, name string) error {
	fs.t.mu.Lock()
	defer fs.t.mu.Unlock()

	p, err := fs.resolve(parent)
	if err != nil {
		return err
	}
	return fs.t.unlink(p, name, false)
}

func (fs *PathMemFS) RmDir(ctx context.Context, rc fusekit.RequestContext, parent fusekit.PathId, name string) error {
	fs.t.mu.Lock()
	defer fs.t.mu.Unlock()

	p, err := fs.resolve(parent)
	if err != nil {
		return err
	}
	return fs.t.unlink(p, name, true)
}

func (fs *PathMemFS) Rename(ctx context.Context, rc fusekit.RequestContext, oldParent fusekit.PathId, oldName string, newParent fusekit.PathId, newName string) error {
	fs.t.mu.Lock()
	defer fs.t.mu.Unlock()

	op, err := fs.resolve(oldParent)
	if err != nil {
		return err
	}
	np, err := fs.resolve(newParent)
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

func (fs *PathMemFS) Open(ctx context.Context, rc fusekit.RequestContext, id fusekit.PathId, flags fusekit.OpenFlags) (fusekit.HandleId, error) {
	fs.t.mu.Lock()
	defer fs.t.mu.Unlock()

	if _, err := fs.resolve(id); err != nil {
		return 0, err
	}
	return 0, nil
}

func (fs *PathMemFS) Read(ctx context.Context, rc fusekit.RequestContext, id fusekit.PathId, handle fusekit.HandleId, offset int64, size int) ([]byte, error) {
	fs.t.mu.Lock()
	defer fs.t.mu.Unlock()

	n, err := fs.resolve(id)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, size)
	read, _ := n.readAt(buf, offset)
	return buf[:read], nil
}

func (fs *PathMemFS) Write(ctx context.Context, rc fusekit.RequestContext, id fusekit.PathId, handle fusekit.HandleId, offset int64, data []byte) (int, error) {
	fs.t.mu.Lock()
	defer fs.t.mu.Unlock()

	n, err := fs.resolve(id)
	if err != nil {
		return 0, err
	}
	return n.writeAt(fs.t.clock, data, offset)
}

func (fs *PathMemFS) OpenDir(ctx context.Context, rc fusekit.RequestContext, id fusekit.PathId) (fusekit.HandleId, []fusekit.DirEntry, error) {
	fs.t.mu.Lock()
	defer fs.t.mu.Unlock()

	n, err := fs.resolve(id)
	if err != nil {
		return 0, nil, err
	}
	if n.kind != fusekit.KindDirectory {
		return 0, nil, fusekit.ErrNotDirectory("")
	}

	entries := dirEntries(n, func(name string, child *node) fusekit.FileId {
		return id.Child(name)
	})
	return 0, entries, nil
}

func (fs *PathMemFS) StatFS(ctx context.Context, rc fusekit.RequestContext, id fusekit.PathId) (fusekit.StatFS, error) {
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

func (fs *PathMemFS) Access(ctx context.Context, rc fusekit.RequestContext, id fusekit.PathId, mask uint32) error {
	fs.t.mu.Lock()
	defer fs.t.mu.Unlock()
	_, err := fs.resolve(id)
	return err
}

func (fs *PathMemFS) GetXAttr(ctx context.Context, rc fusekit.RequestContext, id fusekit.PathId, name string, size uint32) ([]byte, error) {
	fs.t.mu.Lock()
	defer fs.t.mu.Unlock()

	n, err := fs.resolve(id)
	if err != nil {
		return nil, err
	}
	return getXAttr(n, name)
}

func (fs *PathMemFS) SetXAttr(ctx context.Context, rc fusekit.RequestContext, id fusekit.PathId, name string, value []byte, flags uint32) error {
	fs.t.mu.Lock()
	defer fs.t.mu.Unlock()

	n, err := fs.resolve(id)
	if err != nil {
		return err
	}
	setXAttr(n, name, value)
	return nil
}

func (fs *PathMemFS) ListXAttr(ctx context.Context, rc fusekit.RequestContext, id fusekit.PathId, size uint32) ([]string, error) {
	fs.t.mu.Lock()
	defer fs.t.mu.Unlock()

	n, err := fs.resolve(id)
	if err != nil {
		return nil, err
	}
	return listXAttr(n), nil
}

func (fs *PathMemFS) RemoveXAttr(ctx context.Context, rc fusekit.RequestContext, id fusekit.PathId, name string) error {
	fs.t.mu.Lock()
	defer fs.t.mu.Unlock()

	n, err := fs.resolve(id)
	if err != nil {
		return err
	}
	return removeXAttr(n, name)
}
