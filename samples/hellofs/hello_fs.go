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

// Package hellofs is a fixed, read-only filesystem identified by integer
// inodes:
//
//	hello
//	dir/
//	    world
//
// Each file contains the string "Hello, world!". It exercises
// fuse.Handler[fuse.InodeId] end to end with the minimum number of moving
// parts, grounded on the teacher's samples/hellofs/hello_fs.go.
package hellofs

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/jacobsa/timeutil"

	fusekit "github.com/arcbound/fusekit"
)

const (
	RootInode = fusekit.RootInodeId
	helloIno  fusekit.InodeId = 2
	dirIno    fusekit.InodeId = 3
	worldIno  fusekit.InodeId = 4
)

const helloContents = "Hello, world!"

type inodeInfo struct {
	kind     fusekit.NodeKind
	mode     os.FileMode
	size     uint64
	children []fusekit.DirEntry
}

var gInodeInfo = map[fusekit.InodeId]inodeInfo{
	RootInode: {
		kind: fusekit.KindDirectory,
		mode: 0555,
		children: []fusekit.DirEntry{
			{Name: "hello", Id: helloIno, Kind: fusekit.KindRegular},
			{Name: "dir", Id: dirIno, Kind: fusekit.KindDirectory},
		},
	},
	helloIno: {
		kind: fusekit.KindRegular,
		mode: 0444,
		size: uint64(len(helloContents)),
	},
	dirIno: {
		kind: fusekit.KindDirectory,
		mode: 0555,
		children: []fusekit.DirEntry{
			{Name: "world", Id: worldIno, Kind: fusekit.KindRegular},
		},
	},
	worldIno: {
		kind: fusekit.KindRegular,
		mode: 0444,
		size: uint64(len(helloContents)),
	},
}

// HelloFS implements fuse.Handler[fusekit.InodeId]. Embedding DefaultHandler
// means operations this sample doesn't care about (setattr, symlinks,
// xattrs, locking, ...) reply ENOSYS automatically.
type HelloFS struct {
	fusekit.DefaultHandler[fusekit.InodeId]
	Clock timeutil.Clock
}

var _ fusekit.Handler[fusekit.InodeId] = (*HelloFS)(nil)

func New(clock timeutil.Clock) *HelloFS {
	return &HelloFS{Clock: clock}
}

func (fs *HelloFS) attrFor(info inodeInfo) fusekit.Attr {
	now := fs.Clock.Now()
	return fusekit.Attr{
		Size:  info.size,
		Mode:  info.mode,
		Nlink: 1,
		Kind:  info.kind,
		Atime: now,
		Mtime: now,
		Ctime: now,
	}
}

func (fs *HelloFS) Init(ctx context.Context, rc fusekit.RequestContext) error {
	return nil
}

func (fs *HelloFS) LookUp(ctx context.Context, rc fusekit.RequestContext, parent fusekit.InodeId, name string) (fusekit.ChildEntry, error) {
	parentInfo, ok := gInodeInfo[parent]
	if !ok {
		return fusekit.ChildEntry{}, fusekit.ErrNotFound("unknown parent inode")
	}

	for _, child := range parentInfo.children {
		if child.Name != name {
			continue
		}
		childIno := child.Id.(fusekit.InodeId)
		return fusekit.ChildEntry{
			Id:   childIno,
			Attr: fs.attrFor(gInodeInfo[childIno]),
		}, nil
	}

	return fusekit.ChildEntry{}, fusekit.ErrNotFound(name)
}

func (fs *HelloFS) GetAttr(ctx context.Context, rc fusekit.RequestContext, id fusekit.InodeId) (fusekit.Attr, error) {
	info, ok := gInodeInfo[id]
	if !ok {
		return fusekit.Attr{}, fusekit.ErrNotFound("unknown inode")
	}
	return fs.attrFor(info), nil
}

func (fs *HelloFS) OpenDir(ctx context.Context, rc fusekit.RequestContext, id fusekit.InodeId) (fusekit.HandleId, []fusekit.DirEntry, error) {
	info, ok := gInodeInfo[id]
	if !ok || info.kind != fusekit.KindDirectory {
		return 0, nil, fusekit.ErrNotDirectory("")
	}
	return 0, info.children, nil
}

func (fs *HelloFS) ReadDir(ctx context.Context, rc fusekit.RequestContext, id fusekit.InodeId, handle fusekit.HandleId, offset int) ([]fusekit.DirEntry, error) {
	info, ok := gInodeInfo[id]
	if !ok {
		return nil, fusekit.ErrNotFound("unknown inode")
	}
	if offset >= len(info.children) {
		return nil, nil
	}
	return info.children[offset:], nil
}

func (fs *HelloFS) Open(ctx context.Context, rc fusekit.RequestContext, id fusekit.InodeId, flags fusekit.OpenFlags) (fusekit.HandleId, error) {
	if _, ok := gInodeInfo[id]; !ok {
		return 0, fusekit.ErrNotFound("unknown inode")
	}
	return 0, nil
}

func (fs *HelloFS) Read(ctx context.Context, rc fusekit.RequestContext, id fusekit.InodeId, handle fusekit.HandleId, offset int64, size int) ([]byte, error) {
	if _, ok := gInodeInfo[id]; !ok {
		return nil, fusekit.ErrNotFound("unknown inode")
	}

	reader := strings.NewReader(helloContents)
	buf := make([]byte, size)
	n, err := reader.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		return nil, err
	}
	return buf[:n], nil
}
