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

package fuse

import (
	"context"
	"os"
)

// Handler is the set of operations an embedding application implements,
// parameterized over the FileId flavor chosen for the mount (spec.md §4.5).
// All methods have default no-op/ENOSYS implementations available by
// embedding DefaultHandler[T]; an application overrides only the subset it
// cares about.
//
// Must be safe for concurrent access when mounted with the parallel or
// async dispatcher; the serial dispatcher never calls into a Handler from
// more than one goroutine at a time.
type Handler[T FileId] interface {
	Init(ctx context.Context, rc RequestContext) error

	LookUp(ctx context.Context, rc RequestContext, parent T, name string) (ChildEntry, error)
	GetAttr(ctx context.Context, rc RequestContext, id T) (Attr, error)
	SetAttr(ctx context.Context, rc RequestContext, id T, req SetAttrRequest) (Attr, error)
	Forget(ctx context.Context, rc RequestContext, id T, n uint64)

	ReadLink(ctx context.Context, rc RequestContext, id T) (string, error)
	MkNod(ctx context.Context, rc RequestContext, parent T, name string, mode os.FileMode, rdev uint32) (ChildEntry, error)
	MkDir(ctx context.Context, rc RequestContext, parent T, name string, mode os.FileMode) (ChildEntry, error)
	Unlink(ctx context.Context, rc RequestContext, parent T, name string) error
	RmDir(ctx context.Context, rc RequestContext, parent T, name string) error
	Symlink(ctx context.Context, rc RequestContext, parent T, name string, target string) (ChildEntry, error)
	Rename(ctx context.Context, rc RequestContext, oldParent T, oldName string, newParent T, newName string) error
	Link(ctx context.Context, rc RequestContext, target T, newParent T, newName string) (ChildEntry, error)

	Open(ctx context.Context, rc RequestContext, id T, flags OpenFlags) (HandleId, error)
	Read(ctx context.Context, rc RequestContext, id T, handle HandleId, offset int64, size int) ([]byte, error)
	Write(ctx context.Context, rc RequestContext, id T, handle HandleId, offset int64, data []byte) (int, error)
	Flush(ctx context.Context, rc RequestContext, id T, handle HandleId) error
	Release(ctx context.Context, rc RequestContext, id T, handle HandleId) error
	FSync(ctx context.Context, rc RequestContext, id T, handle HandleId, dataOnly bool) error

	OpenDir(ctx context.Context, rc RequestContext, id T) (HandleId, []DirEntry, error)
	ReadDir(ctx context.Context, rc RequestContext, id T, handle HandleId, offset int) ([]DirEntry, error)
	ReadDirPlus(ctx context.Context, rc RequestContext, id T, handle HandleId, offset int) ([]DirEntry, error)
	ReleaseDir(ctx context.Context, rc RequestContext, id T, handle HandleId) error
	FSyncDir(ctx context.Context, rc RequestContext, id T, handle HandleId, dataOnly bool) error

	StatFS(ctx context.Context, rc RequestContext, id T) (StatFS, error)

	SetXAttr(ctx context.Context, rc RequestContext, id T, name string, value []byte, flags uint32) error
	GetXAttr(ctx context.Context, rc RequestContext, id T, name string, size uint32) ([]byte, error)
	ListXAttr(ctx context.Context, rc RequestContext, id T, size uint32) ([]string, error)
	RemoveXAttr(ctx context.Context, rc RequestContext, id T, name string) error

	Access(ctx context.Context, rc RequestContext, id T, mask uint32) error
	Create(ctx context.Context, rc RequestContext, parent T, name string, mode os.FileMode, flags OpenFlags) (ChildEntry, HandleId, error)

	GetLk(ctx context.Context, rc RequestContext, id T, handle HandleId, lock FileLock) (FileLock, error)
	SetLk(ctx context.Context, rc RequestContext, id T, handle HandleId, lock FileLock, wait bool) error
	BMap(ctx context.Context, rc RequestContext, id T, blockSize uint32, block uint64) (uint64, error)
	IoCtl(ctx context.Context, rc RequestContext, id T, handle HandleId, cmd uint32, arg []byte) ([]byte, error)
	Poll(ctx context.Context, rc RequestContext, id T, handle HandleId) (uint32, error)
	Fallocate(ctx context.Context, rc RequestContext, id T, handle HandleId, offset int64, length int64, mode uint32) error
	Lseek(ctx context.Context, rc RequestContext, id T, handle HandleId, offset int64, whence int) (int64, error)
	CopyFileRange(ctx context.Context, rc RequestContext, srcId T, srcHandle HandleId, srcOffset int64, dstId T, dstHandle HandleId, dstOffset int64, length int) (int, error)
}

// HandleId is an opaque identifier for an open file or directory handle,
// minted by Open/OpenDir and echoed by the kernel on follow-up calls.
type HandleId uint64

// OpenFlags mirrors the open(2) flags the kernel passes through.
type OpenFlags uint32

// SetAttrRequest carries the attributes to change; a nil field means "leave
// unchanged". Mirrors the teacher's SetInodeAttributesRequest.
type SetAttrRequest struct {
	Size  *uint64
	Mode  *os.FileMode
	Atime *int64
	Mtime *int64
	Uid   *uint32
	Gid   *uint32
}

// StatFS is the uniform statfs result, populated from whichever
// platform-specific syscall the mounted backing store uses (spec.md §6's
// cross-platform statfs shim).
type StatFS struct {
	Blocks     uint64
	BlocksFree uint64
	BlocksAvail uint64
	Files      uint64
	FilesFree  uint64
	BlockSize  uint32
	NameLen    uint32
}

// FileLock describes a POSIX record lock, used by GetLk/SetLk. Type is one
// of the LockType* constants below, already translated from whatever
// platform-specific wire numbering the kernel used (flock_linux.go,
// flock_darwin.go).
type FileLock struct {
	Start uint64
	End   uint64
	Type  uint32
	Pid   uint32
}

// Platform-neutral lock types for FileLock.Type.
const (
	LockTypeRead uint32 = iota
	LockTypeWrite
	LockTypeUnlock
)
