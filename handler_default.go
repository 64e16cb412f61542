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

// DefaultHandler responds to every operation with ENOSYS, except Init,
// Forget, Release, ReleaseDir and Access, which succeed without doing
// anything. Embed it in an
// application's handler struct to inherit defaults for the methods it
// doesn't implement, ensuring the struct continues to satisfy Handler[T]
// even as new operations are added to the interface. Grounded on the
// teacher's fuseutil.NotImplementedFileSystem.
type DefaultHandler[T FileId] struct{}

var _ Handler[InodeId] = DefaultHandler[InodeId]{}
var _ Handler[PathId] = DefaultHandler[PathId]{}

func notImplemented() error { return ErrFunctionNotImplemented("") }

func (DefaultHandler[T]) Init(ctx context.Context, rc RequestContext) error { return nil }

func (DefaultHandler[T]) LookUp(ctx context.Context, rc RequestContext, parent T, name string) (ChildEntry, error) {
	return ChildEntry{}, notImplemented()
}

func (DefaultHandler[T]) GetAttr(ctx context.Context, rc RequestContext, id T) (Attr, error) {
	return Attr{}, notImplemented()
}

func (DefaultHandler[T]) SetAttr(ctx context.Context, rc RequestContext, id T, req SetAttrRequest) (Attr, error) {
	return Attr{}, notImplemented()
}

func (DefaultHandler[T]) Forget(ctx context.Context, rc RequestContext, id T, n uint64) {}

func (DefaultHandler[T]) ReadLink(ctx context.Context, rc RequestContext, id T) (string, error) {
	return "", notImplemented()
}

func (DefaultHandler[T]) MkNod(ctx context.Context, rc RequestContext, parent T, name string, mode os.FileMode, rdev uint32) (ChildEntry, error) {
	return ChildEntry{}, notImplemented()
}

func (DefaultHandler[T]) MkDir(ctx context.Context, rc RequestContext, parent T, name string, mode os.FileMode) (ChildEntry, error) {
	return ChildEntry{}, notImplemented()
}

func (DefaultHandler[T]) Unlink(ctx context.Context, rc RequestContext, parent T, name string) error {
	return notImplemented()
}

func (DefaultHandler[T]) RmDir(ctx context.Context, rc RequestContext, parent T, name string) error {
	return notImplemented()
}

func (DefaultHandler[T]) Symlink(ctx context.Context, rc RequestContext, parent T, name string, target string) (ChildEntry, error) {
	return ChildEntry{}, notImplemented()
}

func (DefaultHandler[T]) Rename(ctx context.Context, rc RequestContext, oldParent T, oldName string, newParent T, newName string) error {
	return notImplemented()
}

func (DefaultHandler[T]) Link(ctx context.Context, rc RequestContext, target T, newParent T, newName string) (ChildEntry, error) {
	return ChildEntry{}, notImplemented()
}

func (DefaultHandler[T]) Open(ctx context.Context, rc RequestContext, id T, flags OpenFlags) (HandleId, error) {
	return 0, notImplemented()
}

func (DefaultHandler[T]) Read(ctx context.Context, rc RequestContext, id T, handle HandleId, offset int64, size int) ([]byte, error) {
	return nil, notImplemented()
}

func (DefaultHandler[T]) Write(ctx context.Context, rc RequestContext, id T, handle HandleId, offset int64, data []byte) (int, error) {
	return 0, notImplemented()
}

func (DefaultHandler[T]) Flush(ctx context.Context, rc RequestContext, id T, handle HandleId) error {
	return notImplemented()
}

func (DefaultHandler[T]) Release(ctx context.Context, rc RequestContext, id T, handle HandleId) error {
	return nil
}

func (DefaultHandler[T]) FSync(ctx context.Context, rc RequestContext, id T, handle HandleId, dataOnly bool) error {
	return notImplemented()
}

func (DefaultHandler[T]) OpenDir(ctx context.Context, rc RequestContext, id T) (HandleId, []DirEntry, error) {
	return 0, nil, notImplemented()
}

func (DefaultHandler[T]) ReadDir(ctx context.Context, rc RequestContext, id T, handle HandleId, offset int) ([]DirEntry, error) {
	return nil, notImplemented()
}

func (DefaultHandler[T]) ReadDirPlus(ctx context.Context, rc RequestContext, id T, handle HandleId, offset int) ([]DirEntry, error) {
	return nil, notImplemented()
}

func (DefaultHandler[T]) ReleaseDir(ctx context.Context, rc RequestContext, id T, handle HandleId) error {
	return nil
}

func (DefaultHandler[T]) FSyncDir(ctx context.Context, rc RequestContext, id T, handle HandleId, dataOnly bool) error {
	return notImplemented()
}

func (DefaultHandler[T]) StatFS(ctx context.Context, rc RequestContext, id T) (StatFS, error) {
	return StatFS{}, notImplemented()
}

func (DefaultHandler[T]) SetXAttr(ctx context.Context, rc RequestContext, id T, name string, value []byte, flags uint32) error {
	return notImplemented()
}

func (DefaultHandler[T]) GetXAttr(ctx context.Context, rc RequestContext, id T, name string, size uint32) ([]byte, error) {
	return nil, notImplemented()
}

func (DefaultHandler[T]) ListXAttr(ctx context.Context, rc RequestContext, id T, size uint32) ([]string, error) {
	return nil, notImplemented()
}

func (DefaultHandler[T]) RemoveXAttr(ctx context.Context, rc RequestContext, id T, name string) error {
	return notImplemented()
}

func (DefaultHandler[T]) Access(ctx context.Context, rc RequestContext, id T, mask uint32) error {
	return nil
}

func (DefaultHandler[T]) Create(ctx context.Context, rc RequestContext, parent T, name string, mode os.FileMode, flags OpenFlags) (ChildEntry, HandleId, error) {
	return ChildEntry{}, 0, notImplemented()
}

func (DefaultHandler[T]) GetLk(ctx context.Context, rc RequestContext, id T, handle HandleId, lock FileLock) (FileLock, error) {
	return FileLock{}, notImplemented()
}

func (DefaultHandler[T]) SetLk(ctx context.Context, rc RequestContext, id T, handle HandleId, lock FileLock, wait bool) error {
	return notImplemented()
}

func (DefaultHandler[T]) BMap(ctx context.Context, rc RequestContext, id T, blockSize uint32, block uint64) (uint64, error) {
	return 0, notImplemented()
}

func (DefaultHandler[T]) IoCtl(ctx context.Context, rc RequestContext, id T, handle HandleId, cmd uint32, arg []byte) ([]byte, error) {
	return nil, notImplemented()
}

func (DefaultHandler[T]) Poll(ctx context.Context, rc RequestContext, id T, handle HandleId) (uint32, error) {
	return 0, notImplemented()
}

func (DefaultHandler[T]) Fallocate(ctx context.Context, rc RequestContext, id T, handle HandleId, offset int64, length int64, mode uint32) error {
	return notImplemented()
}

func (DefaultHandler[T]) Lseek(ctx context.Context, rc RequestContext, id T, handle HandleId, offset int64, whence int) (int64, error) {
	return 0, notImplemented()
}

func (DefaultHandler[T]) CopyFileRange(ctx context.Context, rc RequestContext, srcId T, srcHandle HandleId, srcOffset int64, dstId T, dstHandle HandleId, dstOffset int64, length int) (int, error) {
	return 0, notImplemented()
}
