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

package memfs_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fusekit "github.com/arcbound/fusekit"
	"github.com/arcbound/fusekit/samples/memfs"
)

// fixedClock is a trivial timeutil.Clock that never advances on its own;
// tests that care about ordering call Advance explicitly.
type fixedClock struct {
	t time.Time
}

func newFixedClock() *fixedClock { return &fixedClock{t: time.Unix(1000, 0)} }

func (c *fixedClock) Now() time.Time { return c.t }

func (c *fixedClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

var rootCtx = context.Background()
var rc = fusekit.RequestContext{Uid: 501, Gid: 20, Pid: 1}

func TestInodeMemFS_MkDirAndLookUp(t *testing.T) {
	fs := memfs.NewInodeMemFS(newFixedClock())
	require.NoError(t, fs.Init(rootCtx, rc))

	entry, err := fs.MkDir(rootCtx, rc, fusekit.RootInodeId, "dir", 0755)
	require.NoError(t, err)
	assert.Equal(t, fusekit.KindDirectory, entry.Attr.Kind)

	found, err := fs.LookUp(rootCtx, rc, fusekit.RootInodeId, "dir")
	require.NoError(t, err)
	assert.Equal(t, entry.Id, found.Id)

	_, err = fs.LookUp(rootCtx, rc, fusekit.RootInodeId, "missing")
	assert.Equal(t, fusekit.KindNotFound, err.(*fusekit.Error).Kind)
}

func TestInodeMemFS_CreateWriteRead(t *testing.T) {
	fs := memfs.NewInodeMemFS(newFixedClock())
	require.NoError(t, fs.Init(rootCtx, rc))

	entry, _, err := fs.Create(rootCtx, rc, fusekit.RootInodeId, "foo", 0644, 0)
	require.NoError(t, err)
	ino := entry.Id.(fusekit.InodeId)

	n, err := fs.Write(rootCtx, rc, ino, 0, 0, []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	buf, err := fs.Read(rootCtx, rc, ino, 0, 0, 5)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf))

	attr, err := fs.GetAttr(rootCtx, rc, ino)
	require.NoError(t, err)
	assert.EqualValues(t, 5, attr.Size)
}

func TestInodeMemFS_RmDirRequiresEmpty(t *testing.T) {
	fs := memfs.NewInodeMemFS(newFixedClock())
	require.NoError(t, fs.Init(rootCtx, rc))

	_, err := fs.MkDir(rootCtx, rc, fusekit.RootInodeId, "dir", 0755)
	require.NoError(t, err)
	entry, err := fs.LookUp(rootCtx, rc, fusekit.RootInodeId, "dir")
	require.NoError(t, err)
	dirIno := entry.Id.(fusekit.InodeId)

	_, err = fs.MkDir(rootCtx, rc, dirIno, "child", 0755)
	require.NoError(t, err)

	err = fs.RmDir(rootCtx, rc, fusekit.RootInodeId, "dir")
	require.Error(t, err)
	assert.Equal(t, fusekit.KindNotEmpty, err.(*fusekit.Error).Kind)

	require.NoError(t, fs.RmDir(rootCtx, rc, dirIno, "child"))
	require.NoError(t, fs.RmDir(rootCtx, rc, fusekit.RootInodeId, "dir"))
}

func TestInodeMemFS_Rename(t *testing.T) {
	fs := memfs.NewInodeMemFS(newFixedClock())
	require.NoError(t, fs.Init(rootCtx, rc))

	_, _, err := fs.Create(rootCtx, rc, fusekit.RootInodeId, "a", 0644, 0)
	require.NoError(t, err)
	_, err = fs.MkDir(rootCtx, rc, fusekit.RootInodeId, "dir", 0755)
	require.NoError(t, err)
	dirEntry, err := fs.LookUp(rootCtx, rc, fusekit.RootInodeId, "dir")
	require.NoError(t, err)
	dirIno := dirEntry.Id.(fusekit.InodeId)

	require.NoError(t, fs.Rename(rootCtx, rc, fusekit.RootInodeId, "a", dirIno, "b"))

	_, err = fs.LookUp(rootCtx, rc, fusekit.RootInodeId, "a")
	assert.Error(t, err)
	_, err = fs.LookUp(rootCtx, rc, dirIno, "b")
	assert.NoError(t, err)
}

func TestInodeMemFS_SymlinkAndReadLink(t *testing.T) {
	fs := memfs.NewInodeMemFS(newFixedClock())
	require.NoError(t, fs.Init(rootCtx, rc))

	entry, err := fs.Symlink(rootCtx, rc, fusekit.RootInodeId, "link", "/target")
	require.NoError(t, err)

	target, err := fs.ReadLink(rootCtx, rc, entry.Id.(fusekit.InodeId))
	require.NoError(t, err)
	assert.Equal(t, "/target", target)
}

func TestInodeMemFS_OpenDirSnapshot(t *testing.T) {
	fs := memfs.NewInodeMemFS(newFixedClock())
	require.NoError(t, fs.Init(rootCtx, rc))

	_, _, err := fs.Create(rootCtx, rc, fusekit.RootInodeId, "a", 0644, 0)
	require.NoError(t, err)
	_, _, err = fs.Create(rootCtx, rc, fusekit.RootInodeId, "b", 0644, 0)
	require.NoError(t, err)

	_, entries, err := fs.OpenDir(rootCtx, rc, fusekit.RootInodeId)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Name)
	assert.Equal(t, "b", entries[1].Name)
}

func TestPathMemFS_MkDirAndLookUp(t *testing.T) {
	fs := memfs.NewPathMemFS(newFixedClock())
	require.NoError(t, fs.Init(rootCtx, rc))

	entry, err := fs.MkDir(rootCtx, rc, fusekit.RootPathId, "dir", 0755)
	require.NoError(t, err)
	assert.Equal(t, fusekit.RootPathId.Child("dir"), entry.Id)

	found, err := fs.LookUp(rootCtx, rc, fusekit.RootPathId, "dir")
	require.NoError(t, err)
	assert.Equal(t, entry.Id, found.Id)
}

func TestPathMemFS_RenameMovesSubtree(t *testing.T) {
	fs := memfs.NewPathMemFS(newFixedClock())
	require.NoError(t, fs.Init(rootCtx, rc))

	_, err := fs.MkDir(rootCtx, rc, fusekit.RootPathId, "src", 0755)
	require.NoError(t, err)
	_, err = fs.MkDir(rootCtx, rc, fusekit.RootPathId, "dst", 0755)
	require.NoError(t, err)
	_, _, err = fs.Create(rootCtx, rc, fusekit.RootPathId.Child("src"), "file", 0644, 0)
	require.NoError(t, err)

	require.NoError(t, fs.Rename(rootCtx, rc, fusekit.RootPathId, "src", fusekit.RootPathId, "dst2"))

	_, err = fs.GetAttr(rootCtx, rc, fusekit.RootPathId.Child("dst2").Child("file"))
	assert.NoError(t, err)

	_, err = fs.GetAttr(rootCtx, rc, fusekit.RootPathId.Child("src"))
	assert.Error(t, err)
}

func TestPathMemFS_UnknownPathIsStale(t *testing.T) {
	fs := memfs.NewPathMemFS(newFixedClock())
	require.NoError(t, fs.Init(rootCtx, rc))

	_, err := fs.GetAttr(rootCtx, rc, fusekit.RootPathId.Child("nope").Child("also-nope"))
	require.Error(t, err)
	assert.Equal(t, fusekit.KindStaleInode, err.(*fusekit.Error).Kind)
}

func TestPathMemFS_WriteGrowsFile(t *testing.T) {
	fs := memfs.NewPathMemFS(newFixedClock())
	require.NoError(t, fs.Init(rootCtx, rc))

	_, _, err := fs.Create(rootCtx, rc, fusekit.RootPathId, "f", 0644, 0)
	require.NoError(t, err)
	id := fusekit.RootPathId.Child("f")

	_, err = fs.Write(rootCtx, rc, id, 0, 10, []byte("end"))
	require.NoError(t, err)

	attr, err := fs.GetAttr(rootCtx, rc, id)
	require.NoError(t, err)
	assert.EqualValues(t, 13, attr.Size)
}
