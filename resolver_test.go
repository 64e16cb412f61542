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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdResolver_RootIsPreSeeded(t *testing.T) {
	r := NewIdResolver(RootInodeId)

	id, err := r.Resolve(RootIno)
	require.NoError(t, err)
	assert.Equal(t, RootInodeId, id)

	count, ok := r.LookupCount(RootIno)
	require.True(t, ok)
	assert.Equal(t, uint64(1), count)
}

func TestIdResolver_AnnounceMintsFreshInode(t *testing.T) {
	r := NewIdResolver(RootInodeId)

	ino, gen := r.Announce(InodeId(42))
	assert.NotEqual(t, RootIno, ino)
	assert.Equal(t, uint64(1), gen)

	resolved, err := r.Resolve(ino)
	require.NoError(t, err)
	assert.Equal(t, InodeId(42), resolved)

	count, ok := r.LookupCount(ino)
	require.True(t, ok)
	assert.Equal(t, uint64(1), count)
}

func TestIdResolver_AnnounceReusesExistingInode(t *testing.T) {
	r := NewIdResolver(RootInodeId)

	first, gen1 := r.Announce(InodeId(7))
	second, gen2 := r.Announce(InodeId(7))

	assert.Equal(t, first, second)
	assert.Equal(t, gen1, gen2)

	count, ok := r.LookupCount(first)
	require.True(t, ok)
	assert.Equal(t, uint64(2), count)
}

func TestIdResolver_ForgetRemovesAtZero(t *testing.T) {
	r := NewIdResolver(RootInodeId)

	ino, _ := r.Announce(InodeId(5))
	r.Announce(InodeId(5)) // lookupCount now 2

	r.Forget(ino, 1)
	count, ok := r.LookupCount(ino)
	require.True(t, ok)
	assert.Equal(t, uint64(1), count)

	r.Forget(ino, 1)
	_, ok = r.LookupCount(ino)
	assert.False(t, ok)

	_, err := r.Resolve(ino)
	assert.Error(t, err)
	var fuseErr *Error
	require.ErrorAs(t, err, &fuseErr)
	assert.Equal(t, KindStaleInode, fuseErr.Kind)
}

func TestIdResolver_ForgetRootIsNoOp(t *testing.T) {
	r := NewIdResolver(RootInodeId)

	r.Forget(RootIno, 1000)

	count, ok := r.LookupCount(RootIno)
	require.True(t, ok)
	assert.Equal(t, uint64(1), count)
}

func TestIdResolver_ForgetUnknownInodeIsIgnored(t *testing.T) {
	r := NewIdResolver(RootInodeId)
	assert.NotPanics(t, func() { r.Forget(Ino(999), 1) })
}

func TestIdResolver_ResolveUnknownInodeIsStale(t *testing.T) {
	r := NewIdResolver(RootInodeId)

	_, err := r.Resolve(Ino(999))
	require.Error(t, err)
	var fuseErr *Error
	require.ErrorAs(t, err, &fuseErr)
	assert.Equal(t, KindStaleInode, fuseErr.Kind)
}

func TestIdResolver_RenameRewritesPathDescendants(t *testing.T) {
	r := NewIdResolver(RootPathId)

	dirId := RootPathId.Child("a")
	childId := dirId.Child("b")

	dirIno, _ := r.Announce(dirId)
	childIno, _ := r.Announce(childId)

	r.Rename(RootPathId, "a", RootPathId, "z")

	newDir, err := r.Resolve(dirIno)
	require.NoError(t, err)
	assert.Equal(t, RootPathId.Child("z"), newDir)

	newChild, err := r.Resolve(childIno)
	require.NoError(t, err)
	assert.Equal(t, RootPathId.Child("z").Child("b"), newChild)
}

func TestIdResolver_RenameIsNoOpForUnrelatedPaths(t *testing.T) {
	r := NewIdResolver(RootPathId)

	otherId := RootPathId.Child("other")
	otherIno, _ := r.Announce(otherId)

	r.Rename(RootPathId, "a", RootPathId, "z")

	resolved, err := r.Resolve(otherIno)
	require.NoError(t, err)
	assert.Equal(t, otherId, resolved)
}

func TestIdResolver_LiveCountsExcludeRoot(t *testing.T) {
	r := NewIdResolver(RootInodeId)
	assert.Equal(t, 0, r.Live())

	ino1, _ := r.Announce(InodeId(3))
	r.Announce(InodeId(2))
	assert.Equal(t, 2, r.Live())

	r.Forget(ino1, 1)
	assert.Equal(t, 1, r.Live())
}
