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
	bazilfuse "bazil.org/fuse"
)

// dirHandle holds the in-progress listing for readdir/readdirplus across
// multiple kernel calls on the same open directory handle, per spec.md
// §4.3. The snapshot is taken once at opendir and never refreshed, mirroring
// Unix getdents semantics.
type dirHandle struct {
	dirIno   Ino
	snapshot []DirEntry
}

// dirTable owns every open directory handle for one dispatcher, keyed by the
// opaque HandleID minted at opendir. It is guarded by its own mutex,
// independent of the resolver's, matching spec.md §5's "Shared resources"
// list: "The directory-iteration map: guarded by its own mutex."
type dirTable struct {
	mu      Mutex
	handles map[bazilfuse.HandleID]*dirHandle
	next    bazilfuse.HandleID
}

func newDirTable() *dirTable {
	return &dirTable{handles: make(map[bazilfuse.HandleID]*dirHandle)}
}

// Open allocates a new handle for the given directory inode's snapshot and
// returns its ID. Called from the opendir dispatch path after the handler
// has produced the listing.
func (t *dirTable) Open(dirIno Ino, snapshot []DirEntry) bazilfuse.HandleID {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.next++
	id := t.next
	t.handles[id] = &dirHandle{dirIno: dirIno, snapshot: snapshot}
	return id
}

// Release removes the iteration handle. Returns false if it was already
// gone (a readdir arriving after release replies EBADF; see ReadAt).
func (t *dirTable) Release(id bazilfuse.HandleID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.handles[id]; !ok {
		return false
	}
	delete(t.handles, id)
	return true
}

// errBadHandle is returned by ReadAt when the handle is unknown — a readdir
// arriving after releasedir, or for a handle that was never opened. The
// readdir dispatch path recognises it and replies EBADF.
var errBadHandle = NewError(KindInvalidArgument, "bad directory handle")

// ReadAt returns the slice of snapshot entries starting at offset, up to
// maxEntries of them, or all remaining ones when maxEntries <= 0 (the
// dispatcher passes 0 and trims by serialized byte size against the
// kernel's requested buffer size). An out-of-range offset
// yields an empty (not erroring) result, signalling end-of-stream per
// spec.md §4.3's edge cases.
//
// Two concurrent readdir calls on the same handle serialize via t.mu,
// satisfying the parallel dispatcher's requirement in spec.md §4.2.
func (t *dirTable) ReadAt(id bazilfuse.HandleID, offset int, maxEntries int) ([]DirEntry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	h, ok := t.handles[id]
	if !ok {
		return nil, errBadHandle
	}

	if offset < 0 || offset >= len(h.snapshot) {
		return nil, nil
	}

	end := offset + maxEntries
	if end > len(h.snapshot) || maxEntries <= 0 {
		end = len(h.snapshot)
	}
	return h.snapshot[offset:end], nil
}
