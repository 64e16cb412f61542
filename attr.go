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
	"os"
	"time"
)

// NodeKind enumerates the kinds of filesystem object an Attr can describe.
type NodeKind int

const (
	KindRegular NodeKind = iota
	KindDirectory
	KindSymlink
	KindFifo
	KindSocket
	KindCharDevice
	KindBlockDevice
)

// Attr is the file attribute record handlers fill in for getattr, lookup,
// mkdir, create and friends. It is a superset of the teacher's
// InodeAttributes, adding the fields spec.md's data model names that a
// single-kind-assuming framework doesn't need: Kind, Rdev, Flags, BlockSize,
// Ttl and Generation.
type Attr struct {
	Size      uint64
	Blocks    uint64
	Atime     time.Time
	Mtime     time.Time
	Ctime     time.Time
	Crtime    time.Time
	Kind      NodeKind
	Mode      os.FileMode
	Nlink     uint32
	Uid       uint32
	Gid       uint32
	Rdev      uint32
	Flags     uint32
	BlockSize uint32

	// Ttl is the time until which the kernel may cache these attributes.
	// The zero time (or any time already past) disables caching.
	Ttl time.Time

	// Generation disambiguates successive lifetimes of the inode number this
	// Attr is attached to. The dispatcher neither reads nor fills this
	// field: entry replies carry the generation returned by the resolver's
	// Announce, so a handler does not need to set it.
	Generation uint64
}

// RequestContext carries the per-request information that is immutable for
// the duration of one operation: the kernel's assigned unique request ID and
// the credentials of the calling process.
type RequestContext struct {
	Unique uint64
	Uid    uint32
	Gid    uint32
	Pid    uint32
}

// ChildEntry is returned by handler operations that expose a child inode to
// the kernel (lookup, create, mkdir, symlink, link, mknod). The dispatcher
// uses Id to mint or refresh an inode via the resolver before replying;
// Attr.Generation in the reply is always the resolver's, not this field.
type ChildEntry struct {
	Id                   FileId
	Attr                 Attr
	AttrExpiration       time.Time
	EntryExpiration      time.Time
}

// DirEntry is one row of a directory snapshot captured at opendir time, as
// described in spec.md §4.3.
type DirEntry struct {
	Name string
	Id   FileId
	Kind NodeKind

	// Attr is populated only when the snapshot was captured for readdirplus
	// use; ReadDir (non-plus) ignores it.
	Attr *Attr
}
