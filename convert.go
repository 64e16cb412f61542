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

	bazilfuse "bazil.org/fuse"
)

// convertExpirationTime turns an absolute cache expiration time into the
// relative time-from-now duration bazil.org/fuse wants on the wire. Grounded
// on the teacher's server.go convertExpirationTime; negative durations
// (an expiration already in the past) clamp to zero rather than going
// negative, since the wire format is an unsigned count of seconds.
func convertExpirationTime(t time.Time) time.Duration {
	d := time.Until(t)
	if d < 0 {
		d = 0
	}
	return d
}

// convertAttr builds the bazilfuse wire Attr for one inode from our Attr,
// grounded on the teacher's server.go convertAttributes, generalized to
// carry the extra fields (block count, nlink, rdev, flags) spec.md §3.2
// adds to the attribute record.
func convertAttr(ino Ino, a Attr) bazilfuse.Attr {
	return bazilfuse.Attr{
		Inode:     uint64(ino),
		Size:      a.Size,
		Blocks:    a.Blocks,
		Atime:     a.Atime,
		Mtime:     a.Mtime,
		Ctime:     a.Ctime,
		Crtime:    a.Crtime,
		Mode:      modeFromFileType(a.Kind, a.Mode),
		Nlink:     a.Nlink,
		Uid:       a.Uid,
		Gid:       a.Gid,
		Rdev:      a.Rdev,
		Flags:     a.Flags,
		BlockSize: a.BlockSize,
	}
}

// convertHeader extracts the per-request fields we pass on to handlers out
// of the bazilfuse wire header, grounded on the teacher's convertHeader.
func convertHeader(unique uint64, in bazilfuse.Header) RequestContext {
	return RequestContext{
		Unique: unique,
		Uid:    in.Uid,
		Gid:    in.Gid,
		Pid:    in.Pid,
	}
}

// convertChildEntry fills a bazilfuse.LookupResponse (also embedded in
// CreateResponse) from a ChildEntry plus the inode number the resolver
// minted for it, grounded on the teacher's convertChildInodeEntry.
func convertChildEntry(ino Ino, generation uint64, e ChildEntry) (node bazilfuse.NodeID, gen uint64, attr bazilfuse.Attr, attrValid, entryValid time.Duration) {
	node = bazilfuse.NodeID(ino)
	gen = generation
	attr = convertAttr(ino, e.Attr)
	attrValid = convertExpirationTime(e.AttrExpiration)
	entryValid = convertExpirationTime(e.EntryExpiration)
	return
}

// modeFromFileType reconstructs an os.FileMode's type bits from a NodeKind,
// used when a handler only supplies permission bits and relies on the
// dispatcher to stamp the type, mirroring fuseops' filetype helpers.
func modeFromFileType(k NodeKind, perm os.FileMode) os.FileMode {
	switch k {
	case KindDirectory:
		return perm | os.ModeDir
	case KindSymlink:
		return perm | os.ModeSymlink
	case KindFifo:
		return perm | os.ModeNamedPipe
	case KindSocket:
		return perm | os.ModeSocket
	case KindCharDevice:
		return perm | os.ModeDevice | os.ModeCharDevice
	case KindBlockDevice:
		return perm | os.ModeDevice
	default:
		return perm &^ (os.ModeDir | os.ModeSymlink | os.ModeNamedPipe | os.ModeSocket | os.ModeDevice | os.ModeCharDevice)
	}
}
