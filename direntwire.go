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

import "unsafe"

// Unix dirent d_type values (cf. readdir(3)), used to tag each entry
// written into a getdents-style buffer below.
const (
	dtUnknown byte = 0
	dtFifo    byte = 1
	dtChr     byte = 2
	dtDir     byte = 4
	dtBlk     byte = 6
	dtReg     byte = 8
	dtLnk     byte = 10
	dtSock    byte = 12
)

func direntType(k NodeKind) byte {
	switch k {
	case KindDirectory:
		return dtDir
	case KindSymlink:
		return dtLnk
	case KindFifo:
		return dtFifo
	case KindSocket:
		return dtSock
	case KindCharDevice:
		return dtChr
	case KindBlockDevice:
		return dtBlk
	default:
		return dtReg
	}
}

// writeDirent appends one directory entry to buf in the fuse_dirent wire
// format (http://goo.gl/BmFxob), 8-byte aligned per FUSE_DIRENT_ALIGN.
// Returns 0 without modifying buf if the entry would not fit, letting the
// caller stop and reply with what it has so far — this is how the kernel
// learns a readdir buffer is full. Grounded on the teacher's
// fuseutil.WriteDirent, generalized from fuseops.Dirent to our DirEntry and
// from an inode-only identifier to whatever Ino the resolver minted for the
// entry's FileId.
func writeDirent(buf []byte, ino Ino, offset uint64, e DirEntry) int {
	type direntHeader struct {
		ino     uint64
		off     uint64
		namelen uint32
		kind    uint32
	}

	const align = 8
	const headerSize = 8 + 8 + 4 + 4

	pad := 0
	if r := len(e.Name) % align; r != 0 {
		pad = align - r
	}

	total := headerSize + len(e.Name) + pad
	if total > len(buf) {
		return 0
	}

	hdr := direntHeader{
		ino:     uint64(ino),
		off:     offset,
		namelen: uint32(len(e.Name)),
		kind:    uint32(direntType(e.Kind)),
	}

	n := copy(buf, (*[headerSize]byte)(unsafe.Pointer(&hdr))[:])
	n += copy(buf[n:], e.Name)
	if pad != 0 {
		var padding [align]byte
		n += copy(buf[n:], padding[:pad])
	}
	return n
}
