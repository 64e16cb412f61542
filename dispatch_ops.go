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
	"syscall"

	bazilfuse "bazil.org/fuse"
)

// Each doXxx method below is one case of the teacher's server.go
// handleFuseRequest type switch, generalized to route through the
// resolver and the generic Handler[T] instead of the teacher's
// InodeID-only FileSystem interface. The shape — convert request, call
// handler, convert response or RespondError — is unchanged.

func (d *dispatcher[T]) doInit(ctx context.Context, r *replier, typed *bazilfuse.InitRequest) {
	rc := convertHeader(d.nextUnique(), typed.Header)
	if err := d.handler.Init(ctx, rc); err != nil {
		replyErr(r, err)
		return
	}
	if !r.claim("init") {
		return
	}
	typed.Respond(&bazilfuse.InitResponse{})
}

func (d *dispatcher[T]) doStatfs(ctx context.Context, r *replier, typed *bazilfuse.StatfsRequest) {
	parent, err := d.resolve(typed.Header.Node)
	if err != nil {
		replyErr(r, err)
		return
	}
	rc := convertHeader(d.nextUnique(), typed.Header)
	st, err := d.handler.StatFS(ctx, rc, parent)
	if err != nil {
		// Statfs must succeed for the mount to come up at all on some
		// platforms (teacher's comment in server.go); reply with zeros
		// rather than failing the mount when the handler declines.
		if !r.claim("statfs") {
			return
		}
		typed.Respond(&bazilfuse.StatfsResponse{})
		return
	}
	if !r.claim("statfs") {
		return
	}
	typed.Respond(&bazilfuse.StatfsResponse{
		Blocks:  st.Blocks,
		Bfree:   st.BlocksFree,
		Bavail:  st.BlocksAvail,
		Files:   st.Files,
		Ffree:   st.FilesFree,
		Bsize:   st.BlockSize,
		Namelen: st.NameLen,
	})
}

func (d *dispatcher[T]) doLookup(ctx context.Context, r *replier, typed *bazilfuse.LookupRequest) {
	parent, err := d.resolve(typed.Header.Node)
	if err != nil {
		replyErr(r, err)
		return
	}
	rc := convertHeader(d.nextUnique(), typed.Header)
	entry, err := d.handler.LookUp(ctx, rc, parent, typed.Name)
	if err != nil {
		replyErr(r, err)
		return
	}
	ino, gen := d.announce(entry.Id)
	if !r.claim("lookup") {
		return
	}
	resp := &bazilfuse.LookupResponse{}
	resp.Node, resp.Generation, resp.Attr, resp.AttrValid, resp.EntryValid = convertChildEntry(ino, gen, entry)
	typed.Respond(resp)
}

func (d *dispatcher[T]) doGetattr(ctx context.Context, r *replier, typed *bazilfuse.GetattrRequest) {
	id, err := d.resolve(typed.Header.Node)
	if err != nil {
		replyErr(r, err)
		return
	}
	rc := convertHeader(d.nextUnique(), typed.Header)
	attr, err := d.handler.GetAttr(ctx, rc, id)
	if err != nil {
		replyErr(r, err)
		return
	}
	if !r.claim("getattr") {
		return
	}
	typed.Respond(&bazilfuse.GetattrResponse{
		Attr:      convertAttr(Ino(typed.Header.Node), attr),
		AttrValid: convertExpirationTime(attr.Ttl),
	})
}

func (d *dispatcher[T]) doSetattr(ctx context.Context, r *replier, typed *bazilfuse.SetattrRequest) {
	id, err := d.resolve(typed.Header.Node)
	if err != nil {
		replyErr(r, err)
		return
	}

	var req SetAttrRequest
	if typed.Valid&bazilfuse.SetattrSize != 0 {
		v := typed.Size
		req.Size = &v
	}
	if typed.Valid&bazilfuse.SetattrMode != 0 {
		v := typed.Mode
		req.Mode = &v
	}
	if typed.Valid&bazilfuse.SetattrAtime != 0 {
		v := typed.Atime.UnixNano()
		req.Atime = &v
	}
	if typed.Valid&bazilfuse.SetattrMtime != 0 {
		v := typed.Mtime.UnixNano()
		req.Mtime = &v
	}
	if typed.Valid&bazilfuse.SetattrUid != 0 {
		v := typed.Uid
		req.Uid = &v
	}
	if typed.Valid&bazilfuse.SetattrGid != 0 {
		v := typed.Gid
		req.Gid = &v
	}

	rc := convertHeader(d.nextUnique(), typed.Header)
	attr, err := d.handler.SetAttr(ctx, rc, id, req)
	if err != nil {
		replyErr(r, err)
		return
	}
	if !r.claim("setattr") {
		return
	}
	typed.Respond(&bazilfuse.SetattrResponse{
		Attr:      convertAttr(Ino(typed.Header.Node), attr),
		AttrValid: convertExpirationTime(attr.Ttl),
	})
}

func (d *dispatcher[T]) doForget(ctx context.Context, r *replier, typed *bazilfuse.ForgetRequest) {
	id, err := d.resolve(typed.Header.Node)
	if err == nil {
		rc := convertHeader(d.nextUnique(), typed.Header)
		d.handler.Forget(ctx, rc, id, typed.N)
	}
	d.resolver.Forget(Ino(typed.Header.Node), typed.N)
	// Forget has no reply on the wire; nothing to claim.
	typed.Respond()
}

func (d *dispatcher[T]) doMkdir(ctx context.Context, r *replier, typed *bazilfuse.MkdirRequest) {
	parent, err := d.resolve(typed.Header.Node)
	if err != nil {
		replyErr(r, err)
		return
	}
	rc := convertHeader(d.nextUnique(), typed.Header)
	entry, err := d.handler.MkDir(ctx, rc, parent, typed.Name, typed.Mode)
	if err != nil {
		replyErr(r, err)
		return
	}
	ino, gen := d.announce(entry.Id)
	if !r.claim("mkdir") {
		return
	}
	resp := &bazilfuse.MkdirResponse{}
	resp.Node, resp.Generation, resp.Attr, resp.AttrValid, resp.EntryValid = convertChildEntry(ino, gen, entry)
	typed.Respond(resp)
}

func (d *dispatcher[T]) doMknod(ctx context.Context, r *replier, typed *bazilfuse.MknodRequest) {
	parent, err := d.resolve(typed.Header.Node)
	if err != nil {
		replyErr(r, err)
		return
	}
	rc := convertHeader(d.nextUnique(), typed.Header)
	entry, err := d.handler.MkNod(ctx, rc, parent, typed.Name, typed.Mode, typed.Rdev)
	if err != nil {
		replyErr(r, err)
		return
	}
	ino, gen := d.announce(entry.Id)
	if !r.claim("mknod") {
		return
	}
	resp := &bazilfuse.MknodResponse{}
	resp.Node, resp.Generation, resp.Attr, resp.AttrValid, resp.EntryValid = convertChildEntry(ino, gen, entry)
	typed.Respond(resp)
}

func (d *dispatcher[T]) doCreate(ctx context.Context, r *replier, typed *bazilfuse.CreateRequest) {
	parent, err := d.resolve(typed.Header.Node)
	if err != nil {
		replyErr(r, err)
		return
	}
	rc := convertHeader(d.nextUnique(), typed.Header)
	entry, handle, err := d.handler.Create(ctx, rc, parent, typed.Name, typed.Mode, OpenFlags(typed.Flags))
	if err != nil {
		replyErr(r, err)
		return
	}
	ino, gen := d.announce(entry.Id)
	if !r.claim("create") {
		return
	}
	resp := &bazilfuse.CreateResponse{
		OpenResponse: bazilfuse.OpenResponse{Handle: bazilfuse.HandleID(handle)},
	}
	resp.Node, resp.Generation, resp.Attr, resp.AttrValid, resp.EntryValid = convertChildEntry(ino, gen, entry)
	typed.Respond(resp)
}

func (d *dispatcher[T]) doRemove(ctx context.Context, r *replier, typed *bazilfuse.RemoveRequest) {
	parent, err := d.resolve(typed.Header.Node)
	if err != nil {
		replyErr(r, err)
		return
	}
	rc := convertHeader(d.nextUnique(), typed.Header)
	if typed.Dir {
		err = d.handler.RmDir(ctx, rc, parent, typed.Name)
	} else {
		err = d.handler.Unlink(ctx, rc, parent, typed.Name)
	}
	if err != nil {
		replyErr(r, err)
		return
	}
	if !r.claim("remove") {
		return
	}
	typed.Respond()
}

func (d *dispatcher[T]) doSymlink(ctx context.Context, r *replier, typed *bazilfuse.SymlinkRequest) {
	parent, err := d.resolve(typed.Header.Node)
	if err != nil {
		replyErr(r, err)
		return
	}
	rc := convertHeader(d.nextUnique(), typed.Header)
	entry, err := d.handler.Symlink(ctx, rc, parent, typed.NewName, typed.Target)
	if err != nil {
		replyErr(r, err)
		return
	}
	ino, gen := d.announce(entry.Id)
	if !r.claim("symlink") {
		return
	}
	resp := &bazilfuse.SymlinkResponse{}
	resp.Node, resp.Generation, resp.Attr, resp.AttrValid, resp.EntryValid = convertChildEntry(ino, gen, entry)
	typed.Respond(resp)
}

func (d *dispatcher[T]) doReadlink(ctx context.Context, r *replier, typed *bazilfuse.ReadlinkRequest) {
	id, err := d.resolve(typed.Header.Node)
	if err != nil {
		replyErr(r, err)
		return
	}
	rc := convertHeader(d.nextUnique(), typed.Header)
	target, err := d.handler.ReadLink(ctx, rc, id)
	if err != nil {
		replyErr(r, err)
		return
	}
	if !r.claim("readlink") {
		return
	}
	typed.Respond(target)
}

func (d *dispatcher[T]) doRename(ctx context.Context, r *replier, typed *bazilfuse.RenameRequest) {
	oldParent, err := d.resolve(typed.Header.Node)
	if err != nil {
		replyErr(r, err)
		return
	}
	newParent, err := d.resolve(typed.NewDir)
	if err != nil {
		replyErr(r, err)
		return
	}
	rc := convertHeader(d.nextUnique(), typed.Header)
	if err := d.handler.Rename(ctx, rc, oldParent, typed.OldName, newParent, typed.NewName); err != nil {
		replyErr(r, err)
		return
	}

	if op, ok := any(oldParent).(PathId); ok {
		np, _ := any(newParent).(PathId)
		d.resolver.Rename(op, typed.OldName, np, typed.NewName)
	}

	if !r.claim("rename") {
		return
	}
	typed.Respond()
}

func (d *dispatcher[T]) doLink(ctx context.Context, r *replier, typed *bazilfuse.LinkRequest) {
	target, err := d.resolve(typed.OldNode)
	if err != nil {
		replyErr(r, err)
		return
	}
	newParent, err := d.resolve(typed.Header.Node)
	if err != nil {
		replyErr(r, err)
		return
	}
	rc := convertHeader(d.nextUnique(), typed.Header)
	entry, err := d.handler.Link(ctx, rc, target, newParent, typed.NewName)
	if err != nil {
		replyErr(r, err)
		return
	}
	ino, gen := d.announce(entry.Id)
	if !r.claim("link") {
		return
	}
	resp := &bazilfuse.LinkResponse{}
	resp.Node, resp.Generation, resp.Attr, resp.AttrValid, resp.EntryValid = convertChildEntry(ino, gen, entry)
	typed.Respond(resp)
}

func (d *dispatcher[T]) doOpen(ctx context.Context, r *replier, typed *bazilfuse.OpenRequest) {
	id, err := d.resolve(typed.Header.Node)
	if err != nil {
		replyErr(r, err)
		return
	}
	rc := convertHeader(d.nextUnique(), typed.Header)

	if typed.Dir {
		handle, snapshot, err := d.handler.OpenDir(ctx, rc, id)
		if err != nil {
			replyErr(r, err)
			return
		}
		_ = handle
		dirIno := Ino(typed.Header.Node)
		hid := d.dirs.Open(dirIno, snapshot)
		if !r.claim("opendir") {
			return
		}
		typed.Respond(&bazilfuse.OpenResponse{Handle: hid})
		return
	}

	handle, err := d.handler.Open(ctx, rc, id, OpenFlags(typed.Flags))
	if err != nil {
		replyErr(r, err)
		return
	}
	if !r.claim("open") {
		return
	}
	typed.Respond(&bazilfuse.OpenResponse{Handle: bazilfuse.HandleID(handle)})
}

func (d *dispatcher[T]) doRead(ctx context.Context, r *replier, typed *bazilfuse.ReadRequest) {
	id, err := d.resolve(typed.Header.Node)
	if err != nil {
		replyErr(r, err)
		return
	}
	rc := convertHeader(d.nextUnique(), typed.Header)
	data, err := d.handler.Read(ctx, rc, id, HandleId(typed.Handle), typed.Offset, typed.Size)
	if err != nil {
		replyErr(r, err)
		return
	}
	if !r.claim("read") {
		return
	}
	typed.Respond(&bazilfuse.ReadResponse{Data: data})
}

func (d *dispatcher[T]) doReaddir(ctx context.Context, r *replier, typed *bazilfuse.ReadRequest) {
	useDirentplus := d.cfg != nil && d.cfg.EnableReaddirplus
	var entries []DirEntry
	var err error

	if useDirentplus {
		var id T
		id, err = d.resolve(typed.Header.Node)
		if err == nil {
			rc := convertHeader(d.nextUnique(), typed.Header)
			entries, err = d.handler.ReadDirPlus(ctx, rc, id, HandleId(typed.Handle), int(typed.Offset))
		}
	}

	if !useDirentplus || err != nil {
		entries, err = d.dirs.ReadAt(bazilfuse.HandleID(typed.Handle), int(typed.Offset), 0)
	}
	if err == errBadHandle {
		if r.claim("readdir") {
			typed.RespondError(bazilfuse.Errno(syscall.EBADF))
		}
		return
	}
	if err != nil {
		replyErr(r, err)
		return
	}

	buf := make([]byte, 0, typed.Size)
	for i, e := range entries {
		ino, _ := d.resolver.Announce(e.Id)
		rec := make([]byte, direntRecordCap(e))
		n := writeDirent(rec, ino, uint64(int(typed.Offset)+i+1), e)
		if n == 0 || len(buf)+n > int(typed.Size) {
			break
		}
		buf = append(buf, rec[:n]...)
	}

	if !r.claim("readdir") {
		return
	}
	typed.Respond(&bazilfuse.ReadResponse{Data: buf})
}

func direntRecordCap(e DirEntry) int {
	n := 8 + 8 + 4 + 4 + len(e.Name)
	if r := n % 8; r != 0 {
		n += 8 - r
	}
	return n
}

func (d *dispatcher[T]) doRelease(ctx context.Context, r *replier, typed *bazilfuse.ReleaseRequest) {
	id, err := d.resolve(typed.Header.Node)
	if err != nil {
		replyErr(r, err)
		return
	}
	rc := convertHeader(d.nextUnique(), typed.Header)

	if typed.Dir {
		d.dirs.Release(bazilfuse.HandleID(typed.Handle))
		err = d.handler.ReleaseDir(ctx, rc, id, HandleId(typed.Handle))
	} else {
		err = d.handler.Release(ctx, rc, id, HandleId(typed.Handle))
	}
	if err != nil {
		replyErr(r, err)
		return
	}
	if !r.claim("release") {
		return
	}
	typed.Respond()
}

func (d *dispatcher[T]) doWrite(ctx context.Context, r *replier, typed *bazilfuse.WriteRequest) {
	id, err := d.resolve(typed.Header.Node)
	if err != nil {
		replyErr(r, err)
		return
	}
	rc := convertHeader(d.nextUnique(), typed.Header)
	n, err := d.handler.Write(ctx, rc, id, HandleId(typed.Handle), typed.Offset, typed.Data)
	if err != nil {
		replyErr(r, err)
		return
	}
	if !r.claim("write") {
		return
	}
	typed.Respond(&bazilfuse.WriteResponse{Size: n})
}

func (d *dispatcher[T]) doFlush(ctx context.Context, r *replier, typed *bazilfuse.FlushRequest) {
	id, err := d.resolve(typed.Header.Node)
	if err != nil {
		replyErr(r, err)
		return
	}
	rc := convertHeader(d.nextUnique(), typed.Header)
	if err := d.handler.Flush(ctx, rc, id, HandleId(typed.Handle)); err != nil {
		replyErr(r, err)
		return
	}
	if !r.claim("flush") {
		return
	}
	typed.Respond()
}

func (d *dispatcher[T]) doFsync(ctx context.Context, r *replier, typed *bazilfuse.FsyncRequest) {
	id, err := d.resolve(typed.Header.Node)
	if err != nil {
		replyErr(r, err)
		return
	}
	rc := convertHeader(d.nextUnique(), typed.Header)
	dataOnly := typed.Flags&1 != 0

	if typed.Dir {
		err = d.handler.FSyncDir(ctx, rc, id, HandleId(typed.Handle), dataOnly)
	} else {
		err = d.handler.FSync(ctx, rc, id, HandleId(typed.Handle), dataOnly)
	}
	if err != nil {
		replyErr(r, err)
		return
	}
	if !r.claim("fsync") {
		return
	}
	typed.Respond()
}

func (d *dispatcher[T]) doGetxattr(ctx context.Context, r *replier, typed *bazilfuse.GetxattrRequest) {
	id, err := d.resolve(typed.Header.Node)
	if err != nil {
		replyErr(r, err)
		return
	}
	rc := convertHeader(d.nextUnique(), typed.Header)
	value, err := d.handler.GetXAttr(ctx, rc, id, typed.Name, typed.Size)
	if err != nil {
		replyErr(r, err)
		return
	}
	if !r.claim("getxattr") {
		return
	}
	typed.Respond(&bazilfuse.GetxattrResponse{Xattr: value})
}

func (d *dispatcher[T]) doListxattr(ctx context.Context, r *replier, typed *bazilfuse.ListxattrRequest) {
	id, err := d.resolve(typed.Header.Node)
	if err != nil {
		replyErr(r, err)
		return
	}
	rc := convertHeader(d.nextUnique(), typed.Header)
	names, err := d.handler.ListXAttr(ctx, rc, id, typed.Size)
	if err != nil {
		replyErr(r, err)
		return
	}
	var buf []byte
	for _, name := range names {
		buf = append(buf, name...)
		buf = append(buf, 0)
	}
	if !r.claim("listxattr") {
		return
	}
	typed.Respond(&bazilfuse.ListxattrResponse{Xattr: buf})
}

func (d *dispatcher[T]) doSetxattr(ctx context.Context, r *replier, typed *bazilfuse.SetxattrRequest) {
	id, err := d.resolve(typed.Header.Node)
	if err != nil {
		replyErr(r, err)
		return
	}
	rc := convertHeader(d.nextUnique(), typed.Header)
	if err := d.handler.SetXAttr(ctx, rc, id, typed.Name, typed.Xattr, typed.Flags); err != nil {
		replyErr(r, err)
		return
	}
	if !r.claim("setxattr") {
		return
	}
	typed.Respond()
}

func (d *dispatcher[T]) doRemovexattr(ctx context.Context, r *replier, typed *bazilfuse.RemovexattrRequest) {
	id, err := d.resolve(typed.Header.Node)
	if err != nil {
		replyErr(r, err)
		return
	}
	rc := convertHeader(d.nextUnique(), typed.Header)
	if err := d.handler.RemoveXAttr(ctx, rc, id, typed.Name); err != nil {
		replyErr(r, err)
		return
	}
	if !r.claim("removexattr") {
		return
	}
	typed.Respond()
}

func (d *dispatcher[T]) doAccess(ctx context.Context, r *replier, typed *bazilfuse.AccessRequest) {
	id, err := d.resolve(typed.Header.Node)
	if err != nil {
		replyErr(r, err)
		return
	}
	rc := convertHeader(d.nextUnique(), typed.Header)
	if err := d.handler.Access(ctx, rc, id, typed.Mask); err != nil {
		replyErr(r, err)
		return
	}
	if !r.claim("access") {
		return
	}
	typed.Respond()
}
