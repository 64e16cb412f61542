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
	"sync/atomic"

	bazilfuse "bazil.org/fuse"
	"go.uber.org/zap"
)

// dispatcher holds everything the three execution modes share: the
// resolver, the handler, the open-directory table, and the mount's
// configuration. Each mode (dispatch_serial.go, dispatch_parallel.go,
// dispatch_async.go) differs only in how it pulls requests off the kernel
// connection and schedules calls to handle; the request→handler→reply
// routing in this file is identical across modes, mirroring how the
// teacher's server.go handleFuseRequest is mode-agnostic and is simply
// invoked synchronously or via `go` by its one caller.
type dispatcher[T FileId] struct {
	handler  Handler[T]
	resolver *IdResolver
	dirs     *dirTable
	log      *zap.Logger
	cfg      *MountConfig

	uniqueCounter uint64
}

func newDispatcher[T FileId](h Handler[T], rootId T, cfg *MountConfig, log *zap.Logger) *dispatcher[T] {
	return &dispatcher[T]{
		handler:  h,
		resolver: NewIdResolver(rootId),
		dirs:     newDirTable(),
		log:      log,
		cfg:      cfg,
	}
}

func (d *dispatcher[T]) nextUnique() uint64 {
	return atomic.AddUint64(&d.uniqueCounter, 1)
}

// resolve maps a kernel NodeID (an Ino minted by d.resolver.Announce) back
// to the application's FileId flavor. Returns ErrStaleInode if the kernel
// references an inode we no longer track (it should have been Forgotten),
// mirroring spec.md §3's "Resolve" invariant.
func (d *dispatcher[T]) resolve(node bazilfuse.NodeID) (T, error) {
	var zero T
	id, err := d.resolver.Resolve(Ino(node))
	if err != nil {
		return zero, err
	}
	typed, ok := id.(T)
	if !ok {
		return zero, ErrIoError("resolved id of unexpected flavor")
	}
	return typed, nil
}

// announce registers a child produced by a handler and returns the Ino
// value to hand back to the kernel as the entry's NodeID.
func (d *dispatcher[T]) announce(id FileId) (Ino, uint64) {
	return d.resolver.Announce(id)
}

// handle is the single entry point every dispatch mode calls for each
// request it pulls off the connection. It recovers from handler panics and
// converts them to EIO, satisfying spec.md §7's "a panicking handler call
// must not take down the dispatcher; the offending request fails with EIO
// and the dispatcher keeps serving."
func (d *dispatcher[T]) handle(ctx context.Context, fuseReq bazilfuse.Request) {
	r := newReplier(fuseReq, d.log)

	defer func() {
		if p := recover(); p != nil {
			d.log.Error("handler panic recovered", zap.Any("panic", p), zap.Stringer("request", fuseReq))
			replyErr(r, ErrIoError("handler panicked"))
		}
	}()

	d.dispatchOne(ctx, r, fuseReq)
}

func (d *dispatcher[T]) dispatchOne(ctx context.Context, r *replier, fuseReq bazilfuse.Request) {
	switch typed := fuseReq.(type) {
	case *bazilfuse.InitRequest:
		d.doInit(ctx, r, typed)
	case *bazilfuse.StatfsRequest:
		d.doStatfs(ctx, r, typed)
	case *bazilfuse.LookupRequest:
		d.doLookup(ctx, r, typed)
	case *bazilfuse.GetattrRequest:
		d.doGetattr(ctx, r, typed)
	case *bazilfuse.SetattrRequest:
		d.doSetattr(ctx, r, typed)
	case *bazilfuse.ForgetRequest:
		d.doForget(ctx, r, typed)
	case *bazilfuse.MkdirRequest:
		d.doMkdir(ctx, r, typed)
	case *bazilfuse.MknodRequest:
		d.doMknod(ctx, r, typed)
	case *bazilfuse.CreateRequest:
		d.doCreate(ctx, r, typed)
	case *bazilfuse.RemoveRequest:
		d.doRemove(ctx, r, typed)
	case *bazilfuse.SymlinkRequest:
		d.doSymlink(ctx, r, typed)
	case *bazilfuse.ReadlinkRequest:
		d.doReadlink(ctx, r, typed)
	case *bazilfuse.RenameRequest:
		d.doRename(ctx, r, typed)
	case *bazilfuse.LinkRequest:
		d.doLink(ctx, r, typed)
	case *bazilfuse.OpenRequest:
		d.doOpen(ctx, r, typed)
	case *bazilfuse.ReadRequest:
		if typed.Dir {
			d.doReaddir(ctx, r, typed)
		} else {
			d.doRead(ctx, r, typed)
		}
	case *bazilfuse.ReleaseRequest:
		d.doRelease(ctx, r, typed)
	case *bazilfuse.WriteRequest:
		d.doWrite(ctx, r, typed)
	case *bazilfuse.FlushRequest:
		d.doFlush(ctx, r, typed)
	case *bazilfuse.FsyncRequest:
		d.doFsync(ctx, r, typed)
	case *bazilfuse.GetxattrRequest:
		d.doGetxattr(ctx, r, typed)
	case *bazilfuse.ListxattrRequest:
		d.doListxattr(ctx, r, typed)
	case *bazilfuse.SetxattrRequest:
		d.doSetxattr(ctx, r, typed)
	case *bazilfuse.RemovexattrRequest:
		d.doRemovexattr(ctx, r, typed)
	case *bazilfuse.AccessRequest:
		d.doAccess(ctx, r, typed)
	case *bazilfuse.InterruptRequest:
		// No per-request cancellation plumbing; see spec.md §4.2's note
		// that interrupt support depends on reproducing kernel behavior we
		// cannot exercise without real hardware. Drop it silently, as the
		// protocol allows.
	case *bazilfuse.DestroyRequest:
		typed.Respond()
	default:
		d.log.Warn("unhandled request kind, returning ENOSYS", zap.Stringer("request", fuseReq))
		if r.claim("enosys") {
			fuseReq.RespondError(bazilfuse.ENOSYS)
		}
	}
}
