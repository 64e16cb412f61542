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
	"io"
	"syscall"

	bazilfuse "bazil.org/fuse"
)

// serveSerial reads requests off c one at a time and handles each to
// completion before reading the next, per spec.md §4.2's serial mode:
// "Single thread processes one request at a time." Grounded on the
// teacher's server.go Serve loop, with the `go s.handleFuseRequest(...)`
// removed so the whole mount is a single goroutine.
func serveSerial[T FileId](ctx context.Context, c *bazilfuse.Conn, d *dispatcher[T]) error {
	for {
		req, err := c.ReadRequest()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			req.RespondError(bazilfuse.Errno(syscall.EINTR))
			continue
		default:
		}

		d.handle(ctx, req)
	}
}
