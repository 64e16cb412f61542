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

package main

import (
	"context"

	"github.com/jacobsa/timeutil"
	"github.com/spf13/cobra"

	fuse "github.com/arcbound/fusekit"
	"github.com/arcbound/fusekit/samples/memfs"
)

func newMemFSCmd() *cobra.Command {
	var common commonFlags
	var pathMode bool

	cmd := &cobra.Command{
		Use:   "memfs <mountpoint>",
		Short: "Mount the in-memory read-write memfs sample",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := common.mountOptions()

			if pathMode {
				fs := memfs.NewPathMemFS(timeutil.RealClock())
				mnt, err := fuse.Mount(args[0], fs, fuse.RootPathId, opts...)
				if err != nil {
					return err
				}
				return mnt.Join(context.Background())
			}

			fs := memfs.NewInodeMemFS(timeutil.RealClock())
			mnt, err := fuse.Mount(args[0], fs, fuse.RootInodeId, opts...)
			if err != nil {
				return err
			}
			return mnt.Join(context.Background())
		},
	}

	cmd.Flags().BoolVar(&pathMode, "path-mode", false, "identify inodes by path instead of by opaque integer")
	common.register(cmd)
	return cmd
}
