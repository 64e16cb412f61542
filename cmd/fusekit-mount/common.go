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
	"github.com/spf13/cobra"

	fuse "github.com/arcbound/fusekit"
)

// commonFlags holds the mount options shared by every sample subcommand.
type commonFlags struct {
	readOnly   bool
	allowOther bool
	fsName     string
	workers    int
}

func (c *commonFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&c.readOnly, "read-only", false, "mount read-only")
	cmd.Flags().BoolVar(&c.allowOther, "allow-other", false, "allow other users to access the mount")
	cmd.Flags().StringVar(&c.fsName, "fs-name", "fusekit", "file system name reported to the kernel")
	cmd.Flags().IntVar(&c.workers, "workers", 1, "number of dispatcher workers (1 = serial dispatch)")
}

func (c *commonFlags) mountOptions() []fuse.MountOption {
	opts := []fuse.MountOption{
		fuse.WithFSName(c.fsName),
		fuse.WithWorkers(c.workers),
	}
	if c.readOnly {
		opts = append(opts, fuse.ReadOnly())
	}
	if c.allowOther {
		opts = append(opts, fuse.AllowOther())
	}
	return opts
}
