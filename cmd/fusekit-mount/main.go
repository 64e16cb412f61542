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

// Command fusekit-mount mounts one of the sample file systems bundled with
// this module, replacing the teacher's per-sample mount_hello/mount_memfs
// binaries (each a bare flag.Parse() main) with a single cobra-driven CLI,
// grounded on the pack's prevailing pattern of one cobra root command with
// subcommands per concern.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fusekit-mount",
		Short:         "Mount a fusekit sample file system",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newHelloCmd())
	root.AddCommand(newMemFSCmd())

	return root
}
