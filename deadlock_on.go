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

//go:build deadlock

package fuse

import (
	"time"

	"github.com/sasha-s/go-deadlock"
)

// Mutex is an instrumented mutex, built when this package is compiled with
// the "deadlock" tag. go-deadlock runs a background checker and dumps the
// offending goroutine stacks if it finds a lock-ordering cycle. This is a
// diagnostic aid only, per spec.md §5 — it is never required for
// correctness and the default build (deadlock_off.go) does not pay for it.
type Mutex = deadlock.Mutex

func init() {
	deadlock.Opts.DeadlockTimeout = 10 * time.Second
}
