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
	"flag"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var fEnableDebug = flag.Bool(
	"fuse.debug",
	false,
	"Write FUSE debugging messages to stderr.")

var gLogger *zap.Logger
var gLoggerOnce sync.Once

// initLogger builds the package default logger: a no-op logger unless
// -fuse.debug is set, in which case it writes development-formatted,
// debug-level output to stderr. Replaces the teacher's bare *log.Logger
// (io.Discard-or-os.Stderr writer swap) with go.uber.org/zap, the
// structured logger the rest of the pack's service-shaped repos reach for.
func initLogger() {
	if !flag.Parsed() {
		panic("initLogger called before flags available.")
	}

	if !*fEnableDebug {
		gLogger = zap.NewNop()
		return
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	logger, err := cfg.Build()
	if err != nil {
		gLogger = zap.NewNop()
		return
	}
	gLogger = logger.Named("fuse")
}

func getLogger() *zap.Logger {
	gLoggerOnce.Do(initLogger)
	return gLogger
}
