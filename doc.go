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

// Package fuse enables writing and mounting user-space file systems whose
// inodes are identified by whatever type the application finds natural —
// an opaque integer (InodeId) or a filesystem path (PathId) — rather than
// forcing every filesystem to maintain its own inode table.
//
// The primary elements of interest are:
//
//  *  The Handler[T] interface, which defines the operations a file system
//     implements, parameterized over its chosen FileId flavor.
//
//  *  DefaultHandler[T], which may be embedded to obtain ENOSYS/no-op
//     implementations for every operation not of interest to a particular
//     file system.
//
//  *  IdResolver, which reconciles kernel inode numbers with the
//     application's FileId values, including lookup-count and generation
//     bookkeeping.
//
//  *  Mount and MountAsync, which mount a Handler using the serial/parallel
//     or async dispatcher respectively.
//
// In order to use this package to mount file systems on OS X, the system must
// have FUSE for OS X (or macFUSE) installed: https://osxfuse.github.io/
package fuse
