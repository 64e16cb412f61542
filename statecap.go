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
	"sync"

	"golang.org/x/sync/semaphore"
)

// StateGuard is the "acquire-exclusive-for-scope" capability spec.md §7
// calls for: a handler writes its mutable state once, against this
// interface, and picks the constructor that fits the dispatch mode it is
// mounted with — no lock in serial mode, a mutex in parallel mode, a
// context-aware semaphore in async mode. Mount does not choose one itself. Grounded on original_source's
// types::thread_mode::SafeBorrowable trait, translated from Rust's
// lifetime-scoped associated Guard type to a closure-scoped accessor, since
// Go has neither generic associated types nor a borrow checker to enforce
// the guard's lifetime.
type StateGuard[T any] interface {
	// WithExclusive calls fn with exclusive access to the guarded value and
	// returns whatever fn returns. The implementation decides what
	// "exclusive" costs: nothing in serial mode, a mutex acquisition in
	// parallel mode, a semaphore acquisition in async mode.
	WithExclusive(ctx context.Context, fn func(*T) error) error
}

// NewSerialGuard returns a StateGuard that performs no synchronization at
// all. Safe only when the dispatcher guarantees a single goroutine ever
// calls into the handler, i.e. the serial dispatcher.
func NewSerialGuard[T any](initial T) StateGuard[T] {
	return &serialGuard[T]{value: initial}
}

type serialGuard[T any] struct {
	value T
}

func (g *serialGuard[T]) WithExclusive(ctx context.Context, fn func(*T) error) error {
	return fn(&g.value)
}

// NewMutexGuard returns a StateGuard backed by a plain mutex, for the
// parallel dispatcher where an arbitrary worker goroutine may call in.
func NewMutexGuard[T any](initial T) StateGuard[T] {
	return &mutexGuard[T]{value: initial}
}

type mutexGuard[T any] struct {
	mu    sync.Mutex
	value T
}

func (g *mutexGuard[T]) WithExclusive(ctx context.Context, fn func(*T) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fn(&g.value)
}

// NewAsyncGuard returns a StateGuard backed by a weight-1 semaphore whose
// Acquire respects ctx cancellation, so a task waiting on it can be
// unblocked at a suspension point when the mount tears down, per spec.md
// §4.2's async cancellation rule.
func NewAsyncGuard[T any](initial T) StateGuard[T] {
	return &asyncGuard[T]{value: initial, sem: semaphore.NewWeighted(1)}
}

type asyncGuard[T any] struct {
	sem   *semaphore.Weighted
	value T
}

func (g *asyncGuard[T]) WithExclusive(ctx context.Context, fn func(*T) error) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer g.sem.Release(1)
	return fn(&g.value)
}
