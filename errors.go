// Copyright 2015 Google Inc. All Rights Reserved.
// Author: jacobsa@google.com (Aaron Jacobs)

package fuse

import (
	"syscall"

	bazilfuse "bazil.org/fuse"
)

// Kind is a closed taxonomy of error conditions a handler may report. Each
// kind maps to exactly one POSIX errno at the reply boundary; handlers never
// manipulate raw errnos themselves.
type Kind int

const (
	KindNotFound Kind = iota
	KindPermissionDenied
	KindIsDirectory
	KindNotDirectory
	KindNotEmpty
	KindExists
	KindInvalidArgument
	KindNoSpace
	KindIoError
	KindFunctionNotImplemented
	KindStaleInode
	KindInterrupted
	KindNameTooLong
	KindReadOnlyFs
)

// Error is the typed error surface returned by handler methods. The
// dispatcher converts it to a kernel errno at the reply boundary; it is
// never inspected by application code for anything but Kind and Msg.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return e.Kind.String()
}

// NewError builds an Error of the given kind with an explanatory message.
func NewError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindPermissionDenied:
		return "permission denied"
	case KindIsDirectory:
		return "is a directory"
	case KindNotDirectory:
		return "not a directory"
	case KindNotEmpty:
		return "directory not empty"
	case KindExists:
		return "already exists"
	case KindInvalidArgument:
		return "invalid argument"
	case KindNoSpace:
		return "no space left on device"
	case KindIoError:
		return "I/O error"
	case KindFunctionNotImplemented:
		return "function not implemented"
	case KindStaleInode:
		return "stale file handle"
	case KindInterrupted:
		return "interrupted"
	case KindNameTooLong:
		return "name too long"
	case KindReadOnlyFs:
		return "read-only file system"
	default:
		return "unknown error"
	}
}

// Errno converts k to the POSIX errno the kernel should see.
func (k Kind) Errno() bazilfuse.Errno {
	switch k {
	case KindNotFound:
		return bazilfuse.ENOENT
	case KindPermissionDenied:
		return bazilfuse.Errno(syscall.EACCES)
	case KindIsDirectory:
		return bazilfuse.Errno(syscall.EISDIR)
	case KindNotDirectory:
		return bazilfuse.Errno(syscall.ENOTDIR)
	case KindNotEmpty:
		return bazilfuse.Errno(syscall.ENOTEMPTY)
	case KindExists:
		return bazilfuse.EEXIST
	case KindInvalidArgument:
		return bazilfuse.EINVAL
	case KindNoSpace:
		return bazilfuse.Errno(syscall.ENOSPC)
	case KindIoError:
		return bazilfuse.EIO
	case KindFunctionNotImplemented:
		return bazilfuse.ENOSYS
	case KindStaleInode:
		return bazilfuse.Errno(syscall.ESTALE)
	case KindInterrupted:
		return bazilfuse.Errno(syscall.EINTR)
	case KindNameTooLong:
		return bazilfuse.Errno(syscall.ENAMETOOLONG)
	case KindReadOnlyFs:
		return bazilfuse.Errno(syscall.EROFS)
	default:
		return bazilfuse.EIO
	}
}

// ToErrno converts an arbitrary error returned by a handler to a kernel
// errno. A *Error is converted via its Kind; any other non-nil error
// (including a value substituted for a recovered panic) is reported as EIO
// — a non-Error is an internal bug, not a filesystem condition, and spec's
// "never panics on handler-raised errors" guarantee only covers the typed
// taxonomy.
func ToErrno(err error) bazilfuse.Errno {
	if err == nil {
		return 0
	}
	if fe, ok := err.(*Error); ok {
		return fe.Kind.Errno()
	}
	return bazilfuse.EIO
}

// Errors corresponding to kernel error numbers, exported for code that
// references raw errnos directly. Nothing in this module uses them; the
// dispatcher converts through the typed Kind taxonomy above.
const (
	EIO       = bazilfuse.EIO
	ENOENT    = bazilfuse.ENOENT
	ENOSYS    = bazilfuse.ENOSYS
	ENOTEMPTY = bazilfuse.Errno(syscall.ENOTEMPTY)
)

// Convenience constructors, used pervasively by sample handlers.
func ErrNotFound(msg string) error               { return NewError(KindNotFound, msg) }
func ErrPermissionDenied(msg string) error       { return NewError(KindPermissionDenied, msg) }
func ErrIsDirectory(msg string) error            { return NewError(KindIsDirectory, msg) }
func ErrNotDirectory(msg string) error           { return NewError(KindNotDirectory, msg) }
func ErrNotEmpty(msg string) error               { return NewError(KindNotEmpty, msg) }
func ErrExists(msg string) error                 { return NewError(KindExists, msg) }
func ErrInvalidArgument(msg string) error        { return NewError(KindInvalidArgument, msg) }
func ErrNoSpace(msg string) error                { return NewError(KindNoSpace, msg) }
func ErrIoError(msg string) error                { return NewError(KindIoError, msg) }
func ErrFunctionNotImplemented(msg string) error { return NewError(KindFunctionNotImplemented, msg) }
func ErrStaleInode(msg string) error             { return NewError(KindStaleInode, msg) }
func ErrInterrupted(msg string) error            { return NewError(KindInterrupted, msg) }
func ErrNameTooLong(msg string) error            { return NewError(KindNameTooLong, msg) }
func ErrReadOnlyFs(msg string) error             { return NewError(KindReadOnlyFs, msg) }
