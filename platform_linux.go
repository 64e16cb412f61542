//go:build linux

package fuse

import (
	"github.com/detailyang/go-fallocate"
	"golang.org/x/sys/unix"
)

// statfsToWire converts a platform Statfs_t to the uniform StatFS shape
// (spec.md §6's cross-platform statfs shim). Grounded on the teacher's
// fuseops.ConvertFileInfo and the rclone backend's own Statx/Statfs use for
// the general pattern of isolating the syscall behind a per-OS file.
func statfsToWire(st *unix.Statfs_t) StatFS {
	return StatFS{
		Blocks:      st.Blocks,
		BlocksFree:  st.Bfree,
		BlocksAvail: st.Bavail,
		Files:       st.Files,
		FilesFree:   st.Ffree,
		BlockSize:   uint32(st.Bsize),
		NameLen:     uint32(st.Namelen),
	}
}

// platformStatFS stats the filesystem backing path.
func platformStatFS(path string) (StatFS, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return StatFS{}, ErrIoError(err.Error())
	}
	return statfsToWire(&st), nil
}

// platformFallocate pre-allocates length bytes starting at offset on fd,
// using the real fallocate(2) syscall rather than writing zero bytes.
// Grounded on rclone's backend/local/preallocate_unix.go.
func platformFallocate(fd int, offset, length int64) error {
	if err := fallocate.Fallocate(uintptr(fd), offset, length); err != nil {
		return ErrIoError(err.Error())
	}
	return nil
}

// platformGetXAttr/platformSetXAttr/platformListXAttr/platformRemoveXAttr
// give a backing-store-based Handler direct access to the real extended
// attribute syscalls, for implementations that want to pass xattr calls
// through to an underlying filesystem rather than keeping their own
// in-memory map (as samples/memfs does).
func platformGetXAttr(path, name string, dest []byte) (int, error) {
	n, err := unix.Getxattr(path, name, dest)
	if err != nil {
		return 0, ErrIoError(err.Error())
	}
	return n, nil
}

func platformSetXAttr(path, name string, value []byte, flags uint32) error {
	if err := unix.Setxattr(path, name, value, int(flags)); err != nil {
		return ErrIoError(err.Error())
	}
	return nil
}

func platformListXAttr(path string, dest []byte) (int, error) {
	n, err := unix.Listxattr(path, dest)
	if err != nil {
		return 0, ErrIoError(err.Error())
	}
	return n, nil
}

func platformRemoveXAttr(path, name string) error {
	if err := unix.Removexattr(path, name); err != nil {
		return ErrIoError(err.Error())
	}
	return nil
}
