//go:build darwin

package fuse

import (
	"golang.org/x/sys/unix"
)

// statfsToWire converts a platform Statfs_t to the uniform StatFS shape; see
// platform_linux.go for the Linux counterpart and rationale.
func statfsToWire(st *unix.Statfs_t) StatFS {
	return StatFS{
		Blocks:      st.Blocks,
		BlocksFree:  st.Bfree,
		BlocksAvail: st.Bavail,
		Files:       st.Files,
		FilesFree:   st.Ffree,
		BlockSize:   uint32(st.Bsize),
		NameLen:     255,
	}
}

func platformStatFS(path string) (StatFS, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return StatFS{}, ErrIoError(err.Error())
	}
	return statfsToWire(&st), nil
}

// platformFallocate pre-allocates length bytes on fd. Darwin has no
// fallocate(2); F_PREALLOCATE via fcntl is the nearest equivalent, matching
// how macOS-targeting tools in the ecosystem (e.g. rclone's darwin-specific
// preallocate path) approximate the Linux syscall.
func platformFallocate(fd int, offset, length int64) error {
	store := &unix.Fstore_t{
		Flags:   unix.F_ALLOCATECONTIG,
		Posmode: unix.F_PEOFPOSMODE,
		Offset:  offset,
		Length:  length,
	}
	if err := unix.FcntlFstore(uintptr(fd), unix.F_PREALLOCATE, store); err != nil {
		return ErrIoError(err.Error())
	}
	return nil
}

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
