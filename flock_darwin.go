//go:build darwin

package fuse

import "fmt"

// Darwin numbers the wire lock-type values differently than Linux for the
// same getlk/setlk request fields; see flock_linux.go for the shared
// rationale. Grounded on the teacher's flock_darwin.go.
func flockTypeFromWire(t uint32) uint32 {
	switch t {
	case 1:
		return LockTypeRead
	case 2:
		return LockTypeUnlock
	case 3:
		return LockTypeWrite
	}
	panic(fmt.Sprintf("flockTypeFromWire: unknown type %d", t))
}

func flockTypeToWire(t uint32) uint32 {
	switch t {
	case LockTypeRead:
		return 1
	case LockTypeWrite:
		return 3
	case LockTypeUnlock:
		return 2
	}
	panic(fmt.Sprintf("flockTypeToWire: unknown type %d", t))
}
