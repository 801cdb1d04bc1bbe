//go:build unix

package fs

import (
	"errors"

	"golang.org/x/sys/unix"
)

func lockFd(fd uintptr) (func() error, error) {
	if err := unix.Flock(int(fd), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, ErrLocked
		}
		return nil, err
	}
	return func() error {
		return unix.Flock(int(fd), unix.LOCK_UN)
	}, nil
}
