// File: netpoll/sockopt.go
// Package netpoll
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package netpoll

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// SetSocketBlocking switches a descriptor between blocking and
// non-blocking mode. Descriptors handed to the adapters are expected to
// be non-blocking; the reactor never reads or writes them itself.
func SetSocketBlocking(fd int, blocking bool) error {
	flags, err := unix.FcntlInt(uintptr(fd), unix.F_GETFL, 0)
	if err != nil {
		return fmt.Errorf("fcntl(F_GETFL): %w", err)
	}

	if blocking {
		flags &^= unix.O_NONBLOCK
	} else {
		flags |= unix.O_NONBLOCK
	}

	if _, err := unix.FcntlInt(uintptr(fd), unix.F_SETFL, flags); err != nil {
		return fmt.Errorf("fcntl(F_SETFL): %w", err)
	}
	return nil
}
