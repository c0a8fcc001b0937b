// File: netpoll/errno.go
// Package netpoll
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Mapping of cooperative failures surfaced after a suspension to legacy
// errno values.

package netpoll

import (
	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-async/api"
)

// mapFailure converts the pending failure consumed from a suspension to
// its errno equivalent. Cancellation maps to ECANCELED and a waker
// timeout to ETIMEDOUT; anything else degrades to EINTR, logged as a
// warning because the caller only sees the numeric code.
func mapFailure(err error, log *zap.Logger) unix.Errno {
	switch {
	case err == nil:
		return unix.EINTR
	case api.IsCanceled(err):
		return unix.ECANCELED
	case api.IsTimeout(err):
		return unix.ETIMEDOUT
	default:
		log.Warn("suspension interrupted", zap.Error(err))
		return unix.EINTR
	}
}
