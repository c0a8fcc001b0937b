// File: netpoll/translate.go
// Package netpoll
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Bidirectional mapping between legacy poll(2) event bits and reactor
// event bits.

package netpoll

import (
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-async/api"
)

// pollToEvents maps requested poll bits to reactor bits. POLLERR and
// POLLNVAL are input-only sentinels requested as readable, matching
// poll(2)'s treat-as-read-ready convention; they have no reverse mapping.
func pollToEvents(events int16) api.EventBits {
	var bits api.EventBits

	if events&unix.POLLIN != 0 {
		bits |= api.EventReadable
	}
	if events&unix.POLLOUT != 0 {
		bits |= api.EventWritable
	}
	if events&unix.POLLHUP != 0 {
		bits |= api.EventDisconnect
	}
	if events&unix.POLLPRI != 0 {
		bits |= api.EventPrioritized
	}
	if events&unix.POLLERR != 0 {
		bits |= api.EventReadable
	}
	if events&unix.POLLNVAL != 0 {
		bits |= api.EventReadable
	}

	return bits
}

// eventsToPoll maps triggered reactor bits back to poll revents bits.
func eventsToPoll(bits api.EventBits) int16 {
	var events int16

	if bits&api.EventReadable != 0 {
		events |= unix.POLLIN
	}
	if bits&api.EventWritable != 0 {
		events |= unix.POLLOUT
	}
	if bits&api.EventDisconnect != 0 {
		events |= unix.POLLHUP
	}
	if bits&api.EventPrioritized != 0 {
		events |= unix.POLLPRI
	}

	return events
}
