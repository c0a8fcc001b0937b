// File: api/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Abstract interface of the event reactor consumed by the adaptation
// layer. The reactor owns the event loop, timer queue, and resolver; this
// module only constructs events against it.

package api

import (
	"net/netip"
	"time"
)

// Reactor constructs events against the per-thread event loop. All
// constructors may fail when the reactor refuses the registration, which
// adapters surface as an allocation failure.
type Reactor interface {
	// NewSocketEvent creates a readiness event for a socket descriptor.
	NewSocketEvent(fd int, bits EventBits) (PollEvent, error)

	// NewFDEvent creates a readiness event for an arbitrary descriptor.
	// user travels to the event unchanged.
	NewFDEvent(fd int, user any, bits EventBits) (PollEvent, error)

	// NewTimerEvent creates a one-shot or periodic timer.
	NewTimerEvent(d time.Duration, periodic bool) (TimerEvent, error)

	// NewAddrInfoEvent creates a forward name-resolution event.
	NewAddrInfoEvent(node, service string, hints *AddrInfoHints) (AddrInfoEvent, error)

	// NewNameInfoEvent creates a reverse name-resolution event.
	NewNameInfoEvent(addr netip.Addr, flags int) (NameInfoEvent, error)
}
