// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package api defines the contracts of the hioload-async adaptation layer:
// the reactor surface it consumes (readiness events, timers, DNS
// resolution), the coroutine runtime surface (current coroutine, waker,
// suspension), and the transfer-engine surface driven by the bridge
// package. The package contains no implementation; see netpoll, bridge,
// and the in-memory fake runtime.
package api
