// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package netpoll adapts blocking multiplexed-I/O and name-resolution
// primitives to a coroutine reactor. Callers keep the traditional poll,
// select, and getaddrinfo contracts, including errno-style error codes
// and result-set mutation; the adapter translates each call into reactor
// events, suspends the coroutine, and restores the legacy return
// convention on resumption. POSIX hosts only.
package netpoll
