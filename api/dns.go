// File: api/dns.go
// Package api
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Value types and event contracts for reactor-backed name resolution.

package api

import "golang.org/x/sys/unix"

// AddrInfoHints narrows a forward resolution, mirroring struct addrinfo
// hints.
type AddrInfoHints struct {
	Family   int
	SockType int
	Protocol int
	Flags    int
}

// AddrInfo is one node of a resolved address chain. The chain is owned by
// the caller once an adapter returns it.
type AddrInfo struct {
	Family    int
	SockType  int
	Protocol  int
	CanonName string
	Addr      unix.Sockaddr
	Next      *AddrInfo
}

// HostEnt is the hostent-shaped result of GetHostByName. The buffer lives
// in the calling coroutine's context and is released when the coroutine
// terminates; a later call on the same coroutine replaces it.
type HostEnt struct {
	Name     string
	Aliases  []string
	AddrType int
	Length   int
	AddrList [][]byte
}

// AddrInfoEvent resolves a node/service pair to an address chain.
type AddrInfoEvent interface {
	Event

	// Result returns the resolved chain, nil until the event fires.
	Result() *AddrInfo
}

// NameInfoEvent resolves an address back to a hostname.
type NameInfoEvent interface {
	Event

	// Hostname returns the resolved name, empty until the event fires.
	Hostname() string
}
