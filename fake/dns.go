// File: fake/dns.go
// Package fake
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Deterministic name resolution against a test-populated host table.

package fake

import (
	"net/netip"
	"strconv"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-async/api"
)

// AddHost registers forward resolution entries for name. canon may be
// empty, in which case the requested name is reported canonical.
func (l *Loop) AddHost(name, canon string, addrs ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, s := range addrs {
		if a, err := netip.ParseAddr(s); err == nil {
			l.hosts[name] = append(l.hosts[name], a)
		}
	}
	if canon != "" {
		l.canon[name] = canon
	}
}

// AddName registers a reverse resolution entry.
func (l *Loop) AddName(ip, hostname string) {
	a, err := netip.ParseAddr(ip)
	if err != nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.names[a] = hostname
}

// addrInfoEvent resolves node/service against the host table.
type addrInfoEvent struct {
	loop    *Loop
	node    string
	service string
	hints   api.AddrInfoHints

	result *api.AddrInfo
	cbs    []api.EventCallback
	closed bool
}

var _ api.AddrInfoEvent = (*addrInfoEvent)(nil)

func (e *addrInfoEvent) Start() error {
	if e.closed {
		return api.ErrEventClosed
	}
	e.loop.post(e.resolve)
	return nil
}

func (e *addrInfoEvent) resolve() {
	if e.closed {
		return
	}

	l := e.loop
	l.mu.Lock()
	addrs := append([]netip.Addr(nil), l.hosts[e.node]...)
	canon := l.canon[e.node]
	l.mu.Unlock()

	port := 0
	if e.service != "" {
		port, _ = strconv.Atoi(e.service)
	}

	var head, tail *api.AddrInfo
	for _, a := range addrs {
		if e.hints.Family == unix.AF_INET && !a.Is4() {
			continue
		}
		if e.hints.Family == unix.AF_INET6 && a.Is4() {
			continue
		}

		node := &api.AddrInfo{
			SockType: e.hints.SockType,
			Protocol: e.hints.Protocol,
		}
		if a.Is4() {
			node.Family = unix.AF_INET
			node.Addr = &unix.SockaddrInet4{Port: port, Addr: a.As4()}
		} else {
			node.Family = unix.AF_INET6
			node.Addr = &unix.SockaddrInet6{Port: port, Addr: a.As16()}
		}

		if head == nil {
			head = node
		} else {
			tail.Next = node
		}
		tail = node
	}

	if head == nil {
		e.notify(nil, api.NewError(api.ErrCodeNotFound, "host not found").
			WithContext("node", e.node))
		return
	}

	if canon == "" {
		canon = e.node
	}
	head.CanonName = canon

	e.result = head
	e.notify(nil, nil)
}

func (e *addrInfoEvent) Stop()    {}
func (e *addrInfoEvent) Dispose() { e.closed = true }

func (e *addrInfoEvent) AddCallback(cb api.EventCallback) {
	e.cbs = append(e.cbs, cb)
}

func (e *addrInfoEvent) DelCallback(cb api.EventCallback) {
	for i, cur := range e.cbs {
		if cur == cb {
			e.cbs = append(e.cbs[:i], e.cbs[i+1:]...)
			return
		}
	}
}

func (e *addrInfoEvent) Result() *api.AddrInfo { return e.result }

func (e *addrInfoEvent) notify(result any, failure error) {
	cbs := append([]api.EventCallback(nil), e.cbs...)
	for _, cb := range cbs {
		cb.Invoke(e, result, failure)
	}
}

// NewAddrInfoEvent creates a forward resolution event.
func (l *Loop) NewAddrInfoEvent(node, service string, hints *api.AddrInfoHints) (api.AddrInfoEvent, error) {
	if l.takeEventFailure() {
		return nil, api.NewError(api.ErrCodeResourceExhausted, "event construction refused")
	}
	ev := &addrInfoEvent{loop: l, node: node, service: service}
	if hints != nil {
		ev.hints = *hints
	}
	return ev, nil
}

// nameInfoEvent resolves an address against the reverse table.
type nameInfoEvent struct {
	loop *Loop
	addr netip.Addr

	hostname string
	cbs      []api.EventCallback
	closed   bool
}

var _ api.NameInfoEvent = (*nameInfoEvent)(nil)

func (e *nameInfoEvent) Start() error {
	if e.closed {
		return api.ErrEventClosed
	}
	e.loop.post(e.resolve)
	return nil
}

func (e *nameInfoEvent) resolve() {
	if e.closed {
		return
	}

	l := e.loop
	l.mu.Lock()
	name, ok := l.names[e.addr]
	l.mu.Unlock()

	if !ok {
		e.notify(nil, api.NewError(api.ErrCodeNotFound, "address not found").
			WithContext("addr", e.addr.String()))
		return
	}

	e.hostname = name
	e.notify(nil, nil)
}

func (e *nameInfoEvent) Stop()    {}
func (e *nameInfoEvent) Dispose() { e.closed = true }

func (e *nameInfoEvent) AddCallback(cb api.EventCallback) {
	e.cbs = append(e.cbs, cb)
}

func (e *nameInfoEvent) DelCallback(cb api.EventCallback) {
	for i, cur := range e.cbs {
		if cur == cb {
			e.cbs = append(e.cbs[:i], e.cbs[i+1:]...)
			return
		}
	}
}

func (e *nameInfoEvent) Hostname() string { return e.hostname }

func (e *nameInfoEvent) notify(result any, failure error) {
	cbs := append([]api.EventCallback(nil), e.cbs...)
	for _, cb := range cbs {
		cb.Invoke(e, result, failure)
	}
}

// NewNameInfoEvent creates a reverse resolution event.
func (l *Loop) NewNameInfoEvent(addr netip.Addr, flags int) (api.NameInfoEvent, error) {
	if l.takeEventFailure() {
		return nil, api.NewError(api.ErrCodeResourceExhausted, "event construction refused")
	}
	return &nameInfoEvent{loop: l, addr: addr}, nil
}
