// File: netpoll/dns.go
// Package netpoll
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Reactor-backed name resolution with legacy getaddrinfo, gethostbyname,
// and gethostbyaddr signatures.

package netpoll

import (
	"fmt"
	"net/netip"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-async/api"
)

// hostentContextKey stores the per-coroutine hostent buffer. The buffer
// is released by a coroutine-end hook registered on first use.
const hostentContextKey = "hioload-async.hostent"

// GetAddrInfo resolves node/service through the reactor. At least one of
// node and service must be non-empty. The returned chain is owned by the
// caller. On failure the error carries the errno value (EINVAL for
// context or argument errors, ENOMEM for construction failures,
// ECANCELED/ETIMEDOUT/EINTR after suspension).
func (a *Adapter) GetAddrInfo(node, service string, hints *api.AddrInfoHints) (*api.AddrInfo, error) {
	co := a.rt.Current()
	if co == nil {
		return nil, unix.EINVAL
	}
	if node == "" && service == "" {
		return nil, unix.EINVAL
	}

	if _, err := co.NewWaker(); err != nil {
		return nil, mapFailure(err, a.log)
	}

	ev, err := a.rc.NewAddrInfoEvent(node, service, hints)
	if err != nil {
		co.DestroyWaker()
		return nil, unix.ENOMEM
	}

	var res *api.AddrInfo
	cb := &addrInfoCallback{co: co, res: &res}
	if rerr := co.ResumeWhen(ev, true, cb); rerr != nil {
		ev.Dispose()
		co.DestroyWaker()
		return nil, mapFailure(rerr, a.log)
	}

	co.Waker().SetResult(false)

	if serr := co.Suspend(); serr != nil {
		co.DestroyWaker()
		return nil, mapFailure(serr, a.log)
	}

	ok, _ := co.Waker().Result().(bool)
	co.DestroyWaker()

	if !ok {
		return nil, unix.EINTR
	}
	return res, nil
}

// GetHostByName is an IPv4 convenience wrapper over GetAddrInfo. On
// success it returns a hostent-shaped buffer with a single-entry address
// list; the buffer is stored in the coroutine context and freed when the
// coroutine terminates. A second call on the same coroutine replaces the
// previous buffer and reuses the existing cleanup hook. Returns nil on
// any failure.
func (a *Adapter) GetHostByName(name string) *api.HostEnt {
	if name == "" {
		return nil
	}
	co := a.rt.Current()
	if co == nil {
		return nil
	}

	hints := &api.AddrInfoHints{Family: unix.AF_INET, SockType: unix.SOCK_STREAM}
	res, err := a.GetAddrInfo(name, "", hints)
	if err != nil || res == nil {
		return nil
	}
	if res.Family != unix.AF_INET {
		return nil
	}
	sa, ok := res.Addr.(*unix.SockaddrInet4)
	if !ok {
		return nil
	}

	// The buffer cannot live in a package global: calls run concurrently
	// on different coroutines, so storage is bound to the coroutine.
	ctx := co.Context()
	needHook := true
	if _, exists := ctx.Get(hostentContextKey); exists {
		ctx.Delete(hostentContextKey)
		needHook = false
	}

	canonical := res.CanonName
	if canonical == "" {
		canonical = name
	}

	he := &api.HostEnt{
		Name:     canonical,
		Aliases:  nil,
		AddrType: unix.AF_INET,
		Length:   len(sa.Addr),
		AddrList: [][]byte{append([]byte(nil), sa.Addr[:]...)},
	}
	ctx.Set(hostentContextKey, he)

	if needHook {
		co.OnFinish(func() {
			ctx.Delete(hostentContextKey)
		})
	}

	return he
}

// GetHostByAddr resolves an IPv4 address string back to a hostname.
// Only dotted-quad IPv4 input is accepted. Returns the empty string on
// any failure; resolution failures are swallowed.
func (a *Adapter) GetHostByAddr(ip string) string {
	co := a.rt.Current()
	if co == nil || ip == "" {
		return ""
	}

	addr, err := netip.ParseAddr(ip)
	if err != nil || !addr.Is4() {
		return ""
	}

	if _, err := co.NewWaker(); err != nil {
		return ""
	}

	ev, err := a.rc.NewNameInfoEvent(addr, 0)
	if err != nil {
		co.DestroyWaker()
		return ""
	}

	var hostname string
	cb := &nameInfoCallback{co: co, hostname: &hostname}
	if rerr := co.ResumeWhen(ev, true, cb); rerr != nil {
		ev.Dispose()
		co.DestroyWaker()
		return ""
	}

	co.Waker().SetResult(false)

	serr := co.Suspend()
	ok, _ := co.Waker().Result().(bool)
	co.DestroyWaker()

	if serr != nil || !ok {
		return ""
	}
	return hostname
}

// GetAddresses resolves host to the full family-unspecified address list.
// It returns the copied sockaddr slice and its length, or (nil, -1) on
// failure. A failure message is written to errStr when supplied,
// otherwise logged as a warning.
func (a *Adapter) GetAddresses(host string, sockType int, errStr *string) ([]unix.Sockaddr, int) {
	if host == "" {
		return nil, 0
	}

	hints := &api.AddrInfoHints{Family: unix.AF_UNSPEC, SockType: sockType}
	res, err := a.GetAddrInfo(host, "", hints)
	if err != nil {
		a.reportAddressFailure(fmt.Sprintf("getaddrinfo for %s failed", host), errStr)
		return nil, -1
	}
	if res == nil {
		a.reportAddressFailure(fmt.Sprintf("no addresses found for %s", host), errStr)
		return nil, -1
	}

	var out []unix.Sockaddr
	for ai := res; ai != nil; ai = ai.Next {
		out = append(out, ai.Addr)
	}
	return out, len(out)
}

func (a *Adapter) reportAddressFailure(msg string, errStr *string) {
	if errStr != nil {
		*errStr = msg
		return
	}
	a.log.Warn("address resolution failed", zap.String("reason", msg))
}
