package netpoll_test

import (
	"testing"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-async/api"
	"github.com/momentics/hioload-async/netpoll"
)

func TestGetAddrInfoResolves(t *testing.T) {
	loop := newTestLoop(t)
	loop.AddHost("localhost", "", "127.0.0.1")
	ad := netpoll.New(loop, loop)

	var res *api.AddrInfo
	var rerr error
	co := loop.Spawn(func(co api.Coroutine) {
		hints := &api.AddrInfoHints{Family: unix.AF_INET, SockType: unix.SOCK_STREAM}
		res, rerr = ad.GetAddrInfo("localhost", "", hints)
	})
	loop.Wait(co)

	if rerr != nil {
		t.Fatalf("GetAddrInfo returned error %v", rerr)
	}
	if res == nil {
		t.Fatal("GetAddrInfo returned nil chain")
	}
	if res.Family != unix.AF_INET {
		t.Errorf("first entry family = %d, want AF_INET", res.Family)
	}
	sa, ok := res.Addr.(*unix.SockaddrInet4)
	if !ok {
		t.Fatalf("first entry address type = %T, want *unix.SockaddrInet4", res.Addr)
	}
	if sa.Addr != [4]byte{127, 0, 0, 1} {
		t.Errorf("first entry address = %v, want 127.0.0.1", sa.Addr)
	}
}

func TestGetAddrInfoRequiresNodeOrService(t *testing.T) {
	loop := newTestLoop(t)
	ad := netpoll.New(loop, loop)

	var rerr error
	co := loop.Spawn(func(co api.Coroutine) {
		_, rerr = ad.GetAddrInfo("", "", nil)
	})
	loop.Wait(co)

	if rerr != unix.EINVAL {
		t.Fatalf("GetAddrInfo without node and service = %v, want EINVAL", rerr)
	}
}

func TestGetAddrInfoOutsideCoroutine(t *testing.T) {
	loop := newTestLoop(t)
	ad := netpoll.New(loop, loop)

	if _, err := ad.GetAddrInfo("localhost", "", nil); err != unix.EINVAL {
		t.Fatalf("GetAddrInfo outside coroutine = %v, want EINVAL", err)
	}
}

func TestGetAddrInfoUnknownHost(t *testing.T) {
	loop := newTestLoop(t)
	ad := netpoll.New(loop, loop)

	var res *api.AddrInfo
	var rerr error
	co := loop.Spawn(func(co api.Coroutine) {
		res, rerr = ad.GetAddrInfo("not.a.real.host.invalid", "", nil)
	})
	loop.Wait(co)

	if rerr == nil {
		t.Fatal("GetAddrInfo for unknown host returned no error")
	}
	if res != nil {
		t.Fatal("GetAddrInfo for unknown host returned a chain")
	}
}

func TestGetHostByNameBuildsHostEnt(t *testing.T) {
	loop := newTestLoop(t)
	loop.AddHost("db.local", "db.example.com", "10.0.0.7")
	ad := netpoll.New(loop, loop)

	var he *api.HostEnt
	co := loop.Spawn(func(co api.Coroutine) {
		he = ad.GetHostByName("db.local")
	})
	loop.Wait(co)

	if he == nil {
		t.Fatal("GetHostByName returned nil")
	}
	if he.Name != "db.example.com" {
		t.Errorf("Name = %q, want canonical db.example.com", he.Name)
	}
	if he.AddrType != unix.AF_INET || he.Length != 4 {
		t.Errorf("AddrType/Length = %d/%d, want AF_INET/4", he.AddrType, he.Length)
	}
	if he.Aliases != nil {
		t.Errorf("Aliases = %v, want nil", he.Aliases)
	}
	if len(he.AddrList) != 1 || string(he.AddrList[0]) != string([]byte{10, 0, 0, 7}) {
		t.Errorf("AddrList = %v, want single entry 10.0.0.7", he.AddrList)
	}
}

// Consecutive calls on the same coroutine yield distinct buffers, and the
// per-coroutine storage drains when the coroutine terminates.
func TestGetHostByNameBufferLifetime(t *testing.T) {
	loop := newTestLoop(t)
	loop.AddHost("a.local", "", "10.0.0.1")
	loop.AddHost("b.local", "", "10.0.0.2")
	ad := netpoll.New(loop, loop)

	var first, second *api.HostEnt
	var ctx api.Context
	co := loop.Spawn(func(co api.Coroutine) {
		first = ad.GetHostByName("a.local")
		second = ad.GetHostByName("b.local")
		ctx = co.Context()
	})
	loop.Wait(co)

	if first == nil || second == nil {
		t.Fatal("GetHostByName returned nil")
	}
	if first == second {
		t.Fatal("consecutive calls returned the same buffer")
	}
	if keys := ctx.Keys(); len(keys) != 0 {
		t.Fatalf("coroutine context still holds %v after termination", keys)
	}
}

func TestGetHostByNameUnknownHost(t *testing.T) {
	loop := newTestLoop(t)
	ad := netpoll.New(loop, loop)

	var he *api.HostEnt
	co := loop.Spawn(func(co api.Coroutine) {
		he = ad.GetHostByName("not.a.real.host.invalid")
	})
	loop.Wait(co)

	if he != nil {
		t.Fatal("GetHostByName for unknown host returned a buffer")
	}
}

func TestGetHostByAddr(t *testing.T) {
	loop := newTestLoop(t)
	loop.AddName("127.0.0.1", "localhost")
	ad := netpoll.New(loop, loop)

	var name string
	co := loop.Spawn(func(co api.Coroutine) {
		name = ad.GetHostByAddr("127.0.0.1")
	})
	loop.Wait(co)

	if name != "localhost" {
		t.Fatalf("GetHostByAddr = %q, want localhost", name)
	}
}

func TestGetHostByAddrRejectsNonIPv4(t *testing.T) {
	loop := newTestLoop(t)
	ad := netpoll.New(loop, loop)

	for _, ip := range []string{"::1", "notanip", ""} {
		var name string
		co := loop.Spawn(func(co api.Coroutine) {
			name = ad.GetHostByAddr(ip)
		})
		loop.Wait(co)
		if name != "" {
			t.Errorf("GetHostByAddr(%q) = %q, want empty", ip, name)
		}
	}
}

func TestGetAddressesCountsChain(t *testing.T) {
	loop := newTestLoop(t)
	loop.AddHost("dual.local", "", "192.168.1.5", "2001:db8::5")
	ad := netpoll.New(loop, loop)

	var addrs []unix.Sockaddr
	var n int
	co := loop.Spawn(func(co api.Coroutine) {
		addrs, n = ad.GetAddresses("dual.local", unix.SOCK_STREAM, nil)
	})
	loop.Wait(co)

	if n != 2 || len(addrs) != 2 {
		t.Fatalf("GetAddresses = %d entries, want 2", n)
	}
	if _, ok := addrs[0].(*unix.SockaddrInet4); !ok {
		t.Errorf("first address type = %T, want *unix.SockaddrInet4", addrs[0])
	}
	if _, ok := addrs[1].(*unix.SockaddrInet6); !ok {
		t.Errorf("second address type = %T, want *unix.SockaddrInet6", addrs[1])
	}
}

func TestGetAddressesFailureFillsErrorString(t *testing.T) {
	loop := newTestLoop(t)
	ad := netpoll.New(loop, loop)

	var errStr string
	var n int
	co := loop.Spawn(func(co api.Coroutine) {
		_, n = ad.GetAddresses("missing.local", unix.SOCK_STREAM, &errStr)
	})
	loop.Wait(co)

	if n != -1 {
		t.Fatalf("GetAddresses for unknown host = %d, want -1", n)
	}
	if errStr == "" {
		t.Error("error string not populated on failure")
	}
}

func TestGetAddressesEmptyHost(t *testing.T) {
	loop := newTestLoop(t)
	ad := netpoll.New(loop, loop)

	addrs, n := ad.GetAddresses("", unix.SOCK_STREAM, nil)
	if addrs != nil || n != 0 {
		t.Fatalf("GetAddresses(\"\") = (%v, %d), want (nil, 0)", addrs, n)
	}
}
