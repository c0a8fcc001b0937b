// File: fake/loop.go
// Package fake
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Cooperative single-threaded loop. Exactly one of {loop, some coroutine}
// executes at any moment; control is handed off through channels, so
// event callbacks always run on the loop goroutine while the awaiting
// coroutine is parked.

package fake

import (
	"net/netip"
	"sync"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-async/api"
)

// Loop is a cooperative scheduler plus reactor for one thread.
type Loop struct {
	mu      sync.Mutex
	runq    *queue.Queue // of func()
	wake    chan struct{}
	done    chan struct{}
	stopped bool

	current *coro
	nextID  uint64

	pollers map[int][]*pollEvent

	hosts map[string][]netip.Addr
	canon map[string]string
	names map[netip.Addr]string

	failEvents int
}

var (
	_ api.Runtime = (*Loop)(nil)
	_ api.Reactor = (*Loop)(nil)
)

// NewLoop creates an idle loop. Call Run on its own goroutine.
func NewLoop() *Loop {
	return &Loop{
		runq:    queue.New(),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		pollers: make(map[int][]*pollEvent),
		hosts:   make(map[string][]netip.Addr),
		canon:   make(map[string]string),
		names:   make(map[netip.Addr]string),
	}
}

// Run processes posted work until Shutdown.
func (l *Loop) Run() {
	for {
		l.mu.Lock()
		if l.stopped {
			l.mu.Unlock()
			return
		}
		var fn func()
		if l.runq.Length() > 0 {
			fn = l.runq.Remove().(func())
		}
		l.mu.Unlock()

		if fn != nil {
			fn()
			continue
		}

		select {
		case <-l.wake:
		case <-l.done:
			return
		}
	}
}

// Shutdown stops the loop. Pending work is dropped.
func (l *Loop) Shutdown() {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.stopped = true
	l.mu.Unlock()
	close(l.done)
}

// Post enqueues fn for the loop goroutine. Safe from any goroutine.
// Tests use it to group several injections into one reactor tick.
func (l *Loop) Post(fn func()) {
	l.post(fn)
}

// post enqueues fn for the loop goroutine. Safe from any goroutine.
func (l *Loop) post(fn func()) {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.runq.Add(fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Current returns the running coroutine, nil on the loop goroutine or
// outside the loop entirely.
func (l *Loop) Current() api.Coroutine {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current == nil {
		return nil
	}
	return l.current
}

// Spawn enqueues fn as a new coroutine.
func (l *Loop) Spawn(fn func(co api.Coroutine)) api.Coroutine {
	l.mu.Lock()
	l.nextID++
	c := newCoro(l, l.nextID)
	l.mu.Unlock()

	l.post(func() { l.runCoro(c, fn) })
	return c
}

// Wait blocks until co terminates. Test helper; co must come from Spawn
// on this loop.
func (l *Loop) Wait(co api.Coroutine) {
	if c, ok := co.(*coro); ok {
		<-c.done
	}
}

// runCoro hands control to the coroutine goroutine and waits for it to
// park or finish.
func (l *Loop) runCoro(c *coro, fn func(co api.Coroutine)) {
	go func() {
		l.setCurrent(c)
		fn(c)
		c.finishNow()
		l.setCurrent(nil)

		l.mu.Lock()
		c.state = coroFinished
		l.mu.Unlock()

		close(c.done)
		c.yield <- struct{}{}
	}()
	<-c.yield
}

func (l *Loop) setCurrent(c *coro) {
	l.mu.Lock()
	l.current = c
	l.mu.Unlock()
}

// SetEventFailures makes the next n event constructions fail, for
// exercising allocation-failure paths.
func (l *Loop) SetEventFailures(n int) {
	l.mu.Lock()
	l.failEvents = n
	l.mu.Unlock()
}

func (l *Loop) takeEventFailure() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failEvents > 0 {
		l.failEvents--
		return true
	}
	return false
}
