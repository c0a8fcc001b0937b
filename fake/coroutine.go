// File: fake/coroutine.go
// Package fake
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Coroutine and waker implementation. A coroutine is a goroutine that
// alternates strictly with the loop goroutine: Suspend hands control
// back, a scheduled resume hands it forward again.

package fake

import (
	"time"

	"github.com/momentics/hioload-async/api"
	"github.com/momentics/hioload-async/internal/session"
)

type coroState int

const (
	coroRunning coroState = iota
	coroSuspended
	coroFinished
)

type coro struct {
	loop *Loop
	id   uint64

	// resumeCh unparks the coroutine goroutine; yield returns control to
	// the loop goroutine. Both are unbuffered: every send is a handoff.
	resumeCh chan struct{}
	yield    chan struct{}
	done     chan struct{}

	state         coroState
	resumePending bool
	pendingErr    error

	waker  *waker
	ctx    api.Context
	finish []func()
}

var _ api.Coroutine = (*coro)(nil)

func newCoro(l *Loop, id uint64) *coro {
	return &coro{
		loop:     l,
		id:       id,
		resumeCh: make(chan struct{}),
		yield:    make(chan struct{}),
		done:     make(chan struct{}),
		ctx:      session.NewContextStore(),
	}
}

// ID returns the coroutine identifier.
func (c *coro) ID() uint64 { return c.id }

func (c *coro) NewWaker() (api.Waker, error) {
	w := &waker{co: c}
	c.waker = w
	return w, nil
}

func (c *coro) NewWakerWithTimeout(timeout time.Duration) (api.Waker, error) {
	w := &waker{co: c}

	tev, err := c.loop.NewTimerEvent(timeout, false)
	if err != nil {
		return nil, err
	}
	tev.AddCallback(&timeoutCallback{co: c, after: timeout})
	if serr := tev.Start(); serr != nil {
		tev.Dispose()
		return nil, serr
	}

	w.timer = tev
	c.waker = w
	return w, nil
}

func (c *coro) Waker() api.Waker {
	if c.waker == nil {
		return nil
	}
	return c.waker
}

// DestroyWaker detaches and, where owned, disposes every event still
// linked through the waker, then drops the waker itself.
func (c *coro) DestroyWaker() {
	w := c.waker
	if w == nil {
		return
	}
	c.waker = nil

	for _, ln := range w.links {
		ln.ev.DelCallback(ln.cb)
		if ln.own {
			ln.ev.Dispose()
		}
	}
	w.links = nil

	if w.timer != nil {
		w.timer.Dispose()
		w.timer = nil
	}
}

func (c *coro) ResumeWhen(ev api.Event, own bool, cb api.EventCallback) error {
	if c.waker == nil {
		return api.ErrNoWaker
	}

	ev.AddCallback(cb)
	if err := ev.Start(); err != nil {
		ev.DelCallback(cb)
		return err
	}

	c.waker.links = append(c.waker.links, wakerLink{ev: ev, own: own, cb: cb})
	return nil
}

// Suspend parks the coroutine goroutine until a resume is scheduled.
// Returns and consumes the pending failure.
func (c *coro) Suspend() error {
	l := c.loop

	l.mu.Lock()
	c.state = coroSuspended
	l.current = nil
	l.mu.Unlock()

	c.yield <- struct{}{}
	<-c.resumeCh

	l.mu.Lock()
	c.state = coroRunning
	c.resumePending = false
	l.current = c
	err := c.pendingErr
	c.pendingErr = nil
	l.mu.Unlock()

	return err
}

func (c *coro) Resume() {
	c.scheduleResume()
}

func (c *coro) ResumeWithError(err error) {
	c.loop.mu.Lock()
	if c.pendingErr == nil {
		c.pendingErr = err
	}
	c.loop.mu.Unlock()

	c.scheduleResume()
}

// Cancel delivers a cancellation failure. Safe from any goroutine.
func (c *coro) Cancel() {
	c.loop.post(func() {
		c.ResumeWithError(&api.CanceledError{})
	})
}

// scheduleResume queues the handoff back to the coroutine. The first
// call while suspended wins; later calls are no-ops until the coroutine
// runs again.
func (c *coro) scheduleResume() {
	l := c.loop

	l.mu.Lock()
	if c.state == coroFinished || c.resumePending {
		l.mu.Unlock()
		return
	}
	c.resumePending = true
	l.mu.Unlock()

	l.post(func() {
		l.mu.Lock()
		if c.state != coroSuspended {
			c.resumePending = false
			l.mu.Unlock()
			return
		}
		l.mu.Unlock()

		c.resumeCh <- struct{}{}
		<-c.yield
	})
}

func (c *coro) Context() api.Context { return c.ctx }

func (c *coro) OnFinish(fn func()) {
	c.finish = append(c.finish, fn)
}

func (c *coro) finishNow() {
	for _, fn := range c.finish {
		fn()
	}
	c.finish = nil
	// A waker left behind by a buggy caller must not keep events alive.
	c.DestroyWaker()
}

type wakerLink struct {
	ev  api.Event
	own bool
	cb  api.EventCallback
}

// waker carries the accumulator and the event registrations of one
// suspension.
type waker struct {
	co     *coro
	result any
	links  []wakerLink
	timer  api.TimerEvent
}

var _ api.Waker = (*waker)(nil)

func (w *waker) Result() any     { return w.result }
func (w *waker) SetResult(v any) { w.result = v }

// timeoutCallback delivers the waker timeout as a cooperative failure.
type timeoutCallback struct {
	co    api.Coroutine
	after time.Duration
}

func (c *timeoutCallback) Invoke(ev api.Event, result any, failure error) {
	c.co.ResumeWithError(&api.TimeoutError{After: c.after})
}
