// File: fake/events.go
// Package fake
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Readiness and timer events. Readiness is injected by tests through
// FireFD; timers run on real time and marshal their firing back onto the
// loop goroutine.

package fake

import (
	"time"

	"github.com/momentics/hioload-async/api"
)

// pollEvent is a readiness event on one descriptor.
type pollEvent struct {
	loop *Loop
	fd   int
	user any

	requested api.EventBits
	triggered api.EventBits

	cbs     []api.EventCallback
	started bool
	closed  bool
}

var _ api.PollEvent = (*pollEvent)(nil)

func (e *pollEvent) Start() error {
	if e.closed {
		return api.ErrEventClosed
	}
	if e.started {
		return nil
	}
	e.started = true

	l := e.loop
	l.mu.Lock()
	l.pollers[e.fd] = append(l.pollers[e.fd], e)
	l.mu.Unlock()
	return nil
}

func (e *pollEvent) Stop() {
	if !e.started {
		return
	}
	e.started = false

	l := e.loop
	l.mu.Lock()
	list := l.pollers[e.fd]
	for i, cur := range list {
		if cur == e {
			l.pollers[e.fd] = append(list[:i], list[i+1:]...)
			break
		}
	}
	l.mu.Unlock()
}

func (e *pollEvent) Dispose() {
	e.Stop()
	e.closed = true
}

func (e *pollEvent) AddCallback(cb api.EventCallback) {
	e.cbs = append(e.cbs, cb)
}

func (e *pollEvent) DelCallback(cb api.EventCallback) {
	for i, cur := range e.cbs {
		if cur == cb {
			e.cbs = append(e.cbs[:i], e.cbs[i+1:]...)
			return
		}
	}
}

func (e *pollEvent) FD() int                      { return e.fd }
func (e *pollEvent) Requested() api.EventBits     { return e.requested }
func (e *pollEvent) SetRequested(b api.EventBits) { e.requested = b }
func (e *pollEvent) Triggered() api.EventBits     { return e.triggered }

func (e *pollEvent) notify(result any, failure error) {
	cbs := append([]api.EventCallback(nil), e.cbs...)
	for _, cb := range cbs {
		cb.Invoke(e, result, failure)
	}
}

// NewSocketEvent creates a readiness event for a socket descriptor.
func (l *Loop) NewSocketEvent(fd int, bits api.EventBits) (api.PollEvent, error) {
	if l.takeEventFailure() {
		return nil, api.NewError(api.ErrCodeResourceExhausted, "event construction refused")
	}
	if fd < 0 {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "negative descriptor")
	}
	return &pollEvent{loop: l, fd: fd, requested: bits}, nil
}

// NewFDEvent creates a readiness event for an arbitrary descriptor.
func (l *Loop) NewFDEvent(fd int, user any, bits api.EventBits) (api.PollEvent, error) {
	if l.takeEventFailure() {
		return nil, api.NewError(api.ErrCodeResourceExhausted, "event construction refused")
	}
	if fd < 0 {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "negative descriptor")
	}
	return &pollEvent{loop: l, fd: fd, user: user, requested: bits}, nil
}

// FireFD injects readiness on fd as the kernel would. Disconnect is
// delivered regardless of the requested bits, matching poll(2). Safe
// from any goroutine; delivery happens on the loop.
func (l *Loop) FireFD(fd int, bits api.EventBits) {
	l.post(func() {
		l.mu.Lock()
		evs := append([]*pollEvent(nil), l.pollers[fd]...)
		l.mu.Unlock()

		for _, ev := range evs {
			hit := bits & (ev.requested | api.EventDisconnect)
			if hit == 0 {
				continue
			}
			ev.triggered = hit
			ev.notify(nil, nil)
		}
	})
}

// timerEvent fires once or periodically after its interval.
type timerEvent struct {
	loop     *Loop
	interval time.Duration
	periodic bool

	cbs    []api.EventCallback
	t      *time.Timer
	closed bool
}

var _ api.TimerEvent = (*timerEvent)(nil)

func (e *timerEvent) Start() error {
	if e.closed {
		return api.ErrEventClosed
	}
	if e.t != nil {
		return nil
	}
	e.t = time.AfterFunc(e.interval, func() {
		e.loop.post(e.fire)
	})
	return nil
}

func (e *timerEvent) fire() {
	if e.closed {
		return
	}

	cbs := append([]api.EventCallback(nil), e.cbs...)
	for _, cb := range cbs {
		cb.Invoke(e, nil, nil)
	}

	if e.periodic && !e.closed && e.t != nil {
		e.t.Reset(e.interval)
	}
}

func (e *timerEvent) Stop() {
	if e.t != nil {
		e.t.Stop()
	}
}

func (e *timerEvent) Dispose() {
	e.Stop()
	e.closed = true
}

func (e *timerEvent) AddCallback(cb api.EventCallback) {
	e.cbs = append(e.cbs, cb)
}

func (e *timerEvent) DelCallback(cb api.EventCallback) {
	for i, cur := range e.cbs {
		if cur == cb {
			e.cbs = append(e.cbs[:i], e.cbs[i+1:]...)
			return
		}
	}
}

// NewTimerEvent creates a timer. A zero duration fires on the next tick.
func (l *Loop) NewTimerEvent(d time.Duration, periodic bool) (api.TimerEvent, error) {
	if l.takeEventFailure() {
		return nil, api.NewError(api.ErrCodeResourceExhausted, "event construction refused")
	}
	if d < 0 {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "negative interval")
	}
	return &timerEvent{loop: l, interval: d, periodic: periodic}, nil
}
