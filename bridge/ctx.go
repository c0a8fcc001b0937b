// File: bridge/ctx.go
// Package bridge
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Per-multi bridge context. Each external multi handle gets its own Ctx
// carrying the fd to socket-event map and the optional timer, installed
// as the engine's socket/timer callbacks so several multi handles can
// share one reactor without touching the single-request state.

package bridge

import (
	"time"

	"go.uber.org/zap"

	"github.com/momentics/hioload-async/api"
)

// Ctx is the bridge state owned by one external multi handle. It is
// itself a reactor event: subscribers registered through a waker are
// notified when the engine's poll list drains to empty.
type Ctx struct {
	d     *Driver
	multi api.TransferMulti

	pollList map[int]api.PollEvent
	timer    api.TimerEvent

	cbs    []api.EventCallback
	closed bool
}

var _ api.Event = (*Ctx)(nil)

// Start is a no-op; the engine's callbacks populate the context.
func (c *Ctx) Start() error { return nil }

// Stop disposes every socket event and the timer. Entries are detached
// from the map before dispose so reentrant engine callbacks observe a
// consistent list.
func (c *Ctx) Stop() {
	if c.closed {
		return
	}
	c.closed = true

	for fd, se := range c.pollList {
		delete(c.pollList, fd)
		se.Dispose()
	}
	if c.timer != nil {
		c.timer.Dispose()
		c.timer = nil
	}
}

func (c *Ctx) Dispose() {
	if !c.closed {
		c.Stop()
	}
}

func (c *Ctx) AddCallback(cb api.EventCallback) {
	c.cbs = append(c.cbs, cb)
}

func (c *Ctx) DelCallback(cb api.EventCallback) {
	for i, cur := range c.cbs {
		if cur == cb {
			c.cbs = append(c.cbs[:i], c.cbs[i+1:]...)
			return
		}
	}
}

// notify wakes subscribers, usually a coroutine parked in MultiSelect.
func (c *Ctx) notify(result any, failure error) {
	cbs := append([]api.EventCallback(nil), c.cbs...)
	for _, cb := range cbs {
		cb.Invoke(c, result, failure)
	}
}

// socketFunc is the engine's per-context socket callback.
func (c *Ctx) socketFunc(t api.Transfer, fd int, what api.SocketAction, socketData any) int {
	if what == api.PollRemove {
		se, ok := c.pollList[fd]
		if !ok {
			return 0
		}

		// Detach before dispose: dispose may reenter the engine.
		delete(c.pollList, fd)
		se.Dispose()

		if len(c.pollList) == 0 {
			c.notify(nil, nil)
		}
		return 0
	}

	if se, ok := c.pollList[fd]; ok {
		se.SetRequested(se.Requested() | actionBits(what))
		return 0
	}

	se, err := c.d.rc.NewSocketEvent(fd, actionBits(what))
	if err != nil {
		c.d.log.Warn("bridge: ctx socket event construction failed",
			zap.Int("fd", fd), zap.Error(err))
		return int(api.MultiBadSocket)
	}

	se.AddCallback(&ctxPollDispatch{ctx: c})
	c.pollList[fd] = se

	if serr := se.Start(); serr != nil {
		delete(c.pollList, fd)
		se.Dispose()
		return int(api.MultiBadSocket)
	}
	return 0
}

// timerFunc is the engine's per-context timer callback. A negative
// timeout only cancels.
func (c *Ctx) timerFunc(timeoutMS int64) int {
	if c.timer != nil {
		c.timer.Dispose()
		c.timer = nil
	}
	if timeoutMS < 0 {
		return 0
	}

	tev, err := c.d.rc.NewTimerEvent(time.Duration(timeoutMS)*time.Millisecond, false)
	if err != nil {
		return int(api.MultiInternalError)
	}

	tev.AddCallback(&ctxTimerDispatch{ctx: c})
	if serr := tev.Start(); serr != nil {
		tev.Dispose()
		return int(api.MultiInternalError)
	}

	c.timer = tev
	return 0
}

// ensureCtx lazily creates the bridge context for m and installs its
// callbacks on the engine.
func (d *Driver) ensureCtx(m api.TransferMulti) *Ctx {
	if c, ok := d.ctxs[m]; ok {
		return c
	}

	c := &Ctx{
		d:        d,
		multi:    m,
		pollList: make(map[int]api.PollEvent),
	}
	m.SetSocketFunc(c.socketFunc)
	m.SetTimerFunc(c.timerFunc)
	d.ctxs[m] = c
	return c
}

// DestroyCtx tears down the bridge context of m, disposing its socket
// events and timer and deregistering the engine callbacks. Call it when
// the multi handle is destroyed.
func (d *Driver) DestroyCtx(m api.TransferMulti) {
	c, ok := d.ctxs[m]
	if !ok {
		return
	}
	delete(d.ctxs, m)

	c.Dispose()

	m.SetSocketFunc(nil)
	m.SetTimerFunc(nil)
}

// MultiPerform kicks the engine and reports the number of descriptors the
// bridge is currently polling for m.
func (d *Driver) MultiPerform(m api.TransferMulti) (running int, status api.MultiStatus) {
	c := d.ensureCtx(m)

	m.SocketAction(api.SocketTimeout, 0)

	return len(c.pollList), api.MultiOK
}

// MultiSelect suspends the calling coroutine until the engine's poll list
// drains to empty, the coroutine is cancelled, or timeoutMS elapses; a
// timeoutMS of zero or less installs no timer. Socket readiness and engine
// timers are fed to the engine without waking the caller. Timeout is the expected
// outcome here and reports success with the current poll-list size; any
// other failure reports MultiInternalError.
func (d *Driver) MultiSelect(m api.TransferMulti, timeoutMS int) (numfds int, status api.MultiStatus) {
	co := d.rt.Current()
	if co == nil {
		return 0, api.MultiInternalError
	}

	c := d.ensureCtx(m)

	var err error
	if timeoutMS > 0 {
		_, err = co.NewWakerWithTimeout(time.Duration(timeoutMS) * time.Millisecond)
	} else {
		_, err = co.NewWaker()
	}
	if err != nil {
		return len(c.pollList), api.MultiInternalError
	}

	// The context is linked unowned: the waker must not dispose state
	// that outlives this call.
	if rerr := co.ResumeWhen(c, false, &resumeCallback{co: co}); rerr != nil {
		co.DestroyWaker()
		return len(c.pollList), api.MultiInternalError
	}

	m.SocketAction(api.SocketTimeout, 0)

	serr := co.Suspend()
	co.DestroyWaker()

	numfds = len(c.pollList)

	if serr != nil {
		if api.IsTimeout(serr) {
			return numfds, api.MultiOK
		}
		return numfds, api.MultiInternalError
	}
	return numfds, api.MultiOK
}
