// File: bridge/driver.go
// Package bridge
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Single-request driver. One Driver serves one reactor thread and owns
// the shared multi handle, the easy-handle to event map, and the global
// timer of that thread — the engine exposes only per-multi user data, so
// this state cannot live on the coroutine.

package bridge

import (
	"time"

	"go.uber.org/zap"

	"github.com/momentics/hioload-async/api"
)

// Driver integrates transfer engines with one reactor thread.
type Driver struct {
	rt  api.Runtime
	rc  api.Reactor
	log *zap.Logger

	newMulti func() (api.TransferMulti, error)

	multi  api.TransferMulti
	events map[api.Transfer]*transferEvent
	timer  api.TimerEvent

	ctxs map[api.TransferMulti]*Ctx
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger replaces the no-op default logger.
func WithLogger(l *zap.Logger) Option {
	return func(d *Driver) { d.log = l }
}

// WithMultiFactory supplies the constructor for the shared single-request
// multi handle. Required before Perform is used.
func WithMultiFactory(fn func() (api.TransferMulti, error)) Option {
	return func(d *Driver) { d.newMulti = fn }
}

// NewDriver creates a Driver bound to the given runtime and reactor.
func NewDriver(rt api.Runtime, rc api.Reactor, opts ...Option) *Driver {
	d := &Driver{
		rt:     rt,
		rc:     rc,
		log:    zap.NewNop(),
		events: make(map[api.Transfer]*transferEvent),
		ctxs:   make(map[api.TransferMulti]*Ctx),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Setup lazily creates the shared multi handle and installs the global
// socket and timer callbacks. Idempotent.
func (d *Driver) Setup() error {
	if d.multi != nil {
		return nil
	}
	if d.newMulti == nil {
		return api.NewError(api.ErrCodeInvalidArgument, "bridge: no multi factory configured")
	}

	m, err := d.newMulti()
	if err != nil {
		return api.NewError(api.ErrCodeResourceExhausted, "bridge: multi handle init failed").
			WithContext("cause", err.Error())
	}

	d.multi = m
	m.SetSocketFunc(d.socketFunc)
	m.SetTimerFunc(d.timerFunc)
	return nil
}

// Shutdown disposes the thread's shared state: the global timer, the
// multi handle, and any events still registered.
func (d *Driver) Shutdown() {
	if d.timer != nil {
		d.timer.Dispose()
		d.timer = nil
	}
	for _, ev := range d.events {
		ev.Dispose()
	}
	d.events = make(map[api.Transfer]*transferEvent)
	if d.multi != nil {
		d.multi.Close()
		d.multi = nil
	}
}

// Perform runs one transfer to completion, suspending the calling
// coroutine while the engine works. Returns the engine's status code;
// TransferFailedInit outside coroutine context or when setup fails,
// TransferAbortedByCallback when the suspension surfaces a failure.
func (d *Driver) Perform(t api.Transfer) api.TransferStatus {
	if err := d.Setup(); err != nil {
		return api.TransferFailedInit
	}

	co := d.rt.Current()
	if co == nil {
		return api.TransferFailedInit
	}

	if _, err := co.NewWaker(); err != nil {
		return api.TransferFailedInit
	}

	ev := &transferEvent{d: d, transfer: t}
	if err := co.ResumeWhen(ev, true, &resumeCallback{co: co}); err != nil {
		co.DestroyWaker()
		return api.TransferFailedInit
	}

	// Starting the event inside ResumeWhen already kicked the engine, which
	// announced its descriptors or timer through the global callbacks.
	// Those events live in the engine's slots and d.timer, not on the
	// waker, and drive the transfer while the coroutine sleeps.
	if err := co.Suspend(); err != nil {
		co.DestroyWaker()
		return api.TransferAbortedByCallback
	}

	status := api.TransferOK
	if w := co.Waker(); w != nil {
		if v, ok := w.Result().(api.TransferStatus); ok {
			status = v
		}
	}
	co.DestroyWaker()
	return status
}

// drain pops every completion message from the engine queue, notifies the
// awaiting coroutine of each finished transfer, and stops its event.
// Messages without a matching event belong to already-stopped transfers
// and are skipped.
func (d *Driver) drain() {
	for {
		msg, _ := d.multi.InfoRead()
		if msg == nil {
			return
		}

		d.multi.RemoveTransfer(msg.Transfer)

		ev, ok := d.events[msg.Transfer]
		if !ok {
			continue
		}

		ev.notify(msg.Result, nil)
		ev.Stop()
	}
}

// socketFunc is the engine's global socket callback for the
// single-request path. The engine may call it reentrantly from within
// SocketAction.
func (d *Driver) socketFunc(t api.Transfer, fd int, what api.SocketAction, socketData any) int {
	if _, ok := d.events[t]; !ok {
		return 0
	}

	if what == api.PollRemove {
		if se, ok := socketData.(api.PollEvent); ok {
			se.Dispose()
		}
		return 0
	}

	if socketData == nil {
		se, err := d.rc.NewSocketEvent(fd, actionBits(what))
		if err != nil {
			d.log.Warn("bridge: socket event construction failed",
				zap.Int("fd", fd), zap.Error(err))
			return int(api.MultiBadSocket)
		}

		se.AddCallback(&pollDispatch{d: d})
		d.multi.Assign(fd, se)

		if serr := se.Start(); serr != nil {
			se.Dispose()
			return int(api.MultiBadSocket)
		}
		return 0
	}

	if se, ok := socketData.(api.PollEvent); ok {
		se.SetRequested(se.Requested() | actionBits(what))
	}
	return 0
}

// timerFunc is the engine's global timer callback for the single-request
// path. A negative timeout only cancels the pending timer.
func (d *Driver) timerFunc(timeoutMS int64) int {
	if d.timer != nil {
		d.timer.Dispose()
		d.timer = nil
	}
	if timeoutMS < 0 {
		return 0
	}

	tev, err := d.rc.NewTimerEvent(time.Duration(timeoutMS)*time.Millisecond, false)
	if err != nil {
		return int(api.MultiInternalError)
	}

	tev.AddCallback(&timerDispatch{d: d})
	if serr := tev.Start(); serr != nil {
		tev.Dispose()
		return int(api.MultiInternalError)
	}

	d.timer = tev
	return 0
}
