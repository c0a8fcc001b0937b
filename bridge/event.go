// File: bridge/event.go
// Package bridge
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// transferEvent wraps one easy handle as a reactor event for the
// single-request path. Starting the event registers the handle with the
// shared multi handle and kicks the engine; stopping deregisters both.

package bridge

import (
	"github.com/momentics/hioload-async/api"
)

type transferEvent struct {
	d        *Driver
	transfer api.Transfer
	cbs      []api.EventCallback
	closed   bool
}

var _ api.Event = (*transferEvent)(nil)

func (e *transferEvent) Start() error {
	if err := e.d.Setup(); err != nil {
		return err
	}

	e.d.events[e.transfer] = e

	if err := e.d.multi.AddTransfer(e.transfer); err != nil {
		e.Stop()
		return err
	}
	if _, err := e.d.multi.SocketAction(api.SocketTimeout, 0); err != nil {
		e.Stop()
		return err
	}
	return nil
}

// Stop is idempotent: the closed flag is set before any deregistration so
// reentrant calls from the engine see the event as already gone.
func (e *transferEvent) Stop() {
	if e.closed {
		return
	}
	e.closed = true

	delete(e.d.events, e.transfer)

	if e.d.multi != nil && e.transfer != nil {
		e.d.multi.RemoveTransfer(e.transfer)
		e.transfer = nil
	}
}

func (e *transferEvent) Dispose() {
	if !e.closed {
		e.Stop()
	}
}

func (e *transferEvent) AddCallback(cb api.EventCallback) {
	e.cbs = append(e.cbs, cb)
}

func (e *transferEvent) DelCallback(cb api.EventCallback) {
	for i, c := range e.cbs {
		if c == cb {
			e.cbs = append(e.cbs[:i], e.cbs[i+1:]...)
			return
		}
	}
}

// notify invokes a snapshot of the callback list so a callback may
// detach itself mid-dispatch.
func (e *transferEvent) notify(result any, failure error) {
	cbs := append([]api.EventCallback(nil), e.cbs...)
	for _, cb := range cbs {
		cb.Invoke(e, result, failure)
	}
}
