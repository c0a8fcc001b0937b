// File: fake/engine.go
// Package fake
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Scripted transfer engine implementing api.TransferMulti. The engine is
// confined to the reactor thread (like the real thing): every method
// runs from coroutine code or loop callbacks, and SocketAction invokes
// the registered socket/timer callbacks reentrantly before returning.

package fake

import (
	"github.com/eapache/queue"

	"github.com/momentics/hioload-async/api"
)

// Transfer is a scripted easy handle. A socket transfer announces
// interest on its descriptor and completes after a fixed number of
// readiness kicks; a timer transfer requests an engine timer and
// completes on the next timeout kick.
type Transfer struct {
	id      uint64
	fd      int
	kicks   int
	timerMS int64
	result  api.TransferStatus
}

var transferID uint64

var _ api.Transfer = (*Transfer)(nil)

// NewTransfer creates a socket transfer on fd completing with result
// after kicks readiness notifications.
func NewTransfer(fd, kicks int, result api.TransferStatus) *Transfer {
	transferID++
	return &Transfer{id: transferID, fd: fd, kicks: kicks, timerMS: -1, result: result}
}

// NewTimerTransfer creates a transfer that asks the engine timer for
// timerMS and completes on the following timeout kick.
func NewTimerTransfer(timerMS int64, result api.TransferStatus) *Transfer {
	transferID++
	return &Transfer{id: transferID, fd: -1, timerMS: timerMS, result: result}
}

// ID returns the handle identifier.
func (t *Transfer) ID() uint64 { return t.id }

// FD returns the scripted descriptor, -1 for timer transfers.
func (t *Transfer) FD() int { return t.fd }

type transferState struct {
	t         *Transfer
	announced bool
	progress  int
	done      bool
}

// Engine is a scripted api.TransferMulti.
type Engine struct {
	socketFn api.SocketFunc
	timerFn  api.TimerFunc

	transfers map[api.Transfer]*transferState
	assigned  map[int]any
	msgs      *queue.Queue // of *api.TransferMsg
	closed    bool
}

var _ api.TransferMulti = (*Engine)(nil)

// NewEngine creates an empty engine.
func NewEngine() *Engine {
	return &Engine{
		transfers: make(map[api.Transfer]*transferState),
		assigned:  make(map[int]any),
		msgs:      queue.New(),
	}
}

func (e *Engine) AddTransfer(t api.Transfer) error {
	if e.closed {
		return api.ErrInvalidHandle
	}
	if _, ok := e.transfers[t]; ok {
		return api.NewError(api.ErrCodeInvalidArgument, "transfer already added")
	}
	ft, ok := t.(*Transfer)
	if !ok {
		return api.ErrInvalidHandle
	}
	e.transfers[t] = &transferState{t: ft}
	return nil
}

func (e *Engine) RemoveTransfer(t api.Transfer) error {
	delete(e.transfers, t)
	return nil
}

func (e *Engine) Assign(fd int, socketData any) error {
	if e.closed {
		return api.ErrInvalidHandle
	}
	e.assigned[fd] = socketData
	return nil
}

func (e *Engine) InfoRead() (*api.TransferMsg, int) {
	if e.msgs.Length() == 0 {
		return nil, 0
	}
	msg := e.msgs.Remove().(*api.TransferMsg)
	return msg, e.msgs.Length()
}

func (e *Engine) SetSocketFunc(fn api.SocketFunc) { e.socketFn = fn }
func (e *Engine) SetTimerFunc(fn api.TimerFunc)   { e.timerFn = fn }

func (e *Engine) Close() error {
	e.closed = true
	e.transfers = make(map[api.Transfer]*transferState)
	e.assigned = make(map[int]any)
	e.msgs = queue.New()
	return nil
}

// SocketAction drives the engine. A SocketTimeout kick announces pending
// transfers (socket interest or a timer request) and completes due timer
// transfers; a readiness kick advances the transfers on that descriptor.
func (e *Engine) SocketAction(fd int, readiness int) (int, error) {
	if e.closed {
		return 0, api.ErrInvalidHandle
	}

	if fd == api.SocketTimeout {
		for _, st := range e.states() {
			if st.done {
				continue
			}
			if !st.announced {
				st.announced = true
				if st.t.fd >= 0 {
					if e.socketFn != nil {
						e.socketFn(st.t, st.t.fd, api.PollInOut, e.assigned[st.t.fd])
					}
				} else if e.timerFn != nil {
					e.timerFn(st.t.timerMS)
				}
				continue
			}
			if st.t.fd < 0 {
				// Timer transfer: the timeout kick after announcement
				// completes it.
				e.complete(st)
			}
		}
		return e.running(), nil
	}

	for _, st := range e.states() {
		if st.done || !st.announced || st.t.fd != fd {
			continue
		}
		st.progress++
		if st.progress >= st.t.kicks {
			e.complete(st)
		}
	}
	return e.running(), nil
}

// states snapshots the transfer map so complete may mutate it during
// iteration.
func (e *Engine) states() []*transferState {
	out := make([]*transferState, 0, len(e.transfers))
	for _, st := range e.transfers {
		out = append(out, st)
	}
	return out
}

func (e *Engine) running() int {
	n := 0
	for _, st := range e.transfers {
		if !st.done {
			n++
		}
	}
	return n
}

func (e *Engine) complete(st *transferState) {
	st.done = true

	if st.t.fd >= 0 {
		if e.socketFn != nil {
			e.socketFn(st.t, st.t.fd, api.PollRemove, e.assigned[st.t.fd])
		}
		delete(e.assigned, st.t.fd)
	}

	e.msgs.Add(&api.TransferMsg{Transfer: st.t, Result: st.t.result})
}
