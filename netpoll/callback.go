// File: netpoll/callback.go
// Package netpoll
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Per-call callback records. Each record binds one reactor event to the
// awaiting coroutine plus the caller-visible buffer it must update.
// Exactly one record is attached per event per adapter call.

package netpoll

import (
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-async/api"
)

// bumpAccumulator counts one more ready descriptor in the waker result.
// Multiple descriptors may trigger before the coroutine runs again, so
// the count lives on the waker rather than on any single record.
func bumpAccumulator(w api.Waker) {
	if n, ok := w.Result().(int); ok {
		w.SetResult(n + 1)
	} else {
		w.SetResult(1)
	}
}

// pollCallback updates one pollfd entry when its event fires.
type pollCallback struct {
	co  api.Coroutine
	ufd *unix.PollFd
}

func (c *pollCallback) Invoke(ev api.Event, result any, failure error) {
	if failure != nil {
		c.co.ResumeWithError(failure)
		return
	}

	if w := c.co.Waker(); w != nil {
		pe := ev.(api.PollEvent)
		// Count the entry only on its first readiness in this call, so a
		// descriptor that fires again before the resume is not counted twice.
		wasReady := c.ufd.Revents != 0
		c.ufd.Revents = eventsToPoll(pe.Triggered())
		if c.ufd.Revents != 0 && !wasReady {
			bumpAccumulator(w)
		}
	}

	c.co.Resume()
}

// selectCallback marks one descriptor in the scratch fd-sets when its
// event fires.
type selectCallback struct {
	co   api.Coroutine
	fd   int
	rfds *unix.FdSet
	wfds *unix.FdSet
	efds *unix.FdSet
}

func (c *selectCallback) Invoke(ev api.Event, result any, failure error) {
	if failure != nil {
		c.co.ResumeWithError(failure)
		return
	}

	if w := c.co.Waker(); w != nil {
		pe := ev.(api.PollEvent)
		triggered := pe.Triggered()

		if triggered != 0 {
			bumpAccumulator(w)

			if triggered&api.EventReadable != 0 && c.rfds != nil {
				c.rfds.Set(c.fd)
			}
			if triggered&api.EventWritable != 0 && c.wfds != nil {
				c.wfds.Set(c.fd)
			}
			if triggered&(api.EventDisconnect|api.EventPrioritized) != 0 && c.efds != nil {
				c.efds.Set(c.fd)
			}
		}
	}

	c.co.Resume()
}

// addrInfoCallback publishes the resolved chain and flags success on the
// waker.
type addrInfoCallback struct {
	co  api.Coroutine
	res **api.AddrInfo
}

func (c *addrInfoCallback) Invoke(ev api.Event, result any, failure error) {
	if failure != nil {
		c.co.ResumeWithError(failure)
		return
	}

	if w := c.co.Waker(); w != nil {
		if c.res != nil {
			*c.res = ev.(api.AddrInfoEvent).Result()
		}
		w.SetResult(true)
	}

	c.co.Resume()
}

// nameInfoCallback publishes the resolved hostname and flags success on
// the waker.
type nameInfoCallback struct {
	co       api.Coroutine
	hostname *string
}

func (c *nameInfoCallback) Invoke(ev api.Event, result any, failure error) {
	if failure != nil {
		c.co.ResumeWithError(failure)
		return
	}

	if w := c.co.Waker(); w != nil {
		if c.hostname != nil {
			*c.hostname = ev.(api.NameInfoEvent).Hostname()
		}
		w.SetResult(true)
	}

	c.co.Resume()
}
