// File: bridge/callback.go
// Package bridge
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Callback records wiring reactor notifications into the transfer
// engine's socket_action protocol.

package bridge

import (
	"github.com/momentics/hioload-async/api"
)

// resumeCallback is the waker-resolve record: it stores the notified
// result on the waker and resumes the coroutine.
type resumeCallback struct {
	co api.Coroutine
}

func (c *resumeCallback) Invoke(ev api.Event, result any, failure error) {
	if failure != nil {
		c.co.ResumeWithError(failure)
		return
	}
	if w := c.co.Waker(); w != nil && result != nil {
		w.SetResult(result)
	}
	c.co.Resume()
}

// actionBits maps an engine interest announcement to reactor bits.
func actionBits(what api.SocketAction) api.EventBits {
	var bits api.EventBits
	switch what {
	case api.PollIn:
		bits = api.EventReadable
	case api.PollOut:
		bits = api.EventWritable
	case api.PollInOut:
		bits = api.EventReadable | api.EventWritable
	}
	return bits
}

// readinessMask maps triggered reactor bits (plus a delivery failure)
// to the engine's readiness bitmask.
func readinessMask(bits api.EventBits, failure error) int {
	mask := 0
	if bits&api.EventReadable != 0 {
		mask |= api.SelectIn
	}
	if bits&api.EventWritable != 0 {
		mask |= api.SelectOut
	}
	if failure != nil {
		mask |= api.SelectErr
	}
	return mask
}

// pollDispatch feeds socket readiness into the shared single-request
// multi handle and drains completions.
type pollDispatch struct {
	d *Driver
}

func (c *pollDispatch) Invoke(ev api.Event, result any, failure error) {
	pe := ev.(api.PollEvent)
	c.d.multi.SocketAction(pe.FD(), readinessMask(pe.Triggered(), failure))
	c.d.drain()
}

// timerDispatch kicks the shared multi handle on timer expiry and drains
// completions.
type timerDispatch struct {
	d *Driver
}

func (c *timerDispatch) Invoke(ev api.Event, result any, failure error) {
	c.d.multi.SocketAction(api.SocketTimeout, 0)
	c.d.drain()
}

// ctxPollDispatch feeds socket readiness into a per-multi bridge context.
// Draining is left to the multi handle's owner.
type ctxPollDispatch struct {
	ctx *Ctx
}

func (c *ctxPollDispatch) Invoke(ev api.Event, result any, failure error) {
	pe := ev.(api.PollEvent)
	c.ctx.multi.SocketAction(pe.FD(), readinessMask(pe.Triggered(), failure))
}

// ctxTimerDispatch kicks a per-multi bridge context on timer expiry.
type ctxTimerDispatch struct {
	ctx *Ctx
}

func (c *ctxTimerDispatch) Invoke(ev api.Event, result any, failure error) {
	c.ctx.multi.SocketAction(api.SocketTimeout, 0)
}
