// File: api/events.go
// Package api defines core event types for hioload-async.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// EventBits describes readiness conditions a reactor event waits for or
// reports. The legacy poll(2) bit vocabulary maps onto this set in the
// netpoll package.
type EventBits uint32

const (
	// EventReadable indicates data can be read without blocking.
	EventReadable EventBits = 1 << iota
	// EventWritable indicates data can be written without blocking.
	EventWritable
	// EventDisconnect indicates the peer closed its end.
	EventDisconnect
	// EventPrioritized indicates out-of-band data is pending.
	EventPrioritized
)

// EventCallback is invoked by the reactor when an event fires. A callback
// record binds the reactor notification to the awaiting coroutine and to
// any caller-visible result buffers.
//
// When failure is non-nil the record must deliver it to the coroutine via
// ResumeWithError and touch nothing else. Otherwise it updates its result
// buffers and resumes the coroutine; resumption is idempotent per
// coroutine, so only the first call schedules it and later callbacks only
// contribute to the accumulator.
type EventCallback interface {
	Invoke(ev Event, result any, failure error)
}

// Event is a pending asynchronous condition owned by the reactor.
// Dispose stops the event first when it is still live.
type Event interface {
	Start() error
	Stop()
	Dispose()
	AddCallback(cb EventCallback)
	DelCallback(cb EventCallback)
}

// PollEvent is a readiness event on a socket or file descriptor.
type PollEvent interface {
	Event

	// FD returns the monitored descriptor.
	FD() int
	// Requested returns the readiness bits the event waits for.
	Requested() EventBits
	// SetRequested widens or replaces the waited-for bits in place.
	SetRequested(bits EventBits)
	// Triggered returns the bits that actually fired.
	Triggered() EventBits
}

// TimerEvent fires once (or periodically) after its interval elapses.
type TimerEvent interface {
	Event
}
