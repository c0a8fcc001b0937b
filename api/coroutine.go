// File: api/coroutine.go
// Package api
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Coroutine runtime surface consumed by the adapters. The runtime is
// single-threaded cooperative: one reactor per thread, callbacks run on
// the reactor thread, and an adapter call suspends exactly once after all
// of its events are registered.

package api

import "time"

// Runtime exposes the cooperative scheduler the adapters run under.
type Runtime interface {
	// Current returns the running coroutine, or nil outside coroutine
	// context.
	Current() Coroutine

	// Spawn enqueues fn as a new coroutine and returns its handle.
	Spawn(fn func(co Coroutine)) Coroutine
}

// Waker is the per-suspension state of a coroutine. It accumulates
// partial results while the coroutine is parked and owns the event
// registrations made through ResumeWhen until the waker is destroyed.
type Waker interface {
	// Result returns the accumulator value, nil before the first store.
	Result() any
	// SetResult replaces the accumulator value.
	SetResult(v any)
}

// Coroutine is a cooperatively scheduled execution context with a single
// suspension primitive.
type Coroutine interface {
	// NewWaker installs a fresh waker with no timeout.
	NewWaker() (Waker, error)

	// NewWakerWithTimeout installs a fresh waker whose timer resumes the
	// coroutine with a TimeoutError when it elapses. A zero timeout fires
	// on the next reactor tick.
	NewWakerWithTimeout(timeout time.Duration) (Waker, error)

	// Waker returns the live waker, or nil when none is installed.
	Waker() Waker

	// DestroyWaker tears down the waker: every event still linked through
	// it is detached and, when owned, disposed. No-op without a waker.
	DestroyWaker()

	// ResumeWhen links ev to the current waker and starts it. When own is
	// true the waker takes dispose responsibility for ev. cb fires when
	// the event triggers.
	ResumeWhen(ev Event, own bool, cb EventCallback) error

	// Suspend parks the coroutine until an event callback or the waker
	// timeout resumes it. It returns the pending failure, consuming it;
	// a second read observes nil.
	Suspend() error

	// Resume schedules the coroutine to continue after the current
	// callback completes. Idempotent while a resume is already pending.
	Resume()

	// ResumeWithError resumes the coroutine with a pending failure
	// attached. The first failure wins.
	ResumeWithError(err error)

	// Cancel resumes the coroutine with a CanceledError.
	Cancel()

	// Context returns the per-coroutine key/value store.
	Context() Context

	// OnFinish registers fn to run when the coroutine terminates.
	OnFinish(fn func())
}

// Context provides per-coroutine storage for module-scoped values, freed
// with the coroutine.
type Context interface {
	// Set assigns a value for a key.
	Set(key string, value any)
	// Get fetches a value, returning (value, exists).
	Get(key string) (any, bool)
	// Delete removes a value/key.
	Delete(key string)
	// Keys returns all present keys.
	Keys() []string
}
