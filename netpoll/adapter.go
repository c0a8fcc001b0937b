// File: netpoll/adapter.go
// Package netpoll
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Adapter construction and shared state. One Adapter serves one reactor
// thread; adapter calls must originate from a coroutine attached to that
// reactor.

package netpoll

import (
	"go.uber.org/zap"

	"github.com/momentics/hioload-async/api"
)

// Adapter translates legacy blocking calls into reactor suspensions.
type Adapter struct {
	rt  api.Runtime
	rc  api.Reactor
	log *zap.Logger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger replaces the no-op default logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Adapter) { a.log = l }
}

// New creates an Adapter bound to the given runtime and reactor.
func New(rt api.Runtime, rc api.Reactor, opts ...Option) *Adapter {
	a := &Adapter{
		rt:  rt,
		rc:  rc,
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}
