// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package fake provides an in-memory cooperative runtime, reactor, and
// transfer engine implementing the api contracts. One Loop is both the
// api.Runtime and the api.Reactor of a reactor thread: coroutines run one
// at a time, readiness is injected with FireFD, timers use real time, and
// DNS resolves against a test-populated host table. The package backs the
// module's tests and serves as the reference for embedding real runtimes.
package fake
