// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package bridge integrates a socket/timer-callback-driven transfer
// engine with the coroutine reactor. The single-request path drives one
// shared multi handle per reactor thread; the multi-handle path attaches
// a bridge context to each external multi handle so several of them can
// share the reactor independently.
package bridge
