// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package session implements the per-coroutine key/value context store.
// Each coroutine owns exactly one store; module-scoped values such as the
// DNS hostent buffer live here and are released by coroutine-end hooks.
package session
