// File: internal/session/context_store.go
// Package session
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Thread-safe per-coroutine context store. Adapter code touches the store
// only from the owning coroutine or the reactor thread, but finish hooks
// may observe it from teardown paths, so access stays guarded.

package session

import (
	"sync"

	"github.com/momentics/hioload-async/api"
)

// contextStore is a thread-safe implementation of api.Context.
type contextStore struct {
	mu    sync.RWMutex
	store map[string]any
}

// Ensure compliance with api.Context interface.
var _ api.Context = (*contextStore)(nil)

// NewContextStore creates an empty context store.
func NewContextStore() api.Context {
	return &contextStore{
		store: make(map[string]any),
	}
}

// Set assigns a value for a key.
func (c *contextStore) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = value
}

// Get fetches a value, returning (value, exists).
func (c *contextStore) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.store[key]
	return v, ok
}

// Delete removes a key.
func (c *contextStore) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
}

// Keys returns all active keys.
func (c *contextStore) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.store))
	for k := range c.store {
		keys = append(keys, k)
	}
	return keys
}
