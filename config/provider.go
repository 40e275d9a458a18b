package config

import "sync/atomic"

// Provider yields the current configuration snapshot. Core components call it
// once per operation; callers must not mutate the returned Config.
type Provider func() *Config

// Static wraps a fixed Config as a Provider. Intended for tests and one-shot
// tools that never reload.
func Static(c *Config) Provider {
	return func() *Config { return c }
}

// Holder owns a live configuration that can be replaced atomically while
// readers keep working against whatever snapshot they observed.
type Holder struct {
	cur atomic.Pointer[Config]
}

func NewHolder(c *Config) *Holder {
	h := &Holder{}
	h.cur.Store(c)
	return h
}

// Snapshot returns the current configuration.
func (h *Holder) Snapshot() *Config { return h.cur.Load() }

// Replace swaps in a new configuration for subsequent operations.
func (h *Holder) Replace(c *Config) { h.cur.Store(c) }

// Provider returns a Provider backed by this holder.
func (h *Holder) Provider() Provider { return h.Snapshot }
