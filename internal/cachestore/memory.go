// Package cachestore provides key-value backends for the engine's result
// cache: an in-process TTL map for single-instance deployments and a
// Postgres-backed store for sharing results across replicas.
package cachestore

import (
	"context"
	"sync"
	"time"
)

// memoryEntry is one stored value with its expiry deadline.
type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is an in-process TTL key-value store. A background janitor sweeps
// expired entries so long-idle keys do not pin memory; reads also check
// expiry so a stale entry is never returned even before the sweep.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry

	stop     chan struct{}
	stopOnce sync.Once
}

// NewMemory creates a memory store and starts its janitor. sweepInterval
// controls how often expired entries are removed; zero disables the janitor
// (expired entries are then only dropped on read).
func NewMemory(sweepInterval time.Duration) *Memory {
	m := &Memory{
		entries: make(map[string]memoryEntry),
		stop:    make(chan struct{}),
	}
	if sweepInterval > 0 {
		go m.janitor(sweepInterval)
	}
	return m
}

// Get returns the value for key if present and unexpired.
func (m *Memory) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || time.Now().After(e.expiresAt) {
		return nil, false, nil
	}
	return e.value, true, nil
}

// SetWithExpiry stores value under key for the given TTL.
func (m *Memory) SetWithExpiry(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	m.entries[key] = memoryEntry{value: value, expiresAt: time.Now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

// Len returns the number of entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Close stops the janitor. Safe to call more than once.
func (m *Memory) Close() {
	m.stopOnce.Do(func() { close(m.stop) })
}

func (m *Memory) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.sweep(time.Now())
		}
	}
}

func (m *Memory) sweep(now time.Time) {
	m.mu.Lock()
	for key, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, key)
		}
	}
	m.mu.Unlock()
}
