// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache provides an injectable response cache for retrieval
// collaborators, keyed by a deterministic request fingerprint. The caller
// owns the cache instance; nothing here is process-wide state.
package cache

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
)

// Cache stores raw response payloads by fingerprint. Implementations must
// be safe for concurrent readers; the pipeline treats the cache as
// read-mostly shared state across invocations.
type Cache interface {
	// Get returns the payload for key and whether it was present.
	Get(key string) ([]byte, bool, error)

	// Put stores the payload under key, replacing any previous value.
	Put(key string, value []byte) error
}

// Fingerprint derives a deterministic cache key from the request parts.
// Parts are length-prefixed before hashing so ("ab","c") and ("a","bc")
// cannot collide.
func Fingerprint(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		fmt.Fprintf(h, "%d:", len(p))
		h.Write([]byte(p))
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Memory is an in-process Cache used in tests and when no cache path is
// configured but callers still want request coalescing within one run.
type Memory struct {
	mu sync.RWMutex
	m  map[string][]byte
}

// NewMemory returns an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{m: make(map[string][]byte)}
}

// Get returns the stored payload, if any.
func (c *Memory) Get(key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.m[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, true, nil
}

// Put stores a copy of the payload.
func (c *Memory) Put(key string, value []byte) error {
	cp := make([]byte, len(value))
	copy(cp, value)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = cp
	return nil
}

// Nop is a Cache that stores nothing. Useful when caching is disabled.
type Nop struct{}

// Get always misses.
func (Nop) Get(string) ([]byte, bool, error) { return nil, false, nil }

// Put discards the payload.
func (Nop) Put(string, []byte) error { return nil }

// keyCheck rejects obviously malformed keys early so storage backends can
// rely on non-empty keys.
func keyCheck(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("empty cache key")
	}
	return nil
}
