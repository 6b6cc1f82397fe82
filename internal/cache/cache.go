// Package cache keeps computed reports between writes.
package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
)

// Cache defines a generic cache interface
type Cache[T any] interface {
	// Get retrieves a value from the cache
	Get(key string) (T, bool)

	// Set stores a value in the cache
	Set(key string, data T)

	// Delete removes a key from the cache
	Delete(key string)

	// Size returns the number of keys currently tracked
	Size() int
}

// Ristretto is a typed Cache on top of ristretto. Keys are tracked on the
// side so that Size and Clear do not depend on ristretto's async admission.
type Ristretto[T any] struct {
	c   *ristretto.Cache
	ttl time.Duration

	mu   sync.RWMutex
	keys map[string]struct{}
}

// NewRistretto creates a cache holding up to maxEntries values, each living
// at most ttl (0 means no expiry).
func NewRistretto[T any](maxEntries int64, ttl time.Duration) (*Ristretto[T], error) {
	if maxEntries < 1 {
		return nil, fmt.Errorf("invalid cache size %d: must be at least 1", maxEntries)
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxEntries * 10, // number of keys to track frequency of
		MaxCost:     maxEntries,
		BufferItems: 64, // number of keys per Get buffer

		// Each entry costs 1 so MaxCost is an entry count.
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create ristretto cache: %w", err)
	}
	return &Ristretto[T]{c: c, ttl: ttl, keys: make(map[string]struct{})}, nil
}

func (r *Ristretto[T]) Get(key string) (T, bool) {
	var zero T
	v, ok := r.c.Get(key)
	if !ok {
		r.untrack(key)
		return zero, false
	}
	data, ok := v.(T)
	if !ok {
		return zero, false
	}
	return data, true
}

func (r *Ristretto[T]) Set(key string, data T) {
	if r.c.SetWithTTL(key, data, 1, r.ttl) {
		r.mu.Lock()
		r.keys[key] = struct{}{}
		r.mu.Unlock()
	}
	// Make the value visible to the next Get.
	r.c.Wait()
}

func (r *Ristretto[T]) Delete(key string) {
	r.c.Del(key)
	r.untrack(key)
}

// DeleteFunc removes every tracked key for which match returns true.
func (r *Ristretto[T]) DeleteFunc(match func(key string) bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for k := range r.keys {
		if match(k) {
			r.c.Del(k)
			delete(r.keys, k)
			n++
		}
	}
	return n
}

// Clear drops every entry.
func (r *Ristretto[T]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.c.Clear()
	r.keys = make(map[string]struct{})
}

func (r *Ristretto[T]) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.keys)
}

// Close stops ristretto's background goroutines.
func (r *Ristretto[T]) Close() {
	r.c.Close()
}

func (r *Ristretto[T]) untrack(key string) {
	r.mu.Lock()
	delete(r.keys, key)
	r.mu.Unlock()
}

var _ Cache[int] = (*Ristretto[int])(nil)
