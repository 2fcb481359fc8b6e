package storage

import "sync"

// Memoized is a function whose result is computed at most once per key.
// Each key is backed by its own Lazy cell, so recursion through the same key
// is detected the same way.
type Memoized[K comparable, V any] struct {
	m       Manager
	compute func(K) V
	cells   sync.Map // K -> *Lazy[V]
}

// NewMemoized returns a memoized form of compute.
func NewMemoized[K comparable, V any](m Manager, compute func(K) V) *Memoized[K, V] {
	return &Memoized[K, V]{m: m, compute: compute}
}

// Get returns compute(key), computing it on first request.
func (f *Memoized[K, V]) Get(key K) V {
	if cell, ok := f.cells.Load(key); ok {
		return cell.(*Lazy[V]).Get()
	}
	fresh := NewLazy(f.m, func() V { return f.compute(key) })
	cell, _ := f.cells.LoadOrStore(key, fresh)
	return cell.(*Lazy[V]).Get()
}

// IsComputed reports whether the value for key has been published.
func (f *Memoized[K, V]) IsComputed(key K) bool {
	cell, ok := f.cells.Load(key)
	return ok && cell.(*Lazy[V]).IsComputed()
}
