// Package storage provides compute-once values and memoized functions used
// to build self-referential descriptor graphs on demand.
//
// Example:
//
//	sm := storage.LockBased()
//	defaultType := storage.NewLazy(sm, func() *Type { return computeType() })
//
//	// Computed on first use, cached afterwards
//	t := defaultType.Get()
package storage

import (
	"sync"
	"sync/atomic"

	"github.com/broady/builtins/contract"
	"github.com/broady/builtins/internal/goid"
)

// Manager hands out the locks that guard lazy cells.
type Manager interface {
	// NewLock returns the lock for one new cell.
	NewLock() sync.Locker
}

type lockBased struct{}

func (lockBased) NewLock() sync.Locker { return new(sync.Mutex) }

// LockBased returns a Manager that guards every cell with its own mutex.
// Cells created by it are safe for concurrent use.
func LockBased() Manager { return lockBased{} }

type noLocks struct{}

type noLock struct{}

func (noLock) Lock()   {}
func (noLock) Unlock() {}

func (noLocks) NewLock() sync.Locker { return noLock{} }

// NoLocks returns a Manager whose cells do no locking. Use it only for
// graphs confined to a single goroutine.
func NoLocks() Manager { return noLocks{} }

// Lazy is a value computed at most once, on first read.
//
// The computation may read other lazy cells. Reading a cell from inside its
// own computation on the same goroutine is a contract violation and panics
// with contract.CodeRecursiveEvaluation. Readers on other goroutines block
// until the value is published.
//
// Recursion is tracked per goroutine only. A computation that hands the read
// of its own cell to another goroutine and waits for it deadlocks, as do two
// goroutines computing cells that read each other.
//
// Get panics with contract.CodeUnsupportedRuntime if the calling goroutine
// cannot be identified.
type Lazy[T any] struct {
	lock    sync.Locker
	done    atomic.Bool
	owner   atomic.Int64 // goroutine currently computing, 0 if none
	value   T
	compute func() T
	label   func() string
}

// NewLazy returns a cell that computes its value with compute.
func NewLazy[T any](m Manager, compute func() T) *Lazy[T] {
	return &Lazy[T]{
		lock:    m.NewLock(),
		compute: compute,
	}
}

// WithLabel sets the description used in recursion diagnostics.
// It must be called before the cell is shared.
func (l *Lazy[T]) WithLabel(label func() string) *Lazy[T] {
	l.label = label
	return l
}

// Get returns the value, computing it if needed.
func (l *Lazy[T]) Get() T {
	if l.done.Load() {
		return l.value
	}
	return l.slowGet()
}

// currentGoroutine is replaced in tests.
var currentGoroutine = goid.Current

func (l *Lazy[T]) slowGet() T {
	self := currentGoroutine()
	if self == 0 {
		contract.Fail(contract.CodeUnsupportedRuntime, "cannot identify the goroutine computing %s", l.describe())
	}
	if l.owner.Load() == self {
		contract.Fail(contract.CodeRecursiveEvaluation, "recursion detected while computing %s", l.describe())
	}

	l.lock.Lock()
	defer l.lock.Unlock()
	if l.done.Load() {
		return l.value
	}

	l.owner.Store(self)
	defer l.owner.Store(0)

	v := l.compute()
	l.value = v
	l.compute = nil
	l.done.Store(true)
	return v
}

// IsComputed reports whether the value has been published.
func (l *Lazy[T]) IsComputed() bool {
	return l.done.Load()
}

func (l *Lazy[T]) describe() string {
	if l.label == nil {
		return "lazy value"
	}
	return l.label()
}
