package generic

import (
	"errors"
)

// ErrNotAcquired is returned when a slot is released that is not currently held.
var ErrNotAcquired = errors.New("generic: slot released without being acquired")

// Slot is a reusable cell handed out by Pool. The Value is only valid between
// Acquire and Release.
type Slot[T any] struct {
	Value T
	held  bool
}

// Held reports whether the slot is currently acquired.
func (s *Slot[T]) Held() bool { return s != nil && s.held }

// Pool is a single-owner arena of preallocated slots. It never fails to hand out
// a slot: when the hot set is exhausted it grows and records the miss, so sizing
// problems show up in Stats instead of at runtime.
type Pool[T any] struct {
	generate func() T
	reset    func(*T)
	free     []*Slot[T]
	inUse    int
	size     int
	grown    int
}

// PoolStats is a snapshot of pool accounting.
type PoolStats struct {
	Size  int
	InUse int
	Grown int
}

// NewPool creates a pool without preallocated slots.
func NewPool[T any](generate func() T) *Pool[T] {
	return &Pool[T]{generate: generate}
}

// NewHotPool creates a pool with hotSize preallocated slots.
func NewHotPool[T any](generate func() T, hotSize int) *Pool[T] {
	p := NewPool[T](generate)
	p.free = make([]*Slot[T], 0, hotSize)
	for i := 0; i < hotSize; i++ {
		p.free = append(p.free, &Slot[T]{Value: generate()})
	}
	p.size = hotSize
	return p
}

// WithReset installs a hook run on every released value.
func (p *Pool[T]) WithReset(reset func(*T)) *Pool[T] {
	p.reset = reset
	return p
}

// Acquire hands out a slot.
func (p *Pool[T]) Acquire() *Slot[T] {
	var s *Slot[T]
	if n := len(p.free); n > 0 {
		s = p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
	} else {
		s = &Slot[T]{Value: p.generate()}
		p.size++
		p.grown++
	}
	s.held = true
	p.inUse++
	return s
}

// Release returns a slot to the pool. Releasing a slot twice is an error and
// leaves the accounting untouched.
func (p *Pool[T]) Release(s *Slot[T]) error {
	if s == nil || !s.held {
		return ErrNotAcquired
	}
	s.held = false
	if p.reset != nil {
		p.reset(&s.Value)
	}
	p.inUse--
	p.free = append(p.free, s)
	return nil
}

// InUse returns the number of slots currently acquired.
func (p *Pool[T]) InUse() int { return p.inUse }

// Stats returns a snapshot of the pool accounting.
func (p *Pool[T]) Stats() PoolStats {
	return PoolStats{Size: p.size, InUse: p.inUse, Grown: p.grown}
}
