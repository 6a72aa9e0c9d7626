package memory

import "sync"

// Pool is a type-safe wrapper around sync.Pool for reusing *T instances
// across ByteBuffer, ChunkBuffer and SliceBuffer allocations.
type Pool[T any] struct {
	pool sync.Pool
}

// Get returns a pooled *T, constructing one with newValue if the pool is
// empty, or resetting a reused instance with reset.
func (p *Pool[T]) Get(newValue func() *T, reset func(*T)) *T {
	v, _ := p.pool.Get().(*T)
	if v == nil {
		v = newValue()
	} else {
		reset(v)
	}
	return v
}

// Put releases v back to the pool.
func (p *Pool[T]) Put(v *T) {
	p.pool.Put(v)
}
