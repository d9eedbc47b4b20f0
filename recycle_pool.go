package bitecs

// RecyclePool is a bounded free list. Pop never fails: when the pool is empty
// it mints a fresh value through the factory. Recycle keeps at most max
// values and silently drops the rest.
type RecyclePool[T any] struct {
	Name string

	pool    []T
	count   int
	max     int
	factory func() T
	reset   func(T)
}

// NewRecyclePool creates a pool holding prefill pre-built values and
// retaining at most limit. reset may be nil.
func NewRecyclePool[T any](factory func() T, reset func(T), prefill, limit int) *RecyclePool[T] {
	limit = max(limit, 1)
	prefill = clampInt(prefill, 0, limit)
	p := &RecyclePool[T]{
		pool:    make([]T, prefill),
		max:     limit,
		factory: factory,
		reset:   reset,
	}
	for i := range p.pool {
		p.pool[i] = factory()
	}
	p.count = prefill
	return p
}

// Pop returns a pooled value, or a new one when the pool is empty.
func (p *RecyclePool[T]) Pop() T {
	if p.count > 0 {
		p.count--
		obj := p.pool[p.count]
		var zero T
		p.pool[p.count] = zero
		return obj
	}
	return p.factory()
}

// Recycle resets obj and stores it for reuse. It reports false when the pool
// is full and obj was dropped.
func (p *RecyclePool[T]) Recycle(obj T) bool {
	capacity := len(p.pool)
	if p.count == capacity {
		if capacity >= p.max {
			return false
		}
		switch {
		case capacity < 32:
			capacity = 32
		case capacity >= 512:
			capacity += 256
		default:
			capacity *= 2
		}
		grown := make([]T, min(capacity, p.max))
		copy(grown, p.pool[:p.count])
		p.pool = grown
	}
	if p.reset != nil {
		p.reset(obj)
	}
	p.pool[p.count] = obj
	p.count++
	return true
}

// Len returns the number of values waiting for reuse.
func (p *RecyclePool[T]) Len() int {
	return p.count
}

// Cap returns the current backing capacity.
func (p *RecyclePool[T]) Cap() int {
	return len(p.pool)
}

// Clear drops every pooled value.
func (p *RecyclePool[T]) Clear() {
	clear(p.pool[:p.count])
	p.count = 0
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// nextCapacity is the growth policy shared by the dense stores and the
// command lists: double while small, then grow linearly.
func nextCapacity(current, floor int) int {
	switch {
	case current >= 1024:
		return current + 512
	case current < floor:
		return floor
	default:
		return current * 2
	}
}
