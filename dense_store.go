package bitecs

import (
	"fmt"
	"iter"

	"github.com/rs/zerolog"
)

const tombstone = -1

// componentStore is the type-erased view of a denseStore. Component values
// cross it as *T boxed in any.
type componentStore interface {
	create() any
	release(c any)
	add(e Entity, c any) bool
	remove(e Entity) bool
	get(e Entity) any
	len() int
	each(fn func(Entity))
	clear()
}

var _ componentStore = &denseStore[struct{}]{}

// denseStore keeps the live components of one type packed at the front of
// dense. sparse maps an entity to its dense index and is recomputed on every
// access, so no index ever leaks out of the store.
type denseStore[T any] struct {
	name     string
	dense    []*T
	entities []Entity
	sparse   []int
	size     int
	free     []*T
	log      *zerolog.Logger
}

func newDenseStore[T any](name string, logger *zerolog.Logger) *denseStore[T] {
	s := &denseStore[T]{name: name, log: logger}
	s.grow()
	return s
}

func (s *denseStore[T]) grow() {
	n := nextCapacity(len(s.dense), 32)
	dense := make([]*T, n)
	copy(dense, s.dense[:s.size])
	entities := make([]Entity, n)
	copy(entities, s.entities[:s.size])
	s.dense, s.entities = dense, entities
}

func (s *denseStore[T]) index(e Entity) (int, bool) {
	if int(e) >= len(s.sparse) {
		return 0, false
	}
	idx := s.sparse[e]
	return idx, idx != tombstone
}

func (s *denseStore[T]) setIndex(e Entity, idx int) {
	if int(e) >= len(s.sparse) {
		oldLen := len(s.sparse)
		newLen := max(oldLen*2, int(e)+1, 128)
		sparse := make([]int, newLen)
		copy(sparse, s.sparse)
		for i := oldLen; i < newLen; i++ {
			sparse[i] = tombstone
		}
		s.sparse = sparse
	}
	s.sparse[e] = idx
}

// create returns a reset instance that is not owned by any entity yet.
func (s *denseStore[T]) create() any {
	return s.createTyped()
}

func (s *denseStore[T]) createTyped() *T {
	if n := len(s.free); n > 0 {
		c := s.free[n-1]
		s.free[n-1] = nil
		s.free = s.free[:n-1]
		return c
	}
	return new(T)
}

// release takes back an instance from create that was never added.
func (s *denseStore[T]) release(c any) {
	if p, ok := c.(*T); ok && p != nil {
		resetValue(p)
		s.free = append(s.free, p)
	}
}

func (s *denseStore[T]) add(e Entity, c any) bool {
	p, ok := c.(*T)
	if !invariant(ok && p != nil, s.log, fmt.Sprintf("store %s received %T", s.name, c)) {
		return false
	}
	_, exists := s.index(e)
	if !invariant(!exists, s.log, fmt.Sprintf("entity %d already owns a %s", e, s.name)) {
		return false
	}
	if s.size == len(s.dense) {
		s.grow()
	}
	s.dense[s.size] = p
	s.entities[s.size] = e
	s.setIndex(e, s.size)
	s.size++
	return true
}

// remove swaps the last live component into the slot of e, resets the
// removed instance and keeps it for reuse.
func (s *denseStore[T]) remove(e Entity) bool {
	idx, ok := s.index(e)
	if !invariant(ok, s.log, fmt.Sprintf("entity %d has no %s to remove", e, s.name)) {
		return false
	}
	last := s.size - 1
	removed := s.dense[idx]
	if idx != last {
		moved := s.entities[last]
		s.dense[idx] = s.dense[last]
		s.entities[idx] = moved
		s.sparse[moved] = idx
	}
	s.dense[last] = nil
	s.entities[last] = 0
	s.sparse[e] = tombstone
	s.size--

	resetValue(removed)
	s.free = append(s.free, removed)
	return true
}

func (s *denseStore[T]) get(e Entity) any {
	return s.getTyped(e)
}

func (s *denseStore[T]) getTyped(e Entity) *T {
	idx, ok := s.index(e)
	if !invariant(ok, s.log, fmt.Sprintf("entity %d has no %s to get", e, s.name)) {
		return nil
	}
	return s.dense[idx]
}

func (s *denseStore[T]) len() int {
	return s.size
}

func (s *denseStore[T]) each(fn func(Entity)) {
	for i := 0; i < s.size; i++ {
		fn(s.entities[i])
	}
}

// all yields live entities with their components in dense order.
func (s *denseStore[T]) all() iter.Seq2[Entity, *T] {
	return func(yield func(Entity, *T) bool) {
		for i := 0; i < s.size; i++ {
			if !yield(s.entities[i], s.dense[i]) {
				return
			}
		}
	}
}

// clear resets every live component and drops all storage.
func (s *denseStore[T]) clear() {
	for i := 0; i < s.size; i++ {
		resetValue(s.dense[i])
	}
	s.dense, s.entities = nil, nil
	s.sparse = nil
	s.free = nil
	s.size = 0
	s.grow()
}

func resetValue[T any](p *T) {
	if r, ok := any(p).(Resetter); ok {
		r.Reset()
		return
	}
	var zero T
	*p = zero
}
