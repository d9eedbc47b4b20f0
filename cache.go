package bitecs

import "fmt"

var _ Cache[any] = &SimpleCache[any]{}

func newSimpleCache[T any](capacity int) *SimpleCache[T] {
	c := &SimpleCache[T]{
		itemIndices: make(map[string]int),
		maxCapacity: capacity,
	}
	c.Clear()
	return c
}

func (c *SimpleCache[T]) GetIndex(key string) (int, bool) {
	index, ok := c.itemIndices[key]
	return index, ok
}

func (c *SimpleCache[T]) GetItem(index int) *T {
	return &c.items[index]
}

func (c *SimpleCache[T]) GetItem32(index uint32) *T {
	return &c.items[index]
}

func (c *SimpleCache[T]) Register(key string, item T) (int, error) {
	if _, exists := c.itemIndices[key]; exists {
		return -1, fmt.Errorf("cache key %q already registered", key)
	}
	if len(c.itemIndices) >= c.maxCapacity {
		return -1, fmt.Errorf("cache at maximum capacity (%d)", c.maxCapacity)
	}

	idx := len(c.items)
	c.itemIndices[key] = idx
	c.items = append(c.items, item)

	return idx, nil
}

// Len returns the number of registered items.
func (c *SimpleCache[T]) Len() int {
	return len(c.items) - 1
}

// Each visits registered items in registration order.
func (c *SimpleCache[T]) Each(fn func(index int, item *T)) {
	for i := 1; i < len(c.items); i++ {
		fn(i, &c.items[i])
	}
}

func (c *SimpleCache[T]) Clear() {
	var reserved T
	c.items = append(make([]T, 0, min(c.maxCapacity, 64)+1), reserved)
	c.itemIndices = make(map[string]int)
}
