package bitecs

import "iter"

// Cursor walks the result set of a Query one entity at a time.
//
//	cursor := query.Cursor()
//	for cursor.Next() {
//		pos := position.Get(world, cursor.Entity())
//		...
//	}
type Cursor struct {
	query       *Query
	snapshot    []Entity
	index       int
	initialized bool
}

func newCursor(query *Query) *Cursor {
	return &Cursor{query: query}
}

// Next advances to the next entity. Once the results are exhausted it resets
// the cursor and returns false.
func (c *Cursor) Next() bool {
	if !c.initialized {
		c.initialize()
	}
	if c.index < len(c.snapshot) {
		c.index++
		return true
	}
	c.Reset()
	return false
}

func (c *Cursor) initialize() {
	c.snapshot = c.query.dense
	c.index = 0
	c.initialized = true
}

// Entity returns the entity the cursor is positioned on.
func (c *Cursor) Entity() Entity {
	if c.index == 0 {
		return 0
	}
	return c.snapshot[c.index-1]
}

func (c *Cursor) Entities() iter.Seq2[int, Entity] {
	return func(yield func(int, Entity) bool) {
		c.initialize()
		for c.index < len(c.snapshot) {
			e := c.snapshot[c.index]
			c.index++
			if !yield(c.index-1, e) {
				c.Reset()
				return
			}
		}
		c.Reset()
	}
}

func (c *Cursor) Reset() {
	c.snapshot = nil
	c.index = 0
	c.initialized = false
}

// Remaining returns how many entities Next has yet to visit.
func (c *Cursor) Remaining() int {
	if !c.initialized {
		return c.query.Len()
	}
	return len(c.snapshot) - c.index
}

// TotalMatched returns the size of the underlying result set.
func (c *Cursor) TotalMatched() int {
	return c.query.Len()
}
