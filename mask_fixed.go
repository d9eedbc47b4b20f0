package bitecs

import (
	"iter"

	"github.com/TheBitDrifter/mask"
)

// fixedMaskBits is the capacity of mask.Mask, which depends on the build tags
// of the mask module (64 bits unless built with m256, m512 or m1024).
const fixedMaskBits = mask.MaxBits

var _ Mask = &fixedMask{}

type fixedMask struct {
	bits mask.Mask
	size int
}

func newFixedMask() *fixedMask {
	return &fixedMask{}
}

func (m *fixedMask) Set(id ComponentID) {
	if id >= fixedMaskBits || m.Has(id) {
		return
	}
	m.bits.Mark(uint32(id))
	m.size++
}

func (m *fixedMask) Delete(id ComponentID) {
	if !m.Has(id) {
		return
	}
	m.bits.Unmark(uint32(id))
	m.size--
}

func (m *fixedMask) Has(id ComponentID) bool {
	if id >= fixedMaskBits {
		return false
	}
	return m.bits.Contains(uint32(id))
}

func (m *fixedMask) Any(other Mask) bool {
	return m.bits.ContainsAny(other.(*fixedMask).bits)
}

func (m *fixedMask) Include(other Mask) bool {
	return m.bits.ContainsAll(other.(*fixedMask).bits)
}

func (m *fixedMask) Clear() {
	m.bits = mask.Mask{}
	m.size = 0
}

func (m *fixedMask) IsEmpty() bool {
	return m.size == 0
}

func (m *fixedMask) Len() int {
	return m.size
}

func (m *fixedMask) Values() iter.Seq[ComponentID] {
	return func(yield func(ComponentID) bool) {
		seen := 0
		for id := ComponentID(0); id < fixedMaskBits && seen < m.size; id++ {
			if !m.Has(id) {
				continue
			}
			seen++
			if !yield(id) {
				return
			}
		}
	}
}
