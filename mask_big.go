package bitecs

import (
	"iter"
	"math/big"
)

var _ Mask = &bigMask{}

// bigMask keeps every id in one unbounded integer.
type bigMask struct {
	bits    big.Int
	scratch big.Int
	size    int
}

func newBigMask() *bigMask {
	return &bigMask{}
}

func (m *bigMask) Set(id ComponentID) {
	if m.bits.Bit(int(id)) == 1 {
		return
	}
	m.bits.SetBit(&m.bits, int(id), 1)
	m.size++
}

func (m *bigMask) Delete(id ComponentID) {
	if m.bits.Bit(int(id)) == 0 {
		return
	}
	m.bits.SetBit(&m.bits, int(id), 0)
	m.size--
}

func (m *bigMask) Has(id ComponentID) bool {
	return m.bits.Bit(int(id)) == 1
}

func (m *bigMask) Any(other Mask) bool {
	o := other.(*bigMask)
	return m.scratch.And(&m.bits, &o.bits).Sign() != 0
}

func (m *bigMask) Include(other Mask) bool {
	o := other.(*bigMask)
	return m.scratch.And(&m.bits, &o.bits).Cmp(&o.bits) == 0
}

func (m *bigMask) Clear() {
	m.bits.SetInt64(0)
	m.size = 0
}

func (m *bigMask) IsEmpty() bool {
	return m.size == 0
}

func (m *bigMask) Len() int {
	return m.size
}

func (m *bigMask) Values() iter.Seq[ComponentID] {
	return func(yield func(ComponentID) bool) {
		n := m.bits.BitLen()
		for i := 0; i < n; i++ {
			if m.bits.Bit(i) == 1 && !yield(ComponentID(i)) {
				return
			}
		}
	}
}
