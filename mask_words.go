package bitecs

import (
	"iter"
	"math/bits"
)

// wordBits is the number of ids stored per word. The top bit of every word
// stays clear so a word never reads as a negative int32.
const wordBits = 31

var _ Mask = &wordMask{}

type wordMask struct {
	words []uint32
	size  int
}

func newWordMask(bits int) *wordMask {
	n := (bits + wordBits - 1) / wordBits
	return &wordMask{words: make([]uint32, max(n, 1))}
}

func wordOf(id ComponentID) (int, uint32) {
	return int(id / wordBits), 1 << (id % wordBits)
}

func (m *wordMask) Set(id ComponentID) {
	w, bit := wordOf(id)
	if w >= len(m.words) {
		grown := make([]uint32, w+1)
		copy(grown, m.words)
		m.words = grown
	}
	if m.words[w]&bit != 0 {
		return
	}
	m.words[w] |= bit
	m.size++
}

func (m *wordMask) Delete(id ComponentID) {
	w, bit := wordOf(id)
	if w >= len(m.words) || m.words[w]&bit == 0 {
		return
	}
	m.words[w] &^= bit
	m.size--
}

func (m *wordMask) Has(id ComponentID) bool {
	w, bit := wordOf(id)
	return w < len(m.words) && m.words[w]&bit != 0
}

func (m *wordMask) Any(other Mask) bool {
	o := other.(*wordMask)
	n := min(len(m.words), len(o.words))
	for i := 0; i < n; i++ {
		if m.words[i]&o.words[i] != 0 {
			return true
		}
	}
	return false
}

func (m *wordMask) Include(other Mask) bool {
	o := other.(*wordMask)
	for i, want := range o.words {
		var have uint32
		if i < len(m.words) {
			have = m.words[i]
		}
		if have&want != want {
			return false
		}
	}
	return true
}

func (m *wordMask) Clear() {
	clear(m.words)
	m.size = 0
}

func (m *wordMask) IsEmpty() bool {
	return m.size == 0
}

func (m *wordMask) Len() int {
	return m.size
}

func (m *wordMask) Values() iter.Seq[ComponentID] {
	return func(yield func(ComponentID) bool) {
		for i, word := range m.words {
			for word != 0 {
				b := bits.TrailingZeros32(word)
				if !yield(ComponentID(i*wordBits + b)) {
					return
				}
				word &= word - 1
			}
		}
	}
}
