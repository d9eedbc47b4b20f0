package bitecs

import (
	"fmt"

	iter_util "github.com/TheBitDrifter/util/iter"
)

// MaskKind selects the Mask backing of a World.
type MaskKind int

const (
	// MaskAuto uses MaskFixed when every registered id fits, MaskWords otherwise.
	MaskAuto MaskKind = iota
	// MaskWords packs 31 ids per uint32 word.
	MaskWords
	// MaskBig uses a single arbitrary precision integer.
	MaskBig
	// MaskFixed uses mask.Mask. Worlds with more ids than it holds fall back
	// to MaskWords.
	MaskFixed
)

func (k MaskKind) String() string {
	switch k {
	case MaskAuto:
		return "auto"
	case MaskWords:
		return "words"
	case MaskBig:
		return "big"
	case MaskFixed:
		return "fixed"
	}
	return fmt.Sprintf("MaskKind(%d)", int(k))
}

// maskFactory mints empty masks able to hold ids up to bits-1.
type maskFactory struct {
	kind MaskKind
	bits int
}

func newMaskFactory(kind MaskKind, bits int) maskFactory {
	if kind == MaskAuto {
		kind = MaskWords
		if bits <= fixedMaskBits {
			kind = MaskFixed
		}
	}
	if kind == MaskFixed && bits > fixedMaskBits {
		kind = MaskWords
	}
	return maskFactory{kind: kind, bits: bits}
}

func (f maskFactory) New() Mask {
	switch f.kind {
	case MaskBig:
		return newBigMask()
	case MaskFixed:
		return newFixedMask()
	default:
		return newWordMask(f.bits)
	}
}

// maskIDs snapshots the ids of m. Use it when the caller may mutate m while
// walking the result.
func maskIDs(m Mask) []ComponentID {
	if m == nil {
		return nil
	}
	return iter_util.Collect(m.Values())
}
