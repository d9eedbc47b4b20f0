package bitecs

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskBasics(t *testing.T) {
	for _, kind := range maskKinds {
		t.Run(kind.String(), func(t *testing.T) {
			f := newMaskFactory(kind, fixedMaskBits)
			require.Equal(t, kind, f.kind)
			last := ComponentID(fixedMaskBits - 1)
			m := f.New()
			if !m.IsEmpty() {
				t.Fatalf("new mask is not empty")
			}

			m.Set(3)
			m.Set(3)
			m.Set(31)
			m.Set(last)
			if m.Len() != 3 {
				t.Errorf("Len() = %d, want 3", m.Len())
			}
			for _, id := range []ComponentID{3, 31, last} {
				if !m.Has(id) {
					t.Errorf("Has(%d) = false", id)
				}
			}
			if m.Has(30) || m.Has(32) {
				t.Errorf("neighbouring bits reported as set")
			}
			if got := maskIDs(m); !slices.Equal(got, []ComponentID{3, 31, last}) {
				t.Errorf("Values() = %v", got)
			}

			m.Delete(31)
			m.Delete(31)
			if m.Len() != 2 || m.Has(31) {
				t.Errorf("Delete(31) left Len %d Has %v", m.Len(), m.Has(31))
			}

			m.Clear()
			if !m.IsEmpty() || m.Has(3) {
				t.Errorf("Clear() left bits set")
			}
		})
	}
}

func TestMaskAnyInclude(t *testing.T) {
	tests := []struct {
		name        string
		have, other []ComponentID
		any         bool
		include     bool
	}{
		{"empty other", []ComponentID{1, 2}, nil, false, true},
		{"subset", []ComponentID{1, 2, 40}, []ComponentID{1, 40}, true, true},
		{"overlap", []ComponentID{1, 2}, []ComponentID{2, 60}, true, false},
		{"disjoint", []ComponentID{1, 2}, []ComponentID{33, 62}, false, false},
		{"other beyond have", []ComponentID{1}, []ComponentID{1, 63}, true, false},
	}
	for _, kind := range maskKinds {
		f := newMaskFactory(kind, fixedMaskBits)
		for _, tt := range tests {
			t.Run(kind.String()+"/"+tt.name, func(t *testing.T) {
				have, other := f.New(), f.New()
				for _, id := range tt.have {
					have.Set(id)
				}
				for _, id := range tt.other {
					other.Set(id)
				}
				if got := have.Any(other); got != tt.any {
					t.Errorf("Any() = %v, want %v", got, tt.any)
				}
				if got := have.Include(other); got != tt.include {
					t.Errorf("Include() = %v, want %v", got, tt.include)
				}
			})
		}
	}
}

func TestWordMaskGrowsPastInitialSize(t *testing.T) {
	m := newWordMask(10)
	m.Set(500)
	assert.True(t, m.Has(500))
	assert.Equal(t, 500/wordBits+1, len(m.words))

	small := newWordMask(10)
	small.Set(1)
	assert.True(t, m.Include(newWordMask(10)))
	assert.False(t, m.Any(small))
	assert.False(t, small.Include(m))
}

func TestMaskFactoryKind(t *testing.T) {
	tests := []struct {
		kind MaskKind
		bits int
		want MaskKind
	}{
		{MaskAuto, 4, MaskFixed},
		{MaskAuto, fixedMaskBits, MaskFixed},
		{MaskAuto, fixedMaskBits + 1, MaskWords},
		{MaskFixed, 1000, MaskWords},
		{MaskBig, 4, MaskBig},
		{MaskWords, 4, MaskWords},
	}
	for _, tt := range tests {
		if got := newMaskFactory(tt.kind, tt.bits).kind; got != tt.want {
			t.Errorf("newMaskFactory(%s, %d) = %s, want %s", tt.kind, tt.bits, got, tt.want)
		}
	}
}

// Every backing must agree bit for bit under random set/delete sequences.
func TestMaskEquivalence(t *testing.T) {
	const ids = fixedMaskBits
	rng := rand.New(rand.NewPCG(7, 11))

	factories := []maskFactory{
		newMaskFactory(MaskWords, ids),
		newMaskFactory(MaskBig, ids),
		newMaskFactory(MaskFixed, ids),
	}
	masks := make([]Mask, len(factories))
	probes := make([]Mask, len(factories))
	for i, f := range factories {
		masks[i] = f.New()
		probes[i] = f.New()
	}

	for step := 0; step < 5000; step++ {
		id := ComponentID(rng.IntN(ids))
		set := rng.IntN(3) != 0
		for _, m := range masks {
			if set {
				m.Set(id)
			} else {
				m.Delete(id)
			}
		}

		if step%50 == 0 {
			for _, p := range probes {
				p.Clear()
			}
			for n := rng.IntN(4); n >= 0; n-- {
				pid := ComponentID(rng.IntN(ids))
				for _, p := range probes {
					p.Set(pid)
				}
			}
		}

		want := maskIDs(masks[0])
		for i := 1; i < len(masks); i++ {
			require.Equal(t, want, maskIDs(masks[i]), "step %d: values of %s", step, factories[i].kind)
			require.Equal(t, masks[0].Len(), masks[i].Len(), "step %d: len of %s", step, factories[i].kind)
			require.Equal(t, masks[0].Has(id), masks[i].Has(id), "step %d: has(%d) of %s", step, id, factories[i].kind)
			require.Equal(t, masks[0].Any(probes[0]), masks[i].Any(probes[i]), "step %d: any of %s", step, factories[i].kind)
			require.Equal(t, masks[0].Include(probes[0]), masks[i].Include(probes[i]), "step %d: include of %s", step, factories[i].kind)
		}
	}
}
