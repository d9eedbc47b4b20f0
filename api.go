package bitecs

import (
	"iter"

	"github.com/TheBitDrifter/table"
)

// Entity is an opaque identifier. It carries no data and only exists as a key
// into the component stores of one World.
type Entity uint32

// ComponentID is the dense id assigned to a component type at registration.
// Ids start at 1; 0 is reserved and never valid.
type ComponentID uint32

// Component is the type-erased handle of a registered component type.
// AccessibleComponent implements it.
type Component interface {
	ID() ComponentID
	Name() string
	ElementType() table.ElementType
}

// Resetter is implemented by component values that need more than zeroing
// when their slot is returned to the store.
type Resetter interface {
	Reset()
}

// Mask is a bitset of component ids. All implementations of one World share
// the same backing, so Any and Include only compare like with like.
type Mask interface {
	Set(id ComponentID)
	Delete(id ComponentID)
	Has(id ComponentID) bool
	// Any reports whether the two masks intersect.
	Any(other Mask) bool
	// Include reports whether every bit of other is also set in the receiver.
	Include(other Mask) bool
	Clear()
	IsEmpty() bool
	Len() int
	// Values yields the set ids in ascending order.
	Values() iter.Seq[ComponentID]
}

// System is a unit of per-tick logic. User systems embed BaseSystem, which
// provides everything but Update.
type System interface {
	Name() string
	Update(dt float64)
	Enabled() bool
	SetEnabled(enabled bool)
	Clear()

	initialize(w *World, self System) error
	advance(dt float64) (float64, bool)
}

// Initializer is implemented by systems that declare their matcher rules.
// OnInit runs once, when the World is initialized.
type Initializer interface {
	OnInit() error
}

type Cache[T any] interface {
	GetIndex(string) (int, bool)
	GetItem(int) *T
	GetItem32(uint32) *T
	Register(string, T) (int, error)
	Len() int
}

// SimpleCache is a capacity bounded, string keyed slice. Index 0 is reserved,
// so the first registered item is found at index 1.
type SimpleCache[T any] struct {
	items       []T
	itemIndices map[string]int
	maxCapacity int
}
