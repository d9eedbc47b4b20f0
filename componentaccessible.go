package bitecs

import "github.com/TheBitDrifter/table"

var _ Component = AccessibleComponent[struct{}]{}

// AccessibleComponent is the typed handle of a registered component type.
// It is obtained from FactoryNewComponent and is valid for every World built
// on the same Registry.
type AccessibleComponent[T any] struct {
	id   ComponentID
	name string
	elem table.ElementType
}

func (c AccessibleComponent[T]) ID() ComponentID {
	return c.id
}

func (c AccessibleComponent[T]) Name() string {
	return c.name
}

func (c AccessibleComponent[T]) ElementType() table.ElementType {
	return c.elem
}

// Add enqueues a fresh, reset component for e and returns it so the caller
// can fill it in. The component becomes visible to queries and Get after the
// next World.Update.
func (c AccessibleComponent[T]) Add(w *World, e Entity) *T {
	store, ok := w.typedStore(c).(*denseStore[T])
	if !ok {
		w.warnUnregistered(c.id, "add")
		return nil
	}
	comp := store.createTyped()
	w.queue.enqueueAdd(e, c.id, comp)
	return comp
}

// AddValue is Add followed by copying v into the new component.
func (c AccessibleComponent[T]) AddValue(w *World, e Entity, v T) *T {
	comp := c.Add(w, e)
	if comp != nil {
		*comp = v
	}
	return comp
}

// Get returns the component of e, or nil if e does not have one.
func (c AccessibleComponent[T]) Get(w *World, e Entity) *T {
	store, ok := w.typedStore(c).(*denseStore[T])
	if !ok {
		w.warnUnregistered(c.id, "get")
		return nil
	}
	if !w.entities.hasComponent(e, c.id) {
		w.warnMissing(e, c.id)
		return nil
	}
	return store.getTyped(e)
}

// Has reports whether e currently has the component.
func (c AccessibleComponent[T]) Has(w *World, e Entity) bool {
	return w.HasComponent(e, c)
}

// Remove enqueues the removal of the component from e.
func (c AccessibleComponent[T]) Remove(w *World, e Entity) {
	w.RemoveComponent(e, c)
}

// Each visits every entity owning the component together with its value, in
// store order. The callback must not add or remove components directly.
func (c AccessibleComponent[T]) Each(w *World, fn func(Entity, *T)) {
	store, ok := w.typedStore(c).(*denseStore[T])
	if !ok {
		w.warnUnregistered(c.id, "each")
		return
	}
	for e, comp := range store.all() {
		fn(e, comp)
	}
}
