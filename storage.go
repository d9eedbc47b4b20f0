package bitecs

import "github.com/rs/zerolog"

// componentPool holds one dense store per registered component type,
// indexed by ComponentID. Slot 0 stays empty.
type componentPool struct {
	stores []componentStore
}

func newComponentPool(registry *Registry, logger *zerolog.Logger) *componentPool {
	p := &componentPool{
		stores: make([]componentStore, registry.ComponentCount()+1),
	}
	for id := 1; id < len(p.stores); id++ {
		p.stores[id] = registry.component(ComponentID(id)).newStore(logger)
	}
	return p
}

// store returns the store of id, or nil for ids unknown to this pool.
func (p *componentPool) store(id ComponentID) componentStore {
	if id == 0 || int(id) >= len(p.stores) {
		return nil
	}
	return p.stores[id]
}

// create hands out a reset component of type id for a pending add.
func (p *componentPool) create(id ComponentID) any {
	if s := p.store(id); s != nil {
		return s.create()
	}
	return nil
}

// count returns the number of entities owning a component of type id.
func (p *componentPool) count(id ComponentID) int {
	if s := p.store(id); s != nil {
		return s.len()
	}
	return 0
}

func (p *componentPool) clear() {
	for _, s := range p.stores[1:] {
		s.clear()
	}
}
