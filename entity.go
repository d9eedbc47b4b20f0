package bitecs

import (
	"github.com/rs/zerolog"
)

// entityPool is the entity table: it allocates entity ids and owns the mask
// of every live entity. It is the source of truth for which components an
// entity has.
type entityPool struct {
	registry   *Registry
	components *componentPool
	log        *zerolog.Logger

	unique    Entity
	size      int
	masks     []Mask
	ids       *RecyclePool[Entity]
	maskPool  *RecyclePool[Mask]
	destroyed []Entity
	pending   map[Entity]struct{}
}

func newEntityPool(registry *Registry, components *componentPool, masks maskFactory, maxEntities int, logger *zerolog.Logger) *entityPool {
	p := &entityPool{
		registry:   registry,
		components: components,
		log:        logger,
		pending:    make(map[Entity]struct{}),
	}
	p.ids = NewRecyclePool(p.nextID, nil, 0, maxEntities)
	p.ids.Name = "EntityPool"
	p.maskPool = NewRecyclePool(masks.New, Mask.Clear, 128, maxEntities)
	p.maskPool.Name = "MaskPool"
	return p
}

func (p *entityPool) nextID() Entity {
	e := p.unique
	p.unique++
	return e
}

// createEntity returns an id that owns no components yet.
func (p *entityPool) createEntity() Entity {
	return p.ids.Pop()
}

func (p *entityPool) mask(e Entity) Mask {
	if int(e) >= len(p.masks) {
		return nil
	}
	return p.masks[e]
}

func (p *entityPool) setMask(e Entity, m Mask) {
	if int(e) >= len(p.masks) {
		grown := make([]Mask, max(len(p.masks)*2, int(e)+1, 128))
		copy(grown, p.masks)
		p.masks = grown
	}
	p.masks[e] = m
}

// addComponent attaches c to e. Adding a type e already has is rejected and
// c goes back to its store.
func (p *entityPool) addComponent(e Entity, id ComponentID, c any) bool {
	store := p.components.store(id)
	if store == nil {
		p.warn(e, id, "component type not registered")
		return false
	}
	if p.hasComponent(e, id) {
		p.warn(e, id, "entity already has component")
		store.release(c)
		return false
	}
	m := p.mask(e)
	if m == nil {
		m = p.maskPool.Pop()
		p.setMask(e, m)
		p.size++
	}
	if !store.add(e, c) {
		if m.IsEmpty() {
			p.dropMask(e, m)
		}
		return false
	}
	m.Set(id)
	return true
}

// removeComponent detaches id from e. An entity left without components is
// destroyed; its id is recycled by recycleDestroyed.
func (p *entityPool) removeComponent(e Entity, id ComponentID) bool {
	m := p.mask(e)
	if m == nil {
		p.warn(e, id, "entity does not exist, cannot remove component")
		return false
	}
	if !m.Has(id) {
		p.warn(e, id, "entity does not have component")
		return false
	}
	store := p.components.store(id)
	if store == nil || !store.remove(e) {
		return false
	}
	m.Delete(id)
	if m.IsEmpty() {
		p.dropMask(e, m)
	}
	return true
}

func (p *entityPool) dropMask(e Entity, m Mask) {
	p.size--
	p.masks[e] = nil
	p.maskPool.Recycle(m)
	if _, queued := p.pending[e]; !queued {
		p.pending[e] = struct{}{}
		p.destroyed = append(p.destroyed, e)
	}
}

// recycleDestroyed returns the ids of entities destroyed since the last call
// to the id pool, skipping those that were given components again.
func (p *entityPool) recycleDestroyed() {
	for _, e := range p.destroyed {
		if p.mask(e) == nil {
			p.ids.Recycle(e)
		}
	}
	p.destroyed = p.destroyed[:0]
	clear(p.pending)
}

func (p *entityPool) hasComponent(e Entity, id ComponentID) bool {
	m := p.mask(e)
	return m != nil && m.Has(id)
}

func (p *entityPool) getComponent(e Entity, id ComponentID) any {
	if !p.hasComponent(e, id) {
		p.warn(e, id, "entity does not have component")
		return nil
	}
	return p.components.store(id).get(e)
}

// forEachComponent visits the component ids of e in ascending order.
func (p *entityPool) forEachComponent(e Entity, fn func(ComponentID)) {
	for _, id := range maskIDs(p.mask(e)) {
		fn(id)
	}
}

func (p *entityPool) forEachEntity(fn func(Entity)) {
	for i, m := range p.masks {
		if m != nil {
			fn(Entity(i))
		}
	}
}

// entityCount returns the number of entities owning at least one component.
func (p *entityPool) entityCount() int {
	return p.size
}

func (p *entityPool) clear() {
	p.unique = 0
	p.size = 0
	p.masks = nil
	p.ids.Clear()
	p.maskPool.Clear()
	p.destroyed = p.destroyed[:0]
	clear(p.pending)
}

func (p *entityPool) warn(e Entity, id ComponentID, msg string) {
	p.log.Warn().
		Uint32("entity", uint32(e)).
		Str("component", p.registry.label(id)).
		Msg(msg)
}
