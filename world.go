package bitecs

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

const rootSystemName = "RootSystem"

// World owns the entities, component stores, queries and systems of one
// simulation. It is driven by calling Update once per tick. Structural
// changes are buffered and applied at the start of the next Update, before
// any system runs.
type World struct {
	name        string
	id          uuid.UUID
	maxEntities int
	registry    *Registry
	log         *zerolog.Logger

	initialized bool
	masks       maskFactory
	components  *componentPool
	entities    *entityPool
	queue       *opQueue
	queries     *queryPool
	root        *SystemGroup
}

func newWorld(registry *Registry, name string, maxEntities int) *World {
	if maxEntities <= 0 {
		maxEntities = Config.maxEntities
	}
	w := &World{
		name:        name,
		id:          uuid.New(),
		maxEntities: maxEntities,
		registry:    registry,
		root:        newSystemGroup(rootSystemName, 1),
	}
	w.SetLogger(Config.logger)
	return w
}

// SetLogger replaces the logger. The World adds its name and id as fields.
func (w *World) SetLogger(l zerolog.Logger) {
	logger := l.With().
		Str("world", w.name).
		Str("world_id", w.id.String()).
		Logger()
	w.log = &logger
}

func (w *World) Name() string {
	return w.name
}

// ID is unique per World instance.
func (w *World) ID() uuid.UUID {
	return w.id
}

func (w *World) Registry() *Registry {
	return w.registry
}

func (w *World) Logger() *zerolog.Logger {
	return w.log
}

func (w *World) Initialized() bool {
	return w.initialized
}

// Initialize freezes the registry, builds the stores and pools and
// initializes every system added so far. It succeeds at most once; after a
// failure the World stays uninitialized and Initialize may be retried.
func (w *World) Initialize() error {
	if w.initialized {
		return eris.Wrapf(ErrWorldInitialized, "world %q", w.name)
	}
	if err := w.checkSystemNames(w.root); err != nil {
		return err
	}
	w.registry.Freeze()

	count := w.registry.ComponentCount()
	w.masks = newMaskFactory(Config.maskKind, count+1)
	w.components = newComponentPool(w.registry, w.log)
	w.entities = newEntityPool(w.registry, w.components, w.masks, w.maxEntities, w.log)
	w.queue = newOpQueue(w.entities, count)
	w.queries = newQueryPool(w.entities, w.queue, w.masks, Config.queryLimit, w.log)

	w.root.world = w
	if err := w.root.initialize(w, w.root); err != nil {
		w.components, w.entities, w.queue, w.queries = nil, nil, nil, nil
		w.root.world = nil
		return err
	}
	w.initialized = true
	w.log.Info().
		Int("components", count).
		Stringer("mask", w.masks.kind).
		Int("max_entities", w.maxEntities).
		Msg("world initialized")
	return nil
}

// checkSystemNames reports the first name used twice within group.
func (w *World) checkSystemNames(group *SystemGroup) error {
	seen := map[string]struct{}{group.Name(): {}}
	var err error
	group.walk(func(s System) {
		if err != nil {
			return
		}
		if _, dup := seen[s.Name()]; dup {
			err = DuplicateSystemError{Name: s.Name()}
			return
		}
		seen[s.Name()] = struct{}{}
	})
	return err
}

// AddSystem appends s, a system or a group, to the root group. Every name in
// the tree must be unique. Systems added after Initialize are initialized
// right away.
func (w *World) AddSystem(s System) error {
	names := []string{s.Name()}
	if g, ok := s.(*SystemGroup); ok {
		g.walk(func(child System) {
			names = append(names, child.Name())
		})
	}
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, dup := seen[name]; dup || name == rootSystemName {
			return DuplicateSystemError{Name: name}
		}
		if _, exists := w.root.FindSystem(name); exists {
			return DuplicateSystemError{Name: name}
		}
		seen[name] = struct{}{}
	}
	if w.initialized {
		if err := s.initialize(w, s); err != nil {
			return err
		}
	}
	w.root.Add(s)
	return nil
}

// AddSystemByName constructs a system registered with Registry.RegisterSystem
// and adds it.
func (w *World) AddSystemByName(name string) (System, error) {
	s, err := w.registry.NewSystem(name)
	if err != nil {
		return nil, err
	}
	if err := w.AddSystem(s); err != nil {
		return nil, err
	}
	return s, nil
}

// System finds a system or group by name anywhere in the tree.
func (w *World) System(name string) (System, error) {
	if s, ok := w.root.FindSystem(name); ok {
		return s, nil
	}
	return nil, SystemNotFoundError{Name: name}
}

// Systems returns the root group.
func (w *World) Systems() *SystemGroup {
	return w.root
}

// Matcher starts a new query description.
func (w *World) Matcher() *Matcher {
	return newMatcher(w)
}

// Update applies the buffered structural changes and then runs the systems.
func (w *World) Update(dt float64) {
	if !w.initialized {
		w.log.Warn().Msg("update on an uninitialized world ignored")
		return
	}
	w.queue.process()
	w.root.Update(dt)
}

// Flush applies the buffered structural changes without running systems.
func (w *World) Flush() {
	if w.initialized {
		w.queue.process()
	}
}

// PendingCommands returns the number of buffered structural changes.
func (w *World) PendingCommands() int {
	if !w.initialized {
		return 0
	}
	return w.queue.pendingOps()
}

// CreateEmptyEntity returns a new entity id. The entity only exists once a
// component has been added to it and applied. An uninitialized World
// returns 0.
func (w *World) CreateEmptyEntity() Entity {
	if !w.ready("create entity") {
		return 0
	}
	return w.entities.createEntity()
}

// CreateEntity instantiates a loaded archetype. overrides maps component
// names to JSON objects merged field by field over the archetype defaults.
// The returned map holds the new components by name, as *T.
func (w *World) CreateEntity(archetype string, overrides map[string]json.RawMessage) (Entity, map[string]any, error) {
	if !w.initialized {
		return 0, nil, eris.Wrapf(ErrWorldNotInitialized, "creating %q", archetype)
	}
	tmpl, err := w.registry.template(archetype)
	if err != nil {
		return 0, nil, err
	}
	for name := range overrides {
		if !tmpl.has(name) {
			return 0, nil, eris.Wrapf(UnknownComponentError{Name: name}, "override for archetype %q", archetype)
		}
	}

	created := make(map[string]any, len(tmpl.entries))
	release := func() {
		for _, entry := range tmpl.entries {
			if c, ok := created[entry.name]; ok {
				w.components.store(entry.id).release(c)
			}
		}
	}
	for _, entry := range tmpl.entries {
		info := w.registry.component(entry.id)
		c := w.components.create(entry.id)
		created[entry.name] = c
		if err := info.decode(c, entry.props); err != nil {
			release()
			return 0, nil, eris.Wrapf(err, "archetype %q component %q", archetype, entry.name)
		}
		if raw, ok := overrides[entry.name]; ok {
			if err := info.decode(c, raw); err != nil {
				release()
				return 0, nil, eris.Wrapf(err, "override of %q in archetype %q", entry.name, archetype)
			}
		}
	}

	e := w.entities.createEntity()
	for _, entry := range tmpl.entries {
		w.queue.enqueueAdd(e, entry.id, created[entry.name])
	}
	return e, created, nil
}

// RemoveEntity schedules the removal of every component e has now, which
// destroys it.
func (w *World) RemoveEntity(e Entity) {
	if !w.ready("remove entity") {
		return
	}
	if !w.queue.enqueueDestroy(e) {
		w.log.Warn().Uint32("entity", uint32(e)).Msg("entity does not exist, cannot remove")
	}
}

// RemoveComponent schedules the removal of comps from e.
func (w *World) RemoveComponent(e Entity, comps ...Component) {
	if !w.ready("remove component") {
		return
	}
	for _, c := range comps {
		if !w.registry.Owns(c) {
			w.warnUnregistered(c.ID(), "remove")
			continue
		}
		w.queue.enqueueRemove(e, c.ID())
	}
}

func (w *World) HasComponent(e Entity, c Component) bool {
	if !w.ready("has") || !w.registry.Owns(c) {
		return false
	}
	return w.entities.hasComponent(e, c.ID())
}

// GetComponent returns the component of e as *T boxed in any, or nil.
func (w *World) GetComponent(e Entity, c Component) any {
	if !w.ready("get") {
		return nil
	}
	if !w.registry.Owns(c) {
		w.warnUnregistered(c.ID(), "get")
		return nil
	}
	return w.entities.getComponent(e, c.ID())
}

// ComponentsOf returns the component ids of e in ascending order.
func (w *World) ComponentsOf(e Entity) []ComponentID {
	if !w.ready("components of") {
		return nil
	}
	return maskIDs(w.entities.mask(e))
}

// Alive reports whether e currently owns at least one component.
func (w *World) Alive(e Entity) bool {
	if !w.initialized {
		return false
	}
	return w.entities.mask(e) != nil
}

func (w *World) ForEachEntity(fn func(Entity)) {
	if !w.ready("for each entity") {
		return
	}
	w.entities.forEachEntity(fn)
}

// CountOf returns the number of entities owning c.
func (w *World) CountOf(c Component) int {
	if !w.ready("count") || !w.registry.Owns(c) {
		return 0
	}
	return w.components.count(c.ID())
}

// ForEachWith visits every entity owning c, in store order.
func (w *World) ForEachWith(c Component, fn func(Entity)) {
	if !w.ready("for each with") {
		return
	}
	if !w.registry.Owns(c) {
		w.warnUnregistered(c.ID(), "for each with")
		return
	}
	w.components.store(c.ID()).each(fn)
}

// EntityCount returns the number of entities owning at least one component.
func (w *World) EntityCount() int {
	if !w.initialized {
		return 0
	}
	return w.entities.entityCount()
}

// Clear drops every entity, component and buffered change. Queries are
// emptied but stay valid, and the system tree is reset.
func (w *World) Clear() {
	if !w.initialized {
		return
	}
	w.queue.clear()
	w.components.clear()
	w.entities.clear()
	w.queries.clear()
	w.root.Clear()
	w.log.Debug().Msg("world cleared")
}

// typedStore returns the store behind c, or nil if the World is not
// initialized or c belongs to another Registry.
func (w *World) typedStore(c Component) componentStore {
	if !w.initialized || !w.registry.Owns(c) {
		return nil
	}
	return w.components.store(c.ID())
}

// ready warns and reports false when op is attempted before Initialize.
func (w *World) ready(op string) bool {
	if !w.initialized {
		w.log.Warn().Str("op", op).Msg("world not initialized")
	}
	return w.initialized
}

func (w *World) warnUnregistered(id ComponentID, op string) {
	w.log.Warn().
		Uint32("component_id", uint32(id)).
		Str("op", op).
		Msg("component type not registered with this world")
}

func (w *World) warnMissing(e Entity, id ComponentID) {
	w.log.Warn().
		Uint32("entity", uint32(e)).
		Str("component", w.registry.label(id)).
		Msg("entity does not have component")
}
