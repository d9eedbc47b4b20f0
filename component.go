package bitecs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/TheBitDrifter/table"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

const registryCapacity = 1 << 16

// componentInfo is everything a World needs to know about one registered
// component type. It is indexed by ComponentID.
type componentInfo struct {
	id       ComponentID
	name     string
	elem     table.ElementType
	newStore func(logger *zerolog.Logger) componentStore
	decode   func(dst any, raw json.RawMessage) error
}

// Registry maps component and system names to their types. It must be fully
// populated before the first World using it is initialized; initializing a
// World freezes it.
type Registry struct {
	frozen     bool
	components *SimpleCache[componentInfo]
	types      map[reflect.Type]ComponentID
	schema     table.Schema
	systems    map[string]func() System
	templates  *SimpleCache[template]
}

func newRegistry() *Registry {
	return &Registry{
		components: newSimpleCache[componentInfo](registryCapacity),
		types:      make(map[reflect.Type]ComponentID),
		schema:     table.Factory.NewSchema(),
		systems:    make(map[string]func() System),
		templates:  newSimpleCache[template](registryCapacity),
	}
}

func registerComponent[T any](r *Registry, name string) (componentInfo, error) {
	if r.frozen {
		return componentInfo{}, eris.Wrapf(ErrRegistryFrozen, "registering component %q", name)
	}
	elem := table.FactoryNewElementType[T]()
	if elem.Type() == nil {
		return componentInfo{}, eris.Errorf("component %q must be a concrete type", name)
	}
	if _, ok := r.types[elem.Type()]; ok {
		return componentInfo{}, DuplicateComponentError{Name: name}
	}
	if _, ok := r.components.GetIndex(name); ok {
		return componentInfo{}, DuplicateComponentError{Name: name}
	}

	info := componentInfo{
		id:   ComponentID(r.components.Len() + 1),
		name: name,
		elem: elem,
		newStore: func(logger *zerolog.Logger) componentStore {
			return newDenseStore[T](name, logger)
		},
		decode: func(dst any, raw json.RawMessage) error {
			p, ok := dst.(*T)
			if !ok {
				return fmt.Errorf("component %q cannot decode into %T", name, dst)
			}
			return decodeStrict(raw, p)
		},
	}
	idx, err := r.components.Register(name, info)
	if err != nil {
		return componentInfo{}, eris.Wrapf(err, "registering component %q", name)
	}
	if !invariant(ComponentID(idx) == info.id, &Config.logger, "component ids must be dense") {
		return componentInfo{}, CorruptionError{Msg: "component id mismatch"}
	}
	r.schema.Register(elem)
	r.types[elem.Type()] = info.id
	return info, nil
}

func decodeStrict(raw json.RawMessage, dst any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// RegisterSystem makes a system constructible by name through
// World.AddSystemByName.
func (r *Registry) RegisterSystem(name string, factory func() System) error {
	if r.frozen {
		return eris.Wrapf(ErrRegistryFrozen, "registering system %q", name)
	}
	if _, ok := r.systems[name]; ok {
		return DuplicateSystemError{Name: name}
	}
	r.systems[name] = factory
	return nil
}

// NewSystem constructs a registered system.
func (r *Registry) NewSystem(name string) (System, error) {
	factory, ok := r.systems[name]
	if !ok {
		return nil, UnregisteredSystemError{Name: name}
	}
	return factory(), nil
}

// Freeze makes the registry read-only.
func (r *Registry) Freeze() {
	r.frozen = true
}

func (r *Registry) Frozen() bool {
	return r.frozen
}

// ComponentCount returns the number of registered component types.
func (r *Registry) ComponentCount() int {
	return r.components.Len()
}

// ComponentName returns the registered name of id, or "" if there is none.
func (r *Registry) ComponentName(id ComponentID) string {
	if info := r.component(id); info != nil {
		return info.name
	}
	return ""
}

// ComponentID looks a component type up by name.
func (r *Registry) ComponentID(name string) (ComponentID, bool) {
	idx, ok := r.components.GetIndex(name)
	return ComponentID(idx), ok
}

// Owns reports whether c was registered with r. Handles minted by another
// Registry are rejected even when their ids collide.
func (r *Registry) Owns(c Component) bool {
	if c == nil || c.ElementType() == nil || r.component(c.ID()) == nil {
		return false
	}
	return r.schema.Contains(c.ElementType()) &&
		r.component(c.ID()).elem.ID() == c.ElementType().ID()
}

// ComponentType returns the Go type registered under id, or nil.
func (r *Registry) ComponentType(id ComponentID) reflect.Type {
	if info := r.component(id); info != nil {
		return info.elem.Type()
	}
	return nil
}

func (r *Registry) component(id ComponentID) *componentInfo {
	if id == 0 || int(id) > r.components.Len() {
		return nil
	}
	return r.components.GetItem32(uint32(id))
}

func (r *Registry) label(id ComponentID) string {
	if name := r.ComponentName(id); name != "" {
		return name
	}
	return fmt.Sprintf("#%d", id)
}
