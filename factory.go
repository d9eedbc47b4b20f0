package bitecs

type factory struct{}

var Factory factory

func (f factory) NewRegistry() *Registry {
	return newRegistry()
}

// NewWorld creates an uninitialized World. maxEntities bounds the entity id
// and mask recycle pools; 0 selects the Config default.
func (f factory) NewWorld(registry *Registry, name string, maxEntities int) *World {
	return newWorld(registry, name, maxEntities)
}

func (f factory) NewSystemGroup(name string, frameInterval int) *SystemGroup {
	return newSystemGroup(name, frameInterval)
}

// FactoryNewComponent registers T under name and returns its typed handle.
func FactoryNewComponent[T any](r *Registry, name string) (AccessibleComponent[T], error) {
	info, err := registerComponent[T](r, name)
	if err != nil {
		return AccessibleComponent[T]{}, err
	}
	return AccessibleComponent[T]{
		id:   info.id,
		name: info.name,
		elem: info.elem,
	}, nil
}

func FactoryNewCache[T any](cap int) Cache[T] {
	return newSimpleCache[T](cap)
}
