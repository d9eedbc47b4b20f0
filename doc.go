/*
Package bitecs provides a sparse set Entity-Component-System runtime for games and simulations.

Every component type lives in its own dense store, so adding and removing a component
is O(1) and never moves other component types. Structural changes are buffered and applied
once per tick, removals before additions, and queries are kept up to date incrementally
from those batches.

Core Concepts:

  - Entity: An id. It exists while it owns at least one component.
  - Component: Plain data registered in a Registry under a unique name.
  - Mask: The set of component ids an entity owns.
  - Matcher: AllOf, AnyOf, ExcludeOf and OptionalOf rules over component types.
  - Query: The cached set of entities satisfying a Matcher.
  - System: Per-tick logic, optionally grouped and throttled by a SystemGroup.

Basic Usage:

	registry := bitecs.Factory.NewRegistry()
	position, _ := bitecs.FactoryNewComponent[Position](registry, "Position")
	velocity, _ := bitecs.FactoryNewComponent[Velocity](registry, "Velocity")

	world := bitecs.Factory.NewWorld(registry, "main", 0)
	world.AddSystem(&Movement{BaseSystem: bitecs.NewBaseSystem("Movement")})
	if err := world.Initialize(); err != nil {
		return err
	}

	e := world.CreateEmptyEntity()
	position.AddValue(world, e, Position{})
	velocity.AddValue(world, e, Velocity{X: 1, Y: 1})

	// Changes are applied at the start of the next tick, then systems run.
	world.Update(1.0 / 60)

Inside a system, iterate the query built from its matcher:

	for e := range m.Query().Entities() {
		pos := position.Get(m.World(), e)
		vel := velocity.Get(m.World(), e)
		pos.X += vel.X * dt
		pos.Y += vel.Y * dt
	}
*/
package bitecs
