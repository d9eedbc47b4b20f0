package bitecs_test

import (
	"encoding/json"
	"fmt"

	"github.com/TheBitDrifter/bitecs"
)

// Position is a simple component for 2D coordinates
type Position struct {
	X float64
	Y float64
}

// Velocity is a simple component for 2D movement
type Velocity struct {
	X float64
	Y float64
}

// Name is a simple component for entity identification
type Name struct {
	Value string
}

// Movement moves every entity that has both a Position and a Velocity.
type Movement struct {
	bitecs.BaseSystem
	position bitecs.AccessibleComponent[Position]
	velocity bitecs.AccessibleComponent[Velocity]
}

func (m *Movement) OnInit() error {
	m.Matcher().AllOf(m.position, m.velocity)
	return nil
}

func (m *Movement) Update(dt float64) {
	for e := range m.Query().Entities() {
		pos := m.position.Get(m.World(), e)
		vel := m.velocity.Get(m.World(), e)
		pos.X += vel.X * dt
		pos.Y += vel.Y * dt
	}
}

// Example shows basic usage with a system and deferred component changes
func Example_basic() {
	registry := bitecs.Factory.NewRegistry()
	position, _ := bitecs.FactoryNewComponent[Position](registry, "Position")
	velocity, _ := bitecs.FactoryNewComponent[Velocity](registry, "Velocity")
	name, _ := bitecs.FactoryNewComponent[Name](registry, "Name")

	world := bitecs.Factory.NewWorld(registry, "example", 0)
	world.AddSystem(&Movement{
		BaseSystem: bitecs.NewBaseSystem("Movement"),
		position:   position,
		velocity:   velocity,
	})
	if err := world.Initialize(); err != nil {
		fmt.Println(err)
		return
	}

	for i := 0; i < 5; i++ {
		position.Add(world, world.CreateEmptyEntity())
	}
	player := world.CreateEmptyEntity()
	position.AddValue(world, player, Position{X: 10, Y: 20})
	velocity.AddValue(world, player, Velocity{X: 1, Y: 2})
	name.AddValue(world, player, Name{Value: "Player"})

	fmt.Printf("Before update: %d entities\n", world.EntityCount())
	world.Update(1)
	fmt.Printf("After update: %d entities\n", world.EntityCount())

	pos := position.Get(world, player)
	fmt.Printf("%s at (%.1f, %.1f)\n", name.Get(world, player).Value, pos.X, pos.Y)

	// Output:
	// Before update: 0 entities
	// After update: 6 entities
	// Player at (11.0, 22.0)
}

// Example_queries shows how the different rule kinds combine
func Example_queries() {
	registry := bitecs.Factory.NewRegistry()
	position, _ := bitecs.FactoryNewComponent[Position](registry, "Position")
	velocity, _ := bitecs.FactoryNewComponent[Velocity](registry, "Velocity")
	name, _ := bitecs.FactoryNewComponent[Name](registry, "Name")

	world := bitecs.Factory.NewWorld(registry, "queries", 0)
	world.Initialize()

	spawn := func(n int, comps ...func(bitecs.Entity)) {
		for i := 0; i < n; i++ {
			e := world.CreateEmptyEntity()
			for _, add := range comps {
				add(e)
			}
		}
	}
	withPos := func(e bitecs.Entity) { position.Add(world, e) }
	withVel := func(e bitecs.Entity) { velocity.Add(world, e) }
	withName := func(e bitecs.Entity) { name.Add(world, e) }

	spawn(3, withPos)
	spawn(3, withPos, withVel)
	spawn(3, withPos, withName)
	spawn(3, withPos, withVel, withName)
	world.Update(0)

	all, _ := world.Matcher().AllOf(position, velocity).Build()
	fmt.Printf("AllOf matched %d entities\n", all.Len())

	either, _ := world.Matcher().AnyOf(velocity, name).Build()
	fmt.Printf("AnyOf matched %d entities\n", either.Len())

	exclude, _ := world.Matcher().AllOf(position).ExcludeOf(velocity).Build()
	fmt.Printf("ExcludeOf matched %d entities\n", exclude.Len())

	// Output:
	// AllOf matched 6 entities
	// AnyOf matched 9 entities
	// ExcludeOf matched 6 entities
}

// Example_templates shows entity creation from JSON archetypes
func Example_templates() {
	registry := bitecs.Factory.NewRegistry()
	position, _ := bitecs.FactoryNewComponent[Position](registry, "Position")
	bitecs.FactoryNewComponent[Name](registry, "Name")

	err := registry.ParseTemplates([]byte(`{
		"Enemy": {
			"Name": {"Value": "Goblin"},
			"Position": {"X": 3, "Y": 4}
		}
	}`))
	if err != nil {
		fmt.Println(err)
		return
	}

	world := bitecs.Factory.NewWorld(registry, "templates", 0)
	world.Initialize()

	e, components, _ := world.CreateEntity("Enemy", map[string]json.RawMessage{
		"Name": json.RawMessage(`{"Value": "Goblin Chief"}`),
	})
	world.Update(0)

	fmt.Println(components["Name"].(*Name).Value)
	pos := position.Get(world, e)
	fmt.Printf("at (%.0f, %.0f)\n", pos.X, pos.Y)

	// Output:
	// Goblin Chief
	// at (3, 4)
}
