package bitecs

import (
	"errors"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder remembers the dt of every Update call.
type recorder struct {
	BaseSystem
	calls []float64
}

func newRecorder(name string) *recorder {
	return &recorder{BaseSystem: NewBaseSystem(name)}
}

func (r *recorder) Update(dt float64) {
	r.calls = append(r.calls, dt)
}

// movement integrates Velocity into Position.
type movement struct {
	BaseSystem
	position AccessibleComponent[Position]
	velocity AccessibleComponent[Velocity]
}

func (m *movement) OnInit() error {
	m.Matcher().AllOf(m.position, m.velocity)
	return nil
}

func (m *movement) Update(dt float64) {
	for e := range m.Query().Entities() {
		pos := m.position.Get(m.World(), e)
		vel := m.velocity.Get(m.World(), e)
		pos.X += vel.X * dt
		pos.Y += vel.Y * dt
	}
}

type failingInit struct {
	BaseSystem
}

var errBadInit = errors.New("bad init")

func (f *failingInit) OnInit() error {
	return errBadInit
}

func TestSystemGroupFrameInterval(t *testing.T) {
	tests := []struct {
		name     string
		interval int
		frames   int
		want     []float64
	}{
		{"every frame", 1, 3, []float64{1, 1, 1}},
		{"floor of one", 0, 2, []float64{1, 1}},
		{"every third frame", 3, 7, []float64{1, 3, 3}},
		{"every other frame", 2, 5, []float64{1, 2, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newRecorder("rec")
			group := Factory.NewSystemGroup("group", tt.interval)
			group.Add(rec)
			for i := 0; i < tt.frames; i++ {
				group.Update(1)
			}
			assert.Equal(t, tt.want, rec.calls)
		})
	}
}

func TestLeafFrameInterval(t *testing.T) {
	rec := newRecorder("rec")
	rec.SetFrameInterval(2)
	group := Factory.NewSystemGroup("group", 1).Add(rec)
	for i := 0; i < 5; i++ {
		group.Update(0.5)
	}
	assert.Equal(t, []float64{0.5, 1, 1}, rec.calls)
}

func TestSystemEnableDisable(t *testing.T) {
	a, b := newRecorder("a"), newRecorder("b")
	inner := Factory.NewSystemGroup("inner", 1).Add(b)
	root := Factory.NewSystemGroup("root", 1).Add(a, inner)

	a.SetEnabled(false)
	root.Update(1)
	assert.Empty(t, a.calls)
	assert.Len(t, b.calls, 1)

	inner.SetEnabled(false)
	root.Update(1)
	assert.Len(t, b.calls, 1, "disabled group skips its subtree")

	root.Clear()
	assert.True(t, a.Enabled())
	assert.True(t, inner.Enabled())
	root.Update(1)
	assert.Len(t, a.calls, 1)
	assert.Len(t, b.calls, 2)
}

func TestFindSystem(t *testing.T) {
	leaf := newRecorder("leaf")
	deep := Factory.NewSystemGroup("deep", 1).Add(leaf)
	root := Factory.NewSystemGroup("root", 1).Add(newRecorder("first"), deep)

	found, ok := root.FindSystem("leaf")
	require.True(t, ok)
	assert.Same(t, leaf, found)

	found, ok = root.FindSystem("deep")
	require.True(t, ok)
	assert.Same(t, deep, found)

	_, ok = root.FindSystem("missing")
	assert.False(t, ok)
}

func TestSystemClearResetsThrottle(t *testing.T) {
	rec := newRecorder("rec")
	group := Factory.NewSystemGroup("group", 3).Add(rec)
	group.Update(1)
	group.Update(1)
	group.Clear()
	group.Update(1)
	assert.Equal(t, []float64{1, 1}, rec.calls, "first frame after Clear runs")
}

func TestMovementSystem(t *testing.T) {
	registry := Factory.NewRegistry()
	position, err := FactoryNewComponent[Position](registry, "Position")
	require.NoError(t, err)
	velocity, err := FactoryNewComponent[Velocity](registry, "Velocity")
	require.NoError(t, err)

	move := &movement{BaseSystem: NewBaseSystem("movement"), position: position, velocity: velocity}
	w := Factory.NewWorld(registry, "movement", 0)
	require.NoError(t, w.AddSystem(move))
	require.NoError(t, w.Initialize())
	require.NotNil(t, move.Query())
	assert.Same(t, w, move.World())

	e := w.CreateEmptyEntity()
	position.Add(w, e)
	velocity.AddValue(w, e, Velocity{X: 2, Y: -1})
	still := w.CreateEmptyEntity()
	position.AddValue(w, still, Position{X: 5})

	w.Update(0.5)
	w.Update(0.5)

	assert.Equal(t, Position{X: 2, Y: -1}, *position.Get(w, e))
	assert.Equal(t, Position{X: 5}, *position.Get(w, still))
}

func TestWorldSystemNames(t *testing.T) {
	w := newTestWorld(t, MaskAuto, newRecorder("a"))

	err := w.AddSystem(newRecorder("a"))
	var dup DuplicateSystemError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "a", dup.Name)

	group := Factory.NewSystemGroup("g", 1).Add(newRecorder("b"), newRecorder("b"))
	assert.ErrorAs(t, w.AddSystem(group), &dup)

	late := newRecorder("late")
	require.NoError(t, w.AddSystem(late))
	assert.Same(t, w.World, late.World(), "systems added after Initialize are initialized")

	found, err := w.System("late")
	require.NoError(t, err)
	assert.Same(t, late, found)

	_, err = w.System("nope")
	var notFound SystemNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestAddSystemByName(t *testing.T) {
	registry := Factory.NewRegistry()
	require.NoError(t, registry.RegisterSystem("rec", func() System { return newRecorder("rec") }))
	assert.ErrorAs(t, registry.RegisterSystem("rec", nil), new(DuplicateSystemError))

	w := Factory.NewWorld(registry, "byname", 0)
	s, err := w.AddSystemByName("rec")
	require.NoError(t, err)
	require.NoError(t, w.Initialize())

	w.Update(1)
	assert.Equal(t, []float64{1}, s.(*recorder).calls)

	_, err = w.AddSystemByName("ghost")
	assert.ErrorAs(t, err, new(UnregisteredSystemError))
	assert.True(t, eris.Is(registry.RegisterSystem("late", nil), ErrRegistryFrozen))
}

func TestSystemInitError(t *testing.T) {
	w := Factory.NewWorld(Factory.NewRegistry(), "failing", 0)
	require.NoError(t, w.AddSystem(&failingInit{BaseSystem: NewBaseSystem("failing")}))
	err := w.Initialize()
	require.Error(t, err)
	assert.True(t, eris.Is(err, errBadInit))
}

// flaky fails OnInit until fail is cleared.
type flaky struct {
	BaseSystem
	fail     bool
	position AccessibleComponent[Position]
	calls    int
}

func (f *flaky) OnInit() error {
	if f.fail {
		return errBadInit
	}
	f.Matcher().AllOf(f.position)
	return nil
}

func (f *flaky) Update(float64) {
	f.calls++
}

func TestFailedInitializeLeavesWorldUninitialized(t *testing.T) {
	registry := Factory.NewRegistry()
	position, err := FactoryNewComponent[Position](registry, "Position")
	require.NoError(t, err)
	rec := newRecorder("rec")
	sys := &flaky{BaseSystem: NewBaseSystem("flaky"), fail: true, position: position}

	w := Factory.NewWorld(registry, "retry", 0)
	require.NoError(t, w.AddSystem(rec))
	require.NoError(t, w.AddSystem(sys))

	err = w.Initialize()
	require.True(t, eris.Is(err, errBadInit))
	assert.False(t, w.Initialized())
	w.Update(1)
	assert.Empty(t, rec.calls, "systems do not run on a failed world")
	assert.Zero(t, sys.calls)

	sys.fail = false
	require.NoError(t, w.Initialize(), "a failed Initialize can be retried")
	assert.True(t, w.Initialized())
	require.NotNil(t, sys.Query())

	e := w.CreateEmptyEntity()
	position.Add(w, e)
	w.Update(1)
	assert.True(t, sys.Query().Contains(e))
	assert.Equal(t, []float64{1}, rec.calls)
	assert.Equal(t, 1, sys.calls)
}

func TestDuplicateNamesFailBeforeFreezing(t *testing.T) {
	registry := Factory.NewRegistry()
	w := Factory.NewWorld(registry, "dups", 0)
	w.Systems().Add(newRecorder("twin"), newRecorder("twin"))

	assert.ErrorAs(t, w.Initialize(), new(DuplicateSystemError))
	assert.False(t, w.Initialized())
	assert.False(t, registry.Frozen())
}
