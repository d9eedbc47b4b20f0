package bitecs

import "github.com/rotisserie/eris"

var _ System = &SystemGroup{}

// SystemGroup runs its children in insertion order. With a frame interval of
// n it runs them every n-th frame, passing the summed dt of the frames it
// skipped. A disabled group skips its whole subtree.
type SystemGroup struct {
	name     string
	disabled bool
	throttle frameThrottle
	systems  []System
	world    *World
}

func newSystemGroup(name string, frameInterval int) *SystemGroup {
	return &SystemGroup{
		name:     name,
		throttle: newFrameThrottle(frameInterval),
	}
}

func (g *SystemGroup) Name() string {
	return g.name
}

// Add appends children. Names are checked for collisions when the World
// takes the group.
func (g *SystemGroup) Add(systems ...System) *SystemGroup {
	g.systems = append(g.systems, systems...)
	return g
}

func (g *SystemGroup) Systems() []System {
	return g.systems
}

func (g *SystemGroup) FrameInterval() int {
	return g.throttle.interval
}

func (g *SystemGroup) Update(dt float64) {
	if g.disabled {
		return
	}
	elapsed, ok := g.throttle.tick(dt)
	if !ok {
		return
	}
	for _, s := range g.systems {
		if !s.Enabled() {
			continue
		}
		if sdt, run := s.advance(elapsed); run {
			s.Update(sdt)
		}
	}
}

func (g *SystemGroup) Enabled() bool {
	return !g.disabled
}

func (g *SystemGroup) SetEnabled(enabled bool) {
	g.disabled = !enabled
}

// FindSystem searches the subtree depth first, in insertion order.
func (g *SystemGroup) FindSystem(name string) (System, bool) {
	for _, s := range g.systems {
		if s.Name() == name {
			return s, true
		}
		if child, ok := s.(*SystemGroup); ok {
			if found, ok := child.FindSystem(name); ok {
				return found, true
			}
		}
	}
	return nil, false
}

// Clear resets frame counting and re-enables the group and its subtree.
func (g *SystemGroup) Clear() {
	g.disabled = false
	g.throttle.reset()
	for _, s := range g.systems {
		s.Clear()
	}
}

func (g *SystemGroup) initialize(w *World, _ System) error {
	g.world = w
	for _, s := range g.systems {
		if err := s.initialize(w, s); err != nil {
			return eris.Wrapf(err, "initializing group %q", g.name)
		}
	}
	return nil
}

// advance lets the group apply its own interval in Update.
func (g *SystemGroup) advance(dt float64) (float64, bool) {
	return dt, true
}

// walk visits every system of the subtree, groups included, depth first.
func (g *SystemGroup) walk(fn func(System)) {
	for _, s := range g.systems {
		fn(s)
		if child, ok := s.(*SystemGroup); ok {
			child.walk(fn)
		}
	}
}
