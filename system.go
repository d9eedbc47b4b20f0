package bitecs

import "github.com/rotisserie/eris"

var _ System = &BaseSystem{}

// frameThrottle runs something every interval-th frame and hands it the time
// accumulated since its last run. The first frame always runs.
type frameThrottle struct {
	interval int
	count    int
	elapsed  float64
}

func newFrameThrottle(interval int) frameThrottle {
	return frameThrottle{interval: max(1, interval)}
}

func (t *frameThrottle) tick(dt float64) (float64, bool) {
	t.interval = max(1, t.interval)
	t.elapsed += dt
	if t.count%t.interval != 0 {
		t.count++
		return 0, false
	}
	elapsed := t.elapsed
	t.elapsed = 0
	t.count = 1
	return elapsed, true
}

func (t *frameThrottle) reset() {
	t.count = 0
	t.elapsed = 0
}

// BaseSystem carries the bookkeeping every system needs. Embed it and
// implement Update; implement Initializer to declare the query:
//
//	type Movement struct {
//		bitecs.BaseSystem
//	}
//
//	func (m *Movement) OnInit() error {
//		m.Matcher().AllOf(position, velocity)
//		return nil
//	}
type BaseSystem struct {
	name     string
	disabled bool
	throttle frameThrottle

	world   *World
	matcher *Matcher
	query   *Query
}

func NewBaseSystem(name string) BaseSystem {
	return BaseSystem{name: name, throttle: newFrameThrottle(1)}
}

func (s *BaseSystem) Name() string {
	return s.name
}

// Update is a no-op. Embedding types provide their own.
func (s *BaseSystem) Update(float64) {}

func (s *BaseSystem) Enabled() bool {
	return !s.disabled
}

func (s *BaseSystem) SetEnabled(enabled bool) {
	s.disabled = !enabled
}

// SetFrameInterval makes the system run every n-th frame with the elapsed
// time of the skipped frames added up.
func (s *BaseSystem) SetFrameInterval(n int) {
	s.throttle = newFrameThrottle(n)
}

// Clear re-enables the system and restarts its frame counting.
func (s *BaseSystem) Clear() {
	s.disabled = false
	s.throttle.reset()
}

func (s *BaseSystem) World() *World {
	return s.world
}

// Matcher returns the matcher the system query is built from. Rules must be
// added before the World is initialized, typically in OnInit.
func (s *BaseSystem) Matcher() *Matcher {
	if s.matcher == nil {
		s.matcher = newMatcher(s.world)
	}
	return s.matcher
}

// Query returns the system query, or nil if the system never asked for a
// Matcher.
func (s *BaseSystem) Query() *Query {
	return s.query
}

func (s *BaseSystem) initialize(w *World, self System) error {
	s.world = w
	if init, ok := self.(Initializer); ok {
		if err := init.OnInit(); err != nil {
			return eris.Wrapf(err, "initializing system %q", s.name)
		}
	}
	if s.matcher == nil {
		return nil
	}
	q, err := s.matcher.Build()
	if err != nil {
		return eris.Wrapf(err, "building query of system %q", s.name)
	}
	s.query = q
	return nil
}

func (s *BaseSystem) advance(dt float64) (float64, bool) {
	return s.throttle.tick(dt)
}
