// Profiling:
// go build ./profile/entities
// go tool pprof -http=":8000" -nodefraction=0.001 ./entities mem.pprof

package main

import (
	"github.com/TheBitDrifter/bitecs"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/profile"
	"github.com/rs/zerolog"
)

type transform struct {
	Pos mgl64.Vec3
	Rot mgl64.Quat
}

type motion struct {
	Vel  mgl64.Vec3
	Spin float64
}

// integrate moves every entity with a transform and a motion.
type integrate struct {
	bitecs.BaseSystem
	transform bitecs.AccessibleComponent[transform]
	motion    bitecs.AccessibleComponent[motion]
}

func (s *integrate) OnInit() error {
	s.Matcher().AllOf(s.transform, s.motion)
	return nil
}

func (s *integrate) Update(dt float64) {
	w := s.World()
	for e := range s.Query().Entities() {
		t := s.transform.Get(w, e)
		m := s.motion.Get(w, e)
		t.Pos = t.Pos.Add(m.Vel.Mul(dt))
		t.Rot = t.Rot.Mul(mgl64.QuatRotate(m.Spin*dt, mgl64.Vec3{0, 1, 0})).Normalize()
	}
}

func main() {
	rounds := 50
	iters := 1000
	entities := 1000
	p := profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	run(rounds, iters, entities)
	p.Stop()
}

func run(rounds, iters, numEntities int) {
	bitecs.Config.SetLogger(zerolog.Nop())
	for range rounds {
		registry := bitecs.Factory.NewRegistry()
		tr, _ := bitecs.FactoryNewComponent[transform](registry, "transform")
		mo, _ := bitecs.FactoryNewComponent[motion](registry, "motion")

		w := bitecs.Factory.NewWorld(registry, "profile", numEntities)
		sys := &integrate{BaseSystem: bitecs.NewBaseSystem("integrate"), transform: tr, motion: mo}
		if err := w.AddSystem(sys); err != nil {
			panic(err)
		}
		if err := w.Initialize(); err != nil {
			panic(err)
		}

		for range iters {
			for i := range numEntities {
				e := w.CreateEmptyEntity()
				tr.AddValue(w, e, transform{Rot: mgl64.QuatIdent()})
				mo.AddValue(w, e, motion{Vel: mgl64.Vec3{float64(i), 1, 0}, Spin: 0.1})
			}
			w.Update(1.0 / 60)
			for e := range sys.Query().Entities() {
				w.RemoveEntity(e)
			}
			w.Update(1.0 / 60)
		}
	}
}
