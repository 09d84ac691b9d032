// Package simworld owns the actor table and the millisecond clock, per
// spec.md §4.B. It knows nothing about dispatch order or job logic — it
// only advances time and reports what fell due along the way.
package simworld

import "xivsim/internal/simevent"

// World owns the ordered sequence of actors and the simulation clock.
type World struct {
	Clock     uint32
	InCombat  uint32
	Actors    []*Actor
}

// New builds an empty World. Actors are appended with AddActor before the
// simulation starts; per spec.md §3, actors are never destroyed once
// created.
func New(inCombat uint32) *World {
	return &World{InCombat: inCombat}
}

// AddActor appends an actor, assigning it the next stable ActorID.
func (w *World) AddActor(build func(id simevent.ActorID) *Actor) *Actor {
	id := simevent.ActorID(len(w.Actors))
	a := build(id)
	w.Actors = append(w.Actors, a)
	return a
}

// Actor returns the actor at id. Callers are trusted to pass valid ids —
// spec.md treats an out-of-range id as a hard programming error, not a
// recoverable condition.
func (w *World) Actor(id simevent.ActorID) *Actor {
	return w.Actors[id]
}

// InCombatNow reports whether the clock has reached the combat-start
// threshold.
func (w *World) InCombatNow() bool {
	return w.Clock >= w.InCombat
}

// Advance moves the clock forward by dt, advancing every actor's
// cooldowns/GCD/lock/job timers and every resident status entry's
// remaining time, posting Status{FallOff} events at the exact
// zero-crossing instant for any status that expires inside this step. It
// implements spec.md §4.B's three-step algorithm in order.
func (w *World) Advance(dt uint32, push func(time uint32, e simevent.Event)) {
	start := w.Clock

	for _, a := range w.Actors {
		a.advancePlayer(dt)
	}

	for _, a := range w.Actors {
		for _, f := range a.advanceStatuses(dt) {
			at := start + f.offset
			push(at, simevent.Event{
				Kind: simevent.KindStatus,
				Payload: simevent.StatusPayload{
					Kind:      simevent.StatusKindFallOff,
					Source:    f.entry.Source,
					HasSource: f.entry.HasSource,
					Target:    a.ID,
					Effect:    f.entry.Effect,
				},
			})
		}
	}

	w.Clock += dt
}
