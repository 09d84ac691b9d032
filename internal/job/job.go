// Package job defines the contract every job module (currently only
// Dancer, in internal/job/dnc) implements: check whether an action can be
// cast, resolve its effects at the cast snapshot, and react to any event
// the dispatcher applies. This mirrors the original's xivc_core::job
// trait surface (check_cast/cast_snap/event over a DynJob), generalized
// from "the Dancer job" to "a job" even though only one is implemented.
package job

import (
	"github.com/rs/zerolog"

	"xivsim/internal/simevent"
	"xivsim/internal/simrng"
	"xivsim/internal/simworld"
)

// CooldownUse names one cooldown-group consumption a cast requires.
type CooldownUse struct {
	Group    simevent.CooldownGroup
	Duration uint32
	Charges  uint8
}

// CastInfo is what CheckCast reports back to the cast pipeline: timing,
// MP cost, and up to two cooldown groups consumed (most actions use one;
// AltCD is the optional second group, and no Dancer action sets it).
type CastInfo struct {
	GCD   uint32
	Lock  uint32
	Snap  uint32
	MP    uint16
	CD    *CooldownUse
	AltCD *CooldownUse
}

// Sink is how CastSnap and Event produce follow-up consequences: posting
// events at a delay from the current dispatch time, and sampling the
// shared RNG for damage/proc rolls.
type Sink interface {
	Push(delay uint32, e simevent.Event)
	RNG() *simrng.Source
	Log() zerolog.Logger
}

// Module is the per-job behavior contract. State is the job's own mutable
// gauge/combo/step data (e.g. *dnc.State), passed through opaquely so this
// package stays job-agnostic.
type Module interface {
	// CheckCast validates and prices an action. A non-nil error means the
	// action cannot be cast right now; per spec.md §7 this is always a
	// fatal job rejection, since scenarios are presumed valid rotations.
	CheckCast(world *simworld.World, actor simevent.ActorID, action simevent.Action) (CastInfo, error)

	// CastSnap resolves an action's effects at its snapshot instant.
	CastSnap(world *simworld.World, actor simevent.ActorID, action simevent.Action, sink Sink)

	// Event reacts to any dispatched event after the world has applied it.
	Event(world *simworld.World, actor simevent.ActorID, e simevent.Event, sink Sink)
}
