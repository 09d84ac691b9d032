package simworld

import (
	"xivsim/internal/ffxivmath"
	"xivsim/internal/simevent"
)

// JobState is the mutable, job-specific state a player actor carries
// (gauge, combo, step queue, …). The world only needs to advance its
// internal timers each tick; everything else is job-module business, kept
// opaque here to avoid simworld depending on any concrete job package.
type JobState interface {
	Advance(dt uint32)
}

// PlayerRecord holds the fields spec.md §3 reserves for player-controlled
// actors only (enemies/NPCs have none).
type PlayerRecord struct {
	Job string

	GCD  uint32 // ms remaining, saturating
	Lock uint32 // animation-lock ms remaining, saturating

	MP uint16 // 0..10000

	Cooldowns map[simevent.CooldownGroup]*ActionCd

	State JobState // job-specific gauge/combo/step state

	Math *ffxivmath.Math

	Target    simevent.ActorID
	HasTarget bool
}

// Actor is one combatant: a player or an enemy/NPC, distinguished by
// whether Player is non-nil.
type Actor struct {
	ID          simevent.ActorID
	Name        string
	Targetable  bool
	damage      uint64
	statuses    *statusTable
	Player      *PlayerRecord
}

// NewActor constructs an enemy/NPC actor (no PlayerRecord).
func NewActor(id simevent.ActorID, name string) *Actor {
	return &Actor{ID: id, Name: name, Targetable: true, statuses: newStatusTable()}
}

// NewPlayerActor constructs a player-controlled actor.
func NewPlayerActor(id simevent.ActorID, name string, player *PlayerRecord) *Actor {
	return &Actor{ID: id, Name: name, Targetable: true, statuses: newStatusTable(), Player: player}
}

// Damage returns the actor's accumulated damage counter.
func (a *Actor) Damage() uint64 { return a.damage }

// AddDamage is the sole writer of the damage counter, used by both
// event-sourced Damage application and the inline auto-attack/DoT-tick
// paths, so there is exactly one place that can double- or under-count.
func (a *Actor) AddDamage(amount uint64) {
	a.damage += amount
}

// Status exposes a resident status entry by key, if present.
func (a *Actor) Status(source simevent.ActorID, hasSource bool, effect simevent.StatusEffect) (*StatusEntry, bool) {
	return a.statuses.get(source, hasSource, effect)
}

// ApplyStatus resolves a Status event against this actor's table.
func (a *Actor) ApplyStatus(p simevent.StatusPayload) (key statusKey, armFalloff bool, delay uint32) {
	return a.statuses.apply(p)
}

// DotSnapshots returns every resident status entry carrying a DoT
// snapshot, for ActorTick damage resolution.
func (a *Actor) DotSnapshots() []*StatusEntry {
	return a.statuses.dotSnapshots()
}

// advanceStatuses decrements every resident status by dt and returns the
// ones that fell off, per spec.md §4.B step 2.
func (a *Actor) advanceStatuses(dt uint32) []fallenEntry {
	return a.statuses.advance(dt)
}

// advancePlayer advances a player actor's timers by dt: cooldown groups,
// GCD, lock, and job state, per spec.md §4.B step 1.
func (a *Actor) advancePlayer(dt uint32) {
	p := a.Player
	if p == nil {
		return
	}
	for _, cd := range p.Cooldowns {
		cd.Advance(dt)
	}
	p.GCD = saturateSub(p.GCD, dt)
	p.Lock = saturateSub(p.Lock, dt)
	if p.State != nil {
		p.State.Advance(dt)
	}
}

func saturateSub(v, dt uint32) uint32 {
	if v > dt {
		return v - dt
	}
	return 0
}
