// Package simevent defines the tagged union of events the simulation
// kernel understands (spec.md §3 "Event"). It is intentionally a leaf
// package — world, job, and dispatch code all depend on it, but it depends
// on nothing but ffxivmath's DoT snapshot type, so it can be shared without
// import cycles.
//
// The union is modeled the way the teacher's own event/type.go models game
// events: a Kind enum plus an opaque Payload, rather than a Rust-style enum
// with inline variant fields, since Go has no sum types.
package simevent

import "xivsim/internal/ffxivmath"

// ActorID identifies an actor by its stable index into the world's actor
// slice.
type ActorID uint16

// CooldownGroup names a bucket of abilities that share recharge timing.
type CooldownGroup string

// Action identifies a castable ability. Job is the job tag the ability
// belongs to ("DNC"); Name is unique within that job.
type Action struct {
	Job  string
	Name string
}

// Kind discriminates the Event union.
type Kind int

const (
	KindActorTick Kind = iota
	KindMpTick
	KindStartCast
	KindCastSnap
	KindDamage
	KindStatus
	KindAddMP
	KindAdvanceCD
	KindJob
	KindUntargetable
	KindTargetable
	KindCdEnd
	KindAutoAttack
	KindCheckStatusFalloff
	KindOther
	KindSimStart
	KindPartnerEsprit
)

func (k Kind) String() string {
	switch k {
	case KindActorTick:
		return "ActorTick"
	case KindMpTick:
		return "MpTick"
	case KindStartCast:
		return "StartCast"
	case KindCastSnap:
		return "CastSnap"
	case KindDamage:
		return "Damage"
	case KindStatus:
		return "Status"
	case KindAddMP:
		return "AddMp"
	case KindAdvanceCD:
		return "AdvCd"
	case KindJob:
		return "Job"
	case KindUntargetable:
		return "Untargetable"
	case KindTargetable:
		return "Targetable"
	case KindCdEnd:
		return "CdEnd"
	case KindAutoAttack:
		return "AutoAttack"
	case KindCheckStatusFalloff:
		return "CheckStatusFalloff"
	case KindOther:
		return "Other"
	case KindSimStart:
		return "SimStart"
	case KindPartnerEsprit:
		return "PartnerEsprit"
	default:
		return "Unknown"
	}
}

// Event is a single tagged-union value: Kind says which payload type to
// expect, Payload carries the variant's fields.
type Event struct {
	Kind    Kind
	Payload any
}

// StatusApplyKind selects the re-application policy for a Status event, per
// spec.md §4.D's policy table.
type StatusApplyKind int

const (
	StatusKindApply StatusApplyKind = iota
	StatusKindApplyDot
	StatusKindRemove
	StatusKindFallOff
	StatusKindRemoveStacks
	StatusKindApplyOrExtend
	StatusKindApplyOrAddStacks
)

// StatusEffect identifies a status/buff/debuff. Unique statuses collapse
// their (source, effect) map key to just effect, per spec.md §3.
type StatusEffect struct {
	ID     int32
	Name   string
	Unique bool
}

// Payload types, one per Kind.

type ActorTickPayload struct{ Actor ActorID }

// MpTickPayload reports a periodic MP regen tick. From/To/Tick are filled
// in by the dispatcher at apply time (From/To the saturated MP before and
// after, Tick the raw regen amount) so simreport can print them without
// re-deriving the regen math.
type MpTickPayload struct {
	Actor ActorID
	From  uint16
	To    uint16
	Tick  uint16
}

type StartCastPayload struct {
	Actor  ActorID
	Action Action
}

type CastSnapPayload struct {
	Actor  ActorID
	Action Action
}

type DamagePayload struct {
	Source ActorID
	Target ActorID
	Action Action
	Amount uint64
}

type StatusPayload struct {
	Kind      StatusApplyKind
	Source    ActorID
	HasSource bool
	Target    ActorID
	Effect    StatusEffect
	Duration  uint32
	Stacks    uint8
	Max       uint8
	Snapshot  *ffxivmath.EotSnapshot // only set for StatusKindApplyDot
}

type AddMPPayload struct {
	Actor  ActorID
	Amount uint16
}

type AdvanceCDPayload struct {
	Actor ActorID
	Group CooldownGroup
	Delta uint32
}

// JobPayload carries a job-specific event. Event is opaque here (only the
// job module that produced it knows how to interpret it, e.g. combo/gauge
// notifications) to keep simevent free of per-job dependencies.
type JobPayload struct {
	Actor ActorID
	Event any
}

type UntargetablePayload struct{ Actor ActorID }

type TargetablePayload struct{ Actor ActorID }

// CdEndKind distinguishes which recharge notification a CdEnd event
// represents, per spec.md §3.
type CdEndKind int

const (
	CdEndGCD CdEndKind = iota
	CdEndLock
	CdEndJobCd
)

type CdEndPayload struct {
	Actor ActorID
	Kind  CdEndKind
	Group CooldownGroup // only meaningful when Kind == CdEndJobCd
}

type AutoAttackPayload struct{ Actor ActorID }

type CheckStatusFalloffPayload struct{}

type OtherPayload struct{}

type SimStartPayload struct{}

// PartnerEspritPayload schedules one partner-esprit roll for Actor. The job
// module makes the roll and credits esprit itself while handling the event;
// no producer sets Granted and nothing reads it.
type PartnerEspritPayload struct {
	Actor   ActorID
	Granted bool
}
