// Package simdispatch is the main event pump: it owns the queue/world
// pairing and drives the cast pipeline, job reactions, and AI coroutines
// in the order original_source/src/main.rs's Simulation::step fixes —
// world advance, then event application, then job fan-out, then AI
// resume — generalized from that file's single-job, list-driven rotation
// into the job.Module/aicoro.Script contracts spec.md describes.
package simdispatch

import (
	"github.com/rs/zerolog"

	"xivsim/internal/aicoro"
	"xivsim/internal/ffxivmath"
	"xivsim/internal/job"
	"xivsim/internal/simerr"
	"xivsim/internal/simevent"
	"xivsim/internal/simqueue"
	"xivsim/internal/simrng"
	"xivsim/internal/simworld"
)

// Dispatcher drives one simulation run to completion.
type Dispatcher struct {
	world  *simworld.World
	queue  *simqueue.Queue[simevent.Event]
	rng    *simrng.Source
	module job.Module
	end    uint32
	log    zerolog.Logger

	ais map[simevent.ActorID]*aicoro.Coroutine

	// Report is called for every event the caller has opted into via the
	// scenario's report flags; nil means "don't report anything."
	Report func(time uint32, e simevent.Event)
}

// New builds a Dispatcher. scripts maps each player actor that has a
// rotation to the script driving it; actors absent from the map are
// never resumed (enemies, or players simulated without an AI).
func New(world *simworld.World, queue *simqueue.Queue[simevent.Event], rng *simrng.Source, module job.Module, end uint32, scripts map[simevent.ActorID]aicoro.Script, log zerolog.Logger) *Dispatcher {
	ais := make(map[simevent.ActorID]*aicoro.Coroutine, len(scripts))
	for id, s := range scripts {
		ais[id] = aicoro.New(s)
	}
	return &Dispatcher{world: world, queue: queue, rng: rng, module: module, end: end, ais: ais, log: log}
}

func (d *Dispatcher) push(time uint32, e simevent.Event) { d.queue.Push(time, e) }

// Run drives the dispatcher until the queue empties or the next event
// reaches d.end, implementing spec.md §4.C's four-step loop. It returns
// the first invariant violation encountered, if any; panics only surface
// for the coroutine-borrowed-context invariant, matching the original's
// deliberate panic there (see simerr.ErrBorrowedContext and DESIGN.md).
func (d *Dispatcher) Run() error {
	d.push(d.world.Clock, simevent.Event{Kind: simevent.KindSimStart, Payload: simevent.SimStartPayload{}})

	for {
		t, e, ok := d.queue.Pop()
		if !ok || t >= d.end {
			return nil
		}

		switch {
		case t > d.world.Clock:
			d.world.Advance(t-d.world.Clock, d.push)
		case t < d.world.Clock:
			return simerr.ErrClockRegression
		}

		d.log.Trace().Uint32("t", t).Str("kind", e.Kind.String()).Msg("dispatch")

		if err := d.apply(t, e); err != nil {
			return err
		}

		sink := jobSink{q: d.queue, rng: d.rng, now: t, log: d.log}
		for _, actor := range d.world.Actors {
			if actor.Player == nil {
				continue
			}
			d.module.Event(d.world, actor.ID, e, sink)
		}

		for _, actor := range d.world.Actors {
			id := actor.ID
			co, ok := d.ais[id]
			if !ok {
				continue
			}
			if co.Done() {
				delete(d.ais, id)
				continue
			}
			ctx := aicoro.NewResumeCtx(t, e, id, queueAdapter{d.queue})
			co.Resume(ctx)
		}
	}
}

func (d *Dispatcher) apply(t uint32, e simevent.Event) error {
	switch e.Kind {
	case simevent.KindActorTick:
		p := e.Payload.(simevent.ActorTickPayload)
		actor := d.world.Actor(p.Actor)
		for _, entry := range actor.DotSnapshots() {
			crit := d.rng.CritRoll(entry.Snapshot.CritChanceBP)
			dhit := d.rng.DirectHitRoll(entry.Snapshot.DHitChanceBP)
			variance := d.rng.DamageVariance()
			actor.AddDamage(entry.Snapshot.EotResult(crit, dhit, variance))
		}
		d.push(t+3000, e)

	case simevent.KindMpTick:
		p := e.Payload.(simevent.MpTickPayload)
		if player := d.world.Actor(p.Actor).Player; player != nil {
			tick := player.Math.MpRegen()
			from := player.MP
			player.MP = saturateAddMP(player.MP, tick)
			d.reportEvent(t, simevent.Event{Kind: simevent.KindMpTick, Payload: simevent.MpTickPayload{
				Actor: p.Actor, From: from, To: player.MP, Tick: tick,
			}})
		}
		d.push(t+3000, e)

	case simevent.KindAutoAttack:
		p := e.Payload.(simevent.AutoAttackPayload)
		actor := d.world.Actor(p.Actor)
		if player := actor.Player; player != nil && player.HasTarget {
			target := d.world.Actor(player.Target)
			if target.Targetable {
				crit := d.rng.CritRoll(player.Math.EffectiveCritChanceBP(ffxivmath.Buffs{}))
				dhit := d.rng.DirectHitRoll(player.Math.EffectiveDHitChanceBP(ffxivmath.Buffs{}))
				variance := d.rng.DamageVariance()
				damage := player.Math.AutoAttackDamage(100, crit, dhit, variance, ffxivmath.Buffs{})
				target.AddDamage(damage)
				d.reportEvent(t, simevent.Event{Kind: simevent.KindDamage, Payload: simevent.DamagePayload{
					Source: p.Actor, Target: player.Target, Action: simevent.Action{Job: player.Job, Name: "auto_attack"}, Amount: damage,
				}})
			}
		}
		d.push(t+3000, e)

	case simevent.KindDamage:
		p := e.Payload.(simevent.DamagePayload)
		d.world.Actor(p.Target).AddDamage(p.Amount)
		d.reportEvent(t, e)

	case simevent.KindStatus:
		p := e.Payload.(simevent.StatusPayload)
		_, armFalloff, falloffDelay := d.world.Actor(p.Target).ApplyStatus(p)
		if armFalloff {
			d.push(t+falloffDelay, simevent.Event{Kind: simevent.KindCheckStatusFalloff, Payload: simevent.CheckStatusFalloffPayload{}})
		}
		d.reportEvent(t, e)

	case simevent.KindAddMP:
		p := e.Payload.(simevent.AddMPPayload)
		if player := d.world.Actor(p.Actor).Player; player != nil {
			player.MP = saturateAddMP(player.MP, p.Amount)
		}

	case simevent.KindAdvanceCD:
		p := e.Payload.(simevent.AdvanceCDPayload)
		if player := d.world.Actor(p.Actor).Player; player != nil {
			if cd, ok := player.Cooldowns[p.Group]; ok {
				cd.Advance(p.Delta)
			}
		}

	case simevent.KindUntargetable:
		p := e.Payload.(simevent.UntargetablePayload)
		d.world.Actor(p.Actor).Targetable = false
		d.reportEvent(t, e)

	case simevent.KindTargetable:
		p := e.Payload.(simevent.TargetablePayload)
		d.world.Actor(p.Actor).Targetable = true
		d.reportEvent(t, e)

	case simevent.KindStartCast:
		p := e.Payload.(simevent.StartCastPayload)
		if err := d.startCast(t, p.Actor, p.Action); err != nil {
			return err
		}
		d.reportEvent(t, e)

	case simevent.KindCastSnap:
		p := e.Payload.(simevent.CastSnapPayload)
		sink := jobSink{q: d.queue, rng: d.rng, now: t, log: d.log}
		d.module.CastSnap(d.world, p.Actor, p.Action, sink)
		d.reportEvent(t, e)

	case simevent.KindJob:
		d.reportEvent(t, e)

	case simevent.KindSimStart:
		d.seedPartnerEsprit(t)

	case simevent.KindCdEnd, simevent.KindOther, simevent.KindCheckStatusFalloff, simevent.KindPartnerEsprit:
		// pure notifications: nothing for the world to mutate here, the job
		// fan-out below is where PartnerEsprit's roll and reschedule (and
		// every job's gauge/combo reaction) actually happens.
	}
	return nil
}

func (d *Dispatcher) reportEvent(t uint32, e simevent.Event) {
	if d.Report != nil {
		d.Report(t, e)
	}
}

func saturateAddMP(mp, add uint16) uint16 {
	total := uint32(mp) + uint32(add)
	if total > 10000 {
		return 10000
	}
	return uint16(total)
}
