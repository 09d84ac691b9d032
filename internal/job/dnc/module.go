package dnc

import (
	"fmt"

	"xivsim/internal/ffxivmath"
	"xivsim/internal/job"
	"xivsim/internal/simerr"
	"xivsim/internal/simevent"
	"xivsim/internal/simworld"
)

// byName maps the scenario-file action string back to an Action constant.
var byName = func() map[string]Action {
	m := make(map[string]Action, len(specs))
	for a := range specs {
		m[string(a)] = a
	}
	return m
}()

// ParseAction resolves a scenario action name into an Action, for the
// scenario parser to call at load time (spec.md §6.1's "unknown action
// for job" input error).
func ParseAction(name string) (Action, bool) {
	a, ok := byName[name]
	return a, ok
}

// Module implements job.Module for the Dancer job.
type Module struct{}

func (Module) stateOf(w *simworld.World, id simevent.ActorID) *State {
	s, _ := w.Actor(id).Player.State.(*State)
	return s
}

func (m Module) CheckCast(w *simworld.World, id simevent.ActorID, action simevent.Action) (job.CastInfo, error) {
	a := Action(action.Name)
	spec, ok := specs[a]
	if !ok {
		return job.CastInfo{}, fmt.Errorf("%w: %s/%s", simerr.ErrUnknownAction, action.Job, action.Name)
	}

	player := w.Actor(id).Player
	info := job.CastInfo{Lock: spec.lock, Snap: spec.snap, MP: spec.mp}
	if isGCD(a) {
		info.GCD = player.Math.ScaleDuration(2500)
	}
	if spec.cd != nil {
		info.CD = &job.CooldownUse{Group: spec.cd.group, Duration: spec.cd.duration, Charges: spec.cd.charges}
	}
	if spec.altCD != nil {
		info.AltCD = &job.CooldownUse{Group: spec.altCD.group, Duration: spec.altCD.duration, Charges: spec.altCD.charges}
	}
	return info, nil
}

func (m Module) CastSnap(w *simworld.World, id simevent.ActorID, action simevent.Action, sink job.Sink) {
	a := Action(action.Name)
	spec := specs[a]
	actor := w.Actor(id)
	player := actor.Player
	state := m.stateOf(w, id)

	if spec.potency > 0 && player.HasTarget {
		crit := sink.RNG().CritRoll(player.Math.EffectiveCritChanceBP(ffxivmath.Buffs{}))
		dhit := sink.RNG().DirectHitRoll(player.Math.EffectiveDHitChanceBP(ffxivmath.Buffs{}))
		variance := sink.RNG().DamageVariance()
		damage := player.Math.ActionDamage(spec.potency, crit, dhit, variance, ffxivmath.Buffs{})
		sink.Push(0, simevent.Event{
			Kind: simevent.KindDamage,
			Payload: simevent.DamagePayload{
				Source: id, Target: player.Target, Action: action, Amount: damage,
			},
		})
	}

	switch a {
	case Cascade, Fountain:
		state.Combo.Record(a)
		state.addEsprit(10)
		if a == Cascade {
			applyProc(sink, actor.ID, SilkenSymmetry, 30000)
		} else {
			applyProc(sink, actor.ID, SilkenFlow, 30000)
		}
	case ReverseCascade:
		state.Combo.Record(a)
		state.addEsprit(20)
		state.addFeather()
	case Fountainfall:
		state.Combo.Record(a)
		state.addEsprit(20)
		state.addFeather()
	case SaberDance, DanceOfTheDawn:
		if state.Esprit >= 50 {
			state.Esprit -= 50
		} else {
			state.Esprit = 0
		}
	case FanDance:
		if state.Feathers > 0 {
			state.Feathers--
		}
	case FanDance3:
		applyProc(sink, actor.ID, FourFoldFanDance, 20000)
	case FanDance4:
		// consumed by cast; falls off on its own duration like any proc.
	case Flourish:
		applyOrAddStacks(sink, actor.ID, ThreeFoldFanDance, 20000, 1, 1)
		applyProc(sink, actor.ID, FlourishSymmetry, 20000)
		applyProc(sink, actor.ID, FlourishFlow, 20000)
	case Devilment:
		sink.Push(0, simevent.Event{
			Kind: simevent.KindStatus,
			Payload: simevent.StatusPayload{
				Kind: simevent.StatusKindApply, Target: id, Effect: DevilmentBuff, Duration: 20000,
			},
		})
		applyOrAddStacks(sink, actor.ID, Starfall, 20000, 1, 1)
	case StandardStep:
		state.Step = StepGauge{Kind: StepKindStandard, Steps: []Step{StepEmboite, StepEntrechat}}
	case TechnicalStep:
		state.Step = StepGauge{Kind: StepKindTechnical, Steps: []Step{StepEmboite, StepEntrechat, StepJete, StepPirouette}}
	case Emboite, Entrechat, Jete, Pirouette:
		state.Step.Advance()
	case StandardFinish:
		applyOrAddStacks(sink, actor.ID, LastDanceReady, 30000, 1, 1)
	case TechnicalFinish:
		sink.Push(0, simevent.Event{
			Kind: simevent.KindStatus,
			Payload: simevent.StatusPayload{
				Kind: simevent.StatusKindApply, Target: id, Effect: TechnicalFinishBuff, Duration: 20000,
			},
		})
		applyOrAddStacks(sink, actor.ID, FinishingMoveReady, 20000, 1, 1)
		applyOrAddStacks(sink, actor.ID, DanceOfTheDawnReady, 20000, 1, 1)
		applyOrAddStacks(sink, actor.ID, FlourishFinish, 20000, 1, 1)
	case FinishingMove:
		state.addEsprit(10)
	case Tillana:
		state.Feathers = 4
	case LastDance, StarfallDance:
		// pure damage procs, consumed by the rotation script's has_status
		// gating; no gauge side effects of their own.
	}
}

// partnerEspritSlowInterval and partnerEspritFastInterval bound the
// PartnerEsprit roll cadence: nominally once a second, escalating to
// roughly seven rolls a second while the actor carries Technical Finish.
// The 0.08-per-roll chance and this specific cadence split are preserved
// verbatim from the rotation's own PartnerEsprit assumption, not derived
// from any documented source (see DESIGN.md).
const (
	partnerEspritSlowInterval = 1000
	partnerEspritFastInterval = 143
	partnerEspritRollChance   = 0.08
	partnerEspritGrant        = 10
)

// expiringProcs lists every short-lived proc status that the rotation is
// expected to consume with a follow-up cast before it falls off, mirroring
// dncai.rs:447-473's FallOff-source warning list.
var expiringProcs = map[simevent.StatusEffect]bool{
	SilkenSymmetry:      true,
	SilkenFlow:          true,
	FlourishSymmetry:    true,
	FlourishFlow:        true,
	ThreeFoldFanDance:   true,
	FourFoldFanDance:    true,
	LastDanceReady:      true,
	DanceOfTheDawnReady: true,
	FinishingMoveReady:  true,
	Starfall:            true,
	FlourishFinish:      true,
}

func (m Module) Event(w *simworld.World, id simevent.ActorID, e simevent.Event, sink job.Sink) {
	if e.Kind == simevent.KindStatus {
		p := e.Payload.(simevent.StatusPayload)
		if p.Kind == simevent.StatusKindFallOff && p.Target == id && expiringProcs[p.Effect] {
			sink.Log().Warn().Str("actor", fmt.Sprint(id)).Str("status", p.Effect.Name).Msg("proc fell off unconsumed")
		}
		return
	}

	if e.Kind != simevent.KindPartnerEsprit {
		return
	}
	p := e.Payload.(simevent.PartnerEspritPayload)
	if p.Actor != id {
		return
	}

	state := m.stateOf(w, id)
	if sink.RNG().EspritRoll(partnerEspritRollChance) {
		state.addEsprit(partnerEspritGrant)
	}

	interval := uint32(partnerEspritSlowInterval)
	if _, boosted := w.Actor(id).Status(0, false, TechnicalFinishBuff); boosted {
		interval = partnerEspritFastInterval
	}
	sink.Push(interval, simevent.Event{Kind: simevent.KindPartnerEsprit, Payload: simevent.PartnerEspritPayload{Actor: id}})
}

func applyProc(sink job.Sink, self simevent.ActorID, effect simevent.StatusEffect, duration uint32) {
	sink.Push(0, simevent.Event{
		Kind: simevent.KindStatus,
		Payload: simevent.StatusPayload{
			Kind: simevent.StatusKindApply, Source: self, HasSource: true, Target: self, Effect: effect, Duration: duration,
		},
	})
}

func applyOrAddStacks(sink job.Sink, self simevent.ActorID, effect simevent.StatusEffect, duration uint32, stacks, max uint8) {
	sink.Push(0, simevent.Event{
		Kind: simevent.KindStatus,
		Payload: simevent.StatusPayload{
			Kind: simevent.StatusKindApplyOrAddStacks, Target: self, Effect: effect, Duration: duration, Stacks: stacks, Max: max,
		},
	})
}
