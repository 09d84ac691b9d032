// Package dancer is the Dancer rotation script: a linear aicoro.Script that
// drives the opener, the eight-GCD burst window, and the filler loops
// between bursts. It is grounded on original_source/src/dncai.rs's
// coroutine/burst/filler_prio/filler_standard/pretech_prio functions,
// ported from async/await suspension points to aicoro.Controller's
// wait/cast primitives one for one.
package dancer

import (
	"fmt"

	"github.com/rs/zerolog"

	"xivsim/internal/aicoro"
	"xivsim/internal/job"
	"xivsim/internal/job/dnc"
	"xivsim/internal/simevent"
	"xivsim/internal/simworld"
)

// rotation bundles the script's view of the world for the duration of one
// actor's coroutine.
type rotation struct {
	ctrl   *aicoro.Controller
	world  *simworld.World
	actor  simevent.ActorID
	module job.Module
	log    zerolog.Logger
}

// NewScript builds the aicoro.Script that drives actor's Dancer rotation.
func NewScript(world *simworld.World, actor simevent.ActorID, module job.Module, log zerolog.Logger) aicoro.Script {
	return func(ctrl *aicoro.Controller) {
		r := &rotation{ctrl: ctrl, world: world, actor: actor, module: module, log: log}
		r.run()
	}
}

func (r *rotation) player() *simworld.PlayerRecord { return r.world.Actor(r.actor).Player }
func (r *rotation) state() *dnc.State              { return r.player().State.(*dnc.State) }

// hasStatus reports whether effect is resident on the actor. Unique
// statuses collapse their source out of the lookup key, so source/hasSource
// are irrelevant here regardless of which actor actually applied them.
func (r *rotation) hasStatus(effect simevent.StatusEffect) bool {
	_, ok := r.world.Actor(r.actor).Status(0, false, effect)
	return ok
}

func (r *rotation) warn(msg string) { r.log.Warn().Str("actor", fmt.Sprint(r.actor)).Msg(msg) }
func (r *rotation) info(msg string) { r.log.Info().Str("actor", fmt.Sprint(r.actor)).Msg(msg) }

// cooldown returns the ms until action's cooldown group next has a charge
// available, or 0 if action has no cooldown group (or isn't castable at
// all right now, which the rotation never actually asks for).
func (r *rotation) cooldown(a dnc.Action) uint32 {
	info, err := r.module.CheckCast(r.world, r.actor, a.Event())
	if err != nil || info.CD == nil {
		return 0
	}
	cd, ok := r.player().Cooldowns[info.CD.Group]
	if !ok {
		return 0
	}
	return cd.CDUntil(info.CD.Duration, info.CD.Charges)
}

// cast logs the same "about to overwrite a resource" warnings the original
// rotation checks before every cast, then issues the cast. It waits for a
// lock CdEnd only while the lock is still running: a previous cast whose
// snapshot lands after its lock has already consumed that CdEnd.
func (r *rotation) cast(a dnc.Action) {
	if r.player().Lock > 0 {
		r.ctrl.WaitLock()
	}
	st := r.state()

	switch a {
	case dnc.FanDance, dnc.Flourish:
		if r.hasStatus(dnc.ThreeFoldFanDance) {
			r.warn("fan dance 3 potentially overwritten")
		}
	case dnc.ReverseCascade, dnc.Fountainfall:
		if st.Feathers == 4 {
			r.warn("feather potentially overwritten")
		}
		if st.Esprit > 80 {
			r.warn("esprit potentially overcapped")
		}
	case dnc.StandardStep, dnc.FinishingMove:
		if r.hasStatus(dnc.LastDanceReady) {
			r.warn("last dance overwritten")
		}
	case dnc.Cascade:
		if st.Esprit > 85 {
			r.warn("esprit potentially overcapped")
		}
		if r.hasStatus(dnc.SilkenSymmetry) {
			r.warn("silken symmetry potentially overwritten")
		}
		if st.Combo.CheckMainFor(dnc.Fountain) {
			r.warn("fountain combo overwritten")
		}
	case dnc.Fountain:
		if st.Esprit > 85 {
			r.warn("esprit potentially overcapped")
		}
		if r.hasStatus(dnc.SilkenFlow) {
			r.warn("silken flow potentially overwritten")
		}
	case dnc.Tillana:
		r.info(fmt.Sprintf("tillana used at %d esprit", st.Esprit))
	}

	r.castNow(a)
}

func (r *rotation) castNow(a dnc.Action) {
	player := r.player()
	info, err := r.module.CheckCast(r.world, r.actor, a.Event())
	if err != nil {
		return
	}
	var cd *aicoro.ActionCooldown
	if info.CD != nil {
		msUntil := uint32(0)
		if existing, ok := player.Cooldowns[info.CD.Group]; ok {
			msUntil = existing.CDUntil(info.CD.Duration, info.CD.Charges)
		}
		cd = &aicoro.ActionCooldown{Group: info.CD.Group, MsUntilReady: msUntil}
	}
	r.ctrl.Cast(a.Event(), dnc.IsGCD(a), cd, player.GCD == 0, player.Lock == 0)
}

// correctStep casts the next queued step move, or the matching finish once
// the sequence is complete.
func (r *rotation) correctStep() {
	st := r.state()
	switch st.Step.Kind {
	case dnc.StepKindNone:
		return
	case dnc.StepKindStandard:
		if next, ok := st.Step.Next(); ok {
			r.cast(next)
		} else {
			r.cast(dnc.StandardFinish)
		}
	case dnc.StepKindTechnical:
		if next, ok := st.Step.Next(); ok {
			r.cast(next)
		} else {
			r.cast(dnc.TechnicalFinish)
		}
	}
}

func (r *rotation) saberDance() {
	if r.hasStatus(dnc.DanceOfTheDawnReady) {
		r.cast(dnc.DanceOfTheDawn)
	} else {
		r.cast(dnc.SaberDance)
	}
}

// nextFeather spends one pooled Fan Dance proc or charge, preferring Fan
// Dance 3 over a plain charge over Fan Dance 4, and reports whether it cast
// anything at all.
func (r *rotation) nextFeather() bool {
	r.ctrl.WaitLock()
	switch {
	case r.hasStatus(dnc.ThreeFoldFanDance):
		r.cast(dnc.FanDance3)
		return true
	case r.state().Feathers > 0:
		r.cast(dnc.FanDance)
		return true
	case r.hasStatus(dnc.FourFoldFanDance):
		r.cast(dnc.FanDance4)
		return true
	default:
		return false
	}
}

func (r *rotation) featherWeaves() {
	if r.nextFeather() {
		r.nextFeather()
	}
}

func (r *rotation) burstPrioCombo() {
	r.ctrl.WaitGCD()
	switch {
	case r.hasStatus(dnc.FlourishFlow) || r.hasStatus(dnc.SilkenFlow):
		r.cast(dnc.Fountainfall)
	case r.hasStatus(dnc.FlourishSymmetry) || r.hasStatus(dnc.SilkenSymmetry):
		r.cast(dnc.ReverseCascade)
	case r.state().Combo.CheckMainFor(dnc.Fountain):
		r.cast(dnc.Fountain)
	default:
		r.cast(dnc.Cascade)
	}
}

// aboveThreshold reports whether cd is more than threshold ms further out
// than gcd, guarding the Rust original's unsigned subtraction so it never
// wraps when gcd already exceeds cd.
func aboveThreshold(cd, gcd, threshold uint32) bool {
	return cd > gcd && cd-gcd > threshold
}

// fillerPrio runs at the first weave slot before a GCD, so Fan Dance
// charges and procs can be pooled correctly ahead of the next burst.
func (r *rotation) fillerPrio() {
	r.ctrl.WaitLock()

	var action dnc.Action
	var genFeather bool
	switch {
	case r.hasStatus(dnc.LastDanceReady):
		action, genFeather = dnc.LastDance, false
	case r.state().Esprit >= 70:
		action, genFeather = dnc.SaberDance, false
	case r.hasStatus(dnc.FlourishFlow) || r.hasStatus(dnc.SilkenFlow):
		action, genFeather = dnc.Fountainfall, true
	case r.hasStatus(dnc.FlourishSymmetry) || r.hasStatus(dnc.SilkenSymmetry):
		action, genFeather = dnc.ReverseCascade, true
	case r.state().Combo.CheckMainFor(dnc.Fountain):
		action, genFeather = dnc.Fountain, false
	default:
		action, genFeather = dnc.Cascade, false
	}

	flourish := r.cooldown(dnc.Flourish)
	featherLimit := uint8(4)
	if flourish < r.cooldown(dnc.Devilment) {
		featherLimit = 3
	}

	switch {
	case r.player().GCD >= 650 && flourish <= r.player().GCD-650:
		if r.hasStatus(dnc.ThreeFoldFanDance) {
			r.cast(dnc.FanDance3)
		}
		r.cast(dnc.Flourish)
	case genFeather && r.state().Feathers == featherLimit:
		if r.hasStatus(dnc.ThreeFoldFanDance) {
			r.cast(dnc.FanDance3)
			r.cast(dnc.FanDance)
		} else {
			r.cast(dnc.FanDance)
			r.ctrl.WaitLock()
			if r.player().GCD >= 650 {
				switch {
				case r.hasStatus(dnc.ThreeFoldFanDance):
					r.cast(dnc.FanDance3)
				case r.hasStatus(dnc.FourFoldFanDance):
					r.cast(dnc.FanDance4)
				}
			}
		}
	default:
		if r.hasStatus(dnc.FourFoldFanDance) {
			r.cast(dnc.FanDance4)
		}
	}

	r.cast(action)
}

// fillerStandard spends a Standard Step between bursts, preferring a
// pooled Finishing Move if one is ready.
func (r *rotation) fillerStandard() {
	if r.hasStatus(dnc.FourFoldFanDance) {
		r.cast(dnc.FanDance4)
	}
	if r.hasStatus(dnc.ThreeFoldFanDance) {
		r.cast(dnc.FanDance3)
	}
	if r.hasStatus(dnc.FinishingMoveReady) {
		r.cast(dnc.FinishingMove)
		return
	}
	r.cast(dnc.StandardStep)
	r.correctStep()
	r.correctStep()
	r.cast(dnc.StandardFinish)
}

// pretechPrio runs in the window leading up to the next Technical Step.
func (r *rotation) pretechPrio() {
	r.ctrl.WaitLock()

	var action dnc.Action
	var genFeather bool
	switch {
	case r.state().Esprit >= 50:
		action, genFeather = dnc.SaberDance, false
	case r.hasStatus(dnc.FlourishFlow) || r.hasStatus(dnc.SilkenFlow):
		action, genFeather = dnc.Fountainfall, true
	case r.hasStatus(dnc.FlourishSymmetry) || r.hasStatus(dnc.SilkenSymmetry):
		action, genFeather = dnc.ReverseCascade, true
	case r.state().Combo.CheckMainFor(dnc.Fountain):
		action, genFeather = dnc.Fountain, false
	default:
		action, genFeather = dnc.Cascade, false
	}

	if genFeather && r.state().Feathers == 4 {
		if r.hasStatus(dnc.ThreeFoldFanDance) {
			r.cast(dnc.FanDance3)
		}
		r.cast(dnc.FanDance)
	}

	r.cast(action)
}

// burstSnapshot is the gauge/proc read the eight-GCD burst window's
// priority tables dispatch on.
type burstSnapshot struct {
	esprit         uint8
	lastDanceReady bool
	starfall       bool
	flourishFinish bool
}

func (r *rotation) burstState() burstSnapshot {
	return burstSnapshot{
		esprit:         r.state().Esprit,
		lastDanceReady: r.hasStatus(dnc.LastDanceReady),
		starfall:       r.hasStatus(dnc.Starfall),
		flourishFinish: r.hasStatus(dnc.FlourishFinish),
	}
}

// burst runs the Technical Finish/Devilment window and its eight GCDs. The
// priority order per slot follows original_source/src/dncai.rs's burst_state
// match tables; they shift slightly GCD to GCD (Tillana's esprit ceiling
// tightens, Last Dance and Starfall Dance swap priority) to keep buffs from
// falling off unspent.
func (r *rotation) burst() {
	r.cast(dnc.TechnicalStep)
	r.correctStep()
	r.correctStep()
	r.correctStep()
	r.correctStep()
	r.cast(dnc.TechnicalFinish)
	r.cast(dnc.Devilment)

	r.log.Info().
		Uint8("feathers", r.state().Feathers).
		Bool("fan_dance_3", r.hasStatus(dnc.ThreeFoldFanDance)).
		Uint8("esprit", r.state().Esprit).
		Bool("last_dance", r.hasStatus(dnc.LastDanceReady)).
		Msg("pool status")

	r.ctrl.WaitGCD()
	bs := r.burstState()
	switch {
	case bs.esprit >= 50:
		r.saberDance()
	case bs.esprit <= 20 && bs.flourishFinish:
		r.cast(dnc.Tillana)
	case bs.esprit <= 30 && !bs.lastDanceReady && bs.flourishFinish:
		r.cast(dnc.Tillana)
	case bs.lastDanceReady:
		r.cast(dnc.LastDance)
	case bs.starfall:
		r.cast(dnc.StarfallDance)
	default:
		r.burstPrioCombo()
	}

	if r.hasStatus(dnc.ThreeFoldFanDance) {
		r.cast(dnc.FanDance3)
		r.cast(dnc.Flourish)
	} else {
		r.cast(dnc.Flourish)
		if r.player().GCD >= 650 {
			r.nextFeather()
		}
	}

	r.ctrl.WaitGCD()
	bs = r.burstState()
	switch {
	case bs.esprit >= 50:
		r.saberDance()
	case bs.esprit <= 20 && !bs.lastDanceReady && bs.flourishFinish:
		r.cast(dnc.Tillana)
	case bs.lastDanceReady:
		r.cast(dnc.LastDance)
	case bs.starfall:
		r.cast(dnc.StarfallDance)
	default:
		r.burstPrioCombo()
	}
	r.featherWeaves()

	r.ctrl.WaitGCD()
	bs = r.burstState()
	switch {
	case bs.lastDanceReady:
		r.cast(dnc.LastDance)
	case bs.esprit >= 50:
		r.saberDance()
	case bs.starfall:
		r.cast(dnc.StarfallDance)
	default:
		r.burstPrioCombo()
	}
	r.featherWeaves()

	r.cast(dnc.FinishingMove)
	r.featherWeaves()

	r.ctrl.WaitGCD()
	bs = r.burstState()
	switch {
	case bs.esprit >= 50:
		r.saberDance()
	case bs.esprit <= 30 && bs.flourishFinish:
		r.cast(dnc.Tillana)
	case bs.starfall:
		r.cast(dnc.StarfallDance)
	case bs.lastDanceReady:
		r.cast(dnc.LastDance)
	default:
		r.burstPrioCombo()
	}
	r.featherWeaves()

	r.ctrl.WaitGCD()
	bs = r.burstState()
	switch {
	case bs.esprit >= 50:
		r.saberDance()
	case bs.esprit <= 30 && bs.flourishFinish:
		r.cast(dnc.Tillana)
	case bs.starfall:
		r.cast(dnc.StarfallDance)
	case bs.lastDanceReady:
		r.cast(dnc.LastDance)
	default:
		r.burstPrioCombo()
	}
	r.featherWeaves()

	r.ctrl.WaitGCD()
	bs = r.burstState()
	switch {
	case bs.esprit >= 80:
		r.saberDance()
	case bs.starfall:
		r.cast(dnc.StarfallDance)
	case bs.esprit >= 50:
		r.saberDance()
	case bs.esprit <= 30 && bs.flourishFinish:
		r.cast(dnc.Tillana)
	case bs.lastDanceReady:
		r.cast(dnc.LastDance)
	default:
		r.burstPrioCombo()
	}
	r.featherWeaves()

	r.ctrl.WaitGCD()
	bs = r.burstState()
	switch {
	case bs.starfall:
		r.cast(dnc.StarfallDance)
	case bs.esprit <= 50 && bs.flourishFinish:
		r.cast(dnc.Tillana)
	case bs.esprit >= 50:
		r.saberDance()
	case bs.lastDanceReady:
		r.cast(dnc.LastDance)
	default:
		r.burstPrioCombo()
	}
	// the last gcd can only fit a single feather.
	r.nextFeather()
}

// run is the rotation's full coroutine body: an opener, then four
// burst/filler/pretech cycles, then a closing burst.
func (r *rotation) run() {
	// Hold the opener until the lock CdEnd primed at first_action.
	r.ctrl.WaitLock()
	r.cast(dnc.StandardStep)
	r.correctStep()
	r.correctStep()
	r.ctrl.Wait(12000)
	r.cast(dnc.StandardFinish)

	for i := 0; i < 4; i++ {
		r.burst()

		for j := 0; j < 3; j++ {
			for aboveThreshold(r.cooldown(dnc.StandardStep), r.player().GCD, 1000) {
				r.fillerPrio()
			}
			r.fillerStandard()
		}

		for aboveThreshold(r.cooldown(dnc.TechnicalStep), r.player().GCD, 1000) {
			r.pretechPrio()
		}
	}

	r.burst()
}
