package simdispatch

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"xivsim/internal/aicoro"
	"xivsim/internal/dancer"
	"xivsim/internal/ffxivmath"
	"xivsim/internal/job/dnc"
	"xivsim/internal/scripted"
	"xivsim/internal/simerr"
	"xivsim/internal/simevent"
	"xivsim/internal/simqueue"
	"xivsim/internal/simrng"
	"xivsim/internal/simworld"
)

// TestEmptyScenarioExitsImmediately covers spec.md §8 end-to-end case 1:
// an empty world with end=0 should pop nothing and return cleanly.
func TestEmptyScenarioExitsImmediately(t *testing.T) {
	w := simworld.New(0)
	q := simqueue.New[simevent.Event]()
	d := New(w, q, simrng.NewSource(1), dnc.Module{}, 0, nil, zerolog.Nop())

	var reported int
	d.Report = func(uint32, simevent.Event) { reported++ }

	if err := d.Run(); err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}
	if reported != 0 {
		t.Fatalf("reported %d events, want 0", reported)
	}
}

func dancerMath() *ffxivmath.Math {
	return ffxivmath.New(
		ffxivmath.Stats{Level: 90, Dex: 2000, Det: 1600, Crt: 1500, Dh: 800, Sks: 400},
		ffxivmath.Weapon{PhysicalDamage: 130},
		ffxivmath.JobInfo{JobModAttack: 115, MainStat: ffxivmath.MainStatDexterity},
	)
}

// TestSingleAutoAttackDamagesTarget covers case 2: a lone Dancer with an
// auto-attack seeded at t=0 against a targetable dummy should land at
// least one Damage event and leave the dummy's damage counter non-zero
// within the first 3-second window.
func TestSingleAutoAttackDamagesTarget(t *testing.T) {
	w := simworld.New(0)
	target := w.AddActor(func(id simevent.ActorID) *simworld.Actor { return simworld.NewActor(id, "dummy") })
	player := w.AddActor(func(id simevent.ActorID) *simworld.Actor {
		return simworld.NewPlayerActor(id, "dancer", &simworld.PlayerRecord{
			Job: "DNC", MP: 10000, Cooldowns: map[simevent.CooldownGroup]*simworld.ActionCd{},
			State: &dnc.State{}, Math: dancerMath(), Target: target.ID, HasTarget: true,
		})
	})

	q := simqueue.New[simevent.Event]()
	q.Push(0, simevent.Event{Kind: simevent.KindAutoAttack, Payload: simevent.AutoAttackPayload{Actor: player.ID}})

	d := New(w, q, simrng.NewSource(1), dnc.Module{}, 3000, nil, zerolog.Nop())
	var damageEvents int
	d.Report = func(_ uint32, e simevent.Event) {
		if e.Kind == simevent.KindDamage {
			damageEvents++
		}
	}

	if err := d.Run(); err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}
	if damageEvents < 1 {
		t.Fatalf("expected at least one Damage event, got %d", damageEvents)
	}
	if w.Actor(target.ID).Damage() == 0 {
		t.Fatalf("expected target damage counter to be non-zero")
	}
}

// TestUntargetableWindowSuppressesAutoAttack covers case 3: an enemy
// untargetable across [1000,2000) should take no damage from an
// auto-attack landing inside that window; the run ends at 1600, before the
// window clears.
func TestUntargetableWindowSuppressesAutoAttack(t *testing.T) {
	w := simworld.New(0)
	target := w.AddActor(func(id simevent.ActorID) *simworld.Actor { return simworld.NewActor(id, "dummy") })
	player := w.AddActor(func(id simevent.ActorID) *simworld.Actor {
		return simworld.NewPlayerActor(id, "dancer", &simworld.PlayerRecord{
			Job: "DNC", MP: 10000, Cooldowns: map[simevent.CooldownGroup]*simworld.ActionCd{},
			State: &dnc.State{}, Math: dancerMath(), Target: target.ID, HasTarget: true,
		})
	})

	q := simqueue.New[simevent.Event]()
	q.Push(1000, simevent.Event{Kind: simevent.KindUntargetable, Payload: simevent.UntargetablePayload{Actor: target.ID}})
	q.Push(1500, simevent.Event{Kind: simevent.KindAutoAttack, Payload: simevent.AutoAttackPayload{Actor: player.ID}})
	q.Push(2000, simevent.Event{Kind: simevent.KindTargetable, Payload: simevent.TargetablePayload{Actor: target.ID}})

	d := New(w, q, simrng.NewSource(1), dnc.Module{}, 1600, nil, zerolog.Nop())
	if err := d.Run(); err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}
	if w.Actor(target.ID).Damage() != 0 {
		t.Fatalf("expected no damage while untargetable, got %d", w.Actor(target.ID).Damage())
	}
}

// TestDoTTickCadenceAndFalloff covers case 4: a DoT snapshot applied at
// t=0 with a 9000ms duration should tick three times (0, 3000, 6000) and
// fall off at 9000, with ActorTick re-queuing itself every 3000ms with no
// drift.
func TestDoTTickCadenceAndFalloff(t *testing.T) {
	w := simworld.New(0)
	target := w.AddActor(func(id simevent.ActorID) *simworld.Actor { return simworld.NewActor(id, "boss") })

	snapshot := dancerMath().DotDamageSnapshot(50, ffxivmath.Buffs{})
	target.ApplyStatus(simevent.StatusPayload{
		Kind: simevent.StatusKindApplyDot, Target: target.ID,
		Effect:   simevent.StatusEffect{ID: 1, Name: "dot", Unique: true},
		Duration: 9000, Snapshot: &snapshot,
	})

	q := simqueue.New[simevent.Event]()
	q.Push(0, simevent.Event{Kind: simevent.KindActorTick, Payload: simevent.ActorTickPayload{Actor: target.ID}})

	d := New(w, q, simrng.NewSource(1), dnc.Module{}, 9001, nil, zerolog.Nop())

	before := w.Actor(target.ID).Damage()
	if err := d.Run(); err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}
	after := w.Actor(target.ID).Damage()
	if after == before {
		t.Fatalf("expected DoT damage to accumulate across three ticks")
	}
	if _, ok := w.Actor(target.ID).Status(target.ID, true, simevent.StatusEffect{ID: 1, Name: "dot", Unique: true}); ok {
		t.Fatalf("expected status to have fallen off by t=9001")
	}
}

// TestCooldownConflictIsFatal covers case 5: two StartCast of flourish, an
// off-GCD ability with its own 60s cooldown group, 100ms apart must fail
// with ErrCooldownConflict. startCast detects conflicts on cooldown groups
// only: a second on-GCD cast inside a running GCD is not rejected, the
// GCD just keeps the larger of its current and new values.
func TestCooldownConflictIsFatal(t *testing.T) {
	w := simworld.New(0)
	target := w.AddActor(func(id simevent.ActorID) *simworld.Actor { return simworld.NewActor(id, "dummy") })
	player := w.AddActor(func(id simevent.ActorID) *simworld.Actor {
		return simworld.NewPlayerActor(id, "dancer", &simworld.PlayerRecord{
			Job: "DNC", MP: 10000, Cooldowns: map[simevent.CooldownGroup]*simworld.ActionCd{},
			State: &dnc.State{}, Math: dancerMath(), Target: target.ID, HasTarget: true,
		})
	})

	action := simevent.Action{Job: "DNC", Name: "flourish"}
	q := simqueue.New[simevent.Event]()
	q.Push(0, simevent.Event{Kind: simevent.KindStartCast, Payload: simevent.StartCastPayload{Actor: player.ID, Action: action}})
	q.Push(100, simevent.Event{Kind: simevent.KindStartCast, Payload: simevent.StartCastPayload{Actor: player.ID, Action: action}})

	d := New(w, q, simrng.NewSource(1), dnc.Module{}, 1000, nil, zerolog.Nop())
	err := d.Run()
	if !errors.Is(err, simerr.ErrCooldownConflict) {
		t.Fatalf("Run() = %v, want ErrCooldownConflict", err)
	}
}

// TestStatusFalloffOffGridDoesNotRegressClock guards against a status
// expiring between two unrelated events that aren't aligned to its
// duration: applying the status must arm a CheckStatusFalloff at its
// exact expiry instant so the dispatcher stops there instead of letting
// World.Advance skip past it and hand back a FallOff event whose time is
// already behind the clock.
func TestStatusFalloffOffGridDoesNotRegressClock(t *testing.T) {
	w := simworld.New(0)
	target := w.AddActor(func(id simevent.ActorID) *simworld.Actor { return simworld.NewActor(id, "boss") })
	effect := simevent.StatusEffect{ID: 99, Name: "proc", Unique: true}

	q := simqueue.New[simevent.Event]()
	q.Push(0, simevent.Event{Kind: simevent.KindStatus, Payload: simevent.StatusPayload{
		Kind: simevent.StatusKindApply, Target: target.ID, Effect: effect, Duration: 500,
	}})
	q.Push(2000, simevent.Event{Kind: simevent.KindOther, Payload: simevent.OtherPayload{}})

	d := New(w, q, simrng.NewSource(1), dnc.Module{}, 2001, nil, zerolog.Nop())
	if err := d.Run(); err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}
	if _, ok := w.Actor(target.ID).Status(0, false, effect); ok {
		t.Fatalf("expected status to have fallen off by t=2001")
	}
}

// TestDancerOpenerSequence covers case 6: a standard level-90 Dancer's
// hardcoded opener casts StandardStep, two step moves (count==2; the dnc
// module always queues Emboite then Entrechat, no RNG is involved), then
// StandardFinish no sooner than 12000ms after the step moves resolve.
func TestDancerOpenerSequence(t *testing.T) {
	w := simworld.New(0)
	target := w.AddActor(func(id simevent.ActorID) *simworld.Actor { return simworld.NewActor(id, "dummy") })
	player := w.AddActor(func(id simevent.ActorID) *simworld.Actor {
		return simworld.NewPlayerActor(id, "dancer", &simworld.PlayerRecord{
			Job: "DNC", MP: 10000, Cooldowns: map[simevent.CooldownGroup]*simworld.ActionCd{},
			State: &dnc.State{}, Math: dancerMath(), Target: target.ID, HasTarget: true,
		})
	})

	q := simqueue.New[simevent.Event]()
	q.Push(0, simevent.Event{Kind: simevent.KindCdEnd, Payload: simevent.CdEndPayload{Actor: player.ID, Kind: simevent.CdEndLock}})
	q.Push(0, simevent.Event{Kind: simevent.KindCdEnd, Payload: simevent.CdEndPayload{Actor: player.ID, Kind: simevent.CdEndGCD}})

	scripts := map[simevent.ActorID]aicoro.Script{
		player.ID: dancer.NewScript(w, player.ID, dnc.Module{}, zerolog.Nop()),
	}

	d := New(w, q, simrng.NewSource(1), dnc.Module{}, 20000, scripts, zerolog.Nop())

	type cast struct {
		t      uint32
		action string
	}
	var casts []cast
	d.Report = func(t uint32, e simevent.Event) {
		if p, ok := e.Payload.(simevent.StartCastPayload); ok {
			casts = append(casts, cast{t: t, action: p.Action.Name})
		}
	}
	if err := d.Run(); err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}

	if len(casts) < 4 {
		t.Fatalf("expected at least 4 opener casts, got %d: %+v", len(casts), casts)
	}
	if casts[0].action != "standard_step" {
		t.Fatalf("casts[0] = %q, want standard_step", casts[0].action)
	}
	for i := 1; i <= 2; i++ {
		if casts[i].action != "emboite" && casts[i].action != "entrechat" {
			t.Fatalf("casts[%d] = %q, want emboite or entrechat", i, casts[i].action)
		}
	}
	if casts[3].action != "standard_finish" {
		t.Fatalf("casts[3] = %q, want standard_finish", casts[3].action)
	}
	if casts[3].t-casts[2].t < 12000 {
		t.Fatalf("standard_finish landed %dms after the second step move, want >= 12000ms", casts[3].t-casts[2].t)
	}
}

// TestScriptedDriverEndToEndThroughDispatcher exercises the full
// Dispatcher/aicoro/job pipeline end to end for the scripted-list driver
// (rather than the fake queue unit tests in internal/scripted), confirming
// it actually lands a cast.
func TestScriptedDriverEndToEndThroughDispatcher(t *testing.T) {
	w := simworld.New(0)
	target := w.AddActor(func(id simevent.ActorID) *simworld.Actor { return simworld.NewActor(id, "dummy") })
	player := w.AddActor(func(id simevent.ActorID) *simworld.Actor {
		return simworld.NewPlayerActor(id, "dancer", &simworld.PlayerRecord{
			Job: "DNC", MP: 10000, Cooldowns: map[simevent.CooldownGroup]*simworld.ActionCd{},
			State: &dnc.State{}, Math: dancerMath(), Target: target.ID, HasTarget: true,
		})
	})

	q := simqueue.New[simevent.Event]()
	q.Push(0, simevent.Event{Kind: simevent.KindCdEnd, Payload: simevent.CdEndPayload{Actor: player.ID, Kind: simevent.CdEndLock}})
	q.Push(0, simevent.Event{Kind: simevent.KindCdEnd, Payload: simevent.CdEndPayload{Actor: player.ID, Kind: simevent.CdEndGCD}})

	cascade := simevent.Action{Job: "DNC", Name: "cascade"}
	scripts := map[simevent.ActorID]aicoro.Script{
		player.ID: scripted.NewScript(w, player.ID, dnc.Module{}, []scripted.Entry{{Action: cascade}}),
	}

	d := New(w, q, simrng.NewSource(1), dnc.Module{}, 5000, scripts, zerolog.Nop())
	var casts int
	d.Report = func(_ uint32, e simevent.Event) {
		if e.Kind == simevent.KindStartCast {
			casts++
		}
	}
	if err := d.Run(); err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}
	if casts != 1 {
		t.Fatalf("casts = %d, want 1", casts)
	}
}
