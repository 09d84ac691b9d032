package simworld

import (
	"testing"

	"xivsim/internal/simevent"
)

func TestAdvanceMovesClock(t *testing.T) {
	w := New(0)
	w.AddActor(func(id simevent.ActorID) *Actor { return NewActor(id, "dummy") })

	w.Advance(500, func(uint32, simevent.Event) {})
	if w.Clock != 500 {
		t.Fatalf("Clock = %d, want 500", w.Clock)
	}
	w.Advance(250, func(uint32, simevent.Event) {})
	if w.Clock != 750 {
		t.Fatalf("Clock = %d, want 750", w.Clock)
	}
}

func TestAdvancePostsFalloffAtExactZeroCrossing(t *testing.T) {
	w := New(0)
	target := w.AddActor(func(id simevent.ActorID) *Actor { return NewActor(id, "boss") })

	effect := simevent.StatusEffect{ID: 1, Name: "dot", Unique: true}
	target.ApplyStatus(simevent.StatusPayload{
		Kind: simevent.StatusKindApply, Target: target.ID, Effect: effect, Duration: 300,
	})

	var posted []uint32
	w.Advance(1000, func(at uint32, e simevent.Event) {
		if e.Kind == simevent.KindStatus {
			posted = append(posted, at)
		}
	})

	if len(posted) != 1 || posted[0] != 300 {
		t.Fatalf("posted = %v, want [300]", posted)
	}
	if _, ok := target.Status(0, false, effect); ok {
		t.Fatalf("expected status entry removed after falloff")
	}
}

func TestAdvanceZeroDtNoFalloff(t *testing.T) {
	w := New(0)
	target := w.AddActor(func(id simevent.ActorID) *Actor { return NewActor(id, "boss") })
	effect := simevent.StatusEffect{ID: 2, Name: "buff", Unique: true}
	target.ApplyStatus(simevent.StatusPayload{
		Kind: simevent.StatusKindApply, Target: target.ID, Effect: effect, Duration: 100,
	})

	called := false
	w.Advance(0, func(uint32, simevent.Event) { called = true })
	if called {
		t.Fatalf("expected no events posted for a zero-length advance")
	}
}

func TestInCombatNow(t *testing.T) {
	w := New(2500)
	if w.InCombatNow() {
		t.Fatalf("expected not in combat at clock 0")
	}
	w.Advance(2500, func(uint32, simevent.Event) {})
	if !w.InCombatNow() {
		t.Fatalf("expected in combat once clock reaches InCombat threshold")
	}
}

func TestActorDamageAccumulates(t *testing.T) {
	a := NewActor(0, "target")
	a.AddDamage(100)
	a.AddDamage(250)
	if a.Damage() != 350 {
		t.Fatalf("Damage() = %d, want 350", a.Damage())
	}
}
