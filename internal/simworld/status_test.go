package simworld

import (
	"testing"

	"xivsim/internal/simevent"
)

func TestStatusApplyThenExtend(t *testing.T) {
	tbl := newStatusTable()
	effect := simevent.StatusEffect{ID: 10, Name: "devilment", Unique: true}

	tbl.apply(simevent.StatusPayload{Kind: simevent.StatusKindApply, Effect: effect, Duration: 1000})
	e, ok := tbl.get(0, false, effect)
	if !ok || e.Remaining != 1000 {
		t.Fatalf("after Apply: entry = %+v, ok=%v", e, ok)
	}

	tbl.apply(simevent.StatusPayload{Kind: simevent.StatusKindApplyOrExtend, Effect: effect, Duration: 1000, Max: 1500})
	e, ok = tbl.get(0, false, effect)
	if !ok || e.Remaining != 1500 {
		t.Fatalf("after ApplyOrExtend: entry = %+v, ok=%v, want capped at 1500", e, ok)
	}
}

func TestStatusApplyOrAddStacksCapsAtMax(t *testing.T) {
	tbl := newStatusTable()
	effect := simevent.StatusEffect{ID: 20, Name: "feathers", Unique: true}

	tbl.apply(simevent.StatusPayload{Kind: simevent.StatusKindApplyOrAddStacks, Effect: effect, Duration: 100, Stacks: 2, Max: 3})
	tbl.apply(simevent.StatusPayload{Kind: simevent.StatusKindApplyOrAddStacks, Effect: effect, Duration: 50, Stacks: 2, Max: 3})

	e, ok := tbl.get(0, false, effect)
	if !ok {
		t.Fatalf("expected entry present")
	}
	if e.Stacks != 3 {
		t.Fatalf("Stacks = %d, want capped at 3", e.Stacks)
	}
	if e.Remaining != 50 {
		t.Fatalf("Remaining = %d, want reset to 50", e.Remaining)
	}
}

func TestStatusRemoveStacksDeletesAtZero(t *testing.T) {
	tbl := newStatusTable()
	effect := simevent.StatusEffect{ID: 30, Name: "stacks", Unique: true}
	tbl.apply(simevent.StatusPayload{Kind: simevent.StatusKindApply, Effect: effect, Duration: 100, Stacks: 2})

	tbl.apply(simevent.StatusPayload{Kind: simevent.StatusKindRemoveStacks, Effect: effect, Stacks: 1})
	if _, ok := tbl.get(0, false, effect); !ok {
		t.Fatalf("expected entry to survive with 1 stack left")
	}

	tbl.apply(simevent.StatusPayload{Kind: simevent.StatusKindRemoveStacks, Effect: effect, Stacks: 1})
	if _, ok := tbl.get(0, false, effect); ok {
		t.Fatalf("expected entry removed once stacks hit 0")
	}
}

func TestStatusUniqueCollapsesAcrossSources(t *testing.T) {
	tbl := newStatusTable()
	effect := simevent.StatusEffect{ID: 40, Name: "technical-finish", Unique: true}

	tbl.apply(simevent.StatusPayload{Kind: simevent.StatusKindApply, Source: 1, HasSource: true, Effect: effect, Duration: 1000})
	tbl.apply(simevent.StatusPayload{Kind: simevent.StatusKindApply, Source: 2, HasSource: true, Effect: effect, Duration: 500})

	if len(tbl.entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1 (unique collapses sources)", len(tbl.entries))
	}
	e, ok := tbl.get(2, true, effect)
	if !ok || e.Remaining != 500 {
		t.Fatalf("expected latest apply to win regardless of source, got %+v ok=%v", e, ok)
	}
}

func TestStatusNonUniqueKeyedBySource(t *testing.T) {
	tbl := newStatusTable()
	effect := simevent.StatusEffect{ID: 50, Name: "dot", Unique: false}

	tbl.apply(simevent.StatusPayload{Kind: simevent.StatusKindApplyDot, Source: 1, HasSource: true, Effect: effect, Duration: 1000})
	tbl.apply(simevent.StatusPayload{Kind: simevent.StatusKindApplyDot, Source: 2, HasSource: true, Effect: effect, Duration: 1000})

	if len(tbl.entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2 (non-unique keyed by source)", len(tbl.entries))
	}
}

func TestStatusAdvanceReportsZeroCrossingOffset(t *testing.T) {
	tbl := newStatusTable()
	effect := simevent.StatusEffect{ID: 60, Name: "buff", Unique: true}
	tbl.apply(simevent.StatusPayload{Kind: simevent.StatusKindApply, Effect: effect, Duration: 300})

	fallen := tbl.advance(1000)
	if len(fallen) != 1 {
		t.Fatalf("len(fallen) = %d, want 1", len(fallen))
	}
	if fallen[0].offset != 300 {
		t.Fatalf("offset = %d, want 300", fallen[0].offset)
	}
	if _, ok := tbl.get(0, false, effect); ok {
		t.Fatalf("expected entry removed after advance crosses zero")
	}
}
