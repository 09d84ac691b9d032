package simworld

import (
	"xivsim/internal/ffxivmath"
	"xivsim/internal/simevent"
)

// statusKey is the map key for an actor's status table. Unique effects
// collapse the source out of the key entirely, per spec.md §3 — two
// sources applying the same unique effect to one target hit the same
// entry.
type statusKey struct {
	source    simevent.ActorID
	hasSource bool
	effect    simevent.StatusEffect
}

func keyFor(source simevent.ActorID, hasSource bool, effect simevent.StatusEffect) statusKey {
	if effect.Unique {
		return statusKey{effect: effect}
	}
	return statusKey{source: source, hasSource: hasSource, effect: effect}
}

// StatusEntry is a single resident status/buff/debuff instance.
type StatusEntry struct {
	Source    simevent.ActorID
	HasSource bool
	Effect    simevent.StatusEffect
	Remaining uint32
	Stacks    uint8
	Snapshot  *ffxivmath.EotSnapshot
}

// statusTable holds every StatusEntry currently resident on one actor.
type statusTable struct {
	entries map[statusKey]*StatusEntry
}

func newStatusTable() *statusTable {
	return &statusTable{entries: make(map[statusKey]*StatusEntry)}
}

// advance decrements every resident entry's remaining time by dt, removing
// any that cross zero and reporting their keys (with the precise
// zero-crossing offset from the start of this advance) so the caller can
// post FallOff events at the exact instant, per spec.md §4.B step 2.
type fallenEntry struct {
	key        statusKey
	entry      *StatusEntry
	offset     uint32 // ms after the start of this advance that the entry hit zero
}

func (t *statusTable) advance(dt uint32) []fallenEntry {
	var fallen []fallenEntry
	for k, e := range t.entries {
		if e.Remaining <= dt {
			fallen = append(fallen, fallenEntry{key: k, entry: e, offset: e.Remaining})
			delete(t.entries, k)
			continue
		}
		e.Remaining -= dt
	}
	return fallen
}

// apply resolves a Status event against this table per the kind-specific
// policy table of spec.md §4.D. It returns the resident entry's key so the
// caller can schedule a CheckStatusFalloff follow-up where the policy calls
// for one.
func (t *statusTable) apply(p simevent.StatusPayload) (key statusKey, armFalloff bool, falloffDelay uint32) {
	key = keyFor(p.Source, p.HasSource, p.Effect)

	switch p.Kind {
	case simevent.StatusKindApply:
		t.entries[key] = &StatusEntry{
			Source: p.Source, HasSource: p.HasSource, Effect: p.Effect,
			Remaining: p.Duration, Stacks: p.Stacks,
		}
		return key, true, p.Duration

	case simevent.StatusKindApplyDot:
		t.entries[key] = &StatusEntry{
			Source: p.Source, HasSource: p.HasSource, Effect: p.Effect,
			Remaining: p.Duration, Stacks: p.Stacks, Snapshot: p.Snapshot,
		}
		return key, true, p.Duration

	case simevent.StatusKindRemove, simevent.StatusKindFallOff:
		delete(t.entries, key)
		return key, false, 0

	case simevent.StatusKindRemoveStacks:
		if e, ok := t.entries[key]; ok {
			if e.Stacks <= p.Stacks {
				delete(t.entries, key)
			} else {
				e.Stacks -= p.Stacks
			}
		}
		return key, false, 0

	case simevent.StatusKindApplyOrExtend:
		if e, ok := t.entries[key]; ok {
			total := e.Remaining + p.Duration
			if total > p.Max {
				total = p.Max
			}
			e.Remaining = total
			e.Stacks = p.Stacks
		} else {
			t.entries[key] = &StatusEntry{
				Source: p.Source, HasSource: p.HasSource, Effect: p.Effect,
				Remaining: p.Duration, Stacks: p.Stacks,
			}
		}
		return key, true, t.entries[key].Remaining

	case simevent.StatusKindApplyOrAddStacks:
		if e, ok := t.entries[key]; ok {
			e.Remaining = p.Duration
			stacks := e.Stacks + p.Stacks
			if stacks > p.Max {
				stacks = p.Max
			}
			e.Stacks = stacks
		} else {
			t.entries[key] = &StatusEntry{
				Source: p.Source, HasSource: p.HasSource, Effect: p.Effect,
				Remaining: p.Duration, Stacks: p.Stacks,
			}
		}
		return key, true, p.Duration
	}

	return key, false, 0
}

func (t *statusTable) get(source simevent.ActorID, hasSource bool, effect simevent.StatusEffect) (*StatusEntry, bool) {
	e, ok := t.entries[keyFor(source, hasSource, effect)]
	return e, ok
}

func (t *statusTable) dotSnapshots() []*StatusEntry {
	var out []*StatusEntry
	for _, e := range t.entries {
		if e.Snapshot != nil {
			out = append(out, e)
		}
	}
	return out
}
