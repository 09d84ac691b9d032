// Package simreport formats dispatched events into the
// `SSS.mmm: Kind { field=value, ... }` lines spec.md §6 describes,
// grounded on original_source/src/main.rs's ReportData/ReportKind
// Display impl (same `{:>4}.{:03}` time prefix, same debug-struct-style
// field dump, adapted from Rust's `field: value` to the spec's
// `field=value`).
package simreport

import (
	"fmt"
	"strconv"
	"strings"

	"xivsim/internal/simevent"
	"xivsim/internal/simworld"
)

// Config toggles which event kinds produce an output line, one flag per
// report kind in spec.md §6.
type Config struct {
	MpTick    bool
	Damage    bool
	Status    bool
	CastStart bool
	CastSnap  bool
	JobEvent  bool
	Target    bool
}

// Reporter renders dispatched events into report lines, gated by Config.
type Reporter struct {
	cfg   Config
	world *simworld.World
}

func New(cfg Config, world *simworld.World) *Reporter {
	return &Reporter{cfg: cfg, world: world}
}

func (r *Reporter) name(id simevent.ActorID) string {
	if int(id) < len(r.world.Actors) {
		return r.world.Actor(id).Name
	}
	return ""
}

// Line renders e as a report line. ok is false when e's kind is never
// reported (KindCdEnd, KindOther, ...) or its Config flag is off.
func (r *Reporter) Line(time uint32, e simevent.Event) (string, bool) {
	body, ok := r.body(e)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%4d.%03d: %s", time/1000, time%1000, body), true
}

func (r *Reporter) body(e simevent.Event) (string, bool) {
	switch e.Kind {
	case simevent.KindMpTick:
		if !r.cfg.MpTick {
			return "", false
		}
		p := e.Payload.(simevent.MpTickPayload)
		return render("MpTick",
			field("actor", r.name(p.Actor)),
			field("from", p.From),
			field("to", p.To),
			field("tick", p.Tick),
		), true

	case simevent.KindDamage:
		if !r.cfg.Damage {
			return "", false
		}
		p := e.Payload.(simevent.DamagePayload)
		return render("Damage",
			field("source", r.name(p.Source)),
			field("target", r.name(p.Target)),
			field("action", p.Action.Name),
			field("damage", p.Amount),
		), true

	case simevent.KindStatus:
		if !r.cfg.Status {
			return "", false
		}
		p := e.Payload.(simevent.StatusPayload)
		return render("Status",
			field("status", p.Effect.Name),
			field("source", r.name(p.Source)),
			field("target", r.name(p.Target)),
			field("kind", statusKindName(p.Kind)),
		), true

	case simevent.KindStartCast:
		if !r.cfg.CastStart {
			return "", false
		}
		p := e.Payload.(simevent.StartCastPayload)
		return render("CastStart",
			field("source", r.name(p.Actor)),
			field("action", p.Action.Name),
		), true

	case simevent.KindCastSnap:
		if !r.cfg.CastSnap {
			return "", false
		}
		p := e.Payload.(simevent.CastSnapPayload)
		return render("CastSnap",
			field("source", r.name(p.Actor)),
			field("action", p.Action.Name),
		), true

	case simevent.KindJob:
		if !r.cfg.JobEvent {
			return "", false
		}
		p := e.Payload.(simevent.JobPayload)
		return render("JobEvent",
			field("event", fmt.Sprint(p.Event)),
			field("actor", r.name(p.Actor)),
		), true

	case simevent.KindTargetable, simevent.KindUntargetable:
		if !r.cfg.Target {
			return "", false
		}
		canTarget := e.Kind == simevent.KindTargetable
		var actor simevent.ActorID
		if canTarget {
			actor = e.Payload.(simevent.TargetablePayload).Actor
		} else {
			actor = e.Payload.(simevent.UntargetablePayload).Actor
		}
		return render("Target",
			field("actor", r.name(actor)),
			field("can_target", canTarget),
		), true

	default:
		return "", false
	}
}

// statusKindName mirrors original_source/src/main.rs's StatusReportKind
// variants, adapted to this repo's StatusApplyKind set.
func statusKindName(k simevent.StatusApplyKind) string {
	switch k {
	case simevent.StatusKindApply:
		return "Apply"
	case simevent.StatusKindApplyDot:
		return "ApplyDot"
	case simevent.StatusKindRemove:
		return "Remove"
	case simevent.StatusKindFallOff:
		return "NaturalRemove"
	case simevent.StatusKindRemoveStacks:
		return "RemoveStacks"
	case simevent.StatusKindApplyOrExtend:
		return "ExtendDuration"
	case simevent.StatusKindApplyOrAddStacks:
		return "AddStacks"
	default:
		return "Unknown"
	}
}

type kv struct {
	key string
	val string
}

func field(key string, v any) kv {
	switch val := v.(type) {
	case string:
		return kv{key, strconv.Quote(val)}
	default:
		return kv{key, fmt.Sprint(val)}
	}
}

func render(kind string, fields ...kv) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.key + "=" + f.val
	}
	return kind + " { " + strings.Join(parts, ", ") + " }"
}
