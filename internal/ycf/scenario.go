package ycf

import (
	"fmt"
	"os"

	"xivsim/internal/ffxivmath"
)

// defaultLevel mirrors original_source/src/data.rs's StatData::new(),
// which defaults an absent stats table to level 90 with every other stat
// at its level-90 baseline of zero.
const defaultLevel = 90

// Scenario is the decoded form of a `.ycf` scenario file: the root table
// described by original_source/src/data.rs's SimData.
type Scenario struct {
	Players  []PlayerSpec `ycf:"players"`
	Enemies  []EnemySpec  `ycf:"enemies"`
	InCombat uint32       `ycf:"in_combat"`
	End      uint32       `ycf:"end"`
	Report   ReportConfig `ycf:"report"`
}

// ReportConfig toggles which event kinds Dispatcher.Report is asked to
// print, one flag per simevent.Kind the CLI cares about.
type ReportConfig struct {
	MpTick    bool `ycf:"mp_tick"`
	Damage    bool `ycf:"damage"`
	Status    bool `ycf:"status"`
	CastStart bool `ycf:"cast_start"`
	CastSnap  bool `ycf:"cast_snap"`
	JobEvent  bool `ycf:"job_event"`
	Target    bool `ycf:"target"`
}

// PlayerSpec is one `[[players]]` entry.
type PlayerSpec struct {
	Name            string            `ycf:"name"`
	Job             string            `ycf:"job"`
	Stats           ffxivmath.Stats   `ycf:"stats"`
	Weapon          ffxivmath.Weapon  `ycf:"weapon"`
	PlayerInfo      ffxivmath.JobInfo `ycf:"player_info"`
	FirstActorTick  uint32            `ycf:"first_actor_tick"`
	FirstMpTick     uint32            `ycf:"first_mp_tick"`
	FirstAutoAttack uint32            `ycf:"first_auto_attack"`
	FirstAction     uint32            `ycf:"first_action"`
	Actions         []ActionEntry     `ycf:"actions"`
}

// EnemySpec is one `[[enemies]]` entry.
type EnemySpec struct {
	Name           string           `ycf:"name"`
	FirstActorTick uint32           `ycf:"first_actor_tick"`
	Untarget       []UntargetWindow `ycf:"untarget"`
}

// ActionEntry is a scenario rotation-list entry: a bare action name, or a
// `[delay, "name"]` pair to wait delay ms before the start of the next
// cast. It mirrors original_source/src/data.rs's untagged
// ActionKind<String>::{Normal, Delay} enum.
type ActionEntry struct {
	Delay uint32
	Name  string
}

// UnmarshalYCF accepts either a bare string ("cascade") or a two-element
// array ([500, "fountain"]).
func (a *ActionEntry) UnmarshalYCF(v any) error {
	switch val := v.(type) {
	case string:
		a.Name = val
		return nil
	case []any:
		if len(val) != 2 {
			return fmt.Errorf("action entry must be a name or [delay, name], got %d elements", len(val))
		}
		delay, ok := toFloat(val[0])
		if !ok {
			return fmt.Errorf("action entry delay must be numeric, got %T", val[0])
		}
		name, ok := val[1].(string)
		if !ok {
			return fmt.Errorf("action entry name must be a string, got %T", val[1])
		}
		a.Delay = uint32(delay)
		a.Name = name
		return nil
	default:
		return fmt.Errorf("action entry must be a name or [delay, name], got %T", v)
	}
}

// UntargetWindow is one `[start_ms, end_ms]` untargetable period.
type UntargetWindow struct {
	Start uint32
	End   uint32
}

func (w *UntargetWindow) UnmarshalYCF(v any) error {
	arr, ok := v.([]any)
	if !ok || len(arr) != 2 {
		return fmt.Errorf("untarget window must be [start, end], got %T", v)
	}
	start, ok := toFloat(arr[0])
	if !ok {
		return fmt.Errorf("untarget window start must be numeric, got %T", arr[0])
	}
	end, ok := toFloat(arr[1])
	if !ok {
		return fmt.Errorf("untarget window end must be numeric, got %T", arr[1])
	}
	w.Start = uint32(start)
	w.End = uint32(end)
	return nil
}

// Load reads and decodes the scenario file at path, then fills in the
// level-90 stat baseline for any player whose `stats` table was omitted
// or left the level field unset.
func Load(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}

	var s Scenario
	if err := Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	for i := range s.Players {
		if s.Players[i].Stats.Level == 0 {
			s.Players[i].Stats.Level = defaultLevel
		}
		if s.Players[i].PlayerInfo.MainStat == 0 && s.Players[i].PlayerInfo.JobModAttack == 0 {
			applyJobDefaults(&s.Players[i])
		}
	}
	return &s, nil
}

// jobMainStat and jobModAttack hold the per-job baseline PlayerInfo
// values a scenario author can omit; DNC is the only job this repo
// implements, so it is the only entry.
var jobMainStat = map[string]ffxivmath.MainStat{
	"DNC": ffxivmath.MainStatDexterity,
}

var jobModAttack = map[string]uint16{
	"DNC": 115,
}

func applyJobDefaults(p *PlayerSpec) {
	if stat, ok := jobMainStat[p.Job]; ok {
		p.PlayerInfo.MainStat = stat
	}
	if mod, ok := jobModAttack[p.Job]; ok {
		p.PlayerInfo.JobModAttack = mod
	}
}
