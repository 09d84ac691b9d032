// Package ffxivmath is the damage-math library the simulation kernel
// treats as an opaque pure function, per spec.md §1 ("consumed as a pure
// function from (potency, stats, buffs, crit/dhit rolls) to integer
// damage"). The concrete formulas here are simplified, publicly-known-shape
// approximations of the real game's math — they are not a claim of exact
// parity with xivc_core::math::XivMath, which is external to this repo; see
// DESIGN.md.
package ffxivmath

import "fmt"

// Stats is a player's raw attribute block, one field per spec.md §3's
// twelve stats.
type Stats struct {
	Level uint8
	Str   uint16 `ycf:"str"`
	Vit   uint16 `ycf:"vit"`
	Dex   uint16 `ycf:"dex"`
	Int   uint16 `ycf:"int"`
	Mnd   uint16 `ycf:"mnd"`
	Det   uint16 `ycf:"det"`
	Crt   uint16 `ycf:"crt"`
	Dh    uint16 `ycf:"dh"`
	Sks   uint16 `ycf:"sks"`
	Sps   uint16 `ycf:"sps"`
	Ten   uint16 `ycf:"ten"`
	Pie   uint16 `ycf:"pie"`
}

// Weapon describes the equipped weapon's contribution to auto-attack and
// job-attack-stat damage.
type Weapon struct {
	PhysicalDamage uint16
	MagicalDamage  uint16
	AutoAttack     uint16 // weapon delay, in ms
}

// JobInfo carries the per-job constants that scale potency into damage:
// the job attack modifier (traits like Dancer's 100 is identity) and
// whether the job is a physical-ranged DPS using DEX/physical damage.
type JobInfo struct {
	JobModAttack uint16 // basis 100 = no bonus
	MainStat     MainStat
}

// MainStat names which raw stat feeds a job's attack power.
type MainStat int

const (
	MainStatStrength MainStat = iota
	MainStatDexterity
	MainStatIntelligence
	MainStatMind
)

var mainStatNames = map[string]MainStat{
	"strength":     MainStatStrength,
	"dexterity":    MainStatDexterity,
	"intelligence": MainStatIntelligence,
	"mind":         MainStatMind,
}

// UnmarshalYCF lets a scenario file spell player_info.MainStat as a bare
// name ("dexterity") instead of its underlying integer value.
func (m *MainStat) UnmarshalYCF(v any) error {
	name, ok := v.(string)
	if !ok {
		return fmt.Errorf("main_stat must be a string, got %T", v)
	}
	stat, ok := mainStatNames[name]
	if !ok {
		return fmt.Errorf("unknown main_stat %q", name)
	}
	*m = stat
	return nil
}

const (
	levelMainStat = 390 // level-90 baseline main stat, per public level-mod tables
	levelSubStat  = 400 // level-90 baseline sub stat
	levelDiv      = 1900
)

// Buffs is a snapshot of the additive bonuses active statuses contribute to
// a single damage instance: a damage multiplier plus basis-point bonuses to
// crit/direct-hit chance. It plays the role of xivc_core's StatusSnapshot,
// simplified to the additive fields this repo's statuses actually produce.
type Buffs struct {
	DamageMultiplierBP int32 // additive to 10000 (10000 = x1.0)
	CritChanceBonusBP  int32
	DHitChanceBonusBP  int32
}

// Math bundles a player's stats/weapon/job into the precomputed values
// needed for repeated per-cast damage calculation, mirroring the original's
// XivMath being built once per actor and reused.
type Math struct {
	stats  Stats
	weapon Weapon
	job    JobInfo

	mainStatValue  uint32
	critChanceBP   uint16
	dhitChanceBP   uint16
	detMultiplier  uint32 // basis 10000
	speedMultiplier uint32 // basis 10000, lower = faster GCD
}

// New precomputes derived rates from raw stats.
func New(stats Stats, weapon Weapon, job JobInfo) *Math {
	m := &Math{stats: stats, weapon: weapon, job: job}

	switch job.MainStat {
	case MainStatStrength:
		m.mainStatValue = uint32(stats.Str)
	case MainStatDexterity:
		m.mainStatValue = uint32(stats.Dex)
	case MainStatIntelligence:
		m.mainStatValue = uint32(stats.Int)
	case MainStatMind:
		m.mainStatValue = uint32(stats.Mnd)
	}

	m.critChanceBP = 500 + bpFromSubstat(uint32(stats.Crt), 200)
	m.dhitChanceBP = bpFromSubstat(uint32(stats.Dh), 550)
	m.detMultiplier = 10000 + uint32(bpFromSubstat(uint32(stats.Det), 140))
	m.speedMultiplier = 10000 - uint32(bpFromSubstat(uint32(stats.Sks)+uint32(stats.Sps)-levelSubStat, 65))

	return m
}

// bpFromSubstat converts a substat (crit/dhit/det/speed) above the level's
// baseline substat into basis points using the public "Stat formula" shape:
// floor(coefficient*(stat-substat)/div).
func bpFromSubstat(stat uint32, coefficient uint32) uint16 {
	if stat <= levelSubStat {
		return 0
	}
	return uint16((coefficient * (stat - levelSubStat)) / levelDiv)
}

// CritChanceBP returns this actor's base critical-hit chance in basis points
// (0-10000), before any buff bonus.
func (m *Math) CritChanceBP() uint16 { return m.critChanceBP }

// DHitChanceBP returns this actor's base direct-hit chance in basis points.
func (m *Math) DHitChanceBP() uint16 { return m.dhitChanceBP }

// EffectiveCritChanceBP applies a buff bonus and clamps to [0, 10000].
func (m *Math) EffectiveCritChanceBP(buffs Buffs) uint16 {
	return clampBP(int32(m.critChanceBP) + buffs.CritChanceBonusBP)
}

// EffectiveDHitChanceBP applies a buff bonus and clamps to [0, 10000].
func (m *Math) EffectiveDHitChanceBP(buffs Buffs) uint16 {
	return clampBP(int32(m.dhitChanceBP) + buffs.DHitChanceBonusBP)
}

func clampBP(v int32) uint16 {
	if v < 0 {
		return 0
	}
	if v > 10000 {
		return 10000
	}
	return uint16(v)
}

// ActionDamage computes the integer damage for a single hit of a given
// potency, applying determination, the job attack modifier, the crit/direct
// hit results already rolled by the caller, a sampled variance multiplier,
// and any buff damage multiplier.
func (m *Math) ActionDamage(potency uint32, crit, directHit bool, variance float64, buffs Buffs) uint64 {
	base := m.baseActionDamage(potency)
	return m.applyHitModifiers(base, crit, directHit, variance, buffs)
}

func (m *Math) baseActionDamage(potency uint32) float64 {
	attack := float64(m.mainStatValue) * float64(100+m.stats.Level/2) / levelMainStat
	jobMod := float64(m.job.JobModAttack) / 100
	det := float64(m.detMultiplier) / 10000
	return float64(potency) / 100 * attack * jobMod * det
}

func (m *Math) applyHitModifiers(base float64, crit, directHit bool, variance float64, buffs Buffs) uint64 {
	result := base
	if crit {
		result *= 1.4 // standard FFXIV crit multiplier approximation
	}
	if directHit {
		result *= 1.25
	}
	result *= variance
	result *= 1 + float64(buffs.DamageMultiplierBP)/10000
	if result < 0 {
		result = 0
	}
	return uint64(result)
}

// EotSnapshot captures the rates and base damage of a damage-over-time
// effect at the moment it was applied, so every subsequent ActorTick rolls
// against the snapshot rather than the target's live (possibly different)
// stats — this mirrors spec.md §3's StatusEntry DoT-snapshot invariant.
type EotSnapshot struct {
	Base          float64
	CritChanceBP  uint16
	DHitChanceBP  uint16
}

// DotDamageSnapshot builds an EotSnapshot for a DoT application.
func (m *Math) DotDamageSnapshot(potency uint32, buffs Buffs) EotSnapshot {
	return EotSnapshot{
		Base:         m.baseActionDamage(potency),
		CritChanceBP: m.EffectiveCritChanceBP(buffs),
		DHitChanceBP: m.EffectiveDHitChanceBP(buffs),
	}
}

// EotResult resolves a single DoT tick against a pre-rolled crit/direct-hit
// outcome and a freshly-sampled variance.
func (s EotSnapshot) EotResult(crit, directHit bool, variance float64) uint64 {
	result := s.Base
	if crit {
		result *= 1.4
	}
	if directHit {
		result *= 1.25
	}
	result *= variance
	if result < 0 {
		result = 0
	}
	return uint64(result)
}

// AutoAttackDamage computes a weapon auto-attack hit.
func (m *Math) AutoAttackDamage(potency uint32, crit, directHit bool, variance float64, buffs Buffs) uint64 {
	weaponDamage := float64(m.weapon.PhysicalDamage)
	if m.job.MainStat == MainStatIntelligence || m.job.MainStat == MainStatMind {
		weaponDamage = float64(m.weapon.MagicalDamage)
	}
	base := m.baseActionDamage(potency) * (1 + weaponDamage/100)
	return m.applyHitModifiers(base, crit, directHit, variance, buffs)
}

// MpRegen returns the per-MpTick (3000ms) MP regeneration amount, scaled by
// Piety.
func (m *Math) MpRegen() uint16 {
	base := 200 + (uint32(m.stats.Pie)-levelSubStat)*3/10
	if int32(base) < 0 {
		return 0
	}
	return uint16(base)
}

// ScaleDuration scales a cast/recast time (in ms) by this actor's skill or
// spell speed, per the speedMultiplier precomputed in New.
func (m *Math) ScaleDuration(base uint32) uint32 {
	return base * m.speedMultiplier / 10000
}
