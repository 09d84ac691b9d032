// Package dnc implements the Dancer job module: the action catalog,
// gauge/combo/step state, and the CheckCast/CastSnap/Event contract from
// internal/job. Action names, cooldown groups, and the overall shape
// (esprit/feathers/step gauge, combo-on-weaponskill, proc statuses
// consumed by follow-up casts) are grounded on original_source/src/
// dncai.rs's use of xivc_core::job::dnc; the concrete potencies, cast
// times, and statuses here are simplified stand-ins for that external
// crate's tables (documented in DESIGN.md), not a claim of exact
// parity with the real job.
package dnc

import "xivsim/internal/simevent"

// Action names every castable Dancer ability the rotation script uses.
type Action string

const (
	Cascade         Action = "cascade"
	Fountain        Action = "fountain"
	ReverseCascade  Action = "reverse_cascade"
	Fountainfall    Action = "fountainfall"
	SaberDance      Action = "saber_dance"
	DanceOfTheDawn  Action = "dance_of_the_dawn"
	LastDance       Action = "last_dance"
	Tillana         Action = "tillana"
	FinishingMove   Action = "finishing_move"
	StarfallDance   Action = "starfall_dance"
	Flourish        Action = "flourish"
	FanDance        Action = "fan_dance"
	FanDance3       Action = "fan_dance_3"
	FanDance4       Action = "fan_dance_4"
	Devilment       Action = "devilment"
	StandardStep    Action = "standard_step"
	StandardFinish  Action = "standard_finish"
	TechnicalStep   Action = "technical_step"
	TechnicalFinish Action = "technical_finish"
	Emboite         Action = "emboite"
	Entrechat       Action = "entrechat"
	Jete            Action = "jete"
	Pirouette       Action = "pirouette"
)

const (
	cdGroupFlourish   simevent.CooldownGroup = "flourish"
	cdGroupFans       simevent.CooldownGroup = "fan_dance"
	cdGroupDevilment  simevent.CooldownGroup = "devilment"
	cdGroupStandard   simevent.CooldownGroup = "standard_step"
	cdGroupTechnical  simevent.CooldownGroup = "technical_step"
	cdGroupSaberDance simevent.CooldownGroup = "saber_dance"
)

// isGCD reports whether action shares the global cooldown.
func isGCD(a Action) bool {
	switch a {
	case FanDance, FanDance3, FanDance4, Flourish, Devilment:
		return false
	default:
		return true
	}
}

// actionSpec is the static per-action timing/cost/cooldown table.
type actionSpec struct {
	potency  uint32
	mp       uint16
	lock     uint32
	snap     uint32
	cd       *cdSpec
	altCD    *cdSpec
}

type cdSpec struct {
	group    simevent.CooldownGroup
	duration uint32
	charges  uint8
}

var specs = map[Action]actionSpec{
	Cascade:         {potency: 220, lock: 600, snap: 670},
	Fountain:        {potency: 240, lock: 600, snap: 670},
	ReverseCascade:  {potency: 280, lock: 600, snap: 670},
	Fountainfall:    {potency: 300, lock: 600, snap: 670},
	SaberDance:      {potency: 480, lock: 600, snap: 670, cd: &cdSpec{cdGroupSaberDance, 1000, 1}},
	DanceOfTheDawn:  {potency: 900, lock: 600, snap: 670, cd: &cdSpec{cdGroupSaberDance, 1000, 1}},
	LastDance:       {potency: 400, lock: 600, snap: 670},
	Tillana:         {potency: 420, lock: 600, snap: 670},
	FinishingMove:   {potency: 850, lock: 600, snap: 670},
	StarfallDance:   {potency: 600, lock: 600, snap: 670},
	Flourish:        {lock: 600, snap: 0, cd: &cdSpec{cdGroupFlourish, 60000, 1}},
	FanDance:        {potency: 180, lock: 600, snap: 670, cd: &cdSpec{cdGroupFans, 1000, 2}},
	FanDance3:       {potency: 200, lock: 600, snap: 670},
	FanDance4:       {potency: 150, lock: 600, snap: 670},
	Devilment:       {lock: 600, snap: 0, cd: &cdSpec{cdGroupDevilment, 120000, 1}},
	StandardStep:    {lock: 600, snap: 0, cd: &cdSpec{cdGroupStandard, 30000, 1}},
	StandardFinish:  {potency: 360, lock: 600, snap: 1070},
	TechnicalStep:   {lock: 600, snap: 0, cd: &cdSpec{cdGroupTechnical, 120000, 1}},
	TechnicalFinish: {potency: 420, lock: 600, snap: 1070},
	Emboite:         {lock: 600, snap: 670},
	Entrechat:       {lock: 600, snap: 670},
	Jete:            {lock: 600, snap: 670},
	Pirouette:       {lock: 600, snap: 670},
}

// Event converts a into the job-agnostic simevent.Action the cast pipeline
// and job.Module contract deal in.
func (a Action) Event() simevent.Action {
	return simevent.Action{Job: "DNC", Name: string(a)}
}

// IsGCD reports whether a shares the global cooldown, for the rotation
// script to decide what Controller.Cast should wait on.
func IsGCD(a Action) bool { return isGCD(a) }
