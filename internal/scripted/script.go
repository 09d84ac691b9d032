// Package scripted drives a player actor off a flat list of actions
// instead of a hand-written rotation, for the `actions` field a scenario
// may set on a `[[players]]` entry. It is grounded on
// original_source/src/main.rs's actual simulation driver, which never
// touches the dncai.rs/jobai.rs coroutine engine at all: every actor just
// walks a Peekable<ActionKind<Action>> iterator, scheduling the next
// StartCast off the current cast's GCD/lock-clear time plus the entry's
// extra delay. Expressed here over the job.Module/aicoro.Controller
// contracts instead of that direct iterator so it can share the cast
// pipeline with internal/dancer's hand-written rotation.
package scripted

import (
	"xivsim/internal/aicoro"
	"xivsim/internal/job"
	"xivsim/internal/simevent"
	"xivsim/internal/simworld"
)

// Entry is one scripted rotation step: cast Action, having first waited
// Delay extra milliseconds past the point the actor's lock clears. The wait
// for the GCD, when the action needs one, follows that delay; it is not
// added to it.
type Entry struct {
	Delay  uint32
	Action simevent.Action
}

// NewScript builds an aicoro.Script that walks entries in order, once
// each, for actor. A CheckCast rejection (a scenario authored an action
// the actor's job can never cast) skips that entry rather than aborting
// the rest of the list, since the remaining entries may still be valid.
func NewScript(world *simworld.World, actor simevent.ActorID, module job.Module, entries []Entry) aicoro.Script {
	return func(ctrl *aicoro.Controller) {
		for i, entry := range entries {
			// The first entry waits for the primed lock CdEnd; later ones
			// only while the lock still runs, since a cast whose snapshot
			// lands after its lock has already consumed that CdEnd.
			if i == 0 || world.Actor(actor).Player.Lock > 0 {
				ctrl.WaitLock()
			}
			if entry.Delay > 0 {
				ctrl.Wait(entry.Delay)
			}
			castNow(ctrl, world, actor, module, entry.Action)
		}
	}
}

func castNow(ctrl *aicoro.Controller, world *simworld.World, actor simevent.ActorID, module job.Module, action simevent.Action) {
	player := world.Actor(actor).Player
	info, err := module.CheckCast(world, actor, action)
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
	ctrl.Cast(action, info.GCD > 0, cd, player.GCD == 0, player.Lock == 0)
}
