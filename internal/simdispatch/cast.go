package simdispatch

import (
	"fmt"

	"xivsim/internal/job"
	"xivsim/internal/simerr"
	"xivsim/internal/simevent"
	"xivsim/internal/simworld"
)

// startCast implements spec.md §4.D's five-step StartCast pipeline: price
// the cast through the job module, commit GCD/lock/MP/cooldown bookkeeping,
// and schedule the matching CastSnap.
func (d *Dispatcher) startCast(t uint32, id simevent.ActorID, action simevent.Action) error {
	player := d.world.Actor(id).Player
	info, err := d.module.CheckCast(d.world, id, action)
	if err != nil {
		return fmt.Errorf("%w: %s/%s", simerr.ErrJobRejected, action.Job, action.Name)
	}

	if info.GCD > player.GCD {
		player.GCD = info.GCD
	}
	player.Lock = info.Lock
	d.push(t+info.Lock, simevent.Event{Kind: simevent.KindCdEnd, Payload: simevent.CdEndPayload{Actor: id, Kind: simevent.CdEndLock}})
	d.push(t+player.GCD, simevent.Event{Kind: simevent.KindCdEnd, Payload: simevent.CdEndPayload{Actor: id, Kind: simevent.CdEndGCD}})

	if uint32(info.MP) > uint32(player.MP) {
		return fmt.Errorf("%w: actor %d casting %s/%s", simerr.ErrMPUnderflow, id, action.Job, action.Name)
	}
	player.MP -= info.MP

	for _, use := range [2]*job.CooldownUse{info.CD, info.AltCD} {
		if use == nil {
			continue
		}
		cd, ok := player.Cooldowns[use.Group]
		if !ok {
			cd = &simworld.ActionCd{}
			player.Cooldowns[use.Group] = cd
		}
		if !cd.Available(use.Duration, use.Charges) {
			return fmt.Errorf("%w: actor %d group %s", simerr.ErrCooldownConflict, id, use.Group)
		}
		cd.Apply(use.Duration, use.Charges)
		d.push(t+cd.CDUntil(use.Duration, use.Charges), simevent.Event{
			Kind:    simevent.KindCdEnd,
			Payload: simevent.CdEndPayload{Actor: id, Kind: simevent.CdEndJobCd, Group: use.Group},
		})
	}

	d.push(t+info.Snap, simevent.Event{Kind: simevent.KindCastSnap, Payload: simevent.CastSnapPayload{Actor: id, Action: action}})
	return nil
}

// seedPartnerEsprit schedules the first PartnerEsprit roll for every player
// actor at simulation start. Its own job module decides the roll chance and
// the reschedule cadence from there (see dnc.Module.Event), since only the
// job knows whether a Technical Finish buff is resident.
func (d *Dispatcher) seedPartnerEsprit(t uint32) {
	for _, actor := range d.world.Actors {
		if actor.Player == nil {
			continue
		}
		d.push(t, simevent.Event{Kind: simevent.KindPartnerEsprit, Payload: simevent.PartnerEspritPayload{Actor: actor.ID}})
	}
}
