package aicoro

import "xivsim/internal/simevent"

// Controller is the only way a running script observes the world or posts
// events. It is handed to Script at coroutine start and reused for the
// script's entire lifetime; the ResumeCtx it wraps is swapped for a fresh,
// independently-guarded snapshot on every suspend/resume.
type Controller struct {
	co  *Coroutine
	ctx *ResumeCtx
}

// Ctx returns the current resume snapshot. Valid only until the next
// wait/cast call — see ResumeCtx's active-flag guard.
func (c *Controller) Ctx() *ResumeCtx {
	return c.ctx
}

// yieldWait is the sole suspension primitive: it reports this step as
// pending to Resume, retires the current snapshot, and blocks until the
// next Resume call supplies a fresh one.
func (c *Controller) yieldWait() {
	c.ctx.active = false
	c.co.yieldCh <- yieldMsg{completed: false}
	c.ctx = <-c.co.resumeCh
}

// WaitGCD suspends until both the GCD and animation-lock recharge
// notifications have been observed for this actor.
func (c *Controller) WaitGCD() {
	waitGCD, waitLock := true, true
	for {
		actor := c.Ctx().Actor()
		switch p := eventPayload[simevent.CdEndPayload](c.Ctx().Event()); {
		case p != nil && p.Actor == actor && p.Kind == simevent.CdEndGCD:
			waitGCD = false
		case p != nil && p.Actor == actor && p.Kind == simevent.CdEndLock:
			waitLock = false
		}
		if !waitGCD && !waitLock {
			return
		}
		c.yieldWait()
	}
}

// WaitLock suspends until the animation-lock recharge notification has
// been observed for this actor.
func (c *Controller) WaitLock() {
	for {
		actor := c.Ctx().Actor()
		if p := eventPayload[simevent.CdEndPayload](c.Ctx().Event()); p != nil && p.Actor == actor && p.Kind == simevent.CdEndLock {
			return
		}
		c.yieldWait()
	}
}

// ActionCooldown reports the milliseconds remaining before group next has
// an available charge. Scripts use this (via the job module) to decide
// what WaitAction should block on; it is supplied by the caller rather
// than looked up here to keep this package free of a simworld dependency.
type ActionCooldown struct {
	Group        simevent.CooldownGroup
	MsUntilReady uint32
}

// WaitAction suspends until the actor's GCD, lock, and (if any) the
// action's cooldown group are all available.
func (c *Controller) WaitAction(needsGCD bool, cd *ActionCooldown, gcdReady, lockReady bool) {
	waitGCD := needsGCD && !gcdReady
	waitLock := !lockReady
	var waitCD *simevent.CooldownGroup
	if cd != nil && cd.MsUntilReady > 0 {
		g := cd.Group
		waitCD = &g
	}

	for {
		actor := c.Ctx().Actor()
		switch p := eventPayload[simevent.CdEndPayload](c.Ctx().Event()); {
		case p != nil && p.Actor == actor && p.Kind == simevent.CdEndGCD:
			waitGCD = false
		case p != nil && p.Actor == actor && p.Kind == simevent.CdEndLock:
			waitLock = false
		case p != nil && p.Actor == actor && p.Kind == simevent.CdEndJobCd && waitCD != nil && p.Group == *waitCD:
			waitCD = nil
		}
		if !waitGCD && !waitLock && waitCD == nil {
			return
		}
		c.yieldWait()
	}
}

// WaitBeforeGCD suspends until exactly beforeMs remain on the actor's GCD,
// by enqueuing a dedicated Other event at that target time and waiting
// for it. If the GCD already has beforeMs or less remaining, it returns
// immediately without enqueuing anything.
func (c *Controller) WaitBeforeGCD(gcdRemaining, beforeMs uint32) {
	if gcdRemaining <= beforeMs {
		return
	}
	target := c.Ctx().Time() + (gcdRemaining - beforeMs)
	c.Ctx().Queue().Push(target, simevent.Event{Kind: simevent.KindOther, Payload: simevent.OtherPayload{}})

	for {
		c.yieldWait()
		if c.Ctx().Event().Kind == simevent.KindOther && c.Ctx().Time() == target {
			return
		}
	}
}

// Wait suspends for exactly delay milliseconds, via the same Other-event
// round-trip as WaitBeforeGCD.
func (c *Controller) Wait(delay uint32) {
	target := c.Ctx().Time() + delay
	c.Ctx().Queue().Push(target, simevent.Event{Kind: simevent.KindOther, Payload: simevent.OtherPayload{}})

	for {
		c.yieldWait()
		if c.Ctx().Event().Kind == simevent.KindOther && c.Ctx().Time() == target {
			return
		}
	}
}

// Cast suspends until the action's prerequisites are satisfied (as
// WaitAction would), posts StartCast at the current time, then suspends
// until the matching CastSnap is observed.
func (c *Controller) Cast(action simevent.Action, needsGCD bool, cd *ActionCooldown, gcdReady, lockReady bool) {
	c.WaitAction(needsGCD, cd, gcdReady, lockReady)

	actor := c.Ctx().Actor()
	c.Ctx().Queue().Push(c.Ctx().Time(), simevent.Event{
		Kind:    simevent.KindStartCast,
		Payload: simevent.StartCastPayload{Actor: actor, Action: action},
	})

	for {
		c.yieldWait()
		if p := eventPayload[simevent.CastSnapPayload](c.Ctx().Event()); p != nil && p.Actor == actor && p.Action == action {
			return
		}
	}
}

func eventPayload[T any](e simevent.Event) *T {
	if p, ok := e.Payload.(T); ok {
		return &p
	}
	return nil
}
