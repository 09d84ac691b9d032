// Package aicoro is the single-threaded cooperative suspend/resume engine
// that lets a player actor's rotation be written as a linear script
// instead of a state machine the dispatcher drives by hand. The original
// implementation gets this from a hand-rolled, unsafely-pinned Rust
// Future; Go has no stackful coroutines, so this package reaches for the
// idiomatic replacement — one goroutine per script, handed control
// strictly one step at a time over a pair of unbuffered channels, so at
// any instant exactly one of {dispatcher, script} is actually running.
package aicoro

import (
	"context"

	"golang.org/x/sync/semaphore"

	"xivsim/internal/simerr"
	"xivsim/internal/simevent"
)

// maxLiveCoroutines bounds how many per-actor script goroutines may be
// mid-flight (spawned but not yet completed) at once. Real scenarios carry
// a handful of player actors, so this is a defensive ceiling rather than a
// load-bearing limit — see DESIGN.md.
const maxLiveCoroutines = 256

var liveSemaphore = semaphore.NewWeighted(maxLiveCoroutines)

// Queue is the subset of the event queue a script is allowed to touch:
// posting new events at an absolute time. It is satisfied by the
// dispatcher's push closure.
type Queue interface {
	Push(time uint32, e simevent.Event)
}

// ResumeCtx is the borrowed snapshot of "now" a Controller exposes to a
// running script. Its fields are only reachable through accessor methods,
// each of which checks the active flag: once the Controller moves on to
// the next suspension, this exact snapshot is marked inactive, so a
// script that stashed the pointer and reads it later panics instead of
// silently observing stale state. That is the Go analogue of the
// original Rust engine's borrowed-across-suspension check.
type ResumeCtx struct {
	time   uint32
	event  simevent.Event
	actor  simevent.ActorID
	queue  Queue
	active bool
}

// NewResumeCtx builds an active snapshot for a single Resume call.
func NewResumeCtx(time uint32, event simevent.Event, actor simevent.ActorID, queue Queue) *ResumeCtx {
	return &ResumeCtx{time: time, event: event, actor: actor, queue: queue, active: true}
}

func (r *ResumeCtx) checkActive() {
	if !r.active {
		panic(simerr.ErrBorrowedContext)
	}
}

// Time returns the current dispatch time.
func (r *ResumeCtx) Time() uint32 { r.checkActive(); return r.time }

// Event returns the event that triggered this resume.
func (r *ResumeCtx) Event() simevent.Event { r.checkActive(); return r.event }

// Actor returns the id of the actor this coroutine belongs to.
func (r *ResumeCtx) Actor() simevent.ActorID { r.checkActive(); return r.actor }

// Queue returns the event queue this resume may post follow-up events to.
func (r *ResumeCtx) Queue() Queue { r.checkActive(); return r.queue }

// Script is a rotation written as ordinary sequential Go code that calls
// Controller's wait/cast primitives to suspend.
type Script func(ctrl *Controller)

type yieldMsg struct {
	completed bool
}

// Coroutine drives one Script, one resume at a time.
type Coroutine struct {
	script   Script
	resumeCh chan *ResumeCtx
	yieldCh  chan yieldMsg
	started  bool
	done     bool
}

// New prepares a Coroutine for script. The backing goroutine is not
// spawned until the first Resume call, so constructing many idle
// Coroutines up front (one per player actor) is cheap.
func New(script Script) *Coroutine {
	return &Coroutine{
		script:   script,
		resumeCh: make(chan *ResumeCtx),
		yieldCh:  make(chan yieldMsg),
	}
}

// Resume hands the script one step of execution: it becomes runnable with
// ctx as its current snapshot, runs until it next suspends or completes,
// and control returns here. It reports whether the script is still
// pending (true) or has completed (false), matching the Rust original's
// Poll::Pending/Poll::Ready contract.
func (c *Coroutine) Resume(ctx *ResumeCtx) bool {
	if c.done {
		return false
	}
	if !c.started {
		c.started = true
		if err := liveSemaphore.Acquire(context.Background(), 1); err != nil {
			panic(err)
		}
		go c.run()
	}
	c.resumeCh <- ctx
	msg := <-c.yieldCh
	if msg.completed {
		c.done = true
		liveSemaphore.Release(1)
	}
	return !msg.completed
}

// Done reports whether the script has finished and been dropped.
func (c *Coroutine) Done() bool { return c.done }

func (c *Coroutine) run() {
	ctrl := &Controller{co: c}
	ctrl.ctx = <-c.resumeCh
	c.script(ctrl)
	c.yieldCh <- yieldMsg{completed: true}
}
