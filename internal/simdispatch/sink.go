package simdispatch

import (
	"github.com/rs/zerolog"

	"xivsim/internal/simevent"
	"xivsim/internal/simqueue"
	"xivsim/internal/simrng"
)

// jobSink is the job.Sink the dispatcher hands to a job module for the
// duration of a single CastSnap/Event call: it has no memory of its own,
// just a delay-to-absolute-time translation over the shared queue and
// access to the shared RNG and logger.
type jobSink struct {
	q   *simqueue.Queue[simevent.Event]
	rng *simrng.Source
	now uint32
	log zerolog.Logger
}

func (s jobSink) Push(delay uint32, e simevent.Event) { s.q.Push(s.now+delay, e) }
func (s jobSink) RNG() *simrng.Source                 { return s.rng }
func (s jobSink) Log() zerolog.Logger                 { return s.log }

// queueAdapter is the aicoro.Queue a coroutine's ResumeCtx exposes: a
// thin wrapper posting at an absolute time, since scripts compute their
// own target times from Ctx().Time().
type queueAdapter struct{ q *simqueue.Queue[simevent.Event] }

func (a queueAdapter) Push(time uint32, e simevent.Event) { a.q.Push(time, e) }
