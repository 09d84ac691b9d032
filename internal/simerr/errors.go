// Package simerr defines the sentinel errors surfaced by the simulation
// kernel, so callers can errors.Is against a stable taxonomy instead of
// matching on message text.
package simerr

import "errors"

var (
	// ErrCooldownConflict is returned when a cast pipeline step tries to
	// apply a cooldown group that is not currently available.
	ErrCooldownConflict = errors.New("intersecting cooldown")

	// ErrMPUnderflow is returned when a cast would deduct more MP than an
	// actor currently has.
	ErrMPUnderflow = errors.New("mp underflow")

	// ErrClockRegression is returned when the dispatcher is asked to apply
	// an event timestamped before the current clock.
	ErrClockRegression = errors.New("clock moved backwards")

	// ErrUnknownAction is returned by the scenario loader when a player's
	// action list names an ability the job module doesn't recognize.
	ErrUnknownAction = errors.New("unknown action for job")

	// ErrJobRejected is returned when check_cast refuses a cast outright.
	ErrJobRejected = errors.New("job rejected cast")

	// ErrBorrowedContext is the value panicked with (per spec.md §7) when a
	// coroutine script is caught holding a ResumeCtx across a suspension
	// point; it is never returned as an error.
	ErrBorrowedContext = errors.New("coroutine context borrowed across suspension")
)
