// Command xivsim runs one deterministic Dancer-rotation combat simulation
// from a `.ycf` scenario file and prints its final damage/MP tallies (and,
// with -trace, every reportable event line) to stdout.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"xivsim/internal/aicoro"
	"xivsim/internal/dancer"
	"xivsim/internal/ffxivmath"
	"xivsim/internal/job/dnc"
	"xivsim/internal/scripted"
	"xivsim/internal/simdispatch"
	"xivsim/internal/simerr"
	"xivsim/internal/simevent"
	"xivsim/internal/simqueue"
	"xivsim/internal/simreport"
	"xivsim/internal/simrng"
	"xivsim/internal/simworld"
	"xivsim/internal/ycf"
)

const (
	logDir      = "logs"
	logFileName = "xivsim.log"
	maxLogSize  = 10 * 1024 * 1024 // 10MB
)

// setupLogging writes info-level and higher lines (the rotation's warn/info
// diagnostics) to stderr, or, when debug is set, every level down to trace
// into the rotating log at logs/xivsim.log instead. It is generalized from
// the teacher's setupLogging (stdlib log, io.Discard when not debugging) to
// a zerolog writer so it lines up with Dispatcher's own zerolog.Logger field.
func setupLogging(debug bool) (zerolog.Logger, *os.File) {
	if !debug {
		return zerolog.New(os.Stderr).Level(zerolog.InfoLevel), nil
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to create log directory: %v\n", err)
		return zerolog.New(io.Discard), nil
	}

	logPath := filepath.Join(logDir, logFileName)
	if info, err := os.Stat(logPath); err == nil && info.Size() > maxLogSize {
		rotated := filepath.Join(logDir, fmt.Sprintf("xivsim-%s.log", time.Now().Format("2006-01-02-15-04-05")))
		if err := os.Rename(logPath, rotated); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to rotate log file: %v\n", err)
		}
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to open log file: %v\n", err)
		return zerolog.New(io.Discard), nil
	}
	return zerolog.New(f).Level(zerolog.TraceLevel).With().Timestamp().Logger(), f
}

func main() {
	scenarioPath := flag.String("scenario", "./sim.ycf", "path to a .ycf scenario file")
	seed := flag.Uint64("seed", 0, "RNG seed (0 picks a random seed from the OS CSPRNG)")
	trace := flag.Bool("trace", false, "print scenario report lines to stdout as they dispatch")
	debug := flag.Bool("debug", false, "enable rotating debug trace log at logs/xivsim.log")
	watchdog := flag.Duration("watchdog", 30*time.Second, "abort if the run has not finished within this wall-clock duration")
	flag.Parse()

	if *scenarioPath == "" {
		fmt.Fprintln(os.Stderr, "xivsim: -scenario is required")
		os.Exit(2)
	}

	log, logFile := setupLogging(*debug)
	if logFile != nil {
		defer logFile.Close()
	}

	world, err := run(*scenarioPath, *seed, *trace, *watchdog, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "xivsim: %v\n", err)
		os.Exit(1)
	}

	for _, actor := range world.Actors {
		fmt.Printf("%s: damage=%d\n", actor.Name, actor.Damage())
		if actor.Player != nil {
			fmt.Printf("%s: mp=%d\n", actor.Name, actor.Player.MP)
		}
	}
}

// run loads and executes scenarioPath to completion, returning the final
// world state for the caller to summarize.
func run(scenarioPath string, seed uint64, trace bool, watchdog time.Duration, log zerolog.Logger) (*simworld.World, error) {
	scenario, err := ycf.Load(scenarioPath)
	if err != nil {
		return nil, err
	}

	var rng *simrng.Source
	if seed == 0 {
		var used uint64
		rng, used = simrng.NewEntropySource()
		log.Info().Uint64("seed", used).Msg("seeded from entropy")
	} else {
		rng = simrng.NewSource(seed)
	}

	world := simworld.New(scenario.InCombat)
	queue := simqueue.New[simevent.Event]()
	module := dnc.Module{}
	scripts := make(map[simevent.ActorID]aicoro.Script)

	for _, spec := range scenario.Players {
		math := ffxivmath.New(spec.Stats, spec.Weapon, spec.PlayerInfo)
		actor := world.AddActor(func(id simevent.ActorID) *simworld.Actor {
			return simworld.NewPlayerActor(id, spec.Name, &simworld.PlayerRecord{
				Job:       spec.Job,
				MP:        10000,
				Cooldowns: map[simevent.CooldownGroup]*simworld.ActionCd{},
				State:     &dnc.State{},
				Math:      math,
			})
		})

		queue.Push(spec.FirstActorTick, simevent.Event{Kind: simevent.KindActorTick, Payload: simevent.ActorTickPayload{Actor: actor.ID}})
		queue.Push(spec.FirstMpTick, simevent.Event{Kind: simevent.KindMpTick, Payload: simevent.MpTickPayload{Actor: actor.ID}})
		queue.Push(spec.FirstAutoAttack, simevent.Event{Kind: simevent.KindAutoAttack, Payload: simevent.AutoAttackPayload{Actor: actor.ID}})

		// Prime this actor's first cast: nothing else produces a CdEnd
		// before its very first StartCast, and every rotation (the
		// hardcoded Dancer script and the scripted-list driver alike)
		// unconditionally waits on lock before its opening move.
		queue.Push(spec.FirstAction, simevent.Event{Kind: simevent.KindCdEnd, Payload: simevent.CdEndPayload{Actor: actor.ID, Kind: simevent.CdEndLock}})
		queue.Push(spec.FirstAction, simevent.Event{Kind: simevent.KindCdEnd, Payload: simevent.CdEndPayload{Actor: actor.ID, Kind: simevent.CdEndGCD}})

		if len(spec.Actions) > 0 {
			entries := make([]scripted.Entry, 0, len(spec.Actions))
			for _, a := range spec.Actions {
				action, ok := dnc.ParseAction(a.Name)
				if !ok {
					return nil, fmt.Errorf("%w: %s/%s", simerr.ErrUnknownAction, spec.Job, a.Name)
				}
				entries = append(entries, scripted.Entry{Delay: a.Delay, Action: simevent.Action{Job: spec.Job, Name: string(action)}})
			}
			scripts[actor.ID] = scripted.NewScript(world, actor.ID, module, entries)
		} else {
			scripts[actor.ID] = dancer.NewScript(world, actor.ID, module, log)
		}
	}

	firstEnemy := simevent.ActorID(len(scenario.Players))
	for _, spec := range scenario.Enemies {
		actor := world.AddActor(func(id simevent.ActorID) *simworld.Actor {
			return simworld.NewActor(id, spec.Name)
		})
		queue.Push(spec.FirstActorTick, simevent.Event{Kind: simevent.KindActorTick, Payload: simevent.ActorTickPayload{Actor: actor.ID}})
		for _, w := range spec.Untarget {
			queue.Push(w.Start, simevent.Event{Kind: simevent.KindUntargetable, Payload: simevent.UntargetablePayload{Actor: actor.ID}})
			queue.Push(w.End, simevent.Event{Kind: simevent.KindTargetable, Payload: simevent.TargetablePayload{Actor: actor.ID}})
		}
	}

	if len(scenario.Enemies) > 0 {
		for i := range scenario.Players {
			player := world.Actor(simevent.ActorID(i)).Player
			player.Target = firstEnemy
			player.HasTarget = true
		}
	}

	reporter := simreport.New(simreport.Config(scenario.Report), world)
	dispatcher := simdispatch.New(world, queue, rng, module, scenario.End+scenario.InCombat, scripts, log)
	if trace {
		dispatcher.Report = func(t uint32, e simevent.Event) {
			if line, ok := reporter.Line(t, e); ok {
				fmt.Println(line)
			}
		}
	}

	g, ctx := errgroup.WithContext(context.Background())
	simDone := make(chan struct{})
	g.Go(func() error {
		defer close(simDone)
		return dispatcher.Run()
	})
	g.Go(func() error {
		select {
		case <-simDone:
			return nil
		case <-ctx.Done():
			return nil
		case <-time.After(watchdog):
			return fmt.Errorf("simulation exceeded wall-clock budget of %s", watchdog)
		}
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return world, nil
}
