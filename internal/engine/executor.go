package engine

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/scurrybot/scurry/internal/game"
	"github.com/scurrybot/scurry/internal/world"
)

// GuardFunc is a plan premise stated negatively: it returns true when the
// premise has been violated and the current plan must be abandoned.
type GuardFunc func(*world.State) bool

type guard struct {
	pred GuardFunc
	msg  string
}

// Executor submits primitive actions to the game and owns all World
// State mutation. It also implements the abort protocol: scoped guards
// checked after every step, and atomic boundaries that stop an abort
// from unwinding further than intended.
//
// Single-goroutine use only; one Executor per episode.
type Executor struct {
	ctx   context.Context
	env   game.Env
	world *world.State
	log   *zap.Logger

	guards []guard // stack; innermost last

	steps     int
	stepLimit int

	done      bool
	endReason string
	fatal     error
}

// NewExecutor wires an executor to an environment and world. stepLimit
// <= 0 means unlimited.
func NewExecutor(ctx context.Context, env game.Env, w *world.State, stepLimit int, log *zap.Logger) *Executor {
	return &Executor{
		ctx:       ctx,
		env:       env,
		world:     w,
		stepLimit: stepLimit,
		log:       log,
	}
}

// World returns the mutable world. Strategy code must only read it via
// Snapshot; mutation stays inside Step.
func (x *Executor) World() *world.State { return x.world }

// Snapshot is a convenience passthrough for strategy checks.
func (x *Executor) Snapshot() world.Snapshot { return x.world.Snapshot() }

// Steps returns the number of primitive actions submitted so far.
func (x *Executor) Steps() int { return x.steps }

// Done reports whether the episode has ended (game over or step limit).
func (x *Executor) Done() bool { return x.done }

// EndReason returns the opaque end reason once Done.
func (x *Executor) EndReason() string { return x.endReason }

// Fatal returns the hard error that ended the episode, if any. Abort is
// never fatal; InvariantError and interface timeouts are.
func (x *Executor) Fatal() error { return x.fatal }

// Reset starts the episode: one reset round-trip plus the initial
// observation integration.
func (x *Executor) Reset() error {
	obs, err := x.env.Reset(x.ctx)
	if err != nil {
		return err
	}
	if err := x.world.ApplyObservation(obs); err != nil {
		return err
	}
	return nil
}

// Step sends exactly one primitive action and integrates the resulting
// observation. This is the only World State mutation point and the only
// blocking point of an episode.
//
// The returned Outcome is Completed on a normal step, and Aborted when a
// guard tripped, the episode ended, or a fatal error occurred (the
// abort then unwinds every plan; the driver inspects Fatal/Done).
func (x *Executor) Step(a game.Action) Outcome {
	if x.fatal != nil {
		return Aborted("episode failed")
	}
	if x.done {
		return Aborted("episode over")
	}

	x.world.NoteAction(a)
	obs, err := x.env.Step(x.ctx, a)
	if err != nil {
		x.fatal = err
		if errors.Is(err, game.ErrTimeout) {
			x.endReason = "timeout"
		}
		x.done = true
		return Aborted("step failed")
	}
	x.steps++

	if obs.Done {
		x.done = true
		x.endReason = obs.EndReason
		return Aborted("episode ended")
	}

	if err := x.world.ApplyObservation(obs); err != nil {
		x.fatal = err
		x.done = true
		return Aborted("invariant violation")
	}

	if x.stepLimit > 0 && x.steps >= x.stepLimit {
		x.done = true
		x.endReason = "steplimit"
		return Aborted("step limit reached")
	}

	// All active guards are checked after every step, innermost first.
	for i := len(x.guards) - 1; i >= 0; i-- {
		if x.guards[i].pred(x.world) {
			x.log.Debug("guard tripped", zap.String("guard", x.guards[i].msg))
			return Aborted(x.guards[i].msg)
		}
	}
	return Completed()
}

// Guard registers a premise check for the duration of a scope; the
// returned release must be called (defer it) when the scope exits.
// Guards stack: inner scopes release before outer ones.
func (x *Executor) Guard(pred GuardFunc, msg string) (release func()) {
	x.guards = append(x.guards, guard{pred: pred, msg: msg})
	depth := len(x.guards)
	return func() {
		// Release everything at or above this depth; tolerates a body
		// that forgot its own inner releases.
		if len(x.guards) >= depth {
			x.guards = x.guards[:depth-1]
		}
	}
}

// Atomic runs body as one intent-level unit. An abort inside unwinds
// exactly to this boundary: turns already taken stay committed (the game
// has no undo), but the abandoned plan is absorbed here so callers above
// see a completed scope and re-plan from live state. Fatal errors and
// episode end keep unwinding.
func (x *Executor) Atomic(body func() Outcome) Outcome {
	out := body()
	if out.Status == StatusAborted {
		if x.fatal != nil || x.done {
			return out
		}
		x.log.Debug("plan abandoned", zap.String("reason", out.Reason))
		return Completed()
	}
	return out
}
