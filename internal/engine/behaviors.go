package engine

import (
	"go.uber.org/zap"

	"github.com/scurrybot/scurry/internal/combat"
	"github.com/scurrybot/scurry/internal/data"
	"github.com/scurrybot/scurry/internal/game"
	"github.com/scurrybot/scurry/internal/items"
	"github.com/scurrybot/scurry/internal/pathfind"
	"github.com/scurrybot/scurry/internal/telemetry"
	"github.com/scurrybot/scurry/internal/world"
)

// Deps bundles the read-only collaborators the concrete behaviors
// consult. The executor remains the only write path.
type Deps struct {
	Classifier *combat.Classifier
	Bias       combat.EngageBias // may be nil
	Tuning     combat.Tuning
	Items      *items.Parser // may be nil, inventory stays empty
	Recorder   telemetry.Recorder
	RestHP     int // rest below this percent of max hitpoints
	Log        *zap.Logger
}

// BuildRoot assembles the top-level strategy: keep working through the
// peaceful agenda, but fight preempts everything the moment an
// engagement is worth taking.
func BuildRoot(d *Deps) Strategy {
	agenda := Priority(
		NewPickUp(d),
		NewRest(d),
		NewExplore(d),
		NewDescend(d),
		NewIdleSearch(d),
	)
	return Repeat(AtomicWrap(Preempt(agenda, NewFight(d))))
}

// ── Fight ──────────────────────────────────────────────────────────

type fightPlan struct {
	action game.Action
	source string
	field  *combat.ScoreField
}

// planFight computes the single best engagement step for the current
// snapshot, or nil when no engagement is worth anything. Pure.
func planFight(snap world.Snapshot, d *Deps) *fightPlan {
	if len(snap.Hostiles()) == 0 {
		return nil
	}
	lo := combat.DeriveLoadout(snap.Inv)
	field := combat.BuildField(snap, d.Classifier, lo, d.Tuning)
	actions := combat.RankActions(snap, d.Classifier, lo, d.Tuning, d.Bias)

	bestPriority := 0
	var best *fightPlan

	if a, ok := combat.Best(actions); ok && a.Priority > 0 {
		dir, dirOK := game.DirTo(a.Target.Y-snap.Pos.Y, a.Target.X-snap.Pos.X)
		if dirOK {
			act := game.Move(dir) // melee is a walk into the target
			if a.Kind == combat.EngageRanged {
				act = game.Fire(dir)
			}
			best = &fightPlan{action: act, source: "fight/engage", field: field}
			bestPriority = a.Priority
		}
	}

	// A repositioning move beats attacking when the field says some
	// adjacent cell is strictly better than both standing still and the
	// best attack.
	moveScore, movePos, moveOK := bestAdjacentMove(snap, field)
	if moveOK && moveScore > float64(bestPriority) {
		if dir, ok := game.DirTo(movePos.Y-snap.Pos.Y, movePos.X-snap.Pos.X); ok {
			best = &fightPlan{action: game.Move(dir), source: "fight/reposition", field: field}
		}
	}
	return best
}

func bestAdjacentMove(snap world.Snapshot, field *combat.ScoreField) (float64, world.Position, bool) {
	bestScore := 0.0
	var bestPos world.Position
	found := false
	for d := game.Dir(0); d < 8; d++ {
		y := snap.Pos.Y + game.DirDY[d]
		x := snap.Pos.X + game.DirDX[d]
		if field.Blocked(y, x) {
			continue
		}
		if s := field.At(y, x); s > bestScore {
			bestScore = s
			bestPos = world.Position{Y: y, X: x}
			found = true
		}
	}
	return bestScore, bestPos, found
}

// NewFight engages the most worthwhile visible hostile for one step.
// Re-evaluation after each step keeps it honest against a moving world.
func NewFight(d *Deps) Strategy {
	return Fn("fight",
		func(s world.Snapshot) bool { return planFight(s, d) != nil },
		func(x *Executor) Outcome {
			plan := planFight(x.Snapshot(), d)
			if plan == nil {
				return NotApplicable()
			}
			d.Recorder.Decision(x.Steps(), plan.action, plan.source, plan.field)
			return x.Step(plan.action)
		})
}

// ── Pick up ────────────────────────────────────────────────────────

// NewPickUp grabs one item from the pile under the agent. Wrapping it in
// Repeat clears the whole pile, terminating when the cell's flag drops.
func NewPickUp(d *Deps) Strategy {
	return Fn("pickup",
		func(s world.Snapshot) bool { return s.Level.ItemPile(s.Pos.Y, s.Pos.X) },
		func(x *Executor) Outcome {
			start := x.Snapshot().Pos
			release := x.Guard(func(w *world.State) bool {
				return w.Pos != start
			}, "moved while picking up")
			defer release()
			return x.Step(game.PickUp())
		})
}

// ── Rest ───────────────────────────────────────────────────────────

// NewRest waits in place to heal while nothing hostile is visible.
func NewRest(d *Deps) Strategy {
	threshold := d.RestHP
	return Fn("rest",
		func(s world.Snapshot) bool {
			if len(s.Hostiles()) > 0 || s.Stats.MaxHitPoints == 0 {
				return false
			}
			return s.Stats.HitPoints*100 < s.Stats.MaxHitPoints*threshold
		},
		func(x *Executor) Outcome {
			return x.Step(game.Wait())
		})
}

// ── Explore ────────────────────────────────────────────────────────

// frontier reports whether a walkable cell borders unexplored territory.
func frontier(level *world.Level, y, x int) bool {
	if !level.Walkable(y, x) {
		return false
	}
	for d := 0; d < 8; d++ {
		ny := y + game.DirDY[d]
		nx := x + game.DirDX[d]
		if level.InBounds(ny, nx) && !level.Seen(ny, nx) {
			return true
		}
	}
	return false
}

func explorePassable(snap world.Snapshot) pathfind.Passable {
	occupied := make(map[world.Position]bool, len(snap.Entities))
	for _, e := range snap.Entities {
		occupied[e.Pos] = true
	}
	level := snap.Level
	return func(y, x int) bool {
		return level.Walkable(y, x) && !occupied[world.Position{Y: y, X: x}]
	}
}

func planGoal(snap world.Snapshot, want func(level *world.Level, y, x int) bool) (world.Position, *pathfind.DistanceMap, bool) {
	level := snap.Level
	dist := pathfind.Distances(level, snap.Pos, explorePassable(snap))
	target, td, ok := dist.Nearest(func(y, x int) bool { return want(level, y, x) })
	if !ok || td == 0 {
		return world.Position{}, nil, false
	}
	return target, dist, true
}

// walkToward takes one shortest-path step toward target and verifies the
// world agreed with the plan. The caller loops.
func walkToward(x *Executor, dist *pathfind.DistanceMap, target world.Position) Outcome {
	next, ok := dist.FirstStep(target)
	if !ok {
		return Aborted("path evaporated")
	}
	pos := x.Snapshot().Pos
	dir, ok := game.DirTo(next.Y-pos.Y, next.X-pos.X)
	if !ok {
		return Aborted("path step not adjacent")
	}
	out := x.Step(game.Move(dir))
	if out.Status != StatusCompleted {
		return out
	}
	if x.Snapshot().Pos != next {
		// Bumped into something the grid did not know about.
		return Aborted("unexpected position after move")
	}
	return Completed()
}

// NewExplore walks toward the nearest frontier cell, one verified step
// at a time, re-planning every step so a shifting world never invalidates
// more than one move.
func NewExplore(d *Deps) Strategy {
	return Fn("explore",
		func(s world.Snapshot) bool {
			_, _, ok := planGoal(s, frontier)
			return ok
		},
		func(x *Executor) Outcome {
			for {
				target, dist, ok := planGoal(x.Snapshot(), frontier)
				if !ok {
					return Completed()
				}
				d.Recorder.Overlay("explore/target", []world.Position{target}, "cyan")
				if out := walkToward(x, dist, target); out.Status != StatusCompleted {
					return out
				}
			}
		})
}

// ── Descend ────────────────────────────────────────────────────────

func stairsDown(level *world.Level, y, x int) bool {
	return level.Kind(y, x) == data.CellStairsDown
}

// NewDescend heads for known down stairs and takes them.
func NewDescend(d *Deps) Strategy {
	return Fn("descend",
		func(s world.Snapshot) bool {
			if stairsDown(s.Level, s.Pos.Y, s.Pos.X) {
				return true
			}
			_, _, ok := planGoal(s, stairsDown)
			return ok
		},
		func(x *Executor) Outcome {
			for {
				snap := x.Snapshot()
				if stairsDown(snap.Level, snap.Pos.Y, snap.Pos.X) {
					return x.Step(game.Descend())
				}
				target, dist, ok := planGoal(snap, stairsDown)
				if !ok {
					return Aborted("stairs lost")
				}
				if out := walkToward(x, dist, target); out.Status != StatusCompleted {
					return out
				}
			}
		})
}

// ── Idle search ────────────────────────────────────────────────────

// NewIdleSearch is the always-applicable fallback: search the current
// cell for hidden passages. It keeps the root loop live when nothing
// better exists.
func NewIdleSearch(d *Deps) Strategy {
	return Fn("search",
		func(world.Snapshot) bool { return true },
		func(x *Executor) Outcome {
			return x.Step(game.Search())
		})
}
