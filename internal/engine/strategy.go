package engine

import (
	"strings"

	"github.com/scurrybot/scurry/internal/world"
)

// Strategy is a pure description of a candidate behavior. Check must be
// cheap and side-effect free — it answers "are you applicable right now"
// without committing to anything. Run performs the work through the
// executor and reports how it went. The same node may be evaluated any
// number of times; it must reconsider from scratch each time.
type Strategy interface {
	Name() string
	Check(world.Snapshot) bool
	Run(x *Executor) Outcome
}

// eval is the standard two-phase evaluation: decline via Check without
// running, otherwise run.
func eval(s Strategy, x *Executor) Outcome {
	if !s.Check(x.Snapshot()) {
		return NotApplicable()
	}
	return s.Run(x)
}

// Fn builds a leaf strategy from two closures.
func Fn(name string, check func(world.Snapshot) bool, run func(x *Executor) Outcome) Strategy {
	return &fnNode{name: name, check: check, run: run}
}

type fnNode struct {
	name  string
	check func(world.Snapshot) bool
	run   func(x *Executor) Outcome
}

func (n *fnNode) Name() string                  { return n.name }
func (n *fnNode) Check(s world.Snapshot) bool   { return n.check(s) }
func (n *fnNode) Run(x *Executor) Outcome       { return n.run(x) }

// Sequence runs its children in order. If the first is not applicable
// the whole sequence is not applicable and nothing runs; afterwards each
// child's outcome short-circuits unless it completed. Folding this way
// keeps the combinator associative.
func Sequence(nodes ...Strategy) Strategy {
	return &seqNode{nodes: nodes}
}

type seqNode struct {
	nodes []Strategy
}

func (n *seqNode) Name() string { return "seq(" + joinNames(n.nodes) + ")" }

func (n *seqNode) Check(s world.Snapshot) bool {
	if len(n.nodes) == 0 {
		return false
	}
	return n.nodes[0].Check(s)
}

func (n *seqNode) Run(x *Executor) Outcome {
	for _, node := range n.nodes {
		out := eval(node, x)
		if out.Status != StatusCompleted {
			return out
		}
	}
	return Completed()
}

// Priority evaluates candidates in order and runs only the first whose
// applicability check succeeds. The primary branching construct.
func Priority(nodes ...Strategy) Strategy {
	return &priNode{nodes: nodes}
}

type priNode struct {
	nodes []Strategy
}

func (n *priNode) Name() string { return "priority(" + joinNames(n.nodes) + ")" }

func (n *priNode) Check(s world.Snapshot) bool {
	for _, node := range n.nodes {
		if node.Check(s) {
			return true
		}
	}
	return false
}

func (n *priNode) Run(x *Executor) Outcome {
	for _, node := range n.nodes {
		if node.Check(x.Snapshot()) {
			return node.Run(x)
		}
	}
	return NotApplicable()
}

// Repeat evaluates its child until the child reports NotApplicable —
// termination always comes from the world no longer satisfying the
// child's precondition, never from a fixed iteration count. Aborts
// propagate upward unchanged.
func Repeat(node Strategy) Strategy {
	return &repNode{node: node}
}

type repNode struct {
	node Strategy
}

func (n *repNode) Name() string                { return "repeat(" + n.node.Name() + ")" }
func (n *repNode) Check(s world.Snapshot) bool { return n.node.Check(s) }

func (n *repNode) Run(x *Executor) Outcome {
	ran := false
	for {
		out := eval(n.node, x)
		switch out.Status {
		case StatusNotApplicable:
			if ran {
				return Completed()
			}
			return out
		case StatusAborted:
			return out
		}
		ran = true
	}
}

// Preempt runs base while watching interrupts between every primitive
// step base takes. When an interrupt becomes applicable, base is aborted
// through the guard mechanism, the interrupt runs, and the whole node
// re-evaluates — so an interrupt can itself be interrupted.
func Preempt(base Strategy, interrupts ...Strategy) Strategy {
	return &preNode{base: base, interrupts: interrupts}
}

type preNode struct {
	base       Strategy
	interrupts []Strategy
}

func (n *preNode) Name() string {
	return "preempt(" + n.base.Name() + "; " + joinNames(n.interrupts) + ")"
}

func (n *preNode) Check(s world.Snapshot) bool {
	if n.base.Check(s) {
		return true
	}
	for _, it := range n.interrupts {
		if it.Check(s) {
			return true
		}
	}
	return false
}

func (n *preNode) Run(x *Executor) Outcome {
	ran := false
	for {
		if x.Done() || x.Fatal() != nil {
			return Aborted("episode over")
		}

		// An already-applicable interrupt runs before base gets a step.
		interrupted := false
		for _, it := range n.interrupts {
			if it.Check(x.Snapshot()) {
				out := it.Run(x)
				if out.Status == StatusAborted && (x.Fatal() != nil || x.Done()) {
					return out
				}
				ran = true
				interrupted = true
				break
			}
		}
		if interrupted {
			continue // re-evaluate the whole node
		}

		if !n.base.Check(x.Snapshot()) {
			if ran {
				return Completed()
			}
			return NotApplicable()
		}

		release := x.Guard(func(w *world.State) bool {
			snap := w.Snapshot()
			for _, it := range n.interrupts {
				if it.Check(snap) {
					return true
				}
			}
			return false
		}, "preempted")

		out := n.base.Run(x)
		release()
		ran = true

		switch out.Status {
		case StatusCompleted, StatusNotApplicable:
			return Completed()
		case StatusAborted:
			if x.Fatal() != nil || x.Done() {
				return out
			}
			// Either an interrupt tripped or a premise of base broke;
			// both mean: re-plan from live state.
			continue
		}
	}
}

// AtomicWrap marks the child as one turn-executor atomic scope: an abort
// anywhere inside unwinds exactly to this boundary and no further.
func AtomicWrap(node Strategy) Strategy {
	return &atomNode{node: node}
}

type atomNode struct {
	node Strategy
}

func (n *atomNode) Name() string                { return "atomic(" + n.node.Name() + ")" }
func (n *atomNode) Check(s world.Snapshot) bool { return n.node.Check(s) }

func (n *atomNode) Run(x *Executor) Outcome {
	return x.Atomic(func() Outcome {
		return eval(n.node, x)
	})
}

func joinNames(nodes []Strategy) string {
	names := make([]string, len(nodes))
	for i, n := range nodes {
		names[i] = n.Name()
	}
	return strings.Join(names, ", ")
}
