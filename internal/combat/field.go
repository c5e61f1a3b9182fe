package combat

import (
	"math"

	"github.com/scurrybot/scurry/internal/world"
)

// Tuning holds the decision thresholds the field builder and engagement
// ranking consume. Values are thresholds, not game rules.
type Tuning struct {
	LowHitpoints  int // at or below: stay out of melee range
	HealthyMelee  int // above: engage freely
	RingRadiusMax int // hard cap on ring/ray radius
}

// DefaultTuning mirrors the tuning the agent ships with.
func DefaultTuning() Tuning {
	return Tuning{LowHitpoints: 8, HealthyMelee: 8, RingRadiusMax: 6}
}

// ScoreField is a per-cell desirability map aligned with the level grid,
// relative to the agent's current cell after rebasing. NaN marks cells
// the agent must never move onto. Built fresh per decision, never kept.
type ScoreField struct {
	W, H int
	v    []float64
}

// NewScoreField allocates a zeroed field.
func NewScoreField(h, w int) *ScoreField {
	return &ScoreField{W: w, H: h, v: make([]float64, w*h)}
}

// At returns the score at (y, x); NaN when out of bounds.
func (f *ScoreField) At(y, x int) float64 {
	if y < 0 || y >= f.H || x < 0 || x >= f.W {
		return math.NaN()
	}
	return f.v[y*f.W+x]
}

func (f *ScoreField) set(y, x int, v float64) {
	if y < 0 || y >= f.H || x < 0 || x >= f.W {
		return
	}
	f.v[y*f.W+x] = v
}

func (f *ScoreField) in(y, x int) bool {
	return y >= 0 && y < f.H && x >= 0 && x < f.W
}

// Blocked reports whether (y, x) must never be stepped on.
func (f *ScoreField) Blocked(y, x int) bool {
	return math.IsNaN(f.At(y, x))
}

type fieldOp int8

const (
	opAdd fieldOp = iota
	opMax
)

// ring contributes value to every cell at exactly Chebyshev distance
// radius from (y, x). NaN cells stay NaN under both ops.
func (f *ScoreField) ring(y, x int, value float64, radius int, op fieldOp) {
	for y1 := y - radius; y1 <= y+radius; y1++ {
		for x1 := x - radius; x1 <= x+radius; x1++ {
			dy, dx := y1-y, x1-x
			if dy < 0 {
				dy = -dy
			}
			if dx < 0 {
				dx = -dx
			}
			cheb := dy
			if dx > cheb {
				cheb = dx
			}
			if cheb != radius || !f.in(y1, x1) {
				continue
			}
			cur := f.v[y1*f.W+x1]
			switch op {
			case opAdd:
				f.v[y1*f.W+x1] = cur + value
			case opMax:
				f.v[y1*f.W+x1] = math.Max(cur, value)
			}
		}
	}
}

// ray walks the 8 principal directions outward from (y, x), contributing
// value to each traversed cell and stopping a direction at the first
// non-walkable cell. Models line-of-sight exposure.
func (f *ScoreField) ray(y, x int, value float64, radius int, walkable func(y, x int) bool, op fieldOp) {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dy == 0 && dx == 0 {
				continue
			}
			for i := 0; i < radius; i++ {
				y1 := y + dy*i
				x1 := x + dx*i
				if !f.in(y1, x1) {
					break
				}
				if !walkable(y1, x1) {
					break
				}
				cur := f.v[y1*f.W+x1]
				switch op {
				case opAdd:
					f.v[y1*f.W+x1] = cur + value
				case opMax:
					f.v[y1*f.W+x1] = math.Max(cur, value)
				}
			}
		}
	}
}

// BuildField computes the threat/opportunity field for one decision:
// positive contributions (worth approaching) per entity, then negative
// ones (worth avoiding), then non-walkable cells forced to NaN, then the
// whole field rebased so the agent's own cell reads exactly 0.
func BuildField(snap world.Snapshot, cls *Classifier, lo Loadout, tun Tuning) *ScoreField {
	level := snap.Level
	f := NewScoreField(level.H, level.W)
	walkable := level.Walkable

	hostiles := snap.Hostiles()
	for _, e := range hostiles {
		f.positive(snap, e, cls.Classify(e), lo, tun)
	}
	for _, e := range hostiles {
		f.negative(snap, e, cls.Classify(e), lo, tun)
	}

	// Pets and peaceful creatures are not approach targets, but their
	// cells are just as un-steppable as hostile ones.
	for _, e := range snap.Entities {
		f.set(e.Pos.Y, e.Pos.X, math.NaN())
	}
	for y := 0; y < level.H; y++ {
		for x := 0; x < level.W; x++ {
			if !walkable(y, x) {
				f.v[y*f.W+x] = math.NaN()
			}
		}
	}

	// Rebase: all scores are relative to "stay where I am".
	own := f.At(snap.Pos.Y, snap.Pos.X)
	if math.IsNaN(own) {
		own = 0 // agent cell got occupied-NaN'd only if decoding broke; keep field usable
	}
	for i := range f.v {
		f.v[i] -= own
	}
	f.set(snap.Pos.Y, snap.Pos.X, 0)
	return f
}

func (f *ScoreField) positive(snap world.Snapshot, e world.Entity, cat Category, lo Loadout, tun Tuning) {
	y, x := e.Pos.Y, e.Pos.X
	hp, maxHP := snap.Stats.HitPoints, snap.Stats.MaxHitPoints

	// Never move onto the monster itself.
	f.set(y, x, math.NaN())

	r := func(radius int) int {
		if radius > tun.RingRadiusMax {
			return tun.RingRadiusMax
		}
		return radius
	}

	switch cat {
	case CatWeak:
		// Freely engage in melee.
		f.ring(y, x, 2, r(1), opMax)
		f.ring(y, x, 1, r(2), opMax)
	case CatMold:
		// Worth standing next to only from strength.
		if hp >= 15 || hp == maxHP {
			f.ring(y, x, 2, r(1), opMax)
			f.ring(y, x, 1, r(2), opMax)
		}
	case CatRangedOnly:
		// Not worth approaching at all.
	case CatWeird, CatExploding, CatOther:
		if hp > tun.HealthyMelee && !lo.LauncherEquipped {
			// Engage, but from a square that lets us strike first.
			f.ring(y, x, 3, r(2), opMax)
		}
		if lo.LauncherEquipped {
			f.ray(y, x, 4, r(6), snap.Level.Walkable, opMax)
		}
	}
}

func (f *ScoreField) negative(snap world.Snapshot, e world.Entity, cat Category, lo Loadout, tun Tuning) {
	y, x := e.Pos.Y, e.Pos.X
	hp := snap.Stats.HitPoints

	r := func(radius int) int {
		if radius > tun.RingRadiusMax {
			return tun.RingRadiusMax
		}
		return radius
	}

	if hp <= tun.LowHitpoints && !e.Fast && cat != CatWeak && cat != CatRangedOnly {
		// Too hurt for melee: push away from adjacency, and when there is
		// no ranged answer, out of its line of sight too.
		f.ring(y, x, -10, r(1), opAdd)
		if lo.RangedCombos == 0 {
			f.ray(y, x, -1, r(6), snap.Level.Walkable, opAdd)
		}
		return
	}

	switch cat {
	case CatMold:
		if lo.RangedCombos > 0 {
			f.ray(y, x, 2, r(5), snap.Level.Walkable, opAdd)
		}
	case CatWeird:
		f.ring(y, x, -10, r(1), opAdd)
		if lo.RangedCombos > 0 {
			f.ray(y, x, 6, r(5), snap.Level.Walkable, opAdd)
		}
	case CatExploding:
		f.ring(y, x, -10, r(1), opAdd)
	case CatRangedOnly, CatWeak:
		// Nothing to avoid.
	case CatOther:
		f.ring(y, x, -9, r(1), opAdd)
		if lo.RangedCombos == 0 {
			f.ray(y, x, -1, r(6), snap.Level.Walkable, opAdd)
		}
	}
}
