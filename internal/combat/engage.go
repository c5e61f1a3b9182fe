package combat

import "github.com/scurrybot/scurry/internal/world"

// EngageKind distinguishes the two ways of attacking an entity.
type EngageKind int8

const (
	EngageMelee EngageKind = iota
	EngageRanged
)

// EngageAction is one candidate attack this turn, with its priority.
type EngageAction struct {
	Priority int
	Kind     EngageKind
	Target   world.Position
}

// EngageBias lets the policy layer nudge priorities. May be nil.
type EngageBias interface {
	EngageBias(category string, adjacent bool) (meleeDelta, rangedDelta int)
}

// MeleePriority scores attacking an adjacent entity in melee.
func MeleePriority(snap world.Snapshot, e world.Entity, cat Category, lo Loadout, tun Tuning) int {
	ret := 1
	if snap.Stats.HitPoints > tun.HealthyMelee || e.Fast {
		ret += 15
	}
	if lo.LauncherEquipped && !e.Fast {
		ret -= 6
	}
	if cat == CatRangedOnly {
		// Melee against these is strictly a mistake.
		ret -= 100
	}
	return ret
}

// RangedPriority scores shooting an entity. The second result is false
// when a ranged attack is not applicable at all: the entity is off every
// firing line, or no launcher+ammo combination exists.
func RangedPriority(snap world.Snapshot, e world.Entity, lo Loadout) (int, bool) {
	agent := snap.Pos
	if !agent.Aligned(e.Pos) {
		return 0, false
	}
	if lo.RangedCombos == 0 {
		return 0, false
	}

	ret := 0
	dist := agent.Chebyshev(e.Pos)
	if dist == 1 || dist == 2 {
		ret -= 5
	}
	if dist == 1 {
		ret -= 6
	}
	if !lo.LauncherEquipped {
		ret -= 5 // a swap turn is needed first
	}

	// Anything on the firing line — a pet or a non-walkable cell — makes
	// the shot effectively forbidden.
	dy := sign(e.Pos.Y - agent.Y)
	dx := sign(e.Pos.X - agent.X)
	for y, x := agent.Y+dy, agent.X+dx; y != e.Pos.Y || x != e.Pos.X; y, x = y+dy, x+dx {
		if !snap.Level.Walkable(y, x) || petAt(snap, y, x) {
			ret -= 100
		}
	}

	ret += 11 // flat ranged engagement value
	return ret, true
}

func petAt(snap world.Snapshot, y, x int) bool {
	for _, e := range snap.Entities {
		if e.Pet && e.Pos.Y == y && e.Pos.X == x {
			return true
		}
	}
	return false
}

func sign(n int) int {
	if n > 0 {
		return 1
	}
	if n < 0 {
		return -1
	}
	return 0
}

// RankActions builds the candidate attack list for this turn, in entity
// (row-major) order so equal priorities resolve deterministically.
func RankActions(snap world.Snapshot, cls *Classifier, lo Loadout, tun Tuning, bias EngageBias) []EngageAction {
	var actions []EngageAction
	for _, e := range snap.Hostiles() {
		cat := cls.Classify(e)
		adjacent := snap.Pos.Adjacent(e.Pos)

		var meleeDelta, rangedDelta int
		if bias != nil {
			meleeDelta, rangedDelta = bias.EngageBias(cat.String(), adjacent)
		}

		if adjacent {
			actions = append(actions, EngageAction{
				Priority: MeleePriority(snap, e, cat, lo, tun) + meleeDelta,
				Kind:     EngageMelee,
				Target:   e.Pos,
			})
		}
		if pr, ok := RangedPriority(snap, e, lo); ok {
			actions = append(actions, EngageAction{
				Priority: pr + rangedDelta,
				Kind:     EngageRanged,
				Target:   e.Pos,
			})
		}
	}
	return actions
}

// Best returns the highest-priority action; ties go to the earlier entry
// (input order). ok is false for an empty list.
func Best(actions []EngageAction) (EngageAction, bool) {
	if len(actions) == 0 {
		return EngageAction{}, false
	}
	best := actions[0]
	for _, a := range actions[1:] {
		if a.Priority > best.Priority {
			best = a
		}
	}
	return best, true
}
