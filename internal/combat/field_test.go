package combat

import (
	"math"
	"testing"

	"github.com/scurrybot/scurry/internal/data"
	"github.com/scurrybot/scurry/internal/world"
)

// openLevel builds an all-floor level with a wall border.
func openLevel(t *testing.T, h, w int) *world.Level {
	t.Helper()
	level := world.NewLevel(h, w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if y == 0 || y == h-1 || x == 0 || x == w-1 {
				level.SetCell(y, x, data.CellWall, false)
			} else {
				level.SetCell(y, x, data.CellFloor, true)
			}
		}
	}
	return level
}

func TestRingHitsExactRadiusOnly(t *testing.T) {
	f := NewScoreField(9, 9)
	f.ring(4, 4, 5, 2, opAdd)

	if v := f.At(4, 4); v != 0 {
		t.Fatalf("center = %v, want 0", v)
	}
	if v := f.At(4, 5); v != 0 {
		t.Fatalf("radius 1 cell = %v, want 0", v)
	}
	for _, c := range [][2]int{{2, 2}, {2, 4}, {2, 6}, {4, 2}, {4, 6}, {6, 6}} {
		if v := f.At(c[0], c[1]); v != 5 {
			t.Fatalf("radius 2 cell (%d,%d) = %v, want 5", c[0], c[1], v)
		}
	}
	if v := f.At(4, 7); v != 0 {
		t.Fatalf("radius 3 cell = %v, want 0", v)
	}
}

func TestRingOpsAndNaN(t *testing.T) {
	f := NewScoreField(5, 5)
	f.set(2, 4, math.NaN())

	f.ring(2, 2, 3, 2, opAdd)
	f.ring(2, 2, 1, 2, opAdd)
	if v := f.At(0, 0); v != 4 {
		t.Fatalf("add stacking = %v, want 4", v)
	}
	if !math.IsNaN(f.At(2, 4)) {
		t.Fatal("NaN cell lost its NaN under add")
	}

	g := NewScoreField(5, 5)
	g.set(2, 4, math.NaN())
	g.ring(2, 2, 3, 2, opMax)
	g.ring(2, 2, 1, 2, opMax)
	if v := g.At(0, 0); v != 3 {
		t.Fatalf("max = %v, want 3", v)
	}
	if !math.IsNaN(g.At(2, 4)) {
		t.Fatal("NaN cell lost its NaN under max")
	}
}

func TestRayStopsAtWall(t *testing.T) {
	level := openLevel(t, 7, 9)
	level.SetCell(3, 6, data.CellWall, false)

	f := NewScoreField(7, 9)
	f.ray(3, 3, 2, 6, level.Walkable, opAdd)

	// East ray: origin and cells up to the wall get the value.
	if v := f.At(3, 4); v != 2 {
		t.Fatalf("cell before wall = %v, want 2", v)
	}
	if v := f.At(3, 5); v != 2 {
		t.Fatalf("cell before wall = %v, want 2", v)
	}
	if v := f.At(3, 6); v != 0 {
		t.Fatalf("wall cell = %v, want untouched", v)
	}
	if v := f.At(3, 7); v != 0 {
		t.Fatalf("cell behind wall = %v, want untouched", v)
	}
	// The origin sits on all 8 rays.
	if v := f.At(3, 3); v != 16 {
		t.Fatalf("origin = %v, want 16", v)
	}
}

func fieldSnapshot(level *world.Level, pos world.Position, hp, maxHP int, entities ...world.Entity) world.Snapshot {
	return world.Snapshot{
		Pos:      pos,
		Stats:    world.Stats{HitPoints: hp, MaxHitPoints: maxHP},
		Entities: entities,
		Level:    level,
	}
}

func testClassifier(t *testing.T) *Classifier {
	t.Helper()
	return NewClassifier(&data.MonsterTable{}, fixedOverride{})
}

// fixedOverride classifies by name so field tests do not need YAML.
type fixedOverride struct{}

func (fixedOverride) ClassifyMonster(name, hint string) (string, bool) {
	switch name {
	case "grid bug":
		return "weak", true
	case "kobold":
		return "other", true
	case "floating eye":
		return "ranged_only", true
	case "gas spore":
		return "exploding", true
	}
	return "", false
}

func TestBuildFieldRebasesToAgentCell(t *testing.T) {
	level := openLevel(t, 9, 9)
	agent := world.Position{Y: 4, X: 2}
	kobold := world.Entity{Pos: world.Position{Y: 4, X: 6}, Name: "kobold", Hostile: true}

	// Hurt agent: the negative ring and ray land on its own cell region,
	// so rebasing must still read 0 at the agent.
	snap := fieldSnapshot(level, agent, 4, 16, kobold)
	f := BuildField(snap, testClassifier(t), Loadout{}, DefaultTuning())

	if v := f.At(agent.Y, agent.X); v != 0 {
		t.Fatalf("agent cell = %v, want 0 after rebase", v)
	}
	if !f.Blocked(kobold.Pos.Y, kobold.Pos.X) {
		t.Fatal("monster cell not blocked")
	}
	if !f.Blocked(0, 0) {
		t.Fatal("wall cell not blocked")
	}
}

func TestBuildFieldRetreatGradient(t *testing.T) {
	level := openLevel(t, 9, 9)
	agent := world.Position{Y: 4, X: 3}
	kobold := world.Entity{Pos: world.Position{Y: 4, X: 4}, Name: "kobold", Hostile: true}

	snap := fieldSnapshot(level, agent, 4, 16, kobold)
	f := BuildField(snap, testClassifier(t), Loadout{}, DefaultTuning())

	// Stepping further from the adjacent monster must score higher than
	// staying put: the agent cell carries the adjacency penalty that
	// rebasing turned into a bonus elsewhere.
	if v := f.At(4, 2); v <= 0 {
		t.Fatalf("retreat cell = %v, want > 0", v)
	}
	// Stepping around the monster stays adjacent and gains nothing.
	if v := f.At(3, 4); !math.IsNaN(v) && v > f.At(4, 2) {
		t.Fatalf("adjacent slide = %v beats retreat %v", v, f.At(4, 2))
	}
}

func TestBuildFieldPetCellsBlocked(t *testing.T) {
	level := openLevel(t, 7, 7)
	agent := world.Position{Y: 3, X: 2}
	pet := world.Entity{Pos: world.Position{Y: 3, X: 3}, Name: "kitten", Pet: true}

	snap := fieldSnapshot(level, agent, 16, 16, pet)
	f := BuildField(snap, testClassifier(t), Loadout{}, DefaultTuning())
	if !f.Blocked(3, 3) {
		t.Fatal("pet cell not blocked")
	}
}

func TestBuildFieldWeakMonsterDraw(t *testing.T) {
	level := openLevel(t, 9, 9)
	agent := world.Position{Y: 4, X: 2}
	bug := world.Entity{Pos: world.Position{Y: 4, X: 5}, Name: "grid bug", Hostile: true}

	snap := fieldSnapshot(level, agent, 16, 16, bug)
	f := BuildField(snap, testClassifier(t), Loadout{}, DefaultTuning())

	// Cells adjacent to a weak monster read higher than the agent's own
	// cell two squares out.
	if v := f.At(4, 4); v <= 0 {
		t.Fatalf("cell beside weak monster = %v, want > 0", v)
	}
}
