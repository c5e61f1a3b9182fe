package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/scurrybot/scurry/internal/combat"
	"github.com/scurrybot/scurry/internal/data"
	"github.com/scurrybot/scurry/internal/game"
	"github.com/scurrybot/scurry/internal/telemetry"
	"github.com/scurrybot/scurry/internal/world"
)

// Glyph assignments used by the simulated environment.
const (
	simGlyphFloor  int32 = 100
	simGlyphWall   int32 = 101
	simGlyphStairs int32 = 102
	simGlyphItem   int32 = 103
	simGlyphAgent  int32 = 300

	simGlyphBug    int32 = 201 // weak
	simGlyphJackal int32 = 202 // other, fast
	simGlyphArcher int32 = 203 // ranged_only
	simGlyphKobold int32 = 204 // other, slow
	simGlyphMold   int32 = 205 // mold
)

const simMonsterYAML = `monsters:
  - {glyph: 201, name: grid bug, category: weak}
  - {glyph: 202, name: jackal, category: other, fast: true}
  - {glyph: 203, name: floating eye, category: ranged_only}
  - {glyph: 204, name: kobold, category: other}
  - {glyph: 205, name: green mold, category: mold}
`

func testTables(t *testing.T) (*data.GlyphTable, *data.MonsterTable) {
	t.Helper()
	glyphs, err := data.NewGlyphTable([]data.GlyphRange{
		{Start: 100, End: 100, Kind: "floor"},
		{Start: 101, End: 101, Kind: "wall"},
		{Start: 102, End: 102, Kind: "stairs_down"},
		{Start: 103, End: 103, Kind: "item"},
		{Start: 200, End: 399, Kind: "monster"},
	})
	if err != nil {
		t.Fatalf("glyph table: %v", err)
	}
	path := filepath.Join(t.TempDir(), "monster_list.yaml")
	if err := os.WriteFile(path, []byte(simMonsterYAML), 0o644); err != nil {
		t.Fatalf("write monster yaml: %v", err)
	}
	monsters, err := data.LoadMonsterTable(path)
	if err != nil {
		t.Fatalf("monster table: %v", err)
	}
	return glyphs, monsters
}

func testDeps(t *testing.T, monsters *data.MonsterTable) *Deps {
	t.Helper()
	return &Deps{
		Classifier: combat.NewClassifier(monsters, nil),
		Tuning:     combat.DefaultTuning(),
		Recorder:   telemetry.Nop{},
		RestHP:     80,
		Log:        zap.NewNop(),
	}
}

// simEnv is a deterministic in-process game: a map drawn from an ASCII
// layout, one-hit kills, one item picked up per pickup action. Cells
// outside the layout read as walls unless fog is set, in which case they
// stay unobserved.
type simEnv struct {
	layout []string
	fog    bool

	startPos      world.Position
	startMonsters map[world.Position]int32
	startItems    map[world.Position]int
	startHP       int
	maxHP         int
	healPerTurn   int

	pos      world.Position
	monsters map[world.Position]int32
	items    map[world.Position]int
	hp       int
	time     int
	done     bool
	reason   string
}

func newSimEnv(layout []string) *simEnv {
	return &simEnv{
		layout:        layout,
		startMonsters: map[world.Position]int32{},
		startItems:    map[world.Position]int{},
		startHP:       16,
		maxHP:         16,
	}
}

func (s *simEnv) at(y, x int) byte {
	if y < 0 || y >= len(s.layout) || x < 0 || x >= len(s.layout[y]) {
		return '#'
	}
	return s.layout[y][x]
}

func (s *simEnv) walkable(y, x int) bool {
	c := s.at(y, x)
	return c == '.' || c == '>'
}

func (s *simEnv) Reset(ctx context.Context) (game.Observation, error) {
	s.pos = s.startPos
	s.hp = s.startHP
	s.time = 0
	s.done = false
	s.reason = ""
	s.monsters = make(map[world.Position]int32, len(s.startMonsters))
	for p, g := range s.startMonsters {
		s.monsters[p] = g
	}
	s.items = make(map[world.Position]int, len(s.startItems))
	for p, n := range s.startItems {
		s.items[p] = n
	}
	return s.render(), nil
}

func (s *simEnv) Step(ctx context.Context, a game.Action) (game.Observation, error) {
	if s.done {
		return s.render(), nil
	}
	s.time++
	if s.hp < s.maxHP {
		s.hp += s.healPerTurn
		if s.hp > s.maxHP {
			s.hp = s.maxHP
		}
	}

	switch a.Kind {
	case game.ActMove:
		target := world.Position{Y: s.pos.Y + game.DirDY[a.Dir], X: s.pos.X + game.DirDX[a.Dir]}
		if _, ok := s.monsters[target]; ok {
			delete(s.monsters, target) // one-hit melee kill
		} else if s.walkable(target.Y, target.X) {
			s.pos = target
		}
	case game.ActFire:
		for i := 1; ; i++ {
			y := s.pos.Y + game.DirDY[a.Dir]*i
			x := s.pos.X + game.DirDX[a.Dir]*i
			if !s.walkable(y, x) {
				break
			}
			p := world.Position{Y: y, X: x}
			if _, ok := s.monsters[p]; ok {
				delete(s.monsters, p)
				break
			}
		}
	case game.ActPickUp:
		if s.items[s.pos] > 0 {
			s.items[s.pos]--
			if s.items[s.pos] == 0 {
				delete(s.items, s.pos)
			}
		}
	case game.ActDescend:
		if s.at(s.pos.Y, s.pos.X) == '>' {
			s.done = true
			s.reason = "descended"
		}
	}
	return s.render(), nil
}

func (s *simEnv) Close() error { return nil }

func (s *simEnv) render() game.Observation {
	glyphs, chars, specials := game.NewGrids()
	for y := 0; y < game.MapHeight; y++ {
		for x := 0; x < game.MapWidth; x++ {
			inLayout := y < len(s.layout) && x < len(s.layout[y])
			if !inLayout && s.fog {
				continue // unobserved
			}
			switch {
			case !s.walkable(y, x):
				glyphs[y][x] = simGlyphWall
				chars[y][x] = '#'
			case s.at(y, x) == '>':
				glyphs[y][x] = simGlyphStairs
				chars[y][x] = '>'
			case s.items[world.Position{Y: y, X: x}] > 0:
				glyphs[y][x] = simGlyphItem
				chars[y][x] = '%'
			default:
				glyphs[y][x] = simGlyphFloor
				chars[y][x] = '.'
			}
		}
	}
	for p, g := range s.monsters {
		glyphs[p.Y][p.X] = g
		chars[p.Y][p.X] = 'm'
	}
	glyphs[s.pos.Y][s.pos.X] = simGlyphAgent
	chars[s.pos.Y][s.pos.X] = '@'
	for p, n := range s.items {
		if n > 0 {
			specials[p.Y][p.X] |= game.SpecialItemPile
		}
	}

	return game.Observation{
		Glyphs:   glyphs,
		Chars:    chars,
		Specials: specials,
		Stats: game.BLStats{
			X:            s.pos.X,
			Y:            s.pos.Y,
			HitPoints:    s.hp,
			MaxHitPoints: s.maxHP,
			Level:        1,
			Depth:        1,
			Time:         s.time,
		},
		Done:      s.done,
		EndReason: s.reason,
	}
}

// newTestExecutor resets the env and wires an executor over a fresh world.
func newTestExecutor(t *testing.T, env game.Env, stepLimit int) *Executor {
	t.Helper()
	glyphs, monsters := testTables(t)
	w := world.NewState(glyphs, monsters)
	x := NewExecutor(context.Background(), env, w, stepLimit, zap.NewNop())
	if err := x.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	return x
}
