package world

import (
	"fmt"

	"github.com/scurrybot/scurry/internal/data"
	"github.com/scurrybot/scurry/internal/game"
	"github.com/scurrybot/scurry/internal/items"
)

// Position is a grid coordinate, row-major (Y grows downward).
type Position struct {
	Y, X int
}

// Chebyshev returns the Chebyshev distance to another position.
func (p Position) Chebyshev(q Position) int {
	dy := abs(p.Y - q.Y)
	dx := abs(p.X - q.X)
	if dy > dx {
		return dy
	}
	return dx
}

// Adjacent reports whether q is exactly one king-move away from p.
func (p Position) Adjacent(q Position) bool {
	return p.Chebyshev(q) == 1
}

// Aligned reports whether q shares a rank, file, or exact diagonal with p.
func (p Position) Aligned(q Position) bool {
	return p.Y == q.Y || p.X == q.X || abs(p.Y-q.Y) == abs(p.X-q.X)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Stats is the agent's numeric status, refreshed each confirmed turn.
type Stats struct {
	HitPoints    int
	MaxHitPoints int
	Level        int
	Depth        int
	Gold         int
	ArmorClass   int
	Turn         int
	Hunger       int
	Score        int
}

// Entity is a visible creature. Entities live for exactly one observation
// snapshot; they are recomputed, never diffed, so there are no stale
// references to chase.
type Entity struct {
	Pos     Position
	Glyph   int32
	Name    string
	Fast    bool
	Hostile bool
	Pet     bool
}

// Hazard flag bits for a cell.
const (
	HazardWater uint8 = 1 << 0
	HazardLava  uint8 = 1 << 1
)

// Level is the known map of one dungeon level. Grids are flat row-major
// arrays with fixed dimensions for the level's lifetime.
type Level struct {
	W, H     int
	walkable []bool
	seen     []bool
	hazard   []uint8
	itemPile []bool
	kind     []data.CellKind
}

// NewLevel allocates an unexplored level.
func NewLevel(h, w int) *Level {
	return &Level{
		W:        w,
		H:        h,
		walkable: make([]bool, w*h),
		seen:     make([]bool, w*h),
		hazard:   make([]uint8, w*h),
		itemPile: make([]bool, w*h),
		kind:     make([]data.CellKind, w*h),
	}
}

func (l *Level) idx(y, x int) int { return y*l.W + x }

// InBounds reports whether (y, x) is on the level.
func (l *Level) InBounds(y, x int) bool {
	return y >= 0 && y < l.H && x >= 0 && x < l.W
}

// Walkable reports whether the agent may step on (y, x).
func (l *Level) Walkable(y, x int) bool {
	return l.InBounds(y, x) && l.walkable[l.idx(y, x)]
}

// Seen reports whether (y, x) has ever been observed.
func (l *Level) Seen(y, x int) bool {
	return l.InBounds(y, x) && l.seen[l.idx(y, x)]
}

// Hazards returns the hazard bitset for (y, x).
func (l *Level) Hazards(y, x int) uint8 {
	if !l.InBounds(y, x) {
		return 0
	}
	return l.hazard[l.idx(y, x)]
}

// ItemPile reports whether (y, x) carries the item-pile flag.
func (l *Level) ItemPile(y, x int) bool {
	return l.InBounds(y, x) && l.itemPile[l.idx(y, x)]
}

// Kind returns the last decoded cell kind at (y, x).
func (l *Level) Kind(y, x int) data.CellKind {
	if !l.InBounds(y, x) {
		return data.CellUnknown
	}
	return l.kind[l.idx(y, x)]
}

// SetCell overrides one cell directly. Test helper; normal mutation goes
// through State.ApplyObservation.
func (l *Level) SetCell(y, x int, kind data.CellKind, walkable bool) {
	i := l.idx(y, x)
	l.kind[i] = kind
	l.walkable[i] = walkable
	l.seen[i] = true
}

// SetItemPile overrides the item-pile flag. Test helper.
func (l *Level) SetItemPile(y, x int, pile bool) {
	l.itemPile[l.idx(y, x)] = pile
}

// State is the shared mutable world model of one episode. The turn
// executor is its only writer; everything else reads a Snapshot.
type State struct {
	Pos      Position
	Stats    Stats
	Entities []Entity
	Inv      *items.Inventory

	level *Level

	glyphs   *data.GlyphTable
	monsters *data.MonsterTable
	parser   *items.Parser

	lastAction  string
	lastMessage string
}

// NewState creates a world with an empty level of default dimensions.
func NewState(glyphs *data.GlyphTable, monsters *data.MonsterTable) *State {
	return &State{
		level:    NewLevel(game.MapHeight, game.MapWidth),
		glyphs:   glyphs,
		monsters: monsters,
		Inv:      items.NewInventory(),
	}
}

// Level exposes the current level grid.
func (s *State) Level() *Level { return s.level }

// SetItemParser installs the parser used to decode inventory refreshes.
// Without one, inventory observations are ignored and Inv stays empty.
func (s *State) SetItemParser(p *items.Parser) { s.parser = p }

// NoteAction records the action about to be submitted, for diagnostics.
func (s *State) NoteAction(a game.Action) { s.lastAction = a.String() }

// LastMessage returns the most recent game message text.
func (s *State) LastMessage() string { return s.lastMessage }

// ApplyObservation integrates one confirmed game step: stats, position,
// revealed cells, and the visible entity list. It returns an
// *InvariantError when the observed position contradicts the grid, which
// signals a decoding bug upstream and is fatal to the episode.
func (s *State) ApplyObservation(obs game.Observation) error {
	prevDepth := s.Stats.Depth

	s.Stats = Stats{
		HitPoints:    obs.Stats.HitPoints,
		MaxHitPoints: obs.Stats.MaxHitPoints,
		Level:        obs.Stats.Level,
		Depth:        obs.Stats.Depth,
		Gold:         obs.Stats.Gold,
		ArmorClass:   obs.Stats.ArmorClass,
		Turn:         obs.Stats.Time,
		Hunger:       obs.Stats.Hunger,
		Score:        obs.Stats.Score,
	}
	s.lastMessage = obs.Message

	// Grid dimensions are fixed per level; a depth change means a fresh one.
	if prevDepth != 0 && s.Stats.Depth != prevDepth {
		s.level = NewLevel(game.MapHeight, game.MapWidth)
	}

	pos := Position{Y: obs.Stats.Y, X: obs.Stats.X}
	if !s.level.InBounds(pos.Y, pos.X) {
		return s.invariant(pos, fmt.Sprintf("position (%d,%d) out of bounds", pos.Y, pos.X))
	}

	// The shim's grids arrive as plain JSON arrays; a ragged or short one
	// must surface through the error taxonomy, not as an index panic.
	if err := s.checkGridShape(pos, obs); err != nil {
		return err
	}

	// Reveal cells and collect entities in row-major scan order. Row-major
	// order is what makes downstream tie-breaking reproducible.
	s.Entities = s.Entities[:0]
	for y := range obs.Glyphs {
		for x, glyph := range obs.Glyphs[y] {
			if glyph == 0 {
				continue // not currently observed
			}
			kind := s.glyphs.Kind(glyph)
			i := s.level.idx(y, x)
			// A creature glyph shows the occupant, not the terrain; keep
			// whatever terrain we saw on this cell before (stairs stay
			// stairs while something stands on them).
			remember := kind == data.CellMonster && s.level.seen[i] &&
				s.level.kind[i] != data.CellUnknown && s.level.kind[i] != data.CellMonster
			if !remember {
				s.level.kind[i] = kind
				s.level.walkable[i] = kind.Walkable()
				s.level.hazard[i] = hazardBits(kind)
			}
			s.level.seen[i] = true
			s.level.itemPile[i] = obs.Specials[y][x]&game.SpecialItemPile != 0

			if kind == data.CellMonster && !(y == pos.Y && x == pos.X) {
				s.Entities = append(s.Entities, s.decodeEntity(y, x, glyph, obs.Specials[y][x]))
			}
		}
	}

	if obs.Inventory != nil && s.parser != nil {
		inv := items.NewInventory()
		for _, line := range obs.Inventory {
			rec := s.parser.ParseText(line.Text, items.CategoryFromHint(line.Category))
			inv.Slots[line.Slot] = rec
		}
		s.Inv = inv
	}

	// The agent's own cell is walkable by definition of standing on it,
	// but the glyph there shows the agent, not the terrain.
	s.level.walkable[s.level.idx(pos.Y, pos.X)] = true

	if !s.level.Walkable(pos.Y, pos.X) {
		return s.invariant(pos, fmt.Sprintf("position (%d,%d) not walkable", pos.Y, pos.X))
	}
	s.Pos = pos
	return nil
}

// checkGridShape validates that the observation grids the reveal loop
// indexes match the level's fixed dimensions.
func (s *State) checkGridShape(pos Position, obs game.Observation) error {
	if len(obs.Glyphs) != s.level.H || len(obs.Specials) != s.level.H {
		return s.invariant(pos, fmt.Sprintf("observation grid height %d/%d, want %d",
			len(obs.Glyphs), len(obs.Specials), s.level.H))
	}
	for y := range obs.Glyphs {
		if len(obs.Glyphs[y]) != s.level.W || len(obs.Specials[y]) != s.level.W {
			return s.invariant(pos, fmt.Sprintf("observation grid row %d width %d/%d, want %d",
				y, len(obs.Glyphs[y]), len(obs.Specials[y]), s.level.W))
		}
	}
	return nil
}

func (s *State) decodeEntity(y, x int, glyph int32, special uint8) Entity {
	e := Entity{
		Pos:   Position{Y: y, X: x},
		Glyph: glyph,
		Pet:   special&game.SpecialPet != 0,
	}
	if m := s.monsters.ByGlyph(glyph); m != nil {
		e.Name = m.Name
		e.Fast = m.Fast
	}
	e.Hostile = !e.Pet
	return e
}

func hazardBits(kind data.CellKind) uint8 {
	switch kind {
	case data.CellWater:
		return HazardWater
	case data.CellLava:
		return HazardLava
	}
	return 0
}

// VisibleHostiles returns the hostile subset of the entity list, in
// entity (row-major) order.
func (s *State) VisibleHostiles() []Entity {
	out := make([]Entity, 0, len(s.Entities))
	for _, e := range s.Entities {
		if e.Hostile {
			out = append(out, e)
		}
	}
	return out
}

// Snapshot returns a read-only view for one decision. The contract is
// cooperative: holders must not retain it across a turn-executor step.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Pos:      s.Pos,
		Stats:    s.Stats,
		Entities: s.Entities,
		Level:    s.level,
		Inv:      s.Inv,
	}
}

// Snapshot is the read-only world view handed to the pathfinder, the
// score-field builder, and strategy applicability checks.
type Snapshot struct {
	Pos      Position
	Stats    Stats
	Entities []Entity
	Level    *Level
	Inv      *items.Inventory
}

// Hostiles filters the snapshot's entities to hostile ones.
func (sn Snapshot) Hostiles() []Entity {
	out := make([]Entity, 0, len(sn.Entities))
	for _, e := range sn.Entities {
		if e.Hostile {
			out = append(out, e)
		}
	}
	return out
}
