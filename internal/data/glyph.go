package data

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// CellKind classifies what a map glyph represents for movement purposes.
type CellKind int8

const (
	CellUnknown CellKind = iota
	CellFloor
	CellWall
	CellDoor
	CellCorridor
	CellStairsDown
	CellStairsUp
	CellWater
	CellLava
	CellItem    // an object lying on (presumed walkable) ground
	CellMonster // occupied by a creature; terrain underneath unknown
)

var cellKindNames = map[string]CellKind{
	"floor":       CellFloor,
	"wall":        CellWall,
	"door":        CellDoor,
	"corridor":    CellCorridor,
	"stairs_down": CellStairsDown,
	"stairs_up":   CellStairsUp,
	"water":       CellWater,
	"lava":        CellLava,
	"item":        CellItem,
	"monster":     CellMonster,
}

// Walkable reports whether the agent may stand on this kind of cell.
// Monster cells are walkable terrain-wise; occupancy is handled by the
// score field, not the grid.
func (k CellKind) Walkable() bool {
	switch k {
	case CellFloor, CellDoor, CellCorridor, CellStairsDown, CellStairsUp, CellItem, CellMonster:
		return true
	}
	return false
}

// GlyphRange maps a contiguous glyph interval to a cell kind.
type GlyphRange struct {
	Start int32  `yaml:"start"`
	End   int32  `yaml:"end"` // inclusive
	Kind  string `yaml:"kind"`
}

type glyphClassFile struct {
	Ranges []GlyphRange `yaml:"ranges"`
}

type glyphInterval struct {
	start, end int32
	kind       CellKind
}

// GlyphTable resolves raw observation glyphs to cell kinds. Lookup is a
// binary search over sorted disjoint intervals.
type GlyphTable struct {
	intervals []glyphInterval
}

// LoadGlyphTable loads glyph class ranges from a YAML file.
func LoadGlyphTable(path string) (*GlyphTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read glyph_classes: %w", err)
	}
	var f glyphClassFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse glyph_classes: %w", err)
	}
	t := &GlyphTable{intervals: make([]glyphInterval, 0, len(f.Ranges))}
	for _, r := range f.Ranges {
		kind, ok := cellKindNames[r.Kind]
		if !ok {
			return nil, fmt.Errorf("glyph_classes: unknown kind %q", r.Kind)
		}
		if r.End < r.Start {
			return nil, fmt.Errorf("glyph_classes: inverted range %d..%d", r.Start, r.End)
		}
		t.intervals = append(t.intervals, glyphInterval{start: r.Start, end: r.End, kind: kind})
	}
	sort.Slice(t.intervals, func(i, j int) bool {
		return t.intervals[i].start < t.intervals[j].start
	})
	for i := 1; i < len(t.intervals); i++ {
		if t.intervals[i].start <= t.intervals[i-1].end {
			return nil, fmt.Errorf("glyph_classes: overlapping ranges at glyph %d", t.intervals[i].start)
		}
	}
	return t, nil
}

// NewGlyphTable builds a table directly from ranges. Used by tests and by
// embedded fallback data.
func NewGlyphTable(ranges []GlyphRange) (*GlyphTable, error) {
	t := &GlyphTable{}
	for _, r := range ranges {
		kind, ok := cellKindNames[r.Kind]
		if !ok {
			return nil, fmt.Errorf("unknown kind %q", r.Kind)
		}
		t.intervals = append(t.intervals, glyphInterval{start: r.Start, end: r.End, kind: kind})
	}
	sort.Slice(t.intervals, func(i, j int) bool {
		return t.intervals[i].start < t.intervals[j].start
	})
	return t, nil
}

// Count returns the number of glyph intervals loaded.
func (t *GlyphTable) Count() int {
	return len(t.intervals)
}

// Kind resolves a glyph to its cell kind, CellUnknown if unmapped.
func (t *GlyphTable) Kind(glyph int32) CellKind {
	i := sort.Search(len(t.intervals), func(i int) bool {
		return t.intervals[i].end >= glyph
	})
	if i < len(t.intervals) && t.intervals[i].start <= glyph {
		return t.intervals[i].kind
	}
	return CellUnknown
}
