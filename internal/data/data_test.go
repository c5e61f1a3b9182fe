package data

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestGlyphTableLookupBoundaries(t *testing.T) {
	path := writeFile(t, "glyph_classes.yaml", `ranges:
  - {start: 0, end: 761, kind: monster}
  - {start: 2360, end: 2370, kind: wall}
  - {start: 2378, end: 2379, kind: floor}
`)
	table, err := LoadGlyphTable(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if table.Count() != 3 {
		t.Fatalf("count = %d", table.Count())
	}

	cases := []struct {
		glyph int32
		want  CellKind
	}{
		{0, CellMonster},
		{761, CellMonster},
		{762, CellUnknown},
		{2360, CellWall},
		{2370, CellWall},
		{2371, CellUnknown},
		{2378, CellFloor},
		{-1, CellUnknown},
	}
	for _, c := range cases {
		if got := table.Kind(c.glyph); got != c.want {
			t.Fatalf("Kind(%d) = %v, want %v", c.glyph, got, c.want)
		}
	}
}

func TestGlyphTableRejectsOverlap(t *testing.T) {
	path := writeFile(t, "glyph_classes.yaml", `ranges:
  - {start: 0, end: 100, kind: monster}
  - {start: 100, end: 200, kind: wall}
`)
	if _, err := LoadGlyphTable(path); err == nil {
		t.Fatal("overlapping ranges accepted")
	}
}

func TestGlyphTableRejectsUnknownKind(t *testing.T) {
	path := writeFile(t, "glyph_classes.yaml", `ranges:
  - {start: 0, end: 100, kind: quicksand}
`)
	if _, err := LoadGlyphTable(path); err == nil {
		t.Fatal("unknown kind accepted")
	}
}

func TestGlyphTableRejectsInvertedRange(t *testing.T) {
	path := writeFile(t, "glyph_classes.yaml", `ranges:
  - {start: 100, end: 50, kind: wall}
`)
	if _, err := LoadGlyphTable(path); err == nil {
		t.Fatal("inverted range accepted")
	}
}

func TestCellKindWalkable(t *testing.T) {
	walkable := []CellKind{CellFloor, CellDoor, CellCorridor, CellStairsDown, CellStairsUp, CellItem, CellMonster}
	for _, k := range walkable {
		if !k.Walkable() {
			t.Fatalf("%v should be walkable", k)
		}
	}
	for _, k := range []CellKind{CellUnknown, CellWall, CellWater, CellLava} {
		if k.Walkable() {
			t.Fatalf("%v should not be walkable", k)
		}
	}
}

func TestMonsterTableLoad(t *testing.T) {
	path := writeFile(t, "monster_list.yaml", `monsters:
  - {glyph: 196, name: grid bug, category: weak}
  - {glyph: 57, name: jackal, category: other, fast: true}
`)
	table, err := LoadMonsterTable(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if table.Count() != 2 {
		t.Fatalf("count = %d", table.Count())
	}
	if m := table.ByGlyph(57); m == nil || m.Name != "jackal" || !m.Fast {
		t.Fatalf("jackal = %+v", m)
	}
	if m := table.ByName("grid bug"); m == nil || m.Category != "weak" {
		t.Fatalf("grid bug = %+v", m)
	}
	if table.ByGlyph(9999) != nil {
		t.Fatal("unknown glyph resolved")
	}

	all := table.All()
	if len(all) != 2 || all[0].Glyph != 57 || all[1].Glyph != 196 {
		t.Fatalf("All() order = %+v", all)
	}
}

func TestObjectTableAmbiguousAppearance(t *testing.T) {
	table, err := NewObjectTable([]ObjectEntry{
		{Name: "potion of healing", Appearance: "pink potion", Category: "potion"},
		{Name: "potion of extra healing", Appearance: "pink potion", Category: "potion"},
		{Name: "bow", Category: "weapon", Launcher: true},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if table.Count() != 3 {
		t.Fatalf("count = %d", table.Count())
	}

	if kinds := table.Lookup("pink potion"); len(kinds) != 2 {
		t.Fatalf("pink potion candidates = %+v", kinds)
	}
	if kinds := table.Lookup("potion of healing"); len(kinds) != 1 {
		t.Fatalf("identified name candidates = %+v", kinds)
	}
	if kinds := table.Lookup("bow"); len(kinds) != 1 || !kinds[0].Launcher {
		t.Fatalf("bow = %+v", kinds)
	}
	if table.Lookup("no such thing") != nil {
		t.Fatal("unknown name resolved")
	}
}

func TestObjectTableRejectsEmptyName(t *testing.T) {
	if _, err := NewObjectTable([]ObjectEntry{{Appearance: "blob"}}); err == nil {
		t.Fatal("empty name accepted")
	}
}
