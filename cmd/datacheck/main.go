// datacheck validates the YAML knowledge tables the agent loads at
// startup: glyph class ranges, the monster list, and the object list.
// It exits non-zero on the first malformed file, so it can gate data
// edits in CI.
//
// Usage:
//
//	go run ./cmd/datacheck [data-dir]
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/scurrybot/scurry/internal/data"
)

func main() {
	dir := "data/yaml"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}
	if err := check(dir); err != nil {
		fmt.Fprintf(os.Stderr, "datacheck: %v\n", err)
		os.Exit(1)
	}
}

func check(dir string) error {
	glyphs, err := data.LoadGlyphTable(filepath.Join(dir, "glyph_classes.yaml"))
	if err != nil {
		return err
	}
	fmt.Printf("glyph_classes.yaml  %d ranges\n", glyphs.Count())

	monsters, err := data.LoadMonsterTable(filepath.Join(dir, "monster_list.yaml"))
	if err != nil {
		return err
	}
	fmt.Printf("monster_list.yaml   %d monsters\n", monsters.Count())

	// Every monster glyph must fall in a range the glyph table classifies
	// as a creature, or the world model will treat it as terrain.
	bad := 0
	for _, m := range monsters.All() {
		if glyphs.Kind(m.Glyph) != data.CellMonster {
			fmt.Printf("  glyph %d (%s) is not in a monster range\n", m.Glyph, m.Name)
			bad++
		}
	}
	if bad > 0 {
		return fmt.Errorf("%d monster entries outside monster glyph ranges", bad)
	}

	objects, err := data.LoadObjectTable(filepath.Join(dir, "object_list.yaml"))
	if err != nil {
		return err
	}
	fmt.Printf("object_list.yaml    %d objects\n", objects.Count())

	fmt.Println("ok")
	return nil
}
