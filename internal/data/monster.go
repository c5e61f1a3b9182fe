package data

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// MonsterEntry holds static knowledge about one monster species loaded
// from YAML. Category is a hint string resolved to a closed enum by the
// combat layer; unknown strings fall through to the default category.
type MonsterEntry struct {
	Glyph    int32  `yaml:"glyph"`
	Name     string `yaml:"name"`
	Category string `yaml:"category"` // weak, mold, ranged_only, weird, exploding, other
	Fast     bool   `yaml:"fast"`     // moves faster than the agent
}

type monsterListFile struct {
	Monsters []MonsterEntry `yaml:"monsters"`
}

// MonsterTable holds monster knowledge indexed by glyph and by name.
type MonsterTable struct {
	byGlyph map[int32]*MonsterEntry
	byName  map[string]*MonsterEntry
}

// LoadMonsterTable loads monster knowledge from a YAML file.
func LoadMonsterTable(path string) (*MonsterTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read monster_list: %w", err)
	}
	var f monsterListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse monster_list: %w", err)
	}
	t := &MonsterTable{
		byGlyph: make(map[int32]*MonsterEntry, len(f.Monsters)),
		byName:  make(map[string]*MonsterEntry, len(f.Monsters)),
	}
	for i := range f.Monsters {
		m := &f.Monsters[i]
		t.byGlyph[m.Glyph] = m
		t.byName[m.Name] = m
	}
	return t, nil
}

// Count returns the number of monster entries loaded.
func (t *MonsterTable) Count() int {
	return len(t.byGlyph)
}

// All returns every entry in ascending glyph order.
func (t *MonsterTable) All() []*MonsterEntry {
	out := make([]*MonsterEntry, 0, len(t.byGlyph))
	for _, m := range t.byGlyph {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Glyph < out[j].Glyph })
	return out
}

// ByGlyph returns the entry for a monster glyph, or nil if unknown.
func (t *MonsterTable) ByGlyph(glyph int32) *MonsterEntry {
	return t.byGlyph[glyph]
}

// ByName returns the entry for a monster name, or nil if unknown.
func (t *MonsterTable) ByName(name string) *MonsterEntry {
	return t.byName[name]
}
