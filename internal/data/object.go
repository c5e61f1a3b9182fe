package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/scurrybot/scurry/internal/items"
)

// ObjectEntry holds static knowledge about one object kind loaded from
// YAML. Appearance is the unidentified display name; several entries may
// share one appearance, which is what makes parsed items ambiguous.
type ObjectEntry struct {
	Name       string `yaml:"name"`
	Appearance string `yaml:"appearance"` // empty when it looks like its name
	Category   string `yaml:"category"`
	Launcher   bool   `yaml:"launcher"`
	Projectile bool   `yaml:"projectile"`
}

type objectListFile struct {
	Objects []ObjectEntry `yaml:"objects"`
}

// ObjectTable resolves display names to candidate object kinds. It
// satisfies the item parser's identity-table interface.
type ObjectTable struct {
	byName map[string][]items.ObjectKind
	count  int
}

// LoadObjectTable loads object knowledge from a YAML file.
func LoadObjectTable(path string) (*ObjectTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read object_list: %w", err)
	}
	var f objectListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse object_list: %w", err)
	}
	return NewObjectTable(f.Objects)
}

// NewObjectTable builds a table directly from entries. Used by tests.
func NewObjectTable(entries []ObjectEntry) (*ObjectTable, error) {
	t := &ObjectTable{byName: make(map[string][]items.ObjectKind, len(entries))}
	for _, e := range entries {
		if e.Name == "" {
			return nil, fmt.Errorf("object_list: entry with empty name")
		}
		kind := items.ObjectKind{
			Name:       e.Name,
			Category:   items.CategoryFromHint(e.Category),
			Launcher:   e.Launcher,
			Projectile: e.Projectile,
		}
		t.byName[e.Name] = append(t.byName[e.Name], kind)
		if e.Appearance != "" && e.Appearance != e.Name {
			t.byName[e.Appearance] = append(t.byName[e.Appearance], kind)
		}
		t.count++
	}
	return t, nil
}

// Count returns the number of object kinds loaded.
func (t *ObjectTable) Count() int {
	return t.count
}

// Lookup returns every object kind this display name could denote, nil
// when the name is unknown.
func (t *ObjectTable) Lookup(name string) []items.ObjectKind {
	return t.byName[name]
}
