package combat

import (
	"github.com/scurrybot/scurry/internal/data"
	"github.com/scurrybot/scurry/internal/world"
)

// Category is the closed behavioral classification of a monster. Every
// place behavior differs switches over this exhaustively; there is no
// string matching past this point.
type Category int8

const (
	CatOther Category = iota
	CatWeak            // freely engage in melee
	CatMold            // stationary, punishes adjacency; melee only when healthy
	CatRangedOnly      // never melee, harmless at range
	CatWeird           // do not melee, keep in line of fire
	CatExploding       // never be adjacent
)

func (c Category) String() string {
	switch c {
	case CatWeak:
		return "weak"
	case CatMold:
		return "mold"
	case CatRangedOnly:
		return "ranged_only"
	case CatWeird:
		return "weird"
	case CatExploding:
		return "exploding"
	}
	return "other"
}

var categoryNames = map[string]Category{
	"weak":        CatWeak,
	"mold":        CatMold,
	"ranged_only": CatRangedOnly,
	"weird":       CatWeird,
	"exploding":   CatExploding,
	"other":       CatOther,
}

// PolicyOverride lets an external policy layer (Lua scripts) override the
// table-derived classification. The bool result reports whether an
// override applied.
type PolicyOverride interface {
	ClassifyMonster(name, hint string) (string, bool)
}

// Classifier resolves entity categories once per decision from the
// monster knowledge table plus an optional policy override.
type Classifier struct {
	table    *data.MonsterTable
	override PolicyOverride // may be nil
}

// NewClassifier builds a classifier. override may be nil.
func NewClassifier(table *data.MonsterTable, override PolicyOverride) *Classifier {
	return &Classifier{table: table, override: override}
}

// Classify returns the category for a visible entity.
func (c *Classifier) Classify(e world.Entity) Category {
	hint := ""
	if m := c.table.ByName(e.Name); m != nil {
		hint = m.Category
	}
	if c.override != nil {
		if name, ok := c.override.ClassifyMonster(e.Name, hint); ok {
			hint = name
		}
	}
	if cat, ok := categoryNames[hint]; ok {
		return cat
	}
	return CatOther
}
