package items

import "strings"

// PurityStatus is the blessed/cursed state of an item.
type PurityStatus int8

const (
	PurityUnknown PurityStatus = iota
	PurityCursed
	PurityUncursed
	PurityBlessed
)

func (s PurityStatus) String() string {
	switch s {
	case PurityCursed:
		return "cursed"
	case PurityUncursed:
		return "uncursed"
	case PurityBlessed:
		return "blessed"
	}
	return "unknown"
}

// Category is the broad object class an item belongs to.
type Category int8

const (
	CatUnknown Category = iota
	CatWeapon
	CatArmor
	CatFood
	CatPotion
	CatScroll
	CatTool
	CatGem
	CatCoin
)

// CategoryFromHint resolves a producer's free-form class hint. Unknown
// hints apply no narrowing.
func CategoryFromHint(hint string) Category {
	switch hint {
	case "weapon":
		return CatWeapon
	case "armor":
		return CatArmor
	case "food":
		return CatFood
	case "potion":
		return CatPotion
	case "scroll":
		return CatScroll
	case "tool":
		return CatTool
	case "gem":
		return CatGem
	case "coin":
		return CatCoin
	}
	return CatUnknown
}

// ObjectKind is one candidate identity for an item. Launcher and
// Projectile describe ranged roles; a plain melee weapon has neither.
type ObjectKind struct {
	Name       string
	Category   Category
	Launcher   bool
	Projectile bool
}

// ItemRecord is a parsed, possibly ambiguous item. Candidates always has
// at least one element; exactly one means the item is fully identified.
type ItemRecord struct {
	Candidates  []ObjectKind
	Quantity    int
	Status      PurityStatus
	Enchantment *int // nil when not visible
	Equipped    bool
	AtReady     bool
	Text        string // raw source string, kept for diagnostics
}

// Identified reports whether the identity is unambiguous.
func (r *ItemRecord) Identified() bool {
	return len(r.Candidates) == 1
}

// Kind returns the single identity. Only valid when Identified.
func (r *ItemRecord) Kind() ObjectKind {
	return r.Candidates[0]
}

// IsLauncher reports whether every candidate identity is a launcher.
// Ambiguous items count only if all possibilities agree.
func (r *ItemRecord) IsLauncher() bool {
	for _, c := range r.Candidates {
		if !c.Launcher {
			return false
		}
	}
	return len(r.Candidates) > 0
}

// IsProjectile reports whether every candidate identity is ammunition.
func (r *ItemRecord) IsProjectile() bool {
	for _, c := range r.Candidates {
		if !c.Projectile {
			return false
		}
	}
	return len(r.Candidates) > 0
}

// IsWeapon reports whether every candidate is in the weapon class.
func (r *ItemRecord) IsWeapon() bool {
	for _, c := range r.Candidates {
		if c.Category != CatWeapon {
			return false
		}
	}
	return len(r.Candidates) > 0
}

// Inventory is a read-only slot-to-item mapping, rebuilt by the
// observation layer. The decision core never mutates it.
type Inventory struct {
	Slots map[byte]*ItemRecord
}

// NewInventory returns an empty inventory.
func NewInventory() *Inventory {
	return &Inventory{Slots: make(map[byte]*ItemRecord)}
}

// Each visits items in slot order (deterministic).
func (inv *Inventory) Each(fn func(slot byte, it *ItemRecord)) {
	for slot := byte('a'); slot <= 'z'; slot++ {
		if it, ok := inv.Slots[slot]; ok {
			fn(slot, it)
		}
	}
	for slot := byte('A'); slot <= 'Z'; slot++ {
		if it, ok := inv.Slots[slot]; ok {
			fn(slot, it)
		}
	}
}

// normalizeName strips article prefixes used in display strings.
func normalizeName(s string) string {
	for _, p := range []string{"a ", "an ", "the "} {
		if strings.HasPrefix(s, p) {
			return s[len(p):]
		}
	}
	return s
}
