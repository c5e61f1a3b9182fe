package combat

import "github.com/scurrybot/scurry/internal/items"

// Loadout is the combat-relevant summary of the agent's inventory,
// derived read-only once per decision.
type Loadout struct {
	LauncherEquipped bool // a launcher is wielded right now
	MeleeWeapon      bool // a melee weapon is wielded
	// RangedCombos counts usable launcher+ammo pairings. Zero means no
	// ranged attack is available at all.
	RangedCombos int
}

// DeriveLoadout scans the inventory. Ambiguous items only count for a
// role when every candidate identity agrees (items.IsLauncher etc.).
func DeriveLoadout(inv *items.Inventory) Loadout {
	var lo Loadout
	launchers := 0
	projectiles := 0
	inv.Each(func(slot byte, it *items.ItemRecord) {
		switch {
		case it.IsLauncher():
			launchers++
			if it.Equipped {
				lo.LauncherEquipped = true
			}
		case it.IsProjectile():
			projectiles++
		case it.IsWeapon() && it.Equipped:
			lo.MeleeWeapon = true
		}
	})
	if launchers > 0 && projectiles > 0 {
		lo.RangedCombos = launchers * projectiles
	}
	return lo
}
