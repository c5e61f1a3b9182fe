package game

// Default map dimensions for the supported terminal roguelike display.
const (
	MapHeight = 21
	MapWidth  = 79
)

// Cell special flag bits, set by the observation producer.
const (
	SpecialItemPile uint8 = 1 << 0 // one or more objects on this cell
	SpecialPet      uint8 = 1 << 1 // occupant is the agent's pet
)

// BLStats is the numeric status block delivered with every observation.
type BLStats struct {
	X             int   `json:"x"`
	Y             int   `json:"y"`
	HitPoints     int   `json:"hp"`
	MaxHitPoints  int   `json:"max_hp"`
	Level         int   `json:"level"`
	Depth         int   `json:"depth"`
	Gold          int   `json:"gold"`
	Energy        int   `json:"energy"`
	ArmorClass    int   `json:"ac"`
	Time          int   `json:"time"` // game turn counter
	Hunger        int   `json:"hunger"`
	Score         int   `json:"score"`
}

// InvItem is one raw inventory line as the producer renders it. Category
// is a free-form class hint ("weapon", "armor", ...) that narrows item
// identification downstream; empty applies no narrowing.
type InvItem struct {
	Slot     byte   `json:"slot"`
	Text     string `json:"text"`
	Category string `json:"category"`
}

// Observation is one confirmed game state snapshot. Grids are row-major
// [MapHeight][MapWidth]; Glyphs carry the producer's glyph identifiers and
// Chars the display characters. Decoding glyphs into walkability and entity
// identity is the consumer's job (see world.ApplyObservation).
type Observation struct {
	Glyphs   [][]int32 `json:"glyphs"`
	Chars    [][]byte  `json:"chars"`
	Specials [][]uint8 `json:"specials"`
	Stats    BLStats   `json:"blstats"`
	Message  string    `json:"message"`
	Popup    []string  `json:"popup"`

	// Inventory is nil when this step carried no inventory refresh; the
	// consumer keeps its previous view. An empty non-nil slice means the
	// inventory is known to be empty.
	Inventory []InvItem `json:"inventory"`

	Done      bool   `json:"done"`
	EndReason string `json:"end_reason"` // opaque, classified upstream
}

// NewGrids allocates zeroed observation grids with the default dimensions.
// Test helpers and the env client share this so shapes always agree.
func NewGrids() ([][]int32, [][]byte, [][]uint8) {
	g := make([][]int32, MapHeight)
	c := make([][]byte, MapHeight)
	s := make([][]uint8, MapHeight)
	for y := 0; y < MapHeight; y++ {
		g[y] = make([]int32, MapWidth)
		c[y] = make([]byte, MapWidth)
		s[y] = make([]uint8, MapWidth)
	}
	return g, c, s
}
