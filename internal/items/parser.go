package items

import (
	"strconv"
	"strings"
)

// KindTable resolves display names to candidate object kinds. It is
// game-knowledge data owned by the caller; an unappearing name yields a
// single unknown-category candidate so the ambiguity invariant holds.
type KindTable interface {
	Lookup(name string) []ObjectKind
}

// Parser turns raw item description strings into ItemRecords. Parsing is
// pure, so identical inputs are served from a bounded cache. The cache is
// owned here, never by the decision engine, and is wholesale-evicted at
// capacity rather than growing without bound.
type Parser struct {
	kinds KindTable

	cacheCap int
	cache    map[cacheKey]*ItemRecord
}

type cacheKey struct {
	text     string
	category Category
}

// NewParser creates a parser with the given identity table and cache
// capacity. Capacity <= 0 disables caching.
func NewParser(kinds KindTable, cacheCap int) *Parser {
	return &Parser{
		kinds:    kinds,
		cacheCap: cacheCap,
		cache:    make(map[cacheKey]*ItemRecord),
	}
}

// CacheLen returns the number of cached parses. Test hook.
func (p *Parser) CacheLen() int {
	return len(p.cache)
}

// ParseText parses one item description like
//
//	"3 blessed +1 elven arrows (at the ready)"
//	"an uncursed bow (weapon in hand)"
//
// hintCategory narrows identity candidates when the producer knows the
// object class; CatUnknown applies no narrowing.
func (p *Parser) ParseText(text string, hintCategory Category) *ItemRecord {
	key := cacheKey{text: text, category: hintCategory}
	if rec, ok := p.cache[key]; ok {
		return rec
	}

	rec := p.parse(text, hintCategory)

	if p.cacheCap > 0 {
		if len(p.cache) >= p.cacheCap {
			p.cache = make(map[cacheKey]*ItemRecord, p.cacheCap)
		}
		p.cache[key] = rec
	}
	return rec
}

func (p *Parser) parse(text string, hintCategory Category) *ItemRecord {
	rec := &ItemRecord{Quantity: 1, Status: PurityUnknown, Text: text}

	body := text
	if i := strings.Index(body, " ("); i >= 0 {
		paren := body[i+2:]
		body = body[:i]
		paren = strings.TrimSuffix(paren, ")")
		switch {
		case strings.Contains(paren, "at the ready"):
			rec.AtReady = true
		case strings.Contains(paren, "in hand"),
			strings.Contains(paren, "being worn"),
			strings.Contains(paren, "wielded"):
			rec.Equipped = true
		}
	}

	fields := strings.Fields(body)
	i := 0

	// leading count or article
	if i < len(fields) {
		switch fields[i] {
		case "a", "an", "the":
			i++
		default:
			if n, err := strconv.Atoi(fields[i]); err == nil && n > 0 {
				rec.Quantity = n
				i++
			}
		}
	}

	// purity status
	if i < len(fields) {
		switch fields[i] {
		case "cursed":
			rec.Status = PurityCursed
			i++
		case "uncursed":
			rec.Status = PurityUncursed
			i++
		case "blessed":
			rec.Status = PurityBlessed
			i++
		}
	}

	// enchantment modifier: +N or -N
	if i < len(fields) && len(fields[i]) >= 2 &&
		(fields[i][0] == '+' || fields[i][0] == '-') {
		if n, err := strconv.Atoi(fields[i]); err == nil {
			rec.Enchantment = &n
			i++
		}
	}

	name := normalizeName(strings.Join(fields[i:], " "))
	name = singular(name, rec.Quantity)

	cands := p.kinds.Lookup(name)
	if hintCategory != CatUnknown {
		narrowed := cands[:0:0]
		for _, c := range cands {
			if c.Category == hintCategory {
				narrowed = append(narrowed, c)
			}
		}
		if len(narrowed) > 0 {
			cands = narrowed
		}
	}
	if len(cands) == 0 {
		cands = []ObjectKind{{Name: name, Category: hintCategory}}
	}
	rec.Candidates = cands
	return rec
}

// singular undoes the trivial plural the display uses for stacks. Only
// the "-s" form appears for the item names this layer cares about.
func singular(name string, qty int) string {
	if qty <= 1 {
		return name
	}
	if strings.HasSuffix(name, "es") && (strings.HasSuffix(name, "shes") || strings.HasSuffix(name, "ches")) {
		return name[:len(name)-2]
	}
	if strings.HasSuffix(name, "s") && !strings.HasSuffix(name, "ss") {
		return name[:len(name)-1]
	}
	return name
}
