package pathfind

import "github.com/scurrybot/scurry/internal/world"

// Unreachable is the sentinel distance for cells BFS never reached.
const Unreachable = -1

// Neighbor scan order, fixed so every result of this package is
// reproducible: N, NE, E, SE, S, SW, W, NW.
var (
	neighborDY = [8]int{-1, -1, 0, 1, 1, 1, 0, -1}
	neighborDX = [8]int{0, 1, 1, 1, 0, -1, -1, -1}
)

// DistanceMap holds shortest distances (in king moves) over a grid.
type DistanceMap struct {
	W, H int
	d    []int
}

// At returns the distance to (y, x), Unreachable when out of bounds or
// never reached.
func (m *DistanceMap) At(y, x int) int {
	if y < 0 || y >= m.H || x < 0 || x >= m.W {
		return Unreachable
	}
	return m.d[y*m.W+x]
}

// Passable decides whether BFS may expand into a cell.
type Passable func(y, x int) bool

// Distances runs a single-source BFS from start over the level's grid.
// Cost is 1 per step, 8-connected. The start cell itself is always
// distance 0 even if the predicate rejects it (the agent stands there).
func Distances(level *world.Level, start world.Position, passable Passable) *DistanceMap {
	return MultiSource(level, []world.Position{start}, passable)
}

// MultiSource runs BFS from several sources at once; each cell gets the
// distance to its nearest source. Inverting roles this way answers
// "how far is the agent from any cell of interest" with one search.
func MultiSource(level *world.Level, sources []world.Position, passable Passable) *DistanceMap {
	m := &DistanceMap{W: level.W, H: level.H, d: make([]int, level.W*level.H)}
	for i := range m.d {
		m.d[i] = Unreachable
	}

	queue := make([]world.Position, 0, len(sources))
	for _, s := range sources {
		if !level.InBounds(s.Y, s.X) {
			continue
		}
		if m.d[s.Y*m.W+s.X] == 0 && len(queue) > 0 {
			continue // duplicate source
		}
		m.d[s.Y*m.W+s.X] = 0
		queue = append(queue, s)
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		dist := m.d[cur.Y*m.W+cur.X]
		for i := 0; i < 8; i++ {
			ny := cur.Y + neighborDY[i]
			nx := cur.X + neighborDX[i]
			if !level.InBounds(ny, nx) {
				continue
			}
			if m.d[ny*m.W+nx] != Unreachable {
				continue
			}
			if !passable(ny, nx) {
				continue
			}
			m.d[ny*m.W+nx] = dist + 1
			queue = append(queue, world.Position{Y: ny, X: nx})
		}
	}
	return m
}

// Nearest returns the reachable cell satisfying want with the smallest
// distance. Ties break row-major (lowest y, then lowest x) — a stable
// rule, never map-iteration order. ok is false when nothing qualifies.
func (m *DistanceMap) Nearest(want func(y, x int) bool) (pos world.Position, dist int, ok bool) {
	best := Unreachable
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			d := m.d[y*m.W+x]
			if d == Unreachable || !want(y, x) {
				continue
			}
			if best == Unreachable || d < best {
				best = d
				pos = world.Position{Y: y, X: x}
			}
		}
	}
	return pos, best, best != Unreachable
}

// FirstStep returns the first move along a shortest path toward target,
// given a distance map computed from the agent's cell. It walks back from
// the target picking the neighbor closest to the source, scanning
// neighbors in the fixed order above, so the chosen path is deterministic.
func (m *DistanceMap) FirstStep(target world.Position) (world.Position, bool) {
	if m.At(target.Y, target.X) == Unreachable {
		return world.Position{}, false
	}
	cur := target
	for {
		d := m.At(cur.Y, cur.X)
		if d <= 1 {
			return cur, d == 1
		}
		moved := false
		for i := 0; i < 8; i++ {
			ny := cur.Y + neighborDY[i]
			nx := cur.X + neighborDX[i]
			if m.At(ny, nx) == d-1 {
				cur = world.Position{Y: ny, X: nx}
				moved = true
				break
			}
		}
		if !moved {
			// Distances decrease monotonically along any BFS path, so a
			// missing predecessor means the map and arguments disagree.
			return world.Position{}, false
		}
	}
}
