package game

import "fmt"

// Dir is one of the 8 compass directions.
// Order matches the movement delta tables below: 0=N clockwise through 7=NW.
type Dir int8

const (
	DirN Dir = iota
	DirNE
	DirE
	DirSE
	DirS
	DirSW
	DirW
	DirNW
)

// Movement deltas indexed by Dir. Row axis (Y) grows downward.
var (
	DirDY = [8]int{-1, -1, 0, 1, 1, 1, 0, -1}
	DirDX = [8]int{0, 1, 1, 1, 0, -1, -1, -1}
)

// DirTo returns the direction whose unit step best matches the vector
// (dy, dx), and false if the vector is zero.
func DirTo(dy, dx int) (Dir, bool) {
	if dy == 0 && dx == 0 {
		return 0, false
	}
	sy, sx := sign(dy), sign(dx)
	for d := Dir(0); d < 8; d++ {
		if DirDY[d] == sy && DirDX[d] == sx {
			return d, true
		}
	}
	return 0, false
}

func sign(n int) int {
	if n > 0 {
		return 1
	}
	if n < 0 {
		return -1
	}
	return 0
}

// ActionKind is the closed set of primitive actions the agent can emit.
type ActionKind int8

const (
	ActMove ActionKind = iota
	ActFire
	ActPickUp
	ActSearch
	ActWait
	ActDescend
)

// Action is one discrete game input. Dir is meaningful only for ActMove
// and ActFire.
type Action struct {
	Kind ActionKind
	Dir  Dir
}

func Move(d Dir) Action  { return Action{Kind: ActMove, Dir: d} }
func Fire(d Dir) Action  { return Action{Kind: ActFire, Dir: d} }
func PickUp() Action     { return Action{Kind: ActPickUp} }
func Search() Action     { return Action{Kind: ActSearch} }
func Wait() Action       { return Action{Kind: ActWait} }
func Descend() Action    { return Action{Kind: ActDescend} }

func (a Action) String() string {
	switch a.Kind {
	case ActMove:
		return fmt.Sprintf("move(%d)", a.Dir)
	case ActFire:
		return fmt.Sprintf("fire(%d)", a.Dir)
	case ActPickUp:
		return "pickup"
	case ActSearch:
		return "search"
	case ActWait:
		return "wait"
	case ActDescend:
		return "descend"
	}
	return "unknown"
}
