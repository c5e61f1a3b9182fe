package world

import (
	"errors"
	"fmt"
)

// InvariantError reports a world-model contradiction: a state the engine
// promised could not happen did happen. It is fatal to the episode and
// carries enough context to reconstruct the failure without a debugger.
type InvariantError struct {
	Reason      string
	Pos         Position
	LastAction  string
	LastMessage string
	Turn        int
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violation: %s (pos=(%d,%d) turn=%d last_action=%q last_message=%q)",
		e.Reason, e.Pos.Y, e.Pos.X, e.Turn, e.LastAction, e.LastMessage)
}

// IsInvariant reports whether err is (or wraps) an InvariantError.
func IsInvariant(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}

func (s *State) invariant(pos Position, reason string) *InvariantError {
	return &InvariantError{
		Reason:      reason,
		Pos:         pos,
		LastAction:  s.lastAction,
		LastMessage: s.lastMessage,
		Turn:        s.Stats.Turn,
	}
}
