package game

import (
	"context"
	"errors"
)

// ErrTimeout reports that the external game interface did not respond
// within its deadline. Recoverable only by ending the episode.
var ErrTimeout = errors.New("game interface timeout")

// ErrClosed reports use of an environment after Close.
var ErrClosed = errors.New("game environment closed")

// Env is the external game interface. Implementations own the process or
// connection behind it; the engine only ever sees observations.
//
// Step blocks until the game confirms the action. It is the single
// suspension point of an episode.
type Env interface {
	Reset(ctx context.Context) (Observation, error)
	Step(ctx context.Context, a Action) (Observation, error)
	Close() error
}
