package telemetry

import (
	"github.com/scurrybot/scurry/internal/game"
	"github.com/scurrybot/scurry/internal/world"
)

// DecisionRecord is one captured decision, kept small enough to hold a
// whole episode's trail in memory.
type DecisionRecord struct {
	Step   int
	Action string
	Source string
}

// Capture buffers the decision trail of one episode for a later batch
// flush. Single-goroutine use, one per episode.
type Capture struct {
	decisions []DecisionRecord
}

func NewCapture() *Capture {
	return &Capture{}
}

func (c *Capture) Decision(step int, action game.Action, source string, _ FieldView) {
	c.decisions = append(c.decisions, DecisionRecord{
		Step:   step,
		Action: action.String(),
		Source: source,
	})
}

func (c *Capture) Overlay(string, []world.Position, string) {}

// Decisions returns the captured trail in decision order.
func (c *Capture) Decisions() []DecisionRecord { return c.decisions }
