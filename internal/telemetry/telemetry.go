package telemetry

import (
	"go.uber.org/zap"

	"github.com/scurrybot/scurry/internal/game"
	"github.com/scurrybot/scurry/internal/world"
)

// FieldView is the minimal score-field surface telemetry needs; the
// combat package's ScoreField satisfies it.
type FieldView interface {
	At(y, x int) float64
}

// Recorder receives per-decision artifacts on a best-effort basis.
// Implementations must never fail the episode; correctness never depends
// on anything recorded here.
type Recorder interface {
	// Decision reports the action chosen this step, the strategy node
	// that produced it, and the score field consulted (may be nil).
	Decision(step int, action game.Action, source string, field FieldView)
	// Overlay labels a named region of the grid with a color tag.
	Overlay(name string, cells []world.Position, color string)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Decision(int, game.Action, string, FieldView) {}
func (Nop) Overlay(string, []world.Position, string)     {}

// LogRecorder writes decisions to the debug log. Used when no richer
// visualization sink is attached.
type LogRecorder struct {
	Log *zap.Logger
}

func (r *LogRecorder) Decision(step int, action game.Action, source string, _ FieldView) {
	r.Log.Debug("decision",
		zap.Int("step", step),
		zap.String("action", action.String()),
		zap.String("source", source))
}

func (r *LogRecorder) Overlay(name string, cells []world.Position, color string) {
	r.Log.Debug("overlay",
		zap.String("name", name),
		zap.Int("cells", len(cells)),
		zap.String("color", color))
}
