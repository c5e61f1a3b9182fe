package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/scurrybot/scurry/internal/data"
	"github.com/scurrybot/scurry/internal/game"
	"github.com/scurrybot/scurry/internal/world"
)

// Report summarizes a finished episode.
type Report struct {
	Steps     int
	Turns     int
	Score     int
	Depth     int
	EndReason string
}

// Agent owns one episode end to end: fresh world, fresh executor, one
// pass of the root strategy.
type Agent struct {
	env       game.Env
	glyphs    *data.GlyphTable
	monsters  *data.MonsterTable
	deps      *Deps
	stepLimit int
	log       *zap.Logger
}

func NewAgent(env game.Env, glyphs *data.GlyphTable, monsters *data.MonsterTable, deps *Deps, stepLimit int, log *zap.Logger) *Agent {
	return &Agent{
		env:       env,
		glyphs:    glyphs,
		monsters:  monsters,
		deps:      deps,
		stepLimit: stepLimit,
		log:       log,
	}
}

// Play runs the episode to its end. The returned error is nil for a
// natural end (death, quit, step limit); invariant violations and
// interface timeouts surface as errors with the report still filled in
// as far as it got.
func (a *Agent) Play(ctx context.Context) (*Report, error) {
	w := world.NewState(a.glyphs, a.monsters)
	if a.deps.Items != nil {
		w.SetItemParser(a.deps.Items)
	}
	x := NewExecutor(ctx, a.env, w, a.stepLimit, a.log)

	if err := x.Reset(); err != nil {
		return &Report{EndReason: "reset failed"}, err
	}

	root := BuildRoot(a.deps)
	out := root.Run(x)
	a.log.Debug("root strategy returned", zap.String("outcome", out.String()))

	snap := x.Snapshot()
	rep := &Report{
		Steps:     x.Steps(),
		Turns:     snap.Stats.Turn,
		Score:     snap.Stats.Score,
		Depth:     snap.Stats.Depth,
		EndReason: x.EndReason(),
	}
	if err := x.Fatal(); err != nil {
		return rep, err
	}
	if rep.EndReason == "" {
		rep.EndReason = "strategy exhausted"
	}
	return rep, nil
}
