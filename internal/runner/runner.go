package runner

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/scurrybot/scurry/internal/config"
	"github.com/scurrybot/scurry/internal/data"
	"github.com/scurrybot/scurry/internal/engine"
	"github.com/scurrybot/scurry/internal/game"
	"github.com/scurrybot/scurry/internal/persist"
	"github.com/scurrybot/scurry/internal/telemetry"
	"github.com/scurrybot/scurry/internal/world"
)

// EndClass buckets how an episode finished.
type EndClass int8

const (
	EndNatural   EndClass = iota // the game ended on its own terms
	EndStepLimit                 // the step budget ran out
	EndTimeout                   // the environment interface timed out
	EndInvariant                 // world model invariant violation (a bug)
	EndError                     // transport or setup failure
)

func (c EndClass) String() string {
	switch c {
	case EndStepLimit:
		return "steplimit"
	case EndTimeout:
		return "timeout"
	case EndInvariant:
		return "invariant"
	case EndError:
		return "error"
	}
	return "natural"
}

// Result is one episode's outcome.
type Result struct {
	Seed      int64
	Steps     int
	Turns     int
	Score     int
	Depth     int
	EndReason string
	Class     EndClass
	Err       error
	Runtime   time.Duration
}

// Summary aggregates a whole batch.
type Summary struct {
	Episodes    int
	MeanScore   float64
	MedianScore float64
	MaxDepth    int
	ByClass     map[EndClass]int
}

// EnvFactory dials or constructs a fresh environment for one episode.
type EnvFactory func(seed int64) (game.Env, error)

// DepsFactory builds per-worker strategy dependencies. Each worker gets
// its own set because the policy VM is single-goroutine. The release
// function tears the set down when the worker exits.
type DepsFactory func() (deps *engine.Deps, release func(), err error)

// Runner plays a batch of episodes across a worker pool. Workers share
// nothing but the read-only tables; each episode gets a fresh
// environment, world, and executor.
type Runner struct {
	cfg      config.RunnerConfig
	newEnv   EnvFactory
	newDeps  DepsFactory
	glyphs   *data.GlyphTable
	monsters *data.MonsterTable

	episodes  *persist.EpisodeRepo    // nil disables persistence
	decisions *persist.DecisionLogRepo // nil disables the decision trail

	log *zap.Logger
}

func New(cfg config.RunnerConfig, newEnv EnvFactory, newDeps DepsFactory,
	glyphs *data.GlyphTable, monsters *data.MonsterTable, log *zap.Logger) *Runner {
	return &Runner{
		cfg:      cfg,
		newEnv:   newEnv,
		newDeps:  newDeps,
		glyphs:   glyphs,
		monsters: monsters,
		log:      log,
	}
}

// WithPersistence attaches the episode and decision-trail repositories.
func (r *Runner) WithPersistence(episodes *persist.EpisodeRepo, decisions *persist.DecisionLogRepo) {
	r.episodes = episodes
	r.decisions = decisions
}

// Run plays the configured number of episodes and returns per-episode
// results in seed order plus the aggregate summary. It stops early only
// when ctx is cancelled.
func (r *Runner) Run(ctx context.Context) ([]Result, Summary, error) {
	n := r.cfg.Episodes
	workers := r.cfg.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}

	jobs := make(chan int64)
	results := make([]Result, 0, n)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			deps, release, err := r.newDeps()
			if err != nil {
				r.log.Error("worker setup failed", zap.Int("worker", id), zap.Error(err))
				for seed := range jobs {
					mu.Lock()
					results = append(results, Result{Seed: seed, Class: EndError, Err: err})
					mu.Unlock()
				}
				return
			}
			defer release()
			for seed := range jobs {
				res := r.playOne(ctx, seed, deps)
				r.log.Info("episode finished",
					zap.Int64("seed", res.Seed),
					zap.String("class", res.Class.String()),
					zap.Int("score", res.Score),
					zap.Int("steps", res.Steps),
					zap.Duration("runtime", res.Runtime))
				mu.Lock()
				results = append(results, res)
				mu.Unlock()
			}
		}(i)
	}

	base := r.cfg.Seed
feed:
	for i := 0; i < n; i++ {
		select {
		case jobs <- base + int64(i):
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Seed < results[j].Seed })
	return results, summarize(results), ctx.Err()
}

func (r *Runner) playOne(ctx context.Context, seed int64, deps *engine.Deps) Result {
	start := time.Now()
	res := Result{Seed: seed}

	env, err := r.newEnv(seed)
	if err != nil {
		res.Class = EndError
		res.Err = err
		return res
	}
	defer env.Close()

	epCtx := ctx
	var cancel context.CancelFunc
	if r.cfg.EpisodeTimeout > 0 {
		epCtx, cancel = context.WithTimeout(ctx, r.cfg.EpisodeTimeout)
		defer cancel()
	}

	// Per-episode copy so the shared deps keep their recorder.
	epDeps := *deps
	capture := telemetry.NewCapture()
	epDeps.Recorder = capture

	agent := engine.NewAgent(env, r.glyphs, r.monsters, &epDeps, r.cfg.StepLimit, r.log)
	rep, err := agent.Play(epCtx)
	res.Steps = rep.Steps
	res.Turns = rep.Turns
	res.Score = rep.Score
	res.Depth = rep.Depth
	res.EndReason = rep.EndReason
	res.Runtime = time.Since(start)
	res.Class = classify(rep, err)
	res.Err = err

	r.store(ctx, &res, capture)
	return res
}

func classify(rep *engine.Report, err error) EndClass {
	switch {
	case err == nil:
		if rep.EndReason == "steplimit" {
			return EndStepLimit
		}
		return EndNatural
	case world.IsInvariant(err):
		return EndInvariant
	case errors.Is(err, game.ErrTimeout),
		errors.Is(err, context.DeadlineExceeded):
		return EndTimeout
	}
	return EndError
}

// episodeRow maps a finished result onto its stored form.
func episodeRow(res *Result) *persist.EpisodeRow {
	return &persist.EpisodeRow{
		Seed:      res.Seed,
		Steps:     res.Steps,
		Turns:     res.Turns,
		Score:     res.Score,
		Depth:     res.Depth,
		EndClass:  res.Class.String(),
		EndReason: res.EndReason,
		Runtime:   res.Runtime,
	}
}

// store persists the result; persistence failures are logged, never
// allowed to fail the batch.
func (r *Runner) store(ctx context.Context, res *Result, capture *telemetry.Capture) {
	if r.episodes == nil {
		return
	}
	row := episodeRow(res)
	if err := r.episodes.Insert(ctx, row); err != nil {
		r.log.Warn("episode insert failed", zap.Int64("seed", res.Seed), zap.Error(err))
		return
	}
	if r.decisions == nil {
		return
	}
	recs := capture.Decisions()
	entries := make([]persist.DecisionEntry, len(recs))
	for i, d := range recs {
		entries[i] = persist.DecisionEntry{
			EpisodeID: row.ID,
			Step:      d.Step,
			Action:    d.Action,
			Source:    d.Source,
		}
	}
	if err := r.decisions.WriteBatch(ctx, entries); err != nil {
		r.log.Warn("decision trail flush failed", zap.Int64("seed", res.Seed), zap.Error(err))
	}
}

func summarize(results []Result) Summary {
	s := Summary{Episodes: len(results), ByClass: make(map[EndClass]int)}
	if len(results) == 0 {
		return s
	}
	scores := make([]int, 0, len(results))
	total := 0
	for _, res := range results {
		s.ByClass[res.Class]++
		scores = append(scores, res.Score)
		total += res.Score
		if res.Depth > s.MaxDepth {
			s.MaxDepth = res.Depth
		}
	}
	sort.Ints(scores)
	s.MeanScore = float64(total) / float64(len(scores))
	mid := len(scores) / 2
	if len(scores)%2 == 1 {
		s.MedianScore = float64(scores[mid])
	} else {
		s.MedianScore = float64(scores[mid-1]+scores[mid]) / 2
	}
	return s
}
