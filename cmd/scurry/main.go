package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/scurrybot/scurry/internal/combat"
	"github.com/scurrybot/scurry/internal/config"
	"github.com/scurrybot/scurry/internal/data"
	"github.com/scurrybot/scurry/internal/engine"
	"github.com/scurrybot/scurry/internal/game"
	"github.com/scurrybot/scurry/internal/items"
	gonet "github.com/scurrybot/scurry/internal/net"
	"github.com/scurrybot/scurry/internal/persist"
	"github.com/scurrybot/scurry/internal/runner"
	"github.com/scurrybot/scurry/internal/scripting"
	"github.com/scurrybot/scurry/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner() {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m             scurry  v0.1.0                \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m     autonomous roguelike episode runner   \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main runner logic ──────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/scurry.toml"
	if p := os.Getenv("SCURRY_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner()

	// 3. Load knowledge tables
	printSection("data")

	monsterTable, err := data.LoadMonsterTable(cfg.Agent.DataDir + "/monster_list.yaml")
	if err != nil {
		return fmt.Errorf("load monster table: %w", err)
	}
	printStat("monster entries", monsterTable.Count())

	glyphTable, err := data.LoadGlyphTable(cfg.Agent.DataDir + "/glyph_classes.yaml")
	if err != nil {
		return fmt.Errorf("load glyph table: %w", err)
	}
	printStat("glyph ranges", glyphTable.Count())

	objectTable, err := data.LoadObjectTable(cfg.Agent.DataDir + "/object_list.yaml")
	if err != nil {
		return fmt.Errorf("load object table: %w", err)
	}
	printStat("object kinds", objectTable.Count())

	// 4. Optional PostgreSQL persistence
	var episodeRepo *persist.EpisodeRepo
	var decisionRepo *persist.DecisionLogRepo
	if cfg.Database.DSN != "" {
		printSection("database")
		dbCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		db, err := persist.NewDB(dbCtx, cfg.Database, log)
		cancel()
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("postgresql connected")

		mgCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err = db.Migrate(mgCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK("migrations applied")

		episodeRepo = persist.NewEpisodeRepo(db)
		decisionRepo = persist.NewDecisionLogRepo(db)
	}
	fmt.Println()

	// 5. Wire factories: each episode dials its own env, each worker
	// owns its own Lua policy VM.
	tuning := combat.Tuning{
		LowHitpoints:  cfg.Agent.LowHitpoints,
		HealthyMelee:  cfg.Agent.HealthyMelee,
		RingRadiusMax: cfg.Agent.RingRadiusMax,
	}

	newEnv := func(seed int64) (game.Env, error) {
		return gonet.Dial(cfg.Env, seed, log)
	}
	newDeps := func() (*engine.Deps, func(), error) {
		lua, err := scripting.NewEngine(cfg.Agent.ScriptsDir, log)
		if err != nil {
			return nil, nil, fmt.Errorf("lua engine: %w", err)
		}
		t := tuning
		if ov := lua.GetTuning(); ov != (scripting.TuningOverrides{}) {
			if ov.LowHitpoints > 0 {
				t.LowHitpoints = ov.LowHitpoints
			}
			if ov.HealthyMelee > 0 {
				t.HealthyMelee = ov.HealthyMelee
			}
			if ov.RingRadiusMax > 0 {
				t.RingRadiusMax = ov.RingRadiusMax
			}
		}
		deps := &engine.Deps{
			Classifier: combat.NewClassifier(monsterTable, lua),
			Bias:       lua,
			Tuning:     t,
			Items:      items.NewParser(objectTable, 4096),
			Recorder:   telemetry.Nop{},
			RestHP:     cfg.Agent.RestHPPercent,
			Log:        log,
		}
		return deps, lua.Close, nil
	}

	r := runner.New(cfg.Runner, newEnv, newDeps, glyphTable, monsterTable, log)
	r.WithPersistence(episodeRepo, decisionRepo)

	// 6. Run the batch until done or interrupted
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	printSection("runner")
	printReady(fmt.Sprintf("env %s", cfg.Env.Address))
	printReady(fmt.Sprintf("%d episodes, %d workers, seed %d",
		cfg.Runner.Episodes, cfg.Runner.Workers, cfg.Runner.Seed))
	fmt.Println()

	start := time.Now()
	results, summary, runErr := r.Run(ctx)

	printSection("results")
	printStat("episodes", summary.Episodes)
	for _, class := range []runner.EndClass{
		runner.EndNatural, runner.EndStepLimit, runner.EndTimeout,
		runner.EndInvariant, runner.EndError,
	} {
		if n := summary.ByClass[class]; n > 0 {
			printStat("  "+class.String(), n)
		}
	}
	printStat("max depth", summary.MaxDepth)
	fmt.Printf("  mean score \033[90m·····\033[0m \033[32m%.1f\033[0m   median \033[90m·····\033[0m \033[32m%.1f\033[0m\n",
		summary.MeanScore, summary.MedianScore)
	fmt.Printf("  wall time  \033[90m·····\033[0m %s\n\n", time.Since(start).Round(time.Second))

	for _, res := range results {
		if res.Class == runner.EndInvariant {
			log.Error("invariant violation", zap.Int64("seed", res.Seed), zap.Error(res.Err))
		}
	}

	// Lifetime aggregates over everything the store holds, not just this
	// batch. A fresh context: the run context may already be cancelled.
	if episodeRepo != nil {
		sumCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		lifetime, err := episodeRepo.Summary(sumCtx)
		cancel()
		if err != nil {
			log.Warn("episode store summary failed", zap.Error(err))
		} else {
			printSection("lifetime")
			printStat("episodes", lifetime.Episodes)
			for _, class := range []string{"natural", "steplimit", "timeout", "invariant", "error"} {
				if n := lifetime.ByClass[class]; n > 0 {
					printStat("  "+class, n)
				}
			}
			printStat("max depth", lifetime.MaxDepth)
			fmt.Printf("  mean score \033[90m·····\033[0m \033[32m%.1f\033[0m   median \033[90m·····\033[0m \033[32m%.1f\033[0m\n\n",
				lifetime.MeanScore, lifetime.MedianScore)
		}
	}
	if runErr != nil {
		log.Info("batch interrupted", zap.Error(runErr))
	}
	return nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
