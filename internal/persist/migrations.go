package persist

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate brings the episode-store schema up to date. Goose output is
// routed through the DB's zap logger.
func (db *DB) Migrate(ctx context.Context) error {
	goose.SetLogger(&gooseZap{log: db.log.Sugar()})
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	sqlDB := stdlib.OpenDBFromPool(db.Pool)
	defer sqlDB.Close()

	if err := goose.UpContext(ctx, sqlDB, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// gooseZap adapts goose's logger interface onto zap.
type gooseZap struct {
	log *zap.SugaredLogger
}

func (g *gooseZap) Printf(format string, v ...interface{}) { g.log.Infof(format, v...) }
func (g *gooseZap) Fatalf(format string, v ...interface{}) { g.log.Fatalf(format, v...) }
