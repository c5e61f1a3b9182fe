package persist

import (
	"context"
	"fmt"
)

// DecisionEntry is one recorded strategy decision within an episode.
type DecisionEntry struct {
	EpisodeID int64
	Step      int
	Action    string
	Source    string // strategy node that chose the action
}

type DecisionLogRepo struct {
	db *DB
}

func NewDecisionLogRepo(db *DB) *DecisionLogRepo {
	return &DecisionLogRepo{db: db}
}

// WriteBatch writes one episode's decision trail in a single transaction,
// so a failed flush leaves no partial trail behind.
func (r *DecisionLogRepo) WriteBatch(ctx context.Context, entries []DecisionEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("decision log begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range entries {
		if _, err := tx.Exec(ctx,
			`INSERT INTO decision_log (episode_id, step, action, source)
			 VALUES ($1, $2, $3, $4)`,
			e.EpisodeID, e.Step, e.Action, e.Source,
		); err != nil {
			return fmt.Errorf("decision log insert: %w", err)
		}
	}

	return tx.Commit(ctx)
}
