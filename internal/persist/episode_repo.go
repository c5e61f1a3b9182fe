package persist

import (
	"context"
	"time"
)

// EpisodeRow is one finished episode.
type EpisodeRow struct {
	ID        int64
	Seed      int64
	Steps     int
	Turns     int
	Score     int
	Depth     int
	EndClass  string
	EndReason string
	Runtime   time.Duration
	CreatedAt time.Time
}

type EpisodeRepo struct {
	db *DB
}

func NewEpisodeRepo(db *DB) *EpisodeRepo {
	return &EpisodeRepo{db: db}
}

// Insert stores one episode result and fills in the generated ID.
func (r *EpisodeRepo) Insert(ctx context.Context, row *EpisodeRow) error {
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO episodes (seed, steps, turns, score, depth, end_class, end_reason, runtime_ms)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at`,
		row.Seed, row.Steps, row.Turns, row.Score, row.Depth, row.EndClass,
		row.EndReason, row.Runtime.Milliseconds(),
	).Scan(&row.ID, &row.CreatedAt)
}

// EpisodeSummary aggregates the stored episode history.
type EpisodeSummary struct {
	Episodes    int
	MeanScore   float64
	MedianScore float64
	MaxDepth    int
	ByClass     map[string]int
}

// Summary aggregates every stored episode, including the per-class
// breakdown batch analysis keys on.
func (r *EpisodeRepo) Summary(ctx context.Context) (EpisodeSummary, error) {
	s := EpisodeSummary{ByClass: make(map[string]int)}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COALESCE(AVG(score), 0),
		        COALESCE(PERCENTILE_CONT(0.5) WITHIN GROUP (ORDER BY score), 0),
		        COALESCE(MAX(depth), 0)
		 FROM episodes`,
	).Scan(&s.Episodes, &s.MeanScore, &s.MedianScore, &s.MaxDepth)
	if err != nil {
		return s, err
	}

	rows, err := r.db.Pool.Query(ctx,
		`SELECT end_class, COUNT(*) FROM episodes GROUP BY end_class`)
	if err != nil {
		return s, err
	}
	defer rows.Close()
	for rows.Next() {
		var class string
		var n int
		if err := rows.Scan(&class, &n); err != nil {
			return s, err
		}
		s.ByClass[class] = n
	}
	return s, rows.Err()
}
