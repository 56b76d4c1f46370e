package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rajdeepdeb909/AiAgentTracker-replit-sub004/internal/models"
)

// Store persists recommendation status transitions so they survive a process
// restart. The analytics core never touches it; only the route layer does.
type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Migrate creates the status table if it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS recommendation_statuses (
			recommendation_id TEXT PRIMARY KEY,
			technician_id     TEXT NOT NULL,
			status            TEXT NOT NULL,
			updated_at        TIMESTAMPTZ NOT NULL
		)`)
	return err
}

// GetStatus returns the persisted status for a recommendation id, or
// pgx.ErrNoRows when none was ever recorded.
func (s *Store) GetStatus(ctx context.Context, recommendationID string) (models.RecommendationStatus, error) {
	var status string
	err := s.Pool.QueryRow(ctx,
		`SELECT status FROM recommendation_statuses WHERE recommendation_id = $1`,
		recommendationID).Scan(&status)
	if err != nil {
		return "", err
	}
	return models.RecommendationStatus(status), nil
}

// SetStatus upserts the status for a recommendation.
func (s *Store) SetStatus(ctx context.Context, recommendationID, technicianID string, status models.RecommendationStatus) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO recommendation_statuses (recommendation_id, technician_id, status, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (recommendation_id)
		DO UPDATE SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at`,
		recommendationID, technicianID, string(status), time.Now().UTC())
	return err
}

// ListStatuses returns every persisted status keyed by recommendation id,
// used to overlay stored lifecycle state onto freshly computed
// recommendations.
func (s *Store) ListStatuses(ctx context.Context) (map[string]models.RecommendationStatus, error) {
	rows, err := s.Pool.Query(ctx, `SELECT recommendation_id, status FROM recommendation_statuses`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]models.RecommendationStatus{}
	for rows.Next() {
		var id, status string
		if err := rows.Scan(&id, &status); err != nil {
			return nil, err
		}
		out[id] = models.RecommendationStatus(status)
	}
	return out, rows.Err()
}
