package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/BerylCAtieno/image-analyzer/internal/models"
)

// Repository stores analysis event metadata.
type Repository interface {
	Create(ctx context.Context, event *models.AnalysisEvent) error
	CountByOutcome(ctx context.Context) ([]models.OutcomeCount, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, event *models.AnalysisEvent) error {
	query := `
		INSERT INTO analysis_events (id, extension, size_bytes, prompt_key, outcome, duration_ms, created_at)
		VALUES (:id, :extension, :size_bytes, :prompt_key, :outcome, :duration_ms, :created_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, event)
	return err
}

func (r *repository) CountByOutcome(ctx context.Context) ([]models.OutcomeCount, error) {
	query := `
		SELECT outcome, COUNT(*) AS count
		FROM analysis_events
		GROUP BY outcome
		ORDER BY outcome
	`

	counts := []models.OutcomeCount{}
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, err
	}
	return counts, nil
}
