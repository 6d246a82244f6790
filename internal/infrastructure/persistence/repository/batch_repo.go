package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/salahatech/KFSH-Ordering-sub009/internal/infrastructure/worker"
	"github.com/salahatech/KFSH-Ordering-sub009/pkg/database"
)

// BatchRepository serves the background workers with batch-level queries
// that fall outside the generic entity port.
type BatchRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewBatchRepository creates a new BatchRepository
func NewBatchRepository(db *database.DB, logger *zap.Logger) *BatchRepository {
	return &BatchRepository{
		db:     db,
		logger: logger,
	}
}

// ExpiryCandidates lists released batches with a known synthesis start.
// Expiry is only reachable from RELEASED, so other statuses never qualify.
func (r *BatchRepository) ExpiryCandidates(ctx context.Context) ([]worker.ExpiryCandidate, error) {
	query := `
		SELECT id, synthesis_start
		FROM production_batches
		WHERE status = 'RELEASED' AND synthesis_start IS NOT NULL
		ORDER BY synthesis_start
	`

	rows, err := r.db.Querier(ctx).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list expiry candidates", zap.Error(err))
		return nil, fmt.Errorf("failed to list expiry candidates: %w", err)
	}
	defer rows.Close()

	var candidates []worker.ExpiryCandidate
	for rows.Next() {
		var c worker.ExpiryCandidate
		if err := rows.Scan(&c.BatchID, &c.SynthesisStart); err != nil {
			return nil, fmt.Errorf("failed to scan expiry candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}
