package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/salahatech/KFSH-Ordering-sub009/internal/domain/status"
	"github.com/salahatech/KFSH-Ordering-sub009/pkg/database"
)

// AuditRepository records before/after field values for every mutating
// operation. Append-only.
type AuditRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewAuditRepository creates a new audit log repository
func NewAuditRepository(db *database.DB, logger *zap.Logger) *AuditRepository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

// RecordChange appends one audit row.
func (r *AuditRepository) RecordChange(ctx context.Context, kind status.EntityKind, entityID int64, field, oldValue, newValue string, changedBy int64) error {
	query := `
		INSERT INTO audit_log (entity_kind, entity_id, field, old_value, new_value, changed_by)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Querier(ctx).ExecContext(ctx, query,
		kind.String(), entityID, field, oldValue, newValue, changedBy)
	if err != nil {
		r.logger.Error("Failed to record audit entry",
			zap.String("kind", kind.String()),
			zap.Int64("entity_id", entityID),
			zap.String("field", field),
			zap.Error(err))
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	return nil
}
