package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/salahatech/KFSH-Ordering-sub009/internal/domain/approval"
	"github.com/salahatech/KFSH-Ordering-sub009/internal/domain/status"
	"github.com/salahatech/KFSH-Ordering-sub009/pkg/database"
)

// EntityRepository reads and writes the status column of tracked entities.
// Callers must validate the transition before calling UpdateStatus; this
// repository applies already-authorized changes only.
type EntityRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewEntityRepository creates a new tracked entity repository
func NewEntityRepository(db *database.DB, logger *zap.Logger) *EntityRepository {
	return &EntityRepository{
		db:     db,
		logger: logger,
	}
}

func tableFor(kind status.EntityKind) (string, error) {
	switch kind {
	case status.KindOrder:
		return "orders", nil
	case status.KindBatch:
		return "production_batches", nil
	default:
		return "", fmt.Errorf("%w: %q", status.ErrUnknownKind, kind)
	}
}

// GetStatus returns the current status of an order or batch.
func (r *EntityRepository) GetStatus(ctx context.Context, kind status.EntityKind, entityID int64) (string, error) {
	table, err := tableFor(kind)
	if err != nil {
		return "", err
	}

	var current string
	err = r.db.Querier(ctx).QueryRowContext(ctx,
		fmt.Sprintf("SELECT status FROM %s WHERE id = ?", table), entityID).Scan(&current)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%s %d: %w", kind, entityID, approval.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to read entity status",
			zap.String("kind", kind.String()), zap.Int64("id", entityID), zap.Error(err))
		return "", fmt.Errorf("failed to read entity status: %w", err)
	}
	return current, nil
}

// ParentOrder resolves a batch's parent order; ok is false for stock
// batches produced without an order.
func (r *EntityRepository) ParentOrder(ctx context.Context, batchID int64) (int64, bool, error) {
	var orderID sql.NullInt64
	err := r.db.Querier(ctx).QueryRowContext(ctx,
		"SELECT order_id FROM production_batches WHERE id = ?", batchID).Scan(&orderID)
	if err == sql.ErrNoRows {
		return 0, false, fmt.Errorf("batch %d: %w", batchID, approval.ErrNotFound)
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read batch parent order: %w", err)
	}
	if !orderID.Valid {
		return 0, false, nil
	}
	return orderID.Int64, true, nil
}

// UpdateStatus applies an already-validated status change.
func (r *EntityRepository) UpdateStatus(ctx context.Context, kind status.EntityKind, entityID int64, newStatus string) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}

	result, err := r.db.Querier(ctx).ExecContext(ctx,
		fmt.Sprintf("UPDATE %s SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", table),
		newStatus, entityID)
	if err != nil {
		r.logger.Error("Failed to update entity status",
			zap.String("kind", kind.String()), zap.Int64("id", entityID), zap.Error(err))
		return fmt.Errorf("failed to update entity status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%s %d: %w", kind, entityID, approval.ErrNotFound)
	}
	return nil
}
