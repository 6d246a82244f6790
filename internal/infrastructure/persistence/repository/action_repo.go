package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/salahatech/KFSH-Ordering-sub009/internal/domain/approval"
	"github.com/salahatech/KFSH-Ordering-sub009/pkg/database"
)

// ActionRepository persists the append-only approval action trail. Rows are
// never updated or deleted; UNIQUE(request_id, step_order) makes a second
// decision on the same step a constraint violation.
type ActionRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewActionRepository creates a new approval action repository
func NewActionRepository(db *database.DB, logger *zap.Logger) *ActionRepository {
	return &ActionRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends one decision record.
func (r *ActionRepository) Create(ctx context.Context, action *approval.ApprovalAction) error {
	query := `
		INSERT INTO approval_actions (
			id, request_id, step_order, actor_id, decision, comments, signature, acted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Querier(ctx).ExecContext(ctx, query,
		action.ID.String(),
		action.RequestID.String(),
		action.StepOrder,
		action.ActorID,
		string(action.Decision),
		action.Comments,
		action.Signature,
		action.ActedAt,
	)
	if err != nil {
		r.logger.Error("Failed to record approval action",
			zap.String("request_id", action.RequestID.String()),
			zap.Int("step", action.StepOrder),
			zap.Error(err))
		return fmt.Errorf("failed to record approval action: %w", err)
	}
	return nil
}

// ListByRequest returns a request's actions in causal (oldest-first) order.
func (r *ActionRepository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*approval.ApprovalAction, error) {
	query := `
		SELECT id, request_id, step_order, actor_id, decision, comments, signature, acted_at
		FROM approval_actions
		WHERE request_id = ?
		ORDER BY acted_at, step_order
	`

	rows, err := r.db.Querier(ctx).QueryContext(ctx, query, requestID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list approval actions: %w", err)
	}
	defer rows.Close()

	var actions []*approval.ApprovalAction
	for rows.Next() {
		var action approval.ApprovalAction
		var id, reqID, decision string
		if err := rows.Scan(&id, &reqID, &action.StepOrder, &action.ActorID, &decision, &action.Comments, &action.Signature, &action.ActedAt); err != nil {
			return nil, fmt.Errorf("failed to scan approval action: %w", err)
		}
		parsedID, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("malformed action id %q: %w", id, err)
		}
		parsedReqID, err := uuid.Parse(reqID)
		if err != nil {
			return nil, fmt.Errorf("malformed request id %q: %w", reqID, err)
		}
		action.ID = parsedID
		action.RequestID = parsedReqID
		action.Decision = approval.Decision(decision)
		actions = append(actions, &action)
	}
	return actions, rows.Err()
}
