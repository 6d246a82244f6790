package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/salahatech/KFSH-Ordering-sub009/internal/domain/approval"
	"github.com/salahatech/KFSH-Ordering-sub009/internal/domain/status"
	"github.com/salahatech/KFSH-Ordering-sub009/pkg/database"
)

// RequestRepository persists approval requests. The step-advancing writes
// are conditional so concurrent deciders cannot double-apply a step.
type RequestRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewRequestRepository creates a new approval request repository
func NewRequestRepository(db *database.DB, logger *zap.Logger) *RequestRepository {
	return &RequestRepository{
		db:     db,
		logger: logger,
	}
}

const requestColumns = `
	id, definition_id, entity_kind, entity_id, requested_by,
	current_step_order, status, priority, notes, created_at, completed_at
`

// Create inserts a new approval request.
func (r *RequestRepository) Create(ctx context.Context, req *approval.ApprovalRequest) error {
	query := `
		INSERT INTO approval_requests (` + requestColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Querier(ctx).ExecContext(ctx, query,
		req.ID.String(),
		req.DefinitionID,
		req.EntityKind.String(),
		req.EntityID,
		req.RequestedBy,
		req.CurrentStepOrder,
		req.Status.String(),
		string(req.Priority),
		req.Notes,
		req.CreatedAt,
		req.CompletedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create approval request", zap.String("id", req.ID.String()), zap.Error(err))
		return fmt.Errorf("failed to create approval request: %w", err)
	}
	return nil
}

// GetByID retrieves an approval request.
func (r *RequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*approval.ApprovalRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM approval_requests WHERE id = ?`

	req, err := scanRequest(r.db.Querier(ctx).QueryRowContext(ctx, query, id.String()))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("approval request %s: %w", id, approval.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get approval request", zap.String("id", id.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get approval request: %w", err)
	}
	return req, nil
}

// ListByEntity returns all requests for an entity, newest first.
func (r *RequestRepository) ListByEntity(ctx context.Context, kind status.EntityKind, entityID int64) ([]*approval.ApprovalRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM approval_requests
		WHERE entity_kind = ? AND entity_id = ?
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, kind.String(), entityID)
}

// ListPendingAtRole returns PENDING requests whose current step is gated on
// the given role. The join resolves each request's live step, not every
// step the role ever appears at.
func (r *RequestRepository) ListPendingAtRole(ctx context.Context, role status.Role) ([]*approval.ApprovalRequest, error) {
	query := `
		SELECT ` + qualifiedRequestColumns("ar") + `
		FROM approval_requests ar
		JOIN workflow_steps ws
			ON ws.definition_id = ar.definition_id
			AND ws.step_order = ar.current_step_order
		WHERE ar.status = 'PENDING' AND ws.approver_role = ?
		ORDER BY
			CASE ar.priority
				WHEN 'URGENT' THEN 0
				WHEN 'HIGH' THEN 1
				WHEN 'NORMAL' THEN 2
				ELSE 3
			END,
			ar.created_at
	`
	return r.list(ctx, query, role.String())
}

// AdvanceStep moves a PENDING request from expectedStep to expectedStep+1.
// The WHERE clause is the optimistic concurrency guard: zero affected rows
// means another decision won, reported as approval.ErrConflict.
func (r *RequestRepository) AdvanceStep(ctx context.Context, id uuid.UUID, expectedStep int) error {
	query := `
		UPDATE approval_requests
		SET current_step_order = current_step_order + 1
		WHERE id = ? AND status = 'PENDING' AND current_step_order = ?
	`

	result, err := r.db.Querier(ctx).ExecContext(ctx, query, id.String(), expectedStep)
	if err != nil {
		return fmt.Errorf("failed to advance approval request: %w", err)
	}
	return r.requireOneRow(result, id, expectedStep)
}

// Complete finalizes a PENDING request at expectedStep, under the same
// conditional guard as AdvanceStep.
func (r *RequestRepository) Complete(ctx context.Context, id uuid.UUID, expectedStep int, final approval.RequestStatus, completedAt time.Time) error {
	query := `
		UPDATE approval_requests
		SET status = ?, completed_at = ?
		WHERE id = ? AND status = 'PENDING' AND current_step_order = ?
	`

	result, err := r.db.Querier(ctx).ExecContext(ctx, query, final.String(), completedAt, id.String(), expectedStep)
	if err != nil {
		return fmt.Errorf("failed to complete approval request: %w", err)
	}
	return r.requireOneRow(result, id, expectedStep)
}

func (r *RequestRepository) requireOneRow(result sql.Result, id uuid.UUID, expectedStep int) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("request %s no longer pending at step %d: %w", id, expectedStep, approval.ErrConflict)
	}
	return nil
}

func (r *RequestRepository) list(ctx context.Context, query string, args ...interface{}) ([]*approval.ApprovalRequest, error) {
	rows, err := r.db.Querier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list approval requests: %w", err)
	}
	defer rows.Close()

	var reqs []*approval.ApprovalRequest
	for rows.Next() {
		req, err := scanRequestRows(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

func qualifiedRequestColumns(alias string) string {
	return alias + `.id, ` + alias + `.definition_id, ` + alias + `.entity_kind, ` +
		alias + `.entity_id, ` + alias + `.requested_by, ` + alias + `.current_step_order, ` +
		alias + `.status, ` + alias + `.priority, ` + alias + `.notes, ` +
		alias + `.created_at, ` + alias + `.completed_at`
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRequest(row *sql.Row) (*approval.ApprovalRequest, error) {
	return scanRequestFrom(row)
}

func scanRequestRows(rows *sql.Rows) (*approval.ApprovalRequest, error) {
	req, err := scanRequestFrom(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan approval request: %w", err)
	}
	return req, nil
}

func scanRequestFrom(s rowScanner) (*approval.ApprovalRequest, error) {
	var req approval.ApprovalRequest
	var id, kind, reqStatus, priority string
	var completedAt sql.NullTime

	if err := s.Scan(
		&id,
		&req.DefinitionID,
		&kind,
		&req.EntityID,
		&req.RequestedBy,
		&req.CurrentStepOrder,
		&reqStatus,
		&priority,
		&req.Notes,
		&req.CreatedAt,
		&completedAt,
	); err != nil {
		return nil, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("malformed request id %q: %w", id, err)
	}
	req.ID = parsed
	req.EntityKind = status.EntityKind(kind)
	req.Status = approval.RequestStatus(reqStatus)
	req.Priority = approval.Priority(priority)
	if completedAt.Valid {
		req.CompletedAt = &completedAt.Time
	}
	return &req, nil
}
