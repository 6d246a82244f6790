package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/salahatech/KFSH-Ordering-sub009/internal/domain/approval"
	"github.com/salahatech/KFSH-Ordering-sub009/internal/domain/status"
)

// WorkflowRepository reads workflow definitions. Definitions are low-churn
// configuration; the engine never writes them.
type WorkflowRepository interface {
	// GetActiveByTrigger returns the single active definition matching the
	// entity kind and trigger status, or (nil, nil) when no definition
	// matches. A missing definition is a normal outcome, not an error.
	GetActiveByTrigger(ctx context.Context, kind status.EntityKind, triggerStatus string) (*approval.WorkflowDefinition, error)

	// GetByID returns a definition with its steps; approval.ErrNotFound
	// when it does not exist.
	GetByID(ctx context.Context, id int64) (*approval.WorkflowDefinition, error)

	// List returns all definitions with their steps.
	List(ctx context.Context) ([]*approval.WorkflowDefinition, error)
}

// RequestRepository persists approval requests. AdvanceStep and Complete
// are conditional writes: they commit only if the request is still PENDING
// at the expected step, and return approval.ErrConflict otherwise.
type RequestRepository interface {
	Create(ctx context.Context, req *approval.ApprovalRequest) error

	// GetByID returns approval.ErrNotFound when the request does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*approval.ApprovalRequest, error)

	// ListByEntity returns all requests for an entity, newest first.
	ListByEntity(ctx context.Context, kind status.EntityKind, entityID int64) ([]*approval.ApprovalRequest, error)

	// ListPendingAtRole returns PENDING requests whose current step's
	// approver role equals role.
	ListPendingAtRole(ctx context.Context, role status.Role) ([]*approval.ApprovalRequest, error)

	// AdvanceStep moves a PENDING request from expectedStep to
	// expectedStep+1.
	AdvanceStep(ctx context.Context, id uuid.UUID, expectedStep int) error

	// Complete finalizes a PENDING request at expectedStep with a terminal
	// status and completion timestamp.
	Complete(ctx context.Context, id uuid.UUID, expectedStep int, final approval.RequestStatus, completedAt time.Time) error
}

// ActionRepository persists the append-only decision trail.
type ActionRepository interface {
	Create(ctx context.Context, action *approval.ApprovalAction) error

	// ListByRequest returns a request's actions in causal (oldest-first)
	// order.
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*approval.ApprovalAction, error)
}

// EntityRepository is the narrow view of the order/batch store this core
// needs: read a status, apply an already-validated status update.
type EntityRepository interface {
	GetStatus(ctx context.Context, kind status.EntityKind, entityID int64) (string, error)
	UpdateStatus(ctx context.Context, kind status.EntityKind, entityID int64, newStatus string) error

	// ParentOrder resolves the order a batch was produced for; ok is false
	// for stock batches with no order linkage.
	ParentOrder(ctx context.Context, batchID int64) (orderID int64, ok bool, err error)
}

// Directory resolves roles to their active user set and users to their role.
type Directory interface {
	ActiveUsersByRole(ctx context.Context, role status.Role) ([]*approval.User, error)
	GetUser(ctx context.Context, id int64) (*approval.User, error)
}

// AuditLog records before/after field values on mutating operations.
type AuditLog interface {
	RecordChange(ctx context.Context, kind status.EntityKind, entityID int64, field, oldValue, newValue string, changedBy int64) error
}

// TransactionManager executes a function within a transaction. The
// transactional connection travels in the context so repositories join the
// same transaction transparently.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(txCtx context.Context) error) error
}
