// Package service contains the application services that tie the domain
// engines to the persistence and notification ports.
package service

import (
	"context"
	"fmt"

	"github.com/salahatech/KFSH-Ordering-sub009/internal/application/port"
	"github.com/salahatech/KFSH-Ordering-sub009/internal/application/workflow"
	"github.com/salahatech/KFSH-Ordering-sub009/internal/domain/approval"
	"github.com/salahatech/KFSH-Ordering-sub009/internal/domain/status"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// StatusService validates and applies status changes on tracked entities,
// cascades batch statuses onto parent orders, and hands the new status to
// the approval workflow engine.
type StatusService interface {
	// ChangeOrderStatus moves an order to next after validating the
	// transition. Returns the approval request opened by the change, or
	// nil when the new status triggers no workflow.
	ChangeOrderStatus(ctx context.Context, orderID int64, next status.OrderStatus, changedBy int64, notes string) (*approval.ApprovalRequest, error)

	// ChangeBatchStatus is the batch counterpart; it also projects the
	// batch status onto the parent order where a projection is defined.
	ChangeBatchStatus(ctx context.Context, batchID int64, next status.BatchStatus, changedBy int64, notes string) (*approval.ApprovalRequest, error)

	// NextStatusOptions lists the legal target statuses for an entity, for
	// UIs that offer only valid choices.
	NextStatusOptions(ctx context.Context, kind status.EntityKind, entityID int64) ([]string, error)
}

type statusServiceImpl struct {
	entityRepo port.EntityRepository
	auditLog   port.AuditLog
	engine     workflow.Engine
	txManager  port.TransactionManager
	logger     Logger
}

// NewStatusService creates a new StatusService
func NewStatusService(
	entityRepo port.EntityRepository,
	auditLog port.AuditLog,
	engine workflow.Engine,
	txManager port.TransactionManager,
	logger Logger,
) StatusService {
	return &statusServiceImpl{
		entityRepo: entityRepo,
		auditLog:   auditLog,
		engine:     engine,
		txManager:  txManager,
		logger:     logger,
	}
}

// ChangeOrderStatus applies a validated order status change.
func (s *statusServiceImpl) ChangeOrderStatus(ctx context.Context, orderID int64, next status.OrderStatus, changedBy int64, notes string) (*approval.ApprovalRequest, error) {
	if err := s.applyChange(ctx, status.KindOrder, orderID, next.String(), changedBy); err != nil {
		return nil, err
	}
	return s.engine.TriggerWorkflow(ctx, status.KindOrder, orderID, next.String(), changedBy, "", notes)
}

// ChangeBatchStatus applies a validated batch status change and cascades
// the defined projections onto the parent order.
func (s *statusServiceImpl) ChangeBatchStatus(ctx context.Context, batchID int64, next status.BatchStatus, changedBy int64, notes string) (*approval.ApprovalRequest, error) {
	if err := s.applyChange(ctx, status.KindBatch, batchID, next.String(), changedBy); err != nil {
		return nil, err
	}

	if projected, ok := status.ProjectedOrderStatus(next); ok {
		if err := s.cascadeToOrder(ctx, batchID, projected, changedBy); err != nil {
			return nil, err
		}
	}

	return s.engine.TriggerWorkflow(ctx, status.KindBatch, batchID, next.String(), changedBy, "", notes)
}

// NextStatusOptions lists legal targets from the entity's current status.
func (s *statusServiceImpl) NextStatusOptions(ctx context.Context, kind status.EntityKind, entityID int64) ([]string, error) {
	current, err := s.entityRepo.GetStatus(ctx, kind, entityID)
	if err != nil {
		return nil, fmt.Errorf("read current status: %w", err)
	}
	return status.NextStatuses(kind, current), nil
}

// applyChange validates the transition and commits the status update and
// its audit row in one transaction.
func (s *statusServiceImpl) applyChange(ctx context.Context, kind status.EntityKind, entityID int64, next string, changedBy int64) error {
	current, err := s.entityRepo.GetStatus(ctx, kind, entityID)
	if err != nil {
		return fmt.Errorf("read current status: %w", err)
	}

	if err := status.AssertTransition(kind, current, next); err != nil {
		return err
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.entityRepo.UpdateStatus(txCtx, kind, entityID, next); err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		if err := s.auditLog.RecordChange(txCtx, kind, entityID, "status", current, next, changedBy); err != nil {
			return fmt.Errorf("record audit entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Status changed",
		"entity_kind", kind.String(),
		"entity_id", entityID,
		"from", current,
		"to", next,
		"changed_by", changedBy,
	)
	return nil
}

// cascadeToOrder applies a batch-status projection to the parent order when
// the order's own table allows the move. An order that cannot legally take
// the projected status (already past it, or cancelled) is left untouched.
func (s *statusServiceImpl) cascadeToOrder(ctx context.Context, batchID int64, projected status.OrderStatus, changedBy int64) error {
	orderID, ok, err := s.entityRepo.ParentOrder(ctx, batchID)
	if err != nil {
		return fmt.Errorf("resolve parent order: %w", err)
	}
	if !ok {
		return nil
	}

	current, err := s.entityRepo.GetStatus(ctx, status.KindOrder, orderID)
	if err != nil {
		return fmt.Errorf("read parent order status: %w", err)
	}
	if current == projected.String() || !status.CanTransitionOrder(status.OrderStatus(current), projected) {
		return nil
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.entityRepo.UpdateStatus(txCtx, status.KindOrder, orderID, projected.String()); err != nil {
			return fmt.Errorf("cascade order status: %w", err)
		}
		return s.auditLog.RecordChange(txCtx, status.KindOrder, orderID, "status", current, projected.String(), changedBy)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Batch status cascaded to order",
		"batch_id", batchID,
		"order_id", orderID,
		"order_status", projected.String(),
	)
	return nil
}
