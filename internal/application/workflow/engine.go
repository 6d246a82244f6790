// Package workflow implements the approval workflow engine: it reacts to
// tracked-entity status changes by opening role-gated approval requests and
// drives each request through its sequential step chain.
package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/salahatech/KFSH-Ordering-sub009/internal/application/port"
	"github.com/salahatech/KFSH-Ordering-sub009/internal/domain/approval"
	"github.com/salahatech/KFSH-Ordering-sub009/internal/domain/status"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Engine drives approval requests through their workflow definitions.
type Engine interface {
	// TriggerWorkflow opens an approval request when an active definition
	// matches (entityKind, triggerStatus). It returns (nil, nil) when no
	// definition matches: that status simply requires no approval.
	TriggerWorkflow(ctx context.Context, kind status.EntityKind, entityID int64, triggerStatus string, requestedBy int64, priority approval.Priority, notes string) (*approval.ApprovalRequest, error)

	// ProcessApproval records one decision on a request's current step and
	// advances or finalizes the request. It returns approval.ErrNotFound,
	// approval.ErrConflict or approval.ErrForbidden as distinct outcomes.
	ProcessApproval(ctx context.Context, requestID uuid.UUID, actorID int64, decision approval.Decision, comments, signature string) (*approval.ApprovalRequest, error)

	// PendingApprovalsFor returns the PENDING requests whose current step
	// is gated on the user's role.
	PendingApprovalsFor(ctx context.Context, userID int64) ([]*approval.ApprovalRequest, error)

	// ApprovalHistoryFor returns all requests for an entity, newest
	// request first, each with its actions oldest first.
	ApprovalHistoryFor(ctx context.Context, kind status.EntityKind, entityID int64) ([]*approval.RequestHistory, error)
}

type engineImpl struct {
	workflowRepo port.WorkflowRepository
	requestRepo  port.RequestRepository
	actionRepo   port.ActionRepository
	directory    port.Directory
	notifier     port.Notifier
	txManager    port.TransactionManager
	logger       Logger

	now func() time.Time
}

// NewEngine creates a new approval workflow engine.
func NewEngine(
	workflowRepo port.WorkflowRepository,
	requestRepo port.RequestRepository,
	actionRepo port.ActionRepository,
	directory port.Directory,
	notifier port.Notifier,
	txManager port.TransactionManager,
	logger Logger,
) Engine {
	return &engineImpl{
		workflowRepo: workflowRepo,
		requestRepo:  requestRepo,
		actionRepo:   actionRepo,
		directory:    directory,
		notifier:     notifier,
		txManager:    txManager,
		logger:       logger,
		now:          time.Now,
	}
}

// TriggerWorkflow opens a new approval request for a status change.
func (e *engineImpl) TriggerWorkflow(ctx context.Context, kind status.EntityKind, entityID int64, triggerStatus string, requestedBy int64, priority approval.Priority, notes string) (*approval.ApprovalRequest, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}
	if priority == "" {
		priority = approval.PriorityNormal
	}
	if !priority.IsValid() {
		return nil, fmt.Errorf("unknown priority %q", priority)
	}

	def, err := e.workflowRepo.GetActiveByTrigger(ctx, kind, triggerStatus)
	if err != nil {
		return nil, fmt.Errorf("lookup workflow definition: %w", err)
	}
	if def == nil {
		// No definition for this status: approval is opted out.
		return nil, nil
	}
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("definition %d: %w", def.ID, err)
	}

	req := &approval.ApprovalRequest{
		ID:               uuid.New(),
		DefinitionID:     def.ID,
		EntityKind:       kind,
		EntityID:         entityID,
		RequestedBy:      requestedBy,
		CurrentStepOrder: 1,
		Status:           approval.RequestPending,
		Priority:         priority,
		Notes:            notes,
		CreatedAt:        e.now(),
	}

	if err := e.requestRepo.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("create approval request: %w", err)
	}

	e.logger.Info("Approval request opened",
		"request_id", req.ID.String(),
		"definition", def.Name,
		"entity_kind", kind.String(),
		"entity_id", entityID,
	)

	firstStep, _ := def.StepAt(1)
	e.notifyRole(ctx, firstStep.ApproverRole,
		"Approval required",
		fmt.Sprintf("%s %d entered %s and awaits your approval (step 1 of %d).", kind, entityID, triggerStatus, len(def.Steps)),
		req)

	return req, nil
}

// ProcessApproval applies one decision to a request's current step.
func (e *engineImpl) ProcessApproval(ctx context.Context, requestID uuid.UUID, actorID int64, decision approval.Decision, comments, signature string) (*approval.ApprovalRequest, error) {
	if !decision.IsValid() {
		return nil, fmt.Errorf("unknown decision %q", decision)
	}

	req, err := e.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("load request %s: %w", requestID, err)
	}
	if req.Status != approval.RequestPending {
		return nil, fmt.Errorf("request %s is already %s: %w", requestID, req.Status, approval.ErrConflict)
	}

	actor, err := e.directory.GetUser(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("resolve actor %d: %w", actorID, err)
	}

	def, err := e.workflowRepo.GetByID(ctx, req.DefinitionID)
	if err != nil {
		return nil, fmt.Errorf("load definition %d: %w", req.DefinitionID, err)
	}

	observedStep := req.CurrentStepOrder
	step, ok := def.StepAt(observedStep)
	if !ok {
		return nil, fmt.Errorf("request %s points at step %d absent from definition %d", requestID, observedStep, def.ID)
	}
	if !actor.Active || actor.Role != step.ApproverRole {
		return nil, fmt.Errorf("actor %d (%s) may not decide step %d (%s): %w",
			actorID, actor.Role, observedStep, step.ApproverRole, approval.ErrForbidden)
	}

	now := e.now()
	action := &approval.ApprovalAction{
		ID:        uuid.New(),
		RequestID: req.ID,
		StepOrder: observedStep,
		ActorID:   actorID,
		Decision:  decision,
		Comments:  comments,
		Signature: signature,
		ActedAt:   now,
	}

	hasNext := def.HasStep(observedStep + 1)

	// The conditional request update is the commit gate. It runs before
	// the action insert so a decision that raced a concurrent approver
	// fails with Conflict, never with a duplicate-action constraint.
	err = e.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var commit error
		switch {
		case decision == approval.DecisionRejected:
			commit = e.requestRepo.Complete(txCtx, req.ID, observedStep, approval.RequestRejected, now)
		case hasNext:
			commit = e.requestRepo.AdvanceStep(txCtx, req.ID, observedStep)
		default:
			commit = e.requestRepo.Complete(txCtx, req.ID, observedStep, approval.RequestApproved, now)
		}
		if commit != nil {
			return commit
		}
		if err := e.actionRepo.Create(txCtx, action); err != nil {
			return fmt.Errorf("record action: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch {
	case decision == approval.DecisionRejected:
		req.Status = approval.RequestRejected
		req.CompletedAt = &now
	case hasNext:
		req.CurrentStepOrder = observedStep + 1
	default:
		req.Status = approval.RequestApproved
		req.CompletedAt = &now
	}

	e.logger.Info("Approval decision committed",
		"request_id", req.ID.String(),
		"step", observedStep,
		"decision", string(decision),
		"actor_id", actorID,
	)

	// Authoritative state is committed; notification delivery is
	// best-effort and never affects the decision.
	switch {
	case decision == approval.DecisionRejected:
		msg := fmt.Sprintf("Your approval request for %s %d was rejected at step %d.", req.EntityKind, req.EntityID, observedStep)
		if comments != "" {
			msg += " Comments: " + comments
		}
		e.notifyUser(ctx, req.RequestedBy, "Request rejected", msg, req)
	case hasNext:
		nextStep, _ := def.StepAt(observedStep + 1)
		e.notifyRole(ctx, nextStep.ApproverRole,
			"Approval required",
			fmt.Sprintf("%s %d awaits your approval (step %d of %d).", req.EntityKind, req.EntityID, observedStep+1, len(def.Steps)),
			req)
	default:
		e.notifyUser(ctx, req.RequestedBy, "Request approved",
			fmt.Sprintf("Your approval request for %s %d passed all %d steps.", req.EntityKind, req.EntityID, len(def.Steps)), req)
	}

	return req, nil
}

// PendingApprovalsFor lists requests waiting on the user's role at their
// current step.
func (e *engineImpl) PendingApprovalsFor(ctx context.Context, userID int64) ([]*approval.ApprovalRequest, error) {
	user, err := e.directory.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve user %d: %w", userID, err)
	}
	reqs, err := e.requestRepo.ListPendingAtRole(ctx, user.Role)
	if err != nil {
		return nil, fmt.Errorf("list pending approvals: %w", err)
	}
	return reqs, nil
}

// ApprovalHistoryFor assembles the full audit view for one entity.
func (e *engineImpl) ApprovalHistoryFor(ctx context.Context, kind status.EntityKind, entityID int64) ([]*approval.RequestHistory, error) {
	reqs, err := e.requestRepo.ListByEntity(ctx, kind, entityID)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}

	history := make([]*approval.RequestHistory, 0, len(reqs))
	for _, req := range reqs {
		actions, err := e.actionRepo.ListByRequest(ctx, req.ID)
		if err != nil {
			return nil, fmt.Errorf("list actions for %s: %w", req.ID, err)
		}
		entry := &approval.RequestHistory{Request: *req}
		for _, a := range actions {
			entry.Actions = append(entry.Actions, *a)
		}
		history = append(history, entry)
	}
	return history, nil
}

// notifyRole fans out one notification per active holder of a role. Sends
// run concurrently; failures are logged and otherwise ignored.
func (e *engineImpl) notifyRole(ctx context.Context, role status.Role, title, message string, req *approval.ApprovalRequest) {
	users, err := e.directory.ActiveUsersByRole(ctx, role)
	if err != nil {
		e.logger.Error("Failed to resolve role holders", "error", err, "role", role.String())
		return
	}
	if len(users) == 0 {
		e.logger.Error("No active users hold approver role", "role", role.String(), "request_id", req.ID.String())
		return
	}

	var wg sync.WaitGroup
	for _, user := range users {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			e.notifyUser(ctx, userID, title, message, req)
		}(user.ID)
	}
	wg.Wait()
}

func (e *engineImpl) notifyUser(ctx context.Context, userID int64, title, message string, req *approval.ApprovalRequest) {
	if err := e.notifier.Notify(ctx, userID, title, message, req.EntityID, req.EntityKind); err != nil {
		e.logger.Error("Notification delivery failed",
			"error", err,
			"user_id", userID,
			"request_id", req.ID.String(),
		)
	}
}
