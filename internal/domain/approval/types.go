// Package approval defines the entities of the role-gated approval
// workflow: definitions, requests and the append-only action trail.
package approval

import (
	"time"

	"github.com/google/uuid"

	"github.com/salahatech/KFSH-Ordering-sub009/internal/domain/status"
)

// RequestStatus is the lifecycle status of an ApprovalRequest.
type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestApproved RequestStatus = "APPROVED"
	RequestRejected RequestStatus = "REJECTED"
)

// IsTerminal returns true once a request has been fully resolved.
func (s RequestStatus) IsTerminal() bool {
	return s == RequestApproved || s == RequestRejected
}

// String returns the string representation of the request status.
func (s RequestStatus) String() string {
	return string(s)
}

// Decision is the outcome an approver records for a single step.
type Decision string

const (
	DecisionApproved Decision = "APPROVED"
	DecisionRejected Decision = "REJECTED"
)

// IsValid returns true if the decision is one of the two known outcomes.
func (d Decision) IsValid() bool {
	return d == DecisionApproved || d == DecisionRejected
}

// Priority orders pending requests on approver dashboards.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// IsValid returns true if the priority is part of the closed set.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// WorkflowStep is one role gate in a workflow definition. Step orders start
// at 1 and are contiguous within a definition.
type WorkflowStep struct {
	ID           int64       `json:"id"`
	DefinitionID int64       `json:"definition_id"`
	StepOrder    int         `json:"step_order"`
	ApproverRole status.Role `json:"approver_role"`
}

// WorkflowDefinition is a configured approval chain tied to an entity kind
// and a triggering status. Read-only at runtime.
type WorkflowDefinition struct {
	ID            int64             `json:"id"`
	Name          string            `json:"name"`
	EntityKind    status.EntityKind `json:"entity_kind"`
	TriggerStatus string            `json:"trigger_status"`
	Active        bool              `json:"active"`
	Steps         []WorkflowStep    `json:"steps"`
	CreatedAt     time.Time         `json:"created_at"`
}

// StepAt returns the step with the given order, or false when the
// definition has no such step.
func (d *WorkflowDefinition) StepAt(order int) (WorkflowStep, bool) {
	for _, s := range d.Steps {
		if s.StepOrder == order {
			return s, true
		}
	}
	return WorkflowStep{}, false
}

// HasStep reports whether the definition contains a step with this order.
func (d *WorkflowDefinition) HasStep(order int) bool {
	_, ok := d.StepAt(order)
	return ok
}

// ApprovalRequest is one run of a workflow definition against a tracked
// entity. Owned by the workflow engine once created.
type ApprovalRequest struct {
	ID               uuid.UUID         `json:"id"`
	DefinitionID     int64             `json:"definition_id"`
	EntityKind       status.EntityKind `json:"entity_kind"`
	EntityID         int64             `json:"entity_id"`
	RequestedBy      int64             `json:"requested_by"`
	CurrentStepOrder int               `json:"current_step_order"`
	Status           RequestStatus     `json:"status"`
	Priority         Priority          `json:"priority"`
	Notes            string            `json:"notes,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	CompletedAt      *time.Time        `json:"completed_at,omitempty"`
}

// ApprovalAction is one immutable decision record. Exactly one action ever
// exists per (request, step order); the trail is append-only.
type ApprovalAction struct {
	ID        uuid.UUID `json:"id"`
	RequestID uuid.UUID `json:"request_id"`
	StepOrder int       `json:"step_order"`
	ActorID   int64     `json:"actor_id"`
	Decision  Decision  `json:"decision"`
	Comments  string    `json:"comments,omitempty"`
	Signature string    `json:"signature,omitempty"`
	ActedAt   time.Time `json:"acted_at"`
}

// RequestHistory pairs a request with its recorded actions, oldest action
// first.
type RequestHistory struct {
	Request ApprovalRequest  `json:"request"`
	Actions []ApprovalAction `json:"actions"`
}

// User is a directory entry; only active users receive notifications or may
// act on approvals.
type User struct {
	ID     int64       `json:"id"`
	Name   string      `json:"name"`
	Role   status.Role `json:"role"`
	Active bool        `json:"active"`
}
