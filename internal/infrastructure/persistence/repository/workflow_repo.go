// Package repository contains the SQLite implementations of the
// application's persistence ports.
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

// WorkflowRepository reads workflow definitions and their steps
type WorkflowRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewWorkflowRepository creates a new workflow definition repository
func NewWorkflowRepository(db *database.DB, logger *zap.Logger) *WorkflowRepository {
	return &WorkflowRepository{
		db:     db,
		logger: logger,
	}
}

// GetActiveByTrigger returns the single active definition for an entity
// kind and trigger status, or (nil, nil) when none is configured.
func (r *WorkflowRepository) GetActiveByTrigger(ctx context.Context, kind status.EntityKind, triggerStatus string) (*approval.WorkflowDefinition, error) {
	query := `
		SELECT id, name, entity_kind, trigger_status, active, created_at
		FROM workflow_definitions
		WHERE entity_kind = ? AND trigger_status = ? AND active = 1
		LIMIT 1
	`

	def, err := r.scanDefinition(r.db.Querier(ctx).QueryRowContext(ctx, query, kind.String(), triggerStatus))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to look up workflow definition",
			zap.String("entity_kind", kind.String()),
			zap.String("trigger_status", triggerStatus),
			zap.Error(err))
		return nil, fmt.Errorf("failed to look up workflow definition: %w", err)
	}

	if err := r.loadSteps(ctx, def); err != nil {
		return nil, err
	}
	return def, nil
}

// GetByID returns a definition with its steps.
func (r *WorkflowRepository) GetByID(ctx context.Context, id int64) (*approval.WorkflowDefinition, error) {
	query := `
		SELECT id, name, entity_kind, trigger_status, active, created_at
		FROM workflow_definitions
		WHERE id = ?
	`

	def, err := r.scanDefinition(r.db.Querier(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("workflow definition %d: %w", id, approval.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get workflow definition", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get workflow definition: %w", err)
	}

	if err := r.loadSteps(ctx, def); err != nil {
		return nil, err
	}
	return def, nil
}

// List returns all definitions with their steps.
func (r *WorkflowRepository) List(ctx context.Context) ([]*approval.WorkflowDefinition, error) {
	query := `
		SELECT id, name, entity_kind, trigger_status, active, created_at
		FROM workflow_definitions
		ORDER BY id
	`

	rows, err := r.db.Querier(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow definitions: %w", err)
	}
	defer rows.Close()

	var defs []*approval.WorkflowDefinition
	for rows.Next() {
		var def approval.WorkflowDefinition
		var kind string
		if err := rows.Scan(&def.ID, &def.Name, &kind, &def.TriggerStatus, &def.Active, &def.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan workflow definition: %w", err)
		}
		def.EntityKind = status.EntityKind(kind)
		defs = append(defs, &def)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, def := range defs {
		if err := r.loadSteps(ctx, def); err != nil {
			return nil, err
		}
	}
	return defs, nil
}

func (r *WorkflowRepository) scanDefinition(row *sql.Row) (*approval.WorkflowDefinition, error) {
	var def approval.WorkflowDefinition
	var kind string
	if err := row.Scan(&def.ID, &def.Name, &kind, &def.TriggerStatus, &def.Active, &def.CreatedAt); err != nil {
		return nil, err
	}
	def.EntityKind = status.EntityKind(kind)
	return &def, nil
}

func (r *WorkflowRepository) loadSteps(ctx context.Context, def *approval.WorkflowDefinition) error {
	query := `
		SELECT id, definition_id, step_order, approver_role
		FROM workflow_steps
		WHERE definition_id = ?
		ORDER BY step_order
	`

	rows, err := r.db.Querier(ctx).QueryContext(ctx, query, def.ID)
	if err != nil {
		return fmt.Errorf("failed to load workflow steps: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var step approval.WorkflowStep
		var role string
		if err := rows.Scan(&step.ID, &step.DefinitionID, &step.StepOrder, &role); err != nil {
			return fmt.Errorf("failed to scan workflow step: %w", err)
		}
		step.ApproverRole = status.Role(role)
		def.Steps = append(def.Steps, step)
	}
	return rows.Err()
}
