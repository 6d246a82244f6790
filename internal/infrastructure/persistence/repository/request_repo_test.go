package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/salahatech/KFSH-Ordering-sub009/internal/domain/approval"
	"github.com/salahatech/KFSH-Ordering-sub009/internal/domain/status"
	"github.com/salahatech/KFSH-Ordering-sub009/pkg/database"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	logger := zap.NewNop()
	db, err := database.New(database.Config{
		Path:            filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.NewMigrator(db, logger).RunMigrations(filepath.Join("..", "..", "..", "..", "migrations")))
	return db
}

// seedApprovalFixtures satisfies the foreign keys on approval_requests and
// approval_actions: one requester and one two-step definition.
func seedApprovalFixtures(t *testing.T, db *database.DB) {
	t.Helper()

	_, err := db.Exec(`INSERT INTO users (id, name, role, active) VALUES (1, 'qc officer', 'QC_OFFICER', 1)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO workflow_definitions (id, name, entity_kind, trigger_status, active) VALUES (1, 'batch release', 'BATCH', 'QC_PASSED', 1)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO workflow_steps (definition_id, step_order, approver_role) VALUES (1, 1, 'QC_OFFICER'), (1, 2, 'PRODUCTION_MANAGER')`)
	require.NoError(t, err)
}

func newStoredRequest(t *testing.T, repo *RequestRepository) *approval.ApprovalRequest {
	t.Helper()

	req := &approval.ApprovalRequest{
		ID:               uuid.New(),
		DefinitionID:     1,
		EntityKind:       status.KindBatch,
		EntityID:         7,
		RequestedBy:      1,
		CurrentStepOrder: 1,
		Status:           approval.RequestPending,
		Priority:         approval.PriorityNormal,
		CreatedAt:        time.Now().UTC(),
	}
	require.NoError(t, repo.Create(context.Background(), req))
	return req
}

func TestRequestRepository_AdvanceStepGuardsOnExpectedStep(t *testing.T) {
	db := newTestDB(t)
	seedApprovalFixtures(t, db)
	repo := NewRequestRepository(db, zap.NewNop())
	req := newStoredRequest(t, repo)

	// A stale expected step never moves the row.
	err := repo.AdvanceStep(context.Background(), req.ID, 2)
	assert.ErrorIs(t, err, approval.ErrConflict)

	stored, err := repo.GetByID(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.CurrentStepOrder)

	require.NoError(t, repo.AdvanceStep(context.Background(), req.ID, 1))

	stored, err = repo.GetByID(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.CurrentStepOrder)

	// The step already moved on; the first observer's retry loses.
	err = repo.AdvanceStep(context.Background(), req.ID, 1)
	assert.ErrorIs(t, err, approval.ErrConflict)
}

func TestRequestRepository_CompleteIsFinal(t *testing.T) {
	db := newTestDB(t)
	seedApprovalFixtures(t, db)
	repo := NewRequestRepository(db, zap.NewNop())
	req := newStoredRequest(t, repo)

	completedAt := time.Now().UTC()
	require.NoError(t, repo.Complete(context.Background(), req.ID, 1, approval.RequestApproved, completedAt))

	stored, err := repo.GetByID(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, approval.RequestApproved, stored.Status)
	require.NotNil(t, stored.CompletedAt)

	// Resolved requests accept no further conditional writes.
	err = repo.Complete(context.Background(), req.ID, 1, approval.RequestRejected, time.Now().UTC())
	assert.ErrorIs(t, err, approval.ErrConflict)
	err = repo.AdvanceStep(context.Background(), req.ID, 1)
	assert.ErrorIs(t, err, approval.ErrConflict)
}

func TestRequestRepository_ConflictInsideTransactionRollsBackAction(t *testing.T) {
	db := newTestDB(t)
	seedApprovalFixtures(t, db)
	requestRepo := NewRequestRepository(db, zap.NewNop())
	actionRepo := NewActionRepository(db, zap.NewNop())
	req := newStoredRequest(t, requestRepo)

	// Another decider resolved the request between our read and our write.
	require.NoError(t, requestRepo.Complete(context.Background(), req.ID, 1, approval.RequestApproved, time.Now().UTC()))

	err := db.WithTransaction(context.Background(), func(txCtx context.Context) error {
		if err := requestRepo.Complete(txCtx, req.ID, 1, approval.RequestApproved, time.Now().UTC()); err != nil {
			return err
		}
		return actionRepo.Create(txCtx, &approval.ApprovalAction{
			ID:        uuid.New(),
			RequestID: req.ID,
			StepOrder: 1,
			ActorID:   1,
			Decision:  approval.DecisionApproved,
			ActedAt:   time.Now().UTC(),
		})
	})
	assert.ErrorIs(t, err, approval.ErrConflict)

	actions, err := actionRepo.ListByRequest(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Empty(t, actions, "the losing attempt leaves no action behind")
}
