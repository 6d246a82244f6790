package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/salahatech/KFSH-Ordering-sub009/internal/domain/approval"
	"github.com/salahatech/KFSH-Ordering-sub009/internal/domain/status"
)

type testLogger struct{}

func (testLogger) Info(msg string, keysAndValues ...interface{})  {}
func (testLogger) Error(msg string, keysAndValues ...interface{}) {}

// Mock entity repository
type mockEntityRepo struct {
	statuses    map[string]string // "KIND/id" -> status
	parents     map[int64]int64   // batch id -> order id
	updateCalls []string          // "KIND/id=status"
}

func entityKey(kind status.EntityKind, id int64) string {
	return fmt.Sprintf("%s/%d", kind, id)
}

func (m *mockEntityRepo) GetStatus(ctx context.Context, kind status.EntityKind, entityID int64) (string, error) {
	s, ok := m.statuses[entityKey(kind, entityID)]
	if !ok {
		return "", fmt.Errorf("%s %d: %w", kind, entityID, approval.ErrNotFound)
	}
	return s, nil
}

func (m *mockEntityRepo) UpdateStatus(ctx context.Context, kind status.EntityKind, entityID int64, newStatus string) error {
	m.statuses[entityKey(kind, entityID)] = newStatus
	m.updateCalls = append(m.updateCalls, fmt.Sprintf("%s=%s", entityKey(kind, entityID), newStatus))
	return nil
}

func (m *mockEntityRepo) ParentOrder(ctx context.Context, batchID int64) (int64, bool, error) {
	orderID, ok := m.parents[batchID]
	return orderID, ok, nil
}

// Mock audit log
type mockAuditLog struct {
	entries []string
}

func (m *mockAuditLog) RecordChange(ctx context.Context, kind status.EntityKind, entityID int64, field, oldValue, newValue string, changedBy int64) error {
	m.entries = append(m.entries, fmt.Sprintf("%s/%d %s: %s -> %s", kind, entityID, field, oldValue, newValue))
	return nil
}

// Mock workflow engine
type mockEngine struct {
	triggered []string // "KIND/id@status"
	request   *approval.ApprovalRequest
}

func (m *mockEngine) TriggerWorkflow(ctx context.Context, kind status.EntityKind, entityID int64, triggerStatus string, requestedBy int64, priority approval.Priority, notes string) (*approval.ApprovalRequest, error) {
	m.triggered = append(m.triggered, fmt.Sprintf("%s/%d@%s", kind, entityID, triggerStatus))
	return m.request, nil
}

func (m *mockEngine) ProcessApproval(ctx context.Context, requestID uuid.UUID, actorID int64, decision approval.Decision, comments, signature string) (*approval.ApprovalRequest, error) {
	return nil, nil
}

func (m *mockEngine) PendingApprovalsFor(ctx context.Context, userID int64) ([]*approval.ApprovalRequest, error) {
	return nil, nil
}

func (m *mockEngine) ApprovalHistoryFor(ctx context.Context, kind status.EntityKind, entityID int64) ([]*approval.RequestHistory, error) {
	return nil, nil
}

type mockTxManager struct{}

func (mockTxManager) WithTransaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

func newStatusFixture() (*mockEntityRepo, *mockAuditLog, *mockEngine, StatusService) {
	entityRepo := &mockEntityRepo{
		statuses: map[string]string{},
		parents:  map[int64]int64{},
	}
	auditLog := &mockAuditLog{}
	engine := &mockEngine{}
	svc := NewStatusService(entityRepo, auditLog, engine, mockTxManager{}, testLogger{})
	return entityRepo, auditLog, engine, svc
}

func TestChangeOrderStatus_LegalTransition(t *testing.T) {
	entityRepo, auditLog, engine, svc := newStatusFixture()
	entityRepo.statuses[entityKey(status.KindOrder, 1)] = "DRAFT"

	_, err := svc.ChangeOrderStatus(context.Background(), 1, status.OrderSubmitted, 5, "order ready")
	if err != nil {
		t.Fatalf("ChangeOrderStatus() error = %v", err)
	}

	if got := entityRepo.statuses[entityKey(status.KindOrder, 1)]; got != "SUBMITTED" {
		t.Errorf("order status = %s, want SUBMITTED", got)
	}
	if len(auditLog.entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(auditLog.entries))
	}
	if len(engine.triggered) != 1 || engine.triggered[0] != "ORDER/1@SUBMITTED" {
		t.Errorf("workflow triggers = %v", engine.triggered)
	}
}

func TestChangeOrderStatus_IllegalTransition(t *testing.T) {
	entityRepo, auditLog, engine, svc := newStatusFixture()
	entityRepo.statuses[entityKey(status.KindOrder, 1)] = "DELIVERED"

	_, err := svc.ChangeOrderStatus(context.Background(), 1, status.OrderSubmitted, 5, "")
	if !errors.Is(err, status.ErrIllegalTransition) {
		t.Fatalf("error = %v, want ErrIllegalTransition", err)
	}

	if got := entityRepo.statuses[entityKey(status.KindOrder, 1)]; got != "DELIVERED" {
		t.Errorf("status mutated to %s on illegal transition", got)
	}
	if len(auditLog.entries) != 0 || len(engine.triggered) != 0 {
		t.Error("illegal transition must not audit or trigger workflows")
	}
}

func TestChangeBatchStatus_ProjectsOntoParentOrder(t *testing.T) {
	entityRepo, auditLog, _, svc := newStatusFixture()
	entityRepo.statuses[entityKey(status.KindBatch, 7)] = "PLANNED"
	entityRepo.statuses[entityKey(status.KindOrder, 3)] = "CONFIRMED"
	entityRepo.parents[7] = 3

	_, err := svc.ChangeBatchStatus(context.Background(), 7, status.BatchInSynthesis, 5, "")
	if err != nil {
		t.Fatalf("ChangeBatchStatus() error = %v", err)
	}

	if got := entityRepo.statuses[entityKey(status.KindBatch, 7)]; got != "IN_SYNTHESIS" {
		t.Errorf("batch status = %s, want IN_SYNTHESIS", got)
	}
	if got := entityRepo.statuses[entityKey(status.KindOrder, 3)]; got != "IN_PRODUCTION" {
		t.Errorf("parent order status = %s, want IN_PRODUCTION (projected)", got)
	}
	if len(auditLog.entries) != 2 {
		t.Errorf("audit entries = %d, want 2 (batch + cascaded order)", len(auditLog.entries))
	}
}

func TestChangeBatchStatus_NoProjectionLeavesOrderUntouched(t *testing.T) {
	entityRepo, _, _, svc := newStatusFixture()
	entityRepo.statuses[entityKey(status.KindBatch, 7)] = "IN_SYNTHESIS"
	entityRepo.statuses[entityKey(status.KindOrder, 3)] = "IN_PRODUCTION"
	entityRepo.parents[7] = 3

	// QC_PENDING has no order-level projection.
	_, err := svc.ChangeBatchStatus(context.Background(), 7, status.BatchQCPending, 5, "")
	if err != nil {
		t.Fatalf("ChangeBatchStatus() error = %v", err)
	}

	if got := entityRepo.statuses[entityKey(status.KindOrder, 3)]; got != "IN_PRODUCTION" {
		t.Errorf("order status = %s, want untouched IN_PRODUCTION", got)
	}
}

func TestChangeBatchStatus_SkipsCascadeWhenOrderCannotTakeIt(t *testing.T) {
	entityRepo, _, _, svc := newStatusFixture()
	entityRepo.statuses[entityKey(status.KindBatch, 7)] = "PLANNED"
	entityRepo.statuses[entityKey(status.KindOrder, 3)] = "DELIVERED"
	entityRepo.parents[7] = 3

	_, err := svc.ChangeBatchStatus(context.Background(), 7, status.BatchInSynthesis, 5, "")
	if err != nil {
		t.Fatalf("ChangeBatchStatus() error = %v", err)
	}

	if got := entityRepo.statuses[entityKey(status.KindOrder, 3)]; got != "DELIVERED" {
		t.Errorf("terminal order was mutated to %s by cascade", got)
	}
}

func TestChangeBatchStatus_StockBatchWithoutOrder(t *testing.T) {
	entityRepo, _, engine, svc := newStatusFixture()
	entityRepo.statuses[entityKey(status.KindBatch, 9)] = "PLANNED"

	_, err := svc.ChangeBatchStatus(context.Background(), 9, status.BatchInSynthesis, 5, "")
	if err != nil {
		t.Fatalf("ChangeBatchStatus() error = %v", err)
	}
	if len(engine.triggered) != 1 {
		t.Errorf("workflow triggers = %v", engine.triggered)
	}
}

func TestNextStatusOptions(t *testing.T) {
	entityRepo, _, _, svc := newStatusFixture()
	entityRepo.statuses[entityKey(status.KindBatch, 7)] = "QC_PENDING"

	options, err := svc.NextStatusOptions(context.Background(), status.KindBatch, 7)
	if err != nil {
		t.Fatalf("NextStatusOptions() error = %v", err)
	}

	want := map[string]bool{"QC_PASSED": true, "QC_FAILED": true}
	if len(options) != len(want) {
		t.Fatalf("options = %v", options)
	}
	for _, o := range options {
		if !want[o] {
			t.Errorf("unexpected option %s", o)
		}
	}
}
