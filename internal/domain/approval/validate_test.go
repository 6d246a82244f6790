package approval

import (
	"errors"
	"testing"

	"github.com/salahatech/KFSH-Ordering-sub009/internal/domain/status"
)

func TestWorkflowDefinitionValidate(t *testing.T) {
	step := func(order int, role status.Role) WorkflowStep {
		return WorkflowStep{StepOrder: order, ApproverRole: role}
	}

	tests := []struct {
		name    string
		def     WorkflowDefinition
		wantErr bool
	}{
		{
			name: "single step",
			def: WorkflowDefinition{
				Name:       "batch release",
				EntityKind: status.KindBatch,
				Steps:      []WorkflowStep{step(1, status.RoleQCOfficer)},
			},
		},
		{
			name: "three contiguous steps",
			def: WorkflowDefinition{
				Name:       "recall",
				EntityKind: status.KindBatch,
				Steps: []WorkflowStep{
					step(1, status.RoleQCOfficer),
					step(2, status.RoleRadiationSafetyOfficer),
					step(3, status.RoleProductionManager),
				},
			},
		},
		{
			name: "no steps",
			def: WorkflowDefinition{
				Name:       "empty",
				EntityKind: status.KindOrder,
			},
			wantErr: true,
		},
		{
			name: "gap in orders",
			def: WorkflowDefinition{
				Name:       "gapped",
				EntityKind: status.KindOrder,
				Steps:      []WorkflowStep{step(1, status.RoleQCOfficer), step(3, status.RoleAdmin)},
			},
			wantErr: true,
		},
		{
			name: "does not start at one",
			def: WorkflowDefinition{
				Name:       "offset",
				EntityKind: status.KindOrder,
				Steps:      []WorkflowStep{step(2, status.RoleQCOfficer)},
			},
			wantErr: true,
		},
		{
			name: "duplicate order",
			def: WorkflowDefinition{
				Name:       "dup",
				EntityKind: status.KindOrder,
				Steps:      []WorkflowStep{step(1, status.RoleQCOfficer), step(1, status.RoleAdmin)},
			},
			wantErr: true,
		},
		{
			name: "unknown role",
			def: WorkflowDefinition{
				Name:       "badrole",
				EntityKind: status.KindOrder,
				Steps:      []WorkflowStep{step(1, status.Role("INTERN"))},
			},
			wantErr: true,
		},
		{
			name: "unknown kind",
			def: WorkflowDefinition{
				Name:       "badkind",
				EntityKind: status.EntityKind("SHIPMENT"),
				Steps:      []WorkflowStep{step(1, status.RoleQCOfficer)},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.def.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidDefinition) {
				t.Errorf("Validate() = %v, want ErrInvalidDefinition", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() returned unexpected error: %v", err)
			}
		})
	}
}

func TestStepAt(t *testing.T) {
	def := WorkflowDefinition{
		Steps: []WorkflowStep{
			{StepOrder: 1, ApproverRole: status.RoleQCOfficer},
			{StepOrder: 2, ApproverRole: status.RoleProductionManager},
		},
	}

	s, ok := def.StepAt(2)
	if !ok || s.ApproverRole != status.RoleProductionManager {
		t.Errorf("StepAt(2) = %+v, %v", s, ok)
	}
	if def.HasStep(3) {
		t.Error("HasStep(3) should be false")
	}
}

func TestRequestStatusIsTerminal(t *testing.T) {
	if RequestPending.IsTerminal() {
		t.Error("PENDING is not terminal")
	}
	if !RequestApproved.IsTerminal() || !RequestRejected.IsTerminal() {
		t.Error("APPROVED and REJECTED are terminal")
	}
}
