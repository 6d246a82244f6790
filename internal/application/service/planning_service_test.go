package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/salahatech/KFSH-Ordering-sub009/internal/domain/decay"
)

func defaultPlanningParams() PlanningParams {
	return PlanningParams{
		Stages: StageDurations{
			DispatchLead: 60,
			Packaging:    15,
			QC:           30,
			Synthesis:    45,
		},
		OveragePercent:   10,
		ShelfLifeMinutes: 600,
	}
}

func TestPlanBatch_Schedule(t *testing.T) {
	svc := NewPlanningService(defaultPlanningParams(), testLogger{})
	delivery := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

	plan, err := svc.PlanBatch(context.Background(), PlanRequest{
		IsotopeSymbol:    "F-18",
		RequiredActivity: 370,
		InjectionTime:    delivery.Add(30 * time.Minute),
		DeliveryTime:     delivery,
	})
	if err != nil {
		t.Fatalf("PlanBatch() error = %v", err)
	}

	wantTimes := map[string]time.Time{
		"dispatch":  time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		"packaging": time.Date(2026, 3, 10, 8, 45, 0, 0, time.UTC),
		"qc":        time.Date(2026, 3, 10, 8, 15, 0, 0, time.UTC),
		"synthesis": time.Date(2026, 3, 10, 7, 30, 0, 0, time.UTC),
	}
	if !plan.Schedule.DispatchTime.Equal(wantTimes["dispatch"]) {
		t.Errorf("dispatch = %v, want %v", plan.Schedule.DispatchTime, wantTimes["dispatch"])
	}
	if !plan.Schedule.PackagingStart.Equal(wantTimes["packaging"]) {
		t.Errorf("packaging = %v, want %v", plan.Schedule.PackagingStart, wantTimes["packaging"])
	}
	if !plan.Schedule.QCStart.Equal(wantTimes["qc"]) {
		t.Errorf("qc = %v, want %v", plan.Schedule.QCStart, wantTimes["qc"])
	}
	if !plan.Schedule.SynthesisStart.Equal(wantTimes["synthesis"]) {
		t.Errorf("synthesis = %v, want %v", plan.Schedule.SynthesisStart, wantTimes["synthesis"])
	}
	if !plan.Schedule.DeliveryTime.Equal(delivery) {
		t.Errorf("delivery = %v, want %v", plan.Schedule.DeliveryTime, delivery)
	}
}

func TestPlanBatch_ProductionActivity(t *testing.T) {
	svc := NewPlanningService(defaultPlanningParams(), testLogger{})
	delivery := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	injection := delivery.Add(30 * time.Minute)

	plan, err := svc.PlanBatch(context.Background(), PlanRequest{
		IsotopeSymbol:    "F-18",
		RequiredActivity: 370,
		InjectionTime:    injection,
		DeliveryTime:     delivery,
	})
	if err != nil {
		t.Fatalf("PlanBatch() error = %v", err)
	}

	// Synthesis starts 180 min ahead of injection; the plan must cover
	// three hours of F-18 decay plus the 10% overage.
	base, err := decay.RequiredInitialActivity(370, decay.HalfLifeF18, 180)
	if err != nil {
		t.Fatalf("RequiredInitialActivity() error = %v", err)
	}
	want := base * 1.10
	if math.Abs(plan.ProductionActivity-want) > 1e-9 {
		t.Errorf("production activity = %.4f, want %.4f", plan.ProductionActivity, want)
	}
	if plan.ProductionActivity <= plan.RequiredActivity {
		t.Errorf("production activity %.2f must exceed required %.2f", plan.ProductionActivity, plan.RequiredActivity)
	}
	if !plan.WithinShelfLife {
		t.Error("180 min lead is inside a 600 min shelf life")
	}
}

func TestPlanBatch_ShelfLifeExceeded(t *testing.T) {
	params := defaultPlanningParams()
	params.ShelfLifeMinutes = 120
	svc := NewPlanningService(params, testLogger{})
	delivery := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

	plan, err := svc.PlanBatch(context.Background(), PlanRequest{
		IsotopeSymbol:    "Ga-68",
		RequiredActivity: 100,
		InjectionTime:    delivery.Add(30 * time.Minute),
		DeliveryTime:     delivery,
	})
	if err != nil {
		t.Fatalf("PlanBatch() error = %v", err)
	}
	if plan.WithinShelfLife {
		t.Error("180 min lead must exceed a 120 min shelf life")
	}
}

func TestPlanBatch_InvalidRequests(t *testing.T) {
	svc := NewPlanningService(defaultPlanningParams(), testLogger{})
	delivery := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		req  PlanRequest
	}{
		{
			name: "unknown isotope",
			req: PlanRequest{
				IsotopeSymbol:    "Xx-99",
				RequiredActivity: 100,
				InjectionTime:    delivery.Add(30 * time.Minute),
				DeliveryTime:     delivery,
			},
		},
		{
			name: "zero activity",
			req: PlanRequest{
				IsotopeSymbol:    "F-18",
				RequiredActivity: 0,
				InjectionTime:    delivery.Add(30 * time.Minute),
				DeliveryTime:     delivery,
			},
		},
		{
			name: "injection before delivery",
			req: PlanRequest{
				IsotopeSymbol:    "F-18",
				RequiredActivity: 100,
				InjectionTime:    delivery.Add(-30 * time.Minute),
				DeliveryTime:     delivery,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.PlanBatch(context.Background(), tt.req)
			if !errors.Is(err, decay.ErrInvalidParameter) {
				t.Errorf("PlanBatch() error = %v, want ErrInvalidParameter", err)
			}
		})
	}
}
