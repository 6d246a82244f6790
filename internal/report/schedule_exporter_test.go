package report

import (
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/salahatech/KFSH-Ordering-sub009/internal/application/service"
	"github.com/salahatech/KFSH-Ordering-sub009/internal/domain/decay"
)

func TestExportSchedule(t *testing.T) {
	dir := t.TempDir()
	exporter := NewScheduleExporter(dir, "KFSH Riyadh", zap.NewNop())

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	delivery := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	sched := decay.BackwardSchedule(delivery, 60, 15, 30, 45)

	rows := []ScheduleRow{
		{
			BatchID:     7,
			OrderID:     3,
			Destination: "PET Center A",
			Plan: service.ProductionPlan{
				Isotope:            decay.Isotope{Symbol: "F-18", HalfLifeMinutes: decay.HalfLifeF18},
				Schedule:           sched,
				RequiredActivity:   370,
				ProductionActivity: 1250.5,
				OveragePercent:     10,
				WithinShelfLife:    true,
			},
		},
	}

	path, err := exporter.Export(day, rows)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	defer f.Close()

	checks := map[string]string{
		"A1": "KFSH Riyadh production schedule 2026-03-10",
		"A3": "Batch",
		"D4": "F-18",
		"E4": "07:30",
		"I4": "10:00",
		"L4": "YES",
	}
	for cell, want := range checks {
		got, err := f.GetCellValue(scheduleSheet, cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s) error = %v", cell, err)
		}
		if got != want {
			t.Errorf("cell %s = %q, want %q", cell, got, want)
		}
	}
}

func TestExportSchedule_EmptyDay(t *testing.T) {
	dir := t.TempDir()
	exporter := NewScheduleExporter(dir, "KFSH Riyadh", zap.NewNop())

	path, err := exporter.Export(time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), nil)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if path == "" {
		t.Fatal("expected a file path for an empty schedule")
	}
}
