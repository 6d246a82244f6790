// Package report renders production schedules into Excel workbooks for the
// daily planning board and courier handover sheets.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/salahatech/KFSH-Ordering-sub009/internal/application/service"
)

const scheduleSheet = "Production Schedule"

// ScheduleRow is one batch line on the exported schedule.
type ScheduleRow struct {
	BatchID     int64
	OrderID     int64
	Destination string
	Plan        service.ProductionPlan
}

// ScheduleExporter writes daily production schedules as .xlsx files.
type ScheduleExporter struct {
	outputDir string
	siteName  string
	logger    *zap.Logger
}

// NewScheduleExporter creates a new ScheduleExporter
func NewScheduleExporter(outputDir, siteName string, logger *zap.Logger) *ScheduleExporter {
	return &ScheduleExporter{
		outputDir: outputDir,
		siteName:  siteName,
		logger:    logger,
	}
}

// Export writes the schedule for the given day and returns the file path.
func (e *ScheduleExporter) Export(day time.Time, rows []ScheduleRow) (string, error) {
	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(scheduleSheet)
	if err != nil {
		return "", fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return "", fmt.Errorf("remove default sheet: %w", err)
	}

	e.setCell(f, "A1", fmt.Sprintf("%s production schedule %s", e.siteName, day.Format("2006-01-02")))

	headers := []string{
		"Batch", "Order", "Destination", "Isotope",
		"Synthesis", "QC", "Packaging", "Dispatch", "Delivery",
		"Required (MBq)", "Produce (MBq)", "Shelf life OK",
	}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 3)
		if err != nil {
			return "", fmt.Errorf("header cell name: %w", err)
		}
		e.setCell(f, cell, h)
	}

	for r, row := range rows {
		values := []interface{}{
			row.BatchID,
			row.OrderID,
			row.Destination,
			row.Plan.Isotope.Symbol,
			row.Plan.Schedule.SynthesisStart.Format("15:04"),
			row.Plan.Schedule.QCStart.Format("15:04"),
			row.Plan.Schedule.PackagingStart.Format("15:04"),
			row.Plan.Schedule.DispatchTime.Format("15:04"),
			row.Plan.Schedule.DeliveryTime.Format("15:04"),
			fmt.Sprintf("%.1f", row.Plan.RequiredActivity),
			fmt.Sprintf("%.1f", row.Plan.ProductionActivity),
			shelfLifeLabel(row.Plan.WithinShelfLife),
		}
		for c, v := range values {
			cell, err := excelize.CoordinatesToCellName(c+1, r+4)
			if err != nil {
				return "", fmt.Errorf("row cell name: %w", err)
			}
			e.setCell(f, cell, v)
		}
	}

	outputPath := filepath.Join(e.outputDir, fmt.Sprintf("schedule_%s.xlsx", day.Format("20060102")))
	if err := f.SaveAs(outputPath); err != nil {
		return "", fmt.Errorf("save schedule: %w", err)
	}

	e.logger.Info("Production schedule exported",
		zap.String("path", outputPath),
		zap.Int("batches", len(rows)))
	return outputPath, nil
}

// setCell sets a cell value, logging instead of failing on a bad write
func (e *ScheduleExporter) setCell(f *excelize.File, cell string, value interface{}) {
	if err := f.SetCellValue(scheduleSheet, cell, value); err != nil {
		e.logger.Warn("Failed to set cell value",
			zap.String("cell", cell),
			zap.Error(err))
	}
}

func shelfLifeLabel(ok bool) string {
	if ok {
		return "YES"
	}
	return "EXCEEDED"
}
