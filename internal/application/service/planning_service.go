package service

import (
	"context"
	"fmt"
	"time"

	"github.com/salahatech/KFSH-Ordering-sub009/internal/domain/decay"
)

// StageDurations are the fixed production stage lengths, in minutes, used
// for backward scheduling.
type StageDurations struct {
	DispatchLead float64
	Packaging    float64
	QC           float64
	Synthesis    float64
}

// PlanningParams hold the site defaults applied to every plan.
type PlanningParams struct {
	Stages           StageDurations
	OveragePercent   float64
	ShelfLifeMinutes float64
}

// PlanRequest asks for a production plan for one batch.
type PlanRequest struct {
	IsotopeSymbol    string    `json:"isotope_symbol"`
	RequiredActivity float64   `json:"required_activity"`
	InjectionTime    time.Time `json:"injection_time"`
	DeliveryTime     time.Time `json:"delivery_time"`
}

// ProductionPlan is the schedule and activity answer for one batch: when
// each stage must start and how much activity synthesis must yield.
type ProductionPlan struct {
	Isotope            decay.Isotope  `json:"isotope"`
	Schedule           decay.Schedule `json:"schedule"`
	RequiredActivity   float64        `json:"required_activity"`
	ProductionActivity float64        `json:"production_activity"`
	OveragePercent     float64        `json:"overage_percent"`
	WithinShelfLife    bool           `json:"within_shelf_life"`
}

// PlanningService derives production schedules and required activities
// from delivery deadlines.
type PlanningService interface {
	PlanBatch(ctx context.Context, req PlanRequest) (*ProductionPlan, error)
}

type planningServiceImpl struct {
	params PlanningParams
	logger Logger
}

// NewPlanningService creates a new PlanningService
func NewPlanningService(params PlanningParams, logger Logger) PlanningService {
	return &planningServiceImpl{
		params: params,
		logger: logger,
	}
}

// PlanBatch anchors the production chain to the delivery deadline and
// back-calculates the synthesis activity, overage included.
func (s *planningServiceImpl) PlanBatch(ctx context.Context, req PlanRequest) (*ProductionPlan, error) {
	iso, ok := decay.BySymbol(req.IsotopeSymbol)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported isotope %q", decay.ErrInvalidParameter, req.IsotopeSymbol)
	}
	if req.RequiredActivity <= 0 {
		return nil, fmt.Errorf("%w: required activity must be positive, got %g", decay.ErrInvalidParameter, req.RequiredActivity)
	}
	if req.InjectionTime.Before(req.DeliveryTime) {
		return nil, fmt.Errorf("%w: injection time precedes delivery time", decay.ErrInvalidParameter)
	}

	stages := s.params.Stages
	sched := decay.BackwardSchedule(req.DeliveryTime, stages.DispatchLead, stages.Packaging, stages.QC, stages.Synthesis)

	productionActivity, err := decay.ProductionActivityWithOverage(
		req.RequiredActivity,
		iso.HalfLifeMinutes,
		req.InjectionTime,
		sched.SynthesisStart,
		s.params.OveragePercent,
	)
	if err != nil {
		return nil, fmt.Errorf("compute production activity: %w", err)
	}

	plan := &ProductionPlan{
		Isotope:            iso,
		Schedule:           sched,
		RequiredActivity:   req.RequiredActivity,
		ProductionActivity: productionActivity,
		OveragePercent:     s.params.OveragePercent,
		WithinShelfLife:    decay.IsWithinShelfLife(sched.SynthesisStart, req.InjectionTime, s.params.ShelfLifeMinutes),
	}

	s.logger.Info("Production plan computed",
		"isotope", iso.Symbol,
		"synthesis_start", sched.SynthesisStart.Format(time.RFC3339),
		"production_activity", fmt.Sprintf("%.2f", productionActivity),
		"within_shelf_life", plan.WithinShelfLife,
	)
	return plan, nil
}
