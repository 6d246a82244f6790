// Package decay implements the radioactive decay mathematics used for
// activity back-calculation and production scheduling. All functions are
// pure and safe for concurrent use.
package decay

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidParameter is returned when a numeric input is outside the
// physical domain (e.g. a non-positive half-life).
var ErrInvalidParameter = errors.New("invalid parameter")

// Constant returns the decay constant λ = ln(2)/halfLife for a half-life
// expressed in minutes.
func Constant(halfLifeMinutes float64) (float64, error) {
	if halfLifeMinutes <= 0 {
		return 0, fmt.Errorf("%w: half-life must be positive, got %g", ErrInvalidParameter, halfLifeMinutes)
	}
	return math.Ln2 / halfLifeMinutes, nil
}

// DecayedActivity returns the activity remaining after elapsedMinutes of
// decay: initial · e^(−λ·elapsed).
func DecayedActivity(initial, halfLifeMinutes, elapsedMinutes float64) (float64, error) {
	lambda, err := Constant(halfLifeMinutes)
	if err != nil {
		return 0, err
	}
	return initial * math.Exp(-lambda*elapsedMinutes), nil
}

// RequiredInitialActivity returns the activity that must exist at production
// time so that exactly target remains after elapsedMinutes of decay. It is
// the exact inverse of DecayedActivity.
func RequiredInitialActivity(target, halfLifeMinutes, elapsedMinutes float64) (float64, error) {
	lambda, err := Constant(halfLifeMinutes)
	if err != nil {
		return 0, err
	}
	return target * math.Exp(lambda*elapsedMinutes), nil
}

// ElapsedMinutes returns the signed number of minutes between two instants.
// The result is negative when end precedes start; callers decide what a
// negative span means.
func ElapsedMinutes(start, end time.Time) float64 {
	return end.Sub(start).Minutes()
}

// IsWithinShelfLife reports whether targetTime falls inside the usable
// window after productionTime. The boundary is inclusive; a target before
// production is never within shelf life.
func IsWithinShelfLife(productionTime, targetTime time.Time, shelfLifeMinutes float64) bool {
	if targetTime.Before(productionTime) {
		return false
	}
	return ElapsedMinutes(productionTime, targetTime) <= shelfLifeMinutes
}

// ActivityAtTime returns the activity at targetTime given an activity
// calibrated at calibrationTime. A targetTime before calibration yields a
// higher activity (the decay curve extended backwards).
func ActivityAtTime(calibratedActivity float64, calibrationTime, targetTime time.Time, halfLifeMinutes float64) (float64, error) {
	return DecayedActivity(calibratedActivity, halfLifeMinutes, ElapsedMinutes(calibrationTime, targetTime))
}

// Schedule holds the stage start instants derived from a fixed delivery
// deadline by backward scheduling.
type Schedule struct {
	SynthesisStart time.Time `json:"synthesis_start"`
	QCStart        time.Time `json:"qc_start"`
	PackagingStart time.Time `json:"packaging_start"`
	DispatchTime   time.Time `json:"dispatch_time"`
	DeliveryTime   time.Time `json:"delivery_time"`
}

// BackwardSchedule derives the latest stage start instants that still meet
// deliveryTime, by successive subtraction of the stage durations. Short
// half-lives make starting any earlier than necessary wasteful, so the plan
// is anchored to the deadline, not to "now".
func BackwardSchedule(deliveryTime time.Time, dispatchLeadMinutes, packagingMinutes, qcMinutes, synthesisMinutes float64) Schedule {
	dispatch := deliveryTime.Add(-minutes(dispatchLeadMinutes))
	packaging := dispatch.Add(-minutes(packagingMinutes))
	qc := packaging.Add(-minutes(qcMinutes))
	synthesis := qc.Add(-minutes(synthesisMinutes))

	return Schedule{
		SynthesisStart: synthesis,
		QCStart:        qc,
		PackagingStart: packaging,
		DispatchTime:   dispatch,
		DeliveryTime:   deliveryTime,
	}
}

// ProductionActivityWithOverage returns the activity to produce at
// productionTime so that requiredActivity remains at injectionTime, plus an
// overage margin to absorb operational delay. The result strictly exceeds
// requiredActivity whenever injection follows production and the overage is
// positive.
func ProductionActivityWithOverage(requiredActivity, halfLifeMinutes float64, injectionTime, productionTime time.Time, overagePercent float64) (float64, error) {
	base, err := RequiredInitialActivity(requiredActivity, halfLifeMinutes, ElapsedMinutes(productionTime, injectionTime))
	if err != nil {
		return 0, err
	}
	return base * (1 + overagePercent/100), nil
}

func minutes(m float64) time.Duration {
	return time.Duration(m * float64(time.Minute))
}
