package approval

import (
	"errors"
	"fmt"
)

// ErrInvalidDefinition is returned when a workflow definition cannot be
// driven by the engine.
var ErrInvalidDefinition = errors.New("invalid workflow definition")

// Validate checks that a definition has at least one step, that step orders
// start at 1 and are contiguous, and that every approver role is known.
func (d *WorkflowDefinition) Validate() error {
	if len(d.Steps) == 0 {
		return fmt.Errorf("%w: %q has no steps", ErrInvalidDefinition, d.Name)
	}
	if !d.EntityKind.IsValid() {
		return fmt.Errorf("%w: %q has unknown entity kind %q", ErrInvalidDefinition, d.Name, d.EntityKind)
	}

	seen := make(map[int]bool, len(d.Steps))
	for _, s := range d.Steps {
		if !s.ApproverRole.IsValid() {
			return fmt.Errorf("%w: %q step %d has unknown role %q", ErrInvalidDefinition, d.Name, s.StepOrder, s.ApproverRole)
		}
		if seen[s.StepOrder] {
			return fmt.Errorf("%w: %q has duplicate step order %d", ErrInvalidDefinition, d.Name, s.StepOrder)
		}
		seen[s.StepOrder] = true
	}
	for order := 1; order <= len(d.Steps); order++ {
		if !seen[order] {
			return fmt.Errorf("%w: %q is missing step order %d", ErrInvalidDefinition, d.Name, order)
		}
	}
	return nil
}
