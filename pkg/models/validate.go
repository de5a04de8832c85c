package models

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the definition's structural invariants: struct tags, the
// schedule spec for time-based triggers, and per-step configuration.
func (d *WorkflowDefinition) Validate() error {
	if err := structValidator.Struct(d); err != nil {
		return fmt.Errorf("invalid workflow definition %q: %w", d.ID, err)
	}

	if d.TriggerType == TriggerTypeTimeBased {
		if d.Schedule == nil {
			return fmt.Errorf("workflow %q: time_based trigger requires a schedule", d.ID)
		}

		if err := d.Schedule.Validate(); err != nil {
			return fmt.Errorf("workflow %q: %w", d.ID, err)
		}
	}

	for _, step := range d.Steps {
		if err := structValidator.Struct(step); err != nil {
			return fmt.Errorf("workflow %q step %q: %w", d.ID, step.ID, err)
		}
	}

	return nil
}
