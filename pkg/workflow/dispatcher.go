package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/registry"
	"github.com/cascadehq/cascade/pkg/template"
)

// Dispatcher maps a step to its action and runs it. Every outcome is a
// uniform ActionResult: no action error, panic included, crosses this
// boundary.
type Dispatcher struct {
	registry *registry.Registry
	logger   *slog.Logger
}

func NewDispatcher(reg *registry.Registry, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		registry: reg,
		logger:   logger.With("module", "action_dispatcher"),
	}
}

// Execute renders the step's config against the execution context and
// dispatches it to the registered action.
func (d *Dispatcher) Execute(ctx context.Context, step models.Step, executionCtx *models.ExecutionContext) (result models.ActionResult) {
	defer func() {
		if recovered := recover(); recovered != nil {
			d.logger.Error("Action panicked",
				"step_id", step.ID,
				"action_type", step.ActionType,
				"panic", recovered)

			result = models.ActionResult{
				Success: false,
				Error:   fmt.Sprintf("action %s panicked: %v", step.ActionType, recovered),
			}
		}
	}()

	config, _ := template.RenderValue(step.Config, executionCtx).(map[string]any)
	if config == nil {
		config = map[string]any{}
	}

	action, err := d.registry.CreateAction(step.ActionType, config)
	if err != nil {
		return models.Failure(err)
	}

	logger := d.logger.With(
		"execution_id", executionCtx.ID,
		"step_id", step.ID,
		"action_type", step.ActionType,
	)

	data, err := action.Execute(ctx, executionCtx, logger)
	if err != nil {
		return models.Failure(err)
	}

	return models.ActionResult{
		Success: true,
		Message: fmt.Sprintf("%s completed", step.ActionType),
		Data:    data,
	}
}
