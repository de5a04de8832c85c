package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cascadehq/cascade/pkg/conditions"
	"github.com/cascadehq/cascade/pkg/eventbus"
	"github.com/cascadehq/cascade/pkg/events"
	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/store"
)

// Executor runs the ordered steps of one workflow instance, threading the
// execution context, applying step conditions and required/optional
// semantics. It never retries a failed step; retry policy lives with the
// scheduler.
type Executor struct {
	store      store.Store
	dispatcher *Dispatcher
	publisher  eventbus.EventPublisher
	logger     *slog.Logger
}

func NewExecutor(st store.Store, dispatcher *Dispatcher, publisher eventbus.EventPublisher, logger *slog.Logger) *Executor {
	return &Executor{
		store:      st,
		dispatcher: dispatcher,
		publisher:  publisher,
		logger:     logger.With("module", "step_executor"),
	}
}

// Run drives the execution through pending -> running -> completed|failed.
// The definition must already be a snapshot; the executor is the only writer
// of the execution record.
func (e *Executor) Run(ctx context.Context, def *models.WorkflowDefinition, execution *models.WorkflowExecution, event events.TriggerEvent) models.ActionResult {
	logger := e.logger.With(
		"workflow_id", def.ID,
		"execution_id", execution.ID,
	)

	executionCtx := models.NewExecutionContext(execution.ID, def.ID, event.Payload, def.Variables)

	execution.MarkRunning()
	execution.AppendLog("execution started", map[string]any{
		"trigger_type": string(event.Type),
		"steps":        len(def.Steps),
	})

	if err := e.persist(ctx, execution); err != nil {
		logger.Error("Failed to persist execution start", "error", err)
		execution.MarkFailed(fmt.Sprintf("failed to persist execution: %v", err))

		return models.ActionResult{Success: false, Error: execution.ErrorMessage}
	}

	e.publishStarted(ctx, def, execution, event)

	start := time.Now()
	stepsExecuted := 0
	result := models.ActionResult{Success: true, Message: "workflow completed"}

	for _, step := range def.Steps {
		stepLogger := logger.With("step_id", step.ID, "action_type", step.ActionType)

		passed, reason := conditions.EvaluateWithReason(step.Conditions, executionCtx.AsMap())
		if !passed {
			stepLogger.Info("Step skipped", "reason", reason)
			execution.AppendLog(fmt.Sprintf("step %s skipped", step.DisplayName()), map[string]any{
				"step_id": step.ID,
				"reason":  reason,
			})

			continue
		}

		stepResult := e.dispatcher.Execute(ctx, step, executionCtx)
		stepsExecuted++

		executionCtx.RecordResult(step.ID, stepResult)
		execution.AppendLog(stepLogMessage(step, stepResult), stepLogData(step, stepResult))

		if stepResult.Success {
			stepLogger.Info("Step completed")

			continue
		}

		if step.IsRequired() {
			stepLogger.Error("Required step failed", "error", stepResult.Error)

			execution.MarkFailed(fmt.Sprintf("step %s failed: %s", step.DisplayName(), stepResult.Error))
			result = models.ActionResult{Success: false, Error: execution.ErrorMessage}

			break
		}

		stepLogger.Warn("Optional step failed, continuing", "error", stepResult.Error)
	}

	if result.Success {
		execution.MarkCompleted(map[string]any{
			"steps_total":    len(def.Steps),
			"steps_executed": stepsExecuted,
		})
		execution.AppendLog("execution completed", nil)
	}

	if err := e.persist(ctx, execution); err != nil {
		logger.Error("Failed to persist execution result", "error", err)
	}

	e.publishFinished(ctx, def, execution, stepsExecuted, time.Since(start))
	logger.Info("Execution finished", "status", execution.Status, "steps_executed", stepsExecuted)

	return result
}

func (e *Executor) persist(ctx context.Context, execution *models.WorkflowExecution) error {
	return e.store.SaveExecution(ctx, execution)
}

func (e *Executor) publishStarted(ctx context.Context, def *models.WorkflowDefinition, execution *models.WorkflowExecution, event events.TriggerEvent) {
	if e.publisher == nil {
		return
	}

	started := events.ExecutionStarted{
		BaseEvent: events.BaseEvent{
			ID:         execution.ID,
			Type:       events.ExecutionStartedEvent,
			Timestamp:  time.Now().UTC(),
			WorkflowID: def.ID,
		},
		ExecutionID: execution.ID,
		TriggerType: event.Type,
		TriggerData: event.Payload,
	}

	if err := e.publisher.Publish(ctx, def.ID, started); err != nil {
		e.logger.Warn("Failed to publish execution started event", "error", err)
	}
}

func (e *Executor) publishFinished(ctx context.Context, def *models.WorkflowDefinition, execution *models.WorkflowExecution, stepsExecuted int, duration time.Duration) {
	if e.publisher == nil {
		return
	}

	base := events.BaseEvent{
		ID:         execution.ID,
		Timestamp:  time.Now().UTC(),
		WorkflowID: def.ID,
	}

	var event eventbus.Event

	if execution.Status == models.ExecutionStatusCompleted {
		base.Type = events.ExecutionCompletedEvent
		event = events.ExecutionCompleted{
			BaseEvent:     base,
			ExecutionID:   execution.ID,
			StepsExecuted: stepsExecuted,
			Result:        execution.Result,
			DurationMs:    duration.Milliseconds(),
		}
	} else {
		base.Type = events.ExecutionFailedEvent
		event = events.ExecutionFailed{
			BaseEvent:     base,
			ExecutionID:   execution.ID,
			StepsExecuted: stepsExecuted,
			Error:         execution.ErrorMessage,
			DurationMs:    duration.Milliseconds(),
		}
	}

	if err := e.publisher.Publish(ctx, def.ID, event); err != nil {
		e.logger.Warn("Failed to publish execution finished event", "error", err)
	}
}

func stepLogMessage(step models.Step, result models.ActionResult) string {
	if result.Success {
		return fmt.Sprintf("step %s completed", step.DisplayName())
	}

	return fmt.Sprintf("step %s failed", step.DisplayName())
}

func stepLogData(step models.Step, result models.ActionResult) map[string]any {
	data := map[string]any{
		"step_id": step.ID,
		"success": result.Success,
	}

	if result.Error != "" {
		data["error"] = result.Error
	}

	if result.Data != nil {
		data["data"] = result.Data
	}

	return data
}
