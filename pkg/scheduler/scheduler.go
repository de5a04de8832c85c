// Package scheduler hosts the engine event loop: it consumes trigger events
// from the bus, polls time-based schedules, and hands matched workflows to
// the executor. One scheduler instance owns the in-flight set that makes
// trigger delivery idempotent.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/cascadehq/cascade/pkg/eventbus"
	"github.com/cascadehq/cascade/pkg/events"
	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/store"
	"github.com/cascadehq/cascade/pkg/tracer"
	"github.com/cascadehq/cascade/pkg/workflow"
)

const DefaultTickInterval = 60 * time.Second

var ErrWorkflowInFlight = fmt.Errorf("workflow has executions in flight")

type Scheduler struct {
	engineID     string
	store        store.Store
	matcher      *workflow.TriggerMatcher
	executor     *workflow.Executor
	bus          eventbus.EventBus
	inFlight     *InFlightSet
	tickInterval time.Duration
	tracer       trace.Tracer
	logger       *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(
	engineID string,
	st store.Store,
	matcher *workflow.TriggerMatcher,
	executor *workflow.Executor,
	bus eventbus.EventBus,
	inFlight *InFlightSet,
	tickInterval time.Duration,
	tr trace.Tracer,
	logger *slog.Logger,
) *Scheduler {
	if tickInterval <= 0 {
		tickInterval = DefaultTickInterval
	}

	if tr == nil {
		tr = noop.NewTracerProvider().Tracer("cascade-scheduler")
	}

	return &Scheduler{
		engineID:     engineID,
		store:        st,
		matcher:      matcher,
		executor:     executor,
		bus:          bus,
		inFlight:     inFlight,
		tickInterval: tickInterval,
		tracer:       tr,
		logger:       logger.With("module", "scheduler", "engine_id", engineID),
	}
}

// Start subscribes to trigger events and launches the schedule ticker. It
// returns once both loops are running; Stop shuts them down.
func (s *Scheduler) Start(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)

	s.bus.Handle(events.TriggerReceivedEvent, func(ctx context.Context, event any) error {
		triggerEvent, ok := event.(events.TriggerEvent)
		if !ok {
			if ptr, isPtr := event.(*events.TriggerEvent); isPtr {
				triggerEvent = *ptr
			} else {
				return fmt.Errorf("unexpected trigger event payload: %T", event)
			}
		}

		return s.HandleTriggerEvent(ctx, triggerEvent)
	})

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		if err := s.bus.Subscribe(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error("Event bus subscription ended", "error", err)
		}
	}()

	s.wg.Add(1)

	go s.runTicker(ctx)

	s.logger.Info("Scheduler started", "tick_interval", s.tickInterval)

	return nil
}

// Stop cancels the loops and waits for in-flight executions to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}

	s.wg.Wait()
	s.logger.Info("Scheduler stopped")
}

// HandleTriggerEvent matches one trigger event against active workflows of
// its type and submits an execution per match. Duplicate deliveries of the
// same event collapse onto a single execution.
func (s *Scheduler) HandleTriggerEvent(ctx context.Context, event events.TriggerEvent) error {
	ctx, span := tracer.StartSpan(ctx, s.tracer, "scheduler.handle_trigger",
		attribute.String(tracer.EventIDKey, event.ID),
		attribute.String(tracer.TriggerTypeKey, string(event.Type)),
	)
	defer span.End()

	definitions, err := s.store.ListActiveDefinitions(ctx, event.Type)
	if err != nil {
		tracer.SetError(span, err)

		return fmt.Errorf("failed to list active workflows: %w", err)
	}

	matched := s.matcher.Match(event, definitions)
	for _, def := range matched {
		s.submit(ctx, def.Snapshot(), event)
	}

	return nil
}

// ExecuteWorkflow runs a workflow immediately on behalf of an operator. It
// bypasses trigger matching but still goes through the idempotency check,
// and runs synchronously so the caller gets the finished execution record.
func (s *Scheduler) ExecuteWorkflow(ctx context.Context, workflowID string, payload map[string]any) (*models.WorkflowExecution, error) {
	def, err := s.store.GetDefinition(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	event := events.TriggerEvent{
		ID:        uuid.New().String(),
		Type:      models.TriggerTypeManual,
		Source:    "api",
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}

	execution := models.NewWorkflowExecution(def.ID, event.ID)

	if !s.inFlight.TryAdd(execution.ID, def.ID) {
		return nil, fmt.Errorf("execution %s already in flight", execution.ID)
	}
	defer s.inFlight.Remove(execution.ID)

	s.runExecution(ctx, def.Snapshot(), execution, event)

	return execution, nil
}

// Pause deactivates a workflow so it stops matching new trigger events.
// Executions already in flight run to completion.
func (s *Scheduler) Pause(ctx context.Context, workflowID string) error {
	return s.setActive(ctx, workflowID, false)
}

// Resume reactivates a paused workflow.
func (s *Scheduler) Resume(ctx context.Context, workflowID string) error {
	return s.setActive(ctx, workflowID, true)
}

// Delete removes a workflow definition. It is rejected while any execution
// of the workflow is in flight; executions themselves are kept for audit.
func (s *Scheduler) Delete(ctx context.Context, workflowID string) error {
	if s.inFlight.HasWorkflow(workflowID) {
		return fmt.Errorf("%w: %s", ErrWorkflowInFlight, workflowID)
	}

	if err := s.store.DeleteDefinition(ctx, workflowID); err != nil {
		return err
	}

	s.logger.Info("Workflow deleted", "workflow_id", workflowID)

	return nil
}

func (s *Scheduler) setActive(ctx context.Context, workflowID string, active bool) error {
	def, err := s.store.GetDefinition(ctx, workflowID)
	if err != nil {
		return err
	}

	if def.Active == active {
		return nil
	}

	def.Active = active
	def.UpdatedAt = time.Now().UTC()

	if err := s.saveDefinitionWithRetry(ctx, def); err != nil {
		return fmt.Errorf("failed to save workflow %s: %w", workflowID, err)
	}

	base := events.BaseEvent{
		ID:         s.bus.GenerateID(),
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
		EngineID:   s.engineID,
	}

	var event eventbus.Event

	if active {
		base.Type = events.WorkflowResumedEvent
		event = events.WorkflowResumed{BaseEvent: base}

		s.logger.Info("Workflow resumed", "workflow_id", workflowID)
	} else {
		base.Type = events.WorkflowPausedEvent
		event = events.WorkflowPaused{BaseEvent: base}

		s.logger.Info("Workflow paused", "workflow_id", workflowID)
	}

	if err := s.bus.Publish(ctx, workflowID, event); err != nil {
		s.logger.Warn("Failed to publish workflow state event", "error", err)
	}

	return nil
}

// submit claims the execution ID and runs the workflow in its own goroutine.
// A claim that fails, or an execution record that already exists, means this
// workflow/event pair was already handled.
func (s *Scheduler) submit(ctx context.Context, def *models.WorkflowDefinition, event events.TriggerEvent) {
	execution := models.NewWorkflowExecution(def.ID, event.ID)

	if !s.inFlight.TryAdd(execution.ID, def.ID) {
		s.logger.Debug("Duplicate trigger dropped, execution in flight",
			"execution_id", execution.ID)

		return
	}

	if existing, err := s.store.GetExecution(ctx, execution.ID); err == nil && existing != nil {
		s.inFlight.Remove(execution.ID)
		s.logger.Debug("Duplicate trigger dropped, execution already recorded",
			"execution_id", execution.ID,
			"status", existing.Status)

		return
	}

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		defer s.inFlight.Remove(execution.ID)

		s.runExecution(ctx, def, execution, event)
	}()
}

func (s *Scheduler) runExecution(ctx context.Context, def *models.WorkflowDefinition, execution *models.WorkflowExecution, event events.TriggerEvent) {
	ctx, span := tracer.StartSpan(ctx, s.tracer, "scheduler.run_execution",
		attribute.String(tracer.WorkflowIDKey, def.ID),
		attribute.String(tracer.ExecutionIDKey, execution.ID),
		attribute.String(tracer.TriggerTypeKey, string(event.Type)),
		attribute.String(tracer.EngineIDKey, s.engineID),
	)
	defer span.End()

	result := s.executor.Run(ctx, def, execution, event)
	if !result.Success {
		tracer.SetError(span, fmt.Errorf("%s", result.Error))
	}
}

func (s *Scheduler) runTicker(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Tick(ctx, now.UTC())
		}
	}
}

// Tick evaluates every active time-based workflow's schedule and fires a
// synthetic trigger event for each one that is due.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) {
	definitions, err := s.store.ListActiveDefinitions(ctx, models.TriggerTypeTimeBased)
	if err != nil {
		s.logger.Error("Failed to list time-based workflows", "error", err)

		return
	}

	for _, def := range definitions {
		if def.Schedule == nil || !def.Schedule.IsDue(def.LastTriggeredAt, now) {
			continue
		}

		event := events.TriggerEvent{
			ID:        fmt.Sprintf("tick-%s-%d", def.ID, now.Unix()),
			Type:      models.TriggerTypeTimeBased,
			Source:    "scheduler",
			Payload: map[string]any{
				"scheduled_at": now.Format(time.RFC3339),
			},
			Timestamp: now,
		}

		s.logger.Info("Schedule due, firing workflow",
			"workflow_id", def.ID,
			"event_id", event.ID)

		s.submit(ctx, def.Snapshot(), event)

		// Advance last_triggered before the execution finishes, so a run
		// that outlives the tick interval cannot fire again next tick.
		if err := s.touchLastTriggered(ctx, def.ID, now); err != nil {
			s.logger.Warn("Failed to update last triggered timestamp",
				"workflow_id", def.ID,
				"error", err)
		}
	}
}

func (s *Scheduler) touchLastTriggered(ctx context.Context, workflowID string, at time.Time) error {
	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(100*time.Millisecond))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := s.store.UpdateDefinitionLastTriggered(ctx, workflowID, at); err != nil {
			return retry.RetryableError(err)
		}

		return nil
	})
}

func (s *Scheduler) saveDefinitionWithRetry(ctx context.Context, def *models.WorkflowDefinition) error {
	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(100*time.Millisecond))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := s.store.SaveDefinition(ctx, def); err != nil {
			return retry.RetryableError(err)
		}

		return nil
	})
}
