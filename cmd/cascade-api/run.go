package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"

	"github.com/cascadehq/cascade/pkg/cmd"
	"github.com/cascadehq/cascade/pkg/connectors"
	"github.com/cascadehq/cascade/pkg/log"
	"github.com/cascadehq/cascade/pkg/scheduler"
	"github.com/cascadehq/cascade/pkg/tracer"
	"github.com/cascadehq/cascade/pkg/workflow"
)

// RunAPI starts the management API with an embedded scheduler, so a single
// process can serve the API and run workflows against an in-process bus.
func RunAPI(ctx context.Context, command *cli.Command) error {
	engineID := fmt.Sprintf("api-%s", uuid.New().String()[:8])

	logger := log.WithModule("cascade-api").With("engine_id", engineID)
	logger.Info("Initializing Cascade API")

	tr, err := tracer.NewTracer(ctx, "cascade-api")
	if err != nil {
		logger.Warn("Tracing disabled, failed to initialize tracer", "error", err)
		tr = nil
	}

	st, err := cmd.NewStore(command.String("database-url"), logger)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}

	defer func() {
		if err := st.Close(ctx); err != nil {
			logger.Error("Failed to close store", "error", err)
		}
	}()

	bus, err := cmd.NewEventBus(command.String("event-bus"), "cascade-api", logger)
	if err != nil {
		return fmt.Errorf("failed to create event bus: %w", err)
	}

	defer func() {
		if err := bus.Close(); err != nil {
			logger.Error("Failed to close event bus", "error", err)
		}
	}()

	conns := connectors.NewRegistry()
	connectors.RegisterAll(conns, logger)

	registry := cmd.NewRegistry(logger, conns)
	dispatcher := workflow.NewDispatcher(registry, logger)
	executor := workflow.NewExecutor(st, dispatcher, bus, logger)
	matcher := workflow.NewTriggerMatcher(logger)

	sched := scheduler.NewScheduler(
		engineID,
		st,
		matcher,
		executor,
		bus,
		scheduler.NewInFlightSet(),
		command.Duration("tick-interval"),
		tr,
		logger,
	)

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	api := NewAPI(logger, st, sched)

	if err := api.Start(command.Int("port")); err != nil {
		return fmt.Errorf("api server stopped: %w", err)
	}

	return nil
}
