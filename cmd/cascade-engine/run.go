package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"

	"github.com/cascadehq/cascade/pkg/cmd"
	"github.com/cascadehq/cascade/pkg/connectors"
	"github.com/cascadehq/cascade/pkg/log"
	"github.com/cascadehq/cascade/pkg/scheduler"
	"github.com/cascadehq/cascade/pkg/tracer"
	"github.com/cascadehq/cascade/pkg/workflow"
)

func RunEngine(ctx context.Context, command *cli.Command) error {
	engineID := command.String("engine-id")
	if engineID == "" {
		engineID = fmt.Sprintf("engine-%s", uuid.New().String()[:8])
	}

	logger := log.WithModule("cascade-engine").With("engine_id", engineID)
	logger.Info("Initializing Cascade engine")

	tr, err := tracer.NewTracer(ctx, "cascade-engine")
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

	bus, err := cmd.NewEventBus(command.String("event-bus"), "cascade-engine", logger)
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

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-ctx.Done():
	case sig := <-sigCh:
		logger.Info("Shutting down", "signal", sig.String())
	}

	sched.Stop()

	return nil
}
