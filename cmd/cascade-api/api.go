package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/cascadehq/cascade/pkg/scheduler"
	"github.com/cascadehq/cascade/pkg/store"
	"github.com/cascadehq/cascade/pkg/web"
	"github.com/cascadehq/cascade/pkg/workflow"
)

type API struct {
	logger    *slog.Logger
	store     store.Store
	scheduler *scheduler.Scheduler
	validate  *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	st store.Store,
	sched *scheduler.Scheduler,
) *API {
	return &API{
		logger:    logger,
		store:     st,
		scheduler: sched,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	analytics := workflow.NewAnalyticsService(a.store)
	handlers := web.NewAPIHandlers(a.store, a.scheduler, analytics, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Cascade API")
	})

	w := app.Group("/workflows")
	w.Get("/", handlers.ListWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Patch("/:id", handlers.UpdateWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)
	w.Post("/:id/execute", handlers.ExecuteWorkflow)
	w.Post("/:id/pause", handlers.PauseWorkflow)
	w.Post("/:id/resume", handlers.ResumeWorkflow)
	w.Get("/:id/analytics", handlers.GetWorkflowAnalytics)
	w.Get("/:id/executions", handlers.ListWorkflowExecutions)

	app.Get("/executions/:id", handlers.GetExecution)
	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
