package web

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/scheduler"
	"github.com/cascadehq/cascade/pkg/store"
	"github.com/cascadehq/cascade/pkg/workflow"
)

type APIHandlers struct {
	store     store.Store
	scheduler *scheduler.Scheduler
	analytics *workflow.AnalyticsService
	validator *validator.Validate
}

func NewAPIHandlers(
	st store.Store,
	sched *scheduler.Scheduler,
	analytics *workflow.AnalyticsService,
	validate *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		store:     st,
		scheduler: sched,
		analytics: analytics,
		validator: validate,
	}
}

func (h *APIHandlers) ListWorkflows(c fiber.Ctx) error {
	definitions, err := h.store.ListDefinitions(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"workflows":   definitions,
		"total_count": len(definitions),
	})
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	def, err := h.store.GetDefinition(c.Context(), c.Params("id"))
	if err != nil {
		return handleEngineError(c, err)
	}

	return c.JSON(def)
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var req CreateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	now := time.Now().UTC()
	def := &models.WorkflowDefinition{
		ID:                uuid.New().String(),
		Name:              req.Name,
		Active:            req.Active,
		TriggerType:       req.TriggerType,
		TriggerConditions: req.TriggerConditions,
		TriggerSettings:   req.TriggerSettings,
		Schedule:          req.Schedule,
		Variables:         req.Variables,
		Steps:             req.Steps,
		Owner:             req.Owner,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := def.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.store.SaveDefinition(c.Context(), def); err != nil {
		return internalError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(def)
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	def, err := h.store.GetDefinition(c.Context(), c.Params("id"))
	if err != nil {
		return handleEngineError(c, err)
	}

	var req UpdateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if req.Name != nil {
		def.Name = *req.Name
	}

	if req.TriggerConditions != nil {
		def.TriggerConditions = req.TriggerConditions
	}

	if req.TriggerSettings != nil {
		def.TriggerSettings = req.TriggerSettings
	}

	if req.Schedule != nil {
		def.Schedule = req.Schedule
	}

	if req.Variables != nil {
		def.Variables = req.Variables
	}

	if req.Steps != nil {
		def.Steps = req.Steps
	}

	def.UpdatedAt = time.Now().UTC()

	if err := def.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.store.SaveDefinition(c.Context(), def); err != nil {
		return internalError(c, err)
	}

	return c.JSON(def)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	if err := h.scheduler.Delete(c.Context(), c.Params("id")); err != nil {
		return handleEngineError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) ExecuteWorkflow(c fiber.Ctx) error {
	var req ExecuteWorkflowRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "Invalid JSON format")
		}
	}

	execution, err := h.scheduler.ExecuteWorkflow(c.Context(), c.Params("id"), req.Payload)
	if err != nil {
		return handleEngineError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(execution)
}

func (h *APIHandlers) PauseWorkflow(c fiber.Ctx) error {
	if err := h.scheduler.Pause(c.Context(), c.Params("id")); err != nil {
		return handleEngineError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) ResumeWorkflow(c fiber.Ctx) error {
	if err := h.scheduler.Resume(c.Context(), c.Params("id")); err != nil {
		return handleEngineError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) GetWorkflowAnalytics(c fiber.Ctx) error {
	id := c.Params("id")

	if _, err := h.store.GetDefinition(c.Context(), id); err != nil {
		return handleEngineError(c, err)
	}

	timeRange := time.Duration(0)

	if rangeStr := c.Query("range"); rangeStr != "" {
		parsed, err := time.ParseDuration(rangeStr)
		if err != nil {
			return badRequest(c, "Invalid range: "+err.Error())
		}

		timeRange = parsed
	}

	analytics, err := h.analytics.ForWorkflow(c.Context(), id, timeRange)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(analytics)
}

func (h *APIHandlers) ListWorkflowExecutions(c fiber.Ctx) error {
	id := c.Params("id")

	if _, err := h.store.GetDefinition(c.Context(), id); err != nil {
		return handleEngineError(c, err)
	}

	since := time.Time{}

	if sinceStr := c.Query("since"); sinceStr != "" {
		parsed, err := time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			return badRequest(c, "Invalid since timestamp: "+err.Error())
		}

		since = parsed
	}

	executions, err := h.store.ListExecutions(c.Context(), id, since)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"executions":  executions,
		"total_count": len(executions),
	})
}

func (h *APIHandlers) GetExecution(c fiber.Ctx) error {
	execution, err := h.store.GetExecution(c.Context(), c.Params("id"))
	if err != nil {
		return handleEngineError(c, err)
	}

	return c.JSON(execution)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	status := "healthy"
	message := "Cascade API is healthy"
	httpStatus := http.StatusOK

	storeErr := h.store.HealthCheck(c.Context())
	if storeErr != nil {
		status = "unhealthy"
		message = "Cascade API is unhealthy"
		httpStatus = http.StatusInternalServerError
	}

	checkers := fiber.Map{"store": "ok"}
	if storeErr != nil {
		checkers["store"] = storeErr.Error()
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":    status,
		"message":   message,
		"checkers":  checkers,
		"timestamp": time.Now().UTC(),
	})
}
