package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cascadehq/cascade/pkg/eventbus"
	"github.com/cascadehq/cascade/pkg/events"
	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/registry"
	"github.com/cascadehq/cascade/pkg/scheduler"
	"github.com/cascadehq/cascade/pkg/store/memory"
	"github.com/cascadehq/cascade/pkg/web"
	"github.com/cascadehq/cascade/pkg/workflow"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

type noopBus struct{}

func (noopBus) Publish(_ context.Context, _ string, _ eventbus.Event) error { return nil }
func (noopBus) Handle(_ events.EventType, _ eventbus.EventHandler)          {}
func (noopBus) Subscribe(ctx context.Context) error {
	<-ctx.Done()

	return ctx.Err()
}
func (noopBus) Close() error       { return nil }
func (noopBus) GenerateID() string { return uuid.New().String() }

func setupTestApp(t *testing.T) (*fiber.App, *memory.Store) {
	t.Helper()

	st := memory.NewStore()

	logger := testLogger()
	reg := registry.NewRegistry(logger)
	dispatcher := workflow.NewDispatcher(reg, logger)
	executor := workflow.NewExecutor(st, dispatcher, nil, logger)
	matcher := workflow.NewTriggerMatcher(logger)

	sched := scheduler.NewScheduler(
		"engine-test",
		st,
		matcher,
		executor,
		noopBus{},
		scheduler.NewInFlightSet(),
		time.Minute,
		nil,
		logger,
	)

	analytics := workflow.NewAnalyticsService(st)
	validate := validator.New(validator.WithRequiredStructEnabled())
	handlers := web.NewAPIHandlers(st, sched, analytics, validate)

	app := fiber.New()

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

	return app, st
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req
}

func seedWorkflow(t *testing.T, st *memory.Store, def *models.WorkflowDefinition) {
	t.Helper()
	require.NoError(t, st.SaveDefinition(context.Background(), def))
}

func TestCreateWorkflow(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/workflows/", web.CreateWorkflowRequest{
		Name:        "Angry customer escalation",
		Active:      true,
		TriggerType: models.TriggerTypeSentimentAnalysis,
		TriggerConditions: []models.Condition{
			{Field: "sentiment_score", Operator: models.OperatorLessThan, Value: -0.7},
		},
		Steps: []models.Step{
			{ID: "escalate", ActionType: models.ActionTypeEscalateToHuman},
		},
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var created models.WorkflowDefinition
	require.NoError(t, json.Unmarshal(body, &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Angry customer escalation", created.Name)
	assert.True(t, created.Active)
}

func TestCreateWorkflowValidation(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/workflows/", web.CreateWorkflowRequest{
		Name: "x",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetWorkflowNotFound(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/workflows/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestExecuteWorkflow(t *testing.T) {
	app, st := setupTestApp(t)

	seedWorkflow(t, st, &models.WorkflowDefinition{
		ID:          "wf-1",
		Name:        "Manual workflow",
		Active:      true,
		TriggerType: models.TriggerTypeManual,
	})

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/workflows/wf-1/execute", web.ExecuteWorkflowRequest{
		Payload: map[string]any{"reason": "test"},
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var execution models.WorkflowExecution
	require.NoError(t, json.Unmarshal(body, &execution))
	assert.Equal(t, models.ExecutionStatusCompleted, execution.Status)
	assert.Equal(t, "wf-1", execution.WorkflowID)
}

func TestPauseResumeWorkflow(t *testing.T) {
	app, st := setupTestApp(t)

	seedWorkflow(t, st, &models.WorkflowDefinition{
		ID:          "wf-1",
		Name:        "Pausable",
		Active:      true,
		TriggerType: models.TriggerTypeChatMessage,
	})

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/workflows/wf-1/pause", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	def, err := st.GetDefinition(context.Background(), "wf-1")
	require.NoError(t, err)
	assert.False(t, def.Active)

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/workflows/wf-1/resume", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	def, err = st.GetDefinition(context.Background(), "wf-1")
	require.NoError(t, err)
	assert.True(t, def.Active)
}

func TestDeleteWorkflow(t *testing.T) {
	app, st := setupTestApp(t)

	seedWorkflow(t, st, &models.WorkflowDefinition{
		ID:          "wf-1",
		Name:        "Removable",
		TriggerType: models.TriggerTypeManual,
	})

	resp, err := app.Test(jsonRequest(t, http.MethodDelete, "/workflows/wf-1", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, err = st.GetDefinition(context.Background(), "wf-1")
	assert.Error(t, err)
}

func TestUpdateWorkflowPartial(t *testing.T) {
	app, st := setupTestApp(t)

	seedWorkflow(t, st, &models.WorkflowDefinition{
		ID:          "wf-1",
		Name:        "Old name",
		TriggerType: models.TriggerTypeManual,
	})

	newName := "New name"

	resp, err := app.Test(jsonRequest(t, http.MethodPatch, "/workflows/wf-1", web.UpdateWorkflowRequest{
		Name: &newName,
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	def, err := st.GetDefinition(context.Background(), "wf-1")
	require.NoError(t, err)
	assert.Equal(t, "New name", def.Name)
	assert.Equal(t, models.TriggerTypeManual, def.TriggerType, "untouched fields survive a partial update")
}

func TestWorkflowAnalyticsEndpoint(t *testing.T) {
	app, st := setupTestApp(t)
	ctx := context.Background()

	seedWorkflow(t, st, &models.WorkflowDefinition{
		ID:          "wf-1",
		Name:        "Analyzed",
		TriggerType: models.TriggerTypeManual,
	})

	completed := models.NewWorkflowExecution("wf-1", "e1")
	completed.MarkCompleted(nil)
	require.NoError(t, st.SaveExecution(ctx, completed))

	failed := models.NewWorkflowExecution("wf-1", "e2")
	failed.MarkFailed("boom")
	require.NoError(t, st.SaveExecution(ctx, failed))

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/workflows/wf-1/analytics", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var analytics workflow.Analytics
	require.NoError(t, json.Unmarshal(body, &analytics))
	assert.Equal(t, 2, analytics.Total)
	assert.Equal(t, 1, analytics.Successful)
	assert.Equal(t, 1, analytics.Failed)
	assert.InDelta(t, 0.5, analytics.SuccessRate, 0.0001)
}

func TestGetExecution(t *testing.T) {
	app, st := setupTestApp(t)

	execution := models.NewWorkflowExecution("wf-1", "evt-1")
	require.NoError(t, st.SaveExecution(context.Background(), execution))

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/executions/wf-1-evt-1", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/executions/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
