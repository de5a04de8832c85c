package file

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/store"
)

func TestNewStoreStripsScheme(t *testing.T) {
	st := NewStore("file:///tmp/cascade-data")
	assert.Equal(t, "/tmp/cascade-data", st.root)
}

func TestDefinitionRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := NewStore(t.TempDir())

	lastTriggered := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	def := &models.WorkflowDefinition{
		ID:          "wf-1",
		Name:        "File-backed workflow",
		Active:      true,
		TriggerType: models.TriggerTypeTimeBased,
		Schedule: &models.ScheduleSpec{
			Type:            models.ScheduleTypeInterval,
			IntervalMinutes: 30,
		},
		LastTriggeredAt: &lastTriggered,
		Steps: []models.Step{
			{ID: "s1", ActionType: models.ActionTypeWebhook, Config: map[string]any{"url": "https://example.com"}},
		},
	}

	require.NoError(t, st.SaveDefinition(ctx, def))

	got, err := st.GetDefinition(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, def.Name, got.Name)
	require.NotNil(t, got.Schedule)
	assert.Equal(t, 30, got.Schedule.IntervalMinutes)
	require.NotNil(t, got.LastTriggeredAt)
	assert.True(t, got.LastTriggeredAt.Equal(lastTriggered))

	_, err = st.GetDefinition(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrDefinitionNotFound)
}

func TestListDefinitionsEmptyRoot(t *testing.T) {
	st := NewStore(filepath.Join(t.TempDir(), "never-created"))

	defs, err := st.ListDefinitions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, defs)
}

func TestExecutionRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := NewStore(t.TempDir())

	execution := models.NewWorkflowExecution("wf-1", "evt-1")
	execution.AppendLog("execution started", map[string]any{"steps": float64(2)})
	execution.MarkCompleted(map[string]any{"steps_executed": float64(2)})

	require.NoError(t, st.SaveExecution(ctx, execution))

	got, err := st.GetExecution(ctx, execution.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusCompleted, got.Status)
	require.Len(t, got.Log, 1)
	assert.Equal(t, "execution started", got.Log[0].Message)
}

func TestListExecutionsFilters(t *testing.T) {
	ctx := context.Background()
	st := NewStore(t.TempDir())

	now := time.Now().UTC()

	old := models.NewWorkflowExecution("wf-1", "evt-old")
	old.StartedAt = now.Add(-48 * time.Hour)
	require.NoError(t, st.SaveExecution(ctx, old))

	recent := models.NewWorkflowExecution("wf-1", "evt-recent")
	recent.StartedAt = now.Add(-time.Hour)
	require.NoError(t, st.SaveExecution(ctx, recent))

	other := models.NewWorkflowExecution("wf-2", "evt-1")
	require.NoError(t, st.SaveExecution(ctx, other))

	executions, err := st.ListExecutions(ctx, "wf-1", time.Time{})
	require.NoError(t, err)
	assert.Len(t, executions, 2)

	executions, err = st.ListExecutions(ctx, "wf-1", now.Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, executions, 1)
	assert.Equal(t, "wf-1-evt-recent", executions[0].ID)
}

func TestUpdateDefinitionLastTriggered(t *testing.T) {
	ctx := context.Background()
	st := NewStore(t.TempDir())

	require.NoError(t, st.SaveDefinition(ctx, &models.WorkflowDefinition{
		ID: "wf-1", Name: "A", TriggerType: models.TriggerTypeTimeBased,
	}))

	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, st.UpdateDefinitionLastTriggered(ctx, "wf-1", at))

	def, err := st.GetDefinition(ctx, "wf-1")
	require.NoError(t, err)
	require.NotNil(t, def.LastTriggeredAt)
	assert.True(t, def.LastTriggeredAt.Equal(at))
}

func TestDeleteDefinition(t *testing.T) {
	ctx := context.Background()
	st := NewStore(t.TempDir())

	require.NoError(t, st.SaveDefinition(ctx, &models.WorkflowDefinition{
		ID: "wf-1", Name: "A", TriggerType: models.TriggerTypeManual,
	}))

	require.NoError(t, st.DeleteDefinition(ctx, "wf-1"))
	assert.ErrorIs(t, st.DeleteDefinition(ctx, "wf-1"), store.ErrDefinitionNotFound)
}
