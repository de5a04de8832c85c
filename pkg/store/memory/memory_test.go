package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/store"
)

func TestDefinitionRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := NewStore()

	def := &models.WorkflowDefinition{
		ID:          "wf-1",
		Name:        "Test workflow",
		Active:      true,
		TriggerType: models.TriggerTypeWebhook,
		Steps: []models.Step{
			{ID: "s1", ActionType: models.ActionTypeDelay, Config: map[string]any{"seconds": float64(1)}},
		},
	}

	require.NoError(t, st.SaveDefinition(ctx, def))

	got, err := st.GetDefinition(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, "Test workflow", got.Name)
	require.Len(t, got.Steps, 1)

	_, err = st.GetDefinition(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrDefinitionNotFound)
}

func TestGetDefinitionReturnsCopy(t *testing.T) {
	ctx := context.Background()
	st := NewStore()

	def := &models.WorkflowDefinition{
		ID:          "wf-1",
		Name:        "Original",
		TriggerType: models.TriggerTypeManual,
	}
	require.NoError(t, st.SaveDefinition(ctx, def))

	got, err := st.GetDefinition(ctx, "wf-1")
	require.NoError(t, err)

	got.Name = "Mutated"

	again, err := st.GetDefinition(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, "Original", again.Name)
}

func TestListActiveDefinitions(t *testing.T) {
	ctx := context.Background()
	st := NewStore()

	require.NoError(t, st.SaveDefinition(ctx, &models.WorkflowDefinition{
		ID: "a", Name: "A", Active: true, TriggerType: models.TriggerTypeWebhook,
	}))
	require.NoError(t, st.SaveDefinition(ctx, &models.WorkflowDefinition{
		ID: "b", Name: "B", Active: false, TriggerType: models.TriggerTypeWebhook,
	}))
	require.NoError(t, st.SaveDefinition(ctx, &models.WorkflowDefinition{
		ID: "c", Name: "C", Active: true, TriggerType: models.TriggerTypeManual,
	}))

	defs, err := st.ListActiveDefinitions(ctx, models.TriggerTypeWebhook)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "a", defs[0].ID)
}

func TestUpdateDefinitionLastTriggered(t *testing.T) {
	ctx := context.Background()
	st := NewStore()

	require.NoError(t, st.SaveDefinition(ctx, &models.WorkflowDefinition{
		ID: "wf-1", Name: "A", TriggerType: models.TriggerTypeTimeBased,
	}))

	at := time.Now().UTC()
	require.NoError(t, st.UpdateDefinitionLastTriggered(ctx, "wf-1", at))

	def, err := st.GetDefinition(ctx, "wf-1")
	require.NoError(t, err)
	require.NotNil(t, def.LastTriggeredAt)
	assert.True(t, def.LastTriggeredAt.Equal(at))

	assert.ErrorIs(t, st.UpdateDefinitionLastTriggered(ctx, "missing", at), store.ErrDefinitionNotFound)
}

func TestExecutionUpsert(t *testing.T) {
	ctx := context.Background()
	st := NewStore()

	execution := models.NewWorkflowExecution("wf-1", "evt-1")
	require.NoError(t, st.SaveExecution(ctx, execution))

	execution.MarkRunning()
	execution.AppendLog("execution started", nil)
	require.NoError(t, st.SaveExecution(ctx, execution))

	got, err := st.GetExecution(ctx, execution.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusRunning, got.Status)
	assert.Len(t, got.Log, 1)

	_, err = st.GetExecution(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrExecutionNotFound)
}

func TestDeleteDefinition(t *testing.T) {
	ctx := context.Background()
	st := NewStore()

	require.NoError(t, st.SaveDefinition(ctx, &models.WorkflowDefinition{
		ID: "wf-1", Name: "A", TriggerType: models.TriggerTypeManual,
	}))

	require.NoError(t, st.DeleteDefinition(ctx, "wf-1"))
	assert.ErrorIs(t, st.DeleteDefinition(ctx, "wf-1"), store.ErrDefinitionNotFound)
}
