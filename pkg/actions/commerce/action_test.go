package commerce

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cascadehq/cascade/pkg/connectors"
	"github.com/cascadehq/cascade/pkg/mocks"
	"github.com/cascadehq/cascade/pkg/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func TestCreateRequiresOrderID(t *testing.T) {
	factory := NewFactory(connectors.NewRegistry())

	_, err := factory.Create(map[string]any{"properties": map[string]any{"status": "refunded"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "order_id")
}

func TestExecuteUpdatesOrder(t *testing.T) {
	fake := &mocks.FakeConnector{}

	registry := connectors.NewRegistry()
	registry.RegisterCommerce(fake)

	factory := NewFactory(registry)
	action, err := factory.Create(map[string]any{
		"order_id":   "ord-42",
		"properties": map[string]any{"status": "refunded"},
	})
	require.NoError(t, err)

	ectx := models.NewExecutionContext("exec-1", "wf-1", nil, nil)

	_, err = action.Execute(context.Background(), ectx, testLogger())
	require.NoError(t, err)

	require.Len(t, fake.Calls, 1)
	assert.Equal(t, "UpdateOrder", fake.Calls[0].Method)
	assert.Equal(t, "ord-42", fake.Calls[0].Args["order_id"])

	properties, ok := fake.Calls[0].Args["properties"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "refunded", properties["status"])
}

func TestExecuteWithoutConnector(t *testing.T) {
	factory := NewFactory(connectors.NewRegistry())
	action, err := factory.Create(map[string]any{"order_id": "ord-42"})
	require.NoError(t, err)

	ectx := models.NewExecutionContext("exec-1", "wf-1", nil, nil)

	_, err = action.Execute(context.Background(), ectx, testLogger())
	assert.Error(t, err)
}
