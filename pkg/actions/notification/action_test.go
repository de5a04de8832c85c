package notification

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

func TestCreateRequiresMessage(t *testing.T) {
	factory := NewFactory(connectors.NewRegistry())

	_, err := factory.Create(map[string]any{})
	assert.Error(t, err)

	_, err = factory.Create(map[string]any{"message": ""})
	assert.Error(t, err)
}

func TestExecuteSendsThroughConnector(t *testing.T) {
	fake := &mocks.FakeConnector{Response: map[string]any{"notification_id": "n-1"}}

	registry := connectors.NewRegistry()
	registry.RegisterNotification(fake)

	factory := NewFactory(registry)
	action, err := factory.Create(map[string]any{"message": "Order shipped", "channel": "email"})
	require.NoError(t, err)

	ectx := models.NewExecutionContext("exec-1", "wf-1", nil, nil)

	data, err := action.Execute(context.Background(), ectx, testLogger())
	require.NoError(t, err)
	assert.Equal(t, "n-1", data["notification_id"])

	require.Len(t, fake.Calls, 1)
	assert.Equal(t, "SendNotification", fake.Calls[0].Method)
	assert.Equal(t, "Order shipped", fake.Calls[0].Args["message"])
}

func TestExecuteWithoutConnector(t *testing.T) {
	factory := NewFactory(connectors.NewRegistry())
	action, err := factory.Create(map[string]any{"message": "hello"})
	require.NoError(t, err)

	ectx := models.NewExecutionContext("exec-1", "wf-1", nil, nil)

	_, err = action.Execute(context.Background(), ectx, testLogger())
	assert.Error(t, err)
}
