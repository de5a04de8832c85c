package webhook

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cascadehq/cascade/pkg/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func TestCreateRequiresURL(t *testing.T) {
	_, err := NewFactory().Create(map[string]any{})
	assert.Error(t, err)
}

func TestExecutePostsJSONBody(t *testing.T) {
	var received map[string]any

	var gotMethod, gotContentType, gotHeader string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		gotHeader = r.Header.Get("X-Api-Key")
		_ = json.NewDecoder(r.Body).Decode(&received)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"accepted": true}`))
	}))
	defer server.Close()

	action, err := NewFactory().Create(map[string]any{
		"url":     server.URL,
		"headers": map[string]any{"X-Api-Key": "secret"},
		"body":    map[string]any{"order_id": "o-1"},
	})
	require.NoError(t, err)

	ectx := models.NewExecutionContext("exec-1", "wf-1", nil, nil)

	data, err := action.Execute(context.Background(), ectx, testLogger())
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "secret", gotHeader)
	assert.Equal(t, map[string]any{"order_id": "o-1"}, received)
	assert.Equal(t, 200, data["status_code"])
	assert.Equal(t, map[string]any{"accepted": true}, data["body"])
}

func TestExecuteErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer server.Close()

	action, err := NewFactory().Create(map[string]any{"url": server.URL})
	require.NoError(t, err)

	ectx := models.NewExecutionContext("exec-1", "wf-1", nil, nil)

	_, err = action.Execute(context.Background(), ectx, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestExecuteGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte("plain text"))
	}))
	defer server.Close()

	action, err := NewFactory().Create(map[string]any{
		"url":    server.URL,
		"method": "get",
	})
	require.NoError(t, err)

	ectx := models.NewExecutionContext("exec-1", "wf-1", nil, nil)

	data, err := action.Execute(context.Background(), ectx, testLogger())
	require.NoError(t, err)
	assert.Equal(t, "plain text", data["body"], "non-JSON responses come back as strings")
}
