// Package webhook provides the outbound webhook action.
package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/protocol"
)

const defaultTimeout = 10 * time.Second

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (*Factory) ID() models.ActionType {
	return models.ActionTypeWebhook
}

func (f *Factory) Create(config map[string]any) (protocol.Action, error) {
	url, _ := config["url"].(string)
	if url == "" {
		return nil, fmt.Errorf("webhook action requires a url setting")
	}

	method, _ := config["method"].(string)
	if method == "" {
		method = http.MethodPost
	}

	headers := make(map[string]string)
	if headersConfig, ok := config["headers"].(map[string]any); ok {
		for k, v := range headersConfig {
			if value, ok := v.(string); ok {
				headers[k] = value
			}
		}
	}

	timeout := defaultTimeout
	if seconds, ok := config["timeout_seconds"].(float64); ok && seconds > 0 {
		timeout = time.Duration(seconds * float64(time.Second))
	}

	return &Action{
		method:  strings.ToUpper(method),
		url:     url,
		headers: headers,
		body:    config["body"],
		timeout: timeout,
	}, nil
}

type Action struct {
	method  string
	url     string
	headers map[string]string
	body    any
	timeout time.Duration
}

func (a *Action) Execute(ctx context.Context, _ *models.ExecutionContext, logger *slog.Logger) (map[string]any, error) {
	logger.Info("Calling webhook", "method", a.method, "url", a.url)

	reqCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var bodyReader io.Reader

	contentType := ""

	switch body := a.body.(type) {
	case nil:
	case string:
		bodyReader = strings.NewReader(body)
	default:
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode webhook body: %w", err)
		}

		bodyReader = strings.NewReader(string(encoded))
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(reqCtx, a.method, a.url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	for key, value := range a.headers {
		req.Header.Set(key, value)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webhook request failed: %w", err)
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			logger.Error("Failed to close webhook response body", "error", closeErr)
		}
	}()

	responseBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read webhook response: %w", err)
	}

	var responseBody any
	if err := json.Unmarshal(responseBytes, &responseBody); err != nil {
		responseBody = string(responseBytes)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return map[string]any{
		"status_code": resp.StatusCode,
		"body":        responseBody,
	}, nil
}
