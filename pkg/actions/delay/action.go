// Package delay provides the delay action: a pure in-process suspension of
// one execution, never a retryable network call.
package delay

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/protocol"
)

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (*Factory) ID() models.ActionType {
	return models.ActionTypeDelay
}

func (f *Factory) Create(config map[string]any) (protocol.Action, error) {
	duration, err := parseDuration(config)
	if err != nil {
		return nil, err
	}

	return &Action{duration: duration}, nil
}

type Action struct {
	duration time.Duration
}

func (a *Action) Execute(ctx context.Context, _ *models.ExecutionContext, logger *slog.Logger) (map[string]any, error) {
	logger.Info("Delaying execution", "duration", a.duration)

	timer := time.NewTimer(a.duration)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}

	return map[string]any{"delayed_ms": a.duration.Milliseconds()}, nil
}

func parseDuration(config map[string]any) (time.Duration, error) {
	if raw, ok := config["duration"].(string); ok {
		duration, err := time.ParseDuration(raw)
		if err != nil {
			return 0, fmt.Errorf("invalid delay duration %q: %w", raw, err)
		}

		return duration, nil
	}

	if seconds, ok := asFloat(config["seconds"]); ok {
		return time.Duration(seconds * float64(time.Second)), nil
	}

	if minutes, ok := asFloat(config["minutes"]); ok {
		return time.Duration(minutes * float64(time.Minute)), nil
	}

	return 0, fmt.Errorf("delay action requires a duration, seconds or minutes setting")
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}
