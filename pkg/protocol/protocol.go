// Package protocol defines the contracts for pluggable actions.
package protocol

import (
	"context"
	"log/slog"

	"github.com/cascadehq/cascade/pkg/models"
)

// Action executes one step's work. Implementations return their result data;
// errors are converted to ActionResult failures at the dispatcher boundary
// and never propagate further.
type Action interface {
	Execute(ctx context.Context, executionCtx *models.ExecutionContext, logger *slog.Logger) (map[string]any, error)
}

// ActionFactory builds an Action from a step's rendered configuration.
type ActionFactory interface {
	Create(config map[string]any) (Action, error)
	ID() models.ActionType
}
