// Package escalation provides the escalate_to_human action.
package escalation

import (
	"context"
	"log/slog"

	"github.com/cascadehq/cascade/pkg/connectors"
	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/protocol"
)

type Factory struct {
	connectors *connectors.Registry
}

func NewFactory(registry *connectors.Registry) *Factory {
	return &Factory{connectors: registry}
}

func (*Factory) ID() models.ActionType {
	return models.ActionTypeEscalateToHuman
}

func (f *Factory) Create(config map[string]any) (protocol.Action, error) {
	if config == nil {
		config = map[string]any{}
	}

	return &Action{connectors: f.connectors, config: config}, nil
}

type Action struct {
	connectors *connectors.Registry
	config     map[string]any
}

func (a *Action) Execute(ctx context.Context, executionCtx *models.ExecutionContext, logger *slog.Logger) (map[string]any, error) {
	connector, err := a.connectors.Escalation()
	if err != nil {
		return nil, err
	}

	config := make(map[string]any, len(a.config)+2)
	for k, v := range a.config {
		config[k] = v
	}

	// The operator record always carries enough to find the run.
	config["execution_id"] = executionCtx.ID
	config["workflow_id"] = executionCtx.WorkflowID

	logger.Info("Escalating to human operator", "priority", config["priority"])

	return connector.Escalate(ctx, config)
}
