// Package notification provides the send_notification action, delivering a
// rendered message through the configured notification connector.
package notification

import (
	"context"
	"fmt"
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
	return models.ActionTypeSendNotification
}

func (f *Factory) Create(config map[string]any) (protocol.Action, error) {
	if message, _ := config["message"].(string); message == "" {
		return nil, fmt.Errorf("send_notification action requires a message setting")
	}

	return &Action{connectors: f.connectors, config: config}, nil
}

type Action struct {
	connectors *connectors.Registry
	config     map[string]any
}

func (a *Action) Execute(ctx context.Context, _ *models.ExecutionContext, logger *slog.Logger) (map[string]any, error) {
	connector, err := a.connectors.Notification()
	if err != nil {
		return nil, err
	}

	logger.Info("Sending notification", "channel", a.config["channel"])

	return connector.SendNotification(ctx, a.config)
}
