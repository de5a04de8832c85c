// Package commerce provides the update_order action.
package commerce

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
	return models.ActionTypeUpdateOrder
}

func (f *Factory) Create(config map[string]any) (protocol.Action, error) {
	orderID, _ := config["order_id"].(string)
	if orderID == "" {
		return nil, fmt.Errorf("update_order action requires an order_id setting")
	}

	properties, _ := config["properties"].(map[string]any)
	if properties == nil {
		properties = map[string]any{}
	}

	return &Action{connectors: f.connectors, orderID: orderID, properties: properties}, nil
}

type Action struct {
	connectors *connectors.Registry
	orderID    string
	properties map[string]any
}

func (a *Action) Execute(ctx context.Context, _ *models.ExecutionContext, logger *slog.Logger) (map[string]any, error) {
	connector, err := a.connectors.Commerce()
	if err != nil {
		return nil, err
	}

	logger.Info("Updating order", "order_id", a.orderID)

	return connector.UpdateOrder(ctx, a.orderID, a.properties)
}
