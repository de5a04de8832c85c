package connectors

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// LocalConnector is the default implementation of every connector
// capability. It logs the call and echoes the input back with a generated
// ID, which is enough for local runs and end-to-end tests without external
// systems.
type LocalConnector struct {
	logger *slog.Logger
}

func NewLocalConnector(logger *slog.Logger) *LocalConnector {
	return &LocalConnector{logger: logger.With("module", "local_connector")}
}

// RegisterAll wires a LocalConnector into every slot of the registry.
func RegisterAll(registry *Registry, logger *slog.Logger) {
	local := NewLocalConnector(logger)

	registry.RegisterNotification(local)
	registry.RegisterCRM(local)
	registry.RegisterCommerce(local)
	registry.RegisterEscalation(local)
}

func (c *LocalConnector) result(kind string, data map[string]any) map[string]any {
	out := make(map[string]any, len(data)+2)
	for k, v := range data {
		out[k] = v
	}

	out["id"] = kind + "-" + uuid.New().String()[:8]
	out["at"] = time.Now().UTC().Format(time.RFC3339)

	return out
}

func (c *LocalConnector) SendNotification(_ context.Context, config map[string]any) (map[string]any, error) {
	c.logger.Info("Notification sent", "channel", config["channel"], "message", config["message"])

	return c.result("notification", config), nil
}

func (c *LocalConnector) CreateRecord(_ context.Context, objectType string, properties map[string]any) (map[string]any, error) {
	c.logger.Info("Record created", "object_type", objectType)

	return c.result("record", map[string]any{"object_type": objectType, "properties": properties}), nil
}

func (c *LocalConnector) UpdateRecord(_ context.Context, objectType, id string, properties map[string]any) (map[string]any, error) {
	c.logger.Info("Record updated", "object_type", objectType, "record_id", id)

	return c.result("record", map[string]any{"object_type": objectType, "record_id": id, "properties": properties}), nil
}

func (c *LocalConnector) UpdateOrder(_ context.Context, orderID string, properties map[string]any) (map[string]any, error) {
	c.logger.Info("Order updated", "order_id", orderID)

	return c.result("order", map[string]any{"order_id": orderID, "properties": properties}), nil
}

func (c *LocalConnector) Escalate(_ context.Context, config map[string]any) (map[string]any, error) {
	c.logger.Warn("Escalated to human operator", "reason", config["reason"], "priority", config["priority"])

	return c.result("escalation", config), nil
}
