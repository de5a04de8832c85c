// Package record provides the CRM create_record and update_record actions.
package record

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cascadehq/cascade/pkg/connectors"
	"github.com/cascadehq/cascade/pkg/models"
	"github.com/cascadehq/cascade/pkg/protocol"
)

type CreateFactory struct {
	connectors *connectors.Registry
}

func NewCreateFactory(registry *connectors.Registry) *CreateFactory {
	return &CreateFactory{connectors: registry}
}

func (*CreateFactory) ID() models.ActionType {
	return models.ActionTypeCreateRecord
}

func (f *CreateFactory) Create(config map[string]any) (protocol.Action, error) {
	objectType, properties, _, err := parseConfig(config, false)
	if err != nil {
		return nil, err
	}

	return &createAction{
		connectors: f.connectors,
		objectType: objectType,
		properties: properties,
	}, nil
}

type createAction struct {
	connectors *connectors.Registry
	objectType string
	properties map[string]any
}

func (a *createAction) Execute(ctx context.Context, _ *models.ExecutionContext, logger *slog.Logger) (map[string]any, error) {
	connector, err := a.connectors.CRM()
	if err != nil {
		return nil, err
	}

	logger.Info("Creating CRM record", "object_type", a.objectType)

	return connector.CreateRecord(ctx, a.objectType, a.properties)
}

type UpdateFactory struct {
	connectors *connectors.Registry
}

func NewUpdateFactory(registry *connectors.Registry) *UpdateFactory {
	return &UpdateFactory{connectors: registry}
}

func (*UpdateFactory) ID() models.ActionType {
	return models.ActionTypeUpdateRecord
}

func (f *UpdateFactory) Create(config map[string]any) (protocol.Action, error) {
	objectType, properties, recordID, err := parseConfig(config, true)
	if err != nil {
		return nil, err
	}

	return &updateAction{
		connectors: f.connectors,
		objectType: objectType,
		recordID:   recordID,
		properties: properties,
	}, nil
}

type updateAction struct {
	connectors *connectors.Registry
	objectType string
	recordID   string
	properties map[string]any
}

func (a *updateAction) Execute(ctx context.Context, _ *models.ExecutionContext, logger *slog.Logger) (map[string]any, error) {
	connector, err := a.connectors.CRM()
	if err != nil {
		return nil, err
	}

	logger.Info("Updating CRM record", "object_type", a.objectType, "record_id", a.recordID)

	return connector.UpdateRecord(ctx, a.objectType, a.recordID, a.properties)
}

func parseConfig(config map[string]any, needsID bool) (objectType string, properties map[string]any, recordID string, err error) {
	objectType, _ = config["object_type"].(string)
	if objectType == "" {
		return "", nil, "", fmt.Errorf("record action requires an object_type setting")
	}

	properties, _ = config["properties"].(map[string]any)
	if properties == nil {
		properties = map[string]any{}
	}

	if needsID {
		recordID, _ = config["record_id"].(string)
		if recordID == "" {
			return "", nil, "", fmt.Errorf("update_record action requires a record_id setting")
		}
	}

	return objectType, properties, recordID, nil
}
