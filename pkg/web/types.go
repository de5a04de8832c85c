// Package web provides the HTTP handlers and request types for the workflow
// management API.
package web

import "github.com/cascadehq/cascade/pkg/models"

// CreateWorkflowRequest is the request body for creating a workflow.
type CreateWorkflowRequest struct {
	Name              string               `json:"name"               validate:"required,min=3"`
	Active            bool                 `json:"active"`
	TriggerType       models.TriggerType   `json:"trigger_type"       validate:"required"`
	TriggerConditions []models.Condition   `json:"trigger_conditions,omitempty"`
	TriggerSettings   map[string]any       `json:"trigger_settings,omitempty"`
	Schedule          *models.ScheduleSpec `json:"schedule,omitempty"`
	Variables         map[string]any       `json:"variables,omitempty"`
	Steps             []models.Step        `json:"steps"`
	Owner             string               `json:"owner,omitempty"`
}

// UpdateWorkflowRequest is the request body for updating a workflow. All
// fields are optional to support partial updates.
type UpdateWorkflowRequest struct {
	Name              *string              `json:"name,omitempty"     validate:"omitempty,min=3"`
	TriggerConditions []models.Condition   `json:"trigger_conditions,omitempty"`
	TriggerSettings   map[string]any       `json:"trigger_settings,omitempty"`
	Schedule          *models.ScheduleSpec `json:"schedule,omitempty"`
	Variables         map[string]any       `json:"variables,omitempty"`
	Steps             []models.Step        `json:"steps,omitempty"`
}

// ExecuteWorkflowRequest is the request body for manually executing a
// workflow. The payload becomes the execution's trigger data.
type ExecuteWorkflowRequest struct {
	Payload map[string]any `json:"payload,omitempty"`
}
