// Package models defines the core domain models for the workflow trigger and execution engine.
package models

import (
	"time"
)

// TriggerType identifies the class of event that can activate a workflow.
type TriggerType string

const (
	TriggerTypeManual            TriggerType = "manual"
	TriggerTypeChatMessage       TriggerType = "chat_message"
	TriggerTypeIntegrationChange TriggerType = "integration_change"
	TriggerTypeTimeBased         TriggerType = "time_based"
	TriggerTypeWebhook           TriggerType = "webhook"
	TriggerTypeSentimentAnalysis TriggerType = "sentiment_analysis"
	TriggerTypeKeywordDetection  TriggerType = "keyword_detection"
	TriggerTypeCustomerAction    TriggerType = "customer_action"
)

// ActionType identifies the kind of work a step performs.
type ActionType string

const (
	ActionTypeSendNotification ActionType = "send_notification"
	ActionTypeCreateRecord     ActionType = "create_record"
	ActionTypeUpdateRecord     ActionType = "update_record"
	ActionTypeUpdateOrder      ActionType = "update_order"
	ActionTypeEscalateToHuman  ActionType = "escalate_to_human"
	ActionTypeDelay            ActionType = "delay"
	ActionTypeWebhook          ActionType = "webhook"
	ActionTypeCustomScript     ActionType = "custom_script"
)

// WorkflowDefinition describes a workflow: its trigger predicate and the
// ordered steps to run when the trigger fires. Definitions are owned by a
// tenant and are copied on read before execution, so edits never corrupt an
// in-flight run.
type WorkflowDefinition struct {
	ID                string         `json:"id"                 validate:"required"`
	Name              string         `json:"name"               validate:"required,min=3"`
	Active            bool           `json:"active"`
	TriggerType       TriggerType    `json:"trigger_type"       validate:"required"`
	TriggerConditions []Condition    `json:"trigger_conditions,omitempty"`
	TriggerSettings   map[string]any `json:"trigger_settings,omitempty"`
	Schedule          *ScheduleSpec  `json:"schedule,omitempty"`
	Variables         map[string]any `json:"variables,omitempty"`
	Steps             []Step         `json:"steps"`
	Owner             string         `json:"owner,omitempty"`
	LastTriggeredAt   *time.Time     `json:"last_triggered_at,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// Snapshot returns a deep copy of the definition. Executions operate on a
// snapshot so concurrent definition edits never affect a running execution.
func (d *WorkflowDefinition) Snapshot() *WorkflowDefinition {
	cp := *d

	cp.TriggerConditions = append([]Condition(nil), d.TriggerConditions...)
	cp.TriggerSettings = copyMap(d.TriggerSettings)
	cp.Variables = copyMap(d.Variables)

	if d.Schedule != nil {
		schedule := *d.Schedule
		cp.Schedule = &schedule
	}

	if d.LastTriggeredAt != nil {
		ts := *d.LastTriggeredAt
		cp.LastTriggeredAt = &ts
	}

	cp.Steps = make([]Step, len(d.Steps))
	for i, step := range d.Steps {
		cp.Steps[i] = step.clone()
	}

	return &cp
}

// Step is one action within a workflow's ordered sequence.
type Step struct {
	ID         string         `json:"id"          validate:"required"`
	Name       string         `json:"name,omitempty"`
	ActionType ActionType     `json:"action_type" validate:"required"`
	Config     map[string]any `json:"config,omitempty"`
	Conditions []Condition    `json:"conditions,omitempty"`

	// Required defaults to true when absent: a failing required step fails
	// the whole execution.
	Required *bool `json:"required,omitempty"`
}

func (s Step) IsRequired() bool {
	return s.Required == nil || *s.Required
}

// DisplayName returns the step name, falling back to the action type.
func (s Step) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}

	return string(s.ActionType)
}

func (s Step) clone() Step {
	cp := s
	cp.Config = copyMap(s.Config)
	cp.Conditions = append([]Condition(nil), s.Conditions...)

	if s.Required != nil {
		required := *s.Required
		cp.Required = &required
	}

	return cp
}

func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}

	cp := make(map[string]any, len(m))
	for k, v := range m {
		switch nested := v.(type) {
		case map[string]any:
			cp[k] = copyMap(nested)
		case []any:
			cp[k] = copySlice(nested)
		default:
			cp[k] = v
		}
	}

	return cp
}

func copySlice(s []any) []any {
	cp := make([]any, len(s))
	for i, v := range s {
		switch nested := v.(type) {
		case map[string]any:
			cp[i] = copyMap(nested)
		case []any:
			cp[i] = copySlice(nested)
		default:
			cp[i] = v
		}
	}

	return cp
}
