package models

import (
	"strconv"
	"strings"
)

// ExecutionContext is the mutable key-value scope threaded through one
// execution's steps. Condition evaluation and template rendering read from
// it; each completed step writes its result back into it.
type ExecutionContext struct {
	ID          string         `json:"id"`
	WorkflowID  string         `json:"workflow_id"`
	TriggerData map[string]any `json:"trigger_data,omitempty"`
	Variables   map[string]any `json:"variables,omitempty"`
	StepResults map[string]any `json:"step_results,omitempty"`
	Results     []any          `json:"results,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// NewExecutionContext seeds a context from the trigger payload and the
// workflow's variables.
func NewExecutionContext(executionID, workflowID string, triggerData, variables map[string]any) *ExecutionContext {
	if triggerData == nil {
		triggerData = map[string]any{}
	}

	return &ExecutionContext{
		ID:          executionID,
		WorkflowID:  workflowID,
		TriggerData: triggerData,
		Variables:   variables,
		StepResults: map[string]any{},
		Metadata:    map[string]any{},
	}
}

// RecordResult appends a step outcome so later steps and templates can
// reference it, both by step ID (steps.<id>) and by position (results.<n>).
func (ec *ExecutionContext) RecordResult(stepID string, result ActionResult) {
	entry := map[string]any{
		"step_id": stepID,
		"success": result.Success,
	}
	if result.Message != "" {
		entry["message"] = result.Message
	}

	if result.Error != "" {
		entry["error"] = result.Error
	}

	if result.Data != nil {
		entry["data"] = result.Data
	}

	if ec.StepResults == nil {
		ec.StepResults = map[string]any{}
	}

	ec.StepResults[stepID] = entry
	ec.Results = append(ec.Results, entry)
}

// AsMap exposes the context under its named roots. Trigger payload keys are
// also merged at the top level so short paths like "customer.name" resolve
// without the trigger. prefix.
func (ec *ExecutionContext) AsMap() map[string]any {
	m := make(map[string]any, len(ec.TriggerData)+6)
	for k, v := range ec.TriggerData {
		m[k] = v
	}

	m["trigger"] = ec.TriggerData
	m["vars"] = ec.Variables
	m["steps"] = ec.StepResults
	m["results"] = ec.Results
	m["metadata"] = ec.Metadata
	m["execution"] = map[string]any{
		"id":          ec.ID,
		"workflow_id": ec.WorkflowID,
	}

	return m
}

// LookupPath resolves a dot-notation path against a context map. Numeric
// segments index into slices. The second return reports whether the full
// path resolved.
func LookupPath(context map[string]any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}

	var current any = context

	for _, segment := range strings.Split(path, ".") {
		switch v := current.(type) {
		case map[string]any:
			next, ok := v[segment]
			if !ok {
				return nil, false
			}

			current = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(v) {
				return nil, false
			}

			current = v[idx]
		default:
			return nil, false
		}
	}

	return current, true
}
