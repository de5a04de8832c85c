package models

import (
	"fmt"
	"time"
)

// ExecutionStatus is the lifecycle state of a workflow execution.
// Transitions: pending -> running -> completed | failed. Terminal states are
// never left.
type ExecutionStatus string

const (
	ExecutionStatusPending   ExecutionStatus = "pending"
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
)

func (s ExecutionStatus) Terminal() bool {
	return s == ExecutionStatusCompleted || s == ExecutionStatusFailed
}

// ExecutionLogEntry is one human-readable line of an execution's audit log.
type ExecutionLogEntry struct {
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// WorkflowExecution is the persisted record of one run of a workflow
// definition. Its ID doubles as the idempotency key against duplicate
// submissions for the same event. It is mutated only by the step executor
// that owns it and is persisted on creation and on every status transition.
type WorkflowExecution struct {
	ID           string              `json:"id"`
	WorkflowID   string              `json:"workflow_id"`
	Status       ExecutionStatus     `json:"status"`
	StartedAt    time.Time           `json:"started_at"`
	CompletedAt  *time.Time          `json:"completed_at,omitempty"`
	Log          []ExecutionLogEntry `json:"log"`
	Result       map[string]any      `json:"result,omitempty"`
	ErrorMessage string              `json:"error_message,omitempty"`
}

// NewWorkflowExecution builds a pending execution. The event ID is folded
// into the execution ID so a redelivered event maps to the same execution.
func NewWorkflowExecution(workflowID, eventID string) *WorkflowExecution {
	return &WorkflowExecution{
		ID:         fmt.Sprintf("%s-%s", workflowID, eventID),
		WorkflowID: workflowID,
		Status:     ExecutionStatusPending,
		StartedAt:  time.Now().UTC(),
	}
}

// AppendLog records a log entry with the current timestamp.
func (e *WorkflowExecution) AppendLog(message string, data map[string]any) {
	e.Log = append(e.Log, ExecutionLogEntry{
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

// MarkRunning moves a pending execution to running.
func (e *WorkflowExecution) MarkRunning() {
	e.Status = ExecutionStatusRunning
}

// MarkCompleted finishes the execution successfully.
func (e *WorkflowExecution) MarkCompleted(result map[string]any) {
	now := time.Now().UTC()
	e.Status = ExecutionStatusCompleted
	e.CompletedAt = &now
	e.Result = result
}

// MarkFailed finishes the execution with an error. Failed executions always
// carry a non-empty error message.
func (e *WorkflowExecution) MarkFailed(errorMessage string) {
	if errorMessage == "" {
		errorMessage = "workflow execution failed"
	}

	now := time.Now().UTC()
	e.Status = ExecutionStatusFailed
	e.CompletedAt = &now
	e.ErrorMessage = errorMessage
}

// ActionResult is the uniform outcome of one dispatched action. No action
// implementation may let an error escape past this shape.
type ActionResult struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Error   string         `json:"error,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// Failure builds a failed ActionResult from an error.
func Failure(err error) ActionResult {
	return ActionResult{Success: false, Error: err.Error()}
}
