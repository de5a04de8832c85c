// Package events defines the trigger event shape and the engine's lifecycle
// notifications published on the event bus.
package events

import (
	"time"

	"github.com/cascadehq/cascade/pkg/models"
)

type EventType string

// Bus topics.
const (
	Topic        = "cascade.events"         // engine lifecycle events
	TriggerTopic = "cascade.trigger.events" // inbound trigger events
)

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	TriggerReceivedEvent    EventType = "trigger.received"
	ExecutionStartedEvent   EventType = "execution.started"
	ExecutionCompletedEvent EventType = "execution.completed"
	ExecutionFailedEvent    EventType = "execution.failed"
	WorkflowPausedEvent     EventType = "workflow.paused"
	WorkflowResumedEvent    EventType = "workflow.resumed"
)

// TriggerEvent is an event notification delivered by an event source. The
// payload is opaque to the engine and interpreted per trigger type by the
// trigger matcher.
type TriggerEvent struct {
	ID        string             `json:"id"`
	Type      models.TriggerType `json:"type"`
	Source    string             `json:"source,omitempty"`
	Payload   map[string]any     `json:"payload,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

func (e TriggerEvent) GetType() EventType {
	return TriggerReceivedEvent
}

type BaseEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	WorkflowID string    `json:"workflow_id"`
	EngineID   string    `json:"engine_id,omitempty"`
}

type ExecutionStarted struct {
	BaseEvent

	ExecutionID string             `json:"execution_id"`
	TriggerType models.TriggerType `json:"trigger_type"`
	TriggerData map[string]any     `json:"trigger_data,omitempty"`
}

func (e ExecutionStarted) GetType() EventType {
	return ExecutionStartedEvent
}

type ExecutionCompleted struct {
	BaseEvent

	ExecutionID   string         `json:"execution_id"`
	StepsExecuted int            `json:"steps_executed"`
	Result        map[string]any `json:"result,omitempty"`
	DurationMs    int64          `json:"duration_ms"`
}

func (e ExecutionCompleted) GetType() EventType {
	return ExecutionCompletedEvent
}

type ExecutionFailed struct {
	BaseEvent

	ExecutionID   string `json:"execution_id"`
	StepsExecuted int    `json:"steps_executed"`
	Error         string `json:"error"`
	DurationMs    int64  `json:"duration_ms"`
}

func (e ExecutionFailed) GetType() EventType {
	return ExecutionFailedEvent
}

type WorkflowPaused struct {
	BaseEvent
}

func (e WorkflowPaused) GetType() EventType {
	return WorkflowPausedEvent
}

type WorkflowResumed struct {
	BaseEvent
}

func (e WorkflowResumed) GetType() EventType {
	return WorkflowResumedEvent
}
