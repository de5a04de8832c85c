package workflow

import (
	"log/slog"

	"github.com/cascadehq/cascade/pkg/conditions"
	"github.com/cascadehq/cascade/pkg/events"
	"github.com/cascadehq/cascade/pkg/models"
)

// TriggerMatcher filters workflow definitions against an incoming trigger
// event. It is a pure, side-effect-free filter: active definitions whose
// trigger type matches the event and whose trigger-level conditions pass.
type TriggerMatcher struct {
	logger *slog.Logger
}

func NewTriggerMatcher(logger *slog.Logger) *TriggerMatcher {
	return &TriggerMatcher{
		logger: logger.With("module", "trigger_matcher"),
	}
}

// Match returns every definition the event qualifies for. The condition
// context is the event payload merged with the definition's trigger
// settings, so predicates can reference both (e.g. sentiment_score from the
// event against settings.sentiment_threshold).
func (tm *TriggerMatcher) Match(event events.TriggerEvent, definitions []*models.WorkflowDefinition) []*models.WorkflowDefinition {
	var matched []*models.WorkflowDefinition

	for _, def := range definitions {
		if !def.Active || def.TriggerType != event.Type {
			continue
		}

		context := matchContext(event, def)

		if !conditions.Evaluate(def.TriggerConditions, context) {
			tm.logger.Debug("Trigger conditions not met",
				"workflow_id", def.ID,
				"event_id", event.ID)

			continue
		}

		matched = append(matched, def)
	}

	tm.logger.Info("Completed trigger matching",
		"trigger_type", event.Type,
		"event_id", event.ID,
		"candidates", len(definitions),
		"matches", len(matched))

	return matched
}

func matchContext(event events.TriggerEvent, def *models.WorkflowDefinition) map[string]any {
	context := make(map[string]any, len(event.Payload)+2)
	for k, v := range event.Payload {
		context[k] = v
	}

	context["settings"] = def.TriggerSettings
	context["event"] = map[string]any{
		"id":     event.ID,
		"type":   string(event.Type),
		"source": event.Source,
	}

	return context
}
