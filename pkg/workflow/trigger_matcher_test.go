package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cascadehq/cascade/pkg/events"
	"github.com/cascadehq/cascade/pkg/models"
)

func sentimentEvent(score float64, tier string) events.TriggerEvent {
	return events.TriggerEvent{
		ID:     "evt-1",
		Type:   models.TriggerTypeSentimentAnalysis,
		Source: "sentiment-service",
		Payload: map[string]any{
			"sentiment_score": score,
			"customer":        map[string]any{"tier": tier},
		},
		Timestamp: time.Now().UTC(),
	}
}

func TestMatchFiltersByTypeAndActive(t *testing.T) {
	matcher := NewTriggerMatcher(testLogger())

	definitions := []*models.WorkflowDefinition{
		{ID: "wf-active", Active: true, TriggerType: models.TriggerTypeSentimentAnalysis},
		{ID: "wf-paused", Active: false, TriggerType: models.TriggerTypeSentimentAnalysis},
		{ID: "wf-other", Active: true, TriggerType: models.TriggerTypeWebhook},
	}

	matched := matcher.Match(sentimentEvent(-0.9, "basic"), definitions)

	require.Len(t, matched, 1)
	assert.Equal(t, "wf-active", matched[0].ID)
}

func TestMatchEvaluatesTriggerConditions(t *testing.T) {
	matcher := NewTriggerMatcher(testLogger())

	def := &models.WorkflowDefinition{
		ID:          "wf-negative-premium",
		Active:      true,
		TriggerType: models.TriggerTypeSentimentAnalysis,
		TriggerSettings: map[string]any{
			"sentiment_threshold": -0.7,
		},
		TriggerConditions: []models.Condition{
			{Field: "sentiment_score", Operator: models.OperatorLessThan, Value: -0.7},
			{Field: "customer.tier", Operator: models.OperatorEquals, Value: "premium"},
		},
	}

	matched := matcher.Match(sentimentEvent(-0.9, "premium"), []*models.WorkflowDefinition{def})
	assert.Len(t, matched, 1, "very negative premium message matches")

	matched = matcher.Match(sentimentEvent(-0.9, "basic"), []*models.WorkflowDefinition{def})
	assert.Empty(t, matched, "tier condition filters out basic customers")

	matched = matcher.Match(sentimentEvent(-0.5, "premium"), []*models.WorkflowDefinition{def})
	assert.Empty(t, matched, "mildly negative message is under the threshold")
}

func TestMatchSettingsVisibleToConditions(t *testing.T) {
	matcher := NewTriggerMatcher(testLogger())

	def := &models.WorkflowDefinition{
		ID:          "wf-1",
		Active:      true,
		TriggerType: models.TriggerTypeCustomerAction,
		TriggerSettings: map[string]any{
			"watched_action": "order_cancelled",
		},
		TriggerConditions: []models.Condition{
			{Field: "settings.watched_action", Operator: models.OperatorEquals, Value: "order_cancelled"},
		},
	}

	event := events.TriggerEvent{
		ID:        "evt-1",
		Type:      models.TriggerTypeCustomerAction,
		Payload:   map[string]any{"action": "order_cancelled"},
		Timestamp: time.Now().UTC(),
	}

	assert.Len(t, matcher.Match(event, []*models.WorkflowDefinition{def}), 1)
}

func TestMatchEmptyConditionsAlwaysMatch(t *testing.T) {
	matcher := NewTriggerMatcher(testLogger())

	def := &models.WorkflowDefinition{
		ID:          "wf-1",
		Active:      true,
		TriggerType: models.TriggerTypeChatMessage,
	}

	event := events.TriggerEvent{
		ID:        "evt-1",
		Type:      models.TriggerTypeChatMessage,
		Payload:   map[string]any{"message": "hello"},
		Timestamp: time.Now().UTC(),
	}

	assert.Len(t, matcher.Match(event, []*models.WorkflowDefinition{def}), 1)
}
