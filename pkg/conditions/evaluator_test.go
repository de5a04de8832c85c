package conditions

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cascadehq/cascade/pkg/models"
)

func TestEvaluateEmptyListIsTrue(t *testing.T) {
	assert.True(t, Evaluate(nil, map[string]any{}))
	assert.True(t, Evaluate([]models.Condition{}, map[string]any{"x": 1}))
}

func TestEvaluateNumericComparison(t *testing.T) {
	context := map[string]any{"score": float64(75)}

	cond := models.Condition{
		Field:    "score",
		Operator: models.OperatorGreaterThan,
		Value:    float64(50),
	}

	// Without a declared type both sides look numeric, so 75 > 50 compares
	// as numbers, not as the strings "75" > "50".
	assert.True(t, Evaluate([]models.Condition{cond}, context))

	cond.Value = float64(100)
	assert.False(t, Evaluate([]models.Condition{cond}, context))
}

func TestEvaluateNumericStringCoercion(t *testing.T) {
	context := map[string]any{"score": "9"}

	cond := models.Condition{
		Field:     "score",
		Operator:  models.OperatorGreaterThan,
		Value:     "10",
		ValueType: models.ValueTypeNumber,
	}

	assert.False(t, Evaluate([]models.Condition{cond}, context), "9 < 10 as numbers even though \"9\" > \"10\" as strings")
}

func TestEvaluateAndShortCircuits(t *testing.T) {
	context := map[string]any{"a": float64(1), "b": float64(2)}

	conds := []models.Condition{
		{Field: "a", Operator: models.OperatorEquals, Value: float64(99), Combinator: models.CombinatorAnd},
		{Field: "b", Operator: models.OperatorEquals, Value: float64(2), Combinator: models.CombinatorAnd},
	}

	passed, reason := EvaluateWithReason(conds, context)
	assert.False(t, passed)
	assert.Contains(t, reason, `"a"`)
}

func TestEvaluateOrShortCircuits(t *testing.T) {
	context := map[string]any{"tier": "premium"}

	conds := []models.Condition{
		{Field: "tier", Operator: models.OperatorEquals, Value: "vip", Combinator: models.CombinatorOr},
		{Field: "tier", Operator: models.OperatorEquals, Value: "premium", Combinator: models.CombinatorOr},
	}

	assert.True(t, Evaluate(conds, context))
}

func TestEvaluateOrOnlyAllFail(t *testing.T) {
	context := map[string]any{"tier": "basic"}

	conds := []models.Condition{
		{Field: "tier", Operator: models.OperatorEquals, Value: "vip", Combinator: models.CombinatorOr},
		{Field: "tier", Operator: models.OperatorEquals, Value: "premium", Combinator: models.CombinatorOr},
	}

	passed, reason := EvaluateWithReason(conds, context)
	assert.False(t, passed)
	assert.Equal(t, "no or-condition matched", reason)
}

func TestEvaluateMixedAndOr(t *testing.T) {
	context := map[string]any{"tier": "basic", "score": float64(80)}

	conds := []models.Condition{
		{Field: "score", Operator: models.OperatorGreaterThan, Value: float64(50), Combinator: models.CombinatorAnd},
		{Field: "tier", Operator: models.OperatorEquals, Value: "vip", Combinator: models.CombinatorOr},
	}

	// The AND held and no OR matched; satisfied ANDs carry the expression.
	assert.True(t, Evaluate(conds, context))
}

func TestEvaluateContains(t *testing.T) {
	context := map[string]any{
		"message": "please cancel my subscription",
		"tags":    []any{"billing", "urgent"},
	}

	assert.True(t, Evaluate([]models.Condition{
		{Field: "message", Operator: models.OperatorContains, Value: "cancel"},
	}, context))

	assert.True(t, Evaluate([]models.Condition{
		{Field: "tags", Operator: models.OperatorContains, Value: "urgent"},
	}, context))

	assert.True(t, Evaluate([]models.Condition{
		{Field: "message", Operator: models.OperatorNotContains, Value: "refund"},
	}, context))
}

func TestEvaluateInOperators(t *testing.T) {
	context := map[string]any{"status": "shipped"}

	assert.True(t, Evaluate([]models.Condition{
		{Field: "status", Operator: models.OperatorIn, Value: []any{"shipped", "delivered"}},
	}, context))

	assert.False(t, Evaluate([]models.Condition{
		{Field: "status", Operator: models.OperatorIn, Value: "shipped"},
	}, context), "non-array value fails closed")

	assert.True(t, Evaluate([]models.Condition{
		{Field: "status", Operator: models.OperatorNotIn, Value: []any{"pending", "cancelled"}},
	}, context))

	assert.False(t, Evaluate([]models.Condition{
		{Field: "status", Operator: models.OperatorNotIn, Value: "pending"},
	}, context), "non-array value fails closed even when negated")
}

func TestEvaluateRegex(t *testing.T) {
	context := map[string]any{"email": "ada@example.com"}

	assert.True(t, Evaluate([]models.Condition{
		{Field: "email", Operator: models.OperatorRegex, Value: `@example\.com$`},
	}, context))

	assert.False(t, Evaluate([]models.Condition{
		{Field: "email", Operator: models.OperatorRegex, Value: `([`},
	}, context), "invalid pattern fails closed")
}

func TestEvaluateMissingFieldFailsClosed(t *testing.T) {
	context := map[string]any{}

	assert.False(t, Evaluate([]models.Condition{
		{Field: "absent", Operator: models.OperatorGreaterThan, Value: float64(1)},
	}, context))
}

func TestEvaluateUnknownOperatorFailsClosed(t *testing.T) {
	context := map[string]any{"x": float64(1)}

	assert.False(t, Evaluate([]models.Condition{
		{Field: "x", Operator: "almost_equals", Value: float64(1)},
	}, context))
}

func TestEvaluateDateComparison(t *testing.T) {
	context := map[string]any{"created_at": "2025-03-01T10:00:00Z"}

	assert.True(t, Evaluate([]models.Condition{
		{
			Field:     "created_at",
			Operator:  models.OperatorLessThan,
			Value:     "2025-04-01T00:00:00Z",
			ValueType: models.ValueTypeDate,
		},
	}, context))
}

func TestEvaluateBooleanComparison(t *testing.T) {
	context := map[string]any{"paid": true}

	assert.True(t, Evaluate([]models.Condition{
		{Field: "paid", Operator: models.OperatorEquals, Value: true, ValueType: models.ValueTypeBoolean},
	}, context))

	assert.True(t, Evaluate([]models.Condition{
		{Field: "paid", Operator: models.OperatorEquals, Value: "true", ValueType: models.ValueTypeBoolean},
	}, context))
}

func TestEvaluateNegativeThreshold(t *testing.T) {
	context := map[string]any{"sentiment_score": -0.9}

	assert.True(t, Evaluate([]models.Condition{
		{Field: "sentiment_score", Operator: models.OperatorLessThan, Value: -0.7},
	}, context))
}
