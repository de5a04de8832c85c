// Package conditions evaluates boolean expression trees against a context
// map. Unknown operators and malformed values fail closed.
package conditions

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cascadehq/cascade/pkg/models"
)

// Evaluate applies conditions left-to-right. An AND condition that fails
// short-circuits to false; an OR condition that succeeds short-circuits to
// true. An empty list is true (no gate).
func Evaluate(conds []models.Condition, context map[string]any) bool {
	result, _ := EvaluateWithReason(conds, context)

	return result
}

// EvaluateWithReason behaves like Evaluate and also reports which condition
// decided the outcome, for execution logs.
func EvaluateWithReason(conds []models.Condition, context map[string]any) (bool, string) {
	if len(conds) == 0 {
		return true, ""
	}

	for _, cond := range conds {
		matched := evaluateOne(cond, context)

		switch cond.EffectiveCombinator() {
		case models.CombinatorOr:
			if matched {
				return true, ""
			}
		default:
			if !matched {
				return false, fmt.Sprintf("condition on %q (%s) not met", cond.Field, cond.Operator)
			}
		}
	}

	// Reaching here means every condition was either a satisfied AND or a
	// failed OR. The expression holds unless it was OR-only.
	for _, cond := range conds {
		if cond.EffectiveCombinator() == models.CombinatorAnd {
			return true, ""
		}
	}

	return false, "no or-condition matched"
}

func evaluateOne(cond models.Condition, context map[string]any) bool {
	fieldValue, ok := models.LookupPath(context, cond.Field)
	if !ok {
		fieldValue = nil
	}

	switch cond.Operator {
	case models.OperatorEquals:
		return compare(fieldValue, cond) == 0
	case models.OperatorNotEquals:
		return compare(fieldValue, cond) != 0
	case models.OperatorGreaterThan:
		return orderedCompare(fieldValue, cond, func(c int) bool { return c > 0 })
	case models.OperatorLessThan:
		return orderedCompare(fieldValue, cond, func(c int) bool { return c < 0 })
	case models.OperatorGreaterEqual:
		return orderedCompare(fieldValue, cond, func(c int) bool { return c >= 0 })
	case models.OperatorLessEqual:
		return orderedCompare(fieldValue, cond, func(c int) bool { return c <= 0 })
	case models.OperatorContains:
		return contains(fieldValue, cond.Value)
	case models.OperatorNotContains:
		return !contains(fieldValue, cond.Value)
	case models.OperatorRegex:
		pattern, err := regexp.Compile(asString(cond.Value))
		if err != nil {
			return false
		}

		return pattern.MatchString(asString(fieldValue))
	case models.OperatorIn:
		return inList(fieldValue, cond.Value)
	case models.OperatorNotIn:
		list, ok := cond.Value.([]any)
		if !ok {
			// Non-array value fails closed even for the negated operator.
			return false
		}

		return !inListValues(fieldValue, list)
	default:
		return false
	}
}

const compareIncomparable = -2

// compare coerces both operands per the declared value type and returns
// -1/0/1, or compareIncomparable when coercion fails.
func compare(fieldValue any, cond models.Condition) int {
	switch effectiveType(cond) {
	case models.ValueTypeNumber:
		left, okLeft := asNumber(fieldValue)
		right, okRight := asNumber(cond.Value)

		if !okLeft || !okRight {
			return compareIncomparable
		}

		switch {
		case left < right:
			return -1
		case left > right:
			return 1
		default:
			return 0
		}
	case models.ValueTypeBoolean:
		left, okLeft := asBool(fieldValue)
		right, okRight := asBool(cond.Value)

		if !okLeft || !okRight {
			return compareIncomparable
		}

		if left == right {
			return 0
		}

		return 1
	case models.ValueTypeDate:
		left, okLeft := asTime(fieldValue)
		right, okRight := asTime(cond.Value)

		if !okLeft || !okRight {
			return compareIncomparable
		}

		switch {
		case left.Before(right):
			return -1
		case left.After(right):
			return 1
		default:
			return 0
		}
	default:
		return strings.Compare(asString(fieldValue), asString(cond.Value))
	}
}

func orderedCompare(fieldValue any, cond models.Condition, test func(int) bool) bool {
	c := compare(fieldValue, cond)
	if c == compareIncomparable {
		return false
	}

	return test(c)
}

// effectiveType falls back to number when both sides look numeric, else
// string. Declared types always win.
func effectiveType(cond models.Condition) models.ValueType {
	if cond.ValueType != "" {
		return cond.ValueType
	}

	if _, ok := asNumber(cond.Value); ok {
		return models.ValueTypeNumber
	}

	return models.ValueTypeString
}

func contains(fieldValue, needle any) bool {
	switch v := fieldValue.(type) {
	case []any:
		return inListValues(needle, v)
	default:
		return strings.Contains(asString(fieldValue), asString(needle))
	}
}

func inList(fieldValue, listValue any) bool {
	list, ok := listValue.([]any)
	if !ok {
		return false
	}

	return inListValues(fieldValue, list)
}

func inListValues(fieldValue any, list []any) bool {
	needle := asString(fieldValue)
	for _, item := range list {
		if asString(item) == needle {
			return true
		}
	}

	return false
}

func asString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func asNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()

		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(v, 64)

		return f, err == nil
	default:
		return 0, false
	}
}

func asBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(v)

		return b, err == nil
	default:
		return false, false
	}
}

func asTime(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, v); err == nil {
				return t, true
			}
		}

		return time.Time{}, false
	case float64:
		return time.Unix(int64(v), 0).UTC(), true
	default:
		return time.Time{}, false
	}
}
