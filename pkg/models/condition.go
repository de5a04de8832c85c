package models

// Operator is the comparison applied between a resolved field and the
// condition value.
type Operator string

const (
	OperatorEquals       Operator = "equals"
	OperatorNotEquals    Operator = "not_equals"
	OperatorContains     Operator = "contains"
	OperatorNotContains  Operator = "not_contains"
	OperatorGreaterThan  Operator = "greater_than"
	OperatorLessThan     Operator = "less_than"
	OperatorGreaterEqual Operator = "greater_equal"
	OperatorLessEqual    Operator = "less_equal"
	OperatorRegex        Operator = "regex"
	OperatorIn           Operator = "in"
	OperatorNotIn        Operator = "not_in"
)

// ValueType declares how both operands are coerced before comparison.
type ValueType string

const (
	ValueTypeString  ValueType = "string"
	ValueTypeNumber  ValueType = "number"
	ValueTypeBoolean ValueType = "boolean"
	ValueTypeDate    ValueType = "date"
	ValueTypeArray   ValueType = "array"
)

// Combinator joins a condition with its siblings.
type Combinator string

const (
	CombinatorAnd Combinator = "and"
	CombinatorOr  Combinator = "or"
)

// Condition is a single field/operator/value predicate. Field is a
// dot-notation path into the evaluation context.
type Condition struct {
	Field      string     `json:"field"    validate:"required"`
	Operator   Operator   `json:"operator" validate:"required"`
	Value      any        `json:"value"`
	ValueType  ValueType  `json:"value_type,omitempty"`
	Combinator Combinator `json:"combinator,omitempty"`
}

// EffectiveCombinator returns the combinator, defaulting to AND.
func (c Condition) EffectiveCombinator() Combinator {
	if c.Combinator == CombinatorOr {
		return CombinatorOr
	}

	return CombinatorAnd
}
