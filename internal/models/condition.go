package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

type ConditionOperator string

const (
	OperatorLTE ConditionOperator = "<="
	OperatorGTE ConditionOperator = ">="
	OperatorLT  ConditionOperator = "<"
	OperatorGT  ConditionOperator = ">"
	OperatorEQ  ConditionOperator = "="
)

// RateCondition is a threshold test applied to one numeric vehicle value.
// The field name is documentation only (e.g. "venale"); the engine always
// supplies the value to test against.
type RateCondition struct {
	Field     string            `json:"field"`
	Operator  ConditionOperator `json:"operator"`
	Threshold float64           `json:"threshold"`
}

// Evaluate applies the condition to value. Unknown operators evaluate to
// false so a corrupt condition never grants the cheaper rate.
func (c RateCondition) Evaluate(value float64) bool {
	switch c.Operator {
	case OperatorLTE:
		return value <= c.Threshold
	case OperatorGTE:
		return value >= c.Threshold
	case OperatorLT:
		return value < c.Threshold
	case OperatorGT:
		return value > c.Threshold
	case OperatorEQ:
		return value == c.Threshold
	default:
		return false
	}
}

// Legacy conditions arrive as strings shaped "<identifier> <op> <integer>",
// with or without whitespace around the operator.
var conditionPattern = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*)\s*(<=|>=|<|>|=)\s*(-?[0-9]+)\s*$`)

// ParseRateCondition ingests a legacy string-encoded condition into a
// RateCondition. Anything outside the three-token grammar is an error.
func ParseRateCondition(text string) (*RateCondition, error) {
	matches := conditionPattern.FindStringSubmatch(text)
	if matches == nil {
		return nil, fmt.Errorf("condition %q does not match '<identifier> <operator> <integer>'", strings.TrimSpace(text))
	}

	threshold, err := strconv.ParseFloat(matches[3], 64)
	if err != nil {
		return nil, fmt.Errorf("condition threshold %q is not numeric: %w", matches[3], err)
	}

	return &RateCondition{
		Field:     matches[1],
		Operator:  ConditionOperator(matches[2]),
		Threshold: threshold,
	}, nil
}

// EvaluateConditionText evaluates a legacy string condition against value.
// Malformed input evaluates to false; it never errors. Callers that care
// about malformed conditions log them via ParseRateCondition.
func EvaluateConditionText(text string, value float64) bool {
	cond, err := ParseRateCondition(text)
	if err != nil {
		return false
	}
	return cond.Evaluate(value)
}
