package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// TEST SUITE 1: CONDITION PARSING
// ============================================================================

func TestParseRateCondition_Basic(t *testing.T) {
	cond, err := ParseRateCondition("venale<=25000000")
	require.NoError(t, err)

	assert.Equal(t, "venale", cond.Field)
	assert.Equal(t, OperatorLTE, cond.Operator)
	assert.Equal(t, 25000000.0, cond.Threshold)
}

func TestParseRateCondition_Whitespace(t *testing.T) {
	cond, err := ParseRateCondition("  venale  >=  5000000  ")
	require.NoError(t, err)

	assert.Equal(t, "venale", cond.Field)
	assert.Equal(t, OperatorGTE, cond.Operator)
	assert.Equal(t, 5000000.0, cond.Threshold)
}

func TestParseRateCondition_AllOperators(t *testing.T) {
	cases := map[string]ConditionOperator{
		"venale<=100": OperatorLTE,
		"venale>=100": OperatorGTE,
		"venale<100":  OperatorLT,
		"venale>100":  OperatorGT,
		"venale=100":  OperatorEQ,
	}

	for text, expected := range cases {
		cond, err := ParseRateCondition(text)
		require.NoError(t, err, "parsing %q", text)
		assert.Equal(t, expected, cond.Operator, "operator of %q", text)
	}
}

func TestParseRateCondition_NegativeThreshold(t *testing.T) {
	cond, err := ParseRateCondition("delta>-500")
	require.NoError(t, err)

	assert.Equal(t, -500.0, cond.Threshold)
}

func TestParseRateCondition_Malformed(t *testing.T) {
	malformed := []string{
		"",
		"venale",
		"venale<=",
		"<=25000000",
		"venale <= 25,000,000",
		"venale == 100",
		"venale <= 100 extra",
		"25000000<=venale",
	}

	for _, text := range malformed {
		_, err := ParseRateCondition(text)
		assert.Error(t, err, "expected %q to be rejected", text)
	}
}

// ============================================================================
// TEST SUITE 2: CONDITION EVALUATION
// ============================================================================

func TestRateConditionEvaluate(t *testing.T) {
	cond := RateCondition{Field: "venale", Operator: OperatorLTE, Threshold: 25000000}

	assert.True(t, cond.Evaluate(20000000))
	assert.True(t, cond.Evaluate(25000000), "boundary value satisfies <=")
	assert.False(t, cond.Evaluate(25000001))
}

func TestRateConditionEvaluate_UnknownOperator(t *testing.T) {
	cond := RateCondition{Field: "venale", Operator: "~", Threshold: 100}

	assert.False(t, cond.Evaluate(50), "unknown operator must evaluate to false")
	assert.False(t, cond.Evaluate(150), "unknown operator must evaluate to false")
}

func TestEvaluateConditionText(t *testing.T) {
	assert.True(t, EvaluateConditionText("venale<=25000000", 20000000))
	assert.False(t, EvaluateConditionText("venale<=25000000", 30000000))
}

func TestEvaluateConditionText_MalformedFailsClosed(t *testing.T) {
	assert.False(t, EvaluateConditionText("not a condition", 0))
	assert.False(t, EvaluateConditionText("", 1000000))
}

// ============================================================================
// TEST SUITE 3: RESOLVED CONDITION FALLBACK
// ============================================================================

func TestResolvedCondition_PrefersParsedCondition(t *testing.T) {
	params := &ConditionalRateParams{
		Condition:  &RateCondition{Field: "venale", Operator: OperatorGT, Threshold: 1},
		Expression: "venale<=25000000",
	}

	cond := params.ResolvedCondition()
	require.NotNil(t, cond)
	assert.Equal(t, OperatorGT, cond.Operator, "structured condition wins over the legacy expression")
}

func TestResolvedCondition_FallsBackToExpression(t *testing.T) {
	params := &ConditionalRateParams{Expression: "venale<=25000000"}

	cond := params.ResolvedCondition()
	require.NotNil(t, cond)
	assert.Equal(t, OperatorLTE, cond.Operator)
	assert.Equal(t, 25000000.0, cond.Threshold)
}

func TestResolvedCondition_MalformedExpression(t *testing.T) {
	params := &ConditionalRateParams{Expression: "garbage"}

	assert.Nil(t, params.ResolvedCondition())
}

func TestResolvedCondition_NilReceiver(t *testing.T) {
	var params *ConditionalRateParams

	assert.Nil(t, params.ResolvedCondition())
}
