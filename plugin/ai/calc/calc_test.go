package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
	}{
		{"precedence", "3 + 4 * 2", 11},
		{"parentheses", "(3 + 4) * 2", 14},
		{"division", "7 / 2", 3.5},
		{"unary minus", "-5 + 3", -2},
		{"nested parens", "((1 + 2) * (3 + 4))", 21},
		{"decimals", "1.5 * 2", 3},
		{"single number", "42", 42},
		{"whitespace heavy", "  2   +   2 ", 4},
		{"chained subtraction", "10 - 3 - 2", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, err := Evaluate(tt.input)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, value, 1e-9)
		})
	}
}

func TestEvaluateErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"trailing operator", "3 +"},
		{"unclosed paren", "(1 + 2"},
		{"double dot", "1..2 + 3"},
		{"operator only", "*"},
		{"adjacent numbers", "1 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Evaluate(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestEvaluateDivisionByZero(t *testing.T) {
	_, err := Evaluate("1 / 0")
	assert.ErrorIs(t, err, ErrDivisionByZero)

	_, err = Evaluate("1 / (2 - 2)")
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "11", Format(11))
	assert.Equal(t, "3.5", Format(3.5))
	assert.Equal(t, "-2", Format(-2))
}
