package chat

import "github.com/sweax/sweax/plugin/ai/calc"

// answerArithmetic evaluates a pre-validated arithmetic expression.
// Malformed input and division by zero degrade to the fixed error
// string; the evaluator never panics.
func answerArithmetic(input string) string {
	value, err := calc.Evaluate(input)
	if err != nil {
		return replyArithmeticBroken
	}
	return "Sonuç: " + calc.Format(value)
}
