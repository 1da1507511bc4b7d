package debugger

import (
	"fmt"

	"github.com/mips32sim/mips32/isa"
)

// ExpressionEvaluator evaluates the small condition/print-expression
// grammar (registers, bracketed memory reads, symbols, arithmetic,
// bitwise ops, comparisons) and keeps a history of results so the TUI
// can label each evaluated value.
type ExpressionEvaluator struct {
	history []int64
}

// NewExpressionEvaluator builds an evaluator with empty history.
func NewExpressionEvaluator() *ExpressionEvaluator {
	return &ExpressionEvaluator{}
}

// EvaluateExpression evaluates expr and records the result in history.
func (e *ExpressionEvaluator) EvaluateExpression(expr string, m *isa.Machine, symbols map[string]uint32) (int64, error) {
	result, err := e.evaluate(expr, m, symbols)
	if err != nil {
		return 0, err
	}
	e.history = append(e.history, result)
	return result, nil
}

// Evaluate evaluates expr and reports whether the result is nonzero,
// for use as a breakpoint/watchpoint condition.
func (e *ExpressionEvaluator) Evaluate(expr string, m *isa.Machine, symbols map[string]uint32) (bool, error) {
	result, err := e.evaluate(expr, m, symbols)
	if err != nil {
		return false, err
	}
	return result != 0, nil
}

func (e *ExpressionEvaluator) evaluate(expr string, m *isa.Machine, symbols map[string]uint32) (int64, error) {
	if expr == "" {
		return 0, fmt.Errorf("empty expression")
	}
	tokens := NewExprLexer(expr).TokenizeAll()
	parser := NewExprParser(tokens, m, symbols)
	return parser.Parse()
}

// GetValueNumber returns how many results are in history so far.
func (e *ExpressionEvaluator) GetValueNumber() int {
	return len(e.history)
}

// GetValue returns the number-th recorded result (1-indexed, oldest
// first), matching how the TUI prints "$1", "$2", ... for past prints.
func (e *ExpressionEvaluator) GetValue(number int) (int64, error) {
	if number < 1 || number > len(e.history) {
		return 0, fmt.Errorf("value %d not in history", number)
	}
	return e.history[number-1], nil
}

// Reset clears the recorded history.
func (e *ExpressionEvaluator) Reset() {
	e.history = e.history[:0]
}
