package debugger

import (
	"testing"

	"github.com/mips32sim/mips32/isa"
	"github.com/mips32sim/mips32/mem"
	"github.com/mips32sim/mips32/reg"
)

func TestExpressionEvaluatorNumbers(t *testing.T) {
	eval := NewExpressionEvaluator()
	m := isa.NewMachine(mem.NewMemory())
	symbols := make(map[string]uint32)

	tests := []struct {
		name string
		expr string
		want int64
	}{
		{"Decimal", "42", 42},
		{"Hex", "0x100", 0x100},
		{"Hex uppercase", "0X1A", 0x1A},
		{"Binary", "0b1010", 0b1010},
		{"Octal", "010", 8},
		{"Negative", "-1", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eval.EvaluateExpression(tt.expr, m, symbols)
			if err != nil {
				t.Fatalf("EvaluateExpression() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("EvaluateExpression() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExpressionEvaluatorRegisters(t *testing.T) {
	eval := NewExpressionEvaluator()
	m := isa.NewMachine(mem.NewMemory())
	symbols := make(map[string]uint32)

	m.GPR.WriteInteger(reg.T0, 100)
	m.GPR.WriteInteger(reg.V0, 200)
	m.GPR.WriteInteger(reg.Sp, 0x1000)

	tests := []struct {
		name string
		expr string
		want int64
	}{
		{"$t0", "$t0", 100},
		{"$v0", "$v0", 200},
		{"$sp", "$sp", 0x1000},
		{"by-number", "$8", 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eval.EvaluateExpression(tt.expr, m, symbols)
			if err != nil {
				t.Fatalf("EvaluateExpression() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("EvaluateExpression() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExpressionEvaluatorArithmetic(t *testing.T) {
	eval := NewExpressionEvaluator()
	m := isa.NewMachine(mem.NewMemory())
	symbols := make(map[string]uint32)
	m.GPR.WriteInteger(reg.T0, 10)

	tests := []struct {
		expr string
		want int64
	}{
		{"1 + 2", 3},
		{"10 - 3", 7},
		{"2 * 3", 6},
		{"10 / 2", 5},
		{"$t0 + 5", 15},
		{"1 << 4", 16},
		{"0xFF & 0x0F", 0x0F},
		{"(1 + 2) * 3", 9},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := eval.EvaluateExpression(tt.expr, m, symbols)
			if err != nil {
				t.Fatalf("EvaluateExpression(%q) error = %v", tt.expr, err)
			}
			if got != tt.want {
				t.Errorf("EvaluateExpression(%q) = %d, want %d", tt.expr, got, tt.want)
			}
		})
	}
}

func TestExpressionEvaluatorSymbols(t *testing.T) {
	eval := NewExpressionEvaluator()
	m := isa.NewMachine(mem.NewMemory())
	symbols := map[string]uint32{"main": 0x00400000}

	got, err := eval.EvaluateExpression("main", m, symbols)
	if err != nil {
		t.Fatalf("EvaluateExpression() error = %v", err)
	}
	if got != 0x00400000 {
		t.Errorf("EvaluateExpression() = 0x%X, want 0x00400000", got)
	}
}

func TestExpressionEvaluatorMemoryRead(t *testing.T) {
	eval := NewExpressionEvaluator()
	m := isa.NewMachine(mem.NewMemory())
	symbols := make(map[string]uint32)

	addr := uint32(mem.UserDataLower)
	if err := m.Mem.WriteBytes(addr, 0x1234, 4, false, m.Requester); err != nil {
		t.Fatalf("WriteBytes failed: %v", err)
	}

	got, err := eval.EvaluateExpression("[0x10000000]", m, symbols)
	if err != nil {
		t.Fatalf("EvaluateExpression() error = %v", err)
	}
	if got != 0x1234 {
		t.Errorf("EvaluateExpression() = 0x%X, want 0x1234", got)
	}
}

func TestExpressionEvaluatorCondition(t *testing.T) {
	eval := NewExpressionEvaluator()
	m := isa.NewMachine(mem.NewMemory())
	symbols := make(map[string]uint32)
	m.GPR.WriteInteger(reg.T0, 5)

	ok, err := eval.Evaluate("$t0 == 5", m, symbols)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if !ok {
		t.Error("expected condition $t0 == 5 to be true")
	}

	ok, err = eval.Evaluate("$t0 != 5", m, symbols)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if ok {
		t.Error("expected condition $t0 != 5 to be false")
	}
}

func TestExpressionEvaluatorHistory(t *testing.T) {
	eval := NewExpressionEvaluator()
	m := isa.NewMachine(mem.NewMemory())
	symbols := make(map[string]uint32)

	if _, err := eval.EvaluateExpression("10", m, symbols); err != nil {
		t.Fatalf("EvaluateExpression() error = %v", err)
	}
	if _, err := eval.EvaluateExpression("20", m, symbols); err != nil {
		t.Fatalf("EvaluateExpression() error = %v", err)
	}

	v1, err := eval.GetValue(1)
	if err != nil || v1 != 10 {
		t.Errorf("GetValue(1) = %d, %v, want 10, nil", v1, err)
	}
	v2, err := eval.GetValue(2)
	if err != nil || v2 != 20 {
		t.Errorf("GetValue(2) = %d, %v, want 20, nil", v2, err)
	}

	if _, err := eval.GetValue(99); err == nil {
		t.Error("expected error for out-of-range history index")
	}

	eval.Reset()
	if _, err := eval.GetValue(1); err == nil {
		t.Error("expected error after reset")
	}
}

func TestExpressionEvaluatorUnknownIdentifier(t *testing.T) {
	eval := NewExpressionEvaluator()
	m := isa.NewMachine(mem.NewMemory())
	symbols := make(map[string]uint32)

	if _, err := eval.EvaluateExpression("nosuchsymbol", m, symbols); err == nil {
		t.Error("expected error for unknown symbol")
	}
}

func TestExpressionEvaluatorDivisionByZero(t *testing.T) {
	eval := NewExpressionEvaluator()
	m := isa.NewMachine(mem.NewMemory())
	symbols := make(map[string]uint32)

	if _, err := eval.EvaluateExpression("1 / 0", m, symbols); err == nil {
		t.Error("expected division-by-zero error")
	}
}
