package tools

import (
	"strings"
	"testing"

	"github.com/mips32sim/mips32/asm"
)

func TestCrossReferenceFindsDefinitionAndUse(t *testing.T) {
	source := ".globl main\nmain:\n\tj main\n"
	prog, err := asm.Assemble("t.asm", source)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	report, err := CrossReference("t.asm", source, prog)
	if err != nil {
		t.Fatalf("CrossReference() error = %v", err)
	}

	var main *SymbolEntry
	for _, e := range report.Symbols {
		if e.Name == "main" {
			main = e
		}
	}
	if main == nil {
		t.Fatal("expected a symbol entry for main")
	}
	if !main.Global {
		t.Error("expected main to be marked global (.globl)")
	}
	if main.Kind != SymbolLabel {
		t.Errorf("Kind = %v, want SymbolLabel", main.Kind)
	}
	if len(main.References) != 1 {
		t.Errorf("References = %d, want 1 (the j main operand)", len(main.References))
	}
}

func TestCrossReferenceClassifiesDataSymbol(t *testing.T) {
	source := ".data\ncount:\n\t.word 0\n.text\n.globl main\nmain:\n\tla $t0, count\n"
	prog, err := asm.Assemble("t.asm", source)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	report, err := CrossReference("t.asm", source, prog)
	if err != nil {
		t.Fatalf("CrossReference() error = %v", err)
	}

	var count *SymbolEntry
	for _, e := range report.Symbols {
		if e.Name == "count" {
			count = e
		}
	}
	if count == nil {
		t.Fatal("expected a symbol entry for count")
	}
	if count.Kind != SymbolData {
		t.Errorf("Kind = %v, want SymbolData", count.Kind)
	}
	if len(count.References) != 1 {
		t.Errorf("References = %d, want 1", len(count.References))
	}
}

func TestCrossReferenceReportsUndefinedSymbol(t *testing.T) {
	source := ".globl main\nmain:\n\tj elsewhere\n"
	// Assemble rejects a jump to an undefined name, so the program is
	// built from the same source without that jump.
	prog, err := asm.Assemble("t.asm", ".globl main\nmain:\n\tnop\n")
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	report, err := CrossReference("t.asm", source, prog)
	if err != nil {
		t.Fatalf("CrossReference() error = %v", err)
	}

	if refs, ok := report.Undefined["elsewhere"]; !ok || len(refs) != 1 {
		t.Errorf("Undefined[\"elsewhere\"] = %v, want one reference", refs)
	}
}

func TestReportStringContainsSymbolAndReferenceLine(t *testing.T) {
	source := ".globl main\nmain:\n\tj main\n"
	prog, err := asm.Assemble("t.asm", source)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	report, err := CrossReference("t.asm", source, prog)
	if err != nil {
		t.Fatalf("CrossReference() error = %v", err)
	}

	out := report.String()
	if !strings.Contains(out, "main") {
		t.Errorf("expected report to mention main, got: %q", out)
	}
	if !strings.Contains(out, "line 3") {
		t.Errorf("expected report to cite line 3 for the j main reference, got: %q", out)
	}
}

func TestSymbolKindString(t *testing.T) {
	cases := map[SymbolKind]string{
		SymbolLabel:   "code",
		SymbolData:    "data",
		SymbolUnknown: "unknown",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("SymbolKind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}
