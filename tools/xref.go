package tools

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mips32sim/mips32/asm"
	"github.com/mips32sim/mips32/mem"
	"github.com/mips32sim/mips32/token"
)

// SymbolKind classifies a defined symbol by the segment its address
// falls in, so a cross-reference report can separate code labels from
// data labels.
type SymbolKind int

const (
	SymbolLabel SymbolKind = iota
	SymbolData
	SymbolUnknown
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolLabel:
		return "code"
	case SymbolData:
		return "data"
	default:
		return "unknown"
	}
}

// Reference is one use of a symbol name in an operand position.
type Reference struct {
	Line int
	Pos  token.Position
}

// SymbolEntry is one defined symbol together with where it was used.
type SymbolEntry struct {
	Name       string
	Address    uint32
	Kind       SymbolKind
	Global     bool
	References []Reference
}

// Report is the result of cross-referencing one translation unit:
// every defined symbol paired with its uses, plus any referenced name
// that was never defined.
type Report struct {
	File      string
	Symbols   []*SymbolEntry
	Undefined map[string][]Reference
}

// CrossReference builds a symbol cross-reference for source, using
// prog's local and global symbol tables (every defined label, whether
// or not it was ever promoted by `.globl`, already resolved to
// addresses) to classify definitions, and a fresh tokenization of
// source to find every operand-position use of a symbol name.
//
// A name promoted by `.globl` is deleted from the local table as part
// of promotion (spec §3's one-table-at-a-time invariant), so both
// tables must be walked to recover every definition.
//
// This walks the source text rather than the assembled memory image:
// prog keeps no retained statement list once encoding is done, so
// finding "where is X used" is a source-level question, not a
// memory-level one.
func CrossReference(file, source string, prog *asm.Program) (*Report, error) {
	lines := tokenizeLines(file, source)

	entries := make(map[string]*SymbolEntry)
	for name, sym := range prog.Local.All() {
		entries[name] = &SymbolEntry{
			Name:    name,
			Address: sym.Address,
			Kind:    classifyAddress(sym.Address),
		}
	}
	for name, sym := range prog.Global.All() {
		if _, ok := entries[name]; !ok {
			entries[name] = &SymbolEntry{
				Name:    name,
				Address: sym.Address,
				Kind:    classifyAddress(sym.Address),
			}
		}
	}
	for name := range prog.Globals {
		if e, ok := entries[name]; ok {
			e.Global = true
		}
	}

	undefined := make(map[string][]Reference)
	for _, ln := range lines {
		// .globl and .extern operands declare or define a name; they
		// are not uses of it.
		if dir := strings.ToLower(ln.Mnemonic); ln.IsDirective && (dir == ".globl" || dir == ".extern") {
			continue
		}
		for _, operand := range ln.Operands {
			for _, name := range labelOperands(operand) {
				ref := Reference{Line: ln.Number, Pos: ln.Pos}
				if e, ok := entries[name]; ok {
					e.References = append(e.References, ref)
				} else {
					undefined[name] = append(undefined[name], ref)
				}
			}
		}
	}

	out := make([]*SymbolEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })

	return &Report{File: file, Symbols: out, Undefined: undefined}, nil
}

// labelOperands extracts the label-shaped identifier(s) inside one
// operand's raw text: a bare label ("loop"), or the displacement-free
// half of a parenthesized memory operand is never a label (its offset
// is numeric), so this only needs to handle the bare case plus a
// label used as an immediate (e.g. "la $t0, buffer").
func labelOperands(operand string) []string {
	operand = strings.TrimSpace(operand)
	if operand == "" || strings.ContainsAny(operand, "()") {
		return nil
	}
	if strings.HasPrefix(operand, "$") {
		return nil
	}
	c := operand[0]
	if (c >= '0' && c <= '9') || c == '-' || c == '+' {
		return nil
	}
	return []string{operand}
}

func classifyAddress(addr uint32) SymbolKind {
	for _, seg := range mem.DefaultSegments() {
		if seg.Contains(addr) {
			if seg.IsText {
				return SymbolLabel
			}
			return SymbolData
		}
	}
	return SymbolUnknown
}

// String renders the report the way a linker's cross-reference
// listing reads: one line per symbol, its address, kind, and the
// source lines that reference it, followed by any undefined names.
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Cross-reference for %s\n", r.File)
	for _, e := range r.Symbols {
		scope := "local"
		if e.Global {
			scope = "global"
		}
		fmt.Fprintf(&b, "%-20s 0x%08X  %-5s %-6s  %d reference(s)\n", e.Name, e.Address, e.Kind, scope, len(e.References))
		for _, ref := range e.References {
			fmt.Fprintf(&b, "    line %d\n", ref.Line)
		}
	}
	if len(r.Undefined) > 0 {
		names := make([]string, 0, len(r.Undefined))
		for name := range r.Undefined {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintf(&b, "Undefined symbols:\n")
		for _, name := range names {
			fmt.Fprintf(&b, "    %s (%d use(s))\n", name, len(r.Undefined[name]))
		}
	}
	return b.String()
}
