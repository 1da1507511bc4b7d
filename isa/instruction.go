package isa

import (
	"fmt"

	"github.com/mips32sim/mips32/excn"
	"github.com/mips32sim/mips32/token"
)

// Family determines how an instruction's word is assembled from its
// Operands and how its Target/Imm fields are interpreted, per the
// basic-instruction families in spec §4.5.
type Family int

const (
	FamilyR             Family = iota // rd, rs, rt
	FamilyShift                       // rd, rt, shamt
	FamilyI                           // rt, rs, imm
	FamilyLoadStore                   // rt, offset(rs)
	FamilyBranch                      // rs, rt, offset -- delayed
	FamilyBranch1                     // rs, offset -- delayed (blez/bgtz/bltz/bgez family)
	FamilyCompactBranch               // rs, rt, offset -- no delay slot
	FamilyCompactBranch1              // rs, offset -- no delay slot
	FamilyJump                        // target -- delayed
	FamilyJumpReg                     // rs (jr) or rd, rs (jalr) -- delayed
	FamilyCompactJump                 // target, no delay slot (bc/balc)
	FamilyJumpIndexed                 // rt, rs -- no delay slot (jic/jialc)
	FamilyTrap                        // rs, rt
	FamilySyscall                     // no operands, or one immediate code
)

// Instruction is one basic (non-pseudo) opcode: a fixed encoding
// recipe plus the behavior it has on a Machine. The assembler uses
// Pattern/Family/Opcode/Funct to encode a matched statement; the
// engine calls Execute to run it.
type Instruction struct {
	Mnemonic     string
	Pattern      []SlotKind
	FieldMap     []string // per-slot destination field name, see resolve.go
	Family       Family
	Opcode       uint32
	Funct        uint32 // funct field for FamilyR/FamilyShift/FamilyTrap/FamilyJumpReg
	HasDelaySlot bool
	Execute      func(m *Machine, ops Operands) *excn.Exception
	Describe     string
}

// registry indexes basic instructions by lowercase mnemonic; each
// mnemonic may have several overloads distinguished by operand shape
// (e.g. "sll" with and without an explicit destination).
var registry = map[string][]*Instruction{}

func register(ins *Instruction) {
	registry[ins.Mnemonic] = append(registry[ins.Mnemonic], ins)
}

// IsMnemonic reports whether word names a basic or pseudo instruction.
// The token.Classifier implementations in asm and tools call it to
// recognize mnemonics.
func IsMnemonic(word string) bool {
	if _, ok := registry[word]; ok {
		return true
	}
	_, ok := pseudoRegistry[word]
	return ok
}

// Lookup returns every basic-instruction overload for mnemonic.
func Lookup(mnemonic string) ([]*Instruction, bool) {
	ins, ok := registry[mnemonic]
	return ins, ok
}

// Match selects the basic-instruction overload whose operand shape
// matches the statement's post-mnemonic tokens, per spec §4.5's
// operand-shape matching requirement. Returns an error naming the
// available shapes when no overload matches, so the assembler can
// surface a useful diagnostic.
func Match(mnemonic string, operandToks []token.Token) (*Instruction, []MatchedOperand, error) {
	candidates, ok := registry[mnemonic]
	if !ok {
		return nil, nil, fmt.Errorf("%q is not a basic instruction", mnemonic)
	}
	ops, err := parseOperands(operandToks)
	if err != nil {
		return nil, nil, err
	}
	for _, c := range candidates {
		if matchesPattern(c.Pattern, ops) {
			return c, ops, nil
		}
	}
	shapes := make([]string, 0, len(candidates))
	for _, c := range candidates {
		shapes = append(shapes, fmt.Sprint(c.Pattern))
	}
	return nil, nil, fmt.Errorf("%q does not accept %d operand(s) of the given shape; expected one of %v", mnemonic, len(ops), shapes)
}
