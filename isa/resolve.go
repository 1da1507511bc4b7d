package isa

import (
	"fmt"

	"github.com/mips32sim/mips32/bits"
	"github.com/mips32sim/mips32/token"
)

// FieldMap entries name which Operands field a pattern slot fills.
// "mem" is a sentinel for a SlotMem slot: its base register always
// fills Rs and its offset always fills Imm/ImmU, regardless of the
// instruction's own field naming.
const (
	FieldRd     = "rd"
	FieldRs     = "rs"
	FieldRt     = "rt"
	FieldShamt  = "shamt"
	FieldImm    = "imm"
	FieldTarget = "target"
	FieldCode   = "code"
	FieldBp     = "bp"
	fieldMem    = "mem"
)

// UnresolvedLabel is returned by BuildOperands when an operand slot
// holds a label the assembler must resolve against its symbol table
// before the instruction can be finished with ResolveLabel.
type UnresolvedLabel struct {
	Field string
	Name  string
	Pos   token.Position
}

// BuildOperands fills an Operands struct from a matched operand list
// using instr's declared field mapping. Literal immediates and
// registers are resolved immediately; the first label-shaped operand
// encountered is reported via the returned *UnresolvedLabel instead of
// being filled in, for the caller to resolve with ResolveLabel.
func BuildOperands(instr *Instruction, ops []MatchedOperand) (Operands, *UnresolvedLabel, error) {
	var out Operands
	if len(instr.FieldMap) != len(ops) {
		return out, nil, fmt.Errorf("%s: internal error: field map length mismatch", instr.Mnemonic)
	}
	for i, op := range ops {
		field := instr.FieldMap[i]
		switch op.Kind {
		case SlotReg:
			assignReg(&out, field, op.RegAddr)
		case SlotMem:
			out.Rs = op.RegAddr
			if op.HasImm {
				if op.ImmTok.Type == token.Label {
					return out, &UnresolvedLabel{Field: FieldImm, Name: op.ImmTok.Raw, Pos: op.ImmTok.Pos}, nil
				}
				out.Imm = int32(bits.ToInt(op.ImmTok.ParsedInt, 16))
				out.ImmU = uint32(bits.ToUint(op.ImmTok.ParsedInt, 16))
			}
		case SlotImm:
			if op.ImmTok.Type == token.Label {
				return out, &UnresolvedLabel{Field: field, Name: op.ImmTok.Raw, Pos: op.ImmTok.Pos}, nil
			}
			assignImm(&out, field, op.ImmTok.ParsedInt)
		}
	}
	return out, nil, nil
}

func assignReg(out *Operands, field string, addr uint32) {
	switch field {
	case FieldRd:
		out.Rd = addr
	case FieldRs:
		out.Rs = addr
	case FieldRt:
		out.Rt = addr
	}
}

func assignImm(out *Operands, field string, raw uint64) {
	switch field {
	case FieldImm:
		out.Imm = int32(bits.ToInt(raw, 16))
		out.ImmU = uint32(bits.ToUint(raw, 16))
	case FieldTarget:
		out.Target = uint32(raw)
	case FieldShamt:
		out.Shamt = uint8(bits.ToUint(raw, 5))
	case FieldCode:
		out.Code = uint32(raw)
	case FieldBp:
		out.Bp = uint8(bits.ToUint(raw, 2))
	}
}

// ResolveLabel finishes an Operands struct after the assembler has
// looked up an UnresolvedLabel's address, interpreting it per instr's
// Family: branches store a word-granular PC-relative offset, jumps
// store an absolute byte target, and every other family stores the
// label's absolute address in Imm and ImmU (addiupc, which `la`
// expands to, loads that address into rt as is).
func ResolveLabel(instr *Instruction, out *Operands, pc uint32, addr uint32) {
	switch instr.Family {
	case FamilyBranch, FamilyBranch1, FamilyCompactBranch, FamilyCompactBranch1:
		offset := int32(addr) - int32(pc+4)
		out.Imm = offset / 4
		out.ImmU = uint32(bits.ToUint(uint64(out.Imm), 16))
	case FamilyJump, FamilyCompactJump:
		out.Target = addr
	default:
		out.Imm = int32(addr)
		out.ImmU = addr
	}
}
