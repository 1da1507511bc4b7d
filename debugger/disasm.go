package debugger

import (
	"fmt"
	"strings"

	"github.com/mips32sim/mips32/asm"
	"github.com/mips32sim/mips32/isa"
)

// formatInstructionAt renders the instruction at addr for the TUI's
// disassembly panel: its mnemonic plus whichever operand fields its
// family actually uses. Falls back to a raw placeholder when nothing
// is assembled at addr (e.g. past the end of the program).
func formatInstructionAt(m *isa.Machine, addr uint32) string {
	raw, err := m.Mem.ReadInstruction(addr)
	if err != nil || raw == nil {
		return "...."
	}
	st, ok := raw.(*asm.Statement)
	if !ok || st.Instr == nil {
		return "...."
	}
	return st.Mnemonic + " " + formatOperands(m, st.Instr, st.Operands)
}

func formatOperands(m *isa.Machine, instr *isa.Instruction, ops isa.Operands) string {
	var parts []string

	regName := func(addr uint32) string {
		if r := m.GPR.ByAddress(addr); r != nil {
			return r.Name()
		}
		return fmt.Sprintf("$%d", addr)
	}

	switch instr.Family {
	case isa.FamilyJump:
		parts = append(parts, fmt.Sprintf("0x%08X", ops.Target))
	case isa.FamilyJumpReg:
		parts = append(parts, regName(ops.Rs))
	default:
		if ops.Rd != 0 {
			parts = append(parts, regName(ops.Rd))
		}
		if ops.Rs != 0 || ops.Rd == 0 {
			parts = append(parts, regName(ops.Rs))
		}
		if ops.Rt != 0 {
			parts = append(parts, regName(ops.Rt))
		}
		if ops.Shamt != 0 {
			parts = append(parts, fmt.Sprintf("%d", ops.Shamt))
		}
		if ops.Imm != 0 {
			parts = append(parts, fmt.Sprintf("%d", ops.Imm))
		}
	}

	return strings.Join(parts, ", ")
}
