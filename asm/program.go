package asm

import (
	"github.com/mips32sim/mips32/isa"
	"github.com/mips32sim/mips32/mem"
	"github.com/mips32sim/mips32/token"
)

// Statement is one assembled instruction: its matched overload, the
// operand list extracted from its source tokens, and the address it
// was assigned during phase one. Directives never become Statements —
// they execute immediately and leave only their side effects (bytes
// in memory, symbols in the table) behind.
type Statement struct {
	Mnemonic string
	Address  uint32
	Segment  string
	Pos      token.Position
	Instr    *isa.Instruction
	matched  []isa.MatchedOperand
	Operands isa.Operands
	Encoded  uint32
}

// Program is the output of assembling one translation unit: the
// memory image (text, data, and the symbol-indexed instruction
// records engine will execute) plus diagnostics collected along the
// way.
type Program struct {
	Memory     *mem.Memory
	Global     *SymbolTable
	Local      *SymbolTable              // every defined label not promoted to Global by .globl
	Globals    map[string]token.Position // names declared via .globl
	Warnings   *ErrorList
	EntryPC    uint32
	Statements []*Statement // every encoded instruction, in assembly order
}

// writeRequester is the access level the assembler writes memory and
// instructions with. Using AccessKernel lets it populate both user and
// kernel segments uniformly — AccessAll segments permit any requester,
// and only a kernel requester may populate the kernel-only ones.
const writeRequester = mem.AccessKernel
