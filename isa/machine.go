// Package isa is the instruction-set model shared by the assembler
// (which encodes statements into machine words) and the execution
// engine (which decodes and runs them), per spec §2 component (b) and
// §4.5. It owns no program state of its own; Machine is the small
// handle instructions operate on, constructed and driven by the
// engine package.
package isa

import (
	"github.com/mips32sim/mips32/excn"
	"github.com/mips32sim/mips32/mem"
	"github.com/mips32sim/mips32/reg"
)

// Machine bundles the register files, memory, and program counter an
// instruction's executor needs. It is intentionally a plain struct
// (not an interface) — isa sits low enough in the dependency graph
// that engine, the only other caller, can just pass its own state in
// directly, mirroring the closures-over-a-shared-handle design note in
// spec §9.
type Machine struct {
	GPR   *reg.RegisterFile
	FPR   *reg.RegisterFile
	CP0   *reg.RegisterFile
	PC    *reg.PC
	Mem   *mem.Memory
	// DelaySlot is true while the engine is executing the instruction
	// in a delay slot; a nested control-transfer instruction raises
	// ReservedInstruction (spec §4.5 step 5).
	DelaySlot bool
	// Requester is the access level memory accesses are evaluated at
	// (user program vs. kernel exception handler).
	Requester mem.AccessLevel

	// BranchTaken/BranchTarget stage a control transfer computed by a
	// branch or jump executor. The engine applies the transfer itself
	// (immediately, or after running the delay slot, depending on
	// configuration) rather than having executors write PC directly.
	BranchTaken  bool
	BranchTarget uint32
}

// StageBranch records a pending control transfer; taken=false clears
// any previous staging so a not-taken branch falls through normally.
func (m *Machine) StageBranch(taken bool, target uint32) {
	m.BranchTaken = taken
	m.BranchTarget = target
}

// NewMachine builds a Machine with fresh register files and the given
// shared Memory.
func NewMachine(m *mem.Memory) *Machine {
	return &Machine{
		GPR:       reg.NewGPRFile(),
		FPR:       reg.NewFPRFile(),
		CP0:       reg.NewCP0File(),
		PC:        reg.NewPC(),
		Mem:       m,
		Requester: mem.AccessUser,
	}
}

// raiseAddressException converts a *mem.Memory error into the
// matching *excn.Exception.
func raiseAddressException(err error) *excn.Exception {
	if ex, ok := mem.AsException(err); ok {
		return ex
	}
	return excn.NewAddressLoad(0, err.Error())
}

// Operands carries every operand value an instruction's encoder or
// executor might need, resolved by the assembler's matcher at
// encode time. Not every field is meaningful for every instruction;
// each instruction's family determines which ones it reads.
type Operands struct {
	Rd     uint32 // destination register address
	Rs     uint32 // first source register address
	Rt     uint32 // second source register address
	Shamt  uint8  // shift amount (0-31)
	Imm    int32  // sign-extended 16-bit immediate / offset
	ImmU   uint32 // zero-extended 16-bit immediate, for logical ops
	Target uint32 // 26-bit jump target (as a byte address, pre-shift)
	Bp     uint8  // bit position field for align (0-3)
	Code   uint32 // trap/syscall code field
}
