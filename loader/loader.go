// Package loader wires an already-assembled program into a fresh
// isa.Machine: it doesn't touch the memory image (asm.Assemble has
// already written text and data), only the register state a program
// expects on entry.
package loader

import (
	"github.com/mips32sim/mips32/asm"
	"github.com/mips32sim/mips32/isa"
	"github.com/mips32sim/mips32/mem"
	"github.com/mips32sim/mips32/reg"
)

// Load builds a Machine over prog's memory image, sets $gp and $sp to
// their architectural initial values, $ra to 0 (dropping off the end
// of main looks like returning to address zero, matching a program
// that never set up its own call stack), and the PC to the program's
// entry point.
func Load(prog *asm.Program) *isa.Machine {
	m := isa.NewMachine(prog.Memory)
	m.GPR.WriteInteger(reg.Gp, uint64(mem.GlobalPointerInit))
	m.GPR.WriteInteger(reg.Sp, uint64(mem.StackPointerInit))
	m.GPR.WriteInteger(reg.Ra, 0)
	m.PC.Set(prog.EntryPC)
	return m
}
