package isa

import (
	"github.com/mips32sim/mips32/bits"
	"github.com/mips32sim/mips32/excn"
	"github.com/mips32sim/mips32/reg"
)

// readR reads general register addr as a plain 32-bit unsigned value.
func readR(m *Machine, addr uint32) uint32 { return uint32(m.GPR.ReadInteger(addr, false)) }

func writeR(m *Machine, addr uint32, v uint32) { m.GPR.WriteInteger(addr, uint64(v)) }

func loadInto(m *Machine, ops Operands, n int, signed bool) *excn.Exception {
	base := readR(m, ops.Rs)
	addr := uint32(int32(base) + ops.Imm)
	v, err := m.Mem.ReadBytes(addr, n, signed, m.Mem.IsStackAddress(addr), m.Requester)
	if err != nil {
		return raiseAddressException(err)
	}
	writeR(m, ops.Rt, uint32(v))
	return nil
}

func storeFrom(m *Machine, ops Operands, n int) *excn.Exception {
	base := readR(m, ops.Rs)
	addr := uint32(int32(base) + ops.Imm)
	v := uint64(readR(m, ops.Rt))
	if err := m.Mem.WriteBytes(addr, v, n, m.Mem.IsStackAddress(addr), m.Requester); err != nil {
		return raiseAddressException(err)
	}
	return nil
}

func init() {
	registerArithmetic()
	registerShifts()
	registerImmediate()
	registerLoadStore()
	registerBranches()
	registerJumps()
	registerTrapsAndSystem()
}

func registerArithmetic() {
	rrr := []SlotKind{SlotReg, SlotReg, SlotReg}
	rdRsRt := []string{FieldRd, FieldRs, FieldRt}

	register(&Instruction{Mnemonic: "add", Pattern: rrr, FieldMap: rdRsRt, Family: FamilyR, Funct: 0x20,
		Describe: "signed addition, traps on overflow",
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			a, b := uint64(readR(m, ops.Rs)), uint64(readR(m, ops.Rt))
			sum := a + b
			if bits.DetectOverflow(a, b, sum, 32, false) {
				return excn.NewOverflow()
			}
			writeR(m, ops.Rd, uint32(sum))
			return nil
		}})
	register(&Instruction{Mnemonic: "addu", Pattern: rrr, FieldMap: rdRsRt, Family: FamilyR, Funct: 0x21,
		Describe: "unsigned addition, never traps",
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			writeR(m, ops.Rd, readR(m, ops.Rs)+readR(m, ops.Rt))
			return nil
		}})
	register(&Instruction{Mnemonic: "sub", Pattern: rrr, FieldMap: rdRsRt, Family: FamilyR, Funct: 0x22,
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			a, b := uint64(readR(m, ops.Rs)), uint64(readR(m, ops.Rt))
			diff := a - b
			if bits.DetectOverflow(a, b, diff, 32, true) {
				return excn.NewOverflow()
			}
			writeR(m, ops.Rd, uint32(diff))
			return nil
		}})
	register(&Instruction{Mnemonic: "subu", Pattern: rrr, FieldMap: rdRsRt, Family: FamilyR, Funct: 0x23,
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			writeR(m, ops.Rd, readR(m, ops.Rs)-readR(m, ops.Rt))
			return nil
		}})
	register(&Instruction{Mnemonic: "and", Pattern: rrr, FieldMap: rdRsRt, Family: FamilyR, Funct: 0x24,
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			writeR(m, ops.Rd, readR(m, ops.Rs)&readR(m, ops.Rt))
			return nil
		}})
	register(&Instruction{Mnemonic: "or", Pattern: rrr, FieldMap: rdRsRt, Family: FamilyR, Funct: 0x25,
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			writeR(m, ops.Rd, readR(m, ops.Rs)|readR(m, ops.Rt))
			return nil
		}})
	register(&Instruction{Mnemonic: "xor", Pattern: rrr, FieldMap: rdRsRt, Family: FamilyR, Funct: 0x26,
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			writeR(m, ops.Rd, readR(m, ops.Rs)^readR(m, ops.Rt))
			return nil
		}})
	register(&Instruction{Mnemonic: "nor", Pattern: rrr, FieldMap: rdRsRt, Family: FamilyR, Funct: 0x27,
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			writeR(m, ops.Rd, ^(readR(m, ops.Rs) | readR(m, ops.Rt)))
			return nil
		}})
	register(&Instruction{Mnemonic: "slt", Pattern: rrr, FieldMap: rdRsRt, Family: FamilyR, Funct: 0x2A,
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			if int32(readR(m, ops.Rs)) < int32(readR(m, ops.Rt)) {
				writeR(m, ops.Rd, 1)
			} else {
				writeR(m, ops.Rd, 0)
			}
			return nil
		}})
	register(&Instruction{Mnemonic: "sltu", Pattern: rrr, FieldMap: rdRsRt, Family: FamilyR, Funct: 0x2B,
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			if readR(m, ops.Rs) < readR(m, ops.Rt) {
				writeR(m, ops.Rd, 1)
			} else {
				writeR(m, ops.Rd, 0)
			}
			return nil
		}})

	// mul/div/divu/mod/modu share SPECIAL's rd,rs,rt shape. Real
	// MIPS32r6 distinguishes div/mod (and divu/modu) by the shamt
	// field's value with a shared funct; this table doesn't carry a
	// per-instruction shamt discriminator through FamilyR's encoding,
	// so each gets its own funct instead.
	register(&Instruction{Mnemonic: "mul", Pattern: rrr, FieldMap: rdRsRt, Family: FamilyR, Funct: 0x18,
		Describe: "signed multiply, low word only, never traps",
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			a, b := int64(int32(readR(m, ops.Rs))), int64(int32(readR(m, ops.Rt)))
			writeR(m, ops.Rd, uint32(a*b))
			return nil
		}})
	register(&Instruction{Mnemonic: "div", Pattern: rrr, FieldMap: rdRsRt, Family: FamilyR, Funct: 0x1A,
		Describe: "signed division, quotient; divide-by-zero yields 0",
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			rt := int32(readR(m, ops.Rt))
			if rt == 0 {
				writeR(m, ops.Rd, 0)
				return nil
			}
			writeR(m, ops.Rd, uint32(int32(readR(m, ops.Rs))/rt))
			return nil
		}})
	register(&Instruction{Mnemonic: "divu", Pattern: rrr, FieldMap: rdRsRt, Family: FamilyR, Funct: 0x1B,
		Describe: "unsigned division, quotient; divide-by-zero yields 0",
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			rt := readR(m, ops.Rt)
			if rt == 0 {
				writeR(m, ops.Rd, 0)
				return nil
			}
			writeR(m, ops.Rd, readR(m, ops.Rs)/rt)
			return nil
		}})
	register(&Instruction{Mnemonic: "mod", Pattern: rrr, FieldMap: rdRsRt, Family: FamilyR, Funct: 0x1C,
		Describe: "signed division, remainder; divide-by-zero yields 0",
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			rt := int32(readR(m, ops.Rt))
			if rt == 0 {
				writeR(m, ops.Rd, 0)
				return nil
			}
			writeR(m, ops.Rd, uint32(int32(readR(m, ops.Rs))%rt))
			return nil
		}})
	register(&Instruction{Mnemonic: "modu", Pattern: rrr, FieldMap: rdRsRt, Family: FamilyR, Funct: 0x1D,
		Describe: "unsigned division, remainder; divide-by-zero yields 0",
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			rt := readR(m, ops.Rt)
			if rt == 0 {
				writeR(m, ops.Rd, 0)
				return nil
			}
			writeR(m, ops.Rd, readR(m, ops.Rs)%rt)
			return nil
		}})

	rrrr := []SlotKind{SlotReg, SlotReg, SlotReg, SlotImm}
	register(&Instruction{Mnemonic: "align", Pattern: rrrr, FieldMap: []string{FieldRd, FieldRs, FieldRt, FieldBp},
		Family: FamilyR, Funct: 0x20, Describe: "concatenate rt:rs and extract a word at byte position bp",
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			if ops.Bp == 0 {
				writeR(m, ops.Rd, readR(m, ops.Rs))
				return nil
			}
			hi := uint64(readR(m, ops.Rt)) << (8 * uint(ops.Bp))
			lo := uint64(readR(m, ops.Rs)) >> (32 - 8*uint(ops.Bp))
			writeR(m, ops.Rd, uint32(hi|lo))
			return nil
		}})
}

func registerShifts() {
	rdRtShamt := []SlotKind{SlotReg, SlotReg, SlotImm}
	register(&Instruction{Mnemonic: "sll", Pattern: rdRtShamt, FieldMap: []string{FieldRd, FieldRt, FieldShamt},
		Family: FamilyShift, Funct: 0x00, Describe: "logical shift left",
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			writeR(m, ops.Rd, readR(m, ops.Rt)<<ops.Shamt)
			return nil
		}})
	register(&Instruction{Mnemonic: "srl", Pattern: rdRtShamt, FieldMap: []string{FieldRd, FieldRt, FieldShamt},
		Family: FamilyShift, Funct: 0x02,
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			writeR(m, ops.Rd, readR(m, ops.Rt)>>ops.Shamt)
			return nil
		}})
	register(&Instruction{Mnemonic: "sra", Pattern: rdRtShamt, FieldMap: []string{FieldRd, FieldRt, FieldShamt},
		Family: FamilyShift, Funct: 0x03, Describe: "arithmetic (sign-preserving) shift right",
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			writeR(m, ops.Rd, uint32(int32(readR(m, ops.Rt))>>ops.Shamt))
			return nil
		}})

	rdRtRs := []SlotKind{SlotReg, SlotReg, SlotReg}
	register(&Instruction{Mnemonic: "sllv", Pattern: rdRtRs, FieldMap: []string{FieldRd, FieldRt, FieldRs},
		Family: FamilyR, Funct: 0x04,
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			writeR(m, ops.Rd, readR(m, ops.Rt)<<(readR(m, ops.Rs)&0x1F))
			return nil
		}})
	register(&Instruction{Mnemonic: "srlv", Pattern: rdRtRs, FieldMap: []string{FieldRd, FieldRt, FieldRs},
		Family: FamilyR, Funct: 0x06,
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			writeR(m, ops.Rd, readR(m, ops.Rt)>>(readR(m, ops.Rs)&0x1F))
			return nil
		}})
	register(&Instruction{Mnemonic: "srav", Pattern: rdRtRs, FieldMap: []string{FieldRd, FieldRt, FieldRs},
		Family: FamilyR, Funct: 0x07,
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			writeR(m, ops.Rd, uint32(int32(readR(m, ops.Rt))>>(readR(m, ops.Rs)&0x1F)))
			return nil
		}})
}

func registerImmediate() {
	rtRsImm := []SlotKind{SlotReg, SlotReg, SlotImm}
	fieldRtRsImm := []string{FieldRt, FieldRs, FieldImm}

	register(&Instruction{Mnemonic: "addiu", Pattern: rtRsImm, FieldMap: fieldRtRsImm, Family: FamilyI, Opcode: 0x09,
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			writeR(m, ops.Rt, uint32(int32(readR(m, ops.Rs))+ops.Imm))
			return nil
		}})
	register(&Instruction{Mnemonic: "slti", Pattern: rtRsImm, FieldMap: fieldRtRsImm, Family: FamilyI, Opcode: 0x0A,
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			if int32(readR(m, ops.Rs)) < ops.Imm {
				writeR(m, ops.Rt, 1)
			} else {
				writeR(m, ops.Rt, 0)
			}
			return nil
		}})
	register(&Instruction{Mnemonic: "sltiu", Pattern: rtRsImm, FieldMap: fieldRtRsImm, Family: FamilyI, Opcode: 0x0B,
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			if readR(m, ops.Rs) < uint32(ops.Imm) {
				writeR(m, ops.Rt, 1)
			} else {
				writeR(m, ops.Rt, 0)
			}
			return nil
		}})
	register(&Instruction{Mnemonic: "andi", Pattern: rtRsImm, FieldMap: fieldRtRsImm, Family: FamilyI, Opcode: 0x0C,
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			writeR(m, ops.Rt, readR(m, ops.Rs)&ops.ImmU)
			return nil
		}})
	register(&Instruction{Mnemonic: "ori", Pattern: rtRsImm, FieldMap: fieldRtRsImm, Family: FamilyI, Opcode: 0x0D,
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			writeR(m, ops.Rt, readR(m, ops.Rs)|ops.ImmU)
			return nil
		}})
	register(&Instruction{Mnemonic: "xori", Pattern: rtRsImm, FieldMap: fieldRtRsImm, Family: FamilyI, Opcode: 0x0E,
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			writeR(m, ops.Rt, readR(m, ops.Rs)^ops.ImmU)
			return nil
		}})

	rtImm := []SlotKind{SlotReg, SlotImm}
	register(&Instruction{Mnemonic: "lui", Pattern: rtImm, FieldMap: []string{FieldRt, FieldImm}, Family: FamilyI, Opcode: 0x0F,
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			writeR(m, ops.Rt, ops.ImmU<<16)
			return nil
		}})
	register(&Instruction{Mnemonic: "addiupc", Pattern: rtImm, FieldMap: []string{FieldRt, FieldImm}, Family: FamilyI, Opcode: 0x1E,
		Describe: "rt = the resolved address of the label operand",
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			writeR(m, ops.Rt, uint32(ops.Imm))
			return nil
		}})
	register(&Instruction{Mnemonic: "aluipc", Pattern: rtImm, FieldMap: []string{FieldRt, FieldImm}, Family: FamilyI, Opcode: 0x1F,
		Describe: "rt = (PC + (imm<<16)) with the low halfword cleared",
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			writeR(m, ops.Rt, (uint32(int32(m.PC.Value())+(ops.Imm<<16)))&^0xFFFF)
			return nil
		}})
}

func registerLoadStore() {
	rtMem := []SlotKind{SlotReg, SlotMem}
	fieldRtMem := []string{FieldRt, fieldMem}

	loads := []struct {
		name string
		op   uint32
		n    int
		sign bool
	}{
		{"lb", 0x20, 1, true}, {"lbu", 0x24, 1, false},
		{"lh", 0x21, 2, true}, {"lhu", 0x25, 2, false},
		{"lw", 0x23, 4, false},
	}
	for _, l := range loads {
		n, sign := l.n, l.sign
		register(&Instruction{Mnemonic: l.name, Pattern: rtMem, FieldMap: fieldRtMem, Family: FamilyLoadStore, Opcode: l.op,
			Execute: func(m *Machine, ops Operands) *excn.Exception { return loadInto(m, ops, n, sign) }})
	}

	stores := []struct {
		name string
		op   uint32
		n    int
	}{
		{"sb", 0x28, 1}, {"sh", 0x29, 2}, {"sw", 0x2B, 4},
	}
	for _, s := range stores {
		n := s.n
		register(&Instruction{Mnemonic: s.name, Pattern: rtMem, FieldMap: fieldRtMem, Family: FamilyLoadStore, Opcode: s.op,
			Execute: func(m *Machine, ops Operands) *excn.Exception { return storeFrom(m, ops, n) }})
	}
}

func registerBranches() {
	rsRtImm := []SlotKind{SlotReg, SlotReg, SlotImm}
	fieldRsRtImm := []string{FieldRs, FieldRt, FieldImm}
	rsImm := []SlotKind{SlotReg, SlotImm}
	fieldRsImm := []string{FieldRs, FieldImm}

	register(&Instruction{Mnemonic: "beq", Pattern: rsRtImm, FieldMap: fieldRsRtImm, Family: FamilyBranch, Opcode: 0x04, HasDelaySlot: true,
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			m.StageBranch(readR(m, ops.Rs) == readR(m, ops.Rt), branchTarget(m, ops.Imm))
			return nil
		}})
	register(&Instruction{Mnemonic: "bne", Pattern: rsRtImm, FieldMap: fieldRsRtImm, Family: FamilyBranch, Opcode: 0x05, HasDelaySlot: true,
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			m.StageBranch(readR(m, ops.Rs) != readR(m, ops.Rt), branchTarget(m, ops.Imm))
			return nil
		}})
	register(&Instruction{Mnemonic: "blez", Pattern: rsImm, FieldMap: fieldRsImm, Family: FamilyBranch1, Opcode: 0x06, HasDelaySlot: true,
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			m.StageBranch(int32(readR(m, ops.Rs)) <= 0, branchTarget(m, ops.Imm))
			return nil
		}})
	register(&Instruction{Mnemonic: "bgtz", Pattern: rsImm, FieldMap: fieldRsImm, Family: FamilyBranch1, Opcode: 0x07, HasDelaySlot: true,
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			m.StageBranch(int32(readR(m, ops.Rs)) > 0, branchTarget(m, ops.Imm))
			return nil
		}})
	register(&Instruction{Mnemonic: "bltz", Pattern: rsImm, FieldMap: fieldRsImm, Family: FamilyBranch1, Opcode: 0x01, Funct: 0x00, HasDelaySlot: true,
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			m.StageBranch(int32(readR(m, ops.Rs)) < 0, branchTarget(m, ops.Imm))
			return nil
		}})
	register(&Instruction{Mnemonic: "bgez", Pattern: rsImm, FieldMap: fieldRsImm, Family: FamilyBranch1, Opcode: 0x01, Funct: 0x01, HasDelaySlot: true,
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			m.StageBranch(int32(readR(m, ops.Rs)) >= 0, branchTarget(m, ops.Imm))
			return nil
		}})

	register(&Instruction{Mnemonic: "beqc", Pattern: rsRtImm, FieldMap: fieldRsRtImm, Family: FamilyCompactBranch, Opcode: 0x28,
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			m.StageBranch(readR(m, ops.Rs) == readR(m, ops.Rt), branchTargetNoDelay(m, ops.Imm))
			return nil
		}})
	register(&Instruction{Mnemonic: "bnec", Pattern: rsRtImm, FieldMap: fieldRsRtImm, Family: FamilyCompactBranch, Opcode: 0x38,
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			m.StageBranch(readR(m, ops.Rs) != readR(m, ops.Rt), branchTargetNoDelay(m, ops.Imm))
			return nil
		}})
	register(&Instruction{Mnemonic: "bovc", Pattern: rsRtImm, FieldMap: fieldRsRtImm, Family: FamilyCompactBranch, Opcode: 0x20,
		Describe: "branch if rs+rt overflows a signed 32-bit add",
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			a, b := uint64(readR(m, ops.Rs)), uint64(readR(m, ops.Rt))
			m.StageBranch(bits.DetectOverflow(a, b, a+b, 32, false), branchTargetNoDelay(m, ops.Imm))
			return nil
		}})
	register(&Instruction{Mnemonic: "bnvc", Pattern: rsRtImm, FieldMap: fieldRsRtImm, Family: FamilyCompactBranch, Opcode: 0x30,
		Describe: "branch if rs+rt does not overflow a signed 32-bit add",
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			a, b := uint64(readR(m, ops.Rs)), uint64(readR(m, ops.Rt))
			m.StageBranch(!bits.DetectOverflow(a, b, a+b, 32, false), branchTargetNoDelay(m, ops.Imm))
			return nil
		}})

	register(&Instruction{Mnemonic: "blezc", Pattern: rsImm, FieldMap: fieldRsImm, Family: FamilyCompactBranch1, Opcode: 0x16,
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			m.StageBranch(int32(readR(m, ops.Rs)) <= 0, branchTargetNoDelay(m, ops.Imm))
			return nil
		}})
	register(&Instruction{Mnemonic: "bgtzc", Pattern: rsImm, FieldMap: fieldRsImm, Family: FamilyCompactBranch1, Opcode: 0x17,
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			m.StageBranch(int32(readR(m, ops.Rs)) > 0, branchTargetNoDelay(m, ops.Imm))
			return nil
		}})
	register(&Instruction{Mnemonic: "bltzc", Pattern: rsImm, FieldMap: fieldRsImm, Family: FamilyCompactBranch1, Opcode: 0x1B,
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			m.StageBranch(int32(readR(m, ops.Rs)) < 0, branchTargetNoDelay(m, ops.Imm))
			return nil
		}})
	register(&Instruction{Mnemonic: "bgezc", Pattern: rsImm, FieldMap: fieldRsImm, Family: FamilyCompactBranch1, Opcode: 0x1A,
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			m.StageBranch(int32(readR(m, ops.Rs)) >= 0, branchTargetNoDelay(m, ops.Imm))
			return nil
		}})
}

// branchTarget computes a delayed branch's target from the PC of the
// branch instruction itself: target = PC + 4 + offset*4.
func branchTarget(m *Machine, offset int32) uint32 {
	return uint32(int32(m.PC.Value()) + 4 + offset*4)
}

// branchTargetNoDelay computes a compact branch's target, relative to
// the instruction immediately following the branch (there is no delay
// slot to skip).
func branchTargetNoDelay(m *Machine, offset int32) uint32 {
	return uint32(int32(m.PC.Value()) + 4 + offset*4)
}

func registerJumps() {
	target := []SlotKind{SlotImm}
	register(&Instruction{Mnemonic: "j", Pattern: target, FieldMap: []string{FieldTarget}, Family: FamilyJump, Opcode: 0x02, HasDelaySlot: true,
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			m.StageBranch(true, ops.Target)
			return nil
		}})
	register(&Instruction{Mnemonic: "jal", Pattern: target, FieldMap: []string{FieldTarget}, Family: FamilyJump, Opcode: 0x03, HasDelaySlot: true,
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			writeR(m, reg.Ra, m.PC.Value()+8)
			m.StageBranch(true, ops.Target)
			return nil
		}})

	rs := []SlotKind{SlotReg}
	register(&Instruction{Mnemonic: "jr", Pattern: rs, FieldMap: []string{FieldRs}, Family: FamilyJumpReg, Funct: 0x08, HasDelaySlot: true,
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			m.StageBranch(true, readR(m, ops.Rs))
			return nil
		}})
	rdRs := []SlotKind{SlotReg, SlotReg}
	register(&Instruction{Mnemonic: "jalr", Pattern: rdRs, FieldMap: []string{FieldRd, FieldRs}, Family: FamilyJumpReg, Funct: 0x09, HasDelaySlot: true,
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			writeR(m, ops.Rd, m.PC.Value()+8)
			m.StageBranch(true, readR(m, ops.Rs))
			return nil
		}})

	register(&Instruction{Mnemonic: "bc", Pattern: target, FieldMap: []string{FieldTarget}, Family: FamilyCompactJump, Opcode: 0x32,
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			m.StageBranch(true, ops.Target)
			return nil
		}})
	register(&Instruction{Mnemonic: "balc", Pattern: target, FieldMap: []string{FieldTarget}, Family: FamilyCompactJump, Opcode: 0x3A,
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			writeR(m, reg.Ra, m.PC.Value()+4)
			m.StageBranch(true, ops.Target)
			return nil
		}})

	rtImmIdx := []SlotKind{SlotReg, SlotImm}
	register(&Instruction{Mnemonic: "jic", Pattern: rtImmIdx, FieldMap: []string{FieldRt, FieldImm}, Family: FamilyJumpIndexed, Opcode: 0x36,
		Describe: "jump indexed: target = rt + sign-extend(offset), no delay slot",
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			m.StageBranch(true, uint32(int32(readR(m, ops.Rt))+ops.Imm))
			return nil
		}})
	register(&Instruction{Mnemonic: "jialc", Pattern: rtImmIdx, FieldMap: []string{FieldRt, FieldImm}, Family: FamilyJumpIndexed, Opcode: 0x3E,
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			writeR(m, reg.Ra, m.PC.Value()+4)
			m.StageBranch(true, uint32(int32(readR(m, ops.Rt))+ops.Imm))
			return nil
		}})
}

func registerTrapsAndSystem() {
	rsRt := []SlotKind{SlotReg, SlotReg}
	fieldRsRt := []string{FieldRs, FieldRt}
	traps := []struct {
		name string
		fn   uint32
		cond func(a, b uint32) bool
	}{
		{"teq", 0x34, func(a, b uint32) bool { return a == b }},
		{"tne", 0x36, func(a, b uint32) bool { return a != b }},
		{"tge", 0x30, func(a, b uint32) bool { return int32(a) >= int32(b) }},
		{"tlt", 0x32, func(a, b uint32) bool { return int32(a) < int32(b) }},
		{"tgeu", 0x31, func(a, b uint32) bool { return a >= b }},
		{"tltu", 0x33, func(a, b uint32) bool { return a < b }},
	}
	for _, tr := range traps {
		name, cond := tr.name, tr.cond
		register(&Instruction{Mnemonic: name, Pattern: rsRt, FieldMap: fieldRsRt, Family: FamilyTrap, Funct: tr.fn,
			Execute: func(m *Machine, ops Operands) *excn.Exception {
				if cond(readR(m, ops.Rs), readR(m, ops.Rt)) {
					return excn.NewTrap(name + " condition met")
				}
				return nil
			}})
	}

	register(&Instruction{Mnemonic: "syscall", Pattern: nil, FieldMap: nil, Family: FamilySyscall,
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			return excn.NewSyscall(readR(m, reg.V0))
		}})
	register(&Instruction{Mnemonic: "break", Pattern: nil, FieldMap: nil, Family: FamilySyscall, Funct: 0x0D,
		Execute: func(m *Machine, ops Operands) *excn.Exception {
			return excn.NewBreak()
		}})
}
