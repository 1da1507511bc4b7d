package isa

import "github.com/mips32sim/mips32/bits"

// Field bit positions, per the standard MIPS32 word layouts (spec
// §4.5): R-type is [op 31-26][rs 25-21][rt 20-16][rd 15-11][shamt
// 10-6][funct 5-0]; I-type is [op 31-26][rs 25-21][rt 20-16][imm
// 15-0]; J-type is [op 31-26][target 25-0].
const (
	opShift    = 26
	rsShift    = 21
	rtShift    = 16
	rdShift    = 11
	shamtShift = 6
	functShift = 0
	immShift   = 0
	targetShift = 0

	opWidth     = 6
	regWidth    = 5
	shamtWidth  = 5
	functWidth  = 6
	immWidth    = 16
	targetWidth = 26
)

func field(value uint64, shift, width uint) uint32 {
	return uint32(bits.ToUint(value, width)) << shift
}

// Encode assembles instr's basic-instruction word from the resolved
// operand values in ops. The assembler calls this once per statement,
// after symbol resolution has filled in Imm/Target from any label
// operands.
func Encode(instr *Instruction, ops Operands) uint32 {
	switch instr.Family {
	case FamilyR, FamilyTrap:
		return field(uint64(instr.Opcode), opShift, opWidth) |
			field(uint64(ops.Rs), rsShift, regWidth) |
			field(uint64(ops.Rt), rtShift, regWidth) |
			field(uint64(ops.Rd), rdShift, regWidth) |
			field(uint64(instr.Funct), functShift, functWidth)

	case FamilyShift:
		return field(uint64(instr.Opcode), opShift, opWidth) |
			field(uint64(ops.Rt), rtShift, regWidth) |
			field(uint64(ops.Rd), rdShift, regWidth) |
			field(uint64(ops.Shamt), shamtShift, shamtWidth) |
			field(uint64(instr.Funct), functShift, functWidth)

	case FamilyJumpReg:
		return field(uint64(instr.Opcode), opShift, opWidth) |
			field(uint64(ops.Rs), rsShift, regWidth) |
			field(uint64(ops.Rd), rdShift, regWidth) |
			field(uint64(instr.Funct), functShift, functWidth)

	case FamilyI, FamilyLoadStore:
		return field(uint64(instr.Opcode), opShift, opWidth) |
			field(uint64(ops.Rs), rsShift, regWidth) |
			field(uint64(ops.Rt), rtShift, regWidth) |
			field(uint64(ops.ImmU), immShift, immWidth)

	case FamilyBranch, FamilyCompactBranch:
		return field(uint64(instr.Opcode), opShift, opWidth) |
			field(uint64(ops.Rs), rsShift, regWidth) |
			field(uint64(ops.Rt), rtShift, regWidth) |
			field(uint64(ops.ImmU), immShift, immWidth)

	case FamilyBranch1, FamilyCompactBranch1:
		return field(uint64(instr.Opcode), opShift, opWidth) |
			field(uint64(ops.Rs), rsShift, regWidth) |
			field(uint64(instr.Funct), rtShift, regWidth) |
			field(uint64(ops.ImmU), immShift, immWidth)

	case FamilyJumpIndexed:
		return field(uint64(instr.Opcode), opShift, opWidth) |
			field(uint64(ops.Rs), rsShift, regWidth) |
			field(uint64(ops.Rt), rtShift, regWidth) |
			field(uint64(ops.ImmU), immShift, immWidth)

	case FamilyJump, FamilyCompactJump:
		return field(uint64(instr.Opcode), opShift, opWidth) |
			field(uint64(ops.Target>>2), targetShift, targetWidth)

	case FamilySyscall:
		return field(uint64(instr.Opcode), opShift, opWidth) |
			field(uint64(ops.Code), 6, 20) |
			field(uint64(instr.Funct), functShift, functWidth)

	default:
		return field(uint64(instr.Opcode), opShift, opWidth)
	}
}

// Decode splits a raw instruction word into its opcode and funct
// fields, enough for the engine to look the matching *Instruction back
// up without re-running the assembler's textual matcher.
func Decode(word uint32) (opcode, rs, rt, rd, shamt, funct uint32, imm int32, target uint32) {
	opcode = uint32(bits.GetBits(uint64(word), opShift, opShift+opWidth-1))
	rs = uint32(bits.GetBits(uint64(word), rsShift, rsShift+regWidth-1))
	rt = uint32(bits.GetBits(uint64(word), rtShift, rtShift+regWidth-1))
	rd = uint32(bits.GetBits(uint64(word), rdShift, rdShift+regWidth-1))
	shamt = uint32(bits.GetBits(uint64(word), shamtShift, shamtShift+shamtWidth-1))
	funct = uint32(bits.GetBits(uint64(word), functShift, functShift+functWidth-1))
	imm = int32(bits.ToInt(uint64(word), immWidth))
	target = uint32(bits.GetBits(uint64(word), targetShift, targetShift+targetWidth-1)) << 2
	return
}
