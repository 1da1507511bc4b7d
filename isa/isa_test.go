package isa

import (
	"testing"

	"github.com/mips32sim/mips32/mem"
	"github.com/mips32sim/mips32/reg"
	"github.com/mips32sim/mips32/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func regTok(addr uint32) token.Token {
	return token.Token{Type: token.Register, ParsedInt: uint64(addr)}
}

func immTok(v uint64) token.Token {
	return token.Token{Type: token.Immediate, ParsedInt: v, HasParsed: true}
}

func TestMatchSelectsRTypeOverload(t *testing.T) {
	toks := []token.Token{regTok(reg.T0), {Type: token.Comma}, regTok(reg.T1), {Type: token.Comma}, regTok(reg.T2)}
	instr, ops, err := Match("add", toks)
	require.NoError(t, err)
	assert.Equal(t, FamilyR, instr.Family)
	require.Len(t, ops, 3)
	assert.Equal(t, SlotReg, ops[0].Kind)
}

func TestMatchSelectsLoadStoreOverload(t *testing.T) {
	toks := []token.Token{regTok(reg.T0), {Type: token.Comma}, immTok(4), {Type: token.LeftParen}, regTok(reg.T1), {Type: token.RightParen}}
	instr, ops, err := Match("lw", toks)
	require.NoError(t, err)
	assert.Equal(t, FamilyLoadStore, instr.Family)
	require.Len(t, ops, 2)
	assert.Equal(t, SlotMem, ops[1].Kind)
	assert.Equal(t, reg.T1, ops[1].RegAddr)
}

func TestMatchRejectsWrongShape(t *testing.T) {
	toks := []token.Token{regTok(reg.T0), {Type: token.Comma}, regTok(reg.T1)}
	_, _, err := Match("add", toks)
	assert.Error(t, err)
}

func TestBuildOperandsResolvesLiteralImmediate(t *testing.T) {
	toks := []token.Token{regTok(reg.T0), {Type: token.Comma}, regTok(reg.T1), {Type: token.Comma}, immTok(100)}
	instr, matched, err := Match("addiu", toks)
	require.NoError(t, err)
	ops, unresolved, err := BuildOperands(instr, matched)
	require.NoError(t, err)
	assert.Nil(t, unresolved)
	assert.Equal(t, int32(100), ops.Imm)
}

func TestBuildOperandsReportsUnresolvedLabel(t *testing.T) {
	toks := []token.Token{regTok(reg.T0), {Type: token.Comma}, regTok(reg.T1), {Type: token.Comma},
		{Type: token.Label, Raw: "loop"}}
	instr, matched, err := Match("bne", toks)
	require.NoError(t, err)
	_, unresolved, err := BuildOperands(instr, matched)
	require.NoError(t, err)
	require.NotNil(t, unresolved)
	assert.Equal(t, "loop", unresolved.Name)
}

func TestResolveLabelComputesBranchOffset(t *testing.T) {
	instr, _ := Lookup("beq")
	var ops Operands
	ResolveLabel(instr[0], &ops, 0x400000, 0x400010)
	assert.Equal(t, int32(3), ops.Imm) // (0x400010 - (0x400000+4)) / 4
}

func TestEncodeRType(t *testing.T) {
	instr, _ := Lookup("add")
	word := Encode(instr[0], Operands{Rd: reg.T0, Rs: reg.T1, Rt: reg.T2})
	assert.Equal(t, uint32(0x20), word&0x3F) // funct field
}

func TestExecuteAddOverflow(t *testing.T) {
	m := NewMachine(mem.NewMemory())
	m.GPR.WriteInteger(reg.T0, 0x7FFFFFFF)
	m.GPR.WriteInteger(reg.T1, 1)
	instr, _ := Lookup("add")
	ex := instr[0].Execute(m, Operands{Rd: reg.T2, Rs: reg.T0, Rt: reg.T1})
	require.NotNil(t, ex)
}

func TestExecuteLoadStoreRoundTrip(t *testing.T) {
	m := NewMachine(mem.NewMemory())
	m.GPR.WriteInteger(reg.T0, uint64(mem.UserDataLower))
	m.GPR.WriteInteger(reg.T1, 0xDEADBEEF)

	sw, _ := Lookup("sw")
	ex := sw[0].Execute(m, Operands{Rs: reg.T0, Rt: reg.T1, Imm: 0})
	require.Nil(t, ex)

	lw, _ := Lookup("lw")
	ex = lw[0].Execute(m, Operands{Rs: reg.T0, Rt: reg.T2, Imm: 0})
	require.Nil(t, ex)
	assert.Equal(t, uint64(0xDEADBEEF), m.GPR.ReadInteger(reg.T2, false))
}

func TestExecuteBranchStagesTarget(t *testing.T) {
	m := NewMachine(mem.NewMemory())
	m.PC.Set(mem.UserTextLower)
	m.GPR.WriteInteger(reg.T0, 5)
	m.GPR.WriteInteger(reg.T1, 5)
	beq, _ := Lookup("beq")
	ex := beq[0].Execute(m, Operands{Rs: reg.T0, Rt: reg.T1, Imm: 2})
	require.Nil(t, ex)
	assert.True(t, m.BranchTaken)
	assert.Equal(t, mem.UserTextLower+4+8, m.BranchTarget)
}

func TestExecuteDivByZeroReturnsZero(t *testing.T) {
	m := NewMachine(mem.NewMemory())
	m.GPR.WriteInteger(reg.T0, 17)
	m.GPR.WriteInteger(reg.T1, 0)

	div, _ := Lookup("div")
	ex := div[0].Execute(m, Operands{Rd: reg.T2, Rs: reg.T0, Rt: reg.T1})
	require.Nil(t, ex)
	assert.Equal(t, uint64(0), m.GPR.ReadInteger(reg.T2, false))

	divu, _ := Lookup("divu")
	ex = divu[0].Execute(m, Operands{Rd: reg.T2, Rs: reg.T0, Rt: reg.T1})
	require.Nil(t, ex)
	assert.Equal(t, uint64(0), m.GPR.ReadInteger(reg.T2, false))

	mod, _ := Lookup("mod")
	ex = mod[0].Execute(m, Operands{Rd: reg.T2, Rs: reg.T0, Rt: reg.T1})
	require.Nil(t, ex)
	assert.Equal(t, uint64(0), m.GPR.ReadInteger(reg.T2, false))
}

func TestExecuteDivAndModComputeSignedResults(t *testing.T) {
	m := NewMachine(mem.NewMemory())
	m.GPR.WriteInteger(reg.T0, uint64(uint32(int32(-7))))
	m.GPR.WriteInteger(reg.T1, 2)

	div, _ := Lookup("div")
	ex := div[0].Execute(m, Operands{Rd: reg.T2, Rs: reg.T0, Rt: reg.T1})
	require.Nil(t, ex)
	assert.Equal(t, int32(-3), int32(m.GPR.ReadInteger(reg.T2, false)))

	mod, _ := Lookup("mod")
	ex = mod[0].Execute(m, Operands{Rd: reg.T2, Rs: reg.T0, Rt: reg.T1})
	require.Nil(t, ex)
	assert.Equal(t, int32(-1), int32(m.GPR.ReadInteger(reg.T2, false)))
}

func TestExecuteMulLowWord(t *testing.T) {
	m := NewMachine(mem.NewMemory())
	m.GPR.WriteInteger(reg.T0, 6)
	m.GPR.WriteInteger(reg.T1, 7)
	mul, _ := Lookup("mul")
	ex := mul[0].Execute(m, Operands{Rd: reg.T2, Rs: reg.T0, Rt: reg.T1})
	require.Nil(t, ex)
	assert.Equal(t, uint64(42), m.GPR.ReadInteger(reg.T2, false))
}

func TestExecuteSyscallCarriesV0Code(t *testing.T) {
	m := NewMachine(mem.NewMemory())
	m.GPR.WriteInteger(reg.V0, 1)
	sc, _ := Lookup("syscall")
	ex := sc[0].Execute(m, Operands{})
	require.NotNil(t, ex)
	assert.Equal(t, uint32(1), ex.Code)
}

func TestPseudoLiExpandsToTwoInstructionsForLargeValue(t *testing.T) {
	toks := []token.Token{regTok(reg.T0), {Type: token.Comma}, immTok(0x12345678)}
	lines, err := MatchPseudo("li", toks)
	require.NoError(t, err)
	assert.Len(t, lines, 2)
}

func TestPseudoLiExpandsToOneInstructionForSmallValue(t *testing.T) {
	toks := []token.Token{regTok(reg.T0), {Type: token.Comma}, immTok(5)}
	lines, err := MatchPseudo("li", toks)
	require.NoError(t, err)
	assert.Len(t, lines, 1)
	assert.Equal(t, "addiu $8, $zero, 5", lines[0])
}

func TestPseudoMoveExpandsToAddu(t *testing.T) {
	toks := []token.Token{regTok(reg.T0), {Type: token.Comma}, regTok(reg.T1)}
	lines, err := MatchPseudo("move", toks)
	require.NoError(t, err)
	assert.Equal(t, []string{"addu $8, $9, $zero"}, lines)
}

func TestIsMnemonicCoversBasicAndPseudo(t *testing.T) {
	assert.True(t, IsMnemonic("add"))
	assert.True(t, IsMnemonic("li"))
	assert.False(t, IsMnemonic("notreal"))
}
