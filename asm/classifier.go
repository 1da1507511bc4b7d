package asm

import (
	"github.com/mips32sim/mips32/isa"
	"github.com/mips32sim/mips32/reg"
)

// directiveNames enumerates every directive this assembler recognizes
// (spec §4.4/§6).
var directiveNames = map[string]bool{
	".text": true, ".ktext": true, ".data": true, ".kdata": true,
	".align": true, ".byte": true, ".half": true, ".word": true,
	".ascii": true, ".asciiz": true, ".space": true,
	".extern": true, ".globl": true, ".include": true,
}

// classifier implements token.Classifier over the isa instruction
// registry and the GPR/FPR register files, letting the tokenizer
// resolve mnemonics and register names without importing either
// package itself.
type classifier struct {
	gpr *reg.RegisterFile
	fpr *reg.RegisterFile
}

func newClassifier() *classifier {
	return &classifier{gpr: reg.NewGPRFile(), fpr: reg.NewFPRFile()}
}

func (c *classifier) IsDirective(word string) bool { return directiveNames[word] }
func (c *classifier) IsMnemonic(word string) bool   { return isa.IsMnemonic(word) }

func (c *classifier) RegisterAddress(word string) (uint32, bool) {
	if r := c.gpr.ByName(word); r != nil {
		return r.Address, true
	}
	if r := c.fpr.ByName(word); r != nil {
		return r.Address, true
	}
	return 0, false
}
