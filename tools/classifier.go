// Package tools provides source-level analyses layered on top of the
// assembler and instruction set: a symbol cross-reference report and
// a canonical source reformatter.
package tools

import (
	"github.com/mips32sim/mips32/isa"
	"github.com/mips32sim/mips32/reg"
)

// directiveNames mirrors asm's recognized directive set. Duplicated
// here rather than exported from asm because a tokenizing classifier
// is the only thing either package needs from it, and asm has no
// other reason to expose its internals.
var directiveNames = map[string]bool{
	".text": true, ".ktext": true, ".data": true, ".kdata": true,
	".align": true, ".byte": true, ".half": true, ".word": true,
	".ascii": true, ".asciiz": true, ".space": true,
	".extern": true, ".globl": true, ".include": true,
}

// classifier implements token.Classifier the same way asm's does, so
// tools can tokenize source independently of an assembled Program.
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
