package asm

import (
	"github.com/mips32sim/mips32/isa"
	"github.com/mips32sim/mips32/token"
)

// line is one logical statement: an optional label, then either a
// directive or a mnemonic and its operand tokens.
type line struct {
	label   string
	labelAt token.Position
	rest    []token.Token
}

// splitLines groups a token stream (with Newline retained, Whitespace/
// Comment already dropped) into logical statements and peels off any
// leading Label/Colon pair.
func splitLines(toks []token.Token) []line {
	var out []line
	var cur []token.Token
	flush := func() {
		if len(cur) == 0 {
			return
		}
		l := line{rest: cur}
		if len(cur) >= 2 && cur[0].Type == token.Label && cur[1].Type == token.Colon {
			l.label = cur[0].Raw
			l.labelAt = cur[0].Pos
			l.rest = cur[2:]
		}
		out = append(out, l)
		cur = nil
	}
	for _, t := range toks {
		if t.Type == token.Newline {
			flush()
			continue
		}
		cur = append(cur, t)
	}
	flush()
	return out
}

// assembleSource tokenizes source and executes its statements in
// order: directives take effect immediately, labels are defined at the
// current location counter, and matched instructions are queued for
// phase two.
func (c *Context) assembleSource(filename, source string) error {
	lexer := token.NewLexer(filename, source, c.classifier)
	toks := lexer.TokenizeAll(false)
	for _, l := range splitLines(toks) {
		if l.label != "" {
			if err := c.defineLabel(l.label, l.labelAt); err != nil {
				return err
			}
		}
		if len(l.rest) == 0 {
			continue
		}
		if err := c.processStatement(l.rest); err != nil {
			return err
		}
	}
	return nil
}

func (c *Context) defineLabel(name string, pos token.Position) error {
	return c.scope.Local.Define(name, c.loc[c.segment], pos)
}

func (c *Context) processStatement(toks []token.Token) error {
	head := toks[0]
	rest := toks[1:]
	switch head.Type {
	case token.Directive:
		return c.runDirective(head, rest)
	case token.Mnemonic:
		return c.processMnemonic(head, rest)
	default:
		return newError(head.Pos, UnexpectedToken, "expected a directive or mnemonic, got %s %q", head.Type, head.Raw)
	}
}

// processMnemonic matches a basic instruction overload, or expands a
// pseudo-instruction by re-tokenizing its template and processing the
// result as ordinary statements.
func (c *Context) processMnemonic(head token.Token, operandToks []token.Token) error {
	mnemonic := normalizeMnemonic(head.Raw)
	if _, ok := isa.Lookup(mnemonic); ok {
		instr, matched, err := isa.Match(mnemonic, operandToks)
		if err == nil {
			return c.emitInstruction(mnemonic, head.Pos, instr, matched)
		}
		if _, isPseudo := isa.LookupPseudo(mnemonic); !isPseudo {
			return newError(head.Pos, SyntaxError, "%s", err)
		}
	}
	lines, err := isa.MatchPseudo(mnemonic, operandToks)
	if err != nil {
		return newError(head.Pos, SyntaxError, "%s", err)
	}
	for _, expansion := range lines {
		expToks := token.NewLexer("<pseudo>", expansion+"\n", c.classifier).TokenizeAll(false)
		for _, l := range splitLines(expToks) {
			if len(l.rest) == 0 {
				continue
			}
			if err := c.processStatement(l.rest); err != nil {
				return err
			}
		}
	}
	return nil
}

func normalizeMnemonic(raw string) string {
	out := make([]byte, len(raw))
	for i := 0; i < len(raw); i++ {
		b := raw[i]
		if b >= 'A' && b <= 'Z' {
			b += 'a' - 'A'
		}
		out[i] = b
	}
	return string(out)
}

func (c *Context) emitInstruction(mnemonic string, pos token.Position, instr *isa.Instruction, matched []isa.MatchedOperand) error {
	if c.segment != "user text" && c.segment != "kernel text" {
		return newError(pos, InvalidSegment, "instruction %q cannot appear in segment %q", mnemonic, c.segment)
	}
	st := &Statement{Mnemonic: mnemonic, Address: c.loc[c.segment], Segment: c.segment, Pos: pos, Instr: instr, matched: matched}
	c.statements = append(c.statements, st)
	c.loc[c.segment] += 4
	return nil
}

func (c *Context) runDirective(head token.Token, operandToks []token.Token) error {
	name := head.Raw
	switch name {
	case ".text", ".ktext", ".data", ".kdata":
		c.segment = segmentByDirective[name]
		return nil
	case ".align":
		return c.directiveAlign(head.Pos, operandToks)
	case ".byte":
		return c.directiveData(head.Pos, operandToks, 1)
	case ".half":
		return c.directiveData(head.Pos, operandToks, 2)
	case ".word":
		return c.directiveWord(head.Pos, operandToks)
	case ".ascii":
		return c.directiveAscii(head.Pos, operandToks, false)
	case ".asciiz":
		return c.directiveAscii(head.Pos, operandToks, true)
	case ".space":
		return c.directiveSpace(head.Pos, operandToks)
	case ".extern":
		return c.directiveExtern(head.Pos, operandToks)
	case ".globl":
		return c.directiveGlobl(head.Pos, operandToks)
	case ".include":
		return c.directiveInclude(head.Pos, operandToks)
	default:
		return newError(head.Pos, SyntaxError, "unknown directive %q", name)
	}
}

func operandValues(toks []token.Token) []token.Token {
	var out []token.Token
	for _, t := range toks {
		if t.Type == token.Comma {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (c *Context) requireDataSegment(pos token.Position, directive string) error {
	if c.segment != "user data" && c.segment != "kernel data" {
		return newError(pos, InvalidSegment, "%s cannot appear in segment %q", directive, c.segment)
	}
	return nil
}

func (c *Context) directiveAlign(pos token.Position, toks []token.Token) error {
	if err := c.requireDataSegment(pos, ".align"); err != nil {
		return err
	}
	vals := operandValues(toks)
	if len(vals) != 1 {
		return newError(pos, SyntaxError, ".align takes exactly one operand")
	}
	n := vals[0].ParsedInt
	boundary := uint32(1) << uint(n)
	cur := c.loc[c.segment]
	if rem := cur % boundary; rem != 0 {
		c.loc[c.segment] = cur + (boundary - rem)
	}
	return nil
}

func (c *Context) directiveData(pos token.Position, toks []token.Token, size int) error {
	if err := c.requireDataSegment(pos, ".byte/.half"); err != nil {
		return err
	}
	for _, v := range operandValues(toks) {
		if !v.Type.IsImmediateLike() || v.Type == token.Label {
			return newError(v.Pos, SyntaxError, "expected a literal value")
		}
		addr := c.loc[c.segment]
		if err := c.prog.Memory.WriteBytes(addr, v.ParsedInt, size, false, writeRequester); err != nil {
			return err
		}
		c.loc[c.segment] += uint32(size)
	}
	return nil
}

func (c *Context) directiveWord(pos token.Position, toks []token.Token) error {
	if err := c.requireDataSegment(pos, ".word"); err != nil {
		return err
	}
	if rem := c.loc[c.segment] % 4; rem != 0 {
		c.loc[c.segment] += 4 - rem
	}
	for _, v := range operandValues(toks) {
		addr := c.loc[c.segment]
		if v.Type == token.Label {
			c.fixups = append(c.fixups, &dataFixup{Addr: addr, Label: v.Raw, Pos: v.Pos})
		} else if v.Type.IsImmediateLike() {
			if err := c.prog.Memory.WriteBytes(addr, v.ParsedInt, 4, false, writeRequester); err != nil {
				return err
			}
		} else {
			return newError(v.Pos, SyntaxError, "expected a literal or label value")
		}
		c.loc[c.segment] += 4
	}
	return nil
}

func (c *Context) directiveAscii(pos token.Position, toks []token.Token, nullTerminate bool) error {
	if err := c.requireDataSegment(pos, ".ascii/.asciiz"); err != nil {
		return err
	}
	vals := operandValues(toks)
	if len(vals) != 1 || vals[0].Type != token.Ascii {
		return newError(pos, SyntaxError, "expected a single string literal")
	}
	data := []byte(vals[0].ParsedStr)
	if nullTerminate {
		data = append(data, 0)
	}
	for _, b := range data {
		if err := c.prog.Memory.WriteBytes(c.loc[c.segment], uint64(b), 1, false, writeRequester); err != nil {
			return err
		}
		c.loc[c.segment]++
	}
	return nil
}

func (c *Context) directiveSpace(pos token.Position, toks []token.Token) error {
	vals := operandValues(toks)
	if len(vals) != 1 {
		return newError(pos, SyntaxError, ".space takes exactly one operand")
	}
	c.loc[c.segment] += uint32(vals[0].ParsedInt)
	return nil
}

func (c *Context) directiveExtern(pos token.Position, toks []token.Token) error {
	vals := operandValues(toks)
	if len(vals) != 2 || vals[0].Type != token.Label || !vals[1].Type.IsImmediateLike() {
		return newError(pos, SyntaxError, ".extern expects a name and a byte size")
	}
	if _, ok := c.scope.Global.Lookup(vals[0].Raw); ok {
		return nil
	}
	size := uint32(vals[1].ParsedInt)
	if rem := size % 4; rem != 0 {
		size += 4 - rem
	}
	addr := c.loc[c.segment]
	c.loc[c.segment] += size
	return c.scope.Global.Define(vals[0].Raw, addr, pos)
}

// directiveGlobl only records the declaration; promotion to the
// global table happens once every label in the file is known, in
// checkGlobals, since `.globl name` conventionally precedes the
// label's own definition.
func (c *Context) directiveGlobl(pos token.Position, toks []token.Token) error {
	for _, v := range operandValues(toks) {
		if v.Type != token.Label {
			return newError(v.Pos, SyntaxError, "expected a symbol name")
		}
		c.prog.Globals[v.Raw] = v.Pos
	}
	return nil
}
