package asm

import (
	"github.com/mips32sim/mips32/isa"
	"github.com/mips32sim/mips32/mem"
	"github.com/mips32sim/mips32/token"
)

// dataFixup is a `.word` entry (or similar) whose value is a label the
// assembler cannot resolve until every symbol in the program is known.
// Mirrors the phase split applied to instructions.
type dataFixup struct {
	Addr  uint32
	Label string
	Pos   token.Position
}

// Context is the assembler's working state while it executes
// directives in source order, per spec §9's call for an explicit
// context rather than package-level globals.
type Context struct {
	prog       *Program
	scope      *Scope
	classifier *classifier
	segment    string
	loc        map[string]uint32
	fixups     []*dataFixup
	statements []*Statement
	includes   map[string]bool
}

var segmentByDirective = map[string]string{
	".text": "user text", ".ktext": "kernel text",
	".data": "user data", ".kdata": "kernel data",
}

func segmentBases() map[string]uint32 {
	bases := make(map[string]uint32)
	for _, seg := range mem.DefaultSegments() {
		bases[seg.Name] = seg.Lower
	}
	return bases
}

func newContext() *Context {
	prog := &Program{
		Memory:   mem.NewMemory(),
		Global:   NewSymbolTable(),
		Globals:  make(map[string]token.Position),
		Warnings: &ErrorList{},
	}
	return &Context{
		prog:       prog,
		scope:      NewScope(prog.Global),
		classifier: newClassifier(),
		segment:    "user text",
		loc:        segmentBases(),
		includes:   make(map[string]bool),
	}
}

// Assemble runs the full two-phase assembly of one top-level source
// file: directives execute immediately in source order, then every
// matched instruction is encoded once all labels are resolved.
func Assemble(filename, source string) (*Program, error) {
	ctx := newContext()
	if err := ctx.assembleSource(filename, source); err != nil {
		return nil, err
	}
	if err := ctx.resolveDataFixups(); err != nil {
		return nil, err
	}
	if err := ctx.resolveStatements(ctx.statements); err != nil {
		return nil, err
	}
	ctx.checkGlobals()
	ctx.prog.Local = ctx.scope.Local
	ctx.prog.Statements = ctx.statements
	if entry, ok := ctx.scope.Resolve("main"); ok {
		ctx.prog.EntryPC = entry.Address
	} else {
		ctx.prog.EntryPC = segmentBases()["user text"]
	}
	return ctx.prog, nil
}

// checkGlobals promotes every `.globl`-declared name that turned out
// to have a local definition into the shared global table, and warns
// (non-fatally, per spec §4.4) about any that never got defined.
func (c *Context) checkGlobals() {
	for name, pos := range c.prog.Globals {
		if sym, ok := c.scope.Local.Lookup(name); ok {
			_ = c.scope.Global.Define(name, sym.Address, sym.Pos)
			c.scope.Local.Delete(name)
			continue
		}
		if _, ok := c.prog.Global.Lookup(name); !ok {
			c.prog.Warnings.add(pos, "`.globl` names undefined symbol %q", name)
		}
	}
}

// resolveDataFixups finishes every `.word` (and similar) entry whose
// value was a forward label reference.
func (c *Context) resolveDataFixups() error {
	for _, f := range c.fixups {
		sym, ok := c.scope.Resolve(f.Label)
		if !ok {
			return newError(f.Pos, SymbolDoesNotExist, "undefined symbol %q", f.Label)
		}
		if err := c.prog.Memory.WriteBytes(f.Addr, uint64(sym.Address), 4, false, writeRequester); err != nil {
			return err
		}
	}
	return nil
}

// resolveStatements finishes every matched instruction: resolving any
// label operand, encoding the final word, and storing the decoded
// Statement in memory's parallel instruction map for the engine.
func (c *Context) resolveStatements(statements []*Statement) error {
	for _, st := range statements {
		ops, unresolved, err := isa.BuildOperands(st.Instr, st.matched)
		if err != nil {
			return newError(st.Pos, SyntaxError, "%s", err)
		}
		if unresolved != nil {
			sym, ok := c.scope.Resolve(unresolved.Name)
			if !ok {
				return newError(unresolved.Pos, SymbolDoesNotExist, "undefined symbol %q", unresolved.Name)
			}
			isa.ResolveLabel(st.Instr, &ops, st.Address, sym.Address)
		}
		st.Operands = ops
		st.Encoded = isa.Encode(st.Instr, ops)
		if err := c.prog.Memory.WriteInstruction(st.Address, st); err != nil {
			return err
		}
		if err := c.prog.Memory.WriteBytes(st.Address, uint64(st.Encoded), 4, false, writeRequester); err != nil {
			return err
		}
	}
	return nil
}
