package asm

import "github.com/mips32sim/mips32/token"

// Symbol is a named address: a label, or a `.globl`-exported name.
type Symbol struct {
	Name    string
	Address uint32
	Defined bool
	Pos     token.Position
}

// SymbolTable is a flat name-to-address map. A Program keeps one
// global table and one local table layered in front of it, looked up
// local-then-global. The local table is shared by the main file and
// every file it includes: a label in an included file is visible to
// the other files, and defining the same label in two of them is a
// SymbolAlreadyExists error.
type SymbolTable struct {
	symbols map[string]*Symbol
}

// NewSymbolTable builds an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{symbols: make(map[string]*Symbol)}
}

// Define records name at address. Returns a SymbolAlreadyExists error
// if name is already defined in this table.
func (t *SymbolTable) Define(name string, addr uint32, pos token.Position) error {
	if existing, ok := t.symbols[name]; ok && existing.Defined {
		return newError(pos, SymbolAlreadyExists, "symbol %q already defined at %s", name, existing.Pos)
	}
	t.symbols[name] = &Symbol{Name: name, Address: addr, Defined: true, Pos: pos}
	return nil
}

// Delete removes name from the table, if present. Used when promoting
// a `.globl`-declared symbol into the shared global table: the name
// must not remain defined in both tables at once.
func (t *SymbolTable) Delete(name string) {
	delete(t.symbols, name)
}

// Lookup returns the symbol named name, if defined in this table.
func (t *SymbolTable) Lookup(name string) (*Symbol, bool) {
	sym, ok := t.symbols[name]
	if !ok || !sym.Defined {
		return nil, false
	}
	return sym, true
}

// All returns every defined symbol in the table.
func (t *SymbolTable) All() map[string]*Symbol {
	return t.symbols
}

// Scope resolves a name against a local table first, falling back to
// the shared global table, per spec §4.4's lookup order.
type Scope struct {
	Local  *SymbolTable
	Global *SymbolTable
}

// NewScope builds a Scope with a fresh local table layered over the
// shared global one.
func NewScope(global *SymbolTable) *Scope {
	return &Scope{Local: NewSymbolTable(), Global: global}
}

// Resolve looks up name, local table first.
func (s *Scope) Resolve(name string) (*Symbol, bool) {
	if sym, ok := s.Local.Lookup(name); ok {
		return sym, true
	}
	return s.Global.Lookup(name)
}
