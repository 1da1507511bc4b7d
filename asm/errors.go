// Package asm implements the two-phase MIPS assembler: directives
// execute in source order (building the symbol tables and allocating
// data/instruction addresses), then every instruction is encoded once
// all symbols are known, per spec §4.4.
package asm

import (
	"fmt"
	"strings"

	"github.com/mips32sim/mips32/token"
)

// ErrorKind categorizes an assembly-time failure.
type ErrorKind int

const (
	SyntaxError ErrorKind = iota
	UnexpectedToken
	InvalidSegment
	SymbolAlreadyExists
	SymbolDoesNotExist
	IncludeError
)

func (k ErrorKind) String() string {
	switch k {
	case SyntaxError:
		return "syntax error"
	case UnexpectedToken:
		return "unexpected token"
	case InvalidSegment:
		return "invalid segment"
	case SymbolAlreadyExists:
		return "symbol already exists"
	case SymbolDoesNotExist:
		return "symbol does not exist"
	case IncludeError:
		return "include error"
	default:
		return "error"
	}
}

// Error is a fatal assembly failure, carrying the source position it
// was raised at.
type Error struct {
	Pos     token.Position
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Message)
}

func newError(pos token.Position, kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Pos: pos, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Warning is a non-fatal diagnostic, e.g. a `.globl` naming a symbol
// that was never defined.
type Warning struct {
	Pos     token.Position
	Message string
}

func (w *Warning) String() string {
	return fmt.Sprintf("%s: warning: %s", w.Pos, w.Message)
}

// ErrorList collects every warning produced during assembly.
type ErrorList struct {
	Warnings []*Warning
}

func (el *ErrorList) add(pos token.Position, format string, args ...interface{}) {
	el.Warnings = append(el.Warnings, &Warning{Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// String renders every warning, one per line.
func (el *ErrorList) String() string {
	var sb strings.Builder
	for _, w := range el.Warnings {
		sb.WriteString(w.String())
		sb.WriteString("\n")
	}
	return sb.String()
}
