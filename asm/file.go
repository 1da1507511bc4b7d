package asm

import (
	"os"
	"path/filepath"

	"github.com/mips32sim/mips32/token"
)

// directiveInclude reads another assembly file and assembles its
// statements in place, rejecting circular includes.
func (c *Context) directiveInclude(pos token.Position, toks []token.Token) error {
	vals := operandValues(toks)
	if len(vals) != 1 || vals[0].Type != token.Ascii {
		return newError(pos, SyntaxError, ".include expects a single string literal path")
	}
	path := filepath.Clean(filepath.Join(filepath.Dir(pos.File), vals[0].ParsedStr))
	abs, err := filepath.Abs(path)
	if err != nil {
		return newError(pos, IncludeError, "cannot resolve %q: %s", path, err)
	}
	if c.includes[abs] {
		return newError(pos, IncludeError, "circular .include of %q", path)
	}

	content, err := os.ReadFile(path) // #nosec G304 -- user-provided assembly source path
	if err != nil {
		return newError(pos, IncludeError, "cannot read %q: %s", path, err)
	}

	c.includes[abs] = true
	err = c.assembleSource(path, string(content))
	delete(c.includes, abs)
	return err
}
