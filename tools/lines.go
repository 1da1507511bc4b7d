package tools

import (
	"strings"

	"github.com/mips32sim/mips32/token"
)

// Line is one source line reduced to its structural parts: an
// optional label, the mnemonic or directive that follows it, the
// operand tokens in between (grouped on commas, with parenthesized
// memory operands kept whole), and a trailing comment.
type Line struct {
	Number      int
	Label       string
	Mnemonic    string
	IsDirective bool
	Operands    []string
	Comment     string
	Pos         token.Position
}

// tokenizeLines runs the tokenizer over source (keeping trivia so
// blank and comment-only lines still produce a Line) and groups the
// result by source line.
func tokenizeLines(file, source string) []Line {
	lex := token.NewLexer(file, source, newClassifier())
	toks := lex.TokenizeAll(true)

	var lines []Line
	cur := Line{Number: 1}
	havePos := false
	var operand strings.Builder
	flushOperand := func() {
		if operand.Len() > 0 {
			cur.Operands = append(cur.Operands, operand.String())
			operand.Reset()
		}
	}
	flushLine := func() {
		flushOperand()
		lines = append(lines, cur)
		cur = Line{Number: cur.Number + 1}
		havePos = false
	}

	for i := 0; i < len(toks); i++ {
		tok := toks[i]
		switch tok.Type {
		case token.Newline:
			flushLine()
			continue
		case token.Whitespace:
			continue
		case token.Comment:
			cur.Comment = strings.TrimSpace(strings.TrimPrefix(tok.Raw, "#"))
			continue
		}

		if !havePos {
			cur.Pos = tok.Pos
			havePos = true
		}

		switch {
		case tok.Type == token.Label && i+1 < len(toks) && nextNonSpace(toks, i+1).Type == token.Colon:
			cur.Label = tok.Raw
			i = skipToColon(toks, i+1)
		case cur.Mnemonic == "" && (tok.Type == token.Mnemonic || tok.Type == token.Directive):
			cur.Mnemonic = tok.Raw
			cur.IsDirective = tok.Type == token.Directive
		case tok.Type == token.Comma:
			flushOperand()
		default:
			operand.WriteString(tok.Raw)
		}
	}
	flushLine()
	return lines
}

func nextNonSpace(toks []token.Token, i int) token.Token {
	for ; i < len(toks); i++ {
		if toks[i].Type != token.Whitespace {
			return toks[i]
		}
	}
	return token.Token{Type: token.Unknown}
}

func skipToColon(toks []token.Token, i int) int {
	for ; i < len(toks); i++ {
		if toks[i].Type == token.Colon {
			return i
		}
	}
	return i
}
