package token

import (
	"regexp"
	"strings"

	"github.com/mips32sim/mips32/bits"
)

// Classifier resolves a bare identifier-shaped run against the
// directive, mnemonic, and register name sets known to the assembler.
// Kept as an interface (rather than importing the isa/asm packages
// directly) so the tokenizer has no dependency on the instruction set
// or symbol tables it feeds — the assembler supplies the classifier,
// per spec §9's call for an explicit context rather than package-level
// globals.
type Classifier interface {
	IsDirective(word string) bool
	IsMnemonic(word string) bool
	RegisterAddress(word string) (addr uint32, ok bool)
}

// tokenPattern enumerates every structural token class in one
// composed regular expression, matching spec §4.4's precedence:
// newline, punctuation, comment, whitespace, string, char, then a
// catch-all identifier-ish run resolved by the Classifier.
var tokenPattern = regexp.MustCompile(
	`(?P<newline>\n)` +
		`|(?P<comma>,)` +
		`|(?P<colon>:)` +
		`|(?P<lparen>\()` +
		`|(?P<rparen>\))` +
		`|(?P<comment>#[^\n]*)` +
		`|(?P<whitespace>[ \t\r]+)` +
		`|(?P<ascii>"(?:\\.|[^"\\])*")` +
		`|(?P<char>'(?:\\.|[^'\\])')` +
		`|(?P<word>[^\s,:()#]+)`,
)

var subexpNames = tokenPattern.SubexpNames()

// Lexer tokenizes MIPS source text in a single regular-expression
// pass.
type Lexer struct {
	file       string
	input      string
	classifier Classifier
}

// NewLexer creates a Lexer over input, attributing tokens to file and
// resolving ambiguous words via classifier.
func NewLexer(file, input string, classifier Classifier) *Lexer {
	return &Lexer{file: file, input: input, classifier: classifier}
}

// TokenizeAll runs the full tokenization pass, optionally omitting
// Whitespace and Comment tokens.
func (l *Lexer) TokenizeAll(keepTrivia bool) []Token {
	var out []Token
	line := 1
	lineStart := 0

	matches := tokenPattern.FindAllStringSubmatchIndex(l.input, -1)
	for _, m := range matches {
		start, end := m[0], m[1]
		raw := l.input[start:end]
		pos := Position{File: l.file, Line: line, LineOffset: start - lineStart, FileOffset: start}

		tok := l.classify(raw, m, pos)

		if tok.Type == Newline {
			line++
			lineStart = end
		}

		if !keepTrivia && (tok.Type == Whitespace || tok.Type == Comment) {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// classify maps one regex match to a concrete Token, resolving the
// catch-all "word" group against the configured Classifier and the
// integer/char literal grammar from the bits package.
func (l *Lexer) classify(raw string, m []int, pos Position) Token {
	group := l.matchedGroup(m)
	switch group {
	case "newline":
		return Token{Type: Newline, Raw: raw, Pos: pos}
	case "comma":
		return Token{Type: Comma, Raw: raw, Pos: pos}
	case "colon":
		return Token{Type: Colon, Raw: raw, Pos: pos}
	case "lparen":
		return Token{Type: LeftParen, Raw: raw, Pos: pos}
	case "rparen":
		return Token{Type: RightParen, Raw: raw, Pos: pos}
	case "comment":
		return Token{Type: Comment, Raw: raw, Pos: pos}
	case "whitespace":
		return Token{Type: Whitespace, Raw: raw, Pos: pos}
	case "ascii":
		decoded, _ := bits.DecodeEscapedString(raw[1 : len(raw)-1])
		return Token{Type: Ascii, Raw: raw, ParsedStr: decoded, HasParsed: true, Pos: pos}
	case "char":
		cp, ok := bits.DecodeCharLiteral(raw)
		if !ok {
			return Token{Type: Unknown, Raw: raw, Pos: pos}
		}
		return Token{Type: Char, Raw: raw, ParsedInt: uint64(cp), HasParsed: true, Pos: pos}
	default:
		return l.classifyWord(raw, pos)
	}
}

func (l *Lexer) matchedGroup(m []int) string {
	for i := 1; i*2 < len(m); i++ {
		if m[i*2] != -1 {
			return subexpNames[i]
		}
	}
	return ""
}

// classifyWord resolves an identifier-shaped run in precedence order:
// directive, mnemonic, register, integer literal, then label or
// unknown.
func (l *Lexer) classifyWord(raw string, pos Position) Token {
	lower := strings.ToLower(raw)

	if l.classifier != nil && l.classifier.IsDirective(lower) {
		return Token{Type: Directive, Raw: raw, Pos: pos}
	}
	if l.classifier != nil && l.classifier.IsMnemonic(lower) {
		return Token{Type: Mnemonic, Raw: raw, Pos: pos}
	}
	if l.classifier != nil {
		if addr, ok := l.classifier.RegisterAddress(lower); ok {
			return Token{Type: Register, Raw: raw, ParsedInt: uint64(addr), HasParsed: true, Pos: pos}
		}
	}
	if v, ok := bits.FromString(raw, 32, true); ok {
		return Token{Type: Immediate, Raw: raw, ParsedInt: v, HasParsed: true, Pos: pos}
	}
	if isValidLabel(raw) {
		return Token{Type: Label, Raw: raw, Pos: pos}
	}
	return Token{Type: Unknown, Raw: raw, Pos: pos}
}

// isValidLabel reports whether raw matches the label-identifier
// grammar from spec §6: begins with a letter, continues with
// [A-Za-z0-9_.$].
func isValidLabel(raw string) bool {
	if raw == "" {
		return false
	}
	first := raw[0]
	if !((first >= 'a' && first <= 'z') || (first >= 'A' && first <= 'Z')) {
		return false
	}
	for i := 1; i < len(raw); i++ {
		c := raw[i]
		ok := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
			(c >= '0' && c <= '9') || c == '_' || c == '.' || c == '$'
		if !ok {
			return false
		}
	}
	return true
}
