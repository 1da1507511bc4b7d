package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClassifier struct {
	directives map[string]bool
	mnemonics  map[string]bool
	registers  map[string]uint32
}

func (f *fakeClassifier) IsDirective(w string) bool { return f.directives[w] }
func (f *fakeClassifier) IsMnemonic(w string) bool   { return f.mnemonics[w] }
func (f *fakeClassifier) RegisterAddress(w string) (uint32, bool) {
	a, ok := f.registers[w]
	return a, ok
}

func newTestClassifier() *fakeClassifier {
	return &fakeClassifier{
		directives: map[string]bool{".data": true, ".text": true, ".word": true},
		mnemonics:  map[string]bool{"add": true, "addiu": true, "bne": true, "nop": true},
		registers:  map[string]uint32{"$t0": 8, "$t1": 9, "$zero": 0},
	}
}

func TestLexerBasicStatement(t *testing.T) {
	src := "add $t0, $t1, $zero # comment\n"
	l := NewLexer("test.asm", src, newTestClassifier())
	toks := l.TokenizeAll(false)

	require.Len(t, toks, 7)
	assert.Equal(t, Mnemonic, toks[0].Type)
	assert.Equal(t, Register, toks[1].Type)
	assert.Equal(t, Comma, toks[2].Type)
	assert.Equal(t, Register, toks[3].Type)
	assert.Equal(t, Comma, toks[4].Type)
	assert.Equal(t, Register, toks[5].Type)
}

func TestLexerKeepTrivia(t *testing.T) {
	src := "add $t0, $t0 # hi\n"
	l := NewLexer("t.asm", src, newTestClassifier())
	toks := l.TokenizeAll(true)

	var sawComment, sawWhitespace bool
	for _, tk := range toks {
		if tk.Type == Comment {
			sawComment = true
		}
		if tk.Type == Whitespace {
			sawWhitespace = true
		}
	}
	assert.True(t, sawComment)
	assert.True(t, sawWhitespace)
}

func TestLexerLabelAndDirective(t *testing.T) {
	src := "loop:\n.data\n"
	l := NewLexer("t.asm", src, newTestClassifier())
	toks := l.TokenizeAll(false)

	require.GreaterOrEqual(t, len(toks), 4)
	assert.Equal(t, Label, toks[0].Type)
	assert.Equal(t, "loop", toks[0].Raw)
	assert.Equal(t, Colon, toks[1].Type)
	assert.Equal(t, Newline, toks[2].Type)
	assert.Equal(t, Directive, toks[3].Type)
}

func TestLexerImmediatesAndLiterals(t *testing.T) {
	src := "0x10, 0b101, 'a', \"hi\\n\"\n"
	l := NewLexer("t.asm", src, newTestClassifier())
	toks := l.TokenizeAll(false)

	require.GreaterOrEqual(t, len(toks), 7)
	assert.Equal(t, Immediate, toks[0].Type)
	assert.Equal(t, uint64(0x10), toks[0].ParsedInt)
	assert.Equal(t, Immediate, toks[2].Type)
	assert.Equal(t, uint64(5), toks[2].ParsedInt)
	assert.Equal(t, Char, toks[4].Type)
	assert.Equal(t, uint64('a'), toks[4].ParsedInt)
	assert.Equal(t, Ascii, toks[6].Type)
	assert.Equal(t, "hi\n", toks[6].ParsedStr)
}

func TestLexerMemoryOperand(t *testing.T) {
	src := "lw $t0, 4($t1)\n"
	l := NewLexer("t.asm", src, &fakeClassifier{
		mnemonics: map[string]bool{"lw": true},
		registers: map[string]uint32{"$t0": 8, "$t1": 9},
	})
	toks := l.TokenizeAll(false)
	types := []Type{}
	for _, tk := range toks {
		types = append(types, tk.Type)
	}
	assert.Equal(t, []Type{Mnemonic, Register, Comma, Immediate, LeftParen, Register, RightParen, Newline}, types)
}

func TestPositionTracksLineAndOffset(t *testing.T) {
	src := "add $t0, $t0, $t0\nnop\n"
	l := NewLexer("t.asm", src, newTestClassifier())
	toks := l.TokenizeAll(false)

	var nopTok Token
	for _, tk := range toks {
		if tk.Raw == "nop" {
			nopTok = tk
		}
	}
	require.NotEmpty(t, nopTok.Raw)
	assert.Equal(t, 2, nopTok.Pos.Line)
}
