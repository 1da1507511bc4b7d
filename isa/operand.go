package isa

import (
	"fmt"

	"github.com/mips32sim/mips32/token"
)

// SlotKind classifies one operand position in an instruction's
// grammar, per the basic-instruction shapes enumerated in spec §4.5.
type SlotKind int

const (
	// SlotReg is a bare register operand: $t0.
	SlotReg SlotKind = iota
	// SlotImm is an immediate, char literal, or label reference used as
	// a bare value (an immediate field or a branch/jump target).
	SlotImm
	// SlotMem is the offset(base) memory-operand composite used by
	// loads and stores. The offset may be omitted, defaulting to 0.
	SlotMem
)

func (k SlotKind) String() string {
	switch k {
	case SlotReg:
		return "register"
	case SlotImm:
		return "immediate"
	case SlotMem:
		return "offset(register)"
	default:
		return "unknown"
	}
}

// MatchedOperand is one resolved operand from a statement's token
// stream: a register address, an immediate-like token (literal or
// label, left for the assembler to resolve against its symbol
// tables), or a memory composite of both.
type MatchedOperand struct {
	Kind     SlotKind
	RegAddr  uint32      // valid for SlotReg, and SlotMem's base register
	ImmTok   token.Token // valid for SlotImm, and SlotMem's offset (zero Token if omitted)
	HasImm   bool
}

// parseOperands splits a comma-separated operand token stream (the
// statement's tokens after its mnemonic, with Whitespace/Comment/
// Newline already stripped) into a flat operand list, expanding the
// offset(base) composite into a single SlotMem entry.
func parseOperands(toks []token.Token) ([]MatchedOperand, error) {
	var out []MatchedOperand
	var group []token.Token

	flush := func() error {
		if len(group) == 0 {
			return nil
		}
		op, err := parseOneOperand(group)
		if err != nil {
			return err
		}
		out = append(out, op)
		group = nil
		return nil
	}

	for _, t := range toks {
		if t.Type == token.Comma {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		group = append(group, t)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return out, nil
}

func parseOneOperand(toks []token.Token) (MatchedOperand, error) {
	if len(toks) == 1 {
		t := toks[0]
		if t.Type == token.Register {
			return MatchedOperand{Kind: SlotReg, RegAddr: uint32(t.ParsedInt)}, nil
		}
		if t.Type.IsImmediateLike() {
			return MatchedOperand{Kind: SlotImm, ImmTok: t, HasImm: true}, nil
		}
		return MatchedOperand{}, fmt.Errorf("%s: unexpected operand %q", t.Pos, t.Raw)
	}

	// offset(base) or (base): last three tokens must be [ , LeftParen,
	// Register, RightParen ].
	if len(toks) >= 3 && toks[len(toks)-1].Type == token.RightParen &&
		toks[len(toks)-2].Type == token.Register && toks[len(toks)-3].Type == token.LeftParen {
		base := toks[len(toks)-2]
		prefix := toks[:len(toks)-3]
		op := MatchedOperand{Kind: SlotMem, RegAddr: uint32(base.ParsedInt)}
		switch len(prefix) {
		case 0:
			// (base) with implicit zero offset.
		case 1:
			if !prefix[0].Type.IsImmediateLike() {
				return MatchedOperand{}, fmt.Errorf("%s: expected offset before '(', got %q", prefix[0].Pos, prefix[0].Raw)
			}
			op.ImmTok = prefix[0]
			op.HasImm = true
		default:
			return MatchedOperand{}, fmt.Errorf("%s: malformed memory operand", toks[0].Pos)
		}
		return op, nil
	}

	return MatchedOperand{}, fmt.Errorf("%s: malformed operand", toks[0].Pos)
}

// matchesPattern reports whether parsed operand list op matches the
// instruction's declared operand shape.
func matchesPattern(pattern []SlotKind, ops []MatchedOperand) bool {
	if len(pattern) != len(ops) {
		return false
	}
	for i, k := range pattern {
		if ops[i].Kind != k {
			return false
		}
	}
	return true
}
