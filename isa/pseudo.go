package isa

import (
	"fmt"
	"strconv"

	"github.com/mips32sim/mips32/bits"
	"github.com/mips32sim/mips32/token"
)

// Pseudo is a pseudo-instruction: it never encodes directly, but
// expands into one or more basic-instruction source lines which the
// assembler re-tokenizes and assembles in its place, per spec §4.4's
// pseudo-instruction expansion requirement.
type Pseudo struct {
	Mnemonic string
	Pattern  []SlotKind
	Expand   func(ops []MatchedOperand) ([]string, error)
}

var pseudoRegistry = map[string]*Pseudo{}

func registerPseudo(p *Pseudo) { pseudoRegistry[p.Mnemonic] = p }

// LookupPseudo returns the pseudo-instruction definition for
// mnemonic, if any.
func LookupPseudo(mnemonic string) (*Pseudo, bool) {
	p, ok := pseudoRegistry[mnemonic]
	return p, ok
}

// MatchPseudo parses a pseudo-instruction's operand tokens the same
// way a basic instruction's are parsed, then expands it into concrete
// basic-instruction source text.
func MatchPseudo(mnemonic string, operandToks []token.Token) ([]string, error) {
	p, ok := pseudoRegistry[mnemonic]
	if !ok {
		return nil, fmt.Errorf("%q is not a pseudo-instruction", mnemonic)
	}
	ops, err := parseOperands(operandToks)
	if err != nil {
		return nil, err
	}
	if !matchesPattern(p.Pattern, ops) {
		return nil, fmt.Errorf("%q does not accept the given operand shape", mnemonic)
	}
	return p.Expand(ops)
}

func regName(addr uint32) string { return "$" + strconv.FormatUint(uint64(addr), 10) }

// immText renders an operand token back to source text the lexer can
// re-tokenize: a literal immediate keeps its numeric value, a label
// reference keeps its name so the assembler resolves it normally at
// encode time.
func immText(tok token.Token) string {
	if tok.Type == token.Label {
		return tok.Raw
	}
	return strconv.FormatUint(tok.ParsedInt, 10)
}

func init() {
	registerPseudo(&Pseudo{Mnemonic: "nop", Pattern: nil,
		Expand: func(ops []MatchedOperand) ([]string, error) {
			return []string{"sll $zero, $zero, 0"}, nil
		}})

	registerPseudo(&Pseudo{Mnemonic: "move", Pattern: []SlotKind{SlotReg, SlotReg},
		Expand: func(ops []MatchedOperand) ([]string, error) {
			return []string{fmt.Sprintf("addu %s, %s, $zero", regName(ops[0].RegAddr), regName(ops[1].RegAddr))}, nil
		}})

	registerPseudo(&Pseudo{Mnemonic: "li", Pattern: []SlotKind{SlotReg, SlotImm},
		Expand: func(ops []MatchedOperand) ([]string, error) {
			dst := regName(ops[0].RegAddr)
			if ops[1].ImmTok.Type == token.Label {
				return nil, fmt.Errorf("%s: li requires a literal immediate, not a label", ops[1].ImmTok.Pos)
			}
			v := ops[1].ImmTok.ParsedInt
			if s := bits.ToInt(v, 32); s >= -32768 && s <= 32767 {
				return []string{fmt.Sprintf("addiu %s, $zero, %d", dst, s)}, nil
			}
			hi := bits.GetBits(v, 16, 31)
			lo := bits.GetBits(v, 0, 15)
			return []string{
				fmt.Sprintf("lui %s, %d", dst, hi),
				fmt.Sprintf("ori %s, %s, %d", dst, dst, lo),
			}, nil
		}})

	registerPseudo(&Pseudo{Mnemonic: "la", Pattern: []SlotKind{SlotReg, SlotImm},
		Expand: func(ops []MatchedOperand) ([]string, error) {
			return []string{fmt.Sprintf("addiupc %s, %s", regName(ops[0].RegAddr), immText(ops[1].ImmTok))}, nil
		}})

	registerPseudo(&Pseudo{Mnemonic: "b", Pattern: []SlotKind{SlotImm},
		Expand: func(ops []MatchedOperand) ([]string, error) {
			return []string{fmt.Sprintf("beq $zero, $zero, %s", immText(ops[0].ImmTok))}, nil
		}})
	registerPseudo(&Pseudo{Mnemonic: "bal", Pattern: []SlotKind{SlotImm},
		Expand: func(ops []MatchedOperand) ([]string, error) {
			return []string{fmt.Sprintf("balc %s", immText(ops[0].ImmTok))}, nil
		}})
	registerPseudo(&Pseudo{Mnemonic: "beqz", Pattern: []SlotKind{SlotReg, SlotImm},
		Expand: func(ops []MatchedOperand) ([]string, error) {
			return []string{fmt.Sprintf("beq %s, $zero, %s", regName(ops[0].RegAddr), immText(ops[1].ImmTok))}, nil
		}})
	registerPseudo(&Pseudo{Mnemonic: "bnez", Pattern: []SlotKind{SlotReg, SlotImm},
		Expand: func(ops []MatchedOperand) ([]string, error) {
			return []string{fmt.Sprintf("bne %s, $zero, %s", regName(ops[0].RegAddr), immText(ops[1].ImmTok))}, nil
		}})

	registerPseudo(&Pseudo{Mnemonic: "bge", Pattern: []SlotKind{SlotReg, SlotReg, SlotImm},
		Expand: func(ops []MatchedOperand) ([]string, error) {
			return []string{fmt.Sprintf("slt $at, %s, %s", regName(ops[0].RegAddr), regName(ops[1].RegAddr)),
				fmt.Sprintf("beq $at, $zero, %s", immText(ops[2].ImmTok))}, nil
		}})
	registerPseudo(&Pseudo{Mnemonic: "ble", Pattern: []SlotKind{SlotReg, SlotReg, SlotImm},
		Expand: func(ops []MatchedOperand) ([]string, error) {
			return []string{fmt.Sprintf("slt $at, %s, %s", regName(ops[1].RegAddr), regName(ops[0].RegAddr)),
				fmt.Sprintf("beq $at, $zero, %s", immText(ops[2].ImmTok))}, nil
		}})
	registerPseudo(&Pseudo{Mnemonic: "bgt", Pattern: []SlotKind{SlotReg, SlotReg, SlotImm},
		Expand: func(ops []MatchedOperand) ([]string, error) {
			return []string{fmt.Sprintf("slt $at, %s, %s", regName(ops[1].RegAddr), regName(ops[0].RegAddr)),
				fmt.Sprintf("bne $at, $zero, %s", immText(ops[2].ImmTok))}, nil
		}})
	registerPseudo(&Pseudo{Mnemonic: "blt", Pattern: []SlotKind{SlotReg, SlotReg, SlotImm},
		Expand: func(ops []MatchedOperand) ([]string, error) {
			return []string{fmt.Sprintf("slt $at, %s, %s", regName(ops[0].RegAddr), regName(ops[1].RegAddr)),
				fmt.Sprintf("bne $at, $zero, %s", immText(ops[2].ImmTok))}, nil
		}})

	registerPseudo(&Pseudo{Mnemonic: "jalr", Pattern: []SlotKind{SlotReg},
		Expand: func(ops []MatchedOperand) ([]string, error) {
			return []string{fmt.Sprintf("jalr $ra, %s", regName(ops[0].RegAddr))}, nil
		}})
}
