package tools

import (
	"fmt"
	"strings"
)

// FormatStyle selects a formatter's overall column layout.
type FormatStyle int

const (
	FormatDefault  FormatStyle = iota // standard column layout
	FormatCompact                     // minimal whitespace, single space between fields
	FormatExpanded                    // wider columns for readability
)

// FormatOptions controls Format's column layout and whitespace rules.
type FormatOptions struct {
	Style             FormatStyle
	InstructionColumn int // column the mnemonic/directive starts at
	OperandColumn     int // column the operand list starts at
	CommentColumn     int // column a trailing comment starts at
	AlignComments     bool
}

// DefaultFormatOptions returns the standard column layout.
func DefaultFormatOptions() *FormatOptions {
	return &FormatOptions{
		Style:             FormatDefault,
		InstructionColumn: 8,
		OperandColumn:     16,
		CommentColumn:     40,
		AlignComments:     true,
	}
}

// CompactFormatOptions returns single-space field separation with no
// column alignment.
func CompactFormatOptions() *FormatOptions {
	return &FormatOptions{Style: FormatCompact}
}

// ExpandedFormatOptions returns wider columns than the default.
func ExpandedFormatOptions() *FormatOptions {
	return &FormatOptions{
		Style:             FormatExpanded,
		InstructionColumn: 12,
		OperandColumn:     28,
		CommentColumn:     56,
		AlignComments:     true,
	}
}

// Format re-renders source into a canonical column layout per opts.
// Unlike the assembler, it never rejects malformed input: a line it
// can't make sense of (an Unknown token, say) is passed through
// verbatim rather than failing the whole file, since a formatter's
// job is cosmetic, not diagnostic.
func Format(file, source string, opts *FormatOptions) string {
	if opts == nil {
		opts = DefaultFormatOptions()
	}
	lines := tokenizeLines(file, source)
	raw := strings.Split(source, "\n")

	var b strings.Builder
	for i, ln := range lines {
		if ln.Mnemonic == "" && len(ln.Operands) > 0 && i < len(raw) {
			b.WriteString(raw[i])
		} else {
			b.WriteString(formatLine(ln, opts))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func formatLine(ln Line, opts *FormatOptions) string {
	if ln.Label == "" && ln.Mnemonic == "" {
		if ln.Comment != "" {
			return "# " + ln.Comment
		}
		return ""
	}

	var b strings.Builder
	col := 0

	if ln.Label != "" {
		b.WriteString(ln.Label + ":")
		col = b.Len()
	}

	if ln.Mnemonic != "" {
		if opts.Style == FormatCompact {
			if col > 0 {
				b.WriteByte(' ')
			}
		} else {
			padTo(&b, col, opts.InstructionColumn)
		}
		b.WriteString(ln.Mnemonic)
		col = b.Len()

		if len(ln.Operands) > 0 {
			if opts.Style == FormatCompact {
				b.WriteByte(' ')
			} else {
				padTo(&b, col, opts.OperandColumn)
			}
			b.WriteString(strings.Join(ln.Operands, ", "))
			col = b.Len()
		}
	}

	if ln.Comment != "" {
		if opts.AlignComments && opts.Style != FormatCompact {
			padTo(&b, col, opts.CommentColumn)
		} else {
			b.WriteByte(' ')
		}
		b.WriteString("# " + ln.Comment)
	}

	return b.String()
}

// padTo appends spaces bringing the builder's length from col to at
// least target, always at least one space if col has already passed
// target.
func padTo(b *strings.Builder, col, target int) {
	if col >= target {
		b.WriteByte(' ')
		return
	}
	fmt.Fprintf(b, "%*s", target-col, "")
}
