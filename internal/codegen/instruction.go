package codegen

import "strings"

// Kind distinguishes the handful of line shapes the generator emits.
// Adapted from the teacher's instructions.InstructionType — there, one
// enum value per RPN stack-operator; here, one value per assembly-line
// shape, since this generator emits operand-bearing lines directly
// rather than looking up a canned code snippet per operator.
type Kind byte

const (
	// Directive is a top-of-file assembler directive (`.intel_syntax
	// noprefix`, `.global _start`, `.text`).
	Directive Kind = 'd'
	// Label is a bare `name:` line, not indented.
	Label Kind = 'l'
	// Instr is an indented assembly instruction.
	Instr Kind = 'i'
)

// Instruction is a single emitted line, tagged with its Kind so
// callers (tests, pretty-printers) can distinguish a label from an
// instruction without string-sniffing.
//
// Mirrors the teacher's list_of_x86_instructions / []instructions.Instruction
// pairing of "a tag" with "the text to emit", generalised from a fixed
// per-operator snippet to an arbitrary already-formatted line.
type Instruction struct {
	Kind Kind
	Text string
}

// list is the ordered sequence of instructions a Generator accumulates
// for the whole program, serialised once at the end.
type list struct {
	items []Instruction
}

func (l *list) append(kind Kind, text string) {
	l.items = append(l.items, Instruction{Kind: kind, Text: text})
}

// String renders the full program: directives and labels unindented,
// everything else indented eight spaces, one line per Instruction.
func (l *list) String() string {
	var b strings.Builder
	for _, ins := range l.items {
		switch ins.Kind {
		case Directive, Label:
			b.WriteString(ins.Text)
		default:
			b.WriteString("        ")
			b.WriteString(ins.Text)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Len reports how many instructions have been accumulated so far.
func (l *list) Len() int {
	return len(l.items)
}
