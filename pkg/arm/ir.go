package arm

import "strings"

// ----------------------------------------------------------------------------
// General information

// This section declares a small textual-assembly intermediate representation, grounded
// directly on the teacher's two-layer split of 'pkg/asm' feeding 'pkg/hack': an IR
// struct goes in, a validated line of text comes out. Hack's instruction set is fixed at
// two opcodes (A/C instructions), so 'asm.Statement' can close over exactly those two
// plus a label declaration; ARM has an open-ended mnemonic set, so 'Op' below carries a
// free-form mnemonic string and operand list instead of a closed Comp/Dest/Jump triple.
// The "IR struct in, validated text line out, type switch per statement kind" shape is
// otherwise unchanged from 'hack.CodeGenerator'/'asm.CodeGenerator'.

// Puts together every kind of line the code generator (pkg/lang/codegen.go) can emit.
type Statement interface{}

// A blank line or a raw assembler directive, e.g. ".global main".
type Directive struct{ Text string }

// A label declaration, e.g. a function entry point or a synthetic ".L3" branch target.
type Label struct{ Name string }

// A single instruction, e.g. Op{"mov", []string{"fp", "sp"}} for "mov fp, sp".
type Op struct {
	Mnemonic string
	Operands []string
}

// Renders the statement as its line of assembly text; 'codegen.go' emits exactly these
// strings once a statement has passed validation. (--print-ir does not use these: it
// dumps the statements in Go syntax.)
func (d Directive) String() string { return d.Text }
func (l Label) String() string     { return l.Name + ":" }

func (o Op) String() string {
	if len(o.Operands) == 0 {
		return "\t" + o.Mnemonic
	}
	return "\t" + o.Mnemonic + " " + strings.Join(o.Operands, ", ")
}

// Builds an Op from a mnemonic and its operands, e.g. Inst("mov", "fp", "sp"); with no
// operands, e.g. Inst("nop"), it renders as the bare mnemonic.
func Inst(mnemonic string, operands ...string) Op {
	return Op{Mnemonic: mnemonic, Operands: operands}
}
