package arm

import (
	"errors"
	"fmt"
)

// ----------------------------------------------------------------------------
// Code Generator

// Takes a set of 'arm.Statement' and spits out their textual counterparts.
//
// Same signature shape as 'hack.CodeGenerator.Generate': each statement passes through
// evaluation, validation and then conversion to its textual representation, so that the
// caller (a cmd/armc driver, a test) can further elaborate it (write to a file, compare
// against a golden string, ...).
type CodeGenerator struct {
	program []Statement
}

// Initializes and returns to the caller a brand new 'CodeGenerator' struct.
func NewCodeGenerator(program []Statement) CodeGenerator {
	return CodeGenerator{program: program}
}

// Translates each statement in 'program' to GNU-style ARM (AArch32) assembly text.
func (cg *CodeGenerator) Generate() ([]string, error) {
	out := make([]string, 0, len(cg.program))

	for _, statement := range cg.program {
		var line string
		var err error

		switch s := statement.(type) {
		case Directive:
			line, err = cg.GenerateDirective(s)
		case Label:
			line, err = cg.GenerateLabel(s)
		case Op:
			line, err = cg.GenerateOp(s)
		default:
			err = fmt.Errorf("unknown arm.Statement variant %T", statement)
		}

		if err != nil {
			return nil, err
		}
		out = append(out, line)
	}

	return out, nil
}

// Converts a Directive to its textual line. An empty 'Text' is allowed, it renders as a
// blank line (used to visually separate function emissions, see pkg/lang/codegen.go).
func (CodeGenerator) GenerateDirective(d Directive) (string, error) { return d.Text, nil }

// Converts a Label declaration to its textual line.
func (CodeGenerator) GenerateLabel(l Label) (string, error) {
	if l.Name == "" {
		return "", errors.New("unable to produce an unnamed label declaration")
	}
	return l.String(), nil
}

// Converts an Op to its textual line. An Op always needs a mnemonic; its operand count
// is not validated here since ARM's mnemonic set is open-ended, unlike Hack's fixed
// Comp/Dest/Jump tables.
func (CodeGenerator) GenerateOp(o Op) (string, error) {
	if o.Mnemonic == "" {
		return "", errors.New("expected a mnemonic, got none")
	}
	return o.String(), nil
}
