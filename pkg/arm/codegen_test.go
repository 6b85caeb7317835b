package arm_test

import (
	"testing"

	"arm-compiler/pkg/arm"
)

func TestGenerateOp(t *testing.T) {
	codegen := arm.NewCodeGenerator(nil)

	test := func(op arm.Op, expected string, fail bool) {
		res, err := codegen.GenerateOp(op)
		if !fail && res != expected {
			t.Fatalf("expected %q, got %q", expected, res)
		}
		if fail && err == nil {
			t.Fatalf("expected an error for %+v, got none", op)
		}
	}

	t.Run("Zero and multi operand mnemonics", func(t *testing.T) {
		test(arm.Inst("nop"), "\tnop", false)
		test(arm.Inst("bl", "malloc"), "\tbl malloc", false)
		test(arm.Inst("mov", "fp", "sp"), "\tmov fp, sp", false)
		test(arm.Inst("push", "{fp, lr}"), "\tpush {fp, lr}", false)
		test(arm.Inst("pop", "{fp, pc}"), "\tpop {fp, pc}", false)
	})

	t.Run("Missing mnemonic fails", func(t *testing.T) {
		test(arm.Op{}, "", true)
	})
}

func TestGenerateLabel(t *testing.T) {
	codegen := arm.NewCodeGenerator(nil)

	t.Run("Named labels", func(t *testing.T) {
		res, err := codegen.GenerateLabel(arm.Label{Name: "main"})
		if err != nil || res != "main:" {
			t.Fatalf("expected 'main:', got res=%q err=%v", res, err)
		}

		res, err = codegen.GenerateLabel(arm.Label{Name: ".L3"})
		if err != nil || res != ".L3:" {
			t.Fatalf("expected '.L3:', got res=%q err=%v", res, err)
		}
	})

	t.Run("Unnamed label fails", func(t *testing.T) {
		_, err := codegen.GenerateLabel(arm.Label{})
		if err == nil {
			t.Fatal("expected an error for an unnamed label")
		}
	})
}

func TestGenerate(t *testing.T) {
	program := []arm.Statement{
		arm.Directive{Text: ""},
		arm.Directive{Text: ".global main"},
		arm.Label{Name: "main"},
		arm.Inst("push", "{fp, lr}"),
		arm.Inst("mov", "fp", "sp"),
		arm.Inst("mov", "r0", "#0"),
		arm.Inst("pop", "{fp, pc}"),
	}

	codegen := arm.NewCodeGenerator(program)
	lines, err := codegen.Generate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []string{
		"",
		".global main",
		"main:",
		"\tpush {fp, lr}",
		"\tmov fp, sp",
		"\tmov r0, #0",
		"\tpop {fp, pc}",
	}

	if len(lines) != len(expected) {
		t.Fatalf("expected %d lines, got %d", len(expected), len(lines))
	}
	for i := range expected {
		if lines[i] != expected[i] {
			t.Fatalf("line %d: expected %q, got %q", i, expected[i], lines[i])
		}
	}
}
