package lang_test

import (
	"strings"
	"testing"

	"arm-compiler/pkg/arm"
	"arm-compiler/pkg/lang"
)

// Compiles 'source' end to end (parse, typecheck, lower, render) and returns the
// rendered assembly lines, failing the test immediately on any pass error.
func compile(t *testing.T, source string) []string {
	t.Helper()

	program, err := lang.Parse(source)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if err := lang.NewChecker().Check(program); err != nil {
		t.Fatalf("typecheck error: %v", err)
	}

	statements, err := lang.NewLowerer(program).Lower()
	if err != nil {
		t.Fatalf("codegen error: %v", err)
	}

	codegen := arm.NewCodeGenerator(statements)
	lines, err := codegen.Generate()
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	return lines
}

func containsLine(lines []string, want string) bool {
	for _, l := range lines {
		if strings.TrimSpace(l) == want {
			return true
		}
	}
	return false
}

func TestLowerSimpleReturn(t *testing.T) {
	// S1
	lines := compile(t, `function main() { return 2 + 3 * 4; }`)

	if !containsLine(lines, ".global main") {
		t.Fatalf("expected a '.global main' directive, got:\n%s", strings.Join(lines, "\n"))
	}
	if !containsLine(lines, "mul r0, r0, r1") {
		t.Fatalf("expected the multiplication to lower to 'mul r0, r0, r1', got:\n%s", strings.Join(lines, "\n"))
	}
	if !containsLine(lines, "add r0, r0, r1") {
		t.Fatalf("expected the addition to lower to 'add r0, r0, r1', got:\n%s", strings.Join(lines, "\n"))
	}
}

func TestLowerRecursiveCall(t *testing.T) {
	// S2
	lines := compile(t, `
		function f(n) { if (n == 0) { return 1; } else { return n * f(n - 1); } }
		function main() { return f(5); }
	`)

	if !containsLine(lines, "bl f") {
		t.Fatalf("expected a 'bl f' call site, got:\n%s", strings.Join(lines, "\n"))
	}
	if !containsLine(lines, "cmp r0, #0") {
		t.Fatalf("expected the if-condition to cmp against zero, got:\n%s", strings.Join(lines, "\n"))
	}
}

func TestLowerArrayLiteralAndLookup(t *testing.T) {
	// S3
	lines := compile(t, `function main() { var a = [7, 8, 9]; return a[1]; }`)

	if !containsLine(lines, "bl malloc") {
		t.Fatalf("expected the array literal to allocate via 'bl malloc', got:\n%s", strings.Join(lines, "\n"))
	}
	if !containsLine(lines, "movhs r0, #0") {
		t.Fatalf("expected the bounds check to zero out-of-range reads, got:\n%s", strings.Join(lines, "\n"))
	}
}

func TestLowerStringLiteral(t *testing.T) {
	// S4
	lines := compile(t, `function main() { var s = "hi"; putchar(s[0]); putchar(s[1]); }`)

	calls := 0
	for _, l := range lines {
		if strings.TrimSpace(l) == "bl putchar" {
			calls++
		}
	}
	if calls != 2 {
		t.Fatalf("expected two 'bl putchar' call sites, found %d in:\n%s", calls, strings.Join(lines, "\n"))
	}
}

func TestLowerForLoop(t *testing.T) {
	// S6
	lines := compile(t, `function main() { for (var i = 0; i != 3; i = i + 1;) { putchar(65); } }`)

	labels := 0
	for _, l := range lines {
		if strings.HasSuffix(strings.TrimSpace(l), ":") && strings.HasPrefix(strings.TrimSpace(l), ".L") {
			labels++
		}
	}
	if labels < 2 {
		t.Fatalf("expected at least a loop start and end label, found %d synthetic labels in:\n%s", labels, strings.Join(lines, "\n"))
	}
}

func TestLowerRejectsTooManyParams(t *testing.T) {
	program, err := lang.Parse(`function f(a, b, c, d, e) { return a; }`)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	_, err = lang.NewLowerer(program).Lower()
	if err == nil {
		t.Fatal("expected an arity error for a 5-parameter function")
	}
}

func TestLowerRejectsTooManyArgs(t *testing.T) {
	program, err := lang.Parse(`
		function f(a) { return a; }
		function main() { return f(1, 2, 3, 4, 5); }
	`)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	_, err = lang.NewLowerer(program).Lower()
	if err == nil {
		t.Fatal("expected an arity error for a 5-argument call")
	}
}

func TestLowerRejectsTopLevelNonFunction(t *testing.T) {
	program, err := lang.Parse(`x = 1;`)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	_, err = lang.NewLowerer(program).Lower()
	if err == nil {
		t.Fatal("expected an error for a bare top-level statement")
	}
}
