package lang_test

import (
	"testing"

	"arm-compiler/pkg/lang"
)

func TestParseDeterministic(t *testing.T) {
	source := `function main() { return 2 + 3 * 4; }`

	first, err := lang.Parse(source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := lang.Parse(source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first.Statements) != 1 || len(second.Statements) != 1 {
		t.Fatalf("expected exactly one top-level statement in both parses")
	}
	fn1, ok1 := first.Statements[0].(lang.Func)
	fn2, ok2 := second.Statements[0].(lang.Func)
	if !ok1 || !ok2 || fn1.Name != fn2.Name {
		t.Fatalf("the same source parsed to different ASTs across runs")
	}
}

func TestOperatorPrecedence(t *testing.T) {
	program, err := lang.Parse(`function main() { return 2 + 3 * 4; }`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fn := program.Statements[0].(lang.Func)
	block := fn.Body.(lang.Block)
	ret := block.Statements[0].(lang.Return)

	add, ok := ret.Value.(lang.Add)
	if !ok {
		t.Fatalf("expected the top-level node to be Add (so that '*' binds tighter), got %T", ret.Value)
	}
	if _, ok := add.Left.(lang.Num); !ok {
		t.Fatalf("expected Add.Left to be the literal 2, got %T", add.Left)
	}
	if _, ok := add.Right.(lang.Multiply); !ok {
		t.Fatalf("expected Add.Right to be the Multiply subtree, got %T", add.Right)
	}
}

func TestLeftAssociativity(t *testing.T) {
	program, err := lang.Parse(`function main() { return 10 - 3 - 2; }`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fn := program.Statements[0].(lang.Func)
	block := fn.Body.(lang.Block)
	ret := block.Statements[0].(lang.Return)

	outer, ok := ret.Value.(lang.Subtract)
	if !ok {
		t.Fatalf("expected outer node to be Subtract, got %T", ret.Value)
	}
	inner, ok := outer.Left.(lang.Subtract)
	if !ok {
		t.Fatalf("expected '10 - 3 - 2' to associate as '(10 - 3) - 2', got Left=%T", outer.Left)
	}
	if n, ok := inner.Left.(lang.Num); !ok || n.Value != 10 {
		t.Fatalf("expected innermost Left to be the literal 10, got %+v", inner.Left)
	}
}

func TestGrammarAmbiguityOrdering(t *testing.T) {
	test := func(name, source string, check func(t *testing.T, expr lang.Expression)) {
		t.Run(name, func(t *testing.T) {
			program, err := lang.Parse("function main() { return " + source + "; }")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			fn := program.Statements[0].(lang.Func)
			block := fn.Body.(lang.Block)
			ret := block.Statements[0].(lang.Return)
			check(t, ret.Value)
		})
	}

	test("bare identifier parses as Id, not Call", "x", func(t *testing.T, expr lang.Expression) {
		if _, ok := expr.(lang.Id); !ok {
			t.Fatalf("expected Id, got %T", expr)
		}
	})

	test("call parses as Call", "f(1, 2)", func(t *testing.T, expr lang.Expression) {
		call, ok := expr.(lang.Call)
		if !ok || call.Callee != "f" || len(call.Args) != 2 {
			t.Fatalf("expected Call{f, [1 2]}, got %+v", expr)
		}
	})

	test("array lookup parses as ArrayLookup", "a[0]", func(t *testing.T, expr lang.Expression) {
		if _, ok := expr.(lang.ArrayLookup); !ok {
			t.Fatalf("expected ArrayLookup, got %T", expr)
		}
	})

	test("length(x) parses as the dedicated Length node", "length(a)", func(t *testing.T, expr lang.Expression) {
		if _, ok := expr.(lang.Length); !ok {
			t.Fatalf("expected Length, got %T", expr)
		}
	})
}

func TestParseErrorReportsFurthestOffset(t *testing.T) {
	_, err := lang.Parse(`function main() { return 1 + ; }`)
	if err == nil {
		t.Fatal("expected a parse error")
	}
	// The furthest the grammar gets is the ';' right after "1 + ", at index 29.
	if err.Error() != "Parse error at index 29" {
		t.Fatalf("expected 'Parse error at index 29', got %q", err.Error())
	}
}

func TestParseAnnotatedVar(t *testing.T) {
	// S5: a var with an explicit type annotation.
	program, err := lang.Parse(`function main() { var x: bool = true; }`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fn := program.Statements[0].(lang.Func)
	block := fn.Body.(lang.Block)
	decl := block.Statements[0].(lang.Var)

	if decl.Annotation == nil || !decl.Annotation.Equals(lang.Bool) {
		t.Fatalf("expected an explicit Bool annotation, got %+v", decl.Annotation)
	}
}

func TestParseForHeader(t *testing.T) {
	// S6: four-semicolon for-header (init; cond; step;) body.
	program, err := lang.Parse(`function main() { for (var i = 0; i != 3; i = i + 1;) { putchar(65); } }`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fn := program.Statements[0].(lang.Func)
	block := fn.Body.(lang.Block)
	forStmt, ok := block.Statements[0].(lang.For)
	if !ok {
		t.Fatalf("expected For, got %T", block.Statements[0])
	}
	if _, ok := forStmt.Init.(lang.Var); !ok {
		t.Fatalf("expected For.Init to be Var, got %T", forStmt.Init)
	}
	if _, ok := forStmt.Cond.(lang.ExprStmt); !ok {
		t.Fatalf("expected For.Cond to be ExprStmt, got %T", forStmt.Cond)
	}
	if _, ok := forStmt.Step.(lang.Assign); !ok {
		t.Fatalf("expected For.Step to be Assign, got %T", forStmt.Step)
	}
}
