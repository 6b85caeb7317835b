package lang

// ----------------------------------------------------------------------------
// General information

// This section declares the closed family of AST node variants produced by the grammar
// (see 'grammar.go') and consumed by the two walkers ('typecheck.go', 'codegen.go').
//
// Following the teacher's own dispatch shape, nodes are plain structs behind bare
// 'Expression'/'Statement' marker interfaces; every walker dispatches with a Go type
// switch instead of a visitor's double dispatch. Nothing here mutates once built: the
// parser constructs a tree and both walks only read it.

// Shared marker for every expression-kind node.
type Expression interface{}

// Shared marker for every statement-kind node.
type Statement interface{}

// ----------------------------------------------------------------------------
// Literals

type Num struct{ Value int32 }

type BoolLit struct{ Value bool }

type UndefinedLit struct{}

type NullLit struct{}

// Semantically an Array<Number> of character codes; must be accepted wherever an
// ArrayLiteral is, and additionally wherever a dispatch specifically expects a string
// (e.g. array-indexing treats a String the same way it treats an Array).
type StringLiteral struct{ Text string }

type ArrayLiteral struct{ Elements []Expression }

// ----------------------------------------------------------------------------
// References and operators

type Id struct{ Name string }

type Not struct{ Operand Expression }

// Binary arithmetic and comparison nodes, each with a left and right operand. Kept as
// distinct struct types (rather than one generic BinaryExpr with an operator tag) to
// match spec's closed-variant-per-operator AST shape; the teacher's own BinaryExpr
// consolidates on an 'ExprType' tag instead, but this language's dispatch and
// evaluation-order quirks differ per operator (see codegen.go), so a distinct type per
// node reads clearer at every call site that only wants to handle e.g. Add.
type Add struct{ Left, Right Expression }
type Subtract struct{ Left, Right Expression }
type Multiply struct{ Left, Right Expression }
type Divide struct{ Left, Right Expression }
type Equal struct{ Left, Right Expression }
type NotEqual struct{ Left, Right Expression }

// ----------------------------------------------------------------------------
// Access

type ArrayLookup struct {
	Array Expression
	Index Expression
}

type Length struct{ Array Expression }

// ----------------------------------------------------------------------------
// Calls and returns

type Call struct {
	Callee string
	Args   []Expression
}

type Return struct{ Value Expression }

// ----------------------------------------------------------------------------
// Control flow

type Block struct{ Statements []Statement }

type If struct {
	Cond Expression
	Then Statement
	Else Statement
}

type While struct {
	Cond Expression
	Body Statement
}

// Init and Step are statement-kind nodes (typically Var or Assign, each of which
// consumes its own trailing ';'); Cond is an expression wrapped as an ExprStmt by the
// grammar. This is why a well-formed for-header needs four semicolons in source text.
type For struct {
	Init Statement
	Cond Statement
	Step Statement
	Body Statement
}

// ----------------------------------------------------------------------------
// Declarations

// Annotation is nil when the source omits a ": type" — the grammar's varStmt accepts
// one even though spec's own EBNF for varStmt does not, to support scenario S5's
// annotated declarations (see DESIGN.md's note on this grammar extension).
type Var struct {
	Name       string
	Annotation *Type
	Init       Expression
}

type Assign struct {
	Name  string
	Value Expression
}

// An ordinary expression evaluated for its side effect only, e.g. a bare call statement.
type ExprStmt struct{ Expr Expression }

type Param struct {
	Name string
	Type Type
}

type Func struct {
	Name   string
	Params []Param
	Return Type
	Body   Statement // always a Block
}

// The parsed program: a flat sequence of top-level statements (function declarations and
// any bare statements that precede or interleave with them).
type Program struct{ Statements []Statement }
