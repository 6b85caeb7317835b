package lang

import (
	"fmt"

	"arm-compiler/pkg/arm"
)

// ----------------------------------------------------------------------------
// General information

// The code generator walks the tree exactly once and emits '[]arm.Statement', grounded
// on the teacher's 'jack.Lowerer' AST-to-IR walk (one method per node kind, dispatched
// via a type switch, threading a scope-shaped environment). Generalized from Jack's four
// VM memory segments (local/argument/this/static) to this language's single fp-relative
// stack frame, and from push/pop/call VM operations to 'arm.Op' mnemonics
// (ldr/str/push/pop/bl/cmp/branches) per the exact instruction sequences this language's
// machine model specifies.
//
// The label counter is the one piece of state shared across every function emission in a
// compilation run (see spec's concurrency model: "the only shared mutable state is the
// monotonically increasing label counter").
type Lowerer struct {
	program Program
	labels  int
}

// Builds a Lowerer ready to compile 'program' to ARM assembly text.
func NewLowerer(program Program) *Lowerer {
	return &Lowerer{program: program}
}

// Returns a fresh ".L<n>" label, drawing from the Lowerer's monotonic counter.
func (lw *Lowerer) newLabel() string {
	label := fmt.Sprintf(".L%d", lw.labels)
	lw.labels++
	return label
}

// Lowers every top-level 'Func' declaration in the program. This language's code
// generator only knows how to emit function declarations at the top level (see
// spec's §4.3 "Function emission"); a bare statement outside any function is an emit
// error, the same class of error as an undefined variable or an over-arity call.
func (lw *Lowerer) Lower() ([]arm.Statement, error) {
	out := []arm.Statement{}

	for _, stmt := range lw.program.Statements {
		fn, ok := stmt.(Func)
		if !ok {
			return nil, fmt.Errorf("top-level statement %T is not a function declaration", stmt)
		}

		code, err := lw.HandleFunc(fn)
		if err != nil {
			return nil, fmt.Errorf("error emitting function %q: %w", fn.Name, err)
		}
		out = append(out, code...)
	}

	return out, nil
}

// ----------------------------------------------------------------------------
// Functions

// Emits a blank line, '.global <name>', the label, prologue, body and epilogue for a
// single function declaration.
func (lw *Lowerer) HandleFunc(fn Func) ([]arm.Statement, error) {
	if len(fn.Params) > 4 {
		return nil, fmt.Errorf("function %q declares %d parameters, at most 4 are allowed", fn.Name, len(fn.Params))
	}
	seen := map[string]bool{}
	for _, p := range fn.Params {
		if seen[p.Name] {
			return nil, fmt.Errorf("function %q declares parameter %q more than once", fn.Name, p.Name)
		}
		seen[p.Name] = true
	}

	scope := NewFrameScope()
	for i, p := range fn.Params {
		scope.BindParam(p.Name, i)
	}

	out := []arm.Statement{
		arm.Directive{Text: ""},
		arm.Directive{Text: fmt.Sprintf(".global %s", fn.Name)},
		arm.Label{Name: fn.Name},
		arm.Inst("push", "{fp, lr}"),
		arm.Inst("mov", "fp", "sp"),
		arm.Inst("push", "{r0, r1, r2, r3}"),
	}

	body, err := lw.HandleStatement(fn.Body, scope)
	if err != nil {
		return nil, err
	}
	out = append(out, body...)

	out = append(out,
		arm.Inst("mov", "sp", "fp"),
		arm.Inst("mov", "r0", "#0"),
		arm.Inst("pop", "{fp, pc}"),
	)
	return out, nil
}

// ----------------------------------------------------------------------------
// Statements

// Emits the instructions a single statement lowers to. Blocks never introduce a new
// scope: 'scope' is shared, unmodified in identity, across every statement of the
// enclosing function (there is no block-local scope in this language).
func (lw *Lowerer) HandleStatement(stmt Statement, scope *FrameScope) ([]arm.Statement, error) {
	switch s := stmt.(type) {
	case Block:
		out := []arm.Statement{}
		for _, inner := range s.Statements {
			code, err := lw.HandleStatement(inner, scope)
			if err != nil {
				return nil, err
			}
			out = append(out, code...)
		}
		return out, nil

	case If:
		return lw.handleIf(s, scope)
	case While:
		return lw.handleWhile(s, scope)
	case For:
		return lw.handleFor(s, scope)

	case Var:
		code, err := lw.HandleExpression(s.Init, scope)
		if err != nil {
			return nil, err
		}
		code = append(code, arm.Inst("push", "{r0, ip}"))
		scope.DeclareLocal(s.Name)
		return code, nil

	case Assign:
		offset, ok := scope.Resolve(s.Name)
		if !ok {
			return nil, fmt.Errorf("assignment to undeclared variable %q", s.Name)
		}
		code, err := lw.HandleExpression(s.Value, scope)
		if err != nil {
			return nil, err
		}
		code = append(code, arm.Inst("str", "r0", fmt.Sprintf("[fp, #%d]", offset)))
		return code, nil

	case Return:
		code, err := lw.HandleExpression(s.Value, scope)
		if err != nil {
			return nil, err
		}
		code = append(code, arm.Inst("mov", "sp", "fp"), arm.Inst("pop", "{fp, pc}"))
		return code, nil

	case ExprStmt:
		return lw.HandleExpression(s.Expr, scope)

	case Func:
		return nil, fmt.Errorf("nested function declarations are not supported")

	default:
		return nil, fmt.Errorf("code generator: unhandled statement node %T", stmt)
	}
}

func (lw *Lowerer) handleIf(s If, scope *FrameScope) ([]arm.Statement, error) {
	falseLabel, endLabel := lw.newLabel(), lw.newLabel()

	cond, err := lw.HandleExpression(s.Cond, scope)
	if err != nil {
		return nil, err
	}
	thenCode, err := lw.HandleStatement(s.Then, scope)
	if err != nil {
		return nil, err
	}
	elseCode, err := lw.HandleStatement(s.Else, scope)
	if err != nil {
		return nil, err
	}

	out := append([]arm.Statement{}, cond...)
	out = append(out, arm.Inst("cmp", "r0", "#0"), arm.Inst("beq", falseLabel))
	out = append(out, thenCode...)
	out = append(out, arm.Inst("b", endLabel), arm.Label{Name: falseLabel})
	out = append(out, elseCode...)
	out = append(out, arm.Label{Name: endLabel})
	return out, nil
}

func (lw *Lowerer) handleWhile(s While, scope *FrameScope) ([]arm.Statement, error) {
	startLabel, endLabel := lw.newLabel(), lw.newLabel()

	cond, err := lw.HandleExpression(s.Cond, scope)
	if err != nil {
		return nil, err
	}
	body, err := lw.HandleStatement(s.Body, scope)
	if err != nil {
		return nil, err
	}

	out := []arm.Statement{arm.Label{Name: startLabel}}
	out = append(out, cond...)
	out = append(out, arm.Inst("cmp", "r0", "#0"), arm.Inst("beq", endLabel))
	out = append(out, body...)
	out = append(out, arm.Inst("b", startLabel), arm.Label{Name: endLabel})
	return out, nil
}

func (lw *Lowerer) handleFor(s For, scope *FrameScope) ([]arm.Statement, error) {
	startLabel, endLabel := lw.newLabel(), lw.newLabel()

	init, err := lw.HandleStatement(s.Init, scope)
	if err != nil {
		return nil, err
	}
	cond, err := lw.HandleStatement(s.Cond, scope)
	if err != nil {
		return nil, err
	}
	step, err := lw.HandleStatement(s.Step, scope)
	if err != nil {
		return nil, err
	}
	body, err := lw.HandleStatement(s.Body, scope)
	if err != nil {
		return nil, err
	}

	out := append([]arm.Statement{}, init...)
	out = append(out, arm.Label{Name: startLabel})
	out = append(out, cond...)
	out = append(out, arm.Inst("cmp", "r0", "#0"), arm.Inst("beq", endLabel))
	out = append(out, body...)
	out = append(out, step...)
	out = append(out, arm.Inst("b", startLabel), arm.Label{Name: endLabel})
	return out, nil
}

// ----------------------------------------------------------------------------
// Expressions

// Emits the instructions a single expression lowers to; by convention the result always
// ends up in r0.
func (lw *Lowerer) HandleExpression(expr Expression, scope *FrameScope) ([]arm.Statement, error) {
	switch e := expr.(type) {
	case Num:
		return []arm.Statement{arm.Inst("mov", "r0", fmt.Sprintf("#%d", e.Value))}, nil

	case BoolLit:
		if e.Value {
			return []arm.Statement{arm.Inst("mov", "r0", "#1")}, nil
		}
		return []arm.Statement{arm.Inst("mov", "r0", "#0")}, nil

	case UndefinedLit:
		return []arm.Statement{arm.Inst("mov", "r0", "#0")}, nil
	case NullLit:
		return []arm.Statement{arm.Inst("mov", "r0", "#0")}, nil

	case StringLiteral:
		return lw.genArray(stringCharLiterals(e.Text), scope)

	case ArrayLiteral:
		return lw.genArray(e.Elements, scope)

	case Id:
		offset, ok := scope.Resolve(e.Name)
		if !ok {
			return nil, fmt.Errorf("undeclared variable %q", e.Name)
		}
		return []arm.Statement{arm.Inst("ldr", "r0", fmt.Sprintf("[fp, #%d]", offset))}, nil

	case Not:
		code, err := lw.HandleExpression(e.Operand, scope)
		if err != nil {
			return nil, err
		}
		code = append(code, arm.Inst("cmp", "r0", "#0"), arm.Inst("moveq", "r0", "#1"), arm.Inst("movne", "r0", "#0"))
		return code, nil

	case Add:
		code, err := lw.evalLeftFirst(e.Left, e.Right, scope)
		if err != nil {
			return nil, err
		}
		return append(code, arm.Inst("add", "r0", "r0", "r1")), nil

	case Subtract:
		code, err := lw.evalRightFirst(e.Left, e.Right, scope)
		if err != nil {
			return nil, err
		}
		return append(code, arm.Inst("sub", "r0", "r0", "r1")), nil

	case Multiply:
		code, err := lw.evalRightFirst(e.Left, e.Right, scope)
		if err != nil {
			return nil, err
		}
		return append(code, arm.Inst("mul", "r0", "r0", "r1")), nil

	case Divide:
		code, err := lw.evalRightFirst(e.Left, e.Right, scope)
		if err != nil {
			return nil, err
		}
		return append(code, arm.Inst("udiv", "r0", "r0", "r1")), nil

	case Equal:
		code, err := lw.evalRightFirst(e.Left, e.Right, scope)
		if err != nil {
			return nil, err
		}
		code = append(code, arm.Inst("cmp", "r0", "r1"), arm.Inst("moveq", "r0", "#1"), arm.Inst("movne", "r0", "#0"))
		return code, nil

	case NotEqual:
		code, err := lw.evalRightFirst(e.Left, e.Right, scope)
		if err != nil {
			return nil, err
		}
		code = append(code, arm.Inst("cmp", "r0", "r1"), arm.Inst("movne", "r0", "#1"), arm.Inst("moveq", "r0", "#0"))
		return code, nil

	case ArrayLookup:
		return lw.genArrayLookup(e, scope)

	case Length:
		code, err := lw.HandleExpression(e.Array, scope)
		if err != nil {
			return nil, err
		}
		return append(code, arm.Inst("ldr", "r0", "[r0]")), nil

	case Call:
		return lw.genCall(e, scope)

	default:
		return nil, fmt.Errorf("code generator: unhandled expression node %T", expr)
	}
}

// Turns a string literal's characters into the Num-per-character-code elements its
// ArrayLiteral refinement requires (see spec's AST invariants).
func stringCharLiterals(text string) []Expression {
	chars := []rune(text)
	out := make([]Expression, len(chars))
	for i, r := range chars {
		out[i] = Num{Value: int32(r)}
	}
	return out
}

// Evaluates 'left' into r0, saves it across the evaluation of 'right' (also into r0),
// leaving r0 = right, r1 = left when it returns. Used by Add, whose "left-first" rule is
// harmless since addition is commutative.
func (lw *Lowerer) evalLeftFirst(left, right Expression, scope *FrameScope) ([]arm.Statement, error) {
	return lw.evalPushPop(left, right, scope)
}

// Evaluates 'right' into r0, saves it across the evaluation of 'left' (also into r0),
// leaving r0 = left, r1 = right when it returns. Used by every binary operator except
// Add, matching the "right-first-then-left" evaluation-order rule exactly.
func (lw *Lowerer) evalRightFirst(left, right Expression, scope *FrameScope) ([]arm.Statement, error) {
	return lw.evalPushPop(right, left, scope)
}

func (lw *Lowerer) evalPushPop(first, second Expression, scope *FrameScope) ([]arm.Statement, error) {
	firstCode, err := lw.HandleExpression(first, scope)
	if err != nil {
		return nil, err
	}
	secondCode, err := lw.HandleExpression(second, scope)
	if err != nil {
		return nil, err
	}

	out := append([]arm.Statement{}, firstCode...)
	out = append(out, arm.Inst("push", "{r0, ip}"))
	out = append(out, secondCode...)
	out = append(out, arm.Inst("pop", "{r1, ip}"))
	return out, nil
}

func (lw *Lowerer) genArray(elements []Expression, scope *FrameScope) ([]arm.Statement, error) {
	n := len(elements)
	out := []arm.Statement{
		arm.Inst("mov", "r0", fmt.Sprintf("#%d", 4*(n+1))),
		arm.Inst("bl", "malloc"),
		arm.Inst("push", "{r4}"),
		arm.Inst("mov", "r4", "r0"),
		arm.Inst("mov", "r0", fmt.Sprintf("#%d", n)),
		arm.Inst("str", "r0", "[r4]"),
	}

	for i, el := range elements {
		code, err := lw.HandleExpression(el, scope)
		if err != nil {
			return nil, err
		}
		out = append(out, code...)
		out = append(out, arm.Inst("str", "r0", fmt.Sprintf("[r4, #%d]", 4*(i+1))))
	}

	out = append(out, arm.Inst("mov", "r0", "r4"), arm.Inst("pop", "{r4}"))
	return out, nil
}

func (lw *Lowerer) genArrayLookup(e ArrayLookup, scope *FrameScope) ([]arm.Statement, error) {
	arrCode, err := lw.HandleExpression(e.Array, scope)
	if err != nil {
		return nil, err
	}
	idxCode, err := lw.HandleExpression(e.Index, scope)
	if err != nil {
		return nil, err
	}

	out := append([]arm.Statement{}, arrCode...)
	out = append(out, arm.Inst("push", "{r0}"))
	out = append(out, idxCode...)
	out = append(out, arm.Inst("pop", "{r1}"))
	out = append(out, arm.Inst("ldr", "r2", "[r1]"))
	out = append(out, arm.Inst("cmp", "r0", "r2"))
	out = append(out, arm.Inst("movhs", "r0", "#0")) // out of bounds: silently yields zero
	out = append(out, arm.Inst("addlo", "r1", "r1", "#4"))
	out = append(out, arm.Inst("lsllo", "r0", "r0", "#2"))
	out = append(out, arm.Inst("ldrlo", "r0", "[r1, r0]"))
	return out, nil
}

func (lw *Lowerer) genCall(call Call, scope *FrameScope) ([]arm.Statement, error) {
	n := len(call.Args)
	if n > 4 {
		return nil, fmt.Errorf("call to %q passes %d arguments, at most 4 are allowed", call.Callee, n)
	}

	switch {
	case n == 0:
		return []arm.Statement{arm.Inst("bl", call.Callee)}, nil

	case n == 1:
		code, err := lw.HandleExpression(call.Args[0], scope)
		if err != nil {
			return nil, err
		}
		return append(code, arm.Inst("bl", call.Callee)), nil

	default:
		out := []arm.Statement{arm.Inst("sub", "sp", "sp", "#16")}
		for i, arg := range call.Args {
			code, err := lw.HandleExpression(arg, scope)
			if err != nil {
				return nil, err
			}
			out = append(out, code...)
			out = append(out, arm.Inst("str", "r0", fmt.Sprintf("[sp, #%d]", 4*i)))
		}
		out = append(out, arm.Inst("pop", "{r0, r1, r2, r3}"), arm.Inst("bl", call.Callee))
		return out, nil
	}
}
