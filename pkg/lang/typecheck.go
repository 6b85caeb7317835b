package lang

import (
	"fmt"

	"arm-compiler/pkg/utils"
)

// ----------------------------------------------------------------------------
// General information

// The type checker walks the tree exactly once, threading three pieces of state: the
// current function's local variable -> type map, the program-global function name ->
// signature map, and the enclosing function's declared return type (nil at top level).
//
// Grounded on the teacher's 'jack.TypeChecker' dispatch shape (HandleClass /
// HandleSubroutine / HandleStatement), left in the teacher as "not implemented yet"
// stubs; this is the completed version of that same skeleton, generalized from Jack's
// class/field/method scoping down to this language's flat function/variable scoping
// (there is no block scope, see spec's design notes — a Block shares its enclosing
// function's locals instead of pushing a new environment).
//
// Function signatures are registered in two passes (Check pre-registers every top-level
// Func before checking any body) so that a call to a function declared later in the
// program resolves. Ordinary recursion resolves either way, since checkFunc registers a
// function's signature before checking its body.
type Checker struct {
	locals        map[string]Type
	functions     map[string]Type // always FunctionKind
	currentReturn *Type           // nil outside any function body
}

// Builds a checker with empty locals, seeded with the signatures of the C library
// functions this compiler assumes exist at link time (see externalSignatures).
func NewChecker() *Checker {
	return &Checker{locals: map[string]Type{}, functions: externalSignatures()}
}

// The runtime linkage spec assumes without a declaration syntax: every array literal
// lowers to a call to 'malloc', and user code is free to call 'putchar' straight
// through to the system C library. Neither is declared anywhere in source, so the
// checker pre-registers both signatures itself; any other undeclared callee still
// fails to check (see checkCall).
func externalSignatures() map[string]Type {
	putcharParams := utils.NewOrderedMap[string, Type]()
	putcharParams.Set("c", Number)

	mallocParams := utils.NewOrderedMap[string, Type]()
	mallocParams.Set("size", Number)

	return map[string]Type{
		"putchar": FunctionOf(putcharParams, Void),
		"malloc":  FunctionOf(mallocParams, Number),
	}
}

// Type-checks every top-level statement of 'program', pre-registering function
// signatures before checking any body.
func (c *Checker) Check(program Program) error {
	for _, stmt := range program.Statements {
		if fn, ok := stmt.(Func); ok {
			c.functions[fn.Name] = signatureOf(fn)
		}
	}

	for _, stmt := range program.Statements {
		if _, err := c.CheckStatement(stmt); err != nil {
			return err
		}
	}

	return nil
}

func signatureOf(fn Func) Type {
	params := utils.NewOrderedMap[string, Type]()
	for _, p := range fn.Params {
		params.Set(p.Name, p.Type)
	}
	return FunctionOf(params, fn.Return)
}

// ----------------------------------------------------------------------------
// Statements

// Type-checks a single statement, always producing 'Void' per spec. Dispatches on the
// concrete node type, mirroring the teacher's HandleStatement type switch.
func (c *Checker) CheckStatement(stmt Statement) (Type, error) {
	switch s := stmt.(type) {
	case Block:
		for _, inner := range s.Statements {
			if _, err := c.CheckStatement(inner); err != nil {
				return Void, err
			}
		}
		return Void, nil

	case If:
		if _, err := c.CheckExpression(s.Cond); err != nil {
			return Void, err
		}
		if _, err := c.CheckStatement(s.Then); err != nil {
			return Void, err
		}
		if _, err := c.CheckStatement(s.Else); err != nil {
			return Void, err
		}
		return Void, nil

	case While:
		if _, err := c.CheckExpression(s.Cond); err != nil {
			return Void, err
		}
		return c.CheckStatement(s.Body)

	case For:
		if _, err := c.CheckStatement(s.Init); err != nil {
			return Void, err
		}
		if _, err := c.CheckStatement(s.Cond); err != nil {
			return Void, err
		}
		if _, err := c.CheckStatement(s.Step); err != nil {
			return Void, err
		}
		return c.CheckStatement(s.Body)

	case Var:
		t, err := c.CheckExpression(s.Init)
		if err != nil {
			return Void, err
		}
		if s.Annotation != nil && !s.Annotation.Equals(t) {
			return Void, fmt.Errorf("variable %q annotated %s but initialized with %s", s.Name, *s.Annotation, t)
		}
		c.locals[s.Name] = t // shadowing an existing local silently overwrites
		return Void, nil

	case Assign:
		bound, ok := c.locals[s.Name]
		if !ok {
			return Void, fmt.Errorf("assignment to undeclared variable %q", s.Name)
		}
		t, err := c.CheckExpression(s.Value)
		if err != nil {
			return Void, err
		}
		if !bound.Equals(t) {
			return Void, fmt.Errorf("cannot assign %s to %q of type %s", t, s.Name, bound)
		}
		return Void, nil

	case Return:
		if c.currentReturn == nil {
			return Void, fmt.Errorf("return statement outside of any function")
		}
		t, err := c.CheckExpression(s.Value)
		if err != nil {
			return Void, err
		}
		if !t.Equals(*c.currentReturn) {
			return Void, fmt.Errorf("return type mismatch: expected %s, got %s", *c.currentReturn, t)
		}
		return Void, nil

	case ExprStmt:
		_, err := c.CheckExpression(s.Expr)
		return Void, err

	case Func:
		return Void, c.checkFunc(s)

	default:
		return Void, fmt.Errorf("type checker: unhandled statement node %T", stmt)
	}
}

// Checks a function declaration: registers its signature (overwriting the identical one
// Check pre-registered, if any), then checks the body in a fresh locals map seeded from the parameters, with
// the return type set to the signature's declared return.
func (c *Checker) checkFunc(fn Func) error {
	if len(fn.Params) > 4 {
		return fmt.Errorf("function %q declares %d parameters, at most 4 are allowed", fn.Name, len(fn.Params))
	}

	sig := signatureOf(fn)
	c.functions[fn.Name] = sig

	saved, savedReturn := c.locals, c.currentReturn
	c.locals = map[string]Type{}
	for _, p := range fn.Params {
		c.locals[p.Name] = p.Type
	}
	ret := fn.Return
	c.currentReturn = &ret

	_, err := c.CheckStatement(fn.Body)

	c.locals, c.currentReturn = saved, savedReturn
	return err
}

// ----------------------------------------------------------------------------
// Expressions

// Type-checks an expression, producing the type it evaluates to.
func (c *Checker) CheckExpression(expr Expression) (Type, error) {
	switch e := expr.(type) {
	case Num:
		return Number, nil
	case BoolLit:
		return Bool, nil
	case UndefinedLit, NullLit:
		return Void, nil
	case StringLiteral:
		return ArrayOf(Number), nil

	case Id:
		t, ok := c.locals[e.Name]
		if !ok {
			return Void, fmt.Errorf("undeclared variable %q", e.Name)
		}
		return t, nil

	case Not:
		t, err := c.CheckExpression(e.Operand)
		if err != nil {
			return Void, err
		}
		if !t.Equals(Bool) {
			return Void, fmt.Errorf("'!' requires a Bool operand, got %s", t)
		}
		return Bool, nil

	case Equal:
		return c.checkEquality(e.Left, e.Right)
	case NotEqual:
		return c.checkEquality(e.Left, e.Right)

	case Add:
		return c.checkArithmetic(e.Left, e.Right)
	case Subtract:
		return c.checkArithmetic(e.Left, e.Right)
	case Multiply:
		return c.checkArithmetic(e.Left, e.Right)
	case Divide:
		return c.checkArithmetic(e.Left, e.Right)

	case Call:
		return c.checkCall(e)

	case ArrayLiteral:
		return c.checkArrayLiteral(e)

	case ArrayLookup:
		return c.checkArrayLookup(e)

	case Length:
		t, err := c.CheckExpression(e.Array)
		if err != nil {
			return Void, err
		}
		if t.Kind != ArrayKind {
			return Void, fmt.Errorf("length() requires an array, got %s", t)
		}
		return Number, nil

	default:
		return Void, fmt.Errorf("type checker: unhandled expression node %T", expr)
	}
}

func (c *Checker) checkEquality(lhs, rhs Expression) (Type, error) {
	lt, err := c.CheckExpression(lhs)
	if err != nil {
		return Void, err
	}
	rt, err := c.CheckExpression(rhs)
	if err != nil {
		return Void, err
	}
	if !lt.Equals(rt) {
		return Void, fmt.Errorf("comparison between mismatched types %s and %s", lt, rt)
	}
	return Bool, nil
}

func (c *Checker) checkArithmetic(lhs, rhs Expression) (Type, error) {
	lt, err := c.CheckExpression(lhs)
	if err != nil {
		return Void, err
	}
	rt, err := c.CheckExpression(rhs)
	if err != nil {
		return Void, err
	}
	if !lt.Equals(Number) || !rt.Equals(Number) {
		return Void, fmt.Errorf("arithmetic requires Number operands, got %s and %s", lt, rt)
	}
	return Number, nil
}

// Function types are only kind-equal to each other (see Type.Equals); the real
// structural per-parameter check happens here, at the call site, by comparing each
// argument's type against the declared parameter at the same position (parameter names
// play no part).
func (c *Checker) checkCall(call Call) (Type, error) {
	sig, ok := c.functions[call.Callee]
	if !ok {
		return Void, fmt.Errorf("call to undeclared function %q", call.Callee)
	}
	if len(call.Args) > 4 {
		return Void, fmt.Errorf("call to %q passes %d arguments, at most 4 are allowed", call.Callee, len(call.Args))
	}
	if len(call.Args) != sig.Params.Size() {
		return Void, fmt.Errorf("call to %q passes %d arguments, expected %d", call.Callee, len(call.Args), sig.Params.Size())
	}

	expected := sig.Params.Entries()
	for i, arg := range call.Args {
		at, err := c.CheckExpression(arg)
		if err != nil {
			return Void, err
		}
		if !at.Equals(expected[i].Value) {
			return Void, fmt.Errorf("argument %d to %q: expected %s, got %s", i, call.Callee, expected[i].Value, at)
		}
	}

	return *sig.Return, nil
}

func (c *Checker) checkArrayLiteral(lit ArrayLiteral) (Type, error) {
	if len(lit.Elements) == 0 {
		return Void, fmt.Errorf("cannot infer element type of an empty array literal")
	}

	first, err := c.CheckExpression(lit.Elements[0])
	if err != nil {
		return Void, err
	}

	for _, el := range lit.Elements[1:] {
		t, err := c.CheckExpression(el)
		if err != nil {
			return Void, err
		}
		if !t.Equals(first) {
			return Void, fmt.Errorf("array literal mixes element types %s and %s", first, t)
		}
	}

	return ArrayOf(first), nil
}

func (c *Checker) checkArrayLookup(lookup ArrayLookup) (Type, error) {
	idxType, err := c.CheckExpression(lookup.Index)
	if err != nil {
		return Void, err
	}
	if !idxType.Equals(Number) {
		return Void, fmt.Errorf("array index must be a Number, got %s", idxType)
	}

	arrType, err := c.CheckExpression(lookup.Array)
	if err != nil {
		return Void, err
	}

	switch arrType.Kind {
	case ArrayKind:
		return *arrType.Elem, nil
	case StringKind:
		return Number, nil
	default:
		return Void, fmt.Errorf("cannot index into %s", arrType)
	}
}
