package lang

import (
	"fmt"
	"regexp"
	"strconv"

	"arm-compiler/pkg/parsec"
)

// ----------------------------------------------------------------------------
// General information

// This section builds the concrete grammar on top of pkg/parsec, laid out the same way
// the teacher's own 'pkg/jack/parsing.go' lays out 'pClass'/'pMethod'/'pExpr': a handful
// of package-level 'var' blocks, built bottom-up (highest precedence, or narrowest rule,
// declared first, up to the widest rule last), terminals declared alongside the rules
// that use them. 'expression', 'statement' and
// 'type' are mutually recursive, so each gets a 'parsec.ForwardRef' patched once all the
// rules that depend on it have been built.

// ----------------------------------------------------------------------------
// Local combinator sugar

// Builds a small helper type used to fold a left-associative binary operator level.
type opPair struct {
	op    string
	right Expression
}

// Runs each parser in order, collecting their values into a slice. Implemented purely in
// terms of 'Bind'/'Map'/'Constant', the same way the spec's own 'and' combinator would be
// generalized to more than two operands.
func seq(parsers ...parsec.Parser) parsec.Parser {
	if len(parsers) == 0 {
		return parsec.Constant([]interface{}{})
	}
	head, tail := parsers[0], parsers[1:]
	return head.Bind(func(v interface{}) parsec.Parser {
		return seq(tail...).Map(func(rest interface{}) interface{} {
			return append([]interface{}{v}, rest.([]interface{})...)
		})
	})
}

// Builds the "(p ("," p)*)?" shape shared by 'args' and 'parameters', yielding a
// (possibly empty) []interface{} of whatever 'p' produces.
func commaSep(p parsec.Parser) parsec.Parser {
	rest := parsec.ZeroOrMore(comma.Bind(func(interface{}) parsec.Parser { return p }))
	nonEmpty := p.Bind(func(first interface{}) parsec.Parser {
		return rest.Map(func(more interface{}) interface{} {
			return append([]interface{}{first}, more.([]interface{})...)
		})
	})
	return parsec.Maybe(nonEmpty).Map(func(v interface{}) interface{} {
		if v == nil {
			return []interface{}{}
		}
		return v
	})
}

// Folds a left-associative binary operator level: 'operand (operator operand)*'.
func binaryLevel(operand, operator parsec.Parser, build func(op string, left, right Expression) Expression) parsec.Parser {
	rest := parsec.ZeroOrMore(operator.Bind(func(opVal interface{}) parsec.Parser {
		return operand.Map(func(r interface{}) interface{} {
			return opPair{op: opVal.(string), right: r.(Expression)}
		})
	}))

	return operand.Bind(func(first interface{}) parsec.Parser {
		return rest.Map(func(tailVal interface{}) interface{} {
			left := first.(Expression)
			for _, item := range tailVal.([]interface{}) {
				pair := item.(opPair)
				left = build(pair.op, left, pair.right)
			}
			return left
		})
	})
}

// ----------------------------------------------------------------------------
// Ignored input and token helper

var ignored = parsec.ZeroOrMore(
	parsec.Regexp(`\s+`).
		Or(parsec.Regexp(`//[^\n]*`)).
		Or(parsec.Regexp(`/\*[\s\S]*?\*/`)),
)

// Matches 'pattern' anchored at the cursor, then swallows trailing ignored input,
// keeping the matched value. Every terminal in the grammar below goes through this.
func token(pattern string) parsec.Parser {
	return parsec.Regexp(pattern).Bind(func(v interface{}) parsec.Parser {
		return ignored.Map(func(interface{}) interface{} { return v })
	})
}

func keyword(word string) parsec.Parser { return token(word + `\b`) }
func punct(lit string) parsec.Parser    { return token(regexp.QuoteMeta(lit)) }

// ----------------------------------------------------------------------------
// Lexical terminals

var (
	kwFunction, kwIf, kwElse = keyword("function"), keyword("if"), keyword("else")
	kwReturn, kwVar          = keyword("return"), keyword("var")
	kwWhile, kwFor           = keyword("while"), keyword("for")
	kwTrue, kwFalse          = keyword("true"), keyword("false")
	kwUndefined, kwNull      = keyword("undefined"), keyword("null")
	kwArray, kwVoid          = keyword("array"), keyword("void")
	kwBool, kwNumber, kwStr  = keyword("bool"), keyword("number"), keyword("string")

	comma, semi           = punct(","), punct(";")
	lparen, rparen        = punct("("), punct(")")
	lbrace, rbrace        = punct("{"), punct("}")
	lbracket, rbracket    = punct("["), punct("]")
	langle, rangle        = punct("<"), punct(">")
	colon                 = punct(":")
	bang, assign          = punct("!"), punct("=")
	opEqEq, opNotEq       = punct("=="), punct("!=")
	opPlus, opMinus       = punct("+"), punct("-")
	opStar, opSlash       = punct("*"), punct("/")

	identifier = token(`[A-Za-z_][A-Za-z0-9_]*`)
	intLiteral = token(`[0-9]+`)

	rawQuote      = parsec.Regexp(`"`)
	rawStringBody = parsec.Regexp(`[A-Za-z0-9 ]*`)
)

// ----------------------------------------------------------------------------
// Types

var typeRef = parsec.NewForwardRef("type")

// The placeholder rule, used by every rule below before 'typeRef' is patched at the
// bottom of this section.
var typeExpr = typeRef.Ref()

var (
	voidType   = kwVoid.Map(func(interface{}) interface{} { return Void })
	boolType   = kwBool.Map(func(interface{}) interface{} { return Bool })
	numberType = kwNumber.Map(func(interface{}) interface{} { return Number })
	stringType = kwStr.Map(func(interface{}) interface{} { return String })

	arrayType = seq(kwArray, langle, typeExpr, rangle).Map(func(v interface{}) interface{} {
		parts := v.([]interface{})
		return ArrayOf(parts[2].(Type))
	})

	typeParser = voidType.Or(boolType).Or(numberType).Or(stringType).Or(arrayType)
)

func init() { typeRef.Patch(typeParser) }

// optTypeAnn ← (":" type)?, defaulting to Number when absent.
var optTypeAnn = parsec.Maybe(seq(colon, typeExpr).Map(func(v interface{}) interface{} {
	return v.([]interface{})[1]
})).Map(func(v interface{}) interface{} {
	if v == nil {
		return Number
	}
	return v.(Type)
})

// ----------------------------------------------------------------------------
// Expression grammar

var exprRef = parsec.NewForwardRef("expression")
var expr = exprRef.Ref()

var (
	stmtRef = parsec.NewForwardRef("statement")
	stmt    = stmtRef.Ref()
)

var args = commaSep(expr)

var (
	boolLit      = kwTrue.Map(func(interface{}) interface{} { return Expression(BoolLit{Value: true}) }).
			Or(kwFalse.Map(func(interface{}) interface{} { return Expression(BoolLit{Value: false}) }))
	undefinedLit = kwUndefined.Map(func(interface{}) interface{} { return Expression(UndefinedLit{}) })
	nullLit      = kwNull.Map(func(interface{}) interface{} { return Expression(NullLit{}) })
	idAsId       = identifier.Map(func(v interface{}) interface{} { return Expression(Id{Name: v.(string)}) })
	numberLit    = intLiteral.Map(func(v interface{}) interface{} {
		n, err := strconv.ParseInt(v.(string), 10, 32)
		if err != nil {
			panic(fmt.Sprintf("lang: malformed integer literal %q slipped past the lexer", v))
		}
		return Expression(Num{Value: int32(n)})
	})

	scalar = boolLit.Or(undefinedLit).Or(nullLit).Or(idAsId).Or(numberLit)

	// 'length' is the one intrinsic the grammar recognizes by name: "length(a)" parses
	// like any other call, but yields the dedicated Length node spec's type checker and
	// code generator both special-case, rather than a Call to an undefined callee.
	call = seq(identifier, lparen, args, rparen).Map(func(v interface{}) interface{} {
		parts := v.([]interface{})
		callee, callArgs := parts[0].(string), toExprSlice(parts[2])

		if callee == "length" && len(callArgs) == 1 {
			return Expression(Length{Array: callArgs[0]})
		}
		return Expression(Call{Callee: callee, Args: callArgs})
	})

	arrayLit = seq(lbracket, args, rbracket).Map(func(v interface{}) interface{} {
		parts := v.([]interface{})
		return Expression(ArrayLiteral{Elements: toExprSlice(parts[1])})
	})

	stringLit = seq(rawQuote, rawStringBody, rawQuote).Bind(func(v interface{}) parsec.Parser {
		body := v.([]interface{})[1].(string)
		return ignored.Map(func(interface{}) interface{} { return Expression(StringLiteral{Text: body}) })
	})

	arrayLookupExpr = seq(identifier, lbracket, expr, rbracket).Map(func(v interface{}) interface{} {
		parts := v.([]interface{})
		return Expression(ArrayLookup{Array: Id{Name: parts[0].(string)}, Index: parts[2].(Expression)})
	})

	parenExpr = seq(lparen, expr, rparen).Map(func(v interface{}) interface{} {
		return v.([]interface{})[1]
	})

	// Ambiguity between call, arrayLookup and a bare Id is resolved by this exact order.
	atom = call.Or(arrayLit).Or(stringLit).Or(arrayLookupExpr).Or(scalar).Or(parenExpr)

	unary = parsec.Maybe(bang).Bind(func(bangVal interface{}) parsec.Parser {
		return atom.Map(func(a interface{}) interface{} {
			if bangVal != nil {
				return Expression(Not{Operand: a.(Expression)})
			}
			return a
		})
	})

	mulDivOp = opStar.Or(opSlash)
	product  = binaryLevel(unary, mulDivOp, func(op string, l, r Expression) Expression {
		if op == "*" {
			return Multiply{Left: l, Right: r}
		}
		return Divide{Left: l, Right: r}
	})

	plusMinusOp = opPlus.Or(opMinus)
	sum         = binaryLevel(product, plusMinusOp, func(op string, l, r Expression) Expression {
		if op == "+" {
			return Add{Left: l, Right: r}
		}
		return Subtract{Left: l, Right: r}
	})

	eqNeqOp    = opEqEq.Or(opNotEq)
	comparison = binaryLevel(sum, eqNeqOp, func(op string, l, r Expression) Expression {
		if op == "==" {
			return Equal{Left: l, Right: r}
		}
		return NotEqual{Left: l, Right: r}
	})

	expression = comparison
)

func init() { exprRef.Patch(expression) }

func toExprSlice(v interface{}) []Expression {
	raw := v.([]interface{})
	out := make([]Expression, len(raw))
	for i, e := range raw {
		out[i] = e.(Expression)
	}
	return out
}

// ----------------------------------------------------------------------------
// Statement grammar

var (
	returnStmt = seq(kwReturn, expr, semi).Map(func(v interface{}) interface{} {
		return Statement(Return{Value: v.([]interface{})[1].(Expression)})
	})

	parameter = seq(identifier, optTypeAnn).Map(func(v interface{}) interface{} {
		parts := v.([]interface{})
		return Param{Name: parts[0].(string), Type: parts[1].(Type)}
	})
	parameters = commaSep(parameter)

	blockStmt = seq(lbrace, parsec.ZeroOrMore(stmt), rbrace).Map(func(v interface{}) interface{} {
		parts := v.([]interface{})
		raw := parts[1].([]interface{})
		stmts := make([]Statement, len(raw))
		for i, s := range raw {
			stmts[i] = s.(Statement)
		}
		return Statement(Block{Statements: stmts})
	})

	funcStmt = seq(kwFunction, identifier, lparen, parameters, rparen, optTypeAnn, blockStmt).Map(func(v interface{}) interface{} {
		parts := v.([]interface{})

		rawParams := parts[3].([]interface{})
		params := make([]Param, len(rawParams))
		for i, p := range rawParams {
			params[i] = p.(Param)
		}

		return Statement(Func{
			Name:   parts[1].(string),
			Params: params,
			Return: parts[5].(Type),
			Body:   parts[6].(Statement),
		})
	})

	ifStmt = seq(kwIf, lparen, expr, rparen, stmt, kwElse, stmt).Map(func(v interface{}) interface{} {
		parts := v.([]interface{})
		return Statement(If{Cond: parts[2].(Expression), Then: parts[4].(Statement), Else: parts[6].(Statement)})
	})

	whileStmt = seq(kwWhile, lparen, expr, rparen, stmt).Map(func(v interface{}) interface{} {
		parts := v.([]interface{})
		return Statement(While{Cond: parts[2].(Expression), Body: parts[4].(Statement)})
	})

	forStmt = seq(kwFor, lparen, stmt, stmt, stmt, rparen, stmt).Map(func(v interface{}) interface{} {
		parts := v.([]interface{})
		return Statement(For{
			Init: parts[2].(Statement), Cond: parts[3].(Statement),
			Step: parts[4].(Statement), Body: parts[6].(Statement),
		})
	})

	// spec's own EBNF gives varStmt no type annotation, which leaves no way to parse
	// scenario S5's "var x: bool = true;"; a bare ":" type is accepted here the same
	// way 'parameter' accepts one, see DESIGN.md.
	varAnnotation = parsec.Maybe(seq(colon, typeExpr).Map(func(v interface{}) interface{} {
		return v.([]interface{})[1]
	}))

	varStmt = seq(kwVar, identifier, varAnnotation, assign, expr, semi).Map(func(v interface{}) interface{} {
		parts := v.([]interface{})

		var annotation *Type
		if parts[2] != nil {
			t := parts[2].(Type)
			annotation = &t
		}

		return Statement(Var{Name: parts[1].(string), Annotation: annotation, Init: parts[4].(Expression)})
	})

	assignStmt = seq(identifier, assign, expr, semi).Map(func(v interface{}) interface{} {
		parts := v.([]interface{})
		return Statement(Assign{Name: parts[0].(string), Value: parts[2].(Expression)})
	})

	exprStmt = seq(expr, semi).Map(func(v interface{}) interface{} {
		return Statement(ExprStmt{Expr: v.([]interface{})[0].(Expression)})
	})

	statement = returnStmt.Or(funcStmt).Or(ifStmt).Or(whileStmt).Or(forStmt).
			Or(varStmt).Or(assignStmt).Or(blockStmt).Or(exprStmt)
)

func init() { stmtRef.Patch(statement) }

// program ← ignored statement*
var program = ignored.And(parsec.ZeroOrMore(stmt)).Map(func(v interface{}) interface{} {
	raw := v.([]interface{})
	stmts := make([]Statement, len(raw))
	for i, s := range raw {
		stmts[i] = s.(Statement)
	}
	return Program{Statements: stmts}
})

// Parses 'source' in full, returning the top-level Program or a parse error carrying the
// furthest cursor offset reached (see pkg/parsec.Parse).
func Parse(source string) (Program, error) {
	v, err := parsec.Parse(program, source)
	if err != nil {
		return Program{}, err
	}
	return v.(Program), nil
}
