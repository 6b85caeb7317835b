package lang

import (
	"fmt"

	"arm-compiler/pkg/utils"
)

// ----------------------------------------------------------------------------
// General information

// This section contains the semantic type system shared by the type checker and the
// code generator. Types are a closed, tagged set: a 'Kind' discriminator plus whichever
// of 'Elem'/'Params'/'Return' that kind actually uses. Two scalar kinds are equal when
// their 'Kind' matches; two arrays are equal when their element types are (recursively)
// equal; two function types are considered equal kind-to-kind only, the real
// parameter-by-parameter check happens at call sites (see 'typecheck.go').

type Kind string // Enum to manage the different kind of type allowed in the language

const (
	NumberKind   Kind = "number"
	BoolKind     Kind = "bool"
	VoidKind     Kind = "void"
	StringKind   Kind = "string"
	ArrayKind    Kind = "array"
	FunctionKind Kind = "function"
)

// In-memory representation of a semantic type.
//
// Only the field(s) relevant to 'Kind' are meaningful: 'Elem' for ArrayKind,
// 'Params'/'Return' for FunctionKind. Every other kind is fully described by 'Kind' alone.
type Type struct {
	Kind   Kind
	Elem   *Type                          // Element type, only set when Kind == ArrayKind
	Params utils.OrderedMap[string, Type] // Ordered parameter name -> Type, only set when Kind == FunctionKind
	Return *Type                          // Declared return type, only set when Kind == FunctionKind
}

var (
	Number = Type{Kind: NumberKind}
	Bool   = Type{Kind: BoolKind}
	Void   = Type{Kind: VoidKind}
	String = Type{Kind: StringKind}
)

// Builds the semantic type 'Array<elem>'.
func ArrayOf(elem Type) Type {
	e := elem
	return Type{Kind: ArrayKind, Elem: &e}
}

// Builds the semantic type of a function taking 'params' (in declaration order) and
// returning 'ret'.
func FunctionOf(params utils.OrderedMap[string, Type], ret Type) Type {
	r := ret
	return Type{Kind: FunctionKind, Params: params, Return: &r}
}

// Structural-for-arrays, nominal-for-everything-else equality, as required by the
// "two function types are equal if both are function types" kind-only rule. The real
// per-parameter check for call sites is done argument by argument in 'checkCall'; a
// whole-signature comparison is available as 'StructurallyEquals'.
func (t Type) Equals(other Type) bool {
	if t.Kind != other.Kind {
		return false
	}
	if t.Kind == ArrayKind {
		return t.Elem.Equals(*other.Elem)
	}
	return true
}

// Performs the real, parameter-by-parameter structural check two function types need at
// a call site: same arity, same types in declaration order (names are irrelevant), and
// equal return types. If either operand is not FunctionKind, this is plain 'Equals'.
func (t Type) StructurallyEquals(other Type) bool {
	if t.Kind != FunctionKind || other.Kind != FunctionKind {
		return t.Equals(other)
	}
	if t.Params.Size() != other.Params.Size() {
		return false
	}

	lhs, rhs := t.Params.Entries(), other.Params.Entries()
	for i := range lhs {
		if !lhs[i].Value.Equals(rhs[i].Value) {
			return false
		}
	}

	return t.Return.Equals(*other.Return)
}

// Renders a type for error messages, e.g. "Array<number>" or "Function".
func (t Type) String() string {
	switch t.Kind {
	case ArrayKind:
		return fmt.Sprintf("Array<%s>", t.Elem.String())
	case FunctionKind:
		return "Function"
	default:
		return string(t.Kind)
	}
}
