package types

import "desmosc/source/token"

// A TypInfo records why a value has the type it has, so that an error message can point at the
// thing responsible, e.g. the list that a function was broadcast over, without the compiler
// having to walk the tree again.
type TypInfo interface {
	Origin() token.Span
	Describe() string
}

type LiteralKind int

const (
	NumericLiteral LiteralKind = iota
	ListLiteral
	RangeLiteral
)

type Literal struct {
	Kind LiteralKind
	Span token.Span
}

func (ti Literal) Origin() token.Span { return ti.Span }

func (ti Literal) Describe() string {
	switch ti.Kind {
	case ListLiteral:
		return "a list literal"
	case RangeLiteral:
		return "a range"
	}
	return "a number"
}

type BinOp struct {
	Left  token.Span
	Right token.Span
}

func (ti BinOp) Origin() token.Span { return ti.Left.Join(ti.Right) }

func (ti BinOp) Describe() string {
	return "the result of an arithmetic operation"
}

type Map struct {
	Span token.Span
}

func (ti Map) Origin() token.Span { return ti.Span }

func (ti Map) Describe() string {
	return "explicitly mapped with '@'"
}

type Builtin struct {
	Span token.Span
	Func string
}

func (ti Builtin) Origin() token.Span { return ti.Span }

func (ti Builtin) Describe() string {
	return "returned by the builtin '" + ti.Func + "'"
}

type RawLatex struct {
	Span token.Span
}

func (ti RawLatex) Origin() token.Span { return ti.Span }

func (ti RawLatex) Describe() string {
	return "raw LaTeX declared with that type"
}

type InlineFuncArg struct {
	Span token.Span
}

func (ti InlineFuncArg) Origin() token.Span { return ti.Span }

func (ti InlineFuncArg) Describe() string {
	return "an argument passed to an inline function"
}

type Param struct {
	Span token.Span
	Name string
}

func (ti Param) Origin() token.Span { return ti.Span }

func (ti Param) Describe() string {
	return "the declared type of the parameter '" + ti.Name + "'"
}

type Call struct {
	CallSpan token.Span
	Ret      TypInfo
}

func (ti Call) Origin() token.Span { return ti.CallSpan }

func (ti Call) Describe() string {
	if ti.Ret == nil {
		return "returned by a function call"
	}
	return "returned by a function whose result is " + ti.Ret.Describe()
}

type MappedCall struct {
	CallSpan  token.Span
	Func      string
	MappedArg TypInfo
}

func (ti MappedCall) Origin() token.Span { return ti.CallSpan }

func (ti MappedCall) Describe() string {
	result := "a mapped list, made by calling '" + ti.Func + "' on a list"
	if ti.MappedArg != nil {
		result = result + " (" + ti.MappedArg.Describe() + ")"
	}
	return result
}

// Describes a provenance which may be absent.
func Describe(ti TypInfo) string {
	if ti == nil {
		return "of unknown origin"
	}
	return ti.Describe()
}
