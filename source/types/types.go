package types

import (
	"fmt"

	"desmosc/source/token"
)

// ValType is a type as it can be written down by the user.
type ValType int

const (
	NumberVal ValType = iota
	ListVal
)

func (v ValType) String() string {
	if v == ListVal {
		return "List"
	}
	return "Number"
}

// Typ is the type of a value as the compiler sees it. MappedList is what a value becomes when a
// function expecting a number has been broadcast over a list: it can be used wherever a number
// can, but can't be passed where a list is required. Poison is the type of code which failed to
// parse, and is compatible with everything so that one syntax error doesn't cascade.
type Typ int

const (
	Num Typ = iota
	List
	MappedList
	Poison
)

func (t Typ) String() string {
	switch t {
	case Num:
		return "number"
	case List:
		return "list"
	case MappedList:
		return "mapped list"
	}
	return "error"
}

func FromValType(v ValType) Typ {
	if v == ListVal {
		return List
	}
	return Num
}

// Downcasts to a type the user could have written. This fails for a mapped list.
func (t Typ) ToValType() (ValType, bool) {
	switch t {
	case Num:
		return NumberVal, true
	case List:
		return ListVal, true
	}
	return NumberVal, false
}

// Returns the type to record for a value once it has been bound to a name. A mapped list is a
// list at runtime, so that's what it's stored as.
func (t Typ) Settle() ValType {
	if t == List || t == MappedList {
		return ListVal
	}
	return NumberVal
}

func (t Typ) IsNumWeak() bool {
	return t == Num || t == MappedList || t == Poison
}

func (t Typ) IsListWeak() bool {
	return t == List || t == MappedList || t == Poison
}

func (t Typ) IsNumStrict() bool {
	return t == Num
}

// Says whether a value of this type can be declared as v. A mapped list satisfies neither: it
// isn't a number, and a list annotation would hide the broadcast.
func (t Typ) Satisfies(v ValType) bool {
	if v == NumberVal {
		return t.IsNumStrict()
	}
	return t == List
}

// Says whether a value of type other can go where a value of type t is expected.
func (t Typ) EqWeak(other Typ) bool {
	if other == Poison || t == Poison {
		return true
	}
	switch t {
	case Num, MappedList:
		return other.IsNumWeak()
	case List:
		return other == List
	}
	return false
}

// The type of the result of a binary operation. Anything involving a list is a list.
func CombineTypes(left, right Typ) Typ {
	if left == Poison || right == Poison {
		return Poison
	}
	if left.IsListWeak() || right.IsListWeak() {
		return List
	}
	return Num
}

// A Typed is a type together with where it came from and what it covers.
type Typed struct {
	Span token.Span
	Typ  Typ
	Info TypInfo
}

// Finds the type and provenance of a binary operation. If one side is a list, the provenance is
// that of the list, because that's what a user will want pointing at when the result turns out
// to be a list.
func BinopExprs(left, right Typed) Typed {
	if left.Typ == Poison || right.Typ == Poison {
		return Typed{left.Span.Join(right.Span), Poison, BinOp{left.Span, right.Span}}
	}
	if left.Typ.IsListWeak() {
		return Typed{left.Span, List, left.Info}
	}
	if right.Typ.IsListWeak() {
		return Typed{right.Span, List, right.Info}
	}
	return Typed{left.Span.Join(right.Span), Num, BinOp{left.Span, right.Span}}
}

// Folds BinopExprs left to right over the list, returning false if it's empty.
func ReduceWithBinopExprs(typeds []Typed) (Typed, bool) {
	if len(typeds) == 0 {
		return Typed{}, false
	}
	result := typeds[0]
	for _, t := range typeds[1:] {
		result = BinopExprs(result, t)
	}
	return result, true
}

type FunctionArgs struct {
	Variadic bool
	Static   []ValType
}

func StaticArgs(args ...ValType) FunctionArgs {
	return FunctionArgs{Static: args}
}

var VariadicArgs = FunctionArgs{Variadic: true}

func (fa FunctionArgs) String() string {
	if fa.Variadic {
		return "(...)"
	}
	result := "("
	for i, v := range fa.Static {
		if i > 0 {
			result = result + ", "
		}
		result = result + v.String()
	}
	return result + ")"
}

// The signature of a function which is called rather than inlined. Once created it is never
// modified, and is shared by pointer between every call site and every clone of the context
// that defines it.
type FunctionSignature struct {
	Args    FunctionArgs
	Ret     ValType
	RetInfo TypInfo
	Name    string // The name under which the function is emitted.
}

func (fs *FunctionSignature) String() string {
	return fmt.Sprintf("%v: %v", fs.Args, fs.Ret)
}
