package compiler

import (
	"sort"

	"desmosc/source/types"
)

// The functions the graphing calculator supplies. A user definition of the same name takes
// precedence over any of these. Logarithms to a given base, e.g. 'log_2', are recognized by the
// lexer and use the signature of 'log'.

var BUILTINS = map[string]*types.FunctionSignature{
	// Trigonometry
	"sin":    n(),
	"cos":    n(),
	"tan":    n(),
	"csc":    n(),
	"sec":    n(),
	"cot":    n(),
	"arcsin": n(),
	"arccos": n(),
	"arctan": n(),
	"arccsc": n(),
	"arcsec": n(),
	"arccot": n(),
	"sinh":   n(),
	"cosh":   n(),
	"tanh":   n(),
	"csch":   n(),
	"sech":   n(),
	"coth":   n(),

	// Statistics
	"total":    l(),
	"min":      l(),
	"max":      l(),
	"length":   l(),
	"mean":     l(),
	"median":   l(),
	"stdev":    l(),
	"stdevp":   l(),
	"mad":      l(),
	"var":      l(),
	"cov":      ll(),
	"corr":     ll(),
	"quantile": sig(types.StaticArgs(types.ListVal, types.NumberVal), types.NumberVal),
	"nCr":      nn(),
	"nPr":      nn(),

	// Miscellaneous
	"join":    sig(types.StaticArgs(types.ListVal, types.ListVal), types.ListVal),
	"sort":    sig(types.StaticArgs(types.ListVal), types.ListVal),
	"shuffle": sig(types.StaticArgs(types.ListVal), types.ListVal),
	"lcm":     sig(types.VariadicArgs, types.NumberVal),
	"gcd":     sig(types.VariadicArgs, types.NumberVal),
	"mod":     nn(),
	"floor":   n(),
	"ceil":    n(),
	"round":   n(),
	"abs":     n(),
	"sign":    n(),
	"exp":     n(),
	"ln":      n(),
	"log":     n(),
	"sqrt":    n(),
	"nthroot": nn(),
}

func sig(args types.FunctionArgs, ret types.ValType) *types.FunctionSignature {
	return &types.FunctionSignature{Args: args, Ret: ret}
}

func n() *types.FunctionSignature {
	return sig(types.StaticArgs(types.NumberVal), types.NumberVal)
}

func nn() *types.FunctionSignature {
	return sig(types.StaticArgs(types.NumberVal, types.NumberVal), types.NumberVal)
}

func l() *types.FunctionSignature {
	return sig(types.StaticArgs(types.ListVal), types.NumberVal)
}

func ll() *types.FunctionSignature {
	return sig(types.StaticArgs(types.ListVal, types.ListVal), types.NumberVal)
}

func init() {
	for name, sig := range BUILTINS {
		sig.Name = name
	}
}

// Returns the names of the builtins in alphabetical order.
func BuiltinNames() []string {
	result := make([]string, 0, len(BUILTINS))
	for name := range BUILTINS {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}
