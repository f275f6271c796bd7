package compiler

import (
	"strings"

	"desmosc/source/ast"
	"desmosc/source/err"
	"desmosc/source/latex"
	"desmosc/source/types"
)

// What a function name at a call site turns out to mean.
type ResolvedFunction interface {
	resolvedFunction()
}

// A Normal function is emitted once and called by name.
type Normal struct {
	Signature *types.FunctionSignature
	IsBuiltin bool
}

// An Inline function has its body substituted at the call site.
type Inline struct {
	Function *InlineFunction
}

func (Normal) resolvedFunction() {}
func (Inline) resolvedFunction() {}

// Finds the function a call refers to. User definitions shadow builtins; a qualified call looks
// only at the user definitions of the module it names.
func (c *Context) resolveFunction(call *ast.CallExpression) (ResolvedFunction, *err.Error) {
	if call.Func.IsLog {
		return Normal{Signature: BUILTINS["log"], IsBuiltin: true}, nil
	}
	name := call.Func.Name
	if len(call.Path) > 0 {
		module, e := c.resolveModule(call.Path, call)
		if e != nil {
			return nil, e
		}
		if fn, ok := module.lookupUserFunction(name); ok {
			return fn, nil
		}
		return nil, err.CreateErr(err.UNKNOWN_FUNCTION, call.Span, strings.Join(call.Path, ".")+"."+name)
	}
	if fn, ok := c.lookupUserFunction(name); ok {
		return fn, nil
	}
	if sig, ok := BUILTINS[name]; ok {
		return Normal{Signature: sig, IsBuiltin: true}, nil
	}
	return nil, err.CreateErr(err.UNKNOWN_FUNCTION, call.Span, name)
}

// Modules nest only one level deep.
func (c *Context) resolveModule(path []string, node ast.Node) (*Context, *err.Error) {
	if len(path) > 1 {
		return nil, err.CreateErr(err.INVALID_MODULE_PATH, node.GetSpan(), node.String())
	}
	module, ok := c.lookupModule(path[0])
	if !ok {
		return nil, err.CreateErr(err.UNKNOWN_MODULE, node.GetSpan(), path[0])
	}
	return module, nil
}

func (c *Context) lowerCall(call *ast.CallExpression) (latex.Latex, types.Typed, *err.Error) {
	args := make([]latex.Latex, len(call.Args))
	typeds := make([]types.Typed, len(call.Args))
	for i, arg := range call.Args {
		l, t, e := c.Lower(arg)
		if e != nil {
			return nil, types.Typed{}, e
		}
		args[i], typeds[i] = l, t
	}
	resolved, e := c.resolveFunction(call)
	if e != nil {
		return nil, types.Typed{}, e
	}
	switch fn := resolved.(type) {
	case Inline:
		return c.lowerInlineCall(call, fn.Function, args, typeds)
	case Normal:
		return c.lowerNormalCall(call, fn, args, typeds)
	}
	panic("unhandled type of resolved function")
}

func (c *Context) lowerNormalCall(call *ast.CallExpression, fn Normal, args []latex.Latex, typeds []types.Typed) (latex.Latex, types.Typed, *err.Error) {
	sig := fn.Signature
	name := call.Func.String()
	out := latex.Call{Func: latex.NormalFunction(sig.Name), IsBuiltin: fn.IsBuiltin, Args: args}
	if call.Func.IsLog {
		out.Func = call.Func.ToLatex()
	}
	if anyPoisoned(typeds) {
		return out, types.Typed{Span: call.Span, Typ: types.Poison}, nil
	}
	var mapped types.TypInfo
	if !sig.Args.Variadic {
		if len(typeds) != len(sig.Args.Static) {
			return nil, types.Typed{}, err.CreateErr(err.WRONG_ARG_COUNT, call.Span, name, len(typeds), len(sig.Args.Static))
		}
		for i, expected := range sig.Args.Static {
			got := typeds[i]
			if expected == types.NumberVal && got.Typ.IsListWeak() {
				if mapped == nil {
					mapped = got.Info
				}
				continue
			}
			if !types.FromValType(expected).EqWeak(got.Typ) {
				return nil, types.Typed{}, err.CreateErr(err.TYPE_MISMATCH_ARG, got.Span, name, i+1, got.Typ, expected, types.Describe(got.Info))
			}
		}
	}
	switch {
	case mapped != nil:
		return out, types.Typed{Span: call.Span, Typ: types.MappedList, Info: types.MappedCall{CallSpan: call.Span, Func: name, MappedArg: mapped}}, nil
	case fn.IsBuiltin:
		return out, types.Typed{Span: call.Span, Typ: types.FromValType(sig.Ret), Info: types.Builtin{Span: call.Span, Func: name}}, nil
	}
	return out, types.Typed{Span: call.Span, Typ: types.FromValType(sig.Ret), Info: types.Call{CallSpan: call.Span, Ret: sig.RetInfo}}, nil
}

// An inline call substitutes the compiled arguments into the function's body. The body is also
// lowered again, in the context the function was defined in, with each parameter standing for
// its argument: that gives the call its type. A parameter declared as a number can be given a
// list, in which case the body broadcasts over it.
func (c *Context) lowerInlineCall(call *ast.CallExpression, fn *InlineFunction, args []latex.Latex, typeds []types.Typed) (latex.Latex, types.Typed, *err.Error) {
	name := call.Func.String()
	if len(typeds) != len(fn.Args) {
		return nil, types.Typed{}, err.CreateErr(err.WRONG_ARG_COUNT, call.Span, name, len(typeds), len(fn.Args))
	}
	bound := make([]InlineValue, len(args))
	bindings := map[string]latex.Latex{}
	for i, param := range fn.Args {
		got := typeds[i]
		if param.Type == types.ListVal && !types.List.EqWeak(got.Typ) {
			return nil, types.Typed{}, err.CreateErr(err.TYPE_MISMATCH_ARG, got.Span, name, i+1, got.Typ, param.Type, types.Describe(got.Info))
		}
		bound[i] = InlineValue{Latex: args[i], Typ: got.Typ, Info: types.InlineFuncArg{Span: got.Span}}
		bindings[param.Name] = args[i]
	}
	if e := c.checkCapture(call, fn, bindings); e != nil {
		return nil, types.Typed{}, e
	}
	_, result, e := fn.Scope.withInlineArgs(fn.Args, bound).Lower(fn.Source)
	if e != nil {
		e.AddToTrace(call.Span)
		return nil, types.Typed{}, e
	}
	if fn.RetAnnotation != nil && result.Typ != types.Poison && !result.Typ.Satisfies(*fn.RetAnnotation) {
		return nil, types.Typed{}, err.CreateErr(err.INVALID_RETURN_TYPE, call.Span, name, *fn.RetAnnotation, result.Typ, types.Describe(result.Info))
	}
	out := latex.Substitute(fn.Body, bindings)
	return out, types.Typed{Span: call.Span, Typ: result.Typ, Info: types.Call{CallSpan: call.Span, Ret: result.Info}}, nil
}

// A global the body of an inline function refers to would be captured if it were pasted into a
// function with a parameter of the same name.
func (c *Context) checkCapture(call *ast.CallExpression, fn *InlineFunction, bindings map[string]latex.Latex) *err.Error {
	params := map[string]string{}
	for it := c.locals.Iterator(); it.HasElem(); it.Next() {
		_, v := it.Elem()
		params[latex.Ident(v.(Variable).Name)] = v.(Variable).Name
	}
	if len(params) == 0 {
		return nil
	}
	for _, free := range latex.FreeVariables(fn.Body) {
		if _, ok := bindings[free]; ok {
			continue
		}
		if param, ok := params[latex.Ident(free)]; ok {
			return err.CreateErr(err.INLINE_CAPTURE, call.Span, call.Func.String(), param)
		}
	}
	return nil
}

func anyPoisoned(typeds []types.Typed) bool {
	for _, t := range typeds {
		if t.Typ == types.Poison {
			return true
		}
	}
	return false
}
