package compiler

// How the compiler keeps track of what names mean: variables, functions, inline definitions and
// modules, in persistent maps so that cloning a Context is cheap and clones never see each
// other's changes.

import (
	"sort"

	"src.elv.sh/pkg/persistent/hash"
	"src.elv.sh/pkg/persistent/hashmap"

	"desmosc/source/ast"
	"desmosc/source/err"
	"desmosc/source/latex"
	"desmosc/source/token"
	"desmosc/source/types"
)

// A Loader turns an import path, or source text it has already fetched, into statements. An
// absent result means the import can't be resolved, for whatever reason.
type Loader interface {
	Load(path string) (ast.Statements, bool)
	ParseSource(source string) (ast.Statements, bool)
}

// A Variable is a name bound by an ordinary definition or a function parameter.
type Variable struct {
	Type types.ValType
	Info types.TypInfo
	Name string // The name it's emitted under.
}

// An InlineValue is substituted wherever its name is used, and so keeps its exact type.
type InlineValue struct {
	Latex latex.Latex
	Typ   types.Typ
	Info  types.TypInfo
}

// An InlineFunction is never emitted. At each call site the arguments are substituted into its
// body, and the body is lowered again with the parameters bound to the compiled arguments, so
// that it takes on whatever types it's called with.
type InlineFunction struct {
	Args          []ast.Parameter
	Ret           types.Typ
	RetInfo       types.TypInfo
	RetAnnotation *types.ValType // nil if the return type wasn't declared.
	Body          latex.Latex    // As lowered at the point of definition.
	Source        ast.Expression // What gets lowered again at a call site.
	Scope         *Context       // The context as it was when the function was defined.
}

type Context struct {
	variables        hashmap.Map // string -> Variable
	locals           hashmap.Map // string -> Variable
	definedFunctions hashmap.Map // string -> *types.FunctionSignature
	inlineVals       hashmap.Map // string -> InlineValue
	inlineFns        hashmap.Map // string -> *InlineFunction
	modules          hashmap.Map // string -> *Context
	emitted          hashmap.Map // rendered name -> the qualified name it belongs to
	Loader           Loader      // May be nil, in which case nothing can be imported.
	prefix           string      // Prepended to the emitted names of everything defined here.
	qualifier        string      // How names defined here are written from outside, e.g. "g."
	importing        []string    // The modules whose compilation led here, outermost first.
}

func NewContext(loader Loader) *Context {
	return &Context{
		variables:        newTable(),
		locals:           newTable(),
		definedFunctions: newTable(),
		inlineVals:       newTable(),
		inlineFns:        newTable(),
		modules:          newTable(),
		emitted:          newTable(),
		Loader:           loader,
	}
}

func newTable() hashmap.Map {
	return hashmap.New(func(a, b any) bool { return a == b }, func(k any) uint32 { return hash.String(k.(string)) })
}

// Clone returns a context which starts with the same bindings as this one and can be changed
// without affecting it.
func (c *Context) Clone() *Context {
	clone := *c
	return &clone
}

func (c *Context) newModule(name string) *Context {
	module := NewContext(c.Loader)
	module.prefix = c.prefix + name + "_"
	module.qualifier = c.qualifier + name + "."
	module.emitted = c.emitted
	module.importing = c.importing
	return module
}

// Everything emitted ends up in one graph, where a name can only be defined once. Since the
// calculator drops underscores and turns everything after the first letter into a subscript,
// different names can come out the same, and claim catches that too.
func (c *Context) claim(name string, span token.Span) *err.Error {
	rendered := latex.Ident(c.prefix + name)
	qualified := c.qualifier + name
	if owner, ok := lookup[string](c.emitted, rendered); ok {
		if owner == qualified {
			return err.CreateErr(err.REDEFINED, span, qualified)
		}
		return err.CreateErr(err.NAME_CLASH, span, qualified, owner, rendered)
	}
	c.emitted = c.emitted.Assoc(rendered, qualified)
	return nil
}

func lookup[T any](m hashmap.Map, name string) (T, bool) {
	v, ok := m.Index(name)
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// A name has one meaning at a time in each namespace, so defining one kind of thing removes any
// other kind of thing by the same name.

func (c *Context) defineVariable(name string, v Variable) {
	c.inlineVals = c.inlineVals.Dissoc(name)
	c.variables = c.variables.Assoc(name, v)
}

func (c *Context) defineInlineValue(name string, v InlineValue) {
	c.variables = c.variables.Dissoc(name)
	c.inlineVals = c.inlineVals.Assoc(name, v)
}

func (c *Context) defineFunction(name string, sig *types.FunctionSignature) {
	c.inlineFns = c.inlineFns.Dissoc(name)
	c.definedFunctions = c.definedFunctions.Assoc(name, sig)
}

func (c *Context) defineInlineFunction(name string, fn *InlineFunction) {
	c.definedFunctions = c.definedFunctions.Dissoc(name)
	c.inlineFns = c.inlineFns.Assoc(name, fn)
}

func (c *Context) defineModule(name string, module *Context) {
	c.modules = c.modules.Assoc(name, module)
}

// Replaces the locals with the given parameters.
func (c *Context) withParams(params []ast.Parameter) *Context {
	scope := c.Clone()
	scope.locals = newTable()
	for _, p := range params {
		scope.locals = scope.locals.Assoc(p.Name, Variable{Type: p.Type, Info: types.Param{Span: p.Span, Name: p.Name}, Name: p.Name})
	}
	return scope
}

// Binds the parameters of an inline function to the arguments of a call, as inline values, so
// that lowering the body substitutes them.
func (c *Context) withInlineArgs(params []ast.Parameter, args []InlineValue) *Context {
	scope := c.Clone()
	scope.locals = newTable()
	for i, p := range params {
		scope.inlineVals = scope.inlineVals.Assoc(p.Name, args[i])
	}
	return scope
}

// Looks a name up in the locals, then in the inline values, then in the variables. Exactly one of
// the results is non-nil if the name is found.
func (c *Context) lookupName(name string) (*Variable, *InlineValue, bool) {
	if v, ok := lookup[Variable](c.locals, name); ok {
		return &v, nil, true
	}
	return c.lookupGlobal(name)
}

func (c *Context) lookupGlobal(name string) (*Variable, *InlineValue, bool) {
	if iv, ok := lookup[InlineValue](c.inlineVals, name); ok {
		return nil, &iv, true
	}
	if v, ok := lookup[Variable](c.variables, name); ok {
		return &v, nil, true
	}
	return nil, nil, false
}

func (c *Context) lookupModule(name string) (*Context, bool) {
	return lookup[*Context](c.modules, name)
}

// Finds a user-defined function, either normal or inline.
func (c *Context) lookupUserFunction(name string) (ResolvedFunction, bool) {
	if fn, ok := lookup[*InlineFunction](c.inlineFns, name); ok {
		return Inline{fn}, true
	}
	if sig, ok := lookup[*types.FunctionSignature](c.definedFunctions, name); ok {
		return Normal{Signature: sig}, true
	}
	return nil, false
}

type SymbolKind int

const (
	VariableSymbol SymbolKind = iota
	InlineValueSymbol
	FunctionSymbol
	InlineFunctionSymbol
	ModuleSymbol
	BuiltinSymbol
)

func (k SymbolKind) String() string {
	return []string{"variable", "inline value", "function", "inline function", "module", "builtin"}[k]
}

// A Symbol describes something a name is bound to, for the benefit of the REPL and the language
// server.
type Symbol struct {
	Name   string
	Kind   SymbolKind
	Detail string
}

// Returns everything defined in the context, sorted by name.
func (c *Context) Symbols() []Symbol {
	result := []Symbol{}
	for it := c.variables.Iterator(); it.HasElem(); it.Next() {
		k, v := it.Elem()
		result = append(result, Symbol{k.(string), VariableSymbol, v.(Variable).Type.String()})
	}
	for it := c.inlineVals.Iterator(); it.HasElem(); it.Next() {
		k, v := it.Elem()
		iv := v.(InlineValue)
		result = append(result, Symbol{k.(string), InlineValueSymbol, iv.Typ.String() + " = " + latex.Render(iv.Latex)})
	}
	for it := c.definedFunctions.Iterator(); it.HasElem(); it.Next() {
		k, v := it.Elem()
		result = append(result, Symbol{k.(string), FunctionSymbol, v.(*types.FunctionSignature).String()})
	}
	for it := c.inlineFns.Iterator(); it.HasElem(); it.Next() {
		k, v := it.Elem()
		fn := v.(*InlineFunction)
		result = append(result, Symbol{k.(string), InlineFunctionSymbol, describeParams(fn.Args) + ": " + fn.Ret.String()})
	}
	for it := c.modules.Iterator(); it.HasElem(); it.Next() {
		k, _ := it.Elem()
		result = append(result, Symbol{k.(string), ModuleSymbol, "module"})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name == result[j].Name {
			return result[i].Kind < result[j].Kind
		}
		return result[i].Name < result[j].Name
	})
	return result
}

func describeParams(params []ast.Parameter) string {
	result := "("
	for i, p := range params {
		if i > 0 {
			result = result + ", "
		}
		result = result + p.Name + ": " + p.Type.String()
	}
	return result + ")"
}
