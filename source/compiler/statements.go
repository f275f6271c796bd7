package compiler

import (
	"github.com/sirupsen/logrus"

	"desmosc/source/ast"
	"desmosc/source/err"
	"desmosc/source/graph"
	"desmosc/source/latex"
	"desmosc/source/settings"
	"desmosc/source/types"
)

// A TypedLatex is a line of output together with the type of its value.
type TypedLatex struct {
	Latex latex.Latex
	Typ   types.Typ
}

func (tl TypedLatex) String() string {
	return latex.Render(tl.Latex)
}

// CompileStmt compiles one statement, binding whatever it defines, and returns the LaTeX it
// emits. Inline definitions emit nothing. If there's an error, nothing is bound.
func (c *Context) CompileStmt(stmt ast.Statement) ([]TypedLatex, *err.Error) {
	if settings.SHOW_COMPILER {
		logrus.WithField("statement", stmt.String()).Debug("compiling")
	}
	switch stmt := stmt.(type) {
	case *ast.ExpressionStatement:
		out, t, e := c.Lower(stmt.Expression)
		if e != nil {
			return nil, e
		}
		if t.Typ == types.Poison {
			return nil, err.CreateErr(err.POISONED, stmt.Span)
		}
		return []TypedLatex{{out, t.Typ}}, nil
	case *ast.VarDef:
		return c.compileVarDef(stmt)
	case *ast.FuncDef:
		return c.compileFuncDef(stmt)
	case *ast.ImportStatement:
		return c.compileImport(stmt)
	}
	panic("unhandled type of statement: " + stmt.String())
}

// The value is lowered before the name is bound, so a definition can't refer to itself.
func (c *Context) compileVarDef(stmt *ast.VarDef) ([]TypedLatex, *err.Error) {
	out, t, e := c.Lower(stmt.Value)
	if e != nil {
		return nil, e
	}
	if t.Typ == types.Poison {
		return nil, err.CreateErr(err.POISONED, stmt.Span)
	}
	if stmt.Inline {
		c.defineInlineValue(stmt.Name, InlineValue{Latex: out, Typ: t.Typ, Info: t.Info})
		return nil, nil
	}
	if e := c.claim(stmt.Name, stmt.Span); e != nil {
		return nil, e
	}
	name := c.prefix + stmt.Name
	c.defineVariable(stmt.Name, Variable{Type: t.Typ.Settle(), Info: t.Info, Name: name})
	return []TypedLatex{{latex.Assignment{Left: latex.Variable{Name: name}, Right: out}, t.Typ}}, nil
}

// The body is lowered with the parameters as the only locals. A declared return type must be
// matched exactly: in particular a mapped list is not a number.
func (c *Context) compileFuncDef(stmt *ast.FuncDef) ([]TypedLatex, *err.Error) {
	def := stmt.Def
	body, t, e := c.withParams(def.Args).Lower(stmt.Body)
	if e != nil {
		return nil, e
	}
	if t.Typ == types.Poison {
		return nil, err.CreateErr(err.POISONED, stmt.Span)
	}
	ret := t.Typ.Settle()
	if def.RetAnnotation != nil {
		if !t.Typ.Satisfies(*def.RetAnnotation) {
			return nil, err.CreateErr(err.INVALID_RETURN_TYPE, stmt.Body.GetSpan(), def.Name, *def.RetAnnotation, t.Typ, types.Describe(t.Info))
		}
		ret = *def.RetAnnotation
	}
	if def.Inline {
		c.defineInlineFunction(def.Name, &InlineFunction{
			Args:          def.Args,
			Ret:           t.Typ,
			RetInfo:       t.Info,
			RetAnnotation: def.RetAnnotation,
			Body:          body,
			Source:        stmt.Body,
			Scope:         c.Clone(),
		})
		return nil, nil
	}
	if e := c.claim(def.Name, stmt.Span); e != nil {
		return nil, e
	}
	name := c.prefix + def.Name
	argTypes := make([]types.ValType, len(def.Args))
	argNames := make([]string, len(def.Args))
	for i, p := range def.Args {
		argTypes[i], argNames[i] = p.Type, p.Name
	}
	c.defineFunction(def.Name, &types.FunctionSignature{
		Args:    types.StaticArgs(argTypes...),
		Ret:     ret,
		RetInfo: t.Info,
		Name:    name,
	})
	return []TypedLatex{{latex.FuncDef{Name: name, Args: argNames, Body: body}, types.FromValType(ret)}}, nil
}

// CompileStmts compiles statements in order. Normally it stops at the first error, since later
// statements may need what the failed one would have defined. With isolate set it carries on,
// and returns every error.
func CompileStmts(ctx *Context, stmts ast.Statements, isolate bool) ([]TypedLatex, err.Errors) {
	outputs := []TypedLatex{}
	errs := err.Errors{}
	for _, stmt := range stmts {
		out, e := ctx.CompileStmt(stmt)
		if e != nil {
			errs = append(errs, e)
			if !isolate {
				break
			}
			continue
		}
		outputs = append(outputs, out...)
	}
	return outputs, errs
}

// StmtsToGraph compiles a program into a graph state with one expression per line of output.
func StmtsToGraph(ctx *Context, stmts ast.Statements, isolate bool) (*graph.CalcState, err.Errors) {
	outputs, errs := CompileStmts(ctx, stmts, isolate)
	if len(errs) > 0 && !isolate {
		return nil, errs
	}
	lines := make([]string, len(outputs))
	for i, out := range outputs {
		lines[i] = latex.Render(out.Latex)
	}
	return graph.FromLatexStrings(lines), errs
}
