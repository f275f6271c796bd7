package compiler

import (
	"github.com/sirupsen/logrus"

	"desmosc/source/ast"
	"desmosc/source/err"
	"desmosc/source/latex"
	"desmosc/source/settings"
	"desmosc/source/token"
	"desmosc/source/types"
)

// Lower turns an expression into LaTeX, inferring its type and recording where the type came
// from. Any semantic error aborts the lowering of the whole expression.
func (c *Context) Lower(node ast.Expression) (latex.Latex, types.Typed, *err.Error) {
	out, typed, e := c.lower(node)
	if settings.SHOW_COMPILER && e == nil {
		logrus.WithFields(logrus.Fields{"node": node.String(), "type": typed.Typ.String()}).Debug("lowered")
	}
	return out, typed, e
}

func (c *Context) lower(node ast.Expression) (latex.Latex, types.Typed, *err.Error) {
	span := node.GetSpan()
	switch node := node.(type) {
	case *ast.BinaryExpression:
		left, lt, e := c.Lower(node.Left)
		if e != nil {
			return nil, types.Typed{}, e
		}
		right, rt, e := c.Lower(node.Right)
		if e != nil {
			return nil, types.Typed{}, e
		}
		return latex.BinaryExpression{Left: left, Operator: node.Operator, Right: right}, types.BinopExprs(lt, rt), nil
	case *ast.CallExpression:
		return c.lowerCall(node)
	case *ast.ErrorExpression:
		// The parser has already reported whatever this was.
		return latex.Raw{}, types.Typed{Span: span, Typ: types.Poison}, nil
	case *ast.Identifier:
		v, iv, ok := c.lookupName(node.Value)
		if !ok {
			return nil, types.Typed{}, err.CreateErr(err.UNKNOWN_VARIABLE, span, node.Value)
		}
		return resolvedName(v, iv, span)
	case *ast.IndexExpression:
		val, vt, e := c.Lower(node.Val)
		if e != nil {
			return nil, types.Typed{}, e
		}
		ind, it, e := c.Lower(node.Index)
		if e != nil {
			return nil, types.Typed{}, e
		}
		if !vt.Typ.IsListWeak() {
			return nil, types.Typed{}, err.CreateErr(err.TYPE_MISMATCH_LIST, vt.Span, vt.Typ, types.Describe(vt.Info))
		}
		if !it.Typ.IsNumWeak() {
			return nil, types.Typed{}, err.CreateErr(err.TYPE_MISMATCH_INDEX, it.Span, it.Typ, types.Describe(it.Info))
		}
		typ := types.Num
		if vt.Typ == types.Poison || it.Typ == types.Poison {
			typ = types.Poison
		}
		return latex.Index{Val: val, Index: ind}, types.Typed{Span: span, Typ: typ, Info: types.BinOp{Left: vt.Span, Right: it.Span}}, nil
	case *ast.ListExpression:
		items := make([]latex.Latex, len(node.Items))
		typeds := make([]types.Typed, len(node.Items))
		for i, item := range node.Items {
			l, t, e := c.Lower(item)
			if e != nil {
				return nil, types.Typed{}, e
			}
			items[i], typeds[i] = l, t
		}
		return latex.List{Items: items}, poisonOr(typeds, types.Typed{Span: span, Typ: types.List, Info: types.Literal{Kind: types.ListLiteral, Span: span}}), nil
	case *ast.MapExpression:
		inner, t, e := c.Lower(node.Inner)
		if e != nil {
			return nil, types.Typed{}, e
		}
		typ := t.Typ
		if typ == types.Num {
			typ = types.MappedList
		}
		return inner, types.Typed{Span: span, Typ: typ, Info: types.Map{Span: span}}, nil
	case *ast.NumberLiteral:
		return latex.Num{Value: node.Value}, types.Typed{Span: span, Typ: types.Num, Info: types.Literal{Kind: types.NumericLiteral, Span: span}}, nil
	case *ast.PiecewiseExpression:
		return c.lowerPiecewise(node)
	case *ast.QualifiedIdentifier:
		module, e := c.resolveModule(node.Path, node)
		if e != nil {
			return nil, types.Typed{}, e
		}
		v, iv, ok := module.lookupGlobal(node.Item)
		if !ok {
			return nil, types.Typed{}, err.CreateErr(err.UNKNOWN_VARIABLE, span, node.String())
		}
		return resolvedName(v, iv, span)
	case *ast.RangeExpression:
		parts := []ast.Expression{node.First, node.End}
		if node.Step != nil {
			parts = append(parts, node.Step)
		}
		lowered := make([]latex.Latex, len(parts))
		typeds := make([]types.Typed, len(parts))
		for i, part := range parts {
			l, t, e := c.Lower(part)
			if e != nil {
				return nil, types.Typed{}, e
			}
			if !t.Typ.IsNumWeak() {
				return nil, types.Typed{}, err.CreateErr(err.TYPE_MISMATCH_RANGE, t.Span, t.Typ, types.Describe(t.Info))
			}
			lowered[i], typeds[i] = l, t
		}
		out := latex.Range{First: lowered[0], End: lowered[1]}
		if node.Step != nil {
			out.Step = lowered[2]
		}
		return out, poisonOr(typeds, types.Typed{Span: span, Typ: types.List, Info: types.Literal{Kind: types.RangeLiteral, Span: span}}), nil
	case *ast.RawLatex:
		return latex.Raw{Text: node.Text}, types.Typed{Span: span, Typ: types.FromValType(node.Type), Info: types.RawLatex{Span: span}}, nil
	case *ast.UnaryExpression:
		operand, t, e := c.Lower(node.Operand)
		if e != nil {
			return nil, types.Typed{}, e
		}
		return latex.UnaryExpression{Left: operand, Operator: node.Operator}, types.Typed{Span: span, Typ: t.Typ, Info: t.Info}, nil
	}
	panic("unhandled type of expression: " + node.String())
}

func resolvedName(v *Variable, iv *InlineValue, span token.Span) (latex.Latex, types.Typed, *err.Error) {
	if iv != nil {
		return iv.Latex, types.Typed{Span: span, Typ: iv.Typ, Info: iv.Info}, nil
	}
	return latex.Variable{Name: v.Name}, types.Typed{Span: span, Typ: types.FromValType(v.Type), Info: v.Info}, nil
}

// Both sides of every condition must be numbers. The type of the whole is the combination of the
// types of all the values, so one branch giving a list makes the whole thing a list.
func (c *Context) lowerPiecewise(node *ast.PiecewiseExpression) (latex.Latex, types.Typed, *err.Error) {
	branches := append([]ast.Branch{node.First}, node.Rest...)
	conds := make([]latex.Cond, len(branches))
	values := make([]types.Typed, 0, len(branches)+1)
	poisoned := false
	for i, b := range branches {
		left, lt, e := c.Lower(b.CondLeft)
		if e != nil {
			return nil, types.Typed{}, e
		}
		right, rt, e := c.Lower(b.CondRight)
		if e != nil {
			return nil, types.Typed{}, e
		}
		for _, t := range []types.Typed{lt, rt} {
			if !t.Typ.IsNumWeak() {
				return nil, types.Typed{}, err.CreateErr(err.TYPE_MISMATCH_COND, t.Span, t.Typ, types.Describe(t.Info))
			}
			poisoned = poisoned || t.Typ == types.Poison
		}
		result, vt, e := c.Lower(b.Value)
		if e != nil {
			return nil, types.Typed{}, e
		}
		conds[i] = latex.Cond{Left: left, Op: b.Cond, Right: right, Result: result}
		values = append(values, vt)
	}
	def, dt, e := c.Lower(node.Default)
	if e != nil {
		return nil, types.Typed{}, e
	}
	values = append(values, dt)
	combined, _ := types.ReduceWithBinopExprs(values)
	combined.Span = node.Span
	if poisoned {
		combined.Typ = types.Poison
	}
	return latex.Piecewise{First: conds[0], Rest: conds[1:], Default: def}, combined, nil
}

func poisonOr(typeds []types.Typed, result types.Typed) types.Typed {
	if anyPoisoned(typeds) {
		result.Typ = types.Poison
	}
	return result
}
