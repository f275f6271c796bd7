package ast

import (
	"bytes"
	"strconv"
	"strings"

	"desmosc/source/latex"
	"desmosc/source/token"
	"desmosc/source/types"
)

// The base Node interface
type Node interface {
	Children() []Node
	GetToken() *token.Token
	GetSpan() token.Span
	String() string
}

type Expression interface {
	Node
	expressionNode()
}

type Statement interface {
	Node
	statementNode()
}

type Statements []Statement

func (s Statements) String() string {
	lines := make([]string, len(s))
	for i, stmt := range s {
		lines[i] = stmt.String()
	}
	return strings.Join(lines, "\n")
}

// A Function is what gets called by a call expression: a named function, or a logarithm with
// a given base, which the lexer recognizes from 'log_2' etc.
type Function struct {
	Name  string
	Base  string
	IsLog bool
}

func (f Function) ToLatex() latex.Function {
	if f.IsLog {
		return latex.LogFunction(f.Base)
	}
	return latex.NormalFunction(f.Name)
}

func (f Function) String() string {
	if f.IsLog {
		return "log_" + f.Base
	}
	return f.Name
}

// Expression nodes in alphabetical order.

type BinaryExpression struct {
	Token    token.Token
	Span     token.Span
	Left     Expression
	Operator latex.BinaryOperator
	Right    Expression
}

func (be *BinaryExpression) Children() []Node       { return []Node{be.Left, be.Right} }
func (be *BinaryExpression) GetToken() *token.Token { return &be.Token }
func (be *BinaryExpression) GetSpan() token.Span    { return be.Span }
func (be *BinaryExpression) expressionNode()        {}
func (be *BinaryExpression) String() string {
	var out bytes.Buffer
	out.WriteString("(")
	out.WriteString(be.Left.String())
	out.WriteString(" " + be.Token.Literal + " ")
	out.WriteString(be.Right.String())
	out.WriteString(")")
	return out.String()
}

type CallExpression struct {
	Token token.Token
	Span  token.Span
	Path  []string // The module qualifier, if any.
	Func  Function
	Args  []Expression
}

func (ce *CallExpression) Children() []Node {
	result := []Node{}
	for _, arg := range ce.Args {
		result = append(result, arg)
	}
	return result
}
func (ce *CallExpression) GetToken() *token.Token { return &ce.Token }
func (ce *CallExpression) GetSpan() token.Span    { return ce.Span }
func (ce *CallExpression) expressionNode()        {}
func (ce *CallExpression) String() string {
	var out bytes.Buffer
	for _, p := range ce.Path {
		out.WriteString(p + ".")
	}
	out.WriteString(ce.Func.String())
	out.WriteString("(")
	writeList(&out, ce.Args)
	out.WriteString(")")
	return out.String()
}

type ErrorExpression struct {
	Token token.Token
	Span  token.Span
}

func (ee *ErrorExpression) Children() []Node       { return []Node{} }
func (ee *ErrorExpression) GetToken() *token.Token { return &ee.Token }
func (ee *ErrorExpression) GetSpan() token.Span    { return ee.Span }
func (ee *ErrorExpression) expressionNode()        {}
func (ee *ErrorExpression) String() string         { return "<error>" }

type Identifier struct {
	Token token.Token
	Span  token.Span
	Value string
}

func (i *Identifier) Children() []Node       { return []Node{} }
func (i *Identifier) GetToken() *token.Token { return &i.Token }
func (i *Identifier) GetSpan() token.Span    { return i.Span }
func (i *Identifier) expressionNode()        {}
func (i *Identifier) String() string         { return i.Value }

type IndexExpression struct {
	Token token.Token
	Span  token.Span
	Val   Expression
	Index Expression
}

func (ie *IndexExpression) Children() []Node       { return []Node{ie.Val, ie.Index} }
func (ie *IndexExpression) GetToken() *token.Token { return &ie.Token }
func (ie *IndexExpression) GetSpan() token.Span    { return ie.Span }
func (ie *IndexExpression) expressionNode()        {}
func (ie *IndexExpression) String() string {
	return "(" + ie.Val.String() + "[" + ie.Index.String() + "])"
}

type ListExpression struct {
	Token token.Token
	Span  token.Span
	Items []Expression
}

func (le *ListExpression) Children() []Node {
	result := []Node{}
	for _, item := range le.Items {
		result = append(result, item)
	}
	return result
}
func (le *ListExpression) GetToken() *token.Token { return &le.Token }
func (le *ListExpression) GetSpan() token.Span    { return le.Span }
func (le *ListExpression) expressionNode()        {}
func (le *ListExpression) String() string {
	var out bytes.Buffer
	out.WriteString("[")
	writeList(&out, le.Items)
	out.WriteString("]")
	return out.String()
}

type MapExpression struct {
	Token token.Token
	Span  token.Span
	Inner Expression
}

func (me *MapExpression) Children() []Node       { return []Node{me.Inner} }
func (me *MapExpression) GetToken() *token.Token { return &me.Token }
func (me *MapExpression) GetSpan() token.Span    { return me.Span }
func (me *MapExpression) expressionNode()        {}
func (me *MapExpression) String() string         { return "(@" + me.Inner.String() + ")" }

type NumberLiteral struct {
	Token token.Token
	Span  token.Span
	Value string
}

func (nl *NumberLiteral) Children() []Node       { return []Node{} }
func (nl *NumberLiteral) GetToken() *token.Token { return &nl.Token }
func (nl *NumberLiteral) GetSpan() token.Span    { return nl.Span }
func (nl *NumberLiteral) expressionNode()        {}
func (nl *NumberLiteral) String() string         { return nl.Value }

// A Branch of a piecewise expression: if the condition holds, the value is the result.
type Branch struct {
	CondLeft  Expression
	Cond      latex.CompareOperator
	CondRight Expression
	Value     Expression
}

func (b Branch) String() string {
	return b.CondLeft.String() + " " + b.Cond.String() + " " + b.CondRight.String() + ": " + b.Value.String()
}

type PiecewiseExpression struct {
	Token   token.Token
	Span    token.Span
	First   Branch
	Rest    []Branch
	Default Expression
}

func (pe *PiecewiseExpression) Children() []Node {
	result := []Node{}
	for _, b := range append([]Branch{pe.First}, pe.Rest...) {
		result = append(result, b.CondLeft, b.CondRight, b.Value)
	}
	return append(result, pe.Default)
}
func (pe *PiecewiseExpression) GetToken() *token.Token { return &pe.Token }
func (pe *PiecewiseExpression) GetSpan() token.Span    { return pe.Span }
func (pe *PiecewiseExpression) expressionNode()        {}
func (pe *PiecewiseExpression) String() string {
	var out bytes.Buffer
	out.WriteString("{")
	for _, b := range append([]Branch{pe.First}, pe.Rest...) {
		out.WriteString(b.String())
		out.WriteString(", ")
	}
	out.WriteString(pe.Default.String())
	out.WriteString("}")
	return out.String()
}

// A name qualified by the module it comes from, as in 'geo.origin'.
type QualifiedIdentifier struct {
	Token token.Token
	Span  token.Span
	Path  []string
	Item  string
}

func (qi *QualifiedIdentifier) Children() []Node       { return []Node{} }
func (qi *QualifiedIdentifier) GetToken() *token.Token { return &qi.Token }
func (qi *QualifiedIdentifier) GetSpan() token.Span    { return qi.Span }
func (qi *QualifiedIdentifier) expressionNode()        {}
func (qi *QualifiedIdentifier) String() string {
	return strings.Join(append(append([]string{}, qi.Path...), qi.Item), ".")
}

type RangeExpression struct {
	Token token.Token
	Span  token.Span
	First Expression
	Step  Expression // nil if absent
	End   Expression
}

func (re *RangeExpression) Children() []Node {
	if re.Step == nil {
		return []Node{re.First, re.End}
	}
	return []Node{re.First, re.End, re.Step}
}
func (re *RangeExpression) GetToken() *token.Token { return &re.Token }
func (re *RangeExpression) GetSpan() token.Span    { return re.Span }
func (re *RangeExpression) expressionNode()        {}
func (re *RangeExpression) String() string {
	result := "[" + re.First.String() + " .. " + re.End.String()
	if re.Step != nil {
		result = result + " by " + re.Step.String()
	}
	return result + "]"
}

// LaTeX supplied by the user, with the type they say it has.
type RawLatex struct {
	Token token.Token
	Span  token.Span
	Type  types.ValType
	Text  string
}

func (rl *RawLatex) Children() []Node       { return []Node{} }
func (rl *RawLatex) GetToken() *token.Token { return &rl.Token }
func (rl *RawLatex) GetSpan() token.Span    { return rl.Span }
func (rl *RawLatex) expressionNode()        {}
func (rl *RawLatex) String() string         { return "raw " + rl.Type.String() + " " + strconv.Quote(rl.Text) }

type UnaryExpression struct {
	Token    token.Token
	Span     token.Span
	Operand  Expression
	Operator latex.UnaryOperator
}

func (ue *UnaryExpression) Children() []Node       { return []Node{ue.Operand} }
func (ue *UnaryExpression) GetToken() *token.Token { return &ue.Token }
func (ue *UnaryExpression) GetSpan() token.Span    { return ue.Span }
func (ue *UnaryExpression) expressionNode()        {}
func (ue *UnaryExpression) String() string {
	if ue.Operator == latex.Factorial {
		return "(" + ue.Operand.String() + "!)"
	}
	return "(-" + ue.Operand.String() + ")"
}

func writeList(out *bytes.Buffer, exps []Expression) {
	for i, e := range exps {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(e.String())
	}
}
