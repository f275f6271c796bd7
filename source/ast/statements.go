package ast

import (
	"bytes"
	"strconv"

	"desmosc/source/token"
	"desmosc/source/types"
)

// Statement nodes in alphabetical order.

type ExpressionStatement struct {
	Token      token.Token
	Span       token.Span
	Expression Expression
}

func (es *ExpressionStatement) Children() []Node       { return []Node{es.Expression} }
func (es *ExpressionStatement) GetToken() *token.Token { return &es.Token }
func (es *ExpressionStatement) GetSpan() token.Span    { return es.Span }
func (es *ExpressionStatement) statementNode()         {}
func (es *ExpressionStatement) String() string         { return es.Expression.String() }

type Parameter struct {
	Span token.Span
	Name string
	Type types.ValType
}

type FunctionDefinition struct {
	Name          string
	Args          []Parameter
	RetAnnotation *types.ValType
	Inline        bool
}

type FuncDef struct {
	Token token.Token
	Span  token.Span
	Def   FunctionDefinition
	Body  Expression
}

func (fd *FuncDef) Children() []Node       { return []Node{fd.Body} }
func (fd *FuncDef) GetToken() *token.Token { return &fd.Token }
func (fd *FuncDef) GetSpan() token.Span    { return fd.Span }
func (fd *FuncDef) statementNode()         {}
func (fd *FuncDef) String() string {
	var out bytes.Buffer
	if fd.Def.Inline {
		out.WriteString("inline ")
	}
	out.WriteString(fd.Def.Name)
	out.WriteString("(")
	for i, p := range fd.Def.Args {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(p.Name + ": " + p.Type.String())
	}
	out.WriteString(")")
	if fd.Def.RetAnnotation != nil {
		out.WriteString(": " + fd.Def.RetAnnotation.String())
	}
	out.WriteString(" = ")
	out.WriteString(fd.Body.String())
	return out.String()
}

// An ImportMode with an empty Name is an include.
type ImportMode struct {
	Name string
}

func (im ImportMode) IsInclude() bool {
	return im.Name == ""
}

type ImportStatement struct {
	Token token.Token
	Span  token.Span
	Path  string
	Mode  ImportMode
}

func (is *ImportStatement) Children() []Node       { return []Node{} }
func (is *ImportStatement) GetToken() *token.Token { return &is.Token }
func (is *ImportStatement) GetSpan() token.Span    { return is.Span }
func (is *ImportStatement) statementNode()         {}
func (is *ImportStatement) String() string {
	if is.Mode.IsInclude() {
		return "include " + strconv.Quote(is.Path)
	}
	return "import " + strconv.Quote(is.Path) + " as " + is.Mode.Name
}

type VarDef struct {
	Token  token.Token
	Span   token.Span
	Name   string
	Value  Expression
	Inline bool
}

func (vd *VarDef) Children() []Node       { return []Node{vd.Value} }
func (vd *VarDef) GetToken() *token.Token { return &vd.Token }
func (vd *VarDef) GetSpan() token.Span    { return vd.Span }
func (vd *VarDef) statementNode()         {}
func (vd *VarDef) String() string {
	prefix := ""
	if vd.Inline {
		prefix = "inline "
	}
	return prefix + vd.Name + " = " + vd.Value.String()
}
