package latex

// The nodes of the LaTeX expressions that the compiler emits. These are rendered to strings
// by Render, and embedded into a graph state document.

type Latex interface {
	latexNode()
}

type BinaryOperator int

const (
	Add BinaryOperator = iota
	Subtract
	Multiply
	Divide
	Mod
	Exponent
)

type UnaryOperator int

const (
	Negate UnaryOperator = iota
	Factorial
)

type CompareOperator int

const (
	Equal CompareOperator = iota
	GreaterThan
	LessThan
	GreaterThanEqual
	LessThanEqual
)

func (c CompareOperator) String() string {
	switch c {
	case GreaterThan:
		return ">"
	case LessThan:
		return "<"
	case GreaterThanEqual:
		return ">="
	case LessThanEqual:
		return "<="
	}
	return "="
}

// A Function is called by name, or is a logarithm to a given base.
type Function struct {
	Name  string
	Base  string
	IsLog bool
}

func NormalFunction(name string) Function {
	return Function{Name: name}
}

func LogFunction(base string) Function {
	return Function{Base: base, IsLog: true}
}

func (f Function) String() string {
	if f.IsLog {
		return "log_" + f.Base
	}
	return f.Name
}

type Num struct {
	Value string
}

type Variable struct {
	Name string
}

// Raw is LaTeX supplied by the user, which is emitted exactly as it was given.
type Raw struct {
	Text string
}

type BinaryExpression struct {
	Left     Latex
	Operator BinaryOperator
	Right    Latex
}

type UnaryExpression struct {
	Left     Latex
	Operator UnaryOperator
}

type Call struct {
	Func      Function
	IsBuiltin bool
	Args      []Latex
}

type List struct {
	Items []Latex
}

// A Range with a nil Step counts up in ones.
type Range struct {
	First Latex
	Step  Latex
	End   Latex
}

type Cond struct {
	Left   Latex
	Op     CompareOperator
	Right  Latex
	Result Latex
}

type Piecewise struct {
	First   Cond
	Rest    []Cond
	Default Latex
}

type Index struct {
	Val   Latex
	Index Latex
}

type Assignment struct {
	Left  Latex
	Right Latex
}

type FuncDef struct {
	Name string
	Args []string
	Body Latex
}

func (Num) latexNode()              {}
func (Variable) latexNode()         {}
func (Raw) latexNode()              {}
func (BinaryExpression) latexNode() {}
func (UnaryExpression) latexNode()  {}
func (Call) latexNode()             {}
func (List) latexNode()             {}
func (Range) latexNode()            {}
func (Piecewise) latexNode()        {}
func (Index) latexNode()            {}
func (Assignment) latexNode()       {}
func (FuncDef) latexNode()          {}
