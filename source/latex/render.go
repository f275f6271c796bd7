package latex

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"
)

// Builtins which have a LaTeX command of their own rather than needing \operatorname.
var commands = map[string]bool{
	"sin": true, "cos": true, "tan": true, "csc": true, "sec": true, "cot": true,
	"arcsin": true, "arccos": true, "arctan": true, "arccsc": true, "arcsec": true, "arccot": true,
	"sinh": true, "cosh": true, "tanh": true, "csch": true, "sech": true, "coth": true,
	"exp": true, "ln": true, "log": true, "min": true, "max": true, "gcd": true,
}

// Names which are rendered as Greek letters.
var greek = map[string]bool{
	"alpha": true, "beta": true, "gamma": true, "delta": true, "epsilon": true, "zeta": true,
	"eta": true, "theta": true, "iota": true, "kappa": true, "lambda": true, "mu": true,
	"nu": true, "xi": true, "pi": true, "rho": true, "sigma": true, "tau": true,
	"upsilon": true, "phi": true, "chi": true, "psi": true, "omega": true,
}

const atomic = 10

func precedence(l Latex) int {
	switch l := l.(type) {
	case BinaryExpression:
		switch l.Operator {
		case Add, Subtract:
			return 1
		case Multiply:
			return 2
		case Exponent:
			return 4
		}
	case UnaryExpression:
		if l.Operator == Negate {
			return 3
		}
		return 5
	case Raw:
		if singleToken.MatchString(l.Text) {
			return atomic
		}
		return 0
	case Assignment, FuncDef:
		return 0
	}
	return atomic
}

// Raw LaTeX which is a single command, number or name can go anywhere. Anything else is
// bracketed when it's an operand, since there's no telling how it binds.
var singleToken = regexp.MustCompile(`^(\\[A-Za-z]+|[0-9]*\.?[0-9]+|[A-Za-z](_\{[A-Za-z0-9]+\})?)$`)

func Render(l Latex) string {
	var out bytes.Buffer
	render(&out, l)
	return out.String()
}

func render(out *bytes.Buffer, l Latex) {
	switch l := l.(type) {
	case Num:
		out.WriteString(l.Value)
	case Variable:
		out.WriteString(Ident(l.Name))
	case Raw:
		out.WriteString(l.Text)
	case BinaryExpression:
		renderBinary(out, l)
	case UnaryExpression:
		if l.Operator == Negate {
			out.WriteString("-")
			renderAbove(out, l.Left, 3)
			return
		}
		renderAbove(out, l.Left, atomic)
		out.WriteString("!")
	case Call:
		renderCall(out, l)
	case List:
		out.WriteString(`\left[`)
		renderArgs(out, l.Items)
		out.WriteString(`\right]`)
	case Range:
		out.WriteString(`\left[`)
		render(out, l.First)
		if l.Step != nil {
			out.WriteString(",")
			render(out, BinaryExpression{l.First, Add, l.Step})
		}
		out.WriteString("...")
		render(out, l.End)
		out.WriteString(`\right]`)
	case Piecewise:
		out.WriteString(`\left\{`)
		for i, cond := range append([]Cond{l.First}, l.Rest...) {
			if i > 0 {
				out.WriteString(",")
			}
			render(out, cond.Left)
			out.WriteString(compareCommand(cond.Op))
			render(out, cond.Right)
			out.WriteString(":")
			render(out, cond.Result)
		}
		out.WriteString(",")
		render(out, l.Default)
		out.WriteString(`\right\}`)
	case Index:
		renderAbove(out, l.Val, atomic)
		out.WriteString(`\left[`)
		render(out, l.Index)
		out.WriteString(`\right]`)
	case Assignment:
		render(out, l.Left)
		out.WriteString("=")
		render(out, l.Right)
	case FuncDef:
		out.WriteString(Ident(l.Name))
		out.WriteString(`\left(`)
		for i, arg := range l.Args {
			if i > 0 {
				out.WriteString(",")
			}
			out.WriteString(Ident(arg))
		}
		out.WriteString(`\right)=`)
		render(out, l.Body)
	}
}

func renderBinary(out *bytes.Buffer, l BinaryExpression) {
	switch l.Operator {
	case Add:
		renderAbove(out, l.Left, 1)
		out.WriteString("+")
		renderAbove(out, l.Right, 1)
	case Subtract:
		renderAbove(out, l.Left, 1)
		out.WriteString("-")
		renderAbove(out, l.Right, 2)
	case Multiply:
		renderAbove(out, l.Left, 2)
		out.WriteString(`\cdot `)
		renderAbove(out, l.Right, 3)
	case Divide:
		out.WriteString(`\frac{`)
		render(out, l.Left)
		out.WriteString("}{")
		render(out, l.Right)
		out.WriteString("}")
	case Mod:
		out.WriteString(`\operatorname{mod}\left(`)
		renderArgs(out, []Latex{l.Left, l.Right})
		out.WriteString(`\right)`)
	case Exponent:
		renderAbove(out, l.Left, atomic)
		out.WriteString("^{")
		render(out, l.Right)
		out.WriteString("}")
	}
}

// Renders l, in brackets if it binds less tightly than min.
func renderAbove(out *bytes.Buffer, l Latex, min int) {
	if precedence(l) >= min {
		render(out, l)
		return
	}
	out.WriteString(`\left(`)
	render(out, l)
	out.WriteString(`\right)`)
}

func renderArgs(out *bytes.Buffer, args []Latex) {
	for i, arg := range args {
		if i > 0 {
			out.WriteString(",")
		}
		render(out, arg)
	}
}

func renderCall(out *bytes.Buffer, l Call) {
	switch {
	case l.Func.IsLog:
		out.WriteString(`\log_{` + l.Func.Base + "}")
	case !l.IsBuiltin:
		out.WriteString(Ident(l.Func.Name))
	case l.Func.Name == "sqrt" && len(l.Args) == 1:
		out.WriteString(`\sqrt{`)
		render(out, l.Args[0])
		out.WriteString("}")
		return
	case l.Func.Name == "nthroot" && len(l.Args) == 2:
		out.WriteString(`\sqrt[`)
		render(out, l.Args[1])
		out.WriteString("]{")
		render(out, l.Args[0])
		out.WriteString("}")
		return
	case l.Func.Name == "abs" && len(l.Args) == 1:
		out.WriteString(`\left|`)
		render(out, l.Args[0])
		out.WriteString(`\right|`)
		return
	case commands[l.Func.Name]:
		out.WriteString(`\` + l.Func.Name)
	default:
		out.WriteString(`\operatorname{` + l.Func.Name + "}")
	}
	out.WriteString(`\left(`)
	renderArgs(out, l.Args)
	out.WriteString(`\right)`)
}

func compareCommand(c CompareOperator) string {
	switch c {
	case GreaterThanEqual:
		return `\ge `
	case LessThanEqual:
		return `\le `
	}
	return c.String()
}

// Turns an identifier into something the calculator will accept as one: a single letter, or a
// letter followed by a subscript.
func Ident(name string) string {
	if greek[name] {
		return `\` + name
	}
	var cleaned strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			cleaned.WriteRune(r)
		}
	}
	s := []rune(cleaned.String())
	if len(s) <= 1 {
		return string(s)
	}
	return string(s[0]) + "_{" + string(s[1:]) + "}"
}
