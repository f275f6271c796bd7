package latex

// Returns a copy of l with every variable named in bindings replaced by the corresponding tree.
// Parameters of a function definition shadow the bindings within its body.
func Substitute(l Latex, bindings map[string]Latex) Latex {
	if len(bindings) == 0 || l == nil {
		return l
	}
	sub := func(l Latex) Latex { return Substitute(l, bindings) }
	switch l := l.(type) {
	case Variable:
		if replacement, ok := bindings[l.Name]; ok {
			return replacement
		}
		return l
	case BinaryExpression:
		return BinaryExpression{sub(l.Left), l.Operator, sub(l.Right)}
	case UnaryExpression:
		return UnaryExpression{sub(l.Left), l.Operator}
	case Call:
		return Call{l.Func, l.IsBuiltin, substituteAll(l.Args, bindings)}
	case List:
		return List{substituteAll(l.Items, bindings)}
	case Range:
		return Range{sub(l.First), sub(l.Step), sub(l.End)}
	case Piecewise:
		rest := make([]Cond, len(l.Rest))
		for i, c := range l.Rest {
			rest[i] = substituteCond(c, bindings)
		}
		return Piecewise{substituteCond(l.First, bindings), rest, sub(l.Default)}
	case Index:
		return Index{sub(l.Val), sub(l.Index)}
	case Assignment:
		return Assignment{l.Left, sub(l.Right)}
	case FuncDef:
		inner := map[string]Latex{}
		for k, v := range bindings {
			inner[k] = v
		}
		for _, arg := range l.Args {
			delete(inner, arg)
		}
		return FuncDef{l.Name, l.Args, Substitute(l.Body, inner)}
	}
	return l
}

func substituteAll(ls []Latex, bindings map[string]Latex) []Latex {
	result := make([]Latex, len(ls))
	for i, l := range ls {
		result[i] = Substitute(l, bindings)
	}
	return result
}

func substituteCond(c Cond, bindings map[string]Latex) Cond {
	return Cond{Substitute(c.Left, bindings), c.Op, Substitute(c.Right, bindings), Substitute(c.Result, bindings)}
}

// Returns the names of the variables l refers to, in order of first appearance. The parameters
// of a function definition aren't free within its body.
func FreeVariables(l Latex) []string {
	result := []string{}
	seen := map[string]bool{}
	var walk func(l Latex, bound map[string]bool)
	walk = func(l Latex, bound map[string]bool) {
		switch l := l.(type) {
		case Variable:
			if !bound[l.Name] && !seen[l.Name] {
				seen[l.Name] = true
				result = append(result, l.Name)
			}
		case BinaryExpression:
			walk(l.Left, bound)
			walk(l.Right, bound)
		case UnaryExpression:
			walk(l.Left, bound)
		case Call:
			for _, arg := range l.Args {
				walk(arg, bound)
			}
		case List:
			for _, item := range l.Items {
				walk(item, bound)
			}
		case Range:
			walk(l.First, bound)
			walk(l.Step, bound)
			walk(l.End, bound)
		case Piecewise:
			for _, c := range append([]Cond{l.First}, l.Rest...) {
				walk(c.Left, bound)
				walk(c.Right, bound)
				walk(c.Result, bound)
			}
			walk(l.Default, bound)
		case Index:
			walk(l.Val, bound)
			walk(l.Index, bound)
		case Assignment:
			walk(l.Right, bound)
		case FuncDef:
			inner := map[string]bool{}
			for k := range bound {
				inner[k] = true
			}
			for _, arg := range l.Args {
				inner[arg] = true
			}
			walk(l.Body, inner)
		}
	}
	walk(l, map[string]bool{})
	return result
}
