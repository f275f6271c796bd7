package err

import (
	"fmt"
	"strconv"
	"strings"
)

// A map from error identifiers to functions that supply the corresponding error messages and explanations.
//
// Errors in the map are in alphabetical order of their identifers.
//
// Major categories are comp, lex, and parse.
//
// Two otherwise identical errors thrown in different places in the Go code must be assigned
// different identifiers, if only by suffixing /a, /b, etc to the identifier.

var ErrorCreatorMap = map[string]ErrorCreator{

	// TEMPLATE
	"": {
		Message: func(args ...any) string {
			return ""
		},
		Explanation: func(errors Errors, pos int, args ...any) string {
			return ""
		},
	},

	"comp/call/args": {
		Message: func(args ...any) string {
			return fmt.Sprintf("function %v expects %v, but was given %v", emph(args[0]), describeCount(args[2]), args[1])
		},
		Explanation: func(errors Errors, pos int, args ...any) string {
			return "Apart from the variadic builtins " + emph("gcd") + " and " + emph("lcm") + ", every function " +
				"has a fixed number of parameters, and must be called with exactly that many arguments."
		},
	},

	"comp/func/unknown": {
		Message: func(args ...any) string {
			return "unknown function " + emph(args[0])
		},
		Explanation: func(errors Errors, pos int, args ...any) string {
			return "There is no builtin function called " + emph(args[0]) + ", and it hasn't been defined " +
				"before this point. Functions have to be defined before they are used." + blame(errors, pos, "comp/import/unresolved")
		},
	},

	"comp/ident/redefined": {
		Message: func(args ...any) string {
			return emph(args[0]) + " has already been defined"
		},
		Explanation: func(errors Errors, pos int, args ...any) string {
			return "Everything defined in a program ends up in the same graph, and the calculator won't " +
				"accept two definitions of " + emph(args[0]) + ". Give the new definition a name of its " +
				"own, or use " + emph("inline") + " if it's only needed at compile time."
		},
	},

	"comp/ident/unknown": {
		Message: func(args ...any) string {
			return "unknown identifier " + emph(args[0])
		},
		Explanation: func(errors Errors, pos int, args ...any) string {
			return "The identifier " + emph(args[0]) + " hasn't been defined at this point. Variables " +
				"must be defined before the statement that uses them, and a definition can't refer to " +
				"the thing it's defining." + blame(errors, pos, "comp/import/unresolved")
		},
	},

	"comp/import/cycle": {
		Message: func(args ...any) string {
			return "module " + emphStr(args[0]) + " imports itself"
		},
		Explanation: func(errors Errors, pos int, args ...any) string {
			return "Compiling " + emphStr(args[0]) + " led, through a chain of " + emph("import") + " and " +
				emph("include") + " statements, back to " + emphStr(args[0]) + " itself. Modules can't depend " +
				"on one another in a circle: move whatever they share into a module of its own."
		},
	},

	"comp/import/loader": {
		Message: func(args ...any) string {
			return "can't import " + emphStr(args[0]) + " because no module loader is available"
		},
		Explanation: func(errors Errors, pos int, args ...any) string {
			return "This code is being compiled in a setting which has no way of fetching other " +
				"modules, and so " + emph("import") + " and " + emph("include") + " statements can't be used."
		},
	},

	"comp/import/unresolved": {
		Message: func(args ...any) string {
			return "couldn't load module " + emphStr(args[0])
		},
		Explanation: func(errors Errors, pos int, args ...any) string {
			return "The file " + emphStr(args[0]) + " either doesn't exist, couldn't be read, or contains " +
				"syntax errors. Check the path, which is relative to the project root."
		},
	},

	"comp/inline/capture": {
		Message: func(args ...any) string {
			return fmt.Sprintf("inline function %v uses %v, which is a parameter here", emph(args[0]), emph(args[1]))
		},
		Explanation: func(errors Errors, pos int, args ...any) string {
			return "The body of " + emph(args[0]) + " refers to the global " + emph(args[1]) + ". Pasting " +
				"the body in here would make it refer to the parameter of the same name instead. Rename " +
				"the parameter, or make " + emph(args[0]) + " an ordinary function."
		},
	},

	"comp/module/path": {
		Message: func(args ...any) string {
			return "can't refer to " + emph(args[0]) + " because modules can't contain modules"
		},
		Explanation: func(errors Errors, pos int, args ...any) string {
			return "A qualified name can have only one module name in front of it, as in " + emph("m.x") +
				". Modules imported by an imported module aren't visible from outside it."
		},
	},

	"comp/module/unknown": {
		Message: func(args ...any) string {
			return "unknown module " + emph(args[0])
		},
		Explanation: func(errors Errors, pos int, args ...any) string {
			return "No module has been imported under the name " + emph(args[0]) + ". To use a module " +
				"under a name, write " + emph("import \"path\" as "+fmt.Sprint(args[0])) + "." +
				blame(errors, pos, "comp/import/unresolved")
		},
	},

	"comp/name/clash": {
		Message: func(args ...any) string {
			return fmt.Sprintf("%v would be written %v, which is already the name of %v", emph(args[0]), args[2], emph(args[1]))
		},
		Explanation: func(errors Errors, pos int, args ...any) string {
			return "The calculator only allows names made of one letter and a subscript, so underscores are " +
				"dropped and everything after the first letter becomes the subscript. That makes " +
				emph(args[0]) + " and " + emph(args[1]) + " the same name in the graph. Rename one of them."
		},
	},

	"comp/poison": {
		Message: func(args ...any) string {
			return "statement can't be compiled because it couldn't be parsed"
		},
		Explanation: func(errors Errors, pos int, args ...any) string {
			return "This statement contains a syntax error, which has been reported separately."
		},
	},

	"comp/return/type": {
		Message: func(args ...any) string {
			return fmt.Sprintf("function %v is declared to return %v, but its body is of type %v",
				emph(args[0]), emph(args[1]), emph(args[2]))
		},
		Explanation: func(errors Errors, pos int, args ...any) string {
			return "The type annotation after the parameters says what the function returns, and the " +
				"body must agree with it exactly. In this case the body is " + fmt.Sprint(args[3]) + "." +
				mappedNote(args[2])
		},
	},

	"comp/type/arg": {
		Message: func(args ...any) string {
			return fmt.Sprintf("argument %v of %v should be of type %v, not %v", args[1], emph(args[0]), emph(args[3]), emph(args[2]))
		},
		Explanation: func(errors Errors, pos int, args ...any) string {
			return "The value passed as argument " + fmt.Sprint(args[1]) + " of " + emph(args[0]) +
				" is " + fmt.Sprint(args[4]) + "." + mappedNote(args[2])
		},
	},

	"comp/type/cond": {
		Message: func(args ...any) string {
			return "condition of piecewise expression compares a value of type " + emph(args[0])
		},
		Explanation: func(errors Errors, pos int, args ...any) string {
			return "Both sides of a condition in a piecewise expression must be numbers. The offending side is " +
				fmt.Sprint(args[1]) + "."
		},
	},

	"comp/type/index/ind": {
		Message: func(args ...any) string {
			return "index should be of type 'number', not " + emph(args[0])
		},
		Explanation: func(errors Errors, pos int, args ...any) string {
			return "Only numbers can be used to index a list. The index is " + fmt.Sprint(args[1]) + "."
		},
	},

	"comp/type/index/val": {
		Message: func(args ...any) string {
			return "can't index a value of type " + emph(args[0])
		},
		Explanation: func(errors Errors, pos int, args ...any) string {
			return "Only lists can be indexed. The thing being indexed is " + fmt.Sprint(args[1]) + "."
		},
	},

	"comp/type/range": {
		Message: func(args ...any) string {
			return "bounds and step of range should be of type 'number', not " + emph(args[0])
		},
		Explanation: func(errors Errors, pos int, args ...any) string {
			return "A range such as " + emph("[1..10 by 2]") + " needs numbers for its start, end and step. " +
				"The offending value is " + fmt.Sprint(args[1]) + "."
		},
	},

	"lex/char": {
		Message: func(args ...any) string {
			return "unexpected character " + emph(args[0])
		},
		Explanation: func(errors Errors, pos int, args ...any) string {
			return "The character " + emph(args[0]) + " has no meaning in this language."
		},
	},

	"lex/log": {
		Message: func(args ...any) string {
			return "'log_' should be followed by a base"
		},
		Explanation: func(errors Errors, pos int, args ...any) string {
			return "To take a logarithm to a given base write e.g. " + emph("log_2(x)") + "."
		},
	},

	"lex/num": {
		Message: func(args ...any) string {
			return "malformed number " + emph(args[0])
		},
		Explanation: func(errors Errors, pos int, args ...any) string {
			return "A number can contain at most one decimal point."
		},
	},

	"lex/string": {
		Message: func(args ...any) string {
			return "string has no closing quote"
		},
		Explanation: func(errors Errors, pos int, args ...any) string {
			return "A string literal must finish on the line it started on."
		},
	},

	"parse/assign/lhs": {
		Message: func(args ...any) string {
			return "malformed left-hand side of definition"
		},
		Explanation: func(errors Errors, pos int, args ...any) string {
			return "The thing on the left of " + emph("=") + " should be either a name, as in " + emph("x = 1") +
				", or a function header, as in " + emph("f(a, b: List): Number = a + total(b)") + "."
		},
	},

	"parse/close": {
		Message: func(args ...any) string {
			return "expected " + fmt.Sprint(args[0]) + ", found " + fmt.Sprint(args[1])
		},
		Explanation: func(errors Errors, pos int, args ...any) string {
			return "Something has been left unclosed, or something unexpected has turned up inside a bracket." +
				blame(errors, pos, "lex/string")
		},
	},

	"parse/compare": {
		Message: func(args ...any) string {
			return "comparison " + emph(args[0]) + " can only be used in a condition of a piecewise expression"
		},
		Explanation: func(errors Errors, pos int, args ...any) string {
			return "Comparisons don't produce values in their own right. Use them inside braces, as in " +
				emph("{x < 0: -x, x}") + "."
		},
	},

	"parse/expected": {
		Message: func(args ...any) string {
			return "unexpected " + fmt.Sprint(args[0]) + " at end of statement"
		},
		Explanation: func(errors Errors, pos int, args ...any) string {
			return "The statement seemed to be complete, but then there was more of it." + blame(errors, pos, "parse/prefix")
		},
	},

	"parse/funcdef/param": {
		Message: func(args ...any) string {
			return "expected parameter name, found " + fmt.Sprint(args[0])
		},
		Explanation: func(errors Errors, pos int, args ...any) string {
			return "The parameters of a function definition must be names, optionally followed by a type, " +
				"as in " + emph("f(a, b: List) = a + total(b)") + "."
		},
	},

	"parse/import/as": {
		Message: func(args ...any) string {
			return "expected 'as' and a module name, found " + fmt.Sprint(args[0])
		},
		Explanation: func(errors Errors, pos int, args ...any) string {
			return "An import statement must name the module, as in " + emph("import \"geometry\" as geo") +
				". To put the contents of a file directly into your program, use " + emph("include") + " instead."
		},
	},

	"parse/import/path": {
		Message: func(args ...any) string {
			return "expected path in quotes, found " + fmt.Sprint(args[0])
		},
		Explanation: func(errors Errors, pos int, args ...any) string {
			return "The path of an imported or included file must be a string, as in " + emph("include \"lib/shapes\"") + "."
		},
	},

	"parse/module/name": {
		Message: func(args ...any) string {
			return "expected name after '.', found " + fmt.Sprint(args[0])
		},
		Explanation: func(errors Errors, pos int, args ...any) string {
			return "The " + emph(".") + " operator can only be used to refer to the contents of a module, as in " + emph("geo.dist(a, b)") + "."
		},
	},

	"parse/piecewise/colon": {
		Message: func(args ...any) string {
			return "expected ':' after condition, found " + fmt.Sprint(args[0])
		},
		Explanation: func(errors Errors, pos int, args ...any) string {
			return "Each branch of a piecewise expression is a condition followed by a colon and a value, as in " +
				emph("{x < 0: -x, x}") + "."
		},
	},

	"parse/piecewise/default": {
		Message: func(args ...any) string {
			return "piecewise expression has no default value"
		},
		Explanation: func(errors Errors, pos int, args ...any) string {
			return "The last element of a piecewise expression must be a value with no condition, which is used " +
				"when none of the conditions hold, as in " + emph("{x < 0: -x, x}") + "."
		},
	},

	"parse/prefix": {
		Message: func(args ...any) string {
			return "can't start an expression with " + fmt.Sprint(args[0])
		},
		Explanation: func(errors Errors, pos int, args ...any) string {
			return "Something in this line is out of place." + blame(errors, pos, "parse/close", "lex/char", "lex/string")
		},
	},

	"parse/raw/string": {
		Message: func(args ...any) string {
			return "expected LaTeX in quotes, found " + fmt.Sprint(args[0])
		},
		Explanation: func(errors Errors, pos int, args ...any) string {
			return "Raw LaTeX is given as a type followed by a string, as in " + emph("raw Number \"\\pi\"") + "."
		},
	},

	"parse/type": {
		Message: func(args ...any) string {
			return "expected 'Number' or 'List', found " + fmt.Sprint(args[0])
		},
		Explanation: func(errors Errors, pos int, args ...any) string {
			return "The only types are " + emph("Number") + " and " + emph("List") + "."
		},
	},
}

func blame(errors Errors, pos int, args ...string) string {
	if pos == 0 {
		return ""
	}
	for _, v := range args {
		if errors[pos-1].ErrorId == v {
			return "\n\nIn this case the problem is likely a knock-on effect of the previous error ([" +
				strconv.Itoa(pos-1) + "] " + errors[pos-1].Message + ".)"
		}
	}
	return ""
}

func mappedNote(typ any) string {
	if fmt.Sprint(typ) != "mapped list" {
		return ""
	}
	return "\n\nA mapped list is what you get from calling a function which takes a number on a list. " +
		"It can be used anywhere a number can, but not where a list is required: assign it to a variable first."
}

func describeCount(n any) string {
	if i, ok := n.(int); ok && i == 1 {
		return "1 argument"
	}
	return fmt.Sprint(n) + " arguments"
}

func emph(s any) string {
	if t, ok := s.(string); ok {
		s = strings.TrimSpace(t)
	}
	return fmt.Sprintf("'%v'", s)
}

func emphStr(s any) string {
	return fmt.Sprintf("\"%v\"", s)
}
