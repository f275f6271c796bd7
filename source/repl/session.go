package repl

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"src.elv.sh/pkg/persistent/vector"

	"desmosc/source/compiler"
	"desmosc/source/err"
	"desmosc/source/graph"
	"desmosc/source/loader"
	"desmosc/source/parser"
	"desmosc/source/text"
	"desmosc/source/token"
)

// A Session is the state of an interactive session: the context everything typed so far has
// been compiled into, the lines of output it has produced, and the most recent errors.
type Session struct {
	Loader  compiler.Loader
	Sources *loader.Sources
	out     io.Writer
	ctx     *compiler.Context
	history vector.Vector // Of the rendered output, in order.
	ers     err.Errors
	input   token.FileID // Every line typed is parsed under this one ID.
	errLine string       // The line the most recent errors came from.
}

func NewSession(l compiler.Loader, sources *loader.Sources, out io.Writer) *Session {
	s := &Session{Loader: l, Sources: sources, out: out}
	s.input = sources.Register("", "")
	s.Reset()
	return s
}

func (s *Session) Reset() {
	s.ctx = compiler.NewContext(s.Loader)
	s.history = vector.Empty
	s.ers = nil
}

// History returns the output of the session so far.
func (s *Session) History() []string {
	result := make([]string, 0, s.history.Len())
	for i := 0; i < s.history.Len(); i++ {
		line, _ := s.history.Index(i)
		result = append(result, line.(string))
	}
	return result
}

func (s *Session) write(str string) {
	io.WriteString(s.out, str)
}

// Do handles one line of input, and says whether the user wants to quit.
func (s *Session) Do(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "//") {
		return false
	}
	if strings.HasPrefix(line, ":") {
		return s.doCommand(strings.Fields(line[1:]))
	}
	// Loaders which count how often they've been asked for each path start afresh with each
	// line, or a long session would run out.
	if r, ok := s.Loader.(interface{ Reset() }); ok {
		r.Reset()
	}
	s.Sources.Update(s.input, line)
	stmts, ers := parser.ParseProgram(s.input, line)
	if len(ers) > 0 {
		s.report(ers, line)
		return false
	}
	outputs, ers := compiler.CompileStmts(s.ctx, stmts, false)
	for _, out := range outputs {
		rendered := out.String()
		s.history = s.history.Conj(rendered)
		s.write(text.BULLET + rendered + text.Yellow(" : "+out.Typ.String()) + "\n")
	}
	if len(ers) > 0 {
		s.report(ers.WithoutKnockOns(), line)
	}
	return false
}

func (s *Session) report(ers err.Errors, line string) {
	s.ers = ers
	s.errLine = line
	s.write(err.GetListFrom(ers, s.lookup))
	if len(ers) > 0 {
		s.write(text.BULLET_SPACING + "Type ':why " + strconv.Itoa(len(ers)-1) + "' for an explanation.\n")
	}
}

func (s *Session) lookup(file token.FileID) (string, string, bool) {
	if file == compiler.StdlibFile {
		return "", "the standard library", true
	}
	if file == s.input {
		return s.errLine, "", true
	}
	path, source, ok := s.Sources.Get(file)
	return source, path, ok
}

func (s *Session) doCommand(words []string) bool {
	if len(words) == 0 {
		s.write(text.BULLET + "Type ':help' for a list of commands.\n")
		return false
	}
	switch words[0] {
	case "quit", "q":
		return true
	case "help":
		s.write(HELP)
	case "reset":
		s.Reset()
		s.write(text.OK + "\n")
	case "vars":
		s.listSymbols(compiler.VariableSymbol, compiler.InlineValueSymbol, compiler.ModuleSymbol)
	case "funcs":
		s.listSymbols(compiler.FunctionSymbol, compiler.InlineFunctionSymbol)
	case "builtins":
		for _, name := range compiler.BuiltinNames() {
			s.write(text.BULLET + compiler.BUILTINS[name].String() + "\n")
		}
	case "std":
		for _, path := range compiler.StdlibModules() {
			s.write(text.BULLET + path + "\n")
		}
	case "graph":
		data, e := graph.FromLatexStrings(s.History()).Marshal()
		if e != nil {
			s.write(text.BROKEN + e.Error() + "\n")
			return false
		}
		s.write(string(data) + "\n")
	case "errors":
		if len(s.ers) == 0 {
			s.write(text.BULLET + "There are no recent errors.\n")
			return false
		}
		s.write(err.GetListFrom(s.ers, s.lookup))
	case "why":
		n := 0
		if len(words) > 1 {
			var e error
			n, e = strconv.Atoi(words[1])
			if e != nil {
				s.write(text.BROKEN + "':why' needs the number of an error.\n")
				return false
			}
		}
		if len(s.ers) == 0 {
			s.write(text.BULLET + "There are no recent errors.\n")
			return false
		}
		s.write(text.BULLET + s.ers.Explain(n) + "\n")
	default:
		s.write(text.BROKEN + fmt.Sprintf("unknown command ':%v'. Type ':help' for a list of commands.\n", words[0]))
	}
	return false
}

func (s *Session) listSymbols(kinds ...compiler.SymbolKind) {
	found := false
	for _, sym := range s.ctx.Symbols() {
		for _, k := range kinds {
			if sym.Kind == k {
				found = true
				s.write(text.BULLET + sym.Name + " " + text.Cyan("("+sym.Kind.String()+")") + " " + sym.Detail + "\n")
			}
		}
	}
	if !found {
		s.write(text.BULLET + "Nothing has been defined.\n")
	}
}

const HELP = `Each line you type is compiled as a statement, and its LaTeX is shown with its type.
Definitions stay in force for the rest of the session. The commands are:

  :vars       list the variables, inline values and modules defined so far
  :funcs      list the functions defined so far
  :builtins   list the builtin functions
  :std        list the modules of the standard library
  :graph      show everything output so far as a graph state
  :errors     list the most recent errors
  :why n      explain error number n
  :reset      forget everything
  :quit       leave
`
