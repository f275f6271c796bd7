package compiler

import (
	"embed"
	"strings"

	"desmosc/source/ast"
	"desmosc/source/err"
	"desmosc/source/parser"
	"desmosc/source/settings"
	"desmosc/source/token"
)

//go:embed std/*.des
var stdlibFiles embed.FS

// Spans in the standard library refer to this file.
const StdlibFile token.FileID = -1

// The standard library is compiled into the binary, and so can be imported whether or not the
// context has a loader.
type stdlibLoader struct{}

func (stdlibLoader) Load(path string) (ast.Statements, bool) {
	name := strings.TrimPrefix(path, settings.STDLIB_PREFIX)
	source, e := stdlibFiles.ReadFile("std/" + name + ".des")
	if e != nil {
		return nil, false
	}
	return stdlibLoader{}.ParseSource(string(source))
}

func (stdlibLoader) ParseSource(source string) (ast.Statements, bool) {
	stmts, errs := parser.ParseProgram(StdlibFile, source)
	return stmts, len(errs) == 0
}

// Returns the paths of the modules in the standard library.
func StdlibModules() []string {
	entries, _ := stdlibFiles.ReadDir("std")
	result := []string{}
	for _, entry := range entries {
		result = append(result, settings.STDLIB_PREFIX+strings.TrimSuffix(entry.Name(), ".des"))
	}
	return result
}

func (c *Context) loaderFor(path string) Loader {
	if strings.HasPrefix(path, settings.STDLIB_PREFIX) {
		return stdlibLoader{}
	}
	return c.Loader
}

// An import compiles the module into a context of its own, which is then bound to the given name;
// an include compiles it into this context, as though its statements had been written here. In
// either case nothing is bound unless the whole module compiles.
func (c *Context) compileImport(stmt *ast.ImportStatement) ([]TypedLatex, *err.Error) {
	for _, path := range c.importing {
		if path == stmt.Path {
			return nil, err.CreateErr(err.IMPORT_CYCLE, stmt.Span, stmt.Path)
		}
	}
	loader := c.loaderFor(stmt.Path)
	if loader == nil {
		return nil, err.CreateErr(err.NO_LOADER, stmt.Span, stmt.Path)
	}
	stmts, ok := loader.Load(stmt.Path)
	if !ok {
		return nil, err.CreateErr(err.UNRESOLVED_IMPORT, stmt.Span, stmt.Path)
	}
	var target *Context
	if stmt.Mode.IsInclude() {
		target = c.Clone()
	} else {
		target = c.newModule(stmt.Mode.Name)
	}
	importing := c.importing
	target.importing = append(append([]string{}, importing...), stmt.Path)
	outputs, errs := CompileStmts(target, stmts, false)
	if len(errs) > 0 {
		e := errs[0]
		e.AddToTrace(stmt.Span)
		return nil, e
	}
	if stmt.Mode.IsInclude() {
		*c = *target
		c.importing = importing
	} else {
		c.emitted = target.emitted
		c.defineModule(stmt.Mode.Name, target)
	}
	return outputs, nil
}
