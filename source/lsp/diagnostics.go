package lsp

import (
	"unicode/utf16"

	"github.com/sirupsen/logrus"
	"pkg.nimblebun.works/go-lsp"

	"desmosc/source/compiler"
	"desmosc/source/err"
	"desmosc/source/parser"
	"desmosc/source/token"
)

// compile recompiles a document from scratch and publishes its diagnostics. Every statement is
// compiled in isolation, so that one mistake doesn't hide the rest.
func (s *Server) compile(doc *document) {
	s.files.Set(doc.path, doc.text)
	s.disk.Reset()
	doc.file = s.sources.Register(doc.path, doc.text)
	stmts, errs := parser.ParseProgram(doc.file, doc.text)
	doc.ctx = compiler.NewContext(s.files)
	_, compileErrs := compiler.CompileStmts(doc.ctx, stmts, true)
	errs = append(errs, compileErrs.WithoutKnockOns()...)
	logrus.WithFields(logrus.Fields{"path": doc.path, "errors": len(errs)}).Debug("compiled document")
	s.notify("textDocument/publishDiagnostics", lsp.PublishDiagnosticsParams{
		URI:         doc.uri,
		Diagnostics: s.diagnostics(doc, errs),
	})
}

func (s *Server) diagnostics(doc *document, errs err.Errors) []lsp.Diagnostic {
	result := []lsp.Diagnostic{}
	for _, e := range errs {
		result = append(result, lsp.Diagnostic{
			Range:    spanToRange(doc.text, locate(doc.file, e)),
			Severity: lsp.DSError,
			Message:  e.Message,
		})
	}
	return result
}

// An error inside an imported module is reported at the import statement that led to it.
func locate(file token.FileID, e *err.Error) token.Span {
	if e.Span.File == file {
		return e.Span
	}
	for i := len(e.Trace) - 1; i >= 0; i-- {
		if e.Trace[i].File == file {
			return e.Trace[i]
		}
	}
	return token.Span{File: file}
}

func spanToRange(source string, span token.Span) lsp.Range {
	return lsp.Range{Start: lspPosition(source, span.Start), End: lspPosition(source, span.End)}
}

// lspPosition converts a byte offset into a zero-based line and a column counted in UTF-16
// code units, which is what clients expect.
func lspPosition(source string, offset int) lsp.Position {
	var line, col int
	for i, r := range source {
		if i >= offset {
			break
		}
		if r == '\n' {
			line++
			col = 0
			continue
		}
		col += utf16.RuneLen(r)
	}
	return lsp.Position{Line: line, Character: col}
}
