package text

// This consists of a bunch of text utilities to help in generating pretty and meaningful
// help messages, error messages, etc.

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"desmosc/source/token"
)

const (
	VERSION        = "0.3.0"
	BULLET         = "  ▪ "
	BULLET_SPACING = "    " // I.e. whitespace the same width as BULLET.
	PROMPT         = "→ "
)

var (
	cyan   = color.New(color.FgCyan).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()

	GOOD_BULLET = green(BULLET)
	BROKEN      = red("  ✖ ")
	ERROR       = red("Error")
	OK          = green("OK")
)

// Turns colour off everywhere, e.g. when output is being piped or for the benefit of tests.
func Plain() {
	color.NoColor = true
}

func ExtractFileName(s string) string {
	if strings.LastIndex(s, ".") >= 0 {
		s = s[:strings.LastIndex(s, ".")]
	}
	if strings.LastIndex(s, "/") >= 0 {
		s = s[strings.LastIndex(s, "/")+1:]
	}
	return s
}

func FlattenedFilename(s string) string {
	base := filepath.Base(s)
	withoutSuffix := strings.TrimSuffix(base, filepath.Ext(base))
	return strings.Replace(withoutSuffix, ".", "_", -1)
}

func Cyan(s string) string {
	return cyan(s)
}

func Emph(s string) string {
	return "'" + s + "'"
}

func Red(s string) string {
	return red(s)
}

func Green(s string) string {
	return green(s)
}

func Yellow(s string) string {
	return yellow(s)
}

func Bold(s string) string {
	return bold(s)
}

func Logo() string {
	titleText := " desmosc version " + VERSION + " "
	bar := strings.Repeat("═", len(titleText))
	return "\n  ╔" + bar + "╗\n  ║" + titleText + "║\n  ╚" + bar + "╝\n\n"
}

const HELP = "\nUsage: desmosc [--config file] [--log-level level] [--log-file file]\n" +
	"               <command> [args]\n\n" +
	"Commands are:\n\n" +
	"  build <files>          Compiles each file to a graph state document.\n" +
	"  check <files>          Compiles each file and reports any errors.\n" +
	"  repl                   Starts an interactive session.\n" +
	"  lsp                    Runs the language server on stdin/stdout.\n" +
	"  publish <file> <name>  Compiles a file and stores the graph in the configured database.\n\n"

// Describes where a span is in the given source.
func DescribePos(span token.Span, source, filename string) string {
	if filename == "" {
		filename = "REPL input"
	} else {
		filename = "'" + filename + "'"
	}
	if source == "" {
		return " in " + filename
	}
	line, col := token.Position(source, span.Start)
	endLine, endCol := token.Position(source, span.End)
	result := strconv.Itoa(line) + ":" + strconv.Itoa(col)
	if endLine == line && endCol > col+1 {
		result = result + "-" + strconv.Itoa(endCol-1)
	}
	return " at line " + result + " of " + filename
}

// Describes a token for the purposes of error messages etc.
func DescribeTok(tok *token.Token) string {
	switch tok.Type {
	case token.NEWLINE:
		return "newline"
	case token.EOF:
		return "end of input"
	case token.STRING:
		return "<string>"
	case token.NUMBER:
		return "<number>"
	case token.LOG:
		return "'log_" + tok.Literal + "'"
	}
	return "'" + tok.Literal + "'"
}

func DescribeOpposite(tok *token.Token) string {
	switch tok.Literal {
	case ")":
		return "'('"
	case "]":
		return "'['"
	case "}":
		return "'{'"
	case "(":
		return "')'"
	case "[":
		return "']'"
	case "{":
		return "'}'"
	}
	return "You goofed, that doesn't have an opposite."
}

// Underlines the part of a line of source covered by the span, for the REPL and CLI.
func Underline(source string, span token.Span) string {
	if span.Start < 0 || span.Start > len(source) {
		return ""
	}
	lineStart := strings.LastIndex(source[:span.Start], "\n") + 1
	lineEnd := strings.Index(source[span.Start:], "\n")
	if lineEnd < 0 {
		lineEnd = len(source)
	} else {
		lineEnd = lineEnd + span.Start
	}
	width := span.End - span.Start
	if width < 1 {
		width = 1
	}
	if span.Start+width > lineEnd {
		width = lineEnd - span.Start
		if width < 1 {
			width = 1
		}
	}
	return BULLET_SPACING + source[lineStart:lineEnd] + "\n" +
		BULLET_SPACING + strings.Repeat(" ", span.Start-lineStart) + red(strings.Repeat("^", width))
}
