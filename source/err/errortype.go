package err

import (
	"fmt"
	"strconv"
	"strings"

	"desmosc/source/text"
	"desmosc/source/token"
)

type Error struct {
	ErrorId string
	Message string
	Args    []any
	Span    token.Span
	Trace   []token.Span
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) AddToTrace(span token.Span) {
	e.Trace = append(e.Trace, span)
}

type Errors []*Error

func (ers Errors) Error() string {
	if len(ers) == 0 {
		return ""
	}
	if len(ers) == 1 {
		return ers[0].Message
	}
	return ers[0].Message + " (and " + strconv.Itoa(len(ers)-1) + " more)"
}

type ErrorCreator struct {
	Message     func(args ...any) string
	Explanation func(errors Errors, pos int, args ...any) string
}

// Kinds group error identifiers into the categories callers branch on.
type Kind int

const (
	Other Kind = iota
	Syntax
	UnknownVariable
	UnknownFunction
	UnknownModule
	WrongArgCount
	TypeMismatch
	InvalidReturnType
	UnresolvedImport
	InvalidModulePath
	Poisoned
)

var kindNames = map[Kind]string{
	Other:             "error",
	Syntax:            "syntax error",
	UnknownVariable:   "unknown variable",
	UnknownFunction:   "unknown function",
	UnknownModule:     "unknown module",
	WrongArgCount:     "wrong number of arguments",
	TypeMismatch:      "type mismatch",
	InvalidReturnType: "invalid return type",
	UnresolvedImport:  "unresolved import",
	InvalidModulePath: "invalid module path",
	Poisoned:          "error in erroneous code",
}

func (k Kind) String() string {
	return kindNames[k]
}

func (e *Error) Kind() Kind {
	switch {
	case strings.HasPrefix(e.ErrorId, "lex/"), strings.HasPrefix(e.ErrorId, "parse/"):
		return Syntax
	case strings.HasPrefix(e.ErrorId, "comp/type/"):
		return TypeMismatch
	}
	switch e.ErrorId {
	case UNKNOWN_VARIABLE:
		return UnknownVariable
	case UNKNOWN_FUNCTION:
		return UnknownFunction
	case UNKNOWN_MODULE:
		return UnknownModule
	case WRONG_ARG_COUNT:
		return WrongArgCount
	case INVALID_RETURN_TYPE:
		return InvalidReturnType
	case UNRESOLVED_IMPORT, NO_LOADER, IMPORT_CYCLE:
		return UnresolvedImport
	case INVALID_MODULE_PATH:
		return InvalidModulePath
	case POISONED:
		return Poisoned
	}
	return Other
}

// Identifiers of the compile errors that callers most often need to test for.
const (
	IMPORT_CYCLE        = "comp/import/cycle"
	INLINE_CAPTURE      = "comp/inline/capture"
	INVALID_MODULE_PATH = "comp/module/path"
	INVALID_RETURN_TYPE = "comp/return/type"
	NAME_CLASH          = "comp/name/clash"
	NO_LOADER           = "comp/import/loader"
	POISONED            = "comp/poison"
	REDEFINED           = "comp/ident/redefined"
	TYPE_MISMATCH_ARG   = "comp/type/arg"
	TYPE_MISMATCH_COND  = "comp/type/cond"
	TYPE_MISMATCH_INDEX = "comp/type/index/ind"
	TYPE_MISMATCH_LIST  = "comp/type/index/val"
	TYPE_MISMATCH_RANGE = "comp/type/range"
	UNKNOWN_FUNCTION    = "comp/func/unknown"
	UNKNOWN_MODULE      = "comp/module/unknown"
	UNKNOWN_VARIABLE    = "comp/ident/unknown"
	UNRESOLVED_IMPORT   = "comp/import/unresolved"
	WRONG_ARG_COUNT     = "comp/call/args"
)

func CreateErr(errorID string, span token.Span, args ...any) *Error {
	errorCreator, ok := ErrorCreatorMap[errorID]
	if !ok {
		panic("Tried to create error with unknown id '" + errorID + "'.")
	}
	return &Error{ErrorId: errorID, Message: errorCreator.Message(args...), Args: args, Span: span}
}

func Throw(errorID string, errors Errors, span token.Span, args ...any) Errors {
	return append(errors, CreateErr(errorID, span, args...))
}

// Returns the explanation of the error at position pos in the list, which may refer back to
// the error before it.
func (ers Errors) Explain(pos int) string {
	if pos < 0 || pos >= len(ers) {
		return "there is no error number " + strconv.Itoa(pos)
	}
	e := ers[pos]
	creator, ok := ErrorCreatorMap[e.ErrorId]
	if !ok || creator.Explanation == nil {
		return "Sorry, there is no further explanation of that error."
	}
	return creator.Explanation(ers, pos, e.Args...)
}

// Renders a numbered list of errors against the source they refer to.
func GetList(errors Errors, source, filename string) string {
	return GetListFrom(errors, func(token.FileID) (string, string, bool) { return source, filename, true })
}

// As GetList, for errors which may come from more than one file: sources looks up the text and
// name of the file a span belongs to.
func GetListFrom(errors Errors, sources func(token.FileID) (string, string, bool)) string {
	result := ""
	for i, e := range errors {
		source, filename, ok := sources(e.Span.File)
		if !ok {
			source, filename = "", ""
		}
		result = result + fmt.Sprintf("%v [%v] %v: %v%v.\n", text.BROKEN, i, text.ERROR, e.Message,
			text.DescribePos(e.Span, source, filename))
		if source != "" {
			result = result + text.Underline(source, e.Span) + "\n"
		}
	}
	return result
}

// Removes errors which only exist because of an earlier error, i.e. poisoned statements.
func (ers Errors) WithoutKnockOns() Errors {
	result := Errors{}
	for _, e := range ers {
		if e.Kind() != Poisoned {
			result = append(result, e)
		}
	}
	return result
}
