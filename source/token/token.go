package token

type TokenType string

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"

	// Identifiers + literals
	IDENT   = "IDENT"  // add, foobar, x, y, ...
	NUMBER  = "NUMBER" // 1343456, 1.23, .5
	STRING  = "STRING" // "foo"
	LOG     = "LOG"    // log_2, log_b; the literal is the base
	COMMENT = "COMMENT"

	// Operators
	ASSIGN   = "="
	PLUS     = "+"
	MINUS    = "-"
	ASTERISK = "*"
	SLASH    = "/"
	PERCENT  = "%"
	CARET    = "^"
	BANG     = "!"
	AT       = "@"
	DOT      = "."
	DOTDOT   = ".."

	LT    = "<"
	GT    = ">"
	LT_EQ = "<="
	GT_EQ = ">="

	COLON     = ":"
	NEWLINE   = "\n"
	SEMICOLON = ";"
	COMMA     = ","

	LPAREN = "("
	RPAREN = ")"
	LBRACE = "{"
	RBRACE = "}"
	LBRACK = "["
	RBRACK = "]"

	// Headwords
	IMPORT  = "import"
	INCLUDE = "include"
	INLINE  = "inline"

	// Keywords
	AS   = "as"
	BY   = "by"
	ELSE = "else"
	RAW  = "raw"

	// Type names
	NUMBER_TYPE = "Number"
	LIST_TYPE   = "List"
)

type Token struct {
	Type    TokenType
	Literal string
	Line    int
	ChStart int
	ChEnd   int
	Span    Span
}

var keywords = map[string]TokenType{
	"import":  IMPORT,
	"include": INCLUDE,
	"inline":  INLINE,

	"as":   AS,
	"by":   BY,
	"else": ELSE,
	"raw":  RAW,

	"Number": NUMBER_TYPE,
	"List":   LIST_TYPE,
}

func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

func TokenTypeIsHeadword(t TokenType) bool {
	return t == IMPORT || t == INCLUDE || t == INLINE
}

func TokenTypeIsComparator(t TokenType) bool {
	return t == ASSIGN || t == LT || t == GT || t == LT_EQ || t == GT_EQ
}

func TokenTypeIsValType(t TokenType) bool {
	return t == NUMBER_TYPE || t == LIST_TYPE
}
