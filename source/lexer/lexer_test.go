package lexer

import (
	"testing"

	"desmosc/source/token"
)

type testItem struct {
	expectedType    token.TokenType
	expectedLiteral string
	expectedLine    int
}

func TestStatements(t *testing.T) {
	input :=
		`x = 3.5 // The first line.
f(a, b: List): Number = a * total(b)
inline g(t) = log_2(t)^2 % .5
import "std/stats" as st
z = {x <= 0: -x, x >= 1: x!, x}
r = [1..10 by 2]
m = @sin(raw List "\\pi")[1]
`
	items := []testItem{
		{token.IDENT, "x", 1},
		{token.ASSIGN, "=", 1},
		{token.NUMBER, "3.5", 1},
		{token.NEWLINE, ";", 1},
		{token.IDENT, "f", 2},
		{token.LPAREN, "(", 2},
		{token.IDENT, "a", 2},
		{token.COMMA, ",", 2},
		{token.IDENT, "b", 2},
		{token.COLON, ":", 2},
		{token.LIST_TYPE, "List", 2},
		{token.RPAREN, ")", 2},
		{token.COLON, ":", 2},
		{token.NUMBER_TYPE, "Number", 2},
		{token.ASSIGN, "=", 2},
		{token.IDENT, "a", 2},
		{token.ASTERISK, "*", 2},
		{token.IDENT, "total", 2},
		{token.LPAREN, "(", 2},
		{token.IDENT, "b", 2},
		{token.RPAREN, ")", 2},
		{token.NEWLINE, ";", 2},
		{token.INLINE, "inline", 3},
		{token.IDENT, "g", 3},
		{token.LPAREN, "(", 3},
		{token.IDENT, "t", 3},
		{token.RPAREN, ")", 3},
		{token.ASSIGN, "=", 3},
		{token.LOG, "2", 3},
		{token.LPAREN, "(", 3},
		{token.IDENT, "t", 3},
		{token.RPAREN, ")", 3},
		{token.CARET, "^", 3},
		{token.NUMBER, "2", 3},
		{token.PERCENT, "%", 3},
		{token.NUMBER, ".5", 3},
		{token.NEWLINE, ";", 3},
		{token.IMPORT, "import", 4},
		{token.STRING, "std/stats", 4},
		{token.AS, "as", 4},
		{token.IDENT, "st", 4},
		{token.NEWLINE, ";", 4},
		{token.IDENT, "z", 5},
		{token.ASSIGN, "=", 5},
		{token.LBRACE, "{", 5},
		{token.IDENT, "x", 5},
		{token.LT_EQ, "<=", 5},
		{token.NUMBER, "0", 5},
		{token.COLON, ":", 5},
		{token.MINUS, "-", 5},
		{token.IDENT, "x", 5},
		{token.COMMA, ",", 5},
		{token.IDENT, "x", 5},
		{token.GT_EQ, ">=", 5},
		{token.NUMBER, "1", 5},
		{token.COLON, ":", 5},
		{token.IDENT, "x", 5},
		{token.BANG, "!", 5},
		{token.COMMA, ",", 5},
		{token.IDENT, "x", 5},
		{token.RBRACE, "}", 5},
		{token.NEWLINE, ";", 5},
		{token.IDENT, "r", 6},
		{token.ASSIGN, "=", 6},
		{token.LBRACK, "[", 6},
		{token.NUMBER, "1", 6},
		{token.DOTDOT, "..", 6},
		{token.NUMBER, "10", 6},
		{token.BY, "by", 6},
		{token.NUMBER, "2", 6},
		{token.RBRACK, "]", 6},
		{token.NEWLINE, ";", 6},
		{token.IDENT, "m", 7},
		{token.ASSIGN, "=", 7},
		{token.AT, "@", 7},
		{token.IDENT, "sin", 7},
		{token.LPAREN, "(", 7},
		{token.RAW, "raw", 7},
		{token.LIST_TYPE, "List", 7},
		{token.STRING, "\\pi", 7},
		{token.RPAREN, ")", 7},
		{token.LBRACK, "[", 7},
		{token.NUMBER, "1", 7},
		{token.RBRACK, "]", 7},
		{token.NEWLINE, ";", 7},
		{token.EOF, "EOF", 8},
	}
	testLexingOf(t, input, items)
}

func TestNewlinesInsideBrackets(t *testing.T) {
	input := "y = [1,\n     2,\n     3]\nw = y"
	items := []testItem{
		{token.IDENT, "y", 1},
		{token.ASSIGN, "=", 1},
		{token.LBRACK, "[", 1},
		{token.NUMBER, "1", 1},
		{token.COMMA, ",", 1},
		{token.NUMBER, "2", 2},
		{token.COMMA, ",", 2},
		{token.NUMBER, "3", 3},
		{token.RBRACK, "]", 3},
		{token.NEWLINE, ";", 3},
		{token.IDENT, "w", 4},
		{token.ASSIGN, "=", 4},
		{token.IDENT, "y", 4},
		{token.EOF, "EOF", 4},
	}
	testLexingOf(t, input, items)
}

func TestSpans(t *testing.T) {
	input := "ab + 1.25"
	l := NewLexer(3, input)
	want := []token.Span{{File: 3, Start: 0, End: 2}, {File: 3, Start: 3, End: 4}, {File: 3, Start: 5, End: 9}}
	for i, w := range want {
		tok := l.NextToken()
		if tok.Span != w {
			t.Fatalf("tests[%d] - span wrong. expected=%v, got=%v", i, w, tok.Span)
		}
		if got := tok.Span.Text(input); got != tok.Literal {
			t.Fatalf("tests[%d] - span covers %q, literal is %q", i, got, tok.Literal)
		}
	}
}

func TestLexerErrors(t *testing.T) {
	tests := []struct {
		input   string
		errorID string
	}{
		{`x = 1.2.3`, "lex/num"},
		{`x = "unclosed`, "lex/string"},
		{`x = log_(2)`, "lex/log"},
		{`x = 2 # 3`, "lex/char"},
	}
	for _, tt := range tests {
		l := NewLexer(0, tt.input)
		l.Tokens()
		if len(l.Ers) != 1 {
			t.Fatalf("input %q - expected 1 error, got %d", tt.input, len(l.Ers))
		}
		if l.Ers[0].ErrorId != tt.errorID {
			t.Fatalf("input %q - expected error %q, got %q", tt.input, tt.errorID, l.Ers[0].ErrorId)
		}
	}
}

func testLexingOf(t *testing.T, input string, items []testItem) {
	l := NewLexer(0, input)
	for i, tt := range items {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (literal %q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
		if tok.Line != tt.expectedLine {
			t.Fatalf("tests[%d] - line number wrong. expected=%d, got=%d",
				i, tt.expectedLine, tok.Line)
		}
	}
	if len(l.Ers) > 0 {
		t.Fatalf("unexpected lexer error: %v", l.Ers[0].Message)
	}
}
