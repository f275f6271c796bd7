package lexer

import (
	"fmt"
	"strings"
	"unicode"

	"desmosc/source/err"
	"desmosc/source/settings"
	"desmosc/source/token"
)

type lexer struct {
	runes   *RuneSupplier
	file    token.FileID
	tstart  int // the byte offset at the start of the token
	lineNo  int
	chStart int
	nesting int // depth of open brackets, inside which newlines are insignificant
	buffer  []token.Token
	Ers     err.Errors
}

func NewLexer(file token.FileID, input string) *lexer {
	return &lexer{
		runes:  NewRuneSupplier(input),
		file:   file,
		Ers:    err.Errors{},
		lineNo: 1,
	}
}

func (l *lexer) NextToken() token.Token {
	for len(l.buffer) == 0 {
		l.buffer = l.getTokens()
	}
	tok := l.buffer[0]
	l.buffer = l.buffer[1:]
	if settings.SHOW_LEXER {
		fmt.Printf("%-8v %-12q %v\n", tok.Type, tok.Literal, tok.Span)
	}
	return tok
}

// Returns the whole token stream, finishing with EOF.
func (l *lexer) Tokens() []token.Token {
	result := []token.Token{}
	for {
		tok := l.NextToken()
		result = append(result, tok)
		if tok.Type == token.EOF {
			return result
		}
	}
}

func (l *lexer) getTokens() []token.Token {
	l.skipWhitespace()
	l.lineNo, l.chStart, l.tstart = l.runes.Position()
	switch ch := l.runes.CurrentRune(); ch {
	case 0:
		return []token.Token{l.NewToken(token.EOF, "EOF")}
	case '\n':
		l.runes.Next()
		if l.nesting > 0 {
			return nil
		}
		return []token.Token{l.NewToken(token.NEWLINE, ";")}
	case ';':
		l.runes.Next()
		return []token.Token{l.NewToken(token.SEMICOLON, ";")}
	case '/':
		if l.runes.PeekRune() == '/' {
			l.runes.ReadComment()
			l.runes.Next()
			return nil
		}
		return l.single(token.SLASH)
	case '<':
		if l.runes.PeekRune() == '=' {
			return l.double(token.LT_EQ)
		}
		return l.single(token.LT)
	case '>':
		if l.runes.PeekRune() == '=' {
			return l.double(token.GT_EQ)
		}
		return l.single(token.GT)
	case '.':
		if l.runes.PeekRune() == '.' {
			return l.double(token.DOTDOT)
		}
		if isDigit(l.runes.PeekRune()) {
			return []token.Token{l.readNumber()}
		}
		return l.single(token.DOT)
	case '(', '[', '{':
		l.nesting++
		return l.single(token.TokenType(string(ch)))
	case ')', ']', '}':
		if l.nesting > 0 {
			l.nesting--
		}
		return l.single(token.TokenType(string(ch)))
	case '=', '+', '-', '*', '%', '^', '!', '@', ',', ':':
		return l.single(token.TokenType(string(ch)))
	case '"':
		return []token.Token{l.readString()}
	}
	ch := l.runes.CurrentRune()
	if isDigit(ch) {
		return []token.Token{l.readNumber()}
	}
	if isLetter(ch) {
		return []token.Token{l.readIdentifier()}
	}
	l.runes.Next()
	l.Throw("lex/char", string(ch))
	return []token.Token{l.NewToken(token.ILLEGAL, string(ch))}
}

func (l *lexer) single(t token.TokenType) []token.Token {
	l.runes.Next()
	return []token.Token{l.NewToken(t, string(t))}
}

func (l *lexer) double(t token.TokenType) []token.Token {
	l.runes.Next()
	l.runes.Next()
	return []token.Token{l.NewToken(t, string(t))}
}

func (l *lexer) readNumber() token.Token {
	start := l.runes.Offset()
	for isDigit(l.runes.CurrentRune()) {
		l.runes.Next()
	}
	// A '..' after digits is a range, not a decimal point.
	if l.runes.CurrentRune() == '.' && l.runes.PeekRune() != '.' {
		l.runes.Next()
		for isDigit(l.runes.CurrentRune()) {
			l.runes.Next()
		}
		if l.runes.CurrentRune() == '.' && isDigit(l.runes.PeekRune()) {
			for l.runes.CurrentRune() == '.' || isDigit(l.runes.CurrentRune()) {
				l.runes.Next()
			}
			lit := l.runes.Slice(start, l.runes.Offset())
			l.Throw("lex/num", lit)
			return l.NewToken(token.ILLEGAL, lit)
		}
	}
	return l.NewToken(token.NUMBER, l.runes.Slice(start, l.runes.Offset()))
}

func (l *lexer) readIdentifier() token.Token {
	start := l.runes.Offset()
	for isLetter(l.runes.CurrentRune()) || isDigit(l.runes.CurrentRune()) {
		l.runes.Next()
	}
	lit := l.runes.Slice(start, l.runes.Offset())
	if base, ok := strings.CutPrefix(lit, "log_"); ok {
		if base == "" {
			l.Throw("lex/log")
			return l.NewToken(token.ILLEGAL, lit)
		}
		return l.NewToken(token.LOG, base)
	}
	return l.NewToken(token.LookupIdent(lit), lit)
}

func (l *lexer) readString() token.Token {
	l.runes.Next()
	var b strings.Builder
	for {
		switch ch := l.runes.CurrentRune(); ch {
		case 0, '\n':
			l.Throw("lex/string")
			return l.NewToken(token.ILLEGAL, b.String())
		case '"':
			l.runes.Next()
			return l.NewToken(token.STRING, b.String())
		case '\\':
			if next := l.runes.PeekRune(); next == '"' || next == '\\' {
				l.runes.Next()
				b.WriteRune(next)
				l.runes.Next()
				continue
			}
			b.WriteRune(ch)
			l.runes.Next()
		default:
			b.WriteRune(ch)
			l.runes.Next()
		}
	}
}

func (l *lexer) skipWhitespace() {
	for ch := l.runes.CurrentRune(); ch == ' ' || ch == '\t' || ch == '\r'; ch = l.runes.CurrentRune() {
		l.runes.Next()
	}
}

func (l *lexer) NewToken(tokenType token.TokenType, st string) token.Token {
	end := l.runes.Offset()
	return token.Token{
		Type:    tokenType,
		Literal: st,
		Line:    l.lineNo,
		ChStart: l.chStart,
		ChEnd:   l.chStart + end - l.tstart,
		Span:    token.NewSpan(l.file, l.tstart, end),
	}
}

func (l *lexer) Throw(errorID string, args ...any) {
	l.Ers = err.Throw(errorID, l.Ers, token.NewSpan(l.file, l.tstart, l.runes.Offset()), args...)
}

func isLetter(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}
