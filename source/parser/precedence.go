package parser

import "desmosc/source/token"

// Data and fuctions for sorting out the operator precedences.

// NOTE: comparisons have the lowest precedence of any operator because they only ever appear
// as the conditions of piecewise expressions, where both sides are parsed at COMPARE and then
// the comparator is consumed by hand. Anywhere else, meeting one is an error.

const (
	_ int = iota
	LOWEST
	COMPARE  // = < > <= >=
	SUM      // + or -
	PRODUCT  // * or / or %
	MINUS    // - or @ as a prefix
	EXPONENT // ^
	SUFFIX   // !
	INDEX    // after [ or (
	NAMESPACE
)

var precedences = map[token.TokenType]int{
	token.ASSIGN:   COMPARE,
	token.LT:       COMPARE,
	token.GT:       COMPARE,
	token.LT_EQ:    COMPARE,
	token.GT_EQ:    COMPARE,
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.ASTERISK: PRODUCT,
	token.SLASH:    PRODUCT,
	token.PERCENT:  PRODUCT,
	token.CARET:    EXPONENT,
	token.BANG:     SUFFIX,
	token.LBRACK:   INDEX,
	token.LPAREN:   INDEX,
	token.DOT:      NAMESPACE,
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}
