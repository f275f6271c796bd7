package parser

import (
	"fmt"

	"desmosc/source/ast"
	"desmosc/source/err"
	"desmosc/source/latex"
	"desmosc/source/lexer"
	"desmosc/source/settings"
	"desmosc/source/text"
	"desmosc/source/token"
	"desmosc/source/types"
)

type Parser struct {
	tokens    []token.Token
	pos       int // the index of curToken
	curToken  token.Token
	peekToken token.Token
	Errors    err.Errors
}

// Lexes the input and returns a parser positioned at its first token. Any errors from the
// lexer are already in the parser's error list.
func New(file token.FileID, input string) *Parser {
	l := lexer.NewLexer(file, input)
	p := &Parser{tokens: l.Tokens(), Errors: err.Errors{}}
	p.Errors = append(p.Errors, l.Ers...)
	p.pos = -1
	p.NextToken()
	return p
}

// Parses a whole source file. A statement which contains a syntax error is replaced by an
// expression statement containing an error node, so that the compiler can still work on the
// rest of the program.
func ParseProgram(file token.FileID, input string) (ast.Statements, err.Errors) {
	p := New(file, input)
	stmts := p.ParseProgram()
	return stmts, p.Errors
}

var binaryOperators = map[token.TokenType]latex.BinaryOperator{
	token.PLUS:     latex.Add,
	token.MINUS:    latex.Subtract,
	token.ASTERISK: latex.Multiply,
	token.SLASH:    latex.Divide,
	token.PERCENT:  latex.Mod,
	token.CARET:    latex.Exponent,
}

var comparators = map[token.TokenType]latex.CompareOperator{
	token.ASSIGN: latex.Equal,
	token.LT:     latex.LessThan,
	token.GT:     latex.GreaterThan,
	token.LT_EQ:  latex.LessThanEqual,
	token.GT_EQ:  latex.GreaterThanEqual,
}

func (p *Parser) NextToken() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	p.curToken = p.tokens[p.pos]
	if p.pos+1 < len(p.tokens) {
		p.peekToken = p.tokens[p.pos+1]
	} else {
		p.peekToken = p.curToken
	}
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.NextToken()
		return true
	}
	return false
}

func isTerminator(tok token.Token) bool {
	return tok.Type == token.NEWLINE || tok.Type == token.SEMICOLON || tok.Type == token.EOF
}

// The span from the start of the given token to the end of the current one.
func (p *Parser) spanFrom(start token.Token) token.Span {
	return start.Span.Join(p.curToken.Span)
}

func (p *Parser) ParseProgram() ast.Statements {
	stmts := ast.Statements{}
	for !p.curTokenIs(token.EOF) {
		if isTerminator(p.curToken) {
			p.NextToken()
			continue
		}
		errorCount := len(p.Errors)
		start := p.curToken
		stmt := p.parseStatement()
		if !isTerminator(p.curToken) {
			if !isTerminator(p.peekToken) {
				if len(p.Errors) == errorCount {
					p.Throw("parse/expected", &p.peekToken, text.DescribeTok(&p.peekToken))
				}
				for !isTerminator(p.peekToken) {
					p.NextToken()
				}
			}
			p.NextToken()
		}
		if len(p.Errors) > errorCount {
			span := start.Span.Join(p.curToken.Span)
			stmt = &ast.ExpressionStatement{Token: start, Span: span,
				Expression: &ast.ErrorExpression{Token: start, Span: span}}
		}
		if settings.SHOW_PARSER {
			fmt.Println(stmt.String())
		}
		stmts = append(stmts, stmt)
	}
	return stmts
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.IMPORT, token.INCLUDE:
		return p.parseImportStatement()
	case token.INLINE:
		start := p.curToken
		p.NextToken()
		if p.curTokenIs(token.IDENT) && p.peekTokenIs(token.ASSIGN) {
			return p.parseVarDef(start, true)
		}
		if p.curTokenIs(token.IDENT) && p.peekTokenIs(token.LPAREN) {
			return p.parseFuncDef(start, true)
		}
		p.Throw("parse/assign/lhs", &p.curToken)
		return &ast.ExpressionStatement{Token: start, Span: p.spanFrom(start),
			Expression: &ast.ErrorExpression{Token: start, Span: p.spanFrom(start)}}
	case token.IDENT:
		if p.peekTokenIs(token.ASSIGN) {
			return p.parseVarDef(p.curToken, false)
		}
		if p.peekTokenIs(token.LPAREN) && p.looksLikeFuncDef() {
			return p.parseFuncDef(p.curToken, false)
		}
	}
	start := p.curToken
	exp := p.parseExpression(LOWEST)
	return &ast.ExpressionStatement{Token: start, Span: exp.GetSpan(), Expression: exp}
}

// Looks ahead from an identifier followed by '(' to see if the matching ')' is followed by a
// return annotation or an '=', in which case this is the header of a function definition.
func (p *Parser) looksLikeFuncDef() bool {
	depth := 0
	for i := p.pos + 1; i < len(p.tokens); i++ {
		switch p.tokens[i].Type {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
			if depth == 0 {
				if i+1 < len(p.tokens) {
					next := p.tokens[i+1].Type
					return next == token.ASSIGN || next == token.COLON
				}
				return false
			}
		case token.NEWLINE, token.SEMICOLON, token.EOF:
			return false
		}
	}
	return false
}

func (p *Parser) parseVarDef(start token.Token, inline bool) ast.Statement {
	name := p.curToken.Literal
	p.NextToken() // The '='.
	p.NextToken()
	value := p.parseExpression(LOWEST)
	return &ast.VarDef{Token: start, Span: p.spanFrom(start), Name: name, Value: value, Inline: inline}
}

func (p *Parser) parseFuncDef(start token.Token, inline bool) ast.Statement {
	def := ast.FunctionDefinition{Name: p.curToken.Literal, Args: []ast.Parameter{}, Inline: inline}
	p.NextToken() // The '('.
	if p.peekTokenIs(token.RPAREN) {
		p.NextToken()
	} else {
		for {
			if !p.expectPeek(token.IDENT) {
				p.Throw("parse/funcdef/param", &p.peekToken, text.DescribeTok(&p.peekToken))
				return p.errorStatement(start)
			}
			param := ast.Parameter{Span: p.curToken.Span, Name: p.curToken.Literal, Type: types.NumberVal}
			if p.peekTokenIs(token.COLON) {
				p.NextToken()
				valType, ok := p.parseValType()
				if !ok {
					return p.errorStatement(start)
				}
				param.Type = valType
				param.Span = param.Span.Join(p.curToken.Span)
			}
			def.Args = append(def.Args, param)
			if p.peekTokenIs(token.COMMA) {
				p.NextToken()
				continue
			}
			if !p.expectPeek(token.RPAREN) {
				p.Throw("parse/close", &p.peekToken, "')'", text.DescribeTok(&p.peekToken))
				return p.errorStatement(start)
			}
			break
		}
	}
	if p.peekTokenIs(token.COLON) {
		p.NextToken()
		valType, ok := p.parseValType()
		if !ok {
			return p.errorStatement(start)
		}
		def.RetAnnotation = &valType
	}
	if !p.expectPeek(token.ASSIGN) {
		p.Throw("parse/assign/lhs", &p.peekToken)
		return p.errorStatement(start)
	}
	p.NextToken()
	body := p.parseExpression(LOWEST)
	return &ast.FuncDef{Token: start, Span: p.spanFrom(start), Def: def, Body: body}
}

// Parses the type name following the current token.
func (p *Parser) parseValType() (types.ValType, bool) {
	switch p.peekToken.Type {
	case token.NUMBER_TYPE:
		p.NextToken()
		return types.NumberVal, true
	case token.LIST_TYPE:
		p.NextToken()
		return types.ListVal, true
	}
	p.Throw("parse/type", &p.peekToken, text.DescribeTok(&p.peekToken))
	return types.NumberVal, false
}

func (p *Parser) parseImportStatement() ast.Statement {
	start := p.curToken
	if !p.expectPeek(token.STRING) {
		p.Throw("parse/import/path", &p.peekToken, text.DescribeTok(&p.peekToken))
		return p.errorStatement(start)
	}
	stmt := &ast.ImportStatement{Token: start, Path: p.curToken.Literal}
	if start.Type == token.IMPORT {
		if !p.expectPeek(token.AS) || !p.expectPeek(token.IDENT) {
			p.Throw("parse/import/as", &p.peekToken, text.DescribeTok(&p.peekToken))
			return p.errorStatement(start)
		}
		stmt.Mode = ast.ImportMode{Name: p.curToken.Literal}
	}
	stmt.Span = p.spanFrom(start)
	return stmt
}

func (p *Parser) errorStatement(start token.Token) ast.Statement {
	span := p.spanFrom(start)
	return &ast.ExpressionStatement{Token: start, Span: span, Expression: &ast.ErrorExpression{Token: start, Span: span}}
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	var leftExp ast.Expression

	switch p.curToken.Type {
	case token.AT:
		leftExp = p.parseMapExpression()
	case token.IDENT:
		leftExp = p.parseIdentifier()
	case token.ILLEGAL:
		// The lexer has already complained about this.
		leftExp = &ast.ErrorExpression{Token: p.curToken, Span: p.curToken.Span}
	case token.LBRACE:
		leftExp = p.parsePiecewiseExpression()
	case token.LBRACK:
		leftExp = p.parseListExpression()
	case token.LOG:
		leftExp = p.parseLogExpression()
	case token.LPAREN:
		leftExp = p.parseGroupedExpression()
	case token.MINUS:
		leftExp = p.parseNegation()
	case token.NUMBER:
		leftExp = &ast.NumberLiteral{Token: p.curToken, Span: p.curToken.Span, Value: p.curToken.Literal}
	case token.RAW:
		leftExp = p.parseRawLatex()
	default:
		p.Throw("parse/prefix", &p.curToken, text.DescribeTok(&p.curToken))
		return &ast.ErrorExpression{Token: p.curToken, Span: p.curToken.Span}
	}

	for !isTerminator(p.peekToken) && precedence < p.peekPrecedence() {
		p.NextToken()
		switch p.curToken.Type {
		case token.BANG:
			leftExp = &ast.UnaryExpression{Token: p.curToken, Span: leftExp.GetSpan().Join(p.curToken.Span),
				Operand: leftExp, Operator: latex.Factorial}
		case token.DOT:
			leftExp = p.parseNamespaceExpression(leftExp)
		case token.LBRACK:
			leftExp = p.parseIndexExpression(leftExp)
		case token.LPAREN:
			leftExp = p.parseCallExpression(leftExp)
		default:
			if _, ok := comparators[p.curToken.Type]; ok {
				p.Throw("parse/compare", &p.curToken, p.curToken.Literal)
				tok := p.curToken
				p.NextToken()
				right := p.parseExpression(COMPARE)
				return &ast.ErrorExpression{Token: tok, Span: leftExp.GetSpan().Join(right.GetSpan())}
			}
			leftExp = p.parseInfixExpression(leftExp)
		}
	}
	return leftExp
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Span: p.curToken.Span, Value: p.curToken.Literal}
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.BinaryExpression{
		Token:    p.curToken,
		Operator: binaryOperators[p.curToken.Type],
		Left:     left,
	}
	precedence := p.curPrecedence()
	if p.curTokenIs(token.CARET) {
		precedence-- // Exponentiation is right-associative.
	}
	p.NextToken()
	expression.Right = p.parseExpression(precedence)
	expression.Span = left.GetSpan().Join(expression.Right.GetSpan())
	return expression
}

func (p *Parser) parseNegation() ast.Expression {
	tok := p.curToken
	p.NextToken()
	operand := p.parseExpression(MINUS)
	return &ast.UnaryExpression{Token: tok, Span: tok.Span.Join(operand.GetSpan()), Operand: operand, Operator: latex.Negate}
}

func (p *Parser) parseMapExpression() ast.Expression {
	tok := p.curToken
	p.NextToken()
	inner := p.parseExpression(MINUS)
	return &ast.MapExpression{Token: tok, Span: tok.Span.Join(inner.GetSpan()), Inner: inner}
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	start := p.curToken
	p.NextToken()
	exp := p.parseExpression(LOWEST)
	if !p.expectPeek(token.RPAREN) {
		p.Throw("parse/close", &p.peekToken, "')'", text.DescribeTok(&p.peekToken))
		return &ast.ErrorExpression{Token: start, Span: p.spanFrom(start)}
	}
	return exp
}

func (p *Parser) parseNamespaceExpression(left ast.Expression) ast.Expression {
	dot := p.curToken
	var path []string
	switch left := left.(type) {
	case *ast.Identifier:
		path = []string{left.Value}
	case *ast.QualifiedIdentifier:
		path = append(append([]string{}, left.Path...), left.Item)
	default:
		p.Throw("parse/module/name", &dot, text.DescribeTok(&dot))
		return &ast.ErrorExpression{Token: dot, Span: left.GetSpan().Join(dot.Span)}
	}
	if !p.expectPeek(token.IDENT) {
		p.Throw("parse/module/name", &p.peekToken, text.DescribeTok(&p.peekToken))
		return &ast.ErrorExpression{Token: dot, Span: left.GetSpan().Join(dot.Span)}
	}
	return &ast.QualifiedIdentifier{Token: *left.GetToken(), Span: left.GetSpan().Join(p.curToken.Span),
		Path: path, Item: p.curToken.Literal}
}

func (p *Parser) parseIndexExpression(left ast.Expression) ast.Expression {
	exp := &ast.IndexExpression{Token: p.curToken, Val: left}
	p.NextToken()
	exp.Index = p.parseExpression(LOWEST)
	if !p.expectPeek(token.RBRACK) {
		p.Throw("parse/close", &p.peekToken, "']'", text.DescribeTok(&p.peekToken))
		return &ast.ErrorExpression{Token: exp.Token, Span: left.GetSpan().Join(p.curToken.Span)}
	}
	exp.Span = left.GetSpan().Join(p.curToken.Span)
	return exp
}

func (p *Parser) parseCallExpression(left ast.Expression) ast.Expression {
	call := &ast.CallExpression{Token: *left.GetToken()}
	switch left := left.(type) {
	case *ast.Identifier:
		call.Func = ast.Function{Name: left.Value}
	case *ast.QualifiedIdentifier:
		call.Path = left.Path
		call.Func = ast.Function{Name: left.Item}
	default:
		p.Throw("parse/expected", &p.curToken, text.DescribeTok(&p.curToken))
		p.parseArguments()
		return &ast.ErrorExpression{Token: p.curToken, Span: left.GetSpan().Join(p.curToken.Span)}
	}
	args, ok := p.parseArguments()
	if !ok {
		return &ast.ErrorExpression{Token: call.Token, Span: left.GetSpan().Join(p.curToken.Span)}
	}
	call.Args = args
	call.Span = left.GetSpan().Join(p.curToken.Span)
	return call
}

func (p *Parser) parseLogExpression() ast.Expression {
	tok := p.curToken
	if !p.expectPeek(token.LPAREN) {
		p.Throw("parse/close", &p.peekToken, "'('", text.DescribeTok(&p.peekToken))
		return &ast.ErrorExpression{Token: tok, Span: tok.Span}
	}
	args, ok := p.parseArguments()
	if !ok {
		return &ast.ErrorExpression{Token: tok, Span: p.spanFrom(tok)}
	}
	return &ast.CallExpression{Token: tok, Span: p.spanFrom(tok), Func: ast.Function{Base: tok.Literal, IsLog: true}, Args: args}
}

// Parses a comma-separated list of expressions, starting at the '(' and finishing at the ')'.
func (p *Parser) parseArguments() ([]ast.Expression, bool) {
	args := []ast.Expression{}
	if p.peekTokenIs(token.RPAREN) {
		p.NextToken()
		return args, true
	}
	p.NextToken()
	args = append(args, p.parseExpression(LOWEST))
	for p.peekTokenIs(token.COMMA) {
		p.NextToken()
		p.NextToken()
		args = append(args, p.parseExpression(LOWEST))
	}
	if !p.expectPeek(token.RPAREN) {
		p.Throw("parse/close", &p.peekToken, "')'", text.DescribeTok(&p.peekToken))
		return nil, false
	}
	return args, true
}

// Parses either a list or a range.
func (p *Parser) parseListExpression() ast.Expression {
	start := p.curToken
	if p.peekTokenIs(token.RBRACK) {
		p.NextToken()
		return &ast.ListExpression{Token: start, Span: p.spanFrom(start), Items: []ast.Expression{}}
	}
	p.NextToken()
	first := p.parseExpression(LOWEST)
	if p.peekTokenIs(token.DOTDOT) {
		p.NextToken()
		p.NextToken()
		rng := &ast.RangeExpression{Token: start, First: first, End: p.parseExpression(LOWEST)}
		if p.peekTokenIs(token.BY) {
			p.NextToken()
			p.NextToken()
			rng.Step = p.parseExpression(LOWEST)
		}
		if !p.expectPeek(token.RBRACK) {
			p.Throw("parse/close", &p.peekToken, "']'", text.DescribeTok(&p.peekToken))
			return &ast.ErrorExpression{Token: start, Span: p.spanFrom(start)}
		}
		rng.Span = p.spanFrom(start)
		return rng
	}
	items := []ast.Expression{first}
	for p.peekTokenIs(token.COMMA) {
		p.NextToken()
		p.NextToken()
		items = append(items, p.parseExpression(LOWEST))
	}
	if !p.expectPeek(token.RBRACK) {
		p.Throw("parse/close", &p.peekToken, "']'", text.DescribeTok(&p.peekToken))
		return &ast.ErrorExpression{Token: start, Span: p.spanFrom(start)}
	}
	return &ast.ListExpression{Token: start, Span: p.spanFrom(start), Items: items}
}

// Parses e.g. {x < 0: -x, x > 1: 1, x}. The final element, which has no condition, is the
// default and is compulsory.
func (p *Parser) parsePiecewiseExpression() ast.Expression {
	start := p.curToken
	branches := []ast.Branch{}
	for {
		p.NextToken()
		left := p.parseExpression(COMPARE)
		op, isBranch := comparators[p.peekToken.Type]
		if !isBranch {
			if len(branches) == 0 {
				p.Throw("parse/piecewise/colon", &p.peekToken, text.DescribeTok(&p.peekToken))
				return &ast.ErrorExpression{Token: start, Span: p.spanFrom(start)}
			}
			if !p.expectPeek(token.RBRACE) {
				p.Throw("parse/close", &p.peekToken, "'}'", text.DescribeTok(&p.peekToken))
				return &ast.ErrorExpression{Token: start, Span: p.spanFrom(start)}
			}
			return &ast.PiecewiseExpression{Token: start, Span: p.spanFrom(start),
				First: branches[0], Rest: branches[1:], Default: left}
		}
		p.NextToken()
		p.NextToken()
		right := p.parseExpression(COMPARE)
		if !p.expectPeek(token.COLON) {
			p.Throw("parse/piecewise/colon", &p.peekToken, text.DescribeTok(&p.peekToken))
			return &ast.ErrorExpression{Token: start, Span: p.spanFrom(start)}
		}
		p.NextToken()
		value := p.parseExpression(LOWEST)
		branches = append(branches, ast.Branch{CondLeft: left, Cond: op, CondRight: right, Value: value})
		if !p.expectPeek(token.COMMA) {
			p.Throw("parse/piecewise/default", &p.peekToken)
			return &ast.ErrorExpression{Token: start, Span: p.spanFrom(start)}
		}
	}
}

func (p *Parser) parseRawLatex() ast.Expression {
	start := p.curToken
	valType, ok := p.parseValType()
	if !ok {
		return &ast.ErrorExpression{Token: start, Span: p.spanFrom(start)}
	}
	if !p.expectPeek(token.STRING) {
		p.Throw("parse/raw/string", &p.peekToken, text.DescribeTok(&p.peekToken))
		return &ast.ErrorExpression{Token: start, Span: p.spanFrom(start)}
	}
	return &ast.RawLatex{Token: start, Span: p.spanFrom(start), Type: valType, Text: p.curToken.Literal}
}

func (p *Parser) Throw(errorID string, tok *token.Token, args ...any) {
	p.Errors = err.Throw(errorID, p.Errors, tok.Span, args...)
}

func (p *Parser) ErrorsExist() bool {
	return len(p.Errors) > 0
}

func (p *Parser) ReturnErrors(source string) string {
	return err.GetList(p.Errors, source, "")
}

func (p *Parser) ClearErrors() {
	p.Errors = err.Errors{}
}
