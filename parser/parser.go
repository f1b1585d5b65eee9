package parser

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nisalV/jaseci/ast"
	"github.com/nisalV/jaseci/diag"
)

// ---------------------------------------------------------------------------
// Parser: Recursive descent parser for Jac syntax
// ---------------------------------------------------------------------------

// Parser parses Jac source code into an AST.
type Parser struct {
	lexer     *Lexer
	curToken  Token
	peekToken Token
	prevEnd   ast.Position // end of the last consumed token
	diags     diag.List
}

// ParseModule parses one source file. The module name is the file base name
// without its extension. The returned list carries every syntax error found;
// resolution passes require it to be free of errors.
func ParseModule(path, src string) (*ast.Module, diag.List) {
	p := newParser(src)
	mod := p.parseModule(path)
	ast.Link(mod)
	return mod, p.diags
}

func newParser(input string) *Parser {
	p := &Parser{lexer: NewLexer(input)}
	// Read two tokens to fill curToken and peekToken
	p.nextToken()
	p.nextToken()
	return p
}

// nextToken advances to the next token, reporting and skipping lexer errors
// so the grammar rules never see them.
func (p *Parser) nextToken() {
	p.prevEnd = tokenEnd(p.curToken)
	p.curToken = p.peekToken
	p.peekToken = p.lexer.NextToken()
	for p.peekToken.Type == TokenError {
		p.errorf(p.peekToken.Pos, "%s", p.peekToken.Literal)
		p.peekToken = p.lexer.NextToken()
	}
}

// curTokenIs checks if the current token is of the given type.
func (p *Parser) curTokenIs(t TokenType) bool {
	return p.curToken.Type == t
}

// peekTokenIs checks if the peek token is of the given type.
func (p *Parser) peekTokenIs(t TokenType) bool {
	return p.peekToken.Type == t
}

// expect advances if the current token matches, otherwise records an error.
func (p *Parser) expect(t TokenType) bool {
	if p.curTokenIs(t) {
		p.nextToken()
		return true
	}
	p.errorf(p.curToken.Pos, "expected %s, got %s", t, p.curToken.Type)
	return false
}

// errorf records a parse error at the given position.
func (p *Parser) errorf(pos ast.Position, format string, args ...interface{}) {
	p.diags.Addf(diag.SyntaxError, ast.MakeSpan(pos, pos), format, args...)
}

// tokenEnd estimates where a token ends. Identifiers, keywords, numbers and
// operators occupy exactly their literal; strings add their quotes.
func tokenEnd(tok Token) ast.Position {
	n := len(tok.Literal)
	if tok.Type == TokenString {
		n += 2
	}
	return ast.Position{
		Offset: tok.Pos.Offset + n,
		Line:   tok.Pos.Line,
		Column: tok.Pos.Column + n,
	}
}

func moduleName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ---------------------------------------------------------------------------
// Top-level parsing
// ---------------------------------------------------------------------------

func (p *Parser) parseModule(path string) *ast.Module {
	mod := &ast.Module{Name: moduleName(path), Source: path}
	start := p.curToken.Pos
	for !p.curTokenIs(TokenEOF) {
		if item := p.parseModuleItem(); item != nil {
			mod.Body = append(mod.Body, item)
		}
	}
	mod.SetSpan(ast.MakeSpan(start, p.prevEnd))
	return mod
}

func (p *Parser) parseModuleItem() ast.Node {
	switch p.curToken.Type {
	case TokenNode, TokenEdge, TokenWalker, TokenObj:
		return p.parseArchitype()
	case TokenEnum:
		return p.parseEnum()
	case TokenCan:
		return p.parseAbility()
	default:
		return p.parseStmt()
	}
}

// ---------------------------------------------------------------------------
// Declarations
// ---------------------------------------------------------------------------

func (p *Parser) parseArchitype() *ast.Architype {
	start := p.curToken.Pos
	var kind ast.ArchKind
	switch p.curToken.Type {
	case TokenNode:
		kind = ast.NodeArch
	case TokenEdge:
		kind = ast.EdgeArch
	case TokenWalker:
		kind = ast.WalkerArch
	case TokenObj:
		kind = ast.ObjectArch
	}
	p.nextToken()

	arch := &ast.Architype{Arch: kind, Name: p.parseName()}
	p.expect(TokenLBrace)
	for !p.curTokenIs(TokenRBrace) && !p.curTokenIs(TokenEOF) {
		arch.Body = append(arch.Body, p.parseMember()...)
	}
	p.expect(TokenRBrace)
	arch.SetSpan(ast.MakeSpan(start, p.prevEnd))
	return arch
}

// parseMember parses one architype body item. A has statement yields one
// node per declared variable.
func (p *Parser) parseMember() []ast.Node {
	switch p.curToken.Type {
	case TokenHas:
		return p.parseHasDecl()
	case TokenCan:
		return []ast.Node{p.parseAbility()}
	case TokenNode, TokenEdge, TokenWalker, TokenObj:
		return []ast.Node{p.parseArchitype()}
	case TokenEnum:
		return []ast.Node{p.parseEnum()}
	default:
		p.errorf(p.curToken.Pos, "unexpected %s in architype body", p.curToken.Type)
		p.nextToken()
		return nil
	}
}

func (p *Parser) parseHasDecl() []ast.Node {
	p.nextToken() // has
	var vars []ast.Node
	for {
		vars = append(vars, p.parseHasVar())
		if !p.curTokenIs(TokenComma) {
			break
		}
		p.nextToken()
	}
	p.expect(TokenSemi)
	return vars
}

func (p *Parser) parseHasVar() *ast.HasVar {
	start := p.curToken.Pos
	hv := &ast.HasVar{Name: p.parseName()}
	if p.curTokenIs(TokenColon) {
		p.nextToken()
		hv.TypeTag = p.parseTypeTag()
	}
	if p.curTokenIs(TokenAssign) {
		p.nextToken()
		hv.Value = p.parseExpr()
	}
	hv.SetSpan(ast.MakeSpan(start, p.prevEnd))
	return hv
}

func (p *Parser) parseAbility() *ast.Ability {
	start := p.curToken.Pos
	p.nextToken() // can
	ab := &ast.Ability{Name: p.parseName()}

	if p.curTokenIs(TokenLParen) {
		p.nextToken()
		if !p.curTokenIs(TokenRParen) {
			for {
				ab.Params = append(ab.Params, p.parseParam())
				if !p.curTokenIs(TokenComma) {
					break
				}
				p.nextToken()
			}
		}
		p.expect(TokenRParen)
	}

	if p.curTokenIs(TokenWith) {
		p.nextToken()
		switch p.curToken.Type {
		case TokenEntry:
			ab.Trigger = ast.TriggerEntry
			p.nextToken()
		case TokenExit:
			ab.Trigger = ast.TriggerExit
			p.nextToken()
		default:
			p.errorf(p.curToken.Pos, "expected entry or exit after with, got %s", p.curToken.Type)
		}
	}

	if p.curTokenIs(TokenSemi) {
		ab.Abstract = true
		p.nextToken()
	} else {
		p.expect(TokenLBrace)
		for !p.curTokenIs(TokenRBrace) && !p.curTokenIs(TokenEOF) {
			if stmt := p.parseStmt(); stmt != nil {
				ab.Body = append(ab.Body, stmt)
			}
		}
		p.expect(TokenRBrace)
	}
	ab.SetSpan(ast.MakeSpan(start, p.prevEnd))
	return ab
}

func (p *Parser) parseParam() *ast.ParamVar {
	start := p.curToken.Pos
	pv := &ast.ParamVar{Name: p.parseName()}
	if p.curTokenIs(TokenColon) {
		p.nextToken()
		pv.TypeTag = p.parseTypeTag()
	}
	if p.curTokenIs(TokenAssign) {
		p.nextToken()
		pv.Value = p.parseExpr()
	}
	pv.SetSpan(ast.MakeSpan(start, p.prevEnd))
	return pv
}

func (p *Parser) parseEnum() *ast.Enum {
	start := p.curToken.Pos
	p.nextToken() // enum
	en := &ast.Enum{Name: p.parseName()}
	p.expect(TokenLBrace)
	for !p.curTokenIs(TokenRBrace) && !p.curTokenIs(TokenEOF) {
		en.Items = append(en.Items, p.parseName())
		if p.curTokenIs(TokenComma) {
			p.nextToken()
			continue
		}
		break
	}
	p.expect(TokenRBrace)
	en.SetSpan(ast.MakeSpan(start, p.prevEnd))
	return en
}

// parseTypeTag parses a builtin type or an architype path.
func (p *Parser) parseTypeTag() ast.Node {
	if p.curTokenIs(TokenBuiltin) {
		tok := p.curToken
		p.nextToken()
		bt := &ast.BuiltinType{Name: tok.Literal}
		bt.SetSpan(ast.MakeSpan(tok.Pos, tokenEnd(tok)))
		return bt
	}
	return p.parseArchPath()
}

// parseArchPath parses NAME ("." NAME)*: one segment gives an ArchRef, more
// give an ArchRefChain.
func (p *Parser) parseArchPath() ast.Node {
	var segs []*ast.ArchRef
	for {
		nm := p.parseName()
		ref := &ast.ArchRef{Name: nm}
		ref.SetSpan(nm.Span())
		segs = append(segs, ref)
		if p.curTokenIs(TokenDot) && p.peekTokenIs(TokenIdent) {
			p.nextToken()
			continue
		}
		break
	}
	if len(segs) == 1 {
		return segs[0]
	}
	chain := &ast.ArchRefChain{Segments: segs}
	chain.SetSpan(ast.MakeSpan(segs[0].Span().Start, segs[len(segs)-1].Span().End))
	return chain
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func (p *Parser) parseStmt() ast.Node {
	switch p.curToken.Type {
	case TokenFor:
		return p.parseForStmt()
	case TokenDel:
		return p.parseDeleteStmt()
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseForStmt() *ast.InForStmt {
	start := p.curToken.Pos
	p.nextToken() // for
	st := &ast.InForStmt{}
	for {
		st.Names = append(st.Names, p.parseName())
		if !p.curTokenIs(TokenComma) {
			break
		}
		p.nextToken()
	}
	p.expect(TokenIn)
	st.Iter = p.parseExpr()
	p.expect(TokenLBrace)
	for !p.curTokenIs(TokenRBrace) && !p.curTokenIs(TokenEOF) {
		if stmt := p.parseStmt(); stmt != nil {
			st.Body = append(st.Body, stmt)
		}
	}
	p.expect(TokenRBrace)
	st.SetSpan(ast.MakeSpan(start, p.prevEnd))
	return st
}

func (p *Parser) parseDeleteStmt() *ast.DeleteStmt {
	start := p.curToken.Pos
	p.nextToken() // del
	st := &ast.DeleteStmt{Target: p.parseExpr()}
	p.expect(TokenSemi)
	st.SetSpan(ast.MakeSpan(start, p.prevEnd))
	return st
}

func (p *Parser) parseExprStmt() ast.Node {
	e := p.parseExpr()
	p.expect(TokenSemi)
	return e
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

func (p *Parser) parseExpr() ast.Node {
	return p.parseAssignment()
}

// parseAssignment is right-associative: a = b = c assigns c to b, then b
// to a.
func (p *Parser) parseAssignment() ast.Node {
	left := p.parseConnect()
	if !p.curTokenIs(TokenAssign) {
		return left
	}
	p.nextToken()
	value := p.parseAssignment()
	a := &ast.Assignment{Target: left, Value: value}
	a.SetSpan(ast.MakeSpan(left.Span().Start, value.Span().End))
	return a
}

// parseConnect handles the left-associative graph operators: connects,
// typed connects and infix del disconnects.
func (p *Parser) parseConnect() ast.Node {
	left := p.parseUnary()
	for {
		switch p.curToken.Type {
		case TokenConnectOut:
			p.nextToken()
			right := p.parseUnary()
			op := &ast.ConnectOp{Left: left, Right: right, Dir: ast.EdgeOut}
			op.SetSpan(ast.MakeSpan(left.Span().Start, right.Span().End))
			left = op
		case TokenConnectIn:
			p.nextToken()
			right := p.parseUnary()
			op := &ast.ConnectOp{Left: left, Right: right, Dir: ast.EdgeIn}
			op.SetSpan(ast.MakeSpan(left.Span().Start, right.Span().End))
			left = op
		case TokenConnectOutOpen: // +: Path :+>
			p.nextToken()
			arch := p.parseArchPath()
			p.expect(TokenConnectOutClose)
			right := p.parseUnary()
			op := &ast.ConnectOp{Left: left, Right: right, Dir: ast.EdgeOut, Arch: arch}
			op.SetSpan(ast.MakeSpan(left.Span().Start, right.Span().End))
			left = op
		case TokenConnectInOpen: // <+: Path :+
			p.nextToken()
			arch := p.parseArchPath()
			p.expect(TokenConnectInClose)
			right := p.parseUnary()
			op := &ast.ConnectOp{Left: left, Right: right, Dir: ast.EdgeIn, Arch: arch}
			op.SetSpan(ast.MakeSpan(left.Span().Start, right.Span().End))
			left = op
		case TokenDel: // infix disconnect: a del --> b
			p.nextToken()
			edge := p.parseEdgeRef()
			right := p.parseUnary()
			op := &ast.DisconnectOp{Left: left, Edge: edge, Right: right}
			op.SetSpan(ast.MakeSpan(left.Span().Start, right.Span().End))
			left = op
		default:
			return left
		}
	}
}

// parseEdgeRef parses -->, <--, <--> and the typed arrow forms.
func (p *Parser) parseEdgeRef() *ast.EdgeOpRef {
	start := p.curToken.Pos
	ref := &ast.EdgeOpRef{}
	switch p.curToken.Type {
	case TokenArrowOut:
		ref.Dir = ast.EdgeOut
		p.nextToken()
	case TokenArrowIn:
		ref.Dir = ast.EdgeIn
		p.nextToken()
	case TokenArrowAny:
		ref.Dir = ast.EdgeAny
		p.nextToken()
	case TokenArrowOutOpen: // ->: Path :->
		ref.Dir = ast.EdgeOut
		p.nextToken()
		ref.Arch = p.parseArchPath()
		p.expect(TokenArrowOutClose)
	case TokenArrowInOpen: // <-: Path :-
		ref.Dir = ast.EdgeIn
		p.nextToken()
		ref.Arch = p.parseArchPath()
		p.expect(TokenArrowInClose)
	default:
		p.errorf(p.curToken.Pos, "expected edge reference, got %s", p.curToken.Type)
		p.nextToken()
	}
	ref.SetSpan(ast.MakeSpan(start, p.prevEnd))
	return ref
}

func (p *Parser) parseUnary() ast.Node {
	e := p.parsePostfix()
	if !p.curTokenIs(TokenAs) {
		return e
	}
	p.nextToken()
	alias := p.parseName()
	item := &ast.ExprAsItem{Expr: e, Alias: alias}
	item.SetSpan(ast.MakeSpan(e.Span().Start, alias.Span().End))
	return item
}

func (p *Parser) parsePostfix() ast.Node {
	e := p.parsePrimary()
	for {
		switch p.curToken.Type {
		case TokenDot:
			at := &ast.AtomTrailer{Target: e}
			for p.curTokenIs(TokenDot) {
				p.nextToken()
				at.Trailers = append(at.Trailers, p.parseName())
			}
			at.SetSpan(ast.MakeSpan(e.Span().Start, p.prevEnd))
			e = at
		case TokenLParen:
			e = p.parseFuncCall(e)
		case TokenLBracket:
			e = p.parseIndexSlice(e)
		case TokenFilterOpen:
			e = p.parseFilterCompr(e)
		default:
			return e
		}
	}
}

func (p *Parser) parseFuncCall(target ast.Node) *ast.FuncCall {
	p.nextToken() // (
	call := &ast.FuncCall{Target: target}
	if !p.curTokenIs(TokenRParen) {
		for {
			call.Args = append(call.Args, p.parseExpr())
			if !p.curTokenIs(TokenComma) {
				break
			}
			p.nextToken()
		}
	}
	p.expect(TokenRParen)
	call.SetSpan(ast.MakeSpan(target.Span().Start, p.prevEnd))
	return call
}

func (p *Parser) parseIndexSlice(target ast.Node) *ast.IndexSlice {
	p.nextToken() // [
	idx := &ast.IndexSlice{Target: target}
	if !p.curTokenIs(TokenColon) {
		idx.Start = p.parseExpr()
	}
	if p.curTokenIs(TokenColon) {
		idx.IsRange = true
		p.nextToken()
		if !p.curTokenIs(TokenColon) && !p.curTokenIs(TokenRBracket) {
			idx.Stop = p.parseExpr()
		}
		if p.curTokenIs(TokenColon) {
			p.nextToken()
			if !p.curTokenIs(TokenRBracket) {
				idx.Step = p.parseExpr()
			}
		}
	}
	p.expect(TokenRBracket)
	idx.SetSpan(ast.MakeSpan(target.Span().Start, p.prevEnd))
	return idx
}

func (p *Parser) parseFilterCompr(target ast.Node) *ast.FilterCompr {
	p.nextToken() // (?
	fc := &ast.FilterCompr{Target: target}
	for {
		cond := ast.FilterCond{Lhs: p.parseConnect()}
		switch p.curToken.Type {
		case TokenEq, TokenNe, TokenLt, TokenGt, TokenLe, TokenGe:
			opTok := p.curToken
			p.nextToken()
			op := &ast.Token{Literal: opTok.Literal}
			op.SetSpan(ast.MakeSpan(opTok.Pos, tokenEnd(opTok)))
			cond.Op = op
			cond.Rhs = p.parseConnect()
		}
		fc.Conds = append(fc.Conds, cond)
		if !p.curTokenIs(TokenComma) {
			break
		}
		p.nextToken()
	}
	p.expect(TokenRParen)
	fc.SetSpan(ast.MakeSpan(target.Span().Start, p.prevEnd))
	return fc
}

func (p *Parser) parsePrimary() ast.Node {
	tok := p.curToken
	switch tok.Type {
	case TokenInt:
		p.nextToken()
		v, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			p.errorf(tok.Pos, "invalid integer: %s", tok.Literal)
		}
		n := &ast.IntLiteral{Value: v}
		n.SetSpan(ast.MakeSpan(tok.Pos, tokenEnd(tok)))
		return n

	case TokenFloat:
		p.nextToken()
		v, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			p.errorf(tok.Pos, "invalid float: %s", tok.Literal)
		}
		n := &ast.FloatLiteral{Value: v}
		n.SetSpan(ast.MakeSpan(tok.Pos, tokenEnd(tok)))
		return n

	case TokenString:
		p.nextToken()
		n := &ast.StringLiteral{Value: tok.Literal}
		n.SetSpan(ast.MakeSpan(tok.Pos, tokenEnd(tok)))
		return n

	case TokenTrue, TokenFalse:
		p.nextToken()
		n := &ast.BoolLiteral{Value: tok.Type == TokenTrue}
		n.SetSpan(ast.MakeSpan(tok.Pos, tokenEnd(tok)))
		return n

	case TokenBuiltin:
		p.nextToken()
		n := &ast.BuiltinType{Name: tok.Literal}
		n.SetSpan(ast.MakeSpan(tok.Pos, tokenEnd(tok)))
		return n

	case TokenSelf, TokenHere, TokenVisitor, TokenRoot:
		p.nextToken()
		n := &ast.SpecialVarRef{Var: specialVarFor(tok.Type)}
		n.SetSpan(ast.MakeSpan(tok.Pos, tokenEnd(tok)))
		return n

	case TokenIdent:
		p.nextToken()
		n := &ast.Name{Value: tok.Literal}
		n.SetSpan(ast.MakeSpan(tok.Pos, tokenEnd(tok)))
		return n

	case TokenLParen:
		p.nextToken()
		e := p.parseExpr()
		p.expect(TokenRParen)
		return e

	case TokenLBracket:
		return p.parseInnerCompr()

	case TokenArrowOut, TokenArrowIn, TokenArrowAny, TokenArrowOutOpen, TokenArrowInOpen:
		return p.parseEdgeRef()

	default:
		p.errorf(tok.Pos, "unexpected token: %s", tok.Type)
		p.nextToken()
		n := &ast.Name{Value: "_"}
		n.SetSpan(ast.MakeSpan(tok.Pos, tok.Pos))
		return n
	}
}

// parseInnerCompr parses [out for names in iter if cond].
func (p *Parser) parseInnerCompr() *ast.InnerCompr {
	start := p.curToken.Pos
	p.nextToken() // [
	c := &ast.InnerCompr{Out: p.parseExpr()}
	p.expect(TokenFor)
	for {
		c.Names = append(c.Names, p.parseName())
		if !p.curTokenIs(TokenComma) {
			break
		}
		p.nextToken()
	}
	p.expect(TokenIn)
	c.Iter = p.parseExpr()
	if p.curTokenIs(TokenIf) {
		p.nextToken()
		c.Cond = p.parseExpr()
	}
	p.expect(TokenRBracket)
	c.SetSpan(ast.MakeSpan(start, p.prevEnd))
	return c
}

// parseName parses one identifier.
func (p *Parser) parseName() *ast.Name {
	if !p.curTokenIs(TokenIdent) {
		p.errorf(p.curToken.Pos, "expected identifier, got %s", p.curToken.Type)
		n := &ast.Name{Value: "_"}
		n.SetSpan(ast.MakeSpan(p.curToken.Pos, p.curToken.Pos))
		return n
	}
	tok := p.curToken
	p.nextToken()
	n := &ast.Name{Value: tok.Literal}
	n.SetSpan(ast.MakeSpan(tok.Pos, tokenEnd(tok)))
	return n
}

func specialVarFor(t TokenType) ast.SpecialVar {
	switch t {
	case TokenSelf:
		return ast.SpecialSelf
	case TokenHere:
		return ast.SpecialHere
	case TokenVisitor:
		return ast.SpecialVisitor
	default:
		return ast.SpecialRoot
	}
}
