package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nisalV/jaseci/ast"
)

// ---------------------------------------------------------------------------
// Lexer: tokenizer for Jac syntax
// ---------------------------------------------------------------------------

// Lexer tokenizes Jac source code.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      rune // current character
	line    int  // line of the current char (1-based)
	col     int  // column of the current char (1-based)
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input, line: 1}
	l.readChar()
	return l
}

// readChar reads the next character, tracking line and column.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	if l.readPos >= len(l.input) {
		l.ch = 0 // EOF
		l.pos = l.readPos
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
	l.ch = r
	l.pos = l.readPos
	l.readPos += size
}

// peekChar returns the next character without consuming it.
func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

// position returns the position of the current character.
func (l *Lexer) position() ast.Position {
	return ast.Position{Offset: l.pos, Line: l.line, Column: l.col}
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n':
			l.readChar()
		case l.ch == '#':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		default:
			return
		}
	}
}

// opTokens drives longest-match operator lexing; longer literals must come
// before their prefixes.
var opTokens = []struct {
	lit string
	typ TokenType
}{
	{"<-->", TokenArrowAny},
	{"-->", TokenArrowOut},
	{"<--", TokenArrowIn},
	{"->:", TokenArrowOutOpen},
	{"<-:", TokenArrowInOpen},
	{":->", TokenArrowOutClose},
	{"++>", TokenConnectOut},
	{"<++", TokenConnectIn},
	{":+>", TokenConnectOutClose},
	{"<+:", TokenConnectInOpen},
	{":+", TokenConnectInClose},
	{":-", TokenArrowInClose},
	{"+:", TokenConnectOutOpen},
	{"(?", TokenFilterOpen},
	{"==", TokenEq},
	{"!=", TokenNe},
	{"<=", TokenLe},
	{">=", TokenGe},
	{"=", TokenAssign},
	{"<", TokenLt},
	{">", TokenGt},
	{"(", TokenLParen},
	{")", TokenRParen},
	{"{", TokenLBrace},
	{"}", TokenRBrace},
	{"[", TokenLBracket},
	{"]", TokenRBracket},
	{",", TokenComma},
	{";", TokenSemi},
	{":", TokenColon},
	{".", TokenDot},
}

// NextToken returns the next token.
func (l *Lexer) NextToken() Token {
	l.skipWhitespaceAndComments()

	pos := l.position()

	switch {
	case l.ch == 0:
		return Token{Type: TokenEOF, Literal: "", Pos: pos}

	case isIdentStart(l.ch):
		lit := l.readIdentifier()
		if typ, ok := reservedWords[lit]; ok {
			return Token{Type: typ, Literal: lit, Pos: pos}
		}
		if builtinTypes[lit] {
			return Token{Type: TokenBuiltin, Literal: lit, Pos: pos}
		}
		return Token{Type: TokenIdent, Literal: lit, Pos: pos}

	case unicode.IsDigit(l.ch),
		l.ch == '-' && unicode.IsDigit(l.peekChar()):
		lit, isFloat := l.readNumber()
		if isFloat {
			return Token{Type: TokenFloat, Literal: lit, Pos: pos}
		}
		return Token{Type: TokenInt, Literal: lit, Pos: pos}

	case l.ch == '"' || l.ch == '\'':
		lit, ok := l.readString()
		if !ok {
			return Token{Type: TokenError, Literal: "unterminated string", Pos: pos}
		}
		return Token{Type: TokenString, Literal: lit, Pos: pos}

	default:
		rest := l.input[l.pos:]
		for _, op := range opTokens {
			if strings.HasPrefix(rest, op.lit) {
				for range op.lit {
					l.readChar()
				}
				return Token{Type: op.typ, Literal: op.lit, Pos: pos}
			}
		}
		lit := string(l.ch)
		l.readChar()
		return Token{Type: TokenError, Literal: "unexpected character '" + lit + "'", Pos: pos}
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isIdentPart(l.ch) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readNumber reads an integer or float, with an optional leading minus.
func (l *Lexer) readNumber() (string, bool) {
	start := l.pos
	if l.ch == '-' {
		l.readChar()
	}
	for unicode.IsDigit(l.ch) {
		l.readChar()
	}
	isFloat := false
	if l.ch == '.' && unicode.IsDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for unicode.IsDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[start:l.pos], isFloat
}

// readString reads a string delimited by the current quote character,
// handling the usual escapes. Returns false when the string never closes.
func (l *Lexer) readString() (string, bool) {
	quote := l.ch
	l.readChar()
	var sb strings.Builder
	for l.ch != quote {
		if l.ch == 0 || l.ch == '\n' {
			return "", false
		}
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '\\':
				sb.WriteByte('\\')
			case '\'':
				sb.WriteByte('\'')
			case '"':
				sb.WriteByte('"')
			default:
				sb.WriteRune(l.ch)
			}
			l.readChar()
			continue
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}
	l.readChar()
	return sb.String(), true
}

// Tokenize scans the whole input, mostly for tests.
func Tokenize(input string) []Token {
	l := NewLexer(input)
	var toks []Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == TokenEOF {
			return toks
		}
	}
}
