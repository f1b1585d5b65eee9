// Package parser turns Jac source into the ast node model: a rune-wise
// lexer and a recursive-descent parser with positioned syntax diagnostics.
package parser

import (
	"fmt"

	"github.com/nisalV/jaseci/ast"
)

// TokenType represents the type of a token.
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenError

	// Literals
	TokenInt    // 42
	TokenFloat  // 3.14
	TokenString // "hello" or 'hello'
	TokenIdent  // foo, Person

	// Declaration keywords
	TokenNode   // node
	TokenEdge   // edge
	TokenWalker // walker
	TokenObj    // obj
	TokenEnum   // enum
	TokenHas    // has
	TokenCan    // can
	TokenWith   // with
	TokenEntry  // entry
	TokenExit   // exit

	// Statement keywords
	TokenFor // for
	TokenIn  // in
	TokenIf  // if
	TokenDel // del
	TokenAs  // as

	// Literal keywords
	TokenTrue
	TokenFalse

	// Pseudo-variables
	TokenSelf
	TokenHere
	TokenVisitor
	TokenRoot

	// Builtin type keywords (str, int, float, bool, list, dict, any)
	TokenBuiltin

	// Delimiters
	TokenLParen   // (
	TokenRParen   // )
	TokenLBrace   // {
	TokenRBrace   // }
	TokenLBracket // [
	TokenRBracket // ]
	TokenComma    // ,
	TokenSemi     // ;
	TokenColon    // :
	TokenDot      // .

	// Operators
	TokenAssign // =
	TokenEq     // ==
	TokenNe     // !=
	TokenLt     // <
	TokenGt     // >
	TokenLe     // <=
	TokenGe     // >=

	// Edge references
	TokenArrowOut      // -->
	TokenArrowIn       // <--
	TokenArrowAny      // <-->
	TokenArrowOutOpen  // ->:
	TokenArrowOutClose // :->
	TokenArrowInOpen   // <-:
	TokenArrowInClose  // :-

	// Connect operators
	TokenConnectOut      // ++>
	TokenConnectIn       // <++
	TokenConnectOutOpen  // +:
	TokenConnectOutClose // :+>
	TokenConnectInOpen   // <+:
	TokenConnectInClose  // :+

	// Filter comprehension opener
	TokenFilterOpen // (?
)

var tokenNames = map[TokenType]string{
	TokenEOF:             "EOF",
	TokenError:           "ERROR",
	TokenInt:             "INT",
	TokenFloat:           "FLOAT",
	TokenString:          "STRING",
	TokenIdent:           "IDENT",
	TokenNode:            "node",
	TokenEdge:            "edge",
	TokenWalker:          "walker",
	TokenObj:             "obj",
	TokenEnum:            "enum",
	TokenHas:             "has",
	TokenCan:             "can",
	TokenWith:            "with",
	TokenEntry:           "entry",
	TokenExit:            "exit",
	TokenFor:             "for",
	TokenIn:              "in",
	TokenIf:              "if",
	TokenDel:             "del",
	TokenAs:              "as",
	TokenTrue:            "true",
	TokenFalse:           "false",
	TokenSelf:            "self",
	TokenHere:            "here",
	TokenVisitor:         "visitor",
	TokenRoot:            "root",
	TokenBuiltin:         "BUILTIN",
	TokenLParen:          "(",
	TokenRParen:          ")",
	TokenLBrace:          "{",
	TokenRBrace:          "}",
	TokenLBracket:        "[",
	TokenRBracket:        "]",
	TokenComma:           ",",
	TokenSemi:            ";",
	TokenColon:           ":",
	TokenDot:             ".",
	TokenAssign:          "=",
	TokenEq:              "==",
	TokenNe:              "!=",
	TokenLt:              "<",
	TokenGt:              ">",
	TokenLe:              "<=",
	TokenGe:              ">=",
	TokenArrowOut:        "-->",
	TokenArrowIn:         "<--",
	TokenArrowAny:        "<-->",
	TokenArrowOutOpen:    "->:",
	TokenArrowOutClose:   ":->",
	TokenArrowInOpen:     "<-:",
	TokenArrowInClose:    ":-",
	TokenConnectOut:      "++>",
	TokenConnectIn:       "<++",
	TokenConnectOutOpen:  "+:",
	TokenConnectOutClose: ":+>",
	TokenConnectInOpen:   "<+:",
	TokenConnectInClose:  ":+",
	TokenFilterOpen:      "(?",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", int(t))
}

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Literal string       // the raw text
	Pos     ast.Position // start position
}

func (t Token) String() string {
	if t.Type == TokenEOF {
		return "EOF"
	}
	if t.Type == TokenError {
		return fmt.Sprintf("ERROR(%s)", t.Literal)
	}
	return fmt.Sprintf("%s(%q)", t.Type, t.Literal)
}

// Reserved words mapped to their token types.
var reservedWords = map[string]TokenType{
	"node":    TokenNode,
	"edge":    TokenEdge,
	"walker":  TokenWalker,
	"obj":     TokenObj,
	"enum":    TokenEnum,
	"has":     TokenHas,
	"can":     TokenCan,
	"with":    TokenWith,
	"entry":   TokenEntry,
	"exit":    TokenExit,
	"for":     TokenFor,
	"in":      TokenIn,
	"if":      TokenIf,
	"del":     TokenDel,
	"as":      TokenAs,
	"true":    TokenTrue,
	"false":   TokenFalse,
	"self":    TokenSelf,
	"here":    TokenHere,
	"visitor": TokenVisitor,
	"root":    TokenRoot,
}

// Builtin type keywords share one token type; the literal tells them apart.
var builtinTypes = map[string]bool{
	"str":   true,
	"int":   true,
	"float": true,
	"bool":  true,
	"list":  true,
	"dict":  true,
	"any":   true,
}
