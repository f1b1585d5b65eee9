package ast

import "fmt"

// ---------------------------------------------------------------------------
// AST: Abstract Syntax Tree for Jac modules
// ---------------------------------------------------------------------------

// Position represents a source location.
type Position struct {
	Offset int // byte offset
	Line   int // 1-based line number
	Column int // 1-based column number
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span represents a range in source code.
type Span struct {
	Start Position
	End   Position
}

// MakeSpan builds a span from two positions.
func MakeSpan(start, end Position) Span {
	return Span{Start: start, End: end}
}

// ZeroSpan is the span of synthesized nodes.
func ZeroSpan() Span {
	return Span{}
}

// Contains reports whether the byte offset falls inside the span.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start.Offset && offset < s.End.Offset
}

// Kind identifies the concrete type of a node.
type Kind int

const (
	KindModule Kind = iota
	KindArchitype
	KindEnum
	KindAbility
	KindHasVar
	KindParamVar
	KindAssignment
	KindAtomTrailer
	KindFuncCall
	KindIndexSlice
	KindInnerCompr
	KindFilterCompr
	KindSpecialVarRef
	KindExprAsItem
	KindArchRef
	KindArchRefChain
	KindEdgeOpRef
	KindConnectOp
	KindDisconnectOp
	KindInForStmt
	KindDeleteStmt
	KindName
	KindToken
	KindIntLiteral
	KindFloatLiteral
	KindStringLiteral
	KindBoolLiteral
	KindBuiltinType
)

var kindNames = [...]string{
	KindModule:        "Module",
	KindArchitype:     "Architype",
	KindEnum:          "Enum",
	KindAbility:       "Ability",
	KindHasVar:        "HasVar",
	KindParamVar:      "ParamVar",
	KindAssignment:    "Assignment",
	KindAtomTrailer:   "AtomTrailer",
	KindFuncCall:      "FuncCall",
	KindIndexSlice:    "IndexSlice",
	KindInnerCompr:    "InnerCompr",
	KindFilterCompr:   "FilterCompr",
	KindSpecialVarRef: "SpecialVarRef",
	KindExprAsItem:    "ExprAsItem",
	KindArchRef:       "ArchRef",
	KindArchRefChain:  "ArchRefChain",
	KindEdgeOpRef:     "EdgeOpRef",
	KindConnectOp:     "ConnectOp",
	KindDisconnectOp:  "DisconnectOp",
	KindInForStmt:     "InForStmt",
	KindDeleteStmt:    "DeleteStmt",
	KindName:          "Name",
	KindToken:         "Token",
	KindIntLiteral:    "IntLiteral",
	KindFloatLiteral:  "FloatLiteral",
	KindStringLiteral: "StringLiteral",
	KindBoolLiteral:   "BoolLiteral",
	KindBuiltinType:   "BuiltinType",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Node is the interface implemented by all AST nodes. The setParent marker
// keeps the node set closed to this package.
type Node interface {
	Kind() Kind
	Span() Span
	Parent() Node
	Children() []Node
	setParent(Node)
}

// base carries the span and the non-owning parent back-reference shared by
// every node.
type base struct {
	SpanVal Span
	parent  Node
}

func (b *base) Span() Span       { return b.SpanVal }
func (b *base) Parent() Node     { return b.parent }
func (b *base) setParent(p Node) { b.parent = p }

// SetSpan records the node's source span. Parsers call it right after
// construction; Link wires parents separately.
func (b *base) SetSpan(s Span) { b.SpanVal = s }

// ArchKind distinguishes the four architype declarations.
type ArchKind int

const (
	NodeArch ArchKind = iota
	EdgeArch
	WalkerArch
	ObjectArch
)

var archKindNames = [...]string{
	NodeArch:   "node",
	EdgeArch:   "edge",
	WalkerArch: "walker",
	ObjectArch: "object",
}

func (k ArchKind) String() string {
	if k < 0 || int(k) >= len(archKindNames) {
		return fmt.Sprintf("ArchKind(%d)", int(k))
	}
	return archKindNames[k]
}

// EdgeDir is the direction of an edge reference or connect operation.
type EdgeDir int

const (
	EdgeOut EdgeDir = iota
	EdgeIn
	EdgeAny
)

var edgeDirNames = [...]string{
	EdgeOut: "out",
	EdgeIn:  "in",
	EdgeAny: "any",
}

func (d EdgeDir) String() string {
	if d < 0 || int(d) >= len(edgeDirNames) {
		return fmt.Sprintf("EdgeDir(%d)", int(d))
	}
	return edgeDirNames[d]
}

// SpecialVar enumerates the pseudo-variable keywords.
type SpecialVar int

const (
	SpecialSelf SpecialVar = iota
	SpecialHere
	SpecialVisitor
	SpecialRoot
)

var specialVarNames = [...]string{
	SpecialSelf:    "self",
	SpecialHere:    "here",
	SpecialVisitor: "visitor",
	SpecialRoot:    "root",
}

func (v SpecialVar) String() string {
	if v < 0 || int(v) >= len(specialVarNames) {
		return fmt.Sprintf("SpecialVar(%d)", int(v))
	}
	return specialVarNames[v]
}

// Trigger is an ability's entry/exit marker.
type Trigger int

const (
	TriggerNone Trigger = iota
	TriggerEntry
	TriggerExit
)

func (t Trigger) String() string {
	switch t {
	case TriggerEntry:
		return "entry"
	case TriggerExit:
		return "exit"
	default:
		return "none"
	}
}

// FilterCond is one predicate inside a FilterCompr: lhs, an optional
// comparison operator token, and the right operand. It is not itself a node;
// its constituents appear among the FilterCompr's children.
type FilterCond struct {
	Lhs Node
	Op  *Token // nil when the condition is a bare expression
	Rhs Node   // nil when Op is nil
}
