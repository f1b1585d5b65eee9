// Package passes hosts the tree traversal engine and the passes built on
// it: def-use resolution and the printer surfaces.
package passes

import (
	"fmt"

	"github.com/nisalV/jaseci/ast"
)

// Action is the enter hook's verdict on a node's children.
type Action int

const (
	Continue Action = iota
	SkipChildren
)

// Visitor receives one enter hook per node kind, a generic exit hook fired
// after a node's descent, and a completion hook fired once per run. The
// per-kind methods keep dispatch exhaustive: adding a node kind breaks
// every visitor at compile time instead of at runtime.
type Visitor interface {
	EnterModule(*ast.Module) Action
	EnterArchitype(*ast.Architype) Action
	EnterEnum(*ast.Enum) Action
	EnterAbility(*ast.Ability) Action
	EnterHasVar(*ast.HasVar) Action
	EnterParamVar(*ast.ParamVar) Action
	EnterAssignment(*ast.Assignment) Action
	EnterAtomTrailer(*ast.AtomTrailer) Action
	EnterFuncCall(*ast.FuncCall) Action
	EnterIndexSlice(*ast.IndexSlice) Action
	EnterInnerCompr(*ast.InnerCompr) Action
	EnterFilterCompr(*ast.FilterCompr) Action
	EnterSpecialVarRef(*ast.SpecialVarRef) Action
	EnterExprAsItem(*ast.ExprAsItem) Action
	EnterArchRef(*ast.ArchRef) Action
	EnterArchRefChain(*ast.ArchRefChain) Action
	EnterEdgeOpRef(*ast.EdgeOpRef) Action
	EnterConnectOp(*ast.ConnectOp) Action
	EnterDisconnectOp(*ast.DisconnectOp) Action
	EnterInForStmt(*ast.InForStmt) Action
	EnterDeleteStmt(*ast.DeleteStmt) Action
	EnterName(*ast.Name) Action
	EnterToken(*ast.Token) Action
	EnterIntLiteral(*ast.IntLiteral) Action
	EnterFloatLiteral(*ast.FloatLiteral) Action
	EnterStringLiteral(*ast.StringLiteral) Action
	EnterBoolLiteral(*ast.BoolLiteral) Action
	EnterBuiltinType(*ast.BuiltinType) Action
	ExitNode(ast.Node)
	AfterPass()
}

// Walk dispatches n to the visitor and descends into its children in
// construction order unless the enter hook skips them. Hooks may call Walk
// themselves to impose a custom child order; ExitNode still fires exactly
// once per visited node, after its descent.
func Walk(v Visitor, n ast.Node) {
	var act Action
	switch x := n.(type) {
	case *ast.Module:
		act = v.EnterModule(x)
	case *ast.Architype:
		act = v.EnterArchitype(x)
	case *ast.Enum:
		act = v.EnterEnum(x)
	case *ast.Ability:
		act = v.EnterAbility(x)
	case *ast.HasVar:
		act = v.EnterHasVar(x)
	case *ast.ParamVar:
		act = v.EnterParamVar(x)
	case *ast.Assignment:
		act = v.EnterAssignment(x)
	case *ast.AtomTrailer:
		act = v.EnterAtomTrailer(x)
	case *ast.FuncCall:
		act = v.EnterFuncCall(x)
	case *ast.IndexSlice:
		act = v.EnterIndexSlice(x)
	case *ast.InnerCompr:
		act = v.EnterInnerCompr(x)
	case *ast.FilterCompr:
		act = v.EnterFilterCompr(x)
	case *ast.SpecialVarRef:
		act = v.EnterSpecialVarRef(x)
	case *ast.ExprAsItem:
		act = v.EnterExprAsItem(x)
	case *ast.ArchRef:
		act = v.EnterArchRef(x)
	case *ast.ArchRefChain:
		act = v.EnterArchRefChain(x)
	case *ast.EdgeOpRef:
		act = v.EnterEdgeOpRef(x)
	case *ast.ConnectOp:
		act = v.EnterConnectOp(x)
	case *ast.DisconnectOp:
		act = v.EnterDisconnectOp(x)
	case *ast.InForStmt:
		act = v.EnterInForStmt(x)
	case *ast.DeleteStmt:
		act = v.EnterDeleteStmt(x)
	case *ast.Name:
		act = v.EnterName(x)
	case *ast.Token:
		act = v.EnterToken(x)
	case *ast.IntLiteral:
		act = v.EnterIntLiteral(x)
	case *ast.FloatLiteral:
		act = v.EnterFloatLiteral(x)
	case *ast.StringLiteral:
		act = v.EnterStringLiteral(x)
	case *ast.BoolLiteral:
		act = v.EnterBoolLiteral(x)
	case *ast.BuiltinType:
		act = v.EnterBuiltinType(x)
	default:
		panic(fmt.Sprintf("passes: unhandled node type %T", n))
	}
	if act == Continue {
		for _, c := range n.Children() {
			Walk(v, c)
		}
	}
	v.ExitNode(n)
}

// Run walks the whole tree and fires AfterPass exactly once.
func Run(v Visitor, root ast.Node) {
	Walk(v, root)
	v.AfterPass()
}

// Base is a Visitor that continues everywhere. Passes that only care about
// a few kinds embed it and override what they need.
type Base struct{}

func (Base) EnterModule(*ast.Module) Action               { return Continue }
func (Base) EnterArchitype(*ast.Architype) Action         { return Continue }
func (Base) EnterEnum(*ast.Enum) Action                   { return Continue }
func (Base) EnterAbility(*ast.Ability) Action             { return Continue }
func (Base) EnterHasVar(*ast.HasVar) Action               { return Continue }
func (Base) EnterParamVar(*ast.ParamVar) Action           { return Continue }
func (Base) EnterAssignment(*ast.Assignment) Action       { return Continue }
func (Base) EnterAtomTrailer(*ast.AtomTrailer) Action     { return Continue }
func (Base) EnterFuncCall(*ast.FuncCall) Action           { return Continue }
func (Base) EnterIndexSlice(*ast.IndexSlice) Action       { return Continue }
func (Base) EnterInnerCompr(*ast.InnerCompr) Action       { return Continue }
func (Base) EnterFilterCompr(*ast.FilterCompr) Action     { return Continue }
func (Base) EnterSpecialVarRef(*ast.SpecialVarRef) Action { return Continue }
func (Base) EnterExprAsItem(*ast.ExprAsItem) Action       { return Continue }
func (Base) EnterArchRef(*ast.ArchRef) Action             { return Continue }
func (Base) EnterArchRefChain(*ast.ArchRefChain) Action   { return Continue }
func (Base) EnterEdgeOpRef(*ast.EdgeOpRef) Action         { return Continue }
func (Base) EnterConnectOp(*ast.ConnectOp) Action         { return Continue }
func (Base) EnterDisconnectOp(*ast.DisconnectOp) Action   { return Continue }
func (Base) EnterInForStmt(*ast.InForStmt) Action         { return Continue }
func (Base) EnterDeleteStmt(*ast.DeleteStmt) Action       { return Continue }
func (Base) EnterName(*ast.Name) Action                   { return Continue }
func (Base) EnterToken(*ast.Token) Action                 { return Continue }
func (Base) EnterIntLiteral(*ast.IntLiteral) Action       { return Continue }
func (Base) EnterFloatLiteral(*ast.FloatLiteral) Action   { return Continue }
func (Base) EnterStringLiteral(*ast.StringLiteral) Action { return Continue }
func (Base) EnterBoolLiteral(*ast.BoolLiteral) Action     { return Continue }
func (Base) EnterBuiltinType(*ast.BuiltinType) Action     { return Continue }
func (Base) ExitNode(ast.Node)                            {}
func (Base) AfterPass()                                   {}
