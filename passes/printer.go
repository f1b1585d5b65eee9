package passes

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/nisalV/jaseci/ast"
	"github.com/nisalV/jaseci/symtab"
)

// detail is the per-kind one-line summary used by the printer surfaces.
func detail(n ast.Node) string {
	switch x := n.(type) {
	case *ast.Module:
		return "'" + x.Name + "'"
	case *ast.Architype:
		return fmt.Sprintf("%s '%s'", x.Arch, x.Name.Value)
	case *ast.Enum:
		return "'" + x.Name.Value + "'"
	case *ast.Ability:
		if x.Trigger != ast.TriggerNone {
			return fmt.Sprintf("'%s' with %s", x.Name.Value, x.Trigger)
		}
		return "'" + x.Name.Value + "'"
	case *ast.HasVar:
		return "'" + x.Name.Value + "'"
	case *ast.ParamVar:
		return "'" + x.Name.Value + "'"
	case *ast.AtomTrailer:
		segs := make([]string, len(x.Trailers))
		for i, t := range x.Trailers {
			segs[i] = t.Value
		}
		return "." + strings.Join(segs, ".")
	case *ast.SpecialVarRef:
		return x.Var.String()
	case *ast.ArchRef:
		return "'" + x.Name.Value + "'"
	case *ast.EdgeOpRef:
		return x.Dir.String()
	case *ast.ConnectOp:
		return x.Dir.String()
	case *ast.Name:
		return "'" + x.Value + "'"
	case *ast.Token:
		return "'" + x.Literal + "'"
	case *ast.IntLiteral:
		return fmt.Sprintf("%d", x.Value)
	case *ast.FloatLiteral:
		return fmt.Sprintf("%g", x.Value)
	case *ast.StringLiteral:
		return fmt.Sprintf("%q", x.Value)
	case *ast.BoolLiteral:
		return fmt.Sprintf("%t", x.Value)
	case *ast.BuiltinType:
		return x.Name
	default:
		return ""
	}
}

// astPrinter dumps the tree pre-order, one line per node. It rides the
// same engine as the resolution pass.
type astPrinter struct {
	w     io.Writer
	depth int
}

// PrintTree writes an indented pre-order dump of the tree.
func PrintTree(w io.Writer, root ast.Node) {
	Run(&astPrinter{w: w}, root)
}

func (p *astPrinter) enter(n ast.Node) Action {
	line := n.Kind().String()
	if d := detail(n); d != "" {
		line += " " + d
	}
	pos := n.Span().Start
	fmt.Fprintf(p.w, "%s%s  <%d:%d>\n", strings.Repeat("  ", p.depth), line, pos.Line, pos.Column)
	p.depth++
	return Continue
}

func (p *astPrinter) ExitNode(ast.Node) { p.depth-- }
func (p *astPrinter) AfterPass()        {}

func (p *astPrinter) EnterModule(n *ast.Module) Action               { return p.enter(n) }
func (p *astPrinter) EnterArchitype(n *ast.Architype) Action         { return p.enter(n) }
func (p *astPrinter) EnterEnum(n *ast.Enum) Action                   { return p.enter(n) }
func (p *astPrinter) EnterAbility(n *ast.Ability) Action             { return p.enter(n) }
func (p *astPrinter) EnterHasVar(n *ast.HasVar) Action               { return p.enter(n) }
func (p *astPrinter) EnterParamVar(n *ast.ParamVar) Action           { return p.enter(n) }
func (p *astPrinter) EnterAssignment(n *ast.Assignment) Action       { return p.enter(n) }
func (p *astPrinter) EnterAtomTrailer(n *ast.AtomTrailer) Action     { return p.enter(n) }
func (p *astPrinter) EnterFuncCall(n *ast.FuncCall) Action           { return p.enter(n) }
func (p *astPrinter) EnterIndexSlice(n *ast.IndexSlice) Action       { return p.enter(n) }
func (p *astPrinter) EnterInnerCompr(n *ast.InnerCompr) Action       { return p.enter(n) }
func (p *astPrinter) EnterFilterCompr(n *ast.FilterCompr) Action     { return p.enter(n) }
func (p *astPrinter) EnterSpecialVarRef(n *ast.SpecialVarRef) Action { return p.enter(n) }
func (p *astPrinter) EnterExprAsItem(n *ast.ExprAsItem) Action       { return p.enter(n) }
func (p *astPrinter) EnterArchRef(n *ast.ArchRef) Action             { return p.enter(n) }
func (p *astPrinter) EnterArchRefChain(n *ast.ArchRefChain) Action   { return p.enter(n) }
func (p *astPrinter) EnterEdgeOpRef(n *ast.EdgeOpRef) Action         { return p.enter(n) }
func (p *astPrinter) EnterConnectOp(n *ast.ConnectOp) Action         { return p.enter(n) }
func (p *astPrinter) EnterDisconnectOp(n *ast.DisconnectOp) Action   { return p.enter(n) }
func (p *astPrinter) EnterInForStmt(n *ast.InForStmt) Action         { return p.enter(n) }
func (p *astPrinter) EnterDeleteStmt(n *ast.DeleteStmt) Action       { return p.enter(n) }
func (p *astPrinter) EnterName(n *ast.Name) Action                   { return p.enter(n) }
func (p *astPrinter) EnterToken(n *ast.Token) Action                 { return p.enter(n) }
func (p *astPrinter) EnterIntLiteral(n *ast.IntLiteral) Action       { return p.enter(n) }
func (p *astPrinter) EnterFloatLiteral(n *ast.FloatLiteral) Action   { return p.enter(n) }
func (p *astPrinter) EnterStringLiteral(n *ast.StringLiteral) Action { return p.enter(n) }
func (p *astPrinter) EnterBoolLiteral(n *ast.BoolLiteral) Action     { return p.enter(n) }
func (p *astPrinter) EnterBuiltinType(n *ast.BuiltinType) Action     { return p.enter(n) }

// dotPass renders the tree as a Graphviz digraph. Ids are assigned
// post-order, so every child id exists when its edge is written.
type dotPass struct {
	Base
	buf  strings.Builder
	ids  map[ast.Node]int
	next int
}

// WriteDot writes the tree as a Graphviz digraph.
func WriteDot(w io.Writer, root ast.Node) {
	d := &dotPass{ids: make(map[ast.Node]int)}
	Run(d, root)
	fmt.Fprintf(w, "digraph ast {\n  node [shape=box, fontname=\"monospace\"];\n%s}\n", d.buf.String())
}

func (d *dotPass) ExitNode(n ast.Node) {
	id := d.next
	d.next++
	d.ids[n] = id
	label := n.Kind().String()
	if det := detail(n); det != "" {
		label += "\\n" + det
	}
	fmt.Fprintf(&d.buf, "  n%d [label=\"%s\"];\n", id, strings.ReplaceAll(label, `"`, `\"`))
	for _, c := range n.Children() {
		fmt.Fprintf(&d.buf, "  n%d -> n%d;\n", id, d.ids[c])
	}
}

// WriteSymbolTable renders the sealed scope tree, one row per binding,
// shadowed bindings included.
func WriteSymbolTable(w io.Writer, res *Resolution) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Scope", "Symbol", "Kind", "Declared"})
	symtab.Walk(res.ModuleScope(), func(sc *symtab.Scope) {
		label := strings.Repeat("  ", sc.Depth()) + sc.Describe()
		syms := sc.Symbols()
		if len(syms) == 0 {
			table.Append([]string{label, "-", "-", "-"})
			return
		}
		for i, sym := range syms {
			row := label
			if i > 0 {
				row = ""
			}
			pos := sym.Decl.Span().Start
			table.Append([]string{row, sym.Name, sym.Kind.String(), fmt.Sprintf("%d:%d", pos.Line, pos.Column)})
		}
	})
	table.Render()
}
