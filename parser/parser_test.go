package parser

import (
	"strings"
	"testing"

	"github.com/nisalV/jaseci/ast"
	"github.com/nisalV/jaseci/diag"
)

func mustParse(t *testing.T, src string) *ast.Module {
	t.Helper()
	mod, diags := ParseModule("test.jac", src)
	if diags.HasErrors() {
		t.Fatalf("parse errors: %v", diags.Strings())
	}
	return mod
}

func TestParseArchitype(t *testing.T) {
	mod := mustParse(t, `
node Person {
    has name: str = "anon", age: int;
    can greet with entry {
        self.name;
    }
}
`)
	if len(mod.Body) != 1 {
		t.Fatalf("module body = %d items, want 1", len(mod.Body))
	}

	arch, ok := mod.Body[0].(*ast.Architype)
	if !ok {
		t.Fatalf("expected Architype, got %T", mod.Body[0])
	}
	if arch.Arch != ast.NodeArch {
		t.Errorf("arch kind = %s, want node", arch.Arch)
	}
	if arch.Name.Value != "Person" {
		t.Errorf("arch name = %q, want %q", arch.Name.Value, "Person")
	}
	if len(arch.Body) != 3 {
		t.Fatalf("arch body = %d items, want 3", len(arch.Body))
	}

	name, ok := arch.Body[0].(*ast.HasVar)
	if !ok {
		t.Fatalf("expected HasVar, got %T", arch.Body[0])
	}
	if name.Name.Value != "name" {
		t.Errorf("has var = %q, want %q", name.Name.Value, "name")
	}
	bt, ok := name.TypeTag.(*ast.BuiltinType)
	if !ok || bt.Name != "str" {
		t.Errorf("type tag = %v, want builtin str", name.TypeTag)
	}
	if s, ok := name.Value.(*ast.StringLiteral); !ok || s.Value != "anon" {
		t.Errorf("default = %v, want string anon", name.Value)
	}

	age, ok := arch.Body[1].(*ast.HasVar)
	if !ok || age.Name.Value != "age" {
		t.Fatalf("second has var: got %v", arch.Body[1])
	}
	if age.Value != nil {
		t.Errorf("age default = %v, want nil", age.Value)
	}

	ab, ok := arch.Body[2].(*ast.Ability)
	if !ok {
		t.Fatalf("expected Ability, got %T", arch.Body[2])
	}
	if ab.Name.Value != "greet" {
		t.Errorf("ability name = %q, want %q", ab.Name.Value, "greet")
	}
	if ab.Trigger != ast.TriggerEntry {
		t.Errorf("trigger = %s, want entry", ab.Trigger)
	}
	if ab.Abstract {
		t.Error("ability with body marked abstract")
	}
	if len(ab.Body) != 1 {
		t.Fatalf("ability body = %d stmts, want 1", len(ab.Body))
	}

	at, ok := ab.Body[0].(*ast.AtomTrailer)
	if !ok {
		t.Fatalf("expected AtomTrailer, got %T", ab.Body[0])
	}
	if _, ok := at.Target.(*ast.SpecialVarRef); !ok {
		t.Errorf("trailer target: expected SpecialVarRef, got %T", at.Target)
	}
	if len(at.Trailers) != 1 || at.Trailers[0].Value != "name" {
		t.Errorf("trailers = %v, want [name]", at.Trailers)
	}
}

func TestParseAbstractAbilityAndParams(t *testing.T) {
	mod := mustParse(t, `
walker Visitor {
    can visit(target, depth: int = 1);
}
`)
	arch := mod.Body[0].(*ast.Architype)
	if arch.Arch != ast.WalkerArch {
		t.Fatalf("arch kind = %s, want walker", arch.Arch)
	}
	ab := arch.Body[0].(*ast.Ability)
	if !ab.Abstract {
		t.Error("semicolon body should mark ability abstract")
	}
	if ab.Trigger != ast.TriggerNone {
		t.Errorf("trigger = %s, want none", ab.Trigger)
	}
	if len(ab.Params) != 2 {
		t.Fatalf("params = %d, want 2", len(ab.Params))
	}
	if ab.Params[0].Name.Value != "target" || ab.Params[0].TypeTag != nil {
		t.Errorf("param 0 = %v, want bare target", ab.Params[0])
	}
	p1 := ab.Params[1]
	if p1.Name.Value != "depth" {
		t.Errorf("param 1 name = %q, want depth", p1.Name.Value)
	}
	if bt, ok := p1.TypeTag.(*ast.BuiltinType); !ok || bt.Name != "int" {
		t.Errorf("param 1 type = %v, want int", p1.TypeTag)
	}
	if iv, ok := p1.Value.(*ast.IntLiteral); !ok || iv.Value != 1 {
		t.Errorf("param 1 default = %v, want 1", p1.Value)
	}
}

func TestParseEnum(t *testing.T) {
	mod := mustParse(t, "enum Color { Red, Green, Blue, }")
	en, ok := mod.Body[0].(*ast.Enum)
	if !ok {
		t.Fatalf("expected Enum, got %T", mod.Body[0])
	}
	if en.Name.Value != "Color" {
		t.Errorf("enum name = %q, want Color", en.Name.Value)
	}
	got := make([]string, len(en.Items))
	for i, it := range en.Items {
		got[i] = it.Value
	}
	want := "Red Green Blue"
	if strings.Join(got, " ") != want {
		t.Errorf("items = %v, want %s", got, want)
	}
}

func TestParseConnectOps(t *testing.T) {
	mod := mustParse(t, "a ++> b; c <++ d; x +:Follows:+> y; u <+:Knows:+ v;")
	if len(mod.Body) != 4 {
		t.Fatalf("module body = %d items, want 4", len(mod.Body))
	}

	out := mod.Body[0].(*ast.ConnectOp)
	if out.Dir != ast.EdgeOut || out.Arch != nil {
		t.Errorf("a ++> b: dir = %s arch = %v, want out nil", out.Dir, out.Arch)
	}
	if out.Left.(*ast.Name).Value != "a" || out.Right.(*ast.Name).Value != "b" {
		t.Error("a ++> b: wrong operands")
	}

	in := mod.Body[1].(*ast.ConnectOp)
	if in.Dir != ast.EdgeIn {
		t.Errorf("c <++ d: dir = %s, want in", in.Dir)
	}

	typed := mod.Body[2].(*ast.ConnectOp)
	if typed.Dir != ast.EdgeOut {
		t.Errorf("typed connect: dir = %s, want out", typed.Dir)
	}
	ref, ok := typed.Arch.(*ast.ArchRef)
	if !ok || ref.Name.Value != "Follows" {
		t.Errorf("typed connect: arch = %v, want ArchRef Follows", typed.Arch)
	}

	typedIn := mod.Body[3].(*ast.ConnectOp)
	if typedIn.Dir != ast.EdgeIn {
		t.Errorf("typed in connect: dir = %s, want in", typedIn.Dir)
	}
	if ref, ok := typedIn.Arch.(*ast.ArchRef); !ok || ref.Name.Value != "Knows" {
		t.Errorf("typed in connect: arch = %v, want ArchRef Knows", typedIn.Arch)
	}
}

func TestParseConnectLeftAssociative(t *testing.T) {
	mod := mustParse(t, "a ++> b ++> c;")
	outer, ok := mod.Body[0].(*ast.ConnectOp)
	if !ok {
		t.Fatalf("expected ConnectOp, got %T", mod.Body[0])
	}
	inner, ok := outer.Left.(*ast.ConnectOp)
	if !ok {
		t.Fatalf("left operand: expected ConnectOp, got %T", outer.Left)
	}
	if inner.Left.(*ast.Name).Value != "a" || inner.Right.(*ast.Name).Value != "b" {
		t.Error("inner connect: wrong operands")
	}
	if outer.Right.(*ast.Name).Value != "c" {
		t.Error("outer connect: wrong right operand")
	}
}

func TestParseDisconnect(t *testing.T) {
	mod := mustParse(t, "a del --> b; c del <-:Follows:- d;")

	dis := mod.Body[0].(*ast.DisconnectOp)
	if dis.Edge.Dir != ast.EdgeOut || dis.Edge.Arch != nil {
		t.Errorf("untyped disconnect: edge = %v", dis.Edge)
	}
	if dis.Left.(*ast.Name).Value != "a" || dis.Right.(*ast.Name).Value != "b" {
		t.Error("untyped disconnect: wrong operands")
	}

	typed := mod.Body[1].(*ast.DisconnectOp)
	if typed.Edge.Dir != ast.EdgeIn {
		t.Errorf("typed disconnect: dir = %s, want in", typed.Edge.Dir)
	}
	if ref, ok := typed.Edge.Arch.(*ast.ArchRef); !ok || ref.Name.Value != "Follows" {
		t.Errorf("typed disconnect: arch = %v, want Follows", typed.Edge.Arch)
	}
}

func TestParseDeleteStmt(t *testing.T) {
	mod := mustParse(t, "del x.y;")
	st, ok := mod.Body[0].(*ast.DeleteStmt)
	if !ok {
		t.Fatalf("expected DeleteStmt, got %T", mod.Body[0])
	}
	at, ok := st.Target.(*ast.AtomTrailer)
	if !ok {
		t.Fatalf("delete target: expected AtomTrailer, got %T", st.Target)
	}
	if at.Target.(*ast.Name).Value != "x" || at.Trailers[0].Value != "y" {
		t.Error("delete target: wrong chain")
	}
}

func TestParseEdgeRefExpressions(t *testing.T) {
	mod := mustParse(t, "-->; <-->; ->:Edge1:->; <-:Edge2:-;")
	dirs := []ast.EdgeDir{ast.EdgeOut, ast.EdgeAny, ast.EdgeOut, ast.EdgeIn}
	arches := []string{"", "", "Edge1", "Edge2"}

	for i, item := range mod.Body {
		ref, ok := item.(*ast.EdgeOpRef)
		if !ok {
			t.Fatalf("item %d: expected EdgeOpRef, got %T", i, item)
		}
		if ref.Dir != dirs[i] {
			t.Errorf("item %d: dir = %s, want %s", i, ref.Dir, dirs[i])
		}
		if arches[i] == "" {
			if ref.Arch != nil {
				t.Errorf("item %d: arch = %v, want nil", i, ref.Arch)
			}
			continue
		}
		ar, ok := ref.Arch.(*ast.ArchRef)
		if !ok || ar.Name.Value != arches[i] {
			t.Errorf("item %d: arch = %v, want %s", i, ref.Arch, arches[i])
		}
	}
}

func TestParseTrailerComposition(t *testing.T) {
	mod := mustParse(t, `a.b.c(1)[0](?active == true);`)

	fc, ok := mod.Body[0].(*ast.FilterCompr)
	if !ok {
		t.Fatalf("expected FilterCompr, got %T", mod.Body[0])
	}
	if len(fc.Conds) != 1 {
		t.Fatalf("conds = %d, want 1", len(fc.Conds))
	}
	cond := fc.Conds[0]
	if cond.Op == nil || cond.Op.Literal != "==" {
		t.Errorf("cond op = %v, want ==", cond.Op)
	}
	if lhs, ok := cond.Lhs.(*ast.Name); !ok || lhs.Value != "active" {
		t.Errorf("cond lhs = %v, want active", cond.Lhs)
	}
	if _, ok := cond.Rhs.(*ast.BoolLiteral); !ok {
		t.Errorf("cond rhs: expected BoolLiteral, got %T", cond.Rhs)
	}

	idx, ok := fc.Target.(*ast.IndexSlice)
	if !ok {
		t.Fatalf("filter target: expected IndexSlice, got %T", fc.Target)
	}
	if idx.IsRange {
		t.Error("plain index marked as range")
	}

	call, ok := idx.Target.(*ast.FuncCall)
	if !ok {
		t.Fatalf("index target: expected FuncCall, got %T", idx.Target)
	}
	if len(call.Args) != 1 {
		t.Errorf("call args = %d, want 1", len(call.Args))
	}

	at, ok := call.Target.(*ast.AtomTrailer)
	if !ok {
		t.Fatalf("call target: expected AtomTrailer, got %T", call.Target)
	}
	if len(at.Trailers) != 2 || at.Trailers[0].Value != "b" || at.Trailers[1].Value != "c" {
		t.Errorf("trailers = %v, want [b c]", at.Trailers)
	}
}

func TestParseSlice(t *testing.T) {
	mod := mustParse(t, "xs[1:2]; ys[:3]; zs[1:];")

	full := mod.Body[0].(*ast.IndexSlice)
	if !full.IsRange || full.Start == nil || full.Stop == nil {
		t.Error("xs[1:2]: want range with start and stop")
	}

	open := mod.Body[1].(*ast.IndexSlice)
	if !open.IsRange || open.Start != nil || open.Stop == nil {
		t.Error("ys[:3]: want range with open start")
	}

	tail := mod.Body[2].(*ast.IndexSlice)
	if !tail.IsRange || tail.Start == nil || tail.Stop != nil {
		t.Error("zs[1:]: want range with open stop")
	}
}

func TestParseInnerCompr(t *testing.T) {
	mod := mustParse(t, "[n.score for n in --> if n.active];")

	c, ok := mod.Body[0].(*ast.InnerCompr)
	if !ok {
		t.Fatalf("expected InnerCompr, got %T", mod.Body[0])
	}
	if len(c.Names) != 1 || c.Names[0].Value != "n" {
		t.Errorf("names = %v, want [n]", c.Names)
	}
	if _, ok := c.Iter.(*ast.EdgeOpRef); !ok {
		t.Errorf("iter: expected EdgeOpRef, got %T", c.Iter)
	}
	if c.Cond == nil {
		t.Error("if clause lost")
	}
	if _, ok := c.Out.(*ast.AtomTrailer); !ok {
		t.Errorf("out: expected AtomTrailer, got %T", c.Out)
	}
}

func TestParseForStmt(t *testing.T) {
	mod := mustParse(t, "for k, v in pairs { k ++> v; }")

	st, ok := mod.Body[0].(*ast.InForStmt)
	if !ok {
		t.Fatalf("expected InForStmt, got %T", mod.Body[0])
	}
	if len(st.Names) != 2 || st.Names[0].Value != "k" || st.Names[1].Value != "v" {
		t.Errorf("names = %v, want [k v]", st.Names)
	}
	if it, ok := st.Iter.(*ast.Name); !ok || it.Value != "pairs" {
		t.Errorf("iter = %v, want pairs", st.Iter)
	}
	if len(st.Body) != 1 {
		t.Fatalf("body = %d stmts, want 1", len(st.Body))
	}
}

func TestParseExprAsItem(t *testing.T) {
	mod := mustParse(t, "here as h;")
	item, ok := mod.Body[0].(*ast.ExprAsItem)
	if !ok {
		t.Fatalf("expected ExprAsItem, got %T", mod.Body[0])
	}
	ref, ok := item.Expr.(*ast.SpecialVarRef)
	if !ok || ref.Var != ast.SpecialHere {
		t.Errorf("expr = %v, want here", item.Expr)
	}
	if item.Alias.Value != "h" {
		t.Errorf("alias = %q, want h", item.Alias.Value)
	}
}

func TestParseAssignmentRightAssociative(t *testing.T) {
	mod := mustParse(t, "a = b = c;")
	outer, ok := mod.Body[0].(*ast.Assignment)
	if !ok {
		t.Fatalf("expected Assignment, got %T", mod.Body[0])
	}
	if outer.Target.(*ast.Name).Value != "a" {
		t.Error("outer target: want a")
	}
	inner, ok := outer.Value.(*ast.Assignment)
	if !ok {
		t.Fatalf("outer value: expected Assignment, got %T", outer.Value)
	}
	if inner.Target.(*ast.Name).Value != "b" || inner.Value.(*ast.Name).Value != "c" {
		t.Error("inner assignment: wrong operands")
	}
}

func TestParseArchChainTypeTag(t *testing.T) {
	mod := mustParse(t, "node Worker { has boss: Org.Manager; }")
	arch := mod.Body[0].(*ast.Architype)
	hv := arch.Body[0].(*ast.HasVar)

	chain, ok := hv.TypeTag.(*ast.ArchRefChain)
	if !ok {
		t.Fatalf("type tag: expected ArchRefChain, got %T", hv.TypeTag)
	}
	if len(chain.Segments) != 2 {
		t.Fatalf("segments = %d, want 2", len(chain.Segments))
	}
	if chain.Segments[0].Name.Value != "Org" || chain.Segments[1].Name.Value != "Manager" {
		t.Error("chain segments: want Org.Manager")
	}
}

func TestParseNestedArchitype(t *testing.T) {
	mod := mustParse(t, `
node Outer {
    enum State { On, Off }
    node Inner { has x; }
}
`)
	outer := mod.Body[0].(*ast.Architype)
	if len(outer.Body) != 2 {
		t.Fatalf("outer body = %d items, want 2", len(outer.Body))
	}
	if _, ok := outer.Body[0].(*ast.Enum); !ok {
		t.Errorf("expected nested Enum, got %T", outer.Body[0])
	}
	inner, ok := outer.Body[1].(*ast.Architype)
	if !ok {
		t.Fatalf("expected nested Architype, got %T", outer.Body[1])
	}
	if inner.Name.Value != "Inner" {
		t.Errorf("inner name = %q, want Inner", inner.Name.Value)
	}
}

func TestParseNameSpans(t *testing.T) {
	mod := mustParse(t, "walker W { has count; }")
	arch := mod.Body[0].(*ast.Architype)

	sp := arch.Name.Span()
	if sp.Start.Offset != 7 || sp.End.Offset != 8 {
		t.Errorf("walker name span = %d..%d, want 7..8", sp.Start.Offset, sp.End.Offset)
	}

	hv := arch.Body[0].(*ast.HasVar)
	sp = hv.Name.Span()
	if src := "walker W { has count; }"; src[sp.Start.Offset:sp.End.Offset] != "count" {
		t.Errorf("has name span covers %q, want count", src[sp.Start.Offset:sp.End.Offset])
	}
}

func TestParseModuleName(t *testing.T) {
	mod, _ := ParseModule("graphs/social.jac", "")
	if mod.Name != "social" {
		t.Errorf("module name = %q, want social", mod.Name)
	}
	if mod.Source != "graphs/social.jac" {
		t.Errorf("module source = %q", mod.Source)
	}
}

func TestParseParentsLinked(t *testing.T) {
	mod := mustParse(t, "node A { can go { self ++> here; } }")
	arch := mod.Body[0].(*ast.Architype)
	if arch.Parent() != mod {
		t.Error("architype parent not module")
	}
	ab := arch.Body[0].(*ast.Ability)
	op := ab.Body[0].(*ast.ConnectOp)
	if op.Parent() != ab {
		t.Error("connect parent not ability")
	}
	if op.Left.Parent() != op {
		t.Error("operand parent not connect op")
	}
}

func TestParseSyntaxErrors(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"node { }", "expected identifier"},
		{"node A { has x }", "expected ;"},
		{"can f with maybe { }", "expected entry or exit"},
		{"x = ;", "unexpected token"},
		{`"unclosed`, "unterminated string"},
	}

	for _, tc := range tests {
		_, diags := ParseModule("test.jac", tc.input)
		if !diags.HasErrors() {
			t.Errorf("parse %q: no errors reported", tc.input)
			continue
		}
		found := false
		for _, s := range diags.Strings() {
			if strings.Contains(s, tc.want) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("parse %q: diagnostics %v missing %q", tc.input, diags.Strings(), tc.want)
		}
	}
}

func TestParseErrorsAreSyntaxKind(t *testing.T) {
	_, diags := ParseModule("test.jac", "node { }")
	if diags.Count(diag.SyntaxError) == 0 {
		t.Fatal("expected syntax-error diagnostics")
	}
	for _, d := range diags {
		if d.Severity != diag.SevError {
			t.Errorf("severity = %v, want error", d.Severity)
		}
	}
}
