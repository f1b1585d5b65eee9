package ast

import "testing"

func span(startOff, endOff int) Span {
	return Span{
		Start: Position{Offset: startOff, Line: 1, Column: startOff + 1},
		End:   Position{Offset: endOff, Line: 1, Column: endOff + 1},
	}
}

func TestLinkSetsParents(t *testing.T) {
	name := &Name{Value: "x"}
	val := &IntLiteral{Value: 1}
	has := &HasVar{Name: name, Value: val}
	arch := &Architype{Arch: NodeArch, Name: &Name{Value: "Person"}, Body: []Node{has}}
	mod := &Module{Name: "m", Body: []Node{arch}}
	Link(mod)

	if got := name.Parent(); got != Node(has) {
		t.Errorf("name.Parent() = %v, want the HasVar", got)
	}
	if got := has.Parent(); got != Node(arch) {
		t.Errorf("has.Parent() = %v, want the Architype", got)
	}
	if got := arch.Parent(); got != Node(mod) {
		t.Errorf("arch.Parent() = %v, want the Module", got)
	}
	if mod.Parent() != nil {
		t.Errorf("module parent = %v, want nil", mod.Parent())
	}
}

func TestAncestor(t *testing.T) {
	ref := &SpecialVarRef{Var: SpecialSelf}
	ab := &Ability{Name: &Name{Value: "greet"}, Body: []Node{ref}}
	arch := &Architype{Arch: WalkerArch, Name: &Name{Value: "W"}, Body: []Node{ab}}
	mod := &Module{Name: "m", Body: []Node{arch}}
	Link(mod)

	if got := Ancestor(ref, KindAbility); got != Node(ab) {
		t.Errorf("Ancestor(ref, Ability) = %v, want the ability", got)
	}
	if got := Ancestor(ref, KindArchitype); got != Node(arch) {
		t.Errorf("Ancestor(ref, Architype) = %v, want the architype", got)
	}
	if got := Ancestor(mod, KindModule); got != nil {
		t.Errorf("Ancestor(module, Module) = %v, want nil", got)
	}
}

func TestChildrenOrder(t *testing.T) {
	tgt := &Name{Value: "a"}
	trailer := &Name{Value: "b"}
	at := &AtomTrailer{Target: tgt, Trailers: []*Name{trailer}}
	kids := at.Children()
	if len(kids) != 2 || kids[0] != Node(tgt) || kids[1] != Node(trailer) {
		t.Fatalf("AtomTrailer children = %v, want [target, trailer]", kids)
	}

	left := &Name{Value: "l"}
	right := &Name{Value: "r"}
	archref := &ArchRef{Name: &Name{Value: "Follows"}}
	conn := &ConnectOp{Left: left, Right: right, Dir: EdgeOut, Arch: archref}
	kids = conn.Children()
	if len(kids) != 3 || kids[0] != Node(left) || kids[1] != Node(archref) || kids[2] != Node(right) {
		t.Fatalf("ConnectOp children = %v, want [left, arch, right]", kids)
	}

	untyped := &ConnectOp{Left: left, Right: right, Dir: EdgeIn}
	if got := len(untyped.Children()); got != 2 {
		t.Errorf("untyped ConnectOp child count = %d, want 2", got)
	}
}

func TestOptionalChildrenSkipped(t *testing.T) {
	h := &HasVar{Name: &Name{Value: "x"}}
	if got := len(h.Children()); got != 1 {
		t.Errorf("HasVar without type/value child count = %d, want 1", got)
	}
	edge := &EdgeOpRef{Dir: EdgeAny}
	if got := edge.Children(); got != nil {
		t.Errorf("untyped EdgeOpRef children = %v, want nil", got)
	}
}

func TestNodeAt(t *testing.T) {
	inner := &Name{Value: "x"}
	inner.SpanVal = span(4, 5)
	outer := &DeleteStmt{Target: inner}
	outer.SpanVal = span(0, 6)
	mod := &Module{Name: "m", Body: []Node{outer}}
	mod.SpanVal = span(0, 6)
	Link(mod)

	if got := NodeAt(mod, 4); got != Node(inner) {
		t.Errorf("NodeAt(4) = %v, want the name", got)
	}
	if got := NodeAt(mod, 0); got != Node(outer) {
		t.Errorf("NodeAt(0) = %v, want the delete stmt", got)
	}
	if got := NodeAt(mod, 99); got != nil {
		t.Errorf("NodeAt(99) = %v, want nil", got)
	}
}

func TestKindStrings(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindModule, "Module"},
		{KindArchitype, "Architype"},
		{KindSpecialVarRef, "SpecialVarRef"},
		{KindBuiltinType, "BuiltinType"},
	}
	for _, tc := range tests {
		if got := tc.kind.String(); got != tc.want {
			t.Errorf("Kind.String() = %q, want %q", got, tc.want)
		}
	}
	if got := ArchKind(99).String(); got != "ArchKind(99)" {
		t.Errorf("out-of-range ArchKind = %q", got)
	}
}

func TestSpanContains(t *testing.T) {
	s := span(2, 5)
	for off, want := range map[int]bool{1: false, 2: true, 4: true, 5: false} {
		if got := s.Contains(off); got != want {
			t.Errorf("Contains(%d) = %v, want %v", off, got, want)
		}
	}
}
