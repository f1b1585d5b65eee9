package symtab

import (
	"strings"
	"testing"

	"github.com/nisalV/jaseci/ast"
)

func TestBindAndLookup(t *testing.T) {
	mod := NewScope(ModuleScope, nil, nil)
	decl := &ast.Architype{Arch: ast.NodeArch, Name: &ast.Name{Value: "Person"}}
	sym := mod.Bind("Person", Architype, decl)

	if got := mod.Lookup("Person"); got != sym {
		t.Errorf("Lookup = %v, want the bound symbol", got)
	}
	if got := mod.Lookup("nobody"); got != nil {
		t.Errorf("Lookup(nobody) = %v, want nil", got)
	}
	if sym.Owner != mod {
		t.Errorf("sym.Owner = %v, want the module scope", sym.Owner)
	}
	if sym.Decl != ast.Node(decl) {
		t.Errorf("sym.Decl = %v, want the architype node", sym.Decl)
	}
}

func TestLookupWalksOutward(t *testing.T) {
	mod := NewScope(ModuleScope, nil, nil)
	arch := NewScope(ArchitypeScope, mod, nil)
	ability := NewScope(AbilityScope, arch, nil)

	mod.Bind("Person", Architype, &ast.Name{Value: "Person"})
	arch.Bind("age", HasVar, &ast.Name{Value: "age"})

	if got := ability.Lookup("age"); got == nil || got.Kind != HasVar {
		t.Errorf("inner Lookup(age) = %v, want the has-var", got)
	}
	if got := ability.Lookup("Person"); got == nil || got.Kind != Architype {
		t.Errorf("inner Lookup(Person) = %v, want the architype", got)
	}
	if got := ability.LookupLocal("age"); got != nil {
		t.Errorf("LookupLocal(age) = %v, want nil", got)
	}
}

func TestRebindShadowsAndRetains(t *testing.T) {
	sc := NewScope(ModuleScope, nil, nil)
	first := sc.Bind("x", LocalVar, &ast.Name{Value: "x"})
	second := sc.Bind("x", LocalVar, &ast.Name{Value: "x"})

	if got := sc.Lookup("x"); got != second {
		t.Errorf("Lookup after rebind = %v, want the later binding", got)
	}
	if second.Shadows != first {
		t.Errorf("second.Shadows = %v, want the first binding", second.Shadows)
	}
	syms := sc.Symbols()
	if len(syms) != 2 || syms[0] != first || syms[1] != second {
		t.Errorf("Symbols() = %v, want both bindings in order", syms)
	}
}

func TestSealedBindPanics(t *testing.T) {
	sc := NewScope(LoopScope, nil, nil)
	sc.Seal()
	if !sc.Sealed() {
		t.Fatal("Sealed() = false after Seal")
	}
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("bind into sealed scope did not panic")
		}
		if msg, ok := r.(string); !ok || !strings.Contains(msg, "sealed") {
			t.Errorf("panic = %v, want message mentioning sealed", r)
		}
	}()
	sc.Bind("x", LocalVar, &ast.Name{Value: "x"})
}

func TestSealedLookupStillWorks(t *testing.T) {
	sc := NewScope(ComprScope, nil, nil)
	sym := sc.Bind("it", LocalVar, &ast.Name{Value: "it"})
	sc.Seal()
	if got := sc.Lookup("it"); got != sym {
		t.Errorf("Lookup after seal = %v, want the binding", got)
	}
}

func TestWalkAndDepth(t *testing.T) {
	mod := NewScope(ModuleScope, nil, nil)
	a := NewScope(ArchitypeScope, mod, nil)
	b := NewScope(AbilityScope, a, nil)
	NewScope(LoopScope, b, nil)

	var kinds []ScopeKind
	Walk(mod, func(sc *Scope) { kinds = append(kinds, sc.Kind) })
	want := []ScopeKind{ModuleScope, ArchitypeScope, AbilityScope, LoopScope}
	if len(kinds) != len(want) {
		t.Fatalf("Walk visited %d scopes, want %d", len(kinds), len(want))
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("walk[%d] = %v, want %v", i, kinds[i], want[i])
		}
	}
	if got := b.Depth(); got != 2 {
		t.Errorf("Depth = %d, want 2", got)
	}
}

func TestDescribe(t *testing.T) {
	arch := &ast.Architype{Arch: ast.WalkerArch, Name: &ast.Name{Value: "Crawler"}}
	sc := NewScope(ArchitypeScope, nil, arch)
	if got := sc.Describe(); got != "walker Crawler" {
		t.Errorf("Describe = %q, want %q", got, "walker Crawler")
	}
	root := NewScope(ModuleScope, nil, nil)
	if got := root.Describe(); got != "module" {
		t.Errorf("root Describe = %q, want %q", got, "module")
	}
}
