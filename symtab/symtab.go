// Package symtab implements the scope tree and symbol store owned by the
// resolution passes. Scopes are opened around binding constructs, filled,
// then sealed; binding into a sealed scope is an engine bug and panics.
package symtab

import (
	"fmt"

	"github.com/nisalV/jaseci/ast"
)

// ScopeKind labels the construct class a scope belongs to.
type ScopeKind int

const (
	ModuleScope ScopeKind = iota
	ArchitypeScope
	AbilityScope
	ComprScope
	LoopScope
)

var scopeKindNames = [...]string{
	ModuleScope:    "module",
	ArchitypeScope: "architype",
	AbilityScope:   "ability",
	ComprScope:     "comprehension",
	LoopScope:      "loop",
}

func (k ScopeKind) String() string {
	if k < 0 || int(k) >= len(scopeKindNames) {
		return fmt.Sprintf("ScopeKind(%d)", int(k))
	}
	return scopeKindNames[k]
}

// SymbolKind labels what a name was declared as.
type SymbolKind int

const (
	LocalVar SymbolKind = iota
	Param
	HasVar
	Architype
	Enum
	Ability
)

var symbolKindNames = [...]string{
	LocalVar:  "local-var",
	Param:     "parameter",
	HasVar:    "has-var",
	Architype: "architype",
	Enum:      "enum",
	Ability:   "ability",
}

func (k SymbolKind) String() string {
	if k < 0 || int(k) >= len(symbolKindNames) {
		return fmt.Sprintf("SymbolKind(%d)", int(k))
	}
	return symbolKindNames[k]
}

// Symbol is one name binding. Pseudo-symbols (self, here, visitor, root)
// are Symbol values too, but live outside every scope map; their Owner is
// the scope they are considered declared in.
type Symbol struct {
	Name    string
	Kind    SymbolKind
	Decl    ast.Node // declaration node the binding points at
	Owner   *Scope
	Shadows *Symbol // earlier same-name binding this one replaced, if any
}

func (s *Symbol) String() string {
	return fmt.Sprintf("%s '%s'", s.Kind, s.Name)
}

// Scope is one frame of the scope tree.
type Scope struct {
	Kind     ScopeKind
	Owner    ast.Node // construct that opened the scope, nil for the root
	Parent   *Scope
	children []*Scope
	names    map[string]*Symbol
	order    []*Symbol // every binding made here, in binding order
	sealed   bool
}

// NewScope opens a scope under parent; parent is nil only for the module
// root.
func NewScope(kind ScopeKind, parent *Scope, owner ast.Node) *Scope {
	sc := &Scope{
		Kind:   kind,
		Owner:  owner,
		Parent: parent,
		names:  make(map[string]*Symbol),
	}
	if parent != nil {
		parent.children = append(parent.children, sc)
	}
	return sc
}

// Bind declares name in this scope. A rebinding replaces the visible entry
// and records the replaced symbol; both stay in binding order for
// diagnostics and printers. Binding into a sealed scope panics.
func (sc *Scope) Bind(name string, kind SymbolKind, decl ast.Node) *Symbol {
	if sc.sealed {
		panic(fmt.Sprintf("symtab: bind '%s' into sealed %s scope", name, sc.Kind))
	}
	sym := &Symbol{
		Name:    name,
		Kind:    kind,
		Decl:    decl,
		Owner:   sc,
		Shadows: sc.names[name],
	}
	sc.names[name] = sym
	sc.order = append(sc.order, sym)
	return sym
}

// LookupLocal resolves name in this scope only.
func (sc *Scope) LookupLocal(name string) *Symbol {
	return sc.names[name]
}

// Lookup resolves name here or in any enclosing scope.
func (sc *Scope) Lookup(name string) *Symbol {
	for s := sc; s != nil; s = s.Parent {
		if sym := s.names[name]; sym != nil {
			return sym
		}
	}
	return nil
}

// Seal freezes the scope. Lookups remain valid forever; further binds are
// engine bugs.
func (sc *Scope) Seal() {
	sc.sealed = true
}

// Sealed reports whether the scope was sealed.
func (sc *Scope) Sealed() bool {
	return sc.sealed
}

// Symbols returns every binding made in this scope, in binding order,
// including bindings later shadowed.
func (sc *Scope) Symbols() []*Symbol {
	return sc.order
}

// Children returns the scopes opened under this one, in opening order.
func (sc *Scope) Children() []*Scope {
	return sc.children
}

// Depth is the number of ancestors above this scope.
func (sc *Scope) Depth() int {
	d := 0
	for s := sc.Parent; s != nil; s = s.Parent {
		d++
	}
	return d
}

// Describe names a scope for printers and hover text.
func (sc *Scope) Describe() string {
	if sc.Owner == nil {
		return sc.Kind.String()
	}
	switch o := sc.Owner.(type) {
	case *ast.Module:
		return fmt.Sprintf("module %s", o.Name)
	case *ast.Architype:
		return fmt.Sprintf("%s %s", o.Arch, o.Name.Value)
	case *ast.Enum:
		return fmt.Sprintf("enum %s", o.Name.Value)
	case *ast.Ability:
		return fmt.Sprintf("can %s", o.Name.Value)
	default:
		return sc.Kind.String()
	}
}

// Walk visits the scope tree pre-order.
func Walk(sc *Scope, fn func(*Scope)) {
	fn(sc)
	for _, c := range sc.children {
		Walk(c, fn)
	}
}
