package passes

import (
	"fmt"
	"sort"

	"github.com/nisalV/jaseci/ast"
	"github.com/nisalV/jaseci/diag"
	"github.com/nisalV/jaseci/symtab"
)

// Status classifies what resolution decided about a use site.
type Status int

const (
	Resolved Status = iota
	PendingMember
	Unresolved
)

var statusNames = [...]string{
	Resolved:      "resolved",
	PendingMember: "pending-member",
	Unresolved:    "unresolved",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

// Result is the resolution outcome attached to one node. Sym is non-nil
// only for Resolved results.
type Result struct {
	Status Status
	Sym    *symtab.Symbol
}

// Resolution is the sealed output of the def-use pass. The tree itself is
// never mutated; every outcome is addressed by node identity. The scope
// tree lives and dies with this value.
type Resolution struct {
	Module *ast.Module

	moduleScope *symtab.Scope
	results     map[ast.Node]Result
	opened      map[ast.Node]*symtab.Scope
	mutations   map[*ast.Assignment]bool
	diags       diag.List
}

// Resolve returns the result recorded for a use-site node.
func (r *Resolution) Resolve(n ast.Node) (Result, bool) {
	res, ok := r.results[n]
	return res, ok
}

// ScopeOf returns the scope a node opened, or the innermost scope
// containing it.
func (r *Resolution) ScopeOf(n ast.Node) *symtab.Scope {
	for cur := n; cur != nil; cur = cur.Parent() {
		if sc := r.opened[cur]; sc != nil {
			return sc
		}
	}
	return nil
}

// ModuleScope returns the root of the scope tree.
func (r *Resolution) ModuleScope() *symtab.Scope {
	return r.moduleScope
}

// Diagnostics returns everything reported, in emission order.
func (r *Resolution) Diagnostics() diag.List {
	return r.diags
}

// IsMutation reports whether the assignment rebound an existing name or
// wrote through an attribute chain, rather than introducing a binding.
func (r *Resolution) IsMutation(a *ast.Assignment) bool {
	return r.mutations[a]
}

// NameUses returns every Name node resolved to the symbol, declaration
// sites included, ordered by source position.
func (r *Resolution) NameUses(sym *symtab.Symbol) []*ast.Name {
	var out []*ast.Name
	for n, res := range r.results {
		if res.Status != Resolved || res.Sym != sym {
			continue
		}
		if name, ok := n.(*ast.Name); ok {
			out = append(out, name)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Span().Start.Offset < out[j].Span().Start.Offset
	})
	return out
}
