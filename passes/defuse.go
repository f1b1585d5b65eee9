package passes

import (
	"github.com/tliron/commonlog"

	"github.com/nisalV/jaseci/ast"
	"github.com/nisalV/jaseci/diag"
	"github.com/nisalV/jaseci/symtab"
)

var log = commonlog.GetLogger("jac.defuse")

// ResolveModule runs definition-use resolution over a linked module tree:
// a pre-scan binds every module-level architype and enum name so forward
// references resolve, then the body pass opens and seals scopes and
// resolves every use site. Both traversals share one scope store. The tree
// is never mutated.
func ResolveModule(mod *ast.Module) *Resolution {
	p := &defUse{
		mod: mod,
		res: &Resolution{
			Module:    mod,
			results:   make(map[ast.Node]Result),
			opened:    make(map[ast.Node]*symtab.Scope),
			mutations: make(map[*ast.Assignment]bool),
		},
		required:   make(map[ast.Node]ast.Node),
		pseudo:     make(map[pseudoKey]*symtab.Symbol),
		archScopes: make(map[*symtab.Symbol]*symtab.Scope),
	}
	root := symtab.NewScope(symtab.ModuleScope, nil, mod)
	p.res.moduleScope = root
	p.res.opened[mod] = root
	p.stack = []*symtab.Scope{root}

	Run(&prescan{p: p}, mod)
	Run(p, mod)

	out := p.res
	p.res = nil
	log.Debugf("resolved module %s: %d results, %d diagnostics",
		mod.Name, len(out.results), len(out.diags))
	return out
}

// prescan is phase 1: it binds module-level architype and enum names and
// never descends into bodies.
type prescan struct {
	Base
	p *defUse
}

func (s *prescan) EnterArchitype(n *ast.Architype) Action {
	s.p.bindOnce(s.p.res.moduleScope, n.Name, symtab.Architype, n)
	return SkipChildren
}

func (s *prescan) EnterEnum(n *ast.Enum) Action {
	s.p.bindOnce(s.p.res.moduleScope, n.Name, symtab.Enum, n)
	return SkipChildren
}

func (s *prescan) EnterAbility(*ast.Ability) Action {
	return SkipChildren
}

// defUse is phase 2. One instance resolves one module tree; it is not safe
// for concurrent use, but independent modules may be resolved in parallel
// with independent instances.
type defUse struct {
	mod   *ast.Module
	res   *Resolution
	stack []*symtab.Scope

	deferred   []*ast.ArchRefChain
	required   map[ast.Node]ast.Node // arch operand -> graph operator requiring edge kind
	pseudo     map[pseudoKey]*symtab.Symbol
	archScopes map[*symtab.Symbol]*symtab.Scope
}

type pseudoKey struct {
	decl ast.Node
	v    ast.SpecialVar
}

func (p *defUse) cur() *symtab.Scope {
	return p.stack[len(p.stack)-1]
}

func (p *defUse) open(kind symtab.ScopeKind, owner ast.Node) *symtab.Scope {
	sc := symtab.NewScope(kind, p.cur(), owner)
	p.res.opened[owner] = sc
	p.stack = append(p.stack, sc)
	return sc
}

// ExitNode seals and pops the scope a node opened. The module scope is
// sealed here too, when the root exits.
func (p *defUse) ExitNode(n ast.Node) {
	if top := len(p.stack) - 1; top >= 0 && p.stack[top].Owner == n {
		p.stack[top].Seal()
		p.stack = p.stack[:top]
	}
}

// setResult records a result for a node. The first write wins, so a hook
// that pre-resolves its children keeps ownership when the engine reaches
// them again.
func (p *defUse) setResult(n ast.Node, r Result) {
	if _, ok := p.res.results[n]; !ok {
		p.res.results[n] = r
	}
}

func (p *defUse) has(n ast.Node) bool {
	_, ok := p.res.results[n]
	return ok
}

func resolvedTo(sym *symtab.Symbol) Result {
	return Result{Status: Resolved, Sym: sym}
}

func unresolvedResult() Result {
	return Result{Status: Unresolved}
}

// bindOnce binds name to decl in sc unless that exact binding already
// exists; the pre-scan and hoisting make repeat attempts normal. A genuine
// redeclaration shadows the old binding and reports DuplicateDefinition.
func (p *defUse) bindOnce(sc *symtab.Scope, name *ast.Name, kind symtab.SymbolKind, decl ast.Node) *symtab.Symbol {
	if sym := sc.LookupLocal(name.Value); sym != nil && sym.Decl == decl {
		return sym
	}
	for _, sym := range sc.Symbols() {
		if sym.Decl == decl && sym.Name == name.Value {
			return sym
		}
	}
	prev := sc.LookupLocal(name.Value)
	sym := sc.Bind(name.Value, kind, decl)
	if prev != nil {
		p.res.diags.Addf(diag.DuplicateDefinition, name.Span(),
			"duplicate definition of '%s' (previous declaration at line %d, column %d)",
			name.Value, prev.Decl.Span().Start.Line, prev.Decl.Span().Start.Column)
	}
	return sym
}

// ---------------------------------------------------------------------------
// Declaration hooks
// ---------------------------------------------------------------------------

func (p *defUse) EnterModule(*ast.Module) Action {
	return Continue
}

// EnterArchitype opens the architype scope and hoists every member name
// from the immediate body before any member resolution runs, so has-vars
// and abilities are visible regardless of textual position.
func (p *defUse) EnterArchitype(n *ast.Architype) Action {
	sym := p.bindOnce(p.cur(), n.Name, symtab.Architype, n)
	p.setResult(n.Name, resolvedTo(sym))
	sc := p.open(symtab.ArchitypeScope, n)
	p.archScopes[sym] = sc
	for _, m := range n.Body {
		switch d := m.(type) {
		case *ast.HasVar:
			p.bindOnce(sc, d.Name, symtab.HasVar, d)
		case *ast.Ability:
			p.bindOnce(sc, d.Name, symtab.Ability, d)
		case *ast.Architype:
			p.bindOnce(sc, d.Name, symtab.Architype, d)
		case *ast.Enum:
			p.bindOnce(sc, d.Name, symtab.Enum, d)
		}
	}
	return Continue
}

// EnterEnum binds the enumerators inside a fresh scope; enumerators never
// reference each other, so no hoisting subtleties apply.
func (p *defUse) EnterEnum(n *ast.Enum) Action {
	sym := p.bindOnce(p.cur(), n.Name, symtab.Enum, n)
	p.setResult(n.Name, resolvedTo(sym))
	sc := p.open(symtab.ArchitypeScope, n)
	p.archScopes[sym] = sc
	for _, it := range n.Items {
		s := p.bindOnce(sc, it, symtab.Enum, it)
		p.setResult(it, resolvedTo(s))
	}
	return Continue
}

func (p *defUse) EnterAbility(n *ast.Ability) Action {
	sym := p.bindOnce(p.cur(), n.Name, symtab.Ability, n)
	p.setResult(n.Name, resolvedTo(sym))
	p.open(symtab.AbilityScope, n)
	return Continue
}

func (p *defUse) EnterHasVar(n *ast.HasVar) Action {
	sym := p.bindOnce(p.cur(), n.Name, symtab.HasVar, n)
	p.setResult(n.Name, resolvedTo(sym))
	return Continue
}

func (p *defUse) EnterParamVar(n *ast.ParamVar) Action {
	sym := p.bindOnce(p.cur(), n.Name, symtab.Param, n)
	p.setResult(n.Name, resolvedTo(sym))
	return Continue
}

// ---------------------------------------------------------------------------
// Expression hooks
// ---------------------------------------------------------------------------

// EnterAssignment resolves the value before the target, so a bare-name
// binding becomes visible only to code after this point. A target already
// bound in the current scope, or any non-name target, makes the assignment
// a mutation instead of a fresh definition.
func (p *defUse) EnterAssignment(n *ast.Assignment) Action {
	Walk(p, n.Value)
	if t, ok := n.Target.(*ast.Name); ok {
		if prev := p.cur().LookupLocal(t.Value); prev != nil {
			p.setResult(t, resolvedTo(prev))
			p.res.mutations[n] = true
		} else {
			sym := p.cur().Bind(t.Value, symtab.LocalVar, t)
			p.setResult(t, resolvedTo(sym))
		}
	} else {
		p.res.mutations[n] = true
		Walk(p, n.Target)
	}
	return SkipChildren
}

// EnterAtomTrailer resolves only the base; member names are not symbol
// table entries, so every trailer segment stays pending for a later
// type-aware pass.
func (p *defUse) EnterAtomTrailer(n *ast.AtomTrailer) Action {
	Walk(p, n.Target)
	for _, tr := range n.Trailers {
		p.setResult(tr, Result{Status: PendingMember})
	}
	return SkipChildren
}

func (p *defUse) EnterFuncCall(*ast.FuncCall) Action {
	return Continue
}

func (p *defUse) EnterIndexSlice(*ast.IndexSlice) Action {
	return Continue
}

func (p *defUse) EnterInnerCompr(n *ast.InnerCompr) Action {
	Walk(p, n.Iter)
	p.open(symtab.ComprScope, n)
	for _, nm := range n.Names {
		sym := p.bindOnce(p.cur(), nm, symtab.LocalVar, nm)
		p.setResult(nm, resolvedTo(sym))
	}
	if n.Cond != nil {
		Walk(p, n.Cond)
	}
	Walk(p, n.Out)
	return SkipChildren
}

// EnterFilterCompr binds the implicit item variable 'it' inside the
// comprehension scope; the filtered target resolves in the enclosing
// scope.
func (p *defUse) EnterFilterCompr(n *ast.FilterCompr) Action {
	if n.Target != nil {
		Walk(p, n.Target)
	}
	p.open(symtab.ComprScope, n)
	p.cur().Bind("it", symtab.LocalVar, n)
	for _, c := range n.Conds {
		Walk(p, c.Lhs)
		if c.Op != nil {
			Walk(p, c.Op)
		}
		if c.Rhs != nil {
			Walk(p, c.Rhs)
		}
	}
	return SkipChildren
}

// EnterSpecialVarRef resolves the pseudo-symbols by construct context, not
// lexical lookup; they never participate in bind or shadowing.
func (p *defUse) EnterSpecialVarRef(n *ast.SpecialVarRef) Action {
	sym, problem := p.pseudoFor(n)
	if sym == nil {
		p.res.diags.Addf(diag.InvalidContext, n.Span(), "%s", problem)
		p.setResult(n, unresolvedResult())
	} else {
		p.setResult(n, resolvedTo(sym))
	}
	return Continue
}

// EnterExprAsItem evaluates the expression, then binds the alias into the
// enclosing construct's scope, visible to code after this point.
func (p *defUse) EnterExprAsItem(n *ast.ExprAsItem) Action {
	Walk(p, n.Expr)
	sym := p.bindOnce(p.cur(), n.Alias, symtab.LocalVar, n)
	p.setResult(n.Alias, resolvedTo(sym))
	return SkipChildren
}

// ---------------------------------------------------------------------------
// Architype reference hooks
// ---------------------------------------------------------------------------

func (p *defUse) EnterArchRef(n *ast.ArchRef) Action {
	if p.has(n) {
		return SkipChildren
	}
	sym := p.res.moduleScope.Lookup(n.Name.Value)
	if sym == nil {
		p.res.diags.Addf(diag.UnresolvedName, n.Span(), "unresolved architype '%s'", n.Name.Value)
		p.setResult(n.Name, unresolvedResult())
		p.setResult(n, unresolvedResult())
		return SkipChildren
	}
	p.setResult(n.Name, resolvedTo(sym))
	if op := p.required[n]; op != nil && !isEdgeArch(sym) {
		p.res.diags.Addf(diag.TypeMismatch, n.Span(), "'%s' is not an edge architype", n.Name.Value)
		p.setResult(n, unresolvedResult())
		return SkipChildren
	}
	p.setResult(n, resolvedTo(sym))
	return SkipChildren
}

func (p *defUse) EnterArchRefChain(n *ast.ArchRefChain) Action {
	if !p.has(n) {
		p.resolveChain(n, false)
	}
	return SkipChildren
}

type chainHit struct {
	ref *ast.ArchRef
	sym *symtab.Symbol
}

// resolveChain walks a dotted architype path segment by segment, each
// resolved architype's scope providing the next segment's lookup root. A
// chain whose next scope is not built yet is deferred and retried once in
// AfterPass; a chain revisiting a symbol already on its path aborts with
// CyclicReference. Nothing is committed until the chain's fate is known,
// keeping results write-once.
func (p *defUse) resolveChain(n *ast.ArchRefChain, final bool) {
	var path []chainHit
	var cur *symtab.Symbol
	for i, seg := range n.Segments {
		var sym *symtab.Symbol
		if i == 0 {
			sym = p.res.moduleScope.Lookup(seg.Name.Value)
		} else {
			if cur.Kind != symtab.Architype && cur.Kind != symtab.Enum {
				p.res.diags.Addf(diag.UnresolvedName, seg.Span(),
					"'%s' has no member scope", cur.Name)
				p.commitChain(n, path, seg)
				return
			}
			owner := p.archScopes[cur]
			if owner == nil {
				if !final {
					p.deferred = append(p.deferred, n)
					return
				}
				p.res.diags.Addf(diag.UnresolvedName, seg.Span(),
					"'%s' has no member scope", cur.Name)
				p.commitChain(n, path, seg)
				return
			}
			sym = owner.Lookup(seg.Name.Value)
		}
		if sym == nil {
			if i == 0 {
				p.res.diags.Addf(diag.UnresolvedName, seg.Span(),
					"unresolved architype '%s'", seg.Name.Value)
			} else {
				p.res.diags.Addf(diag.UnresolvedName, seg.Span(),
					"'%s' is not a member of '%s'", seg.Name.Value, cur.Name)
			}
			p.commitChain(n, path, seg)
			return
		}
		for _, h := range path {
			if h.sym == sym {
				p.res.diags.Addf(diag.CyclicReference, seg.Span(),
					"architype reference chain revisits '%s'", sym.Name)
				p.commitChain(n, path, seg)
				return
			}
		}
		path = append(path, chainHit{seg, sym})
		cur = sym
	}
	p.commitChain(n, path, nil)
	last := path[len(path)-1].sym
	if op := p.required[n]; op != nil && !isEdgeArch(last) {
		p.res.diags.Addf(diag.TypeMismatch, n.Span(), "'%s' is not an edge architype", last.Name)
		p.setResult(n, unresolvedResult())
		return
	}
	p.setResult(n, resolvedTo(last))
}

// commitChain records the resolved prefix; failed is the segment the chain
// died on, nil when the whole chain resolved.
func (p *defUse) commitChain(n *ast.ArchRefChain, path []chainHit, failed *ast.ArchRef) {
	for _, h := range path {
		p.setResult(h.ref, resolvedTo(h.sym))
		p.setResult(h.ref.Name, resolvedTo(h.sym))
	}
	if failed != nil {
		p.setResult(failed, unresolvedResult())
		p.setResult(failed.Name, unresolvedResult())
		p.setResult(n, unresolvedResult())
	}
}

// ---------------------------------------------------------------------------
// Graph operator hooks
// ---------------------------------------------------------------------------

// The operator hooks register the edge-kind requirement before the engine
// descends; the arch-ref hooks validate it when the operand resolves.
// Operators never introduce bindings.

func (p *defUse) EnterEdgeOpRef(n *ast.EdgeOpRef) Action {
	if n.Arch != nil {
		p.required[n.Arch] = n
	}
	return Continue
}

func (p *defUse) EnterConnectOp(n *ast.ConnectOp) Action {
	if n.Arch != nil {
		p.required[n.Arch] = n
	}
	return Continue
}

func (p *defUse) EnterDisconnectOp(*ast.DisconnectOp) Action {
	return Continue
}

// ---------------------------------------------------------------------------
// Statement hooks
// ---------------------------------------------------------------------------

func (p *defUse) EnterInForStmt(n *ast.InForStmt) Action {
	Walk(p, n.Iter)
	p.open(symtab.LoopScope, n)
	for _, nm := range n.Names {
		sym := p.bindOnce(p.cur(), nm, symtab.LocalVar, nm)
		p.setResult(nm, resolvedTo(sym))
	}
	for _, s := range n.Body {
		Walk(p, s)
	}
	return SkipChildren
}

// EnterDeleteStmt resolves its target as a use, never a definition.
func (p *defUse) EnterDeleteStmt(n *ast.DeleteStmt) Action {
	switch n.Target.(type) {
	case *ast.Name, *ast.AtomTrailer:
	default:
		p.res.diags.Addf(diag.InvalidContext, n.Target.Span(),
			"delete target must be a name or attribute chain")
	}
	return Continue
}

// ---------------------------------------------------------------------------
// Leaf hooks
// ---------------------------------------------------------------------------

// EnterName is the principal use site. A result recorded earlier means a
// declaring construct already consumed this name.
func (p *defUse) EnterName(n *ast.Name) Action {
	if p.has(n) {
		return Continue
	}
	if sym := p.cur().Lookup(n.Value); sym != nil {
		p.setResult(n, resolvedTo(sym))
	} else {
		p.res.diags.Addf(diag.UnresolvedName, n.Span(), "unresolved name '%s'", n.Value)
		p.setResult(n, unresolvedResult())
	}
	return Continue
}

func (p *defUse) EnterToken(*ast.Token) Action                 { return Continue }
func (p *defUse) EnterIntLiteral(*ast.IntLiteral) Action       { return Continue }
func (p *defUse) EnterFloatLiteral(*ast.FloatLiteral) Action   { return Continue }
func (p *defUse) EnterStringLiteral(*ast.StringLiteral) Action { return Continue }
func (p *defUse) EnterBoolLiteral(*ast.BoolLiteral) Action     { return Continue }
func (p *defUse) EnterBuiltinType(*ast.BuiltinType) Action     { return Continue }

// AfterPass retries each deferred chain once against the now-complete
// store; whatever diagnostics remain are final.
func (p *defUse) AfterPass() {
	work := p.deferred
	p.deferred = nil
	for _, n := range work {
		p.resolveChain(n, true)
	}
}

// ---------------------------------------------------------------------------
// Pseudo-symbols
// ---------------------------------------------------------------------------

// pseudoFor resolves self, here, visitor and root by context. Identical
// contexts share one Symbol, so two self refs in one architype resolve to
// the same object.
func (p *defUse) pseudoFor(n *ast.SpecialVarRef) (*symtab.Symbol, string) {
	if n.Var == ast.SpecialRoot {
		return p.pseudoSym(pseudoKey{p.mod, n.Var}, p.mod, p.res.moduleScope), ""
	}
	ability := ast.Ancestor(n, ast.KindAbility)
	if ability == nil {
		return nil, "'" + n.Var.String() + "' is only valid inside an ability body"
	}
	archNode := ast.Ancestor(ability, ast.KindArchitype)
	if archNode == nil {
		return nil, "'" + n.Var.String() + "' is only valid inside an architype's ability"
	}
	arch := archNode.(*ast.Architype)
	switch n.Var {
	case ast.SpecialHere:
		if arch.Arch != ast.NodeArch && arch.Arch != ast.EdgeArch {
			return nil, "'here' is only valid inside a node or edge ability, not in " +
				arch.Arch.String() + " '" + arch.Name.Value + "'"
		}
	case ast.SpecialVisitor:
		if arch.Arch != ast.WalkerArch {
			return nil, "'visitor' is only valid inside a walker ability, not in " +
				arch.Arch.String() + " '" + arch.Name.Value + "'"
		}
	}
	return p.pseudoSym(pseudoKey{archNode, n.Var}, archNode, p.res.opened[archNode]), ""
}

func (p *defUse) pseudoSym(key pseudoKey, decl ast.Node, owner *symtab.Scope) *symtab.Symbol {
	if s := p.pseudo[key]; s != nil {
		return s
	}
	s := &symtab.Symbol{
		Name:  key.v.String(),
		Kind:  symtab.Param,
		Decl:  decl,
		Owner: owner,
	}
	p.pseudo[key] = s
	return s
}

func isEdgeArch(sym *symtab.Symbol) bool {
	arch, ok := sym.Decl.(*ast.Architype)
	return ok && arch.Arch == ast.EdgeArch
}
