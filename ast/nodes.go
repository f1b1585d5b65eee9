package ast

// ---------------------------------------------------------------------------
// Declaration nodes
// ---------------------------------------------------------------------------

// Module is the root node of one parsed source file.
type Module struct {
	base
	Name   string // module name, derived from the file name
	Source string // path the module was parsed from
	Body   []Node
}

func (n *Module) Kind() Kind { return KindModule }
func (n *Module) Children() []Node {
	out := make([]Node, 0, len(n.Body))
	for _, c := range n.Body {
		out = append(out, c)
	}
	return out
}

// Architype declares a node, edge, walker or object type.
type Architype struct {
	base
	Arch ArchKind
	Name *Name
	Body []Node
}

func (n *Architype) Kind() Kind { return KindArchitype }
func (n *Architype) Children() []Node {
	out := make([]Node, 0, len(n.Body)+1)
	out = append(out, n.Name)
	for _, c := range n.Body {
		out = append(out, c)
	}
	return out
}

// Enum declares an enumeration with its enumerator names.
type Enum struct {
	base
	Name  *Name
	Items []*Name
}

func (n *Enum) Kind() Kind { return KindEnum }
func (n *Enum) Children() []Node {
	out := make([]Node, 0, len(n.Items)+1)
	out = append(out, n.Name)
	for _, it := range n.Items {
		out = append(out, it)
	}
	return out
}

// Ability declares a callable member or module-level ability. Abstract
// abilities carry no body.
type Ability struct {
	base
	Name     *Name
	Params   []*ParamVar
	Trigger  Trigger
	Body     []Node
	Abstract bool
}

func (n *Ability) Kind() Kind { return KindAbility }
func (n *Ability) Children() []Node {
	out := make([]Node, 0, 1+len(n.Params)+len(n.Body))
	out = append(out, n.Name)
	for _, p := range n.Params {
		out = append(out, p)
	}
	for _, c := range n.Body {
		out = append(out, c)
	}
	return out
}

// HasVar declares one architype field from a has statement.
type HasVar struct {
	base
	Name    *Name
	TypeTag Node // BuiltinType, ArchRef or ArchRefChain; nil when untyped
	Value   Node // default expression, nil when absent
}

func (n *HasVar) Kind() Kind { return KindHasVar }
func (n *HasVar) Children() []Node {
	out := []Node{n.Name}
	if n.TypeTag != nil {
		out = append(out, n.TypeTag)
	}
	if n.Value != nil {
		out = append(out, n.Value)
	}
	return out
}

// ParamVar declares one ability parameter.
type ParamVar struct {
	base
	Name    *Name
	TypeTag Node
	Value   Node // default expression, nil when absent
}

func (n *ParamVar) Kind() Kind { return KindParamVar }
func (n *ParamVar) Children() []Node {
	out := []Node{n.Name}
	if n.TypeTag != nil {
		out = append(out, n.TypeTag)
	}
	if n.Value != nil {
		out = append(out, n.Value)
	}
	return out
}

// ---------------------------------------------------------------------------
// Expression nodes
// ---------------------------------------------------------------------------

// Assignment binds or mutates a target with the value expression.
type Assignment struct {
	base
	Target Node
	Value  Node
}

func (n *Assignment) Kind() Kind       { return KindAssignment }
func (n *Assignment) Children() []Node { return []Node{n.Target, n.Value} }

// AtomTrailer is a base expression followed by one or more attribute
// segments (a.b.c). Calls, indexes and filters compose around it.
type AtomTrailer struct {
	base
	Target   Node
	Trailers []*Name
}

func (n *AtomTrailer) Kind() Kind { return KindAtomTrailer }
func (n *AtomTrailer) Children() []Node {
	out := make([]Node, 0, len(n.Trailers)+1)
	out = append(out, n.Target)
	for _, t := range n.Trailers {
		out = append(out, t)
	}
	return out
}

// FuncCall invokes the target expression with arguments.
type FuncCall struct {
	base
	Target Node
	Args   []Node
}

func (n *FuncCall) Kind() Kind { return KindFuncCall }
func (n *FuncCall) Children() []Node {
	out := make([]Node, 0, len(n.Args)+1)
	out = append(out, n.Target)
	for _, a := range n.Args {
		out = append(out, a)
	}
	return out
}

// IndexSlice indexes or slices the target expression.
type IndexSlice struct {
	base
	Target  Node
	Start   Node // nil for open start
	Stop    Node // nil for open stop
	Step    Node // nil when no step given
	IsRange bool // true for a:b forms, false for plain a[i]
}

func (n *IndexSlice) Kind() Kind { return KindIndexSlice }
func (n *IndexSlice) Children() []Node {
	out := []Node{n.Target}
	if n.Start != nil {
		out = append(out, n.Start)
	}
	if n.Stop != nil {
		out = append(out, n.Stop)
	}
	if n.Step != nil {
		out = append(out, n.Step)
	}
	return out
}

// InnerCompr is a bracketed comprehension [out for names in iter if cond].
type InnerCompr struct {
	base
	Out   Node
	Names []*Name
	Iter  Node
	Cond  Node // nil when no if clause
}

func (n *InnerCompr) Kind() Kind { return KindInnerCompr }
func (n *InnerCompr) Children() []Node {
	out := []Node{n.Out}
	for _, nm := range n.Names {
		out = append(out, nm)
	}
	out = append(out, n.Iter)
	if n.Cond != nil {
		out = append(out, n.Cond)
	}
	return out
}

// FilterCompr filters the target collection with predicate conditions. The
// implicit item variable is in scope inside the conditions.
type FilterCompr struct {
	base
	Target Node
	Conds  []FilterCond
}

func (n *FilterCompr) Kind() Kind { return KindFilterCompr }
func (n *FilterCompr) Children() []Node {
	out := []Node{n.Target}
	for _, c := range n.Conds {
		out = append(out, c.Lhs)
		if c.Op != nil {
			out = append(out, c.Op)
		}
		if c.Rhs != nil {
			out = append(out, c.Rhs)
		}
	}
	return out
}

// SpecialVarRef references one of the pseudo-variables self, here, visitor
// or root.
type SpecialVarRef struct {
	base
	Var SpecialVar
}

func (n *SpecialVarRef) Kind() Kind       { return KindSpecialVarRef }
func (n *SpecialVarRef) Children() []Node { return nil }

// ExprAsItem evaluates an expression and binds its result to an alias
// (expr as name).
type ExprAsItem struct {
	base
	Expr  Node
	Alias *Name
}

func (n *ExprAsItem) Kind() Kind       { return KindExprAsItem }
func (n *ExprAsItem) Children() []Node { return []Node{n.Expr, n.Alias} }

// ArchRef references an architype or enum by name.
type ArchRef struct {
	base
	Name *Name
}

func (n *ArchRef) Kind() Kind       { return KindArchRef }
func (n *ArchRef) Children() []Node { return []Node{n.Name} }

// ArchRefChain is a dotted architype path (A.B.C).
type ArchRefChain struct {
	base
	Segments []*ArchRef
}

func (n *ArchRefChain) Kind() Kind { return KindArchRefChain }
func (n *ArchRefChain) Children() []Node {
	out := make([]Node, 0, len(n.Segments))
	for _, s := range n.Segments {
		out = append(out, s)
	}
	return out
}

// ---------------------------------------------------------------------------
// Graph operator nodes
// ---------------------------------------------------------------------------

// EdgeOpRef is an edge reference such as -->, <-- or ->:Follows:->.
type EdgeOpRef struct {
	base
	Dir  EdgeDir
	Arch Node // ArchRef or ArchRefChain for typed refs, nil otherwise
}

func (n *EdgeOpRef) Kind() Kind { return KindEdgeOpRef }
func (n *EdgeOpRef) Children() []Node {
	if n.Arch == nil {
		return nil
	}
	return []Node{n.Arch}
}

// ConnectOp connects two operands, optionally through a typed edge.
type ConnectOp struct {
	base
	Left  Node
	Right Node
	Dir   EdgeDir
	Arch  Node // ArchRef or ArchRefChain for typed connects, nil otherwise
}

func (n *ConnectOp) Kind() Kind { return KindConnectOp }
func (n *ConnectOp) Children() []Node {
	out := []Node{n.Left}
	if n.Arch != nil {
		out = append(out, n.Arch)
	}
	out = append(out, n.Right)
	return out
}

// DisconnectOp removes edges matching the reference between two operands.
type DisconnectOp struct {
	base
	Left  Node
	Edge  *EdgeOpRef
	Right Node
}

func (n *DisconnectOp) Kind() Kind       { return KindDisconnectOp }
func (n *DisconnectOp) Children() []Node { return []Node{n.Left, n.Edge, n.Right} }

// ---------------------------------------------------------------------------
// Statement nodes
// ---------------------------------------------------------------------------

// InForStmt iterates the loop names over the iterable.
type InForStmt struct {
	base
	Names []*Name
	Iter  Node
	Body  []Node
}

func (n *InForStmt) Kind() Kind { return KindInForStmt }
func (n *InForStmt) Children() []Node {
	out := make([]Node, 0, len(n.Names)+len(n.Body)+1)
	for _, nm := range n.Names {
		out = append(out, nm)
	}
	out = append(out, n.Iter)
	for _, c := range n.Body {
		out = append(out, c)
	}
	return out
}

// DeleteStmt deletes the target (del expr).
type DeleteStmt struct {
	base
	Target Node
}

func (n *DeleteStmt) Kind() Kind       { return KindDeleteStmt }
func (n *DeleteStmt) Children() []Node { return []Node{n.Target} }

// ---------------------------------------------------------------------------
// Leaf nodes
// ---------------------------------------------------------------------------

// Name is an identifier occurrence, at a declaration or a use site.
type Name struct {
	base
	Value string
}

func (n *Name) Kind() Kind       { return KindName }
func (n *Name) Children() []Node { return nil }

// Token is a retained operator or keyword leaf, such as a filter
// comparison operator.
type Token struct {
	base
	Literal string
}

func (n *Token) Kind() Kind       { return KindToken }
func (n *Token) Children() []Node { return nil }

// IntLiteral represents an integer literal.
type IntLiteral struct {
	base
	Value int64
}

func (n *IntLiteral) Kind() Kind       { return KindIntLiteral }
func (n *IntLiteral) Children() []Node { return nil }

// FloatLiteral represents a floating-point literal.
type FloatLiteral struct {
	base
	Value float64
}

func (n *FloatLiteral) Kind() Kind       { return KindFloatLiteral }
func (n *FloatLiteral) Children() []Node { return nil }

// StringLiteral represents a string literal.
type StringLiteral struct {
	base
	Value string
}

func (n *StringLiteral) Kind() Kind       { return KindStringLiteral }
func (n *StringLiteral) Children() []Node { return nil }

// BoolLiteral represents true or false.
type BoolLiteral struct {
	base
	Value bool
}

func (n *BoolLiteral) Kind() Kind       { return KindBoolLiteral }
func (n *BoolLiteral) Children() []Node { return nil }

// BuiltinType is a builtin type keyword used in a type tag or expression
// position (str, int, float, bool, list, dict, any).
type BuiltinType struct {
	base
	Name string
}

func (n *BuiltinType) Kind() Kind       { return KindBuiltinType }
func (n *BuiltinType) Children() []Node { return nil }
