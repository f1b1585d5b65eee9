package ast

// Link walks the tree and sets every child's parent back-reference. The
// parser calls it once per module; hand-built trees must call it before
// running passes that climb parents.
func Link(root Node) {
	for _, c := range root.Children() {
		c.setParent(root)
		Link(c)
	}
}

// NodeAt returns the deepest node whose span contains the byte offset, or
// nil when the offset falls outside the root's span.
func NodeAt(root Node, offset int) Node {
	if !root.Span().Contains(offset) {
		return nil
	}
	for _, c := range root.Children() {
		if inner := NodeAt(c, offset); inner != nil {
			return inner
		}
	}
	return root
}

// Ancestor climbs the parent chain from n (exclusive) and returns the first
// node of the wanted kind, or nil.
func Ancestor(n Node, kind Kind) Node {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Kind() == kind {
			return p
		}
	}
	return nil
}
