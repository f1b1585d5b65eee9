// Package diag carries the positioned problems reported by the parser and
// the resolution passes. Diagnostics are values, not Go errors; Go errors
// stay reserved for I/O and store failures.
package diag

import (
	"fmt"
	"sort"

	"github.com/nisalV/jaseci/ast"
)

// Kind classifies a diagnostic.
type Kind int

const (
	SyntaxError Kind = iota
	UnresolvedName
	DuplicateDefinition
	InvalidContext
	TypeMismatch
	CyclicReference
)

var kindNames = [...]string{
	SyntaxError:         "syntax-error",
	UnresolvedName:      "unresolved-name",
	DuplicateDefinition: "duplicate-definition",
	InvalidContext:      "invalid-context",
	TypeMismatch:        "type-mismatch",
	CyclicReference:     "cyclic-reference",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Severity grades a diagnostic. Nothing user-triggerable is fatal; internal
// invariant violations panic instead.
type Severity int

const (
	SevWarning Severity = iota
	SevError
)

func (s Severity) String() string {
	if s == SevWarning {
		return "warning"
	}
	return "error"
}

// severityFor is the default grading per kind. Shadowing by redeclaration
// proceeds, so it only warns; everything else is an error.
func severityFor(k Kind) Severity {
	if k == DuplicateDefinition {
		return SevWarning
	}
	return SevError
}

// Diagnostic is one positioned problem.
type Diagnostic struct {
	Kind     Kind
	Severity Severity
	Span     ast.Span
	Msg      string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d, column %d: %s: %s",
		d.Span.Start.Line, d.Span.Start.Column, d.Kind, d.Msg)
}

// List accumulates diagnostics in emission order.
type List []Diagnostic

// Addf appends a diagnostic with the default severity for its kind.
func (l *List) Addf(kind Kind, span ast.Span, format string, args ...interface{}) {
	*l = append(*l, Diagnostic{
		Kind:     kind,
		Severity: severityFor(kind),
		Span:     span,
		Msg:      fmt.Sprintf(format, args...),
	})
}

// HasErrors reports whether any diagnostic is of error severity.
func (l List) HasErrors() bool {
	for _, d := range l {
		if d.Severity == SevError {
			return true
		}
	}
	return false
}

// Count returns how many diagnostics carry the kind.
func (l List) Count(kind Kind) int {
	n := 0
	for _, d := range l {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

// Sorted returns a copy ordered by source position, ties kept in emission
// order. Display surfaces use it; the list itself stays in emission order.
func (l List) Sorted() List {
	out := make(List, len(l))
	copy(out, l)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Span.Start, out[j].Span.Start
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return a.Offset < b.Offset
	})
	return out
}

// Strings renders every diagnostic, mostly for test assertions and logs.
func (l List) Strings() []string {
	out := make([]string, len(l))
	for i, d := range l {
		out[i] = d.String()
	}
	return out
}
