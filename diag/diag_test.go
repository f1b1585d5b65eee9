package diag

import (
	"strings"
	"testing"

	"github.com/nisalV/jaseci/ast"
)

func span(line, col, offset int) ast.Span {
	p := ast.Position{Line: line, Column: col, Offset: offset}
	return ast.MakeSpan(p, p)
}

func TestAddfGradesByKind(t *testing.T) {
	var l List
	l.Addf(DuplicateDefinition, span(1, 1, 0), "duplicate definition of 'x'")
	l.Addf(UnresolvedName, span(2, 1, 10), "unresolved name 'y'")

	if l[0].Severity != SevWarning {
		t.Errorf("duplicate-definition severity = %v, want warning", l[0].Severity)
	}
	if l[1].Severity != SevError {
		t.Errorf("unresolved-name severity = %v, want error", l[1].Severity)
	}
}

func TestHasErrors(t *testing.T) {
	var l List
	if l.HasErrors() {
		t.Error("empty list reports errors")
	}

	l.Addf(DuplicateDefinition, span(1, 1, 0), "shadowed")
	if l.HasErrors() {
		t.Error("warnings alone report errors")
	}

	l.Addf(TypeMismatch, span(2, 1, 5), "'Friend' is not an edge architype")
	if !l.HasErrors() {
		t.Error("error diagnostic not reported by HasErrors")
	}
}

func TestCount(t *testing.T) {
	var l List
	l.Addf(UnresolvedName, span(1, 1, 0), "unresolved name 'a'")
	l.Addf(UnresolvedName, span(2, 1, 8), "unresolved name 'b'")
	l.Addf(CyclicReference, span(3, 1, 16), "chain revisits 'A'")

	if got := l.Count(UnresolvedName); got != 2 {
		t.Errorf("Count(UnresolvedName) = %d, want 2", got)
	}
	if got := l.Count(SyntaxError); got != 0 {
		t.Errorf("Count(SyntaxError) = %d, want 0", got)
	}
}

func TestSortedKeepsEmissionOrderForTies(t *testing.T) {
	var l List
	l.Addf(UnresolvedName, span(9, 1, 80), "late")
	l.Addf(InvalidContext, span(1, 1, 0), "first at offset 0")
	l.Addf(UnresolvedName, span(1, 1, 0), "second at offset 0")

	s := l.Sorted()
	if s[0].Msg != "first at offset 0" || s[1].Msg != "second at offset 0" || s[2].Msg != "late" {
		t.Errorf("Sorted() = %v", s.Strings())
	}

	// The original list stays in emission order.
	if l[0].Msg != "late" {
		t.Errorf("Sorted() mutated the receiver: %v", l.Strings())
	}
}

func TestDiagnosticString(t *testing.T) {
	var l List
	l.Addf(UnresolvedName, span(3, 7, 20), "unresolved name 'w'")

	got := l[0].String()
	for _, want := range []string{"line 3", "column 7", "unresolved-name", "'w'"} {
		if !strings.Contains(got, want) {
			t.Errorf("String() = %q, missing %q", got, want)
		}
	}
}

func TestKindAndSeverityNames(t *testing.T) {
	if got := TypeMismatch.String(); got != "type-mismatch" {
		t.Errorf("TypeMismatch.String() = %q", got)
	}
	if got := Kind(99).String(); got != "Kind(99)" {
		t.Errorf("out-of-range kind = %q", got)
	}
	if SevWarning.String() != "warning" || SevError.String() != "error" {
		t.Error("severity names wrong")
	}
}
