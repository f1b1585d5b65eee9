// Package snapshot serializes a sealed resolution into a canonical CBOR
// feed consumed by downstream passes and tooling.
package snapshot

import (
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"

	"github.com/nisalV/jaseci/passes"
	"github.com/nisalV/jaseci/symtab"
)

// cborEncMode is the canonical encoding mode, so identical resolutions
// produce identical bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("snapshot: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Snapshot is the flattened form of one module's sealed resolution: the
// scope tree as insertion-ordered records, every binding, and the final
// diagnostics.
type Snapshot struct {
	Module  string      `cbor:"module"`
	Source  string      `cbor:"source"`
	Scopes  []ScopeRec  `cbor:"scopes"`
	Symbols []SymbolRec `cbor:"symbols"`
	Diags   []DiagRec   `cbor:"diags"`
}

// ScopeRec is one scope, keyed by its pre-order id. The module scope has
// id 0 and parent -1.
type ScopeRec struct {
	ID     int    `cbor:"id"`
	Parent int    `cbor:"parent"`
	Kind   string `cbor:"kind"`
	Label  string `cbor:"label"`
}

// SymbolRec is one binding, shadowed bindings included, in binding order.
type SymbolRec struct {
	Scope  int    `cbor:"scope"`
	Name   string `cbor:"name"`
	Kind   string `cbor:"kind"`
	Line   int    `cbor:"line"`
	Column int    `cbor:"column"`
}

// DiagRec is one diagnostic in emission order.
type DiagRec struct {
	Kind     string `cbor:"kind"`
	Severity string `cbor:"severity"`
	Msg      string `cbor:"msg"`
	Line     int    `cbor:"line"`
	Column   int    `cbor:"column"`
}

// Capture flattens a sealed resolution. Scope ids are assigned pre-order
// over the scope tree, so two captures of the same resolution are equal.
func Capture(res *passes.Resolution) *Snapshot {
	s := &Snapshot{
		Module: res.Module.Name,
		Source: res.Module.Source,
	}

	ids := make(map[*symtab.Scope]int)
	symtab.Walk(res.ModuleScope(), func(sc *symtab.Scope) {
		id := len(ids)
		ids[sc] = id
		parent := -1
		if sc.Parent != nil {
			parent = ids[sc.Parent]
		}
		s.Scopes = append(s.Scopes, ScopeRec{
			ID:     id,
			Parent: parent,
			Kind:   sc.Kind.String(),
			Label:  sc.Describe(),
		})
		for _, sym := range sc.Symbols() {
			pos := sym.Decl.Span().Start
			s.Symbols = append(s.Symbols, SymbolRec{
				Scope:  id,
				Name:   sym.Name,
				Kind:   sym.Kind.String(),
				Line:   pos.Line,
				Column: pos.Column,
			})
		}
	})

	for _, d := range res.Diagnostics() {
		s.Diags = append(s.Diags, DiagRec{
			Kind:     d.Kind.String(),
			Severity: d.Severity.String(),
			Msg:      d.Msg,
			Line:     d.Span.Start.Line,
			Column:   d.Span.Start.Column,
		})
	}

	return s
}

// Marshal serializes a Snapshot to canonical CBOR bytes.
func Marshal(s *Snapshot) ([]byte, error) {
	return cborEncMode.Marshal(s)
}

// Unmarshal deserializes a Snapshot from CBOR bytes.
func Unmarshal(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("snapshot: unmarshal: %w", err)
	}
	return &s, nil
}

// WriteFile captures nothing itself; it writes an already-built snapshot.
func WriteFile(path string, s *Snapshot) error {
	data, err := Marshal(s)
	if err != nil {
		return fmt.Errorf("snapshot: marshal %s: %w", s.Module, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("snapshot: write %s: %w", path, err)
	}
	return nil
}

// ReadFile loads a snapshot written by WriteFile.
func ReadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: read %s: %w", path, err)
	}
	return Unmarshal(data)
}
