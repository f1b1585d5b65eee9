package snapshot

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/nisalV/jaseci/parser"
	"github.com/nisalV/jaseci/passes"
)

const src = `
node Person {
    has name: str;
    can greet with entry {
        self.name;
    }
}
edge Follows {}
w = missing;
`

func capture(t *testing.T) *Snapshot {
	t.Helper()
	mod, diags := parser.ParseModule("social.jac", src)
	if diags.HasErrors() {
		t.Fatalf("parse errors: %v", diags.Strings())
	}
	return Capture(passes.ResolveModule(mod))
}

func TestCaptureShape(t *testing.T) {
	s := capture(t)

	if s.Module != "social" {
		t.Errorf("Module = %q, want social", s.Module)
	}
	if s.Source != "social.jac" {
		t.Errorf("Source = %q, want social.jac", s.Source)
	}

	// module scope, Person, greet, Follows
	if len(s.Scopes) != 4 {
		t.Fatalf("Scopes: got %d, want 4", len(s.Scopes))
	}
	if s.Scopes[0].ID != 0 || s.Scopes[0].Parent != -1 || s.Scopes[0].Kind != "module" {
		t.Errorf("root scope = %+v, want id 0, parent -1, kind module", s.Scopes[0])
	}
	for _, sc := range s.Scopes[1:] {
		if sc.Parent < 0 || sc.Parent >= sc.ID {
			t.Errorf("scope %d has parent %d, want an earlier id", sc.ID, sc.Parent)
		}
	}

	var moduleNames []string
	for _, sym := range s.Symbols {
		if sym.Scope == 0 {
			moduleNames = append(moduleNames, sym.Name)
		}
	}
	want := []string{"Person", "Follows", "w"}
	if len(moduleNames) != len(want) {
		t.Fatalf("module symbols = %v, want %v", moduleNames, want)
	}
	for i, name := range want {
		if moduleNames[i] != name {
			t.Errorf("module symbol[%d] = %q, want %q", i, moduleNames[i], name)
		}
	}

	if len(s.Diags) != 1 || s.Diags[0].Kind != "unresolved-name" {
		t.Errorf("Diags = %+v, want one unresolved-name", s.Diags)
	}
}

func TestSnapshot_CBORRoundTrip(t *testing.T) {
	s := capture(t)

	data, err := Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if got.Module != s.Module || got.Source != s.Source {
		t.Errorf("header: got %s/%s, want %s/%s", got.Module, got.Source, s.Module, s.Source)
	}
	if len(got.Scopes) != len(s.Scopes) {
		t.Errorf("Scopes: got %d, want %d", len(got.Scopes), len(s.Scopes))
	}
	if len(got.Symbols) != len(s.Symbols) {
		t.Errorf("Symbols: got %d, want %d", len(got.Symbols), len(s.Symbols))
	}
	if len(got.Diags) != len(s.Diags) {
		t.Errorf("Diags: got %d, want %d", len(got.Diags), len(s.Diags))
	}
}

func TestCanonicalBytesDeterministic(t *testing.T) {
	mod, _ := parser.ParseModule("social.jac", src)
	res := passes.ResolveModule(mod)

	first, err := Marshal(Capture(res))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	second, err := Marshal(Capture(res))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("two captures of one resolution encode differently")
	}

	// A fresh resolution over the same tree must also match.
	third, err := Marshal(Capture(passes.ResolveModule(mod)))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(first, third) {
		t.Error("re-resolving the same tree changed the snapshot bytes")
	}
}

func TestWriteReadFile(t *testing.T) {
	s := capture(t)
	path := filepath.Join(t.TempDir(), "social.snap")

	if err := WriteFile(path, s); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got.Module != s.Module {
		t.Errorf("Module = %q, want %q", got.Module, s.Module)
	}
	if len(got.Symbols) != len(s.Symbols) {
		t.Errorf("Symbols: got %d, want %d", len(got.Symbols), len(s.Symbols))
	}
}

func TestUnmarshal_InvalidData(t *testing.T) {
	if _, err := Unmarshal([]byte("not cbor")); err == nil {
		t.Error("Unmarshal should fail on invalid data")
	}
}
