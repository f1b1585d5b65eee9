package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/nisalV/jaseci/diag"
	"github.com/nisalV/jaseci/index"
	"github.com/nisalV/jaseci/parser"
	"github.com/nisalV/jaseci/passes"
	"github.com/nisalV/jaseci/snapshot"
)

// checkConfig carries the per-run options shared by single checks and the
// watch loop.
type checkConfig struct {
	verbose     bool
	showAST     bool
	showSymtab  bool
	dotDir      string
	snapshotDir string
	store       *index.Store
}

// checkFile parses and resolves one source file, returning the sealed
// resolution and every diagnostic found on the way.
func checkFile(path string) (*passes.Resolution, diag.List, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	mod, parseDiags := parser.ParseModule(path, string(data))
	res := passes.ResolveModule(mod)

	all := make(diag.List, 0, len(parseDiags)+len(res.Diagnostics()))
	all = append(all, parseDiags...)
	all = append(all, res.Diagnostics()...)
	return res, all, nil
}

// runCheck checks every path, renders diagnostics, and runs the configured
// per-module outputs. It reports whether any file failed.
func runCheck(paths []string, cfg checkConfig) bool {
	failed := false
	errors, warnings := 0, 0

	for _, path := range paths {
		res, diags, err := checkFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			failed = true
			continue
		}

		renderDiagnostics(os.Stdout, path, diags)
		for _, d := range diags {
			if d.Severity == diag.SevError {
				errors++
			} else {
				warnings++
			}
		}
		if diags.HasErrors() {
			failed = true
		}

		if cfg.showAST {
			passes.PrintTree(os.Stdout, res.Module)
		}
		if cfg.showSymtab {
			passes.WriteSymbolTable(os.Stdout, res)
		}
		if cfg.dotDir != "" {
			if err := writeDotFile(cfg.dotDir, res); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				failed = true
			}
		}
		if cfg.snapshotDir != "" {
			if err := writeSnapshotFile(cfg.snapshotDir, res); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				failed = true
			}
		}
		if cfg.store != nil {
			if err := cfg.store.SyncModule(res); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				failed = true
			}
		}
	}

	if cfg.verbose || errors+warnings > 0 {
		fmt.Printf("%d files checked: %d errors, %d warnings\n", len(paths), errors, warnings)
	}
	return failed
}

// renderDiagnostics writes one line per diagnostic in source order.
func renderDiagnostics(w io.Writer, path string, diags diag.List) {
	for _, d := range diags.Sorted() {
		fmt.Fprintf(w, "%s:%d:%d: %s: %s (%s)\n",
			path, d.Span.Start.Line, d.Span.Start.Column,
			severityLabel(d.Severity), d.Msg, d.Kind)
	}
}

func severityLabel(sev diag.Severity) string {
	if sev == diag.SevWarning {
		return color.YellowString("warning")
	}
	return color.RedString("error")
}

func writeDotFile(dir string, res *passes.Resolution) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	passes.WriteDot(&buf, res.Module)
	return os.WriteFile(filepath.Join(dir, res.Module.Name+".dot"), buf.Bytes(), 0o644)
}

func writeSnapshotFile(dir string, res *passes.Resolution) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return snapshot.WriteFile(filepath.Join(dir, res.Module.Name+".cbor"), snapshot.Capture(res))
}

// runLookup prints every indexed symbol matching the name.
func runLookup(store *index.Store, name string) error {
	recs, err := store.Lookup(name)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Printf("no symbols named %q in the index (run 'jac -index' to refresh it)\n", name)
		return nil
	}
	writeRecords(os.Stdout, recs)
	return nil
}

func writeRecords(w io.Writer, recs []index.Record) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Symbol", "Kind", "Module", "Declared"})
	for _, rec := range recs {
		table.Append([]string{
			rec.Qualified,
			rec.Kind,
			rec.Module,
			fmt.Sprintf("%s:%d:%d", rec.Source, rec.Line, rec.Column),
		})
	}
	table.Render()
}
