// Jac CLI - checks Jac workspaces and serves editor tooling
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/tliron/commonlog"

	"github.com/nisalV/jaseci/index"
	"github.com/nisalV/jaseci/manifest"
	"github.com/nisalV/jaseci/server"
)

func main() {
	verbose := flag.Bool("v", false, "Verbose output")
	showAST := flag.Bool("ast", false, "Print each module's syntax tree")
	showSymtab := flag.Bool("symtab", false, "Print each module's symbol table")
	dotDir := flag.String("dot", "", "Write each module's tree as Graphviz dot into this directory")
	snapshotDir := flag.String("snapshot", "", "Write each module's resolution snapshot into this directory")
	syncIndex := flag.Bool("index", false, "Sync checked modules into the workspace symbol index")
	lookup := flag.String("lookup", "", "Query the workspace symbol index for a name and exit")
	watch := flag.Bool("watch", false, "Re-check manifest sources whenever they change")
	lsp := flag.Bool("lsp", false, "Start the language server on stdio")
	noColor := flag.Bool("no-color", false, "Disable colored diagnostics")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: jac [options] [files...]\n\n")
		fmt.Fprintf(os.Stderr, "Checks Jac sources: parses each file and resolves every name use to its\n")
		fmt.Fprintf(os.Stderr, "definition. Without files, sources come from the nearest jac.toml manifest.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  jac main.jac               # Check one file\n")
		fmt.Fprintf(os.Stderr, "  jac                        # Check every manifest source\n")
		fmt.Fprintf(os.Stderr, "  jac -symtab main.jac       # Check and print the symbol table\n")
		fmt.Fprintf(os.Stderr, "  jac -watch                 # Re-check on every save\n")
		fmt.Fprintf(os.Stderr, "  jac -index                 # Check and refresh the symbol index\n")
		fmt.Fprintf(os.Stderr, "  jac -lookup Person         # Where is Person declared?\n")
		fmt.Fprintf(os.Stderr, "\nLanguage Server:\n")
		fmt.Fprintf(os.Stderr, "  jac -lsp                   # Serve editors over stdio\n")
	}
	flag.Parse()

	if *noColor {
		color.NoColor = true
	}

	verbosity := 0
	if *verbose {
		verbosity = 2 // debug
	}
	commonlog.Configure(verbosity, nil)

	m, err := manifest.FindAndLoad(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *lsp {
		var store *index.Store
		if m != nil {
			store, err = index.Open(m.IndexPath(), m.ProjectKey())
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: workspace index unavailable: %v\n", err)
				store = nil
			}
		}
		if err := server.NewLSP(store).Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *lookup != "" {
		store := openIndex(m)
		defer store.Close()
		if err := runLookup(store, *lookup); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg := checkConfig{
		verbose:     *verbose,
		showAST:     *showAST,
		showSymtab:  *showSymtab,
		dotDir:      *dotDir,
		snapshotDir: *snapshotDir,
	}
	if *syncIndex {
		store := openIndex(m)
		defer store.Close()
		cfg.store = store
	}

	paths := flag.Args()
	if len(paths) == 0 {
		if m == nil {
			fmt.Fprintf(os.Stderr, "Error: no files given and no jac.toml manifest found\n")
			os.Exit(2)
		}
		paths, err = m.Sources()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if *verbose {
			fmt.Printf("Checking %d sources from %s\n", len(paths), m.Dir)
		}
	}

	failed := runCheck(paths, cfg)

	if *watch {
		if m == nil {
			fmt.Fprintf(os.Stderr, "Error: watch mode needs a jac.toml manifest\n")
			os.Exit(2)
		}
		if err := watchLoop(m, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if failed {
		os.Exit(1)
	}
}

// openIndex opens the manifest's symbol index store or exits; every index
// surface needs a workspace to anchor the store path.
func openIndex(m *manifest.Manifest) *index.Store {
	if m == nil {
		fmt.Fprintf(os.Stderr, "Error: the symbol index needs a jac.toml manifest\n")
		os.Exit(2)
	}
	store, err := index.Open(m.IndexPath(), m.ProjectKey())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return store
}
