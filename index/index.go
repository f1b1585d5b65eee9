// Package index persists the module-scope symbols of sealed resolutions
// into a shared SQLite store, giving the driver and the language server
// workspace-wide symbol lookup across check runs.
package index

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"

	"github.com/nisalV/jaseci/ast"
	"github.com/nisalV/jaseci/passes"
	"github.com/nisalV/jaseci/symtab"
)

const driverName = "sqlite"

var log = commonlog.GetLogger("jac.index")

// Record is one indexed symbol. Architype members carry their owner chain
// in Qualified (Owner.name); module-level symbols have Qualified == Name.
type Record struct {
	Name      string
	Qualified string
	Module    string
	Source    string
	Kind      string
	Line      int
	Column    int
}

// Store is a workspace symbol index backed by one SQLite file. A Store is
// safe for use from multiple goroutines; the database serializes writers.
type Store struct {
	db         *sql.DB
	project    string
	lookupStmt *sql.Stmt
	searchStmt *sql.Stmt
}

// Open opens or creates the index at path and migrates its schema.
func Open(path, project string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("index store path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("index store path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create index store directory %q: %w", dir, err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open index store %q: %w", cleanPath, err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping index store %q: %w", cleanPath, err)
	}

	if err := migrateSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	key := strings.TrimSpace(project)
	if key == "" {
		key = "default"
	}

	lookupStmt, err := db.Prepare(`SELECT
  symbol_name, qualified_name, module_name, source_path, kind, line_number, column_number
FROM symbols
WHERE project_key = ? AND symbol_name = ?
ORDER BY module_name, qualified_name, line_number`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("prepare lookup stmt: %w", err)
	}

	searchStmt, err := db.Prepare(`SELECT
  symbol_name, qualified_name, module_name, source_path, kind, line_number, column_number
FROM symbols
WHERE project_key = ? AND symbol_name LIKE ? ESCAPE '\'
ORDER BY module_name, qualified_name, line_number`)
	if err != nil {
		_ = lookupStmt.Close()
		_ = db.Close()
		return nil, fmt.Errorf("prepare search stmt: %w", err)
	}

	return &Store{
		db:         db,
		project:    key,
		lookupStmt: lookupStmt,
		searchStmt: searchStmt,
	}, nil
}

// migrateSchema creates or migrates the symbols table to schema v1.
func migrateSchema(db *sql.DB) error {
	var version int
	_ = db.QueryRow(`PRAGMA user_version`).Scan(&version)

	if version == 0 {
		_, err := db.Exec(`
CREATE TABLE symbols (
  project_key TEXT NOT NULL,
  module_name TEXT NOT NULL,
  source_path TEXT NOT NULL,
  symbol_name TEXT NOT NULL,
  qualified_name TEXT NOT NULL,
  kind TEXT NOT NULL,
  line_number INTEGER NOT NULL DEFAULT 0,
  column_number INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (project_key, module_name, qualified_name, line_number)
);
CREATE INDEX idx_symbols_project_name ON symbols(project_key, symbol_name);

PRAGMA user_version = 1;
`)
		if err != nil {
			return fmt.Errorf("create v1 schema: %w", err)
		}
	}

	return nil
}

// SyncModule replaces the module's rows with the symbols of its sealed
// resolution in one transaction: everything bound in the module scope plus
// architype and enum members, qualified by their owner chain. Ability
// locals and loop variables stay out of the workspace index.
func (s *Store) SyncModule(res *passes.Resolution) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("index store not initialized")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin index sync tx: %w", err)
	}

	module := res.Module.Name
	if _, err := tx.Exec(`DELETE FROM symbols WHERE project_key = ? AND module_name = ?`, s.project, module); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete stale rows for %q: %w", module, err)
	}

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO symbols (
  project_key, module_name, source_path, symbol_name, qualified_name, kind, line_number, column_number
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare symbol insert: %w", err)
	}
	defer stmt.Close()

	count := 0
	insert := func(sym *symtab.Symbol, qualified string) error {
		pos := sym.Decl.Span().Start
		_, err := stmt.Exec(s.project, module, res.Module.Source,
			sym.Name, qualified, sym.Kind.String(), pos.Line, pos.Column)
		if err != nil {
			return fmt.Errorf("insert symbol row (%s:%s): %w", module, qualified, err)
		}
		count++
		return nil
	}

	var walk func(sc *symtab.Scope, prefix string) error
	walk = func(sc *symtab.Scope, prefix string) error {
		for _, sym := range sc.Symbols() {
			if err := insert(sym, prefix+sym.Name); err != nil {
				return err
			}
		}
		for _, child := range sc.Children() {
			// Only architype and enum scopes publish members; their
			// owner was bound in this scope under the same name.
			switch owner := child.Owner.(type) {
			case *ast.Architype:
				if err := walk(child, prefix+owner.Name.Value+"."); err != nil {
					return err
				}
			case *ast.Enum:
				if err := walk(child, prefix+owner.Name.Value+"."); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if err := walk(res.ModuleScope(), ""); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit index sync tx: %w", err)
	}
	log.Debugf("synced module %s: %d symbols", module, count)
	return nil
}

// Lookup returns every record whose bare name matches exactly.
func (s *Store) Lookup(name string) ([]Record, error) {
	if s == nil || s.db == nil || s.lookupStmt == nil {
		return nil, fmt.Errorf("index store not initialized")
	}
	return s.queryRecords(s.lookupStmt, s.project, name)
}

// Search returns every record whose bare name starts with the query; an
// empty query returns the whole project.
func (s *Store) Search(query string) ([]Record, error) {
	if s == nil || s.db == nil || s.searchStmt == nil {
		return nil, fmt.Errorf("index store not initialized")
	}
	return s.queryRecords(s.searchStmt, s.project, escapeLike(query)+"%")
}

func (s *Store) queryRecords(stmt *sql.Stmt, args ...any) ([]Record, error) {
	rows, err := stmt.Query(args...)
	if err != nil {
		return nil, fmt.Errorf("query symbols: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.Name, &rec.Qualified, &rec.Module,
			&rec.Source, &rec.Kind, &rec.Line, &rec.Column); err != nil {
			return nil, fmt.Errorf("scan symbol row: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close releases the prepared statements and the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	if s.lookupStmt != nil {
		_ = s.lookupStmt.Close()
	}
	if s.searchStmt != nil {
		_ = s.searchStmt.Close()
	}
	return s.db.Close()
}

// escapeLike neutralizes LIKE wildcards in user queries.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
