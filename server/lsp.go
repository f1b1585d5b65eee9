// Package server exposes the resolver to editors over the Language Server
// Protocol. Every open document keeps its latest resolution; features read
// that sealed state and never mutate it.
package server

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/nisalV/jaseci/ast"
	"github.com/nisalV/jaseci/diag"
	"github.com/nisalV/jaseci/index"
	"github.com/nisalV/jaseci/parser"
	"github.com/nisalV/jaseci/passes"
	"github.com/nisalV/jaseci/symtab"

	_ "github.com/tliron/commonlog/simple"
)

const lspName = "jac-lsp"

var log = commonlog.GetLogger("jac.server")

// document is the analyzed state of one open file.
type document struct {
	text  string
	res   *passes.Resolution
	diags diag.List // parse and resolution diagnostics, merged
}

// LspServer serves definition, references, hover, completion and workspace
// symbol queries from per-document resolutions.
type LspServer struct {
	mu    sync.Mutex
	docs  map[string]*document
	store *index.Store // nil when no workspace index is configured

	handler protocol.Handler
	server  *glspserver.Server
	version string
}

// NewLSP creates an LSP server. A non-nil store keeps the workspace index
// in sync with every analyzed document and backs workspace/symbol queries.
func NewLSP(store *index.Store) *LspServer {
	s := &LspServer{
		docs:    make(map[string]*document),
		store:   store,
		version: "0.1.0",
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentCompletion: s.textDocumentCompletion,
		TextDocumentHover:      s.textDocumentHover,
		TextDocumentDefinition: s.textDocumentDefinition,
		TextDocumentReferences: s.textDocumentReferences,

		WorkspaceSymbol: s.workspaceSymbol,
	}

	s.server = glspserver.NewServer(&s.handler, lspName, false)

	return s
}

// Run starts the LSP server on stdio. Blocks until the client disconnects.
func (s *LspServer) Run() error {
	return s.server.RunStdio()
}

// --- LSP lifecycle handlers ---

func (s *LspServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	commonlog.NewInfoMessage(0, "Jac LSP initializing")

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}

	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{"."},
	}

	capabilities.HoverProvider = true
	capabilities.DefinitionProvider = true
	capabilities.ReferencesProvider = true
	capabilities.WorkspaceSymbolProvider = s.store != nil

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lspName,
			Version: &s.version,
		},
	}, nil
}

func (s *LspServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *LspServer) shutdown(ctx *glsp.Context) error {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Warningf("closing workspace index: %s", err.Error())
		}
	}
	return nil
}

func (s *LspServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// --- Document synchronization ---

func (s *LspServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	doc := s.analyze(string(uri), params.TextDocument.Text)
	s.publishDiagnostics(ctx, uri, doc)
	return nil
}

func (s *LspServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	// With Full sync, the last change event contains the full text
	if len(params.ContentChanges) > 0 {
		last := params.ContentChanges[len(params.ContentChanges)-1]
		if whole, ok := last.(protocol.TextDocumentContentChangeEventWhole); ok {
			doc := s.analyze(string(uri), whole.Text)
			s.publishDiagnostics(ctx, uri, doc)
		}
	}
	return nil
}

func (s *LspServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI

	s.mu.Lock()
	delete(s.docs, string(uri))
	s.mu.Unlock()

	// Clear diagnostics for the closed document
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

// analyze parses and resolves the document text, replaces the stored state,
// and refreshes the workspace index when one is attached.
func (s *LspServer) analyze(uri, text string) *document {
	mod, parseDiags := parser.ParseModule(uriToPath(uri), text)
	res := passes.ResolveModule(mod)

	all := make(diag.List, 0, len(parseDiags)+len(res.Diagnostics()))
	all = append(all, parseDiags...)
	all = append(all, res.Diagnostics()...)

	doc := &document{text: text, res: res, diags: all}

	s.mu.Lock()
	s.docs[uri] = doc
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.SyncModule(res); err != nil {
			log.Warningf("workspace index sync: %s", err.Error())
		}
	}

	return doc
}

func (s *LspServer) document(uri protocol.DocumentUri) *document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs[string(uri)]
}

// --- Diagnostics ---

func (s *LspServer) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, doc *document) {
	diagnostics := make([]protocol.Diagnostic, 0, len(doc.diags))
	source := lspName
	for _, d := range doc.diags.Sorted() {
		severity := protocol.DiagnosticSeverityError
		if d.Severity == diag.SevWarning {
			severity = protocol.DiagnosticSeverityWarning
		}
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    toProtocolRange(d.Span),
			Severity: &severity,
			Source:   &source,
			Message:  fmt.Sprintf("%s: %s", d.Kind, d.Msg),
		})
	}

	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// --- Language features ---

func (s *LspServer) textDocumentDefinition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	doc := s.document(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}

	sym := symbolAt(doc, params.Position)
	if sym == nil {
		return nil, nil
	}

	return []protocol.Location{{
		URI:   params.TextDocument.URI,
		Range: toProtocolRange(declSpan(sym)),
	}}, nil
}

func (s *LspServer) textDocumentReferences(ctx *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	doc := s.document(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}

	sym := symbolAt(doc, params.Position)
	if sym == nil {
		return nil, nil
	}

	declStart := declSpan(sym).Start.Offset
	var locations []protocol.Location
	for _, use := range doc.res.NameUses(sym) {
		if !params.Context.IncludeDeclaration && use.Span().Start.Offset == declStart {
			continue
		}
		locations = append(locations, protocol.Location{
			URI:   params.TextDocument.URI,
			Range: toProtocolRange(use.Span()),
		})
	}
	return locations, nil
}

func (s *LspServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	doc := s.document(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}

	sym := symbolAt(doc, params.Position)
	if sym == nil {
		return nil, nil
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: hoverMarkdown(sym),
		},
	}, nil
}

func (s *LspServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	doc := s.document(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}

	prefix := extractPrefix(doc.text, params.Position)
	items := completionsAt(doc, params.Position, prefix)
	if len(items) == 0 {
		return nil, nil
	}
	return items, nil
}

func (s *LspServer) workspaceSymbol(ctx *glsp.Context, params *protocol.WorkspaceSymbolParams) ([]protocol.SymbolInformation, error) {
	if s.store == nil {
		return nil, nil
	}

	recs, err := s.store.Search(params.Query)
	if err != nil {
		return nil, err
	}

	infos := make([]protocol.SymbolInformation, 0, len(recs))
	for _, rec := range recs {
		info := protocol.SymbolInformation{
			Name: rec.Name,
			Kind: workspaceSymbolKind(rec),
			Location: protocol.Location{
				URI: pathToURI(rec.Source),
				Range: toProtocolRange(ast.MakeSpan(
					ast.Position{Line: rec.Line, Column: rec.Column},
					ast.Position{Line: rec.Line, Column: rec.Column + len(rec.Name)},
				)),
			},
		}
		if owner, ok := strings.CutSuffix(rec.Qualified, "."+rec.Name); ok {
			container := owner
			info.ContainerName = &container
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// --- Resolution-backed logic ---

// symbolAt resolves the name or pseudo-variable under the cursor. A cursor
// sitting just past the last rune of a word still hits it.
func symbolAt(doc *document, pos protocol.Position) *symtab.Symbol {
	offset := offsetAt(doc.text, pos)
	n := resolvableAt(doc.res.Module, offset)
	if n == nil && offset > 0 {
		n = resolvableAt(doc.res.Module, offset-1)
	}
	if n == nil {
		return nil
	}
	if r, ok := doc.res.Resolve(n); ok && r.Status == passes.Resolved {
		return r.Sym
	}
	return nil
}

func resolvableAt(root ast.Node, offset int) ast.Node {
	n := ast.NodeAt(root, offset)
	switch n.(type) {
	case *ast.Name, *ast.SpecialVarRef:
		return n
	}
	return nil
}

// completionsAt collects every symbol visible from the scope enclosing the
// cursor, innermost bindings shadowing outer ones, plus the pseudo-variables
// valid there.
func completionsAt(doc *document, pos protocol.Position, prefix string) []protocol.CompletionItem {
	offset := offsetAt(doc.text, pos)
	sc := scopeAt(doc.res, offset)

	var items []protocol.CompletionItem
	lowerPrefix := strings.ToLower(prefix)
	seen := make(map[string]bool)

	for cur := sc; cur != nil; cur = cur.Parent {
		syms := cur.Symbols()
		for i := len(syms) - 1; i >= 0; i-- { // later bindings shadow earlier ones
			sym := syms[i]
			if seen[sym.Name] {
				continue
			}
			seen[sym.Name] = true
			if !strings.HasPrefix(strings.ToLower(sym.Name), lowerPrefix) {
				continue
			}
			kind := completionKind(sym)
			detail := symbolDetail(sym)
			name := sym.Name
			items = append(items, protocol.CompletionItem{
				Label:      name,
				Kind:       &kind,
				Detail:     &detail,
				InsertText: &name,
			})
		}
	}

	pseudo := []string{"root"}
	for cur := sc; cur != nil; cur = cur.Parent {
		if cur.Kind == symtab.AbilityScope {
			pseudo = append(pseudo, "self", "here", "visitor")
			break
		}
	}
	for _, name := range pseudo {
		if seen[name] || !strings.HasPrefix(name, lowerPrefix) {
			continue
		}
		kind := protocol.CompletionItemKindKeyword
		detail := "pseudo-variable"
		nameCopy := name
		items = append(items, protocol.CompletionItem{
			Label:      nameCopy,
			Kind:       &kind,
			Detail:     &detail,
			InsertText: &nameCopy,
		})
	}

	const maxItems = 100
	if len(items) > maxItems {
		items = items[:maxItems]
	}
	return items
}

// scopeAt finds the innermost scope whose owning construct contains the
// offset, falling back to the module scope on blank regions.
func scopeAt(res *passes.Resolution, offset int) *symtab.Scope {
	n := ast.NodeAt(res.Module, offset)
	if n == nil && offset > 0 {
		n = ast.NodeAt(res.Module, offset-1)
	}
	if n != nil {
		if sc := res.ScopeOf(n); sc != nil {
			return sc
		}
	}
	return res.ModuleScope()
}

// declSpan is the range a definition jump lands on: the declaring name when
// the declaration carries one, the whole node otherwise.
func declSpan(sym *symtab.Symbol) ast.Span {
	switch d := sym.Decl.(type) {
	case *ast.Architype:
		return d.Name.Span()
	case *ast.Enum:
		return d.Name.Span()
	case *ast.Ability:
		return d.Name.Span()
	case *ast.HasVar:
		return d.Name.Span()
	case *ast.ParamVar:
		return d.Name.Span()
	case *ast.ExprAsItem:
		return d.Alias.Span()
	case *ast.Module:
		return ast.ZeroSpan() // pseudo root points at the top of file
	default:
		return sym.Decl.Span()
	}
}

func hoverMarkdown(sym *symtab.Symbol) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**", sym.Name)

	detail := symbolDetail(sym)
	if t := typeLabel(sym); t != "" {
		fmt.Fprintf(&b, " `%s`", t)
	}
	fmt.Fprintf(&b, "\n\n%s", detail)

	if arch, ok := sym.Decl.(*ast.Architype); ok {
		hasVars, abilities := 0, 0
		for _, m := range arch.Body {
			switch m.(type) {
			case *ast.HasVar:
				hasVars++
			case *ast.Ability:
				abilities++
			}
		}
		fmt.Fprintf(&b, "\n\n%d has-vars, %d abilities", hasVars, abilities)
	}

	if sym.Owner != nil && sym.Owner.Parent != nil {
		fmt.Fprintf(&b, "\n\nDeclared in %s", sym.Owner.Describe())
	}
	if pos := declSpan(sym).Start; pos.Line > 0 {
		fmt.Fprintf(&b, ", line %d", pos.Line)
	}

	return b.String()
}

// symbolDetail names what the symbol is, using the declared architype kind
// where one applies.
func symbolDetail(sym *symtab.Symbol) string {
	if arch, ok := sym.Decl.(*ast.Architype); ok {
		return arch.Arch.String() + " architype"
	}
	if sym.Kind == symtab.Enum {
		if _, ok := sym.Decl.(*ast.Enum); !ok {
			return "enumerator"
		}
	}
	return sym.Kind.String()
}

// typeLabel renders a has-var's or parameter's declared type, empty when
// untyped.
func typeLabel(sym *symtab.Symbol) string {
	var tag ast.Node
	switch d := sym.Decl.(type) {
	case *ast.HasVar:
		tag = d.TypeTag
	case *ast.ParamVar:
		tag = d.TypeTag
	}
	switch t := tag.(type) {
	case *ast.BuiltinType:
		return t.Name
	case *ast.ArchRef:
		return t.Name.Value
	case *ast.ArchRefChain:
		parts := make([]string, len(t.Segments))
		for i, seg := range t.Segments {
			parts[i] = seg.Name.Value
		}
		return strings.Join(parts, ".")
	}
	return ""
}

func completionKind(sym *symtab.Symbol) protocol.CompletionItemKind {
	switch sym.Kind {
	case symtab.Architype:
		return protocol.CompletionItemKindClass
	case symtab.Enum:
		if _, ok := sym.Decl.(*ast.Enum); ok {
			return protocol.CompletionItemKindEnum
		}
		return protocol.CompletionItemKindEnumMember
	case symtab.Ability:
		return protocol.CompletionItemKindFunction
	case symtab.HasVar:
		return protocol.CompletionItemKindField
	default:
		return protocol.CompletionItemKindVariable
	}
}

func workspaceSymbolKind(rec index.Record) protocol.SymbolKind {
	switch rec.Kind {
	case "architype":
		return protocol.SymbolKindClass
	case "enum":
		if strings.Contains(rec.Qualified, ".") {
			return protocol.SymbolKindEnumMember
		}
		return protocol.SymbolKindEnum
	case "ability":
		return protocol.SymbolKindMethod
	case "has-var":
		return protocol.SymbolKindField
	default:
		return protocol.SymbolKindVariable
	}
}

// --- Position and path helpers ---

// offsetAt maps an LSP position to a byte offset in the document.
func offsetAt(text string, pos protocol.Position) int {
	offset := 0
	for line := int(pos.Line); line > 0; line-- {
		nl := strings.IndexByte(text[offset:], '\n')
		if nl < 0 {
			return len(text)
		}
		offset += nl + 1
	}
	for col := int(pos.Character); col > 0 && offset < len(text) && text[offset] != '\n'; col-- {
		offset++
	}
	return offset
}

// toProtocolRange converts a 1-based source span to a 0-based LSP range.
func toProtocolRange(sp ast.Span) protocol.Range {
	return protocol.Range{
		Start: toProtocolPos(sp.Start),
		End:   toProtocolPos(sp.End),
	}
}

func toProtocolPos(p ast.Position) protocol.Position {
	line, col := p.Line-1, p.Column-1
	if line < 0 {
		line = 0
	}
	if col < 0 {
		col = 0
	}
	return protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(col)}
}

// extractPrefix returns the word fragment before the cursor for completion.
func extractPrefix(text string, pos protocol.Position) string {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return ""
	}
	line := lines[pos.Line]
	col := int(pos.Character)
	if col > len(line) {
		col = len(line)
	}

	// Walk backwards from cursor to find the start of the identifier
	start := col
	for start > 0 && isIdentByte(line[start-1]) {
		start--
	}
	return line[start:col]
}

func isIdentByte(ch byte) bool {
	return ch == '_' || ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch >= '0' && ch <= '9'
}

// uriToPath maps a file URI to a filesystem path; other schemes and bare
// paths pass through.
func uriToPath(uri string) string {
	return strings.TrimPrefix(uri, "file://")
}

func pathToURI(path string) protocol.DocumentUri {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return protocol.DocumentUri("file://" + path)
}

func boolPtr(b bool) *bool {
	return &b
}
