package ingest

import (
	"context"
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/dusk-indust/layerlens/internal/graph"
)

// extractor extracts type declarations from a parsed tree-sitter AST.
type extractor interface {
	Extract(root *tree_sitter.Node, source []byte) []TypeDecl
}

// TreeSitterParser implements the Parser interface using tree-sitter
// grammars. A new tree-sitter parser is created per Parse call, so this
// type is safe for sequential use but individual Parse calls are not
// thread-safe.
type TreeSitterParser struct {
	languages  map[graph.Language]*tree_sitter.Language
	extractors map[graph.Language]extractor
}

// NewTreeSitterParser creates a TreeSitterParser with Go, TypeScript,
// Python, and Rust grammars registered.
func NewTreeSitterParser() *TreeSitterParser {
	langs := map[graph.Language]*tree_sitter.Language{
		graph.LangGo:         tree_sitter.NewLanguage(tree_sitter_go.Language()),
		graph.LangTypeScript: tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
		graph.LangPython:     tree_sitter.NewLanguage(tree_sitter_python.Language()),
		graph.LangRust:       tree_sitter.NewLanguage(tree_sitter_rust.Language()),
	}

	extractors := map[graph.Language]extractor{
		graph.LangGo:         &goExtractor{},
		graph.LangTypeScript: &tsExtractor{},
		graph.LangPython:     &pyExtractor{},
		graph.LangRust:       &rsExtractor{},
	}

	return &TreeSitterParser{
		languages:  langs,
		extractors: extractors,
	}
}

// Parse extracts type declarations from a single source file.
func (p *TreeSitterParser) Parse(_ context.Context, path string, source []byte, lang graph.Language) (*ParseResult, error) {
	tsLang, ok := p.languages[lang]
	if !ok {
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}

	ext, ok := p.extractors[lang]
	if !ok {
		return nil, fmt.Errorf("no extractor for language: %s", lang)
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(tsLang); err != nil {
		return nil, fmt.Errorf("set language %s: %w", lang, err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("tree-sitter returned nil tree for %s", path)
	}
	defer tree.Close()

	root := tree.RootNode()
	types := ext.Extract(root, source)

	return &ParseResult{
		Path:     path,
		Language: lang,
		Types:    types,
	}, nil
}

// SupportedLanguages returns the languages this parser can handle.
func (p *TreeSitterParser) SupportedLanguages() []graph.Language {
	langs := make([]graph.Language, 0, len(p.languages))
	for l := range p.languages {
		langs = append(langs, l)
	}
	return langs
}

// Close is a no-op because parsers are created per Parse call.
func (p *TreeSitterParser) Close() error {
	return nil
}

// --- Shared extraction helpers ---

// collectCalls walks a method body and returns the short names of every
// callee. For selector-style calls ("svc.Save(...)", "self.repo.save()")
// only the final segment is kept: linking happens by method name.
func collectCalls(node *tree_sitter.Node, source []byte, callKind, fnField string, nameOf func(*tree_sitter.Node, []byte) string) []string {
	var calls []string
	var walk func(n *tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		if n == nil {
			return
		}
		if n.Kind() == callKind {
			if fn := n.ChildByFieldName(fnField); fn != nil {
				if name := nameOf(fn, source); name != "" {
					calls = append(calls, name)
				}
			}
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	walk(node)
	return calls
}

// lastSegment trims qualifier prefixes from a dotted or double-colon
// separated reference.
func lastSegment(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' || name[i] == ':' {
			return name[i+1:]
		}
	}
	return name
}
