package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dusk-indust/layerlens/internal/graph"
)

// extLanguages maps file extensions to grammars.
var extLanguages = map[string]graph.Language{
	".go": graph.LangGo,
	".ts": graph.LangTypeScript,
	".py": graph.LangPython,
	".rs": graph.LangRust,
}

// defaultExcludes are directory names skipped during every walk.
var defaultExcludes = []string{".git", "node_modules", "vendor", "target", "__pycache__", "dist"}

// IndexerOptions configures a source tree walk.
type IndexerOptions struct {
	// Languages restricts ingestion; empty means all supported.
	Languages []graph.Language
	// ExcludeDirs are directory names to skip, in addition to the
	// defaults.
	ExcludeDirs []string
}

// Indexer walks a source tree, parses every supported file, and links
// the results into a store.
type Indexer struct {
	parser Parser
	linker *Linker
	opts   IndexerOptions
}

// NewIndexer creates an Indexer. A nil linker gets default role rules.
func NewIndexer(parser Parser, linker *Linker, opts IndexerOptions) *Indexer {
	if linker == nil {
		linker = NewLinker(nil)
	}
	return &Indexer{parser: parser, linker: linker, opts: opts}
}

// Index walks root, parses each matching file, and populates the store.
// File paths are recorded relative to root; a type's package is its
// file's directory.
func (ix *Indexer) Index(ctx context.Context, store graph.Store, root string) error {
	wanted := ix.wantedLanguages()
	excluded := ix.excludedDirs()

	var results []*ParseResult
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if excluded[d.Name()] || (strings.HasPrefix(d.Name(), ".") && path != root) {
				return filepath.SkipDir
			}
			return nil
		}

		lang, ok := extLanguages[filepath.Ext(path)]
		if !ok || !wanted[lang] {
			return nil
		}
		if lang == graph.LangGo && strings.HasSuffix(path, "_test.go") {
			return nil
		}

		source, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		res, err := ix.parser.Parse(ctx, rel, source, lang)
		if err != nil {
			return fmt.Errorf("parse %s: %w", rel, err)
		}
		res.Package = packageOf(rel)
		results = append(results, res)
		return nil
	})
	if err != nil {
		return err
	}

	return ix.linker.Link(ctx, store, results)
}

func (ix *Indexer) wantedLanguages() map[graph.Language]bool {
	wanted := make(map[graph.Language]bool)
	langs := ix.opts.Languages
	if len(langs) == 0 {
		langs = ix.parser.SupportedLanguages()
	}
	for _, l := range langs {
		wanted[l] = true
	}
	return wanted
}

func (ix *Indexer) excludedDirs() map[string]bool {
	excluded := make(map[string]bool)
	for _, d := range defaultExcludes {
		excluded[d] = true
	}
	for _, d := range ix.opts.ExcludeDirs {
		excluded[d] = true
	}
	return excluded
}

// packageOf derives a package identifier from a relative file path:
// the file's directory, or "." for root-level files.
func packageOf(rel string) string {
	dir := filepath.ToSlash(filepath.Dir(rel))
	if dir == "" {
		return "."
	}
	return dir
}
