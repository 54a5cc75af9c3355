// Package ingest builds the base architecture graph from source trees or
// from pre-built graph documents. It is a collaborator of the analysis
// core: the core only ever sees the populated Store.
package ingest

import (
	"context"

	"github.com/dusk-indust/layerlens/internal/graph"
)

// SuperRef is a raw reference to a supertype as written in source, before
// resolution against the declared type set.
type SuperRef struct {
	Name string         // short or qualified name as written
	Kind graph.EdgeKind // EdgeKindImplements or EdgeKindExtends
}

// MethodDecl is one method declaration with the raw names of the methods
// its body calls. Interface/trait method signatures have no calls.
type MethodDecl struct {
	Name  string
	Calls []string
}

// TypeDecl is one type declaration extracted from a single file.
type TypeDecl struct {
	Name        string // short name
	IsInterface bool
	Supertypes  []SuperRef
	Methods     []MethodDecl
	FieldTypes  []string // raw type references for DEPENDS_ON facts
}

// ParseResult holds the declarations extracted from a single file.
// Package is filled in by the indexer from the file's directory.
type ParseResult struct {
	Path     string
	Language graph.Language
	Package  string
	Types    []TypeDecl
}

// Parser extracts type-level structure from source files.
// Implementations: TreeSitterParser (production), test stubs.
type Parser interface {
	// Parse extracts type declarations from a single source file.
	// source is the file content. lang determines which grammar to use.
	Parse(ctx context.Context, path string, source []byte, lang graph.Language) (*ParseResult, error)

	// SupportedLanguages returns the languages this parser can handle.
	SupportedLanguages() []graph.Language

	// Close releases parser resources (tree-sitter C memory).
	Close() error
}
