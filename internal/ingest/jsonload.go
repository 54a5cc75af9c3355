package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/dusk-indust/layerlens/internal/graph"
)

// Document is the JSON interchange form of a base graph: everything an
// external ingester needs to hand over for analysis. Derived edges are
// never part of a document.
type Document struct {
	Packages []graph.PackageNode `json:"packages"`
	Types    []graph.TypeNode    `json:"types"`
	Methods  []graph.MethodNode  `json:"methods"`
	Edges    []graph.Edge        `json:"edges"`
}

// LoadDocument populates the store from a pre-built graph document and
// validates referential integrity. Nodes load before edges so a valid
// document never trips insert-time dangling checks.
func LoadDocument(ctx context.Context, store graph.Store, doc *Document) error {
	for _, p := range doc.Packages {
		if err := store.AddPackage(ctx, p); err != nil {
			return fmt.Errorf("add package %s: %w", p.Name, err)
		}
	}
	for _, t := range doc.Types {
		if err := store.AddType(ctx, t); err != nil {
			return fmt.Errorf("add type %s: %w", t.Name, err)
		}
	}
	for _, m := range doc.Methods {
		if err := store.AddMethod(ctx, m); err != nil {
			return fmt.Errorf("add method %s: %w", m.ID, err)
		}
	}
	for _, e := range doc.Edges {
		if e.Kind == graph.EdgeKindUses {
			return fmt.Errorf("document contains derived edge %s -> %s: USES edges are computed, not loaded", e.SourceID, e.TargetID)
		}
		if err := store.AddEdge(ctx, e); err != nil {
			return err
		}
	}
	return store.Validate(ctx)
}

// LoadJSONFile reads a graph document from disk and loads it.
func LoadJSONFile(ctx context.Context, store graph.Store, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read graph document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode graph document %s: %w", path, err)
	}
	return LoadDocument(ctx, store, &doc)
}
