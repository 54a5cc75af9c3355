//go:build cgo

package mcptools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dusk-indust/layerlens/internal/graph"
)

// persistGraph copies graph data from the in-memory store to a
// file-based KuzuDB under projectRoot. This lets the CLI query the last
// built graph without the MCP server running.
func persistGraph(ctx context.Context, src graph.Store, projectRoot string) error {
	persistPath := filepath.Join(projectRoot, ".layerlens", "graph")

	// Remove old graph to avoid stale data.
	os.RemoveAll(persistPath)

	dst, err := graph.NewKuzuFileStore(persistPath)
	if err != nil {
		return fmt.Errorf("open file store: %w", err)
	}
	defer dst.Close()

	if err := dst.InitSchema(ctx); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	packages, err := src.Packages(ctx)
	if err != nil {
		return err
	}
	for _, p := range packages {
		if err := dst.AddPackage(ctx, p); err != nil {
			return fmt.Errorf("add package %s: %w", p.Name, err)
		}
	}

	types, err := src.Types(ctx)
	if err != nil {
		return err
	}
	for _, t := range types {
		if err := dst.AddType(ctx, t); err != nil {
			return fmt.Errorf("add type %s: %w", t.Name, err)
		}
	}

	methods, err := src.Methods(ctx)
	if err != nil {
		return err
	}
	for _, m := range methods {
		if err := dst.AddMethod(ctx, m); err != nil {
			return fmt.Errorf("add method %s: %w", m.ID, err)
		}
	}

	// Edges live on their source nodes; walk every node once.
	var sourceIDs []string
	for _, p := range packages {
		sourceIDs = append(sourceIDs, p.Name)
	}
	for _, t := range types {
		sourceIDs = append(sourceIDs, t.Name)
	}
	for _, m := range methods {
		sourceIDs = append(sourceIDs, m.ID)
	}
	for _, id := range sourceIDs {
		edges, err := src.Outgoing(ctx, id, "")
		if err != nil {
			return err
		}
		for _, e := range edges {
			if err := dst.AddEdge(ctx, e); err != nil {
				return fmt.Errorf("add edge %s->%s: %w", e.SourceID, e.TargetID, err)
			}
		}
	}

	return nil
}
