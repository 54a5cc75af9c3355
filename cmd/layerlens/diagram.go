//go:build cgo

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dusk-indust/layerlens/internal/derive"
	"github.com/dusk-indust/layerlens/internal/export"
	"github.com/dusk-indust/layerlens/internal/graph"
)

// runDiagram renders a mermaid diagram from the graph persisted by the
// MCP server's build_graph tool, so no re-index is needed.
func runDiagram(flags cliFlags) error {
	graphPath := filepath.Join(flags.ProjectRoot, ".layerlens", "graph")
	if _, err := os.Stat(graphPath); err != nil {
		return fmt.Errorf("no graph found at %s\nRun 'build_graph' via MCP first to index the codebase", graphPath)
	}

	store, err := graph.NewKuzuFileStore(graphPath)
	if err != nil {
		return fmt.Errorf("open graph: %w", err)
	}
	defer store.Close()

	ctx := context.Background()

	var view *export.Graph
	switch flags.View {
	case "layer":
		uses, err := derive.Uses(ctx, store)
		if err != nil {
			return err
		}
		view, err = export.LayerView(ctx, store, uses)
		if err != nil {
			return err
		}
	case "package":
		view, err = export.PackageView(ctx, store)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown view %q: expected layer or package", flags.View)
	}

	fmt.Print(export.Mermaid(view))
	return nil
}
