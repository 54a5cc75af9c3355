package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/dusk-indust/layerlens/internal/analysis"
	"github.com/dusk-indust/layerlens/internal/config"
	"github.com/dusk-indust/layerlens/internal/export"
)

// runExport builds the graph, runs the analysis, and writes the
// selected view to stdout as JSON or a mermaid diagram. The special
// view "report" dumps the whole analysis report as JSON.
func runExport(flags cliFlags, cfg *config.ProjectConfig, path string) error {
	ctx := context.Background()

	store, err := buildStore(ctx, flags, cfg, path)
	if err != nil {
		return err
	}
	defer store.Close()

	report, err := analysis.Run(ctx, store, analysis.Options{})
	if err != nil {
		return err
	}

	var view *export.Graph
	switch flags.View {
	case "layer":
		view = report.LayerView
	case "package":
		view = report.PackageView
	case "report":
		return writeJSON(report)
	default:
		return fmt.Errorf("unknown view %q: expected layer, package, or report", flags.View)
	}

	switch flags.Format {
	case "json":
		return writeJSON(view)
	case "mermaid":
		fmt.Print(export.Mermaid(view))
		return nil
	default:
		return fmt.Errorf("unknown format %q: expected json or mermaid", flags.Format)
	}
}

func writeJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	_, err = os.Stdout.Write(append(out, '\n'))
	return err
}

// runStats builds the graph and prints node and edge counts.
func runStats(flags cliFlags, cfg *config.ProjectConfig, path string) error {
	ctx := context.Background()

	store, err := buildStore(ctx, flags, cfg, path)
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.Stats(ctx)
	if err != nil {
		return err
	}
	return writeJSON(stats)
}
