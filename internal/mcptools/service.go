package mcptools

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/layerlens/internal/analysis"
	"github.com/dusk-indust/layerlens/internal/derive"
	"github.com/dusk-indust/layerlens/internal/export"
	"github.com/dusk-indust/layerlens/internal/graph"
	"github.com/dusk-indust/layerlens/internal/ingest"
)

// ArchService holds the current graph snapshot and serves MCP tool
// calls against it. build_graph swaps in a fresh store; every other
// tool reads the snapshot, so a populated store is never mutated.
type ArchService struct {
	mu          sync.Mutex
	parser      ingest.Parser
	linker      *ingest.Linker
	store       graph.Store
	report      *analysis.Report
	projectRoot string // used for persisting the graph to disk
}

// NewArchService creates an ArchService. A nil linker gets default
// role rules.
func NewArchService(parser ingest.Parser, linker *ingest.Linker) *ArchService {
	if linker == nil {
		linker = ingest.NewLinker(nil)
	}
	return &ArchService{parser: parser, linker: linker}
}

// SetProjectRoot sets the project root used for graph persistence.
func (s *ArchService) SetProjectRoot(root string) {
	s.projectRoot = root
}

// BuildGraph indexes a repository into a fresh store and validates it.
func (s *ArchService) BuildGraph(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input BuildGraphInput,
) (*mcp.CallToolResult, BuildGraphOutput, error) {
	if input.RepoPath == "" {
		return nil, BuildGraphOutput{}, fmt.Errorf("repoPath is required")
	}

	info, err := os.Stat(input.RepoPath)
	if err != nil {
		return nil, BuildGraphOutput{}, fmt.Errorf("cannot access repoPath: %w", err)
	}
	if !info.IsDir() {
		return nil, BuildGraphOutput{}, fmt.Errorf("repoPath is not a directory: %s", input.RepoPath)
	}

	langs, err := parseLanguages(input.Languages)
	if err != nil {
		return nil, BuildGraphOutput{}, err
	}

	store := graph.NewMemStore()
	indexer := ingest.NewIndexer(s.parser, s.linker, ingest.IndexerOptions{
		Languages:   langs,
		ExcludeDirs: input.ExcludeDirs,
	})
	if err := indexer.Index(ctx, store, input.RepoPath); err != nil {
		return nil, BuildGraphOutput{}, fmt.Errorf("index %s: %w", input.RepoPath, err)
	}
	if err := store.Validate(ctx); err != nil {
		return nil, BuildGraphOutput{}, fmt.Errorf("validate graph: %w", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		return nil, BuildGraphOutput{}, fmt.Errorf("stats: %w", err)
	}

	s.mu.Lock()
	s.store = store
	s.report = nil
	s.mu.Unlock()

	if s.projectRoot != "" {
		if err := persistGraph(ctx, store, s.projectRoot); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to persist graph: %v\n", err)
		}
	}

	return nil, BuildGraphOutput{Stats: *stats}, nil
}

// DeriveUses computes the USES edge set over the current snapshot.
func (s *ArchService) DeriveUses(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ DeriveUsesInput,
) (*mcp.CallToolResult, DeriveUsesOutput, error) {
	store, err := s.currentStore()
	if err != nil {
		return nil, DeriveUsesOutput{}, err
	}

	uses, err := derive.Uses(ctx, store)
	if err != nil {
		return nil, DeriveUsesOutput{}, fmt.Errorf("derive uses: %w", err)
	}

	return nil, DeriveUsesOutput{Uses: uses, Total: len(uses)}, nil
}

// CheckArchitecture runs a full analysis and reports constraint results.
func (s *ArchService) CheckArchitecture(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ CheckArchitectureInput,
) (*mcp.CallToolResult, CheckArchitectureOutput, error) {
	report, err := s.currentReport(ctx)
	if err != nil {
		return nil, CheckArchitectureOutput{}, err
	}

	return nil, CheckArchitectureOutput{
		Results:        report.Results,
		ViolationCount: report.ViolationCount(),
	}, nil
}

// ExportViews returns the layer or package dependency view.
func (s *ArchService) ExportViews(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExportViewsInput,
) (*mcp.CallToolResult, ExportViewsOutput, error) {
	report, err := s.currentReport(ctx)
	if err != nil {
		return nil, ExportViewsOutput{}, err
	}

	view := report.LayerView
	switch strings.ToLower(input.View) {
	case "", "layer":
	case "package":
		view = report.PackageView
	default:
		return nil, ExportViewsOutput{}, fmt.Errorf("unknown view %q: expected layer or package", input.View)
	}

	switch strings.ToLower(input.Format) {
	case "", "json":
		return nil, ExportViewsOutput{Graph: view}, nil
	case "mermaid":
		return nil, ExportViewsOutput{Mermaid: export.Mermaid(view)}, nil
	default:
		return nil, ExportViewsOutput{}, fmt.Errorf("unknown format %q: expected json or mermaid", input.Format)
	}
}

// GraphStats returns node and edge counts for the current snapshot.
func (s *ArchService) GraphStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ GraphStatsInput,
) (*mcp.CallToolResult, GraphStatsOutput, error) {
	store, err := s.currentStore()
	if err != nil {
		return nil, GraphStatsOutput{}, err
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		return nil, GraphStatsOutput{}, fmt.Errorf("stats: %w", err)
	}
	return nil, GraphStatsOutput{Stats: *stats}, nil
}

func (s *ArchService) currentStore() (graph.Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return nil, fmt.Errorf("no graph built yet: call build_graph first")
	}
	return s.store, nil
}

// currentReport runs one analysis per snapshot and caches the outcome;
// repeat tool calls against the same graph return identical results.
func (s *ArchService) currentReport(ctx context.Context) (*analysis.Report, error) {
	s.mu.Lock()
	store, cached := s.store, s.report
	s.mu.Unlock()

	if store == nil {
		return nil, fmt.Errorf("no graph built yet: call build_graph first")
	}
	if cached != nil {
		return cached, nil
	}

	report, err := analysis.Run(ctx, store, analysis.Options{})
	if err != nil {
		return nil, fmt.Errorf("analysis: %w", err)
	}

	s.mu.Lock()
	if s.store == store {
		s.report = report
	}
	s.mu.Unlock()
	return report, nil
}

func parseLanguages(names []string) ([]graph.Language, error) {
	var langs []graph.Language
	for _, name := range names {
		lang := graph.Language(strings.ToLower(name))
		supported := false
		for _, l := range graph.SupportedLanguages {
			if l == lang {
				supported = true
				break
			}
		}
		if !supported {
			return nil, fmt.Errorf("unsupported language %q", name)
		}
		langs = append(langs, lang)
	}
	return langs, nil
}
