package mcptools

import (
	"github.com/dusk-indust/layerlens/internal/check"
	"github.com/dusk-indust/layerlens/internal/export"
	"github.com/dusk-indust/layerlens/internal/graph"
)

// --- MCP Tool Input Types ---
// These structs define the JSON schema for each MCP tool's input.
// The MCP Go SDK auto-generates JSON schemas from struct tags.

// BuildGraphInput is the input for the build_graph MCP tool.
type BuildGraphInput struct {
	RepoPath    string   `json:"repoPath" jsonschema:"the absolute path to the repository to index"`
	Languages   []string `json:"languages,omitempty" jsonschema:"languages to index (default: all). Values: go, typescript, python, rust"`
	ExcludeDirs []string `json:"excludeDirs,omitempty" jsonschema:"directories to exclude from indexing (e.g. vendor, node_modules)"`
}

// BuildGraphOutput is the result of the build_graph MCP tool.
type BuildGraphOutput struct {
	Stats graph.GraphStats `json:"stats"`
}

// DeriveUsesInput is the input for the derive_uses MCP tool.
type DeriveUsesInput struct{}

// DeriveUsesOutput is the result of the derive_uses MCP tool.
type DeriveUsesOutput struct {
	Uses  []graph.Edge `json:"uses"`
	Total int          `json:"total"`
}

// CheckArchitectureInput is the input for the check_architecture MCP tool.
type CheckArchitectureInput struct{}

// CheckArchitectureOutput is the result of the check_architecture MCP tool.
type CheckArchitectureOutput struct {
	Results        []check.Result `json:"results"`
	ViolationCount int            `json:"violationCount"`
}

// ExportViewsInput is the input for the export_views MCP tool.
type ExportViewsInput struct {
	View   string `json:"view,omitempty" jsonschema:"which view to export: layer (component dependencies) or package (package grouping). Default: layer"`
	Format string `json:"format,omitempty" jsonschema:"output format: json or mermaid. Default: json"`
}

// ExportViewsOutput is the result of the export_views MCP tool.
type ExportViewsOutput struct {
	Graph   *export.Graph `json:"graph,omitempty"`
	Mermaid string        `json:"mermaid,omitempty"`
}

// GraphStatsInput is the input for the graph_stats MCP tool.
type GraphStatsInput struct{}

// GraphStatsOutput is the result of the graph_stats MCP tool.
type GraphStatsOutput struct {
	Stats graph.GraphStats `json:"stats"`
}
