package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewArchMCPServer creates an MCP server with all 5 architecture
// analysis tools registered.
func NewArchMCPServer(svc *ArchService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "layerlens",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "build_graph",
		Description: "Index a repository and build the architecture graph. Walks the file tree, parses source files using tree-sitter, links types, methods, and inheritance, and tags layer components by naming convention.",
	}, svc.BuildGraph)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "derive_uses",
		Description: "Compute derived USES edges between components: an invocation of an interface method counts as a use of the interface and of every type in its implementation hierarchy.",
	}, svc.DeriveUses)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "check_architecture",
		Description: "Evaluate layering constraints (controller/service/repository rules plus implementation-coupling) over the built graph. Returns per-constraint violation lists.",
	}, svc.CheckArchitecture)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "export_views",
		Description: "Export the layer dependency view (components and USES edges) or the package view (types grouped by package with package dependencies), as JSON or a mermaid diagram.",
	}, svc.ExportViews)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "graph_stats",
		Description: "Return node and edge counts for the currently built architecture graph.",
	}, svc.GraphStats)

	return server
}

// RunMCPServer starts an HTTP server exposing the architecture MCP tools.
func RunMCPServer(ctx context.Context, svc *ArchService, addr string) error {
	server := NewArchMCPServer(svc)

	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// RunMCPServerStdio runs the MCP server on stdio transport, blocking
// until stdin is closed or the context is cancelled.
func RunMCPServerStdio(ctx context.Context, svc *ArchService) error {
	return NewArchMCPServer(svc).Run(ctx, &mcp.StdioTransport{})
}
