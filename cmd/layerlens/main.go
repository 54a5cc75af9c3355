package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dusk-indust/layerlens/internal/classify"
	"github.com/dusk-indust/layerlens/internal/config"
	"github.com/dusk-indust/layerlens/internal/graph"
	"github.com/dusk-indust/layerlens/internal/ingest"
	"github.com/dusk-indust/layerlens/internal/mcptools"
)

// CLI flags parsed from command line.
type cliFlags struct {
	ProjectRoot string
	GraphFile   string
	Languages   string
	Excludes    string
	View        string
	Format      string
	Verbose     bool
	ServeMCP    bool
	ServeHTTP   string
	Version     bool
}

// version is set by goreleaser at build time.
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var flags cliFlags

	fs := flag.NewFlagSet("layerlens", flag.ContinueOnError)
	fs.StringVar(&flags.ProjectRoot, "project-root", ".", "path to the target project")
	fs.StringVar(&flags.GraphFile, "graph", "", "load a pre-built graph document (JSON) instead of parsing sources")
	fs.StringVar(&flags.Languages, "lang", "", "comma-separated languages to index (default: all)")
	fs.StringVar(&flags.Excludes, "exclude", "", "comma-separated directory names to skip")
	fs.StringVar(&flags.View, "view", "layer", "view for export/diagram: layer or package")
	fs.StringVar(&flags.Format, "format", "json", "export format: json or mermaid")
	fs.BoolVar(&flags.Verbose, "verbose", false, "print per-phase progress")
	fs.BoolVar(&flags.ServeMCP, "serve-mcp", false, "run as MCP server on stdio")
	fs.StringVar(&flags.ServeHTTP, "serve-http", "", "run as MCP server on the given HTTP address")
	fs.BoolVar(&flags.Version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if flags.Version {
		fmt.Println(version)
		return nil
	}

	cfg, err := config.Load(flags.ProjectRoot)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyConfig(&flags, cfg)

	if flags.ServeMCP || flags.ServeHTTP != "" {
		return runServe(flags, cfg)
	}

	switch fs.Arg(0) {
	case "check":
		return runCheck(flags, cfg, fs.Arg(1))
	case "export":
		return runExport(flags, cfg, fs.Arg(1))
	case "stats":
		return runStats(flags, cfg, fs.Arg(1))
	case "diagram":
		return runDiagram(flags)
	case "":
		return fmt.Errorf("usage: layerlens [flags] <check|export|stats|diagram> [path]")
	default:
		return fmt.Errorf("unknown command %q", fs.Arg(0))
	}
}

// applyConfig fills flag defaults from layerlens.yml; explicit flags win.
func applyConfig(flags *cliFlags, cfg *config.ProjectConfig) {
	if flags.Languages == "" && len(cfg.Languages) > 0 {
		flags.Languages = strings.Join(cfg.Languages, ",")
	}
	if flags.Excludes == "" && len(cfg.ExcludeDirs) > 0 {
		flags.Excludes = strings.Join(cfg.ExcludeDirs, ",")
	}
	if cfg.Verbose {
		flags.Verbose = true
	}
}

func runServe(flags cliFlags, cfg *config.ProjectConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	parser := ingest.NewTreeSitterParser()
	defer parser.Close()

	svc := mcptools.NewArchService(parser, linkerFor(cfg))
	svc.SetProjectRoot(flags.ProjectRoot)

	if flags.ServeHTTP != "" {
		return mcptools.RunMCPServer(ctx, svc, flags.ServeHTTP)
	}
	return mcptools.RunMCPServerStdio(ctx, svc)
}

// linkerFor builds a linker with the configured role rules, falling back
// to the defaults.
func linkerFor(cfg *config.ProjectConfig) *ingest.Linker {
	var rules []classify.Rule
	for _, r := range cfg.Roles {
		rules = append(rules, classify.Rule{
			Role:     graph.Role(strings.ToLower(r.Role)),
			Keywords: r.Keywords,
		})
	}
	return ingest.NewLinker(classify.NewClassifier(rules))
}

// buildStore populates a fresh in-memory store, either from a graph
// document or by indexing the source tree at path.
func buildStore(ctx context.Context, flags cliFlags, cfg *config.ProjectConfig, path string) (graph.Store, error) {
	store := graph.NewMemStore()

	if flags.GraphFile != "" {
		if err := ingest.LoadJSONFile(ctx, store, flags.GraphFile); err != nil {
			return nil, err
		}
		return store, nil
	}

	if path == "" {
		path = flags.ProjectRoot
	}

	langs, err := splitLanguages(flags.Languages)
	if err != nil {
		return nil, err
	}

	parser := ingest.NewTreeSitterParser()
	defer parser.Close()

	indexer := ingest.NewIndexer(parser, linkerFor(cfg), ingest.IndexerOptions{
		Languages:   langs,
		ExcludeDirs: splitList(flags.Excludes),
	})
	if err := indexer.Index(ctx, store, path); err != nil {
		return nil, fmt.Errorf("index %s: %w", path, err)
	}
	return store, nil
}

func splitLanguages(csv string) ([]graph.Language, error) {
	var langs []graph.Language
	for _, name := range splitList(csv) {
		lang := graph.Language(strings.ToLower(name))
		ok := false
		for _, l := range graph.SupportedLanguages {
			if l == lang {
				ok = true
				break
			}
		}
		if !ok {
			return nil, fmt.Errorf("unsupported language %q", name)
		}
		langs = append(langs, lang)
	}
	return langs, nil
}

func splitList(csv string) []string {
	if csv == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
