package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/layerlens/internal/graph"
)

func fixturePath(t *testing.T) string {
	t.Helper()
	return filepath.Join("..", "..", "testdata", "fixtures", "go_project")
}

func indexFixture(t *testing.T) *graph.MemStore {
	t.Helper()
	parser := NewTreeSitterParser()
	t.Cleanup(func() { parser.Close() })

	store := graph.NewMemStore()
	indexer := NewIndexer(parser, nil, IndexerOptions{})
	require.NoError(t, indexer.Index(context.Background(), store, fixturePath(t)))
	require.NoError(t, store.Validate(context.Background()))
	return store
}

func TestIndex_FixtureProject(t *testing.T) {
	store := indexFixture(t)
	ctx := context.Background()

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.PackageCount)
	assert.Equal(t, 5, stats.TypeCount)
	assert.Equal(t, 5, stats.ComponentCount)

	controller, err := store.GetType(ctx, "orders.OrderController")
	require.NoError(t, err)
	require.NotNil(t, controller)
	assert.Equal(t, []graph.Role{graph.RoleController}, controller.Roles)

	iface, err := store.GetType(ctx, "orders.IOrderService")
	require.NoError(t, err)
	require.NotNil(t, iface)
	assert.True(t, iface.IsInterface)
	assert.Equal(t, []graph.Role{graph.RoleService}, iface.Roles)

	// Structural satisfaction: OrderService implements IOrderService.
	impl, err := store.Outgoing(ctx, "orders.OrderService", graph.EdgeKindImplements)
	require.NoError(t, err)
	require.Len(t, impl, 1)
	assert.Equal(t, "orders.IOrderService", impl[0].TargetID)

	// The controller's call goes through the interface.
	invokes, err := store.Outgoing(ctx, graph.MethodID("orders.OrderController", "Create"), graph.EdgeKindInvokes)
	require.NoError(t, err)
	require.Len(t, invokes, 1)
	assert.Equal(t, graph.MethodID("orders.IOrderService", "CreateOrder"), invokes[0].TargetID)

	// Field wiring shows up as DEPENDS_ON.
	deps, err := store.Outgoing(ctx, "orders.OrderController", graph.EdgeKindDependsOn)
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.Equal(t, "orders.IOrderService", deps[0].TargetID)
}

func TestIndex_ExcludedAndUnsupportedFilesSkipped(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "vendor", "dep"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "skipme"), 0o755))

	files := map[string]string{
		"main.go":            "package main\n\ntype MainService struct{}\n",
		"notes.md":           "# readme\n",
		"main_test.go":       "package main\n\ntype TestService struct{}\n",
		"vendor/dep/dep.go":  "package dep\n\ntype VendoredService struct{}\n",
		"skipme/excluded.go": "package skipme\n\ntype ExcludedService struct{}\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	parser := NewTreeSitterParser()
	defer parser.Close()

	store := graph.NewMemStore()
	indexer := NewIndexer(parser, nil, IndexerOptions{ExcludeDirs: []string{"skipme"}})
	require.NoError(t, indexer.Index(context.Background(), store, dir))

	types, err := store.Types(context.Background())
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.Equal(t, ".MainService", types[0].Name)
}

func TestIndex_LanguageFilter(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "svc.go"), []byte("package app\n\ntype GoService struct{}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "svc.py"), []byte("class PyService:\n    pass\n"), 0o644))

	parser := NewTreeSitterParser()
	defer parser.Close()

	store := graph.NewMemStore()
	indexer := NewIndexer(parser, nil, IndexerOptions{Languages: []graph.Language{graph.LangPython}})
	require.NoError(t, indexer.Index(context.Background(), store, dir))

	types, err := store.Types(context.Background())
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.Equal(t, ".PyService", types[0].Name)
}
