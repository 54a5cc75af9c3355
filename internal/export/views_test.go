package export

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/layerlens/internal/graph"
)

func viewStore(t *testing.T) *graph.MemStore {
	t.Helper()
	ctx := context.Background()
	store := graph.NewMemStore()

	pkgs := []graph.PackageNode{{Name: "web"}, {Name: "domain"}}
	types := []graph.TypeNode{
		{Name: "web.OrderController", Package: "web", Roles: []graph.Role{graph.RoleController}},
		{Name: "domain.IOrderService", Package: "domain", IsInterface: true, Roles: []graph.Role{graph.RoleService}},
		{Name: "domain.OrderService", Package: "domain", Roles: []graph.Role{graph.RoleService}},
		{Name: "domain.Money", Package: "domain"},
	}
	edges := []graph.Edge{
		{SourceID: "web", TargetID: "web.OrderController", Kind: graph.EdgeKindContains},
		{SourceID: "domain", TargetID: "domain.IOrderService", Kind: graph.EdgeKindContains},
		{SourceID: "domain", TargetID: "domain.OrderService", Kind: graph.EdgeKindContains},
		{SourceID: "domain", TargetID: "domain.Money", Kind: graph.EdgeKindContains},
		{SourceID: "web.OrderController", TargetID: "domain.IOrderService", Kind: graph.EdgeKindDependsOn},
		{SourceID: "domain.OrderService", TargetID: "domain.Money", Kind: graph.EdgeKindDependsOn},
	}

	for _, p := range pkgs {
		require.NoError(t, store.AddPackage(ctx, p))
	}
	for _, ty := range types {
		require.NoError(t, store.AddType(ctx, ty))
	}
	for _, e := range edges {
		require.NoError(t, store.AddEdge(ctx, e))
	}
	return store
}

func TestLayerView(t *testing.T) {
	store := viewStore(t)
	uses := []graph.Edge{
		{SourceID: "web.OrderController", TargetID: "domain.IOrderService", Kind: graph.EdgeKindUses, Attrs: map[string]string{"via": "domain.IOrderService"}},
		{SourceID: "web.OrderController", TargetID: "domain.OrderService", Kind: graph.EdgeKindUses, Attrs: map[string]string{"via": "domain.IOrderService"}},
	}

	view, err := LayerView(context.Background(), store, uses)
	require.NoError(t, err)
	assert.Equal(t, "layer-dependencies", view.Name)

	// Only components appear: Money is excluded.
	require.Len(t, view.Nodes, 3)
	ids := make([]string, 0, len(view.Nodes))
	for _, n := range view.Nodes {
		assert.False(t, n.IsGroup)
		ids = append(ids, n.ID)
	}
	assert.ElementsMatch(t, []string{"web.OrderController", "domain.IOrderService", "domain.OrderService"}, ids)

	// Labels are short names.
	for _, n := range view.Nodes {
		assert.NotContains(t, n.Label, ".")
	}

	require.Len(t, view.Edges, 2)
	assert.Equal(t, "USES", view.Edges[0].Kind)
	assert.Equal(t, "domain.IOrderService", view.Edges[0].Attrs["via"])
}

func TestLayerView_EmptyUses(t *testing.T) {
	store := viewStore(t)

	view, err := LayerView(context.Background(), store, nil)
	require.NoError(t, err)
	assert.Len(t, view.Nodes, 3)
	assert.Empty(t, view.Edges)
}

func TestPackageView_GroupingComplete(t *testing.T) {
	store := viewStore(t)

	view, err := PackageView(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, "package-dependencies", view.Name)

	var groups []Node
	members := make(map[string]bool)
	for _, n := range view.Nodes {
		if n.IsGroup {
			groups = append(groups, n)
		} else {
			members[n.ID] = true
		}
	}
	require.Len(t, groups, 2)

	// Packages enumerate sorted: domain before web.
	assert.Equal(t, "domain", groups[0].ID)
	assert.Equal(t, []string{"domain.IOrderService", "domain.Money", "domain.OrderService"}, groups[0].Children)
	assert.Equal(t, "web", groups[1].ID)
	assert.Equal(t, []string{"web.OrderController"}, groups[1].Children)

	// Money has no dependencies but is still a member node.
	assert.True(t, members["domain.Money"])

	require.Len(t, view.Edges, 2)
	assert.Equal(t, "domain.OrderService", view.Edges[0].SourceID)
	assert.Equal(t, "domain.Money", view.Edges[0].TargetID)
	assert.Equal(t, "web.OrderController", view.Edges[1].SourceID)
	assert.Equal(t, "domain.IOrderService", view.Edges[1].TargetID)
}

func TestPackageView_ExternalDependencySkipped(t *testing.T) {
	ctx := context.Background()
	store := graph.NewMemStore()
	require.NoError(t, store.AddPackage(ctx, graph.PackageNode{Name: "app"}))
	require.NoError(t, store.AddType(ctx, graph.TypeNode{Name: "app.A", Package: "app"}))
	require.NoError(t, store.AddEdge(ctx, graph.Edge{SourceID: "app", TargetID: "app.A", Kind: graph.EdgeKindContains}))
	// Dependency on a type that was never added to the graph.
	require.NoError(t, store.AddEdge(ctx, graph.Edge{SourceID: "app.A", TargetID: "ext.Lib", Kind: graph.EdgeKindDependsOn}))

	view, err := PackageView(ctx, store)
	require.NoError(t, err)
	assert.Empty(t, view.Edges)
}

func TestPackageView_DuplicateDependsOnCollapses(t *testing.T) {
	ctx := context.Background()
	store := graph.NewMemStore()
	require.NoError(t, store.AddPackage(ctx, graph.PackageNode{Name: "app"}))
	require.NoError(t, store.AddType(ctx, graph.TypeNode{Name: "app.A", Package: "app"}))
	require.NoError(t, store.AddType(ctx, graph.TypeNode{Name: "app.B", Package: "app"}))
	for _, e := range []graph.Edge{
		{SourceID: "app", TargetID: "app.A", Kind: graph.EdgeKindContains},
		{SourceID: "app", TargetID: "app.B", Kind: graph.EdgeKindContains},
		{SourceID: "app.A", TargetID: "app.B", Kind: graph.EdgeKindDependsOn},
		{SourceID: "app.A", TargetID: "app.B", Kind: graph.EdgeKindDependsOn},
	} {
		require.NoError(t, store.AddEdge(ctx, e))
	}

	view, err := PackageView(ctx, store)
	require.NoError(t, err)
	assert.Len(t, view.Edges, 1)
}

func TestMermaid_SubgraphsAndEdges(t *testing.T) {
	store := viewStore(t)

	view, err := PackageView(context.Background(), store)
	require.NoError(t, err)

	out := Mermaid(view)
	assert.True(t, strings.HasPrefix(out, "graph TD\n"))
	assert.Contains(t, out, `subgraph`)
	assert.Contains(t, out, `["domain"]`)
	assert.Contains(t, out, `["web"]`)
	assert.Contains(t, out, `["OrderController"]`)
	assert.Contains(t, out, "-->|DEPENDS_ON|")
}

func TestMermaid_FlatView(t *testing.T) {
	view := &Graph{
		Name: "layer-dependencies",
		Nodes: []Node{
			{ID: "a.C", Label: "C"},
			{ID: "a.S", Label: "S"},
		},
		Edges: []Edge{{SourceID: "a.C", TargetID: "a.S", Kind: "USES"}},
	}

	out := Mermaid(view)
	assert.Contains(t, out, `N0["C"]`)
	assert.Contains(t, out, `N1["S"]`)
	assert.Contains(t, out, "N0 -->|USES| N1")
}
