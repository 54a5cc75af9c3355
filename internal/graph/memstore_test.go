package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupStore creates a MemStore populated with the given nodes and edges.
func setupStore(t *testing.T, pkgs []PackageNode, types []TypeNode, methods []MethodNode, edges []Edge) *MemStore {
	t.Helper()
	ctx := context.Background()
	store := NewMemStore()
	require.NoError(t, store.InitSchema(ctx))

	for _, p := range pkgs {
		require.NoError(t, store.AddPackage(ctx, p))
	}
	for _, ty := range types {
		require.NoError(t, store.AddType(ctx, ty))
	}
	for _, m := range methods {
		require.NoError(t, store.AddMethod(ctx, m))
	}
	for _, e := range edges {
		require.NoError(t, store.AddEdge(ctx, e))
	}
	return store
}

func TestMemStore_Enumeration_Sorted(t *testing.T) {
	store := setupStore(t,
		[]PackageNode{{Name: "b/pkg"}, {Name: "a/pkg"}},
		[]TypeNode{{Name: "b/pkg.Z", Package: "b/pkg"}, {Name: "a/pkg.A", Package: "a/pkg"}},
		[]MethodNode{
			{ID: MethodID("b/pkg.Z", "Do"), Name: "Do", Type: "b/pkg.Z"},
			{ID: MethodID("a/pkg.A", "Do"), Name: "Do", Type: "a/pkg.A"},
		},
		nil,
	)
	ctx := context.Background()

	pkgs, err := store.Packages(ctx)
	require.NoError(t, err)
	require.Len(t, pkgs, 2)
	assert.Equal(t, "a/pkg", pkgs[0].Name)

	types, err := store.Types(ctx)
	require.NoError(t, err)
	require.Len(t, types, 2)
	assert.Equal(t, "a/pkg.A", types[0].Name)

	methods, err := store.Methods(ctx)
	require.NoError(t, err)
	require.Len(t, methods, 2)
	assert.Equal(t, "a/pkg.A#Do", methods[0].ID)
}

func TestMemStore_GetType_NotFound(t *testing.T) {
	store := setupStore(t, nil, nil, nil, nil)
	ctx := context.Background()

	ty, err := store.GetType(ctx, "missing.Type")
	require.NoError(t, err)
	assert.Nil(t, ty)

	m, err := store.GetMethod(ctx, "missing.Type#Do")
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestMemStore_HasRole(t *testing.T) {
	store := setupStore(t, nil, []TypeNode{
		{Name: "app.OrderService", Package: "app", Roles: []Role{RoleService}},
		{Name: "app.Helper", Package: "app"},
	}, nil, nil)
	ctx := context.Background()

	has, err := store.HasRole(ctx, "app.OrderService", RoleService)
	require.NoError(t, err)
	assert.True(t, has)

	has, err = store.HasRole(ctx, "app.OrderService", RoleController)
	require.NoError(t, err)
	assert.False(t, has)

	has, err = store.HasRole(ctx, "app.Helper", RoleService)
	require.NoError(t, err)
	assert.False(t, has)

	// Unknown types have no roles rather than erroring.
	has, err = store.HasRole(ctx, "app.Missing", RoleService)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestMemStore_EdgeFiltering(t *testing.T) {
	types := []TypeNode{
		{Name: "app.A", Package: "app"},
		{Name: "app.B", Package: "app"},
		{Name: "app.C", Package: "app"},
	}
	edges := []Edge{
		{SourceID: "app.A", TargetID: "app.B", Kind: EdgeKindDependsOn},
		{SourceID: "app.A", TargetID: "app.C", Kind: EdgeKindImplements},
		{SourceID: "app.B", TargetID: "app.C", Kind: EdgeKindImplements},
	}
	store := setupStore(t, nil, types, nil, edges)
	ctx := context.Background()

	out, err := store.Outgoing(ctx, "app.A", EdgeKindImplements)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "app.C", out[0].TargetID)

	all, err := store.Outgoing(ctx, "app.A", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	in, err := store.Incoming(ctx, "app.C", EdgeKindImplements)
	require.NoError(t, err)
	assert.Len(t, in, 2)

	none, err := store.Outgoing(ctx, "app.C", "")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemStore_Validate_Dangling(t *testing.T) {
	store := setupStore(t, nil,
		[]TypeNode{{Name: "app.A", Package: "app"}},
		nil,
		[]Edge{{SourceID: "app.A", TargetID: "app.Ghost", Kind: EdgeKindDependsOn}},
	)

	err := store.Validate(context.Background())
	require.Error(t, err)

	var dangling *DanglingReferenceError
	require.ErrorAs(t, err, &dangling)
	assert.Equal(t, "app.Ghost", dangling.NodeID)
	assert.Equal(t, EdgeKindDependsOn, dangling.Edge.Kind)
}

func TestMemStore_Validate_Clean(t *testing.T) {
	store := setupStore(t,
		[]PackageNode{{Name: "app"}},
		[]TypeNode{{Name: "app.A", Package: "app"}},
		[]MethodNode{{ID: "app.A#Do", Name: "Do", Type: "app.A"}},
		[]Edge{
			{SourceID: "app", TargetID: "app.A", Kind: EdgeKindContains},
			{SourceID: "app.A", TargetID: "app.A#Do", Kind: EdgeKindDeclares},
		},
	)
	require.NoError(t, store.Validate(context.Background()))
}

func TestMemStore_Stats(t *testing.T) {
	store := setupStore(t,
		[]PackageNode{{Name: "app"}},
		[]TypeNode{
			{Name: "app.OrderController", Package: "app", Roles: []Role{RoleController}},
			{Name: "app.OrderService", Package: "app", Roles: []Role{RoleService}},
			{Name: "app.Helper", Package: "app"},
		},
		[]MethodNode{{ID: "app.Helper#Do", Name: "Do", Type: "app.Helper"}},
		[]Edge{{SourceID: "app", TargetID: "app.Helper", Kind: EdgeKindContains}},
	)

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.PackageCount)
	assert.Equal(t, 3, stats.TypeCount)
	assert.Equal(t, 1, stats.MethodCount)
	assert.Equal(t, 2, stats.ComponentCount)
	assert.Equal(t, 1, stats.EdgeCount)
}

func TestComponents(t *testing.T) {
	store := setupStore(t, nil, []TypeNode{
		{Name: "app.OrderController", Package: "app", Roles: []Role{RoleController}},
		{Name: "app.Helper", Package: "app"},
		{Name: "app.OrderService", Package: "app", Roles: []Role{RoleService}},
	}, nil, nil)

	components, err := Components(context.Background(), store)
	require.NoError(t, err)
	require.Len(t, components, 2)
	assert.Equal(t, "app.OrderController", components[0].Name)
	assert.Equal(t, "app.OrderService", components[1].Name)
}
