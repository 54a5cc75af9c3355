package derive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/layerlens/internal/check"
	"github.com/dusk-indust/layerlens/internal/graph"
)

// layeredStore builds a store with the canonical interface-mediated
// layering: Controller1 invokes a method of IService1, which Service1Impl
// implements.
func layeredStore(t *testing.T) *graph.MemStore {
	t.Helper()
	ctx := context.Background()
	store := graph.NewMemStore()

	types := []graph.TypeNode{
		{Name: "app.Controller1", Package: "app", Roles: []graph.Role{graph.RoleController}},
		{Name: "app.IService1", Package: "app", IsInterface: true, Roles: []graph.Role{graph.RoleService}},
		{Name: "app.Service1Impl", Package: "app", Roles: []graph.Role{graph.RoleService}},
	}
	methods := []graph.MethodNode{
		{ID: "app.Controller1#handle", Name: "handle", Type: "app.Controller1"},
		{ID: "app.IService1#doWork", Name: "doWork", Type: "app.IService1"},
		{ID: "app.Service1Impl#doWork", Name: "doWork", Type: "app.Service1Impl"},
	}
	edges := []graph.Edge{
		{SourceID: "app.Controller1", TargetID: "app.Controller1#handle", Kind: graph.EdgeKindDeclares},
		{SourceID: "app.IService1", TargetID: "app.IService1#doWork", Kind: graph.EdgeKindDeclares},
		{SourceID: "app.Service1Impl", TargetID: "app.Service1Impl#doWork", Kind: graph.EdgeKindDeclares},
		{SourceID: "app.Controller1#handle", TargetID: "app.IService1#doWork", Kind: graph.EdgeKindInvokes},
		{SourceID: "app.Service1Impl", TargetID: "app.IService1", Kind: graph.EdgeKindImplements},
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

func TestUses_InterfaceMediatedCall(t *testing.T) {
	store := layeredStore(t)

	uses, err := Uses(context.Background(), store)
	require.NoError(t, err)

	// The call through IService1 lands on the interface and on its
	// implementor.
	require.Len(t, uses, 2)
	assert.Equal(t, "app.Controller1", uses[0].SourceID)
	assert.Equal(t, "app.IService1", uses[0].TargetID)
	assert.Equal(t, graph.EdgeKindUses, uses[0].Kind)
	assert.Equal(t, "app.IService1", uses[0].Attrs[AttrVia])

	assert.Equal(t, "app.Controller1", uses[1].SourceID)
	assert.Equal(t, "app.Service1Impl", uses[1].TargetID)
	assert.Equal(t, "app.IService1", uses[1].Attrs[AttrVia])
}

func TestUses_Idempotent(t *testing.T) {
	store := layeredStore(t)
	ctx := context.Background()

	first, err := Uses(ctx, store)
	require.NoError(t, err)
	second, err := Uses(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestUses_NoSelfLoops(t *testing.T) {
	ctx := context.Background()
	store := graph.NewMemStore()

	// Service1Impl implements IService1 and one of its methods calls
	// another method of the same interface: hierarchy expansion reaches
	// Service1Impl itself, which must not produce a self edge.
	require.NoError(t, store.AddType(ctx, graph.TypeNode{Name: "app.IService1", Package: "app", IsInterface: true, Roles: []graph.Role{graph.RoleService}}))
	require.NoError(t, store.AddType(ctx, graph.TypeNode{Name: "app.Service1Impl", Package: "app", Roles: []graph.Role{graph.RoleService}}))
	require.NoError(t, store.AddMethod(ctx, graph.MethodNode{ID: "app.IService1#doWork", Name: "doWork", Type: "app.IService1"}))
	require.NoError(t, store.AddMethod(ctx, graph.MethodNode{ID: "app.Service1Impl#helper", Name: "helper", Type: "app.Service1Impl"}))
	for _, e := range []graph.Edge{
		{SourceID: "app.IService1", TargetID: "app.IService1#doWork", Kind: graph.EdgeKindDeclares},
		{SourceID: "app.Service1Impl", TargetID: "app.Service1Impl#helper", Kind: graph.EdgeKindDeclares},
		{SourceID: "app.Service1Impl#helper", TargetID: "app.IService1#doWork", Kind: graph.EdgeKindInvokes},
		{SourceID: "app.Service1Impl", TargetID: "app.IService1", Kind: graph.EdgeKindImplements},
	} {
		require.NoError(t, store.AddEdge(ctx, e))
	}

	uses, err := Uses(ctx, store)
	require.NoError(t, err)
	require.Len(t, uses, 1)
	assert.Equal(t, "app.Service1Impl", uses[0].SourceID)
	assert.Equal(t, "app.IService1", uses[0].TargetID)
}

func TestUses_SharedInterfaceSiblings(t *testing.T) {
	ctx := context.Background()
	store := graph.NewMemStore()

	// Repository1Impl and Repository2Impl both implement IRepository, and
	// Repository1Impl calls through the shared interface: expansion lands
	// the edge on the sibling while the caller is excluded as self.
	require.NoError(t, store.AddType(ctx, graph.TypeNode{Name: "app.IRepository", Package: "app", IsInterface: true, Roles: []graph.Role{graph.RoleRepository}}))
	require.NoError(t, store.AddType(ctx, graph.TypeNode{Name: "app.Repository1Impl", Package: "app", Roles: []graph.Role{graph.RoleRepository}}))
	require.NoError(t, store.AddType(ctx, graph.TypeNode{Name: "app.Repository2Impl", Package: "app", Roles: []graph.Role{graph.RoleRepository}}))
	require.NoError(t, store.AddMethod(ctx, graph.MethodNode{ID: "app.IRepository#save", Name: "save", Type: "app.IRepository"}))
	require.NoError(t, store.AddMethod(ctx, graph.MethodNode{ID: "app.Repository1Impl#syncAll", Name: "syncAll", Type: "app.Repository1Impl"}))
	require.NoError(t, store.AddMethod(ctx, graph.MethodNode{ID: "app.Repository2Impl#save", Name: "save", Type: "app.Repository2Impl"}))
	for _, e := range []graph.Edge{
		{SourceID: "app.IRepository", TargetID: "app.IRepository#save", Kind: graph.EdgeKindDeclares},
		{SourceID: "app.Repository1Impl", TargetID: "app.Repository1Impl#syncAll", Kind: graph.EdgeKindDeclares},
		{SourceID: "app.Repository2Impl", TargetID: "app.Repository2Impl#save", Kind: graph.EdgeKindDeclares},
		{SourceID: "app.Repository1Impl", TargetID: "app.IRepository", Kind: graph.EdgeKindImplements},
		{SourceID: "app.Repository2Impl", TargetID: "app.IRepository", Kind: graph.EdgeKindImplements},
		{SourceID: "app.Repository1Impl#syncAll", TargetID: "app.IRepository#save", Kind: graph.EdgeKindInvokes},
	} {
		require.NoError(t, store.AddEdge(ctx, e))
	}

	uses, err := Uses(ctx, store)
	require.NoError(t, err)

	require.Len(t, uses, 2)
	assert.Equal(t, "app.Repository1Impl", uses[0].SourceID)
	assert.Equal(t, "app.IRepository", uses[0].TargetID)
	assert.Equal(t, "app.Repository1Impl", uses[1].SourceID)
	assert.Equal(t, "app.Repository2Impl", uses[1].TargetID)
	for _, e := range uses {
		assert.NotEqual(t, e.SourceID, e.TargetID)
	}

	// Repository-to-repository usage satisfies the repository layer rule.
	results, err := check.Evaluate(ctx, check.Input{Store: store, Uses: uses}, check.Default())
	require.NoError(t, err)
	for _, res := range results {
		if res.Name == check.NameRepositoryLayer {
			assert.Empty(t, res.Violations)
		}
	}
}

func TestUses_DuplicateInvokesCollapse(t *testing.T) {
	store := layeredStore(t)
	ctx := context.Background()

	// A second identical invocation edge must not change the result.
	require.NoError(t, store.AddEdge(ctx, graph.Edge{
		SourceID: "app.Controller1#handle",
		TargetID: "app.IService1#doWork",
		Kind:     graph.EdgeKindInvokes,
	}))

	uses, err := Uses(ctx, store)
	require.NoError(t, err)
	assert.Len(t, uses, 2)
}

func TestUses_NonComponentTargetsExcluded(t *testing.T) {
	ctx := context.Background()
	store := graph.NewMemStore()

	// Helper carries no role: calls into it derive nothing.
	require.NoError(t, store.AddType(ctx, graph.TypeNode{Name: "app.Controller1", Package: "app", Roles: []graph.Role{graph.RoleController}}))
	require.NoError(t, store.AddType(ctx, graph.TypeNode{Name: "app.Helper", Package: "app"}))
	require.NoError(t, store.AddMethod(ctx, graph.MethodNode{ID: "app.Controller1#handle", Name: "handle", Type: "app.Controller1"}))
	require.NoError(t, store.AddMethod(ctx, graph.MethodNode{ID: "app.Helper#format", Name: "format", Type: "app.Helper"}))
	for _, e := range []graph.Edge{
		{SourceID: "app.Controller1", TargetID: "app.Controller1#handle", Kind: graph.EdgeKindDeclares},
		{SourceID: "app.Helper", TargetID: "app.Helper#format", Kind: graph.EdgeKindDeclares},
		{SourceID: "app.Controller1#handle", TargetID: "app.Helper#format", Kind: graph.EdgeKindInvokes},
	} {
		require.NoError(t, store.AddEdge(ctx, e))
	}

	uses, err := Uses(ctx, store)
	require.NoError(t, err)
	assert.Empty(t, uses)
}

func TestUses_InheritanceCycleTerminates(t *testing.T) {
	ctx := context.Background()
	store := graph.NewMemStore()

	// A and B extend each other; deriving across the cycle terminates and
	// yields each reachable component once.
	require.NoError(t, store.AddType(ctx, graph.TypeNode{Name: "app.Controller1", Package: "app", Roles: []graph.Role{graph.RoleController}}))
	require.NoError(t, store.AddType(ctx, graph.TypeNode{Name: "app.ServiceA", Package: "app", Roles: []graph.Role{graph.RoleService}}))
	require.NoError(t, store.AddType(ctx, graph.TypeNode{Name: "app.ServiceB", Package: "app", Roles: []graph.Role{graph.RoleService}}))
	require.NoError(t, store.AddMethod(ctx, graph.MethodNode{ID: "app.Controller1#handle", Name: "handle", Type: "app.Controller1"}))
	require.NoError(t, store.AddMethod(ctx, graph.MethodNode{ID: "app.ServiceA#doWork", Name: "doWork", Type: "app.ServiceA"}))
	for _, e := range []graph.Edge{
		{SourceID: "app.Controller1", TargetID: "app.Controller1#handle", Kind: graph.EdgeKindDeclares},
		{SourceID: "app.ServiceA", TargetID: "app.ServiceA#doWork", Kind: graph.EdgeKindDeclares},
		{SourceID: "app.Controller1#handle", TargetID: "app.ServiceA#doWork", Kind: graph.EdgeKindInvokes},
		{SourceID: "app.ServiceA", TargetID: "app.ServiceB", Kind: graph.EdgeKindExtends},
		{SourceID: "app.ServiceB", TargetID: "app.ServiceA", Kind: graph.EdgeKindExtends},
	} {
		require.NoError(t, store.AddEdge(ctx, e))
	}

	uses, err := Uses(ctx, store)
	require.NoError(t, err)
	require.Len(t, uses, 2)
	assert.Equal(t, "app.ServiceA", uses[0].TargetID)
	assert.Equal(t, "app.ServiceB", uses[1].TargetID)
}

func TestUses_EmptyGraph(t *testing.T) {
	uses, err := Uses(context.Background(), graph.NewMemStore())
	require.NoError(t, err)
	assert.Empty(t, uses)
}
