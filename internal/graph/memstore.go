package graph

import (
	"context"
	"sort"
	"sync"
)

// Compile-time assertion: *MemStore satisfies Store.
var _ Store = (*MemStore)(nil)

// MemStore implements Store using Go maps. Thread-safe via sync.RWMutex,
// so parallel read-only traversals over one populated store are safe.
type MemStore struct {
	mu       sync.RWMutex
	packages map[string]PackageNode
	types    map[string]TypeNode
	methods  map[string]MethodNode
	edges    []Edge
	outgoing map[string][]Edge
	incoming map[string][]Edge
}

// NewMemStore returns an initialized MemStore ready for use.
func NewMemStore() *MemStore {
	return &MemStore{
		packages: make(map[string]PackageNode),
		types:    make(map[string]TypeNode),
		methods:  make(map[string]MethodNode),
		outgoing: make(map[string][]Edge),
		incoming: make(map[string][]Edge),
	}
}

// InitSchema is a no-op for the in-memory store.
func (m *MemStore) InitSchema(_ context.Context) error {
	return nil
}

// AddPackage stores a package node keyed by its name.
func (m *MemStore) AddPackage(_ context.Context, node PackageNode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.packages[node.Name] = node
	return nil
}

// AddType stores a type node keyed by its fully-qualified name.
func (m *MemStore) AddType(_ context.Context, node TypeNode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.types[node.Name] = node
	return nil
}

// AddMethod stores a method node keyed by its ID.
func (m *MemStore) AddMethod(_ context.Context, node MethodNode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.methods[node.ID] = node
	return nil
}

// AddEdge appends an edge. Duplicate INVOKES edges are kept as-is: the
// multiplicity is an ingestion fact and derivation collapses it anyway.
func (m *MemStore) AddEdge(_ context.Context, edge Edge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edges = append(m.edges, edge)
	m.outgoing[edge.SourceID] = append(m.outgoing[edge.SourceID], edge)
	m.incoming[edge.TargetID] = append(m.incoming[edge.TargetID], edge)
	return nil
}

// Packages returns all package nodes sorted by name.
func (m *MemStore) Packages(_ context.Context) ([]PackageNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]PackageNode, 0, len(m.packages))
	for _, p := range m.packages {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Types returns all type nodes sorted by name.
func (m *MemStore) Types(_ context.Context) ([]TypeNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]TypeNode, 0, len(m.types))
	for _, t := range m.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Methods returns all method nodes sorted by ID.
func (m *MemStore) Methods(_ context.Context) ([]MethodNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]MethodNode, 0, len(m.methods))
	for _, md := range m.methods {
		out = append(out, md)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetType returns the type node for the given name, or nil if not found.
func (m *MemStore) GetType(_ context.Context, name string) (*TypeNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.types[name]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

// GetMethod returns the method node for the given ID, or nil if not found.
func (m *MemStore) GetMethod(_ context.Context, id string) (*MethodNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	md, ok := m.methods[id]
	if !ok {
		return nil, nil
	}
	return &md, nil
}

// HasRole reports whether the named type carries the given role tag.
// Unknown types have no roles.
func (m *MemStore) HasRole(_ context.Context, typeName string, role Role) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.types[typeName]
	if !ok {
		return false, nil
	}
	return t.HasRole(role), nil
}

// Outgoing returns edges leaving nodeID, filtered by kind ("" matches all).
func (m *MemStore) Outgoing(_ context.Context, nodeID string, kind EdgeKind) ([]Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return filterEdges(m.outgoing[nodeID], kind), nil
}

// Incoming returns edges arriving at nodeID, filtered by kind ("" matches all).
func (m *MemStore) Incoming(_ context.Context, nodeID string, kind EdgeKind) ([]Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return filterEdges(m.incoming[nodeID], kind), nil
}

// Validate checks every edge endpoint against the node maps and returns a
// *DanglingReferenceError for the first missing endpoint.
func (m *MemStore) Validate(_ context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.edges {
		if !m.nodeExists(e.SourceID) {
			return &DanglingReferenceError{Edge: e, NodeID: e.SourceID}
		}
		if !m.nodeExists(e.TargetID) {
			return &DanglingReferenceError{Edge: e, NodeID: e.TargetID}
		}
	}
	return nil
}

// nodeExists reports whether id names a package, type, or method node.
// Callers must hold at least a read lock.
func (m *MemStore) nodeExists(id string) bool {
	if _, ok := m.packages[id]; ok {
		return true
	}
	if _, ok := m.types[id]; ok {
		return true
	}
	_, ok := m.methods[id]
	return ok
}

// Stats returns counts of all node and edge kinds in the graph.
func (m *MemStore) Stats(_ context.Context) (*GraphStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	components := 0
	for _, t := range m.types {
		if t.IsComponent() {
			components++
		}
	}
	return &GraphStats{
		PackageCount:   len(m.packages),
		TypeCount:      len(m.types),
		MethodCount:    len(m.methods),
		ComponentCount: components,
		EdgeCount:      len(m.edges),
	}, nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}

// filterEdges returns a copy of edges restricted to the given kind.
func filterEdges(edges []Edge, kind EdgeKind) []Edge {
	if kind == "" {
		out := make([]Edge, len(edges))
		copy(out, edges)
		return out
	}
	var out []Edge
	for _, e := range edges {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
