package graph

import (
	"context"
	"io"
)

// Store is the interface for the architecture graph backend.
// Implementations: KuzuStore (persistent, cgo builds), MemStore (default).
//
// A store is populated once per analysis run by the ingestion collaborator
// and then treated as immutable: derivation, constraint evaluation, and
// export only use the read side. Derived USES edges are never written back.
type Store interface {
	io.Closer

	// Schema setup — called once before any data is inserted.
	InitSchema(ctx context.Context) error

	// Write operations (ingestion only).
	AddPackage(ctx context.Context, node PackageNode) error
	AddType(ctx context.Context, node TypeNode) error
	AddMethod(ctx context.Context, node MethodNode) error
	AddEdge(ctx context.Context, edge Edge) error

	// Node enumeration. Results are sorted by identifier so that every
	// traversal over the same graph visits nodes in the same order.
	Packages(ctx context.Context) ([]PackageNode, error)
	Types(ctx context.Context) ([]TypeNode, error)
	Methods(ctx context.Context) ([]MethodNode, error)

	// Point lookups. A nil result with a nil error means "not found".
	GetType(ctx context.Context, name string) (*TypeNode, error)
	GetMethod(ctx context.Context, id string) (*MethodNode, error)
	HasRole(ctx context.Context, typeName string, role Role) (bool, error)

	// Edge iteration primitives. kind == "" matches every kind.
	Outgoing(ctx context.Context, nodeID string, kind EdgeKind) ([]Edge, error)
	Incoming(ctx context.Context, nodeID string, kind EdgeKind) ([]Edge, error)

	// Validate checks that every edge endpoint references an existing
	// node, returning a *DanglingReferenceError for the first miss.
	Validate(ctx context.Context) error

	// Stats.
	Stats(ctx context.Context) (*GraphStats, error)
}

// Components returns the Component-tagged types of a store, in the
// enumeration order of Types.
func Components(ctx context.Context, store Store) ([]TypeNode, error) {
	types, err := store.Types(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]TypeNode, 0, len(types))
	for _, t := range types {
		if t.IsComponent() {
			out = append(out, t)
		}
	}
	return out, nil
}
