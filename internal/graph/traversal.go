package graph

import (
	"context"
	"sort"
)

// Implementors returns root plus every type reachable from root by
// following IMPLEMENTS/EXTENDS edges backward, i.e. all transitive
// implementors and extenders of root. The walk is BFS with a visited set,
// so inheritance cycles and diamonds terminate with each type visited at
// most once. The result is sorted by name.
func Implementors(ctx context.Context, store Store, root string) ([]string, error) {
	visited := map[string]bool{root: true}
	queue := []string{root}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		var frontier []string
		for _, kind := range HierarchyEdgeKinds {
			edges, err := store.Incoming(ctx, current, kind)
			if err != nil {
				return nil, err
			}
			for _, e := range edges {
				if !visited[e.SourceID] {
					visited[e.SourceID] = true
					frontier = append(frontier, e.SourceID)
				}
			}
		}
		// Sorted frontier keeps the visit order independent of edge
		// insertion order.
		sort.Strings(frontier)
		queue = append(queue, frontier...)
	}

	out := make([]string, 0, len(visited))
	for name := range visited {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

// Supertypes returns root plus every type reachable from root by following
// IMPLEMENTS/EXTENDS edges forward. Same cycle-safe BFS as Implementors.
func Supertypes(ctx context.Context, store Store, root string) ([]string, error) {
	visited := map[string]bool{root: true}
	queue := []string{root}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		var frontier []string
		for _, kind := range HierarchyEdgeKinds {
			edges, err := store.Outgoing(ctx, current, kind)
			if err != nil {
				return nil, err
			}
			for _, e := range edges {
				if !visited[e.TargetID] {
					visited[e.TargetID] = true
					frontier = append(frontier, e.TargetID)
				}
			}
		}
		sort.Strings(frontier)
		queue = append(queue, frontier...)
	}

	out := make([]string, 0, len(visited))
	for name := range visited {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

// DeclaringType resolves the type that declares the given method. The
// DECLARES edge is authoritative; the method node's own Type field is the
// fallback for graphs loaded without explicit DECLARES edges.
func DeclaringType(ctx context.Context, store Store, methodID string) (string, error) {
	edges, err := store.Incoming(ctx, methodID, EdgeKindDeclares)
	if err != nil {
		return "", err
	}
	if len(edges) > 0 {
		return edges[0].SourceID, nil
	}
	m, err := store.GetMethod(ctx, methodID)
	if err != nil {
		return "", err
	}
	if m == nil {
		return "", nil
	}
	return m.Type, nil
}
