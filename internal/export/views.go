// Package export renders the derived dependency structure as hierarchical
// graph views for external consumption. The structures here define shape
// only (grouping + edge list); file encoding belongs to callers.
package export

import (
	"context"
	"sort"
	"strings"

	"github.com/dusk-indust/layerlens/internal/graph"
)

// Node is one exported graph node. Group nodes carry their children's IDs;
// grouping membership is fully reproduced even when a group has no
// inter-member edges.
type Node struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	IsGroup  bool     `json:"isGroup,omitempty"`
	Children []string `json:"children,omitempty"`
}

// Edge is one exported edge with its opaque attribute bag passed through.
type Edge struct {
	SourceID string            `json:"sourceId"`
	TargetID string            `json:"targetId"`
	Kind     string            `json:"kind"`
	Attrs    map[string]string `json:"attrs,omitempty"`
}

// Graph is a serializable nested/grouped graph view.
type Graph struct {
	Name  string `json:"name"`
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// LayerView renders the component layer dependencies: nodes are Component
// types, edges are the derived USES edges with their originating metadata
// kept as-is.
func LayerView(ctx context.Context, store graph.Store, uses []graph.Edge) (*Graph, error) {
	components, err := graph.Components(ctx, store)
	if err != nil {
		return nil, err
	}

	g := &Graph{Name: "layer-dependencies"}
	for _, c := range components {
		g.Nodes = append(g.Nodes, Node{
			ID:    c.Name,
			Label: shortName(c.Name),
		})
	}
	for _, e := range uses {
		g.Edges = append(g.Edges, Edge{
			SourceID: e.SourceID,
			TargetID: e.TargetID,
			Kind:     string(e.Kind),
			Attrs:    e.Attrs,
		})
	}
	sortEdges(g.Edges)
	return g, nil
}

// PackageView renders the two-level package hierarchy: each Package is a
// group node containing its Types as children, and edges are DEPENDS_ON
// facts restricted to type pairs that both appear in the graph. A type
// with no outgoing dependency still appears as a childless member of its
// package group.
func PackageView(ctx context.Context, store graph.Store) (*Graph, error) {
	packages, err := store.Packages(ctx)
	if err != nil {
		return nil, err
	}

	g := &Graph{Name: "package-dependencies"}
	var memberTypes []string

	for _, pkg := range packages {
		contains, err := store.Outgoing(ctx, pkg.Name, graph.EdgeKindContains)
		if err != nil {
			return nil, err
		}
		children := make([]string, 0, len(contains))
		for _, e := range contains {
			children = append(children, e.TargetID)
		}
		sort.Strings(children)

		g.Nodes = append(g.Nodes, Node{
			ID:       pkg.Name,
			Label:    pkg.Name,
			IsGroup:  true,
			Children: children,
		})
		for _, child := range children {
			g.Nodes = append(g.Nodes, Node{
				ID:    child,
				Label: shortName(child),
			})
		}
		memberTypes = append(memberTypes, children...)
	}

	seen := make(map[[2]string]bool)
	for _, typeName := range memberTypes {
		deps, err := store.Outgoing(ctx, typeName, graph.EdgeKindDependsOn)
		if err != nil {
			return nil, err
		}
		for _, e := range deps {
			target, err := store.GetType(ctx, e.TargetID)
			if err != nil {
				return nil, err
			}
			if target == nil {
				continue // dependency on a type outside the graph
			}
			key := [2]string{e.SourceID, e.TargetID}
			if seen[key] {
				continue
			}
			seen[key] = true
			g.Edges = append(g.Edges, Edge{
				SourceID: e.SourceID,
				TargetID: e.TargetID,
				Kind:     string(e.Kind),
				Attrs:    e.Attrs,
			})
		}
	}
	sortEdges(g.Edges)
	return g, nil
}

// shortName trims the package qualifier off a fully-qualified type name.
func shortName(qualified string) string {
	if idx := strings.LastIndex(qualified, "."); idx >= 0 {
		return qualified[idx+1:]
	}
	return qualified
}

// sortEdges orders edges by (source, target, kind) for stable output.
func sortEdges(edges []Edge) {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].SourceID != edges[j].SourceID {
			return edges[i].SourceID < edges[j].SourceID
		}
		if edges[i].TargetID != edges[j].TargetID {
			return edges[i].TargetID < edges[j].TargetID
		}
		return edges[i].Kind < edges[j].Kind
	})
}
