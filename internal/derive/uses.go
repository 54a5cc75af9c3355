// Package derive computes the USES relation between components from the
// base invocation and inheritance facts of an architecture graph.
package derive

import (
	"context"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/layerlens/internal/graph"
)

// AttrVia names the pass-through attribute on a derived USES edge holding
// the type that declared the invoked method (the mediating interface, or
// the concrete callee itself for direct calls).
const AttrVia = "via"

// pair is the dedup key for a derived edge: one ordered component pair,
// regardless of how many invocation paths connect them.
type pair struct {
	src, dst string
}

// Uses derives the complete USES edge set between Component-tagged types.
//
// For every component T1, every method m1 it declares, and every method m2
// that m1 invokes: the type I declaring m2 is resolved, then the
// implementation/extension hierarchy is walked backward from I so that a
// call into an interface lands a USES edge on every concrete component
// implementing it, not only the literal static target. Duplicate
// invocation edges, invocation self-loops, and self-pairs are ignored.
//
// The result is a pure function of the store: sorted by (source, target),
// set semantics, no self-loops, identical across re-runs.
func Uses(ctx context.Context, store graph.Store) ([]graph.Edge, error) {
	components, err := graph.Components(ctx, store)
	if err != nil {
		return nil, err
	}

	componentSet := make(map[string]bool, len(components))
	for _, c := range components {
		componentSet[c.Name] = true
	}

	// One worker per component root; each collects a partial edge set
	// that the coordinator merges after the join. No shared mutable
	// state inside the group.
	partials := make([]map[pair]graph.Edge, len(components))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, component := range components {
		g.Go(func() error {
			edges, err := deriveFromRoot(gctx, store, component.Name, componentSet)
			if err != nil {
				return err
			}
			partials[i] = edges
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[pair]graph.Edge)
	for _, partial := range partials {
		for k, e := range partial {
			if _, ok := merged[k]; !ok {
				merged[k] = e
			}
		}
	}

	out := make([]graph.Edge, 0, len(merged))
	for _, e := range merged {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SourceID != out[j].SourceID {
			return out[i].SourceID < out[j].SourceID
		}
		return out[i].TargetID < out[j].TargetID
	})
	return out, nil
}

// deriveFromRoot computes the USES edges originating at one component.
func deriveFromRoot(
	ctx context.Context,
	store graph.Store,
	root string,
	componentSet map[string]bool,
) (map[pair]graph.Edge, error) {
	edges := make(map[pair]graph.Edge)

	declares, err := store.Outgoing(ctx, root, graph.EdgeKindDeclares)
	if err != nil {
		return nil, err
	}

	// Memoize hierarchy walks per declaring type: the same interface is
	// typically invoked from many call sites of one root.
	implementorCache := make(map[string][]string)

	for _, d := range declares {
		caller := d.TargetID

		invokes, err := store.Outgoing(ctx, caller, graph.EdgeKindInvokes)
		if err != nil {
			return nil, err
		}

		seenCallees := make(map[string]bool, len(invokes))
		for _, inv := range invokes {
			callee := inv.TargetID
			if callee == caller || seenCallees[callee] {
				continue // self-invocation or duplicate call site
			}
			seenCallees[callee] = true

			declaring, err := graph.DeclaringType(ctx, store, callee)
			if err != nil {
				return nil, err
			}
			if declaring == "" {
				continue
			}

			implementors, ok := implementorCache[declaring]
			if !ok {
				implementors, err = graph.Implementors(ctx, store, declaring)
				if err != nil {
					return nil, err
				}
				implementorCache[declaring] = implementors
			}

			for _, target := range implementors {
				if target == root || !componentSet[target] {
					continue
				}
				key := pair{src: root, dst: target}
				if _, ok := edges[key]; ok {
					continue
				}
				edges[key] = graph.Edge{
					SourceID: root,
					TargetID: target,
					Kind:     graph.EdgeKindUses,
					Attrs:    map[string]string{AttrVia: declaring},
				}
			}
		}
	}
	return edges, nil
}
