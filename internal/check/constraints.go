// Package check evaluates layering constraints over an architecture graph
// and its derived USES edges.
package check

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/layerlens/internal/graph"
)

// Input is the immutable state a constraint evaluates against: the base
// graph plus the derived USES edge set. Constraints never mutate either.
type Input struct {
	Store graph.Store
	Uses  []graph.Edge
}

// Violation is one offending ordered pair reported by a constraint.
type Violation struct {
	Offender string `json:"offender"`
	Target   string `json:"target"`
}

// Constraint is a named, independently evaluable layering rule.
type Constraint struct {
	Name        string
	Description string
	Eval        func(ctx context.Context, in Input) ([]Violation, error)
}

// Result pairs a constraint with its distinct violations, ordered by
// offender then target. An empty Violations slice means the constraint
// passes.
type Result struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Violations  []Violation `json:"violations"`
}

// Constraint names.
const (
	NameNoImplementationCoupling = "no-implementation-coupling"
	NameControllerLayer          = "controller-layer"
	NameServiceLayer             = "service-layer"
	NameRepositoryLayer          = "repository-layer"
)

// Default returns the fixed constraint set: implementation-coupling plus
// the three layer rules. The list replaces any notion of a global rule
// database; callers pass it to Evaluate explicitly.
func Default() []Constraint {
	return []Constraint{
		{
			Name:        NameNoImplementationCoupling,
			Description: "components must not invoke methods declared directly on a concrete peer implementation; cross-component calls go through an interface",
			Eval:        evalNoImplementationCoupling,
		},
		{
			Name:        NameControllerLayer,
			Description: "controller components may only use service components",
			Eval:        layerRule(graph.RoleController, graph.RoleService),
		},
		{
			Name:        NameServiceLayer,
			Description: "service components may only use service or repository components",
			Eval:        layerRule(graph.RoleService, graph.RoleService, graph.RoleRepository),
		},
		{
			Name:        NameRepositoryLayer,
			Description: "repository components may only use repository components",
			Eval:        layerRule(graph.RoleRepository, graph.RoleRepository),
		},
	}
}

// Evaluate runs every constraint against in and returns one Result per
// constraint, in the given order. Constraints are read-only queries over
// immutable state, so they run in parallel; each worker fills its own
// result slot and the coordinator assembles them after the join.
func Evaluate(ctx context.Context, in Input, constraints []Constraint) ([]Result, error) {
	results := make([]Result, len(constraints))

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range constraints {
		g.Go(func() error {
			violations, err := c.Eval(gctx, in)
			if err != nil {
				return err
			}
			results[i] = Result{
				Name:        c.Name,
				Description: c.Description,
				Violations:  dedupSorted(violations),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// evalNoImplementationCoupling flags component pairs (T1, T2) where a
// method of T1 invokes a method declared directly on T2, T2 is a distinct
// component, and T2 is not an interface. Calls mediated through an
// interface resolve to a declaring type that IS an interface, so they
// never trip this rule.
func evalNoImplementationCoupling(ctx context.Context, in Input) ([]Violation, error) {
	components, err := graph.Components(ctx, in.Store)
	if err != nil {
		return nil, err
	}

	var violations []Violation
	for _, offender := range components {
		declares, err := in.Store.Outgoing(ctx, offender.Name, graph.EdgeKindDeclares)
		if err != nil {
			return nil, err
		}
		for _, d := range declares {
			invokes, err := in.Store.Outgoing(ctx, d.TargetID, graph.EdgeKindInvokes)
			if err != nil {
				return nil, err
			}
			for _, inv := range invokes {
				if inv.TargetID == d.TargetID {
					continue // self-invocation
				}
				declaring, err := graph.DeclaringType(ctx, in.Store, inv.TargetID)
				if err != nil {
					return nil, err
				}
				if declaring == "" || declaring == offender.Name {
					continue
				}
				target, err := in.Store.GetType(ctx, declaring)
				if err != nil {
					return nil, err
				}
				if target == nil || target.IsInterface || !target.IsComponent() {
					continue
				}
				violations = append(violations, Violation{
					Offender: offender.Name,
					Target:   target.Name,
				})
			}
		}
	}
	return violations, nil
}

// layerRule builds the Eval for a layer constraint: every USES edge whose
// source carries offenderRole must target a component carrying at least
// one of the allowed roles.
func layerRule(offenderRole graph.Role, allowed ...graph.Role) func(context.Context, Input) ([]Violation, error) {
	return func(ctx context.Context, in Input) ([]Violation, error) {
		var violations []Violation
		for _, e := range in.Uses {
			offends, err := in.Store.HasRole(ctx, e.SourceID, offenderRole)
			if err != nil {
				return nil, err
			}
			if !offends {
				continue
			}
			ok := false
			for _, role := range allowed {
				has, err := in.Store.HasRole(ctx, e.TargetID, role)
				if err != nil {
					return nil, err
				}
				if has {
					ok = true
					break
				}
			}
			if !ok {
				violations = append(violations, Violation{
					Offender: e.SourceID,
					Target:   e.TargetID,
				})
			}
		}
		return violations, nil
	}
}

// dedupSorted collapses duplicate pairs and orders by offender then target.
func dedupSorted(violations []Violation) []Violation {
	seen := make(map[Violation]bool, len(violations))
	out := make([]Violation, 0, len(violations))
	for _, v := range violations {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Offender != out[j].Offender {
			return out[i].Offender < out[j].Offender
		}
		return out[i].Target < out[j].Target
	})
	return out
}
