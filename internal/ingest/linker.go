package ingest

import (
	"context"
	"fmt"
	"sort"

	"github.com/dusk-indust/layerlens/internal/classify"
	"github.com/dusk-indust/layerlens/internal/graph"
)

// Linker turns per-file parse results into graph nodes and edges. It
// runs in two passes: the first registers every package, type, and
// method so the second can resolve raw name references without ever
// producing a dangling edge.
type Linker struct {
	classifier *classify.Classifier
}

// NewLinker creates a Linker. A nil classifier falls back to the
// default role rules.
func NewLinker(classifier *classify.Classifier) *Linker {
	if classifier == nil {
		classifier = classify.NewClassifier(nil)
	}
	return &Linker{classifier: classifier}
}

// typeEntry carries the resolution context for one declared type.
type typeEntry struct {
	fqn     string
	pkg     string
	lang    graph.Language
	decl    TypeDecl
	methods map[string]bool // declared method names
}

// Link populates the store from parse results: nodes and CONTAINS/
// DECLARES edges first, then IMPLEMENTS, EXTENDS, INVOKES, and
// DEPENDS_ON edges resolved against the declared type set.
func (l *Linker) Link(ctx context.Context, store graph.Store, results []*ParseResult) error {
	entries, err := l.registerNodes(ctx, store, results)
	if err != nil {
		return err
	}
	return l.resolveEdges(ctx, store, entries)
}

func (l *Linker) registerNodes(ctx context.Context, store graph.Store, results []*ParseResult) ([]*typeEntry, error) {
	var entries []*typeEntry
	seenPkgs := make(map[string]bool)

	for _, res := range results {
		if !seenPkgs[res.Package] {
			seenPkgs[res.Package] = true
			if err := store.AddPackage(ctx, graph.PackageNode{Name: res.Package}); err != nil {
				return nil, fmt.Errorf("add package %s: %w", res.Package, err)
			}
		}

		for _, decl := range res.Types {
			fqn := res.Package + "." + decl.Name
			node := graph.TypeNode{
				Name:        fqn,
				Package:     res.Package,
				IsInterface: decl.IsInterface,
				Roles:       l.classifier.Roles(decl.Name),
			}
			if err := store.AddType(ctx, node); err != nil {
				return nil, fmt.Errorf("add type %s: %w", fqn, err)
			}
			if err := store.AddEdge(ctx, graph.Edge{
				SourceID: res.Package,
				TargetID: fqn,
				Kind:     graph.EdgeKindContains,
			}); err != nil {
				return nil, err
			}

			entry := &typeEntry{
				fqn:     fqn,
				pkg:     res.Package,
				lang:    res.Language,
				decl:    decl,
				methods: make(map[string]bool, len(decl.Methods)),
			}
			for _, m := range decl.Methods {
				if entry.methods[m.Name] {
					continue
				}
				entry.methods[m.Name] = true
				methodID := graph.MethodID(fqn, m.Name)
				if err := store.AddMethod(ctx, graph.MethodNode{ID: methodID, Name: m.Name, Type: fqn}); err != nil {
					return nil, fmt.Errorf("add method %s: %w", methodID, err)
				}
				if err := store.AddEdge(ctx, graph.Edge{
					SourceID: fqn,
					TargetID: methodID,
					Kind:     graph.EdgeKindDeclares,
				}); err != nil {
					return nil, err
				}
			}
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (l *Linker) resolveEdges(ctx context.Context, store graph.Store, entries []*typeEntry) error {
	byShortName := make(map[string][]*typeEntry)
	byMethodName := make(map[string][]*typeEntry)
	for _, e := range entries {
		short := lastSegment(e.decl.Name)
		byShortName[short] = append(byShortName[short], e)
		for name := range e.methods {
			byMethodName[name] = append(byMethodName[name], e)
		}
	}
	for _, bucket := range byMethodName {
		sort.Slice(bucket, func(i, j int) bool { return bucket[i].fqn < bucket[j].fqn })
	}

	seen := make(map[[3]string]bool)
	addEdge := func(edge graph.Edge) error {
		key := [3]string{edge.SourceID, edge.TargetID, string(edge.Kind)}
		if seen[key] {
			return nil
		}
		seen[key] = true
		return store.AddEdge(ctx, edge)
	}

	for _, e := range entries {
		// Declared supertypes.
		for _, ref := range e.decl.Supertypes {
			target := resolveRef(byShortName, e, ref.Name)
			if target == nil || target.fqn == e.fqn {
				continue
			}
			if err := addEdge(graph.Edge{SourceID: e.fqn, TargetID: target.fqn, Kind: ref.Kind}); err != nil {
				return err
			}
		}

		// Field dependencies.
		for _, fieldRef := range e.decl.FieldTypes {
			target := resolveRef(byShortName, e, fieldRef)
			if target == nil || target.fqn == e.fqn {
				continue
			}
			if err := addEdge(graph.Edge{SourceID: e.fqn, TargetID: target.fqn, Kind: graph.EdgeKindDependsOn}); err != nil {
				return err
			}
		}

		// Call facts, matched by method name across the declared set.
		// When both an interface and a concrete type declare the name,
		// the call is taken to go through the interface: that is how a
		// layered codebase wires its collaborators, and a concrete-only
		// match still surfaces direct implementation calls.
		for _, m := range e.decl.Methods {
			callerID := graph.MethodID(e.fqn, m.Name)
			for _, callee := range m.Calls {
				for _, target := range calleeTargets(byMethodName[callee], e) {
					if err := addEdge(graph.Edge{
						SourceID: callerID,
						TargetID: graph.MethodID(target.fqn, callee),
						Kind:     graph.EdgeKindInvokes,
					}); err != nil {
						return err
					}
				}
			}
		}
	}

	return l.inferGoImplements(entries, addEdge)
}

// inferGoImplements adds IMPLEMENTS edges for Go's structural
// satisfaction: a concrete type implements an interface when it declares
// every method the interface names. Empty interfaces are skipped.
func (l *Linker) inferGoImplements(entries []*typeEntry, addEdge func(graph.Edge) error) error {
	var goIfaces, goConcrete []*typeEntry
	for _, e := range entries {
		if e.lang != graph.LangGo {
			continue
		}
		if e.decl.IsInterface {
			if len(e.methods) > 0 {
				goIfaces = append(goIfaces, e)
			}
		} else {
			goConcrete = append(goConcrete, e)
		}
	}

	for _, iface := range goIfaces {
		for _, impl := range goConcrete {
			if !declaresAll(impl, iface) {
				continue
			}
			if err := addEdge(graph.Edge{
				SourceID: impl.fqn,
				TargetID: iface.fqn,
				Kind:     graph.EdgeKindImplements,
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

func declaresAll(impl, iface *typeEntry) bool {
	for name := range iface.methods {
		if !impl.methods[name] {
			return false
		}
	}
	return true
}

// calleeTargets filters method-name matches for a call made from caller:
// the caller's own type is excluded, and interface declarations shadow
// concrete ones.
func calleeTargets(matches []*typeEntry, caller *typeEntry) []*typeEntry {
	var ifaces, concretes []*typeEntry
	for _, m := range matches {
		if m.fqn == caller.fqn {
			continue
		}
		if m.decl.IsInterface {
			ifaces = append(ifaces, m)
		} else {
			concretes = append(concretes, m)
		}
	}
	if len(ifaces) > 0 {
		return ifaces
	}
	return concretes
}

// resolveRef maps a raw short-name reference to a declared type,
// preferring a match in the referencing type's own package. Ambiguous
// cross-package references resolve to nothing rather than guessing.
func resolveRef(byShortName map[string][]*typeEntry, from *typeEntry, ref string) *typeEntry {
	candidates := byShortName[lastSegment(ref)]
	if len(candidates) == 0 {
		return nil
	}
	for _, c := range candidates {
		if c.pkg == from.pkg {
			return c
		}
	}
	if len(candidates) == 1 {
		return candidates[0]
	}
	return nil
}
