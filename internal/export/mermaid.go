package export

import (
	"fmt"
	"strings"
)

// Mermaid renders a hierarchical graph view as a Mermaid "graph TD"
// diagram. Group nodes become subgraphs; edges become arrows labeled with
// their kind.
func Mermaid(g *Graph) string {
	// Build node → ID mapping for Mermaid (alphanumeric only).
	nodeIDs := make(map[string]string)
	nextID := 0
	getID := func(name string) string {
		if id, ok := nodeIDs[name]; ok {
			return id
		}
		id := fmt.Sprintf("N%d", nextID)
		nextID++
		nodeIDs[name] = id
		return id
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	// Emit group subgraphs first so members nest under them.
	for _, n := range g.Nodes {
		if !n.IsGroup {
			continue
		}
		sb.WriteString(fmt.Sprintf("  subgraph %s[\"%.40s\"]\n", getID(n.ID+"_group"), n.Label))
		for _, child := range n.Children {
			sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", getID(child), labelFor(g, child)))
		}
		sb.WriteString("  end\n")
	}

	// Emit ungrouped nodes.
	for _, n := range g.Nodes {
		if n.IsGroup {
			continue
		}
		if _, ok := nodeIDs[n.ID]; ok {
			continue // already emitted inside a subgraph
		}
		sb.WriteString(fmt.Sprintf("  %s[\"%s\"]\n", getID(n.ID), n.Label))
	}

	for _, e := range g.Edges {
		srcID := getID(e.SourceID)
		tgtID := getID(e.TargetID)
		sb.WriteString(fmt.Sprintf("  %s -->|%s| %s\n", srcID, e.Kind, tgtID))
	}

	return sb.String()
}

// labelFor looks up the display label of a node, falling back to its ID.
func labelFor(g *Graph, id string) string {
	for _, n := range g.Nodes {
		if n.ID == id && !n.IsGroup {
			return n.Label
		}
	}
	return id
}
