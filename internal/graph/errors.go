package graph

import "fmt"

// DanglingReferenceError reports an edge whose endpoint does not exist in
// the store. The run aborts on it: a derivation over a malformed graph
// cannot be trusted.
type DanglingReferenceError struct {
	Edge   Edge
	NodeID string // the missing endpoint
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("graph: %s edge %s -> %s references unknown node %q",
		e.Edge.Kind, e.Edge.SourceID, e.Edge.TargetID, e.NodeID)
}
