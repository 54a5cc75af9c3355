//go:build !cgo

package main

import "fmt"

// runDiagram reads the persisted KuzuDB graph, which needs cgo.
func runDiagram(_ cliFlags) error {
	return fmt.Errorf("the diagram command requires a cgo build; use 'export -format mermaid' instead")
}
