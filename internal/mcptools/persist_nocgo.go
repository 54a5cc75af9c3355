//go:build !cgo

package mcptools

import (
	"context"
	"fmt"

	"github.com/dusk-indust/layerlens/internal/graph"
)

// persistGraph requires the KuzuDB driver, which needs cgo.
func persistGraph(_ context.Context, _ graph.Store, _ string) error {
	return fmt.Errorf("graph persistence requires a cgo build")
}
