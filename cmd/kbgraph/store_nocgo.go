//go:build !cgo

package main

import (
	"errors"

	"github.com/dusk-indust/kbgraph/internal/graph"
)

// openStore reports an error when a persisted graph is requested: the
// KuzuDB driver needs cgo.
func openStore(path string) (graph.Store, error) {
	if path == "" {
		return nil, nil
	}
	return nil, errors.New("-graph-db requires a cgo-enabled build")
}
