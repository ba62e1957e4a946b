//go:build cgo

package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dusk-indust/kbgraph/internal/graph"
)

// openStore opens the persisted graph at path, or returns nil when no path
// is configured. Paths ending in .sqlite, .sqlite3 or .db open a SQLite
// file; anything else is a KuzuDB database directory.
func openStore(path string) (graph.Store, error) {
	if path == "" {
		return nil, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sqlite", ".sqlite3", ".db":
		store, err := graph.NewSQLiteStore(path)
		if err != nil {
			return nil, fmt.Errorf("open graph: %w", err)
		}
		return store, nil
	}
	store, err := graph.NewKuzuFileStore(path)
	if err != nil {
		return nil, fmt.Errorf("open graph: %w", err)
	}
	return store, nil
}
