//go:build cgo

package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/kbgraph/internal/graph"
)

func TestOpenStore_PicksBackendByExtension(t *testing.T) {
	dir := t.TempDir()

	none, err := openStore("")
	require.NoError(t, err)
	assert.Nil(t, none)

	sq, err := openStore(filepath.Join(dir, "kb.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sq.Close() })
	assert.IsType(t, &graph.SQLiteStore{}, sq)

	kz, err := openStore(filepath.Join(dir, "kb.kuzu"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = kz.Close() })
	assert.IsType(t, &graph.KuzuStore{}, kz)
}

func TestRun_PersistsToGraphDB(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "graphs", "kb.sqlite")

	_, _, err := runCLI(t, t.TempDir(), t.TempDir(), "-graph-db", dbPath, "hp", "obo")
	require.NoError(t, err)

	store, err := graph.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, stats.TermCount)
	assert.Equal(t, 6, stats.EdgeCount)
}
