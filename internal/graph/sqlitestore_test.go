//go:build cgo

package graph

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSQLiteTestStore opens a SQLiteStore in a temp directory with an
// initialized schema.
func newSQLiteTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "kb.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.InitSchema(context.Background()))
	return s
}

func TestSQLiteStore_Contract(t *testing.T) {
	storeContract(t, func(t *testing.T) Store {
		return newSQLiteTestStore(t)
	})
}

func TestSQLiteStore_ReopenKeepsGraph(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graphs", "go_bp.sqlite")
	ctx := context.Background()

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.InitSchema(ctx))
	require.NoError(t, s.AddTerm(ctx, Term{ID: "GO:1", Name: "root", Obsolete: true}))
	require.NoError(t, s.AddEdge(ctx, NewEdge("GO:2", "GO:1", RelationIsA)))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.InitSchema(ctx))
	require.NoError(t, s.AddEdge(ctx, NewEdge("GO:3", "GO:2", RelationIsA)))

	edges, err := s.GetAllEdges(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"GO:2>GO:1", "GO:3>GO:2"}, pairs(edges))

	root, err := s.GetTerm(ctx, "GO:1")
	require.NoError(t, err)
	require.NotNil(t, root)
	assert.Equal(t, "root", root.Name)
	assert.True(t, root.Obsolete)

	child, err := s.GetTerm(ctx, "GO:2")
	require.NoError(t, err)
	assert.Equal(t, []string{"GO:1"}, child.Parents)
}
