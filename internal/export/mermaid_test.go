package export

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/kbgraph/internal/graph"
)

func lineageStore(t *testing.T) graph.Store {
	t.Helper()
	ctx := context.Background()
	s := graph.NewMemStore()
	require.NoError(t, s.AddTerm(ctx, graph.Term{ID: "HP:3", Name: `Abnormal "heart"`}))
	require.NoError(t, s.AddEdge(ctx, graph.NewEdge("HP:3", "HP:2", graph.RelationIsA)))
	require.NoError(t, s.AddEdge(ctx, graph.NewEdge("HP:2", "HP:1", graph.RelationIsA)))
	return s
}

func TestGenerateMermaid_Ancestors(t *testing.T) {
	out, err := GenerateMermaid(context.Background(), lineageStore(t), "HP:3", graph.DirectionAncestors, 5)
	require.NoError(t, err)

	want := "graph BT\n" +
		"  N0[\"HP:3 Abnormal #quot;heart#quot;\"]\n" +
		"  N1[\"HP:2\"]\n" +
		"  N2[\"HP:1\"]\n" +
		"  N0 --> N1\n" +
		"  N1 --> N2\n"
	assert.Equal(t, want, out)
}

func TestGenerateMermaid_DescendantsPointUp(t *testing.T) {
	out, err := GenerateMermaid(context.Background(), lineageStore(t), "HP:1", graph.DirectionDescendants, 1)
	require.NoError(t, err)

	want := "graph BT\n" +
		"  N0[\"HP:1\"]\n" +
		"  N1[\"HP:2\"]\n" +
		"  N1 --> N0\n"
	assert.Equal(t, want, out)
}

func TestGenerateMermaid_IsolatedTerm(t *testing.T) {
	out, err := GenerateMermaid(context.Background(), graph.NewMemStore(), "X", graph.DirectionAncestors, 3)
	require.NoError(t, err)
	assert.Equal(t, "graph BT\n  N0[\"X\"]\n", out)
}
