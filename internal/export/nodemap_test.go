package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/kbgraph/internal/graph"
)

func TestNodeIndex_NumbersInOrder(t *testing.T) {
	idx := NewNodeIndex([]graph.Term{{ID: "HP:2"}, {ID: "HP:1"}, {ID: "HP:2"}})

	assert.Equal(t, 2, idx.Len())
	i, ok := idx.Lookup("HP:2")
	assert.True(t, ok)
	assert.Equal(t, 0, i)
	assert.Equal(t, 1, idx.Add("HP:1"))
	assert.Equal(t, 2, idx.Add("HP:3"))

	_, ok = idx.Lookup("missing")
	assert.False(t, ok)
}

func TestNodeIndex_IndexEdgesDropsUndeclared(t *testing.T) {
	idx := NewNodeIndex([]graph.Term{{ID: "a"}, {ID: "b"}})

	out, dropped := idx.IndexEdges([]graph.Edge{
		graph.NewEdge("a", "b", ""),
		graph.NewEdge("a", "z", ""),
		graph.NewEdge("b", "a", ""),
	})

	assert.Equal(t, []IndexedEdge{{Source: 0, Target: 1}, {Source: 1, Target: 0}}, out)
	assert.Equal(t, 1, dropped)
}

func TestWriteNodeMaps(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "hp")
	idx := NewNodeIndex([]graph.Term{{ID: "HP:0000001"}, {ID: "HP:0000118"}})

	require.NoError(t, WriteNodeMaps(dir, idx))

	var intToNode map[string]string
	readJSON(t, filepath.Join(dir, IntToNodeFile), &intToNode)
	assert.Equal(t, map[string]string{"0": "HP:0000001", "1": "HP:0000118"}, intToNode)

	var nodeToInt map[string]int
	readJSON(t, filepath.Join(dir, NodeToIntFile), &nodeToInt)
	assert.Equal(t, map[string]int{"HP:0000001": 0, "HP:0000118": 1}, nodeToInt)

	raw, err := os.ReadFile(filepath.Join(dir, IntToNodeFile))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n    \"0\": ")
}

func TestWriteIndexedEdgeList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hp.indexed.edgelist")

	require.NoError(t, WriteIndexedEdgeList(path, []IndexedEdge{{0, 1}, {2, 1}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "0 1\n2 1\n", string(data))
}

func readJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}
