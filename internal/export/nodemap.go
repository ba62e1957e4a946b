package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/dusk-indust/kbgraph/internal/graph"
)

// Node map file names, read back by embedding consumers to translate
// integer node IDs into knowledge-base identifiers.
const (
	IntToNodeFile = "int_to_node_id.json"
	NodeToIntFile = "node_id_to_int.json"
)

// NodeIndex assigns consecutive integers to term identifiers. node2vec
// implementations read integer node IDs only.
type NodeIndex struct {
	ids []string
	pos map[string]int
}

// NewNodeIndex numbers terms in order, ignoring repeated IDs.
func NewNodeIndex(terms []graph.Term) *NodeIndex {
	idx := &NodeIndex{pos: make(map[string]int, len(terms))}
	for _, t := range terms {
		idx.Add(t.ID)
	}
	return idx
}

// Add numbers id if it is new and returns its integer.
func (x *NodeIndex) Add(id string) int {
	if i, ok := x.pos[id]; ok {
		return i
	}
	i := len(x.ids)
	x.ids = append(x.ids, id)
	x.pos[id] = i
	return i
}

// Len returns the number of indexed nodes.
func (x *NodeIndex) Len() int { return len(x.ids) }

// Lookup returns the integer assigned to id.
func (x *NodeIndex) Lookup(id string) (int, bool) {
	i, ok := x.pos[id]
	return i, ok
}

// IndexedEdge is an edge between integer node IDs.
type IndexedEdge struct {
	Source, Target int
}

// IndexEdges translates edges whose endpoints are both indexed. Edges that
// reference an unindexed node are dropped and counted.
func (x *NodeIndex) IndexEdges(edges []graph.Edge) (out []IndexedEdge, dropped int) {
	out = make([]IndexedEdge, 0, len(edges))
	for _, e := range edges {
		s, ok1 := x.pos[e.Source]
		t, ok2 := x.pos[e.Target]
		if !ok1 || !ok2 {
			dropped++
			continue
		}
		out = append(out, IndexedEdge{Source: s, Target: t})
	}
	return out, dropped
}

// WriteNodeMaps writes both direction maps into dir.
func WriteNodeMaps(dir string, x *NodeIndex) error {
	intToNode := make(map[string]string, len(x.ids))
	nodeToInt := make(map[string]int, len(x.ids))
	for i, id := range x.ids {
		intToNode[strconv.Itoa(i)] = id
		nodeToInt[id] = i
	}
	if err := writeJSON(filepath.Join(dir, IntToNodeFile), intToNode); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, NodeToIntFile), nodeToInt)
}

// WriteIndexedEdgeList atomically writes `source target` integer pairs.
func WriteIndexedEdgeList(path string, edges []IndexedEdge) error {
	return writeAtomic(path, func(w io.Writer) error {
		bw := bufio.NewWriter(w)
		for _, e := range edges {
			fmt.Fprintf(bw, "%d %d\n", e.Source, e.Target)
		}
		return bw.Flush()
	})
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	return writeAtomic(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}
