package graph

import (
	"context"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/multi"
	"gonum.org/v1/gonum/graph/topo"
)

// line adapts an Edge to gonum's WeightedLine. Parallel edges between the
// same pair of nodes are told apart by UID.
type line struct {
	F, T     graph.Node
	W        float64
	Relation string
	UID      int64
}

func (l line) From() graph.Node { return l.F }

func (l line) To() graph.Node { return l.T }

func (l line) ReversedLine() graph.Line { l.F, l.T = l.T, l.F; return l }

func (l line) ID() int64 { return l.UID }

func (l line) Weight() float64 { return l.W }

// ComputeComponents finds the weakly connected components of the edge set
// held by store.
//
// Algorithm:
//  1. Number nodes in first-seen order and load every edge into an
//     undirected multigraph.
//  2. Find connected components with gonum's topo package.
//  3. Count the edges that fall inside each component.
//
// Members are listed in first-seen order. Components are returned largest
// first; ties keep the order of their earliest node.
func ComputeComponents(ctx context.Context, store Store) ([]Component, error) {
	edges, err := store.GetAllEdges(ctx)
	if err != nil {
		return nil, err
	}

	g, ids, order := buildUndirected(edges)

	ccs := topo.ConnectedComponents(g)
	components := make([]Component, len(ccs))
	first := make([]int64, len(ccs))
	compOf := make(map[int64]int, len(order))
	for i, cc := range ccs {
		nodeIDs := make([]int64, len(cc))
		for j, n := range cc {
			nodeIDs[j] = n.ID()
		}
		sort.Slice(nodeIDs, func(a, b int) bool { return nodeIDs[a] < nodeIDs[b] })

		members := make([]string, len(nodeIDs))
		for j, id := range nodeIDs {
			members[j] = order[id]
			compOf[id] = i
		}
		components[i] = Component{Members: members}
		first[i] = nodeIDs[0]
	}

	for _, e := range edges {
		components[compOf[ids[e.Source]]].Edges++
	}

	idx := make([]int, len(components))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ca, cb := components[idx[a]], components[idx[b]]
		if len(ca.Members) != len(cb.Members) {
			return len(ca.Members) > len(cb.Members)
		}
		return first[idx[a]] < first[idx[b]]
	})
	out := make([]Component, len(components))
	for i, j := range idx {
		out[i] = components[j]
	}
	return out, nil
}

// buildUndirected loads edges into a weighted undirected multigraph. Node
// IDs are assigned in first-seen order; order maps them back to terms.
func buildUndirected(edges []Edge) (*multi.WeightedUndirectedGraph, map[string]int64, []string) {
	g := multi.NewWeightedUndirectedGraph()
	ids := make(map[string]int64)
	var order []string
	node := func(term string) graph.Node {
		id, ok := ids[term]
		if !ok {
			id = int64(len(order))
			ids[term] = id
			order = append(order, term)
			g.AddNode(multi.Node(id))
		}
		return multi.Node(id)
	}
	for i, e := range edges {
		g.SetWeightedLine(line{
			F:        node(e.Source),
			T:        node(e.Target),
			W:        e.Weight,
			Relation: e.Relation,
			UID:      int64(i),
		})
	}
	return g, ids, order
}
