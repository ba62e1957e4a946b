package graph

import (
	"context"
	"sync"
)

// Compile-time assertion: *MemStore satisfies Store.
var _ Store = (*MemStore)(nil)

// MemStore implements Store using Go maps. Thread-safe via sync.RWMutex.
type MemStore struct {
	mu    sync.RWMutex
	terms map[string]Term
	edges []Edge
	out   map[string][]int // term ID -> indexes into edges where it is Source
	in    map[string][]int // term ID -> indexes into edges where it is Target
}

// NewMemStore returns an initialized MemStore ready for use.
func NewMemStore() *MemStore {
	return &MemStore{
		terms: make(map[string]Term),
		out:   make(map[string][]int),
		in:    make(map[string][]int),
	}
}

// InitSchema is a no-op for the in-memory store.
func (m *MemStore) InitSchema(_ context.Context) error {
	return nil
}

// AddTerm stores or replaces a term keyed by its ID.
func (m *MemStore) AddTerm(_ context.Context, term Term) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.terms[term.ID] = term
	return nil
}

// AddEdge appends an edge, creating bare terms for unknown endpoints.
func (m *MemStore) AddEdge(_ context.Context, edge Edge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range []string{edge.Source, edge.Target} {
		if _, ok := m.terms[id]; !ok {
			m.terms[id] = Term{ID: id}
		}
	}
	idx := len(m.edges)
	m.edges = append(m.edges, edge)
	m.out[edge.Source] = append(m.out[edge.Source], idx)
	m.in[edge.Target] = append(m.in[edge.Target], idx)
	return nil
}

// DeleteKB drops the edges loaded for kb and reindexes the rest.
func (m *MemStore) DeleteKB(_ context.Context, kb string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.edges[:0:0]
	for _, e := range m.edges {
		if e.KB != kb {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(m.edges) {
		return nil
	}
	m.edges = kept
	m.out = make(map[string][]int)
	m.in = make(map[string][]int)
	for i, e := range m.edges {
		m.out[e.Source] = append(m.out[e.Source], i)
		m.in[e.Target] = append(m.in[e.Target], i)
	}
	return nil
}

// GetTerm returns the term with the given ID, or nil if not found.
func (m *MemStore) GetTerm(_ context.Context, id string) (*Term, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.terms[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

// GetAllEdges returns a copy of all edges in insertion order.
func (m *MemStore) GetAllEdges(_ context.Context) ([]Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Edge, len(m.edges))
	copy(out, m.edges)
	return out, nil
}

// GetDependencies performs a BFS from nodeID in the given direction, up to
// maxDepth hops. It returns one DependencyChain per reachable node.
func (m *MemStore) GetDependencies(_ context.Context, nodeID string, direction Direction, maxDepth int) ([]DependencyChain, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if maxDepth <= 0 {
		return nil, nil
	}

	// BFS state: each entry tracks the path from nodeID to the current node.
	type bfsEntry struct {
		id   string
		path []string
	}

	visited := map[string]bool{nodeID: true}
	queue := []bfsEntry{{id: nodeID, path: []string{nodeID}}}
	var chains []DependencyChain

	for depth := 0; depth < maxDepth && len(queue) > 0; depth++ {
		var nextQueue []bfsEntry
		for _, entry := range queue {
			for _, nb := range m.neighbors(entry.id, direction) {
				if visited[nb] {
					continue
				}
				visited[nb] = true
				newPath := make([]string, len(entry.path), len(entry.path)+1)
				copy(newPath, entry.path)
				newPath = append(newPath, nb)
				chains = append(chains, DependencyChain{
					Nodes: newPath,
					Depth: len(newPath) - 1,
				})
				nextQueue = append(nextQueue, bfsEntry{id: nb, path: newPath})
			}
		}
		queue = nextQueue
	}

	return chains, nil
}

// neighbors returns IDs reachable from id in one hop along the given direction.
func (m *MemStore) neighbors(id string, direction Direction) []string {
	var result []string
	switch direction {
	case DirectionAncestors:
		// child -> parent: follow edges where id is the source
		for _, i := range m.out[id] {
			result = append(result, m.edges[i].Target)
		}
	case DirectionDescendants:
		for _, i := range m.in[id] {
			result = append(result, m.edges[i].Source)
		}
	}
	return result
}

// Stats returns term and edge counts.
func (m *MemStore) Stats(_ context.Context) (*GraphStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return &GraphStats{
		TermCount: len(m.terms),
		EdgeCount: len(m.edges),
	}, nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}
