package graph

import (
	"context"
	"io"
)

// Store is the interface for the knowledge-base graph backend.
// Implementations: KuzuStore and SQLiteStore (persisted, cgo builds),
// MemStore (default and testing).
type Store interface {
	io.Closer

	// Schema setup, called once before any data is inserted.
	InitSchema(ctx context.Context) error

	// Write operations. AddTerm is an upsert; AddEdge creates missing
	// endpoints as bare terms.
	AddTerm(ctx context.Context, term Term) error
	AddEdge(ctx context.Context, edge Edge) error

	// DeleteKB removes every edge whose KB field is kb. Terms stay, since
	// other knowledge bases may share them.
	DeleteKB(ctx context.Context, kb string) error

	// Read operations.
	GetTerm(ctx context.Context, id string) (*Term, error)
	GetAllEdges(ctx context.Context) ([]Edge, error) // insertion order

	// Graph traversal.
	GetDependencies(ctx context.Context, nodeID string, direction Direction, maxDepth int) ([]DependencyChain, error)

	// Stats.
	Stats(ctx context.Context) (*GraphStats, error)
}

// Load writes a parse result into store in order: terms first, then edges.
func Load(ctx context.Context, store Store, res *ParseResult) error {
	if err := store.InitSchema(ctx); err != nil {
		return err
	}
	for _, t := range res.Terms {
		if err := store.AddTerm(ctx, t); err != nil {
			return err
		}
	}
	for _, e := range res.Edges {
		if err := store.AddEdge(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// Replace loads res into store as the edges of kb, first removing whatever
// an earlier load of kb left there. Loading the same result twice leaves the
// store as one load does.
func Replace(ctx context.Context, store Store, kb string, res *ParseResult) error {
	if err := store.InitSchema(ctx); err != nil {
		return err
	}
	if err := store.DeleteKB(ctx, kb); err != nil {
		return err
	}
	for _, t := range res.Terms {
		if err := store.AddTerm(ctx, t); err != nil {
			return err
		}
	}
	for _, e := range res.Edges {
		e.KB = kb
		if err := store.AddEdge(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// walkDependencies runs a breadth-first traversal from nodeID using
// neighbors to expand each node. Stores that look neighbors up with a query
// per node share it.
func walkDependencies(nodeID string, maxDepth int, neighbors func(id string) ([]string, error)) ([]DependencyChain, error) {
	if maxDepth <= 0 {
		return nil, nil
	}

	// BFS state.
	type bfsEntry struct {
		path  []string
		depth int
	}
	visited := map[string]bool{nodeID: true}
	queue := []bfsEntry{{path: []string{nodeID}, depth: 0}}
	var chains []DependencyChain

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= maxDepth {
			continue
		}
		tip := cur.path[len(cur.path)-1]
		nbs, err := neighbors(tip)
		if err != nil {
			return nil, err
		}
		for _, nb := range nbs {
			if visited[nb] {
				continue
			}
			visited[nb] = true
			newPath := make([]string, len(cur.path)+1)
			copy(newPath, cur.path)
			newPath[len(cur.path)] = nb
			chains = append(chains, DependencyChain{
				Nodes: newPath,
				Depth: cur.depth + 1,
			})
			queue = append(queue, bfsEntry{path: newPath, depth: cur.depth + 1})
		}
	}
	return chains, nil
}
