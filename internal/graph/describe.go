package graph

import (
	"context"
	"math"
)

// Describe reports the out-degree, in-degree and descendant count of a
// term. It returns nil when the store has never seen id.
func Describe(ctx context.Context, store Store, id string) (*TermInfo, error) {
	term, err := store.GetTerm(ctx, id)
	if err != nil {
		return nil, err
	}
	if term == nil {
		return nil, nil
	}

	parents, err := store.GetDependencies(ctx, id, DirectionAncestors, 1)
	if err != nil {
		return nil, err
	}
	children, err := store.GetDependencies(ctx, id, DirectionDescendants, 1)
	if err != nil {
		return nil, err
	}
	descendants, err := store.GetDependencies(ctx, id, DirectionDescendants, math.MaxInt32)
	if err != nil {
		return nil, err
	}

	return &TermInfo{
		Term:        term,
		OutDegree:   len(parents),
		InDegree:    len(children),
		Descendants: len(descendants),
	}, nil
}
