package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/dusk-indust/kbgraph/internal/builder"
	"github.com/dusk-indust/kbgraph/internal/export"
	"github.com/dusk-indust/kbgraph/internal/graph"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// KBGraphService holds the builder and the store it loads into. The store
// must be the one passed to builder.Options.Store so that built graphs can
// be queried.
type KBGraphService struct {
	builder *builder.Builder
	store   graph.Store
}

// NewKBGraphService creates a KBGraphService.
func NewKBGraphService(b *builder.Builder, store graph.Store) *KBGraphService {
	return &KBGraphService{builder: b, store: store}
}

// BuildGraph builds one knowledge base, writes its edge list and returns
// the build summary with the store's totals.
func (s *KBGraphService) BuildGraph(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input BuildGraphInput,
) (*mcp.CallToolResult, BuildGraphOutput, error) {
	if input.KB == "" {
		return nil, BuildGraphOutput{}, fmt.Errorf("kb is required")
	}
	if input.Format == "" {
		return nil, BuildGraphOutput{}, fmt.Errorf("format is required")
	}

	res, err := s.builder.Build(ctx, input.KB, input.Format)
	if err != nil {
		return nil, BuildGraphOutput{}, err
	}

	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, BuildGraphOutput{}, fmt.Errorf("stats: %w", err)
	}

	return nil, BuildGraphOutput{Result: *res, Stats: *stats}, nil
}

// GetTerm returns a term with its degrees and descendant count.
func (s *KBGraphService) GetTerm(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetTermInput,
) (*mcp.CallToolResult, GetTermOutput, error) {
	if input.ID == "" {
		return nil, GetTermOutput{}, fmt.Errorf("id is required")
	}

	info, err := graph.Describe(ctx, s.store, input.ID)
	if err != nil {
		return nil, GetTermOutput{}, fmt.Errorf("describe: %w", err)
	}
	if info == nil {
		return nil, GetTermOutput{}, fmt.Errorf("term %s not found", input.ID)
	}

	return nil, GetTermOutput{Info: *info}, nil
}

// GetDependencies traverses the graph from a given term.
func (s *KBGraphService) GetDependencies(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetDependenciesInput,
) (*mcp.CallToolResult, GetDependenciesOutput, error) {
	if input.NodeID == "" {
		return nil, GetDependenciesOutput{}, fmt.Errorf("nodeId is required")
	}

	direction, err := parseDirection(input.Direction)
	if err != nil {
		return nil, GetDependenciesOutput{}, err
	}

	maxDepth := input.MaxDepth
	if maxDepth <= 0 {
		maxDepth = 5
	}

	chains, err := s.store.GetDependencies(ctx, input.NodeID, direction, maxDepth)
	if err != nil {
		return nil, GetDependenciesOutput{}, fmt.Errorf("get dependencies: %w", err)
	}

	return nil, GetDependenciesOutput{Chains: chains}, nil
}

// GraphStats returns term, edge and component counts for everything built
// so far.
func (s *KBGraphService) GraphStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ GraphStatsInput,
) (*mcp.CallToolResult, GraphStatsOutput, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, GraphStatsOutput{}, fmt.Errorf("stats: %w", err)
	}
	components, err := graph.ComputeComponents(ctx, s.store)
	if err != nil {
		return nil, GraphStatsOutput{}, fmt.Errorf("compute components: %w", err)
	}
	stats.ComponentCount = len(components)

	return nil, GraphStatsOutput{Stats: *stats}, nil
}

// RenderLineage draws a term's ancestors or descendants as Mermaid.
func (s *KBGraphService) RenderLineage(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RenderLineageInput,
) (*mcp.CallToolResult, RenderLineageOutput, error) {
	if input.ID == "" {
		return nil, RenderLineageOutput{}, fmt.Errorf("id is required")
	}

	direction, err := parseDirection(input.Direction)
	if err != nil {
		return nil, RenderLineageOutput{}, err
	}

	maxDepth := input.MaxDepth
	if maxDepth <= 0 {
		maxDepth = 3
	}

	diagram, err := export.GenerateMermaid(ctx, s.store, input.ID, direction, maxDepth)
	if err != nil {
		return nil, RenderLineageOutput{}, err
	}

	return nil, RenderLineageOutput{Mermaid: diagram}, nil
}

func parseDirection(s string) (graph.Direction, error) {
	switch strings.ToLower(s) {
	case "", string(graph.DirectionAncestors):
		return graph.DirectionAncestors, nil
	case string(graph.DirectionDescendants):
		return graph.DirectionDescendants, nil
	default:
		return "", fmt.Errorf("direction %q: want ancestors or descendants", s)
	}
}
