package mcptools

import (
	"github.com/dusk-indust/kbgraph/internal/builder"
	"github.com/dusk-indust/kbgraph/internal/graph"
)

// --- MCP Tool Input Types ---
// These structs define the JSON schema for each MCP tool's input.
// The MCP Go SDK auto-generates JSON schemas from struct tags.

// BuildGraphInput is the input for the build_graph MCP tool.
type BuildGraphInput struct {
	KB     string `json:"kb" jsonschema:"knowledge base name, e.g. hp, medic, ctd_chem"`
	Format string `json:"format" jsonschema:"source format: tsv, obo or txt"`
}

// BuildGraphOutput is the result of the build_graph MCP tool.
type BuildGraphOutput struct {
	Result builder.Result   `json:"result"`
	Stats  graph.GraphStats `json:"stats"`
}

// GetTermInput is the input for the get_term MCP tool.
type GetTermInput struct {
	ID string `json:"id" jsonschema:"term identifier, e.g. HP:0000118"`
}

// GetTermOutput is the result of the get_term MCP tool.
type GetTermOutput struct {
	Info graph.TermInfo `json:"info"`
}

// GetDependenciesInput is the input for the get_dependencies MCP tool.
type GetDependenciesInput struct {
	NodeID    string `json:"nodeId" jsonschema:"term identifier to start from"`
	Direction string `json:"direction,omitempty" jsonschema:"ancestors (follow parent links) or descendants. Default: ancestors"`
	MaxDepth  int    `json:"maxDepth,omitempty" jsonschema:"maximum traversal depth (default: 5)"`
}

// GetDependenciesOutput is the result of the get_dependencies MCP tool.
type GetDependenciesOutput struct {
	Chains []graph.DependencyChain `json:"chains"`
}

// GraphStatsInput is the input for the graph_stats MCP tool.
type GraphStatsInput struct{}

// GraphStatsOutput is the result of the graph_stats MCP tool.
type GraphStatsOutput struct {
	Stats graph.GraphStats `json:"stats"`
}

// RenderLineageInput is the input for the render_lineage MCP tool.
type RenderLineageInput struct {
	ID        string `json:"id" jsonschema:"term identifier to draw"`
	Direction string `json:"direction,omitempty" jsonschema:"ancestors or descendants. Default: ancestors"`
	MaxDepth  int    `json:"maxDepth,omitempty" jsonschema:"maximum depth (default: 3)"`
}

// RenderLineageOutput is the result of the render_lineage MCP tool.
type RenderLineageOutput struct {
	Mermaid string `json:"mermaid"`
}
