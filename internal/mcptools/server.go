package mcptools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewKBGraphMCPServer creates an MCP server with the knowledge-base graph
// tools registered.
func NewKBGraphMCPServer(svc *KBGraphService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "kbgraph",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "build_graph",
		Description: "Convert a knowledge-base vocabulary file (tsv, obo or txt) into a node2vec edge list and load it into the graph store.",
	}, svc.BuildGraph)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_term",
		Description: "Look up a term by identifier. Returns its name, namespace, out-degree, in-degree and number of descendants.",
	}, svc.GetTerm)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_dependencies",
		Description: "Traverse the graph from a term towards its ancestors or descendants. Returns one chain per reachable term up to the given depth.",
	}, svc.GetDependencies)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "graph_stats",
		Description: "Return term, edge and connected-component counts for every knowledge base built in this session.",
	}, svc.GraphStats)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "render_lineage",
		Description: "Draw the ancestors or descendants of a term as a Mermaid diagram.",
	}, svc.RenderLineage)

	return server
}

// RunMCPServerStdio runs the MCP server on stdio transport, blocking until
// stdin is closed or the context is cancelled.
func RunMCPServerStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}
