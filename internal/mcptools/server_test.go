package mcptools

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/kbgraph/internal/builder"
	"github.com/dusk-indust/kbgraph/internal/graph"
	"github.com/dusk-indust/kbgraph/internal/kb"
)

// fixtureDataDir returns the absolute path to the knowledge-base fixtures.
// Tests run from internal/mcptools/, so the relative path is
// ../../testdata/kbs.
func fixtureDataDir(t *testing.T) string {
	t.Helper()
	abs, err := filepath.Abs("../../testdata/kbs")
	require.NoError(t, err)
	return abs
}

// setupServerClient wires an MCP server and client together using in-memory
// transports. It returns the connected client session and the store the
// server builds into.
func setupServerClient(t *testing.T) (*mcp.ClientSession, *graph.MemStore) {
	t.Helper()

	store := graph.NewMemStore()
	b := builder.New(builder.Options{
		Registry: kb.NewRegistry(fixtureDataDir(t), t.TempDir()),
		Store:    store,
		Logger:   slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
	})
	server := NewKBGraphMCPServer(NewKBGraphService(b, store))

	st, ct := mcp.NewInMemoryTransports()
	ctx := context.Background()

	_, err := server.Connect(ctx, st, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		session.Close()
	})

	return session, store
}

// callTool invokes name and decodes its structured output into out.
func callTool(t *testing.T, session *mcp.ClientSession, name string, args, out any) {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err)
	require.False(t, result.IsError, "%s should not return an error: %v", name, result.Content)
	require.NotNil(t, result.StructuredContent, "expected structured content from %s", name)

	raw, err := json.Marshal(result.StructuredContent)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

// callToolError invokes name and returns whether the call failed, either at
// the protocol level or through IsError.
func callToolError(t *testing.T, session *mcp.ClientSession, name string, args any) bool {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		return true
	}
	require.NotNil(t, result)
	return result.IsError
}

func buildHP(t *testing.T, session *mcp.ClientSession) BuildGraphOutput {
	t.Helper()
	var out BuildGraphOutput
	callTool(t, session, "build_graph", BuildGraphInput{KB: "hp", Format: "obo"}, &out)
	return out
}

// TestMCPListTools verifies that the MCP server exposes exactly 5 tools with
// the expected names.
func TestMCPListTools(t *testing.T) {
	session, _ := setupServerClient(t)

	result, err := session.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)
	require.Len(t, result.Tools, 5, "expected 5 registered tools")

	names := make([]string, len(result.Tools))
	for i, tool := range result.Tools {
		names[i] = tool.Name
	}
	sort.Strings(names)

	assert.Equal(t, []string{
		"build_graph",
		"get_dependencies",
		"get_term",
		"graph_stats",
		"render_lineage",
	}, names)
}

// TestMCPBuildGraph builds the hp fixture and checks the summary and the
// store totals.
func TestMCPBuildGraph(t *testing.T) {
	session, _ := setupServerClient(t)

	out := buildHP(t, session)

	assert.Equal(t, "hp", out.Result.KB)
	assert.Equal(t, graph.FormatOBO, out.Result.Format)
	assert.Equal(t, 6, out.Result.Edges, "fixture has 6 is_a lines outside obsolete stanzas")
	assert.Equal(t, 6, out.Result.Terms)
	assert.Equal(t, 1, out.Result.Components)
	assert.FileExists(t, out.Result.OutputPath)

	assert.Equal(t, 6, out.Stats.TermCount)
	assert.Equal(t, 6, out.Stats.EdgeCount)
}

func TestMCPBuildGraph_Errors(t *testing.T) {
	session, _ := setupServerClient(t)

	assert.True(t, callToolError(t, session, "build_graph", BuildGraphInput{KB: "hp", Format: "xml"}))
	assert.True(t, callToolError(t, session, "build_graph", BuildGraphInput{KB: "mondo", Format: "obo"}))
	assert.True(t, callToolError(t, session, "build_graph", BuildGraphInput{Format: "obo"}))
}

func TestMCPGetTerm(t *testing.T) {
	session, _ := setupServerClient(t)
	buildHP(t, session)

	var out GetTermOutput
	callTool(t, session, "get_term", GetTermInput{ID: "HP:0001626"}, &out)

	require.NotNil(t, out.Info.Term)
	assert.Equal(t, "Abnormality of the cardiovascular system", out.Info.Term.Name)
	assert.Equal(t, 1, out.Info.OutDegree)
	assert.Equal(t, 2, out.Info.InDegree)
	assert.Equal(t, 2, out.Info.Descendants)

	assert.True(t, callToolError(t, session, "get_term", GetTermInput{ID: "HP:0000489"}),
		"obsolete terms are not built")
}

func TestMCPGetDependencies(t *testing.T) {
	session, _ := setupServerClient(t)
	buildHP(t, session)

	var up GetDependenciesOutput
	callTool(t, session, "get_dependencies", GetDependenciesInput{NodeID: "HP:0001627"}, &up)

	reached := make([]string, len(up.Chains))
	for i, c := range up.Chains {
		reached[i] = c.Nodes[len(c.Nodes)-1]
	}
	assert.Equal(t, []string{"HP:0001626", "HP:0030680", "HP:0000118", "HP:0000001"}, reached)

	var down GetDependenciesOutput
	callTool(t, session, "get_dependencies", GetDependenciesInput{
		NodeID:    "HP:0000001",
		Direction: "descendants",
		MaxDepth:  1,
	}, &down)
	assert.Len(t, down.Chains, 2)

	assert.True(t, callToolError(t, session, "get_dependencies", GetDependenciesInput{NodeID: "HP:0000001", Direction: "sideways"}))
}

func TestMCPGraphStats(t *testing.T) {
	session, _ := setupServerClient(t)
	buildHP(t, session)

	var out GraphStatsOutput
	callTool(t, session, "graph_stats", GraphStatsInput{}, &out)

	assert.Equal(t, 6, out.Stats.TermCount)
	assert.Equal(t, 6, out.Stats.EdgeCount)
	assert.Equal(t, 1, out.Stats.ComponentCount)
}

func TestMCPRenderLineage(t *testing.T) {
	session, _ := setupServerClient(t)
	buildHP(t, session)

	var out RenderLineageOutput
	callTool(t, session, "render_lineage", RenderLineageInput{ID: "HP:0001627", MaxDepth: 1}, &out)

	assert.True(t, strings.HasPrefix(out.Mermaid, "graph BT\n"))
	assert.Contains(t, out.Mermaid, "HP:0001627 Abnormal heart morphology")
	assert.Contains(t, out.Mermaid, "N0 --> N1")
	assert.Contains(t, out.Mermaid, "N0 --> N2")
}

// TestMCPCallUnknownTool verifies that calling a non-existent tool returns an
// error.
func TestMCPCallUnknownTool(t *testing.T) {
	session, _ := setupServerClient(t)
	assert.True(t, callToolError(t, session, "nonexistent_tool", map[string]any{}))
}
