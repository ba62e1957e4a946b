package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/dusk-indust/kbgraph/internal/graph"
)

// GenerateMermaid produces a Mermaid graph BT diagram of the lineage of one
// term: its ancestors or descendants up to maxDepth hops. Each hop found by
// the traversal becomes an arrow from child to parent.
func GenerateMermaid(ctx context.Context, store graph.Store, termID string, dir graph.Direction, maxDepth int) (string, error) {
	chains, err := store.GetDependencies(ctx, termID, dir, maxDepth)
	if err != nil {
		return "", fmt.Errorf("get dependencies: %w", err)
	}

	// Build node → ID mapping for Mermaid (alphanumeric only).
	nodeIDs := make(map[string]string)
	var order []string
	getID := func(term string) string {
		if id, ok := nodeIDs[term]; ok {
			return id
		}
		id := fmt.Sprintf("N%d", len(nodeIDs))
		nodeIDs[term] = id
		order = append(order, term)
		return id
	}
	getID(termID)

	type arrow struct{ from, to string }
	var arrows []arrow
	for _, c := range chains {
		n := len(c.Nodes)
		prev, last := c.Nodes[n-2], c.Nodes[n-1]
		a := arrow{from: getID(prev), to: getID(last)}
		if dir == graph.DirectionDescendants {
			a.from, a.to = a.to, a.from
		}
		arrows = append(arrows, a)
	}

	var sb strings.Builder
	sb.WriteString("graph BT\n")
	for _, term := range order {
		label := term
		if t, err := store.GetTerm(ctx, term); err == nil && t != nil && t.Name != "" {
			label = fmt.Sprintf("%s %.40s", term, t.Name)
		}
		sb.WriteString(fmt.Sprintf("  %s[\"%s\"]\n", nodeIDs[term], escapeLabel(label)))
	}
	for _, a := range arrows {
		sb.WriteString(fmt.Sprintf("  %s --> %s\n", a.from, a.to))
	}

	return sb.String(), nil
}

// escapeLabel replaces characters Mermaid cannot take inside a quoted label.
func escapeLabel(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}
