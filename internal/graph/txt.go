package graph

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
)

// TXTParser reads an edge list that is already pairwise: `source target`
// or `source target weight` per line, whitespace separated.
type TXTParser struct {
	policy Policy
	logger *slog.Logger
}

// Compile-time assertion: *TXTParser satisfies Parser.
var _ Parser = (*TXTParser)(nil)

// Format returns FormatTXT.
func (p *TXTParser) Format() Format { return FormatTXT }

// Parse validates each line and passes it through unchanged. Endpoints are
// declared as terms in order of first appearance.
func (p *TXTParser) Parse(ctx context.Context, path string, src io.Reader) (*ParseResult, error) {
	sink := &recordSink{path: path, policy: p.policy, logger: p.logger}
	result := &ParseResult{Path: path}
	seen := make(map[string]bool)

	declare := func(id string) {
		if !seen[id] {
			seen[id] = true
			result.Terms = append(result.Terms, Term{ID: id})
		}
	}

	lr := newLineReader(ctx, src)
	for lr.next() {
		tokens := strings.Fields(lr.text)
		if len(tokens) == 0 {
			continue
		}
		if len(tokens) != 2 && len(tokens) != 3 {
			if err := sink.malformed(lr.n, fmt.Sprintf("want 2 or 3 fields, got %d", len(tokens))); err != nil {
				return nil, err
			}
			continue
		}

		edge := NewEdge(tokens[0], tokens[1], "")
		if len(tokens) == 3 {
			w, err := strconv.ParseFloat(tokens[2], 64)
			if err != nil || math.IsNaN(w) || math.IsInf(w, 0) {
				if err := sink.malformed(lr.n, fmt.Sprintf("invalid weight %q", tokens[2])); err != nil {
					return nil, err
				}
				continue
			}
			edge.Weight = w
			edge.Weighted = true
		}

		declare(edge.Source)
		declare(edge.Target)
		result.Edges = append(result.Edges, edge)
	}
	if lr.err != nil {
		return nil, fmt.Errorf("read %s: %w", path, lr.err)
	}

	result.Skipped = sink.skipped
	return result, nil
}
