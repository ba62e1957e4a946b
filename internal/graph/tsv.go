package graph

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// TSVLayout locates the fields of a tabular record. Field positions are
// 0-based; a negative position counts from the end of the row (-1 is the
// last field). ID and Parents are required; Name and Synonyms are read
// when present.
type TSVLayout struct {
	Comment       string `yaml:"comment,omitempty"`
	ListSeparator string `yaml:"listSeparator,omitempty"`
	NameField     int    `yaml:"nameField"`
	IDField       int    `yaml:"idField"`
	ParentsField  int    `yaml:"parentsField"`
	SynonymsField int    `yaml:"synonymsField"`
}

// DefaultTSVLayout matches the CTD vocabulary exports
// (Name, ID, AltIDs, Definition, ParentIDs, TreeNumbers, ParentTreeNumbers, Synonyms).
func DefaultTSVLayout() TSVLayout {
	return TSVLayout{
		Comment:       "#",
		ListSeparator: "|",
		NameField:     0,
		IDField:       1,
		ParentsField:  4,
		SynonymsField: 7,
	}
}

// UnmarshalYAML starts from DefaultTSVLayout, so keys a config leaves out
// keep the CTD positions instead of collapsing to column 0.
func (l *TSVLayout) UnmarshalYAML(value *yaml.Node) error {
	type plain TSVLayout
	out := plain(DefaultTSVLayout())
	if err := value.Decode(&out); err != nil {
		return err
	}
	*l = TSVLayout(out)
	return nil
}

func (l TSVLayout) withDefaults() TSVLayout {
	if l.Comment == "" {
		l.Comment = "#"
	}
	if l.ListSeparator == "" {
		l.ListSeparator = "|"
	}
	return l
}

// TSVParser reads tab-separated vocabulary exports. Each record emits one
// edge from its identifier to every listed parent.
type TSVParser struct {
	layout TSVLayout
	policy Policy
	logger *slog.Logger
}

// Compile-time assertion: *TSVParser satisfies Parser.
var _ Parser = (*TSVParser)(nil)

// Format returns FormatTSV.
func (p *TSVParser) Format() Format { return FormatTSV }

// Parse reads every non-comment line of src as one record.
func (p *TSVParser) Parse(ctx context.Context, path string, src io.Reader) (*ParseResult, error) {
	sink := &recordSink{path: path, policy: p.policy, logger: p.logger}
	result := &ParseResult{Path: path}

	lr := newLineReader(ctx, src)
	for lr.next() {
		line := lr.text
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, p.layout.Comment) {
			continue
		}
		row := strings.Split(line, "\t")

		id, ok := field(row, p.layout.IDField)
		if !ok || id == "" {
			if err := sink.malformed(lr.n, "missing identifier field"); err != nil {
				return nil, err
			}
			continue
		}
		rawParents, ok := field(row, p.layout.ParentsField)
		if !ok {
			if err := sink.malformed(lr.n, fmt.Sprintf("missing parents field for %s", id)); err != nil {
				return nil, err
			}
			continue
		}

		if hasSpace(id) {
			if err := sink.malformed(lr.n, fmt.Sprintf("identifier %q contains whitespace", id)); err != nil {
				return nil, err
			}
			continue
		}
		parents := splitList(rawParents, p.layout.ListSeparator)
		if i := slices.IndexFunc(parents, hasSpace); i >= 0 {
			if err := sink.malformed(lr.n, fmt.Sprintf("parent %q of %s contains whitespace", parents[i], id)); err != nil {
				return nil, err
			}
			continue
		}

		term := Term{
			ID:      id,
			Parents: parents,
		}
		if name, ok := field(row, p.layout.NameField); ok {
			term.Name = name
		}
		if syn, ok := field(row, p.layout.SynonymsField); ok {
			term.Synonyms = splitList(syn, p.layout.ListSeparator)
		}

		result.Terms = append(result.Terms, term)
		for _, parent := range term.Parents {
			result.Edges = append(result.Edges, NewEdge(id, parent, RelationParent))
		}
	}
	if lr.err != nil {
		return nil, fmt.Errorf("read %s: %w", path, lr.err)
	}

	result.Skipped = sink.skipped
	return result, nil
}

// field returns the trimmed value at pos, resolving negative positions
// from the end of the row.
func field(row []string, pos int) (string, bool) {
	if pos < 0 {
		pos += len(row)
	}
	if pos < 0 || pos >= len(row) {
		return "", false
	}
	return strings.TrimSpace(row[pos]), true
}

// hasSpace reports whether an identifier would split into several tokens
// on an edge-list line.
func hasSpace(id string) bool {
	return strings.ContainsFunc(id, unicode.IsSpace)
}

// splitList splits a delimited list, dropping empty items and the "-"
// placeholder used for "none".
func splitList(raw, sep string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "-" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(raw, sep) {
		item = strings.TrimSpace(item)
		if item == "" || item == "-" {
			continue
		}
		out = append(out, item)
	}
	return out
}
