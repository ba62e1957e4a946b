package graph

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// RelationshipRule selects a `relationship:` type to turn into edges.
// Reverse flips the edge so it runs from the target to the current node
// (cellosaurus `derived_from` points from the parent line to the child).
type RelationshipRule struct {
	Name    string `yaml:"name"`
	Reverse bool   `yaml:"reverse,omitempty"`
}

// OBOOptions tunes which stanzas and relationships become edges.
type OBOOptions struct {
	// Relationships lists relationship types emitted in addition to is_a.
	Relationships []RelationshipRule `yaml:"relationships,omitempty"`

	// Namespace, when set, keeps only terms whose namespace tag matches.
	Namespace string `yaml:"namespace,omitempty"`
}

// OBOParser reads OBO 1.2/1.4 flat files. Only [Term] stanzas produce
// terms and edges; header lines and other stanza types are ignored.
type OBOParser struct {
	opts   OBOOptions
	policy Policy
	logger *slog.Logger
}

// Compile-time assertion: *OBOParser satisfies Parser.
var _ Parser = (*OBOParser)(nil)

// Format returns FormatOBO.
func (p *OBOParser) Format() Format { return FormatOBO }

// oboStanza accumulates one stanza. It is reset at every stanza boundary.
type oboStanza struct {
	kind     string
	line     int
	term     Term
	hasID    bool
	edges    []Edge
	obsolete bool
	bad      bool
}

// Parse reads src stanza by stanza. Edges of a stanza are emitted when the
// stanza closes, in the order their lines appeared.
func (p *OBOParser) Parse(ctx context.Context, path string, src io.Reader) (*ParseResult, error) {
	sink := &recordSink{path: path, policy: p.policy, logger: p.logger}
	result := &ParseResult{Path: path}

	rules := make(map[string]RelationshipRule, len(p.opts.Relationships))
	for _, r := range p.opts.Relationships {
		rules[r.Name] = r
	}

	var cur *oboStanza

	// reject applies the policy to the current stanza.
	reject := func(line int, reason string) error {
		if err := sink.malformed(line, reason); err != nil {
			return err
		}
		cur.bad = true
		return nil
	}

	flush := func() error {
		st := cur
		cur = nil
		if st == nil || st.kind != "Term" || st.bad {
			return nil
		}
		if !st.hasID {
			return sink.malformed(st.line, "[Term] stanza has no id")
		}
		if st.obsolete {
			return nil
		}
		if p.opts.Namespace != "" && st.term.Namespace != p.opts.Namespace {
			return nil
		}
		result.Terms = append(result.Terms, st.term)
		result.Edges = append(result.Edges, st.edges...)
		return nil
	}

	lr := newLineReader(ctx, src)
	for lr.next() {
		line := strings.TrimSpace(lr.text)

		if line == "" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			if err := flush(); err != nil {
				return nil, err
			}
			cur = &oboStanza{kind: strings.TrimSpace(line[1 : len(line)-1]), line: lr.n}
			continue
		}
		if cur == nil || cur.kind != "Term" || cur.bad || strings.HasPrefix(line, "!") {
			continue
		}

		tag, value, ok := strings.Cut(line, ":")
		if !ok {
			if err := reject(lr.n, fmt.Sprintf("line has no tag: %q", line)); err != nil {
				return nil, err
			}
			continue
		}
		value = strings.TrimSpace(value)

		switch strings.TrimSpace(tag) {
		case "id":
			id := oboIdentifier(value)
			switch {
			case id == "":
				if err := reject(lr.n, "empty id"); err != nil {
					return nil, err
				}
			case cur.hasID:
				if err := reject(lr.n, fmt.Sprintf("second id %s in stanza for %s", id, cur.term.ID)); err != nil {
					return nil, err
				}
			default:
				cur.term.ID = id
				cur.hasID = true
			}

		case "name":
			cur.term.Name = value

		case "namespace":
			cur.term.Namespace = oboValue(value)

		case "synonym":
			if syn, ok := quoted(value); ok {
				cur.term.Synonyms = append(cur.term.Synonyms, syn)
			}

		case "is_obsolete":
			cur.obsolete = oboIdentifier(value) == "true"

		case "is_a":
			if !cur.hasID {
				if err := reject(lr.n, "is_a before id"); err != nil {
					return nil, err
				}
				continue
			}
			target := oboIdentifier(value)
			if target == "" {
				if err := reject(lr.n, fmt.Sprintf("empty is_a target for %s", cur.term.ID)); err != nil {
					return nil, err
				}
				continue
			}
			cur.term.Parents = append(cur.term.Parents, target)
			cur.edges = append(cur.edges, NewEdge(cur.term.ID, target, RelationIsA))

		case "relationship":
			fields := strings.Fields(oboValue(value))
			if len(fields) == 0 {
				continue
			}
			rule, wanted := rules[fields[0]]
			if !wanted {
				continue
			}
			if !cur.hasID {
				if err := reject(lr.n, fmt.Sprintf("relationship %s before id", rule.Name)); err != nil {
					return nil, err
				}
				continue
			}
			if len(fields) < 2 {
				if err := reject(lr.n, fmt.Sprintf("relationship %s without target for %s", rule.Name, cur.term.ID)); err != nil {
					return nil, err
				}
				continue
			}
			edge := NewEdge(cur.term.ID, fields[1], rule.Name)
			if rule.Reverse {
				edge.Source, edge.Target = edge.Target, edge.Source
			}
			cur.edges = append(cur.edges, edge)
		}
	}
	if lr.err != nil {
		return nil, fmt.Errorf("read %s: %w", path, lr.err)
	}
	if err := flush(); err != nil {
		return nil, err
	}

	result.Skipped = sink.skipped
	return result, nil
}

// oboValue strips the trailing `! comment` and `{qualifier}` block from a
// tag value.
func oboValue(value string) string {
	if i := strings.Index(value, "!"); i >= 0 {
		value = value[:i]
	}
	if i := strings.Index(value, "{"); i >= 0 {
		value = value[:i]
	}
	return strings.TrimSpace(value)
}

// oboIdentifier returns the first token of a stripped tag value.
func oboIdentifier(value string) string {
	fields := strings.Fields(oboValue(value))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// quoted returns the text between the first pair of double quotes.
func quoted(value string) (string, bool) {
	start := strings.IndexByte(value, '"')
	if start < 0 {
		return "", false
	}
	end := strings.IndexByte(value[start+1:], '"')
	if end < 0 {
		return "", false
	}
	return value[start+1 : start+1+end], true
}
