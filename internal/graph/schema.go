package graph

import "strings"

// --- Enums ---

// Format identifies the layout of a knowledge-base source file.
type Format string

const (
	FormatTSV Format = "tsv" // tabular export, one record per line
	FormatOBO Format = "obo" // ontology stanzas
	FormatTXT Format = "txt" // pairwise edge list, optionally weighted
)

// SupportedFormats lists every format a Parser exists for.
var SupportedFormats = []Format{FormatTSV, FormatOBO, FormatTXT}

// ParseFormat maps a format tag to a Format. Tags are matched
// case-insensitively; anything else yields an *UnsupportedFormatError.
func ParseFormat(tag string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(tag)))
	for _, s := range SupportedFormats {
		if f == s {
			return f, nil
		}
	}
	return "", &UnsupportedFormatError{Format: tag}
}

// Policy decides what happens when a record does not have the shape its
// format requires.
type Policy string

const (
	PolicyFail Policy = "fail" // abort the whole build
	PolicySkip Policy = "skip" // log a warning and drop the record
)

// Direction controls dependency traversal direction.
type Direction string

const (
	DirectionAncestors   Direction = "ancestors"   // follow child -> parent edges
	DirectionDescendants Direction = "descendants" // follow parent -> child edges
)

// Relation names used on emitted edges.
const (
	RelationIsA    = "is_a"
	RelationParent = "parent"
)

// DefaultWeight is the weight of an edge whose source carries none.
const DefaultWeight = 1.0

// --- Models ---

// Term is one parsed vocabulary record. Only ID matters for the edge list;
// the remaining fields are carried for stores and node indexing.
type Term struct {
	ID        string   `json:"id"`
	Name      string   `json:"name,omitempty"`
	Namespace string   `json:"namespace,omitempty"`
	Parents   []string `json:"parents,omitempty"`
	Synonyms  []string `json:"synonyms,omitempty"`
	Obsolete  bool     `json:"obsolete,omitempty"`
}

// Edge is a directed relationship between two identifiers.
type Edge struct {
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Relation string  `json:"relation,omitempty"`
	Weight   float64 `json:"weight"`
	Weighted bool    `json:"weighted,omitempty"` // weight came from the source file
	KB       string  `json:"kb,omitempty"`       // knowledge base that loaded the edge into a store
}

// NewEdge returns an unweighted edge carrying DefaultWeight.
func NewEdge(source, target, relation string) Edge {
	return Edge{Source: source, Target: target, Relation: relation, Weight: DefaultWeight}
}

// GraphStats summarizes a knowledge-base graph.
type GraphStats struct {
	TermCount      int `json:"termCount"`
	EdgeCount      int `json:"edgeCount"`
	ComponentCount int `json:"componentCount,omitempty"`
}

// DependencyChain is an ordered sequence of nodes forming a path.
type DependencyChain struct {
	Nodes []string `json:"nodes"` // node IDs in order
	Depth int      `json:"depth"`
}

// TermInfo describes the position of a term in the graph.
type TermInfo struct {
	Term        *Term `json:"term,omitempty"`
	OutDegree   int   `json:"outDegree"`
	InDegree    int   `json:"inDegree"`
	Descendants int   `json:"descendants"`
}

// Component is a weakly connected set of nodes.
type Component struct {
	Members []string `json:"members"`
	Edges   int      `json:"edges"`
}
