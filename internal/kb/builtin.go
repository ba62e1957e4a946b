package kb

import "github.com/dusk-indust/kbgraph/internal/graph"

type builtin struct {
	kb     string
	format graph.Format
	def    Definition
}

// builtins are the knowledge bases the embedding pipeline ships with.
var builtins = []builtin{
	// OBO ontologies, stored flat under the data directory.
	{"medic", graph.FormatOBO, Definition{File: "CTD_diseases.obo", Root: "MESH:C"}},
	{"chebi", graph.FormatOBO, Definition{File: "chebi.obo", Root: "CHEBI:00"}},
	{"go_bp", graph.FormatOBO, Definition{
		File: "go-basic.obo",
		Root: "GO:0008150",
		OBO:  graph.OBOOptions{Namespace: "biological_process"},
	}},
	{"go_cc", graph.FormatOBO, Definition{
		File: "go-basic.obo",
		Root: "GO:0005575",
		OBO:  graph.OBOOptions{Namespace: "cellular_component"},
	}},
	{"do", graph.FormatOBO, Definition{File: "doid.obo", Root: "DOID:4"}},
	{"hp", graph.FormatOBO, Definition{File: "hp.obo", Root: "HP:0000001"}},
	{"cellosaurus", graph.FormatOBO, Definition{
		File: "cellosaurus.obo",
		OBO: graph.OBOOptions{Relationships: []graph.RelationshipRule{
			{Name: "derived_from", Reverse: true},
		}},
	}},
	{"cl", graph.FormatOBO, Definition{File: "cl-basic.obo"}},
	{"uberon", graph.FormatOBO, Definition{File: "uberon-basic.obo"}},

	// CTD tab-separated exports, one directory per knowledge base.
	{"ctd_chem", graph.FormatTSV, Definition{File: "ctd_chem/CTD_chemicals.tsv", Root: "MESH:D"}},
	{"ctd_anat", graph.FormatTSV, Definition{File: "ctd_anat/CTD_anatomy.tsv", Root: "MESH:A"}},
	{"ctd_gene", graph.FormatTSV, Definition{File: "ctd_gene/CTD_genes.tsv"}},
	{"medic", graph.FormatTSV, Definition{File: "medic/CTD_diseases.tsv", Root: "MESH:C"}},
}
