package kb

import (
	"github.com/dusk-indust/kbgraph/internal/config"
	"github.com/dusk-indust/kbgraph/internal/graph"
)

// ApplyConfig registers every knowledge base listed in cfg, replacing
// built-in entries with the same name and format. Entries with an unknown
// format are ignored; config.Validate reports them.
func (r *Registry) ApplyConfig(cfg *config.ProjectConfig) {
	for _, entry := range cfg.KnowledgeBases {
		format, err := graph.ParseFormat(entry.Format)
		if err != nil {
			continue
		}
		r.Register(entry.Name, format, Definition{
			File: entry.File,
			Root: entry.Root,
			TSV:  entry.TSV,
			OBO:  entry.OBO,
		})
	}
}
