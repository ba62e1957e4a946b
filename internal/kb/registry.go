// Package kb resolves knowledge-base names to the files a build reads and
// writes. Parsing logic never depends on the name; only locations and
// per-KB parse options do.
package kb

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dusk-indust/kbgraph/internal/graph"
)

// Default locations, relative to the working directory.
const (
	DefaultDataDir  = "data/kbs"
	DefaultGraphDir = "node2vec/graph"
)

// Definition describes where a knowledge base lives for one format and how
// to read it.
type Definition struct {
	// File is the source path. Relative paths are resolved against the
	// registry's data directory.
	File string

	// Root is the ontology root identifier. It is declared as a term so
	// node indexing covers it even when no record defines it.
	Root string

	TSV *graph.TSVLayout
	OBO graph.OBOOptions
}

// Source is a fully resolved build target.
type Source struct {
	KB         string
	Format     graph.Format
	InputPath  string
	OutputPath string // edge list
	MapDir     string // node index maps and indexed edge list
	Root       string
	TSV        graph.TSVLayout
	OBO        graph.OBOOptions
}

// Registry maps (knowledge base, format) pairs to definitions.
type Registry struct {
	dataDir  string
	graphDir string
	defs     map[string]map[graph.Format]Definition
}

// NewRegistry returns a registry preloaded with the built-in knowledge
// bases. Empty directories fall back to DefaultDataDir and DefaultGraphDir.
func NewRegistry(dataDir, graphDir string) *Registry {
	if dataDir == "" {
		dataDir = DefaultDataDir
	}
	if graphDir == "" {
		graphDir = DefaultGraphDir
	}
	r := &Registry{
		dataDir:  dataDir,
		graphDir: graphDir,
		defs:     make(map[string]map[graph.Format]Definition),
	}
	for _, b := range builtins {
		r.Register(b.kb, b.format, b.def)
	}
	return r
}

// Register adds or replaces the definition of kb for format.
func (r *Registry) Register(kb string, format graph.Format, def Definition) {
	if r.defs[kb] == nil {
		r.defs[kb] = make(map[graph.Format]Definition)
	}
	r.defs[kb][format] = def
}

// Names returns every registered knowledge-base name, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Entry is one registered (knowledge base, format) pair.
type Entry struct {
	KB     string
	Format graph.Format
}

// Entries returns every registered pair, sorted by name then format.
func (r *Registry) Entries() []Entry {
	var out []Entry
	for _, name := range r.Names() {
		for format := range r.defs[name] {
			out = append(out, Entry{KB: name, Format: format})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].KB != out[j].KB {
			return out[i].KB < out[j].KB
		}
		return out[i].Format < out[j].Format
	})
	return out
}

// Resolve returns the build target for kb in format. Unregistered pairs
// resolve to conventional paths under the data directory.
func (r *Registry) Resolve(kb string, format graph.Format) (Source, error) {
	if err := validateName(kb); err != nil {
		return Source{}, err
	}

	def, ok := r.defs[kb][format]
	if !ok {
		def = Definition{File: defaultFile(kb, format)}
	}
	if def.File == "" {
		def.File = defaultFile(kb, format)
	}

	src := Source{
		KB:         kb,
		Format:     format,
		InputPath:  r.path(def.File),
		OutputPath: filepath.Join(r.graphDir, kb+".edgelist"),
		MapDir:     filepath.Join(r.dataDir, kb),
		Root:       def.Root,
		TSV:        graph.DefaultTSVLayout(),
		OBO:        def.OBO,
	}
	if def.TSV != nil {
		src.TSV = *def.TSV
	}
	return src, nil
}

func (r *Registry) path(file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(r.dataDir, file)
}

func defaultFile(kb string, format graph.Format) string {
	if format == graph.FormatTXT {
		return filepath.Join(kb, "edges.txt")
	}
	return filepath.Join(kb, kb+"."+string(format))
}

// validateName rejects names that would escape the data directories.
func validateName(kb string) error {
	if kb == "" {
		return fmt.Errorf("knowledge base name is empty")
	}
	if kb == "." || kb == ".." || strings.ContainsAny(kb, `/\`) {
		return fmt.Errorf("invalid knowledge base name %q", kb)
	}
	return nil
}
