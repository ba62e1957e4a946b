// Package builder turns one knowledge-base source file into the edge list
// consumed by node2vec.
package builder

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/dusk-indust/kbgraph/internal/export"
	"github.com/dusk-indust/kbgraph/internal/graph"
	"github.com/dusk-indust/kbgraph/internal/kb"
)

// Options configures a Builder. Only Registry is required.
type Options struct {
	Registry *kb.Registry

	// Policy applies to malformed records. Empty means graph.PolicyFail.
	Policy graph.Policy

	// Indexed also writes integer node maps and an integer edge list.
	Indexed bool

	// Parquet also writes the edges as a Parquet table.
	Parquet bool

	// Store, when set, receives every built term and edge.
	Store graph.Store

	Logger *slog.Logger
}

// Builder runs builds. It holds no per-build state, so one Builder may run
// several builds concurrently as long as their knowledge bases differ.
type Builder struct {
	registry *kb.Registry
	policy   graph.Policy
	indexed  bool
	parquet  bool
	logger   *slog.Logger

	storeMu sync.Mutex // serializes writes into store
	store   graph.Store
}

// New returns a Builder.
func New(opts Options) *Builder {
	if opts.Registry == nil {
		opts.Registry = kb.NewRegistry("", "")
	}
	if opts.Policy == "" {
		opts.Policy = graph.PolicyFail
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Builder{
		registry: opts.Registry,
		policy:   opts.Policy,
		indexed:  opts.Indexed,
		parquet:  opts.Parquet,
		logger:   opts.Logger,
		store:    opts.Store,
	}
}

// Result summarizes a successful build.
type Result struct {
	KB         string       `json:"kb"`
	Format     graph.Format `json:"format"`
	InputPath  string       `json:"inputPath"`
	OutputPath string       `json:"outputPath"`
	Terms      int          `json:"terms"`
	Edges      int          `json:"edges"`
	Skipped    int          `json:"skipped,omitempty"`
	Components int          `json:"components"`
	Indexed    *Indexed     `json:"indexed,omitempty"`
	Parquet    string       `json:"parquet,omitempty"` // Parquet edge table, when written
}

// Indexed describes the integer-ID artifacts of a build.
type Indexed struct {
	EdgeListPath string `json:"edgeListPath"`
	MapDir       string `json:"mapDir"`
	Nodes        int    `json:"nodes"`
	Edges        int    `json:"edges"`
	Dropped      int    `json:"dropped,omitempty"` // edges touching undeclared nodes
}

// IndexedEdgeListPath returns where the integer edge list for a source
// edge list is written.
func IndexedEdgeListPath(outputPath, kbName string) string {
	return filepath.Join(filepath.Dir(outputPath), kbName+".indexed.edgelist")
}

// ParquetPath returns where the Parquet edge table for a source edge list
// is written.
func ParquetPath(outputPath, kbName string) string {
	return filepath.Join(filepath.Dir(outputPath), kbName+".edges.parquet")
}

// Build parses the source of kbName in the given format and writes its
// edge list. Nothing is written unless the whole input parses (subject to
// the skip policy) and yields at least one edge. The store, when set, is
// updated only after the edge list is in place, and a rebuild replaces the
// edges an earlier build of kbName loaded.
func (b *Builder) Build(ctx context.Context, kbName, formatTag string) (*Result, error) {
	format, err := graph.ParseFormat(formatTag)
	if err != nil {
		return nil, err
	}
	src, err := b.registry.Resolve(kbName, format)
	if err != nil {
		return nil, err
	}
	log := b.logger.With("kb", kbName, "format", string(format))

	parsed, err := b.parse(ctx, src, log)
	if err != nil {
		return nil, err
	}
	if len(parsed.Edges) == 0 {
		return nil, &graph.EmptyInputError{Path: src.InputPath}
	}

	terms := parsed.Terms
	if src.Root != "" && !declares(terms, src.Root) {
		terms = append(terms[:len(terms):len(terms)], graph.Term{ID: src.Root})
	}
	full := &graph.ParseResult{Path: parsed.Path, Terms: terms, Edges: parsed.Edges}

	result := &Result{
		KB:         kbName,
		Format:     format,
		InputPath:  src.InputPath,
		OutputPath: src.OutputPath,
		Terms:      len(parsed.Terms),
		Edges:      len(parsed.Edges),
		Skipped:    parsed.Skipped,
	}

	scratch := graph.NewMemStore()
	if err := graph.Load(ctx, scratch, full); err != nil {
		return nil, err
	}
	components, err := graph.ComputeComponents(ctx, scratch)
	if err != nil {
		return nil, err
	}
	result.Components = len(components)

	if b.indexed {
		idx, err := b.writeIndexed(src, full)
		if err != nil {
			return nil, err
		}
		result.Indexed = idx
		if idx.Dropped > 0 {
			log.Warn("indexed edge list dropped edges to undeclared nodes", "dropped", idx.Dropped)
		}
	}

	if b.parquet {
		path := ParquetPath(src.OutputPath, kbName)
		if err := export.WriteParquetEdges(path, parsed.Edges); err != nil {
			return nil, err
		}
		result.Parquet = path
	}

	// The edge list goes last: it only appears once everything else succeeded.
	if err := export.WriteEdgeList(src.OutputPath, parsed.Edges); err != nil {
		return nil, err
	}

	// A rebuild replaces what the previous build of kbName put in the store.
	if b.store != nil {
		if err := b.loadStore(ctx, kbName, full); err != nil {
			return nil, fmt.Errorf("load graph store: %w", err)
		}
	}

	log.Info("built edge list",
		"input", src.InputPath,
		"output", src.OutputPath,
		"terms", result.Terms,
		"edges", result.Edges,
		"skipped", result.Skipped,
		"components", result.Components,
	)
	return result, nil
}

// declares reports whether terms already hold id.
func declares(terms []graph.Term, id string) bool {
	for _, t := range terms {
		if t.ID == id {
			return true
		}
	}
	return false
}

func (b *Builder) parse(ctx context.Context, src kb.Source, log *slog.Logger) (*graph.ParseResult, error) {
	parser, err := graph.NewParser(src.Format, graph.ParseOptions{
		Policy: b.policy,
		Logger: log,
		TSV:    src.TSV,
		OBO:    src.OBO,
	})
	if err != nil {
		return nil, err
	}

	f, err := os.Open(src.InputPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &graph.InputNotFoundError{Path: src.InputPath, Err: err}
		}
		return nil, fmt.Errorf("open %s: %w", src.InputPath, err)
	}
	defer f.Close()

	log.Debug("parsing", "input", src.InputPath)
	return parser.Parse(ctx, src.InputPath, f)
}

func (b *Builder) loadStore(ctx context.Context, kbName string, res *graph.ParseResult) error {
	b.storeMu.Lock()
	defer b.storeMu.Unlock()
	return graph.Replace(ctx, b.store, kbName, res)
}

func (b *Builder) writeIndexed(src kb.Source, res *graph.ParseResult) (*Indexed, error) {
	idx := export.NewNodeIndex(res.Terms)
	pairs, dropped := idx.IndexEdges(res.Edges)

	if err := export.WriteNodeMaps(src.MapDir, idx); err != nil {
		return nil, fmt.Errorf("write node maps: %w", err)
	}
	path := IndexedEdgeListPath(src.OutputPath, src.KB)
	if err := export.WriteIndexedEdgeList(path, pairs); err != nil {
		return nil, err
	}
	return &Indexed{
		EdgeListPath: path,
		MapDir:       src.MapDir,
		Nodes:        idx.Len(),
		Edges:        len(pairs),
		Dropped:      dropped,
	}, nil
}
