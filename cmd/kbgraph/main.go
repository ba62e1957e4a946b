package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/dusk-indust/kbgraph/internal/batch"
	"github.com/dusk-indust/kbgraph/internal/builder"
	"github.com/dusk-indust/kbgraph/internal/config"
	"github.com/dusk-indust/kbgraph/internal/graph"
	"github.com/dusk-indust/kbgraph/internal/kb"
	"github.com/dusk-indust/kbgraph/internal/mcptools"
	"github.com/dusk-indust/kbgraph/internal/status"
)

// CLI flags parsed from command line. Every flag is optional; the two
// positional arguments are the knowledge base and its format.
type cliFlags struct {
	ConfigDir     string
	DataDir       string
	GraphDir      string
	GraphDB       string
	SkipMalformed bool
	Indexed       bool
	Parquet       bool
	All           bool
	ServeMCP      bool
	Status        bool
	Verbose       bool
	LogFormat     string
	Version       bool
}

// version is set by goreleaser at build time.
var version = "dev"

const usage = "usage: kbgraph [flags] <kb> <format>"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var flags cliFlags

	fs := flag.NewFlagSet("kbgraph", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, usage)
		fs.PrintDefaults()
	}
	fs.StringVar(&flags.ConfigDir, "config", ".", "directory holding kbgraph.yml")
	fs.StringVar(&flags.DataDir, "data-dir", "", "knowledge-base source directory (default data/kbs)")
	fs.StringVar(&flags.GraphDir, "graph-dir", "", "edge list output directory (default node2vec/graph)")
	fs.StringVar(&flags.GraphDB, "graph-db", "", "persist built graphs to a KuzuDB directory or a .sqlite file")
	fs.BoolVar(&flags.SkipMalformed, "skip-malformed", false, "log and skip malformed records instead of failing")
	fs.BoolVar(&flags.Indexed, "indexed", false, "also write integer node maps and an integer edge list")
	fs.BoolVar(&flags.Parquet, "parquet", false, "also write the edges as a Parquet table")
	fs.BoolVar(&flags.All, "all", false, "build every knowledge base listed in kbgraph.yml")
	fs.BoolVar(&flags.ServeMCP, "serve-mcp", false, "run as an MCP server on stdio")
	fs.BoolVar(&flags.Status, "status", false, "list knowledge bases and whether their edge lists are built")
	fs.BoolVar(&flags.Verbose, "verbose", false, "enable debug logging")
	fs.StringVar(&flags.LogFormat, "log-format", "", "log format: text or json")
	fs.BoolVar(&flags.Version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if flags.Version {
		fmt.Fprintln(stdout, version)
		return nil
	}

	cfg, err := config.Load(flags.ConfigDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyFlags(cfg, flags)

	logger := newLogger(cfg.Logging.Level, cfg.Logging.Format, stderr)

	registry := kb.NewRegistry(cfg.DataDir, cfg.GraphDir)
	registry.ApplyConfig(cfg)

	if flags.Status {
		statuses, err := status.Scan(registry)
		if err != nil {
			return err
		}
		status.Print(stdout, statuses)
		return nil
	}

	store, err := openStore(cfg.GraphDB)
	if err != nil {
		return err
	}
	if store == nil && flags.ServeMCP {
		store = graph.NewMemStore()
	}
	if store != nil {
		defer store.Close()
	}

	b := builder.New(builder.Options{
		Registry: registry,
		Policy:   cfg.Policy,
		Indexed:  cfg.Indexed,
		Parquet:  cfg.Parquet,
		Store:    store,
		Logger:   logger,
	})

	switch {
	case flags.ServeMCP:
		server := mcptools.NewKBGraphMCPServer(mcptools.NewKBGraphService(b, store))
		return mcptools.RunMCPServerStdio(ctx, server)
	case flags.All:
		return runAll(ctx, b, registry, cfg, logger)
	}

	if fs.NArg() != 2 {
		fs.Usage()
		return errors.New(usage)
	}
	res, err := b.Build(ctx, fs.Arg(0), fs.Arg(1))
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, res.OutputPath)
	return nil
}

// applyFlags overrides config values with explicitly set flags.
func applyFlags(cfg *config.ProjectConfig, flags cliFlags) {
	if flags.DataDir != "" {
		cfg.DataDir = flags.DataDir
	}
	if flags.GraphDir != "" {
		cfg.GraphDir = flags.GraphDir
	}
	if flags.GraphDB != "" {
		cfg.GraphDB = flags.GraphDB
	}
	if flags.SkipMalformed {
		cfg.Policy = graph.PolicySkip
	}
	if flags.Indexed {
		cfg.Indexed = true
	}
	if flags.Parquet {
		cfg.Parquet = true
	}
	if flags.Verbose {
		cfg.Logging.Level = "debug"
	}
	if flags.LogFormat != "" {
		cfg.Logging.Format = flags.LogFormat
	}
}

func runAll(ctx context.Context, b *builder.Builder, registry *kb.Registry, cfg *config.ProjectConfig, logger *slog.Logger) error {
	if len(cfg.KnowledgeBases) == 0 {
		return errors.New("-all: kbgraph.yml lists no knowledgeBases")
	}
	jobs := make([]batch.Job, 0, len(cfg.KnowledgeBases))
	for _, entry := range cfg.KnowledgeBases {
		jobs = append(jobs, batch.Job{KB: entry.Name, Format: entry.Format})
	}

	fan := batch.NewFanOut(b.Build, 0, func(ev batch.ProgressEvent) {
		logger.Debug(batch.FormatProgress(ev))
	}).WithOutputs(func(j batch.Job) (string, error) {
		format, err := graph.ParseFormat(j.Format)
		if err != nil {
			return "", err
		}
		src, err := registry.Resolve(j.KB, format)
		return src.OutputPath, err
	})
	results, err := fan.Run(ctx, jobs)

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			logger.Error("build failed", "job", r.Job.String(), "err", r.Err)
		}
	}
	if err != nil {
		return fmt.Errorf("%d of %d builds failed: %w", failed, len(jobs), err)
	}
	return nil
}
