package graph

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"strings"
)

// ParseResult holds the terms and edges extracted from one source file,
// in the order they were encountered.
type ParseResult struct {
	Path    string `json:"path"`
	Terms   []Term `json:"terms"`
	Edges   []Edge `json:"edges"`
	Skipped int    `json:"skipped,omitempty"` // malformed records dropped under PolicySkip
}

// Parser extracts relationships from a knowledge-base file.
// Implementations: TSVParser, OBOParser, TXTParser.
type Parser interface {
	// Format reports which source layout the parser reads.
	Format() Format

	// Parse reads src to EOF in a single pass. path is only used for
	// error messages and logs.
	Parse(ctx context.Context, path string, src io.Reader) (*ParseResult, error)
}

// ParseOptions configures every Parser. The zero value fails on the first
// malformed record and logs through slog.Default.
type ParseOptions struct {
	Policy Policy
	Logger *slog.Logger
	TSV    TSVLayout
	OBO    OBOOptions
}

// NewParser returns the parsing strategy for format.
func NewParser(format Format, opts ParseOptions) (Parser, error) {
	if opts.Policy == "" {
		opts.Policy = PolicyFail
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	switch format {
	case FormatTSV:
		return &TSVParser{layout: opts.TSV.withDefaults(), policy: opts.Policy, logger: opts.Logger}, nil
	case FormatOBO:
		return &OBOParser{opts: opts.OBO, policy: opts.Policy, logger: opts.Logger}, nil
	case FormatTXT:
		return &TXTParser{policy: opts.Policy, logger: opts.Logger}, nil
	default:
		return nil, &UnsupportedFormatError{Format: string(format)}
	}
}

// maxLineSize bounds a single source line. OBO definitions in large
// ontologies run to tens of kilobytes.
const maxLineSize = 16 << 20

// ctxCheckInterval is how many lines are read between cancellation checks.
const ctxCheckInterval = 4096

// lineReader wraps bufio.Scanner with line numbering, CRLF handling and
// periodic context checks.
type lineReader struct {
	ctx  context.Context
	sc   *bufio.Scanner
	text string
	n    int
	err  error
}

func newLineReader(ctx context.Context, src io.Reader) *lineReader {
	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	return &lineReader{ctx: ctx, sc: sc}
}

func (lr *lineReader) next() bool {
	if lr.n%ctxCheckInterval == 0 {
		if err := lr.ctx.Err(); err != nil {
			lr.err = err
			return false
		}
	}
	if !lr.sc.Scan() {
		lr.err = lr.sc.Err()
		return false
	}
	lr.n++
	lr.text = strings.TrimSuffix(lr.sc.Text(), "\r")
	return true
}

// recordSink applies the malformed-record policy and counts skips.
type recordSink struct {
	path    string
	policy  Policy
	logger  *slog.Logger
	skipped int
}

// malformed returns the error to abort with, or nil when the record was
// skipped.
func (s *recordSink) malformed(line int, reason string) error {
	err := &MalformedRecordError{Path: s.path, Line: line, Reason: reason}
	if s.policy != PolicySkip {
		return err
	}
	s.skipped++
	s.logger.Warn("skipping malformed record", "path", s.path, "line", line, "reason", reason)
	return nil
}
