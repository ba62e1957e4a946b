package graph

import (
	"fmt"
	"io/fs"
)

// UnsupportedFormatError reports a format tag no Parser handles.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format %q (want one of tsv, obo, txt)", e.Format)
}

// MalformedRecordError reports a record that violates its format's shape.
// Line is 1-based; for obo it points at the line that exposed the problem.
type MalformedRecordError struct {
	Path   string
	Line   int
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("%s:%d: malformed record: %s", e.Path, e.Line, e.Reason)
}

// EmptyInputError reports a source file that produced no edges.
type EmptyInputError struct {
	Path string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("%s: no edges found", e.Path)
}

// InputNotFoundError reports a missing source file.
type InputNotFoundError struct {
	Path string
	Err  error
}

func (e *InputNotFoundError) Error() string {
	return fmt.Sprintf("input not found: %s", e.Path)
}

func (e *InputNotFoundError) Unwrap() error {
	if e.Err == nil {
		return fs.ErrNotExist
	}
	return e.Err
}
