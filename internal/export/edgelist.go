package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dusk-indust/kbgraph/internal/graph"
)

// EncodeEdgeList writes one edge per line as `source target` or
// `source target weight`, with no header. When any edge carries an explicit
// weight every line gets one, so the file never mixes two- and
// three-field lines.
func EncodeEdgeList(w io.Writer, edges []graph.Edge) error {
	weighted := false
	for _, e := range edges {
		if e.Weighted {
			weighted = true
			break
		}
	}

	bw := bufio.NewWriter(w)
	for _, e := range edges {
		bw.WriteString(e.Source)
		bw.WriteByte(' ')
		bw.WriteString(e.Target)
		if weighted {
			bw.WriteByte(' ')
			bw.WriteString(formatWeight(e))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WriteEdgeList atomically replaces path with the encoded edge list.
func WriteEdgeList(path string, edges []graph.Edge) error {
	return writeAtomic(path, func(w io.Writer) error {
		return EncodeEdgeList(w, edges)
	})
}

func formatWeight(e graph.Edge) string {
	w := e.Weight
	if !e.Weighted && w == 0 {
		w = graph.DefaultWeight
	}
	return strconv.FormatFloat(w, 'g', -1, 64)
}

// writeAtomic writes to a temporary file next to path and renames it into
// place only after every byte is on disk. On failure nothing is left at
// path and the temporary file is removed.
func writeAtomic(path string, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}
