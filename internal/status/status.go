// Package status reports which knowledge bases have sources on disk and
// which have been built.
package status

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/dusk-indust/kbgraph/internal/kb"
)

// KBStatus describes the build state of one registered knowledge base in
// one format. Formats of the same knowledge base share an edge list.
type KBStatus struct {
	KB         string
	Format     string
	InputPath  string
	HasInput   bool
	OutputPath string
	Built      bool
	Stale      bool // the source changed after the edge list was written
	Edges      int  // lines in the edge list when built
}

// Scan checks every registry entry against the file system.
func Scan(r *kb.Registry) ([]KBStatus, error) {
	var out []KBStatus
	for _, e := range r.Entries() {
		src, err := r.Resolve(e.KB, e.Format)
		if err != nil {
			return nil, err
		}
		st := KBStatus{
			KB:         e.KB,
			Format:     string(e.Format),
			InputPath:  src.InputPath,
			OutputPath: src.OutputPath,
		}

		in, inErr := os.Stat(src.InputPath)
		st.HasInput = inErr == nil

		outInfo, outErr := os.Stat(src.OutputPath)
		if outErr == nil {
			st.Built = true
			st.Stale = st.HasInput && in.ModTime().After(outInfo.ModTime())
			n, err := countLines(src.OutputPath)
			if err != nil {
				return nil, err
			}
			st.Edges = n
		}
		out = append(out, st)
	}
	return out, nil
}

// Print writes one line per status.
func Print(w io.Writer, statuses []KBStatus) {
	if len(statuses) == 0 {
		fmt.Fprintln(w, "No knowledge bases registered.")
		return
	}
	for _, st := range statuses {
		label := "missing input"
		switch {
		case st.Built && st.Stale:
			label = fmt.Sprintf("stale, %d edges", st.Edges)
		case st.Built:
			label = fmt.Sprintf("built, %d edges", st.Edges)
		case st.HasInput:
			label = "pending"
		}
		fmt.Fprintf(w, "  %-14s %-4s [%s]\n", st.KB, st.Format, label)
	}
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		n++
	}
	return n, sc.Err()
}
