package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/dusk-indust/kbgraph/internal/graph"
)

// ParquetEdge is one row of the Parquet edge table.
type ParquetEdge struct {
	Src      string  `parquet:"name=src, type=UTF8"`
	Dst      string  `parquet:"name=dst, type=UTF8"`
	Relation string  `parquet:"name=relation, type=UTF8"`
	Weight   float64 `parquet:"name=weight, type=DOUBLE"`
}

// parquetGoRoutines is the marshalling parallelism of the Parquet writer.
const parquetGoRoutines int64 = 4

// WriteParquetEdges atomically replaces path with a Parquet table holding
// one row per edge, in order. Unweighted edges carry graph.DefaultWeight.
func WriteParquetEdges(path string, edges []graph.Edge) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	tmp.Close()
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	fw, err := local.NewLocalFileWriter(tmpName)
	if err != nil {
		return fmt.Errorf("open parquet file: %w", err)
	}
	pw, err := writer.NewParquetWriter(fw, new(ParquetEdge), parquetGoRoutines)
	if err != nil {
		fw.Close()
		return fmt.Errorf("create parquet writer: %w", err)
	}
	for _, e := range edges {
		row := ParquetEdge{Src: e.Source, Dst: e.Target, Relation: e.Relation, Weight: e.Weight}
		if !e.Weighted && row.Weight == 0 {
			row.Weight = graph.DefaultWeight
		}
		if err = pw.Write(row); err != nil {
			fw.Close()
			return fmt.Errorf("write parquet row: %w", err)
		}
	}
	if err = pw.WriteStop(); err != nil {
		fw.Close()
		return fmt.Errorf("parquet write stop: %w", err)
	}
	if err = fw.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}
