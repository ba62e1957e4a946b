//go:build cgo

package graph

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	kuzu "github.com/kuzudb/go-kuzu"
)

// KuzuStore implements the Store interface using KuzuDB as the graph backend.
// It requires CGO because the go-kuzu driver wraps KuzuDB's C library.
type KuzuStore struct {
	db   *kuzu.Database
	conn *kuzu.Connection
	seq  atomic.Int64 // last edge sequence number written
}

// Compile-time check that KuzuStore satisfies Store.
var _ Store = (*KuzuStore)(nil)

// NewKuzuStore creates a KuzuStore backed by an in-memory KuzuDB instance.
func NewKuzuStore() (*KuzuStore, error) {
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(":memory:", cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// NewKuzuFileStore creates a KuzuStore backed by a file-based KuzuDB at the
// given path. KuzuDB creates the leaf itself for new databases, so a
// knowledge-base graph built once can be queried again later.
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	// Ensure parent directory exists (KuzuDB creates the leaf directory).
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(dbPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open file database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ---------- Schema setup ----------

// ddlStatements defines the Cypher DDL executed by InitSchema.
// Order matters: node tables must precede relationship tables.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS Term(
		id STRING,
		name STRING,
		namespace STRING,
		obsolete BOOLEAN,
		PRIMARY KEY(id)
	)`,
	`CREATE REL TABLE IF NOT EXISTS LINKS(
		FROM Term TO Term,
		relation STRING,
		weight DOUBLE,
		weighted BOOLEAN,
		kb STRING,
		seq INT64
	)`,
}

// InitSchema creates the tables if they do not exist and resumes the edge
// sequence of a reopened database.
func (s *KuzuStore) InitSchema(_ context.Context) error {
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	rows, err := s.query("MATCH ()-[r:LINKS]->() RETURN max(r.seq)", nil)
	if err != nil {
		return err
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		s.seq.Store(int64(toInt(rows[0][0])))
	}
	return nil
}

// ---------- Write operations ----------

// AddTerm upserts a Term node.
func (s *KuzuStore) AddTerm(_ context.Context, term Term) error {
	return s.exec(
		`MERGE (t:Term {id: $id})
		 SET t.name = $name, t.namespace = $ns, t.obsolete = $obsolete`,
		map[string]any{
			"id":       term.ID,
			"name":     term.Name,
			"ns":       term.Namespace,
			"obsolete": term.Obsolete,
		},
	)
}

// AddEdge inserts a LINKS relationship, merging missing endpoints.
func (s *KuzuStore) AddEdge(_ context.Context, edge Edge) error {
	return s.exec(
		`MERGE (a:Term {id: $src})
		 MERGE (b:Term {id: $dst})
		 CREATE (a)-[:LINKS {relation: $rel, weight: $w, weighted: $wd, kb: $kb, seq: $seq}]->(b)`,
		map[string]any{
			"src": edge.Source,
			"dst": edge.Target,
			"rel": edge.Relation,
			"w":   edge.Weight,
			"wd":  edge.Weighted,
			"kb":  edge.KB,
			"seq": s.seq.Add(1),
		},
	)
}

// DeleteKB deletes the LINKS relationships loaded for kb.
func (s *KuzuStore) DeleteKB(_ context.Context, kb string) error {
	return s.exec(
		"MATCH ()-[r:LINKS]->() WHERE r.kb = $kb DELETE r",
		map[string]any{"kb": kb},
	)
}

// ---------- Read operations ----------

// GetTerm retrieves a single Term node by ID, or returns nil if not found.
// Parents are rebuilt from outgoing edges in insertion order.
func (s *KuzuStore) GetTerm(_ context.Context, id string) (*Term, error) {
	rows, err := s.query(
		"MATCH (t:Term {id: $id}) RETURN t.id, t.name, t.namespace, t.obsolete",
		map[string]any{"id": id},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	r := rows[0]
	term := &Term{
		ID:        toString(r[0]),
		Name:      toString(r[1]),
		Namespace: toString(r[2]),
		Obsolete:  toBool(r[3]),
	}
	parents, err := s.termNeighbors(id, DirectionAncestors)
	if err != nil {
		return nil, err
	}
	if len(parents) > 0 {
		term.Parents = parents
	}
	return term, nil
}

// GetAllEdges returns every LINKS relationship in insertion order.
func (s *KuzuStore) GetAllEdges(_ context.Context) ([]Edge, error) {
	rows, err := s.query(
		`MATCH (a:Term)-[r:LINKS]->(b:Term)
		 RETURN a.id, b.id, r.relation, r.weight, r.weighted, r.kb
		 ORDER BY r.seq`,
		nil,
	)
	if err != nil {
		return nil, err
	}
	edges := make([]Edge, 0, len(rows))
	for _, r := range rows {
		edges = append(edges, Edge{
			Source:   toString(r[0]),
			Target:   toString(r[1]),
			Relation: toString(r[2]),
			Weight:   toFloat64(r[3]),
			Weighted: toBool(r[4]),
			KB:       toString(r[5]),
		})
	}
	return edges, nil
}

// ---------- Graph traversal ----------

// GetDependencies performs a BFS over LINKS edges starting from the given
// term. It returns one DependencyChain per reachable term.
func (s *KuzuStore) GetDependencies(_ context.Context, nodeID string, dir Direction, maxDepth int) ([]DependencyChain, error) {
	return walkDependencies(nodeID, maxDepth, func(id string) ([]string, error) {
		return s.termNeighbors(id, dir)
	})
}

// termNeighbors returns immediate neighbors along LINKS edges.
func (s *KuzuStore) termNeighbors(id string, dir Direction) ([]string, error) {
	var cypher string
	switch dir {
	case DirectionAncestors:
		cypher = "MATCH (a:Term {id: $id})-[r:LINKS]->(b:Term) RETURN b.id ORDER BY r.seq"
	case DirectionDescendants:
		cypher = "MATCH (a:Term)-[r:LINKS]->(b:Term {id: $id}) RETURN a.id ORDER BY r.seq"
	default:
		return nil, fmt.Errorf("kuzu: unknown direction: %s", dir)
	}
	rows, err := s.query(cypher, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, toString(r[0]))
	}
	return out, nil
}

// ---------- Stats ----------

// Stats returns term and edge counts.
func (s *KuzuStore) Stats(_ context.Context) (*GraphStats, error) {
	terms, err := s.count("MATCH (t:Term) RETURN count(t)")
	if err != nil {
		return nil, err
	}
	edges, err := s.count("MATCH ()-[r:LINKS]->() RETURN count(r)")
	if err != nil {
		return nil, err
	}
	return &GraphStats{TermCount: terms, EdgeCount: edges}, nil
}

// ---------- Internal helpers ----------

// exec runs a parameterized Cypher statement that produces no result rows.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a parameterized Cypher statement and collects all result rows.
// Each row is a []any slice with values in column order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

// count runs a single-value count query.
func (s *KuzuStore) count(cypher string) (int, error) {
	rows, err := s.query(cypher, nil)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return toInt(rows[0][0]), nil
}

// ---------- Type coercion helpers ----------
// KuzuDB returns typed Go values (int64, float64, bool, string).
// These helpers safely coerce any -> concrete type.

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case int32:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func toFloat64(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

func toBool(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return false
}
