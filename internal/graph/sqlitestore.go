//go:build cgo

package graph

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"crawshaw.io/sqlite"
)

// SQLiteStore implements Store on a single SQLite file. It needs cgo for the
// bundled SQLite library. The connection is not safe for concurrent use, so
// every call holds mu.
type SQLiteStore struct {
	mu     sync.Mutex
	conn   *sqlite.Conn
	dbPath string
}

// Compile-time check that SQLiteStore satisfies Store.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite: create parent directory: %w", err)
	}
	conn, err := sqlite.OpenConn(dbPath, sqlite.SQLITE_OPEN_CREATE|sqlite.SQLITE_OPEN_READWRITE)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open database: %w", err)
	}
	return &SQLiteStore{conn: conn, dbPath: dbPath}, nil
}

// Close closes the connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

var sqliteDDL = []string{
	`CREATE TABLE IF NOT EXISTS terms (
		id        TEXT PRIMARY KEY,
		name      TEXT NOT NULL DEFAULT '',
		namespace TEXT NOT NULL DEFAULT '',
		obsolete  INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS edges (
		seq      INTEGER PRIMARY KEY AUTOINCREMENT,
		source   TEXT NOT NULL,
		target   TEXT NOT NULL,
		relation TEXT NOT NULL DEFAULT '',
		weight   REAL NOT NULL,
		weighted INTEGER NOT NULL DEFAULT 0,
		kb       TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS edges_source ON edges(source)`,
	`CREATE INDEX IF NOT EXISTS edges_target ON edges(target)`,
	`CREATE INDEX IF NOT EXISTS edges_kb ON edges(kb)`,
}

// InitSchema creates the tables if they do not exist.
func (s *SQLiteStore) InitSchema(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ddl := range sqliteDDL {
		if err := s.exec(ddl, nil); err != nil {
			return fmt.Errorf("sqlite: init schema: %w", err)
		}
	}
	return nil
}

// AddTerm inserts or updates a term.
func (s *SQLiteStore) AddTerm(_ context.Context, term Term) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exec(`
	INSERT INTO terms (id, name, namespace, obsolete) VALUES (?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		name = excluded.name,
		namespace = excluded.namespace,
		obsolete = excluded.obsolete`,
		func(stmt *sqlite.Stmt) {
			stmt.BindText(1, term.ID)
			stmt.BindText(2, term.Name)
			stmt.BindText(3, term.Namespace)
			stmt.BindBool(4, term.Obsolete)
		})
}

// AddEdge appends an edge, creating bare terms for unknown endpoints.
func (s *SQLiteStore) AddEdge(_ context.Context, edge Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range []string{edge.Source, edge.Target} {
		err := s.exec(`INSERT OR IGNORE INTO terms (id) VALUES (?)`, func(stmt *sqlite.Stmt) {
			stmt.BindText(1, id)
		})
		if err != nil {
			return err
		}
	}
	return s.exec(`
	INSERT INTO edges (source, target, relation, weight, weighted, kb)
	VALUES (?, ?, ?, ?, ?, ?)`,
		func(stmt *sqlite.Stmt) {
			stmt.BindText(1, edge.Source)
			stmt.BindText(2, edge.Target)
			stmt.BindText(3, edge.Relation)
			stmt.BindFloat(4, edge.Weight)
			stmt.BindBool(5, edge.Weighted)
			stmt.BindText(6, edge.KB)
		})
}

// DeleteKB deletes the edges loaded for kb.
func (s *SQLiteStore) DeleteKB(_ context.Context, kb string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exec(`DELETE FROM edges WHERE kb = ?`, func(stmt *sqlite.Stmt) {
		stmt.BindText(1, kb)
	})
}

// GetTerm returns the term with the given ID, or nil if not found. Parents
// are rebuilt from outgoing edges in insertion order.
func (s *SQLiteStore) GetTerm(_ context.Context, id string) (*Term, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var term *Term
	err := s.query(`SELECT id, name, namespace, obsolete FROM terms WHERE id = ?`,
		func(stmt *sqlite.Stmt) { stmt.BindText(1, id) },
		func(stmt *sqlite.Stmt) {
			term = &Term{
				ID:        stmt.ColumnText(0),
				Name:      stmt.ColumnText(1),
				Namespace: stmt.ColumnText(2),
				Obsolete:  stmt.ColumnInt(3) != 0,
			}
		})
	if err != nil || term == nil {
		return nil, err
	}

	parents, err := s.neighbors(id, DirectionAncestors)
	if err != nil {
		return nil, err
	}
	if len(parents) > 0 {
		term.Parents = parents
	}
	return term, nil
}

// GetAllEdges returns every edge in insertion order.
func (s *SQLiteStore) GetAllEdges(_ context.Context) ([]Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var edges []Edge
	err := s.query(`SELECT source, target, relation, weight, weighted, kb FROM edges ORDER BY seq`, nil,
		func(stmt *sqlite.Stmt) {
			edges = append(edges, Edge{
				Source:   stmt.ColumnText(0),
				Target:   stmt.ColumnText(1),
				Relation: stmt.ColumnText(2),
				Weight:   stmt.ColumnFloat(3),
				Weighted: stmt.ColumnInt(4) != 0,
				KB:       stmt.ColumnText(5),
			})
		})
	if err != nil {
		return nil, err
	}
	if edges == nil {
		edges = []Edge{}
	}
	return edges, nil
}

// GetDependencies performs a BFS over edges starting from the given term.
func (s *SQLiteStore) GetDependencies(_ context.Context, nodeID string, dir Direction, maxDepth int) ([]DependencyChain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return walkDependencies(nodeID, maxDepth, func(id string) ([]string, error) {
		return s.neighbors(id, dir)
	})
}

// Stats returns term and edge counts.
func (s *SQLiteStore) Stats(_ context.Context) (*GraphStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := &GraphStats{}
	err := s.query(`SELECT (SELECT count(*) FROM terms), (SELECT count(*) FROM edges)`, nil,
		func(stmt *sqlite.Stmt) {
			stats.TermCount = stmt.ColumnInt(0)
			stats.EdgeCount = stmt.ColumnInt(1)
		})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// neighbors returns immediate neighbors of id. Callers hold mu.
func (s *SQLiteStore) neighbors(id string, dir Direction) ([]string, error) {
	var q string
	switch dir {
	case DirectionAncestors:
		q = `SELECT target FROM edges WHERE source = ? ORDER BY seq`
	case DirectionDescendants:
		q = `SELECT source FROM edges WHERE target = ? ORDER BY seq`
	default:
		return nil, fmt.Errorf("sqlite: unknown direction: %s", dir)
	}
	var out []string
	err := s.query(q,
		func(stmt *sqlite.Stmt) { stmt.BindText(1, id) },
		func(stmt *sqlite.Stmt) { out = append(out, stmt.ColumnText(0)) })
	return out, err
}

// exec runs a statement that returns no rows. Callers hold mu.
func (s *SQLiteStore) exec(query string, bind func(*sqlite.Stmt)) error {
	return s.query(query, bind, nil)
}

// query prepares query, applies bind and calls row for each result row.
// Callers hold mu.
func (s *SQLiteStore) query(query string, bind func(*sqlite.Stmt), row func(*sqlite.Stmt)) error {
	stmt, err := s.conn.Prepare(query)
	if err != nil {
		return fmt.Errorf("sqlite: prepare: %w", err)
	}
	defer func() {
		stmt.Reset()
		stmt.ClearBindings()
	}()

	if bind != nil {
		bind(stmt)
	}
	for {
		hasRow, err := stmt.Step()
		if err != nil {
			return fmt.Errorf("sqlite: step: %w", err)
		}
		if !hasRow {
			return nil
		}
		if row != nil {
			row(stmt)
		}
	}
}
