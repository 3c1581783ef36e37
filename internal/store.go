package internal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// Two relations: memories and the adjacency table for the implicit
// knowledge graph. Edge identity is (source, target, relation), which
// makes auto-link inserts naturally idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS memories (
	id               TEXT PRIMARY KEY,
	type             TEXT NOT NULL,
	content          TEXT NOT NULL,
	embedding        BLOB,
	entities         TEXT NOT NULL DEFAULT '[]',
	importance       REAL NOT NULL,
	created_at       INTEGER NOT NULL,
	last_accessed_at INTEGER NOT NULL,
	access_count     INTEGER NOT NULL DEFAULT 0,
	status           TEXT NOT NULL DEFAULT 'active'
);
CREATE INDEX IF NOT EXISTS idx_memories_status ON memories(status);
CREATE INDEX IF NOT EXISTS idx_memories_created ON memories(created_at DESC);

CREATE TABLE IF NOT EXISTS edges (
	source_id      TEXT NOT NULL,
	target_id      TEXT NOT NULL,
	relation       TEXT NOT NULL DEFAULT 'relates_to',
	weight         REAL NOT NULL DEFAULT 1.0,
	auto_generated INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (source_id, target_id, relation)
);
CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source_id);
CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target_id);
`

// Store is the durable persistence layer. WAL mode gives one writer
// plus concurrent readers; contended writes wait behind busy_timeout
// instead of failing immediately.
type Store struct {
	db   *sql.DB
	path string
}

func OpenStore(path string) (*Store, error) {
	dsn := "file:" + path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=busy_timeout(10000)" +
		"&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Insert(ctx context.Context, m *Memory) error {
	entities, err := json.Marshal(m.Entities)
	if err != nil {
		return fmt.Errorf("encode entities: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO memories
			(id, type, content, embedding, entities, importance,
			 created_at, last_accessed_at, access_count, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, string(m.Type), m.Content, encodeVector(m.Embedding),
		string(entities), m.Importance,
		m.CreatedAt.UnixMilli(), m.LastAccessedAt.UnixMilli(),
		m.AccessCount, string(m.Status),
	)
	if err != nil {
		return fmt.Errorf("insert memory: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*Memory, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, type, content, embedding, entities, importance,
		       created_at, last_accessed_at, access_count, status
		FROM memories WHERE id = ?`, id)

	m, err := scanMemory(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get memory: %w", err)
	}
	return m, nil
}

// UpdateAccess bumps the access counter and refreshes the last-access
// timestamp in a single statement.
func (s *Store) UpdateAccess(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE memories
		SET access_count = access_count + 1, last_accessed_at = ?
		WHERE id = ?`,
		time.Now().UTC().UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("update access: %w", err)
	}
	return requireRow(res)
}

func (s *Store) SetStatus(ctx context.Context, id string, status MemoryStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE memories SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	return requireRow(res)
}

func (s *Store) SetType(ctx context.Context, id string, typ MemoryType) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE memories SET type = ? WHERE id = ?`, string(typ), id)
	if err != nil {
		return fmt.Errorf("set type: %w", err)
	}
	return requireRow(res)
}

// Scan returns every memory with the given status, oldest first.
func (s *Store) Scan(ctx context.Context, status MemoryStatus) ([]*Memory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, content, embedding, entities, importance,
		       created_at, last_accessed_at, access_count, status
		FROM memories WHERE status = ? ORDER BY created_at ASC`,
		string(status))
	if err != nil {
		return nil, fmt.Errorf("scan memories: %w", err)
	}
	defer rows.Close()

	return collectMemories(rows)
}

// Timeline returns active memories most-recent-first, optionally
// filtered by entity and creation cutoff.
func (s *Store) Timeline(ctx context.Context, entity string, since time.Time) ([]*Memory, error) {
	query := `
		SELECT id, type, content, embedding, entities, importance,
		       created_at, last_accessed_at, access_count, status
		FROM memories WHERE status = ?`
	args := []any{string(StatusActive)}

	if !since.IsZero() {
		query += ` AND created_at >= ?`
		args = append(args, since.UnixMilli())
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("timeline query: %w", err)
	}
	defer rows.Close()

	memories, err := collectMemories(rows)
	if err != nil {
		return nil, err
	}
	if entity == "" {
		return memories, nil
	}

	// Entities live as a JSON array column; exact-match filtering
	// happens here rather than with LIKE to avoid substring false hits.
	filtered := memories[:0]
	for _, m := range memories {
		for _, e := range m.Entities {
			if e == entity {
				filtered = append(filtered, m)
				break
			}
		}
	}
	return filtered, nil
}

// InsertEdge stores an edge, reporting whether a new row was created.
// Re-inserting the same (source, target, relation) is a no-op.
func (s *Store) InsertEdge(ctx context.Context, e Edge) (bool, error) {
	auto := 0
	if e.AutoGenerated {
		auto = 1
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO edges (source_id, target_id, relation, weight, auto_generated)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (source_id, target_id, relation) DO NOTHING`,
		e.SourceID, e.TargetID, e.Relation, e.Weight, auto)
	if err != nil {
		return false, fmt.Errorf("insert edge: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert edge: %w", err)
	}
	return n > 0, nil
}

// EdgesFor returns edges touching id from either side.
func (s *Store) EdgesFor(ctx context.Context, id string) ([]Edge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source_id, target_id, relation, weight, auto_generated
		FROM edges WHERE source_id = ? OR target_id = ?`, id, id)
	if err != nil {
		return nil, fmt.Errorf("edges for %s: %w", id, err)
	}
	defer rows.Close()

	var edges []Edge
	for rows.Next() {
		var e Edge
		var auto int
		if err := rows.Scan(&e.SourceID, &e.TargetID, &e.Relation, &e.Weight, &auto); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		e.AutoGenerated = auto != 0
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

func (s *Store) AllEdges(ctx context.Context) ([]Edge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source_id, target_id, relation, weight, auto_generated
		FROM edges ORDER BY source_id, target_id`)
	if err != nil {
		return nil, fmt.Errorf("all edges: %w", err)
	}
	defer rows.Close()

	var edges []Edge
	for rows.Next() {
		var e Edge
		var auto int
		if err := rows.Scan(&e.SourceID, &e.TargetID, &e.Relation, &e.Weight, &auto); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		e.AutoGenerated = auto != 0
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

func (s *Store) DeleteEdge(ctx context.Context, sourceID, targetID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM edges WHERE source_id = ? AND target_id = ?`,
		sourceID, targetID)
	if err != nil {
		return fmt.Errorf("delete edge: %w", err)
	}
	return nil
}

// CleanupEdges removes edges whose source or target has decayed and
// returns the number removed. Graph hygiene for reflection.
func (s *Store) CleanupEdges(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM edges WHERE source_id IN
			(SELECT id FROM memories WHERE status = 'decayed')
		OR target_id IN
			(SELECT id FROM memories WHERE status = 'decayed')`)
	if err != nil {
		return 0, fmt.Errorf("cleanup edges: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cleanup edges: %w", err)
	}
	return int(n), nil
}

type StoreCounts struct {
	Total    int
	Active   int
	Decayed  int
	Episodic int
	Semantic int
}

func (s *Store) Counts(ctx context.Context) (StoreCounts, error) {
	var c StoreCounts
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(status = 'active'), 0),
		       COALESCE(SUM(status = 'decayed'), 0),
		       COALESCE(SUM(type = 'episodic'), 0),
		       COALESCE(SUM(type = 'semantic'), 0)
		FROM memories`)
	if err := row.Scan(&c.Total, &c.Active, &c.Decayed, &c.Episodic, &c.Semantic); err != nil {
		return c, fmt.Errorf("count memories: %w", err)
	}
	return c, nil
}

// ImportanceHistogram buckets active memories into ten equal
// importance ranges.
func (s *Store) ImportanceHistogram(ctx context.Context) ([10]int, error) {
	var hist [10]int
	rows, err := s.db.QueryContext(ctx,
		`SELECT importance FROM memories WHERE status = 'active'`)
	if err != nil {
		return hist, fmt.Errorf("histogram query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var imp float64
		if err := rows.Scan(&imp); err != nil {
			return hist, fmt.Errorf("scan importance: %w", err)
		}
		bucket := int(imp * 10)
		if bucket > 9 {
			bucket = 9
		}
		if bucket < 0 {
			bucket = 0
		}
		hist[bucket]++
	}
	return hist, rows.Err()
}

// SizeBytes reports the on-disk size of the database file.
func (s *Store) SizeBytes() int64 {
	info, err := os.Stat(s.path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// All returns every memory regardless of status, oldest first. Used by
// export.
func (s *Store) All(ctx context.Context) ([]*Memory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, content, embedding, entities, importance,
		       created_at, last_accessed_at, access_count, status
		FROM memories ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("scan all: %w", err)
	}
	defer rows.Close()

	return collectMemories(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMemory(row rowScanner) (*Memory, error) {
	var (
		m          Memory
		typ        string
		status     string
		embedding  []byte
		entities   string
		createdAt  int64
		accessedAt int64
	)
	err := row.Scan(&m.ID, &typ, &m.Content, &embedding, &entities,
		&m.Importance, &createdAt, &accessedAt, &m.AccessCount, &status)
	if err != nil {
		return nil, err
	}

	m.Type = MemoryType(typ)
	m.Status = MemoryStatus(status)
	m.Embedding = decodeVector(embedding)
	m.CreatedAt = time.UnixMilli(createdAt).UTC()
	m.LastAccessedAt = time.UnixMilli(accessedAt).UTC()

	if err := json.Unmarshal([]byte(entities), &m.Entities); err != nil {
		return nil, fmt.Errorf("decode entities: %w", err)
	}
	return &m, nil
}

func collectMemories(rows *sql.Rows) ([]*Memory, error) {
	var memories []*Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan memory: %w", err)
		}
		memories = append(memories, m)
	}
	return memories, rows.Err()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
