// Package sqlite is a persistent flat vector store on top of SQLite.
// Search is an exact scan, which suits corpora of tens to a few thousand entries.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"librarian/internal/domain"
	"librarian/internal/vectorstore"
)

const schema = `
CREATE TABLE IF NOT EXISTS entries (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	document   TEXT NOT NULL,
	embedding  BLOB NOT NULL,
	dimension  INTEGER NOT NULL,
	created_at TEXT NOT NULL
);
`

// Storage implements domain.VectorStore in a single SQLite file.
type Storage struct {
	mu        sync.RWMutex
	db        *sql.DB
	path      string
	dimension int
}

// Open opens or creates the index database at path.
func Open(path string) (*Storage, error) {
	if path == "" {
		return nil, errors.New("sqlite store: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open index database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping index database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index schema: %w", err)
	}
	return &Storage{db: db, path: path}, nil
}

// Path returns the database file location.
func (s *Storage) Path() string { return s.path }

func (s *Storage) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	var stored sql.NullInt64
	err := s.db.QueryRowContext(ctx, "SELECT dimension FROM entries LIMIT 1").Scan(&stored)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read stored dimension: %w", err)
	}
	if stored.Valid && int(stored.Int64) != dimension {
		return fmt.Errorf("index holds %d-dim vectors, got %d", stored.Int64, dimension)
	}
	s.mu.Lock()
	s.dimension = dimension
	s.mu.Unlock()
	return nil
}

func (s *Storage) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries").Scan(&n); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

func (s *Storage) Upsert(ctx context.Context, entries []domain.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO entries (id, title, document, embedding, dimension, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, e := range entries {
		if e.ID == "" {
			return errors.New("entry without id")
		}
		if s.dimension != 0 && len(e.Embedding) != s.dimension {
			return fmt.Errorf("entry %s: vector dimension mismatch", e.ID)
		}
		if _, err := stmt.ExecContext(ctx, e.ID, e.Metadata.Title, e.Document, encodeVector(e.Embedding), len(e.Embedding), now); err != nil {
			return fmt.Errorf("upsert entry %s: %w", e.ID, err)
		}
	}
	return tx.Commit()
}

func (s *Storage) Search(ctx context.Context, vector []float64, topK int) ([]domain.Hit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, title, document, embedding FROM entries ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var all []domain.IndexEntry
	for rows.Next() {
		var e domain.IndexEntry
		var blob []byte
		if err := rows.Scan(&e.ID, &e.Metadata.Title, &e.Document, &blob); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		v, err := decodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", e.ID, err)
		}
		e.Embedding = v
		all = append(all, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return vectorstore.Nearest(all, vector, topK), nil
}

func (s *Storage) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, "DELETE FROM entries")
	return err
}

func (s *Storage) Close() error { return s.db.Close() }

// encodeVector packs float64 values little-endian.
func encodeVector(v []float64) []byte {
	buf := make([]byte, 8*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(x))
	}
	return buf
}

func decodeVector(b []byte) ([]float64, error) {
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("corrupt vector blob of %d bytes", len(b))
	}
	v := make([]float64, len(b)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return v, nil
}

var _ domain.VectorStore = (*Storage)(nil)
