package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jwulff/glyphs/internal/capture"

	_ "modernc.org/sqlite"
)

const schema = `
	CREATE TABLE IF NOT EXISTS saves (
		id       INTEGER PRIMARY KEY AUTOINCREMENT,
		category TEXT    NOT NULL,
		idx      INTEGER NOT NULL,
		path     TEXT    NOT NULL,
		size     INTEGER NOT NULL,
		savedAt  REAL    NOT NULL
	);
	CREATE INDEX IF NOT EXISTS saves_category ON saves(category, savedAt);
`

// Store is the SQLite-backed journal.
type Store struct {
	db *sql.DB
}

// Open opens or creates the journal at path with WAL enabled.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping journal: %w", err)
	}

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record implements capture.Recorder.
func (s *Store) Record(a capture.Artifact) error {
	_, err := s.db.Exec(`
		INSERT INTO saves (category, idx, path, size, savedAt)
		VALUES (?, ?, ?, ?, ?)
	`, a.Category, a.Index, a.Path, a.Size, unixFromTime(a.SavedAt))
	if err != nil {
		return fmt.Errorf("insert save: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. An empty category
// matches all categories.
func (s *Store) Recent(category string, limit int) ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT id, category, idx, path, size, savedAt
		FROM saves
		WHERE ? = '' OR category = ?
		ORDER BY savedAt DESC, id DESC
		LIMIT ?
	`, category, category, limit)
	if err != nil {
		return nil, fmt.Errorf("query saves: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var savedAt float64
		if err := rows.Scan(&e.ID, &e.Category, &e.Index, &e.Path, &e.Size, &savedAt); err != nil {
			return nil, fmt.Errorf("scan save: %w", err)
		}
		e.SavedAt = timeFromUnix(savedAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Stats returns per-category save counts ordered by category.
func (s *Store) Stats() ([]CategoryStat, error) {
	rows, err := s.db.Query(`
		SELECT category, COUNT(*), MAX(savedAt)
		FROM saves
		GROUP BY category
		ORDER BY category ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	var stats []CategoryStat
	for rows.Next() {
		var st CategoryStat
		var last float64
		if err := rows.Scan(&st.Category, &st.Saves, &last); err != nil {
			return nil, fmt.Errorf("scan stat: %w", err)
		}
		st.LastSaved = timeFromUnix(last)
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

var _ capture.Recorder = (*Store)(nil)

func unixFromTime(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func timeFromUnix(ts float64) time.Time {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}
