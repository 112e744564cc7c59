// Package usage persists pick counts and pick timestamps per search
// surface, so frequency and recency bonuses survive restarts.
package usage

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mhoffs/typeahead/internal/filter"
)

const (
	// walCheckpointInterval is how often the WAL file is checkpointed
	// to prevent unbounded growth during long-lived sessions.
	walCheckpointInterval = 5 * time.Minute
)

// Stat is one item's stored usage.
type Stat struct {
	UseCount int
	LastUsed time.Time
}

// Use is one recorded pick, for bulk imports.
type Use struct {
	Key string
	At  time.Time
}

// Store is the SQLite-backed usage store. A single writer owns it; the
// connection pool is pinned to one connection.
type Store struct {
	db        *sql.DB
	stopCh    chan struct{}
	stoppedCh chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// Open opens (creating if needed) the usage database at dbPath with WAL
// mode enabled. The caller must Close it.
func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("usage: empty database path")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// modernc.org/sqlite uses _pragma=name(value) syntax
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite handles concurrency better with a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Store{
		db:        db,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}

	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	go s.walCheckpointLoop()

	return s, nil
}

// Close checkpoints and closes the database. Safe to call twice.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		if s.stopCh != nil {
			close(s.stopCh)
			<-s.stoppedCh
		}
		if s.db != nil {
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
			s.closeErr = s.db.Close()
		}
	})
	return s.closeErr
}

// RecordUse counts one pick of key on surface at the given time. The
// stored timestamp never moves backwards, so replaying old picks (a
// history re-import) cannot make an item look stale.
func (s *Store) RecordUse(ctx context.Context, surface, key string, at time.Time) error {
	if key == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO usage_stats (surface, item_key, use_count, last_used_unix_ms)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(surface, item_key) DO UPDATE SET
			use_count = use_count + 1,
			last_used_unix_ms = MAX(last_used_unix_ms, excluded.last_used_unix_ms)
	`, surface, key, at.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to record use: %w", err)
	}
	return nil
}

// RecordUses records picks in bulk inside one transaction. Empty keys
// are skipped. Returns the number of picks recorded.
func (s *Store) RecordUses(ctx context.Context, surface string, uses []Use) (int, error) {
	if len(uses) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO usage_stats (surface, item_key, use_count, last_used_unix_ms)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(surface, item_key) DO UPDATE SET
			use_count = use_count + 1,
			last_used_unix_ms = MAX(last_used_unix_ms, excluded.last_used_unix_ms)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	recorded := 0
	for _, u := range uses {
		if u.Key == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, surface, u.Key, u.At.UnixMilli()); err != nil {
			return 0, fmt.Errorf("failed to record use: %w", err)
		}
		recorded++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return recorded, nil
}

// Stats returns every stored stat for a surface, keyed by item key.
func (s *Store) Stats(ctx context.Context, surface string) (map[string]Stat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT item_key, use_count, last_used_unix_ms
		FROM usage_stats
		WHERE surface = ?
	`, surface)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]Stat)
	for rows.Next() {
		var key string
		var count int
		var lastMs int64
		if err := rows.Scan(&key, &count, &lastMs); err != nil {
			return nil, fmt.Errorf("failed to scan stat: %w", err)
		}
		stats[key] = Stat{UseCount: count, LastUsed: time.UnixMilli(lastMs)}
	}
	return stats, rows.Err()
}

// Annotate copies stored usage onto matching candidates in place,
// keying file-like candidates by path and everything else by text.
// Candidates without a stored stat are left untouched.
func (s *Store) Annotate(ctx context.Context, surface string, cands []filter.Candidate) error {
	if len(cands) == 0 {
		return nil
	}
	stats, err := s.Stats(ctx, surface)
	if err != nil {
		return err
	}
	for i := range cands {
		key := cands[i].Path
		if key == "" {
			key = cands[i].Text
		}
		if st, ok := stats[key]; ok {
			cands[i].UseCount = st.UseCount
			cands[i].LastUsed = st.LastUsed
		}
	}
	return nil
}

// Recent returns a surface's items as candidates, most recently used
// first. This is the load path for the history surface, whose engine
// relies on newest-first input order.
func (s *Store) Recent(ctx context.Context, surface string, limit int) ([]filter.Candidate, error) {
	if limit <= 0 {
		limit = filter.DefaultMaxScan
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT item_key, use_count, last_used_unix_ms
		FROM usage_stats
		WHERE surface = ?
		ORDER BY last_used_unix_ms DESC, item_key ASC
		LIMIT ?
	`, surface, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent items: %w", err)
	}
	defer rows.Close()

	var cands []filter.Candidate
	for rows.Next() {
		var key string
		var count int
		var lastMs int64
		if err := rows.Scan(&key, &count, &lastMs); err != nil {
			return nil, fmt.Errorf("failed to scan recent item: %w", err)
		}
		cands = append(cands, filter.Candidate{
			Text:     key,
			UseCount: count,
			LastUsed: time.UnixMilli(lastMs),
		})
	}
	return cands, rows.Err()
}

// Prune deletes a surface's entries last used before cutoff, returning
// how many were removed.
func (s *Store) Prune(ctx context.Context, surface string, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM usage_stats
		WHERE surface = ? AND last_used_unix_ms < ?
	`, surface, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to prune stats: %w", err)
	}
	return res.RowsAffected()
}

// Reset drops every entry for a surface, returning how many were
// removed. Bulk imports call it first so the store mirrors the import
// source instead of accumulating across runs.
func (s *Store) Reset(ctx context.Context, surface string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM usage_stats
		WHERE surface = ?
	`, surface)
	if err != nil {
		return 0, fmt.Errorf("failed to reset surface: %w", err)
	}
	return res.RowsAffected()
}

// DB returns the underlying database connection for advanced use cases.
func (s *Store) DB() *sql.DB {
	return s.db
}

// walCheckpointLoop periodically checkpoints the WAL file to prevent
// unbounded growth during long-lived sessions.
func (s *Store) walCheckpointLoop() {
	defer close(s.stoppedCh)

	ticker := time.NewTicker(walCheckpointInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			// TRUNCATE mode: checkpoint and truncate WAL to zero size
			if _, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
				log.Printf("WAL checkpoint failed: %v", err)
			}
		}
	}
}

// migrate brings the schema up to date.
func (s *Store) migrate(ctx context.Context) error {
	currentVersion := 0
	row := s.db.QueryRowContext(ctx, `
		SELECT version FROM schema_meta ORDER BY version DESC LIMIT 1
	`)
	if err := row.Scan(&currentVersion); err != nil {
		if err != sql.ErrNoRows && !isTableNotFoundError(err) {
			return fmt.Errorf("failed to read schema version: %w", err)
		}
		currentVersion = 0
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{version: 1, sql: migrationV1},
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.ExecContext(ctx, m.sql); err != nil {
			return fmt.Errorf("migration v%d failed: %w", m.version, err)
		}
		_, err := s.db.ExecContext(ctx, `
			INSERT OR REPLACE INTO schema_meta (version, applied_at_unix_ms)
			VALUES (?, ?)
		`, m.version, time.Now().UnixMilli())
		if err != nil {
			return fmt.Errorf("failed to record migration v%d: %w", m.version, err)
		}
	}

	return nil
}

func isTableNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "no such table")
}

// migrationV1 creates the initial schema.
const migrationV1 = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_meta (
  version INTEGER PRIMARY KEY,
  applied_at_unix_ms INTEGER NOT NULL
);

-- Per-surface usage stats
CREATE TABLE IF NOT EXISTS usage_stats (
  surface TEXT NOT NULL,
  item_key TEXT NOT NULL,
  use_count INTEGER NOT NULL DEFAULT 0,
  last_used_unix_ms INTEGER NOT NULL,
  PRIMARY KEY (surface, item_key)
);

CREATE INDEX IF NOT EXISTS idx_usage_surface_last
  ON usage_stats(surface, last_used_unix_ms DESC);
`
