// Package history archives comparison runs in SQLite so results can be
// tracked across benchmark sessions.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/avickers/gridbench/internal/compare"
)

//go:embed schema.sql
var schemaSQL string

// Store is a SQLite-backed archive of comparison runs.
type Store struct {
	db *sql.DB
}

// Open creates or opens the history database at path and applies the
// schema. SQLite allows one writer, so the pool is pinned to a single
// connection.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()

		return nil, fmt.Errorf("connect history db: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()

			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()

		return nil, fmt.Errorf("apply history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record archives one comparison report, one row per test, under runID.
func (s *Store) Record(ctx context.Context, runID string, report *compare.Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history tx: %w", err)
	}
	defer tx.Rollback()

	const insert = `INSERT INTO comparisons
		(run_id, created_at, test, package_a, package_b,
		 elapsed_a_ms, elapsed_b_ms, speedup, faster)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	for _, row := range report.Summary {
		_, err := tx.ExecContext(ctx, insert,
			runID,
			report.Timestamp,
			row.Test,
			report.PackageA,
			report.PackageB,
			nullable(row.ElapsedAMs),
			nullable(row.ElapsedBMs),
			nullable(row.Speedup),
			row.Faster,
		)
		if err != nil {
			return fmt.Errorf("insert comparison row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit history tx: %w", err)
	}

	return nil
}

// Entry is one archived per-test comparison row.
type Entry struct {
	RunID      string
	CreatedAt  string
	Test       string
	PackageA   string
	PackageB   string
	ElapsedAMs *float64
	ElapsedBMs *float64
	Speedup    *float64
	Faster     string
}

// Recent returns up to limit archived rows, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	const query = `SELECT run_id, created_at, test, package_a, package_b,
		elapsed_a_ms, elapsed_b_ms, speedup, faster
		FROM comparisons ORDER BY id DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry

	for rows.Next() {
		var (
			entry    Entry
			elapsedA sql.NullFloat64
			elapsedB sql.NullFloat64
			speedup  sql.NullFloat64
		)

		err := rows.Scan(
			&entry.RunID,
			&entry.CreatedAt,
			&entry.Test,
			&entry.PackageA,
			&entry.PackageB,
			&elapsedA,
			&elapsedB,
			&speedup,
			&entry.Faster,
		)
		if err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}

		entry.ElapsedAMs = fromNull(elapsedA)
		entry.ElapsedBMs = fromNull(elapsedB)
		entry.Speedup = fromNull(speedup)

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}

	return entries, nil
}

func nullable(v *float64) any {
	if v == nil {
		return nil
	}

	return *v
}

func fromNull(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}

	f := v.Float64

	return &f
}
