package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"anggaran/internal/core"
)

// SourceDB is a migrated SQLite database holding the anggaran_2025 table.
type SourceDB struct {
	db   *sql.DB
	path string
}

// OpenSourceDB creates (if needed) and migrates the database at path.
func OpenSourceDB(ctx context.Context, path string) (*SourceDB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	if err := RunMigrations(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &SourceDB{db: db, path: path}, nil
}

func (s *SourceDB) Path() string { return s.path }

// DB exposes the handle for ad-hoc statements such as test fixtures.
func (s *SourceDB) DB() *sql.DB { return s.db }

func (s *SourceDB) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Seed replaces the table contents with rows. Invalid amounts are stored as
// NULL. It returns the number of rows written.
func (s *SourceDB) Seed(ctx context.Context, rows []core.Department) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM anggaran_2025`); err != nil {
		return 0, fmt.Errorf("clear table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO anggaran_2025 (kode_wilayah, nama_skpd, anggaran) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		var amount any
		if r.Amount.Valid() {
			amount = r.Amount.String()
		}
		if _, err := stmt.ExecContext(ctx, r.Code, r.Name, amount); err != nil {
			return 0, fmt.Errorf("insert %s: %w", r.Code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed: %w", err)
	}
	return len(rows), nil
}

// Count returns the number of rows in the table.
func (s *SourceDB) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM anggaran_2025`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	return n, nil
}
