// internal/repository/sqlite/entry_repo.go
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/stepsurvey/steps-survey/internal/domain"
	"github.com/stepsurvey/steps-survey/internal/repository"
)

const tableName = "entries"

const schema = `
CREATE TABLE IF NOT EXISTS entries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	date TEXT NOT NULL,
	steps INTEGER NOT NULL CHECK (steps >= 0),
	energy INTEGER NOT NULL CHECK (energy BETWEEN 1 AND 10),
	notes TEXT NOT NULL DEFAULT '',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_entries_date ON entries(date);
`

// sqliteEntryRepository implements repository.EntryRepository on one table.
// The autoincrement id gives append order.
type sqliteEntryRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens (creating if needed) the database file and its schema.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return db, nil
}

// NewSQLiteEntryRepository wraps an opened database.
func NewSQLiteEntryRepository(db *sql.DB, logger *slog.Logger) repository.EntryRepository {
	return &sqliteEntryRepository{db: db, log: logger}
}

func (r *sqliteEntryRepository) Append(ctx context.Context, entry domain.Entry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO entries (date, steps, energy, notes) VALUES (?, ?, ?, ?)`,
		entry.DateString(), entry.Steps, entry.Energy, entry.Notes)
	if err != nil {
		return &repository.PersistenceError{Op: "append", Key: tableName, Err: err}
	}
	return nil
}

func (r *sqliteEntryRepository) Load(ctx context.Context) (domain.EntryTable, repository.LoadReport, error) {
	var report repository.LoadReport

	rows, err := r.db.QueryContext(ctx, `SELECT date, steps, energy, notes FROM entries ORDER BY id`)
	if err != nil {
		return nil, report, err
	}
	defer rows.Close()

	var table domain.EntryTable
	for rows.Next() {
		var (
			date  string
			entry domain.Entry
		)
		if err := rows.Scan(&date, &entry.Steps, &entry.Energy, &entry.Notes); err != nil {
			return nil, report, err
		}
		report.Rows++
		d, err := domain.ParseDate(date)
		if err != nil {
			report.DroppedDate++
			continue
		}
		entry.Date = d
		table = append(table, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, report, err
	}
	if report.Rows == 0 {
		return nil, report, repository.ErrEmptyStore
	}
	if !report.Clean() {
		r.log.Warn("entries table has rows with bad dates", "dropped", report.DroppedDate)
	}
	return table, report, nil
}
