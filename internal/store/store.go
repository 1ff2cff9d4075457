// Package store persists projection results in a single SQLite file.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pv-sizing/internal/finance"
	"pv-sizing/internal/log"
	"pv-sizing/internal/sizing"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("projection not found")

const schema = `
CREATE TABLE IF NOT EXISTS projections (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMP NOT NULL,
	panels           INTEGER NOT NULL,
	summary          TEXT NOT NULL,
	cashflow         TEXT NOT NULL,
	daily_load       TEXT NOT NULL,
	daily_production TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_projections_created_at ON projections(created_at);
`

// Record is one stored projection.
type Record struct {
	ID              string         `json:"id"`
	Name            string         `json:"name,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	Panels          int            `json:"panels"`
	Summary         sizing.Summary `json:"summary"`
	Cashflow        []finance.Row  `json:"cashflow,omitempty"`
	DailyLoad       []float64      `json:"daily_load,omitempty"`
	DailyProduction []float64      `json:"daily_production,omitempty"`
}

// Store is safe for concurrent use.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (and migrates) the database at path. ":memory:" gives a
// private in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// One connection keeps an in-memory database alive and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	log.Infof("store: using %s", path)
	return &Store{db: db, path: path}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// NewRecord captures the stored view of a result.
func NewRecord(name string, panels int, res *sizing.Result) Record {
	r := Record{
		Name:    name,
		Panels:  panels,
		Summary: res.Summary(),
	}
	if res.Projection != nil {
		r.Cashflow = res.Projection.Rows
	}
	r.DailyLoad, r.DailyProduction = res.DailyProfiles()
	return r
}

// Save stores r under a fresh ID and returns the stored record.
func (s *Store) Save(ctx context.Context, r Record) (Record, error) {
	r.ID = uuid.New().String()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	summary, err := json.Marshal(r.Summary)
	if err != nil {
		return Record{}, fmt.Errorf("encode summary: %w", err)
	}
	cashflow, err := json.Marshal(r.Cashflow)
	if err != nil {
		return Record{}, fmt.Errorf("encode cashflow: %w", err)
	}
	load, err := json.Marshal(r.DailyLoad)
	if err != nil {
		return Record{}, fmt.Errorf("encode daily load: %w", err)
	}
	prod, err := json.Marshal(r.DailyProduction)
	if err != nil {
		return Record{}, fmt.Errorf("encode daily production: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO projections (id, name, created_at, panels, summary, cashflow, daily_load, daily_production)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Name, r.CreatedAt, r.Panels, string(summary), string(cashflow), string(load), string(prod))
	if err != nil {
		return Record{}, fmt.Errorf("failed to insert projection: %w", err)
	}
	return r, nil
}

// Get loads a projection by ID.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, created_at, panels, summary, cashflow, daily_load, daily_production
		FROM projections WHERE id = ?`, id)
	r, err := scanRecord(row.Scan, true)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return r, err
}

// List returns up to limit projections, newest first, without their
// cashflow tables and daily profiles. A limit <= 0 means no limit.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, created_at, panels, summary, '[]', '[]', '[]'
		FROM projections ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query projections: %w", err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		r, err := scanRecord(rows.Scan, false)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Delete removes a projection.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projections WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete projection: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return nil
}

func scanRecord(scan func(dest ...any) error, full bool) (Record, error) {
	var r Record
	var summary, cashflow, load, prod string
	if err := scan(&r.ID, &r.Name, &r.CreatedAt, &r.Panels, &summary, &cashflow, &load, &prod); err != nil {
		return Record{}, err
	}
	if err := json.Unmarshal([]byte(summary), &r.Summary); err != nil {
		return Record{}, fmt.Errorf("decode summary of %s: %w", r.ID, err)
	}
	if !full {
		return r, nil
	}
	if err := json.Unmarshal([]byte(cashflow), &r.Cashflow); err != nil {
		return Record{}, fmt.Errorf("decode cashflow of %s: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(load), &r.DailyLoad); err != nil {
		return Record{}, fmt.Errorf("decode daily load of %s: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(prod), &r.DailyProduction); err != nil {
		return Record{}, fmt.Errorf("decode daily production of %s: %w", r.ID, err)
	}
	return r, nil
}
