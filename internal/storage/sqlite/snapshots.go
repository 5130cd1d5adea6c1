// Package sqlite persists level comparison snapshots and point sample
// records in a SQLite database.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wxslice/wxslice/internal/reconcile"
	"github.com/wxslice/wxslice/pkg/logger"
	_ "modernc.org/sqlite"
)

// Open opens the database at dbPath and applies the pragmas we run
// with. The pool is capped at one connection; SQLite only supports one
// writer at a time.
func Open(dbPath string, log *logger.Logger) (*sql.DB, error) {
	log.Named("sqlite").Info("Opening database", logger.String("path", dbPath))

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to set journal mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// SnapshotRecord is one stored reconciliation run: which datasets were
// compared for which analysis time, and the entries produced.
type SnapshotRecord struct {
	ID             int64             `json:"id"`
	CreatedAt      time.Time         `json:"created_at"`
	SurfaceSource  string            `json:"surface_source"`
	PressureSource string            `json:"pressure_source"`
	Date           string            `json:"date"`
	Hour           int               `json:"hour"`
	Entries        []reconcile.Entry `json:"entries"`
}

// SnapshotStorage handles storage of comparison snapshots
type SnapshotStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewSnapshotStorage creates a new SQLite snapshot storage
func NewSnapshotStorage(db *sql.DB, log *logger.Logger) (*SnapshotStorage, error) {
	storage := &SnapshotStorage{
		db:     db,
		logger: log.Named("sqlite-snap"),
	}
	if err := storage.initDB(); err != nil {
		return nil, err
	}
	return storage, nil
}

func (s *SnapshotStorage) initDB() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS comparison_snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at TIMESTAMP NOT NULL,
			surface_source TEXT NOT NULL,
			pressure_source TEXT NOT NULL,
			date TEXT NOT NULL,
			hour INTEGER NOT NULL,
			entries TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create comparison_snapshots table: %w", err)
	}

	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_snapshots_date ON comparison_snapshots(date, hour)`)
	if err != nil {
		return fmt.Errorf("failed to create snapshot date index: %w", err)
	}

	return nil
}

// StoreSnapshot stores one reconciliation run and returns its ID.
func (s *SnapshotStorage) StoreSnapshot(record *SnapshotRecord) (int64, error) {
	entries, err := json.Marshal(record.Entries)
	if err != nil {
		return 0, fmt.Errorf("failed to encode entries: %w", err)
	}

	result, err := s.db.Exec(
		`INSERT INTO comparison_snapshots
		(created_at, surface_source, pressure_source, date, hour, entries)
		VALUES (?, ?, ?, ?, ?, ?)`,
		record.CreatedAt.Format(time.RFC3339),
		record.SurfaceSource,
		record.PressureSource,
		record.Date,
		record.Hour,
		string(entries),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert snapshot: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	return id, nil
}

// GetSnapshots returns stored snapshots, newest first.
func (s *SnapshotStorage) GetSnapshots(limit, offset int) ([]*SnapshotRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, created_at, surface_source, pressure_source, date, hour, entries
		FROM comparison_snapshots
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var records []*SnapshotRecord
	for rows.Next() {
		var record SnapshotRecord
		var createdAt, entries string

		if err := rows.Scan(
			&record.ID,
			&createdAt,
			&record.SurfaceSource,
			&record.PressureSource,
			&record.Date,
			&record.Hour,
			&entries,
		); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}

		record.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		if err := json.Unmarshal([]byte(entries), &record.Entries); err != nil {
			return nil, fmt.Errorf("failed to decode entries: %w", err)
		}

		records = append(records, &record)
	}

	return records, rows.Err()
}

// GetSnapshotsByDate returns snapshots for one analysis date and hour,
// newest first.
func (s *SnapshotStorage) GetSnapshotsByDate(date string, hour, limit int) ([]*SnapshotRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, created_at, surface_source, pressure_source, date, hour, entries
		FROM comparison_snapshots
		WHERE date = ? AND hour = ?
		ORDER BY created_at DESC
		LIMIT ?`,
		date, hour, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots by date: %w", err)
	}
	defer rows.Close()

	var records []*SnapshotRecord
	for rows.Next() {
		var record SnapshotRecord
		var createdAt, entries string

		if err := rows.Scan(
			&record.ID,
			&createdAt,
			&record.SurfaceSource,
			&record.PressureSource,
			&record.Date,
			&record.Hour,
			&entries,
		); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}

		record.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		if err := json.Unmarshal([]byte(entries), &record.Entries); err != nil {
			return nil, fmt.Errorf("failed to decode entries: %w", err)
		}

		records = append(records, &record)
	}

	return records, rows.Err()
}
