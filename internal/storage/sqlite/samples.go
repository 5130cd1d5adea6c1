package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/wxslice/wxslice/pkg/logger"
)

// SampleRecord is one point sample served to a client: where it was
// taken, which variable, the value in display units, and the grid cell
// that answered. Value and the matched fields are nil when the nearest
// cell held no usable data.
type SampleRecord struct {
	ID         int64     `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Source     string    `json:"source"`
	Date       string    `json:"date"`
	Hour       int       `json:"hour"`
	Variable   string    `json:"variable"`
	Level      string    `json:"level,omitempty"`
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	Value      *float64  `json:"value"`
	Units      string    `json:"units"`
	GridRow    *int      `json:"grid_row,omitempty"`
	GridCol    *int      `json:"grid_col,omitempty"`
	MatchedLat *float64  `json:"matched_lat,omitempty"`
	MatchedLon *float64  `json:"matched_lon,omitempty"`
}

// SampleStorage handles storage of point sample records
type SampleStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewSampleStorage creates a new SQLite sample storage
func NewSampleStorage(db *sql.DB, log *logger.Logger) (*SampleStorage, error) {
	storage := &SampleStorage{
		db:     db,
		logger: log.Named("sqlite-sample"),
	}
	if err := storage.initDB(); err != nil {
		return nil, err
	}
	return storage, nil
}

func (s *SampleStorage) initDB() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS point_samples (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at TIMESTAMP NOT NULL,
			source TEXT NOT NULL,
			date TEXT NOT NULL,
			hour INTEGER NOT NULL,
			variable TEXT NOT NULL,
			level TEXT,
			lat REAL NOT NULL,
			lon REAL NOT NULL,
			value REAL,
			units TEXT NOT NULL,
			grid_row INTEGER,
			grid_col INTEGER,
			matched_lat REAL,
			matched_lon REAL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create point_samples table: %w", err)
	}

	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_samples_variable ON point_samples(variable)`)
	if err != nil {
		return fmt.Errorf("failed to create sample variable index: %w", err)
	}

	return nil
}

// StoreSample stores a point sample record
func (s *SampleStorage) StoreSample(record *SampleRecord) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO point_samples
		(created_at, source, date, hour, variable, level, lat, lon, value, units,
		grid_row, grid_col, matched_lat, matched_lon)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.CreatedAt.Format(time.RFC3339),
		record.Source,
		record.Date,
		record.Hour,
		record.Variable,
		record.Level,
		record.Lat,
		record.Lon,
		record.Value,
		record.Units,
		record.GridRow,
		record.GridCol,
		record.MatchedLat,
		record.MatchedLon,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert sample: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	return id, nil
}

// GetSamples returns stored samples, newest first.
func (s *SampleStorage) GetSamples(limit, offset int) ([]*SampleRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, created_at, source, date, hour, variable, level, lat, lon, value, units,
		grid_row, grid_col, matched_lat, matched_lon
		FROM point_samples
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	var records []*SampleRecord
	for rows.Next() {
		var record SampleRecord
		var createdAt string
		var level sql.NullString
		var value, matchedLat, matchedLon sql.NullFloat64
		var gridRow, gridCol sql.NullInt64

		if err := rows.Scan(
			&record.ID,
			&createdAt,
			&record.Source,
			&record.Date,
			&record.Hour,
			&record.Variable,
			&level,
			&record.Lat,
			&record.Lon,
			&value,
			&record.Units,
			&gridRow,
			&gridCol,
			&matchedLat,
			&matchedLon,
		); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}

		record.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		if level.Valid {
			record.Level = level.String
		}
		if value.Valid {
			v := value.Float64
			record.Value = &v
		}
		if gridRow.Valid {
			r := int(gridRow.Int64)
			record.GridRow = &r
		}
		if gridCol.Valid {
			c := int(gridCol.Int64)
			record.GridCol = &c
		}
		if matchedLat.Valid {
			v := matchedLat.Float64
			record.MatchedLat = &v
		}
		if matchedLon.Valid {
			v := matchedLon.Float64
			record.MatchedLon = &v
		}

		records = append(records, &record)
	}

	return records, rows.Err()
}
