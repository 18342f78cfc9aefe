package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/raghuchilukamari/investor-gps/pkg/models"
)

// UpsertIndicator inserts or replaces one indicator snapshot by name.
func (s *Storage) UpsertIndicator(ctx context.Context, snap models.IndicatorSnapshot) error {
	var nextRelease any
	if snap.NextRelease != nil {
		nextRelease = snap.NextRelease.Unix()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO indicators
			(name, value, previous_value, change, signal, source, description, category, frequency, next_release, last_updated)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(name) DO UPDATE SET
			value=excluded.value, previous_value=excluded.previous_value,
			change=excluded.change, signal=excluded.signal, source=excluded.source,
			description=excluded.description, category=excluded.category,
			frequency=excluded.frequency, next_release=excluded.next_release,
			last_updated=excluded.last_updated`,
		snap.Name, snap.Value, snap.PreviousValue, snap.Change, snap.Signal,
		snap.Source, snap.Description, snap.Category, snap.Frequency,
		nextRelease, snap.LastUpdated.Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert indicator %s: %w", snap.Name, err)
	}
	return nil
}

// GetIndicator returns one indicator snapshot by name.
func (s *Storage) GetIndicator(ctx context.Context, name string) (*models.IndicatorSnapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT name, value, previous_value, change, signal, source, description, category, frequency, next_release, last_updated
		FROM indicators WHERE name = ?`, name)

	snap, err := scanIndicator(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("indicator %q not found", name)
	}
	if err != nil {
		return nil, fmt.Errorf("get indicator %s: %w", name, err)
	}
	return snap, nil
}

// ListIndicators returns all stored indicator snapshots ordered by name.
func (s *Storage) ListIndicators(ctx context.Context) ([]models.IndicatorSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, value, previous_value, change, signal, source, description, category, frequency, next_release, last_updated
		FROM indicators ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query indicators: %w", err)
	}
	defer rows.Close()

	var out []models.IndicatorSnapshot
	for rows.Next() {
		snap, err := scanIndicator(rows)
		if err != nil {
			return nil, fmt.Errorf("scan indicator: %w", err)
		}
		out = append(out, *snap)
	}
	return out, rows.Err()
}

// DeleteIndicator removes one indicator snapshot by name.
func (s *Storage) DeleteIndicator(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM indicators WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete indicator %s: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("indicator %q not found", name)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIndicator(r rowScanner) (*models.IndicatorSnapshot, error) {
	var snap models.IndicatorSnapshot
	var source, description, category, frequency sql.NullString
	var nextRelease sql.NullInt64
	var lastUpdated int64

	if err := r.Scan(&snap.Name, &snap.Value, &snap.PreviousValue, &snap.Change,
		&snap.Signal, &source, &description, &category, &frequency,
		&nextRelease, &lastUpdated); err != nil {
		return nil, err
	}
	snap.Source = source.String
	snap.Description = description.String
	snap.Category = category.String
	snap.Frequency = frequency.String
	if nextRelease.Valid {
		t := time.Unix(nextRelease.Int64, 0)
		snap.NextRelease = &t
	}
	snap.LastUpdated = time.Unix(lastUpdated, 0)
	return &snap, nil
}
