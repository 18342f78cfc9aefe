// Package storage provides SQLite-backed persistence for normalized series,
// indicator snapshots, market events, and scored sentiment records.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/raghuchilukamari/investor-gps/pkg/models"
	"github.com/raghuchilukamari/investor-gps/pkg/utils"
)

// Storage wraps a SQLite database for all persistence operations.
type Storage struct {
	db *sql.DB
}

// New opens or creates the SQLite database at dbPath.
// An empty dbPath defaults to $TMPDIR/investorgps/data.db.
func New(dbPath string) (*Storage, error) {
	if dbPath == "" {
		dbPath = filepath.Join(os.TempDir(), "investorgps", "data.db")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer; WAL allows concurrent readers
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}
	s := &Storage{db: db}
	if err := s.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) createTables() error {
	stmts := []string{
		seriesMatrixDDL,
		seriesSummaryDDL,
		`CREATE TABLE IF NOT EXISTS indicators (
			name           TEXT PRIMARY KEY,
			value          REAL NOT NULL,
			previous_value REAL NOT NULL DEFAULT 0,
			change         REAL NOT NULL DEFAULT 0,
			signal         TEXT NOT NULL DEFAULT 'neutral',
			source         TEXT,
			description    TEXT,
			category       TEXT,
			frequency      TEXT,
			next_release   INTEGER,
			last_updated   INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS market_events (
			id                 INTEGER PRIMARY KEY AUTOINCREMENT,
			event_type         TEXT NOT NULL,
			description        TEXT,
			event_date         TEXT NOT NULL,
			asset_reactions    TEXT NOT NULL DEFAULT '{}',
			average_change     REAL,
			direction          TEXT NOT NULL DEFAULT 'neutral',
			created_at         INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS social_media_posts (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			source          TEXT NOT NULL,
			author          TEXT,
			content         TEXT NOT NULL,
			url             TEXT,
			sentiment_score REAL NOT NULL,
			sentiment_label TEXT NOT NULL,
			confidence      REAL NOT NULL,
			created_at      INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS news_articles (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			source          TEXT NOT NULL,
			title           TEXT NOT NULL,
			summary         TEXT,
			url             TEXT,
			sentiment_score REAL NOT NULL,
			sentiment_label TEXT NOT NULL,
			confidence      REAL NOT NULL,
			published_at    INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS earnings_calls (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			company         TEXT NOT NULL,
			ticker          TEXT NOT NULL,
			quarter         TEXT,
			transcript      TEXT,
			sentiment_score REAL NOT NULL,
			sentiment_label TEXT NOT NULL,
			confidence      REAL NOT NULL,
			topics          TEXT NOT NULL DEFAULT '[]',
			call_date       INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_type_date ON market_events(event_type, event_date DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_news_published ON news_articles(published_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_created ON social_media_posts(created_at DESC)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

const seriesMatrixDDL = `CREATE TABLE IF NOT EXISTS bls_combined_data (
	series       TEXT NOT NULL,
	year         INTEGER NOT NULL,
	m01 REAL, m02 REAL, m03 REAL, m04 REAL, m05 REAL, m06 REAL,
	m07 REAL, m08 REAL, m09 REAL, m10 REAL, m11 REAL, m12 REAL, m13 REAL,
	yoy_change   REAL,
	last_updated INTEGER NOT NULL,
	PRIMARY KEY (series, year)
)`

const seriesSummaryDDL = `CREATE TABLE IF NOT EXISTS bls_summary_data (
	series       TEXT PRIMARY KEY,
	year         INTEGER NOT NULL,
	period       TEXT NOT NULL,
	value        REAL NOT NULL,
	yoy_change   REAL,
	mom_change   REAL,
	sentiment    TEXT NOT NULL,
	last_updated INTEGER NOT NULL
)`

// ResetSeriesTables destructively drops and recreates the series matrix and
// summary tables. Invoked exactly once per ingest batch, before the first
// write; concurrent batches must not share a store.
func (s *Storage) ResetSeriesTables(ctx context.Context) error {
	stmts := []string{
		`DROP TABLE IF EXISTS bls_combined_data`,
		`DROP TABLE IF EXISTS bls_summary_data`,
		seriesMatrixDDL,
		seriesSummaryDDL,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("reset series tables: %w", err)
		}
	}
	return nil
}

// StoreSeries appends one series' matrix rows and its summary row.
func (s *Storage) StoreSeries(ctx context.Context, rows []models.SeriesMatrixRow, summary *models.SeriesSummaryRow, seriesID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin series write: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().Unix()
	for _, row := range rows {
		args := make([]any, 0, 17)
		args = append(args, row.Series, row.Year)
		for _, period := range utils.MonthlyPeriods {
			if v, ok := row.Values[period]; ok {
				args = append(args, v)
			} else {
				args = append(args, nil)
			}
		}
		args = append(args, nullable(row.YoYChange), now)

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO bls_combined_data
				(series, year, m01, m02, m03, m04, m05, m06, m07, m08, m09, m10, m11, m12, m13, yoy_change, last_updated)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`, args...); err != nil {
			return fmt.Errorf("insert matrix row %s/%d: %w", row.Series, row.Year, err)
		}
	}

	if summary != nil {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO bls_summary_data
				(series, year, period, value, yoy_change, mom_change, sentiment, last_updated)
			VALUES (?,?,?,?,?,?,?,?)`,
			summary.Series, summary.Year, summary.Period, summary.Value,
			nullable(summary.YoYChange), nullable(summary.MoMChange),
			summary.Sentiment, now,
		); err != nil {
			return fmt.Errorf("insert summary row %s: %w", seriesID, err)
		}
	}

	return tx.Commit()
}

// ListMatrixRows returns stored matrix rows, optionally filtered by series,
// ordered by (series, year).
func (s *Storage) ListMatrixRows(ctx context.Context, series string) ([]models.SeriesMatrixRow, error) {
	query := `SELECT series, year, m01, m02, m03, m04, m05, m06, m07, m08, m09, m10, m11, m12, m13, yoy_change
		FROM bls_combined_data`
	var args []any
	if series != "" {
		query += ` WHERE series = ?`
		args = append(args, series)
	}
	query += ` ORDER BY series, year`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query matrix rows: %w", err)
	}
	defer rows.Close()

	var out []models.SeriesMatrixRow
	for rows.Next() {
		row := models.SeriesMatrixRow{Values: make(map[string]float64)}
		vals := make([]sql.NullFloat64, len(utils.MonthlyPeriods))
		var yoy sql.NullFloat64

		dest := make([]any, 0, 16)
		dest = append(dest, &row.Series, &row.Year)
		for i := range vals {
			dest = append(dest, &vals[i])
		}
		dest = append(dest, &yoy)

		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan matrix row: %w", err)
		}
		for i, period := range utils.MonthlyPeriods {
			if vals[i].Valid {
				row.Values[period] = vals[i].Float64
			}
		}
		if yoy.Valid {
			row.YoYChange = &yoy.Float64
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// ListSummaries returns all stored summary rows ordered by series.
func (s *Storage) ListSummaries(ctx context.Context) ([]models.SeriesSummaryRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT series, year, period, value, yoy_change, mom_change, sentiment
		FROM bls_summary_data ORDER BY series`)
	if err != nil {
		return nil, fmt.Errorf("query summaries: %w", err)
	}
	defer rows.Close()

	var out []models.SeriesSummaryRow
	for rows.Next() {
		var row models.SeriesSummaryRow
		var yoy, mom sql.NullFloat64
		if err := rows.Scan(&row.Series, &row.Year, &row.Period, &row.Value, &yoy, &mom, &row.Sentiment); err != nil {
			return nil, fmt.Errorf("scan summary row: %w", err)
		}
		if yoy.Valid {
			row.YoYChange = &yoy.Float64
		}
		if mom.Valid {
			row.MoMChange = &mom.Float64
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// CountSeriesRows returns the total matrix and summary row counts.
func (s *Storage) CountSeriesRows(ctx context.Context) (matrix, summary int, err error) {
	if err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bls_combined_data`).Scan(&matrix); err != nil {
		return 0, 0, err
	}
	if err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bls_summary_data`).Scan(&summary); err != nil {
		return 0, 0, err
	}
	return matrix, summary, nil
}

func nullable(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func jsonString(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
