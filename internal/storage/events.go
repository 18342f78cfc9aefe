package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/raghuchilukamari/investor-gps/pkg/models"
	"github.com/raghuchilukamari/investor-gps/pkg/utils"
)

// SaveMarketEvent persists an analyzed market event and returns its ID.
func (s *Storage) SaveMarketEvent(ctx context.Context, ev *models.MarketEvent) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO market_events
			(event_type, description, event_date, asset_reactions, average_change, direction, created_at)
		VALUES (?,?,?,?,?,?,?)`,
		ev.EventType, ev.Description, utils.DateOnly(ev.EventDate),
		jsonString(ev.AssetReactions),
		nullable(ev.AggregateReaction.AverageChange), ev.AggregateReaction.Direction,
		time.Now().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert market event: %w", err)
	}
	return res.LastInsertId()
}

// ListMarketEvents returns stored events newest-first, optionally filtered
// by event type.
func (s *Storage) ListMarketEvents(ctx context.Context, eventType string, limit int) ([]models.MarketEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, event_type, description, event_date, asset_reactions, average_change, direction, created_at
		FROM market_events`
	var args []any
	if eventType != "" {
		query += ` WHERE event_type = ?`
		args = append(args, eventType)
	}
	query += ` ORDER BY event_date DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query market events: %w", err)
	}
	defer rows.Close()

	var out []models.MarketEvent
	for rows.Next() {
		var ev models.MarketEvent
		var eventDate, reactionsJSON string
		var avgChange sql.NullFloat64
		var createdAt int64

		if err := rows.Scan(&ev.ID, &ev.EventType, &ev.Description, &eventDate,
			&reactionsJSON, &avgChange, &ev.AggregateReaction.Direction, &createdAt); err != nil {
			return nil, fmt.Errorf("scan market event: %w", err)
		}
		if t, err := utils.ParseDateOnly(eventDate); err == nil {
			ev.EventDate = t
		}
		if err := json.Unmarshal([]byte(reactionsJSON), &ev.AssetReactions); err != nil {
			ev.AssetReactions = map[string]models.AssetReaction{}
		}
		if avgChange.Valid {
			ev.AggregateReaction.AverageChange = &avgChange.Float64
		}
		ev.CreatedAt = time.Unix(createdAt, 0)
		out = append(out, ev)
	}
	return out, rows.Err()
}
