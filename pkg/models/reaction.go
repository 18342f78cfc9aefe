package models

import "time"

// OHLCV is a single daily price bar from the market data provider.
type OHLCV struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// AssetReaction measures how one asset class moved around an event window.
// Nil fields mean the data needed to compute them was missing (no bar before
// the event, no bar on the event day, a failed fetch), never zero.
type AssetReaction struct {
	PreEvent    *float64 `json:"pre_event"`
	EventDay    *float64 `json:"event_day"`
	PostEvent   *float64 `json:"post_event"`
	TotalChange *float64 `json:"total_change"`
	Volatility  *float64 `json:"volatility"`
}

// AggregateReaction is the cross-asset summary of a market event.
// AverageChange is nil when no asset class produced a total change, and a
// nil average maps to a "neutral" direction.
type AggregateReaction struct {
	AverageChange *float64 `json:"average_change"`
	Direction     string   `json:"direction"` // "bullish", "neutral", "bearish"
}

// MarketEvent records the analyzed reaction to one macro event across all
// configured asset classes. Events are immutable after creation.
type MarketEvent struct {
	ID                int64                    `json:"id,omitempty"`
	EventType         string                   `json:"event_type"`
	Description       string                   `json:"description"`
	EventDate         time.Time                `json:"event_date"`
	AssetReactions    map[string]AssetReaction `json:"asset_reactions"`
	AggregateReaction AggregateReaction        `json:"aggregate_reaction"`
	CreatedAt         time.Time                `json:"created_at,omitempty"`
}

// SignificantMove is a single outsized daily move found by the historical
// reaction scan (|change| beyond two standard deviations).
type SignificantMove struct {
	Date       time.Time `json:"date"`
	AssetClass string    `json:"asset_class"`
	Change     float64   `json:"change"` // percent
	Direction  string    `json:"direction"`
}
