// Package models defines the shared data structures exchanged between
// providers, the normalization pipeline, the analysis services, and the
// HTTP API layer.
package models

import "time"

// RawSeriesPoint is a single observation of a labor-statistics time series
// exactly as returned by the upstream provider. Values arrive as strings and
// may be malformed; points are immutable once fetched.
type RawSeriesPoint struct {
	Year      string   `json:"year"`
	Period    string   `json:"period"` // "M01".."M12", "M13" for annual average
	Value     string   `json:"value"`
	Footnotes []string `json:"footnotes,omitempty"`
	Latest    bool     `json:"latest,omitempty"`
}

// SeriesMatrixRow is the wide-format representation of one series-year:
// one value per calendar period present that year, plus the year-over-year
// change for the reference (latest-flagged) period. Periods absent from the
// upstream data are simply missing from the map, never zero-filled.
type SeriesMatrixRow struct {
	Series     string              `json:"series"`
	Year       int                 `json:"year"`
	Values     map[string]float64  `json:"values"`
	MoMChanges map[string]*float64 `json:"mom_changes,omitempty"`
	YoYChange  *float64            `json:"yoy_change,omitempty"`
}

// SeriesSummaryRow is derived from the latest-flagged point of a series.
// Nil change fields mean the value is undefined (insufficient history or a
// zero prior value), not zero.
type SeriesSummaryRow struct {
	Series    string   `json:"series"`
	Year      int      `json:"year"`
	Period    string   `json:"period"`
	Value     float64  `json:"value"`
	YoYChange *float64 `json:"yoy_change,omitempty"`
	MoMChange *float64 `json:"mom_change,omitempty"`
	Sentiment string   `json:"sentiment"`
}

// Series sentiment labels derived from year-over-year change.
const (
	SentimentStrongInflation   = "strong inflationary pressure"
	SentimentModerateInflation = "moderate inflation"
	SentimentLowInflation      = "low inflation"
	SentimentDeflation         = "deflationary pressure"
	SentimentStrongDeflation   = "strong deflationary pressure"
	SentimentInsufficientData  = "insufficient data"
)

// EconomicObservation is one dated observation of a macro series from an
// observation-based provider.
type EconomicObservation struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// IndicatorSnapshot is the current state of one macro indicator on the
// dashboard. Only the previous value is retained; each refresh overwrites
// the snapshot and recomputes the signal from the change.
type IndicatorSnapshot struct {
	Name          string     `json:"name"`
	Value         float64    `json:"value"`
	PreviousValue float64    `json:"previous_value"`
	Change        float64    `json:"change"` // percent
	Signal        string     `json:"signal"` // "bullish", "neutral", "bearish"
	Source        string     `json:"source"`
	Description   string     `json:"description,omitempty"`
	Category      string     `json:"category"`
	Frequency     string     `json:"frequency"`
	NextRelease   *time.Time `json:"next_release,omitempty"`
	LastUpdated   time.Time  `json:"last_updated"`
}

// IndicatorUpdate is a partial update to an IndicatorSnapshot. Nil fields are
// left untouched; the update is applied by a pure merge function rather than
// reflective attribute setting.
type IndicatorUpdate struct {
	Value         *float64   `json:"value,omitempty"`
	PreviousValue *float64   `json:"previous_value,omitempty"`
	Change        *float64   `json:"change,omitempty"`
	Signal        *string    `json:"signal,omitempty"`
	Description   *string    `json:"description,omitempty"`
	Category      *string    `json:"category,omitempty"`
	Frequency     *string    `json:"frequency,omitempty"`
	NextRelease   *time.Time `json:"next_release,omitempty"`
}

// Merge returns a copy of snap with the non-nil fields of upd applied and
// LastUpdated set to now.
func (upd IndicatorUpdate) Merge(snap IndicatorSnapshot, now time.Time) IndicatorSnapshot {
	out := snap
	if upd.Value != nil {
		out.Value = *upd.Value
	}
	if upd.PreviousValue != nil {
		out.PreviousValue = *upd.PreviousValue
	}
	if upd.Change != nil {
		out.Change = *upd.Change
	}
	if upd.Signal != nil {
		out.Signal = *upd.Signal
	}
	if upd.Description != nil {
		out.Description = *upd.Description
	}
	if upd.Category != nil {
		out.Category = *upd.Category
	}
	if upd.Frequency != nil {
		out.Frequency = *upd.Frequency
	}
	if upd.NextRelease != nil {
		out.NextRelease = upd.NextRelease
	}
	out.LastUpdated = now
	return out
}
