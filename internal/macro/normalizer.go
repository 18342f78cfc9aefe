// Package macro transforms raw labor-statistics observations into the
// wide-matrix and summary representations served by the dashboard, and
// orchestrates multi-series ingest batches.
package macro

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/raghuchilukamari/investor-gps/pkg/models"
	"github.com/raghuchilukamari/investor-gps/pkg/utils"
)

// NormalizationError reports structurally invalid input: a series whose
// valid points carry no latest flag, or a latest point with an unparsable
// year or period.
type NormalizationError struct {
	Series string
	Detail string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalize %s: %s", e.Series, e.Detail)
}

// validPoint is one observation that survived numeric coercion.
type validPoint struct {
	year    int
	period  string
	ordinal int
	value   float64
	latest  bool
}

// Normalize converts raw observations into one matrix row per (series, year)
// plus a summary row derived from the latest-flagged observation.
//
// Points whose value fails numeric coercion are excluded; they never reach
// the change calculations. An empty input, or one where every point is
// malformed, returns (nil, nil, nil) — absence, not zero-filled rows. Valid
// points without a latest flag are a *NormalizationError.
//
// Change semantics: period-over-period change is computed over the
// chronologically sorted valid points and kept to 3 decimals; the first
// point has no prior and its change is undefined (nil), as is any change
// whose prior value is zero. Year-over-year change compares the reference
// (latest) period against the same period of the prior year.
func Normalize(points []models.RawSeriesPoint, seriesID string) ([]models.SeriesMatrixRow, *models.SeriesSummaryRow, error) {
	valid := coercePoints(points)
	if len(valid) == 0 {
		return nil, nil, nil
	}

	sort.SliceStable(valid, func(i, j int) bool {
		if valid[i].year != valid[j].year {
			return valid[i].year < valid[j].year
		}
		return valid[i].ordinal < valid[j].ordinal
	})

	// The sort reorders valid in place, so the reference point can only be
	// located afterwards.
	var latest *validPoint
	for i := range valid {
		if valid[i].latest {
			latest = &valid[i]
			break
		}
	}
	if latest == nil {
		return nil, nil, &NormalizationError{Series: seriesID, Detail: "no observation carries the latest flag"}
	}

	// Period-over-period changes over the sorted sequence. The first point
	// and any point following a zero value stay undefined.
	type pointKey struct {
		year   int
		period string
	}
	momByKey := make(map[pointKey]*float64, len(valid))
	for i := range valid {
		key := pointKey{valid[i].year, valid[i].period}
		if i == 0 || valid[i-1].value == 0 {
			momByKey[key] = nil
			continue
		}
		momByKey[key] = roundPtr((valid[i].value - valid[i-1].value) / valid[i-1].value * 100)
	}

	// Explicit (series, year) → {period: value} pivot by direct iteration.
	byYear := make(map[int]*models.SeriesMatrixRow)
	years := make([]int, 0, 4)
	for _, p := range valid {
		row, ok := byYear[p.year]
		if !ok {
			row = &models.SeriesMatrixRow{
				Series:     seriesID,
				Year:       p.year,
				Values:     make(map[string]float64),
				MoMChanges: make(map[string]*float64),
			}
			byYear[p.year] = row
			years = append(years, p.year)
		}
		row.Values[p.period] = p.value
		if mom := momByKey[pointKey{p.year, p.period}]; mom != nil {
			row.MoMChanges[p.period] = mom
		}
	}
	sort.Ints(years)

	// Year-over-year change for the reference period, compared against the
	// same period of the prior year.
	yoy := yoyChange(byYear, latest.year, latest.period)
	if row := byYear[latest.year]; row != nil {
		row.YoYChange = yoy
	}

	rows := make([]models.SeriesMatrixRow, 0, len(years))
	for _, y := range years {
		rows = append(rows, *byYear[y])
	}

	summary := &models.SeriesSummaryRow{
		Series:    seriesID,
		Year:      latest.year,
		Period:    latest.period,
		Value:     latest.value,
		YoYChange: yoy,
		MoMChange: momByKey[pointKey{latest.year, latest.period}],
		Sentiment: SentimentLabel(yoy),
	}

	return rows, summary, nil
}

// coercePoints parses the string-typed observations, silently excluding
// malformed values and points with unrecognized years or periods.
func coercePoints(points []models.RawSeriesPoint) []validPoint {
	valid := make([]validPoint, 0, len(points))
	for _, p := range points {
		v, err := strconv.ParseFloat(strings.TrimSpace(p.Value), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		year, err := utils.ParseYear(p.Year)
		if err != nil {
			continue
		}
		ord, ok := utils.PeriodOrdinal(p.Period)
		if !ok {
			continue
		}
		valid = append(valid, validPoint{
			year:    year,
			period:  p.Period,
			ordinal: ord,
			value:   v,
			latest:  p.Latest,
		})
	}
	return valid
}

// yoyChange computes the reference period's change against the prior year.
// Undefined when the prior year lacks that period or its value is zero.
func yoyChange(byYear map[int]*models.SeriesMatrixRow, year int, period string) *float64 {
	cur, ok := byYear[year]
	if !ok {
		return nil
	}
	curVal, ok := cur.Values[period]
	if !ok {
		return nil
	}
	prev, ok := byYear[year-1]
	if !ok {
		return nil
	}
	prevVal, ok := prev.Values[period]
	if !ok || prevVal == 0 {
		return nil
	}
	return roundPtr((curVal - prevVal) / prevVal * 100)
}

// SentimentLabel maps a year-over-year change to its qualitative label.
// An undefined change maps to "insufficient data".
func SentimentLabel(yoy *float64) string {
	if yoy == nil {
		return models.SentimentInsufficientData
	}
	switch {
	case *yoy > 5:
		return models.SentimentStrongInflation
	case *yoy > 2:
		return models.SentimentModerateInflation
	case *yoy > 0:
		return models.SentimentLowInflation
	case *yoy > -1:
		return models.SentimentDeflation
	default:
		return models.SentimentStrongDeflation
	}
}

// roundPtr reduces a percent change to 3 decimals, truncating toward zero:
// 0.5025288… reports as 0.502, matching the published reference values.
func roundPtr(v float64) *float64 {
	r := math.Trunc(v*1000) / 1000
	return &r
}
