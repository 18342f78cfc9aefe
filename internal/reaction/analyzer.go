// Package reaction computes event-window market reactions: how each asset
// class moved before, on, and after a macro event, and which recent daily
// moves were statistically outsized.
package reaction

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/raghuchilukamari/investor-gps/internal/provider"
	"github.com/raghuchilukamari/investor-gps/pkg/models"
	"github.com/raghuchilukamari/investor-gps/pkg/utils"
)

// DefaultAssetClasses maps dashboard asset classes to market symbols.
var DefaultAssetClasses = map[string]string{
	"stocks": "^GSPC",
	"bonds":  "^TNX",
	"gold":   "GC=F",
	"dollar": "DX-Y.NYB",
}

// eventWindowDays is how far around the event date price history is pulled.
const eventWindowDays = 7

// Analyzer resolves price history through the provider registry and derives
// per-event and historical reaction summaries. Stateless between calls.
type Analyzer struct {
	registry     *provider.Registry
	assetClasses map[string]string
}

// NewAnalyzer creates an analyzer over the given registry. A nil or empty
// assetClasses map falls back to DefaultAssetClasses.
func NewAnalyzer(registry *provider.Registry, assetClasses map[string]string) *Analyzer {
	if len(assetClasses) == 0 {
		assetClasses = DefaultAssetClasses
	}
	return &Analyzer{registry: registry, assetClasses: assetClasses}
}

// AnalyzeReaction derives an AssetReaction from daily bars around eventDate:
// pre is the latest close strictly before the event day, event the close on
// the exact day (no nearest-bar fallback), post the earliest close strictly
// after. TotalChange needs both pre and post. Volatility is the sample
// standard deviation (n-1) of the window's daily percent changes, ×100; it
// needs at least two daily changes (three bars) to be defined.
func AnalyzeReaction(bars []models.OHLCV, eventDate time.Time) models.AssetReaction {
	var r models.AssetReaction
	eventDay := utils.DateOnly(eventDate)

	sorted := make([]models.OHLCV, len(bars))
	copy(sorted, bars)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Timestamp.Before(sorted[j].Timestamp) })

	for i := range sorted {
		day := utils.DateOnly(sorted[i].Timestamp)
		switch {
		case day < eventDay:
			r.PreEvent = fptr(sorted[i].Close)
		case day == eventDay:
			if r.EventDay == nil {
				r.EventDay = fptr(sorted[i].Close)
			}
		case day > eventDay:
			if r.PostEvent == nil {
				r.PostEvent = fptr(sorted[i].Close)
			}
		}
	}

	if r.PreEvent != nil && r.PostEvent != nil && *r.PreEvent != 0 {
		r.TotalChange = fptr(round3((*r.PostEvent - *r.PreEvent) / *r.PreEvent * 100))
	}

	changes := dailyChanges(sorted)
	if len(changes) >= 2 {
		r.Volatility = fptr(round3(sampleStd(changes) * 100))
	}

	return r
}

// AnalyzeMarketReaction fans out AnalyzeReaction across all configured asset
// classes concurrently. A fetch failure for one class yields an all-nil
// AssetReaction for that class only; siblings are unaffected. The aggregate
// is the arithmetic mean of the non-nil total changes, with a nil mean
// mapping explicitly to a neutral direction. Completion order cannot affect
// the result.
func (a *Analyzer) AnalyzeMarketReaction(ctx context.Context, eventDate time.Time, eventType, description string) (*models.MarketEvent, error) {
	var mu sync.Mutex
	reactions := make(map[string]models.AssetReaction, len(a.assetClasses))

	g, gctx := errgroup.WithContext(ctx)
	for class, symbol := range a.assetClasses {
		g.Go(func() error {
			bars, err := a.fetchBars(gctx, symbol,
				eventDate.AddDate(0, 0, -eventWindowDays),
				eventDate.AddDate(0, 0, eventWindowDays))

			var r models.AssetReaction
			if err == nil {
				r = AnalyzeReaction(bars, eventDate)
			}
			mu.Lock()
			reactions[class] = r
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.MarketEvent{
		EventType:         eventType,
		Description:       description,
		EventDate:         eventDate,
		AssetReactions:    reactions,
		AggregateReaction: aggregate(reactions),
		CreatedAt:         time.Now(),
	}, nil
}

// HistoricalReactions scans each asset class's daily changes over the given
// window and flags days whose |change| exceeds two standard deviations,
// sorted by date descending.
func (a *Analyzer) HistoricalReactions(ctx context.Context, windowDays int) ([]models.SignificantMove, error) {
	if windowDays <= 0 {
		windowDays = 90
	}
	end := time.Now()
	start := end.AddDate(0, 0, -windowDays)

	var mu sync.Mutex
	var moves []models.SignificantMove

	g, gctx := errgroup.WithContext(ctx)
	for class, symbol := range a.assetClasses {
		g.Go(func() error {
			bars, err := a.fetchBars(gctx, symbol, start, end)
			if err != nil {
				return nil // skip unavailable classes
			}
			found := significantMoves(bars, class)
			mu.Lock()
			moves = append(moves, found...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(moves, func(i, j int) bool { return moves[i].Date.After(moves[j].Date) })
	return moves, nil
}

func (a *Analyzer) fetchBars(ctx context.Context, symbol string, start, end time.Time) ([]models.OHLCV, error) {
	res, err := a.registry.Fetch(ctx, provider.ModelEquityHistorical, provider.QueryParams{
		provider.ParamSymbol:    symbol,
		provider.ParamStartDate: utils.DateOnly(start),
		provider.ParamEndDate:   utils.DateOnly(end),
		provider.ParamInterval:  "1d",
	})
	if err != nil {
		return nil, err
	}
	bars, ok := res.Data.([]models.OHLCV)
	if !ok {
		return nil, fmt.Errorf("unexpected price payload %T", res.Data)
	}
	return bars, nil
}

func significantMoves(bars []models.OHLCV, class string) []models.SignificantMove {
	sorted := make([]models.OHLCV, len(bars))
	copy(sorted, bars)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Timestamp.Before(sorted[j].Timestamp) })

	type datedChange struct {
		date   time.Time
		change float64
	}
	var changes []datedChange
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].Close == 0 {
			continue
		}
		changes = append(changes, datedChange{
			date:   sorted[i].Timestamp,
			change: (sorted[i].Close - sorted[i-1].Close) / sorted[i-1].Close,
		})
	}
	if len(changes) < 2 {
		return nil
	}

	raw := make([]float64, len(changes))
	for i, c := range changes {
		raw[i] = c.change
	}
	std := sampleStd(raw)
	if std == 0 {
		return nil
	}

	var out []models.SignificantMove
	for _, c := range changes {
		if math.Abs(c.change) <= 2*std {
			continue
		}
		direction := "bullish"
		if c.change < 0 {
			direction = "bearish"
		}
		out = append(out, models.SignificantMove{
			Date:       c.date,
			AssetClass: class,
			Change:     round3(c.change * 100),
			Direction:  direction,
		})
	}
	return out
}

func aggregate(reactions map[string]models.AssetReaction) models.AggregateReaction {
	var sum float64
	var n int
	for _, r := range reactions {
		if r.TotalChange != nil {
			sum += *r.TotalChange
			n++
		}
	}
	if n == 0 {
		return models.AggregateReaction{Direction: "neutral"}
	}
	avg := round3(sum / float64(n))
	direction := "neutral"
	if avg > 0 {
		direction = "bullish"
	} else if avg < 0 {
		direction = "bearish"
	}
	return models.AggregateReaction{AverageChange: &avg, Direction: direction}
}

// dailyChanges returns the fractional close-to-close changes of the sorted
// window, skipping pairs with a zero prior close.
func dailyChanges(sorted []models.OHLCV) []float64 {
	var changes []float64
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].Close == 0 {
			continue
		}
		changes = append(changes, (sorted[i].Close-sorted[i-1].Close)/sorted[i-1].Close)
	}
	return changes
}

func sampleStd(xs []float64) float64 {
	n := float64(len(xs))
	if n < 2 {
		return 0
	}
	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= n
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / (n - 1))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func fptr(v float64) *float64 { return &v }
