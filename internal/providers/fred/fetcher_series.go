package fred

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/raghuchilukamari/investor-gps/internal/provider"
	"github.com/raghuchilukamari/investor-gps/pkg/models"
)

// ---- FredSeries fetcher ----
// Returns dated observations for a single FRED series.

type seriesFetcher struct {
	provider.BaseFetcher
}

func newSeriesFetcher() *seriesFetcher {
	return &seriesFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelFredSeries,
			"Dated observations for a FRED series by ID",
			[]string{provider.ParamSeriesID},
			[]string{provider.ParamStartDate, provider.ParamEndDate, provider.ParamLimit},
			10*time.Minute, 10, time.Second,
		),
	}
}

func (f *seriesFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	seriesID := params[provider.ParamSeriesID]
	apiKey := params["_fred_api_key"]

	cacheKey := provider.CacheKey(f.ModelType(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	obs, err := fetchObservations(ctx, seriesID, apiKey, params)
	if err != nil {
		return nil, fmt.Errorf("fred series %s: %w", seriesID, err)
	}

	var data []models.EconomicObservation
	for _, o := range obs {
		if o.Value == "." {
			continue // Skip missing values
		}
		v, err := strconv.ParseFloat(o.Value, 64)
		if err != nil {
			continue
		}
		data = append(data, models.EconomicObservation{
			Date:  parseFredDate(o.Date),
			Value: v,
		})
	}

	f.CacheSet(cacheKey, data)
	return newResult(data), nil
}

// ---- MacroIndicator fetcher ----
// Returns a current snapshot for one catalog indicator: the latest
// observation as Value, the one before it as PreviousValue. The percent
// change and signal are computed downstream by the dashboard service.

type indicatorFetcher struct {
	provider.BaseFetcher
}

func newIndicatorFetcher() *indicatorFetcher {
	return &indicatorFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelMacroIndicator,
			"Current snapshot of a dashboard macro indicator",
			[]string{provider.ParamSeriesID},
			nil,
			10*time.Minute, 10, time.Second,
		),
	}
}

func (f *indicatorFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	apiKey := params["_fred_api_key"]

	spec, ok := lookupIndicator(params[provider.ParamSeriesID])
	if !ok {
		return nil, &provider.ErrMissingParam{Param: provider.ParamSeriesID}
	}

	cacheKey := provider.CacheKey(f.ModelType(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	// Newest first; two observations give value and previous value.
	obs, err := fetchObservations(ctx, spec.SeriesID, apiKey, provider.QueryParams{
		provider.ParamLimit: "2",
	})
	if err != nil {
		return nil, fmt.Errorf("fred indicator %s: %w", spec.Name, err)
	}

	values := make([]float64, 0, 2)
	for _, o := range obs {
		if o.Value == "." {
			continue
		}
		v, err := strconv.ParseFloat(o.Value, 64)
		if err != nil {
			continue
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil, &provider.UpstreamError{
			Provider: providerName,
			Detail:   fmt.Sprintf("no usable observations for %s", spec.SeriesID),
		}
	}

	snap := &models.IndicatorSnapshot{
		Name:        spec.Name,
		Value:       values[0],
		Source:      "FRED",
		Description: spec.Description,
		Category:    spec.Category,
		Frequency:   spec.Frequency,
		LastUpdated: time.Now(),
	}
	if len(values) > 1 {
		snap.PreviousValue = values[1]
	}

	f.CacheSet(cacheKey, snap)
	return newResult(snap), nil
}
