package bls

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/raghuchilukamari/investor-gps/internal/provider"
	"github.com/raghuchilukamari/investor-gps/pkg/models"
)

// seriesFetcher fetches raw observations for one or more BLS series in a
// single batched request. The result data is a map[seriesID][]RawSeriesPoint.
type seriesFetcher struct {
	provider.BaseFetcher
}

func newSeriesFetcher() *seriesFetcher {
	return &seriesFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelBlsSeries,
			"Raw timeseries observations for one or more BLS series IDs",
			[]string{provider.ParamSeriesIDs},
			[]string{provider.ParamStartYear, provider.ParamEndYear},
			15*time.Minute, // BLS data updates monthly; cache generously
			5, time.Second,
		),
	}
}

func (f *seriesFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	cacheKey := provider.CacheKey(f.ModelType(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return &provider.FetchResult{
			Data:      cached,
			FetchedAt: time.Now(),
			Cached:    true,
		}, nil
	}

	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	ids := splitIDs(params[provider.ParamSeriesIDs])
	req := blsRequest{
		SeriesID:        ids,
		StartYear:       params[provider.ParamStartYear],
		EndYear:         params[provider.ParamEndYear],
		RegistrationKey: params["_bls_registration_key"],
	}

	resp, err := postTimeseries(ctx, req)
	if err != nil {
		return nil, err
	}

	series := make(map[string][]models.RawSeriesPoint, len(resp.Results.Series))
	for _, s := range resp.Results.Series {
		points := make([]models.RawSeriesPoint, 0, len(s.Data))
		for _, d := range s.Data {
			points = append(points, toRawPoint(d))
		}
		series[s.SeriesID] = points
	}

	f.CacheSet(cacheKey, series)

	return &provider.FetchResult{
		Data:      series,
		FetchedAt: time.Now(),
	}, nil
}

func splitIDs(csv string) []string {
	parts := strings.Split(csv, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if id := strings.TrimSpace(p); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// toRawPoint maps an upstream observation to the domain point. Values stay
// as strings here; parsing and validation happen in the normalizer.
func toRawPoint(d blsData) models.RawSeriesPoint {
	latest, _ := strconv.ParseBool(d.Latest)

	var notes []string
	for _, fn := range d.Footnotes {
		if fn.Text != "" {
			notes = append(notes, fn.Text)
		}
	}

	return models.RawSeriesPoint{
		Year:      d.Year,
		Period:    d.Period,
		Value:     d.Value,
		Footnotes: notes,
		Latest:    latest,
	}
}
