package yfinance

import (
	"context"
	"fmt"
	"time"

	"github.com/raghuchilukamari/investor-gps/internal/provider"
)

// --- EquityHistorical fetcher ---

type historicalFetcher struct {
	provider.BaseFetcher
}

func newHistoricalFetcher() *historicalFetcher {
	return &historicalFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelEquityHistorical,
			"Historical daily OHLCV bars from Yahoo Finance",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamStartDate, provider.ParamEndDate, provider.ParamInterval},
			15*time.Minute, 5, time.Second,
		),
	}
}

func (f *historicalFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]

	startDate, endDate := defaultDateRange(params)

	interval := params[provider.ParamInterval]
	if interval == "" {
		interval = "1d"
	}

	cacheKey := provider.CacheKey(f.ModelType(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}

	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf(
		"%s/%s?period1=%d&period2=%d&interval=%s",
		apiURL, symbol, startDate.Unix(), endDate.Unix(), interval,
	)

	var resp yfChartResponse
	if err := fetchJSON(ctx, url, &resp); err != nil {
		return nil, fmt.Errorf("yfinance chart %s: %w", symbol, err)
	}

	if resp.Chart.Error != nil {
		return nil, &provider.UpstreamError{
			Provider: providerName,
			Detail:   fmt.Sprintf("chart %s: %s", symbol, resp.Chart.Error.Description),
		}
	}
	if len(resp.Chart.Result) == 0 {
		return nil, &provider.UpstreamError{
			Provider: providerName,
			Detail:   fmt.Sprintf("no data for %s", symbol),
		}
	}

	candles := parseCandles(resp.Chart.Result[0])
	f.CacheSet(cacheKey, candles)
	return newResult(candles), nil
}

// defaultDateRange parses start_date/end_date from params or uses defaults.
func defaultDateRange(params provider.QueryParams) (time.Time, time.Time) {
	now := time.Now()
	endDate := now
	startDate := now.AddDate(-1, 0, 0) // default: 1 year

	if s := params[provider.ParamStartDate]; s != "" {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			startDate = t
		}
	}
	if e := params[provider.ParamEndDate]; e != "" {
		if t, err := time.Parse("2006-01-02", e); err == nil {
			endDate = t
		}
	}
	return startDate, endDate
}
