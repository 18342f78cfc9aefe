// Package yfinance implements the Yahoo Finance market data provider.
// It wraps the public v8 chart API into the standard provider/fetcher
// framework to supply daily OHLCV bars for indices, futures, and equities.
//
// Yahoo Finance is a free, no-API-key provider.
package yfinance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/raghuchilukamari/investor-gps/internal/infra"
	"github.com/raghuchilukamari/investor-gps/internal/provider"
)

const (
	providerName = "yfinance"
	baseURL      = "https://query1.finance.yahoo.com/v8/finance/chart"
)

// AssetClasses maps the dashboard asset classes to their Yahoo symbols.
var AssetClasses = map[string]string{
	"stocks": "^GSPC",    // S&P 500
	"bonds":  "^TNX",     // 10-Year Treasury yield
	"gold":   "GC=F",     // Gold futures
	"dollar": "DX-Y.NYB", // US Dollar Index
}

// Provider implements provider.Provider for Yahoo Finance.
type Provider struct {
	provider.BaseProvider
}

// New creates a new Yahoo Finance provider and registers all fetchers.
func New() *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Yahoo Finance - free global market data",
			"https://finance.yahoo.com",
			nil, // no credentials required
		),
	}

	p.RegisterFetcher(newHistoricalFetcher())

	return p
}

// Ping checks connectivity to Yahoo Finance.
func (p *Provider) Ping(ctx context.Context) error {
	url := fmt.Sprintf("%s/%s?range=1d&interval=1d", apiURL, "^GSPC")
	body, _, err := infra.DoGet(ctx, url, jsonHeaders())
	if err != nil {
		return fmt.Errorf("yfinance ping: %w", err)
	}
	body.Close()
	return nil
}

// --- Shared helpers ---

// apiURL is swapped out in tests.
var apiURL = baseURL

func jsonHeaders() map[string]string {
	return map[string]string{"Accept": "application/json"}
}

// fetchJSON performs a GET request and decodes the response into dest.
func fetchJSON(ctx context.Context, url string, dest any) error {
	body, _, err := infra.DoGet(ctx, url, jsonHeaders())
	if err != nil {
		return &provider.UpstreamError{Provider: providerName, Detail: "request failed", Err: err}
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return &provider.UpstreamError{Provider: providerName, Detail: "read response", Err: err}
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return &provider.UpstreamError{Provider: providerName, Detail: "parse response", Err: err}
	}
	return nil
}

func newResult(data any) *provider.FetchResult {
	return &provider.FetchResult{
		Data:      data,
		FetchedAt: time.Now(),
	}
}

func newCachedResult(data any) *provider.FetchResult {
	return &provider.FetchResult{
		Data:      data,
		FetchedAt: time.Now(),
		Cached:    true,
	}
}
