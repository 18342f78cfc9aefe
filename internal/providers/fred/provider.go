// Package fred implements the FRED (Federal Reserve Economic Data) provider.
// It supplies dated macro-series observations and ready-made indicator
// snapshots for the dashboard.
//
// Requires a free API key from https://fred.stlouisfed.org/docs/api/api_key.html
// Rate limit: 120 requests/minute.
// Docs: https://fred.stlouisfed.org/docs/api/fred/
package fred

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
	providerName = "fred"
	baseURL      = "https://api.stlouisfed.org/fred"
	credAPIKey   = "api_key"
)

// Provider implements provider.Provider for FRED.
type Provider struct {
	provider.BaseProvider
	apiKey string
}

// New creates a new FRED provider and registers all fetchers.
func New() *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Federal Reserve Economic Data - macro series and indicator snapshots",
			"https://fred.stlouisfed.org",
			[]provider.ProviderCredential{
				{
					Name:        credAPIKey,
					Description: "FRED API key from fred.stlouisfed.org",
					Required:    true,
					EnvVar:      "FRED_API_KEY",
				},
			},
		),
	}

	p.RegisterFetcher(newSeriesFetcher())
	p.RegisterFetcher(newIndicatorFetcher())

	return p
}

// Init stores the API key.
func (p *Provider) Init(credentials map[string]string) error {
	if err := p.BaseProvider.Init(credentials); err != nil {
		return err
	}
	p.apiKey = credentials[credAPIKey]
	return nil
}

// Ping checks connectivity to the FRED API.
func (p *Provider) Ping(ctx context.Context) error {
	url := fmt.Sprintf("%s/series?series_id=GDP&api_key=%s&file_type=json", apiURL, p.apiKey)
	body, _, err := infra.DoGet(ctx, url, jsonHeaders())
	if err != nil {
		return fmt.Errorf("fred ping: %w", err)
	}
	body.Close()
	return nil
}

// Fetcher overrides BaseProvider.Fetcher to return a wrapper that
// auto-injects the FRED API key into query params before delegating.
func (p *Provider) Fetcher(model provider.ModelType) provider.Fetcher {
	inner := p.BaseProvider.Fetcher(model)
	if inner == nil {
		return nil
	}
	return &apiKeyInjector{inner: inner, apiKey: &p.apiKey}
}

// apiKeyInjector wraps a Fetcher and injects the FRED API key.
type apiKeyInjector struct {
	inner  provider.Fetcher
	apiKey *string
}

func (w *apiKeyInjector) ModelType() provider.ModelType { return w.inner.ModelType() }
func (w *apiKeyInjector) Description() string           { return w.inner.Description() }
func (w *apiKeyInjector) RequiredParams() []string      { return w.inner.RequiredParams() }
func (w *apiKeyInjector) OptionalParams() []string      { return w.inner.OptionalParams() }

func (w *apiKeyInjector) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	enriched := make(provider.QueryParams, len(params)+1)
	for k, v := range params {
		enriched[k] = v
	}
	enriched["_fred_api_key"] = *w.apiKey
	return w.inner.Fetch(ctx, enriched)
}

// --- Shared helpers ---

// apiURL is swapped out in tests.
var apiURL = baseURL

func jsonHeaders() map[string]string {
	return map[string]string{"Accept": "application/json"}
}

// fredURL builds a full FRED API URL with api_key and file_type=json appended.
func fredURL(endpoint, apiKey string) string {
	sep := "?"
	if containsQuery(endpoint) {
		sep = "&"
	}
	return apiURL + "/" + endpoint + sep + "api_key=" + apiKey + "&file_type=json"
}

func containsQuery(s string) bool {
	for _, c := range s {
		if c == '?' {
			return true
		}
	}
	return false
}

// fetchFredJSON performs a GET request to the FRED API and decodes JSON.
// Transport and decode failures surface as *provider.UpstreamError.
func fetchFredJSON(ctx context.Context, endpoint, apiKey string, dest any) error {
	url := fredURL(endpoint, apiKey)
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

// fetchObservations fetches a FRED series by ID and returns the raw
// observations, honoring the optional date-range and limit params.
func fetchObservations(ctx context.Context, seriesID, apiKey string, params provider.QueryParams) ([]fredObservation, error) {
	endpoint := fmt.Sprintf("series/observations?series_id=%s", seriesID)
	if sd := params[provider.ParamStartDate]; sd != "" {
		endpoint += "&observation_start=" + sd
	}
	if ed := params[provider.ParamEndDate]; ed != "" {
		endpoint += "&observation_end=" + ed
	}
	if lim := params[provider.ParamLimit]; lim != "" {
		endpoint += "&limit=" + lim + "&sort_order=desc"
	}

	var resp fredObservationsResponse
	if err := fetchFredJSON(ctx, endpoint, apiKey, &resp); err != nil {
		return nil, err
	}
	return resp.Observations, nil
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
