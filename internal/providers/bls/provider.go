// Package bls implements the U.S. Bureau of Labor Statistics provider.
// It wraps the public timeseries API (CPI, PPI, employment, earnings and
// price-index series) into the standard provider/fetcher framework.
//
// The public v1 endpoint needs no API key; a registration key raises the
// rate and batching limits. Requests are POSTs carrying the series IDs and
// year range. The v1 API accepts at most 25 series IDs per request and up
// to 10 years per request; this package documents but does not enforce
// those limits.
//
// Docs: https://www.bls.gov/developers/api_signature.htm
package bls

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/raghuchilukamari/investor-gps/internal/infra"
	"github.com/raghuchilukamari/investor-gps/internal/provider"
)

const (
	providerName = "bls"
	baseURL      = "https://api.bls.gov/publicAPI/v1/timeseries/data/"
	credAPIKey   = "registration_key"
)

// SeriesMap names the commonly tracked BLS series and their IDs.
var SeriesMap = map[string]string{
	"Consumer Price Index":      "CUSR0000SA0",
	"Core CPI":                  "CUSR0000SA0L1E",
	"Producer Price Index":      "WPSFD4",
	"Unemployment Rate":         "LNS14000000",
	"Nonfarm Payrolls":          "CES0000000001",
	"Average Hourly Earnings":   "CES0500000003",
	"Labor Force Participation": "LNS11300000",
	"Job Openings":              "JTS000000000000000JOL",
	"U.S. Import Price Index":   "EIUIR",
	"U.S. Export Price Index":   "EIUIQ",
}

// SeriesName returns the friendly name for a BLS series ID, or the ID
// itself when the series is not in the catalog.
func SeriesName(seriesID string) string {
	for name, id := range SeriesMap {
		if id == seriesID {
			return name
		}
	}
	return seriesID
}

// Provider implements provider.Provider for the BLS timeseries API.
type Provider struct {
	provider.BaseProvider
	registrationKey string
}

// New creates a new BLS provider and registers all fetchers.
func New() *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"U.S. Bureau of Labor Statistics - CPI, PPI, employment timeseries",
			"https://www.bls.gov",
			[]provider.ProviderCredential{
				{
					Name:        credAPIKey,
					Description: "Optional BLS registration key for higher limits",
					Required:    false,
					EnvVar:      "BLS_API_KEY",
				},
			},
		),
	}

	p.RegisterFetcher(newSeriesFetcher())

	return p
}

// Init stores the optional registration key.
func (p *Provider) Init(credentials map[string]string) error {
	if err := p.BaseProvider.Init(credentials); err != nil {
		return err
	}
	p.registrationKey = credentials[credAPIKey]
	return nil
}

// Ping checks connectivity to the BLS API with a minimal single-series request.
func (p *Provider) Ping(ctx context.Context) error {
	_, err := postTimeseries(ctx, blsRequest{SeriesID: []string{"LNS14000000"}})
	if err != nil {
		return fmt.Errorf("bls ping: %w", err)
	}
	return nil
}

// Fetcher overrides BaseProvider.Fetcher to inject the registration key.
func (p *Provider) Fetcher(model provider.ModelType) provider.Fetcher {
	inner := p.BaseProvider.Fetcher(model)
	if inner == nil {
		return nil
	}
	return &keyInjector{inner: inner, key: &p.registrationKey}
}

// keyInjector wraps a Fetcher and injects the BLS registration key.
type keyInjector struct {
	inner provider.Fetcher
	key   *string
}

func (w *keyInjector) ModelType() provider.ModelType { return w.inner.ModelType() }
func (w *keyInjector) Description() string           { return w.inner.Description() }
func (w *keyInjector) RequiredParams() []string      { return w.inner.RequiredParams() }
func (w *keyInjector) OptionalParams() []string      { return w.inner.OptionalParams() }

func (w *keyInjector) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	enriched := make(provider.QueryParams, len(params)+1)
	for k, v := range params {
		enriched[k] = v
	}
	enriched["_bls_registration_key"] = *w.key
	return w.inner.Fetch(ctx, enriched)
}

// --- Shared helpers ---

// apiURL is swapped out in tests.
var apiURL = baseURL

func jsonHeaders() map[string]string {
	return map[string]string{"Content-Type": "application/json", "Accept": "application/json"}
}

// postTimeseries performs the upstream POST and decodes the envelope.
// A transport failure, non-2xx status, or empty Results envelope is an
// *provider.UpstreamError; no retry is attempted here.
func postTimeseries(ctx context.Context, req blsRequest) (*blsResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	body, _, err := infra.DoPost(ctx, apiURL, payload, jsonHeaders())
	if err != nil {
		return nil, &provider.UpstreamError{Provider: providerName, Detail: "request failed", Err: err}
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, &provider.UpstreamError{Provider: providerName, Detail: "read response", Err: err}
	}

	var resp blsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, &provider.UpstreamError{Provider: providerName, Detail: "parse response", Err: err}
	}

	if len(resp.Results.Series) == 0 {
		return nil, &provider.UpstreamError{
			Provider: providerName,
			Detail:   fmt.Sprintf("no results returned (status %q)", resp.Status),
		}
	}

	return &resp, nil
}
