package fred

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/raghuchilukamari/investor-gps/internal/provider"
	"github.com/raghuchilukamari/investor-gps/pkg/models"
)

func withTestServer(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	orig := apiURL
	apiURL = srv.URL
	t.Cleanup(func() { apiURL = orig })
}

func TestSeriesFetch(t *testing.T) {
	withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.RawQuery, "series_id=UNRATE") {
			t.Errorf("expected series_id=UNRATE in query, got %s", r.URL.RawQuery)
		}
		if !strings.Contains(r.URL.RawQuery, "api_key=test-key") {
			t.Errorf("expected api key in query, got %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{
			"count": 3,
			"observations": [
				{"date": "2024-01-01", "value": "3.7"},
				{"date": "2024-02-01", "value": "."},
				{"date": "2024-03-01", "value": "3.8"}
			]
		}`))
	})

	p := New()
	if err := p.Init(map[string]string{credAPIKey: "test-key"}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	f := p.Fetcher(provider.ModelFredSeries)
	res, err := f.Fetch(context.Background(), provider.QueryParams{provider.ParamSeriesID: "UNRATE"})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	data, ok := res.Data.([]models.EconomicObservation)
	if !ok {
		t.Fatalf("unexpected data type %T", res.Data)
	}
	if len(data) != 2 {
		t.Fatalf("expected 2 observations (missing value skipped), got %d", len(data))
	}
	if data[0].Value != 3.7 {
		t.Errorf("expected 3.7, got %v", data[0].Value)
	}
	if data[0].Date.Year() != 2024 || data[0].Date.Month() != 1 {
		t.Errorf("unexpected date %v", data[0].Date)
	}
}

func TestSeriesFetchRequiresAPIKey(t *testing.T) {
	p := New()
	err := p.Init(nil)
	if err == nil {
		t.Fatal("expected error for missing api key")
	}
	if _, ok := err.(*provider.ErrInvalidCredentials); !ok {
		t.Errorf("expected ErrInvalidCredentials, got %T", err)
	}
}

func TestIndicatorFetch(t *testing.T) {
	withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.RawQuery, "series_id=UNRATE") {
			t.Errorf("expected series_id=UNRATE, got %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{
			"count": 2,
			"observations": [
				{"date": "2024-03-01", "value": "3.8"},
				{"date": "2024-02-01", "value": "3.7"}
			]
		}`))
	})

	p := New()
	if err := p.Init(map[string]string{credAPIKey: "test-key"}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	f := p.Fetcher(provider.ModelMacroIndicator)
	res, err := f.Fetch(context.Background(), provider.QueryParams{provider.ParamSeriesID: "Unemployment Rate"})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	snap, ok := res.Data.(*models.IndicatorSnapshot)
	if !ok {
		t.Fatalf("unexpected data type %T", res.Data)
	}
	if snap.Value != 3.8 {
		t.Errorf("expected value 3.8, got %v", snap.Value)
	}
	if snap.PreviousValue != 3.7 {
		t.Errorf("expected previous 3.7, got %v", snap.PreviousValue)
	}
	if snap.Source != "FRED" {
		t.Errorf("expected source FRED, got %s", snap.Source)
	}
	if snap.Category != "employment" {
		t.Errorf("expected category employment, got %s", snap.Category)
	}
}

func TestIndicatorFetchUnknownIndicator(t *testing.T) {
	p := New()
	if err := p.Init(map[string]string{credAPIKey: "test-key"}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	f := p.Fetcher(provider.ModelMacroIndicator)
	_, err := f.Fetch(context.Background(), provider.QueryParams{provider.ParamSeriesID: "Bogus Indicator"})
	if err == nil {
		t.Fatal("expected error for unknown indicator")
	}
}

func TestSeriesFetchUpstreamFailure(t *testing.T) {
	withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusBadRequest)
	})

	p := New()
	if err := p.Init(map[string]string{credAPIKey: "bad"}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	f := p.Fetcher(provider.ModelFredSeries)
	_, err := f.Fetch(context.Background(), provider.QueryParams{provider.ParamSeriesID: "UNRATE"})
	var ue *provider.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %T: %v", err, err)
	}
}

func TestIndicatorCatalog(t *testing.T) {
	names := IndicatorNames()
	if len(names) != len(indicatorCatalog) {
		t.Fatalf("expected %d names, got %d", len(indicatorCatalog), len(names))
	}
	spec, ok := lookupIndicator("CPIAUCSL")
	if !ok {
		t.Fatal("lookup by series ID should work")
	}
	if spec.Name != "CPI" {
		t.Errorf("expected CPI, got %s", spec.Name)
	}
}
