package macrometer

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/raghuchilukamari/investor-gps/internal/provider"
	"github.com/raghuchilukamari/investor-gps/internal/providers/fred"
	"github.com/raghuchilukamari/investor-gps/pkg/models"
)

// memStore is an in-memory IndicatorStore.
type memStore struct {
	mu    sync.Mutex
	snaps map[string]models.IndicatorSnapshot
}

func newMemStore() *memStore {
	return &memStore{snaps: make(map[string]models.IndicatorSnapshot)}
}

func (m *memStore) UpsertIndicator(ctx context.Context, snap models.IndicatorSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[snap.Name] = snap
	return nil
}

func (m *memStore) GetIndicator(ctx context.Context, name string) (*models.IndicatorSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snaps[name]
	if !ok {
		return nil, fmt.Errorf("indicator %q not found", name)
	}
	return &snap, nil
}

func (m *memStore) ListIndicators(ctx context.Context) ([]models.IndicatorSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.IndicatorSnapshot, 0, len(m.snaps))
	for _, s := range m.snaps {
		out = append(out, s)
	}
	return out, nil
}

func (m *memStore) DeleteIndicator(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snaps, name)
	return nil
}

// stubIndicatorProvider serves canned snapshots, failing listed names.
type stubIndicatorProvider struct {
	provider.BaseProvider
}

type stubIndicatorFetcher struct {
	provider.BaseFetcher
	values map[string][2]float64 // name → {value, previous}
}

func (f *stubIndicatorFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	name := params[provider.ParamSeriesID]
	vals, ok := f.values[name]
	if !ok {
		return nil, &provider.UpstreamError{Provider: "stub", Detail: "unavailable: " + name}
	}
	return &provider.FetchResult{
		Data: &models.IndicatorSnapshot{
			Name:          name,
			Value:         vals[0],
			PreviousValue: vals[1],
			Source:        "stub",
		},
		FetchedAt: time.Now(),
	}, nil
}

func stubRegistry(t *testing.T, values map[string][2]float64) *provider.Registry {
	t.Helper()
	p := &stubIndicatorProvider{
		BaseProvider: provider.NewBaseProvider("stub-econ", "stub", "https://example.com", nil),
	}
	p.RegisterFetcher(&stubIndicatorFetcher{
		BaseFetcher: provider.NewBaseFetcher(
			provider.ModelMacroIndicator, "stub indicators",
			[]string{provider.ParamSeriesID}, nil,
		),
		values: values,
	})
	reg := provider.NewRegistry()
	if err := reg.Register(p); err != nil {
		t.Fatalf("register stub provider: %v", err)
	}
	return reg
}

func TestRefreshPartialFailure(t *testing.T) {
	// Only two catalog indicators resolve; the rest fail upstream.
	values := map[string][2]float64{
		"CPI":               {310.0, 308.0},
		"Unemployment Rate": {3.8, 3.8},
	}
	store := newMemStore()
	svc := NewService(stubRegistry(t, values), store)

	res, err := svc.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if len(res.Refreshed) != 2 {
		t.Errorf("expected 2 refreshed, got %v", res.Refreshed)
	}
	if len(res.Failed) != len(fred.IndicatorNames())-2 {
		t.Errorf("expected %d failures, got %v", len(fred.IndicatorNames())-2, res.Failed)
	}

	cpi, err := store.GetIndicator(context.Background(), "CPI")
	if err != nil {
		t.Fatalf("CPI not stored: %v", err)
	}
	// (310-308)/308*100 = 0.649 > 0.5 → bullish.
	if cpi.Change != 0.649 {
		t.Errorf("expected change 0.649, got %v", cpi.Change)
	}
	if cpi.Signal != "bullish" {
		t.Errorf("expected bullish, got %s", cpi.Signal)
	}

	unrate, _ := store.GetIndicator(context.Background(), "Unemployment Rate")
	if unrate.Change != 0 || unrate.Signal != "neutral" {
		t.Errorf("flat indicator should be neutral, got %v/%s", unrate.Change, unrate.Signal)
	}
}

func TestPercentChangeZeroPrior(t *testing.T) {
	if got := percentChange(5.0, 0); got != 0 {
		t.Errorf("zero prior must read as no change, got %v", got)
	}
}

func TestSignalThresholds(t *testing.T) {
	cases := []struct {
		change float64
		want   string
	}{
		{0.6, "bullish"},
		{0.5, "neutral"},
		{0.0, "neutral"},
		{-0.5, "neutral"},
		{-0.6, "bearish"},
	}
	for _, c := range cases {
		if got := Signal(c.change); got != c.want {
			t.Errorf("Signal(%v) = %q, want %q", c.change, got, c.want)
		}
	}
}

func TestUpdateMergesTaggedFields(t *testing.T) {
	store := newMemStore()
	svc := NewService(stubRegistry(t, nil), store)

	if _, err := svc.Create(context.Background(), models.IndicatorSnapshot{
		Name:          "Custom",
		Value:         100.0,
		PreviousValue: 100.0,
		Category:      "custom",
		Frequency:     "monthly",
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	v := 102.0
	updated, err := svc.Update(context.Background(), "Custom", models.IndicatorUpdate{Value: &v})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if updated.Value != 102.0 {
		t.Errorf("expected value 102, got %v", updated.Value)
	}
	if updated.PreviousValue != 100.0 {
		t.Errorf("untouched field must survive the merge, got %v", updated.PreviousValue)
	}
	if updated.Category != "custom" {
		t.Errorf("untouched field must survive the merge, got %s", updated.Category)
	}
	// Change recomputed from the merged values: 2% → bullish.
	if updated.Change != 2.0 {
		t.Errorf("expected recomputed change 2.0, got %v", updated.Change)
	}
	if updated.Signal != "bullish" {
		t.Errorf("expected bullish, got %s", updated.Signal)
	}
}

func TestUpdateExplicitFieldsPinned(t *testing.T) {
	store := newMemStore()
	svc := NewService(stubRegistry(t, nil), store)

	if _, err := svc.Create(context.Background(), models.IndicatorSnapshot{
		Name: "Pinned", Value: 100.0, PreviousValue: 100.0,
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	v, chg, sig := 110.0, 1.5, "neutral"
	updated, err := svc.Update(context.Background(), "Pinned", models.IndicatorUpdate{
		Value: &v, Change: &chg, Signal: &sig,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Change != 1.5 || updated.Signal != "neutral" {
		t.Errorf("explicit change/signal must not be recomputed, got %v/%s", updated.Change, updated.Signal)
	}
}

func TestCreateRequiresName(t *testing.T) {
	svc := NewService(stubRegistry(t, nil), newMemStore())
	if _, err := svc.Create(context.Background(), models.IndicatorSnapshot{}); err == nil {
		t.Fatal("expected error for empty name")
	}
}

func TestDelete(t *testing.T) {
	store := newMemStore()
	svc := NewService(stubRegistry(t, nil), store)
	if _, err := svc.Create(context.Background(), models.IndicatorSnapshot{Name: "Gone", Value: 1}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := svc.Delete(context.Background(), "Gone"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := svc.Get(context.Background(), "Gone"); err == nil {
		t.Fatal("expected not-found after delete")
	}
}
