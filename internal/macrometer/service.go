// Package macrometer maintains the dashboard's macro indicator snapshots:
// refreshing them from the economic-data provider, deriving change and
// signal, and applying partial updates through an explicit merge.
package macrometer

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/raghuchilukamari/investor-gps/internal/provider"
	"github.com/raghuchilukamari/investor-gps/internal/providers/fred"
	"github.com/raghuchilukamari/investor-gps/pkg/models"
)

// signalThreshold is the percent change beyond which an indicator stops
// reading neutral.
const signalThreshold = 0.5

// IndicatorStore is the persistence surface for indicator snapshots.
type IndicatorStore interface {
	UpsertIndicator(ctx context.Context, snap models.IndicatorSnapshot) error
	GetIndicator(ctx context.Context, name string) (*models.IndicatorSnapshot, error)
	ListIndicators(ctx context.Context) ([]models.IndicatorSnapshot, error)
	DeleteIndicator(ctx context.Context, name string) error
}

// Service refreshes and serves indicator snapshots.
type Service struct {
	registry *provider.Registry
	store    IndicatorStore
}

// NewService creates an indicator service over the given registry and store.
func NewService(registry *provider.Registry, store IndicatorStore) *Service {
	return &Service{registry: registry, store: store}
}

// RefreshResult summarizes one refresh pass.
type RefreshResult struct {
	Refreshed []string `json:"refreshed"`
	Failed    []string `json:"failed,omitempty"`
}

// Refresh pulls a fresh snapshot for every catalog indicator concurrently,
// derives its change and signal, and upserts it. A provider failure for one
// indicator is recorded and does not abort the others.
func (s *Service) Refresh(ctx context.Context) (*RefreshResult, error) {
	var mu sync.Mutex
	out := &RefreshResult{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, name := range fred.IndicatorNames() {
		g.Go(func() error {
			snap, err := s.fetchSnapshot(gctx, name)
			if err != nil {
				log.Printf("macrometer: refresh %s: %v", name, err)
				mu.Lock()
				out.Failed = append(out.Failed, name)
				mu.Unlock()
				return nil
			}
			if err := s.store.UpsertIndicator(gctx, *snap); err != nil {
				return fmt.Errorf("upsert %s: %w", name, err)
			}
			mu.Lock()
			out.Refreshed = append(out.Refreshed, name)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Strings(out.Refreshed)
	sort.Strings(out.Failed)
	return out, nil
}

func (s *Service) fetchSnapshot(ctx context.Context, name string) (*models.IndicatorSnapshot, error) {
	res, err := s.registry.Fetch(ctx, provider.ModelMacroIndicator, provider.QueryParams{
		provider.ParamSeriesID: name,
	})
	if err != nil {
		return nil, err
	}
	snap, ok := res.Data.(*models.IndicatorSnapshot)
	if !ok {
		return nil, fmt.Errorf("unexpected indicator payload %T", res.Data)
	}

	snap.Change = percentChange(snap.Value, snap.PreviousValue)
	snap.Signal = Signal(snap.Change)
	snap.LastUpdated = time.Now()
	return snap, nil
}

// percentChange returns the percent change from prev to cur. A zero prior
// value reads as no change rather than an undefined ratio.
func percentChange(cur, prev float64) float64 {
	if prev == 0 {
		return 0
	}
	return math.Round((cur-prev)/prev*100*1000) / 1000
}

// Signal maps a percent change to a market signal.
func Signal(change float64) string {
	switch {
	case change > signalThreshold:
		return "bullish"
	case change < -signalThreshold:
		return "bearish"
	default:
		return "neutral"
	}
}

// List returns all stored indicator snapshots.
func (s *Service) List(ctx context.Context) ([]models.IndicatorSnapshot, error) {
	return s.store.ListIndicators(ctx)
}

// Get returns one indicator snapshot by name.
func (s *Service) Get(ctx context.Context, name string) (*models.IndicatorSnapshot, error) {
	return s.store.GetIndicator(ctx, name)
}

// Create stores a new indicator snapshot, deriving change and signal from
// its value fields.
func (s *Service) Create(ctx context.Context, snap models.IndicatorSnapshot) (*models.IndicatorSnapshot, error) {
	if snap.Name == "" {
		return nil, fmt.Errorf("indicator name is required")
	}
	snap.Change = percentChange(snap.Value, snap.PreviousValue)
	snap.Signal = Signal(snap.Change)
	snap.LastUpdated = time.Now()
	if err := s.store.UpsertIndicator(ctx, snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Update applies a partial update to a stored indicator through the tagged
// merge, recomputing change and signal when either value field moved but
// neither was pinned explicitly.
func (s *Service) Update(ctx context.Context, name string, upd models.IndicatorUpdate) (*models.IndicatorSnapshot, error) {
	cur, err := s.store.GetIndicator(ctx, name)
	if err != nil {
		return nil, err
	}

	merged := upd.Merge(*cur, time.Now())
	if (upd.Value != nil || upd.PreviousValue != nil) && upd.Change == nil {
		merged.Change = percentChange(merged.Value, merged.PreviousValue)
		if upd.Signal == nil {
			merged.Signal = Signal(merged.Change)
		}
	}

	if err := s.store.UpsertIndicator(ctx, merged); err != nil {
		return nil, err
	}
	return &merged, nil
}

// Delete removes a stored indicator.
func (s *Service) Delete(ctx context.Context, name string) error {
	return s.store.DeleteIndicator(ctx, name)
}
