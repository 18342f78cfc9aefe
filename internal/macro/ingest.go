package macro

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/raghuchilukamari/investor-gps/internal/provider"
	"github.com/raghuchilukamari/investor-gps/pkg/models"
)

// SeriesStore is the persistence surface the ingest batch writes through.
// ResetSeriesTables is destructive and is invoked exactly once per batch,
// before the first write; the orchestrator owns that serialization.
type SeriesStore interface {
	ResetSeriesTables(ctx context.Context) error
	StoreSeries(ctx context.Context, rows []models.SeriesMatrixRow, summary *models.SeriesSummaryRow, seriesID string) error
}

// Ingestor runs multi-series ingest batches: one batched upstream fetch,
// one table reset, then normalize-and-store per series.
type Ingestor struct {
	registry *provider.Registry
	store    SeriesStore
}

// NewIngestor creates an ingest orchestrator over the given registry and store.
func NewIngestor(registry *provider.Registry, store SeriesStore) *Ingestor {
	return &Ingestor{registry: registry, store: store}
}

// IngestResult summarizes one completed batch.
type IngestResult struct {
	SeriesStored  []string                            `json:"series_stored"`
	SeriesSkipped []string                            `json:"series_skipped,omitempty"`
	Summaries     map[string]*models.SeriesSummaryRow `json:"summaries"`
	MatrixRows    int                                 `json:"matrix_rows"`
}

// Run executes a full ingest batch for the given series IDs.
//
// The upstream data is fetched in a single batched request. The series
// tables are reset once, before any write. A normalization failure for one
// series skips that series and continues; a storage failure aborts the
// remaining batch, since the destructive-reset contract assumes an
// all-or-nothing batch.
func (ing *Ingestor) Run(ctx context.Context, seriesIDs []string, startYear, endYear string) (*IngestResult, error) {
	if len(seriesIDs) == 0 {
		return nil, fmt.Errorf("ingest: no series requested")
	}

	res, err := ing.registry.Fetch(ctx, provider.ModelBlsSeries, provider.QueryParams{
		provider.ParamSeriesIDs: strings.Join(seriesIDs, ","),
		provider.ParamStartYear: startYear,
		provider.ParamEndYear:   endYear,
	})
	if err != nil {
		return nil, fmt.Errorf("ingest fetch: %w", err)
	}

	bySeries, ok := res.Data.(map[string][]models.RawSeriesPoint)
	if !ok {
		return nil, fmt.Errorf("ingest: unexpected fetch payload %T", res.Data)
	}

	if err := ing.store.ResetSeriesTables(ctx); err != nil {
		return nil, fmt.Errorf("ingest reset: %w", err)
	}

	out := &IngestResult{Summaries: make(map[string]*models.SeriesSummaryRow)}
	for _, id := range seriesIDs {
		points := bySeries[id]

		rows, summary, err := Normalize(points, id)
		if err != nil {
			log.Printf("ingest: skipping %s: %v", id, err)
			out.SeriesSkipped = append(out.SeriesSkipped, id)
			continue
		}
		if len(rows) == 0 {
			// Empty or all-malformed upstream data: absence, nothing to store.
			out.SeriesSkipped = append(out.SeriesSkipped, id)
			continue
		}

		if err := ing.store.StoreSeries(ctx, rows, summary, id); err != nil {
			return nil, fmt.Errorf("ingest store %s: %w", id, err)
		}

		out.SeriesStored = append(out.SeriesStored, id)
		out.Summaries[id] = summary
		out.MatrixRows += len(rows)
	}

	return out, nil
}
