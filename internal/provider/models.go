package provider

// ModelType identifies a standard data model that a provider can fetch.
// Each ModelType maps to a concrete structure in pkg/models.
type ModelType string

const (
	// ModelBlsSeries is raw labor-statistics series data: the fetch returns
	// map[seriesID][]models.RawSeriesPoint.
	ModelBlsSeries ModelType = "BlsSeries"

	// ModelFredSeries is a generic macro observation series: the fetch
	// returns []models.EconomicObservation.
	ModelFredSeries ModelType = "FredSeries"

	// ModelMacroIndicator is a current/previous indicator snapshot: the
	// fetch returns *models.IndicatorSnapshot.
	ModelMacroIndicator ModelType = "MacroIndicator"

	// ModelEquityHistorical is daily OHLCV price history: the fetch returns
	// []models.OHLCV.
	ModelEquityHistorical ModelType = "EquityHistorical"
)

// AllModels returns all defined model types. Useful for iteration and validation.
func AllModels() []ModelType {
	return []ModelType{
		ModelBlsSeries,
		ModelFredSeries,
		ModelMacroIndicator,
		ModelEquityHistorical,
	}
}

// ModelCategory maps model types to their category for grouping.
func ModelCategory(m ModelType) string {
	switch m {
	case ModelBlsSeries, ModelFredSeries, ModelMacroIndicator:
		return "Economy"
	case ModelEquityHistorical:
		return "Markets"
	default:
		return "Other"
	}
}
