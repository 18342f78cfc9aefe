package fred

import "time"

// --- FRED Observations ---

type fredObservationsResponse struct {
	RealtimeStart    string            `json:"realtime_start"`
	RealtimeEnd      string            `json:"realtime_end"`
	ObservationStart string            `json:"observation_start"`
	ObservationEnd   string            `json:"observation_end"`
	Units            string            `json:"units"`
	Count            int               `json:"count"`
	Observations     []fredObservation `json:"observations"`
}

type fredObservation struct {
	RealtimeStart string `json:"realtime_start"`
	RealtimeEnd   string `json:"realtime_end"`
	Date          string `json:"date"`
	Value         string `json:"value"` // "." marks a missing observation
}

// indicatorSpec describes one dashboard indicator backed by a FRED series.
type indicatorSpec struct {
	Name        string
	SeriesID    string
	Description string
	Category    string
	Frequency   string
}

// indicatorCatalog lists the macro indicators tracked on the dashboard.
var indicatorCatalog = []indicatorSpec{
	{"GDP", "GDPC1", "Real Gross Domestic Product", "growth", "quarterly"},
	{"Unemployment Rate", "UNRATE", "Civilian unemployment rate", "employment", "monthly"},
	{"CPI", "CPIAUCSL", "Consumer Price Index for All Urban Consumers", "inflation", "monthly"},
	{"Federal Funds Rate", "FEDFUNDS", "Effective federal funds rate", "rates", "monthly"},
	{"M2 Money Supply", "M2SL", "M2 money stock", "monetary", "monthly"},
	{"Industrial Production", "INDPRO", "Industrial production index", "growth", "monthly"},
	{"Retail Sales", "RETAILSMNSA", "Retail and food services sales", "consumption", "monthly"},
	{"Housing Starts", "HOUST", "New privately-owned housing units started", "housing", "monthly"},
	{"Nonfarm Payrolls", "PAYEMS", "Total nonfarm payroll employment", "employment", "monthly"},
	{"Durable Goods Orders", "DGORDER", "Manufacturers' new orders, durable goods", "manufacturing", "monthly"},
}

// IndicatorNames returns the names of all catalog indicators, in catalog order.
func IndicatorNames() []string {
	names := make([]string, len(indicatorCatalog))
	for i, s := range indicatorCatalog {
		names[i] = s.Name
	}
	return names
}

func lookupIndicator(name string) (indicatorSpec, bool) {
	for _, s := range indicatorCatalog {
		if s.Name == name || s.SeriesID == name {
			return s, true
		}
	}
	return indicatorSpec{}, false
}

// parseFredDate parses common FRED date formats.
func parseFredDate(s string) time.Time {
	for _, layout := range []string{
		"2006-01-02",
		"2006-01-02T15:04:05",
		time.RFC3339,
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
