package bls

// blsRequest is the POST payload for the timeseries endpoint.
type blsRequest struct {
	SeriesID        []string `json:"seriesid"`
	StartYear       string   `json:"startyear,omitempty"`
	EndYear         string   `json:"endyear,omitempty"`
	RegistrationKey string   `json:"registrationkey,omitempty"`
}

// blsResponse is the envelope the timeseries endpoint returns.
type blsResponse struct {
	Status       string   `json:"status"`
	ResponseTime int      `json:"responseTime"`
	Message      []string `json:"message"`
	Results      struct {
		Series []blsSeries `json:"series"`
	} `json:"Results"`
}

type blsSeries struct {
	SeriesID string    `json:"seriesID"`
	Data     []blsData `json:"data"`
}

type blsData struct {
	Year       string        `json:"year"`
	Period     string        `json:"period"`
	PeriodName string        `json:"periodName"`
	Latest     string        `json:"latest,omitempty"` // "true" on the most recent observation
	Value      string        `json:"value"`
	Footnotes  []blsFootnote `json:"footnotes"`
}

type blsFootnote struct {
	Code string `json:"code,omitempty"`
	Text string `json:"text,omitempty"`
}
