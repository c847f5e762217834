package fred

// Wire shapes of the FRED API responses (file_type=json)

type seriesDoc struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	ObservationStart string `json:"observation_start"`
	ObservationEnd   string `json:"observation_end"`
	Frequency        string `json:"frequency"`
	Units            string `json:"units"`
	LastUpdated      string `json:"last_updated"`
	Popularity       int    `json:"popularity"`
	Notes            string `json:"notes"`
}

type seriesResponse struct {
	Seriess []seriesDoc `json:"seriess"`
}

type observationDoc struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

type observationsResponse struct {
	// nil when the payload has no observations field
	Observations *[]observationDoc `json:"observations"`
}

type errorResponse struct {
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}
