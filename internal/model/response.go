package model

import "time"

// FactCheckResponse is the aggregate payload returned for one input text.
// It is built once per request and discarded after serialization.
type FactCheckResponse struct {
	OriginalText string        `json:"original_text"`
	ClaimsFound  int           `json:"claims_found"`       // Always len(Results)
	Results      []ClaimResult `json:"fact_check_results"` // Extraction order
	Timestamp    float64       `json:"timestamp"`          // Unix seconds with fraction
}

// NewFactCheckResponse assembles the response and stamps it with the given time
func NewFactCheckResponse(text string, results []ClaimResult, at time.Time) *FactCheckResponse {
	if results == nil {
		results = []ClaimResult{}
	}
	return &FactCheckResponse{
		OriginalText: text,
		ClaimsFound:  len(results),
		Results:      results,
		Timestamp:    UnixSeconds(at),
	}
}

// UnixSeconds renders t as fractional seconds since the epoch
func UnixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
