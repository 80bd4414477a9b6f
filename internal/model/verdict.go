package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Verdict is the categorical truth assessment attached to a claim
type Verdict string

const (
	VerdictTrue                 Verdict = "TRUE"
	VerdictFalse                Verdict = "FALSE"
	VerdictPartiallyTrue        Verdict = "PARTIALLY TRUE"
	VerdictInsufficientEvidence Verdict = "INSUFFICIENT EVIDENCE"
	VerdictAnalysisComplete     Verdict = "ANALYSIS COMPLETE" // Unstructured model answer
	VerdictError                Verdict = "ERROR"             // Upstream or transport failure
)

// Known reports whether v is one of the verdicts the service is asked to produce.
// Unknown verdicts returned by the model are still passed through verbatim.
func (v Verdict) Known() bool {
	switch v {
	case VerdictTrue, VerdictFalse, VerdictPartiallyTrue, VerdictInsufficientEvidence,
		VerdictAnalysisComplete, VerdictError:
		return true
	}
	return false
}

const (
	// FallbackConfidence is reported for answers that could not be parsed as JSON
	FallbackConfidence Confidence = 75

	// FallbackSource is the only source listed for unparsed answers
	FallbackSource = "Perplexity Sonar Analysis"

	// VerifyFailedExplanation is used when the upstream rejected the verification call
	VerifyFailedExplanation = "Failed to verify claim"
)

// Confidence is a percentage in the range 0..100
type Confidence int

// UnmarshalJSON accepts integers, floats and numeric strings such as "85%".
// Values are rounded and clamped into 0..100. This only shapes the typed view;
// a decoded answer is still serialized as the model wrote it.
func (c *Confidence) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("confidence: expected number or string, got %s", string(data))
		}
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
		f, err = strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("confidence: %w", err)
		}
	}

	f = math.Round(f)
	switch {
	case f < 0:
		f = 0
	case f > 100:
		f = 100
	}
	*c = Confidence(f)
	return nil
}

// VerdictRecord is the adjudication of one claim.
// Records decoded from a model answer keep that answer in Raw, which is what
// gets serialized; the typed fields are a best-effort view of it used for
// logs and metrics. Records built locally have no Raw.
type VerdictRecord struct {
	Verdict     Verdict         `json:"verdict"`
	Confidence  Confidence      `json:"confidence"`
	Explanation string          `json:"explanation"`
	Sources     []string        `json:"sources"`
	Raw         json.RawMessage `json:"-"`
}

// MarshalJSON writes Raw unchanged when present, otherwise the typed fields
// with sources kept an array
func (r VerdictRecord) MarshalJSON() ([]byte, error) {
	if len(r.Raw) > 0 {
		return r.Raw, nil
	}
	type plain VerdictRecord
	out := plain(r)
	if out.Sources == nil {
		out.Sources = []string{}
	}
	return json.Marshal(out)
}

// RecordFromJSON takes a model answer that is exactly one JSON object and
// keeps it verbatim, whatever keys and value types it carries.
// It reports false for anything else, including trailing text.
func RecordFromJSON(data []byte) (VerdictRecord, bool) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return VerdictRecord{}, false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return VerdictRecord{}, false
	}

	raw := make(json.RawMessage, len(trimmed))
	copy(raw, trimmed)

	return VerdictRecord{
		Verdict:     field[Verdict](fields, "verdict"),
		Confidence:  field[Confidence](fields, "confidence"),
		Explanation: field[string](fields, "explanation"),
		Sources:     field[[]string](fields, "sources"),
		Raw:         raw,
	}, true
}

// field decodes one key into T, yielding the zero value when it is absent or of another type
func field[T any](fields map[string]json.RawMessage, key string) T {
	var v T
	data, ok := fields[key]
	if !ok {
		return v
	}
	if err := json.Unmarshal(data, &v); err != nil {
		var zero T
		return zero
	}
	return v
}

// ErrorRecord builds the sentinel record used when a claim could not be verified
func ErrorRecord(explanation string) VerdictRecord {
	return VerdictRecord{
		Verdict:     VerdictError,
		Confidence:  0,
		Explanation: explanation,
		Sources:     []string{},
	}
}

// AnalysisRecord wraps a free-form model answer that was not valid JSON
func AnalysisRecord(raw string) VerdictRecord {
	return VerdictRecord{
		Verdict:     VerdictAnalysisComplete,
		Confidence:  FallbackConfidence,
		Explanation: raw,
		Sources:     []string{FallbackSource},
	}
}
