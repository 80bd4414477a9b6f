package verify

import "github.com/ppiankov/factcheck/internal/model"

// Outcome is the result of parsing a verification answer.
// It is either Structured (the answer was a JSON object) or Unstructured (free prose).
type Outcome interface {
	// Record maps the outcome onto the verdict record returned to callers
	Record() model.VerdictRecord

	isOutcome()
}

// Structured holds an answer that was a JSON object
type Structured struct {
	Verdict model.VerdictRecord
}

// Record returns the decoded verdict, which serializes as the original object
func (s Structured) Record() model.VerdictRecord {
	return s.Verdict
}

func (Structured) isOutcome() {}

// Unstructured holds an answer that was not a JSON object
type Unstructured struct {
	Raw string
}

// Record wraps the raw answer in an ANALYSIS COMPLETE record
func (u Unstructured) Record() model.VerdictRecord {
	return model.AnalysisRecord(u.Raw)
}

func (Unstructured) isOutcome() {}

// Parse classifies a raw verification answer.
// The answer must be a single JSON object as written, with no markdown fence
// or surrounding prose; that object is kept verbatim. Anything else is
// Unstructured and keeps the untouched raw text.
func Parse(raw string) Outcome {
	record, ok := model.RecordFromJSON([]byte(raw))
	if !ok {
		return Unstructured{Raw: raw}
	}
	return Structured{Verdict: record}
}
