package verify

import (
	"context"
	"errors"
	"fmt"

	"github.com/ppiankov/factcheck/internal/llm"
	"github.com/ppiankov/factcheck/internal/model"
)

// ClaimVerifier asks the reasoning service to adjudicate a single claim
type ClaimVerifier struct {
	completer llm.Completer
	maxTokens int
}

// NewClaimVerifier creates a new claim verifier
func NewClaimVerifier(completer llm.Completer, maxTokens int) *ClaimVerifier {
	if maxTokens <= 0 {
		maxTokens = model.DefaultVerifyMaxTokens
	}
	return &ClaimVerifier{
		completer: completer,
		maxTokens: maxTokens,
	}
}

// Verify returns the verdict record for claim.
// A successful call always yields a record: parseable answers are returned as
// decoded, prose answers are wrapped. Call failures are returned as errors;
// use Sentinel to turn them into an ERROR record.
func (v *ClaimVerifier) Verify(ctx context.Context, claim model.Claim) (model.VerdictRecord, error) {
	raw, err := v.completer.Complete(ctx, BuildPrompt(claim), v.maxTokens)
	if err != nil {
		return model.VerdictRecord{}, fmt.Errorf("verify claim: %w", err)
	}
	return Parse(raw).Record(), nil
}

// BuildPrompt constructs the verification prompt
func BuildPrompt(claim model.Claim) string {
	return fmt.Sprintf(`Fact-check this claim with high accuracy. Provide:
1. Verdict (TRUE/FALSE/PARTIALLY TRUE/INSUFFICIENT EVIDENCE)
2. Confidence level (0-100%%)
3. Brief explanation (2-3 sentences)
4. Key sources used

Claim: %s

Format your response as JSON with keys: verdict, confidence, explanation, sources`, claim)
}

// Sentinel converts a verification failure into an ERROR record
func Sentinel(err error) model.VerdictRecord {
	if llm.IsUpstream(err) {
		return model.ErrorRecord(model.VerifyFailedExplanation)
	}

	msg := err.Error()
	var transport *llm.TransportError
	if errors.As(err, &transport) {
		msg = transport.Error()
	}
	return model.ErrorRecord("Error: " + msg)
}
