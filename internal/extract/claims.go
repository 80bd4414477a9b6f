package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/ppiankov/factcheck/internal/llm"
	"github.com/ppiankov/factcheck/internal/model"
)

// Placeholder claims emitted when extraction fails
const (
	UnableToExtract    = "Unable to extract claims"
	extractErrorPrefix = "Error extracting claims: "
)

// ClaimExtractor asks the reasoning service to enumerate the factual claims in a text
type ClaimExtractor struct {
	completer llm.Completer
	maxTokens int
}

// NewClaimExtractor creates a new claim extractor
func NewClaimExtractor(completer llm.Completer, maxTokens int) *ClaimExtractor {
	if maxTokens <= 0 {
		maxTokens = model.DefaultExtractMaxTokens
	}
	return &ClaimExtractor{
		completer: completer,
		maxTokens: maxTokens,
	}
}

// Extract returns the claims found in text, in the order the service listed them.
// An empty slice is a valid result.
func (e *ClaimExtractor) Extract(ctx context.Context, text string) ([]model.Claim, error) {
	raw, err := e.completer.Complete(ctx, BuildPrompt(text), e.maxTokens)
	if err != nil {
		return nil, fmt.Errorf("extract claims: %w", err)
	}
	return ParseClaims(raw), nil
}

// BuildPrompt constructs the extraction prompt
func BuildPrompt(text string) string {
	return fmt.Sprintf(`Extract all factual claims from this text that can be fact-checked.
Return only the claims as a numbered list, nothing else:

Text: %s`, text)
}

// ParseClaims keeps the lines of a numbered list.
// A line is kept when it is non-blank and one of its first three characters is a digit;
// "1." and "2)" match, "Note:" and "- a" do not.
func ParseClaims(raw string) []model.Claim {
	claims := []model.Claim{}
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || !digitInPrefix(line, 3) {
			continue
		}
		claims = append(claims, model.Claim(trimmed))
	}
	return claims
}

// digitInPrefix reports whether any of the first n runes of s is a decimal digit
func digitInPrefix(s string, n int) bool {
	i := 0
	for _, r := range s {
		if i >= n {
			break
		}
		if unicode.IsDigit(r) {
			return true
		}
		i++
	}
	return false
}

// Placeholder converts an extraction failure into the single informational claim
// that is verified in place of real claims.
func Placeholder(err error) []model.Claim {
	if llm.IsUpstream(err) {
		return []model.Claim{UnableToExtract}
	}
	return []model.Claim{model.Claim(extractErrorPrefix + rootMessage(err))}
}

// rootMessage drops our own wrapping so the placeholder shows the underlying cause
func rootMessage(err error) string {
	var transport *llm.TransportError
	if errors.As(err, &transport) {
		return transport.Error()
	}
	return err.Error()
}
