package model

import "strings"

// Claim is a single factual assertion pulled out of the input text.
// Extraction order is preserved and duplicates are passed through unchanged.
type Claim string

// IsBlank reports whether the claim trims to the empty string
func (c Claim) IsBlank() bool {
	return strings.TrimSpace(string(c)) == ""
}

// ClaimResult pairs a claim with the verdict the reasoning service returned for it
type ClaimResult struct {
	Claim  Claim         `json:"claim"`
	Result VerdictRecord `json:"result"`
}
