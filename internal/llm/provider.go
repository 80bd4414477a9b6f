package llm

import (
	"context"
	"time"

	"github.com/ppiankov/factcheck/internal/model"
)

// Completer sends a single prompt to the external reasoning service
type Completer interface {
	// Complete returns the raw text of the first choice.
	// Non-200 answers fail with *UpstreamError, network failures with *TransportError.
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Config holds the reasoning service configuration
type Config struct {
	// APIKey is sent as a bearer token. An empty key is not rejected here;
	// the service answers 401 on the first call instead.
	APIKey string

	// BaseURL of the OpenAI-compatible endpoint (chat/completions is appended)
	BaseURL string

	// Model id sent with every request
	Model string

	// Timeout per call; zero means no deadline
	Timeout time.Duration

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns the Perplexity Sonar defaults
func DefaultConfig() Config {
	return Config{
		BaseURL: model.DefaultBaseURL,
		Model:   model.DefaultModel,
		Timeout: 60 * time.Second,
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(modelConfig model.LLMConfig) Config {
	return Config{
		APIKey:     modelConfig.APIKey,
		BaseURL:    modelConfig.BaseURL,
		Model:      modelConfig.Model,
		Timeout:    modelConfig.Timeout,
		HTTPProxy:  modelConfig.HTTPProxy,
		HTTPSProxy: modelConfig.HTTPSProxy,
		NoProxy:    modelConfig.NoProxy,
	}
}
