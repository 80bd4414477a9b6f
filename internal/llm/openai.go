package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/factcheck/internal/util"
)

// Client talks to an OpenAI-compatible chat completions endpoint (Perplexity Sonar by default)
type Client struct {
	client *openai.Client
	config Config
}

// NewClient creates a new chat completions client
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultConfig().BaseURL
	}
	if config.Model == "" {
		config.Model = DefaultConfig().Model
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	clientConfig.BaseURL = strings.TrimSuffix(config.BaseURL, "/")

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy)
	clientConfig.HTTPClient = &http.Client{Transport: transport}

	return &Client{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}
}

// Model returns the model id sent with every request
func (c *Client) Model() string {
	return c.config.Model
}

// Complete sends prompt as a one-message chat and returns the first choice's content
func (c *Client) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	req := openai.ChatCompletionRequest{
		Model: c.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens: maxTokens,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classify(err)
	}

	// A 200 without choices is an unusable body, not an upstream rejection
	if len(resp.Choices) == 0 {
		return "", &TransportError{Err: ErrNoChoices}
	}

	return resp.Choices[0].Message.Content, nil
}

// classify maps go-openai errors onto UpstreamError / TransportError
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &UpstreamError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return &UpstreamError{StatusCode: reqErr.HTTPStatusCode, Message: strings.TrimSpace(string(reqErr.Body))}
	}

	return &TransportError{Err: err}
}
