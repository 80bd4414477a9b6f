package model

import "time"

// Config is the process-wide configuration.
// It is read once at startup and passed by value afterwards.
type Config struct {
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// ServerConfig controls the HTTP surface
type ServerConfig struct {
	Host            string        `yaml:"host" mapstructure:"host"`
	Port            int           `yaml:"port" mapstructure:"port"`
	CORSOrigins     []string      `yaml:"cors_origins" mapstructure:"cors_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// LLMConfig describes the external reasoning service
type LLMConfig struct {
	APIKey           string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL          string        `yaml:"base_url" mapstructure:"base_url"`
	Model            string        `yaml:"model" mapstructure:"model"`
	Timeout          time.Duration `yaml:"timeout" mapstructure:"timeout"` // 0 disables the deadline
	ExtractMaxTokens int           `yaml:"extract_max_tokens" mapstructure:"extract_max_tokens"`
	VerifyMaxTokens  int           `yaml:"verify_max_tokens" mapstructure:"verify_max_tokens"`
	HTTPProxy        string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy       string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy          string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// ConcurrencyConfig bounds parallel work
type ConcurrencyConfig struct {
	Verifiers int `yaml:"verifiers" mapstructure:"verifiers"` // Parallel claim verifications per request
	Batch     int `yaml:"batch" mapstructure:"batch"`         // Parallel texts in batch mode
}

// LogConfig selects level and encoding of the structured logger
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // json or console
}

// Defaults for the reasoning service
const (
	DefaultBaseURL          = "https://api.perplexity.ai"
	DefaultModel            = "sonar-pro"
	DefaultExtractMaxTokens = 300
	DefaultVerifyMaxTokens  = 500
)

// DefaultConfig returns the configuration used when nothing is overridden
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            5000,
			CORSOrigins:     []string{"*"},
			ShutdownTimeout: 10 * time.Second,
		},
		LLM: LLMConfig{
			BaseURL:          DefaultBaseURL,
			Model:            DefaultModel,
			Timeout:          60 * time.Second,
			ExtractMaxTokens: DefaultExtractMaxTokens,
			VerifyMaxTokens:  DefaultVerifyMaxTokens,
		},
		Concurrency: ConcurrencyConfig{
			Verifiers: 1,
			Batch:     4,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// MarshalYAML renders durations as "10s" rather than nanoseconds
func (c ServerConfig) MarshalYAML() (interface{}, error) {
	return struct {
		Host            string   `yaml:"host"`
		Port            int      `yaml:"port"`
		CORSOrigins     []string `yaml:"cors_origins"`
		ShutdownTimeout string   `yaml:"shutdown_timeout"`
	}{c.Host, c.Port, c.CORSOrigins, c.ShutdownTimeout.String()}, nil
}

// MarshalYAML renders the timeout as "1m0s" rather than nanoseconds
func (c LLMConfig) MarshalYAML() (interface{}, error) {
	return struct {
		APIKey           string `yaml:"api_key"`
		BaseURL          string `yaml:"base_url"`
		Model            string `yaml:"model"`
		Timeout          string `yaml:"timeout"`
		ExtractMaxTokens int    `yaml:"extract_max_tokens"`
		VerifyMaxTokens  int    `yaml:"verify_max_tokens"`
		HTTPProxy        string `yaml:"http_proxy,omitempty"`
		HTTPSProxy       string `yaml:"https_proxy,omitempty"`
		NoProxy          string `yaml:"no_proxy,omitempty"`
	}{
		c.APIKey, c.BaseURL, c.Model, c.Timeout.String(),
		c.ExtractMaxTokens, c.VerifyMaxTokens,
		c.HTTPProxy, c.HTTPSProxy, c.NoProxy,
	}, nil
}
