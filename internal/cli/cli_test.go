package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/factcheck/internal/model"
	"github.com/ppiankov/factcheck/internal/worker"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	setDefaults(model.DefaultConfig())
	bindEnv()
}

func TestLoadConfig_Defaults(t *testing.T) {
	resetViper(t)

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, model.DefaultConfig(), cfg)
}

func TestLoadConfig_Environment(t *testing.T) {
	resetViper(t)
	t.Setenv("PERPLEXITY_API_KEY", "pplx-test")
	t.Setenv("FACTCHECK_SERVER_PORT", "8080")
	t.Setenv("FACTCHECK_LLM_TIMEOUT", "15s")
	t.Setenv("FACTCHECK_CONCURRENCY_VERIFIERS", "3")

	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, "pplx-test", cfg.LLM.APIKey)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 3, cfg.Concurrency.Verifiers)
	assert.Equal(t, model.DefaultModel, cfg.LLM.Model)
}

func TestLoadConfig_PrefixedKeyWins(t *testing.T) {
	resetViper(t)
	t.Setenv("FACTCHECK_LLM_API_KEY", "primary")
	t.Setenv("PERPLEXITY_API_KEY", "fallback")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "primary", cfg.LLM.APIKey)
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     model.LogConfig
		verbose bool
		level   zapcore.Level
		wantErr bool
	}{
		{name: "json info", cfg: model.LogConfig{Level: "info", Format: "json"}, level: zapcore.InfoLevel},
		{name: "console warn", cfg: model.LogConfig{Level: "warn", Format: "console"}, level: zapcore.WarnLevel},
		{name: "verbose forces debug", cfg: model.LogConfig{Level: "error", Format: "json"}, verbose: true, level: zapcore.DebugLevel},
		{name: "bad level", cfg: model.LogConfig{Level: "loud", Format: "json"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := newLogger(tt.cfg, tt.verbose)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, l.Core().Enabled(tt.level))
			if tt.level > zapcore.DebugLevel {
				assert.False(t, l.Core().Enabled(tt.level-1))
			}
		})
	}
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", maskSecret(""))
	assert.Equal(t, "****", maskSecret("short"))
	assert.Equal(t, "pplx****wxyz", maskSecret("pplx-abcdefghijklmnopqrstuvwxyz"))
}

func TestRedactConfig_DoesNotMutate(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.LLM.APIKey = "pplx-0123456789"

	redacted := redactConfig(cfg)
	assert.Equal(t, "pplx****6789", redacted.LLM.APIKey)
	assert.Equal(t, "pplx-0123456789", cfg.LLM.APIKey)
}

func TestInitConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".factcheck", "config.yaml")

	require.NoError(t, initConfigFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "PERPLEXITY_API_KEY")
	assert.Contains(t, string(data), "timeout: 1m0s")
	assert.Contains(t, string(data), "shutdown_timeout: 10s")
	assert.NotContains(t, string(data), "60000000000")

	var cfg model.Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, *model.DefaultConfig(), cfg)

	err = initConfigFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestWriteConfigYAML_DurationsReadBack(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.LLM.Timeout = 90 * time.Second

	var buf bytes.Buffer
	require.NoError(t, writeConfigYAML(&buf, cfg))
	assert.Contains(t, buf.String(), "timeout: 1m30s")

	resetViper(t)
	viper.SetConfigType("yaml")
	require.NoError(t, viper.ReadConfig(bytes.NewReader(buf.Bytes())))

	loaded, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, loaded.LLM.Timeout)
	assert.Equal(t, 10*time.Second, loaded.Server.ShutdownTimeout)
}

func TestWriteBatchResults(t *testing.T) {
	results := []*worker.CheckResult{
		{Index: 0, Text: "a", Response: model.NewFactCheckResponse("a", nil, time.Unix(10, 0))},
		{Index: 1, Text: "b", Error: errors.New("context deadline exceeded")},
	}

	var buf bytes.Buffer
	failed, err := writeBatchResults(&buf, results)
	require.NoError(t, err)
	assert.Equal(t, 1, failed)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"index":0,"text":"a","result":{"original_text":"a","claims_found":0,"fact_check_results":[],"timestamp":10}}`, lines[0])
	assert.JSONEq(t, `{"index":1,"text":"b","error":"context deadline exceeded"}`, lines[1])
}

func TestReadInputText(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader("from stdin"))

	text, err := readInputText(cmd, []string{"from", "args"})
	require.NoError(t, err)
	assert.Equal(t, "from args", text)

	text, err = readInputText(cmd, nil)
	require.NoError(t, err)
	assert.Equal(t, "from stdin", text)

	path := filepath.Join(t.TempDir(), "in.txt")
	require.NoError(t, os.WriteFile(path, []byte("from file"), 0644))
	checkFile = path
	t.Cleanup(func() { checkFile = "" })

	text, err = readInputText(cmd, nil)
	require.NoError(t, err)
	assert.Equal(t, "from file", text)
}

func TestVersionCommand(t *testing.T) {
	t.Cleanup(viper.Reset)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"version", "--env-file", ""})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "factcheck "+Version+"\n", buf.String())
}
