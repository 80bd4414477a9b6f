package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ppiankov/factcheck/internal/llm"
	"github.com/ppiankov/factcheck/internal/metrics"
	"github.com/ppiankov/factcheck/internal/model"
	"github.com/ppiankov/factcheck/internal/pipeline"
	"github.com/ppiankov/factcheck/internal/server"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the fact-checking HTTP API",
	Long: `Serve exposes the pipeline over HTTP:

  GET  /            service banner
  GET  /health      liveness probe
  POST /fact-check  {"text": "..."} -> claims and verdicts
  GET  /metrics     Prometheus metrics

The API key is read once at startup from PERPLEXITY_API_KEY (or
FACTCHECK_LLM_API_KEY, or llm.api_key in the config file).

Example:
  factcheck serve
  factcheck serve --port 8080 --verifiers 4`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "0.0.0.0", "listen host")
	serveCmd.Flags().Int("port", 5000, "listen port")
	serveCmd.Flags().StringSlice("cors-origin", []string{"*"}, "allowed CORS origins")
	serveCmd.Flags().Int("verifiers", 1, "claims verified in parallel per request (1 = sequential)")
	serveCmd.Flags().Duration("llm-timeout", 0, "per-call timeout for the reasoning service (0 keeps the configured value)")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.cors_origins", serveCmd.Flags().Lookup("cors-origin"))
	_ = viper.BindPFlag("concurrency.verifiers", serveCmd.Flags().Lookup("verifiers"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if timeout, _ := cmd.Flags().GetDuration("llm-timeout"); timeout > 0 {
		cfg.LLM.Timeout = timeout
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := buildServer(cfg)

	logger.Info("starting factcheck API",
		zap.String("addr", srv.Addr()),
		zap.String("model", cfg.LLM.Model),
		zap.String("base_url", cfg.LLM.BaseURL),
		zap.Int("verifiers", cfg.Concurrency.Verifiers),
		zap.Duration("llm_timeout", cfg.LLM.Timeout),
	)

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// buildServer wires client, pipeline, metrics and router
func buildServer(cfg *model.Config) *server.Server {
	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	p := pipeline.NewPipeline(cfg, newCompleter(cfg), logger, m)
	return server.New(cfg.Server, p, logger, m, reg)
}

// newCompleter builds the reasoning service client from cfg
func newCompleter(cfg *model.Config) *llm.Client {
	if cfg.LLM.APIKey == "" {
		logger.Warn("no API key configured; calls will fail with 401 (set PERPLEXITY_API_KEY)")
	}
	return llm.NewClient(llm.ConfigFromModel(cfg.LLM))
}

// commandContext returns cmd's context or Background when run outside Execute
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
