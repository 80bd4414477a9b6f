package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/factcheck/internal/model"
	"github.com/ppiankov/factcheck/internal/pipeline"
	"github.com/ppiankov/factcheck/internal/worker"
)

var (
	batchOut     string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Fact-check many texts from a file in parallel",
	Long: `Batch processes multiple texts concurrently:
- Read texts from input file (one per line, '#' comments skipped)
- Process texts in parallel with configurable worker count
- Write one JSON object per input line, in input order

Example:
  factcheck batch texts.txt
  factcheck batch texts.txt --concurrency 8 --out results.jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().Int("concurrency", 4, "number of texts processed concurrently")
	batchCmd.Flags().StringVarP(&batchOut, "out", "o", "", "write JSON lines to file instead of stdout")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")

	_ = viper.BindPFlag("concurrency.batch", batchCmd.Flags().Lookup("concurrency"))
}

// batchLine is one line of batch output
type batchLine struct {
	Index  int                      `json:"index"`
	Text   string                   `json:"text"`
	Result *model.FactCheckResponse `json:"result,omitempty"`
	Error  string                   `json:"error,omitempty"`
}

func runBatch(cmd *cobra.Command, args []string) (err error) {
	file := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := contextWithTimeout(cmd, batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  factcheck batch\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Batch)
	fmt.Fprintf(os.Stderr, "  Model:        %s\n", cfg.LLM.Model)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	p := pipeline.NewPipeline(cfg, newCompleter(cfg), logger, nil)
	processor := worker.NewBatchProcessor(p, cfg.Concurrency.Batch)

	start := time.Now()
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return err
	}

	var out io.Writer = cmd.OutOrStdout()
	if batchOut != "" {
		f, err := os.Create(batchOut)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("close output: %w", closeErr)
			}
		}()
		out = f
	}

	failed, err := writeBatchResults(out, results)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "✓ Processed %d texts in %v (%d failed)\n", len(results), time.Since(start).Round(time.Millisecond), failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d texts failed", failed, len(results))
	}
	return nil
}

// writeBatchResults writes one JSON line per result and returns the number of failures
func writeBatchResults(w io.Writer, results []*worker.CheckResult) (int, error) {
	enc := json.NewEncoder(w)
	failed := 0
	for _, r := range results {
		line := batchLine{Index: r.Index, Text: r.Text, Result: r.Response}
		if r.Error != nil {
			failed++
			line.Error = r.Error.Error()
		}
		if err := enc.Encode(line); err != nil {
			return failed, fmt.Errorf("write result: %w", err)
		}
	}
	return failed, nil
}

// contextWithTimeout derives a bounded context from the command context
func contextWithTimeout(cmd *cobra.Command, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(commandContext(cmd))
	}
	return context.WithTimeout(commandContext(cmd), timeout)
}
