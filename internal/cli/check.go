package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/factcheck/internal/pipeline"
)

var (
	checkFile    string
	checkTimeout time.Duration
	checkOut     string
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [text]",
	Short: "Fact-check a single text and print the result as JSON",
	Long: `Check runs the extraction and verification pipeline once, without
starting the HTTP server. The text is taken from the arguments, from --file,
or from stdin when neither is given.

Example:
  factcheck check "The Eiffel Tower is in Berlin."
  factcheck check --file article.txt --out result.json
  echo "Water boils at 100C at sea level." | factcheck check`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVarP(&checkFile, "file", "f", "", "read text from file")
	checkCmd.Flags().StringVarP(&checkOut, "out", "o", "", "write JSON to file instead of stdout")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 5*time.Minute, "overall timeout")
}

func runCheck(cmd *cobra.Command, args []string) error {
	text, err := readInputText(cmd, args)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("no text provided")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := contextWithTimeout(cmd, checkTimeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Checking %d characters with %s\n", len(text), cfg.LLM.Model)
	}

	p := pipeline.NewPipeline(cfg, newCompleter(cfg), logger, nil)
	resp, err := p.Run(ctx, text)
	if err != nil {
		return fmt.Errorf("fact-check failed: %w", err)
	}

	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	if checkOut != "" {
		if err := os.WriteFile(checkOut, append(data, '\n'), 0644); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", checkOut)
		}
		return nil
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

// readInputText picks the text from args, --file or stdin, in that order
func readInputText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if checkFile != "" {
		data, err := os.ReadFile(checkFile)
		if err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}
