package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/factcheck/internal/model"
)

// Checker defines the interface for fact-checking a single text
type Checker interface {
	Run(ctx context.Context, text string) (*model.FactCheckResponse, error)
}

// CheckJob represents one text to fact-check
type CheckJob struct {
	Index   int
	Text    string
	Checker Checker
}

// Execute executes the fact-check job
func (j *CheckJob) Execute(ctx context.Context) Result {
	resp, err := j.Checker.Run(ctx, j.Text)
	return &CheckResult{
		Index:    j.Index,
		Text:     j.Text,
		Response: resp,
		Error:    err,
	}
}

// CheckResult represents the result of a fact-check job
type CheckResult struct {
	Index    int
	Text     string
	Response *model.FactCheckResponse
	Error    error
}

// GetError returns the error from the check result
func (r *CheckResult) GetError() error {
	return r.Error
}

// BatchProcessor fact-checks multiple texts concurrently
type BatchProcessor struct {
	checker     Checker
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(checker Checker, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		checker:     checker,
		concurrency: concurrency,
	}
}

// ProcessTexts fact-checks texts concurrently and returns results in input order.
// Texts that were never started because ctx ended carry ctx's error.
func (b *BatchProcessor) ProcessTexts(ctx context.Context, texts []string) []*CheckResult {
	if len(texts) == 0 {
		return []*CheckResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for i, text := range texts {
		pool.Submit(&CheckJob{
			Index:   i,
			Text:    text,
			Checker: b.checker,
		})
	}

	results := pool.Wait()

	checkResults := make([]*CheckResult, len(texts))
	for _, result := range results {
		r := result.(*CheckResult)
		checkResults[r.Index] = r
	}

	for i, r := range checkResults {
		if r != nil {
			continue
		}
		err := ctx.Err()
		if err == nil {
			err = fmt.Errorf("not processed")
		}
		checkResults[i] = &CheckResult{Index: i, Text: texts[i], Error: err}
	}

	return checkResults
}

// ProcessFile reads texts from a file and fact-checks them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*CheckResult, error) {
	texts, err := ReadTextsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read texts: %w", err)
	}

	return b.ProcessTexts(ctx, texts), nil
}

// ReadTextsFromFile reads texts from a file (one per line)
func ReadTextsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var texts []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			texts = append(texts, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return texts, nil
}
