package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/ppiankov/factcheck/internal/model"
)

// recordingChecker implements Checker and records how it was driven
type recordingChecker struct {
	delay   time.Duration
	failOn  string // texts containing this fail
	started chan struct{}

	calls     int32
	current   int32
	mu        sync.Mutex
	maxActive int32
}

func (c *recordingChecker) Run(ctx context.Context, text string) (*model.FactCheckResponse, error) {
	atomic.AddInt32(&c.calls, 1)
	active := atomic.AddInt32(&c.current, 1)
	defer atomic.AddInt32(&c.current, -1)

	c.mu.Lock()
	if active > c.maxActive {
		c.maxActive = active
	}
	c.mu.Unlock()

	if c.started != nil {
		select {
		case c.started <- struct{}{}:
		default:
		}
	}

	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if c.failOn != "" && strings.Contains(text, c.failOn) {
		return nil, errors.New("upstream unavailable")
	}

	results := []model.ClaimResult{{Claim: model.Claim("1. " + text), Result: model.AnalysisRecord("checked")}}
	return model.NewFactCheckResponse(text, results, time.Now()), nil
}

func (c *recordingChecker) peak() int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxActive
}

func submitTexts(t *testing.T, pool *Pool, checker Checker, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		job := &CheckJob{Index: i, Text: fmt.Sprintf("claim text %d", i), Checker: checker}
		if !pool.Submit(job) {
			t.Fatalf("submit %d rejected", i)
		}
	}
}

func TestNewPool(t *testing.T) {
	if p := NewPool(context.Background(), 5); p.workers != 5 {
		t.Errorf("expected 5 workers, got %d", p.workers)
	}
	if p := NewPool(context.Background(), 0); p.workers != 1 {
		t.Errorf("expected default 1 worker for 0 input, got %d", p.workers)
	}
	if p := NewPool(context.Background(), -1); p.workers != 1 {
		t.Errorf("expected default 1 worker for negative input, got %d", p.workers)
	}
}

func TestPool_RunsEveryCheckJob(t *testing.T) {
	checker := &recordingChecker{}
	pool := NewPool(context.Background(), 2)
	pool.Start()

	submitTexts(t, pool, checker, 10)
	results := pool.Wait()

	if len(results) != 10 {
		t.Fatalf("expected 10 results, got %d", len(results))
	}
	if got := atomic.LoadInt32(&checker.calls); got != 10 {
		t.Errorf("expected 10 checker runs, got %d", got)
	}

	seen := make(map[int]bool)
	for _, r := range results {
		res, ok := r.(*CheckResult)
		if !ok {
			t.Fatalf("expected *CheckResult, got %T", r)
		}
		if res.Error != nil {
			t.Errorf("unexpected error for %q: %v", res.Text, res.Error)
			continue
		}
		if res.Response.OriginalText != res.Text {
			t.Errorf("response for %q carries text %q", res.Text, res.Response.OriginalText)
		}
		seen[res.Index] = true
	}
	if len(seen) != 10 {
		t.Errorf("expected 10 distinct indexes, got %d", len(seen))
	}
}

func TestPool_BoundsConcurrentChecks(t *testing.T) {
	workers := 4
	checker := &recordingChecker{delay: 10 * time.Millisecond}
	pool := NewPool(context.Background(), workers)
	pool.Start()

	submitTexts(t, pool, checker, 30)
	pool.Wait()

	if got := atomic.LoadInt32(&checker.calls); got != 30 {
		t.Errorf("expected 30 checker runs, got %d", got)
	}
	if peak := checker.peak(); peak > int32(workers) {
		t.Errorf("peak concurrency %d exceeded workers %d", peak, workers)
	} else if peak <= 1 {
		t.Logf("Warning: peak concurrency was %d, expected > 1", peak)
	}
}

func TestPool_CheckErrorsReported(t *testing.T) {
	checker := &recordingChecker{failOn: "broken"}
	pool := NewPool(context.Background(), 2)
	pool.Start()

	pool.Submit(&CheckJob{Index: 0, Text: "broken input", Checker: checker})
	pool.Submit(&CheckJob{Index: 1, Text: "fine input", Checker: checker})

	results := pool.Wait()
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	for _, r := range results {
		res := r.(*CheckResult)
		switch res.Index {
		case 0:
			if res.GetError() == nil || res.Response != nil {
				t.Errorf("expected failure for %q, got %+v", res.Text, res)
			}
		case 1:
			if res.GetError() != nil {
				t.Errorf("unexpected error for %q: %v", res.Text, res.GetError())
			}
		}
	}
}

func TestResultCollector(t *testing.T) {
	c := NewResultCollector()
	c.Add(&CheckResult{Index: 0, Text: "a"})
	c.Add(&CheckResult{Index: 1, Text: "b", Error: errors.New("failed")})

	res := c.Results()
	if len(res) != 2 {
		t.Fatalf("expected 2 results, got %d", len(res))
	}

	// Results returns a copy
	res[0] = nil
	if c.Results()[0] == nil {
		t.Error("expected collector contents to be unaffected by caller mutation")
	}
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()
	pool.Shutdown()

	done := make(chan bool)
	go func() {
		done <- pool.Submit(&CheckJob{Text: "late", Checker: &recordingChecker{}})
	}()

	select {
	case accepted := <-done:
		if accepted {
			t.Error("expected submit after shutdown to be rejected")
		}
	case <-time.After(1 * time.Second):
		t.Fatal("Submit after shutdown blocked")
	}
}

func TestPool_ShutdownCancelsRunningCheck(t *testing.T) {
	defer goleak.VerifyNone(t)

	checker := &recordingChecker{delay: time.Minute, started: make(chan struct{}, 1)}
	pool := NewPool(context.Background(), 2)
	pool.Start()

	pool.Submit(&CheckJob{Text: "slow", Checker: checker})
	<-checker.started

	done := make(chan struct{})
	go func() {
		pool.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Shutdown timed out")
	}
}

func TestPool_ManyJobsBeforeWait(t *testing.T) {
	defer goleak.VerifyNone(t)

	checker := &recordingChecker{}
	pool := NewPool(context.Background(), 2)
	pool.Start()

	// Far more jobs than the queue and results buffers can hold
	submitTexts(t, pool, checker, 200)

	if results := pool.Wait(); len(results) != 200 {
		t.Errorf("expected 200 results, got %d", len(results))
	}
}

func TestPool_ParentCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	checker := &recordingChecker{delay: time.Minute}
	pool := NewPool(ctx, 1)
	pool.Start()

	pool.Submit(&CheckJob{Text: "slow", Checker: checker})
	cancel()

	done := make(chan []Result)
	go func() { done <- pool.Wait() }()

	select {
	case results := <-done:
		for _, r := range results {
			if !errors.Is(r.GetError(), context.Canceled) {
				t.Errorf("expected canceled check, got %v", r.GetError())
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after parent cancel")
	}
}
