package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/factcheck/internal/extract"
	"github.com/ppiankov/factcheck/internal/llm"
	"github.com/ppiankov/factcheck/internal/metrics"
	"github.com/ppiankov/factcheck/internal/model"
	"github.com/ppiankov/factcheck/internal/verify"
)

// Pipeline orchestrates claim extraction followed by per-claim verification
type Pipeline struct {
	claimExtractor *extract.ClaimExtractor
	claimVerifier  *verify.ClaimVerifier
	verifiers      int
	logger         *zap.Logger
	metrics        *metrics.Metrics
	now            func() time.Time
}

// NewPipeline creates a new pipeline that sends both stages to completer.
// logger and m may be nil.
func NewPipeline(cfg *model.Config, completer llm.Completer, logger *zap.Logger, m *metrics.Metrics) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}

	verifiers := cfg.Concurrency.Verifiers
	if verifiers <= 0 {
		verifiers = 1
	}

	return &Pipeline{
		claimExtractor: extract.NewClaimExtractor(
			&observedCompleter{next: completer, stage: metrics.StageExtract, metrics: m},
			cfg.LLM.ExtractMaxTokens,
		),
		claimVerifier: verify.NewClaimVerifier(
			&observedCompleter{next: completer, stage: metrics.StageVerify, metrics: m},
			cfg.LLM.VerifyMaxTokens,
		),
		verifiers: verifiers,
		logger:    logger,
		metrics:   m,
		now:       time.Now,
	}
}

// Run fact-checks text.
// Extraction and verification failures are downgraded into placeholder claims
// and ERROR verdicts; only cancellation of ctx is returned as an error.
func (p *Pipeline) Run(ctx context.Context, text string) (*model.FactCheckResponse, error) {
	start := p.now()

	// 1. Extract claims
	claims, err := p.claimExtractor.Extract(ctx, text)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("extract: %w", ctxErr)
		}
		p.logger.Warn("claim extraction failed, continuing with placeholder", zap.Error(err))
		claims = extract.Placeholder(err)
	} else if len(claims) == 0 {
		p.logger.Info("no numbered claims found in extraction response")
	}
	p.metrics.ObserveClaims(len(claims))

	// 2. Drop blank claims
	kept := claims[:0:0]
	for _, claim := range claims {
		if !claim.IsBlank() {
			kept = append(kept, claim)
		}
	}

	// 3. Verify each claim, keeping extraction order
	results, err := p.verifyAll(ctx, kept)
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}

	p.logger.Debug("fact-check complete",
		zap.Int("claims", len(results)),
		zap.Duration("elapsed", p.now().Sub(start)),
	)

	// 4. Assemble response
	return model.NewFactCheckResponse(text, results, p.now()), nil
}

// verifyAll verifies claims one at a time, or fans them out when more than one verifier is configured
func (p *Pipeline) verifyAll(ctx context.Context, claims []model.Claim) ([]model.ClaimResult, error) {
	results := make([]model.ClaimResult, len(claims))

	if p.verifiers == 1 || len(claims) <= 1 {
		for i, claim := range claims {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results[i] = p.verifyOne(ctx, claim)
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.verifiers)
	for i, claim := range claims {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = p.verifyOne(gctx, claim)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (p *Pipeline) verifyOne(ctx context.Context, claim model.Claim) model.ClaimResult {
	record, err := p.claimVerifier.Verify(ctx, claim)
	if err != nil {
		p.logger.Warn("claim verification failed", zap.String("claim", string(claim)), zap.Error(err))
		record = verify.Sentinel(err)
	}
	p.metrics.ObserveVerdict(record.Verdict)
	return model.ClaimResult{Claim: claim, Result: record}
}

// observedCompleter records latency and outcome of every reasoning service call
type observedCompleter struct {
	next    llm.Completer
	stage   string
	metrics *metrics.Metrics
}

func (o *observedCompleter) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	start := time.Now()
	text, err := o.next.Complete(ctx, prompt, maxTokens)

	outcome := metrics.OutcomeOK
	switch {
	case err == nil:
	case llm.IsUpstream(err):
		outcome = metrics.OutcomeUpstream
	default:
		outcome = metrics.OutcomeTransport
	}
	o.metrics.ObserveCall(o.stage, outcome, time.Since(start))

	return text, err
}
