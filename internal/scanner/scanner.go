package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/songzhibin97/splscan/internal/ai"
	"github.com/songzhibin97/splscan/internal/analytics"
	"github.com/songzhibin97/splscan/internal/data"
	"github.com/songzhibin97/splscan/internal/models"
	"github.com/songzhibin97/splscan/internal/observability"
	"github.com/songzhibin97/splscan/internal/risk"
)

// State is a pipeline stage
type State string

const (
	StateFetchingPrimary   State = "FetchingPrimary"
	StateValidating        State = "Validating"
	StateFetchingSecondary State = "FetchingSecondary"
	StateComputingMetrics  State = "ComputingMetrics"
	StateEnriching         State = "Enriching"
	StateAssembled         State = "Assembled"
	StateFailed            State = "Failed"
)

// Failure reasons surfaced to callers
const (
	ReasonMetadataUnreachable = "metadata unreachable"
	ReasonNotAToken           = "not a recognized token"
	ReasonSecondaryData       = "secondary data unavailable"
	ReasonMetricComputation   = "metric computation failed"
	ReasonEnrichment          = "enrichment unavailable"
)

// Analyzer runs one token analysis
type Analyzer interface {
	Analyze(ctx context.Context, address string) *models.AnalysisResult
}

// Scanner sequences fetch, validation, metrics and enrichment for one
// address per call. It holds no per-request state.
type Scanner struct {
	source   data.DataSource
	enricher ai.Enricher
	assessor risk.Assessor
	metrics  *observability.Metrics
	logger   *slog.Logger
}

func NewScanner(
	source data.DataSource,
	enricher ai.Enricher,
	assessor risk.Assessor,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{
		source:   source,
		enricher: enricher,
		assessor: assessor,
		metrics:  metrics,
		logger:   logger,
	}
}

// run tracks the stage of a single analysis
type run struct {
	s       *Scanner
	address string
	state   State
	started time.Time
}

func (r *run) enter(state State) {
	if r.state != "" {
		r.s.metrics.RecordStage(string(r.state), time.Since(r.started))
	}
	r.state = state
	r.started = time.Now()
}

func (r *run) fail(reason string, err error) *models.AnalysisResult {
	failedAt := r.state
	r.s.metrics.RecordStage(string(failedAt), time.Since(r.started))
	r.s.metrics.RecordFailure(string(failedAt))
	r.s.logger.Error("analysis failed", "address", r.address, "stage", failedAt, "reason", reason, "err", err)

	return &models.AnalysisResult{
		Error: reason,
		Stage: string(StateFailed),
		Err:   fmt.Errorf("%s: %s: %w", failedAt, reason, err),
	}
}

// Analyze implements Analyzer. Failures are returned as an error payload,
// never as a partial result.
func (s *Scanner) Analyze(ctx context.Context, address string) *models.AnalysisResult {
	r := &run{s: s, address: address}

	// 1. 获取元数据
	r.enter(StateFetchingPrimary)
	raw, err := s.source.FetchMetadata(ctx, address)
	if err != nil {
		return r.fail(ReasonMetadataUnreachable, err)
	}

	// 2. 校验, 未通过时不再请求付费接口
	r.enter(StateValidating)
	meta, err := analytics.Validate(raw)
	if err != nil {
		return r.fail(fmt.Sprintf("%s: %v", ReasonNotAToken, err), err)
	}

	// 3. 并发获取持有人与价格
	r.enter(StateFetchingSecondary)
	var (
		holders []models.RawHolder
		price   *models.PriceInfo
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		holders, err = s.source.FetchHolders(gctx, address)
		return err
	})
	g.Go(func() error {
		var err error
		price, err = s.source.FetchPrice(gctx, address)
		return err
	})
	if err := g.Wait(); err != nil {
		return r.fail(ReasonSecondaryData, err)
	}

	// 4. 计算指标
	r.enter(StateComputingMetrics)
	distribution, err := analytics.ComputeOwnership(holders, meta.Supply)
	if err != nil {
		return r.fail(fmt.Sprintf("%s: %v", ReasonMetricComputation, err), err)
	}
	record := analytics.BuildRecord(meta, price)

	var concentration *models.Concentration
	if s.assessor != nil {
		concentration = s.assessor.Assess(distribution, record.HoldersCount)
	}

	// 5. AI 增强
	r.enter(StateEnriching)
	enrichment, err := s.enricher.Enrich(ctx, record)
	if err != nil {
		return r.fail(fmt.Sprintf("%s: %v", ReasonEnrichment, enrichmentKind(err)), err)
	}

	r.enter(StateAssembled)
	s.metrics.RecordSuccess()
	s.logger.Info("analysis assembled", "address", address, "symbol", record.TokenSymbol, "honeypot", enrichment.IsHoneypot)

	insight := enrichment.Insight
	return &models.AnalysisResult{
		AIResponse: &insight,
		TokenDetails: &models.TokenDetails{
			AnalyticsRecord: record,
			IsHoneyPot:      enrichment.IsHoneypot,
		},
		TokenDistribution: distribution,
		Concentration:     concentration,
		Stage:             string(StateAssembled),
	}
}

func enrichmentKind(err error) fmt.Stringer {
	for _, kind := range []ai.EnrichmentErrorKind{ai.ModelUnavailable, ai.MalformedInsight, ai.UnexpectedVerdictFormat} {
		if ai.IsKind(err, kind) {
			return kind
		}
	}
	return ai.ModelUnavailable
}
