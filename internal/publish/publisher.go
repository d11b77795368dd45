package publish

import (
	"context"
	"encoding/json"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/JustAGhosT/content-creation-sub001/internal/domain"
	"github.com/JustAGhosT/content-creation-sub001/internal/logger"
	"github.com/JustAGhosT/content-creation-sub001/internal/metrics"
)

// Exact per-item failure reasons surfaced to callers.
const (
	errInvalidItem      = "Invalid item structure"
	errPlatformNotFound = "Platform configuration not found"

	defaultConcurrency  = 4
	defaultRateLimitRPS = 10
)

// PlatformPublisher is the per-platform dispatch surface.
type PlatformPublisher interface {
	Publish(ctx context.Context, platform PlatformConfig, content json.RawMessage) error
}

// Recorder persists a record of each successful publish. Best-effort;
// failures are logged and never affect the publish outcome.
type Recorder interface {
	RecordPublish(ctx context.Context, platform string, content json.RawMessage) error
}

// Auditor records publish activity in the audit trail. Best-effort.
type Auditor interface {
	Record(ctx context.Context, action string, detail map[string]any)
}

// Config tunes the publisher.
type Config struct {
	// Concurrency bounds the number of in-flight platform dispatches.
	Concurrency int
	// RateLimitRPS paces dispatches across the batch.
	RateLimitRPS int
}

// Publisher fans one approved content item out to N platforms and
// aggregates heterogeneous per-item outcomes into one tri-state result.
// It never retries a failed item within a call and never reorders items.
type Publisher struct {
	catalog     *Catalog
	client      PlatformPublisher
	recorder    Recorder
	audit       Auditor
	limiter     *rate.Limiter
	concurrency int
	metrics     *metrics.Metrics
	logger      logger.Logger
	tracer      trace.Tracer
}

// NewPublisher creates a batch publisher. recorder and audit may be nil.
func NewPublisher(
	catalog *Catalog,
	client PlatformPublisher,
	recorder Recorder,
	audit Auditor,
	cfg Config,
	m *metrics.Metrics,
	log logger.Logger,
) *Publisher {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = defaultRateLimitRPS
	}

	return &Publisher{
		catalog:     catalog,
		client:      client,
		recorder:    recorder,
		audit:       audit,
		limiter:     rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitRPS),
		concurrency: cfg.Concurrency,
		metrics:     m,
		logger:      log,
		tracer:      otel.Tracer("batch-publisher"),
	}
}

// PublishQueue dispatches every queue item independently and aggregates
// the outcomes. Item dispatches run with bounded parallelism; aggregation
// waits for all outcomes and preserves input order. One malformed or
// failing item never aborts the batch.
func (p *Publisher) PublishQueue(ctx context.Context, queue []domain.QueueItem) (*domain.PublishResult, error) {
	if len(queue) == 0 {
		return nil, domain.NewValidationError("queue must be a non-empty array")
	}

	// One slot per item; an empty string means success. Index addressing
	// keeps aggregation in input order regardless of completion order.
	failures := make([]string, len(queue))

	var wg sync.WaitGroup
	sem := make(chan struct{}, p.concurrency)

	for i := range queue {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			failures[idx] = p.publishOne(ctx, &queue[idx])
		}(i)
	}
	wg.Wait()

	result := &domain.PublishResult{
		Success: make([]domain.QueueItem, 0, len(queue)),
		Failed:  make([]domain.FailedItem, 0),
	}
	for i := range queue {
		if failures[i] == "" {
			result.Success = append(result.Success, queue[i])
			continue
		}
		result.Failed = append(result.Failed, domain.FailedItem{
			Item:  queue[i],
			Error: failures[i],
		})
	}

	outcome := result.Outcome()
	p.metrics.PublishBatches.WithLabelValues(outcome.String()).Inc()
	p.logger.Info("publish batch completed",
		logger.Int("queued", len(queue)),
		logger.Int("succeeded", len(result.Success)),
		logger.Int("failed", len(result.Failed)),
		logger.String("outcome", outcome.String()),
	)

	return result, nil
}

// publishOne processes a single queue item and returns its failure reason,
// or "" on success. Every failure is recorded, never propagated.
func (p *Publisher) publishOne(ctx context.Context, item *domain.QueueItem) string {
	platformName := item.Platform.Name

	ctx, span := p.tracer.Start(ctx, "publish.item",
		trace.WithAttributes(attribute.String("platform", platformName)))
	defer span.End()

	if platformName == "" || len(item.Content) == 0 {
		p.metrics.PublishItemsTotal.WithLabelValues(platformName, "invalid").Inc()
		return errInvalidItem
	}

	platform, ok := p.catalog.Resolve(platformName)
	if !ok {
		p.metrics.PublishItemsTotal.WithLabelValues(platformName, "unresolved").Inc()
		p.logger.Warn("platform not configured",
			logger.String("platform", platformName),
		)
		return errPlatformNotFound
	}

	if waitErr := p.limiter.Wait(ctx); waitErr != nil {
		p.metrics.PublishItemsTotal.WithLabelValues(platformName, "error").Inc()
		return waitErr.Error()
	}

	if publishErr := p.client.Publish(ctx, platform, item.Content); publishErr != nil {
		p.metrics.PublishItemsTotal.WithLabelValues(platformName, "error").Inc()
		p.logger.Error("platform publish failed",
			logger.String("platform", platformName),
			logger.Error(publishErr),
		)
		return publishErr.Error()
	}

	p.metrics.PublishItemsTotal.WithLabelValues(platformName, "ok").Inc()
	p.recordSuccess(ctx, platform, item.Content)
	return ""
}

// recordSuccess persists and audits a successful publish. Both sinks are
// best-effort: failures are logged and swallowed.
func (p *Publisher) recordSuccess(ctx context.Context, platform PlatformConfig, content json.RawMessage) {
	if p.recorder != nil {
		if recordErr := p.recorder.RecordPublish(ctx, platform.Name, content); recordErr != nil {
			p.logger.Warn("failed to record publish",
				logger.String("platform", platform.Name),
				logger.Error(recordErr),
			)
		}
	}

	if p.audit != nil {
		p.audit.Record(ctx, "content.published", map[string]any{
			"platform": platform.Name,
		})
	}
}
