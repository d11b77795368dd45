// Package dispatch routes feature-gated calls to the configured upstream
// backends and normalizes their failures into one error taxonomy.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/JustAGhosT/content-creation-sub001/internal/domain"
	"github.com/JustAGhosT/content-creation-sub001/internal/flags"
	"github.com/JustAGhosT/content-creation-sub001/internal/logger"
	"github.com/JustAGhosT/content-creation-sub001/internal/metrics"
)

// unreachableMessage is the fixed message for upstreams that produced no
// response at all.
const unreachableMessage = "no response from upstream"

// Registry is the flag lookup surface the dispatcher needs.
type Registry interface {
	IsEnabled(name string) bool
	Implementation(name string) (string, bool)
}

// Dispatcher performs exactly one upstream call per dispatch and does not
// retry. Callers own the timeout via ctx.
type Dispatcher struct {
	registry    Registry
	endpoints   Endpoints
	client      *http.Client
	metrics     *metrics.Metrics
	logger      logger.Logger
	tracer      trace.Tracer
	development bool
}

// New creates a dispatcher. development controls whether low-level
// diagnostics are attached to normalized errors.
func New(
	registry Registry,
	endpoints Endpoints,
	client *http.Client,
	m *metrics.Metrics,
	log logger.Logger,
	development bool,
) *Dispatcher {
	return &Dispatcher{
		registry:    registry,
		endpoints:   endpoints,
		client:      client,
		metrics:     m,
		logger:      log,
		tracer:      otel.Tracer("dispatcher"),
		development: development,
	}
}

// Dispatch sends payload to the upstream serving feature and returns the
// raw response body. It fails fast with ErrFeatureDisabled before any
// network interaction when the feature is off.
func (d *Dispatcher) Dispatch(ctx context.Context, feature string, payload any) (json.RawMessage, error) {
	if !d.registry.IsEnabled(feature) {
		d.count(feature, "", "disabled")
		return nil, fmt.Errorf("%w: %s", domain.ErrFeatureDisabled, feature)
	}

	endpoint, implementation, resolveErr := d.resolveEndpoint(feature)
	if resolveErr != nil {
		d.count(feature, implementation, "unmapped")
		return nil, resolveErr
	}

	ctx, span := d.tracer.Start(ctx, "dispatch.upstream",
		trace.WithAttributes(
			attribute.String("feature", feature),
			attribute.String("implementation", implementation),
		))
	defer span.End()

	startTime := time.Now()
	result, callErr := d.call(ctx, endpoint, payload)
	duration := time.Since(startTime)
	d.metrics.DispatchDuration.WithLabelValues(feature).Observe(duration.Seconds())

	if callErr != nil {
		d.count(feature, implementation, "error")
		d.logger.Error("upstream dispatch failed",
			logger.String("feature", feature),
			logger.String("implementation", implementation),
			logger.String("endpoint", endpoint),
			logger.Duration("duration", duration),
			logger.Error(callErr),
		)
		return nil, callErr
	}

	d.count(feature, implementation, "ok")
	d.logger.Debug("upstream dispatch completed",
		logger.String("feature", feature),
		logger.String("endpoint", endpoint),
		logger.Duration("duration", duration),
	)
	return result, nil
}

// resolveEndpoint maps feature (and, for variant flags, the selected
// implementation) to an upstream URL.
func (d *Dispatcher) resolveEndpoint(feature string) (endpoint, implementation string, err error) {
	switch feature {
	case flags.FeatureTextParser:
		impl, ok := d.registry.Implementation(feature)
		if !ok {
			return "", "", fmt.Errorf("%w: %s has no implementation selected", domain.ErrUnknownImplementation, feature)
		}
		url, resolveErr := d.endpoints.TextParser.Resolve(Backend(impl))
		return url, impl, resolveErr
	case flags.FeatureSummarizer:
		return d.singleEndpoint(feature, d.endpoints.Summarizer)
	case flags.FeatureImageGenerator:
		return d.singleEndpoint(feature, d.endpoints.ImageGenerator)
	default:
		return "", "", fmt.Errorf("%w: feature %s is not dispatchable", domain.ErrUnknownImplementation, feature)
	}
}

func (d *Dispatcher) singleEndpoint(feature, url string) (string, string, error) {
	if url == "" {
		return "", "", fmt.Errorf("%w: no URL configured for %s", domain.ErrUnknownImplementation, feature)
	}
	return url, "", nil
}

// call performs the single upstream HTTP round trip and normalizes every
// failure into a *domain.UpstreamError.
func (d *Dispatcher) call(ctx context.Context, endpoint string, payload any) (json.RawMessage, error) {
	body, marshalErr := json.Marshal(payload)
	if marshalErr != nil {
		return nil, d.requestError(fmt.Sprintf("marshal payload: %v", marshalErr), marshalErr)
	}

	req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if reqErr != nil {
		return nil, d.requestError(fmt.Sprintf("create request: %v", reqErr), reqErr)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, doErr := d.client.Do(req)
	if doErr != nil {
		// Timeouts and connection failures are the same failure kind:
		// nothing came back from the upstream.
		upErr := &domain.UpstreamError{
			Kind:       domain.UpstreamUnreachable,
			StatusCode: http.StatusBadGateway,
			Message:    unreachableMessage,
		}
		if d.development {
			upErr.Detail = doErr.Error()
		}
		return nil, upErr
	}
	defer resp.Body.Close()

	respBody, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return nil, d.requestError(fmt.Sprintf("read response: %v", readErr), readErr)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		upErr := &domain.UpstreamError{
			Kind:       domain.UpstreamBadStatus,
			StatusCode: resp.StatusCode,
			Message:    upstreamMessage(respBody, resp.StatusCode),
		}
		if d.development {
			upErr.Detail = string(respBody)
		}
		return nil, upErr
	}

	return respBody, nil
}

// requestError normalizes a local request-construction failure.
func (d *Dispatcher) requestError(msg string, cause error) *domain.UpstreamError {
	upErr := &domain.UpstreamError{
		Kind:       domain.UpstreamRequestFailed,
		StatusCode: http.StatusInternalServerError,
		Message:    msg,
	}
	if d.development {
		upErr.Detail = cause.Error()
	}
	return upErr
}

// upstreamMessage extracts the upstream-supplied error message from a
// failure body, falling back to a generic message.
func upstreamMessage(body []byte, statusCode int) string {
	var parsed struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		if parsed.Error != "" {
			return parsed.Error
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}
	return fmt.Sprintf("upstream responded with status %d", statusCode)
}

func (d *Dispatcher) count(feature, implementation, outcome string) {
	d.metrics.DispatchTotal.WithLabelValues(feature, implementation, outcome).Inc()
}
