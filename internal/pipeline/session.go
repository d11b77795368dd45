// Package pipeline implements the per-session content state machine.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/JustAGhosT/content-creation-sub001/internal/domain"
	"github.com/JustAGhosT/content-creation-sub001/internal/flags"
	"github.com/JustAGhosT/content-creation-sub001/internal/logger"
	"github.com/JustAGhosT/content-creation-sub001/internal/metrics"
)

// Dispatcher is the upstream call surface the pipeline needs.
type Dispatcher interface {
	Dispatch(ctx context.Context, feature string, payload any) (json.RawMessage, error)
}

// Session owns exactly one ContentItem and serializes all stage
// transitions on it: one in-flight transition at a time, so the current
// stage is never read-modify-written racily.
type Session struct {
	ID string

	mu         sync.Mutex
	item       domain.ContentItem
	lastActive time.Time

	dispatcher Dispatcher
	metrics    *metrics.Metrics
	logger     logger.Logger
}

// newSession creates a session at the input stage.
func newSession(id string, dispatcher Dispatcher, m *metrics.Metrics, log logger.Logger) *Session {
	return &Session{
		ID:         id,
		item:       domain.NewContentItem(),
		lastActive: time.Now(),
		dispatcher: dispatcher,
		metrics:    m,
		logger:     log.With(logger.String("session_id", id)),
	}
}

// Item returns a copy of the session's content item.
func (s *Session) Item() domain.ContentItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.item
}

// SubmitInput validates rawInput, dispatches it to the parsing backend and
// advances input → parsed. On any failure the stage stays at input; there
// is no partial advance.
func (s *Session) SubmitInput(ctx context.Context, rawInput string) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.item.Stage != domain.StageInput {
		return nil, &domain.InvalidTransitionError{Stage: s.item.Stage, Operation: "submitInput"}
	}
	if strings.TrimSpace(rawInput) == "" {
		return nil, domain.NewValidationError("rawInput must be a non-empty string")
	}
	if !utf8.ValidString(rawInput) {
		return nil, domain.NewValidationError("rawInput must be valid text")
	}
	if len(rawInput) > domain.MaxRawInputLen {
		return nil, domain.NewValidationError("rawInput exceeds maximum length of %d characters", domain.MaxRawInputLen)
	}

	parsed, dispatchErr := s.dispatcher.Dispatch(ctx, flags.FeatureTextParser, map[string]any{
		"rawInput": rawInput,
	})
	if dispatchErr != nil {
		return nil, fmt.Errorf("parse input: %w", dispatchErr)
	}

	s.item.RawInput = rawInput
	s.item.ParsedData = parsed
	s.advance(domain.StageParsed)
	return parsed, nil
}

// RequestSummary dispatches the parsed data to the summarization backend
// and advances parsed → summarized.
func (s *Session) RequestSummary(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.item.Stage != domain.StageParsed {
		return nil, &domain.InvalidTransitionError{Stage: s.item.Stage, Operation: "requestSummary"}
	}

	if len(payload) == 0 {
		payload = s.item.ParsedData
	}

	summary, dispatchErr := s.dispatcher.Dispatch(ctx, flags.FeatureSummarizer, json.RawMessage(payload))
	if dispatchErr != nil {
		return nil, fmt.Errorf("summarize: %w", dispatchErr)
	}

	s.item.Summary = summary
	s.advance(domain.StageSummarized)
	return summary, nil
}

// RequestImage dispatches the summary to the image generation backend and
// advances summarized → illustrated.
func (s *Session) RequestImage(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.item.Stage != domain.StageSummarized {
		return nil, &domain.InvalidTransitionError{Stage: s.item.Stage, Operation: "requestImage"}
	}

	if len(payload) == 0 {
		payload = s.item.Summary
	}

	image, dispatchErr := s.dispatcher.Dispatch(ctx, flags.FeatureImageGenerator, json.RawMessage(payload))
	if dispatchErr != nil {
		return nil, fmt.Errorf("generate image: %w", dispatchErr)
	}

	s.item.GeneratedImage = image
	s.advance(domain.StageIllustrated)
	return image, nil
}

// Approve marks the item approved and advances illustrated → approved,
// the terminal stage. Only reset is valid afterwards.
func (s *Session) Approve() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.item.Stage != domain.StageIllustrated {
		return &domain.InvalidTransitionError{Stage: s.item.Stage, Operation: "approve"}
	}

	s.item.Approved = true
	s.advance(domain.StageApproved)
	return nil
}

// Back steps to the immediately preceding stage. It is available from
// summarized and illustrated only and keeps the data produced at the
// earlier stage.
func (s *Session) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	switch s.item.Stage {
	case domain.StageSummarized:
		s.item.Summary = nil
		s.advance(domain.StageParsed)
	case domain.StageIllustrated:
		s.item.GeneratedImage = nil
		s.advance(domain.StageSummarized)
	default:
		return &domain.InvalidTransitionError{Stage: s.item.Stage, Operation: "back"}
	}
	return nil
}

// Reset returns unconditionally to the input stage and discards all
// derived data. Calling it twice has the same effect as once.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.item.ClearDerived()
	if s.item.Stage != domain.StageInput {
		s.advance(domain.StageInput)
	}
}

// advance moves the item to stage. Callers must hold mu.
func (s *Session) advance(stage domain.Stage) {
	from := s.item.Stage
	s.item.Stage = stage
	s.metrics.StageTransitions.WithLabelValues(string(stage)).Inc()
	s.logger.Debug("stage transition",
		logger.String("from", string(from)),
		logger.String("to", string(stage)),
	)
}

// touch records activity for the TTL sweeper. Callers must hold mu.
func (s *Session) touch() {
	s.lastActive = time.Now()
}
