package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/JustAGhosT/content-creation-sub001/internal/domain"
	"github.com/JustAGhosT/content-creation-sub001/internal/flags"
	"github.com/JustAGhosT/content-creation-sub001/internal/logger"
	"github.com/JustAGhosT/content-creation-sub001/internal/metrics"
	"github.com/JustAGhosT/content-creation-sub001/internal/pipeline"
)

// stubDispatcher returns canned responses per feature and records calls.
type stubDispatcher struct {
	responses map[string]json.RawMessage
	failures  map[string]error
	calls     []string
}

func (d *stubDispatcher) Dispatch(_ context.Context, feature string, _ any) (json.RawMessage, error) {
	d.calls = append(d.calls, feature)
	if failErr, ok := d.failures[feature]; ok {
		return nil, failErr
	}
	if resp, ok := d.responses[feature]; ok {
		return resp, nil
	}
	return json.RawMessage(`{}`), nil
}

func newTestSession(t *testing.T, dispatcher pipeline.Dispatcher) *pipeline.Session {
	t.Helper()

	manager := pipeline.NewManager(dispatcher, metrics.NewNop(), logger.NewNop(), 0)
	return manager.Create()
}

// walkTo advances the session to the wanted stage through the normal
// operation sequence.
func walkTo(t *testing.T, session *pipeline.Session, stage domain.Stage) {
	t.Helper()
	ctx := context.Background()

	steps := []struct {
		target domain.Stage
		op     func() error
	}{
		{domain.StageParsed, func() error {
			_, err := session.SubmitInput(ctx, "raw text")
			return err
		}},
		{domain.StageSummarized, func() error {
			_, err := session.RequestSummary(ctx, nil)
			return err
		}},
		{domain.StageIllustrated, func() error {
			_, err := session.RequestImage(ctx, nil)
			return err
		}},
		{domain.StageApproved, func() error {
			return session.Approve()
		}},
	}

	for _, step := range steps {
		if session.Item().Stage == stage {
			return
		}
		if stepErr := step.op(); stepErr != nil {
			t.Fatalf("advancing to %s: %v", step.target, stepErr)
		}
	}
}

func TestSession_FullSequence(t *testing.T) {
	dispatcher := &stubDispatcher{
		responses: map[string]json.RawMessage{
			flags.FeatureTextParser:     json.RawMessage(`{"tokens":3}`),
			flags.FeatureSummarizer:     json.RawMessage(`{"summary":"short"}`),
			flags.FeatureImageGenerator: json.RawMessage(`{"image":"ref-1"}`),
		},
	}
	session := newTestSession(t, dispatcher)
	ctx := context.Background()

	parsed, parseErr := session.SubmitInput(ctx, "raw text")
	if parseErr != nil {
		t.Fatalf("SubmitInput() error = %v", parseErr)
	}
	if string(parsed) != `{"tokens":3}` {
		t.Errorf("SubmitInput() = %s, want parser response", parsed)
	}

	if _, summaryErr := session.RequestSummary(ctx, nil); summaryErr != nil {
		t.Fatalf("RequestSummary() error = %v", summaryErr)
	}
	if _, imageErr := session.RequestImage(ctx, nil); imageErr != nil {
		t.Fatalf("RequestImage() error = %v", imageErr)
	}
	if approveErr := session.Approve(); approveErr != nil {
		t.Fatalf("Approve() error = %v", approveErr)
	}

	item := session.Item()
	if item.Stage != domain.StageApproved {
		t.Errorf("stage = %s, want approved", item.Stage)
	}
	if !item.Approved {
		t.Error("approved = false, want true")
	}

	wantCalls := []string{flags.FeatureTextParser, flags.FeatureSummarizer, flags.FeatureImageGenerator}
	if len(dispatcher.calls) != len(wantCalls) {
		t.Fatalf("dispatch calls = %v, want %v", dispatcher.calls, wantCalls)
	}
	for i, want := range wantCalls {
		if dispatcher.calls[i] != want {
			t.Errorf("call[%d] = %s, want %s", i, dispatcher.calls[i], want)
		}
	}
}

func TestSession_NeverSkipsAStage(t *testing.T) {
	tests := []struct {
		name  string
		stage domain.Stage
		op    string
		call  func(s *pipeline.Session) error
	}{
		{
			name:  "approve from input",
			stage: domain.StageInput,
			op:    "approve",
			call:  func(s *pipeline.Session) error { return s.Approve() },
		},
		{
			name:  "approve from parsed",
			stage: domain.StageParsed,
			op:    "approve",
			call:  func(s *pipeline.Session) error { return s.Approve() },
		},
		{
			name:  "approve from summarized",
			stage: domain.StageSummarized,
			op:    "approve",
			call:  func(s *pipeline.Session) error { return s.Approve() },
		},
		{
			name:  "summary from input",
			stage: domain.StageInput,
			op:    "requestSummary",
			call: func(s *pipeline.Session) error {
				_, err := s.RequestSummary(context.Background(), nil)
				return err
			},
		},
		{
			name:  "image from parsed",
			stage: domain.StageParsed,
			op:    "requestImage",
			call: func(s *pipeline.Session) error {
				_, err := s.RequestImage(context.Background(), nil)
				return err
			},
		},
		{
			name:  "submit from approved",
			stage: domain.StageApproved,
			op:    "submitInput",
			call: func(s *pipeline.Session) error {
				_, err := s.SubmitInput(context.Background(), "again")
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := newTestSession(t, &stubDispatcher{})
			walkTo(t, session, tt.stage)

			opErr := tt.call(session)

			var transitionErr *domain.InvalidTransitionError
			if !errors.As(opErr, &transitionErr) {
				t.Fatalf("error = %v, want *domain.InvalidTransitionError", opErr)
			}
			if transitionErr.Stage != tt.stage {
				t.Errorf("error names stage %s, want %s", transitionErr.Stage, tt.stage)
			}
			if transitionErr.Operation != tt.op {
				t.Errorf("error names operation %s, want %s", transitionErr.Operation, tt.op)
			}
			if got := session.Item().Stage; got != tt.stage {
				t.Errorf("stage moved to %s, want unchanged %s", got, tt.stage)
			}
		})
	}
}

func TestSession_SubmitInputValidation(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace only", "   \n\t"},
		{"oversized", strings.Repeat("a", domain.MaxRawInputLen+1)},
		{"invalid utf8", "abc\xff\xfe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dispatcher := &stubDispatcher{}
			session := newTestSession(t, dispatcher)

			_, submitErr := session.SubmitInput(context.Background(), tt.input)

			if !domain.IsValidationError(submitErr) {
				t.Fatalf("SubmitInput() error = %v, want ValidationError", submitErr)
			}
			if got := session.Item().Stage; got != domain.StageInput {
				t.Errorf("stage = %s, want input (unchanged)", got)
			}
			if len(dispatcher.calls) != 0 {
				t.Errorf("dispatch calls = %d, want 0", len(dispatcher.calls))
			}
		})
	}
}

func TestSession_DispatchFailureLeavesStageUnchanged(t *testing.T) {
	dispatcher := &stubDispatcher{
		failures: map[string]error{
			flags.FeatureTextParser: fmt.Errorf("%w: textParser", domain.ErrFeatureDisabled),
		},
	}
	session := newTestSession(t, dispatcher)

	_, submitErr := session.SubmitInput(context.Background(), "raw text")

	if !errors.Is(submitErr, domain.ErrFeatureDisabled) {
		t.Fatalf("SubmitInput() error = %v, want ErrFeatureDisabled", submitErr)
	}
	item := session.Item()
	if item.Stage != domain.StageInput {
		t.Errorf("stage = %s, want input (no partial advance)", item.Stage)
	}
	if item.RawInput != "" || item.ParsedData != nil {
		t.Error("item mutated despite failed dispatch")
	}
}

func TestSession_DisabledStageBlocksOnlyItself(t *testing.T) {
	// Summarizer disabled, but parsing still works.
	dispatcher := &stubDispatcher{
		failures: map[string]error{
			flags.FeatureSummarizer: fmt.Errorf("%w: summarizer", domain.ErrFeatureDisabled),
		},
	}
	session := newTestSession(t, dispatcher)
	ctx := context.Background()

	if _, parseErr := session.SubmitInput(ctx, "raw text"); parseErr != nil {
		t.Fatalf("SubmitInput() error = %v", parseErr)
	}

	_, summaryErr := session.RequestSummary(ctx, nil)
	if !errors.Is(summaryErr, domain.ErrFeatureDisabled) {
		t.Fatalf("RequestSummary() error = %v, want ErrFeatureDisabled", summaryErr)
	}
	if got := session.Item().Stage; got != domain.StageParsed {
		t.Errorf("stage = %s, want parsed", got)
	}
}

func TestSession_ResetIsIdempotent(t *testing.T) {
	session := newTestSession(t, &stubDispatcher{})
	walkTo(t, session, domain.StageIllustrated)

	session.Reset()
	first := session.Item()
	session.Reset()
	second := session.Item()

	for _, item := range []domain.ContentItem{first, second} {
		if item.Stage != domain.StageInput {
			t.Errorf("stage = %s, want input", item.Stage)
		}
		if item.RawInput != "" || item.ParsedData != nil || item.Summary != nil || item.GeneratedImage != nil {
			t.Error("reset left derived data behind")
		}
		if item.Approved {
			t.Error("reset left approved set")
		}
	}
}

func TestSession_Back(t *testing.T) {
	t.Run("from summarized keeps parsed data", func(t *testing.T) {
		session := newTestSession(t, &stubDispatcher{
			responses: map[string]json.RawMessage{
				flags.FeatureTextParser: json.RawMessage(`{"tokens":1}`),
			},
		})
		walkTo(t, session, domain.StageSummarized)

		if backErr := session.Back(); backErr != nil {
			t.Fatalf("Back() error = %v", backErr)
		}

		item := session.Item()
		if item.Stage != domain.StageParsed {
			t.Errorf("stage = %s, want parsed", item.Stage)
		}
		if item.ParsedData == nil {
			t.Error("parsed data discarded, want kept")
		}
		if item.Summary != nil {
			t.Error("summary kept, want discarded")
		}
	})

	t.Run("from input is invalid", func(t *testing.T) {
		session := newTestSession(t, &stubDispatcher{})

		backErr := session.Back()

		var transitionErr *domain.InvalidTransitionError
		if !errors.As(backErr, &transitionErr) {
			t.Fatalf("Back() error = %v, want *domain.InvalidTransitionError", backErr)
		}
	})
}

func TestManager_Sessions(t *testing.T) {
	manager := pipeline.NewManager(&stubDispatcher{}, metrics.NewNop(), logger.NewNop(), 0)

	created := manager.Create()
	if got := manager.Get(created.ID); got != created {
		t.Error("Get() did not return the created session")
	}

	if got := manager.GetOrCreate(created.ID); got != created {
		t.Error("GetOrCreate() with known id created a new session")
	}
	if got := manager.GetOrCreate("unknown-id"); got == created {
		t.Error("GetOrCreate() with unknown id returned the existing session")
	}
	if manager.Len() != 2 {
		t.Errorf("Len() = %d, want 2", manager.Len())
	}

	manager.Destroy(created.ID)
	if manager.Get(created.ID) != nil {
		t.Error("Destroy() left the session behind")
	}
}
