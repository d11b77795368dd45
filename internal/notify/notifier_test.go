package notify_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/JustAGhosT/content-creation-sub001/internal/logger"
	"github.com/JustAGhosT/content-creation-sub001/internal/notify"
)

type fixedToggle bool

func (t fixedToggle) IsEnabled(string) bool { return bool(t) }

// channelSender signals each delivered event on a channel.
type channelSender struct {
	events chan notify.Event
}

func newChannelSender() *channelSender {
	return &channelSender{events: make(chan notify.Event, 8)}
}

func (s *channelSender) Send(_ context.Context, event notify.Event) error {
	s.events <- event
	return nil
}

func waitForEvent(t *testing.T, sender *channelSender) notify.Event {
	t.Helper()

	select {
	case event := <-sender.events:
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification delivery")
		return notify.Event{}
	}
}

func TestNotifier_DeliversToAllSenders(t *testing.T) {
	first := newChannelSender()
	second := newChannelSender()
	notifier := notify.NewNotifier([]notify.Sender{first, second}, fixedToggle(true), logger.NewNop())

	notifier.Notify("publish.completed", map[string]any{"outcome": "all_succeeded"})

	for _, sender := range []*channelSender{first, second} {
		event := waitForEvent(t, sender)
		if event.Type != "publish.completed" {
			t.Errorf("event.Type = %q, want publish.completed", event.Type)
		}
		if event.Detail["outcome"] != "all_succeeded" {
			t.Errorf("event.Detail = %v, want outcome carried through", event.Detail)
		}
		if event.Timestamp.IsZero() {
			t.Error("event.Timestamp is zero")
		}
	}
}

func TestNotifier_DisabledDeliversNothing(t *testing.T) {
	sender := newChannelSender()
	notifier := notify.NewNotifier([]notify.Sender{sender}, fixedToggle(false), logger.NewNop())

	notifier.Notify("publish.completed", nil)

	select {
	case <-sender.events:
		t.Error("notification delivered while feature disabled")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestNotifier_NilNotifierIsSafe(t *testing.T) {
	var notifier *notify.Notifier
	notifier.Notify("publish.completed", nil)
}

func TestWebhookSender_Send(t *testing.T) {
	received := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received <- r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	sender := notify.NewWebhookSender(server.URL, server.Client())

	sendErr := sender.Send(context.Background(), notify.Event{Type: "publish.completed"})
	if sendErr != nil {
		t.Fatalf("Send() error = %v", sendErr)
	}
	if contentType := <-received; contentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", contentType)
	}
}

func TestWebhookSender_SendBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	sender := notify.NewWebhookSender(server.URL, server.Client())

	sendErr := sender.Send(context.Background(), notify.Event{Type: "publish.completed"})
	if sendErr == nil {
		t.Fatal("Send() expected error for 502 response, got nil")
	}
}
