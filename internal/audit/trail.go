// Package audit records operational events to a Redis stream.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/JustAGhosT/content-creation-sub001/internal/flags"
	"github.com/JustAGhosT/content-creation-sub001/internal/logger"
)

// StreamKey is the Redis stream holding the audit trail.
const StreamKey = "producer:audit:trail"

// maxStreamLen caps the audit stream with approximate trimming.
const maxStreamLen = 10_000

// Toggle reports whether a feature is enabled.
type Toggle interface {
	IsEnabled(name string) bool
}

// Entry is one audit trail record.
type Entry struct {
	ID        string         `json:"id"`
	Action    string         `json:"action"`
	Detail    map[string]any `json:"detail,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Trail appends audit entries to a Redis stream. Recording is best-effort:
// a failed append is logged and never surfaced to the caller.
type Trail struct {
	client *redis.Client
	toggle Toggle
	logger logger.Logger
}

// NewTrail creates an audit trail. Returns nil if client is nil; a nil
// *Trail is a safe no-op.
func NewTrail(client *redis.Client, toggle Toggle, log logger.Logger) *Trail {
	if client == nil {
		return nil
	}
	return &Trail{
		client: client,
		toggle: toggle,
		logger: log,
	}
}

// Record appends an entry to the audit stream when the audit trail feature
// is enabled.
func (t *Trail) Record(ctx context.Context, action string, detail map[string]any) {
	if t == nil || t.client == nil {
		return
	}
	if t.toggle != nil && !t.toggle.IsEnabled(flags.FeatureAuditTrail) {
		return
	}

	entry := Entry{
		ID:        uuid.NewString(),
		Action:    action,
		Detail:    detail,
		Timestamp: time.Now().UTC(),
	}

	payload, marshalErr := json.Marshal(entry)
	if marshalErr != nil {
		t.logger.Warn("failed to marshal audit entry",
			logger.String("action", action),
			logger.Error(marshalErr),
		)
		return
	}

	result := t.client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey,
		MaxLen: maxStreamLen,
		Approx: true,
		Values: map[string]any{
			"entry": string(payload),
		},
	})
	if addErr := result.Err(); addErr != nil {
		t.logger.Warn("failed to record audit entry",
			logger.String("action", action),
			logger.Error(addErr),
		)
		return
	}

	t.logger.Debug("audit entry recorded",
		logger.String("action", action),
		logger.String("stream_id", result.Val()),
	)
}

// Recent returns the newest audit entries, up to count.
func (t *Trail) Recent(ctx context.Context, count int64) ([]Entry, error) {
	if t == nil || t.client == nil {
		return nil, nil
	}

	messages, rangeErr := t.client.XRevRangeN(ctx, StreamKey, "+", "-", count).Result()
	if rangeErr != nil {
		return nil, rangeErr
	}

	entries := make([]Entry, 0, len(messages))
	for _, msg := range messages {
		raw, ok := msg.Values["entry"].(string)
		if !ok {
			continue
		}
		var entry Entry
		if unmarshalErr := json.Unmarshal([]byte(raw), &entry); unmarshalErr != nil {
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
