package domain

import "encoding/json"

// PlatformRef names a publishing target inside a queue item.
type PlatformRef struct {
	Name string `json:"name"`
}

// QueueItem pairs a content payload with the platform it should be
// published to. It exists only for the duration of one publish call.
type QueueItem struct {
	Platform PlatformRef     `json:"platform"`
	Content  json.RawMessage `json:"content"`
}

// FailedItem records a queue item together with the reason it failed.
type FailedItem struct {
	Item  QueueItem `json:"item"`
	Error string    `json:"error"`
}

// PublishResult aggregates per-item outcomes of one publish call.
// It is computed fresh per call and never persisted.
type PublishResult struct {
	Success []QueueItem  `json:"success"`
	Failed  []FailedItem `json:"failed"`
}

// Outcome classifies an aggregate publish result.
type Outcome int

const (
	// OutcomeAllSucceeded means every item was published.
	OutcomeAllSucceeded Outcome = iota
	// OutcomeAllFailed means every item failed.
	OutcomeAllFailed
	// OutcomePartial means at least one item succeeded and at least one failed.
	OutcomePartial
)

// Outcome returns the tri-state classification of r. The three states are
// mutually exclusive and exhaustive for any non-empty queue.
func (r *PublishResult) Outcome() Outcome {
	switch {
	case len(r.Failed) == 0:
		return OutcomeAllSucceeded
	case len(r.Success) == 0:
		return OutcomeAllFailed
	default:
		return OutcomePartial
	}
}

// String returns a human-readable outcome label.
func (o Outcome) String() string {
	switch o {
	case OutcomeAllSucceeded:
		return "all_succeeded"
	case OutcomeAllFailed:
		return "all_failed"
	default:
		return "partial"
	}
}
