package domain

import "encoding/json"

// MaxRawInputLen is the maximum accepted length of raw input text.
const MaxRawInputLen = 1_000_000

// ContentItem is the unit of content moving through the pipeline. It is
// owned exclusively by one pipeline session and never shared across
// concurrent sessions.
type ContentItem struct {
	RawInput       string          `json:"raw_input,omitempty"`
	ParsedData     json.RawMessage `json:"parsed_data,omitempty"`
	Summary        json.RawMessage `json:"summary,omitempty"`
	GeneratedImage json.RawMessage `json:"generated_image,omitempty"`
	Stage          Stage           `json:"stage"`
	Approved       bool            `json:"approved"`
}

// NewContentItem returns a fresh item at the input stage.
func NewContentItem() ContentItem {
	return ContentItem{Stage: StageInput}
}

// ClearDerived discards everything produced by the pipeline, keeping only
// the stage untouched. Used by reset.
func (c *ContentItem) ClearDerived() {
	c.RawInput = ""
	c.ParsedData = nil
	c.Summary = nil
	c.GeneratedImage = nil
	c.Approved = false
}
