package dispatch

import (
	"fmt"

	"github.com/JustAGhosT/content-creation-sub001/internal/domain"
	"github.com/JustAGhosT/content-creation-sub001/internal/flags"
)

// Backend is the closed set of text parsing implementations. The enumerated
// set and the endpoint mapping must stay in sync; a mismatch is a
// configuration error surfaced as ErrUnknownImplementation.
type Backend string

const (
	// BackendDeepseek routes parsing to the DeepSeek upstream.
	BackendDeepseek Backend = flags.ImplDeepseek
	// BackendOpenAI routes parsing to the OpenAI upstream.
	BackendOpenAI Backend = flags.ImplOpenAI
	// BackendAzure routes parsing to the Azure upstream.
	BackendAzure Backend = flags.ImplAzure
)

// Endpoints maps every dispatchable feature to its upstream URL(s).
type Endpoints struct {
	TextParser     TextParserEndpoints
	Summarizer     string
	ImageGenerator string
}

// TextParserEndpoints holds one URL per parsing backend.
type TextParserEndpoints struct {
	Deepseek string
	OpenAI   string
	Azure    string
}

// Resolve returns the upstream URL for the given parsing backend.
func (e TextParserEndpoints) Resolve(b Backend) (string, error) {
	var url string
	switch b {
	case BackendDeepseek:
		url = e.Deepseek
	case BackendOpenAI:
		url = e.OpenAI
	case BackendAzure:
		url = e.Azure
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownImplementation, b)
	}

	if url == "" {
		return "", fmt.Errorf("%w: no URL configured for %q", domain.ErrUnknownImplementation, b)
	}
	return url, nil
}
