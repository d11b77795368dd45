package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/JustAGhosT/content-creation-sub001/internal/logger"
)

// Client posts content payloads to external platform APIs.
type Client struct {
	client *http.Client
	logger logger.Logger
}

// NewClient creates a platform publishing client.
func NewClient(httpClient *http.Client, log logger.Logger) *Client {
	return &Client{
		client: httpClient,
		logger: log,
	}
}

// Publish posts content to the platform's configured URL. Platform-specific
// headers are merged with a bearer authorization header carrying the
// platform's API key.
func (c *Client) Publish(ctx context.Context, platform PlatformConfig, content json.RawMessage) error {
	payload, marshalErr := json.Marshal(map[string]json.RawMessage{"content": content})
	if marshalErr != nil {
		return fmt.Errorf("marshal payload: %w", marshalErr)
	}

	req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, platform.APIURL, bytes.NewReader(payload))
	if reqErr != nil {
		return fmt.Errorf("create request: %w", reqErr)
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range platform.Headers {
		req.Header.Set(key, value)
	}
	req.Header.Set("Authorization", "Bearer "+platform.APIKey)

	resp, doErr := c.client.Do(req)
	if doErr != nil {
		return fmt.Errorf("no response from platform %s", platform.Name)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		bodyBytes, _ := io.ReadAll(resp.Body)
		c.logger.Debug("platform rejected publish",
			logger.String("platform", platform.Name),
			logger.Int("status_code", resp.StatusCode),
			logger.String("body", string(bodyBytes)),
		)
		return fmt.Errorf("platform %s responded with status %d: %s",
			platform.Name, resp.StatusCode, platformMessage(bodyBytes, resp.Status))
	}

	return nil
}

// platformMessage extracts the platform-supplied error message from a
// failure body, falling back to the HTTP status text.
func platformMessage(body []byte, status string) string {
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
	return status
}
