package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JustAGhosT/content-creation-sub001/internal/domain"
	"github.com/JustAGhosT/content-creation-sub001/internal/pipeline"
	"github.com/JustAGhosT/content-creation-sub001/internal/publish"
)

// QueuePublisher is the batch publish surface the handler needs.
type QueuePublisher interface {
	PublishQueue(ctx context.Context, queue []domain.QueueItem) (*domain.PublishResult, error)
}

// Notifier delivers fire-and-forget notifications.
type Notifier interface {
	Notify(eventType string, detail map[string]any)
}

// PublishHandler handles the platform catalog and batch publish requests.
type PublishHandler struct {
	catalog     *publish.Catalog
	publisher   QueuePublisher
	sessions    *pipeline.Manager
	notifier    Notifier
	development bool
}

// NewPublishHandler creates a new publish handler. notifier may be nil.
func NewPublishHandler(
	catalog *publish.Catalog,
	publisher QueuePublisher,
	sessions *pipeline.Manager,
	notifier Notifier,
	development bool,
) *PublishHandler {
	return &PublishHandler{
		catalog:     catalog,
		publisher:   publisher,
		sessions:    sessions,
		notifier:    notifier,
		development: development,
	}
}

// Platforms handles GET /platforms.
func (h *PublishHandler) Platforms(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.List())
}

type approveQueueRequest struct {
	Queue []domain.QueueItem `json:"queue"`
}

// ApproveQueue handles POST /approve-queue. The three aggregate outcomes
// map to three distinct statuses: 200 all succeeded, 207 partial, 500 all
// failed.
func (h *PublishHandler) ApproveQueue(c *gin.Context) {
	var req approveQueueRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be JSON with a queue array"})
		return
	}

	h.approveSession(c)

	result, publishErr := h.publisher.PublishQueue(c.Request.Context(), req.Queue)
	if publishErr != nil {
		respondError(c, h.development, publishErr)
		return
	}

	outcome := result.Outcome()
	status, message := statusForOutcome(outcome)

	if h.notifier != nil {
		h.notifier.Notify("publish.completed", map[string]any{
			"outcome":   outcome.String(),
			"succeeded": len(result.Success),
			"failed":    len(result.Failed),
		})
	}

	if outcome == domain.OutcomeAllSucceeded {
		h.destroySession(c)
	}

	c.JSON(status, gin.H{
		"message": message,
		"results": result,
	})
}

// approveSession finalizes the request's pipeline session, if it has one
// awaiting approval. A queue submitted without a session is legal.
func (h *PublishHandler) approveSession(c *gin.Context) {
	sessionID := c.GetHeader(SessionHeader)
	if sessionID == "" {
		return
	}
	session := h.sessions.Get(sessionID)
	if session == nil {
		return
	}
	if session.Item().Stage == domain.StageIllustrated {
		_ = session.Approve()
	}
}

// destroySession discards the request's session after a fully successful
// publish; the content item's lifecycle ends here.
func (h *PublishHandler) destroySession(c *gin.Context) {
	if sessionID := c.GetHeader(SessionHeader); sessionID != "" {
		h.sessions.Destroy(sessionID)
	}
}

// statusForOutcome maps the tri-state batch outcome to an HTTP status and
// response message.
func statusForOutcome(outcome domain.Outcome) (int, string) {
	switch outcome {
	case domain.OutcomeAllSucceeded:
		return http.StatusOK, "All items published successfully"
	case domain.OutcomePartial:
		return http.StatusMultiStatus, "Some items failed to publish"
	default:
		return http.StatusInternalServerError, "All items failed to publish"
	}
}
