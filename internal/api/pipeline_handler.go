package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JustAGhosT/content-creation-sub001/internal/domain"
	"github.com/JustAGhosT/content-creation-sub001/internal/pipeline"
)

// SessionHeader carries the pipeline session id. The parse endpoint issues
// one when the client has none; every pipeline endpoint echoes it back.
const SessionHeader = "X-Session-ID"

// PipelineHandler handles the content pipeline HTTP requests.
type PipelineHandler struct {
	sessions    *pipeline.Manager
	development bool
}

// NewPipelineHandler creates a new pipeline handler.
func NewPipelineHandler(sessions *pipeline.Manager, development bool) *PipelineHandler {
	return &PipelineHandler{sessions: sessions, development: development}
}

// session resolves the request's pipeline session from the session header,
// creating one when absent, and echoes the id on the response.
func (h *PipelineHandler) session(c *gin.Context) *pipeline.Session {
	session := h.sessions.GetOrCreate(c.GetHeader(SessionHeader))
	c.Header(SessionHeader, session.ID)
	return session
}

type parseRequest struct {
	RawInput string `json:"rawInput"`
}

// Parse handles POST /parse.
func (h *PipelineHandler) Parse(c *gin.Context) {
	var req parseRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be JSON with a rawInput string"})
		return
	}

	session := h.session(c)
	parsed, submitErr := session.SubmitInput(c.Request.Context(), req.RawInput)
	if submitErr != nil {
		respondError(c, h.development, submitErr)
		return
	}

	c.Data(http.StatusOK, "application/json", parsed)
}

type analyzeRequest struct {
	ParsedData json.RawMessage `json:"parsedData"`
}

// Analyze handles POST /analyze. It inspects the parsed data locally and
// reports its shape; no upstream is involved.
func (h *PipelineHandler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be JSON with a parsedData object"})
		return
	}

	var parsed map[string]json.RawMessage
	if unmarshalErr := json.Unmarshal(req.ParsedData, &parsed); unmarshalErr != nil || parsed == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "parsedData must be a non-array object"})
		return
	}

	valueTypes := make(map[string]string, len(parsed))
	for key, value := range parsed {
		valueTypes[key] = jsonValueType(value)
	}

	c.JSON(http.StatusOK, gin.H{
		"keyCount":   len(parsed),
		"valueTypes": valueTypes,
	})
}

// Summarize handles POST /summarize. The body is passed to the
// summarization backend as-is.
func (h *PipelineHandler) Summarize(c *gin.Context) {
	var payload json.RawMessage
	if bindErr := c.ShouldBindJSON(&payload); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be JSON"})
		return
	}

	session := h.session(c)
	summary, summarizeErr := session.RequestSummary(c.Request.Context(), payload)
	if summarizeErr != nil {
		respondError(c, h.development, summarizeErr)
		return
	}

	c.Data(http.StatusOK, "application/json", summary)
}

// ApproveSummary handles POST /approve-summary. Approving the summary
// triggers image generation for the illustration stage.
func (h *PipelineHandler) ApproveSummary(c *gin.Context) {
	var payload json.RawMessage
	if bindErr := c.ShouldBindJSON(&payload); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be JSON"})
		return
	}

	session := h.session(c)
	image, imageErr := session.RequestImage(c.Request.Context(), payload)
	if imageErr != nil {
		respondError(c, h.development, imageErr)
		return
	}

	c.Data(http.StatusOK, "application/json", image)
}

// Back handles POST /pipeline/back.
func (h *PipelineHandler) Back(c *gin.Context) {
	session := h.session(c)
	if backErr := session.Back(); backErr != nil {
		respondError(c, h.development, backErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stage": session.Item().Stage})
}

// Reset handles POST /pipeline/reset.
func (h *PipelineHandler) Reset(c *gin.Context) {
	session := h.session(c)
	session.Reset()
	c.JSON(http.StatusOK, gin.H{"stage": domain.StageInput})
}

// State handles GET /pipeline/state.
func (h *PipelineHandler) State(c *gin.Context) {
	session := h.session(c)
	item := session.Item()

	c.JSON(http.StatusOK, gin.H{
		"stage":    item.Stage,
		"approved": item.Approved,
	})
}

// jsonValueType names the JSON type of a raw value.
func jsonValueType(value json.RawMessage) string {
	trimmed := []byte(value)
	for len(trimmed) > 0 && (trimmed[0] == ' ' || trimmed[0] == '\t' || trimmed[0] == '\n' || trimmed[0] == '\r') {
		trimmed = trimmed[1:]
	}
	if len(trimmed) == 0 {
		return "null"
	}

	switch trimmed[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case '"':
		return "string"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	default:
		return "number"
	}
}
