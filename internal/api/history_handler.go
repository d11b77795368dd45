package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/JustAGhosT/content-creation-sub001/internal/store"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// HistoryReader is the publish record read surface the handler needs.
type HistoryReader interface {
	ListRecords(ctx context.Context, limit, offset int) ([]store.PublishRecord, int, error)
}

// HistoryHandler serves the paginated publish history.
type HistoryHandler struct {
	records     HistoryReader
	development bool
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(records HistoryReader, development bool) *HistoryHandler {
	return &HistoryHandler{records: records, development: development}
}

// List handles GET /publish-history?limit=&offset=.
func (h *HistoryHandler) List(c *gin.Context) {
	limit := parsePositiveInt(c.Query("limit"), defaultHistoryLimit)
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	offset := parsePositiveInt(c.Query("offset"), 0)

	records, total, listErr := h.records.ListRecords(c.Request.Context(), limit, offset)
	if listErr != nil {
		respondError(c, h.development, listErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// parsePositiveInt parses s as a non-negative int, falling back to def.
func parsePositiveInt(s string, def int) int {
	if s == "" {
		return def
	}
	parsed, parseErr := strconv.Atoi(s)
	if parseErr != nil || parsed < 0 {
		return def
	}
	return parsed
}
