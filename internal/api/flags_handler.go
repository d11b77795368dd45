package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JustAGhosT/content-creation-sub001/internal/domain"
	"github.com/JustAGhosT/content-creation-sub001/internal/flags"
)

// FlagUpdater is the registry surface the handler needs.
type FlagUpdater interface {
	Snapshot() map[string]flags.Flag
	Update(ctx context.Context, name string, enabled bool, implementation *string) error
}

// FlagsHandler handles the feature flag administration requests.
type FlagsHandler struct {
	registry    FlagUpdater
	development bool
}

// NewFlagsHandler creates a new flags handler.
func NewFlagsHandler(registry FlagUpdater, development bool) *FlagsHandler {
	return &FlagsHandler{registry: registry, development: development}
}

// List handles GET /feature-flags.
func (h *FlagsHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.registry.Snapshot())
}

// updateRequest is the exact recognized body shape for a flag update.
// Pointers distinguish "absent" from zero values; unknown properties are
// rejected by the decoder.
type updateRequest struct {
	Feature        string  `json:"feature"`
	Enabled        *bool   `json:"enabled"`
	Implementation *string `json:"implementation"`
}

// Update handles POST /feature-flags. Bodies carrying properties outside
// {feature, enabled, implementation}, or with wrong types, are rejected.
func (h *FlagsHandler) Update(c *gin.Context) {
	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()

	var req updateRequest
	if decodeErr := decoder.Decode(&req); decodeErr != nil {
		respondError(c, h.development,
			fmt.Errorf("%w: %s", domain.ErrInvalidRequestShape, decodeErr.Error()))
		return
	}

	if req.Feature == "" {
		respondError(c, h.development,
			fmt.Errorf("%w: feature is required", domain.ErrInvalidRequestShape))
		return
	}
	if req.Enabled == nil {
		respondError(c, h.development,
			fmt.Errorf("%w: enabled must be a boolean", domain.ErrInvalidRequestShape))
		return
	}

	updateErr := h.registry.Update(c.Request.Context(), req.Feature, *req.Enabled, req.Implementation)
	if updateErr != nil {
		respondError(c, h.development, updateErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}
