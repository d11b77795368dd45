// Package api provides the HTTP handlers for the producer service.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JustAGhosT/content-creation-sub001/internal/domain"
)

// respondError maps a domain error to its HTTP status and writes the
// standard {error, details?} body. details carries the low-level diagnostic
// and is only included in a development-style configuration.
func respondError(c *gin.Context, development bool, err error) {
	_ = c.Error(err)

	var (
		validationErr *domain.ValidationError
		transitionErr *domain.InvalidTransitionError
		upstreamErr   *domain.UpstreamError
		persistErr    *domain.PersistenceError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Msg})

	case errors.Is(err, domain.ErrUnknownFlag),
		errors.Is(err, domain.ErrInvalidImplementation),
		errors.Is(err, domain.ErrInvalidRequestShape):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrFeatureDisabled):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})

	case errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, gin.H{"error": transitionErr.Error()})

	case errors.As(err, &persistErr):
		c.JSON(http.StatusInternalServerError, gin.H{"error": persistErr.Error()})

	case errors.As(err, &upstreamErr):
		respondUpstreamError(c, development, upstreamErr)

	default:
		body := gin.H{"error": "internal server error"}
		if development {
			body["details"] = err.Error()
		}
		c.JSON(http.StatusInternalServerError, body)
	}
}

// respondUpstreamError forwards upstream 4xx statuses as-is; everything
// else maps to 502 (unreachable) or 500.
func respondUpstreamError(c *gin.Context, development bool, upstreamErr *domain.UpstreamError) {
	status := http.StatusInternalServerError
	switch {
	case upstreamErr.Kind == domain.UpstreamUnreachable:
		status = http.StatusBadGateway
	case upstreamErr.Kind == domain.UpstreamBadStatus &&
		upstreamErr.StatusCode >= http.StatusBadRequest &&
		upstreamErr.StatusCode < http.StatusInternalServerError:
		status = upstreamErr.StatusCode
	}

	body := gin.H{"error": upstreamErr.Message}
	if development && upstreamErr.Detail != "" {
		body["details"] = upstreamErr.Detail
	}
	c.JSON(status, body)
}
