package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JustAGhosT/content-creation-sub001/internal/api"
	"github.com/JustAGhosT/content-creation-sub001/internal/flags"
	"github.com/JustAGhosT/content-creation-sub001/internal/logger"
)

func setupFlagsRouter(t *testing.T) (*gin.Engine, *flags.Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registry := flags.NewRegistry(nil, logger.NewNop())
	handler := api.NewFlagsHandler(registry, false)

	router := gin.New()
	router.GET("/feature-flags", handler.List)
	router.POST("/feature-flags", handler.Update)

	return router, registry
}

func TestFlagsHandler_List(t *testing.T) {
	router, _ := setupFlagsRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/feature-flags", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var snapshot map[string]flags.Flag
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snapshot))
	assert.Len(t, snapshot, 5)
	assert.True(t, snapshot[flags.FeatureTextParser].Enabled)
	assert.Equal(t, flags.ImplDeepseek, snapshot[flags.FeatureTextParser].Implementation)
	assert.False(t, snapshot[flags.FeatureNotifications].Enabled)
}

func TestFlagsHandler_Update(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name:       "disable a flag",
			body:       `{"feature":"summarizer","enabled":false}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "switch implementation",
			body:       `{"feature":"textParser","enabled":true,"implementation":"openai"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "unknown flag",
			body:       `{"feature":"doesNotExist","enabled":true}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown implementation",
			body:       `{"feature":"textParser","enabled":true,"implementation":"gemini"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unrecognized property",
			body:       `{"feature":"summarizer","enabled":true,"rollout":50}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "enabled wrong type",
			body:       `{"feature":"summarizer","enabled":"yes"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing enabled",
			body:       `{"feature":"summarizer"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing feature",
			body:       `{"enabled":true}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := setupFlagsRouter(t)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/feature-flags", strings.NewReader(tt.body))
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.JSONEq(t, `{"status":"updated"}`, w.Body.String())
			} else {
				assert.Contains(t, w.Body.String(), "error")
			}
		})
	}
}

func TestFlagsHandler_UpdateAppliesToRegistry(t *testing.T) {
	router, registry := setupFlagsRouter(t)

	w := httptest.NewRecorder()
	body := `{"feature":"textParser","enabled":true,"implementation":"azure"}`
	req := httptest.NewRequest(http.MethodPost, "/feature-flags", strings.NewReader(body))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	impl, ok := registry.Implementation(flags.FeatureTextParser)
	require.True(t, ok)
	assert.Equal(t, flags.ImplAzure, impl)
}
