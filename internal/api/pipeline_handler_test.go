package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JustAGhosT/content-creation-sub001/internal/api"
	"github.com/JustAGhosT/content-creation-sub001/internal/domain"
	"github.com/JustAGhosT/content-creation-sub001/internal/flags"
	"github.com/JustAGhosT/content-creation-sub001/internal/logger"
	"github.com/JustAGhosT/content-creation-sub001/internal/metrics"
	"github.com/JustAGhosT/content-creation-sub001/internal/pipeline"
)

// stubDispatcher returns canned responses per feature.
type stubDispatcher struct {
	responses map[string]json.RawMessage
	failures  map[string]error
}

func (d *stubDispatcher) Dispatch(_ context.Context, feature string, _ any) (json.RawMessage, error) {
	if failErr, ok := d.failures[feature]; ok {
		return nil, failErr
	}
	if resp, ok := d.responses[feature]; ok {
		return resp, nil
	}
	return json.RawMessage(`{}`), nil
}

func setupPipelineRouter(t *testing.T, dispatcher pipeline.Dispatcher) (*gin.Engine, *pipeline.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	manager := pipeline.NewManager(dispatcher, metrics.NewNop(), logger.NewNop(), 0)
	handler := api.NewPipelineHandler(manager, false)

	router := gin.New()
	router.POST("/parse", handler.Parse)
	router.POST("/analyze", handler.Analyze)
	router.POST("/summarize", handler.Summarize)
	router.POST("/approve-summary", handler.ApproveSummary)
	router.POST("/pipeline/back", handler.Back)
	router.POST("/pipeline/reset", handler.Reset)
	router.GET("/pipeline/state", handler.State)

	return router, manager
}

func TestPipelineHandler_Parse(t *testing.T) {
	dispatcher := &stubDispatcher{
		responses: map[string]json.RawMessage{
			flags.FeatureTextParser: json.RawMessage(`{"tokens":5}`),
		},
	}
	router, manager := setupPipelineRouter(t, dispatcher)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/parse", strings.NewReader(`{"rawInput":"hello world"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"tokens":5}`, w.Body.String())

	sessionID := w.Header().Get(api.SessionHeader)
	require.NotEmpty(t, sessionID)

	session := manager.Get(sessionID)
	require.NotNil(t, session)
	assert.Equal(t, domain.StageParsed, session.Item().Stage)
}

func TestPipelineHandler_ParseValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty rawInput", `{"rawInput":""}`},
		{"whitespace rawInput", `{"rawInput":"   "}`},
		{"not json", `rawInput=hello`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := setupPipelineRouter(t, &stubDispatcher{})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/parse", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "error")
		})
	}
}

func TestPipelineHandler_ParseReusesSession(t *testing.T) {
	router, _ := setupPipelineRouter(t, &stubDispatcher{})

	first := httptest.NewRecorder()
	firstReq := httptest.NewRequest(http.MethodPost, "/parse", strings.NewReader(`{"rawInput":"hello"}`))
	router.ServeHTTP(first, firstReq)
	sessionID := first.Header().Get(api.SessionHeader)
	require.NotEmpty(t, sessionID)

	// Parsing again on the same session conflicts with its current stage.
	second := httptest.NewRecorder()
	secondReq := httptest.NewRequest(http.MethodPost, "/parse", strings.NewReader(`{"rawInput":"again"}`))
	secondReq.Header.Set(api.SessionHeader, sessionID)
	router.ServeHTTP(second, secondReq)

	assert.Equal(t, http.StatusConflict, second.Code)
	assert.Equal(t, sessionID, second.Header().Get(api.SessionHeader))
}

func TestPipelineHandler_DisabledFeature(t *testing.T) {
	dispatcher := &stubDispatcher{
		failures: map[string]error{
			flags.FeatureTextParser: domain.ErrFeatureDisabled,
		},
	}
	router, _ := setupPipelineRouter(t, dispatcher)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/parse", strings.NewReader(`{"rawInput":"hello"}`))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPipelineHandler_Analyze(t *testing.T) {
	router, _ := setupPipelineRouter(t, &stubDispatcher{})

	w := httptest.NewRecorder()
	body := `{"parsedData":{"title":"hi","count":3,"tags":["a"],"draft":true,"extra":null}}`
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(body))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		KeyCount   int               `json:"keyCount"`
		ValueTypes map[string]string `json:"valueTypes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.KeyCount)
	assert.Equal(t, "string", resp.ValueTypes["title"])
	assert.Equal(t, "number", resp.ValueTypes["count"])
	assert.Equal(t, "array", resp.ValueTypes["tags"])
	assert.Equal(t, "boolean", resp.ValueTypes["draft"])
	assert.Equal(t, "null", resp.ValueTypes["extra"])
}

func TestPipelineHandler_AnalyzeRejectsNonObject(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"array", `{"parsedData":[1,2,3]}`},
		{"string", `{"parsedData":"hello"}`},
		{"null", `{"parsedData":null}`},
		{"missing", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := setupPipelineRouter(t, &stubDispatcher{})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(tt.body))
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestPipelineHandler_StateAndReset(t *testing.T) {
	router, manager := setupPipelineRouter(t, &stubDispatcher{})

	session := manager.Create()
	_, submitErr := session.SubmitInput(context.Background(), "hello")
	require.NoError(t, submitErr)

	state := httptest.NewRecorder()
	stateReq := httptest.NewRequest(http.MethodGet, "/pipeline/state", nil)
	stateReq.Header.Set(api.SessionHeader, session.ID)
	router.ServeHTTP(state, stateReq)

	require.Equal(t, http.StatusOK, state.Code)
	assert.JSONEq(t, `{"stage":"parsed","approved":false}`, state.Body.String())

	reset := httptest.NewRecorder()
	resetReq := httptest.NewRequest(http.MethodPost, "/pipeline/reset", nil)
	resetReq.Header.Set(api.SessionHeader, session.ID)
	router.ServeHTTP(reset, resetReq)

	require.Equal(t, http.StatusOK, reset.Code)
	assert.JSONEq(t, `{"stage":"input"}`, reset.Body.String())
	assert.Equal(t, domain.StageInput, session.Item().Stage)
}

func TestPipelineHandler_BackFromInputConflicts(t *testing.T) {
	router, _ := setupPipelineRouter(t, &stubDispatcher{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/pipeline/back", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}
