package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/runpad/backend/internal/engine"
	"github.com/runpad/backend/internal/infrastructure/monitoring"
	"github.com/runpad/backend/internal/loader"
	"github.com/runpad/backend/internal/logging"
	"github.com/runpad/backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMetrics = monitoring.NewMetrics()

func setupRouter(resolve loader.ResolveFunc) (*gin.Engine, *store.Store) {
	gin.SetMode(gin.TestMode)

	logger := logging.NewNop()
	ld := loader.New("goja:", engine.DefaultConfig(), logger)
	if resolve != nil {
		ld.WithResolver(resolve)
	}
	st := store.New(ld, logger)

	h := NewHandlers(st, ld, testMetrics)

	router := gin.New()
	router.GET("/health", h.Health)
	router.GET("/code", h.GetCode)
	router.PUT("/code", h.UpdateCode)
	router.POST("/run", h.Run)
	return router, st
}

func TestCodeRoundTrip(t *testing.T) {
	router, _ := setupRouter(nil)

	body, _ := json.Marshal(map[string]string{"code": "print(1)"})
	req := httptest.NewRequest("PUT", "/code", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest("GET", "/code", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "print(1)", resp["code"])
}

func TestGetCodePlaceholder(t *testing.T) {
	router, _ := setupRouter(nil)

	req := httptest.NewRequest("GET", "/code", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, strings.Repeat("\n", 10), resp["code"])
}

func TestRunExecutesBuffer(t *testing.T) {
	router, st := setupRouter(nil)
	st.SetCode("console.log('hi'); 40 + 2")

	req := httptest.NewRequest("POST", "/run", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Value   any `json:"value"`
		Console []struct {
			Level   string `json:"level"`
			Message string `json:"message"`
		} `json:"console"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(42), resp.Value)
	require.Len(t, resp.Console, 1)
	assert.Equal(t, "hi", resp.Console[0].Message)
}

func TestRunWithInlineCode(t *testing.T) {
	router, st := setupRouter(nil)

	body, _ := json.Marshal(map[string]string{"code": "1 + 1"})
	req := httptest.NewRequest("POST", "/run", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1 + 1", st.Code(), "inline code should replace the buffer")
}

func TestRunLoadFailure(t *testing.T) {
	router, st := setupRouter(func(context.Context, string, engine.Config) (engine.Engine, error) {
		return nil, engine.ErrModuleLoad
	})
	st.SetCode("print(1)")

	req := httptest.NewRequest("POST", "/run", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "module_load_failed", resp["kind"])

	// A failed run leaves the buffer untouched
	assert.Equal(t, "print(1)", st.Code())
}

func TestRunExecutionFailure(t *testing.T) {
	router, st := setupRouter(nil)
	st.SetCode("throw new Error('boom')")

	req := httptest.NewRequest("POST", "/run", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "execution_failed", resp["kind"])
}

func TestUpdateCodeRejectsOversized(t *testing.T) {
	router, _ := setupRouter(nil)

	big := strings.Repeat("a", 600*1024)
	body, _ := json.Marshal(map[string]string{"code": big})
	req := httptest.NewRequest("PUT", "/code", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealth(t *testing.T) {
	router, _ := setupRouter(nil)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, false, resp["engine_loaded"])
}
