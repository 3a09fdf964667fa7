package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/runpad/backend/internal/engine"
	"github.com/runpad/backend/internal/infrastructure/monitoring"
	"github.com/runpad/backend/internal/loader"
	"github.com/runpad/backend/internal/shared/types"
	"github.com/runpad/backend/internal/shared/utils"
	"github.com/runpad/backend/internal/store"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	store     *store.Store
	loader    *loader.Loader
	metrics   *monitoring.Metrics
	validator *utils.CodeValidator
}

// NewHandlers creates a new handler set
func NewHandlers(st *store.Store, ld *loader.Loader, metrics *monitoring.Metrics) *Handlers {
	return &Handlers{
		store:     st,
		loader:    ld,
		metrics:   metrics,
		validator: utils.DefaultCodeValidator(),
	}
}

// Root handles the service banner
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "Runpad Backend",
		"version": "0.3.0",
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "healthy",
		"engine_loaded": h.loader.Loaded(),
		"buffer_bytes":  len(h.store.Code()),
		"metrics":       h.metrics.GetSnapshot(),
	})
}

// GetCode returns the current code buffer
func (h *Handlers) GetCode(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"code": h.store.Code()})
}

// UpdateCode replaces the code buffer
func (h *Handlers) UpdateCode(c *gin.Context) {
	var req types.UpdateCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.validator.Validate(req.Code); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.store.SetCode(req.Code)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Run triggers execution of the current buffer. An inline code field
// replaces the buffer first, mirroring an editor that saves on run.
func (h *Handlers) Run(c *gin.Context) {
	var req types.RunRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	if req.Code != nil {
		if err := h.validator.Validate(*req.Code); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.store.SetCode(*req.Code)
	}

	started := time.Now()
	result, err := h.store.Run(c.Request.Context())
	if err != nil {
		h.metrics.RecordRun(runStatus(err), time.Since(started))
		c.JSON(statusForError(err), gin.H{
			"error": err.Error(),
			"kind":  errorKind(err),
		})
		return
	}

	h.metrics.RecordRun("ok", result.Duration)
	c.JSON(http.StatusOK, runResponse(result, started))
}

func runResponse(result *engine.Result, started time.Time) types.RunResponse {
	console := make([]types.LogLine, 0, len(result.Console))
	for _, entry := range result.Console {
		console = append(console, types.LogLine{Level: entry.Level, Message: entry.Message})
	}
	return types.RunResponse{
		Value:     result.Value,
		Console:   console,
		Duration:  float64(result.Duration.Microseconds()) / 1000.0,
		StartedAt: &started,
	}
}

func errorKind(err error) string {
	var execErr *engine.ExecError
	switch {
	case errors.Is(err, engine.ErrSpawn):
		return "isolation_spawn_failed"
	case errors.Is(err, engine.ErrModuleLoad):
		return "module_load_failed"
	case errors.As(err, &execErr):
		return "execution_failed"
	default:
		return "internal"
	}
}

func statusForError(err error) int {
	var execErr *engine.ExecError
	switch {
	case engine.IsLoadFailure(err):
		return http.StatusBadGateway
	case errors.As(err, &execErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func runStatus(err error) string {
	if engine.IsLoadFailure(err) {
		return "load_failed"
	}
	return "exec_failed"
}
