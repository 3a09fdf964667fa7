package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/runpad/backend/internal/infrastructure/monitoring"
	"github.com/runpad/backend/internal/logging"
	"github.com/runpad/backend/internal/shared/id"
	"github.com/runpad/backend/internal/shared/types"
	"github.com/runpad/backend/internal/shared/utils"
	"github.com/runpad/backend/internal/store"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // Origins restricted by the CORS layer in front
	},
}

// Handler manages WebSocket connections
type Handler struct {
	store     *store.Store
	metrics   *monitoring.Metrics
	validator *utils.CodeValidator
	logger    *logging.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(st *store.Store, metrics *monitoring.Metrics, logger *logging.Logger) *Handler {
	return &Handler{
		store:     st,
		metrics:   metrics,
		validator: utils.DefaultCodeValidator(),
		logger:    logger,
	}
}

// conn serializes writes; gorilla allows one concurrent writer only.
type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) send(msg interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.ws.WriteJSON(msg)
}

// HandleConnection handles WebSocket upgrade and messages
func (h *Handler) HandleConnection(gc *gin.Context) {
	ws, err := upgrader.Upgrade(gc.Writer, gc.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer ws.Close()

	h.metrics.ConnectionOpened()
	defer h.metrics.ConnectionClosed()

	connID := id.NewConnID()
	h.logger.Debug("websocket connected",
		zap.String("conn_id", connID.String()),
		zap.String("remote", ws.RemoteAddr().String()))
	defer h.logger.Debug("websocket disconnected", zap.String("conn_id", connID.String()))

	c := &conn{ws: ws}
	ws.SetReadLimit(utils.MaxCodeSize + 1024)

	// Mirror buffer mutations to this client so every bound view
	// re-renders on change, whichever surface wrote it.
	unsubscribe := h.store.Subscribe(func(code string) {
		c.send(types.WSMessage{Type: "code_updated", Code: code})
	})
	defer unsubscribe()

	c.send(types.WSMessage{Type: "system", Message: "connected", Code: h.store.Code()})

	reqCtx := gc.Request.Context()

	for {
		var msg types.WSMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read error", zap.Error(err))
			}
			break
		}

		h.metrics.RecordWSMessage(msg.Type)

		switch msg.Type {
		case "update_code":
			h.handleUpdate(c, msg)
		case "get_code":
			c.send(types.WSMessage{Type: "code", Code: h.store.Code()})
		case "run":
			h.handleRun(c, reqCtx)
		case "ping":
			c.send(types.WSMessage{Type: "pong"})
		default:
			c.send(types.WSMessage{Type: "error", Message: "unknown message type: " + msg.Type})
		}
	}
}

func (h *Handler) handleUpdate(c *conn, msg types.WSMessage) {
	if err := h.validator.Validate(msg.Code); err != nil {
		c.send(types.WSMessage{Type: "error", Message: err.Error()})
		return
	}
	h.store.SetCode(msg.Code)
}

func (h *Handler) handleRun(c *conn, ctx context.Context) {
	started := time.Now()
	result, err := h.store.Run(ctx)
	if err != nil {
		h.metrics.RecordRun("failed", time.Since(started))
		c.send(types.WSMessage{Type: "error", Message: err.Error()})
		return
	}

	h.metrics.RecordRun("ok", result.Duration)

	// Engine output is the run's observable surface; relay each
	// console line then the completion frame.
	for _, entry := range result.Console {
		c.send(types.WSMessage{Type: "console", Message: entry.Message})
	}
	c.send(types.WSMessage{Type: "run_complete"})
}
