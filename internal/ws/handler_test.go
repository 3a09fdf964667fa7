package ws

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/runpad/backend/internal/engine"
	"github.com/runpad/backend/internal/infrastructure/monitoring"
	"github.com/runpad/backend/internal/loader"
	"github.com/runpad/backend/internal/logging"
	"github.com/runpad/backend/internal/shared/types"
	"github.com/runpad/backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMetrics = monitoring.NewMetrics()

func setupConn(t *testing.T) (*websocket.Conn, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logging.NewNop()
	ld := loader.New("goja:", engine.DefaultConfig(), logger)
	st := store.New(ld, logger)
	h := NewHandler(st, testMetrics, logger)

	router := gin.New()
	router.GET("/stream", h.HandleConnection)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn, st
}

func read(t *testing.T, conn *websocket.Conn) types.WSMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg types.WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestConnectionWelcome(t *testing.T) {
	conn, _ := setupConn(t)

	msg := read(t, conn)
	assert.Equal(t, "system", msg.Type)
	assert.Equal(t, strings.Repeat("\n", 10), msg.Code)
}

func TestUpdateAndGetCode(t *testing.T) {
	conn, st := setupConn(t)
	read(t, conn) // welcome

	require.NoError(t, conn.WriteJSON(types.WSMessage{Type: "update_code", Code: "print(1)"}))

	// The mutation echoes back through the store subscription
	msg := read(t, conn)
	assert.Equal(t, "code_updated", msg.Type)
	assert.Equal(t, "print(1)", msg.Code)
	assert.Equal(t, "print(1)", st.Code())

	require.NoError(t, conn.WriteJSON(types.WSMessage{Type: "get_code"}))
	msg = read(t, conn)
	assert.Equal(t, "code", msg.Type)
	assert.Equal(t, "print(1)", msg.Code)
}

func TestRunOverWebSocket(t *testing.T) {
	conn, st := setupConn(t)
	read(t, conn) // welcome

	st.SetCode("console.log('from ws'); 1")
	read(t, conn) // code_updated echo

	require.NoError(t, conn.WriteJSON(types.WSMessage{Type: "run"}))

	msg := read(t, conn)
	assert.Equal(t, "console", msg.Type)
	assert.Equal(t, "from ws", msg.Message)

	msg = read(t, conn)
	assert.Equal(t, "run_complete", msg.Type)
}

func TestPing(t *testing.T) {
	conn, _ := setupConn(t)
	read(t, conn) // welcome

	require.NoError(t, conn.WriteJSON(types.WSMessage{Type: "ping"}))
	msg := read(t, conn)
	assert.Equal(t, "pong", msg.Type)
}

func TestUnknownMessageType(t *testing.T) {
	conn, _ := setupConn(t)
	read(t, conn) // welcome

	require.NoError(t, conn.WriteJSON(types.WSMessage{Type: "teleport"}))
	msg := read(t, conn)
	assert.Equal(t, "error", msg.Type)
}
