package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubDeliversToConnectedUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	go hub.Run(ctx)

	upgrader := NewUpgrader(nil)
	r := gin.New()
	r.GET("/ws", func(c *gin.Context) {
		ServeClient(c, hub, upgrader, c.Query("uid"))
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?uid=u1"
	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{})
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Online("u1") }, time.Second, 10*time.Millisecond)
	assert.False(t, hub.Online("u2"))

	assert.Equal(t, 1, hub.SendToUser("u1", []byte(`{"type":"message.created"}`)))
	assert.Equal(t, 0, hub.SendToUser("u2", []byte(`{}`)))

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"message.created"}`, string(msg))

	conn.Close()
	require.Eventually(t, func() bool { return !hub.Online("u1") }, time.Second, 10*time.Millisecond)
}

func TestUpgraderOrigins(t *testing.T) {
	up := NewUpgrader([]string{"http://localhost:5173"})
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	assert.True(t, up.CheckOrigin(req))

	req.Header.Set("Origin", "http://evil.example")
	assert.False(t, up.CheckOrigin(req))

	req.Header.Del("Origin")
	assert.True(t, up.CheckOrigin(req))
}
