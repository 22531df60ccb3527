package websocket

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 512
	sendBufferSize = 64
)

// Client 单个 WebSocket 连接
type Client struct {
	hub      *Hub
	Conn     *websocket.Conn
	UserID   string
	SendBack chan []byte // 给前端
}

// NewUpgrader allowedOrigins 为空时只允许同源
func NewUpgrader(allowedOrigins []string) *websocket.Upgrader {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 2048,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || allowed["*"] {
				return true
			}
			if len(allowed) == 0 {
				return origin == "http://"+r.Host || origin == "https://"+r.Host
			}
			return allowed[origin]
		},
	}
}

// ServeClient 升级连接并注册到 Hub，调用方已完成鉴权
func ServeClient(c *gin.Context, hub *Hub, upgrader *websocket.Upgrader, userID string) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.L().Warn("ws upgrade failed", zap.String("user_id", userID), zap.Error(err))
		return
	}
	client := &Client{
		hub:      hub,
		Conn:     conn,
		UserID:   userID,
		SendBack: make(chan []byte, sendBufferSize),
	}
	if !hub.Register(client) {
		_ = conn.Close()
		return
	}

	go client.Write()
	go client.Read()
	zap.L().Info("ws connected", zap.String("user_id", userID))
}

// Read 只处理控制帧和关闭，读到错误即注销
func (c *Client) Read() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.L().Debug("ws read error", zap.String("user_id", c.UserID), zap.Error(err))
			}
			return
		}
	}
}

// Write 从 SendBack 读取事件写给前端，并定时发送 ping
func (c *Client) Write() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.SendBack:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
