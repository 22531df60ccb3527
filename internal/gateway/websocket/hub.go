// Package websocket 维护在线用户的 WebSocket 连接，并把领域事件推送给对应用户
// 连接只用于服务端推送，客户端发来的内容被忽略
package websocket

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Hub 在线连接注册表，同一用户可以有多个连接（多个标签页）
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

// NewHub 创建 Hub，需调用 Run 启动
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run 处理登录登出，ctx 结束时关闭全部连接
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			set, ok := h.clients[client.UserID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.UserID] = set
			}
			set[client] = struct{}{}
			h.mu.Unlock()
			zap.L().Debug("ws client registered", zap.String("user_id", client.UserID))

		case client := <-h.unregister:
			h.remove(client)
			zap.L().Debug("ws client unregistered", zap.String("user_id", client.UserID))

		case <-ctx.Done():
			h.mu.Lock()
			for _, set := range h.clients {
				for client := range set {
					close(client.SendBack)
				}
			}
			h.clients = make(map[string]map[*Client]struct{})
			h.mu.Unlock()
			return
		}
	}
}

// Register 注册连接，Hub 已停止时返回 false
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister 注销连接，Hub 已停止时直接返回
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[client.UserID]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	close(client.SendBack)
	if len(set) == 0 {
		delete(h.clients, client.UserID)
	}
}

// SendToUser 推送给某用户的全部连接，返回成功入队的连接数
// 发送缓冲已满的连接视为卡死，直接断开
func (h *Hub) SendToUser(userID string, data []byte) int {
	h.mu.RLock()
	var stuck []*Client
	sent := 0
	for client := range h.clients[userID] {
		select {
		case client.SendBack <- data:
			sent++
		default:
			stuck = append(stuck, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range stuck {
		zap.L().Warn("ws client send buffer full, dropping connection", zap.String("user_id", userID))
		h.remove(client)
	}
	return sent
}

// Online 用户是否至少有一个连接
func (h *Hub) Online(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}
