// Package handler 提供 HTTP 请求处理器
// 通过构造函数注入 Service 依赖
package handler

import (
	gorillaws "github.com/gorilla/websocket"

	"vedzeb_server/internal/gateway/websocket"
	"vedzeb_server/internal/infrastructure/middleware"
	"vedzeb_server/internal/service"
)

// Handlers 聚合所有 Handler 实例，Router 层通过此结构访问各个 Handler
type Handlers struct {
	Auth    *AuthHandler
	Profile *ProfileHandler
	Contact *ContactHandler
	Alert   *AlertHandler
	Admin   *AdminHandler
	Ws      *WsHandler
}

// RealtimeDeps WebSocket 相关依赖
type RealtimeDeps struct {
	Hub      *websocket.Hub
	Upgrader *gorillaws.Upgrader
	Users    middleware.UserFinder
}

// NewHandlers 创建并注入所有 Handler 实例
func NewHandlers(svc *service.Services, rt RealtimeDeps, maxFileSize int64) *Handlers {
	return &Handlers{
		Auth:    NewAuthHandler(svc.Auth),
		Profile: NewProfileHandler(svc.Profile, maxFileSize),
		Contact: NewContactHandler(svc.Contact),
		Alert:   NewAlertHandler(svc.Alert),
		Admin:   NewAdminHandler(svc.Admin),
		Ws:      NewWsHandler(rt.Hub, rt.Upgrader, rt.Users),
	}
}
