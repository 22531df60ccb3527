package handler

import (
	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"

	"vedzeb_server/internal/gateway/websocket"
	"vedzeb_server/internal/infrastructure/middleware"
	"vedzeb_server/pkg/errorx"
	"vedzeb_server/pkg/util/jwt"
)

var errWsTokenRequired = errorx.New(errorx.CodeUnauthorized, "No token provided")

// WsHandler 实时事件推送
type WsHandler struct {
	hub      *websocket.Hub
	upgrader *gorillaws.Upgrader
	users    middleware.UserFinder
}

func NewWsHandler(hub *websocket.Hub, upgrader *gorillaws.Upgrader, users middleware.UserFinder) *WsHandler {
	return &WsHandler{hub: hub, upgrader: upgrader, users: users}
}

// Connect 升级为 WebSocket 连接
// GET /ws?token=<access token>
// 浏览器无法为 WebSocket 设置 Authorization 头，令牌走查询参数
func (h *WsHandler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		HandleError(c, errWsTokenRequired)
		return
	}
	claims, err := jwt.ParseToken(token, jwt.SubjectAccess)
	if err != nil {
		HandleError(c, err)
		return
	}
	u, err := h.users.FindByID(claims.UserID)
	if err != nil {
		HandleError(c, errorx.ErrUnauthorized)
		return
	}
	if u.IsBanned {
		HandleError(c, errorx.ErrForbidden)
		return
	}
	websocket.ServeClient(c, h.hub, h.upgrader, u.ID)
}
