package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterWebSocketRoutes 实时事件推送入口
// 请求示例: ws://host:port/ws?token=<access token>
func (rt *Router) RegisterWebSocketRoutes(r *gin.Engine) {
	r.GET("/ws", rt.handlers.Ws.Connect)
}
