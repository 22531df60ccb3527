package router

import (
	"github.com/gin-gonic/gin"

	"vedzeb_server/internal/infrastructure/middleware"
)

// RegisterAlertRoutes 搜索提醒路由
func (rt *Router) RegisterAlertRoutes(rg *gin.RouterGroup) {
	h := rt.handlers.Alert
	alerts := rg.Group("/alerts")
	alerts.Use(middleware.Authenticate(rt.users))
	{
		alerts.GET("", h.List)
		alerts.POST("", h.Create)
		alerts.PUT("/:id", h.Update)
		alerts.DELETE("/:id", h.Delete)
	}
}
