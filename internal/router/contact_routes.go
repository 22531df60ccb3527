package router

import (
	"github.com/gin-gonic/gin"

	"vedzeb_server/internal/infrastructure/middleware"
)

// RegisterContactRoutes 联系请求路由，全部需要登录
func (rt *Router) RegisterContactRoutes(rg *gin.RouterGroup) {
	h := rt.handlers.Contact
	contact := rg.Group("/contact-requests")
	contact.Use(middleware.Authenticate(rt.users))
	{
		contact.POST("", h.Create)
		contact.GET("", h.List)
		contact.PUT("/:id", h.UpdateStatus)
		contact.DELETE("/:id", h.Delete)
		contact.GET("/:id/messages", h.Conversation)
		contact.POST("/:id/messages", h.SendMessage)
	}
}
