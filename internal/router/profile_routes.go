package router

import (
	"github.com/gin-gonic/gin"

	"vedzeb_server/internal/infrastructure/middleware"
)

// RegisterProfileRoutes 档案路由，搜索和详情允许匿名访问
func (rt *Router) RegisterProfileRoutes(rg *gin.RouterGroup) {
	h := rt.handlers.Profile
	authed := middleware.Authenticate(rt.users)
	optional := middleware.OptionalAuth(rt.users)

	profiles := rg.Group("/profiles")
	{
		profiles.GET("", optional, h.Search)
		profiles.GET("/my", authed, h.Mine)
		profiles.GET("/:id", optional, h.Get)
		profiles.POST("", authed, h.Create)
		profiles.PUT("/:id", authed, h.Update)
		profiles.DELETE("/:id", authed, h.Delete)
		profiles.POST("/:id/photos", authed, h.UploadPhoto)
		profiles.DELETE("/:id/photos/:photoId", authed, h.DeletePhoto)
		profiles.PUT("/:id/photos/:photoId/primary", authed, h.SetPrimaryPhoto)
	}
}
