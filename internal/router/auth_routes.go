package router

import (
	"github.com/gin-gonic/gin"

	"vedzeb_server/internal/infrastructure/middleware"
)

// RegisterAuthRoutes 认证路由，发送和校验验证码额外限流
func (rt *Router) RegisterAuthRoutes(rg *gin.RouterGroup) {
	h := rt.handlers.Auth
	auth := rg.Group("/auth")
	{
		auth.POST("/send-code", rt.limit("send-code", rt.limits.SendCodeLimit, rt.limits.SendCodeWindow), h.SendCode)
		auth.POST("/verify-code", rt.limit("verify-code", rt.limits.VerifyCodeLimit, rt.limits.VerifyCodeWindow), h.VerifyCode)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/logout", middleware.OptionalAuth(rt.users), h.Logout)
		auth.GET("/me", middleware.Authenticate(rt.users), h.Me)
	}
}
