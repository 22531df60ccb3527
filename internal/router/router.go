// Package router 提供 HTTP 路由注册
// 本文件是路由注册的入口，聚合所有子模块的路由
package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"vedzeb_server/internal/config"
	myredis "vedzeb_server/internal/dao/redis"
	"vedzeb_server/internal/handler"
	"vedzeb_server/internal/infrastructure/envelope"
	"vedzeb_server/internal/infrastructure/middleware"
)

// Router 持有 Handler 聚合和路由级中间件所需的依赖
type Router struct {
	handlers *handler.Handlers
	users    middleware.UserFinder
	limiter  myredis.RateLimiter // 可为 nil
	limits   config.RateLimitConfig
}

// NewRouter 创建路由管理器
func NewRouter(handlers *handler.Handlers, users middleware.UserFinder, limiter myredis.RateLimiter, limits config.RateLimitConfig) *Router {
	if !limits.Enabled {
		limiter = nil
	}
	return &Router{handlers: handlers, users: users, limiter: limiter, limits: limits}
}

// limit 按配置生成一个命名限流中间件
func (rt *Router) limit(name string, n, windowSeconds int) gin.HandlerFunc {
	return middleware.RateLimit(rt.limiter, name, n, time.Duration(windowSeconds)*time.Second)
}

// RegisterRoutes 注册所有路由
func (rt *Router) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
	rt.RegisterWebSocketRoutes(r)

	api := r.Group("/api")
	api.Use(rt.limit("general", rt.limits.GeneralLimit, rt.limits.GeneralWindow))

	rt.RegisterAuthRoutes(api)    // 短信验证码登录
	rt.RegisterProfileRoutes(api) // 档案与照片
	rt.RegisterContactRoutes(api) // 联系请求与会话
	rt.RegisterAlertRoutes(api)   // 搜索提醒
	rt.RegisterAdminRoutes(api)   // 后台

	r.NoRoute(func(c *gin.Context) {
		envelope.AbortWith(c, http.StatusNotFound, envelope.ErrorBody{Error: "Not found"})
	})
}
