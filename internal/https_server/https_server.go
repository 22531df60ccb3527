// Package https_server 负责创建 Gin 引擎并配置中间件、静态资源和路由
package https_server

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"vedzeb_server/internal/config"
	"vedzeb_server/internal/infrastructure/logger"
	"vedzeb_server/internal/infrastructure/middleware"
	"vedzeb_server/internal/router"
)

// Init 初始化 Gin 引擎
// 配置顺序：日志与恢复、安全响应头、CORS、本地图片目录、业务路由
func Init(cfg *config.Config, rt *router.Router) *gin.Engine {
	if cfg.MainConfig.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	// 不使用 gin.Default() 以便完全控制中间件
	engine := gin.New()
	engine.Use(logger.GinLogger())
	engine.Use(logger.GinRecovery(true))
	engine.Use(middleware.SecureHeaders(cfg.MainConfig.ForceTLS, cfg.MainConfig.Mode != "release"))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.MainConfig.AllowOrigin
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.ExposeHeaders = []string{"RateLimit-Limit", "RateLimit-Remaining", "Retry-After"}
	corsConfig.MaxAge = 12 * time.Hour
	engine.Use(cors.New(corsConfig))

	// local 模式下由本服务提供上传的图片
	sc := cfg.StorageConfig
	if sc.Mode == "local" && strings.HasPrefix(sc.PublicBaseURL, "/") {
		engine.Static(strings.TrimSuffix(sc.PublicBaseURL, "/"), sc.LocalPath)
	}

	rt.RegisterRoutes(engine)
	return engine
}
