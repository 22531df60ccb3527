package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"vedzeb_server/internal/config"
	dao "vedzeb_server/internal/dao/mysql"
	myredis "vedzeb_server/internal/dao/redis"
	"vedzeb_server/internal/gateway/websocket"
	"vedzeb_server/internal/handler"
	"vedzeb_server/internal/https_server"
	"vedzeb_server/internal/infrastructure/logger"
	"vedzeb_server/internal/infrastructure/mq"
	"vedzeb_server/internal/infrastructure/sms"
	"vedzeb_server/internal/infrastructure/storage"
	"vedzeb_server/internal/router"
	"vedzeb_server/internal/service"
	"vedzeb_server/pkg/util/jwt"
)

func main() {
	// 1. 加载配置
	conf := config.GetConfig()

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, conf.MainConfig.Mode); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer zap.L().Sync() //nolint:errcheck
	if err := handler.InitTrans(); err != nil {
		zap.L().Fatal("init validator translations failed", zap.Error(err))
	}

	if conf.JWTConfig.Secret == "" {
		zap.L().Fatal("jwt secret is not configured, set VEDZEB_JWT_SECRET")
	}
	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.AccessTokenExpiry, conf.JWTConfig.RefreshTokenExpiry, conf.JWTConfig.AdminTokenExpiry)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. 初始化数据库（含自动迁移和根管理员）
	repos, err := dao.Init()
	if err != nil {
		zap.L().Fatal("init mysql failed", zap.Error(err))
	}
	zap.L().Info("mysql ready")

	// 4. 初始化 Redis，不可用时限流放行、统计不缓存
	cache := myredis.Init()
	defer cache.Close()

	// 5. 外部服务
	smsSvc, err := sms.Init(conf.AuthCodeConfig)
	if err != nil {
		zap.L().Fatal("init sms failed", zap.Error(err))
	}
	store, err := storage.Init(ctx, conf.StorageConfig)
	if err != nil {
		zap.L().Fatal("init image storage failed", zap.Error(err))
	}

	// 6. 实时推送：Hub 负责连接，发布者按 messageMode 选择 channel / kafka
	hub := websocket.NewHub()
	go hub.Run(ctx)
	publisher := mq.Init(ctx, conf.KafkaConfig, hub)
	defer publisher.Close()

	// 7. Service 层 (依赖注入)
	svc := service.NewServices(service.Deps{
		Repos:     repos,
		Sms:       smsSvc,
		Store:     store,
		Publisher: publisher,
		Cache:     cache,
	}, conf)
	if _, err := svc.Auth.CleanupExpired(ctx); err != nil {
		zap.L().Warn("cleanup expired refresh tokens failed", zap.Error(err))
	}

	// 8. Handler、路由与 HTTP 服务器
	handlers := handler.NewHandlers(svc, handler.RealtimeDeps{
		Hub:      hub,
		Upgrader: websocket.NewUpgrader(conf.MainConfig.AllowOrigin),
		Users:    repos.User,
	}, conf.StorageConfig.MaxFileSize)
	rt := router.NewRouter(handlers, repos.User, cache, conf.RateLimitConfig)
	engine := https_server.Init(conf, rt)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zap.L().Info("server listening", zap.String("addr", srv.Addr), zap.String("mode", conf.MainConfig.Mode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Error("server stopped unexpectedly", zap.Error(err))
			stop()
		}
	}()

	// 等待信号
	<-ctx.Done()
	zap.L().Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("server shutdown failed", zap.Error(err))
	}
	zap.L().Info("server exited")
}
