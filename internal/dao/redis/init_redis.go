package redis

import (
	"context"
	"strconv"
	"time"

	"vedzeb_server/internal/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Init 根据配置创建 Redis 客户端并返回缓存实例
// 连接失败不会阻止启动：限流器会放行，统计缓存会回源
func Init() *RedisCache {
	conf := config.GetConfig()
	addr := conf.RedisConfig.Host + ":" + strconv.Itoa(conf.RedisConfig.Port)

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     conf.RedisConfig.Password, // 无密码留空
		DB:           conf.RedisConfig.Db,
		PoolSize:     50,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		zap.L().Warn("redis unreachable, continuing without it", zap.String("addr", addr), zap.Error(err))
	}

	// 5 个 Worker，缓冲区 500，只承载缓存失效这类轻量任务
	return NewRedisCache(client, 5, 500)
}
