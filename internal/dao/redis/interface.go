// Package redis 定义缓存与限流接口
// 遵循依赖倒置原则，Service 层和中间件依赖此接口而非具体 Redis 实现
package redis

import (
	"context"
	"time"
)

// CacheService 缓存服务接口
type CacheService interface {
	// Set 设置键值对并指定过期时间
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	// Get 获取键对应的值（键不存在返回空字符串和 nil）
	Get(ctx context.Context, key string) (string, error)
	// Delete 删除键（如果存在）
	Delete(ctx context.Context, key string) error
}

// AsyncCacheService 异步缓存服务接口
// 提供异步任务提交能力，用于非阻塞缓存失效
type AsyncCacheService interface {
	CacheService
	// SubmitTask 提交异步缓存任务
	SubmitTask(action func())
}

// RateLimitResult 一次限流判定的结果
type RateLimitResult struct {
	Allowed   bool
	Limit     int
	Remaining int
	// RetryAfter 被拒绝时距离窗口内最早一次请求过期的时间
	RetryAfter time.Duration
}

// RateLimiter 滑动窗口限流接口
type RateLimiter interface {
	// Allow 在 key 对应的窗口内记录一次请求并判断是否超限
	Allow(ctx context.Context, key string, limit int, window time.Duration) (RateLimitResult, error)
}
