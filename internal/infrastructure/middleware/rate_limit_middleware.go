package middleware

import (
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	myredis "vedzeb_server/internal/dao/redis"
	"vedzeb_server/pkg/errorx"
)

// 各限流器被拒绝时的提示，未列出的使用 errorx.ErrTooManyRequests
var limitMessages = map[string]string{
	"send-code":   "Too many code requests, please wait a minute",
	"verify-code": "Too many verification attempts, please try again later",
	"admin-login": "Too many login attempts, please try again later",
}

// RateLimit 按客户端 IP 的滑动窗口限流
// limiter 为 nil 或 Redis 不可用时放行
func RateLimit(limiter myredis.RateLimiter, name string, limit int, window time.Duration) gin.HandlerFunc {
	rejected := errorx.ErrTooManyRequests
	if msg, ok := limitMessages[name]; ok {
		rejected = errorx.New(errorx.CodeTooManyRequests, msg)
	}

	return func(c *gin.Context) {
		if limiter == nil || limit <= 0 {
			c.Next()
			return
		}
		key := "rl:" + name + ":" + c.ClientIP()
		res, err := limiter.Allow(c.Request.Context(), key, limit, window)
		if err != nil {
			zap.L().Warn("rate limiter unavailable, allowing request", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		c.Header("RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("RateLimit-Remaining", strconv.Itoa(res.Remaining))
		if !res.Allowed {
			secs := int(math.Ceil(res.RetryAfter.Seconds()))
			if secs < 1 {
				secs = 1
			}
			c.Header("Retry-After", strconv.Itoa(secs))
			abort(c, rejected)
			return
		}
		c.Next()
	}
}
