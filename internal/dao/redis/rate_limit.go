package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"vedzeb_server/pkg/errorx"
)

// Allow 基于有序集合的滑动窗口：score 为请求时间（纳秒）
// 先清理窗口外的记录并写入本次请求，再计数；超限时撤回本次写入
func (r *RedisCache) Allow(ctx context.Context, key string, limit int, window time.Duration) (RateLimitResult, error) {
	now := time.Now()
	member := strconv.FormatInt(now.UnixNano(), 10) + "-" + uuid.NewString()[:8]
	minScore := strconv.FormatInt(now.Add(-window).UnixNano(), 10)

	pipe := r.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", "("+minScore)
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixNano()), Member: member})
	card := pipe.ZCard(ctx, key)
	pipe.PExpire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return RateLimitResult{Allowed: true, Limit: limit, Remaining: limit},
			errorx.Wrapf(err, errorx.CodeCacheError, "rate limit %s", key)
	}

	count := int(card.Val())
	if count <= limit {
		return RateLimitResult{Allowed: true, Limit: limit, Remaining: limit - count}, nil
	}

	// 超限：本次不计入窗口
	r.client.ZRem(ctx, key, member)
	res := RateLimitResult{Allowed: false, Limit: limit, RetryAfter: window}
	oldest, err := r.client.ZRangeWithScores(ctx, key, 0, 0).Result()
	if err == nil && len(oldest) == 1 {
		expireAt := time.Unix(0, int64(oldest[0].Score)).Add(window)
		if d := expireAt.Sub(now); d > 0 {
			res.RetryAfter = d
		}
	}
	return res, nil
}
