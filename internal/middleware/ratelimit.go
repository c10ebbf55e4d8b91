package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"ContactHub/config"
	"ContactHub/pkg/errors"
	"ContactHub/pkg/logger"
	"ContactHub/pkg/response"
	"ContactHub/storage/redis"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	// 时间窗口（秒）
	Window int
	// 时间窗口内最大请求数
	MaxRequests int
	// 限流键前缀
	KeyPrefix string
	// 是否按用户ID限流（需要认证）
	ByUserID bool
}

// AuthRateLimitConfig 认证接口按 IP 限流，窗口与上限来自 RATE_LIMIT_* 配置
func AuthRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Window:      config.Cfg.RateLimitWindowSecs,
		MaxRequests: config.Cfg.RateLimitMaxRequests,
		KeyPrefix:   "ratelimit:auth",
	}
}

// RateLimiter 基于 zset 的滑动窗口限流器
type RateLimiter struct {
	config RateLimitConfig
	now    func() time.Time
}

func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		config: config,
		now:    time.Now,
	}
}

// getKey 生成限流键
func (rl *RateLimiter) getKey(ctx context.Context, c *app.RequestContext) string {
	if rl.config.ByUserID {
		if userID, exists := GetUserID(ctx, c); exists {
			return redis.Key(rl.config.KeyPrefix, "user", userID)
		}
	}
	return redis.Key(rl.config.KeyPrefix, "ip", c.ClientIP())
}

// Allow 记录本次请求并返回窗口内的请求数
func (rl *RateLimiter) Allow(ctx context.Context, client *redislib.Client, key string) (bool, int, error) {
	now := rl.now()
	windowStart := now.Add(-time.Duration(rl.config.Window) * time.Second)

	pipe := client.TxPipeline()

	// 先清掉窗口之外的记录
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart.UnixNano(), 10))

	// member 用 uuid，同一纳秒内的并发请求不会互相覆盖
	pipe.ZAdd(ctx, key, redislib.Z{
		Score:  float64(now.UnixNano()),
		Member: uuid.NewString(),
	})

	zcardCmd := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, time.Duration(rl.config.Window+10)*time.Second)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("failed to execute pipeline: %w", err)
	}

	count := int(zcardCmd.Val())
	return count <= rl.config.MaxRequests, count, nil
}

// RateLimitMiddleware 创建限流中间件；Redis 未启用时直接放行
func RateLimitMiddleware(cfg RateLimitConfig) app.HandlerFunc {
	limiter := NewRateLimiter(cfg)

	return func(ctx context.Context, c *app.RequestContext) {
		client := redis.Client()
		if client == nil || !config.Cfg.RateLimitEnabled {
			c.Next(ctx)
			return
		}

		allowed, count, err := limiter.Allow(ctx, client, limiter.getKey(ctx, c))
		if err != nil {
			// Redis 故障时放行
			logger.WithContext(ctx).Warn("Failed to check rate limit", zap.Error(err))
			c.Next(ctx)
			return
		}

		remaining := cfg.MaxRequests - count
		if remaining < 0 {
			remaining = 0
		}
		c.Response.Header.Set("X-RateLimit-Limit", strconv.Itoa(cfg.MaxRequests))
		c.Response.Header.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Response.Header.Set("X-RateLimit-Reset", strconv.FormatInt(limiter.now().Add(time.Duration(cfg.Window)*time.Second).Unix(), 10))

		if !allowed {
			c.Abort()
			response.Error(ctx, c, errors.TooManyRequests)
			return
		}

		c.Next(ctx)
	}
}

// AuthRateLimitMiddleware 认证相关限流（登录、注册、刷新令牌）
func AuthRateLimitMiddleware() app.HandlerFunc {
	return RateLimitMiddleware(AuthRateLimitConfig())
}
