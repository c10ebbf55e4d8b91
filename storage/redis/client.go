package redis

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"ContactHub/config"
	"ContactHub/pkg/logger"
	pkgredis "ContactHub/pkg/redis"
)

var (
	client *redis.Client
	mu     sync.RWMutex
	once   sync.Once
	err    error
)

// Init 建立 Redis 连接；REDIS_ENABLED=false 时什么都不做
func Init() error {
	if !config.Cfg.RedisEnabled {
		return nil
	}

	once.Do(func() {
		cfg := config.Cfg

		c := redis.NewClient(&redis.Options{
			Addr:         cfg.RedisAddr,
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			MinIdleConns: 5,
			MaxRetries:   3,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err = c.Ping(ctx).Err(); err != nil {
			logger.Logger.Error("Failed to ping redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
			return
		}

		if cfg.OTelEndpoint != "" {
			if hookErr := pkgredis.InstrumentClient(c, cfg.ServiceName); hookErr != nil {
				logger.Logger.Warn("Failed to instrument redis", zap.Error(hookErr))
			}
		}

		SetClient(c)
		logger.Logger.Info("Redis initialized successfully", zap.String("addr", cfg.RedisAddr))
	})

	return err
}

// SetClient 替换当前客户端，测试里用 miniredis 注入
func SetClient(c *redis.Client) {
	mu.Lock()
	client = c
	mu.Unlock()
}

// Enabled 是否有可用的 Redis 客户端
func Enabled() bool {
	return Client() != nil
}

// Client 未初始化时返回 nil，调用方据此降级
func Client() *redis.Client {
	mu.RLock()
	defer mu.RUnlock()
	return client
}

func Close(ctx context.Context) error {
	c := Client()
	if c == nil {
		return nil
	}
	SetClient(nil)
	return c.Close()
}

// Key 拼接带前缀的键名，空段会被跳过
func Key(parts ...string) string {
	prefix := config.Cfg.RedisPrefix
	if prefix == "" {
		prefix = "chub"
	}

	var sb strings.Builder
	sb.WriteString(prefix)
	for _, part := range parts {
		if part != "" {
			sb.WriteString(":")
			sb.WriteString(part)
		}
	}

	return sb.String()
}
