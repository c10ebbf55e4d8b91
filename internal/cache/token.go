package cache

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"ContactHub/storage/redis"
)

const tokenPrefix = "refresh_token"

// TokenRegistry 登记已签发的 refresh token（按 jti），刷新时一次性消费，登出时整体吊销
type TokenRegistry interface {
	Register(ctx context.Context, userID, jti string, expiresAt time.Time) error
	// Consume 删除并返回该 jti 是否仍然有效
	Consume(ctx context.Context, userID, jti string) (bool, error)
	RevokeAll(ctx context.Context, userID string) error
}

// RedisTokenRegistry 每个用户一个 hash：field 为 jti，value 为过期时间戳
// Key: chub:refresh_token:{user_id}
type RedisTokenRegistry struct{}

func NewRedisTokenRegistry() *RedisTokenRegistry {
	return &RedisTokenRegistry{}
}

func (RedisTokenRegistry) Register(ctx context.Context, userID, jti string, expiresAt time.Time) error {
	key := redis.Key(tokenPrefix, userID)

	pipe := redis.Client().TxPipeline()
	pipe.HSet(ctx, key, jti, strconv.FormatInt(expiresAt.Unix(), 10))
	// 令牌有效期相同，最后签发的最晚过期，hash 跟随它
	pipe.Expire(ctx, key, time.Until(expiresAt))
	_, err := pipe.Exec(ctx)
	return err
}

func (RedisTokenRegistry) Consume(ctx context.Context, userID, jti string) (bool, error) {
	key := redis.Key(tokenPrefix, userID)

	pipe := redis.Client().TxPipeline()
	get := pipe.HGet(ctx, key, jti)
	pipe.HDel(ctx, key, jti)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, goredis.Nil) {
		return false, err
	}

	exp, err := get.Int64()
	if err != nil {
		return false, nil
	}
	return time.Now().Unix() < exp, nil
}

func (RedisTokenRegistry) RevokeAll(ctx context.Context, userID string) error {
	return redis.Client().Del(ctx, redis.Key(tokenPrefix, userID)).Err()
}

// MemoryTokenRegistry 未启用 Redis 时使用，仅对单实例有效
type MemoryTokenRegistry struct {
	mu     sync.Mutex
	tokens map[string]map[string]time.Time
}

func NewMemoryTokenRegistry() *MemoryTokenRegistry {
	return &MemoryTokenRegistry{tokens: make(map[string]map[string]time.Time)}
}

func (m *MemoryTokenRegistry) Register(_ context.Context, userID, jti string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	byID, ok := m.tokens[userID]
	if !ok {
		byID = make(map[string]time.Time)
		m.tokens[userID] = byID
	}
	now := time.Now()
	for id, exp := range byID {
		if !now.Before(exp) {
			delete(byID, id)
		}
	}
	byID[jti] = expiresAt
	return nil
}

func (m *MemoryTokenRegistry) Consume(_ context.Context, userID, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	exp, ok := m.tokens[userID][jti]
	if !ok {
		return false, nil
	}
	delete(m.tokens[userID], jti)
	return time.Now().Before(exp), nil
}

func (m *MemoryTokenRegistry) RevokeAll(_ context.Context, userID string) error {
	m.mu.Lock()
	delete(m.tokens, userID)
	m.mu.Unlock()
	return nil
}

// NewTokenRegistry Redis 可用时走 Redis，否则退回进程内实现
func NewTokenRegistry() TokenRegistry {
	if redis.Enabled() {
		return NewRedisTokenRegistry()
	}
	return NewMemoryTokenRegistry()
}

var (
	_ TokenRegistry = (*RedisTokenRegistry)(nil)
	_ TokenRegistry = (*MemoryTokenRegistry)(nil)
)
