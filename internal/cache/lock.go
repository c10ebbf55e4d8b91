package cache

import (
	"context"
	"time"

	"ContactHub/storage/redis"
)

// 消费端去重：RabbitMQ 至少投递一次，同一 messageId 只处理一次
const (
	seenPrefix = "seen"
)

// MarkSeen 用 SetNX 标记消息已处理，首次标记返回 true；Redis 未启用时总是返回 true
func MarkSeen(ctx context.Context, scope, messageID string, ttl time.Duration) (bool, error) {
	client := redis.Client()
	if client == nil || messageID == "" {
		return true, nil
	}
	return client.SetNX(ctx, redis.Key(seenPrefix, scope, messageID), 1, ttl).Result()
}
