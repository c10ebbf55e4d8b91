package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ContactHub/config"
	"ContactHub/internal/cache"
	"ContactHub/internal/model"
	"ContactHub/pkg/logger"
	"ContactHub/storage/mq"
)

const (
	auditQueue      = "contacts.audit"
	auditBindingKey = "contact.*"
	auditDedupTTL   = 24 * time.Hour
)

// AuditLog 把联系人事件写入结构化日志，作为变更审计
func AuditLog(ctx context.Context, routingKey string, body []byte) error {
	var event model.ContactEvent
	if err := json.Unmarshal(body, &event); err != nil {
		// 格式错误的消息重投也无法处理
		logger.WithContext(ctx).Warn("Dropping malformed contact event",
			zap.String("routing_key", routingKey),
			zap.Error(err),
		)
		return nil
	}
	if event.Type == "" {
		return fmt.Errorf("contact event %s has no type", event.MessageID)
	}

	first, err := cache.MarkSeen(ctx, "audit", event.MessageID, auditDedupTTL)
	if err != nil {
		// 去重失败时宁可重复记录
		logger.WithContext(ctx).Warn("Failed to check audit dedup", zap.Error(err))
	} else if !first {
		logger.WithContext(ctx).Debug("Skipping duplicate contact event", zap.String("message_id", event.MessageID))
		return nil
	}

	fields := []zap.Field{
		zap.String("message_id", event.MessageID),
		zap.String("type", string(event.Type)),
		zap.Int64("contact_id", event.ContactID),
		zap.String("actor_id", event.ActorID),
		zap.Time("occurred_at", event.OccurredAt),
	}
	if event.Contact != nil {
		fields = append(fields, zap.String("email", event.Contact.Email))
	}
	logger.WithContext(ctx).Info("Contact audit", fields...)
	return nil
}

// StartAuditConsumer 阻塞消费直到 ctx 结束；连接中断时每 5 秒重连
func StartAuditConsumer(ctx context.Context) {
	opts := mq.ConsumeOptions{
		Queue:         auditQueue,
		Exchange:      config.Cfg.ContactEventsExchange,
		BindingKey:    auditBindingKey,
		ConsumerTag:   config.Cfg.ServiceName + "-audit",
		PrefetchCount: 20,
		Handler:       AuditLog,
	}

	for {
		err := mq.Consume(ctx, opts)
		if ctx.Err() != nil {
			return
		}
		if err != nil && !errors.Is(err, mq.ErrNotConnected) {
			logger.Logger.Error("Audit consumer stopped", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}

		if !mq.Enabled() {
			if err := mq.Init(); err != nil {
				logger.Logger.Warn("RabbitMQ reconnect failed", zap.Error(err))
			}
		}
	}
}
