package queue

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ContactHub/config"
	"ContactHub/internal/model"
	"ContactHub/pkg/logger"
	"ContactHub/pkg/snowflake"
	"ContactHub/storage/mq"
)

// EventPublisher 服务层依赖的发布接口
type EventPublisher interface {
	Publish(ctx context.Context, event model.ContactEvent) error
}

// MQPublisher 发布到 RabbitMQ topic 交换机
type MQPublisher struct {
	exchange string
}

func NewMQPublisher(exchange string) *MQPublisher {
	return &MQPublisher{exchange: exchange}
}

// Publish 补齐消息ID与时间后发布
func (p *MQPublisher) Publish(ctx context.Context, event model.ContactEvent) error {
	if event.MessageID == "" {
		id, err := snowflake.NextID()
		if err != nil {
			return fmt.Errorf("failed to generate message ID: %w", err)
		}
		event.MessageID = fmt.Sprintf("ce_%d", id)
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	if err := mq.PublishMessage(ctx, p.exchange, string(event.Type), event.MessageID, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish contact event",
			zap.String("type", string(event.Type)),
			zap.Int64("contact_id", event.ContactID),
			zap.Error(err),
		)
		return err
	}

	logger.WithContext(ctx).Debug("Published contact event",
		zap.String("message_id", event.MessageID),
		zap.String("type", string(event.Type)),
		zap.Int64("contact_id", event.ContactID),
	)
	return nil
}

// NoopPublisher RabbitMQ 未启用时使用
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, model.ContactEvent) error { return nil }

// NewPublisher 根据连接状态选择实现
func NewPublisher() EventPublisher {
	if mq.Enabled() {
		return NewMQPublisher(config.Cfg.ContactEventsExchange)
	}
	return NoopPublisher{}
}
