package mq

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"ContactHub/config"
	"ContactHub/pkg/logger"
	pkgmq "ContactHub/pkg/mq"
)

type MessageHandler func(ctx context.Context, routingKey string, body []byte) error

type ConsumeOptions struct {
	Queue         string
	Exchange      string
	BindingKey    string
	ConsumerTag   string
	PrefetchCount int
	Handler       MessageHandler
}

// Consume 声明并绑定队列后阻塞消费，ctx 取消或连接断开时返回
func Consume(ctx context.Context, opts ConsumeOptions) error {
	c := Connection()
	if c == nil || c.IsClosed() {
		return ErrNotConnected
	}

	ch, err := c.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(opts.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if opts.Exchange != "" {
		if err := ch.QueueBind(opts.Queue, opts.BindingKey, opts.Exchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue: %w", err)
		}
	}

	if opts.PrefetchCount > 0 {
		if err := ch.Qos(opts.PrefetchCount, 0, false); err != nil {
			return fmt.Errorf("failed to set QoS: %w", err)
		}
	}

	msgs, err := ch.Consume(
		opts.Queue,
		opts.ConsumerTag,
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	logger.Logger.Info("Started consuming messages",
		zap.String("queue", opts.Queue),
		zap.String("consumer_tag", opts.ConsumerTag),
		zap.Int("prefetch_count", opts.PrefetchCount),
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return ErrNotConnected
			}
			handle(ctx, opts, msg)
		}
	}
}

func handle(ctx context.Context, opts ConsumeOptions, msg amqp.Delivery) {
	msgCtx, span := pkgmq.StartConsumeSpan(ctx, config.Cfg.ServiceName, msg)
	defer span.End()

	start := time.Now()
	err := opts.Handler(msgCtx, msg.RoutingKey, msg.Body)
	pkgmq.RecordConsume(msgCtx, msg.RoutingKey, err, time.Since(start))

	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		logger.Logger.Error("Failed to process message",
			zap.String("queue", opts.Queue),
			zap.String("routing_key", msg.RoutingKey),
			zap.String("message_id", msg.MessageId),
			zap.Error(err),
		)
		// 已重投过一次的直接丢弃，避免毒消息循环
		_ = msg.Nack(false, !msg.Redelivered)
		return
	}
	_ = msg.Ack(false)
}
