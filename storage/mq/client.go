package mq

import (
	"context"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"ContactHub/config"
	"ContactHub/pkg/logger"
)

var (
	conn   *amqp.Connection
	connMu sync.RWMutex
)

// Init 建立 RabbitMQ 连接并声明联系人事件交换机；RABBITMQ_ENABLED=false 时跳过
func Init() error {
	if !config.Cfg.RabbitMQEnabled {
		return nil
	}

	c, err := amqp.Dial(config.Cfg.GetRabbitMQURL())
	if err != nil {
		logger.Logger.Error("Failed to connect RabbitMQ",
			zap.String("addr", config.Cfg.RabbitMQAddr),
			zap.Error(err),
		)
		return err
	}

	ch, err := c.Channel()
	if err != nil {
		_ = c.Close()
		return err
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(
		config.Cfg.ContactEventsExchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		_ = c.Close()
		return err
	}

	connMu.Lock()
	conn = c
	connMu.Unlock()

	logger.Logger.Info("RabbitMQ initialized successfully",
		zap.String("exchange", config.Cfg.ContactEventsExchange),
	)
	return nil
}

// Connection 未启用时返回 nil
func Connection() *amqp.Connection {
	connMu.RLock()
	defer connMu.RUnlock()
	return conn
}

// Enabled 连接是否可用
func Enabled() bool {
	c := Connection()
	return c != nil && !c.IsClosed()
}

func Close(ctx context.Context) error {
	connMu.Lock()
	c := conn
	conn = nil
	connMu.Unlock()

	resetPublisher()

	if c == nil || c.IsClosed() {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- c.Close()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}
