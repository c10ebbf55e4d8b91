package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"ContactHub/config"
	"ContactHub/internal/queue"
	"ContactHub/pkg/logger"
	"ContactHub/storage/mq"
	"ContactHub/storage/redis"
)

// worker 消费联系人事件并写审计日志，只依赖 RabbitMQ
func main() {
	logger.Init()
	defer logger.Sync()

	if !config.Cfg.RabbitMQEnabled {
		logger.Logger.Fatal("Worker requires RABBITMQ_ENABLED=true")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Logger.Info("Received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	// Redis 可选，用于消息去重
	if err := redis.Init(); err != nil {
		logger.Logger.Warn("Redis unavailable, audit dedup disabled", zap.Error(err))
	}
	defer func() {
		if err := redis.Close(context.Background()); err != nil {
			logger.Logger.Error("Failed to close Redis", zap.Error(err))
		}
	}()

	if err := mq.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize RabbitMQ", zap.Error(err))
	}
	defer func() {
		if err := mq.Close(context.Background()); err != nil {
			logger.Logger.Error("Failed to close RabbitMQ", zap.Error(err))
		}
	}()

	logger.Logger.Info("Worker service starting",
		zap.String("service", config.Cfg.ServiceName+"-worker"),
		zap.String("environment", config.Cfg.Environment),
	)

	queue.StartAuditConsumer(ctx)

	logger.Logger.Info("Worker service shutting down gracefully")
}
