package handler

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"go.uber.org/zap"

	"ContactHub/config"
	pkgerrors "ContactHub/pkg/errors"
	"ContactHub/pkg/logger"
	"ContactHub/pkg/response"
	"ContactHub/storage/database"
)

type healthStatus struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Storage string `json:"storage"`
}

// Health 存活检查；使用 PostgreSQL 时顺带 ping 主库
// GET /healthz
func Health(ctx context.Context, c *app.RequestContext) {
	if db := database.DB(); db != nil {
		sqlDB, err := db.DB()
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			err = sqlDB.PingContext(pingCtx)
			cancel()
		}
		if err != nil {
			logger.WithContext(ctx).Warn("Health check failed", zap.Error(err))
			response.Error(ctx, c, pkgerrors.StorageUnavailable)
			return
		}
	}

	response.Success(ctx, c, healthStatus{
		Status:  "ok",
		Service: config.Cfg.ServiceName,
		Storage: config.Cfg.StorageDriver,
	})
}
