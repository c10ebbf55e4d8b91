package database

import (
	"ContactHub/internal/model"
	"ContactHub/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// contactIndexes 列表查询用到的表达式索引，AutoMigrate 无法从结构体标签生成
var contactIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_contacts_tags ON contacts USING GIN (tags jsonb_path_ops)`,
	`CREATE INDEX IF NOT EXISTS idx_contacts_address_city ON contacts ((address->>'city'))`,
}

// Migrate 运行数据库迁移，创建 users 与 contacts 表
func Migrate() error {
	db := DB()
	if db == nil {
		return gorm.ErrInvalidDB
	}

	logger.Logger.Info("Starting database migration...")

	if err := db.AutoMigrate(
		&model.User{},
		&model.Contact{},
	); err != nil {
		logger.Logger.Error("Database migration failed", zap.Error(err))
		return err
	}

	for _, stmt := range contactIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			logger.Logger.Error("Failed to create index", zap.String("sql", stmt), zap.Error(err))
			return err
		}
	}

	logger.Logger.Info("Database migration completed successfully")
	return nil
}
