package storage

import (
	"ContactHub/config"
	"ContactHub/storage/database"
	"ContactHub/storage/mq"
	"ContactHub/storage/redis"
)

// Init 统一初始化存储层；memory 驱动不连接数据库，Redis 与 MQ 由各自开关控制
func Init() error {
	if config.Cfg.StorageDriver == config.StorageDriverPostgres {
		if err := database.Init(); err != nil {
			return err
		}
	}

	if err := redis.Init(); err != nil {
		return err
	}

	return mq.Init()
}
