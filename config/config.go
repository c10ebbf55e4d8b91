package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

var Cfg Config

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type Config struct {
	// 服务配置
	ServerPort  string `env:"SERVER_PORT" envDefault:"8888"`
	ServerHost  string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // development, staging, production
	ServiceName string `env:"SERVICE_NAME" envDefault:"contacthub"`
	CORSOrigin  string `env:"CORS_ORIGIN" envDefault:"*"`

	// 存储驱动：postgres 或 memory（本地调试）
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"postgres"`

	// PostgreSQL 配置
	PostgreSQLHost     string        `env:"POSTGRESQL_HOST" envDefault:"localhost"`
	PostgreSQLPort     string        `env:"POSTGRESQL_PORT" envDefault:"5432"`
	PostgreSQLUser     string        `env:"POSTGRESQL_USER" envDefault:"postgres"`
	PostgreSQLPassword string        `env:"POSTGRESQL_PASSWORD" envDefault:"postgres"`
	PostgreSQLDatabase string        `env:"POSTGRESQL_DATABASE" envDefault:"contacthub"`
	PostgreSQLSchema   string        `env:"POSTGRESQL_SCHEMA" envDefault:"public"`
	PostgreSQLSSLMode  string        `env:"POSTGRESQL_SSLMODE" envDefault:"disable"`
	PostgreSQLMaxIdle  int           `env:"POSTGRESQL_MAX_IDLE" envDefault:"10"`
	PostgreSQLMaxOpen  int           `env:"POSTGRESQL_MAX_OPEN" envDefault:"10"`
	PostgreSQLReplicas []string      `env:"POSTGRESQL_REPLICAS" envSeparator:","` // 只读副本 host:port 列表
	DBQueryTimeout     time.Duration `env:"DB_QUERY_TIMEOUT" envDefault:"5s"`

	// Redis 配置
	RedisEnabled  bool   `env:"REDIS_ENABLED" envDefault:"false"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"chub"`

	// RabbitMQ 配置
	RabbitMQEnabled       bool   `env:"RABBITMQ_ENABLED" envDefault:"false"`
	RabbitMQAddr          string `env:"RABBITMQ_ADDR" envDefault:"localhost"`
	RabbitMQPort          string `env:"RABBITMQ_PORT" envDefault:"5672"`
	RabbitMQUsername      string `env:"RABBITMQ_USERNAME" envDefault:"guest"`
	RabbitMQPassword      string `env:"RABBITMQ_PASSWORD" envDefault:"guest"`
	RabbitMQVhost         string `env:"RABBITMQ_VHOST" envDefault:"/"`
	ContactEventsExchange string `env:"CONTACT_EVENTS_EXCHANGE" envDefault:"contacts.events"`

	// JWT 配置，与原系统一致：access 24h，refresh 7d
	JWTSecret        string `env:"JWT_SECRET"` // 必填，用于签名 JWT
	JWTExpireMinutes int    `env:"JWT_EXPIRE_MINUTES" envDefault:"1440"`
	JWTRefreshDays   int    `env:"JWT_REFRESH_DAYS" envDefault:"7"`

	// 密码哈希
	BcryptCost int `env:"BCRYPT_COST" envDefault:"10"`

	// Snowflake ID 生成器配置
	SnowflakeMachineID  int64 `env:"SNOWFLAKE_MACHINE_ID" envDefault:"1"`
	SnowflakeDataCenter int64 `env:"SNOWFLAKE_DATACENTER_ID" envDefault:"1"`

	// 日志配置
	LoggerLevel      string `env:"LOGGER_LEVEL" envDefault:"INFO"`
	LoggerFormat     string `env:"LOGGER_FORMAT" envDefault:"text"` // json, text
	LoggerOutputPath string `env:"LOGGER_OUTPUT_PATH" envDefault:"stdout"`

	// 链路追踪配置，endpoint 为空时不启用
	OTelEndpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTelSampleRatio float64 `env:"OTEL_SAMPLE_RATIO" envDefault:"0.1"`
	ServiceVersion  string  `env:"SERVICE_VERSION" envDefault:"dev"`

	// 速率限制配置（认证接口），默认 15 分钟 100 次
	RateLimitEnabled     bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitWindowSecs  int  `env:"RATE_LIMIT_WINDOW_SECONDS" envDefault:"900"`
	RateLimitMaxRequests int  `env:"RATE_LIMIT_MAX_REQUESTS" envDefault:"100"`
}

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("WARN: Cannot load .env file: %v, using environment variables", err)
	}

	Cfg = Config{}
	if err := env.Parse(&Cfg); err != nil {
		log.Fatalf("Failed to parse environment variables: %v", err)
	}
}

// Validate 在进程启动时调用；测试环境不会触发
func Validate() error {
	if Cfg.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	switch Cfg.StorageDriver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", Cfg.StorageDriver)
	}

	if Cfg.BcryptCost < 4 || Cfg.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31")
	}

	if Cfg.StorageDriver == StorageDriverMemory {
		log.Printf("WARN: STORAGE_DRIVER=memory, data will not survive restarts")
	}

	return nil
}

func (c *Config) GetDSN() string {
	return c.dsnFor(c.PostgreSQLHost, c.PostgreSQLPort)
}

// GetReplicaDSNs 将 host:port 形式的副本地址转换为 DSN
func (c *Config) GetReplicaDSNs() []string {
	dsns := make([]string, 0, len(c.PostgreSQLReplicas))
	for _, replica := range c.PostgreSQLReplicas {
		replica = strings.TrimSpace(replica)
		if replica == "" {
			continue
		}
		host, port, found := strings.Cut(replica, ":")
		if !found {
			port = c.PostgreSQLPort
		}
		dsns = append(dsns, c.dsnFor(host, port))
	}
	return dsns
}

func (c *Config) dsnFor(host, port string) string {
	return "host=" + host +
		" port=" + port +
		" user=" + c.PostgreSQLUser +
		" password=" + c.PostgreSQLPassword +
		" dbname=" + c.PostgreSQLDatabase +
		" sslmode=" + c.PostgreSQLSSLMode +
		" search_path=" + c.PostgreSQLSchema
}

func (c *Config) GetRabbitMQURL() string {
	return "amqp://" + c.RabbitMQUsername + ":" + c.RabbitMQPassword + "@" + c.RabbitMQAddr + ":" + c.RabbitMQPort + c.RabbitMQVhost
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
