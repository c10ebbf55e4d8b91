package database

import (
	"context"
	"regexp"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

var (
	// 数据库相关指标
	dbQueriesTotal  metric.Int64Counter
	dbQueryDuration metric.Float64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// InitDatabaseMetrics 初始化数据库指标，重复调用只生效一次
func InitDatabaseMetrics(meter metric.Meter) error {
	metricsOnce.Do(func() {
		dbQueriesTotal, metricsErr = meter.Int64Counter(
			"db.queries.total",
			metric.WithDescription("Total number of database queries"),
			metric.WithUnit("{query}"),
		)
		if metricsErr != nil {
			return
		}

		dbQueryDuration, metricsErr = meter.Float64Histogram(
			"db.query.duration",
			metric.WithDescription("Database query duration"),
			metric.WithUnit("s"),
			metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
		)
	})
	return metricsErr
}

// OTELPlugin GORM OpenTelemetry 插件
type OTELPlugin struct {
	tracer trace.Tracer
	config PluginConfig
}

// PluginConfig 插件配置
type PluginConfig struct {
	ServiceName     string
	EnableSQLParams bool
	EnableMetrics   bool
	MaxSQLLength    int
}

// DefaultPluginConfig 默认插件配置
func DefaultPluginConfig() PluginConfig {
	return PluginConfig{
		ServiceName:     "contacthub",
		EnableSQLParams: false, // 默认不记录 SQL 参数，避免敏感信息泄露
		EnableMetrics:   true,
		MaxSQLLength:    500, // 最大 SQL 长度
	}
}

// NewOTELPlugin 创建插件实例
func NewOTELPlugin(config PluginConfig) *OTELPlugin {
	if config.ServiceName == "" {
		config.ServiceName = "contacthub"
	}

	return &OTELPlugin{
		tracer: otel.Tracer(config.ServiceName + ".gorm"),
		config: config,
	}
}

// Name 实现 gorm.Plugin 接口
func (p *OTELPlugin) Name() string {
	return "otel_plugin"
}

// Initialize 注册回调，span 名在注册时确定，开始时 SQL 尚未生成
func (p *OTELPlugin) Initialize(db *gorm.DB) error {
	callbacks := db.Callback()

	if err := callbacks.Query().Before("gorm:query").Register("otel:before_query", p.before("db.select")); err != nil {
		return err
	}
	if err := callbacks.Query().After("gorm:query").Register("otel:after_query", p.afterCallback); err != nil {
		return err
	}

	if err := callbacks.Create().Before("gorm:create").Register("otel:before_create", p.before("db.insert")); err != nil {
		return err
	}
	if err := callbacks.Create().After("gorm:create").Register("otel:after_create", p.afterCallback); err != nil {
		return err
	}

	if err := callbacks.Update().Before("gorm:update").Register("otel:before_update", p.before("db.update")); err != nil {
		return err
	}
	if err := callbacks.Update().After("gorm:update").Register("otel:after_update", p.afterCallback); err != nil {
		return err
	}

	if err := callbacks.Delete().Before("gorm:delete").Register("otel:before_delete", p.before("db.delete")); err != nil {
		return err
	}
	if err := callbacks.Delete().After("gorm:delete").Register("otel:after_delete", p.afterCallback); err != nil {
		return err
	}

	// Count 走 Row
	if err := callbacks.Row().Before("gorm:row").Register("otel:before_row", p.before("db.select")); err != nil {
		return err
	}
	if err := callbacks.Row().After("gorm:row").Register("otel:after_row", p.afterCallback); err != nil {
		return err
	}

	if err := callbacks.Raw().Before("gorm:raw").Register("otel:before_raw", p.before("db.query")); err != nil {
		return err
	}
	return callbacks.Raw().After("gorm:raw").Register("otel:after_raw", p.afterCallback)
}

// before 操作前回调：开启 span 并记录开始时间
func (p *OTELPlugin) before(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx, span := p.tracer.Start(db.Statement.Context, operation,
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(p.baseAttributes(db)...),
		)

		db.InstanceSet("otel:operation", operation)
		db.InstanceSet("otel:start_time", time.Now())
		db.InstanceSet("otel:span", span)
		db.Statement.Context = ctx
	}
}

// afterCallback 操作后回调
func (p *OTELPlugin) afterCallback(db *gorm.DB) {
	// 获取 Span 和开始时间
	span, exists := db.InstanceGet("otel:span")
	if !exists {
		return
	}

	startTimeI, exists := db.InstanceGet("otel:start_time")
	if !exists {
		return
	}

	startTime, ok := startTimeI.(time.Time)
	if !ok {
		return
	}

	otelSpan, ok := span.(trace.Span)
	if !ok {
		return
	}
	defer otelSpan.End()

	// 计算耗时
	duration := time.Since(startTime).Seconds()

	// 设置属性和状态
	p.setSpanAttributes(otelSpan, db)
	p.setSpanStatus(otelSpan, db)

	// 记录指标
	if p.config.EnableMetrics {
		p.recordMetrics(db.Statement.Context, db, duration)
	}
}

// baseAttributes span 开始时即可确定的属性
func (p *OTELPlugin) baseAttributes(db *gorm.DB) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.DBSystemPostgreSQL,
		attribute.String("service.name", p.config.ServiceName),
	}
	if table := db.Statement.Table; table != "" {
		attrs = append(attrs, attribute.String("db.table", table))
	}
	return attrs
}

// statementAttributes SQL 生成后才有的属性
func (p *OTELPlugin) statementAttributes(db *gorm.DB) []attribute.KeyValue {
	var attrs []attribute.KeyValue

	// 截断长 SQL
	sql := db.Statement.SQL.String()
	if len(sql) > p.config.MaxSQLLength {
		sql = sql[:p.config.MaxSQLLength] + "..."
	}

	// 清理 SQL 语句，移除敏感信息
	cleanSQL := p.sanitizeSQL(sql)
	attrs = append(attrs, semconv.DBStatement(cleanSQL))

	// 添加 SQL 参数（如果启用）
	if p.config.EnableSQLParams && len(db.Statement.Vars) > 0 {
		// 这里只记录参数数量，避免记录敏感值
		attrs = append(attrs, attribute.Int("db.parameter_count", len(db.Statement.Vars)))
	}

	return attrs
}

var sensitiveLiteral = regexp.MustCompile(`(?i)(password_hash|password|token|secret)\s*=\s*'[^']*'`)

// sanitizeSQL 清理 SQL 中的敏感字面量
func (p *OTELPlugin) sanitizeSQL(sql string) string {
	return sensitiveLiteral.ReplaceAllString(sql, "$1='***'")
}

// setSpanAttributes 设置 Span 属性
func (p *OTELPlugin) setSpanAttributes(span trace.Span, db *gorm.DB) {
	span.SetAttributes(p.statementAttributes(db)...)

	// 添加影响的行数
	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}

	// 添加错误信息
	if db.Error != nil && db.Error != gorm.ErrRecordNotFound {
		span.SetAttributes(attribute.String("db.error", db.Error.Error()))
	}
}

// setSpanStatus 设置 Span 状态
func (p *OTELPlugin) setSpanStatus(span trace.Span, db *gorm.DB) {
	if db.Error != nil {
		if db.Error == gorm.ErrRecordNotFound {
			span.SetStatus(codes.Ok, "Record not found")
		} else {
			span.SetStatus(codes.Error, db.Error.Error())
			span.RecordError(db.Error)
		}
	} else {
		span.SetStatus(codes.Ok, "Success")
	}
}

// recordMetrics 记录指标
func (p *OTELPlugin) recordMetrics(ctx context.Context, db *gorm.DB, duration float64) {
	operation := "db.unknown"
	if v, ok := db.InstanceGet("otel:operation"); ok {
		if name, ok := v.(string); ok {
			operation = name
		}
	}
	status := "success"
	if db.Error != nil {
		status = "error"
	}

	labels := []attribute.KeyValue{
		attribute.String("db.operation", operation),
		attribute.String("db.status", status),
	}

	if dbQueriesTotal == nil || dbQueryDuration == nil {
		return
	}
	dbQueriesTotal.Add(ctx, 1, metric.WithAttributes(labels...))
	dbQueryDuration.Record(ctx, duration, metric.WithAttributes(labels...))
}

// WithOTELPlugin 为 GORM 添加 OpenTelemetry 插件
func WithOTELPlugin(db *gorm.DB, config PluginConfig) error {
	if config.EnableMetrics {
		if err := InitDatabaseMetrics(otel.Meter(config.ServiceName + ".gorm")); err != nil {
			return err
		}
	}
	plugin := NewOTELPlugin(config)
	return db.Use(plugin)
}

// WithDefaultOTELPlugin 使用默认配置添加 OpenTelemetry 插件
func WithDefaultOTELPlugin(db *gorm.DB, serviceName string) error {
	config := DefaultPluginConfig()
	config.ServiceName = serviceName
	return WithOTELPlugin(db, config)
}