package metrics

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics 业务指标集合
type OTelMetrics struct {
	// 联系人列表查询
	ContactListTotal    metric.Int64Counter
	ContactListDuration metric.Float64Histogram
	ContactListRows     metric.Int64Histogram

	// 联系人写操作
	ContactWriteTotal metric.Int64Counter

	// 认证
	AuthAttemptTotal metric.Int64Counter
}

var (
	metrics     *OTelMetrics
	metricsOnce sync.Once
	metricsErr  error
)

// InitMetrics 基于全局 MeterProvider 创建指标。
// 全局 provider 是可替换的代理，先于 otel 初始化创建的指标在 provider 就绪后同样生效。
func InitMetrics() error {
	metricsOnce.Do(func() {
		metrics, metricsErr = newOTelMetrics(otel.Meter("contacthub"))
	})
	return metricsErr
}

func newOTelMetrics(meter metric.Meter) (*OTelMetrics, error) {
	m := &OTelMetrics{}
	var err error

	m.ContactListTotal, err = meter.Int64Counter(
		"contacts.list.requests",
		metric.WithDescription("Total number of contact list queries"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	m.ContactListDuration, err = meter.Float64Histogram(
		"contacts.list.duration",
		metric.WithDescription("Contact list query duration, page and count reads included"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
	)
	if err != nil {
		return nil, err
	}

	m.ContactListRows, err = meter.Int64Histogram(
		"contacts.list.rows",
		metric.WithDescription("Number of contacts returned per page"),
		metric.WithUnit("{contact}"),
	)
	if err != nil {
		return nil, err
	}

	m.ContactWriteTotal, err = meter.Int64Counter(
		"contacts.write.total",
		metric.WithDescription("Total number of contact create/update/delete operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, err
	}

	m.AuthAttemptTotal, err = meter.Int64Counter(
		"auth.attempts.total",
		metric.WithDescription("Total number of register/login/refresh attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// GetMetrics 获取指标实例，初始化失败时返回 nil
func GetMetrics() *OTelMetrics {
	if err := InitMetrics(); err != nil {
		return nil
	}
	return metrics
}

// RecordContactList 记录一次列表查询；outcome 为 ok 或错误码
func RecordContactList(ctx context.Context, outcome string, rows int, elapsed time.Duration) {
	m := GetMetrics()
	if m == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.ContactListTotal.Add(ctx, 1, attrs)
	m.ContactListDuration.Record(ctx, elapsed.Seconds(), attrs)
	if outcome == "ok" {
		m.ContactListRows.Record(ctx, int64(rows))
	}
}

// RecordContactWrite 记录联系人写操作，op 为 create/update/delete
func RecordContactWrite(ctx context.Context, op string, err error) {
	m := GetMetrics()
	if m == nil {
		return
	}

	m.ContactWriteTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.Bool("success", err == nil),
	))
}

// RecordAuthAttempt 记录认证尝试，kind 为 register/login/refresh
func RecordAuthAttempt(ctx context.Context, kind string, err error) {
	m := GetMetrics()
	if m == nil {
		return
	}

	m.AuthAttemptTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.Bool("success", err == nil),
	))
}
