package middleware

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/config"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

type httpMetrics struct {
	requestTotal   metric.Int64Counter
	duration       metric.Float64Histogram
	requestSize    metric.Int64Histogram
	responseSize   metric.Int64Histogram
	activeRequests metric.Int64UpDownCounter
}

var (
	httpMetricsOnce sync.Once
	httpInstruments *httpMetrics
)

// toValidUTF8 统一清洗用户可控字符串，防止非法 UTF-8 触发指标/trace 序列化失败
func toValidUTF8(val string) string {
	return strings.ToValidUTF8(val, "")
}

// instruments 首次使用时从全局 MeterProvider 创建；未初始化 OTel 时拿到的是 noop 实现
func instruments() *httpMetrics {
	httpMetricsOnce.Do(func() {
		meter := otel.Meter("contacthub.http")
		m := &httpMetrics{}

		// 创建失败时 otel 仍返回可用的 noop 实例，这里忽略错误
		m.requestTotal, _ = meter.Int64Counter(
			"http.server.requests.total",
			metric.WithDescription("Total number of HTTP requests"),
			metric.WithUnit("{request}"),
		)
		m.duration, _ = meter.Float64Histogram(
			"http.server.duration",
			metric.WithDescription("HTTP request duration"),
			metric.WithUnit("s"),
			metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0),
		)
		m.requestSize, _ = meter.Int64Histogram(
			"http.server.request.size",
			metric.WithDescription("HTTP request size"),
			metric.WithUnit("By"),
		)
		m.responseSize, _ = meter.Int64Histogram(
			"http.server.response.size",
			metric.WithDescription("HTTP response size"),
			metric.WithUnit("By"),
		)
		m.activeRequests, _ = meter.Int64UpDownCounter(
			"http.server.active_requests",
			metric.WithDescription("Number of active HTTP requests"),
			metric.WithUnit("{request}"),
		)
		httpInstruments = m
	})
	return httpInstruments
}

// OpenTelemetryMiddleware 记录 HTTP 指标，并给 hertz tracer 建好的 span 补充用户与请求 ID
func OpenTelemetryMiddleware() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		m := instruments()
		startTime := time.Now()

		m.activeRequests.Add(ctx, 1)
		defer m.activeRequests.Add(ctx, -1)

		c.Next(ctx)

		method := toValidUTF8(string(c.Method()))
		// 用路由模板而不是实际路径，避免 /v1/contacts/:id 撑爆指标基数
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		statusCode := c.Response.StatusCode()

		span := trace.SpanFromContext(ctx)
		if span.IsRecording() {
			if userID, ok := GetUserID(ctx, c); ok {
				span.SetAttributes(attribute.String("enduser.id", toValidUTF8(userID)))
			}
			if requestID := c.GetHeader("X-Request-Id"); len(requestID) > 0 {
				span.SetAttributes(attribute.String("http.request_id", toValidUTF8(string(requestID))))
			}
		}

		labels := metric.WithAttributes(
			semconv.HTTPMethod(method),
			semconv.HTTPRoute(route),
			semconv.HTTPStatusCode(statusCode),
		)
		m.requestTotal.Add(ctx, 1, labels)
		m.duration.Record(ctx, time.Since(startTime).Seconds(), labels)

		if requestSize := int64(c.Request.Header.ContentLength()); requestSize > 0 {
			m.requestSize.Record(ctx, requestSize, labels)
		}
		if responseSize := int64(len(c.Response.Body())); responseSize > 0 {
			m.responseSize.Record(ctx, responseSize, labels)
		}
	}
}

// NewServerTracerConfig 创建 Hertz Server 的追踪配置
// 返回用于初始化 Hertz server 的配置选项和追踪中间件
func NewServerTracerConfig(opts ...hertztracing.Option) (config.Option, app.HandlerFunc) {
	tracer, cfg := hertztracing.NewServerTracer(opts...)
	return tracer, hertztracing.ServerMiddleware(cfg)
}
