package otel

import (
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"ContactHub/config"
)

// exportSettings 由服务配置推导出的导出参数
type exportSettings struct {
	endpoint       string // host:port，gRPC exporter 不接受 scheme
	insecure       bool
	sampler        sdktrace.Sampler
	metricInterval time.Duration
	attributes     []attribute.KeyValue
}

// settingsFrom 从 config.Config 推导 exporter、采样器与资源属性
func settingsFrom(c *config.Config) exportSettings {
	endpoint, insecure := splitEndpoint(c.OTelEndpoint, c.IsProduction())

	interval := 10 * time.Second
	if c.IsProduction() {
		interval = 30 * time.Second
	}

	return exportSettings{
		endpoint:       endpoint,
		insecure:       insecure,
		sampler:        samplerFor(c),
		metricInterval: interval,
		attributes: []attribute.KeyValue{
			semconv.ServiceName(c.ServiceName),
			semconv.ServiceVersion(c.ServiceVersion),
			semconv.DeploymentEnvironment(c.Environment),
			semconv.ServiceNamespace("contacthub"),
			semconv.TelemetrySDKLanguageGo,
		},
	}
}

// splitEndpoint https:// 走 TLS，http:// 明文；无 scheme 时仅生产环境走 TLS
func splitEndpoint(raw string, production bool) (string, bool) {
	switch {
	case strings.HasPrefix(raw, "https://"):
		return strings.TrimSuffix(strings.TrimPrefix(raw, "https://"), "/"), false
	case strings.HasPrefix(raw, "http://"):
		return strings.TrimSuffix(strings.TrimPrefix(raw, "http://"), "/"), true
	default:
		return raw, !production
	}
}

// samplerFor 开发环境全量采样，其余按比例采样并跟随上游决策
func samplerFor(c *config.Config) sdktrace.Sampler {
	if c.IsDevelopment() {
		return sdktrace.AlwaysSample()
	}

	ratio := c.OTelSampleRatio
	switch {
	case ratio >= 1:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case ratio <= 0:
		// 未显式设置时沿用 10%
		ratio = 0.1
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}
