package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	hertzzap "github.com/hertz-contrib/logger/zap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"ContactHub/config"
)

var (
	// Logger 在 Init 之前是 no-op，测试里无需初始化
	Logger   = zap.NewNop()
	logClose io.Closer
)

// sinkSpec 由配置推导出的日志输出形态
type sinkSpec struct {
	level  zapcore.Level
	json   bool
	color  bool   // 只有终端输出才着色
	path   string // stdout / stderr / 文件路径
	sample bool   // 生产环境对高频重复日志采样
}

func specFrom(c *config.Config) sinkSpec {
	path := strings.TrimSpace(c.LoggerOutputPath)
	if path == "" {
		path = "stdout"
	}
	terminal := isStdStream(path)

	format := strings.ToLower(c.LoggerFormat)
	jsonOut := format == "json" || (format == "" && c.IsProduction())
	if c.IsDevelopment() && terminal {
		jsonOut = false
	}

	return sinkSpec{
		level:  parseZapLevel(c.LoggerLevel),
		json:   jsonOut,
		color:  !jsonOut && terminal,
		path:   path,
		sample: c.IsProduction(),
	}
}

// Init 构建 zap 日志并接管 hertz 的 hlog 输出
func Init() {
	c := &config.Cfg
	spec := specFrom(c)

	ws, closer, openErr := openSink(spec.path)
	logClose = closer
	if openErr != nil {
		spec.color = false
	}

	opts := []zap.Option{
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.Fields(
			zap.String("service", c.ServiceName),
			zap.String("version", c.ServiceVersion),
		),
	}
	if spec.sample {
		// 每秒同一消息前 100 条照常输出，之后每 100 条取 1 条
		opts = append(opts, zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewSamplerWithOptions(core, time.Second, 100, 100)
		}))
	}

	level := zap.NewAtomicLevelAt(spec.level)
	hzLogger := hertzzap.NewLogger(
		hertzzap.WithCoreEnc(newEncoder(spec)),
		hertzzap.WithCoreWs(ws),
		hertzzap.WithCoreLevel(level),
		hertzzap.WithZapOptions(opts...),
	)
	hlog.SetLogger(hzLogger)
	hlog.SetLevel(toHlogLevel(spec.level))

	Logger = hzLogger.Logger()
	if openErr != nil {
		Logger.Warn("Cannot open log file, writing to stderr",
			zap.String("path", spec.path),
			zap.Error(openErr),
		)
	}
	Logger.Debug("Logger ready",
		zap.Stringer("level", spec.level),
		zap.Bool("json", spec.json),
		zap.String("output", spec.path),
		zap.String("environment", c.Environment),
	)
}

// WithContext 附带当前 span 的 trace_id / span_id，未开启追踪时返回全局 Logger
func WithContext(ctx context.Context) *zap.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return Logger
	}
	return Logger.With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}

// Sync 进程退出前刷盘并关闭日志文件
func Sync() {
	_ = Logger.Sync()
	if logClose != nil {
		_ = logClose.Close()
		logClose = nil
	}
}

func newEncoder(spec sinkSpec) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.EncodeCaller = zapcore.ShortCallerEncoder
	ec.EncodeDuration = zapcore.MillisDurationEncoder

	if spec.json {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewJSONEncoder(ec)
	}
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	if spec.color {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return zapcore.NewConsoleEncoder(ec)
}

// openSink 文件打不开时退回 stderr，不让日志配置错误阻断启动
func openSink(path string) (zapcore.WriteSyncer, io.Closer, error) {
	switch strings.ToLower(path) {
	case "stdout":
		return zapcore.AddSync(os.Stdout), nil, nil
	case "stderr":
		return zapcore.AddSync(os.Stderr), nil, nil
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return zapcore.AddSync(os.Stderr), nil, err
	}
	return zapcore.AddSync(file), file, nil
}

func isStdStream(path string) bool {
	p := strings.ToLower(path)
	return p == "stdout" || p == "stderr"
}

func parseZapLevel(level string) zapcore.Level {
	l, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zapcore.InfoLevel
	}
	return l
}

func toHlogLevel(level zapcore.Level) hlog.Level {
	switch {
	case level <= zapcore.DebugLevel:
		return hlog.LevelDebug
	case level == zapcore.InfoLevel:
		return hlog.LevelInfo
	case level == zapcore.WarnLevel:
		return hlog.LevelWarn
	default:
		return hlog.LevelError
	}
}
