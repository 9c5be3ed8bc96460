// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Logger 是全局的基础 logger 实例。
// 所有服务在 bootstrap.Init() 中通过 Init 初始化一次。
var Logger zerolog.Logger

func init() {
	// 默认输出到 stderr，保证在 Init 被调用前日志也不会丢失
	Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// Init 初始化全局 logger。
// serviceName 会作为固定字段附加到每一条日志上。
func Init(serviceName string) {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	level := zerolog.InfoLevel
	if lvl, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil && lvl != zerolog.NoLevel {
		level = lvl
	}

	Logger = zerolog.New(os.Stdout).
		Level(level).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

// Ctx 返回一个与请求上下文关联的 logger。
// 如果 ctx 中存在有效的 OpenTelemetry Span，会自动附加 trace_id 和 span_id，
// 这样日志就可以和 Jaeger 中的调用链对应起来。
func Ctx(ctx context.Context) *zerolog.Logger {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return &Logger
	}
	l := Logger.With().
		Str("trace_id", spanCtx.TraceID().String()).
		Str("span_id", spanCtx.SpanID().String()).
		Logger()
	return &l
}
