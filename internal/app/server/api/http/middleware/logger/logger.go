package logger

import (
	"time"

	"workpro/internal/app/server/api/http/middleware/auth"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

// Logger middleware для логирования входящих HTTP запросов
type Logger struct {
	log *slog.Logger
}

// New создает новый экземпляр Logger middleware
func New(log *slog.Logger) *Logger {
	return &Logger{
		log: log.With(slog.String("component", "http_logger")),
	}
}

// Middleware возвращает middleware функцию для логирования HTTP запросов
func (l *Logger) Middleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		start := time.Now()

		method := ctx.Method()
		path := ctx.URL().Path
		remoteAddr := ctx.RemoteAddr()
		deviceID := ctx.Header("X-Device-ID")

		next(ctx)

		status := ctx.Status()
		attrs := []slog.Attr{
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
			slog.String("remote_addr", remoteAddr),
		}
		if deviceID != "" {
			attrs = append(attrs, slog.String("device_id", deviceID))
		}
		if id, ok := auth.GetIdentity(ctx.Context()); ok {
			attrs = append(attrs, slog.String("tenant_id", id.TenantID), slog.String("user_id", id.UserID))
		}

		level := slog.LevelInfo
		if status >= 500 {
			level = slog.LevelError
		}
		l.log.LogAttrs(ctx.Context(), level, "HTTP request", attrs...)
	}
}
