package logger

import (
	"io"
	"os"

	"workpro/internal/app/server/config"
	"workpro/internal/utils/logger/slogpretty"

	"golang.org/x/exp/slog"
)

// New создаёт логгер под окружение: local - цветной вывод,
// dev - JSON с DEBUG, prod - JSON с INFO.
func New(env string) *slog.Logger {
	return NewWithWriter(env, os.Stdout)
}

// NewWithWriter то же, что New, но пишет в w. CLI пишет логи в stderr,
// чтобы не смешивать их с выводом команд.
func NewWithWriter(env string, w io.Writer) *slog.Logger {
	switch env {
	case config.EnvLocal:
		return setupPrettySlog(w)
	case config.EnvDev:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
}

func setupPrettySlog(w io.Writer) *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	return slog.New(opts.NewPrettyHandler(w))
}
