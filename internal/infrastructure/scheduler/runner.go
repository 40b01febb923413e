// Package scheduler запускает периодические фоновые задачи сервера.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/exp/slog"
)

// Job - периодическая задача; ошибка логируется, следующий запуск не отменяется
type Job func(ctx context.Context) error

type Runner struct {
	cron    *cron.Cron
	log     *slog.Logger
	baseCtx context.Context
	timeout time.Duration
}

func New(baseCtx context.Context, log *slog.Logger, timeout time.Duration) *Runner {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	log = log.With("component", "scheduler")
	cl := cronLogger{log: log}

	return &Runner{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		log:     log,
		baseCtx: baseCtx,
		timeout: timeout,
	}
}

// Add регистрирует задачу по расписанию cron (поддерживаются дескрипторы вида "@every 5m")
func (r *Runner) Add(name, spec string, job Job) (cron.EntryID, error) {
	id, err := r.cron.AddFunc(spec, func() {
		ctx := r.baseCtx
		if r.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, r.timeout)
			defer cancel()
		}

		start := time.Now()
		if err := job(ctx); err != nil {
			r.log.Error("job failed", "job", name, "error", err, "duration", time.Since(start))
			return
		}
		r.log.Debug("job finished", "job", name, "duration", time.Since(start))
	})
	if err != nil {
		return 0, fmt.Errorf("schedule %s: %w", name, err)
	}
	return id, nil
}

func (r *Runner) Start() {
	r.log.Info("cron started", "jobs", len(r.cron.Entries()))
	r.cron.Start()
}

// Stop ждёт завершения выполняющихся задач
func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.log.Info("cron stopped")
}

// cronLogger адаптирует slog к cron.Logger
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append(keysAndValues, "error", err)...)
}
