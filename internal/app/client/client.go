package client

import (
	"context"
	"fmt"

	"workpro/internal/app/client/config"
	"workpro/internal/domain/conflict"
	"workpro/internal/domain/entity"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

// App - офлайн-клиент: локальная очередь действий и связь с сервером синхронизации
type App struct {
	config  *config.Config
	log     *slog.Logger
	storage *SQLiteStorage
	api     *httpClient
	pusher  *Pusher
}

func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	storage, err := NewSQLiteStorage(cfg.OutboxPath)
	if err != nil {
		return nil, err
	}

	api := NewHTTPClient(cfg, log)

	return &App{
		config:  cfg,
		log:     log,
		storage: storage,
		api:     api,
		pusher:  NewPusher(storage, api, cfg.BatchSize, log),
	}, nil
}

func (a *App) Close() error {
	return a.storage.Close()
}

func (a *App) Config() *config.Config {
	return a.config
}

// QueueInput - мутация, выполненная офлайн
type QueueInput struct {
	EntityType string
	EntityID   string
	Operation  entity.Operation
	Payload    map[string]any
}

// Queue ставит действие в очередь с новым ключом идемпотентности
func (a *App) Queue(ctx context.Context, in QueueInput) (*OutboxAction, error) {
	if in.EntityType == "" {
		in.EntityType = entity.DefaultType
	}
	if !in.Operation.Valid() {
		return nil, fmt.Errorf("неизвестная операция %q", in.Operation)
	}
	if in.Operation != entity.OperationCreate && in.EntityID == "" {
		return nil, fmt.Errorf("для операции %s нужен --entity-id", in.Operation)
	}

	action := &OutboxAction{
		ID:             uuid.NewString(),
		EntityType:     in.EntityType,
		Operation:      in.Operation,
		Payload:        in.Payload,
		IdempotencyKey: uuid.NewString(),
	}
	if in.EntityID != "" {
		action.EntityID = &in.EntityID
	}

	if err := a.storage.Enqueue(ctx, action); err != nil {
		return nil, err
	}
	a.log.Debug("action queued", "action_id", action.ID, "entity_type", action.EntityType, "operation", action.Operation)
	return action, nil
}

func (a *App) Push(ctx context.Context) (*PushResult, error) {
	return a.pusher.Push(ctx)
}

func (a *App) Actions(ctx context.Context) ([]*OutboxAction, error) {
	return a.storage.List(ctx)
}

func (a *App) Counts(ctx context.Context) (map[OutboxStatus]int, error) {
	return a.storage.Counts(ctx)
}

func (a *App) CheckConnection(ctx context.Context) error {
	return a.api.HealthCheck(ctx)
}

func (a *App) Conflicts(ctx context.Context, status string) ([]conflict.SyncConflict, error) {
	return a.api.ListConflicts(ctx, status)
}

func (a *App) Resolve(ctx context.Context, id, resolution, notes string) (*ResolvedConflict, error) {
	return a.api.ResolveConflict(ctx, id, resolution, notes)
}

type appKey struct{}

// WithApp кладёт клиент в контекст команды
func WithApp(ctx context.Context, app *App) context.Context {
	return context.WithValue(ctx, appKey{}, app)
}

func FromContext(ctx context.Context) (*App, error) {
	app, ok := ctx.Value(appKey{}).(*App)
	if !ok || app == nil {
		return nil, fmt.Errorf("приложение не инициализировано")
	}
	return app, nil
}
