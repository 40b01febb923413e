//офлайн-синхронизация мобильных клиентов:
//идемпотентное применение пакетов офлайн-действий;
//учёт и разрешение конфликтов синхронизации;
//условные чтения по ETag и запись по If-Match;
//телеметрия синхронизации по устройствам.

//GET  /api/v1/health                          # Проверка (публичный)
//POST /api/v1/sync/actions                    # Пакет офлайн-действий (auth)
//GET  /api/v1/sync/pending                    # Нерешённые действия (auth)
//GET  /api/v1/sync/conflicts                  # Список конфликтов (auth)
//POST /api/v1/sync/conflicts                  # Сообщить о конфликте (auth)
//GET  /api/v1/sync/conflicts/{id}             # Конфликт (auth)
//POST /api/v1/sync/conflicts/{id}/resolve     # Разрешить конфликт (auth)
//GET  /api/v1/sync/telemetry                  # Телеметрия устройств (auth)
//GET  /api/v1/entities/{id}                   # Сущность с ETag (auth)
//PUT  /api/v1/entities/{id}                   # Обновление по If-Match (auth)
//PUT  /api/v1/entities/{id}/reconcile         # Сверка офлайн-правки (auth)

package api

import (
	"fmt"

	"workpro/internal/app/server/api/http/middleware"
	"workpro/internal/app/server/api/http/middleware/auth"
	"workpro/internal/app/server/api/http/middleware/logger"
	"workpro/internal/app/server/config"
	"workpro/internal/domain/conflict"
	"workpro/internal/domain/entity"
	"workpro/internal/domain/ledger"
	"workpro/internal/domain/telemetry"
	"workpro/internal/infrastructure/storage/postgres"

	entityAPI "workpro/internal/app/server/api/http/entity"
	healthAPI "workpro/internal/app/server/api/http/health"
	syncAPI "workpro/internal/app/server/api/http/sync"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"
)

type Handlers struct {
	Health *healthAPI.Handler
	Sync   *syncAPI.Handler
	Entity *entityAPI.Handler
}

// Services - доменные сервисы поверх общего хранилища
type Services struct {
	Ledger    *ledger.Service
	Conflicts *conflict.Service
	Telemetry *telemetry.Service
	Entities  *entity.Service
}

// NewServices связывает репозитории, реестр обработчиков сущностей и сервисы
func NewServices(storage *postgres.Storage, cfg *config.Config, log *slog.Logger) (*Services, error) {
	db := storage.DB()

	entityRepo := postgres.NewEntityRepository(db, log)
	registry, err := entity.NewRegistry(entityRepo, log, entity.DefaultAppliers()...)
	if err != nil {
		return nil, fmt.Errorf("entity registry: %w", err)
	}

	telemetryService := telemetry.NewService(postgres.NewTelemetryRepository(db, log), log, nil)

	txManager := postgres.NewTxManager(db)

	ledgerService := ledger.NewService(
		postgres.NewActionRepository(db, log),
		txManager,
		registry,
		telemetryService,
		log,
		&ledger.ServiceConfig{MaxBatchSize: cfg.Sync.MaxBatchSize},
	)

	conflictService := conflict.NewService(
		postgres.NewConflictRepository(db, log),
		postgres.NewAuditRepository(db, log),
		txManager,
		registry,
		telemetryService,
		log,
		nil,
	)

	return &Services{
		Ledger:    ledgerService,
		Conflicts: conflictService,
		Telemetry: telemetryService,
		Entities:  entity.NewService(entityRepo, log),
	}, nil
}

// New создает *chi.Mux с ВСЕМИ операциями через huma.Register
func New(services *Services, tokens auth.Verifier, db healthAPI.Pinger, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()

	config := huma.DefaultConfig("Workpro Sync API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer", BearerFormat: "JWT"},
	}

	API := humachi.New(mux, config)

	h := handlers(services, tokens, db, log)
	h.Health.SetupRoutes(API)
	h.Sync.SetupRoutes(API)
	h.Entity.SetupRoutes(API)

	return mux
}

func handlers(services *Services, tokens auth.Verifier, db healthAPI.Pinger, log *slog.Logger) *Handlers {
	authMW := auth.New(tokens, log)
	loggerMW := logger.New(log)
	middlewares := middleware.NewContainer()

	middlewares.Add(loggerMW.Middleware())
	healthHandler := healthAPI.NewHandler(db, log, middlewares.GetAllAndClear())

	middlewares.Add(authMW.Middleware())
	middlewares.Add(loggerMW.Middleware())
	syncHandler := syncAPI.NewHandler(services.Ledger, services.Conflicts, services.Telemetry, log,
		middlewares.GetAllAndClear())

	middlewares.Add(authMW.Middleware())
	middlewares.Add(loggerMW.Middleware())
	entityHandler := entityAPI.NewHandler(services.Entities, log, middlewares.GetAllAndClear())

	return &Handlers{
		Health: healthHandler,
		Sync:   syncHandler,
		Entity: entityHandler,
	}
}
