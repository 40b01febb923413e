package conflict

import (
	"context"
	"errors"
	"fmt"
	"time"

	"workpro/internal/domain/entity"
	"workpro/internal/domain/identity"
	"workpro/internal/domain/telemetry"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

type Applier interface {
	Apply(ctx context.Context, req entity.ApplyRequest) (*entity.ApplyResult, error)
}

type DeviceTracker interface {
	Upsert(ctx context.Context, in telemetry.Input) (*telemetry.DeviceTelemetry, error)
}

// Servicer интерфейс сервиса конфликтов синхронизации
type Servicer interface {
	// Report регистрирует конфликт, замещая pending-конфликт той же тройки
	Report(ctx context.Context, in ReportInput) (*SyncConflict, error)

	// Resolve разрешает конфликт по выбранной политике. Повторное разрешение
	// возвращает сохранённую запись вместе с ErrAlreadyResolved
	Resolve(ctx context.Context, in ResolveInput) (*SyncConflict, error)

	List(ctx context.Context, filter Filter) ([]SyncConflict, error)
	Get(ctx context.Context, tenantID, id string) (*SyncConflict, error)
}

type Service struct {
	repo    Repository
	audit   AuditRepository
	tx      TxManager
	applier Applier
	tracker DeviceTracker
	log     *slog.Logger
	config  *ServiceConfig
}

func NewService(repo Repository, audit AuditRepository, tx TxManager, applier Applier, tracker DeviceTracker,
	log *slog.Logger, config *ServiceConfig) *Service {
	if config == nil {
		config = &ServiceConfig{}
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &Service{
		repo:    repo,
		audit:   audit,
		tx:      tx,
		applier: applier,
		tracker: tracker,
		log:     log.With("component", "conflict_service"),
		config:  config,
	}
}

func (s *Service) Report(ctx context.Context, in ReportInput) (*SyncConflict, error) {
	if err := (identity.Identity{TenantID: in.TenantID, UserID: in.UserID}).Validate(); err != nil {
		return nil, err
	}
	switch {
	case in.DeviceID == "":
		return nil, fmt.Errorf("%w: deviceId is required", ErrValidation)
	case in.EntityType == "":
		return nil, fmt.Errorf("%w: entityType is required", ErrValidation)
	case in.EntityID == "" && in.ServerVersion == nil && in.ClientVersion == nil:
		return nil, fmt.Errorf("%w: entityId or a version is required", ErrValidation)
	}

	c := &SyncConflict{
		ID:            uuid.NewString(),
		TenantID:      in.TenantID,
		UserID:        in.UserID,
		DeviceID:      in.DeviceID,
		EntityType:    in.EntityType,
		EntityID:      in.EntityID,
		ServerVersion: in.ServerVersion,
		ClientVersion: in.ClientVersion,
		Payload:       in.Payload,
		Status:        StatusPending,
		CreatedAt:     s.config.Now().UTC(),
	}
	if err := s.repo.Upsert(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to save conflict: %w", err)
	}

	if s.tracker != nil {
		_, err := s.tracker.Upsert(ctx, telemetry.Input{
			TenantID:      in.TenantID,
			UserID:        in.UserID,
			DeviceID:      in.DeviceID,
			ConflictDelta: 1,
		})
		if err != nil {
			s.log.Warn("failed to update device telemetry", "device_id", in.DeviceID, "error", err)
		}
	}

	s.log.Info("conflict reported",
		"conflict_id", c.ID, "entity_type", c.EntityType, "entity_id", c.EntityID, "device_id", c.DeviceID)
	return c, nil
}

func (s *Service) Resolve(ctx context.Context, in ResolveInput) (*SyncConflict, error) {
	if err := (identity.Identity{TenantID: in.TenantID, UserID: in.UserID}).Validate(); err != nil {
		return nil, err
	}
	if !in.Resolution.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidResolution, in.Resolution)
	}

	var out *SyncConflict
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetForUpdate(ctx, in.TenantID, in.ConflictID)
		if err != nil {
			return err
		}
		if current.Status == StatusResolved {
			out = current
			return ErrAlreadyResolved
		}

		before := *current
		if in.Resolution == ResolutionClient {
			if err := s.applyClient(ctx, in, current); err != nil {
				return err
			}
		}

		now := s.config.Now().UTC()
		resolution := in.Resolution
		resolvedBy := in.UserID
		current.Status = StatusResolved
		current.Resolution = &resolution
		current.ResolvedBy = &resolvedBy
		current.ResolvedAt = &now
		current.Notes = in.Notes

		if err := s.repo.MarkResolved(ctx, current); err != nil {
			return err
		}

		rec := &AuditRecord{
			ID:         uuid.NewString(),
			TenantID:   in.TenantID,
			ActorID:    in.UserID,
			EntityType: auditEntityType,
			EntityID:   current.ID,
			Action:     auditActionResolve,
			Before:     &before,
			After:      current,
			CreatedAt:  now,
		}
		if err := s.audit.Append(ctx, rec); err != nil {
			return fmt.Errorf("append audit record: %w", err)
		}

		out = current
		return nil
	})

	switch {
	case err == nil:
		s.log.Info("conflict resolved", "conflict_id", out.ID, "resolution", in.Resolution, "resolved_by", in.UserID)
		return out, nil
	case errors.Is(err, ErrAlreadyResolved):
		return out, ErrAlreadyResolved
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrValidation):
		return nil, err
	default:
		var applyErr *entity.ApplyError
		if errors.As(err, &applyErr) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to resolve conflict: %w", err)
	}
}

// applyClient записывает данные клиента поверх серверных без проверки версии
func (s *Service) applyClient(ctx context.Context, in ResolveInput, c *SyncConflict) error {
	if c.EntityID == "" {
		return fmt.Errorf("%w: client resolution requires an entity id", ErrValidation)
	}
	_, err := s.applier.Apply(ctx, entity.ApplyRequest{
		TenantID:   in.TenantID,
		UserID:     in.UserID,
		EntityType: c.EntityType,
		EntityID:   c.EntityID,
		Operation:  entity.OperationUpdate,
		Payload:    c.Payload,
	})
	return err
}

func (s *Service) List(ctx context.Context, filter Filter) ([]SyncConflict, error) {
	if filter.TenantID == "" {
		return nil, identity.ErrMissingTenantContext
	}
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *filter.Status)
	}
	if filter.Resolution != nil && !filter.Resolution.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidResolution, *filter.Resolution)
	}

	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list conflicts: %w", err)
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, tenantID, id string) (*SyncConflict, error) {
	if tenantID == "" {
		return nil, identity.ErrMissingTenantContext
	}
	c, err := s.repo.Get(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get conflict: %w", err)
	}
	return c, nil
}
