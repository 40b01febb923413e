package ledger

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

const defaultMaxBatchSize = 500

const errNotProcessed = "action was not processed, resend it later"

// Applier применяет мутацию к сущности предметной области
type Applier interface {
	Apply(ctx context.Context, req entity.ApplyRequest) (*entity.ApplyResult, error)
}

// DeviceTracker учитывает активность устройства
type DeviceTracker interface {
	Upsert(ctx context.Context, in telemetry.Input) (*telemetry.DeviceTelemetry, error)
}

// Servicer интерфейс журнала действий
type Servicer interface {
	// SubmitActions применяет пакет действий; у каждого действия свой исход
	SubmitActions(ctx context.Context, in SubmitInput) ([]ActionResult, error)

	// ListPending возвращает нерешённые действия арендатора
	ListPending(ctx context.Context, filter PendingFilter) ([]OfflineAction, error)
}

type Service struct {
	repo    Repository
	tx      TxManager
	applier Applier
	tracker DeviceTracker
	log     *slog.Logger
	config  *ServiceConfig
}

func NewService(repo Repository, tx TxManager, applier Applier, tracker DeviceTracker, log *slog.Logger,
	config *ServiceConfig) *Service {
	if config == nil {
		config = &ServiceConfig{}
	}
	if config.MaxBatchSize <= 0 {
		config.MaxBatchSize = defaultMaxBatchSize
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &Service{
		repo:    repo,
		tx:      tx,
		applier: applier,
		tracker: tracker,
		log:     log.With("component", "ledger_service"),
		config:  config,
	}
}

// SubmitActions обрабатывает действия последовательно в порядке пакета,
// чтобы create и последующий update одной сущности применялись по порядку.
func (s *Service) SubmitActions(ctx context.Context, in SubmitInput) ([]ActionResult, error) {
	if err := (identity.Identity{TenantID: in.TenantID, UserID: in.UserID}).Validate(); err != nil {
		return nil, err
	}
	if len(in.Actions) > s.config.MaxBatchSize {
		return nil, fmt.Errorf("%w: %d actions, limit %d", ErrBatchTooLarge, len(in.Actions), s.config.MaxBatchSize)
	}

	results := make([]ActionResult, 0, len(in.Actions))
	for _, act := range in.Actions {
		results = append(results, s.submitOne(ctx, in, act))
	}

	s.track(ctx, telemetry.Input{
		TenantID:   in.TenantID,
		UserID:     in.UserID,
		DeviceID:   in.DeviceID,
		Platform:   in.Platform,
		AppVersion: in.AppVersion,
		Synced:     true,
	})

	return results, nil
}

// submitOne вставляет действие, применяет его и фиксирует исход в одной транзакции.
// Конкурентная вставка того же ключа ждёт фиксации и получает готовый исход.
func (s *Service) submitOne(ctx context.Context, in SubmitInput, act ActionInput) ActionResult {
	if err := validateAction(act); err != nil {
		return ActionResult{ID: act.ID, Status: ResultError, Error: err.Error()}
	}

	candidate := &OfflineAction{
		ID:             uuid.NewString(),
		TenantID:       in.TenantID,
		UserID:         in.UserID,
		DeviceID:       in.DeviceID,
		ClientActionID: act.ID,
		EntityType:     act.EntityType,
		EntityID:       act.EntityID,
		Operation:      act.Operation,
		Payload:        act.Payload,
		IdempotencyKey: act.IdempotencyKey,
		Status:         StatusPending,
		CreatedAt:      s.config.Now().UTC(),
	}
	if candidate.Payload == nil {
		candidate.Payload = map[string]any{}
	}

	var (
		res       ActionResult
		domainErr *entity.ApplyError
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		stored, inserted, err := s.repo.Insert(ctx, candidate)
		if err != nil {
			return fmt.Errorf("store action: %w", err)
		}
		if !inserted {
			s.log.Debug("duplicate action", "idempotency_key", act.IdempotencyKey, "status", stored.Status)
			res = outcomeOf(stored, act.ID)
			return nil
		}

		var applied *entity.ApplyResult
		applyErr := s.tx.RunInSavepoint(ctx, func(ctx context.Context) error {
			var err error
			applied, err = s.applier.Apply(ctx, applyRequest(stored))
			return err
		})

		switch {
		case applyErr == nil:
			entityID := applied.EntityID
			if err := s.repo.MarkApplied(ctx, stored.ID, &entityID, s.config.Now().UTC()); err != nil {
				return err
			}
			res = ActionResult{ID: act.ID, ActionID: stored.ID, EntityID: entityID, Status: ResultOK}
		case errors.As(applyErr, &domainErr):
			reason := domainErr.Error()
			if err := s.repo.MarkFailed(ctx, stored.ID, reason); err != nil {
				return err
			}
			res = ActionResult{ID: act.ID, ActionID: stored.ID, Status: ResultError, Error: reason}
			if stored.EntityID != nil {
				res.EntityID = *stored.EntityID
			}
		default:
			return fmt.Errorf("apply action: %w", applyErr)
		}
		return nil
	})
	if err != nil {
		// ничего не сохранено: повторная отправка применит действие заново
		s.log.Error("failed to process action", "idempotency_key", act.IdempotencyKey, "error", err)
		return ActionResult{ID: act.ID, Status: ResultPending, Error: errNotProcessed}
	}

	if domainErr != nil {
		reason := res.Error
		s.track(ctx, telemetry.Input{
			TenantID:      in.TenantID,
			UserID:        in.UserID,
			DeviceID:      in.DeviceID,
			FailedDelta:   1,
			FailureReason: &reason,
		})
	}
	return res
}

func applyRequest(a *OfflineAction) entity.ApplyRequest {
	req := entity.ApplyRequest{
		TenantID:   a.TenantID,
		UserID:     a.UserID,
		EntityType: a.EntityType,
		Operation:  a.Operation,
		Payload:    a.Payload,
	}
	if a.EntityID != nil {
		req.EntityID = *a.EntityID
	}
	return req
}

// track обновляет телеметрию без влияния на исход запроса
func (s *Service) track(ctx context.Context, in telemetry.Input) {
	if s.tracker == nil || in.DeviceID == "" {
		return
	}
	if _, err := s.tracker.Upsert(ctx, in); err != nil {
		s.log.Warn("failed to update device telemetry", "device_id", in.DeviceID, "error", err)
	}
}

func (s *Service) ListPending(ctx context.Context, filter PendingFilter) ([]OfflineAction, error) {
	if filter.TenantID == "" {
		return nil, identity.ErrMissingTenantContext
	}
	if len(filter.Statuses) == 0 {
		filter.Statuses = []Status{StatusPending, StatusFailed}
	}
	for _, st := range filter.Statuses {
		if !st.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, st)
		}
	}

	actions, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list actions: %w", err)
	}
	return actions, nil
}

func validateAction(act ActionInput) error {
	switch {
	case act.IdempotencyKey == "":
		return errors.New("idempotencyKey is required")
	case act.EntityType == "":
		return errors.New("entityType is required")
	case !act.Operation.Valid():
		return fmt.Errorf("unknown operation %q", act.Operation)
	}
	return nil
}

func outcomeOf(a *OfflineAction, clientID string) ActionResult {
	res := ActionResult{ID: clientID, ActionID: a.ID}
	if res.ID == "" {
		res.ID = a.ClientActionID
	}
	if a.EntityID != nil {
		res.EntityID = *a.EntityID
	}

	switch a.Status {
	case StatusApplied:
		res.Status = ResultOK
	case StatusFailed:
		res.Status = ResultError
		if a.Error != nil {
			res.Error = *a.Error
		}
	default:
		res.Status = ResultPending
		res.Error = errNotProcessed
	}
	return res
}
