package telemetry

import (
	"context"
	"fmt"
	"time"

	"workpro/internal/domain/identity"

	"golang.org/x/exp/slog"
)

// Servicer интерфейс сервиса телеметрии
type Servicer interface {
	Upsert(ctx context.Context, in Input) (*DeviceTelemetry, error)
	List(ctx context.Context, filter Filter) ([]DeviceTelemetry, error)
	Reconcile(ctx context.Context) error
}

type Service struct {
	repo   Repository
	log    *slog.Logger
	config *ServiceConfig
}

func NewService(repo Repository, log *slog.Logger, config *ServiceConfig) *Service {
	if config == nil {
		config = &ServiceConfig{}
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &Service{
		repo:   repo,
		log:    log.With("component", "telemetry_service"),
		config: config,
	}
}

// Upsert применяет приращения счётчиков. Конфликты только накапливаются,
// pending и failed ограничены снизу нулём на стороне хранилища.
func (s *Service) Upsert(ctx context.Context, in Input) (*DeviceTelemetry, error) {
	if in.TenantID == "" {
		return nil, identity.ErrMissingTenantContext
	}
	if in.DeviceID == "" {
		return nil, ErrMissingDevice
	}
	if in.ConflictDelta < 0 {
		in.ConflictDelta = 0
	}
	if in.FailureReason != nil && *in.FailureReason == "" {
		in.FailureReason = nil
	}

	t, err := s.repo.Upsert(ctx, in, s.config.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to upsert telemetry: %w", err)
	}
	return t, nil
}

func (s *Service) List(ctx context.Context, filter Filter) ([]DeviceTelemetry, error) {
	if filter.TenantID == "" {
		return nil, identity.ErrMissingTenantContext
	}
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list telemetry: %w", err)
	}
	return items, nil
}

// Reconcile пересчитывает счётчики действий по журналу. Счётчики в телеметрии
// носят справочный характер и могут расходиться после сбоев между записями.
func (s *Service) Reconcile(ctx context.Context) error {
	start := s.config.Now()
	n, err := s.repo.RecountActions(ctx)
	if err != nil {
		return fmt.Errorf("failed to reconcile telemetry: %w", err)
	}
	s.log.Info("telemetry reconciled",
		slog.Int64("devices_updated", n),
		slog.Duration("duration", s.config.Now().Sub(start)),
	)
	return nil
}
