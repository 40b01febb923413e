package sync

import (
	"context"

	"workpro/internal/domain/conflict"
	"workpro/internal/domain/ledger"
	"workpro/internal/domain/telemetry"

	"github.com/stretchr/testify/mock"
)

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) SubmitActions(ctx context.Context, in ledger.SubmitInput) ([]ledger.ActionResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.ActionResult), args.Error(1)
}

func (m *MockLedger) ListPending(ctx context.Context, filter ledger.PendingFilter) ([]ledger.OfflineAction, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.OfflineAction), args.Error(1)
}

type MockConflicts struct {
	mock.Mock
}

func (m *MockConflicts) Report(ctx context.Context, in conflict.ReportInput) (*conflict.SyncConflict, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*conflict.SyncConflict), args.Error(1)
}

func (m *MockConflicts) Resolve(ctx context.Context, in conflict.ResolveInput) (*conflict.SyncConflict, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*conflict.SyncConflict), args.Error(1)
}

func (m *MockConflicts) List(ctx context.Context, filter conflict.Filter) ([]conflict.SyncConflict, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]conflict.SyncConflict), args.Error(1)
}

func (m *MockConflicts) Get(ctx context.Context, tenantID, id string) (*conflict.SyncConflict, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*conflict.SyncConflict), args.Error(1)
}

type MockTelemetry struct {
	mock.Mock
}

func (m *MockTelemetry) Upsert(ctx context.Context, in telemetry.Input) (*telemetry.DeviceTelemetry, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*telemetry.DeviceTelemetry), args.Error(1)
}

func (m *MockTelemetry) List(ctx context.Context, filter telemetry.Filter) ([]telemetry.DeviceTelemetry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]telemetry.DeviceTelemetry), args.Error(1)
}

func (m *MockTelemetry) Reconcile(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
