package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"workpro/internal/domain/identity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

// MockRepository is a mock implementation of the Repository interface for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Upsert(ctx context.Context, in Input, seenAt time.Time) (*DeviceTelemetry, error) {
	args := m.Called(ctx, in, seenAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*DeviceTelemetry), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, filter Filter) ([]DeviceTelemetry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]DeviceTelemetry), args.Error(1)
}

func (m *MockRepository) RecountActions(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func fixedNow() time.Time {
	return time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)
}

func TestService_Upsert(t *testing.T) {
	ctx := context.Background()
	empty := ""

	tests := []struct {
		name      string
		in        Input
		setupMock func(m *MockRepository)
		wantErr   error
	}{
		{
			name: "passes deltas through",
			in:   Input{TenantID: "t1", UserID: "u1", DeviceID: "d1", PendingDelta: 1, FailedDelta: 1},
			setupMock: func(m *MockRepository) {
				m.On("Upsert", ctx, Input{TenantID: "t1", UserID: "u1", DeviceID: "d1", PendingDelta: 1, FailedDelta: 1}, fixedNow()).
					Return(&DeviceTelemetry{DeviceID: "d1", PendingActions: 1, FailedActions: 1}, nil)
			},
		},
		{
			name: "negative conflict delta is clamped",
			in:   Input{TenantID: "t1", DeviceID: "d1", ConflictDelta: -5},
			setupMock: func(m *MockRepository) {
				m.On("Upsert", ctx, mock.MatchedBy(func(in Input) bool { return in.ConflictDelta == 0 }), fixedNow()).
					Return(&DeviceTelemetry{DeviceID: "d1"}, nil)
			},
		},
		{
			name: "empty failure reason is dropped",
			in:   Input{TenantID: "t1", DeviceID: "d1", FailureReason: &empty},
			setupMock: func(m *MockRepository) {
				m.On("Upsert", ctx, mock.MatchedBy(func(in Input) bool { return in.FailureReason == nil }), fixedNow()).
					Return(&DeviceTelemetry{DeviceID: "d1"}, nil)
			},
		},
		{
			name:      "missing device",
			in:        Input{TenantID: "t1"},
			setupMock: func(m *MockRepository) {},
			wantErr:   ErrMissingDevice,
		},
		{
			name:      "missing tenant",
			in:        Input{DeviceID: "d1"},
			setupMock: func(m *MockRepository) {},
			wantErr:   identity.ErrMissingTenantContext,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			repo := new(MockRepository)
			tt.setupMock(repo)
			svc := NewService(repo, slog.Default(), &ServiceConfig{Now: fixedNow})

			// Act
			got, err := svc.Upsert(ctx, tt.in)

			// Assert
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "d1", got.DeviceID)
			repo.AssertExpectations(t)
		})
	}
}

func TestService_List(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	filter := Filter{TenantID: "t1", UserID: "u1"}
	repo.On("List", ctx, filter).Return([]DeviceTelemetry{{DeviceID: "d1"}, {DeviceID: "d2"}}, nil)
	svc := NewService(repo, slog.Default(), nil)

	items, err := svc.List(ctx, filter)

	require.NoError(t, err)
	assert.Len(t, items, 2)

	_, err = svc.List(ctx, Filter{})
	assert.ErrorIs(t, err, identity.ErrMissingTenantContext)
}

func TestService_Reconcile(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("RecountActions", ctx).Return(int64(3), nil)
		svc := NewService(repo, slog.Default(), nil)

		assert.NoError(t, svc.Reconcile(ctx))
		repo.AssertExpectations(t)
	})

	t.Run("storage error", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("RecountActions", ctx).Return(int64(0), errors.New("boom"))
		svc := NewService(repo, slog.Default(), nil)

		assert.Error(t, svc.Reconcile(ctx))
	})
}
