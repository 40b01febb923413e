package entity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func newTestRegistry(t *testing.T, repo Repository) *Registry {
	t.Helper()
	r, err := NewRegistry(repo, slog.Default(), DefaultAppliers()...)
	require.NoError(t, err)
	return r
}

func TestNewRegistry_DuplicateType(t *testing.T) {
	_, err := NewRegistry(new(MockRepository), slog.Default(), WorkOrderApplier{}, WorkOrderApplier{})

	assert.Error(t, err)
}

func TestRegistry_Types(t *testing.T) {
	r := newTestRegistry(t, new(MockRepository))

	assert.Equal(t, []string{"Asset", "InventoryItem", "Permit", "WorkOrder"}, r.Types())
}

func TestRegistry_Apply(t *testing.T) {
	ctx := context.Background()
	dbErr := errors.New("connection reset")

	tests := []struct {
		name        string
		req         ApplyRequest
		setupMock   func(m *MockRepository)
		wantApply   bool
		wantErr     bool
		wantEntity  string
		wantVersion int64
	}{
		{
			name: "create assigns id",
			req: ApplyRequest{TenantID: "t1", EntityType: "WorkOrder", Operation: OperationCreate,
				Payload: map[string]any{"title": "Fix pump"}},
			setupMock: func(m *MockRepository) {
				m.On("Create", ctx, mock.MatchedBy(func(e *Entity) bool {
					return e.ID != "" && e.TenantID == "t1" && e.Type == "WorkOrder"
				})).Run(func(args mock.Arguments) {
					args.Get(1).(*Entity).Version = 1
				}).Return(nil)
			},
			wantVersion: 1,
		},
		{
			name: "create keeps client id",
			req: ApplyRequest{TenantID: "t1", EntityType: "Asset", EntityID: "A-1", Operation: OperationCreate,
				Payload: map[string]any{"name": "Boiler"}},
			setupMock: func(m *MockRepository) {
				m.On("Create", ctx, mock.MatchedBy(func(e *Entity) bool { return e.ID == "A-1" })).Return(nil)
			},
			wantEntity: "A-1",
		},
		{
			name: "create duplicate is a domain error",
			req: ApplyRequest{TenantID: "t1", EntityType: "Asset", EntityID: "A-1", Operation: OperationCreate,
				Payload: map[string]any{"name": "Boiler"}},
			setupMock: func(m *MockRepository) {
				m.On("Create", ctx, mock.Anything).Return(ErrAlreadyExists)
			},
			wantErr:   true,
			wantApply: true,
		},
		{
			name: "update missing entity references id",
			req: ApplyRequest{TenantID: "t1", EntityType: "WorkOrder", EntityID: "WO-404", Operation: OperationUpdate,
				Payload: map[string]any{"status": "completed"}},
			setupMock: func(m *MockRepository) {
				m.On("UpdateFields", ctx, "t1", "WorkOrder", "WO-404", int64(0), mock.Anything).Return(nil, ErrNotFound)
			},
			wantErr:   true,
			wantApply: true,
		},
		{
			name: "update ok",
			req: ApplyRequest{TenantID: "t1", EntityType: "WorkOrder", EntityID: "WO-1", Operation: OperationUpdate,
				Payload: map[string]any{"status": "completed"}},
			setupMock: func(m *MockRepository) {
				m.On("UpdateFields", ctx, "t1", "WorkOrder", "WO-1", int64(0), mock.Anything).
					Return(&Entity{ID: "WO-1", Version: 4}, nil)
			},
			wantEntity:  "WO-1",
			wantVersion: 4,
		},
		{
			name: "delete ok",
			req:  ApplyRequest{TenantID: "t1", EntityType: "Permit", EntityID: "P-1", Operation: OperationDelete},
			setupMock: func(m *MockRepository) {
				m.On("SoftDelete", ctx, "t1", "Permit", "P-1").Return(nil)
			},
			wantEntity: "P-1",
		},
		{
			name:      "unknown entity type",
			req:       ApplyRequest{TenantID: "t1", EntityType: "Spaceship", Operation: OperationCreate},
			setupMock: func(m *MockRepository) {},
			wantErr:   true,
			wantApply: true,
		},
		{
			name: "invalid payload",
			req: ApplyRequest{TenantID: "t1", EntityType: "WorkOrder", EntityID: "WO-1", Operation: OperationUpdate,
				Payload: map[string]any{"status": "exploded"}},
			setupMock: func(m *MockRepository) {},
			wantErr:   true,
			wantApply: true,
		},
		{
			name:      "update without id",
			req:       ApplyRequest{TenantID: "t1", EntityType: "WorkOrder", Operation: OperationUpdate},
			setupMock: func(m *MockRepository) {},
			wantErr:   true,
			wantApply: true,
		},
		{
			name: "storage failure is not a domain error",
			req:  ApplyRequest{TenantID: "t1", EntityType: "Permit", EntityID: "P-1", Operation: OperationDelete},
			setupMock: func(m *MockRepository) {
				m.On("SoftDelete", ctx, "t1", "Permit", "P-1").Return(dbErr)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			repo := new(MockRepository)
			tt.setupMock(repo)
			r := newTestRegistry(t, repo)

			// Act
			res, err := r.Apply(ctx, tt.req)

			// Assert
			if tt.wantErr {
				require.Error(t, err)
				var applyErr *ApplyError
				assert.Equal(t, tt.wantApply, errors.As(err, &applyErr))
				assert.Nil(t, res)
			} else {
				require.NoError(t, err)
				require.NotNil(t, res)
				assert.NotEmpty(t, res.EntityID)
				if tt.wantEntity != "" {
					assert.Equal(t, tt.wantEntity, res.EntityID)
				}
				assert.Equal(t, tt.wantVersion, res.Version)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestApplyError_MessageReferencesEntity(t *testing.T) {
	repo := new(MockRepository)
	repo.On("UpdateFields", mock.Anything, "t1", "WorkOrder", "WO-9", int64(0), mock.Anything).Return(nil, ErrNotFound)
	r := newTestRegistry(t, repo)

	_, err := r.Apply(context.Background(), ApplyRequest{
		TenantID: "t1", EntityType: "WorkOrder", EntityID: "WO-9", Operation: OperationUpdate,
		Payload: map[string]any{"status": "open"},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "WO-9")
	assert.ErrorIs(t, err, ErrNotFound)
}
