package entity

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockRepository is a mock implementation of the Repository interface for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Get(ctx context.Context, tenantID, entityType, id string) (*Entity, error) {
	args := m.Called(ctx, tenantID, entityType, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Entity), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, e *Entity) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockRepository) UpdateFields(ctx context.Context, tenantID, entityType, id string, expectedVersion int64, patch map[string]any) (*Entity, error) {
	args := m.Called(ctx, tenantID, entityType, id, expectedVersion, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Entity), args.Error(1)
}

func (m *MockRepository) SoftDelete(ctx context.Context, tenantID, entityType, id string) error {
	args := m.Called(ctx, tenantID, entityType, id)
	return args.Error(0)
}
