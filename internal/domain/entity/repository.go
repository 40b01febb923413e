package entity

import "context"

// Repository хранилище версионированных сущностей.
type Repository interface {
	Get(ctx context.Context, tenantID, entityType, id string) (*Entity, error)
	// Create сохраняет сущность с версией 1. ErrAlreadyExists, если id занят.
	Create(ctx context.Context, e *Entity) error
	// UpdateFields сливает patch с текущими полями и увеличивает версию.
	// expectedVersion > 0 включает CAS: при несовпадении версии возвращается ErrVersionConflict.
	UpdateFields(ctx context.Context, tenantID, entityType, id string, expectedVersion int64, patch map[string]any) (*Entity, error)
	SoftDelete(ctx context.Context, tenantID, entityType, id string) error
}
