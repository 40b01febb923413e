package entity

import "time"

// ApplyRequest - одна мутация, переданная типизированному обработчику сущности.
type ApplyRequest struct {
	TenantID   string
	UserID     string
	EntityType string
	EntityID   string
	Operation  Operation
	Payload    map[string]any
}

type ApplyResult struct {
	EntityID string
	Version  int64
}

type ReconcileInput struct {
	TenantID        string
	EntityType      string
	ID              string
	ClientUpdatedAt time.Time
	Patch           map[string]any
}

// ReconcileConflict описывает отказ в применении патча: сервер изменил сущность
// позже, чем клиент видел её в последний раз.
type ReconcileConflict struct {
	Fields  []string
	Current *Entity
}
