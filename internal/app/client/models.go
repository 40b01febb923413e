package client

import (
	"time"

	"workpro/internal/domain/entity"
)

// OutboxStatus состояние действия в локальной очереди
type OutboxStatus string

const (
	OutboxQueued  OutboxStatus = "queued"
	OutboxPending OutboxStatus = "pending"
	OutboxOK      OutboxStatus = "ok"
	OutboxError   OutboxStatus = "error"
)

// Terminal - сервер вынес окончательное решение по действию
func (s OutboxStatus) Terminal() bool {
	return s == OutboxOK || s == OutboxError
}

// OutboxAction - офлайн-действие, ожидающее отправки на сервер
type OutboxAction struct {
	ID             string           `json:"id"`
	EntityType     string           `json:"entityType"`
	EntityID       *string          `json:"entityId,omitempty"`
	Operation      entity.Operation `json:"operation"`
	Payload        map[string]any   `json:"payload,omitempty"`
	IdempotencyKey string           `json:"idempotencyKey"`
	Status         OutboxStatus     `json:"status"`
	Error          string           `json:"error,omitempty"`
	ServerEntityID string           `json:"serverEntityId,omitempty"`
	Attempts       int              `json:"attempts"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// PushResult итог одной отправки очереди
type PushResult struct {
	Sent    int `json:"sent"`
	Applied int `json:"applied"`
	Failed  int `json:"failed"`
	Pending int `json:"pending"`
	Batches int `json:"batches"`
}
