package ledger

import (
	"time"

	"workpro/internal/domain/entity"
	"workpro/internal/domain/versioning"
)

// Status состояние действия в журнале
type Status string

const (
	StatusPending Status = "pending"
	StatusApplied Status = "applied"
	StatusFailed  Status = "failed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApplied, StatusFailed:
		return true
	}
	return false
}

// OfflineAction - мутация, выполненная клиентом офлайн и присланная на сервер.
// Уникальна по (TenantID, UserID, IdempotencyKey).
type OfflineAction struct {
	ID             string           `json:"id"`
	TenantID       string           `json:"-"`
	UserID         string           `json:"userId"`
	DeviceID       string           `json:"deviceId,omitempty"`
	ClientActionID string           `json:"clientActionId,omitempty"`
	EntityType     string           `json:"entityType"`
	EntityID       *string          `json:"entityId,omitempty"`
	Operation      entity.Operation `json:"operation"`
	Payload        map[string]any   `json:"payload"`
	IdempotencyKey string           `json:"idempotencyKey"`
	Status         Status           `json:"status"`
	Error          *string          `json:"error,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	AppliedAt      *time.Time       `json:"appliedAt,omitempty"`
}

func (a OfflineAction) FingerprintID() string { return a.ID }

// FingerprintVersion меняется при каждом переходе состояния.
func (a OfflineAction) FingerprintVersion() string {
	ts := a.CreatedAt
	if a.AppliedAt != nil {
		ts = *a.AppliedAt
	}
	return string(a.Status) + "@" + versioning.VersionFromTime(ts)
}

// ServiceConfig конфигурация журнала действий
type ServiceConfig struct {
	MaxBatchSize int
	Now          func() time.Time
}
