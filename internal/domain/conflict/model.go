package conflict

import (
	"time"

	"workpro/internal/domain/versioning"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusResolved Status = "resolved"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusResolved
}

// Resolution политика разрешения конфликта
type Resolution string

const (
	ResolutionServer Resolution = "server"
	ResolutionClient Resolution = "client"
	ResolutionManual Resolution = "manual"
)

func (r Resolution) Valid() bool {
	switch r {
	case ResolutionServer, ResolutionClient, ResolutionManual:
		return true
	}
	return false
}

// SyncConflict - расхождение, о котором сообщил клиент. Для каждой тройки
// (сущность, устройство) в арендаторе существует не более одного pending-конфликта.
type SyncConflict struct {
	ID            string         `json:"id"`
	TenantID      string         `json:"-"`
	UserID        string         `json:"userId"`
	DeviceID      string         `json:"deviceId"`
	EntityType    string         `json:"entityType"`
	EntityID      string         `json:"entityId,omitempty"`
	ServerVersion *int64         `json:"serverVersion,omitempty"`
	ClientVersion *int64         `json:"clientVersion,omitempty"`
	Payload       map[string]any `json:"payload,omitempty"`
	Status        Status         `json:"status"`
	Resolution    *Resolution    `json:"resolution,omitempty"`
	ResolvedBy    *string        `json:"resolvedBy,omitempty"`
	ResolvedAt    *time.Time     `json:"resolvedAt,omitempty"`
	Notes         *string        `json:"notes,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
}

func (c SyncConflict) FingerprintID() string { return c.ID }

func (c SyncConflict) FingerprintVersion() string {
	ts := c.CreatedAt
	if c.ResolvedAt != nil {
		ts = *c.ResolvedAt
	}
	return string(c.Status) + "@" + versioning.VersionFromTime(ts)
}

// AuditRecord - неизменяемая запись о разрешении конфликта.
type AuditRecord struct {
	ID         string
	TenantID   string
	ActorID    string
	EntityType string
	EntityID   string
	Action     string
	Before     *SyncConflict
	After      *SyncConflict
	CreatedAt  time.Time
}

const (
	auditEntityType    = "SyncConflict"
	auditActionResolve = "resolve"
)

// ServiceConfig конфигурация сервиса конфликтов
type ServiceConfig struct {
	Now func() time.Time
}
