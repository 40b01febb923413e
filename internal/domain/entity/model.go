package entity

import (
	"time"

	"workpro/internal/domain/versioning"
)

const DefaultType = "WorkOrder"

// Operation - вид мутации, которую клиент выполнил офлайн.
type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

func (o Operation) Valid() bool {
	switch o {
	case OperationCreate, OperationUpdate, OperationDelete:
		return true
	}
	return false
}

// Entity - версионированный документ предметной области (заказ-наряд, актив, ...).
type Entity struct {
	TenantID  string         `json:"-"`
	Type      string         `json:"entityType"`
	ID        string         `json:"id"`
	Fields    map[string]any `json:"fields"`
	Version   int64          `json:"version"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt *time.Time     `json:"deletedAt,omitempty"`
}

func (e *Entity) ETag() string {
	return versioning.EntityETag(e.ID, e.Version)
}

func (e Entity) FingerprintID() string      { return e.ID }
func (e Entity) FingerprintVersion() string { return versioning.VersionFromInt(e.Version) }
