package telemetry

import (
	"time"

	"workpro/internal/domain/versioning"
)

// DeviceTelemetry - сводка по одному устройству арендатора.
type DeviceTelemetry struct {
	TenantID          string     `json:"-"`
	DeviceID          string     `json:"deviceId"`
	UserID            string     `json:"userId"`
	Platform          *string    `json:"platform,omitempty"`
	AppVersion        *string    `json:"appVersion,omitempty"`
	LastSeenAt        time.Time  `json:"lastSeenAt"`
	LastSyncAt        *time.Time `json:"lastSyncAt,omitempty"`
	PendingActions    int64      `json:"pendingActions"`
	FailedActions     int64      `json:"failedActions"`
	TotalConflicts    int64      `json:"totalConflicts"`
	LastFailureReason *string    `json:"lastFailureReason,omitempty"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

func (d DeviceTelemetry) FingerprintID() string { return d.DeviceID }

func (d DeviceTelemetry) FingerprintVersion() string {
	return versioning.VersionFromTime(d.UpdatedAt)
}

// ServiceConfig конфигурация сервиса телеметрии
type ServiceConfig struct {
	Now func() time.Time
}
