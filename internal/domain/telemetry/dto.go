package telemetry

// Input - наблюдение об устройстве и приращения счётчиков.
// Platform и AppVersion перезаписывают сохранённые значения, только если заданы.
type Input struct {
	TenantID      string
	UserID        string
	DeviceID      string
	Platform      *string
	AppVersion    *string
	PendingDelta  int64
	FailedDelta   int64
	ConflictDelta int64
	FailureReason *string
	Synced        bool
}

type Filter struct {
	TenantID string
	UserID   string
	DeviceID string
}
