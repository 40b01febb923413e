package conflict

type ReportInput struct {
	TenantID      string
	UserID        string
	DeviceID      string
	EntityType    string
	EntityID      string
	ServerVersion *int64
	ClientVersion *int64
	Payload       map[string]any
}

type ResolveInput struct {
	TenantID   string
	UserID     string
	ConflictID string
	Resolution Resolution
	Notes      *string
}

type Filter struct {
	TenantID   string
	Status     *Status
	Resolution *Resolution
	DeviceID   string
}
