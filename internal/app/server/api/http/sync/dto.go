package sync

import (
	"workpro/internal/domain/conflict"
	"workpro/internal/domain/ledger"
	"workpro/internal/domain/telemetry"
)

// DeviceHeaders - заголовки, которыми мобильный клиент представляет устройство
type DeviceHeaders struct {
	DeviceID   string `header:"X-Device-ID" doc:"Stable device identifier"`
	Platform   string `header:"X-Device-Platform" example:"android"`
	AppVersion string `header:"X-App-Version" example:"3.12.0"`
}

// Request/Response для SubmitActions
type submitActionsInput struct {
	DeviceHeaders
	Body SubmitActionsRequest
}

type submitActionsOutput struct {
	Body SubmitActionsResponse
}

type SubmitActionsRequest struct {
	DeviceID string               `json:"deviceId,omitempty" doc:"Used when X-Device-ID is absent"`
	Actions  []ledger.ActionInput `json:"actions"`
}

type SubmitActionsResponse struct {
	Results []ledger.ActionResult `json:"results"`
}

// Request/Response для ListPending
type listPendingInput struct {
	UserID      string   `query:"userId"`
	DeviceID    string   `query:"deviceId"`
	Status      []string `query:"status" doc:"pending, applied, failed; repeatable or comma separated"`
	IfNoneMatch string   `header:"If-None-Match"`
}

type listPendingOutput struct {
	ETag string `header:"ETag"`
	Body ListPendingResponse
}

type ListPendingResponse struct {
	Actions []ledger.OfflineAction `json:"actions"`
}

// Request/Response для ListConflicts
type listConflictsInput struct {
	Status      string `query:"status" enum:"pending,resolved"`
	Resolution  string `query:"resolution" enum:"server,client,manual"`
	DeviceID    string `query:"deviceId"`
	IfNoneMatch string `header:"If-None-Match"`
}

type listConflictsOutput struct {
	ETag string `header:"ETag"`
	Body ListConflictsResponse
}

type ListConflictsResponse struct {
	Conflicts []conflict.SyncConflict `json:"conflicts"`
}

// Request/Response для ReportConflict
type reportConflictInput struct {
	DeviceHeaders
	Body ReportConflictRequest
}

type reportConflictOutput struct {
	Body *conflict.SyncConflict
}

type ReportConflictRequest struct {
	DeviceID      string         `json:"deviceId,omitempty" doc:"Used when X-Device-ID is absent"`
	EntityType    string         `json:"entityType" example:"WorkOrder"`
	EntityID      string         `json:"entityId,omitempty"`
	ServerVersion *int64         `json:"serverVersion,omitempty"`
	ClientVersion *int64         `json:"clientVersion,omitempty"`
	Payload       map[string]any `json:"payload,omitempty"`
}

// Request/Response для GetConflict
type getConflictInput struct {
	ID string `path:"id"`
}

type getConflictOutput struct {
	Body *conflict.SyncConflict
}

// Request/Response для ResolveConflict
type resolveConflictInput struct {
	ID   string `path:"id"`
	Body ResolveConflictRequest
}

type resolveConflictOutput struct {
	Body ResolveConflictResponse
}

type ResolveConflictRequest struct {
	Resolution string  `json:"resolution" enum:"server,client,manual"`
	Notes      *string `json:"notes,omitempty"`
}

type ResolveConflictResponse struct {
	conflict.SyncConflict
	AlreadyResolved bool `json:"alreadyResolved"`
}

// Request/Response для ListTelemetry
type listTelemetryInput struct {
	UserID      string `query:"userId"`
	DeviceID    string `query:"deviceId"`
	IfNoneMatch string `header:"If-None-Match"`
}

type listTelemetryOutput struct {
	ETag string `header:"ETag"`
	Body ListTelemetryResponse
}

type ListTelemetryResponse struct {
	Devices []telemetry.DeviceTelemetry `json:"devices"`
}
