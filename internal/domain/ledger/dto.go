package ledger

import "workpro/internal/domain/entity"

// ActionInput - одно действие из пакета клиента.
type ActionInput struct {
	ID             string           `json:"id,omitempty" doc:"Client-side action id, echoed in the result"`
	EntityType     string           `json:"entityType" required:"false" example:"WorkOrder"`
	EntityID       *string          `json:"entityId,omitempty"`
	Operation      entity.Operation `json:"operation" required:"false" doc:"create, update or delete"`
	Payload        map[string]any   `json:"payload,omitempty"`
	IdempotencyKey string           `json:"idempotencyKey" required:"false"`
}

type ResultStatus string

const (
	ResultOK      ResultStatus = "ok"
	ResultError   ResultStatus = "error"
	ResultPending ResultStatus = "pending"
)

// ActionResult - исход одного действия. Повторная отправка того же ключа
// возвращает тот же исход.
type ActionResult struct {
	ID       string       `json:"id"`
	ActionID string       `json:"actionId,omitempty"`
	EntityID string       `json:"entityId,omitempty"`
	Status   ResultStatus `json:"status" enum:"ok,error,pending"`
	Error    string       `json:"error,omitempty"`
}

type SubmitInput struct {
	TenantID   string
	UserID     string
	DeviceID   string
	Platform   *string
	AppVersion *string
	Actions    []ActionInput
}

type PendingFilter struct {
	TenantID string
	UserID   string
	DeviceID string
	Statuses []Status
}
