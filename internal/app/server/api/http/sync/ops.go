package sync

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

var bearer = []map[string][]string{{"bearer": {}}}

func (h *Handler) submitActionsOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-submit-actions",
		Method:      http.MethodPost,
		Path:        "/api/v1/sync/actions",
		Summary:     "Submit a batch of offline actions",
		Description: "Applies queued offline mutations in order. Each action carries an idempotency key; " +
			"re-submitting a key returns the original outcome without re-applying it.",
		Tags:        []string{"sync"},
		Security:    bearer,
		Middlewares: h.middleware,
	}
}

func (h *Handler) listPendingOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-list-pending",
		Method:      http.MethodGet,
		Path:        "/api/v1/sync/pending",
		Summary:     "List unresolved offline actions",
		Tags:        []string{"sync"},
		Security:    bearer,
		Middlewares: h.middleware,
	}
}

func (h *Handler) listConflictsOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-list-conflicts",
		Method:      http.MethodGet,
		Path:        "/api/v1/sync/conflicts",
		Summary:     "List sync conflicts",
		Tags:        []string{"sync"},
		Security:    bearer,
		Middlewares: h.middleware,
	}
}

func (h *Handler) reportConflictOp() huma.Operation {
	return huma.Operation{
		OperationID:   "sync-report-conflict",
		Method:        http.MethodPost,
		Path:          "/api/v1/sync/conflicts",
		Summary:       "Report a sync conflict",
		Description:   "Replaces the pending conflict of the same entity and device, if any.",
		Tags:          []string{"sync"},
		DefaultStatus: http.StatusCreated,
		Security:      bearer,
		Middlewares:   h.middleware,
	}
}

func (h *Handler) getConflictOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-get-conflict",
		Method:      http.MethodGet,
		Path:        "/api/v1/sync/conflicts/{id}",
		Summary:     "Get a sync conflict",
		Tags:        []string{"sync"},
		Security:    bearer,
		Middlewares: h.middleware,
	}
}

func (h *Handler) resolveConflictOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-resolve-conflict",
		Method:      http.MethodPost,
		Path:        "/api/v1/sync/conflicts/{id}/resolve",
		Summary:     "Resolve a sync conflict",
		Description: "server keeps the server state, client re-applies the client payload, manual records a decision. " +
			"Resolving an already resolved conflict returns it with alreadyResolved set.",
		Tags:        []string{"sync"},
		Security:    bearer,
		Middlewares: h.middleware,
	}
}

func (h *Handler) listTelemetryOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-list-telemetry",
		Method:      http.MethodGet,
		Path:        "/api/v1/sync/telemetry",
		Summary:     "List device sync telemetry",
		Tags:        []string{"sync"},
		Security:    bearer,
		Middlewares: h.middleware,
	}
}
