package health

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) healthCheckOp() huma.Operation {
	return huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/api/v1/health",
		Summary:     "Service and database liveness",
		Description: "Pings PostgreSQL; returns 503 when the database is unreachable. Does not require a token.",
		Tags:        []string{"health"},
		Security:    []map[string][]string{},
		Errors:      []int{http.StatusServiceUnavailable},
		Middlewares: h.middleware,
	}
}
