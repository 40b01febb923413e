package entity

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

var bearer = []map[string][]string{{"bearer": {}}}

func (h *Handler) getOp() huma.Operation {
	return huma.Operation{
		OperationID: "entity-get",
		Method:      http.MethodGet,
		Path:        "/api/v1/entities/{id}",
		Summary:     "Get an entity with its ETag",
		Tags:        []string{"entities"},
		Security:    bearer,
		Middlewares: h.middleware,
	}
}

func (h *Handler) updateOp() huma.Operation {
	return huma.Operation{
		OperationID: "entity-update",
		Method:      http.MethodPut,
		Path:        "/api/v1/entities/{id}",
		Summary:     "Update an entity guarded by If-Match",
		Tags:        []string{"entities"},
		Security:    bearer,
		Middlewares: h.middleware,
		Errors:      []int{http.StatusNotFound, http.StatusPreconditionFailed},
	}
}

func (h *Handler) reconcileOp() huma.Operation {
	return huma.Operation{
		OperationID: "entity-reconcile",
		Method:      http.MethodPut,
		Path:        "/api/v1/entities/{id}/reconcile",
		Summary:     "Apply an offline patch unless the server changed the entity since the client saw it",
		Tags:        []string{"entities"},
		Security:    bearer,
		Middlewares: h.middleware,
		Errors:      []int{http.StatusNotFound, http.StatusConflict},
	}
}
