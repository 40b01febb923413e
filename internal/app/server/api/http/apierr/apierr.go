// Package apierr переводит ошибки доменных сервисов в ответы huma.
package apierr

import (
	"errors"
	"net/http"

	"workpro/internal/domain/conflict"
	"workpro/internal/domain/entity"
	"workpro/internal/domain/identity"
	"workpro/internal/domain/ledger"
	"workpro/internal/domain/telemetry"
	"workpro/internal/domain/versioning"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

// From возвращает huma-ошибку для err. Неизвестные ошибки логируются и скрываются за 500.
func From(log *slog.Logger, err error) error {
	var applyErr *entity.ApplyError

	switch {
	case err == nil:
		return nil
	case errors.Is(err, identity.ErrMissingTenantContext):
		return huma.Error401Unauthorized(err.Error())
	case errors.Is(err, versioning.ErrPreconditionFailed):
		return huma.Error412PreconditionFailed(err.Error())
	case errors.As(err, &applyErr):
		return huma.Error422UnprocessableEntity(applyErr.Error())
	case errors.Is(err, entity.ErrNotFound),
		errors.Is(err, conflict.ErrNotFound),
		errors.Is(err, ledger.ErrNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, ledger.ErrBatchTooLarge),
		errors.Is(err, ledger.ErrInvalidStatus),
		errors.Is(err, conflict.ErrInvalidResolution),
		errors.Is(err, conflict.ErrValidation),
		errors.Is(err, telemetry.ErrMissingDevice),
		errors.Is(err, entity.ErrInvalidPayload),
		errors.Is(err, entity.ErrUnsupportedType):
		return huma.Error422UnprocessableEntity(err.Error())
	case errors.Is(err, entity.ErrAlreadyExists):
		return huma.Error409Conflict(err.Error())
	}

	log.Error("request failed", "error", err)
	return huma.Error500InternalServerError("internal server error")
}

// NotModified - ответ 304 с текущим тегом
func NotModified(etag string) error {
	return huma.ErrorWithHeaders(huma.Status304NotModified(), http.Header{"ETag": {etag}})
}

// ConflictError - 409 со списком полей, которые сервер изменил после версии клиента
type ConflictError struct {
	Status    int            `json:"status"`
	Title     string         `json:"title"`
	Detail    string         `json:"detail,omitempty"`
	Conflicts []string       `json:"conflicts"`
	Current   *entity.Entity `json:"current,omitempty"`
}

func (e *ConflictError) Error() string  { return e.Detail }
func (e *ConflictError) GetStatus() int { return e.Status }

func (e *ConflictError) ContentType(string) string { return "application/problem+json" }

func Conflict(c *entity.ReconcileConflict) error {
	fields := c.Fields
	if fields == nil {
		fields = []string{}
	}
	return &ConflictError{
		Status:    http.StatusConflict,
		Title:     http.StatusText(http.StatusConflict),
		Detail:    "entity was modified on the server after the client's last sync",
		Conflicts: fields,
		Current:   c.Current,
	}
}
