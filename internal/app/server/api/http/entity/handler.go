package entity

import (
	"context"
	"errors"

	"workpro/internal/app/server/api/http/apierr"
	"workpro/internal/app/server/api/http/middleware/auth"
	"workpro/internal/domain/entity"
	"workpro/internal/domain/versioning"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

type Handler struct {
	service    entity.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service entity.Servicer, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log.With("component", "entity_handler"),
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.getOp(), h.get)
	huma.Register(api, h.updateOp(), h.update)
	huma.Register(api, h.reconcileOp(), h.reconcile)
}

func (h *Handler) get(ctx context.Context, input *getEntityInput) (*entityOutput, error) {
	id, ok := auth.GetIdentity(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	e, err := h.service.Get(ctx, id.TenantID, input.EntityType, input.ID)
	if err != nil {
		return nil, apierr.From(h.log, err)
	}

	etag, err := versioning.ConditionalRead(input.IfNoneMatch, e.ETag())
	if errors.Is(err, versioning.ErrNotModified) {
		return nil, apierr.NotModified(e.ETag())
	}

	return &entityOutput{ETag: etag, Body: e}, nil
}

func (h *Handler) update(ctx context.Context, input *updateEntityInput) (*entityOutput, error) {
	id, ok := auth.GetIdentity(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	e, err := h.service.Update(ctx, id.TenantID, input.EntityType, input.ID, input.IfMatch, input.Body.Fields)
	if err != nil {
		return nil, apierr.From(h.log, err)
	}

	h.log.Debug("entity updated", "entity_type", e.Type, "entity_id", e.ID, "version", e.Version)
	return &entityOutput{ETag: e.ETag(), Body: e}, nil
}

func (h *Handler) reconcile(ctx context.Context, input *reconcileEntityInput) (*entityOutput, error) {
	id, ok := auth.GetIdentity(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	e, conflict, err := h.service.Reconcile(ctx, entity.ReconcileInput{
		TenantID:        id.TenantID,
		EntityType:      input.EntityType,
		ID:              input.ID,
		ClientUpdatedAt: input.Body.ClientUpdatedAt,
		Patch:           input.Body.Patch,
	})
	if err != nil {
		return nil, apierr.From(h.log, err)
	}
	if conflict != nil {
		return nil, apierr.Conflict(conflict)
	}

	return &entityOutput{ETag: e.ETag(), Body: e}, nil
}
