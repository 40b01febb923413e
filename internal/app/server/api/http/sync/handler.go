package sync

import (
	"context"
	"errors"
	"strings"

	"workpro/internal/app/server/api/http/apierr"
	"workpro/internal/app/server/api/http/middleware/auth"
	"workpro/internal/domain/conflict"
	"workpro/internal/domain/ledger"
	"workpro/internal/domain/telemetry"
	"workpro/internal/domain/versioning"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

type Handler struct {
	actions    ledger.Servicer
	conflicts  conflict.Servicer
	telemetry  telemetry.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(actions ledger.Servicer, conflicts conflict.Servicer, telemetry telemetry.Servicer,
	log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		actions:    actions,
		conflicts:  conflicts,
		telemetry:  telemetry,
		log:        log.With("component", "sync_handler"),
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.submitActionsOp(), h.submitActions)
	huma.Register(api, h.listPendingOp(), h.listPending)
	huma.Register(api, h.listConflictsOp(), h.listConflicts)
	huma.Register(api, h.reportConflictOp(), h.reportConflict)
	huma.Register(api, h.getConflictOp(), h.getConflict)
	huma.Register(api, h.resolveConflictOp(), h.resolveConflict)
	huma.Register(api, h.listTelemetryOp(), h.listTelemetry)
}

func (h *Handler) submitActions(ctx context.Context, input *submitActionsInput) (*submitActionsOutput, error) {
	id, ok := auth.GetIdentity(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	results, err := h.actions.SubmitActions(ctx, ledger.SubmitInput{
		TenantID:   id.TenantID,
		UserID:     id.UserID,
		DeviceID:   firstNonEmpty(input.DeviceID, input.Body.DeviceID),
		Platform:   optional(input.Platform),
		AppVersion: optional(input.AppVersion),
		Actions:    input.Body.Actions,
	})
	if err != nil {
		return nil, apierr.From(h.log, err)
	}

	return &submitActionsOutput{
		Body: SubmitActionsResponse{Results: results},
	}, nil
}

func (h *Handler) listPending(ctx context.Context, input *listPendingInput) (*listPendingOutput, error) {
	id, ok := auth.GetIdentity(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	var statuses []ledger.Status
	for _, s := range splitList(input.Status) {
		statuses = append(statuses, ledger.Status(s))
	}

	items, err := h.actions.ListPending(ctx, ledger.PendingFilter{
		TenantID: id.TenantID,
		UserID:   input.UserID,
		DeviceID: input.DeviceID,
		Statuses: statuses,
	})
	if err != nil {
		return nil, apierr.From(h.log, err)
	}

	etag, err := conditional(input.IfNoneMatch, versioning.ComputeCollectionFingerprint(items))
	if err != nil {
		return nil, err
	}

	return &listPendingOutput{
		ETag: etag,
		Body: ListPendingResponse{Actions: nonNil(items)},
	}, nil
}

func (h *Handler) listConflicts(ctx context.Context, input *listConflictsInput) (*listConflictsOutput, error) {
	id, ok := auth.GetIdentity(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	filter := conflict.Filter{TenantID: id.TenantID, DeviceID: input.DeviceID}
	if input.Status != "" {
		st := conflict.Status(input.Status)
		filter.Status = &st
	}
	if input.Resolution != "" {
		r := conflict.Resolution(input.Resolution)
		filter.Resolution = &r
	}

	items, err := h.conflicts.List(ctx, filter)
	if err != nil {
		return nil, apierr.From(h.log, err)
	}

	etag, err := conditional(input.IfNoneMatch, versioning.ComputeCollectionFingerprint(items))
	if err != nil {
		return nil, err
	}

	return &listConflictsOutput{
		ETag: etag,
		Body: ListConflictsResponse{Conflicts: nonNil(items)},
	}, nil
}

func (h *Handler) reportConflict(ctx context.Context, input *reportConflictInput) (*reportConflictOutput, error) {
	id, ok := auth.GetIdentity(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	c, err := h.conflicts.Report(ctx, conflict.ReportInput{
		TenantID:      id.TenantID,
		UserID:        id.UserID,
		DeviceID:      firstNonEmpty(input.DeviceID, input.Body.DeviceID),
		EntityType:    input.Body.EntityType,
		EntityID:      input.Body.EntityID,
		ServerVersion: input.Body.ServerVersion,
		ClientVersion: input.Body.ClientVersion,
		Payload:       input.Body.Payload,
	})
	if err != nil {
		return nil, apierr.From(h.log, err)
	}

	return &reportConflictOutput{Body: c}, nil
}

func (h *Handler) getConflict(ctx context.Context, input *getConflictInput) (*getConflictOutput, error) {
	id, ok := auth.GetIdentity(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	c, err := h.conflicts.Get(ctx, id.TenantID, input.ID)
	if err != nil {
		return nil, apierr.From(h.log, err)
	}

	return &getConflictOutput{Body: c}, nil
}

func (h *Handler) resolveConflict(ctx context.Context, input *resolveConflictInput) (*resolveConflictOutput, error) {
	id, ok := auth.GetIdentity(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	c, err := h.conflicts.Resolve(ctx, conflict.ResolveInput{
		TenantID:   id.TenantID,
		UserID:     id.UserID,
		ConflictID: input.ID,
		Resolution: conflict.Resolution(input.Body.Resolution),
		Notes:      input.Body.Notes,
	})
	switch {
	case err == nil:
		return &resolveConflictOutput{Body: ResolveConflictResponse{SyncConflict: *c}}, nil
	case errors.Is(err, conflict.ErrAlreadyResolved) && c != nil:
		return &resolveConflictOutput{Body: ResolveConflictResponse{SyncConflict: *c, AlreadyResolved: true}}, nil
	default:
		return nil, apierr.From(h.log, err)
	}
}

func (h *Handler) listTelemetry(ctx context.Context, input *listTelemetryInput) (*listTelemetryOutput, error) {
	id, ok := auth.GetIdentity(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	items, err := h.telemetry.List(ctx, telemetry.Filter{
		TenantID: id.TenantID,
		UserID:   input.UserID,
		DeviceID: input.DeviceID,
	})
	if err != nil {
		return nil, apierr.From(h.log, err)
	}

	etag, err := conditional(input.IfNoneMatch, versioning.ComputeCollectionFingerprint(items))
	if err != nil {
		return nil, err
	}

	return &listTelemetryOutput{
		ETag: etag,
		Body: ListTelemetryResponse{Devices: nonNil(items)},
	}, nil
}

// conditional возвращает 304, если клиент уже видел текущий тег
func conditional(ifNoneMatch, etag string) (string, error) {
	current, err := versioning.ConditionalRead(ifNoneMatch, etag)
	if errors.Is(err, versioning.ErrNotModified) {
		return "", apierr.NotModified(etag)
	}
	return current, err
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
